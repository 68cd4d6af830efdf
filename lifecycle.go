package component

import (
	"sync/atomic"

	"go.uber.org/zap"
)

var uidCounter atomic.Uint64

func nextUID() uint64 {
	return uidCounter.Add(1) - 1
}

// Instrumentation measures instance initialization. Start is called before
// options are resolved; the returned function is called once the created
// hook has run, or with the error that stopped construction.
type Instrumentation interface {
	Start(vm *Instance) func(err error)
}

// InstrumentationFunc adapts a function to Instrumentation.
type InstrumentationFunc func(vm *Instance) func(err error)

// Start implements Instrumentation.
func (f InstrumentationFunc) Start(vm *Instance) func(err error) {
	if f == nil {
		return func(error) {}
	}
	if done := f(vm); done != nil {
		return done
	}
	return func(error) {}
}

// Instrumentations fans Start out to every entry.
type Instrumentations []Instrumentation

// Start implements Instrumentation.
func (list Instrumentations) Start(vm *Instance) func(err error) {
	done := make([]func(error), 0, len(list))
	for _, item := range list {
		if item == nil {
			continue
		}
		if fn := item.Start(vm); fn != nil {
			done = append(done, fn)
		}
	}
	return func(err error) {
		for i := len(done) - 1; i >= 0; i-- {
			done[i](err)
		}
	}
}

// Driver runs the ordered initialization sequence of an instance.
type Driver struct {
	rt            *Runtime
	builder       *Builder
	collaborators Collaborators
	diagnostics   Diagnostics
	measure       Instrumentation
}

type step struct {
	name  string
	phase Phase
	run   func(vm *Instance) error
}

func newDriver(rt *Runtime) *Driver {
	d := &Driver{
		rt:          rt,
		builder:     rt.builder,
		diagnostics: rt.diagnostics,
	}
	d.collaborators = rt.cfg.collaborators.withDefaults(defaultCollaborators(rt))
	if rt.cfg.instrumentation != nil && rt.cfg.performance && rt.cfg.mode == ModeDevelopment {
		d.measure = rt.cfg.instrumentation
	}
	return d
}

// Collaborators returns the collaborators in use, defaults included.
func (d *Driver) Collaborators() Collaborators {
	return d.collaborators
}

// Construct initializes vm. A non-nil internal selects the fast options
// path. Steps run strictly in order: options, proxy, lifecycle, events,
// render, beforeCreate, injections, state, provide, created, then mount when
// the options name a mount target. A failing step stops construction and
// its error is returned wrapped in a *StepError; completed steps are not
// rolled back.
func (d *Driver) Construct(vm *Instance, options Options, internal *InternalOptions) (*Instance, error) {
	vm = d.receiver(vm, internal)
	vm.uid = nextUID()

	var done func(error)
	if d.measure != nil {
		done = d.measure.Start(vm)
	}

	vm.options = d.builder.Build(vm.ctor, options, internal, vm)
	vm.phase = PhaseConfigResolved

	c := d.collaborators
	steps := []step{
		{name: "proxy", phase: PhaseConfigResolved, run: c.Proxy.Init},
		{name: "lifecycle", phase: PhaseLifecycleWired, run: c.Lifecycle.Init},
		{name: "events", phase: PhaseEventsWired, run: c.Events.Init},
		{name: "render", phase: PhaseRenderWired, run: c.Render.Init},
		{name: "beforeCreate", phase: PhaseBeforeCreateCalled, run: d.hook("beforeCreate")},
		{name: "injections", phase: PhaseInjectionsResolved, run: c.Injections.Init},
		{name: "state", phase: PhaseStateInitialized, run: c.State.Init},
		{name: "provide", phase: PhaseProvisionsResolved, run: c.Provide.Init},
		{name: "created", phase: PhaseCreated, run: d.hook("created")},
	}
	for _, s := range steps {
		if err := s.run(vm); err != nil {
			err = wrapStepError(s.name, vm.uid, err)
			if done != nil {
				done(err)
			}
			return vm, err
		}
		vm.phase = s.phase
	}
	if done != nil {
		done(nil)
	}
	d.rt.emitCreated(vm)

	if el, ok := vm.options.Get("el"); ok && el != nil {
		if err := d.mount(vm, el); err != nil {
			return vm, err
		}
		return vm, nil
	}
	vm.phase = PhaseUnmounted
	return vm, nil
}

func (d *Driver) receiver(vm *Instance, internal *InternalOptions) *Instance {
	if vm == nil {
		d.diagnostics.Warn("component: Construct called without an instance; allocating one")
		vm = &Instance{}
	}
	if vm.phase != PhaseUnconstructed {
		d.diagnostics.Warn("component: instance constructed more than once",
			zap.Uint64("uid", vm.uid),
			zap.Stringer("phase", vm.phase),
		)
	}
	if vm.ctor == nil {
		if internal != nil && internal.ParentVnode != nil && internal.ParentVnode.ComponentOptions != nil {
			vm.ctor = internal.ParentVnode.ComponentOptions.Ctor
		}
		if vm.ctor == nil {
			d.diagnostics.Warn("component: instance has no constructor; use Constructor.New")
			vm.ctor = d.rt.fallbackConstructor()
		}
	}
	return vm
}

func (d *Driver) hook(name string) func(vm *Instance) error {
	return func(vm *Instance) error {
		return d.collaborators.Hooks.CallHook(vm, name)
	}
}

func (d *Driver) mount(vm *Instance, target any) error {
	if err := d.collaborators.Mounter.Mount(vm, target); err != nil {
		return wrapStepError("mount", vm.uid, err)
	}
	vm.phase = PhaseMounted
	d.rt.emitMounted(vm)
	return nil
}
