package component

import (
	"fmt"
	"sort"
)

// Phase tracks an instance through construction.
type Phase int

const (
	PhaseUnconstructed Phase = iota
	PhaseConfigResolved
	PhaseLifecycleWired
	PhaseEventsWired
	PhaseRenderWired
	PhaseBeforeCreateCalled
	PhaseInjectionsResolved
	PhaseStateInitialized
	PhaseProvisionsResolved
	PhaseCreated
	PhaseMounted
	PhaseUnmounted
)

var phaseNames = [...]string{
	"unconstructed",
	"config-resolved",
	"lifecycle-wired",
	"events-wired",
	"render-wired",
	"before-create-called",
	"injections-resolved",
	"state-initialized",
	"provisions-resolved",
	"created",
	"mounted",
	"unmounted",
}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return fmt.Sprintf("phase(%d)", int(p))
	}
	return phaseNames[p]
}

// Instance is a running component.
type Instance struct {
	uid     uint64
	ctor    *Constructor
	options *Descriptor
	phase   Phase

	parent   *Instance
	root     *Instance
	children []*Instance

	listeners map[string][]Listener
	slots     map[string][]*VNode
	render    any

	props    Options
	data     Options
	methods  map[string]Method
	computed map[string]computedGetter
	provided Options
	injected Options

	evaluator Evaluator
	logger    EvaluatorLogger

	el      any
	mounted bool
}

// UID returns the process-wide unique instance id.
func (vm *Instance) UID() uint64 { return vm.uid }

// Constructor returns the constructor that built the instance.
func (vm *Instance) Constructor() *Constructor { return vm.ctor }

// Options returns the instance descriptor.
func (vm *Instance) Options() *Descriptor { return vm.options }

// Phase returns the construction phase reached so far.
func (vm *Instance) Phase() Phase { return vm.phase }

// Parent returns the parent instance, nil for roots.
func (vm *Instance) Parent() *Instance { return vm.parent }

// Root returns the root of the instance tree.
func (vm *Instance) Root() *Instance {
	if vm.root == nil {
		return vm
	}
	return vm.root
}

// Children returns a copy of the child instances.
func (vm *Instance) Children() []*Instance {
	return append([]*Instance(nil), vm.children...)
}

// Slots returns the render children keyed by slot name.
func (vm *Instance) Slots() map[string][]*VNode { return vm.slots }

// Props returns the resolved prop values.
func (vm *Instance) Props() Options { return vm.props }

// Data returns the instance data.
func (vm *Instance) Data() Options { return vm.data }

// Provided returns the values this instance provides to descendants.
func (vm *Instance) Provided() Options { return vm.provided }

// Injected returns the values resolved from ancestors.
func (vm *Instance) Injected() Options { return vm.injected }

// El returns the mount target, nil until mounted.
func (vm *Instance) El() any { return vm.el }

// IsMounted reports whether the instance has been mounted.
func (vm *Instance) IsMounted() bool { return vm.mounted }

// Name returns the component name from the instance options.
func (vm *Instance) Name() string { return vm.options.Name() }

// Get looks a key up in props, data, then injected values.
func (vm *Instance) Get(key string) (any, bool) {
	for _, layer := range []Options{vm.props, vm.data, vm.injected} {
		if value, ok := layer[key]; ok {
			return value, true
		}
	}
	return nil, false
}

// Snapshot returns props, injected values and data merged into one map,
// data winning on conflicts.
func (vm *Instance) Snapshot() map[string]any {
	out := make(map[string]any, len(vm.props)+len(vm.data)+len(vm.injected))
	for _, layer := range []Options{vm.injected, vm.props, vm.data} {
		for key, value := range layer {
			out[key] = value
		}
	}
	return out
}

// Method is a component method bound at call time to its instance.
type Method func(vm *Instance, args ...any) (any, error)

// Call invokes the method registered under name.
func (vm *Instance) Call(name string, args ...any) (any, error) {
	method, ok := vm.methods[name]
	if !ok {
		return nil, fmt.Errorf("component: method %q not defined on %s", name, vm)
	}
	return method(vm, args...)
}

// Methods returns the method names sorted alphabetically.
func (vm *Instance) Methods() []string {
	names := make([]string, 0, len(vm.methods))
	for name := range vm.methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Listener handles an emitted event.
type Listener func(args ...any) error

// Emit invokes the listeners registered for event in order. The first
// failing listener stops the dispatch.
func (vm *Instance) Emit(event string, args ...any) error {
	for _, listener := range vm.listeners[event] {
		if err := listener(args...); err != nil {
			return fmt.Errorf("component: listener %q: %w", event, err)
		}
	}
	return nil
}

// On appends a listener for event.
func (vm *Instance) On(event string, listener Listener) {
	if listener == nil {
		return
	}
	if vm.listeners == nil {
		vm.listeners = map[string][]Listener{}
	}
	vm.listeners[event] = append(vm.listeners[event], listener)
}

// Mount mounts the instance on target through the runtime's Mounter.
func (vm *Instance) Mount(target any) error {
	if vm.ctor == nil || vm.ctor.rt == nil {
		return fmt.Errorf("component: instance %d has no runtime", vm.uid)
	}
	return vm.ctor.rt.driver.mount(vm, target)
}

func (vm *Instance) String() string {
	if vm == nil {
		return "<nil>"
	}
	if name := vm.Name(); name != "" {
		return fmt.Sprintf("<%s#%d>", name, vm.uid)
	}
	return fmt.Sprintf("<anonymous#%d>", vm.uid)
}
