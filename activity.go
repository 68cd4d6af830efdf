package component

import (
	"context"

	"github.com/goliatone/go-component/pkg/activity"
	"go.uber.org/zap"
)

// WithActivityHooks attaches activity hooks notified when instances are
// created or mounted and when constructors are recomputed. Nil hooks are
// dropped.
func WithActivityHooks(hooks activity.Hooks) Option {
	normalized := activity.CloneHooks(hooks)
	return func(cfg *runtimeConfig) {
		cfg.activityHooks = normalized
	}
}

// WithActivityChannel overrides the channel stamped on emitted events.
func WithActivityChannel(channel string) Option {
	return func(cfg *runtimeConfig) {
		cfg.activityChannel = channel
	}
}

// ActivityHooks returns a copy of the configured activity hooks.
func (rt *Runtime) ActivityHooks() activity.Hooks {
	if rt == nil {
		return nil
	}
	return activity.CloneHooks(rt.cfg.activityHooks)
}

// activityObserver reports resolver misses as constructor.resolved events.
// It runs under the resolver lock and must not resolve constructors.
type activityObserver struct {
	emitter     *activity.Emitter
	diagnostics Diagnostics
}

func (activityObserver) ResolveHit(*Constructor) {}

func (o activityObserver) ResolveMiss(c *Constructor) {
	input := activity.ConstructorEventInput{
		CID:       c.cid,
		Component: c.options.Name(),
		Depth:     c.Depth(),
		Keys:      c.extendOptions.Keys(),
	}
	if c.super != nil {
		superID := c.super.cid
		input.SuperCID = &superID
	}
	report(o.emitter, o.diagnostics, activity.BuildConstructorResolvedEvent(input))
}

func (rt *Runtime) emitCreated(vm *Instance) {
	if !rt.emitter.Enabled() {
		return
	}
	report(rt.emitter, rt.diagnostics, activity.BuildComponentCreatedEvent(instanceEventInput(vm)))
}

func (rt *Runtime) emitMounted(vm *Instance) {
	if !rt.emitter.Enabled() {
		return
	}
	input := instanceEventInput(vm)
	if target, ok := vm.el.(string); ok {
		input.Target = target
	}
	report(rt.emitter, rt.diagnostics, activity.BuildComponentMountedEvent(input))
}

func instanceEventInput(vm *Instance) activity.InstanceEventInput {
	input := activity.InstanceEventInput{
		UID:       vm.uid,
		Component: vm.Name(),
		Phase:     vm.phase.String(),
	}
	if vm.parent != nil {
		parentUID := vm.parent.uid
		input.ParentUID = &parentUID
	}
	return input
}

func report(emitter *activity.Emitter, diagnostics Diagnostics, event activity.Event) {
	if err := emitter.Emit(context.Background(), event); err != nil {
		diagnostics.Warn("component: activity hook failed",
			zap.String("verb", event.Verb),
			zap.String("object_id", event.ObjectID),
			zap.Error(err),
		)
	}
}
