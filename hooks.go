package component

import (
	"fmt"

	"go.uber.org/zap"
)

// Hook is a lifecycle callback. Hooks registered under the same name run in
// base-to-derived order.
type Hook func(vm *Instance) error

// Hooks returns the hooks registered under name in the instance options.
// Values of unsupported shapes are skipped.
func (vm *Instance) Hooks(name string) []Hook {
	hooks, _ := normalizeHooks(vm.options.Value(name))
	return hooks
}

type hookCaller struct {
	diagnostics Diagnostics
}

func (c hookCaller) CallHook(vm *Instance, name string) error {
	hooks, skipped := normalizeHooks(vm.options.Value(name))
	if skipped > 0 && c.diagnostics != nil {
		c.diagnostics.Warn("component: ignoring hook values of unsupported type",
			zap.String("hook", name),
			zap.Int("skipped", skipped),
			zap.Stringer("instance", vm),
		)
	}
	for i, hook := range hooks {
		if err := hook(vm); err != nil {
			return &HookError{Hook: name, Index: i, Err: err}
		}
	}
	return nil
}

func normalizeHooks(value any) ([]Hook, int) {
	switch v := value.(type) {
	case nil:
		return nil, 0
	case []Hook:
		return v, 0
	case []any:
		hooks := make([]Hook, 0, len(v))
		skipped := 0
		for _, item := range v {
			hook, ok := asHook(item)
			if !ok {
				skipped++
				continue
			}
			hooks = append(hooks, hook)
		}
		return hooks, skipped
	case []func(*Instance) error:
		hooks := make([]Hook, 0, len(v))
		for _, fn := range v {
			hooks = append(hooks, Hook(fn))
		}
		return hooks, 0
	case []func(*Instance):
		hooks := make([]Hook, 0, len(v))
		for _, fn := range v {
			hook, _ := asHook(fn)
			hooks = append(hooks, hook)
		}
		return hooks, 0
	default:
		if hook, ok := asHook(v); ok {
			return []Hook{hook}, 0
		}
		return nil, 1
	}
}

func asHook(value any) (Hook, bool) {
	switch fn := value.(type) {
	case Hook:
		return fn, fn != nil
	case func(*Instance) error:
		return Hook(fn), fn != nil
	case func(*Instance):
		if fn == nil {
			return nil, false
		}
		return func(vm *Instance) error {
			fn(vm)
			return nil
		}, true
	default:
		return nil, false
	}
}

type eventsInitializer struct {
	diagnostics Diagnostics
}

func (e eventsInitializer) Init(vm *Instance) error {
	vm.listeners = map[string][]Listener{}
	for event, value := range toStringMap(vm.options.Value("_parentListeners")) {
		listeners, err := normalizeListeners(value)
		if err != nil {
			e.diagnostics.Warn("component: invalid listener",
				zap.String("event", event),
				zap.Stringer("instance", vm),
				zap.Error(err),
			)
			continue
		}
		vm.listeners[event] = append(vm.listeners[event], listeners...)
	}
	return nil
}

func normalizeListeners(value any) ([]Listener, error) {
	switch v := value.(type) {
	case []Listener:
		return v, nil
	case []any:
		out := make([]Listener, 0, len(v))
		for _, item := range v {
			listener, err := asListener(item)
			if err != nil {
				return nil, err
			}
			out = append(out, listener)
		}
		return out, nil
	default:
		listener, err := asListener(v)
		if err != nil {
			return nil, err
		}
		return []Listener{listener}, nil
	}
}

func asListener(value any) (Listener, error) {
	switch fn := value.(type) {
	case Listener:
		return fn, nil
	case func(...any) error:
		return Listener(fn), nil
	case func(...any):
		return func(args ...any) error {
			fn(args...)
			return nil
		}, nil
	case func():
		return func(...any) error {
			fn()
			return nil
		}, nil
	default:
		return nil, fmt.Errorf("unsupported listener type %T", value)
	}
}
