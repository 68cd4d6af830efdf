package component

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Function is a callable exposed to expressions. Component filters are
// registered as Functions.
type Function func(args ...any) (any, error)

// FunctionRegistry stores functions keyed by case-insensitive name. Names
// keeps the spelling used at registration.
type FunctionRegistry struct {
	mu        sync.RWMutex
	functions map[string]namedFunction
}

type namedFunction struct {
	name string
	fn   Function
}

// NewFunctionRegistry constructs an empty registry.
func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{
		functions: make(map[string]namedFunction),
	}
}

// Register stores fn under name guarding against duplicates.
func (r *FunctionRegistry) Register(name string, fn Function) error {
	if fn == nil {
		return fmt.Errorf("component: function %q is nil", name)
	}
	if name == "" {
		return fmt.Errorf("component: function name must not be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.functions == nil {
		r.functions = make(map[string]namedFunction)
	}
	key := strings.ToLower(name)
	if _, exists := r.functions[key]; exists {
		return fmt.Errorf("component: function %q already registered", name)
	}
	r.functions[key] = namedFunction{name: name, fn: fn}
	return nil
}

// replace stores fn under name, overriding any previous entry.
func (r *FunctionRegistry) replace(name string, fn Function) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.functions == nil {
		r.functions = make(map[string]namedFunction)
	}
	r.functions[strings.ToLower(name)] = namedFunction{name: name, fn: fn}
}

// Clone returns a shallow copy of the registry.
func (r *FunctionRegistry) Clone() *FunctionRegistry {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	clone := &FunctionRegistry{
		functions: make(map[string]namedFunction, len(r.functions)),
	}
	for name, fn := range r.functions {
		clone.functions[name] = fn
	}
	return clone
}

// Call executes the function registered for name.
func (r *FunctionRegistry) Call(name string, args ...any) (any, error) {
	if r == nil {
		return nil, fmt.Errorf("component: function registry is nil")
	}
	r.mu.RLock()
	entry, ok := r.functions[strings.ToLower(name)]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("component: function %q not registered", name)
	}
	return entry.fn(args...)
}

// Names returns registered function names sorted alphabetically.
func (r *FunctionRegistry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.functions))
	for _, entry := range r.functions {
		names = append(names, entry.name)
	}
	sort.Strings(names)
	return names
}

// WithFunctionRegistry makes the registry's functions available to every
// component expression, alongside component filters.
func WithFunctionRegistry(registry *FunctionRegistry) Option {
	return func(cfg *runtimeConfig) {
		if registry == nil {
			return
		}
		cfg.functions = registry.Clone()
	}
}

// WithCustomFunction registers fn under name for every component expression.
func WithCustomFunction(name string, fn Function) Option {
	return func(cfg *runtimeConfig) {
		if cfg.functions == nil {
			cfg.functions = NewFunctionRegistry()
		}
		_ = cfg.functions.Register(name, fn)
	}
}

// asFunction adapts the filter shapes accepted in options to a Function.
func asFunction(value any) (Function, bool) {
	switch fn := value.(type) {
	case Function:
		return fn, fn != nil
	case func(...any) (any, error):
		return Function(fn), fn != nil
	case func(any) any:
		if fn == nil {
			return nil, false
		}
		return func(args ...any) (any, error) {
			if len(args) == 0 {
				return fn(nil), nil
			}
			return fn(args[0]), nil
		}, true
	case func(string) string:
		if fn == nil {
			return nil, false
		}
		return func(args ...any) (any, error) {
			if len(args) == 0 {
				return fn(""), nil
			}
			s, ok := args[0].(string)
			if !ok {
				s = fmt.Sprint(args[0])
			}
			return fn(s), nil
		}, true
	default:
		return nil, false
	}
}
