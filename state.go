package component

import (
	"fmt"
	"sort"

	"go.uber.org/zap"
)

// PropSpec declares a component prop.
type PropSpec struct {
	Default   any
	Required  bool
	Validator func(value any) bool
}

type computedGetter func(vm *Instance) (any, error)

type stateInitializer struct {
	diagnostics Diagnostics
	evaluator   Evaluator
	cache       ProgramCache
	functions   *FunctionRegistry
	logger      EvaluatorLogger
}

func newStateInitializer(rt *Runtime) *stateInitializer {
	logger := rt.cfg.logger
	if logger == nil {
		logger = noopEvaluatorLogger{}
	}
	return &stateInitializer{
		diagnostics: rt.diagnostics,
		evaluator:   rt.cfg.evaluator,
		cache:       rt.cfg.programCache,
		functions:   rt.cfg.functions,
		logger:      logger,
	}
}

// Init initializes props, methods, data and computed values in that order.
func (s *stateInitializer) Init(vm *Instance) error {
	vm.logger = s.logger
	if err := s.initProps(vm); err != nil {
		return err
	}
	if err := s.initMethods(vm); err != nil {
		return err
	}
	if err := s.initData(vm); err != nil {
		return err
	}
	return s.initComputed(vm)
}

func (s *stateInitializer) initProps(vm *Instance) error {
	specs, err := normalizeProps(vm.options.Value("props"))
	if err != nil {
		return err
	}
	vm.props = Options{}
	propsData := vm.options.PropsData()
	for _, name := range sortedKeys(specs) {
		spec := specs[name]
		value, ok := propsData[name]
		switch {
		case ok:
		case spec.Default != nil:
			value = resolveDefault(vm, spec.Default)
		case spec.Required:
			s.diagnostics.Warn("component: missing required prop",
				zap.String("prop", name),
				zap.Stringer("instance", vm),
			)
			continue
		default:
			continue
		}
		if spec.Validator != nil && !spec.Validator(value) {
			s.diagnostics.Warn("component: invalid prop value",
				zap.String("prop", name),
				zap.Stringer("instance", vm),
			)
		}
		vm.props[name] = value
	}
	return nil
}

func normalizeProps(value any) (map[string]PropSpec, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []string:
		specs := make(map[string]PropSpec, len(v))
		for _, name := range v {
			specs[name] = PropSpec{}
		}
		return specs, nil
	case []any:
		specs := make(map[string]PropSpec, len(v))
		for _, item := range v {
			name, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("component: props entries must be strings, got %T", item)
			}
			specs[name] = PropSpec{}
		}
		return specs, nil
	case map[string]any:
		return propsFromMap(v), nil
	case Options:
		return propsFromMap(v), nil
	default:
		return nil, fmt.Errorf("component: unsupported props option %T", value)
	}
}

func propsFromMap(entries map[string]any) map[string]PropSpec {
	specs := make(map[string]PropSpec, len(entries))
	for name, raw := range entries {
		switch entry := raw.(type) {
		case nil:
			specs[name] = PropSpec{}
		case PropSpec:
			specs[name] = entry
		case *PropSpec:
			specs[name] = *entry
		case map[string]any:
			required, _ := entry["required"].(bool)
			specs[name] = PropSpec{Default: entry["default"], Required: required}
		default:
			specs[name] = PropSpec{Default: entry}
		}
	}
	return specs
}

func (s *stateInitializer) initMethods(vm *Instance) error {
	methods := toStringMap(vm.options.Value("methods"))
	vm.methods = make(map[string]Method, len(methods))
	for _, name := range sortedKeys(methods) {
		method, ok := asMethod(methods[name])
		if !ok {
			s.diagnostics.Warn("component: method has unsupported type",
				zap.String("method", name),
				zap.String("type", fmt.Sprintf("%T", methods[name])),
			)
			continue
		}
		if _, clash := vm.props[name]; clash {
			s.diagnostics.Warn("component: method already defined as a prop",
				zap.String("method", name),
				zap.Stringer("instance", vm),
			)
		}
		vm.methods[name] = method
	}
	return nil
}

func asMethod(value any) (Method, bool) {
	switch fn := value.(type) {
	case Method:
		return fn, fn != nil
	case func(*Instance, ...any) (any, error):
		return Method(fn), fn != nil
	case func(*Instance) any:
		if fn == nil {
			return nil, false
		}
		return func(vm *Instance, _ ...any) (any, error) {
			return fn(vm), nil
		}, true
	default:
		return nil, false
	}
}

func (s *stateInitializer) initData(vm *Instance) error {
	var data Options
	switch source := vm.options.Value("data").(type) {
	case nil:
		data = Options{}
	case map[string]any:
		data = Options(source).clone()
	case Options:
		data = source.clone()
	case func(*Instance) Options:
		data = source(vm)
	case func(*Instance) map[string]any:
		data = source(vm)
	case func(*Instance) (Options, error):
		out, err := source(vm)
		if err != nil {
			return err
		}
		data = out
	default:
		s.diagnostics.Warn("component: data option has unsupported type",
			zap.String("type", fmt.Sprintf("%T", source)),
			zap.Stringer("instance", vm),
		)
		data = Options{}
	}
	if data == nil {
		data = Options{}
	}
	for _, key := range data.Keys() {
		if _, clash := vm.props[key]; clash {
			s.diagnostics.Warn("component: data key already declared as a prop",
				zap.String("key", key),
				zap.Stringer("instance", vm),
			)
		}
		if _, clash := vm.methods[key]; clash {
			s.diagnostics.Warn("component: data key already defined as a method",
				zap.String("key", key),
				zap.Stringer("instance", vm),
			)
		}
	}
	vm.data = data
	return nil
}

func (s *stateInitializer) initComputed(vm *Instance) error {
	entries := toStringMap(vm.options.Value("computed"))
	vm.computed = make(map[string]computedGetter, len(entries))
	if len(entries) == 0 {
		return nil
	}
	for _, name := range sortedKeys(entries) {
		if _, clash := vm.Get(name); clash {
			s.diagnostics.Warn("component: computed property shadows existing key",
				zap.String("key", name),
				zap.Stringer("instance", vm),
			)
		}
		getter, err := s.computedGetter(vm, name, entries[name])
		if err != nil {
			return err
		}
		vm.computed[name] = getter
	}
	return nil
}

func (s *stateInitializer) computedGetter(vm *Instance, name string, entry any) (computedGetter, error) {
	switch fn := entry.(type) {
	case func(*Instance) any:
		return func(vm *Instance) (any, error) { return fn(vm), nil }, nil
	case func(*Instance) (any, error):
		return fn, nil
	case string:
		evaluator, err := s.evaluatorFor(vm)
		if err != nil {
			return nil, err
		}
		rule, err := evaluator.Compile(fn)
		if err != nil {
			err = annotateEvaluation(err, EvaluationError{
				Component: vm.String(),
				Engine:    evaluatorEngineName(evaluator),
				Phase:     PhaseCompile,
				Expr:      fn,
			})
			return nil, fmt.Errorf("component: computed %q: %w", name, err)
		}
		return func(vm *Instance) (any, error) {
			return vm.runCompiled(rule, fn)
		}, nil
	default:
		return nil, fmt.Errorf("component: computed %q has unsupported type %T", name, entry)
	}
}

func (s *stateInitializer) evaluatorFor(vm *Instance) (Evaluator, error) {
	if vm.evaluator != nil {
		return vm.evaluator, nil
	}
	if s.evaluator != nil {
		vm.evaluator = s.evaluator
		return vm.evaluator, nil
	}

	registry := s.functions.Clone()
	if registry == nil {
		registry = NewFunctionRegistry()
	}
	filters := toStringMap(vm.options.Value("filters"))
	for _, name := range sortedKeys(filters) {
		fn, ok := asFunction(filters[name])
		if !ok {
			s.diagnostics.Warn("component: filter has unsupported type",
				zap.String("filter", name),
				zap.String("type", fmt.Sprintf("%T", filters[name])),
			)
			continue
		}
		registry.replace(name, fn)
	}

	evalOpts := []EvaluatorOption{EvaluatorFunctions(registry)}
	// Compiled programs bind the registry they were compiled with, so only
	// filter-free components share cached programs.
	if s.cache != nil && len(filters) == 0 {
		evalOpts = append(evalOpts, EvaluatorCache(namespacedCache{
			cache:  s.cache,
			prefix: fmt.Sprintf("ctor:%d/", vm.ctor.ID()),
		}))
	}
	vm.evaluator = NewExprEvaluator(evalOpts...)
	return vm.evaluator, nil
}

// Computed evaluates the computed property name. Values are not cached.
func (vm *Instance) Computed(name string) (any, error) {
	getter, ok := vm.computed[name]
	if !ok {
		return nil, fmt.Errorf("component: computed %q not defined on %s", name, vm)
	}
	return getter(vm)
}

// ComputedNames returns the computed property names sorted alphabetically.
func (vm *Instance) ComputedNames() []string {
	names := make([]string, 0, len(vm.computed))
	for name := range vm.computed {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
