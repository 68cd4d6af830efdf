package component

import (
	"fmt"
	"sort"

	"go.uber.org/zap"
)

// InjectSpec describes one injected value.
type InjectSpec struct {
	From    string
	Default any
}

type injectionsInitializer struct {
	diagnostics Diagnostics
}

// Init resolves the "inject" option by walking up the parent chain. It runs
// before state so data and computed values can read injected values.
func (i injectionsInitializer) Init(vm *Instance) error {
	specs, err := normalizeInject(vm.options.Value("inject"))
	if err != nil {
		return err
	}
	if len(specs) == 0 {
		return nil
	}
	vm.injected = Options{}
	for _, alias := range sortedKeys(specs) {
		spec := specs[alias]
		if value, ok := lookupProvided(vm.parent, spec.From); ok {
			vm.injected[alias] = value
			continue
		}
		if spec.Default != nil {
			vm.injected[alias] = resolveDefault(vm, spec.Default)
			continue
		}
		i.diagnostics.Warn("component: injection not found",
			zap.String("key", spec.From),
			zap.Stringer("instance", vm),
		)
	}
	return nil
}

func lookupProvided(source *Instance, key string) (any, bool) {
	for node := source; node != nil; node = node.parent {
		if value, ok := node.provided[key]; ok {
			return value, true
		}
	}
	return nil, false
}

func normalizeInject(value any) (map[string]InjectSpec, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []string:
		specs := make(map[string]InjectSpec, len(v))
		for _, key := range v {
			specs[key] = InjectSpec{From: key}
		}
		return specs, nil
	case []any:
		specs := make(map[string]InjectSpec, len(v))
		for _, item := range v {
			key, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("component: inject entries must be strings, got %T", item)
			}
			specs[key] = InjectSpec{From: key}
		}
		return specs, nil
	case map[string]any:
		return injectFromMap(v)
	case Options:
		return injectFromMap(v)
	default:
		return nil, fmt.Errorf("component: unsupported inject option %T", value)
	}
}

func injectFromMap(entries map[string]any) (map[string]InjectSpec, error) {
	specs := make(map[string]InjectSpec, len(entries))
	for alias, raw := range entries {
		switch entry := raw.(type) {
		case nil:
			specs[alias] = InjectSpec{From: alias}
		case string:
			specs[alias] = InjectSpec{From: entry}
		case InjectSpec:
			if entry.From == "" {
				entry.From = alias
			}
			specs[alias] = entry
		case map[string]any:
			spec := InjectSpec{From: alias, Default: entry["default"]}
			if from, ok := entry["from"].(string); ok && from != "" {
				spec.From = from
			}
			specs[alias] = spec
		default:
			return nil, fmt.Errorf("component: unsupported inject entry %q of type %T", alias, raw)
		}
	}
	return specs, nil
}

// initProvide evaluates the "provide" option after state so provided values
// may reference instance data.
func initProvide(vm *Instance) error {
	switch provide := vm.options.Value("provide").(type) {
	case nil:
		return nil
	case func(*Instance) Options:
		vm.provided = provide(vm)
	case func(*Instance) map[string]any:
		vm.provided = provide(vm)
	case func(*Instance) (Options, error):
		provided, err := provide(vm)
		if err != nil {
			return err
		}
		vm.provided = provided
	case map[string]any:
		vm.provided = Options(provide).clone()
	case Options:
		vm.provided = provide.clone()
	default:
		return fmt.Errorf("component: unsupported provide option %T", provide)
	}
	return nil
}

func resolveDefault(vm *Instance, value any) any {
	if factory, ok := value.(func(*Instance) any); ok {
		return factory(vm)
	}
	return value
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
