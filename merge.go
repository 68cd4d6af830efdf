package component

import "github.com/goliatone/go-component/layering"

// Merger combines base options with override options into a new Options
// value. vm is the instance being built, or nil when merging constructor
// options. Implementations must not mutate their inputs.
type Merger interface {
	Merge(base, override Options, vm *Instance) Options
}

// MergerFunc adapts a function to Merger.
type MergerFunc func(base, override Options, vm *Instance) Options

// Merge implements Merger.
func (f MergerFunc) Merge(base, override Options, vm *Instance) Options {
	return f(base, override, vm)
}

// StrategyMerger merges options key by key using a layering.Table. The
// "extends" and "mixins" keys of the override are folded into the base
// before the override itself is applied.
type StrategyMerger struct {
	table layering.Table
}

// NewStrategyMerger builds a merger over the default strategy table.
func NewStrategyMerger() *StrategyMerger {
	return &StrategyMerger{table: layering.DefaultTable()}
}

// WithStrategy returns a copy of the merger with key bound to strategy.
func (m *StrategyMerger) WithStrategy(key string, strategy layering.Strategy) *StrategyMerger {
	return &StrategyMerger{table: m.strategies().With(key, strategy)}
}

// Strategy reports the strategy used for key.
func (m *StrategyMerger) Strategy(key string) layering.Strategy {
	return m.strategies().Lookup(key)
}

// Merge implements Merger.
func (m *StrategyMerger) Merge(base, override Options, vm *Instance) Options {
	parent := base
	if ext := asOptions(override["extends"]); ext != nil {
		parent = m.Merge(parent, ext, vm)
	}
	for _, mixin := range mixinList(override["mixins"]) {
		parent = m.Merge(parent, mixin, vm)
	}
	return Options(layering.Merge(m.strategies(), parent, withoutComposition(override)))
}

func (m *StrategyMerger) strategies() layering.Table {
	if m == nil || m.table == nil {
		return layering.DefaultTable()
	}
	return m.table
}

func withoutComposition(o Options) Options {
	_, hasExtends := o["extends"]
	_, hasMixins := o["mixins"]
	if !hasExtends && !hasMixins {
		return o
	}
	out := o.clone()
	delete(out, "extends")
	delete(out, "mixins")
	return out
}

func asOptions(value any) Options {
	switch v := value.(type) {
	case Options:
		return v
	case map[string]any:
		return Options(v)
	case *Constructor:
		if v == nil {
			return nil
		}
		return v.Options()
	default:
		return nil
	}
}

func mixinList(value any) []Options {
	switch v := value.(type) {
	case nil:
		return nil
	case []Options:
		return v
	case []map[string]any:
		out := make([]Options, 0, len(v))
		for _, item := range v {
			out = append(out, Options(item))
		}
		return out
	case []any:
		out := make([]Options, 0, len(v))
		for _, item := range v {
			if opts := asOptions(item); opts != nil {
				out = append(out, opts)
			}
		}
		return out
	default:
		if opts := asOptions(v); opts != nil {
			return []Options{opts}
		}
		return nil
	}
}
