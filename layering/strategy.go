package layering

// Strategy selects how a single option key combines a base value with an
// override value.
type Strategy int

const (
	// StrategyOverrideWins keeps the override value when present, else the base.
	StrategyOverrideWins Strategy = iota
	// StrategyConcat appends override entries after base entries. Used for
	// lifecycle hooks so base hooks run first.
	StrategyConcat
	// StrategyShallowUnion unions two maps into a fresh map, the override
	// winning per key.
	StrategyShallowUnion
)

func (s Strategy) String() string {
	switch s {
	case StrategyConcat:
		return "concat"
	case StrategyShallowUnion:
		return "shallow-union"
	default:
		return "override-wins"
	}
}

// ParseStrategy converts a string representation into a Strategy. Unknown
// values map to StrategyOverrideWins.
func ParseStrategy(value string) Strategy {
	switch value {
	case "concat", "CONCAT":
		return StrategyConcat
	case "shallow-union", "union", "SHALLOW_UNION":
		return StrategyShallowUnion
	default:
		return StrategyOverrideWins
	}
}

// LifecycleHooks lists the hook keys merged with StrategyConcat.
var LifecycleHooks = []string{
	"beforeCreate",
	"created",
	"beforeMount",
	"mounted",
	"beforeUpdate",
	"updated",
	"activated",
	"deactivated",
	"beforeDestroy",
	"destroyed",
	"errorCaptured",
	"serverPrefetch",
}

// AssetKeys lists keys merged with StrategyShallowUnion.
var AssetKeys = []string{
	"data",
	"methods",
	"computed",
	"props",
	"inject",
	"watch",
	"components",
	"directives",
	"filters",
	"provide",
}

var defaultStrategies = buildDefaultStrategies()

func buildDefaultStrategies() map[string]Strategy {
	table := make(map[string]Strategy, len(LifecycleHooks)+len(AssetKeys))
	for _, key := range LifecycleHooks {
		table[key] = StrategyConcat
	}
	for _, key := range AssetKeys {
		table[key] = StrategyShallowUnion
	}
	return table
}

// Table maps option keys to strategies. Keys missing from the table use
// StrategyOverrideWins.
type Table map[string]Strategy

// DefaultTable returns a copy of the built-in strategy table.
func DefaultTable() Table {
	out := make(Table, len(defaultStrategies))
	for key, strategy := range defaultStrategies {
		out[key] = strategy
	}
	return out
}

// Lookup returns the strategy for key.
func (t Table) Lookup(key string) Strategy {
	if t == nil {
		return defaultStrategies[key]
	}
	return t[key]
}

// With returns a copy of t with key bound to strategy.
func (t Table) With(key string, strategy Strategy) Table {
	out := make(Table, len(t)+1)
	for k, s := range t {
		out[k] = s
	}
	out[key] = strategy
	return out
}
