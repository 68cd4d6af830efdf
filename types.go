package component

import (
	"sort"

	"github.com/goliatone/go-component/layering"
	"github.com/goliatone/go-component/pkg/activity"
)

// Options is a component option mapping. Two Options values are the same
// options when they share the same underlying map; contents are never compared.
type Options map[string]any

// Keys returns the option keys sorted alphabetically.
func (o Options) Keys() []string {
	keys := make([]string, 0, len(o))
	for key := range o {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Name returns the string stored under "name", if any.
func (o Options) Name() string {
	name, _ := o["name"].(string)
	return name
}

// Components returns the component registry stored under "components".
// A registry held in a typed map such as map[string]*Constructor is returned
// as a copy.
func (o Options) Components() map[string]any {
	return toStringMap(o["components"])
}

func (o Options) clone() Options {
	return Options(layering.Copy(o))
}

// Mode toggles development-only behaviour such as warnings and performance
// marks. Core resolution never branches on it.
type Mode int

const (
	// ModeDevelopment emits warnings through Diagnostics.
	ModeDevelopment Mode = iota
	// ModeProduction silences warnings.
	ModeProduction
)

func (m Mode) String() string {
	if m == ModeProduction {
		return "production"
	}
	return "development"
}

// Option configures a Runtime.
type Option func(*runtimeConfig)

type runtimeConfig struct {
	mode            Mode
	performance     bool
	diagnostics     Diagnostics
	merger          Merger
	collaborators   Collaborators
	instrumentation Instrumentation
	observer        ResolverObserver
	evaluator       Evaluator
	programCache    ProgramCache
	functions       *FunctionRegistry
	logger          EvaluatorLogger
	activityHooks   activity.Hooks
	activityChannel string
}

func applyOptions(opts []Option) runtimeConfig {
	cfg := runtimeConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithMode sets the runtime mode.
func WithMode(mode Mode) Option {
	return func(cfg *runtimeConfig) {
		cfg.mode = mode
	}
}

// WithPerformance enables Instrumentation around construction in development
// mode.
func WithPerformance(enabled bool) Option {
	return func(cfg *runtimeConfig) {
		cfg.performance = enabled
	}
}

// WithDiagnostics configures the warning sink.
func WithDiagnostics(d Diagnostics) Option {
	return func(cfg *runtimeConfig) {
		cfg.diagnostics = d
	}
}

// WithMerger replaces the default strategy merger.
func WithMerger(m Merger) Option {
	return func(cfg *runtimeConfig) {
		cfg.merger = m
	}
}

// WithCollaborators overrides the initialization collaborators. Nil fields
// keep their defaults.
func WithCollaborators(c Collaborators) Option {
	return func(cfg *runtimeConfig) {
		cfg.collaborators = c
	}
}

// WithInstrumentation configures the mark/measure sink.
func WithInstrumentation(i Instrumentation) Option {
	return func(cfg *runtimeConfig) {
		cfg.instrumentation = i
	}
}

// WithResolverObserver receives resolver cache hit/miss notifications.
func WithResolverObserver(o ResolverObserver) Option {
	return func(cfg *runtimeConfig) {
		cfg.observer = o
	}
}

// WithEvaluator configures the engine used for computed expressions.
func WithEvaluator(e Evaluator) Option {
	return func(cfg *runtimeConfig) {
		cfg.evaluator = e
	}
}

// WithProgramCache shares compiled expression programs across instances.
func WithProgramCache(cache ProgramCache) Option {
	return func(cfg *runtimeConfig) {
		cfg.programCache = cache
	}
}

// WithEvaluatorLogger attaches an evaluator logger.
func WithEvaluatorLogger(logger EvaluatorLogger) Option {
	return func(cfg *runtimeConfig) {
		if logger == nil {
			cfg.logger = noopEvaluatorLogger{}
			return
		}
		cfg.logger = logger
	}
}
