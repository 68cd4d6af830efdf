package component

import (
	"sync"

	"github.com/goliatone/go-component/pkg/activity"
)

// Runtime owns the resolver, builder and driver shared by a family of
// constructors.
type Runtime struct {
	cfg         runtimeConfig
	diagnostics Diagnostics
	merger      Merger
	resolver    *Resolver
	builder     *Builder
	driver      *Driver
	emitter     *activity.Emitter
	base        *Constructor
	baseOnce    sync.Once
}

// NewRuntime builds a runtime from opts.
func NewRuntime(opts ...Option) *Runtime {
	cfg := applyOptions(opts)

	sink := cfg.diagnostics
	if sink == nil {
		sink = ZapDiagnostics{}
	}
	diagnostics := gatedDiagnostics{mode: cfg.mode, sink: sink}

	merger := cfg.merger
	if merger == nil {
		merger = NewStrategyMerger()
	}

	emitter := activity.NewEmitter(cfg.activityHooks, activity.Config{
		Enabled: len(cfg.activityHooks) > 0,
		Channel: cfg.activityChannel,
	})

	chain := observers{}
	if cfg.observer != nil {
		chain = append(chain, cfg.observer)
	}
	if emitter.Enabled() {
		chain = append(chain, activityObserver{emitter: emitter, diagnostics: diagnostics})
	}

	rt := &Runtime{
		cfg:         cfg,
		diagnostics: diagnostics,
		merger:      merger,
		emitter:     emitter,
	}
	rt.resolver = NewResolver(merger, chain)
	rt.builder = NewBuilder(rt.resolver, merger)
	rt.driver = newDriver(rt)
	return rt
}

// NewRoot creates a root constructor with the given static options. The map
// is used as is and becomes the root's resolved options.
func (rt *Runtime) NewRoot(options Options) *Constructor {
	if options == nil {
		options = Options{}
	}
	return &Constructor{
		rt:      rt,
		cid:     cidCounter.Add(1),
		options: options,
	}
}

// Resolver returns the runtime's resolver.
func (rt *Runtime) Resolver() *Resolver {
	return rt.resolver
}

// Builder returns the runtime's options builder.
func (rt *Runtime) Builder() *Builder {
	return rt.builder
}

// Driver returns the runtime's lifecycle driver.
func (rt *Runtime) Driver() *Driver {
	return rt.driver
}

// Merger returns the merger used for constructor and instance options.
func (rt *Runtime) Merger() Merger {
	return rt.merger
}

// Mode returns the configured mode.
func (rt *Runtime) Mode() Mode {
	return rt.cfg.mode
}

// Diagnostics returns the mode-gated warning sink.
func (rt *Runtime) Diagnostics() Diagnostics {
	return rt.diagnostics
}

// fallbackConstructor is used when an instance is constructed without a
// constructor.
func (rt *Runtime) fallbackConstructor() *Constructor {
	rt.baseOnce.Do(func() {
		rt.base = rt.NewRoot(nil)
	})
	return rt.base
}
