package component

import (
	"fmt"
	"sync/atomic"
)

var cidCounter atomic.Uint64

// Constructor is one node of an extension chain. Its options are the
// resolved static configuration shared by every instance it creates; they
// are recomputed by the Resolver whenever the super constructor's resolved
// options change identity.
type Constructor struct {
	rt            *Runtime
	cid           uint64
	super         *Constructor
	options       Options
	extendOptions Options
	cache         resolution
}

// resolution holds the memoization state owned by a single constructor.
type resolution struct {
	// superOptions is the super constructor's resolved options last seen.
	superOptions Options
	// sealed is a shallow snapshot of options taken after the last
	// resolution, used to detect late in-place modifications.
	sealed Options
}

// ID returns the process-wide constructor id.
func (c *Constructor) ID() uint64 {
	if c == nil {
		return 0
	}
	return c.cid
}

// Super returns the parent constructor, nil for a root.
func (c *Constructor) Super() *Constructor {
	if c == nil {
		return nil
	}
	return c.super
}

// Runtime returns the runtime the constructor belongs to.
func (c *Constructor) Runtime() *Runtime {
	if c == nil {
		return nil
	}
	return c.rt
}

// Options returns the constructor's current static options without
// resolving the chain. Use Resolve to obtain up-to-date options.
func (c *Constructor) Options() Options {
	if c == nil {
		return nil
	}
	return c.options
}

// ExtendOptions returns the options the constructor was extended with.
func (c *Constructor) ExtendOptions() Options {
	if c == nil {
		return nil
	}
	return c.extendOptions
}

// Resolve returns the constructor's resolved options, recomputing them when
// an ancestor changed.
func (c *Constructor) Resolve() Options {
	if c == nil {
		return nil
	}
	return c.rt.resolver.Resolve(c)
}

// Name returns the resolved component name, or an empty string.
func (c *Constructor) Name() string {
	return c.Resolve().Name()
}

// Depth returns the number of ancestors.
func (c *Constructor) Depth() int {
	depth := 0
	for node := c.Super(); node != nil; node = node.super {
		depth++
	}
	return depth
}

// Root returns the first constructor of the chain.
func (c *Constructor) Root() *Constructor {
	node := c
	for node != nil && node.super != nil {
		node = node.super
	}
	return node
}

func (c *Constructor) String() string {
	if c == nil {
		return "<nil>"
	}
	if name := c.options.Name(); name != "" {
		return fmt.Sprintf("%s#%d", name, c.cid)
	}
	return fmt.Sprintf("anonymous#%d", c.cid)
}

// Extend creates a sub-constructor whose options are the merge of c's
// resolved options with extendOptions. The map is copied; later changes to
// the caller's map are not observed.
func (c *Constructor) Extend(extendOptions Options) *Constructor {
	if c == nil {
		return nil
	}
	return c.rt.resolver.extend(c, extendOptions)
}

// Mixin merges mixin into the constructor. Descendants observe the change on
// their next resolution.
func (c *Constructor) Mixin(mixin Options) *Constructor {
	if c == nil {
		return nil
	}
	c.rt.resolver.mixin(c, mixin)
	return c
}

// Set assigns a top-level option in place. Descendants pick the value up on
// the next resolution triggered by an upstream change or Invalidate.
func (c *Constructor) Set(key string, value any) *Constructor {
	if c == nil {
		return nil
	}
	c.rt.resolver.set(c, key, value)
	return c
}

// Component registers a component under name. Options definitions are turned
// into constructors extending the chain root, like the global registration
// API; constructors are stored as is.
func (c *Constructor) Component(name string, definition any) *Constructor {
	if c == nil {
		return nil
	}
	if opts := definitionOptions(definition); opts != nil {
		if opts.Name() == "" {
			opts = opts.clone()
			opts["name"] = name
		}
		definition = c.Root().Extend(opts)
	}
	c.rt.resolver.register(c, "components", name, definition)
	return c
}

// Directive registers a directive definition under name.
func (c *Constructor) Directive(name string, definition any) *Constructor {
	if c == nil {
		return nil
	}
	c.rt.resolver.register(c, "directives", name, definition)
	return c
}

// Filter registers a filter function under name. Filters are callable from
// computed expressions.
func (c *Constructor) Filter(name string, fn any) *Constructor {
	if c == nil {
		return nil
	}
	c.rt.resolver.register(c, "filters", name, fn)
	return c
}

// New constructs a top-level instance using the full merge path.
func (c *Constructor) New(options Options) (*Instance, error) {
	if c == nil {
		return nil, ErrNilConstructor
	}
	return c.rt.driver.Construct(&Instance{ctor: c}, options, nil)
}

// NewChild constructs an internal child instance using the fast path.
func (c *Constructor) NewChild(internal InternalOptions) (*Instance, error) {
	if c == nil {
		return nil, ErrNilConstructor
	}
	return c.rt.driver.Construct(&Instance{ctor: c}, nil, &internal)
}

func definitionOptions(definition any) Options {
	switch def := definition.(type) {
	case Options:
		return def
	case map[string]any:
		return Options(def)
	default:
		return nil
	}
}
