package component

// VNode is the subset of a virtual node the builder reads.
type VNode struct {
	Tag              string
	Key              any
	Children         []*VNode
	ComponentOptions *VNodeComponentOptions
}

// VNodeComponentOptions carries the data a parent render hands to a child
// component.
type VNodeComponentOptions struct {
	Ctor      *Constructor
	PropsData map[string]any
	Listeners map[string]any
	Children  []*VNode
	Tag       string
}

// InternalOptions describes a child instance spawned by the framework
// during rendering. It is consumed once.
type InternalOptions struct {
	Parent          *Instance
	ParentVnode     *VNode
	Render          any
	StaticRenderFns any
}

// Builder produces instance descriptors.
type Builder struct {
	resolver *Resolver
	merger   Merger
}

// NewBuilder builds a Builder. A nil merger falls back to the default
// strategy merger.
func NewBuilder(resolver *Resolver, merger Merger) *Builder {
	if merger == nil {
		merger = NewStrategyMerger()
	}
	if resolver == nil {
		resolver = NewResolver(merger, nil)
	}
	return &Builder{resolver: resolver, merger: merger}
}

// Build returns the descriptor for a new instance of ctor. A non-nil
// internal selects the fast path: the descriptor reads through to the
// constructor's resolved options and only the parent-supplied fields are set
// locally. Otherwise the resolved options are merged with options, with vm
// passed to the merger.
func (b *Builder) Build(ctor *Constructor, options Options, internal *InternalOptions, vm *Instance) *Descriptor {
	if internal != nil {
		return b.buildInternal(ctor, internal)
	}
	if options == nil {
		options = Options{}
	}
	merged := b.merger.Merge(b.resolver.Resolve(ctor), options, vm)
	return newDescriptor(merged, nil)
}

func (b *Builder) buildInternal(ctor *Constructor, internal *InternalOptions) *Descriptor {
	base := b.resolver.Resolve(ctor)
	if base == nil {
		base = Options{}
	}
	local := make(Options, 8)
	if internal.Parent != nil {
		local["parent"] = internal.Parent
	}
	if vnode := internal.ParentVnode; vnode != nil {
		local["_parentVnode"] = vnode
		if co := vnode.ComponentOptions; co != nil {
			local["propsData"] = co.PropsData
			local["_parentListeners"] = co.Listeners
			local["_renderChildren"] = co.Children
			local["_componentTag"] = co.Tag
		}
	}
	if internal.Render != nil {
		local["render"] = internal.Render
		local["staticRenderFns"] = internal.StaticRenderFns
	}
	return newDescriptor(local, base)
}
