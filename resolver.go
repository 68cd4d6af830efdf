package component

import (
	"reflect"
	"sync"
)

// ResolverObserver receives resolution cache notifications.
type ResolverObserver interface {
	ResolveHit(c *Constructor)
	ResolveMiss(c *Constructor)
}

type noopObserver struct{}

func (noopObserver) ResolveHit(*Constructor)  {}
func (noopObserver) ResolveMiss(*Constructor) {}

type observers []ResolverObserver

func (o observers) ResolveHit(c *Constructor) {
	for _, observer := range o {
		observer.ResolveHit(c)
	}
}

func (o observers) ResolveMiss(c *Constructor) {
	for _, observer := range o {
		observer.ResolveMiss(c)
	}
}

// Resolver computes and caches the effective static options of every
// constructor in an extension chain. Cache state lives on each Constructor;
// the Resolver serializes access to it.
type Resolver struct {
	mu       sync.Mutex
	merger   Merger
	observer ResolverObserver
}

// NewResolver builds a resolver. A nil merger falls back to the default
// strategy merger.
func NewResolver(merger Merger, observer ResolverObserver) *Resolver {
	if merger == nil {
		merger = NewStrategyMerger()
	}
	if observer == nil {
		observer = noopObserver{}
	}
	return &Resolver{merger: merger, observer: observer}
}

// Resolve returns the effective options of c. When the super constructor's
// resolved options have the same identity as the cached ones, the cached
// result is returned unchanged. Otherwise the options are recomputed, late
// modifications since the last seal are folded into the extend options, and
// the constructor self-registers under its name.
func (r *Resolver) Resolve(c *Constructor) Options {
	if c == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resolve(c)
}

// Invalidate forces the next Resolve of c, and of every descendant, to
// recompute.
func (r *Resolver) Invalidate(c *Constructor) {
	if c == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.super == nil {
		c.options = c.options.clone()
		return
	}
	c.cache.superOptions = nil
}

// Stale reports whether the next Resolve of c would recompute.
func (r *Resolver) Stale(c *Constructor) bool {
	if c == nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stale(c)
}

func (r *Resolver) stale(c *Constructor) bool {
	if c.super == nil {
		return false
	}
	if r.stale(c.super) {
		return true
	}
	return !sameOptions(c.super.options, c.cache.superOptions)
}

func (r *Resolver) resolve(c *Constructor) Options {
	if c.super == nil {
		return c.options
	}

	superOptions := r.resolve(c.super)
	if sameOptions(superOptions, c.cache.superOptions) && c.options != nil {
		r.observer.ResolveHit(c)
		return c.options
	}

	c.cache.superOptions = superOptions
	if modified := modifiedOptions(c.options, c.cache.sealed); len(modified) > 0 {
		if c.extendOptions == nil {
			c.extendOptions = Options{}
		}
		for key, value := range modified {
			c.extendOptions[key] = value
		}
	}
	c.options = r.merger.Merge(superOptions, c.extendOptions, nil)
	r.seal(c)
	r.observer.ResolveMiss(c)
	return c.options
}

func (r *Resolver) extend(super *Constructor, extendOptions Options) *Constructor {
	r.mu.Lock()
	defer r.mu.Unlock()

	ext := extendOptions.clone()
	if ext == nil {
		ext = Options{}
	}
	sub := &Constructor{
		rt:            super.rt,
		cid:           cidCounter.Add(1),
		super:         super,
		extendOptions: ext,
	}
	superOptions := r.resolve(super)
	sub.cache.superOptions = superOptions
	sub.options = r.merger.Merge(superOptions, ext, nil)
	r.seal(sub)
	return sub
}

func (r *Resolver) mixin(c *Constructor, mixin Options) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c.super == nil {
		c.options = r.merger.Merge(c.options, mixin, nil)
		return
	}
	c.extendOptions = r.merger.Merge(c.extendOptions, mixin, nil)
	superOptions := r.resolve(c.super)
	c.cache.superOptions = superOptions
	c.options = r.merger.Merge(superOptions, c.extendOptions, nil)
	r.seal(c)
}

func (r *Resolver) set(c *Constructor, key string, value any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.options == nil {
		c.options = Options{}
	}
	c.options[key] = value
}

// register stores definition under asset[name]. The asset map is replaced
// rather than mutated so the change is visible to the late-modification diff.
func (r *Resolver) register(c *Constructor, asset, name string, definition any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.options == nil {
		c.options = Options{}
	}
	registry := Options(toStringMap(c.options[asset])).clone()
	if registry == nil {
		registry = Options{}
	}
	registry[name] = definition
	c.options[asset] = map[string]any(registry)
}

// seal self-registers the constructor and snapshots its options.
func (r *Resolver) seal(c *Constructor) {
	if name := c.options.Name(); name != "" {
		registry := c.options.Components()
		if registry == nil {
			registry = map[string]any{}
		}
		registry[name] = c
		c.options["components"] = registry
	}
	c.cache.sealed = c.options.clone()
}

// modifiedOptions returns the entries of latest whose value is not identical
// to the value under the same key in sealed. Nested maps mutated in place
// keep their identity and are not reported.
func modifiedOptions(latest, sealed Options) Options {
	var modified Options
	for key, value := range latest {
		if identical(value, sealed[key]) {
			continue
		}
		if modified == nil {
			modified = Options{}
		}
		modified[key] = value
	}
	return modified
}

func sameOptions(a, b Options) bool {
	return reflect.ValueOf(a).UnsafePointer() == reflect.ValueOf(b).UnsafePointer()
}

// identical compares two option values by identity: reference kinds compare
// their pointers, comparable values compare with ==.
func identical(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	switch va.Kind() {
	case reflect.Map, reflect.Pointer, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return va.UnsafePointer() == vb.UnsafePointer()
	case reflect.Slice:
		return va.UnsafePointer() == vb.UnsafePointer() && va.Len() == vb.Len()
	}
	if va.Comparable() && vb.Comparable() {
		return va.Equal(vb)
	}
	return false
}
