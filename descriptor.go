package component

import (
	"reflect"
	"sort"
)

// Descriptor is the live option set attached to one instance. Reads check
// the local layer first and fall through to the base layer, which for
// internally created children is the constructor's resolved options.
type Descriptor struct {
	local Options
	base  Options
}

func newDescriptor(local, base Options) *Descriptor {
	if local == nil {
		local = Options{}
	}
	return &Descriptor{local: local, base: base}
}

// Get returns the value for key and whether any layer holds it.
func (d *Descriptor) Get(key string) (any, bool) {
	if d == nil {
		return nil, false
	}
	if value, ok := d.local[key]; ok {
		return value, true
	}
	value, ok := d.base[key]
	return value, ok
}

// Value returns the value for key, or nil.
func (d *Descriptor) Value(key string) any {
	value, _ := d.Get(key)
	return value
}

// Has reports whether key is present in either layer.
func (d *Descriptor) Has(key string) bool {
	_, ok := d.Get(key)
	return ok
}

// HasOwn reports whether key is set on the local layer.
func (d *Descriptor) HasOwn(key string) bool {
	if d == nil {
		return false
	}
	_, ok := d.local[key]
	return ok
}

// Set stores value on the local layer, shadowing the base.
func (d *Descriptor) Set(key string, value any) {
	if d == nil {
		return
	}
	d.local[key] = value
}

// Keys returns the union of local and base keys, sorted.
func (d *Descriptor) Keys() []string {
	if d == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(d.local)+len(d.base))
	keys := make([]string, 0, len(d.local)+len(d.base))
	for _, layer := range []Options{d.local, d.base} {
		for key := range layer {
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

// Own returns a copy of the local layer.
func (d *Descriptor) Own() Options {
	if d == nil {
		return nil
	}
	return d.local.clone()
}

// Base returns the fallback layer. It is shared with the constructor and
// must not be mutated.
func (d *Descriptor) Base() Options {
	if d == nil {
		return nil
	}
	return d.base
}

// Internal reports whether the descriptor was built on the fast path.
func (d *Descriptor) Internal() bool {
	return d != nil && d.base != nil
}

// Flatten returns a new map with base entries overlaid by local entries.
func (d *Descriptor) Flatten() Options {
	if d == nil {
		return nil
	}
	out := make(Options, len(d.local)+len(d.base))
	for key, value := range d.base {
		out[key] = value
	}
	for key, value := range d.local {
		out[key] = value
	}
	return out
}

// Name returns the component name.
func (d *Descriptor) Name() string {
	name, _ := d.Value("name").(string)
	return name
}

// Parent returns the parent instance recorded on the descriptor.
func (d *Descriptor) Parent() *Instance {
	parent, _ := d.Value("parent").(*Instance)
	return parent
}

// PropsData returns the raw prop values supplied by the parent.
func (d *Descriptor) PropsData() map[string]any {
	return toStringMap(d.Value("propsData"))
}

func toStringMap(value any) map[string]any {
	switch v := value.(type) {
	case map[string]any:
		return v
	case Options:
		return v
	case nil:
		return nil
	}
	return copyStringKeyed(value)
}

// copyStringKeyed copies a map with string keys, such as
// map[string]*Constructor, into a fresh map[string]any. Other values yield nil.
func copyStringKeyed(value any) map[string]any {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out
}
