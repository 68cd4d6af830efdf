package layering

import "reflect"

// Merge combines base and override into a new map using the strategy bound to
// each key in table. Neither input is mutated. A key whose value is nil is
// treated as absent.
func Merge(table Table, base, override map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(override))
	for key, value := range base {
		if value == nil {
			continue
		}
		if other, ok := override[key]; ok && other != nil {
			continue
		}
		out[key] = mergeField(table.Lookup(key), value, nil)
	}
	for key, value := range override {
		if value == nil {
			continue
		}
		out[key] = mergeField(table.Lookup(key), base[key], value)
	}
	return out
}

// Copy returns a shallow copy of m. Values keep their identity.
func Copy(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for key, value := range m {
		out[key] = value
	}
	return out
}

func mergeField(strategy Strategy, base, override any) any {
	switch strategy {
	case StrategyConcat:
		return concat(base, override)
	case StrategyShallowUnion:
		return union(base, override)
	default:
		if override != nil {
			return override
		}
		return base
	}
}

func concat(base, override any) any {
	if base == nil && override == nil {
		return nil
	}
	if override == nil {
		return cloneSlice(asSlice(reflect.ValueOf(base))).Interface()
	}
	if base == nil {
		return cloneSlice(asSlice(reflect.ValueOf(override))).Interface()
	}

	strong := asSlice(reflect.ValueOf(override))
	weak := asSlice(reflect.ValueOf(base))

	sliceType := reflect.TypeOf([]any(nil))
	switch {
	case elementsAssignable(strong, weak.Type().Elem()):
		sliceType = weak.Type()
	case elementsAssignable(weak, strong.Type().Elem()):
		sliceType = strong.Type()
	}

	result := reflect.MakeSlice(sliceType, 0, weak.Len()+strong.Len())
	result = appendElements(result, weak)
	result = appendElements(result, strong)
	return result.Interface()
}

func asSlice(v reflect.Value) reflect.Value {
	if v.Kind() == reflect.Slice {
		return v
	}
	out := reflect.MakeSlice(reflect.SliceOf(v.Type()), 1, 1)
	out.Index(0).Set(v)
	return out
}

func cloneSlice(v reflect.Value) reflect.Value {
	if v.IsNil() {
		return reflect.MakeSlice(v.Type(), 0, 0)
	}
	out := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
	reflect.Copy(out, v)
	return out
}

func elementsAssignable(v reflect.Value, elem reflect.Type) bool {
	for i := 0; i < v.Len(); i++ {
		item := unwrap(v.Index(i))
		if !item.IsValid() {
			if !nillable(elem) {
				return false
			}
			continue
		}
		if !item.Type().AssignableTo(elem) {
			return false
		}
	}
	return true
}

func appendElements(dst, src reflect.Value) reflect.Value {
	elem := dst.Type().Elem()
	for i := 0; i < src.Len(); i++ {
		item := unwrap(src.Index(i))
		if !item.IsValid() {
			dst = reflect.Append(dst, reflect.Zero(elem))
			continue
		}
		if elem.Kind() != reflect.Interface && item.Type() != elem {
			item = item.Convert(elem)
		}
		dst = reflect.Append(dst, item)
	}
	return dst
}

func unwrap(v reflect.Value) reflect.Value {
	for v.Kind() == reflect.Interface {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

func nillable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return true
	default:
		return false
	}
}

func union(base, override any) any {
	weak := reflect.ValueOf(base)
	strong := reflect.ValueOf(override)

	if override == nil {
		if weak.Kind() == reflect.Map {
			return cloneMap(weak).Interface()
		}
		return base
	}
	if strong.Kind() != reflect.Map {
		return override
	}
	if base == nil || weak.Kind() != reflect.Map {
		return cloneMap(strong).Interface()
	}

	mapType := strong.Type()
	if weak.Type() != strong.Type() {
		if weak.Type().Key().Kind() != reflect.String || strong.Type().Key().Kind() != reflect.String {
			return cloneMap(strong).Interface()
		}
		mapType = reflect.TypeOf(map[string]any(nil))
	}

	result := reflect.MakeMapWithSize(mapType, weak.Len()+strong.Len())
	copyEntries(result, weak)
	copyEntries(result, strong)
	return result.Interface()
}

func cloneMap(v reflect.Value) reflect.Value {
	out := reflect.MakeMapWithSize(v.Type(), v.Len())
	copyEntries(out, v)
	return out
}

func copyEntries(dst, src reflect.Value) {
	keyType := dst.Type().Key()
	elemType := dst.Type().Elem()
	iter := src.MapRange()
	for iter.Next() {
		key := iter.Key()
		if key.Type() != keyType {
			key = key.Convert(keyType)
		}
		value := iter.Value()
		if value.Type() != elemType {
			if elemType.Kind() == reflect.Interface {
				if value.Kind() == reflect.Interface && value.IsNil() {
					value = reflect.Zero(elemType)
				}
			} else {
				value = value.Convert(elemType)
			}
		}
		dst.SetMapIndex(key, value)
	}
}
