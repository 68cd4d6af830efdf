package component

import (
	"reflect"

	"github.com/goliatone/go-component/internal/hydrate"
)

// DecodeState copies the instance snapshot (props, injected values and data)
// plus every computed value into a T. Struct results are checked with the
// validate tags of T.
func DecodeState[T any](vm *Instance) (T, error) {
	var zero T
	if vm == nil {
		return zero, ErrNilInstance
	}

	decoder := hydrate.NewDecoder(
		hydrate.WithPreHook[T](func(_ hydrate.Context, payload map[string]any) (map[string]any, error) {
			for _, name := range vm.ComputedNames() {
				if _, exists := payload[name]; exists {
					continue
				}
				value, err := vm.Computed(name)
				if err != nil {
					return nil, err
				}
				payload[name] = value
			}
			return hydrate.Serializable(payload), nil
		}),
		hydrate.WithPostHook[T](func(_ hydrate.Context, value *T) error {
			if reflect.Indirect(reflect.ValueOf(value)).Kind() != reflect.Struct {
				return nil
			}
			return definitionValidator.Struct(value)
		}),
	)
	return decoder.Decode(hydrate.Context{Component: vm.Name(), UID: vm.UID()}, vm.Snapshot())
}
