package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"

	"github.com/goliatone/go-component"
	"gopkg.in/yaml.v3"
)

func write(w io.Writer, asYAML bool, value any) error {
	if asYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(value); err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(value); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// printable converts option values into data both encoders accept.
// Constructors and functions are rendered as descriptive strings.
func printable(value any) any {
	switch v := value.(type) {
	case nil:
		return nil
	case *component.Constructor:
		return "constructor " + v.String()
	case *component.Instance:
		return "instance " + v.String()
	case component.Options:
		return printableMap(v)
	case map[string]any:
		return printableMap(v)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = printable(item)
		}
		return out
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Func:
		return fmt.Sprintf("<%s>", rv.Type())
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = printable(rv.Index(i).Interface())
		}
		return out
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return fmt.Sprint(value)
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = printable(iter.Value().Interface())
		}
		return out
	case reflect.Pointer, reflect.Chan, reflect.Struct:
		return fmt.Sprintf("%v", value)
	}
	return value
}

func printableMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for key, value := range m {
		out[key] = printable(value)
	}
	return out
}
