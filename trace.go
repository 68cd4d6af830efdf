package component

import (
	"encoding/json"
	"fmt"
)

// Trace captures where the effective value of an option key comes from.
type Trace struct {
	Key    string       `json:"key"`
	Layers []Provenance `json:"layers"`
}

// Provenance details how one layer contributed to a traced key.
type Provenance struct {
	Layer     string `json:"layer"`
	Found     bool   `json:"found"`
	ValueType string `json:"value_type,omitempty"`
	Value     any    `json:"-"`
}

// Effective returns the first layer that holds the key.
func (t Trace) Effective() (Provenance, bool) {
	for _, layer := range t.Layers {
		if layer.Found {
			return layer, true
		}
	}
	return Provenance{}, false
}

// ToJSON serialises the trace. Values are reduced to their type names.
func (t Trace) ToJSON() ([]byte, error) {
	type alias Trace
	return json.Marshal(alias(t))
}

// TraceFromJSON deserialises a payload produced by ToJSON.
func TraceFromJSON(payload []byte) (Trace, error) {
	type alias Trace
	var trace alias
	if err := json.Unmarshal(payload, &trace); err != nil {
		return Trace{}, err
	}
	return Trace(trace), nil
}

// Trace reports the local and base layers for key.
func (d *Descriptor) Trace(key string) Trace {
	trace := Trace{Key: key}
	if d == nil {
		return trace
	}
	trace.Layers = append(trace.Layers, provenance("local", d.local, key))
	if d.base != nil {
		trace.Layers = append(trace.Layers, provenance("base", d.base, key))
	}
	return trace
}

// Trace walks the extension chain from c to the root and reports which
// definitions declare key. Derived constructors are listed first.
func (c *Constructor) Trace(key string) Trace {
	trace := Trace{Key: key}
	for node := c; node != nil; node = node.super {
		layer := fmt.Sprintf("constructor:%s", node)
		source := node.extendOptions
		if node.super == nil {
			source = node.options
		}
		trace.Layers = append(trace.Layers, provenance(layer, source, key))
	}
	return trace
}

func provenance(layer string, source Options, key string) Provenance {
	value, ok := source[key]
	p := Provenance{Layer: layer, Found: ok}
	if ok {
		p.Value = value
		p.ValueType = fmt.Sprintf("%T", value)
	}
	return p
}
