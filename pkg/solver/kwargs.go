// Package solver defines the keyword-argument representation handed to an
// analytic-element engine, and the engine abstraction itself. Element
// transforms emit Kwargs; an Engine turns them into a model, whether by
// driving a computation backend or by rendering a script.
package solver

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Path is an ordered sequence of (x, y) vertices, the geometry argument of
// line and polygon elements.
type Path [][2]float64

// TimeSeries is an ordered sequence of (time, value) pairs. Transient element
// arguments (tsandQ, tsandh, tsandN) are expressed this way, with values
// relative to the steady-state value.
type TimeSeries [][2]float64

// Kwargs is an insertion-ordered set of keyword arguments. Order matters for
// reproducible script output and stable JSON, so a plain map will not do.
type Kwargs struct {
	keys   []string
	values map[string]any
}

// NewKwargs returns an empty argument set.
func NewKwargs() *Kwargs {
	return &Kwargs{values: map[string]any{}}
}

// Set records a keyword argument. Setting an existing key overwrites the
// value but keeps its original position.
func (k *Kwargs) Set(key string, value any) *Kwargs {
	if _, ok := k.values[key]; !ok {
		k.keys = append(k.keys, key)
	}
	k.values[key] = value
	return k
}

// Get returns the value for a key and whether it is present.
func (k *Kwargs) Get(key string) (any, bool) {
	v, ok := k.values[key]
	return v, ok
}

// Float returns the value for a key as a float64, or zero when absent or not
// numeric.
func (k *Kwargs) Float(key string) float64 {
	switch v := k.values[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return 0
	}
}

// Keys returns the keys in insertion order. The returned slice is shared;
// callers must not modify it.
func (k *Kwargs) Keys() []string { return k.keys }

// Len returns the number of arguments.
func (k *Kwargs) Len() int { return len(k.keys) }

// MarshalJSON renders the arguments as a JSON object in insertion order.
func (k *Kwargs) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range k.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		value, err := json.Marshal(k.values[key])
		if err != nil {
			return nil, fmt.Errorf("marshal kwarg %q: %w", key, err)
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
