// Package tables defines the row and column model shared by the schema and
// element packages: attribute cells that are either absent or hold one typed
// value, plus the coordinate sequences extracted from geographic features.
//
// Every representation of "no data" in the source store (SQL NULL, NaN, empty
// geometry) is normalized to the single absent marker at this boundary, so
// downstream validation and transforms only ever test Value.IsNone.
package tables

import (
	"math"
	"strconv"
	"strings"
)

type valueKind uint8

const (
	kindNone valueKind = iota
	kindNumber
	kindText
	kindBool
)

// Value is one attribute cell: absent, or a number, text, or boolean.
type Value struct {
	kind    valueKind
	num     float64
	text    string
	boolean bool
}

// None returns the absent marker.
func None() Value { return Value{} }

// Number wraps a float. NaN is treated as absent.
func Number(f float64) Value {
	if math.IsNaN(f) {
		return Value{}
	}
	return Value{kind: kindNumber, num: f}
}

// Int wraps an integer as a numeric cell.
func Int(i int) Value { return Value{kind: kindNumber, num: float64(i)} }

// Text wraps a string.
func Text(s string) Value { return Value{kind: kindText, text: s} }

// Bool wraps a boolean.
func Bool(b bool) Value { return Value{kind: kindBool, boolean: b} }

// IsNone reports whether the cell is absent.
func (v Value) IsNone() bool { return v.kind == kindNone }

// IsNumber reports whether the cell holds a number.
func (v Value) IsNumber() bool { return v.kind == kindNumber }

// IsText reports whether the cell holds text.
func (v Value) IsText() bool { return v.kind == kindText }

// IsBool reports whether the cell holds a boolean.
func (v Value) IsBool() bool { return v.kind == kindBool }

// Num returns the numeric value, or zero when absent or non-numeric.
func (v Value) Num() float64 {
	if v.kind != kindNumber {
		return 0
	}
	return v.num
}

// AsInt returns the numeric value truncated to an integer.
func (v Value) AsInt() int { return int(v.Num()) }

// AsText returns the text value, or the empty string when absent.
func (v Value) AsText() string {
	if v.kind != kindText {
		return ""
	}
	return v.text
}

// AsBool returns the boolean value. Numeric cells count as true when nonzero,
// matching how boolean columns round-trip through numeric storage.
func (v Value) AsBool() bool {
	switch v.kind {
	case kindBool:
		return v.boolean
	case kindNumber:
		return v.num != 0
	default:
		return false
	}
}

// Equal reports exact equality of kind and content.
func (v Value) Equal(o Value) bool { return v == o }

// String renders the cell for failure messages: absent cells render as
// "none", numbers without a trailing decimal when integral.
func (v Value) String() string {
	switch v.kind {
	case kindNumber:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case kindText:
		return v.text
	case kindBool:
		if v.boolean {
			return "true"
		}
		return "false"
	default:
		return "none"
	}
}

// FormatValues renders a collection for failure messages: "0, 1, 1, 2".
func FormatValues(values []Value) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = v.String()
	}
	return strings.Join(parts, ", ")
}

// DiscardNone returns the values with absent entries removed, order preserved.
func DiscardNone(values []Value) []Value {
	kept := make([]Value, 0, len(values))
	for _, v := range values {
		if !v.IsNone() {
			kept = append(kept, v)
		}
	}
	return kept
}
