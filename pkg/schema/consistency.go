package schema

import (
	"fmt"
	"strings"

	"aemcore/pkg/tables"
)

type allOrNone struct{ fields []string }

// AllOrNone requires the named fields to be either all present or all absent
// on a row.
func AllOrNone(fields ...string) RowConsistency { return allOrNone{fields: fields} }

func (a allOrNone) ValidateRow(r Record, _ *Context) string {
	var anyPresent, allPresent = false, true
	for _, field := range a.fields {
		if r[field].IsNone() {
			allPresent = false
		} else {
			anyPresent = true
		}
	}
	if anyPresent != allPresent {
		return fmt.Sprintf(
			"Exactly all or none of the following variables must be provided: %s",
			strings.Join(a.fields, ", "),
		)
	}
	return ""
}

type notBoth struct{ x, y string }

// NotBoth forbids the two named fields from being present together.
func NotBoth(x, y string) RowConsistency { return notBoth{x: x, y: y} }

func (n notBoth) ValidateRow(r Record, _ *Context) string {
	if !r[n.x].IsNone() && !r[n.y].IsNone() {
		return fmt.Sprintf("Either %s or %s should be provided, not both.", n.x, n.y)
	}
	return ""
}

type xor struct{ x, y string }

// Xor requires exactly one of the two named fields to be present.
func Xor(x, y string) RowConsistency { return xor{x: x, y: y} }

func (x xor) ValidateRow(r Record, _ *Context) string {
	if r[x.x].IsNone() == r[x.y].IsNone() {
		return fmt.Sprintf("Either %s or %s should be provided.", x.x, x.y)
	}
	return ""
}

type allGreaterEqual struct{ x, y string }

// AllGreaterEqual requires column x to be elementwise greater than or equal
// to column y, reporting the 1-based offending rows.
func AllGreaterEqual(x, y string) TableConsistency { return allGreaterEqual{x: x, y: y} }

func (a allGreaterEqual) ValidateTable(c Columns, _ *Context) string {
	xs, ys := c.Column(a.x), c.Column(a.y)
	var wrong []string
	for i := 0; i < len(xs) && i < len(ys); i++ {
		if xs[i].IsNone() || ys[i].IsNone() {
			continue
		}
		if xs[i].Num() < ys[i].Num() {
			wrong = append(wrong, fmt.Sprintf("%d", i+1))
		}
	}
	if len(wrong) == 0 {
		return ""
	}
	return fmt.Sprintf("%s is not greater or equal to %s at row(s): %s", a.x, a.y, strings.Join(wrong, ", "))
}

type semiConfined struct{}

// SemiConfined enforces the all-or-none contract of the optional
// semi-confining top: first-row aquitard resistance, semi-confining top
// elevation, and reference head must be set together, and the top must lie
// above the first aquifer top.
func SemiConfined() TableConsistency { return semiConfined{} }

func (semiConfined) ValidateTable(c Columns, _ *Context) string {
	fields := []string{"aquitard_c", "semiconf_top", "semiconf_head"}
	values := make([]tables.Value, len(fields))
	var anyPresent, allPresent = false, true
	for i, field := range fields {
		values[i] = c.First(field)
		if values[i].IsNone() {
			allPresent = false
		} else {
			anyPresent = true
		}
	}
	if anyPresent != allPresent {
		return fmt.Sprintf(
			"To enable a semi-confined top, the first row must be fully filled in for %s. "+
				"To disable semi-confined top, none of the values must be filled in. Found: %s",
			strings.Join(fields, ", "), tables.FormatValues(values),
		)
	}
	if allPresent {
		top := c.First("aquifer_top")
		if !top.IsNone() && c.First("semiconf_top").Num() <= top.Num() {
			return "semiconf_top must be greater than first aquifer_top."
		}
	}
	return ""
}
