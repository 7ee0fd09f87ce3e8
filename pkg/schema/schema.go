// Package schema implements the declarative validation system for element
// tables. Rules collect human-readable failure reasons instead of raising:
// a validation pass reports every defect of every field in one go, and
// cross-field consistency rules only run once the individual fields are
// known to be well formed.
package schema

import "aemcore/pkg/tables"

// Context carries the externally supplied named sets a Membership rule checks
// against (aquifer layer indices, known timeseries ids, known inhomogeneity
// ids) plus the model time window for Time rules. The sets belong to the
// caller, not the schema.
type Context struct {
	Sets      map[string][]tables.Value
	TimeStart tables.Value
	TimeEnd   tables.Value
}

// Members returns the named set, or nil when the context does not carry it.
func (c *Context) Members(name string) []tables.Value {
	if c == nil || c.Sets == nil {
		return nil
	}
	return c.Sets[name]
}

// WithSet returns a copy of the context carrying an additional named set.
// The receiver is not modified; validation contexts are request-scoped.
func (c *Context) WithSet(name string, members []tables.Value) *Context {
	out := Context{Sets: map[string][]tables.Value{}}
	if c != nil {
		out.TimeStart = c.TimeStart
		out.TimeEnd = c.TimeEnd
		for k, v := range c.Sets {
			out.Sets[k] = v
		}
	}
	out.Sets[name] = members
	return &out
}

// Rule validates an ordered collection of cell values and reports zero or
// more failure reasons. Scalar rules (Positive, Membership) check each
// non-absent value; collection rules (Range, StrictlyDecreasing) check the
// collection as a whole. A single cell is validated as a one-element
// collection.
type Rule interface {
	Validate(values []tables.Value, ctx *Context) []string
}

// CellSchema validates one cell of one row.
type CellSchema interface {
	ValidateCell(v tables.Value, ctx *Context) []string
}

// ColumnSchema validates one whole column of a table.
type ColumnSchema interface {
	ValidateColumn(values []tables.Value, ctx *Context) []string
}

// Record is one row viewed by field name, as consumed by row-level
// consistency rules.
type Record map[string]tables.Value

// Columns is a whole table viewed column-wise, as consumed by table-level
// consistency rules.
type Columns map[string][]tables.Value

// Column returns the named column, or nil when absent.
func (c Columns) Column(name string) []tables.Value { return c[name] }

// First returns the first entry of the named column, or the absent marker.
func (c Columns) First(name string) tables.Value {
	col := c[name]
	if len(col) == 0 {
		return tables.None()
	}
	return col[0]
}

// RowConsistency checks cross-field consistency of a single validated row.
// A non-empty return is the failure reason.
type RowConsistency interface {
	ValidateRow(r Record, ctx *Context) string
}

// TableConsistency checks cross-column consistency of a validated table.
type TableConsistency interface {
	ValidateTable(c Columns, ctx *Context) string
}

// Validator validates one table and reports its defects.
type Validator interface {
	Validate(t tables.Table, ctx *Context) ElementReport
}
