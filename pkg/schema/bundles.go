package schema

import (
	"fmt"

	"aemcore/pkg/tables"
)

// GeometryField is the pseudo-field under which a row's geometry is checked.
// A Required schema on it rejects features without a digitized geometry.
const GeometryField = "geometry"

// Field binds one field name to its cell schema. Fields are ordered so that
// reports are deterministic.
type Field struct {
	Name   string
	Schema CellSchema
}

// ColumnField binds one column name to its column schema.
type ColumnField struct {
	Name   string
	Schema ColumnSchema
}

func cellFor(row tables.Row, name string) tables.Value {
	if name == GeometryField {
		if len(row.Geometry) == 0 {
			return tables.None()
		}
		return tables.Bool(true)
	}
	return row.Cell(name)
}

func recordOf(row tables.Row) Record {
	r := make(Record, len(row.Cells)+1)
	for name, v := range row.Cells {
		r[name] = v
	}
	r[GeometryField] = cellFor(row, GeometryField)
	return r
}

// ColumnsOf builds the column-wise view of a table covering both the
// declared field names and every attribute present on its rows.
func ColumnsOf(t tables.Table, declared ...string) Columns {
	names := map[string]struct{}{}
	for _, name := range declared {
		names[name] = struct{}{}
	}
	for _, row := range t.Rows {
		for name := range row.Cells {
			names[name] = struct{}{}
		}
	}
	cols := make(Columns, len(names))
	for name := range names {
		cols[name] = t.Column(name)
	}
	return cols
}

// RowWise validates a table feature by feature. Each defective row reports
// its field errors under a "Row N:" section; consistency rules run per row
// and only when the row's fields are individually valid.
type RowWise struct {
	Fields      []Field
	Consistency []RowConsistency
}

// Validate implements Validator.
func (s RowWise) Validate(t tables.Table, ctx *Context) ElementReport {
	var report ElementReport
	for i, row := range t.Rows {
		fields := FieldErrors{}
		for _, f := range s.Fields {
			fields.Add(f.Name, f.Schema.ValidateCell(cellFor(row, f.Name), ctx)...)
		}
		if len(fields) == 0 {
			record := recordOf(row)
			for _, c := range s.Consistency {
				if msg := c.ValidateRow(record, ctx); msg != "" {
					fields.Add("Row:", msg)
				}
			}
		}
		if len(fields) > 0 {
			report.AddNested(fmt.Sprintf("Row %d:", i+1), fields)
		}
	}
	return report
}

// SingleRow validates a table that must contain exactly one row (Constant,
// Domain, Uniform Flow, Temporal Settings), then validates that row.
type SingleRow struct {
	Fields      []Field
	Consistency []RowConsistency
}

// Validate implements Validator.
func (s SingleRow) Validate(t tables.Table, ctx *Context) ElementReport {
	if t.Len() != 1 {
		var report ElementReport
		report.AddGlobal(TableSection, "Table may contain only one row.")
		return report
	}
	return RowWise{Fields: s.Fields, Consistency: s.Consistency}.Validate(t, ctx)
}

// TableWise validates a table as one unit: each declared column against its
// column schema, then (only if every column passed) the cross-column
// consistency rules, reported under the "Table:" section.
type TableWise struct {
	Columns     []ColumnField
	Consistency []TableConsistency
}

// Validate implements Validator.
func (s TableWise) Validate(t tables.Table, ctx *Context) ElementReport {
	var report ElementReport
	if t.Empty() {
		report.AddGlobal(TableSection, "Table is empty.")
		return report
	}
	for _, c := range s.Columns {
		report.AddGlobal(c.Name, c.Schema.ValidateColumn(t.Column(c.Name), ctx)...)
	}
	if report.Empty() {
		cols := ColumnsOf(t, declaredNames(s.Columns)...)
		for _, c := range s.Consistency {
			if msg := c.ValidateTable(cols, ctx); msg != "" {
				report.AddGlobal(TableSection, msg)
			}
		}
	}
	return report
}

func declaredNames(cols []ColumnField) []string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return names
}
