package tables

// Row is one feature: its attribute cells plus the coordinate sequence of its
// geometry (empty for attribute-only tables). Polygon rows also carry the
// area centroid of the original ring.
type Row struct {
	Cells    map[string]Value
	Geometry []Coord
	Centroid Coord
}

// Cell returns the named attribute, or the absent marker when the column is
// not present on the row.
func (r Row) Cell(name string) Value {
	return r.Cells[name]
}

// Table is an ordered collection of rows read from one named store table.
type Table struct {
	Name string
	Rows []Row
}

// Empty reports whether the table holds no rows.
func (t Table) Empty() bool { return len(t.Rows) == 0 }

// Len returns the row count.
func (t Table) Len() int { return len(t.Rows) }

// Column returns the named attribute across all rows, in row order.
func (t Table) Column(name string) []Value {
	col := make([]Value, len(t.Rows))
	for i, row := range t.Rows {
		col[i] = row.Cell(name)
	}
	return col
}

// Distinct returns the distinct values of the named column in encounter
// order, including the absent marker if present.
func (t Table) Distinct(name string) []Value {
	seen := make(map[Value]struct{})
	var out []Value
	for _, row := range t.Rows {
		v := row.Cell(name)
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Group is one partition of a table keyed by a grouping column.
type Group struct {
	Key  Value
	Rows []Row
}

// GroupBy partitions the rows by the value of the named column, preserving
// the encounter order of both groups and rows.
func (t Table) GroupBy(name string) []Group {
	index := make(map[Value]int)
	var groups []Group
	for _, row := range t.Rows {
		key := row.Cell(name)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group{Key: key})
		}
		groups[i].Rows = append(groups[i].Rows, row)
	}
	return groups
}

// Subtable returns a table holding the given rows under the same name.
func (t Table) Subtable(rows []Row) Table {
	return Table{Name: t.Name, Rows: rows}
}
