package schema

import (
	"reflect"
	"testing"

	"aemcore/pkg/tables"
)

func rowOf(cells map[string]tables.Value, coords ...tables.Coord) tables.Row {
	return tables.Row{Cells: cells, Geometry: coords}
}

func TestRowWise(t *testing.T) {
	schema := RowWise{
		Fields: []Field{
			{Name: GeometryField, Schema: Required()},
			{Name: "discharge", Schema: Required()},
			{Name: "radius", Schema: Required(StrictlyPositive())},
		},
	}
	point := tables.Coord{X: 0, Y: 0}

	ok := tables.Table{Rows: []tables.Row{
		rowOf(map[string]tables.Value{
			"discharge": tables.Number(-100),
			"radius":    tables.Number(0.5),
		}, point),
	}}
	if report := schema.Validate(ok, nil); !report.Empty() {
		t.Fatalf("expected clean report, got %#v", report)
	}

	bad := tables.Table{Rows: []tables.Row{
		rowOf(map[string]tables.Value{
			"discharge": tables.Number(-100),
			"radius":    tables.Number(0.5),
		}, point),
		rowOf(map[string]tables.Value{
			"discharge": tables.None(),
			"radius":    tables.Number(0),
		}, point),
	}}
	report := schema.Validate(bad, nil)
	if len(report.Nested) != 1 {
		t.Fatalf("expected one defective row, got %#v", report.Nested)
	}
	fields := report.Nested["Row 2:"]
	wantReasons(t, fields["discharge"], "a value is required.")
	wantReasons(t, fields["radius"], "Value is not strictly positive: 0")
}

func TestRowWiseConsistencyGatedOnValidFields(t *testing.T) {
	schema := RowWise{
		Fields: []Field{
			{Name: "discharge", Schema: Required()},
			{Name: "time_start", Schema: Optional(Positive())},
			{Name: "time_end", Schema: Optional(Positive())},
		},
		Consistency: []RowConsistency{
			AllOrNone("time_start", "time_end", "discharge_transient"),
		},
	}

	// Field errors suppress the consistency check for that row.
	broken := tables.Table{Rows: []tables.Row{
		rowOf(map[string]tables.Value{
			"discharge":  tables.None(),
			"time_start": tables.Number(0),
		}),
	}}
	fields := schema.Validate(broken, nil).Nested["Row 1:"]
	wantReasons(t, fields["discharge"], "a value is required.")
	if _, ok := fields["Row:"]; ok {
		t.Fatalf("consistency must not run on a row with field errors: %#v", fields)
	}

	// A clean row still trips consistency on the undeclared transient field.
	inconsistent := tables.Table{Rows: []tables.Row{
		rowOf(map[string]tables.Value{
			"discharge":  tables.Number(-100),
			"time_start": tables.Number(0),
			"time_end":   tables.None(),
		}),
	}}
	fields = schema.Validate(inconsistent, nil).Nested["Row 1:"]
	wantReasons(t, fields["Row:"],
		"Exactly all or none of the following variables must be provided: time_start, time_end, discharge_transient")
}

func TestSingleRow(t *testing.T) {
	schema := SingleRow{Fields: []Field{{Name: "head", Schema: Required()}}}
	one := tables.Table{Rows: []tables.Row{
		rowOf(map[string]tables.Value{"head": tables.Number(1)}),
	}}
	if report := schema.Validate(one, nil); !report.Empty() {
		t.Fatalf("expected clean report, got %#v", report)
	}

	for _, table := range []tables.Table{
		{},
		{Rows: []tables.Row{
			rowOf(map[string]tables.Value{"head": tables.Number(1)}),
			rowOf(map[string]tables.Value{"head": tables.Number(2)}),
		}},
	} {
		report := schema.Validate(table, nil)
		wantReasons(t, report.Global[TableSection], "Table may contain only one row.")
	}
}

func TestTableWise(t *testing.T) {
	schema := TableWise{
		Columns: []ColumnField{
			{Name: "layer", Schema: AllRequired(Range())},
			{Name: "aquifer_top", Schema: AllRequired(StrictlyDecreasing())},
			{Name: "aquifer_bottom", Schema: AllRequired(StrictlyDecreasing())},
		},
		Consistency: []TableConsistency{AllGreaterEqual("aquifer_top", "aquifer_bottom")},
	}

	if report := schema.Validate(tables.Table{}, nil); !reflect.DeepEqual(
		report.Global[TableSection], []string{"Table is empty."},
	) {
		t.Fatalf("expected empty-table message, got %#v", report)
	}

	ok := tables.Table{Rows: []tables.Row{
		rowOf(map[string]tables.Value{
			"layer":          tables.Int(0),
			"aquifer_top":    tables.Number(0),
			"aquifer_bottom": tables.Number(-10),
		}),
		rowOf(map[string]tables.Value{
			"layer":          tables.Int(1),
			"aquifer_top":    tables.Number(-15),
			"aquifer_bottom": tables.Number(-30),
		}),
	}}
	if report := schema.Validate(ok, nil); !report.Empty() {
		t.Fatalf("expected clean report, got %#v", report)
	}

	// Column errors suppress the consistency pass.
	badColumn := tables.Table{Rows: []tables.Row{
		rowOf(map[string]tables.Value{
			"layer":          tables.Int(1),
			"aquifer_top":    tables.Number(-10),
			"aquifer_bottom": tables.Number(0),
		}),
	}}
	report := schema.Validate(badColumn, nil)
	wantReasons(t, report.Global["layer"], "Expected 0; received 1")
	if _, ok := report.Global[TableSection]; ok {
		t.Fatalf("consistency must not run with column errors: %#v", report)
	}

	inverted := tables.Table{Rows: []tables.Row{
		rowOf(map[string]tables.Value{
			"layer":          tables.Int(0),
			"aquifer_top":    tables.Number(-10),
			"aquifer_bottom": tables.Number(0),
		}),
	}}
	report = schema.Validate(inverted, nil)
	wantReasons(t, report.Global[TableSection],
		"aquifer_top is not greater or equal to aquifer_bottom at row(s): 1")
}

func TestReportAddDropsEmpty(t *testing.T) {
	r := Report{}
	r.Add("timml Well:clean", ElementReport{})
	if len(r) != 0 {
		t.Fatalf("empty element reports must be dropped, got %#v", r)
	}
	var er ElementReport
	er.AddGlobal("head", "a value is required.")
	r.Add("timml Constant:ref", er)
	if got := r.Names(); !reflect.DeepEqual(got, []string{"timml Constant:ref"}) {
		t.Fatalf("unexpected names %q", got)
	}
	if r.Empty() {
		t.Fatal("report with defects must not be empty")
	}
}
