package tables

import (
	"math"
	"reflect"
	"testing"
)

func TestValueString(t *testing.T) {
	cases := []struct {
		v    Value
		want string
	}{
		{None(), "none"},
		{Number(1), "1"},
		{Number(1.5), "1.5"},
		{Number(-100), "-100"},
		{Int(3), "3"},
		{Text("stage"), "stage"},
		{Bool(true), "true"},
		{Bool(false), "false"},
	}
	for _, c := range cases {
		if got := c.v.String(); got != c.want {
			t.Errorf("String() = %q, want %q", got, c.want)
		}
	}
}

func TestNumberNaNIsNone(t *testing.T) {
	if !Number(math.NaN()).IsNone() {
		t.Fatal("NaN must normalize to the absent marker")
	}
}

func TestAsBool(t *testing.T) {
	if !Bool(true).AsBool() || Bool(false).AsBool() {
		t.Fatal("boolean cells must round-trip")
	}
	if !Int(1).AsBool() || Int(0).AsBool() {
		t.Fatal("numeric cells must be truthy when nonzero")
	}
	if None().AsBool() {
		t.Fatal("absent cells are false")
	}
}

func TestFormatValues(t *testing.T) {
	got := FormatValues([]Value{Int(0), None(), Number(1.5)})
	if got != "0, none, 1.5" {
		t.Fatalf("FormatValues = %q", got)
	}
}

func TestDiscardNone(t *testing.T) {
	got := DiscardNone([]Value{None(), Int(1), None(), Int(2)})
	want := []Value{Int(1), Int(2)}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("DiscardNone = %v, want %v", got, want)
	}
}

func TestTableColumnAndDistinct(t *testing.T) {
	table := Table{Name: "wells", Rows: []Row{
		{Cells: map[string]Value{"layer": Int(0)}},
		{Cells: map[string]Value{"layer": Int(1)}},
		{Cells: map[string]Value{"layer": Int(0)}},
		{Cells: map[string]Value{}},
	}}
	col := table.Column("layer")
	want := []Value{Int(0), Int(1), Int(0), None()}
	if !reflect.DeepEqual(col, want) {
		t.Fatalf("Column = %v, want %v", col, want)
	}
	distinct := table.Distinct("layer")
	if !reflect.DeepEqual(distinct, []Value{Int(0), Int(1), None()}) {
		t.Fatalf("Distinct = %v", distinct)
	}
}

func TestGroupByPreservesOrder(t *testing.T) {
	table := Table{Rows: []Row{
		{Cells: map[string]Value{"inhomogeneity_id": Int(2)}},
		{Cells: map[string]Value{"inhomogeneity_id": Int(1)}},
		{Cells: map[string]Value{"inhomogeneity_id": Int(2)}},
	}}
	groups := table.GroupBy("inhomogeneity_id")
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if !groups[0].Key.Equal(Int(2)) || len(groups[0].Rows) != 2 {
		t.Fatalf("unexpected first group %#v", groups[0])
	}
	if !groups[1].Key.Equal(Int(1)) || len(groups[1].Rows) != 1 {
		t.Fatalf("unexpected second group %#v", groups[1])
	}
}

func TestDedupCoords(t *testing.T) {
	ring := []Coord{{0, 0}, {10, 0}, {10, 10}, {10, 10}, {0, 10}, {0, 0}}
	got := DedupCoords(ring)
	want := []Coord{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("DedupCoords = %v, want %v", got, want)
	}
}

func TestDistance(t *testing.T) {
	if d := Distance(Coord{0, 0}, Coord{3, 4}); d != 5 {
		t.Fatalf("Distance = %v, want 5", d)
	}
}

func TestCentroid(t *testing.T) {
	square := []Coord{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	c := Centroid(square)
	if math.Abs(c.X-5) > 1e-12 || math.Abs(c.Y-5) > 1e-12 {
		t.Fatalf("Centroid = %v, want (5, 5)", c)
	}
	// A degenerate ring falls back to the vertex mean.
	line := []Coord{{0, 0}, {10, 0}}
	c = Centroid(line)
	if c.X != 5 || c.Y != 0 {
		t.Fatalf("degenerate Centroid = %v, want (5, 0)", c)
	}
}
