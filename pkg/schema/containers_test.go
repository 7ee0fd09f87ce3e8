package schema

import (
	"testing"

	"aemcore/pkg/tables"
)

func TestRequired(t *testing.T) {
	wantReasons(t, Required().ValidateCell(tables.Number(1), nil))
	wantReasons(t, Required().ValidateCell(tables.None(), nil), "a value is required.")
	wantReasons(t, Required(StrictlyPositive()).ValidateCell(tables.Number(0), nil),
		"Value is not strictly positive: 0")
}

func TestOptional(t *testing.T) {
	wantReasons(t, Optional(StrictlyPositive()).ValidateCell(tables.None(), nil))
	wantReasons(t, Optional(StrictlyPositive()).ValidateCell(tables.Number(1), nil))
	wantReasons(t, Optional(StrictlyPositive()).ValidateCell(tables.Number(-1), nil),
		"Value is not strictly positive: -1")
}

func TestAllRequired(t *testing.T) {
	wantReasons(t, AllRequired().ValidateColumn(values(1, 2, 3), nil))
	gaps := []tables.Value{tables.None(), tables.Number(2), tables.None()}
	wantReasons(t, AllRequired().ValidateColumn(gaps, nil),
		"No values provided at row(s): 1, 3")
	// Wrapped rules do not run while entries are missing.
	wantReasons(t, AllRequired(StrictlyPositive()).ValidateColumn(
		[]tables.Value{tables.None(), tables.Number(-2)}, nil),
		"No values provided at row(s): 1")
	wantReasons(t, AllRequired(StrictlyPositive()).ValidateColumn(values(1, -2), nil),
		"Value is not strictly positive: -2")
}

func TestOffsetAllRequired(t *testing.T) {
	// The first entry is exempt: aquitard columns start at the second layer.
	first := []tables.Value{tables.None(), tables.Number(100), tables.Number(200)}
	wantReasons(t, OffsetAllRequired().ValidateColumn(first, nil))

	gap := []tables.Value{tables.None(), tables.Number(100), tables.None()}
	wantReasons(t, OffsetAllRequired().ValidateColumn(gap, nil),
		"No values provided at row(s): 3")
}

func TestAllOptional(t *testing.T) {
	empty := []tables.Value{tables.None(), tables.None()}
	wantReasons(t, AllOptional(StrictlyPositive()).ValidateColumn(empty, nil))
	wantReasons(t, AllOptional(StrictlyPositive()).ValidateColumn(values(1, -1), nil),
		"Value is not strictly positive: -1")
}

func TestOptionalFirstOnly(t *testing.T) {
	wantReasons(t, OptionalFirstOnly().ValidateColumn(
		[]tables.Value{tables.None(), tables.None()}, nil))
	wantReasons(t, OptionalFirstOnly().ValidateColumn(
		[]tables.Value{tables.Number(1), tables.None()}, nil))
	wantReasons(t, OptionalFirstOnly().ValidateColumn(values(1, 2), nil),
		"Only the first value may be filled in.")
}

func TestRequiredFirstOnly(t *testing.T) {
	wantReasons(t, RequiredFirstOnly().ValidateColumn(
		[]tables.Value{tables.Number(10), tables.None()}, nil))
	wantReasons(t, RequiredFirstOnly().ValidateColumn(
		[]tables.Value{tables.None(), tables.None()}, nil),
		"a value is required.")
	wantReasons(t, RequiredFirstOnly().ValidateColumn(values(10, 20), nil),
		"Only the first value may be filled in.")
}
