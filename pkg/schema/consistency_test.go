package schema

import (
	"testing"

	"aemcore/pkg/tables"
)

func wantMessage(t *testing.T, got, want string) {
	t.Helper()
	if got != want {
		t.Fatalf("message mismatch:\n got  %q\n want %q", got, want)
	}
}

func TestAllOrNone(t *testing.T) {
	rule := AllOrNone("time_start", "time_end", "discharge_transient")
	all := Record{
		"time_start":          tables.Number(0),
		"time_end":            tables.Number(10),
		"discharge_transient": tables.Number(-100),
	}
	wantMessage(t, rule.ValidateRow(all, nil), "")

	none := Record{
		"time_start":          tables.None(),
		"time_end":            tables.None(),
		"discharge_transient": tables.None(),
	}
	wantMessage(t, rule.ValidateRow(none, nil), "")

	partial := Record{
		"time_start":          tables.Number(0),
		"time_end":            tables.None(),
		"discharge_transient": tables.None(),
	}
	wantMessage(t, rule.ValidateRow(partial, nil),
		"Exactly all or none of the following variables must be provided: time_start, time_end, discharge_transient")
}

func TestNotBoth(t *testing.T) {
	rule := NotBoth("time_start", "timeseries_id")
	wantMessage(t, rule.ValidateRow(Record{
		"time_start":    tables.Number(0),
		"timeseries_id": tables.None(),
	}, nil), "")
	wantMessage(t, rule.ValidateRow(Record{
		"time_start":    tables.Number(0),
		"timeseries_id": tables.Int(1),
	}, nil), "Either time_start or timeseries_id should be provided, not both.")
}

func TestXor(t *testing.T) {
	rule := Xor("head", "discharge")
	wantMessage(t, rule.ValidateRow(Record{
		"head":      tables.Number(1),
		"discharge": tables.None(),
	}, nil), "")
	wantMessage(t, rule.ValidateRow(Record{
		"head":      tables.None(),
		"discharge": tables.None(),
	}, nil), "Either head or discharge should be provided.")
	wantMessage(t, rule.ValidateRow(Record{
		"head":      tables.Number(1),
		"discharge": tables.Number(2),
	}, nil), "Either head or discharge should be provided.")
}

func TestAllGreaterEqual(t *testing.T) {
	rule := AllGreaterEqual("aquifer_top", "aquifer_bottom")
	wantMessage(t, rule.ValidateTable(Columns{
		"aquifer_top":    values(0, -10),
		"aquifer_bottom": values(-5, -20),
	}, nil), "")
	wantMessage(t, rule.ValidateTable(Columns{
		"aquifer_top":    values(-10, -30),
		"aquifer_bottom": values(-5, -20),
	}, nil), "aquifer_top is not greater or equal to aquifer_bottom at row(s): 1, 2")
}

func TestSemiConfined(t *testing.T) {
	confined := Columns{
		"aquitard_c":    {tables.None()},
		"semiconf_top":  {tables.None()},
		"semiconf_head": {tables.None()},
		"aquifer_top":   values(0),
	}
	wantMessage(t, SemiConfined().ValidateTable(confined, nil), "")

	semi := Columns{
		"aquitard_c":    values(100),
		"semiconf_top":  values(2),
		"semiconf_head": values(1),
		"aquifer_top":   values(0),
	}
	wantMessage(t, SemiConfined().ValidateTable(semi, nil), "")

	partial := Columns{
		"aquitard_c":    values(100),
		"semiconf_top":  {tables.None()},
		"semiconf_head": {tables.None()},
		"aquifer_top":   values(0),
	}
	wantMessage(t, SemiConfined().ValidateTable(partial, nil),
		"To enable a semi-confined top, the first row must be fully filled in for "+
			"aquitard_c, semiconf_top, semiconf_head. To disable semi-confined top, "+
			"none of the values must be filled in. Found: 100, none, none")

	sunken := Columns{
		"aquitard_c":    values(100),
		"semiconf_top":  values(-1),
		"semiconf_head": values(1),
		"aquifer_top":   values(0),
	}
	wantMessage(t, SemiConfined().ValidateTable(sunken, nil),
		"semiconf_top must be greater than first aquifer_top.")
}
