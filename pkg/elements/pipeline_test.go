package elements

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"aemcore/pkg/schema"
	"aemcore/pkg/solver"
	"aemcore/pkg/tables"
)

type fakeReader struct {
	names  []string
	tables map[string]tables.Table
}

func (r *fakeReader) ListTableNames() ([]string, error) { return r.names, nil }

func (r *fakeReader) ReadTable(name string) (tables.Table, error) {
	t := r.tables[name]
	t.Name = name
	return t, nil
}

func validStore() *fakeReader {
	domainRing := []tables.Coord{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 100}, {X: 0, Y: 100}}
	return &fakeReader{
		names: []string{
			"timml Aquifer:Aquifer",
			"timml Domain:Domain",
			"timml Constant:ref",
			"timml Well:extraction",
		},
		tables: map[string]tables.Table{
			"timml Aquifer:Aquifer": {Rows: []tables.Row{
				{Cells: map[string]tables.Value{
					"layer":          tables.Int(0),
					"aquifer_top":    tables.Number(10),
					"aquifer_bottom": tables.Number(0),
					"aquifer_k":      tables.Number(5),
					"aquitard_c":     tables.None(),
					"semiconf_top":   tables.None(),
					"semiconf_head":  tables.None(),
					"aquitard_npor":  tables.Number(0.3),
					"aquifer_npor":   tables.Number(0.35),
				}},
			}},
			"timml Domain:Domain": {Rows: []tables.Row{
				{Geometry: domainRing, Centroid: tables.Centroid(domainRing)},
			}},
			"timml Constant:ref": {Rows: []tables.Row{
				{
					Cells: map[string]tables.Value{
						"head":  tables.Number(2),
						"layer": tables.Int(0),
					},
					Geometry: []tables.Coord{{X: 50, Y: 50}},
				},
			}},
			"timml Well:extraction": {Rows: []tables.Row{
				{
					Cells: map[string]tables.Value{
						"discharge":  tables.Number(10),
						"radius":     tables.Number(0.5),
						"resistance": tables.Number(1),
						"layer":      tables.Int(0),
					},
					Geometry: []tables.Coord{{X: 25, Y: 75}},
				},
			}},
		},
	}
}

func TestBuildAndValidateEndToEnd(t *testing.T) {
	spec, report, err := BuildAndValidate(validStore(), nil, false)
	if err != nil {
		t.Fatal(err)
	}
	if !report.Empty() {
		t.Fatalf("expected empty report, got %#v", report)
	}

	var engine solver.RecordingEngine
	asm, err := Assemble(spec, NewCatalogue(), &engine, false)
	if err != nil {
		t.Fatal(err)
	}

	model := engine.Models[0]
	if tb, _ := model.Kwargs.Get("topboundary"); tb != "conf" {
		t.Fatalf("model topboundary = %v", tb)
	}
	if len(model.Elements) != 2 {
		t.Fatalf("expected 2 constructed elements, got %d", len(model.Elements))
	}
	// Reference-head constants come first.
	if model.Elements[0].Constructor != "Constant" || model.Elements[1].Constructor != "Well" {
		t.Fatalf("unexpected construction order: %+v", model.Elements)
	}
	wantNames := []string{"timml Constant:ref_0", "timml Well:extraction_0"}
	if !reflect.DeepEqual(asm.ElementNames, wantNames) {
		t.Fatalf("element index = %q", asm.ElementNames)
	}

	well := model.Elements[1].Kwargs
	if well.Float("Qw") != 10 || well.Float("rw") != 0.5 {
		t.Fatalf("unexpected well kwargs: %v", well.Keys())
	}
}

func TestBuildAndValidateReversedAquifer(t *testing.T) {
	store := validStore()
	aq := store.tables["timml Aquifer:Aquifer"]
	aq.Rows[0].Cells["aquifer_top"] = tables.Number(0)
	aq.Rows[0].Cells["aquifer_bottom"] = tables.Number(10)

	_, report, err := BuildAndValidate(store, nil, false)
	if err != nil {
		t.Fatal(err)
	}
	got := report["timml Aquifer:Aquifer"].Global[schema.TableSection]
	want := []string{"aquifer_top is not greater or equal to aquifer_bottom at row(s): 1"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("report = %#v", report)
	}
}

func TestBuildSpecificationIdempotent(t *testing.T) {
	store := validStore()
	first, err := BuildSpecification(store, nil)
	if err != nil {
		t.Fatal(err)
	}
	second, err := BuildSpecification(store, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatal("building twice from an unchanged store must yield identical specifications")
	}
}

func TestBuildSpecificationMissingSingleton(t *testing.T) {
	store := validStore()
	store.names = store.names[1:] // drop the aquifer
	if _, err := BuildSpecification(store, nil); err == nil {
		t.Fatal("missing aquifer table must be fatal")
	}
}

func TestValidateSkipsInactive(t *testing.T) {
	store := validStore()
	// Break the well, then deactivate it: the defect must not be reported.
	well := store.tables["timml Well:extraction"]
	well.Rows[0].Cells["radius"] = tables.Number(0)

	_, report, err := BuildAndValidate(store, map[string]bool{"timml Well:extraction": false}, false)
	if err != nil {
		t.Fatal(err)
	}
	if !report.Empty() {
		t.Fatalf("inactive element must not be validated: %#v", report)
	}
}

func TestValidateMembership(t *testing.T) {
	store := validStore()
	well := store.tables["timml Well:extraction"]
	well.Rows[0].Cells["layer"] = tables.Int(3)

	_, report, err := BuildAndValidate(store, nil, false)
	if err != nil {
		t.Fatal(err)
	}
	got := report["timml Well:extraction"].Nested["Row 1:"]["layer"]
	want := []string{"Value 3 not found in aquifer layers: 0"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("membership report = %#v", report)
	}
}

func TestUnknownElementType(t *testing.T) {
	store := validStore()
	store.names = append(store.names, "timml Volcano:eruption")
	store.tables["timml Volcano:eruption"] = tables.Table{Rows: []tables.Row{
		{Cells: map[string]tables.Value{}},
	}}

	_, _, err := BuildAndValidate(store, nil, false)
	if err == nil {
		t.Fatal("unknown element type must be a hard error")
	}
	var unknown *UnknownElementTypeError
	if !errors.As(err, &unknown) {
		t.Fatalf("unexpected error type: %v", err)
	}
	if unknown.Kind != Kind("Volcano") || len(unknown.Available) == 0 {
		t.Fatalf("unexpected error payload: %+v", unknown)
	}
}

// transientStore extends the valid store with the transient tables: solve
// settings, computation times, a discharge timeseries, and the transient
// well columns.
func transientStore() *fakeReader {
	store := validStore()
	store.names = append(store.names,
		"ttim Temporal Settings:Aquifer",
		"ttim Computation Times:Domain",
		"ttim Well:extraction",
	)
	store.tables["timml Aquifer:Aquifer"].Rows[0].Cells["aquitard_s"] = tables.Number(0.0001)
	store.tables["timml Aquifer:Aquifer"].Rows[0].Cells["aquifer_s"] = tables.Number(0.0002)
	store.tables["ttim Temporal Settings:Aquifer"] = tables.Table{Rows: []tables.Row{
		{Cells: map[string]tables.Value{
			"time_min":            tables.Number(0.01),
			"laplace_inversion_M": tables.Int(10),
			"reference_date":      tables.Text("2020-01-01"),
		}},
	}}
	store.tables["ttim Computation Times:Domain"] = tables.Table{Rows: []tables.Row{
		{Cells: map[string]tables.Value{"time": tables.Number(50)}},
		{Cells: map[string]tables.Value{"time": tables.Number(150)}},
	}}
	store.tables["ttim Well:extraction"] = tables.Table{Rows: []tables.Row{
		{Cells: map[string]tables.Value{
			"timeseries_id": tables.Int(1),
			"time_start":    tables.Number(10),
			"discharge":     tables.Number(20),
		}},
	}}
	well := store.tables["timml Well:extraction"]
	well.Rows[0].Cells["caisson_radius"] = tables.Number(0.1)
	well.Rows[0].Cells["slug"] = tables.Bool(false)
	well.Rows[0].Cells["timeseries_id"] = tables.Int(1)
	return store
}

func TestTransientAssemblyCollectsTimes(t *testing.T) {
	spec, report, err := BuildAndValidate(transientStore(), nil, true)
	if err != nil {
		t.Fatal(err)
	}
	if !report.Empty() {
		t.Fatalf("expected empty transient report, got %#v", report)
	}

	var engine solver.RecordingEngine
	_, err = Assemble(spec, NewCatalogue(), &engine, true)
	if err != nil {
		t.Fatal(err)
	}
	model := engine.Models[0]
	if model.Kwargs.Float("tmax") != 150 {
		t.Fatalf("tmax = %v, want 150", model.Kwargs.Float("tmax"))
	}
	if len(model.Elements) != 1 || model.Elements[0].Constructor != "Well" {
		t.Fatalf("transient model must hold the well only: %+v", model.Elements)
	}
	tsandQ, _ := model.Elements[0].Kwargs.Get("tsandQ")
	want := solver.TimeSeries{{10, 10}}
	if !reflect.DeepEqual(tsandQ, want) {
		t.Fatalf("tsandQ = %v, want %v", tsandQ, want)
	}
	if wbs, _ := model.Elements[0].Kwargs.Get("wbstype"); wbs != "pumping" {
		t.Fatalf("wbstype = %v", wbs)
	}
}

// Kinds without a transient counterpart in the solver, such as the reference
// head and uniform flow, must never be constructed into a transient model.
func TestTransientAssemblySkipsSteadyOnlyKinds(t *testing.T) {
	store := transientStore()
	store.names = append(store.names, "timml Uniform Flow:regional")
	store.tables["timml Uniform Flow:regional"] = tables.Table{Rows: []tables.Row{
		{Cells: map[string]tables.Value{
			"slope": tables.Number(0.001),
			"angle": tables.Number(30),
		}},
	}}

	spec, report, err := BuildAndValidate(store, nil, true)
	if err != nil {
		t.Fatal(err)
	}
	if !report.Empty() {
		t.Fatalf("expected empty transient report, got %#v", report)
	}

	var engine solver.RecordingEngine
	asm, err := Assemble(spec, NewCatalogue(), &engine, true)
	if err != nil {
		t.Fatal(err)
	}
	model := engine.Models[0]
	if len(model.Elements) != 1 || model.Elements[0].Constructor != "Well" {
		t.Fatalf("steady-only kinds must not enter the transient model: %+v", model.Elements)
	}
	for _, name := range asm.ElementNames {
		if strings.Contains(name, "Constant") || strings.Contains(name, "Uniform Flow") {
			t.Fatalf("element index holds a steady-only kind: %q", asm.ElementNames)
		}
	}

	// The same store assembles both into a steady model.
	var steady solver.RecordingEngine
	if _, err := Assemble(spec, NewCatalogue(), &steady, false); err != nil {
		t.Fatal(err)
	}
	if len(steady.Models[0].Elements) != 3 {
		t.Fatalf("steady model = %+v", steady.Models[0].Elements)
	}
}

func TestTransientTimeWindow(t *testing.T) {
	store := transientStore()
	// Switch the well from a timeseries to an explicit pair starting after
	// the last computation time.
	well := store.tables["timml Well:extraction"]
	well.Rows[0].Cells["timeseries_id"] = tables.None()
	well.Rows[0].Cells["time_start"] = tables.Number(200)
	well.Rows[0].Cells["time_end"] = tables.Number(250)
	well.Rows[0].Cells["discharge_transient"] = tables.Number(5)

	_, report, err := BuildAndValidate(store, nil, true)
	if err != nil {
		t.Fatal(err)
	}
	got := report["timml Well:extraction"].Nested["Row 1:"]["time_start"]
	want := []string{"time does not fall in model time window: 0.01 to 150"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("time window report = %#v", report)
	}
}
