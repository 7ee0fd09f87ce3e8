package compute

import (
	"context"
	"strings"
	"testing"
	"time"

	"aemcore/internal/artifact"
	"aemcore/internal/journal"
	"aemcore/pkg/elements"
	"aemcore/pkg/tables"
)

type memReader struct {
	names  []string
	tables map[string]tables.Table
}

func (r *memReader) ListTableNames() ([]string, error) { return r.names, nil }

func (r *memReader) ReadTable(name string) (tables.Table, error) {
	t := r.tables[name]
	t.Name = name
	return t, nil
}

func validModel() *memReader {
	domainRing := []tables.Coord{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 100}, {X: 0, Y: 100}}
	return &memReader{
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
					"aquitard_npor":  tables.Number(0.3),
					"aquifer_npor":   tables.Number(0.35),
				}},
			}},
			"timml Domain:Domain": {Rows: []tables.Row{
				{Geometry: domainRing, Centroid: tables.Centroid(domainRing)},
			}},
			"timml Constant:ref": {Rows: []tables.Row{
				{
					Cells:    map[string]tables.Value{"head": tables.Number(2), "layer": tables.Int(0)},
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

func serviceWith(reader elements.TableReader, store artifact.Store, j journal.Journal, m MetricsRecorder) *Service {
	return NewService(Config{
		Journal:   j,
		Artifacts: store,
		Metrics:   m,
		OpenStore: func(string) elements.TableReader { return reader },
	})
}

func TestRoundExtent(t *testing.T) {
	ext := elements.Extent{XMin: 3, XMax: 97, YMin: -12, YMax: 101}
	rounded, err := RoundExtent(ext, 10)
	if err != nil {
		t.Fatal(err)
	}
	want := elements.Extent{XMin: 0, XMax: 100, YMin: -20, YMax: 110}
	if rounded != want {
		t.Fatalf("rounded = %+v", rounded)
	}
	if _, err := RoundExtent(ext, 0); err == nil {
		t.Fatal("zero cellsize must fail")
	}
}

func TestComputeSteady(t *testing.T) {
	ctx := context.Background()
	store := artifact.NewMemory()
	j := journal.NewMemory()
	metrics := NewExpvarMetricsRecorder("")
	svc := serviceWith(validModel(), store, j, metrics)

	result, err := svc.ComputeSteady(ctx, Request{Path: "model.gpkg", Cellsize: 10})
	if err != nil {
		t.Fatal(err)
	}
	if !result.Report.Empty() {
		t.Fatalf("report = %#v", result.Report)
	}
	if len(result.ElementNames) != 2 {
		t.Fatalf("element names = %v", result.ElementNames)
	}
	for _, want := range []string{"import timml\n", "model.solve()\n", "head = model.headgrid(x, y)\n"} {
		if !strings.Contains(result.Script, want) {
			t.Fatalf("script missing %q:\n%s", want, result.Script)
		}
	}

	infos, err := store.List(ctx, "runs/"+result.RunID+"/")
	if err != nil {
		t.Fatal(err)
	}
	if len(infos) != 2 {
		t.Fatalf("artifacts = %+v", infos)
	}

	run, ok, err := j.Get(ctx, result.RunID)
	if err != nil || !ok {
		t.Fatalf("journal get = %v, %v", ok, err)
	}
	if run.Status != journal.StatusSucceeded || run.Operation != OperationSteady {
		t.Fatalf("run = %+v", run)
	}
	if len(run.Artifacts) != 2 {
		t.Fatalf("run artifacts = %v", run.Artifacts)
	}

	snap := metrics.Snapshot()
	if snap.Results[OperationSteady]["success"] != 1 {
		t.Fatalf("metrics = %+v", snap)
	}
}

func TestComputeValidationDefects(t *testing.T) {
	ctx := context.Background()
	reader := validModel()
	aq := reader.tables["timml Aquifer:Aquifer"]
	aq.Rows[0].Cells["aquifer_k"] = tables.Number(-1)

	j := journal.NewMemory()
	svc := serviceWith(reader, artifact.NewMemory(), j, nil)

	result, err := svc.ComputeSteady(ctx, Request{Path: "model.gpkg"})
	if err != nil {
		t.Fatal(err)
	}
	if result.Report.Empty() {
		t.Fatal("defects must be reported")
	}
	if result.Script != "" || len(result.Artifacts) != 0 {
		t.Fatal("a rejected model must not produce artifacts")
	}

	run, ok, _ := j.Get(ctx, result.RunID)
	if !ok || run.Status != journal.StatusFailed {
		t.Fatalf("run = %+v", run)
	}
}

func TestComputeTransient(t *testing.T) {
	ctx := context.Background()
	reader := validModel()
	reader.names = append(reader.names,
		"ttim Temporal Settings:Aquifer",
		"ttim Computation Times:Domain",
	)
	reader.tables["timml Aquifer:Aquifer"].Rows[0].Cells["aquitard_s"] = tables.Number(0.0001)
	reader.tables["timml Aquifer:Aquifer"].Rows[0].Cells["aquifer_s"] = tables.Number(0.0002)
	reader.tables["ttim Temporal Settings:Aquifer"] = tables.Table{Rows: []tables.Row{
		{Cells: map[string]tables.Value{
			"time_min":            tables.Number(0.01),
			"laplace_inversion_M": tables.Int(10),
			"reference_date":      tables.Text("2020-01-01"),
		}},
	}}
	reader.tables["ttim Computation Times:Domain"] = tables.Table{Rows: []tables.Row{
		{Cells: map[string]tables.Value{"time": tables.Number(100)}},
	}}
	well := reader.tables["timml Well:extraction"]
	well.Rows[0].Cells["caisson_radius"] = tables.Number(0.1)
	well.Rows[0].Cells["slug"] = tables.Bool(false)

	svc := serviceWith(reader, artifact.NewMemory(), journal.NewMemory(), nil)
	result, err := svc.ComputeTransient(ctx, Request{Path: "model.gpkg"})
	if err != nil {
		t.Fatal(err)
	}
	if !result.Report.Empty() {
		t.Fatalf("report = %#v", result.Report)
	}
	if !strings.Contains(result.Script, "import ttim\n") {
		t.Fatalf("transient script must target ttim:\n%s", result.Script)
	}
	if strings.Contains(result.Script, "ttim.Constant(") {
		t.Fatalf("steady-only elements leaked into the transient script:\n%s", result.Script)
	}
	if len(result.Times) != 1 || result.Times[0] != 100 {
		t.Fatalf("times = %v", result.Times)
	}
}

func TestValidateReportsWithoutComputing(t *testing.T) {
	ctx := context.Background()
	reader := validModel()
	well := reader.tables["timml Well:extraction"]
	well.Rows[0].Cells["radius"] = tables.Number(0)

	j := journal.NewMemory()
	svc := serviceWith(reader, artifact.NewMemory(), j, nil)

	result, err := svc.Validate(ctx, Request{Path: "model.gpkg"})
	if err != nil {
		t.Fatal(err)
	}
	if result.Report.Empty() {
		t.Fatal("defective radius must be reported")
	}
	// Validation itself succeeded even though the model has defects.
	run, ok, _ := j.Get(ctx, result.RunID)
	if !ok || run.Status != journal.StatusSucceeded || run.Operation != OperationValidate {
		t.Fatalf("run = %+v", run)
	}
}

func TestRunnerQueueLimit(t *testing.T) {
	svc := serviceWith(validModel(), artifact.NewMemory(), journal.NewMemory(), nil)
	runner := NewRunner(svc, 1)
	// Not started: the queue fills up.
	if _, err := runner.Enqueue(context.Background(), Request{Path: "model.gpkg"}); err != nil {
		t.Fatal(err)
	}
	if _, err := runner.Enqueue(context.Background(), Request{Path: "model.gpkg"}); err == nil || err.Error() != "compute queue full" {
		t.Fatalf("err = %v", err)
	}
}

func TestRunnerProcessesJob(t *testing.T) {
	svc := serviceWith(validModel(), artifact.NewMemory(), journal.NewMemory(), nil)
	runner := NewRunner(svc, 4)
	runner.Start()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = runner.Stop(ctx)
	}()

	job, err := runner.Enqueue(context.Background(), Request{Path: "model.gpkg"})
	if err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		got, ok := runner.GetJob(job.ID)
		if !ok {
			t.Fatal("job vanished")
		}
		if got.Status == journal.StatusSucceeded {
			if got.Result == nil || len(got.Result.ElementNames) != 2 {
				t.Fatalf("job result = %+v", got.Result)
			}
			break
		}
		if got.Status == journal.StatusFailed {
			t.Fatalf("job failed: %s", got.Error)
		}
		if time.Now().After(deadline) {
			t.Fatalf("job stuck in %s", got.Status)
		}
		time.Sleep(10 * time.Millisecond)
	}
}
