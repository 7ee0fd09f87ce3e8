package elements

import (
	"aemcore/pkg/schema"
	"aemcore/pkg/solver"
	"aemcore/pkg/tables"
)

func headObservationDefinition() Definition {
	return Definition{
		Kind: KindHeadObservation,
		Schema: schema.RowWise{
			Fields: []schema.Field{
				{Name: schema.GeometryField, Schema: schema.Required()},
			},
		},
		TimeseriesSchema: schema.TableWise{
			Columns: []schema.ColumnField{
				{Name: "timeseries_id", Schema: schema.AllRequired()},
				{Name: "time", Schema: schema.AllRequired(
					schema.Positive(), schema.StrictlyIncreasing(),
				)},
			},
		},
		SteadyConstructor:    "Observation",
		TransientConstructor: "Observation",
		Steady:               headObservationSteady,
		Transient:            headObservationTransient,
		Observation:          true,
	}
}

func headObservationSteady(spec ElementSpec, _ *TransformContext) ([]*solver.Kwargs, error) {
	out := make([]*solver.Kwargs, 0, spec.Table.Len())
	for _, row := range spec.Table.Rows {
		x, y := point(row)
		out = append(out, solver.NewKwargs().
			Set("x", x).
			Set("y", y).
			Set("label", label(row)))
	}
	return out, nil
}

func observationTimes(row tables.Row, ts tables.Table) []float64 {
	id := row.Cell("timeseries_id")
	var times []float64
	for _, r := range ts.Rows {
		if !id.IsNone() && !r.Cell("timeseries_id").Equal(id) {
			continue
		}
		if t := r.Cell("time"); !t.IsNone() {
			times = append(times, t.Num())
		}
	}
	return times
}

func headObservationTransient(spec ElementSpec, _ *TransformContext) ([]*solver.Kwargs, error) {
	out := make([]*solver.Kwargs, 0, spec.Table.Len())
	for _, row := range spec.Table.Rows {
		x, y := point(row)
		out = append(out, solver.NewKwargs().
			Set("x", x).
			Set("y", y).
			Set("t", observationTimes(row, spec.Transient)).
			Set("label", label(row)))
	}
	return out, nil
}

func dischargeObservationDefinition() Definition {
	return Definition{
		Kind: KindDischargeObservation,
		Schema: schema.RowWise{
			Fields: []schema.Field{
				{Name: schema.GeometryField, Schema: schema.Required()},
				{Name: "legendre_method", Schema: schema.Required()},
				{Name: "ndegrees", Schema: schema.Required(schema.Positive())},
			},
		},
		SteadyConstructor: "DischargeObservation",
		Steady:            dischargeObservationTransform,
		Observation:       true,
	}
}

func dischargeObservationTransform(spec ElementSpec, _ *TransformContext) ([]*solver.Kwargs, error) {
	out := make([]*solver.Kwargs, 0, spec.Table.Len())
	for _, row := range spec.Table.Rows {
		method := "quad"
		if row.Cell("legendre_method").AsBool() {
			method = "legendre"
		}
		out = append(out, solver.NewKwargs().
			Set("xy", pathOf(row)).
			Set("method", method).
			Set("ndeg", row.Cell("ndegrees").AsInt()).
			Set("label", label(row)))
	}
	return out, nil
}
