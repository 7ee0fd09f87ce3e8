package elements

import (
	"errors"
	"math"

	"aemcore/pkg/schema"
	"aemcore/pkg/solver"
	"aemcore/pkg/tables"
)

func circularAreaSinkDefinition() Definition {
	return Definition{
		Kind: KindCircularAreaSink,
		Schema: schema.RowWise{
			Fields: []schema.Field{
				{Name: schema.GeometryField, Schema: schema.Required()},
				{Name: "rate", Schema: schema.Required()},
				{Name: "layer", Schema: schema.Required(schema.Membership(SetAquiferLayers))},
			},
		},
		TransientSchema: schema.RowWise{
			Fields: []schema.Field{
				{Name: "time_start", Schema: schema.Optional(schema.Time())},
				{Name: "time_end", Schema: schema.Optional(schema.Time())},
				{Name: "timeseries_id", Schema: schema.Optional(schema.Membership(SetTimeseriesIDs))},
			},
			Consistency: []schema.RowConsistency{
				schema.AllOrNone("time_start", "time_end", "rate_transient"),
				schema.NotBoth("time_start", "timeseries_id"),
			},
		},
		TimeseriesSchema: schema.TableWise{
			Columns: []schema.ColumnField{
				{Name: "timeseries_id", Schema: schema.AllRequired()},
				{Name: "time_start", Schema: schema.AllRequired(
					schema.Positive(), schema.StrictlyIncreasing(),
				)},
				{Name: "rate", Schema: schema.AllRequired()},
			},
		},
		SteadyConstructor:    "CircAreaSink",
		TransientConstructor: "CircAreaSink",
		Steady:               circularAreaSinkSteady,
		Transient:            circularAreaSinkTransient,
	}
}

// circleRadius recovers the radius of a digitized circle as the distance
// from the polygon centroid to its first vertex. This approximation must not
// be replaced by a best-fit circle: existing models depend on it.
func circleRadius(row tables.Row) float64 {
	return tables.Distance(row.Centroid, row.Geometry[0])
}

// checkCircular rejects geometry whose squared vertex distances deviate more
// than one percent from the recovered radius.
func checkCircular(row tables.Row, radius float64) error {
	r2 := radius * radius
	for _, c := range row.Geometry {
		d := tables.Distance(row.Centroid, c)
		if math.Abs(d*d-r2) > 0.01*r2 {
			return errors.New("Circular Area Sink geometry is not circular")
		}
	}
	return nil
}

func circularAreaSinkSteady(spec ElementSpec, _ *TransformContext) ([]*solver.Kwargs, error) {
	out := make([]*solver.Kwargs, 0, spec.Table.Len())
	for _, row := range spec.Table.Rows {
		radius := circleRadius(row)
		if err := checkCircular(row, radius); err != nil {
			return nil, err
		}
		out = append(out, solver.NewKwargs().
			Set("xc", row.Centroid.X).
			Set("yc", row.Centroid.Y).
			Set("R", radius).
			Set("N", row.Cell("rate").Num()).
			Set("layer", row.Cell("layer").AsInt()))
	}
	return out, nil
}

func circularAreaSinkTransient(spec ElementSpec, ctx *TransformContext) ([]*solver.Kwargs, error) {
	out := make([]*solver.Kwargs, 0, spec.Table.Len())
	for _, row := range spec.Table.Rows {
		out = append(out, solver.NewKwargs().
			Set("xc", row.Centroid.X).
			Set("yc", row.Centroid.Y).
			Set("R", circleRadius(row)).
			Set("tsandN", transientInput(row, spec.Transient, "rate",
				row.Cell("rate").Num(), ctx.StartTime)).
			Set("layer", row.Cell("layer").AsInt()))
	}
	return out, nil
}
