package elements

import (
	"aemcore/pkg/schema"
	"aemcore/pkg/solver"
)

func headLineSinkDefinition() Definition {
	return Definition{
		Kind: KindHeadLineSink,
		Schema: schema.RowWise{
			Fields: []schema.Field{
				{Name: schema.GeometryField, Schema: schema.Required()},
				{Name: "head", Schema: schema.Required()},
				{Name: "resistance", Schema: schema.Required(schema.Positive())},
				{Name: "width", Schema: schema.Required(schema.Positive())},
				{Name: "order", Schema: schema.Required(schema.Positive())},
				{Name: "layer", Schema: schema.Required(schema.Membership(SetAquiferLayers))},
			},
		},
		TransientSchema: schema.RowWise{
			Fields: []schema.Field{
				{Name: "time_start", Schema: schema.Optional(schema.Positive())},
				{Name: "time_end", Schema: schema.Optional(schema.Positive())},
				{Name: "timeseries_id", Schema: schema.Optional(schema.Membership(SetTimeseriesIDs))},
			},
			Consistency: []schema.RowConsistency{
				schema.AllOrNone("time_start", "time_end", "head_transient"),
				schema.NotBoth("time_start", "timeseries_id"),
			},
		},
		TimeseriesSchema:     headTimeseriesSchema(),
		SteadyConstructor:    "HeadLineSinkString",
		TransientConstructor: "HeadLineSinkString",
		Steady:               headLineSinkSteady,
		Transient:            headLineSinkTransient,
	}
}

func headLineSinkSteady(spec ElementSpec, _ *TransformContext) ([]*solver.Kwargs, error) {
	out := make([]*solver.Kwargs, 0, spec.Table.Len())
	for _, row := range spec.Table.Rows {
		out = append(out, solver.NewKwargs().
			Set("xy", pathOf(row)).
			Set("hls", row.Cell("head").Num()).
			Set("res", row.Cell("resistance").Num()).
			Set("wh", row.Cell("width").Num()).
			Set("order", row.Cell("order").AsInt()).
			Set("layers", row.Cell("layer").AsInt()).
			Set("label", label(row)))
	}
	return out, nil
}

func headLineSinkTransient(spec ElementSpec, ctx *TransformContext) ([]*solver.Kwargs, error) {
	out := make([]*solver.Kwargs, 0, spec.Table.Len())
	for _, row := range spec.Table.Rows {
		out = append(out, solver.NewKwargs().
			Set("xy", pathOf(row)).
			Set("tsandh", transientInput(row, spec.Transient, "head",
				row.Cell("head").Num(), ctx.StartTime)).
			Set("res", row.Cell("resistance").Num()).
			Set("wh", row.Cell("width").Num()).
			Set("layers", row.Cell("layer").AsInt()).
			Set("label", label(row)))
	}
	return out, nil
}

func lineSinkDitchDefinition() Definition {
	return Definition{
		Kind: KindLineSinkDitch,
		Schema: schema.RowWise{
			Fields: []schema.Field{
				{Name: schema.GeometryField, Schema: schema.Required()},
				{Name: "discharge", Schema: schema.Required()},
				{Name: "resistance", Schema: schema.Required(schema.Positive())},
				{Name: "width", Schema: schema.Required(schema.Positive())},
				{Name: "order", Schema: schema.Required(schema.Positive())},
				{Name: "layer", Schema: schema.Required(schema.Membership(SetAquiferLayers))},
			},
		},
		TransientSchema: schema.RowWise{
			Fields: []schema.Field{
				{Name: "time_start", Schema: schema.Optional(schema.Positive())},
				{Name: "time_end", Schema: schema.Optional(schema.Positive())},
				{Name: "timeseries_id", Schema: schema.Optional(schema.Membership(SetTimeseriesIDs))},
			},
			Consistency: []schema.RowConsistency{
				schema.AllOrNone("time_start", "time_end", "discharge_transient"),
				schema.NotBoth("time_start", "timeseries_id"),
			},
		},
		TimeseriesSchema:     dischargeTimeseriesSchema(),
		SteadyConstructor:    "LineSinkDitchString",
		TransientConstructor: "LineSinkDitchString",
		Steady:               lineSinkDitchSteady,
		Transient:            lineSinkDitchTransient,
	}
}

func lineSinkDitchSteady(spec ElementSpec, _ *TransformContext) ([]*solver.Kwargs, error) {
	out := make([]*solver.Kwargs, 0, spec.Table.Len())
	for _, row := range spec.Table.Rows {
		out = append(out, solver.NewKwargs().
			Set("xy", pathOf(row)).
			Set("Qls", row.Cell("discharge").Num()).
			Set("res", row.Cell("resistance").Num()).
			Set("wh", row.Cell("width").Num()).
			Set("order", row.Cell("order").AsInt()).
			Set("layers", row.Cell("layer").AsInt()).
			Set("label", label(row)))
	}
	return out, nil
}

func lineSinkDitchTransient(spec ElementSpec, ctx *TransformContext) ([]*solver.Kwargs, error) {
	out := make([]*solver.Kwargs, 0, spec.Table.Len())
	for _, row := range spec.Table.Rows {
		out = append(out, solver.NewKwargs().
			Set("xy", pathOf(row)).
			Set("tsandQ", transientInput(row, spec.Transient, "discharge",
				row.Cell("discharge").Num(), ctx.StartTime)).
			Set("res", row.Cell("resistance").Num()).
			Set("wh", row.Cell("width").Num()).
			Set("layers", row.Cell("layer").AsInt()).
			Set("label", label(row)))
	}
	return out, nil
}
