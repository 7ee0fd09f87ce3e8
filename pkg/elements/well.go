package elements

import (
	"aemcore/pkg/schema"
	"aemcore/pkg/solver"
)

func wellDefinition() Definition {
	return Definition{
		Kind: KindWell,
		Schema: schema.RowWise{
			Fields: []schema.Field{
				{Name: schema.GeometryField, Schema: schema.Required()},
				{Name: "discharge", Schema: schema.Required()},
				{Name: "radius", Schema: schema.Required(schema.StrictlyPositive())},
				{Name: "resistance", Schema: schema.Required(schema.Positive())},
				{Name: "layer", Schema: schema.Required(schema.Membership(SetAquiferLayers))},
			},
		},
		TransientSchema: schema.RowWise{
			Fields: []schema.Field{
				{Name: "caisson_radius", Schema: schema.Required(schema.Positive())},
				{Name: "slug", Schema: schema.Required()},
				{Name: "time_start", Schema: schema.Optional(schema.Time())},
				{Name: "time_end", Schema: schema.Optional(schema.Time())},
				{Name: "timeseries_id", Schema: schema.Optional(schema.Membership(SetTimeseriesIDs))},
			},
			Consistency: []schema.RowConsistency{
				schema.AllOrNone("time_start", "time_end", "discharge_transient"),
				schema.NotBoth("time_start", "timeseries_id"),
			},
		},
		TimeseriesSchema:     dischargeTimeseriesSchema(),
		SteadyConstructor:    "Well",
		TransientConstructor: "Well",
		Steady:               wellSteady,
		Transient:            wellTransient,
	}
}

func dischargeTimeseriesSchema() schema.Validator {
	return schema.TableWise{
		Columns: []schema.ColumnField{
			{Name: "timeseries_id", Schema: schema.AllRequired()},
			{Name: "time_start", Schema: schema.AllRequired(
				schema.Positive(), schema.StrictlyIncreasing(),
			)},
			{Name: "discharge", Schema: schema.AllRequired()},
		},
	}
}

func headTimeseriesSchema() schema.Validator {
	return schema.TableWise{
		Columns: []schema.ColumnField{
			{Name: "timeseries_id", Schema: schema.AllRequired()},
			{Name: "time_start", Schema: schema.AllRequired(
				schema.Positive(), schema.StrictlyIncreasing(),
			)},
			{Name: "head", Schema: schema.AllRequired()},
		},
	}
}

func wellSteady(spec ElementSpec, _ *TransformContext) ([]*solver.Kwargs, error) {
	out := make([]*solver.Kwargs, 0, spec.Table.Len())
	for _, row := range spec.Table.Rows {
		x, y := point(row)
		out = append(out, solver.NewKwargs().
			Set("xw", x).
			Set("yw", y).
			Set("Qw", row.Cell("discharge").Num()).
			Set("rw", row.Cell("radius").Num()).
			Set("res", row.Cell("resistance").Num()).
			Set("layers", row.Cell("layer").AsInt()).
			Set("label", label(row)))
	}
	return out, nil
}

func wellTransient(spec ElementSpec, ctx *TransformContext) ([]*solver.Kwargs, error) {
	out := make([]*solver.Kwargs, 0, spec.Table.Len())
	for _, row := range spec.Table.Rows {
		x, y := point(row)
		wbstype := "pumping"
		if row.Cell("slug").AsBool() {
			wbstype = "slug"
		}
		out = append(out, solver.NewKwargs().
			Set("xw", x).
			Set("yw", y).
			Set("tsandQ", transientInput(row, spec.Transient, "discharge",
				row.Cell("discharge").Num(), ctx.StartTime)).
			Set("rw", row.Cell("radius").Num()).
			Set("res", row.Cell("resistance").Num()).
			Set("layers", row.Cell("layer").AsInt()).
			Set("label", label(row)).
			Set("rc", row.Cell("caisson_radius").Num()).
			Set("wbstype", wbstype))
	}
	return out, nil
}

func headWellDefinition(kind Kind) Definition {
	return Definition{
		Kind: kind,
		Schema: schema.RowWise{
			Fields: []schema.Field{
				{Name: schema.GeometryField, Schema: schema.Required()},
				{Name: "head", Schema: schema.Required()},
				{Name: "radius", Schema: schema.Required(schema.StrictlyPositive())},
				{Name: "resistance", Schema: schema.Required(schema.Positive())},
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
				// A transient head well needs its head prescribed one way or
				// the other; a do-nothing head well is a defect.
				schema.Xor("time_start", "timeseries_id"),
			},
		},
		TimeseriesSchema:     headTimeseriesSchema(),
		SteadyConstructor:    "HeadWell",
		TransientConstructor: "HeadWell",
		Steady:               headWellSteady,
		Transient:            headWellTransient,
	}
}

func headWellSteady(spec ElementSpec, _ *TransformContext) ([]*solver.Kwargs, error) {
	out := make([]*solver.Kwargs, 0, spec.Table.Len())
	for _, row := range spec.Table.Rows {
		x, y := point(row)
		out = append(out, solver.NewKwargs().
			Set("xw", x).
			Set("yw", y).
			Set("hw", row.Cell("head").Num()).
			Set("rw", row.Cell("radius").Num()).
			Set("res", row.Cell("resistance").Num()).
			Set("layers", row.Cell("layer").AsInt()).
			Set("label", label(row)))
	}
	return out, nil
}

func headWellTransient(spec ElementSpec, ctx *TransformContext) ([]*solver.Kwargs, error) {
	out := make([]*solver.Kwargs, 0, spec.Table.Len())
	for _, row := range spec.Table.Rows {
		x, y := point(row)
		out = append(out, solver.NewKwargs().
			Set("xw", x).
			Set("yw", y).
			Set("tsandh", transientInput(row, spec.Transient, "head",
				row.Cell("head").Num(), ctx.StartTime)).
			Set("rw", row.Cell("radius").Num()).
			Set("res", row.Cell("resistance").Num()).
			Set("layers", row.Cell("layer").AsInt()).
			Set("label", label(row)))
	}
	return out, nil
}
