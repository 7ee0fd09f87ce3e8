package elements

import (
	"aemcore/pkg/schema"
	"aemcore/pkg/solver"
	"aemcore/pkg/tables"
)

// cloneColumns copies a column view so a transform can override entries
// without touching the shared aquifer context.
func cloneColumns(cols schema.Columns) schema.Columns {
	out := make(schema.Columns, len(cols))
	for name, col := range cols {
		out[name] = append([]tables.Value(nil), col...)
	}
	return out
}

func setFirst(cols schema.Columns, name string, v tables.Value) {
	col := cols[name]
	if len(col) == 0 {
		col = make([]tables.Value, 1)
		cols[name] = col
	}
	col[0] = v
}

func polygonAreaSinkDefinition() Definition {
	return Definition{
		Kind: KindPolygonAreaSink,
		Schema: schema.RowWise{
			Fields: []schema.Field{
				{Name: schema.GeometryField, Schema: schema.Required()},
				{Name: "rate", Schema: schema.Required()},
				{Name: "order", Schema: schema.Required(schema.Positive())},
				{Name: "ndegrees", Schema: schema.Required(schema.Positive())},
			},
		},
		SteadyConstructor: "PolygonInhomMaq",
		Steady:            polygonAreaSinkTransform,
	}
}

// polygonAreaSinkTransform models a recharge polygon as an inhomogeneity
// with the background layering and no semi-confined top: the rate enters as
// the infiltration argument, not through the layering.
func polygonAreaSinkTransform(spec ElementSpec, ctx *TransformContext) ([]*solver.Kwargs, error) {
	out := make([]*solver.Kwargs, 0, spec.Table.Len())
	for _, row := range spec.Table.Rows {
		cols := cloneColumns(ctx.Aquifer)
		setFirst(cols, "aquitard_c", tables.None())
		setFirst(cols, "semiconf_top", tables.None())
		setFirst(cols, "semiconf_head", tables.None())
		kw := aquiferData(cols, false, ctx).
			Set("xy", pathOf(row)).
			Set("N", row.Cell("rate").Num()).
			Set("order", row.Cell("order").AsInt()).
			Set("ndeg", row.Cell("ndegrees").AsInt())
		out = append(out, kw)
	}
	return out, nil
}

func polygonSemiConfinedTopDefinition() Definition {
	return Definition{
		Kind: KindPolygonSemiConfinedTop,
		Schema: schema.RowWise{
			Fields: []schema.Field{
				{Name: schema.GeometryField, Schema: schema.Required()},
				{Name: "aquitard_c", Schema: schema.Required(schema.StrictlyPositive())},
				{Name: "semiconf_top", Schema: schema.Required()},
				{Name: "semiconf_head", Schema: schema.Required()},
				{Name: "order", Schema: schema.Required(schema.Positive())},
				{Name: "ndegrees", Schema: schema.Required(schema.Positive())},
			},
		},
		SteadyConstructor: "PolygonInhomMaq",
		Steady:            polygonSemiConfinedTopTransform,
	}
}

// polygonSemiConfinedTopTransform overrides the semi-confined triple of the
// background layering inside the polygon.
func polygonSemiConfinedTopTransform(spec ElementSpec, ctx *TransformContext) ([]*solver.Kwargs, error) {
	out := make([]*solver.Kwargs, 0, spec.Table.Len())
	for _, row := range spec.Table.Rows {
		cols := cloneColumns(ctx.Aquifer)
		setFirst(cols, "aquitard_c", row.Cell("aquitard_c"))
		setFirst(cols, "semiconf_top", row.Cell("semiconf_top"))
		setFirst(cols, "semiconf_head", row.Cell("semiconf_head"))
		kw := aquiferData(cols, false, ctx).
			Set("xy", pathOf(row)).
			Set("order", row.Cell("order").AsInt()).
			Set("ndeg", row.Cell("ndegrees").AsInt())
		out = append(out, kw)
	}
	return out, nil
}
