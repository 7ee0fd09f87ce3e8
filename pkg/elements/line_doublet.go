package elements

import (
	"aemcore/pkg/schema"
	"aemcore/pkg/solver"
)

func impermeableLineDoubletDefinition() Definition {
	return Definition{
		Kind: KindImpermeableLineDoublet,
		Schema: schema.RowWise{
			Fields: []schema.Field{
				{Name: schema.GeometryField, Schema: schema.Required()},
				{Name: "order", Schema: schema.Required(schema.Positive())},
				{Name: "layer", Schema: schema.Required(schema.Membership(SetAquiferLayers))},
			},
		},
		SteadyConstructor: "ImpLineDoubletString",
		// The transient solver has no impermeable variant; an infinite
		// resistance wall is expressed through the leaky constructor.
		TransientConstructor: "LeakyLineDoubletString",
		Steady:               impermeableLineDoubletSteady,
		Transient:            impermeableLineDoubletTransient,
	}
}

func impermeableLineDoubletSteady(spec ElementSpec, _ *TransformContext) ([]*solver.Kwargs, error) {
	out := make([]*solver.Kwargs, 0, spec.Table.Len())
	for _, row := range spec.Table.Rows {
		out = append(out, solver.NewKwargs().
			Set("xy", pathOf(row)).
			Set("layers", row.Cell("layer").AsInt()).
			Set("order", row.Cell("order").AsInt()).
			Set("label", label(row)))
	}
	return out, nil
}

func impermeableLineDoubletTransient(spec ElementSpec, _ *TransformContext) ([]*solver.Kwargs, error) {
	out := make([]*solver.Kwargs, 0, spec.Table.Len())
	for _, row := range spec.Table.Rows {
		out = append(out, solver.NewKwargs().
			Set("xy", pathOf(row)).
			Set("res", "imp").
			Set("layers", row.Cell("layer").AsInt()).
			Set("order", row.Cell("order").AsInt()).
			Set("label", label(row)))
	}
	return out, nil
}

func leakyLineDoubletDefinition() Definition {
	return Definition{
		Kind: KindLeakyLineDoublet,
		Schema: schema.RowWise{
			Fields: []schema.Field{
				{Name: schema.GeometryField, Schema: schema.Required()},
				{Name: "resistance", Schema: schema.Required(schema.StrictlyPositive())},
				{Name: "order", Schema: schema.Required(schema.Positive())},
				{Name: "layer", Schema: schema.Required(schema.Membership(SetAquiferLayers))},
			},
		},
		SteadyConstructor:    "LeakyLineDoubletString",
		TransientConstructor: "LeakyLineDoubletString",
		Steady:               leakyLineDoubletTransform,
		Transient:            leakyLineDoubletTransform,
	}
}

func leakyLineDoubletTransform(spec ElementSpec, _ *TransformContext) ([]*solver.Kwargs, error) {
	out := make([]*solver.Kwargs, 0, spec.Table.Len())
	for _, row := range spec.Table.Rows {
		out = append(out, solver.NewKwargs().
			Set("xy", pathOf(row)).
			Set("res", row.Cell("resistance").Num()).
			Set("layers", row.Cell("layer").AsInt()).
			Set("order", row.Cell("order").AsInt()).
			Set("label", label(row)))
	}
	return out, nil
}
