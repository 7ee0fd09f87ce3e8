package elements

import (
	"aemcore/pkg/schema"
	"aemcore/pkg/solver"
)

func constantDefinition() Definition {
	return Definition{
		Kind: KindConstant,
		Schema: schema.SingleRow{
			Fields: []schema.Field{
				{Name: schema.GeometryField, Schema: schema.Required()},
				{Name: "head", Schema: schema.Required()},
				{Name: "layer", Schema: schema.Required(schema.Membership(SetAquiferLayers))},
			},
		},
		// The reference head is a steady concept; the transient solver
		// carries no Constant and the kind never enters a transient model.
		SteadyConstructor: "Constant",
		Steady:            constantTransform,
	}
}

func constantTransform(spec ElementSpec, _ *TransformContext) ([]*solver.Kwargs, error) {
	row := spec.Table.Rows[0]
	x, y := point(row)
	return []*solver.Kwargs{solver.NewKwargs().
		Set("xr", x).
		Set("yr", y).
		Set("hr", row.Cell("head").Num()).
		Set("layer", row.Cell("layer").AsInt()).
		Set("label", label(row)),
	}, nil
}

func uniformFlowDefinition() Definition {
	return Definition{
		Kind: KindUniformFlow,
		Schema: schema.SingleRow{
			Fields: []schema.Field{
				{Name: "slope", Schema: schema.Required()},
				{Name: "angle", Schema: schema.Required()},
			},
		},
		SteadyConstructor: "Uflow",
		Steady:            uniformFlowTransform,
	}
}

func uniformFlowTransform(spec ElementSpec, _ *TransformContext) ([]*solver.Kwargs, error) {
	row := spec.Table.Rows[0]
	return []*solver.Kwargs{solver.NewKwargs().
		Set("slope", row.Cell("slope").Num()).
		Set("angle", row.Cell("angle").Num()).
		Set("label", label(row)),
	}, nil
}
