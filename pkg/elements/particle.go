package elements

import (
	"aemcore/pkg/schema"
	"aemcore/pkg/solver"
)

func particleDefinition(kind Kind) Definition {
	return Definition{
		Kind: kind,
		Schema: schema.RowWise{
			Fields: []schema.Field{
				{Name: schema.GeometryField, Schema: schema.Required()},
				{Name: "z_start", Schema: schema.Required()},
				{Name: "time_end", Schema: schema.Required(schema.Positive())},
				{Name: "hstep_max", Schema: schema.Required(schema.StrictlyPositive())},
				{Name: "vstep_fraction", Schema: schema.Required(schema.StrictlyPositive())},
				{Name: "nstep_max", Schema: schema.Required(schema.StrictlyPositive())},
			},
		},
		TransientSchema: schema.RowWise{
			Fields: []schema.Field{
				{Name: "time_start", Schema: schema.Optional(schema.Positive())},
				{Name: "delt", Schema: schema.Optional(schema.StrictlyPositive())},
			},
			Consistency: []schema.RowConsistency{
				schema.AllOrNone("time_start", "delt"),
			},
		},
		SteadyConstructor:    "Trace",
		TransientConstructor: "Trace",
		Steady:               particleTransform(kind),
		Transient:            particleTransform(kind),
		Observation:          true,
	}
}

// particleTransform emits one tracked particle per feature. The backward
// variant is the forward one with the horizontal step negated.
func particleTransform(kind Kind) Transform {
	sign := 1.0
	if kind == KindParticleBackward {
		sign = -1.0
	}
	return func(spec ElementSpec, _ *TransformContext) ([]*solver.Kwargs, error) {
		out := make([]*solver.Kwargs, 0, spec.Table.Len())
		for _, row := range spec.Table.Rows {
			x, y := point(row)
			out = append(out, solver.NewKwargs().
				Set("xstart", x).
				Set("ystart", y).
				Set("zstart", row.Cell("z_start").Num()).
				Set("hstepmax", sign*row.Cell("hstep_max").Num()).
				Set("vstepfrac", row.Cell("vstep_fraction").Num()).
				Set("tmax", row.Cell("time_end").Num()).
				Set("nstepmax", row.Cell("nstep_max").AsInt()).
				Set("label", label(row)))
		}
		return out, nil
	}
}
