package elements

import (
	"aemcore/pkg/schema"
	"aemcore/pkg/solver"
	"aemcore/pkg/tables"
)

func aquiferDefinition() Definition {
	return Definition{
		Kind: KindAquifer,
		Schema: schema.TableWise{
			Columns: []schema.ColumnField{
				{Name: "layer", Schema: schema.AllRequired(schema.Range())},
				{Name: "aquifer_top", Schema: schema.AllRequired(schema.StrictlyDecreasing())},
				{Name: "aquifer_bottom", Schema: schema.AllRequired(schema.StrictlyDecreasing())},
				{Name: "aquitard_c", Schema: schema.OffsetAllRequired(schema.StrictlyPositive())},
				{Name: "aquifer_k", Schema: schema.AllRequired(schema.StrictlyPositive())},
				{Name: "semiconf_top", Schema: schema.OptionalFirstOnly()},
				{Name: "semiconf_head", Schema: schema.OptionalFirstOnly()},
			},
			Consistency: []schema.TableConsistency{
				schema.SemiConfined(),
				schema.AllGreaterEqual("aquifer_top", "aquifer_bottom"),
			},
		},
		TransientSchema: schema.TableWise{
			Columns: []schema.ColumnField{
				{Name: "aquitard_s", Schema: schema.OffsetAllRequired(schema.Positive())},
				{Name: "aquifer_s", Schema: schema.AllRequired(schema.Positive())},
			},
		},
		// Temporal settings attach to the aquifer group as its transient
		// table; a single row of solve settings.
		TimeseriesSchema: schema.SingleRow{
			Fields: []schema.Field{
				{Name: "time_min", Schema: schema.Required(schema.StrictlyPositive())},
				{Name: "laplace_inversion_M", Schema: schema.Required(schema.StrictlyPositive())},
				{Name: "reference_date", Schema: schema.Required()},
			},
		},
	}
}

func nums(values []tables.Value) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = v.Num()
	}
	return out
}

// interleave alternates the entries of two equal-length columns:
// a0, b0, a1, b1, ...
func interleave(a, b []float64) []float64 {
	out := make([]float64, 0, len(a)+len(b))
	for i := range a {
		out = append(out, a[i])
		if i < len(b) {
			out = append(out, b[i])
		}
	}
	return out
}

func isSemiConfined(cols schema.Columns) bool {
	return !cols.First("aquitard_c").IsNone() &&
		!cols.First("semiconf_top").IsNone() &&
		!cols.First("semiconf_head").IsNone()
}

// aquiferData builds the model-constructor arguments from a layer
// configuration table. The vertical discretization interleaves aquifer tops
// and bottoms into one elevation array; when a semi-confined top is
// configured its top elevation is prepended and the first aquitard slot
// stays, otherwise the first aquitard entry of resistance, porosity, and
// storage is dropped. Shared by the global aquifer and every polygon
// inhomogeneity variant.
func aquiferData(cols schema.Columns, transient bool, ctx *TransformContext) *solver.Kwargs {
	semi := isSemiConfined(cols)

	z := interleave(nums(cols.Column("aquifer_top")), nums(cols.Column("aquifer_bottom")))
	c := nums(cols.Column("aquitard_c"))
	npor := interleave(nums(cols.Column("aquitard_npor")), nums(cols.Column("aquifer_npor")))

	topboundary := "conf"
	if semi {
		topboundary = "semi"
		z = append([]float64{cols.First("semiconf_top").Num()}, z...)
	} else {
		c = c[1:]
		npor = npor[1:]
	}

	kw := solver.NewKwargs().
		Set("kaq", nums(cols.Column("aquifer_k"))).
		Set("z", z).
		Set("c", c).
		Set("npor", npor).
		Set("topboundary", topboundary)

	if transient {
		sll := nums(cols.Column("aquitard_s"))
		if !semi {
			sll = sll[1:]
		}
		kw.Set("Saq", nums(cols.Column("aquifer_s"))).
			Set("Sll", sll).
			Set("phreatictop", true).
			Set("tmin", ctx.TimeMin).
			Set("tstart", ctx.StartTime).
			Set("M", ctx.LaplaceM)
	} else {
		var hstar any
		if semi {
			hstar = cols.First("semiconf_head").Num()
		}
		kw.Set("hstar", hstar)
	}

	if res := cols.First("resistance"); !res.IsNone() {
		kw.Set("res", res.Num())
	}
	return kw
}
