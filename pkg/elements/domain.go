package elements

import (
	"errors"
	"math"

	"aemcore/pkg/schema"
	"aemcore/pkg/tables"
)

func domainDefinition() Definition {
	return Definition{
		Kind: KindDomain,
		Schema: schema.SingleRow{
			Fields: []schema.Field{
				{Name: schema.GeometryField, Schema: schema.Required()},
			},
		},
		// Computation times attach to the domain group as its transient
		// table: the requested output times of a transient solve.
		TimeseriesSchema: schema.TableWise{
			Columns: []schema.ColumnField{
				{Name: "time", Schema: schema.AllRequired(
					schema.Positive(), schema.StrictlyIncreasing(),
				)},
			},
		},
	}
}

// Extent is the rectangular solve extent derived from the domain polygon.
type Extent struct {
	XMin, XMax float64
	YMin, YMax float64
}

// DomainExtent computes the bounding box of the domain feature.
func DomainExtent(t tables.Table) (Extent, error) {
	if t.Empty() || len(t.Rows[0].Geometry) == 0 {
		return Extent{}, errors.New("domain table has no geometry")
	}
	e := Extent{
		XMin: math.Inf(1), XMax: math.Inf(-1),
		YMin: math.Inf(1), YMax: math.Inf(-1),
	}
	for _, c := range t.Rows[0].Geometry {
		e.XMin = math.Min(e.XMin, c.X)
		e.XMax = math.Max(e.XMax, c.X)
		e.YMin = math.Min(e.YMin, c.Y)
		e.YMax = math.Max(e.YMax, c.Y)
	}
	return e, nil
}

// OutputTimes returns the requested transient output times in table order.
func OutputTimes(t tables.Table) []float64 {
	var times []float64
	for _, row := range t.Rows {
		if v := row.Cell("time"); !v.IsNone() {
			times = append(times, v.Num())
		}
	}
	return times
}
