package elements

import (
	"aemcore/pkg/solver"
	"aemcore/pkg/tables"
)

// transientInput reconstructs the value-over-time list of one feature as the
// change relative to its steady value. An explicit (time_start, time_end,
// <column>_transient) triple yields a two-step pulse; a timeseries_id
// reference yields one step per series row; neither yields a no-op step at
// the model start time. Validation guarantees at most one of the two forms.
func transientInput(row tables.Row, ts tables.Table, column string, steady float64, start float64) solver.TimeSeries {
	if id := row.Cell("timeseries_id"); !id.IsNone() {
		var out solver.TimeSeries
		for _, r := range ts.Rows {
			if !r.Cell("timeseries_id").Equal(id) {
				continue
			}
			out = append(out, [2]float64{r.Cell("time_start").Num(), r.Cell(column).Num() - steady})
		}
		return out
	}
	if t0 := row.Cell("time_start"); !t0.IsNone() {
		return solver.TimeSeries{
			{t0.Num(), row.Cell(column + "_transient").Num() - steady},
			{row.Cell("time_end").Num(), 0.0},
		}
	}
	return solver.TimeSeries{{start, 0.0}}
}

// seriesTimes returns the time coordinates of a timeseries result, used to
// extend the transient solve horizon.
func seriesTimes(series solver.TimeSeries) []float64 {
	times := make([]float64, len(series))
	for i, tv := range series {
		times[i] = tv[0]
	}
	return times
}
