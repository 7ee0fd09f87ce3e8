// Package elements holds the element catalogue of the modeling pipeline: one
// definition per element type, carrying its validation schemas and the
// transforms that turn validated rows into solver keyword arguments. The
// package also parses stored table names, builds model specifications, and
// assembles validated specifications into a solver model.
package elements

import (
	"fmt"
	"sort"
	"strings"

	"aemcore/pkg/schema"
	"aemcore/pkg/solver"
	"aemcore/pkg/tables"
)

// Kind identifies an element type. The names are part of the stored table
// naming convention and must not change.
type Kind string

const (
	KindAquifer                Kind = "Aquifer"
	KindDomain                 Kind = "Domain"
	KindConstant               Kind = "Constant"
	KindUniformFlow            Kind = "Uniform Flow"
	KindWell                   Kind = "Well"
	KindHeadWell               Kind = "Head Well"
	KindRemoteHeadWell         Kind = "Remote Head Well"
	KindHeadLineSink           Kind = "Head Line Sink"
	KindLineSinkDitch          Kind = "Line Sink Ditch"
	KindCircularAreaSink       Kind = "Circular Area Sink"
	KindImpermeableLineDoublet Kind = "Impermeable Line Doublet"
	KindLeakyLineDoublet       Kind = "Leaky Line Doublet"
	KindPolygonAreaSink        Kind = "Polygon Area Sink"
	KindPolygonSemiConfinedTop Kind = "Polygon Semi-Confined Top"
	KindPolygonInhomogeneity   Kind = "Polygon Inhomogeneity"
	KindBuildingPit            Kind = "Building Pit"
	KindLeakyBuildingPit       Kind = "Leaky Building Pit"
	KindHeadObservation        Kind = "Head Observation"
	KindDischargeObservation   Kind = "Discharge Observation"
	KindParticleForward        Kind = "Particle Forward"
	KindParticleBackward       Kind = "Particle Backward"
)

// TransformContext carries the model-wide inputs a transform may need beyond
// its own tables: the global aquifer layering and the transient solve
// settings.
type TransformContext struct {
	// Aquifer is the column view of the global aquifer table.
	Aquifer schema.Columns
	// TimeMin and LaplaceM come from the temporal settings table and feed
	// the transient model constructor.
	TimeMin  float64
	LaplaceM int
	// StartTime is the model start time; no-op transient inputs anchor here.
	StartTime float64
}

// Transform turns one validated element specification into the ordered
// keyword-argument payloads of its solver constructor calls, one per feature.
// Transforms run only after validation passed and assume well-formed input.
type Transform func(spec ElementSpec, ctx *TransformContext) ([]*solver.Kwargs, error)

// Definition is one element-type record: validation schemas for the steady
// and transient views, plus the transforms and solver constructor names.
// Element behavior is dispatched through this record, never through type
// hierarchies.
type Definition struct {
	Kind Kind

	// Schema validates the primary attribute table. TransientSchema holds
	// the additional rules that apply to the same table in a transient run.
	Schema          schema.Validator
	TransientSchema schema.Validator

	// AssociatedSchema validates the properties table per inhomogeneity_id
	// group. TimeseriesSchema validates the attached timeseries table per
	// timeseries id group.
	AssociatedSchema schema.Validator
	TimeseriesSchema schema.Validator

	SteadyConstructor    string
	TransientConstructor string
	Steady               Transform
	Transient            Transform

	// Observation marks element types whose rows are collected for
	// post-solve evaluation instead of constructed into the model.
	Observation bool
}

// UnknownElementTypeError reports an element type reaching assembly that the
// catalogue does not carry. This is a programming error: grouping should have
// rejected the name.
type UnknownElementTypeError struct {
	Kind      Kind
	Available []Kind
}

func (e *UnknownElementTypeError) Error() string {
	names := make([]string, len(e.Available))
	for i, k := range e.Available {
		names[i] = string(k)
	}
	sort.Strings(names)
	return fmt.Sprintf("unknown element type %q; available types: %s",
		string(e.Kind), strings.Join(names, ", "))
}

func label(row tables.Row) any {
	if v := row.Cell("label"); !v.IsNone() {
		return v.AsText()
	}
	return nil
}

// pathOf returns the feature's vertex sequence with repeated vertices
// removed, as the xy argument of line and polygon constructors.
func pathOf(row tables.Row) solver.Path {
	coords := tables.DedupCoords(row.Geometry)
	path := make(solver.Path, len(coords))
	for i, c := range coords {
		path[i] = [2]float64{c.X, c.Y}
	}
	return path
}

func point(row tables.Row) (float64, float64) {
	if len(row.Geometry) == 0 {
		return 0, 0
	}
	return row.Geometry[0].X, row.Geometry[0].Y
}
