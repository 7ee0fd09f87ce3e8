package elements

import (
	"fmt"

	"aemcore/pkg/schema"
	"aemcore/pkg/tables"
)

// Named context sets consumed by Membership rules.
const (
	SetAquiferLayers    = "aquifer layers"
	SetTimeseriesIDs    = "timeseries ids"
	SetInhomogeneityIDs = "properties inhomogeneity_id"
)

// Validate checks every active element instance of a specification plus the
// two singletons, collecting all defects into one report keyed by stored
// table name. Domain-input defects never travel as errors; a non-nil error
// marks a programming invariant (unknown element type).
func Validate(spec *ModelSpecification, cat *Catalogue, transient bool) (schema.Report, error) {
	report := schema.Report{}
	ctx := &schema.Context{Sets: map[string][]tables.Value{
		SetAquiferLayers: tables.DiscardNone(spec.Aquifer.Table.Distinct("layer")),
	}}
	if transient {
		// Explicit start and end times must fall inside the model time
		// window: from the minimum solve time to the last computation time.
		if !spec.TemporalSettings.Empty() {
			ctx.TimeStart = spec.TemporalSettings.Rows[0].Cell("time_min")
		}
		if times := OutputTimes(spec.OutputTimes); len(times) > 0 {
			ctx.TimeEnd = tables.Number(times[len(times)-1])
		}
	}

	if err := validateSingletons(spec, cat, transient, ctx, report); err != nil {
		return nil, err
	}

	for _, es := range spec.Elements {
		if !es.Active {
			continue
		}
		def, err := cat.Lookup(es.Kind)
		if err != nil {
			return nil, err
		}
		report.Add(es.TableName, validateElement(def, es, ctx, transient))
	}
	return report, nil
}

func validateSingletons(spec *ModelSpecification, cat *Catalogue, transient bool, ctx *schema.Context, report schema.Report) error {
	aquifer, err := cat.Lookup(KindAquifer)
	if err != nil {
		return err
	}
	var ar schema.ElementReport
	ar.Merge(aquifer.Schema.Validate(spec.Aquifer.Table, ctx))
	if transient {
		ar.Merge(aquifer.TransientSchema.Validate(spec.Aquifer.Table, ctx))
		report.Add(spec.Aquifer.TransientTableName,
			aquifer.TimeseriesSchema.Validate(spec.TemporalSettings, ctx))
	}
	report.Add(spec.Aquifer.TableName, ar)

	domain, err := cat.Lookup(KindDomain)
	if err != nil {
		return err
	}
	report.Add(spec.Domain.TableName, domain.Schema.Validate(spec.Domain.Table, ctx))
	if transient {
		report.Add(spec.Domain.TransientTableName,
			domain.TimeseriesSchema.Validate(spec.OutputTimes, ctx))
	}
	return nil
}

func validateElement(def Definition, es ElementSpec, ctx *schema.Context, transient bool) schema.ElementReport {
	elemCtx := ctx
	if def.AssociatedSchema != nil {
		elemCtx = elemCtx.WithSet(SetInhomogeneityIDs,
			tables.DiscardNone(es.Associated.Distinct("inhomogeneity_id")))
	}
	if transient && def.TimeseriesSchema != nil {
		elemCtx = elemCtx.WithSet(SetTimeseriesIDs,
			tables.DiscardNone(es.Transient.Distinct("timeseries_id")))
	}

	var report schema.ElementReport
	report.Merge(def.Schema.Validate(es.Table, elemCtx))

	if def.AssociatedSchema != nil {
		for _, g := range es.Associated.GroupBy("inhomogeneity_id") {
			section := fmt.Sprintf("Properties, inhomogeneity_id %s", g.Key)
			groupReport := def.AssociatedSchema.Validate(es.Associated.Subtable(g.Rows), elemCtx)
			report.AddNested(section, groupReport.Global)
		}
	}

	if transient {
		if def.TransientSchema != nil {
			report.Merge(def.TransientSchema.Validate(es.Table, elemCtx))
		}
		if def.TimeseriesSchema != nil && !es.Transient.Empty() {
			for _, g := range es.Transient.GroupBy("timeseries_id") {
				section := fmt.Sprintf("Timeseries, timeseries id %s", g.Key)
				groupReport := def.TimeseriesSchema.Validate(es.Transient.Subtable(g.Rows), elemCtx)
				report.AddNested(section, groupReport.Global)
			}
		}
	}
	return report
}

// BuildAndValidate reads the table store, builds the model specification,
// and validates it. A non-empty report means the specification must not be
// assembled.
func BuildAndValidate(reader TableReader, active map[string]bool, transient bool) (*ModelSpecification, schema.Report, error) {
	spec, err := BuildSpecification(reader, active)
	if err != nil {
		return nil, nil, err
	}
	cat := NewCatalogue()
	report, err := Validate(spec, cat, transient)
	if err != nil {
		return nil, nil, err
	}
	return spec, report, nil
}
