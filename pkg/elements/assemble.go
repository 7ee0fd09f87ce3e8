package elements

import (
	"fmt"

	"aemcore/pkg/schema"
	"aemcore/pkg/solver"
)

// Assembly is the result of feeding a validated specification to a solver
// engine: the unsolved model, the name index of constructed elements, and the
// observation payloads collected for post-solve evaluation.
type Assembly struct {
	Model solver.Model
	// ElementNames lists the constructed element index keys
	// ("{table name}_{row index}") in construction order.
	ElementNames []string
	// Observations holds the payloads of observation-type rows, keyed by
	// table name. They are evaluated after the solve, never constructed.
	Observations map[string][]*solver.Kwargs
	// Times is the transient solve horizon: every time coordinate reaching
	// the model, ascending tmax candidate set. Empty for steady runs.
	Times []float64
}

type elementCalls struct {
	spec        ElementSpec
	constructor string
	observation bool
	payloads    []*solver.Kwargs
}

// Assemble turns a validated specification into a solver model. Only called
// on an empty validation report; transforms assume well-formed input. The
// returned model is unsolved.
func Assemble(spec *ModelSpecification, cat *Catalogue, engine solver.Engine, transient bool) (*Assembly, error) {
	ctx := &TransformContext{Aquifer: schema.ColumnsOf(spec.Aquifer.Table)}
	if transient && !spec.TemporalSettings.Empty() {
		settings := spec.TemporalSettings.Rows[0]
		ctx.TimeMin = settings.Cell("time_min").Num()
		ctx.LaplaceM = settings.Cell("laplace_inversion_M").AsInt()
	}

	calls, err := collectCalls(spec, cat, ctx, transient)
	if err != nil {
		return nil, err
	}

	asm := &Assembly{Observations: map[string][]*solver.Kwargs{}}
	aquifer := aquiferData(ctx.Aquifer, transient, ctx)
	if transient {
		asm.Times = collectTimes(calls, spec)
		aquifer.Set("tmax", maxTime(asm.Times))
	}

	model, err := engine.NewModel(aquifer)
	if err != nil {
		return nil, fmt.Errorf("construct model: %w", err)
	}
	asm.Model = model

	for _, c := range calls {
		if c.observation {
			asm.Observations[c.spec.TableName] = c.payloads
			continue
		}
		for i, kw := range c.payloads {
			name := fmt.Sprintf("%s_%d", c.spec.TableName, i)
			if err := model.AddElement(name, c.constructor, kw); err != nil {
				return nil, fmt.Errorf("construct %s: %w", name, err)
			}
			asm.ElementNames = append(asm.ElementNames, name)
		}
	}
	return asm, nil
}

// collectCalls runs every transform in deterministic order: reference-head
// constants first, then the remaining instances in specification order.
// Inactive and empty instances are skipped. In a transient run, kinds without
// a transient transform are skipped too: the transient solver has no
// counterpart for them.
func collectCalls(spec *ModelSpecification, cat *Catalogue, ctx *TransformContext, transient bool) ([]elementCalls, error) {
	var calls []elementCalls
	for _, pass := range []func(Kind) bool{
		func(k Kind) bool { return k == KindConstant },
		func(k Kind) bool { return k != KindConstant },
	} {
		for _, es := range spec.Elements {
			if !pass(es.Kind) || !es.Active || es.Table.Empty() {
				continue
			}
			def, err := cat.Lookup(es.Kind)
			if err != nil {
				return nil, err
			}
			transform, constructor := def.Steady, def.SteadyConstructor
			if transient {
				if def.Transient == nil {
					continue
				}
				transform, constructor = def.Transient, def.TransientConstructor
			}
			payloads, err := transform(es, ctx)
			if err != nil {
				return nil, fmt.Errorf("transform %s: %w", es.TableName, err)
			}
			calls = append(calls, elementCalls{
				spec:        es,
				constructor: constructor,
				observation: def.Observation,
				payloads:    payloads,
			})
		}
	}
	return calls, nil
}

// collectTimes gathers every time coordinate entering the transient model:
// requested output times plus the step times of every transient input and
// observation horizon. The maximum bounds the solve.
func collectTimes(calls []elementCalls, spec *ModelSpecification) []float64 {
	times := OutputTimes(spec.OutputTimes)
	for _, c := range calls {
		for _, kw := range c.payloads {
			for _, key := range kw.Keys() {
				v, _ := kw.Get(key)
				switch tv := v.(type) {
				case solver.TimeSeries:
					times = append(times, seriesTimes(tv)...)
				case []float64:
					if key == "t" {
						times = append(times, tv...)
					}
				}
			}
		}
	}
	return times
}

func maxTime(times []float64) float64 {
	var max float64
	for _, t := range times {
		if t > max {
			max = t
		}
	}
	return max
}
