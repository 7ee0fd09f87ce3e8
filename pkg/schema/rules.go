package schema

import (
	"fmt"
	"strings"

	"aemcore/pkg/tables"
)

// validateEach applies a per-value check to every non-absent entry.
func validateEach(values []tables.Value, check func(v tables.Value) string) []string {
	var reasons []string
	for _, v := range values {
		if v.IsNone() {
			continue
		}
		if msg := check(v); msg != "" {
			reasons = append(reasons, msg)
		}
	}
	return reasons
}

func validateAll(rules []Rule, values []tables.Value, ctx *Context) []string {
	var reasons []string
	for _, rule := range rules {
		reasons = append(reasons, rule.Validate(values, ctx)...)
	}
	return reasons
}

type positive struct{}

// Positive accepts values greater than or equal to zero.
func Positive() Rule { return positive{} }

func (positive) Validate(values []tables.Value, _ *Context) []string {
	return validateEach(values, func(v tables.Value) string {
		if v.Num() < 0 {
			return fmt.Sprintf("Non-positive value: %s", v)
		}
		return ""
	})
}

type strictlyPositive struct{}

// StrictlyPositive accepts values greater than zero.
func StrictlyPositive() Rule { return strictlyPositive{} }

func (strictlyPositive) Validate(values []tables.Value, _ *Context) []string {
	return validateEach(values, func(v tables.Value) string {
		if v.Num() <= 0 {
			return fmt.Sprintf("Value is not strictly positive: %s", v)
		}
		return ""
	})
}

type membership struct{ set string }

// Membership requires each value to appear in the named context set.
func Membership(set string) Rule { return membership{set: set} }

func (m membership) Validate(values []tables.Value, ctx *Context) []string {
	members := ctx.Members(m.set)
	return validateEach(values, func(v tables.Value) string {
		for _, member := range members {
			if v.Equal(member) {
				return ""
			}
		}
		return fmt.Sprintf("Value %s not found in %s: %s", v, m.set, tables.FormatValues(members))
	})
}

type timeRule struct{}

// Time requires each value to fall inside the model time window carried by
// the context. Without a window the rule passes.
func Time() Rule { return timeRule{} }

func (timeRule) Validate(values []tables.Value, ctx *Context) []string {
	if ctx == nil || ctx.TimeStart.IsNone() || ctx.TimeEnd.IsNone() {
		return nil
	}
	start, end := ctx.TimeStart.Num(), ctx.TimeEnd.Num()
	return validateEach(values, func(v tables.Value) string {
		if t := v.Num(); t <= start || t >= end {
			return fmt.Sprintf("time does not fall in model time window: %s to %s", ctx.TimeStart, ctx.TimeEnd)
		}
		return ""
	})
}

type rangeRule struct{}

// Range requires the collection to equal 0..n-1 exactly: contiguous layer
// numbering starting at zero.
func Range() Rule { return rangeRule{} }

func (rangeRule) Validate(values []tables.Value, _ *Context) []string {
	expected := make([]tables.Value, len(values))
	ok := true
	for i := range values {
		expected[i] = tables.Int(i)
		if !values[i].Equal(expected[i]) {
			ok = false
		}
	}
	if ok {
		return nil
	}
	return []string{fmt.Sprintf("Expected %s; received %s", tables.FormatValues(expected), tables.FormatValues(values))}
}

type ordering struct {
	strict     bool
	descending bool
}

// Increasing requires non-absent values to be non-decreasing.
func Increasing() Rule { return ordering{} }

// StrictlyIncreasing requires non-absent values to increase without repeats.
func StrictlyIncreasing() Rule { return ordering{strict: true} }

// Decreasing requires non-absent values to be non-increasing.
func Decreasing() Rule { return ordering{descending: true} }

// StrictlyDecreasing requires non-absent values to decrease without repeats.
func StrictlyDecreasing() Rule { return ordering{strict: true, descending: true} }

func (o ordering) Validate(values []tables.Value, _ *Context) []string {
	kept := tables.DiscardNone(values)
	for i := 0; i+1 < len(kept); i++ {
		a, b := kept[i].Num(), kept[i+1].Num()
		if o.descending {
			a, b = b, a
		}
		monotonic := a <= b
		if o.strict {
			monotonic = a < b
		}
		if !monotonic {
			return []string{o.message(kept)}
		}
	}
	return nil
}

func (o ordering) message(kept []tables.Value) string {
	direction := "increasing"
	if o.descending {
		direction = "decreasing"
	}
	if o.strict {
		return fmt.Sprintf("Values are not strictly %s (no repeated values): %s", direction, tables.FormatValues(kept))
	}
	return fmt.Sprintf("Values are not %s: %s", direction, tables.FormatValues(kept))
}

type firstOnly struct{ rules []Rule }

// FirstOnly allows only the first entry of a collection to hold a value.
// Wrapped rules still apply to the collection.
func FirstOnly(rules ...Rule) Rule { return firstOnly{rules: rules} }

func (f firstOnly) Validate(values []tables.Value, ctx *Context) []string {
	for _, v := range values[min(1, len(values)):] {
		if !v.IsNone() {
			return []string{"Only the first value may be filled in."}
		}
	}
	return validateAll(f.rules, values, ctx)
}

type atleastOneTrue struct{}

// AtleastOneTrue requires at least one true entry, used for per-layer wall
// flags that must enable the wall somewhere.
func AtleastOneTrue() Rule { return atleastOneTrue{} }

func (atleastOneTrue) Validate(values []tables.Value, _ *Context) []string {
	for _, v := range values {
		if v.AsBool() {
			return nil
		}
	}
	return []string{"At least one value must be true."}
}

func missingRows(values []tables.Value, offset int) string {
	var missing []string
	for i, v := range values {
		if v.IsNone() {
			missing = append(missing, fmt.Sprintf("%d", i+1+offset))
		}
	}
	if len(missing) == 0 {
		return ""
	}
	return fmt.Sprintf("No values provided at row(s): %s", strings.Join(missing, ", "))
}
