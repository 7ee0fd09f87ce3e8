package schema

import "aemcore/pkg/tables"

type required struct{ rules []Rule }

// Required rejects an absent cell, then applies the wrapped rules.
func Required(rules ...Rule) CellSchema { return required{rules: rules} }

func (r required) ValidateCell(v tables.Value, ctx *Context) []string {
	if v.IsNone() {
		return []string{"a value is required."}
	}
	return validateAll(r.rules, []tables.Value{v}, ctx)
}

type optional struct{ rules []Rule }

// Optional accepts an absent cell; a present cell must pass the wrapped rules.
func Optional(rules ...Rule) CellSchema { return optional{rules: rules} }

func (o optional) ValidateCell(v tables.Value, ctx *Context) []string {
	if v.IsNone() {
		return nil
	}
	return validateAll(o.rules, []tables.Value{v}, ctx)
}

type allRequired struct{ rules []Rule }

// AllRequired rejects absent entries anywhere in the column. The wrapped
// rules only run once every entry is present, so a missing-value defect is
// not compounded with misleading follow-ups.
func AllRequired(rules ...Rule) ColumnSchema { return allRequired{rules: rules} }

func (a allRequired) ValidateColumn(values []tables.Value, ctx *Context) []string {
	if msg := missingRows(values, 0); msg != "" {
		return []string{msg}
	}
	return validateAll(a.rules, values, ctx)
}

type offsetAllRequired struct{ rules []Rule }

// OffsetAllRequired is AllRequired with the first entry exempt: aquitard
// columns carry one fewer meaningful entry than aquifer columns.
func OffsetAllRequired(rules ...Rule) ColumnSchema { return offsetAllRequired{rules: rules} }

func (a offsetAllRequired) ValidateColumn(values []tables.Value, ctx *Context) []string {
	if len(values) > 1 {
		if msg := missingRows(values[1:], 1); msg != "" {
			return []string{msg}
		}
	}
	return validateAll(a.rules, values, ctx)
}

type allOptional struct{ rules []Rule }

// AllOptional accepts a fully absent column; otherwise the wrapped rules
// apply to the collection.
func AllOptional(rules ...Rule) ColumnSchema { return allOptional{rules: rules} }

func (a allOptional) ValidateColumn(values []tables.Value, ctx *Context) []string {
	if len(tables.DiscardNone(values)) == 0 {
		return nil
	}
	return validateAll(a.rules, values, ctx)
}

// OptionalFirstOnly accepts a fully absent column; otherwise only the first
// entry may hold a value.
func OptionalFirstOnly(rules ...Rule) ColumnSchema {
	return AllOptional(FirstOnly(rules...))
}

type requiredFirstOnly struct{ rules []Rule }

// RequiredFirstOnly requires the first entry and forbids all later ones.
func RequiredFirstOnly(rules ...Rule) ColumnSchema { return requiredFirstOnly{rules: rules} }

func (r requiredFirstOnly) ValidateColumn(values []tables.Value, ctx *Context) []string {
	if len(values) == 0 || values[0].IsNone() {
		return []string{"a value is required."}
	}
	return FirstOnly(r.rules...).Validate(values, ctx)
}
