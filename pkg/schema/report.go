package schema

import "sort"

// FieldErrors maps a field or section name to its collected failure reasons.
type FieldErrors map[string][]string

// Add appends reasons under the given field name.
func (f FieldErrors) Add(field string, reasons ...string) {
	if len(reasons) == 0 {
		return
	}
	f[field] = append(f[field], reasons...)
}

// ElementReport holds the defects of one element instance. Table-wise errors
// live under Global keyed by field name (or the "Table:" section for
// whole-table messages); row-wise and grouped errors nest one level under a
// section key such as "Row 1:", "Properties, inhomogeneity_id 2", or
// "Timeseries, timeseries id 3".
type ElementReport struct {
	Global FieldErrors            `json:"global,omitempty"`
	Nested map[string]FieldErrors `json:"nested,omitempty"`
}

// TableSection keys whole-table messages (empty table, row-count, table
// consistency failures) in Global.
const TableSection = "Table:"

// Empty reports whether the element has no recorded defects.
func (r ElementReport) Empty() bool {
	return len(r.Global) == 0 && len(r.Nested) == 0
}

// AddGlobal records reasons under a top-level field name.
func (r *ElementReport) AddGlobal(field string, reasons ...string) {
	if len(reasons) == 0 {
		return
	}
	if r.Global == nil {
		r.Global = FieldErrors{}
	}
	r.Global.Add(field, reasons...)
}

// AddNested records field errors under a nested section.
func (r *ElementReport) AddNested(section string, fields FieldErrors) {
	if len(fields) == 0 {
		return
	}
	if r.Nested == nil {
		r.Nested = map[string]FieldErrors{}
	}
	existing, ok := r.Nested[section]
	if !ok {
		r.Nested[section] = fields
		return
	}
	for field, reasons := range fields {
		existing.Add(field, reasons...)
	}
}

// Merge folds another report for the same element into the receiver.
func (r *ElementReport) Merge(other ElementReport) {
	for field, reasons := range other.Global {
		r.AddGlobal(field, reasons...)
	}
	for section, fields := range other.Nested {
		r.AddNested(section, fields)
	}
}

// Report maps element instance (table) names to their defects.
type Report map[string]ElementReport

// Empty reports whether no element recorded any defect.
func (r Report) Empty() bool {
	for _, er := range r {
		if !er.Empty() {
			return false
		}
	}
	return true
}

// Add merges an element report under the given instance name, dropping empty
// reports so a clean validation yields an empty map.
func (r Report) Add(name string, er ElementReport) {
	if er.Empty() {
		return
	}
	existing, ok := r[name]
	if !ok {
		r[name] = er
		return
	}
	existing.Merge(er)
	r[name] = existing
}

// Names returns the reported instance names in sorted order.
func (r Report) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
