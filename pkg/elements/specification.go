package elements

import (
	"fmt"

	"aemcore/pkg/tables"
)

// TableReader is the table-store contract the specification builder consumes.
// Implementations must normalize every missing-value representation to the
// absent marker before rows leave the store.
type TableReader interface {
	ListTableNames() ([]string, error)
	ReadTable(name string) (tables.Table, error)
}

// ElementSpec is one named element instance: its primary attribute table and
// the optional associated-properties and transient tables grouped with it.
// Immutable after building except the Active flag.
type ElementSpec struct {
	Kind Kind
	// Name is the user-given instance name.
	Name string
	// TableName is the stored name of the primary table; it keys the error
	// report and the assembled element index.
	TableName string
	// TransientTableName is the stored name of the transient table, falling
	// back to TableName when the instance has none.
	TransientTableName string
	Active             bool

	Table      tables.Table
	Associated tables.Table
	Transient  tables.Table
}

// ModelSpecification is the complete grouped model: the two singletons plus
// the element instances in deterministic order. Built once per compute
// request and never mutated.
type ModelSpecification struct {
	Aquifer          ElementSpec
	Domain           ElementSpec
	TemporalSettings tables.Table
	OutputTimes      tables.Table
	Elements         []ElementSpec
}

// BuildSpecification reads and groups all stored tables into a model
// specification. The Aquifer and Domain singletons are mandatory; their
// absence is fatal. No validation happens here.
func BuildSpecification(reader TableReader, active map[string]bool) (*ModelSpecification, error) {
	names, err := reader.ListTableNames()
	if err != nil {
		return nil, fmt.Errorf("list table names: %w", err)
	}
	groups, err := groupNames(names)
	if err != nil {
		return nil, err
	}

	spec := &ModelSpecification{}
	seen := map[Kind]bool{}
	for _, g := range groups {
		es := ElementSpec{
			Kind:               g.kind,
			Name:               g.instance,
			TableName:          g.timml,
			TransientTableName: g.transientName(),
			Active:             true,
		}
		if active != nil {
			if on, ok := active[g.timml]; ok {
				es.Active = on
			}
		}
		if es.Table, err = readTable(reader, g.timml); err != nil {
			return nil, err
		}
		if es.Associated, err = readTable(reader, g.assoc); err != nil {
			return nil, err
		}
		if es.Transient, err = readTable(reader, g.ttim); err != nil {
			return nil, err
		}

		switch g.kind {
		case KindAquifer:
			spec.Aquifer = es
			spec.TemporalSettings = es.Transient
			seen[KindAquifer] = true
		case KindDomain:
			spec.Domain = es
			spec.OutputTimes = es.Transient
			seen[KindDomain] = true
		default:
			spec.Elements = append(spec.Elements, es)
		}
	}

	for _, kind := range []Kind{KindAquifer, KindDomain} {
		if !seen[kind] {
			return nil, fmt.Errorf("missing mandatory table: %s", kind)
		}
	}
	return spec, nil
}

func readTable(reader TableReader, name string) (tables.Table, error) {
	if name == "" {
		return tables.Table{}, nil
	}
	t, err := reader.ReadTable(name)
	if err != nil {
		return tables.Table{}, fmt.Errorf("read table %q: %w", name, err)
	}
	return t, nil
}
