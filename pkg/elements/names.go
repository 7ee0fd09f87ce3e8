package elements

import (
	"fmt"
	"strings"
)

const (
	modeSteady    = "timml"
	modeTransient = "ttim"
)

// transientAliases maps the historical transient singleton names onto the
// element groups they belong to. The stored names predate this convention
// and must keep working.
var transientAliases = map[string]Kind{
	"Computation Times": KindDomain,
	"Temporal Settings": KindAquifer,
}

type parsedName struct {
	mode       string
	kind       Kind
	instance   string
	associated bool
}

// parseName interprets one stored table name following the
// "<mode> <ElementType>:<instance>" convention. A missing or unknown mode
// token is a hard error: these names are machine-written.
func parseName(table string) (parsedName, error) {
	prefix, instance, found := strings.Cut(table, ":")
	if !found {
		return parsedName{}, fmt.Errorf(
			"table name %q does not follow \"<mode> <ElementType>:<name>\"", table)
	}
	mode, elem, _ := strings.Cut(prefix, " ")
	if mode != modeSteady && mode != modeTransient {
		return parsedName{}, fmt.Errorf(
			"neither %s nor %s in table name %q", modeSteady, modeTransient, table)
	}

	p := parsedName{mode: mode, instance: instance}
	if rest, ok := strings.CutSuffix(elem, " Properties"); ok {
		p.associated = true
		elem = rest
	}
	if kind, ok := transientAliases[elem]; ok && mode == modeTransient {
		p.kind = kind
	} else {
		p.kind = Kind(elem)
	}
	return p, nil
}

// nameGroup associates the steady, associated-properties, and transient
// table names of one element instance.
type nameGroup struct {
	kind     Kind
	instance string
	timml    string
	assoc    string
	ttim     string
}

// transientName is the stored name keying the instance in a transient run:
// its transient table when present, otherwise its steady table, so steady
// elements still appear in the transient specification.
func (g nameGroup) transientName() string {
	if g.ttim != "" {
		return g.ttim
	}
	return g.timml
}

type groupKey struct {
	kind     Kind
	instance string
}

// groupNames groups stored table names by (element type, instance name),
// preserving encounter order.
func groupNames(names []string) ([]*nameGroup, error) {
	index := map[groupKey]*nameGroup{}
	var groups []*nameGroup
	for _, name := range names {
		p, err := parseName(name)
		if err != nil {
			return nil, err
		}
		key := groupKey{kind: p.kind, instance: p.instance}
		g, ok := index[key]
		if !ok {
			g = &nameGroup{kind: p.kind, instance: p.instance}
			index[key] = g
			groups = append(groups, g)
		}
		switch {
		case p.mode == modeTransient:
			g.ttim = name
		case p.associated:
			g.assoc = name
		default:
			g.timml = name
		}
	}
	return groups, nil
}
