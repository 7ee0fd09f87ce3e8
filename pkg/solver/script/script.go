// Package script renders a recorded solver model as a runnable Python
// script for the timml/ttim libraries, the way the desktop integration
// exports a model for offline reproduction.
package script

import (
	"fmt"
	"strings"

	"aemcore/pkg/solver"
)

// GridSpec describes the optional head-grid evaluation stanza appended to
// the script.
type GridSpec struct {
	XMin, XMax float64
	YMin, YMax float64
	Cellsize   float64
}

// Options configure one render.
type Options struct {
	// Transient selects the ttim import and model call over timml.
	Transient bool
	// Grid, when non-nil, appends a head-grid evaluation after the solve.
	Grid *GridSpec
}

// Render writes the recorded model construction as Python source: the
// import block, the model constructor, one named constructor call per
// element in recorded order, and the solve call.
func Render(m *solver.RecordingModel, opts Options) string {
	lib := "timml"
	if opts.Transient {
		lib = "ttim"
	}

	var b strings.Builder
	b.WriteString("import numpy as np\n")
	fmt.Fprintf(&b, "import %s\n\n", lib)

	fmt.Fprintf(&b, "model = %s.ModelMaq(\n", lib)
	writeKwargs(&b, m.Kwargs)
	b.WriteString(")\n")

	for _, el := range m.Elements {
		fmt.Fprintf(&b, "%s = %s.%s(\n", identifier(el.Name), lib, el.Constructor)
		b.WriteString("    model,\n")
		writeKwargs(&b, el.Kwargs)
		b.WriteString(")\n")
	}

	b.WriteString("\nmodel.solve()\n")

	if g := opts.Grid; g != nil {
		b.WriteString("\n")
		fmt.Fprintf(&b, "x = np.arange(%s, %s, %s) + 0.5 * %s\n",
			pyFloat(g.XMin), pyFloat(g.XMax), pyFloat(g.Cellsize), pyFloat(g.Cellsize))
		fmt.Fprintf(&b, "y = np.arange(%s, %s, -%s) - 0.5 * %s\n",
			pyFloat(g.YMax), pyFloat(g.YMin), pyFloat(g.Cellsize), pyFloat(g.Cellsize))
		b.WriteString("head = model.headgrid(x, y)\n")
	}
	return b.String()
}

func writeKwargs(b *strings.Builder, kw *solver.Kwargs) {
	for _, key := range kw.Keys() {
		v, _ := kw.Get(key)
		fmt.Fprintf(b, "    %s=%s,\n", key, pyValue(v))
	}
}

// identifier turns a stored element name into a valid Python identifier.
func identifier(name string) string {
	out := []rune(name)
	for i, r := range out {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
		case r >= '0' && r <= '9' && i > 0:
		default:
			out[i] = '_'
		}
	}
	return string(out)
}

// pyFloat renders a float the way Python's repr does: integral values keep
// a trailing ".0" so they stay floats in the generated source.
func pyFloat(f float64) string {
	s := fmt.Sprintf("%g", f)
	if !strings.ContainsAny(s, ".eE") && s != "inf" && s != "-inf" {
		s += ".0"
	}
	return s
}

func pyValue(v any) string {
	switch t := v.(type) {
	case nil:
		return "None"
	case bool:
		if t {
			return "True"
		}
		return "False"
	case string:
		return fmt.Sprintf("%q", t)
	case int:
		return fmt.Sprintf("%d", t)
	case float64:
		return pyFloat(t)
	case []int:
		parts := make([]string, len(t))
		for i, n := range t {
			parts[i] = fmt.Sprintf("%d", n)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case []float64:
		parts := make([]string, len(t))
		for i, f := range t {
			parts[i] = pyFloat(f)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case solver.Path:
		return pairList([][2]float64(t))
	case solver.TimeSeries:
		return pairList([][2]float64(t))
	default:
		return fmt.Sprintf("%v", t)
	}
}

func pairList(pairs [][2]float64) string {
	parts := make([]string, len(pairs))
	for i, p := range pairs {
		parts[i] = fmt.Sprintf("(%s, %s)", pyFloat(p[0]), pyFloat(p[1]))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
