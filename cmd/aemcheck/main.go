// Command aemcheck validates the element tables of a GeoPackage model and
// prints the defect report, exiting non-zero when the model is not solvable.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"aemcore/internal/geopackage"
	"aemcore/pkg/elements"
	"aemcore/pkg/schema"
)

var exitFunc = os.Exit

func main() {
	exitFunc(cli(os.Args[1:], os.Stdout, os.Stderr))
}

func cli(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("aemcheck", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		modelPath string
		mode      string
		format    string
	)
	fs.StringVar(&modelPath, "model", "", "path to the GeoPackage model")
	fs.StringVar(&mode, "mode", "steady", "validation mode: steady or transient")
	fs.StringVar(&format, "format", "text", "report format: text or json")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if modelPath == "" && fs.NArg() > 0 {
		modelPath = fs.Arg(0)
	}
	if modelPath == "" {
		fmt.Fprintln(stderr, "aemcheck: model path required")
		return 2
	}

	var transient bool
	switch mode {
	case "steady":
	case "transient":
		transient = true
	default:
		fmt.Fprintf(stderr, "aemcheck: unknown mode %q\n", mode)
		return 2
	}
	if format != "text" && format != "json" {
		fmt.Fprintf(stderr, "aemcheck: unknown format %q\n", format)
		return 2
	}

	report, err := run(modelPath, transient)
	if err != nil {
		fmt.Fprintf(stderr, "aemcheck: %v\n", err)
		return 1
	}

	if format == "json" {
		payload, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			fmt.Fprintf(stderr, "aemcheck: encode report: %v\n", err)
			return 1
		}
		fmt.Fprintln(stdout, string(payload))
	} else {
		writeTextReport(stdout, report)
	}

	if !report.Empty() {
		return 1
	}
	return 0
}

func run(path string, transient bool) (schema.Report, error) {
	_, report, err := elements.BuildAndValidate(geopackage.NewStore(path), nil, transient)
	return report, err
}

func writeTextReport(w io.Writer, report schema.Report) {
	if report.Empty() {
		fmt.Fprintln(w, "Model is valid.")
		return
	}
	for _, name := range report.Names() {
		fmt.Fprintln(w, name)
		element := report[name]
		writeFieldErrors(w, "  ", element.Global)
		sections := make([]string, 0, len(element.Nested))
		for section := range element.Nested {
			sections = append(sections, section)
		}
		sort.Strings(sections)
		for _, section := range sections {
			fmt.Fprintf(w, "  %s\n", section)
			writeFieldErrors(w, "    ", element.Nested[section])
		}
	}
}

func writeFieldErrors(w io.Writer, indent string, errs schema.FieldErrors) {
	fields := make([]string, 0, len(errs))
	for field := range errs {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		label := field
		if !strings.HasSuffix(label, ":") {
			label += ":"
		}
		for _, msg := range errs[field] {
			fmt.Fprintf(w, "%s%s %s\n", indent, label, msg)
		}
	}
}
