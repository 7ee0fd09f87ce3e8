package script

import (
	"strings"
	"testing"

	"aemcore/pkg/solver"
)

func TestPyFloat(t *testing.T) {
	cases := map[float64]string{
		10:    "10.0",
		0.5:   "0.5",
		-100:  "-100.0",
		1e21:  "1e+21",
		0.001: "0.001",
	}
	for f, want := range cases {
		if got := pyFloat(f); got != want {
			t.Errorf("pyFloat(%v) = %q, want %q", f, got, want)
		}
	}
}

func TestPyValue(t *testing.T) {
	cases := []struct {
		v    any
		want string
	}{
		{nil, "None"},
		{true, "True"},
		{false, "False"},
		{"conf", `"conf"`},
		{3, "3"},
		{[]float64{10, 0.5}, "[10.0, 0.5]"},
		{[]int{0, 2}, "[0, 2]"},
		{solver.TimeSeries{{10, -5}, {20, 0}}, "[(10.0, -5.0), (20.0, 0.0)]"},
		{solver.Path{{0, 0}, {10, 0}}, "[(0.0, 0.0), (10.0, 0.0)]"},
	}
	for _, c := range cases {
		if got := pyValue(c.v); got != c.want {
			t.Errorf("pyValue(%v) = %q, want %q", c.v, got, c.want)
		}
	}
}

func TestRender(t *testing.T) {
	model := &solver.RecordingModel{
		Kwargs: solver.NewKwargs().
			Set("kaq", []float64{5}).
			Set("z", []float64{10, 0}).
			Set("topboundary", "conf").
			Set("hstar", nil),
	}
	if err := model.AddElement("timml Well:extraction_0", "Well", solver.NewKwargs().
		Set("xw", 25.0).
		Set("yw", 75.0).
		Set("Qw", 10.0).
		Set("layers", 0)); err != nil {
		t.Fatal(err)
	}

	got := Render(model, Options{Grid: &GridSpec{XMin: 0, XMax: 100, YMin: 0, YMax: 100, Cellsize: 10}})

	for _, want := range []string{
		"import timml\n",
		"model = timml.ModelMaq(\n",
		"    kaq=[5.0],\n",
		"    hstar=None,\n",
		"timml_Well_extraction_0 = timml.Well(\n",
		"    model,\n",
		"    Qw=10.0,\n",
		"    layers=0,\n",
		"model.solve()\n",
		"x = np.arange(0.0, 100.0, 10.0) + 0.5 * 10.0\n",
		"head = model.headgrid(x, y)\n",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("rendered script missing %q:\n%s", want, got)
		}
	}
}

func TestRenderTransient(t *testing.T) {
	model := &solver.RecordingModel{
		Kwargs: solver.NewKwargs().Set("kaq", []float64{5}).Set("tmin", 0.01),
	}
	got := Render(model, Options{Transient: true})
	if !strings.Contains(got, "import ttim\n") || !strings.Contains(got, "model = ttim.ModelMaq(\n") {
		t.Fatalf("transient render must target ttim:\n%s", got)
	}
}
