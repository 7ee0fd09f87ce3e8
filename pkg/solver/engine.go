package solver

import "fmt"

// Engine constructs analytic-element models from keyword arguments.
type Engine interface {
	// NewModel constructs the aquifer model (the ModelMaq call) that all
	// elements attach to.
	NewModel(kwargs *Kwargs) (Model, error)
}

// Model is one model under construction. Elements are added by constructor
// name; Solve finalizes the model.
type Model interface {
	// AddElement attaches one element under a unique name.
	AddElement(name, constructor string, kwargs *Kwargs) error
	// Solve computes the model solution.
	Solve() error
}

// Element is one recorded element call.
type Element struct {
	Name        string
	Constructor string
	Kwargs      *Kwargs
}

// RecordingEngine captures model construction instead of executing it. It
// backs both the script renderer and the tests: the recorded calls are the
// model, in order.
type RecordingEngine struct {
	Models []*RecordingModel
}

// NewModel implements Engine.
func (e *RecordingEngine) NewModel(kwargs *Kwargs) (Model, error) {
	m := &RecordingModel{Kwargs: kwargs}
	e.Models = append(e.Models, m)
	return m, nil
}

// RecordingModel is a Model that remembers every call made to it.
type RecordingModel struct {
	Kwargs   *Kwargs
	Elements []Element
	Solved   bool

	names map[string]struct{}
}

// AddElement implements Model. Element names must be unique within a model.
func (m *RecordingModel) AddElement(name, constructor string, kwargs *Kwargs) error {
	if m.names == nil {
		m.names = map[string]struct{}{}
	}
	if _, ok := m.names[name]; ok {
		return fmt.Errorf("duplicate element name %q", name)
	}
	m.names[name] = struct{}{}
	m.Elements = append(m.Elements, Element{Name: name, Constructor: constructor, Kwargs: kwargs})
	return nil
}

// Solve implements Model.
func (m *RecordingModel) Solve() error {
	m.Solved = true
	return nil
}
