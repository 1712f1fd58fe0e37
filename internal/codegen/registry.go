package codegen

import (
	"github.com/glbind/glbind/internal/errors"
)

// Markers is the table of template markers and their generator factories.
// Markers are substituted in registration order.
type Markers struct {
	order      []string
	generators map[string]func(opts Options) Generator
}

// NewMarkers creates an empty marker table
func NewMarkers() *Markers {
	return &Markers{
		generators: make(map[string]func(opts Options) Generator),
	}
}

// Register adds a generator factory for marker. Registering a marker twice
// replaces its factory but keeps its original position.
func (m *Markers) Register(marker string, factory func(opts Options) Generator) {
	if _, exists := m.generators[marker]; !exists {
		m.order = append(m.order, marker)
	}
	m.generators[marker] = factory
}

// Get returns a generator for marker
func (m *Markers) Get(marker string, opts Options) (Generator, error) {
	factory, exists := m.generators[marker]
	if !exists {
		return nil, errors.Wrapf(errors.ErrInvalidArguments, "unknown marker: %s", marker)
	}

	return factory(opts), nil
}

// Tokens returns the registered markers in registration order
func (m *Markers) Tokens() []string {
	tokens := make([]string, len(m.order))
	copy(tokens, m.order)
	return tokens
}
