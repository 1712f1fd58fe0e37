// Package codegen maps template markers to the generators that produce the
// text substituted for them.
package codegen

import (
	"github.com/Masterminds/semver/v3"
	"github.com/rs/zerolog"

	"github.com/glbind/glbind/internal/registry"
)

// Generator is the interface every marker section generator implements
type Generator interface {
	// Generate produces the section text from the loaded registry
	Generate(reg *registry.Registry) ([]byte, error)

	// Name returns a short name for logs (e.g., "opengl_main")
	Name() string
}

// Options contains common options for code generation
type Options struct {
	// MaxFeatureVersion, when set, skips features numbered above it
	MaxFeatureVersion *semver.Version

	// Logger receives debug output from generators
	Logger zerolog.Logger
}
