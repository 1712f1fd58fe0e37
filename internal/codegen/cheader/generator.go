// Package cheader generates the declaration section of the glbind header:
// include-guarded blocks of typedefs, enum #defines and PFN...PROC function
// pointer typedefs for every feature and extension in the registry.
package cheader

import (
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/rs/zerolog"

	"github.com/glbind/glbind/internal/codegen/writer"
	"github.com/glbind/glbind/internal/errors"
	"github.com/glbind/glbind/internal/registry"
)

const (
	// MainMarker is the template token replaced by this generator's output
	MainMarker = "/*<<opengl_main>>*/"

	// Platform symbols guarding the WGL and GLX sections
	wglSymbol = "GLBIND_WGL"
	glxSymbol = "GLBIND_GLX"

	apiGL  = "gl"
	apiWGL = "wgl"
	apiGLX = "glx"

	// khrplatform is provided by the template itself and never emitted
	khrplatform = "khrplatform"
)

// Options configures the generator
type Options struct {
	// MaxFeatureVersion, when set, skips features numbered above it.
	// Extensions are never filtered.
	MaxFeatureVersion *semver.Version

	Logger zerolog.Logger
}

// Generator emits the main declaration section
type Generator struct {
	opts Options
}

// NewGenerator creates a generator
func NewGenerator(opts Options) *Generator {
	return &Generator{opts: opts}
}

// Name returns the generator name used in logs
func (g *Generator) Name() string {
	return "opengl_main"
}

// Generate walks the registry in a fixed order:
//
//  1. gl features
//  2. wgl features inside #if defined(GLBIND_WGL)
//  3. glx features inside #if defined(GLBIND_GLX)
//  4. gl/glcore extensions
//  5. wgl extensions inside #if defined(GLBIND_WGL)
//  6. glx extensions inside #if defined(GLBIND_GLX)
//
// One ledger spans the whole walk, so a type needed by several features or
// extensions is written under the first of them only. Any unresolved name in
// a require aborts generation and no text is returned.
func (g *Generator) Generate(reg *registry.Registry) ([]byte, error) {
	if reg == nil {
		return nil, errors.Wrap(errors.ErrInvalidArguments, "nil registry")
	}

	e := &emitter{
		idx:    registry.NewIndex(reg),
		w:      writer.New(),
		logger: g.opts.Logger,
	}
	ledger := NewLedger()

	features, err := g.selectFeatures(reg.Features)
	if err != nil {
		return nil, err
	}

	if err := e.featuresByAPI(features, apiGL, ledger); err != nil {
		return nil, err
	}
	if err := e.platformSection(wglSymbol, func() error {
		return e.featuresByAPI(features, apiWGL, ledger)
	}); err != nil {
		return nil, err
	}
	if err := e.platformSection(glxSymbol, func() error {
		return e.featuresByAPI(features, apiGLX, ledger)
	}); err != nil {
		return nil, err
	}

	if err := e.extensions(reg.Extensions, isGLExtension, ledger); err != nil {
		return nil, err
	}
	if err := e.platformSection(wglSymbol, func() error {
		return e.extensions(reg.Extensions, supports(apiWGL), ledger)
	}); err != nil {
		return nil, err
	}
	if err := e.platformSection(glxSymbol, func() error {
		return e.extensions(reg.Extensions, supports(apiGLX), ledger)
	}); err != nil {
		return nil, err
	}

	g.opts.Logger.Debug().
		Int("types", len(ledger.Emitted())).
		Int("bytes", e.w.Len()).
		Msg("generated main section")

	return e.w.Bytes(), nil
}

// selectFeatures applies the optional version ceiling.
func (g *Generator) selectFeatures(features []registry.Feature) ([]registry.Feature, error) {
	if g.opts.MaxFeatureVersion == nil {
		return features, nil
	}

	selected := make([]registry.Feature, 0, len(features))
	for _, f := range features {
		v, err := semver.NewVersion(f.VersionNumber)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrInvalidArguments,
				"feature %s has number %q, which cannot be compared with max_version: %v", f.Name, f.VersionNumber, err)
		}
		if v.GreaterThan(g.opts.MaxFeatureVersion) {
			g.opts.Logger.Debug().Str("feature", f.Name).Str("number", f.VersionNumber).Msg("skipping feature above max_version")
			continue
		}
		selected = append(selected, f)
	}
	return selected, nil
}

// isGLExtension matches extensions for desktop GL: exactly "gl", or a list
// containing "gl|" or "glcore".
func isGLExtension(ext registry.Extension) bool {
	s := ext.SupportedAPIs
	return s == apiGL || strings.Contains(s, "gl|") || strings.Contains(s, "glcore")
}

func supports(api string) func(registry.Extension) bool {
	return func(ext registry.Extension) bool {
		return strings.Contains(ext.SupportedAPIs, api)
	}
}
