// Package build runs the glbind pipeline: load registries, emit, assemble
package build

import (
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"

	"github.com/glbind/glbind/internal/assemble"
	"github.com/glbind/glbind/internal/codegen"
	"github.com/glbind/glbind/internal/config"
	"github.com/glbind/glbind/internal/errors"
	"github.com/glbind/glbind/internal/fileio"
	"github.com/glbind/glbind/internal/registry"
)

// BuildArtifacts describes the result of a successful build
type BuildArtifacts struct {
	// OutputPath is the path of the generated header
	OutputPath string

	// Registry is the merged registry the header was generated from
	Registry *registry.Registry

	// BuildInfo contains build metadata
	BuildInfo BuildInfo
}

// BuildInfo contains metadata about the build
type BuildInfo struct {
	// Timestamp when the build started
	Timestamp time.Time

	// Duration of the whole build
	Duration time.Duration

	// Registries are the documents loaded, in merge order
	Registries []string

	// OutputSize is the size of the generated header in bytes
	OutputSize int
}

// Builder provides the interface for generating the header
type Builder interface {
	// LoadRegistries reads, parses and merges every configured registry
	LoadRegistries() (*registry.Registry, error)

	// Build loads the registries and writes the header
	Build() error

	// Check loads the registries and compares the header with the output file
	Check() (string, error)

	// GetArtifacts returns the build artifacts after a successful build
	GetArtifacts() (*BuildArtifacts, error)
}

// HeaderBuilder implements the Builder interface
type HeaderBuilder struct {
	config      *config.Config
	projectRoot string
	files       *fileio.Files
	markers     *codegen.Markers
	logger      zerolog.Logger

	// Build state
	artifacts  *BuildArtifacts
	buildStart time.Time
}

// NewHeaderBuilder creates a builder for cfg. Relative paths in cfg are taken
// relative to projectRoot.
func NewHeaderBuilder(cfg *config.Config, projectRoot string, files *fileio.Files, logger zerolog.Logger) *HeaderBuilder {
	return &HeaderBuilder{
		config:      cfg,
		projectRoot: projectRoot,
		files:       files,
		markers:     codegen.DefaultMarkers,
		logger:      logger,
	}
}

// WithMarkers replaces the marker table used for assembly
func (b *HeaderBuilder) WithMarkers(markers *codegen.Markers) *HeaderBuilder {
	b.markers = markers
	return b
}

// LoadRegistries reads each registry in configured order and merges them.
// The first document that fails to read or parse aborts the load.
func (b *HeaderBuilder) LoadRegistries() (*registry.Registry, error) {
	merged := &registry.Registry{}

	for _, name := range b.config.Registries {
		path := config.Resolve(b.projectRoot, name)

		data, err := b.files.Read(path)
		if err != nil {
			return nil, errors.MarkStage(errors.Wrapf(err, "failed to load registry %s", path), errors.StageLoad)
		}

		doc, err := registry.LoadDocument(data)
		if err != nil {
			return nil, errors.MarkStage(errors.Wrapf(err, "failed to parse registry %s", path), errors.StageParse)
		}

		counts := doc.Counts()
		b.logger.Debug().
			Str("path", path).
			Str("size", humanize.IBytes(uint64(len(data)))).
			Int("types", counts.Types).
			Int("enums", counts.Enums).
			Int("commands", counts.Commands).
			Int("features", counts.Features).
			Int("extensions", counts.Extensions).
			Msg("loaded registry")

		merged.Merge(doc)
	}

	return merged, nil
}

// Build runs the whole pipeline and writes the output header
func (b *HeaderBuilder) Build() error {
	b.buildStart = time.Now()
	b.artifacts = nil

	asm, err := b.assembler()
	if err != nil {
		return err
	}

	reg, err := b.LoadRegistries()
	if err != nil {
		return err
	}

	out, err := asm.Assemble(reg)
	if err != nil {
		return err
	}

	outputPath := config.Resolve(b.projectRoot, b.config.Output)

	b.artifacts = &BuildArtifacts{
		OutputPath: outputPath,
		Registry:   reg,
		BuildInfo: BuildInfo{
			Timestamp:  b.buildStart,
			Duration:   time.Since(b.buildStart),
			Registries: b.registryPaths(),
			OutputSize: len(out),
		},
	}

	b.logger.Debug().
		Str("output", outputPath).
		Str("size", humanize.IBytes(uint64(len(out)))).
		Dur("duration", b.artifacts.BuildInfo.Duration).
		Msg("wrote header")

	return nil
}

// Check runs the pipeline without writing. It returns a unified diff and
// ErrStale when the output file is out of date.
func (b *HeaderBuilder) Check() (string, error) {
	asm, err := b.assembler()
	if err != nil {
		return "", err
	}

	reg, err := b.LoadRegistries()
	if err != nil {
		return "", err
	}

	return asm.Check(reg)
}

// GetArtifacts returns the build artifacts after a successful build
func (b *HeaderBuilder) GetArtifacts() (*BuildArtifacts, error) {
	if b.artifacts == nil {
		return nil, errors.New("no build has been performed")
	}
	return b.artifacts, nil
}

func (b *HeaderBuilder) assembler() (*assemble.Assembler, error) {
	ceiling, err := b.config.FeatureCeiling()
	if err != nil {
		return nil, err
	}

	return assemble.New(b.files, b.markers, assemble.Options{
		Template: config.Resolve(b.projectRoot, b.config.Template),
		Output:   config.Resolve(b.projectRoot, b.config.Output),
		Generator: codegen.Options{
			MaxFeatureVersion: ceiling,
			Logger:            b.logger,
		},
		Logger: b.logger,
	}), nil
}

func (b *HeaderBuilder) registryPaths() []string {
	paths := make([]string, len(b.config.Registries))
	for i, name := range b.config.Registries {
		paths[i] = config.Resolve(b.projectRoot, name)
	}
	return paths
}
