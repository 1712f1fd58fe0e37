// Package assemble substitutes generated sections into the header template
// and writes the result.
package assemble

import (
	"bytes"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/rs/zerolog"

	"github.com/glbind/glbind/internal/codegen"
	"github.com/glbind/glbind/internal/errors"
	"github.com/glbind/glbind/internal/fileio"
	"github.com/glbind/glbind/internal/registry"
)

// Options configures an Assembler
type Options struct {
	// Template is the path of the template document
	Template string

	// Output is the path of the generated header
	Output string

	// Generator options passed to every marker's generator
	Generator codegen.Options

	Logger zerolog.Logger
}

// Assembler renders the template with every marker of a marker table replaced
type Assembler struct {
	files   *fileio.Files
	markers *codegen.Markers
	opts    Options
}

// New creates an assembler reading and writing through files
func New(files *fileio.Files, markers *codegen.Markers, opts Options) *Assembler {
	return &Assembler{
		files:   files,
		markers: markers,
		opts:    opts,
	}
}

// Render returns the template with each marker replaced by its generator's
// output, markers taken in table order. Every generator runs, so its errors
// surface even when the template lacks its marker; an absent marker leaves
// the template unchanged.
func (a *Assembler) Render(reg *registry.Registry) ([]byte, error) {
	tmpl, err := a.files.Read(a.opts.Template)
	if err != nil {
		return nil, errors.MarkStage(errors.Wrap(err, "failed to read template"), errors.StageTemplate)
	}

	out := tmpl
	for _, marker := range a.markers.Tokens() {
		gen, err := a.markers.Get(marker, a.opts.Generator)
		if err != nil {
			return nil, err
		}

		text, err := gen.Generate(reg)
		if err != nil {
			return nil, errors.MarkStage(errors.Wrapf(err, "generator %s failed", gen.Name()), errors.StageEmit)
		}

		token := []byte(marker)
		count := bytes.Count(out, token)
		out = bytes.ReplaceAll(out, token, text)

		a.opts.Logger.Debug().
			Str("marker", marker).
			Str("generator", gen.Name()).
			Int("occurrences", count).
			Int("bytes", len(text)).
			Msg("substituted marker")
	}

	return out, nil
}

// Assemble renders the template, writes the output file and returns what
// was written. Nothing is written when rendering fails.
func (a *Assembler) Assemble(reg *registry.Registry) ([]byte, error) {
	out, err := a.Render(reg)
	if err != nil {
		return nil, err
	}

	if err := a.files.Write(a.opts.Output, out); err != nil {
		return nil, errors.MarkStage(err, errors.StageWrite)
	}

	return out, nil
}

// Check renders the template and compares it with the existing output file
// without writing anything. When they differ it returns a unified diff from
// the current file to the rendered text together with ErrStale. A missing
// output file counts as empty.
func (a *Assembler) Check(reg *registry.Registry) (string, error) {
	want, err := a.Render(reg)
	if err != nil {
		return "", err
	}

	var have []byte
	if a.files.Exists(a.opts.Output) {
		have, err = a.files.Read(a.opts.Output)
		if err != nil {
			return "", errors.MarkStage(errors.Wrap(err, "failed to read current output"), errors.StageWrite)
		}
	}

	if bytes.Equal(have, want) {
		return "", nil
	}

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(have)),
		B:        difflib.SplitLines(string(want)),
		FromFile: a.opts.Output,
		ToFile:   a.opts.Output + " (generated)",
		Context:  3,
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to diff output")
	}

	return diff, errors.WithHint(
		errors.Wrapf(errors.ErrStale, "%s does not match the registries", a.opts.Output),
		"run glbind generate to refresh it")
}
