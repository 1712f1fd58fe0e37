package commands

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"github.com/glbind/glbind/internal/config"
	"github.com/glbind/glbind/internal/errors"
)

// GenerateOptions are the flags of the generate command
type GenerateOptions struct {
	// Check compares the header with the output file instead of writing it
	Check bool
	// Output overrides the configured output path
	Output string
}

// Generate loads the registries and writes the header once
func (c *Controller) Generate(ctx context.Context, opts GenerateOptions) error {
	cfg, root, err := c.loadConfig()
	if err != nil {
		return err
	}
	if opts.Output != "" {
		output, err := overrideOutput(opts.Output, config.Resolve(root, cfg.Template))
		if err != nil {
			return err
		}
		cfg.Output = output
	}

	builder, err := c.newBuilder(cfg, root)
	if err != nil {
		return err
	}

	if opts.Check {
		diff, err := builder.Check()
		if diff != "" {
			fmt.Fprint(c.out(), diff)
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out(), "✅ %s is up to date\n", cfg.Output)
		return nil
	}

	if err := builder.Build(); err != nil {
		return err
	}

	artifacts, err := builder.GetArtifacts()
	if err != nil {
		return errors.Wrap(err, "build finished without artifacts")
	}

	counts := artifacts.Registry.Counts()
	fmt.Fprintf(c.out(), "✅ Generated %s (%s, %d features, %d extensions)\n",
		artifacts.OutputPath,
		humanize.IBytes(uint64(artifacts.BuildInfo.OutputSize)),
		counts.Features,
		counts.Extensions,
	)
	return nil
}

// overrideOutput makes a --output path absolute against the working
// directory, so it does not depend on where glbind.toml lives.
func overrideOutput(output, template string) (string, error) {
	abs, err := filepath.Abs(output)
	if err != nil {
		return "", errors.Wrapf(errors.ErrInvalidArguments, "invalid output path %q: %v", output, err)
	}

	templateAbs, err := filepath.Abs(template)
	if err != nil {
		return "", errors.Wrapf(errors.ErrInvalidArguments, "invalid template path %q: %v", template, err)
	}
	if abs == templateAbs {
		return "", errors.Wrapf(errors.ErrInvalidArguments, "output %q would overwrite the template", output)
	}

	return abs, nil
}
