package commands

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/spf13/afero"

	"github.com/glbind/glbind/internal/config"
	"github.com/glbind/glbind/internal/errors"
)

//go:embed templates/*
var templatesFS embed.FS

// defaultTemplateName is the embedded template written by init
const defaultTemplateName = "templates/glbind_template.h"

type InitOptions struct {
	Template   string
	Output     string
	MaxVersion string
}

type InitCommand struct {
	filesystem  afero.Fs
	dir         string
	templatesFS fs.FS
	out         func(format string, args ...any)
	// For testing: if set, skip prompting
	testOptions *InitOptions
}

func NewInitCommand() *InitCommand {
	return &InitCommand{
		filesystem:  afero.NewOsFs(),
		dir:         ".",
		templatesFS: templatesFS,
		out:         func(format string, args ...any) { fmt.Printf(format, args...) },
	}
}

func (c *Controller) Init(ctx context.Context) error {
	cmd := NewInitCommand()
	cmd.out = func(format string, args ...any) { fmt.Fprintf(c.out(), format, args...) }
	return cmd.Run(ctx)
}

func (ic *InitCommand) Run(ctx context.Context) error {
	return ic.RunWithOptions(ctx)
}

func (ic *InitCommand) RunWithOptions(ctx context.Context, opts ...tea.ProgramOption) error {
	configPath := filepath.Join(ic.dir, config.FileName)
	if exists, _ := afero.Exists(ic.filesystem, configPath); exists {
		return errors.WithHint(
			errors.Wrapf(errors.ErrInvalidArguments, "%s already exists", configPath),
			"edit it directly or remove it first")
	}

	var options *InitOptions
	var err error

	// For testing: use provided options instead of prompting
	if ic.testOptions != nil {
		options = ic.testOptions
	} else {
		options, err = ic.promptInitOptions(opts...)
		if err != nil {
			return errors.Wrap(err, "failed to get init options")
		}
	}

	cfg := config.Default()
	if options.Template != "" {
		cfg.Template = options.Template
	}
	if options.Output != "" {
		cfg.Output = options.Output
		cfg.Watch.Exclude = []string{".git/", filepath.Base(options.Output)}
	}
	cfg.Features.MaxVersion = options.MaxVersion
	if err := cfg.Validate(); err != nil {
		return err
	}

	data, err := cfg.Encode()
	if err != nil {
		return err
	}
	if err := afero.WriteFile(ic.filesystem, configPath, data, 0644); err != nil {
		return errors.Mark(errors.Wrapf(err, "failed to write %s", configPath), errors.ErrIO)
	}
	ic.out("✅ Created %s\n", configPath)

	templatePath := config.Resolve(ic.dir, cfg.Template)
	written, err := ic.writeTemplate(templatePath)
	if err != nil {
		return err
	}
	if written {
		ic.out("✅ Created %s\n", templatePath)
	} else {
		ic.out("ℹ️  Keeping existing %s\n", templatePath)
	}

	ic.out("\nNext: put gl.xml, wgl.xml and glx.xml from the Khronos registry under %s and run glbind generate\n",
		filepath.Dir(config.Resolve(ic.dir, cfg.Registries[0])))
	return nil
}

func (ic *InitCommand) promptInitOptions(opts ...tea.ProgramOption) (*InitOptions, error) {
	options := InitOptions{
		Template: config.DefaultTemplate,
		Output:   config.DefaultOutput,
	}

	form := ic.createInitForm(&options)

	if len(opts) > 0 {
		// For testing: run with provided options
		program := tea.NewProgram(form, opts...)
		if _, err := program.Run(); err != nil {
			return nil, err
		}
	} else {
		// Normal execution
		if err := form.Run(); err != nil {
			return nil, err
		}
	}

	return &options, nil
}

func (ic *InitCommand) createInitForm(options *InitOptions) *huh.Form {
	notEmpty := func(what string) func(string) error {
		return func(s string) error {
			if strings.TrimSpace(s) == "" {
				return fmt.Errorf("%s cannot be empty", what)
			}
			return nil
		}
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Output header").
				Description("Path of the generated header").
				Value(&options.Output).
				Validate(notEmpty("output path")),

			huh.NewInput().
				Title("Template").
				Description("Header template containing the /*<<opengl_main>>*/ marker").
				Value(&options.Template).
				Validate(func(s string) error {
					if err := notEmpty("template path")(s); err != nil {
						return err
					}
					if filepath.Clean(s) == filepath.Clean(options.Output) {
						return fmt.Errorf("template and output must differ")
					}
					return nil
				}),

			huh.NewSelect[string]().
				Title("OpenGL version").
				Description("Highest core version to generate; extensions are always included").
				Options(
					huh.NewOption("All versions", ""),
					huh.NewOption("4.6", "4.6"),
					huh.NewOption("3.3", "3.3"),
					huh.NewOption("2.1", "2.1"),
				).
				Value(&options.MaxVersion),
		),
	)
}

// writeTemplate writes the embedded template to path unless a file is
// already there. It reports whether it wrote anything.
func (ic *InitCommand) writeTemplate(path string) (bool, error) {
	if exists, _ := afero.Exists(ic.filesystem, path); exists {
		return false, nil
	}

	data, err := fs.ReadFile(ic.templatesFS, defaultTemplateName)
	if err != nil {
		return false, errors.Wrap(err, "failed to read embedded template")
	}

	if err := ic.filesystem.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return false, errors.Mark(errors.Wrapf(err, "failed to create %s", filepath.Dir(path)), errors.ErrIO)
	}
	if err := afero.WriteFile(ic.filesystem, path, data, 0644); err != nil {
		return false, errors.Mark(errors.Wrapf(err, "failed to write %s", path), errors.ErrIO)
	}

	return true, nil
}
