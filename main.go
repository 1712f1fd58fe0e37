package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/glbind/glbind/internal/commands"
	"github.com/glbind/glbind/internal/errors"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	short := commit
	if len(commit) > 7 {
		short = commit[:7]
	}

	return fmt.Sprintf("%s (%s) %s", version, short, date)
}

func newApp(ctrl *commands.Controller) *cli.Command {
	// Flags hold parse state, so each command gets its own set
	generateFlags := func() []cli.Flag {
		return []cli.Flag{
			&cli.BoolFlag{
				Name:  "check",
				Usage: "fail with a diff instead of writing when the output is out of date",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "write the header to `PATH` (relative to the working directory) instead of the configured output",
			},
		}
	}
	generate := func(ctx context.Context, c *cli.Command) error {
		return ctrl.Generate(ctx, commands.GenerateOptions{
			Check:  c.Bool("check"),
			Output: c.String("output"),
		})
	}

	return &cli.Command{
		Name:    "glbind",
		Usage:   "Generate a single-file OpenGL header from the Khronos XML registries",
		Version: build(),
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "log level (debug, info, warn, error, fatal, panic)",
				Sources: cli.EnvVars("GLBIND_LOG_LEVEL"),
				Value:   "warn",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to glbind.toml (default: search the working directory and its parents)",
				Sources: cli.EnvVars("GLBIND_CONFIG"),
			},
		}, generateFlags()...),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			level, err := zerolog.ParseLevel(c.String("log-level"))
			if err != nil {
				return ctx, errors.Wrapf(errors.ErrInvalidArguments, "failed to parse log level: %v", err)
			}

			log.Logger = log.Level(level)
			ctrl.Flags.LogLevel = c.String("log-level")
			ctrl.Flags.Config = c.String("config")

			return ctx, nil
		},
		// Running without a subcommand generates once
		Action: generate,
		Commands: []*cli.Command{
			{
				Name:   "generate",
				Usage:  "Generate the header from the configured registries",
				Flags:  generateFlags(),
				Action: generate,
			},
			{
				Name:  "watch",
				Usage: "Regenerate the header whenever a registry or the template changes",
				Action: func(ctx context.Context, c *cli.Command) error {
					return ctrl.Watch(ctx)
				},
			},
			{
				Name:  "dump",
				Usage: "Print the merged registry as YAML",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "section",
						Usage: "only print one section (" + strings.Join(commands.DumpSections, ", ") + ")",
					},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					return ctrl.Dump(ctx, c.String("section"))
				},
			},
			{
				Name:  "init",
				Usage: "Create glbind.toml and a default header template",
				Action: func(ctx context.Context, c *cli.Command) error {
					return ctrl.Init(ctx)
				},
			},
		},
	}
}

func main() {
	ctrl := &commands.Controller{
		Flags: &commands.Flags{},
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp(ctrl).Run(ctx, os.Args); err != nil {
		code := errors.ExitCode(err)
		event := log.Error().Err(err).Int("exit_code", code)
		if hint := errors.FlattenHints(err); hint != "" {
			event = event.Str("hint", hint)
		}
		event.Msg("failed to run glbind")

		stop()
		os.Exit(code)
	}
}
