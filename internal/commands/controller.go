// Package commands contains the CLI commands for the application
package commands

import (
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/glbind/glbind/internal/build"
	"github.com/glbind/glbind/internal/config"
	"github.com/glbind/glbind/internal/fileio"
)

type Flags struct {
	LogLevel string
	// Config is an explicit path to glbind.toml. Empty searches the working
	// directory and its parents.
	Config string
}

type Controller struct {
	Flags *Flags
	// Out receives command output. Defaults to stdout.
	Out io.Writer
}

func (c *Controller) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

// loadConfig returns the configuration and the directory its relative paths
// are resolved against.
func (c *Controller) loadConfig() (*config.Config, string, error) {
	if c.Flags != nil && c.Flags.Config != "" {
		cfg, err := config.LoadConfigFromPath(c.Flags.Config)
		if err != nil {
			return nil, "", err
		}
		return cfg, filepath.Dir(c.Flags.Config), nil
	}
	return config.LoadConfig()
}

func (c *Controller) newBuilder(cfg *config.Config, root string) (*build.HeaderBuilder, error) {
	maxSize, err := cfg.MaxFileSizeBytes()
	if err != nil {
		return nil, err
	}

	logger := log.Logger.With().Str("component", "build").Logger()
	return build.NewHeaderBuilder(cfg, root, fileio.OS(maxSize), logger), nil
}
