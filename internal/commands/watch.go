package commands

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/glbind/glbind/internal/config"
	"github.com/glbind/glbind/internal/dev"
	"github.com/glbind/glbind/internal/errors"
)

// Watch generates the header, then regenerates it whenever a registry or
// the template changes. It returns when ctx is cancelled.
func (c *Controller) Watch(ctx context.Context) error {
	cfg, root, err := c.loadConfig()
	if err != nil {
		return err
	}

	builder, err := c.newBuilder(cfg, root)
	if err != nil {
		return err
	}

	files := make([]string, 0, len(cfg.Registries)+1)
	for _, path := range cfg.Registries {
		files = append(files, config.Resolve(root, path))
	}
	files = append(files, config.Resolve(root, cfg.Template))

	fmt.Fprintf(c.out(), "🔄 Watching %d registries and %s\n", len(cfg.Registries), cfg.Template)

	server := dev.NewServer(builder, dev.Options{
		Files:    files,
		Exclude:  cfg.Watch.Exclude,
		Debounce: cfg.Watch.Debounce.Duration,
		Out:      c.out(),
	}, log.Logger)

	if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
