// Package dev implements glbind watch: regenerate the header whenever a
// registry or the template changes.
package dev

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/glbind/glbind/internal/errors"
)

// Options configures a watch Server
type Options struct {
	// Files are the inputs whose changes trigger a rebuild
	Files []string

	// Exclude lists base-name patterns that never trigger a rebuild
	Exclude []string

	// Debounce is how long the inputs must stay quiet before rebuilding
	Debounce time.Duration

	// Out receives the progress messages shown to the user
	Out io.Writer
}

// Server runs one build, then rebuilds after every burst of changes.
// Builds run on the Start goroutine, one at a time.
type Server struct {
	builder HeaderBuilder
	opts    Options
	logger  zerolog.Logger

	changes chan string
}

// NewServer creates a watch server
func NewServer(builder HeaderBuilder, opts Options, logger zerolog.Logger) *Server {
	if opts.Out == nil {
		opts.Out = io.Discard
	}

	return &Server{
		builder: builder,
		opts:    opts,
		logger:  logger.With().Str("component", "watch").Logger(),
		// One pending change is enough; the rebuild rereads every input
		changes: make(chan string, 1),
	}
}

// Start builds once and then watches until ctx is cancelled. A failed build
// is reported and watching continues, so the inputs can be fixed in place.
func (s *Server) Start(ctx context.Context) error {
	watcher, err := NewFileWatcher(s.opts.Files, s.opts.Exclude, s.logger, s.handleFileChange)
	if err != nil {
		return err
	}
	defer watcher.Close()

	for _, file := range s.opts.Files {
		if err := watcher.AddFile(file); err != nil {
			return err
		}
	}

	s.rebuild("initial build")

	fmt.Fprintln(s.opts.Out, "👀 Watching for changes. Press Ctrl+C to stop.")

	watchErr := make(chan error, 1)
	go func() {
		watchErr <- watcher.Start(ctx)
	}()

	return s.loop(ctx, watchErr)
}

// loop waits for changes and rebuilds once the debounce window passes
// without further changes.
func (s *Server) loop(ctx context.Context, watchErr <-chan error) error {
	var (
		timer   *time.Timer
		timerC  <-chan time.Time
		pending string
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case err := <-watchErr:
			if errors.Is(err, context.Canceled) {
				return err
			}
			return errors.Wrap(err, "file watcher stopped")

		case path := <-s.changes:
			pending = path
			if timer == nil {
				timer = time.NewTimer(s.opts.Debounce)
			} else {
				timer.Reset(s.opts.Debounce)
			}
			timerC = timer.C

		case <-timerC:
			timerC = nil
			s.rebuild(pending)
		}
	}
}

// handleFileChange is called on the watcher goroutine
func (s *Server) handleFileChange(path string, op fsnotify.Op) {
	s.logger.Debug().Str("path", path).Str("op", op.String()).Msg("input changed")

	select {
	case s.changes <- path:
	default:
		// A rebuild is already pending
	}
}

func (s *Server) rebuild(reason string) {
	if reason != "initial build" {
		fmt.Fprintf(s.opts.Out, "\n📝 Changed: %s\n", filepath.Base(reason))
	}

	start := time.Now()
	if err := s.builder.Build(); err != nil {
		s.logger.Error().Err(err).Int("exit_code", errors.ExitCode(err)).Msg("build failed")
		fmt.Fprintf(s.opts.Out, "❌ Build failed: %v\n", err)
		return
	}

	fmt.Fprintf(s.opts.Out, "✅ Header regenerated in %s\n", time.Since(start).Round(time.Millisecond))
}
