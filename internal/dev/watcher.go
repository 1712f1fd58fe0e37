package dev

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/glbind/glbind/internal/errors"
)

// FileWatcher watches files for changes based on patterns
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	patterns []string
	exclude  []string
	onChange func(path string, op fsnotify.Op)
	logger   zerolog.Logger
}

// NewFileWatcher creates a new file watcher. A pattern containing a path
// separator is matched against the whole cleaned path; any other pattern is
// matched against the base name. "**/*.ext" matches the extension at any depth.
// Exclude patterns always match base names and win over patterns.
func NewFileWatcher(patterns []string, exclude []string, logger zerolog.Logger, onChange func(path string, op fsnotify.Op)) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create watcher")
	}

	cleaned := make([]string, len(patterns))
	for i, p := range patterns {
		cleaned[i] = cleanPattern(p)
	}

	return &FileWatcher{
		watcher:  watcher,
		patterns: cleaned,
		exclude:  exclude,
		onChange: onChange,
		logger:   logger,
	}, nil
}

// AddFile watches the directory holding path. Directories are watched rather
// than the file itself so that editors replacing the file by rename are seen.
func (fw *FileWatcher) AddFile(path string) error {
	dir := filepath.Dir(path)
	for _, watched := range fw.watcher.WatchList() {
		if watched == dir {
			return nil
		}
	}

	if err := fw.watcher.Add(dir); err != nil {
		return errors.Wrapf(err, "failed to watch directory %s", dir)
	}
	fw.logger.Debug().Str("dir", dir).Msg("watching directory")
	return nil
}

// Start begins watching for file changes
func (fw *FileWatcher) Start(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return errors.New("watcher channel closed")
			}

			if event.Op == fsnotify.Chmod {
				continue
			}
			if fw.shouldWatch(event.Name) {
				fw.onChange(event.Name, event.Op)
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return errors.New("watcher error channel closed")
			}
			if err != nil {
				// Log error but continue watching
				fw.logger.Warn().Err(err).Msg("watcher error")
			}
		}
	}
}

// shouldWatch checks if a file should trigger a change event based on patterns
func (fw *FileWatcher) shouldWatch(path string) bool {
	base := filepath.Base(path)

	// Check excludes first
	for _, pattern := range fw.exclude {
		if matched, _ := filepath.Match(strings.TrimSuffix(pattern, "/"), base); matched {
			return false
		}
	}

	cleaned := filepath.Clean(path)
	for _, pattern := range fw.patterns {
		switch {
		case strings.HasPrefix(pattern, "**/*."):
			if strings.HasSuffix(base, strings.TrimPrefix(pattern, "**/*")) {
				return true
			}
		case strings.ContainsRune(pattern, filepath.Separator):
			if matched, _ := filepath.Match(pattern, cleaned); matched {
				return true
			}
		default:
			if matched, _ := filepath.Match(pattern, base); matched {
				return true
			}
		}
	}

	return false
}

// Close stops the watcher
func (fw *FileWatcher) Close() error {
	return fw.watcher.Close()
}

func cleanPattern(p string) string {
	if strings.HasPrefix(p, "**/") || !strings.ContainsAny(p, `/\`) {
		return p
	}
	return filepath.Clean(p)
}
