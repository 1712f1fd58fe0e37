// Package fileio reads and writes whole files for the generator.
package fileio

import (
	"io"
	"math"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"

	"github.com/glbind/glbind/internal/errors"
)

// Files reads and writes whole files on a filesystem, refusing to buffer
// anything larger than MaxSize bytes.
type Files struct {
	fs      afero.Fs
	maxSize uint64
}

// New returns Files backed by fs. A maxSize of zero means the only limit is
// what fits in an int.
func New(fs afero.Fs, maxSize uint64) *Files {
	if maxSize == 0 || maxSize > math.MaxInt {
		maxSize = math.MaxInt
	}
	return &Files{fs: fs, maxSize: maxSize}
}

// OS returns Files on the real filesystem.
func OS(maxSize uint64) *Files {
	return New(afero.NewOsFs(), maxSize)
}

// Fs returns the underlying filesystem.
func (f *Files) Fs() afero.Fs {
	return f.fs
}

// Read returns the full contents of path. The file is closed before Read
// returns.
func (f *Files) Read(path string) ([]byte, error) {
	if path == "" {
		return nil, errors.Wrap(errors.ErrInvalidArguments, "empty file path")
	}

	file, err := f.fs.Open(path)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "failed to open %s", path), errors.ErrIO)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "failed to stat %s", path), errors.ErrIO)
	}

	size := info.Size()
	if size < 0 || uint64(size) > f.maxSize {
		return nil, errors.WithHintf(
			errors.Wrapf(errors.ErrFileTooLarge, "%s is %s", path, humanize.IBytes(uint64(size))),
			"raise limits.max_file_size (currently %s)", humanize.IBytes(f.maxSize))
	}

	data := make([]byte, size)
	if _, err := io.ReadFull(file, data); err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "short read of %s", path), errors.ErrIO)
	}

	return data, nil
}

// Write replaces the contents of path with data, creating missing parent
// directories. The replacement is not atomic.
func (f *Files) Write(path string, data []byte) error {
	if path == "" {
		return errors.Wrap(errors.ErrInvalidArguments, "empty file path")
	}

	if err := f.fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Mark(errors.Wrapf(err, "failed to create %s", filepath.Dir(path)), errors.ErrIO)
	}

	if err := afero.WriteFile(f.fs, path, data, 0644); err != nil {
		return errors.Mark(errors.Wrapf(err, "failed to write %s", path), errors.ErrIO)
	}

	return nil
}

// Exists reports whether path exists.
func (f *Files) Exists(path string) bool {
	ok, err := afero.Exists(f.fs, path)
	return err == nil && ok
}
