package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glbind/glbind/internal/errors"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		check       func(t *testing.T, cfg *Config)
		errContains string
	}{
		{
			name: "valid config with all fields",
			content: `
registries = ["xml/gl.xml", "xml/egl.xml"]
template = "tmpl/header.h"
output = "include/gl.h"

[limits]
max_file_size = "10 MB"

[features]
max_version = "3.3"

[watch]
debounce = "1s"
exclude = ["build/"]
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, []string{"xml/gl.xml", "xml/egl.xml"}, cfg.Registries)
				assert.Equal(t, "tmpl/header.h", cfg.Template)
				assert.Equal(t, "include/gl.h", cfg.Output)
				assert.Equal(t, time.Second, cfg.Watch.Debounce.Duration)
				assert.Equal(t, []string{"build/"}, cfg.Watch.Exclude)

				size, err := cfg.MaxFileSizeBytes()
				require.NoError(t, err)
				assert.Equal(t, uint64(10_000_000), size)

				ceiling, err := cfg.FeatureCeiling()
				require.NoError(t, err)
				assert.Equal(t, "3.3.0", ceiling.String())
			},
		},
		{
			name:    "empty config file gets defaults",
			content: "",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, DefaultRegistries, cfg.Registries)
				assert.Equal(t, DefaultTemplate, cfg.Template)
				assert.Equal(t, DefaultOutput, cfg.Output)
				assert.Equal(t, DefaultDebounce, cfg.Watch.Debounce.Duration)
				assert.Equal(t, []string{".git/", DefaultOutput}, cfg.Watch.Exclude)

				size, err := cfg.MaxFileSizeBytes()
				require.NoError(t, err)
				assert.Equal(t, uint64(64<<20), size)

				ceiling, err := cfg.FeatureCeiling()
				require.NoError(t, err)
				assert.Nil(t, ceiling)
			},
		},
		{
			name:        "invalid toml",
			content:     `registries = [`,
			errContains: "failed to parse config file",
		},
		{
			name:        "unknown key",
			content:     "outptu = \"x.h\"\n[limits]\nmax_size = \"1 MiB\"\n",
			errContains: "unknown keys in glbind.toml: limits.max_size, outptu",
		},
		{
			name:        "bad duration",
			content:     "[watch]\ndebounce = \"soon\"\n",
			errContains: "invalid duration",
		},
		{
			name:        "bad size",
			content:     "[limits]\nmax_file_size = \"lots\"\n",
			errContains: "invalid limits.max_file_size",
		},
		{
			name:        "bad version",
			content:     "[features]\nmax_version = \"latest\"\n",
			errContains: "invalid features.max_version",
		},
		{
			name:        "empty registry path",
			content:     `registries = ["gl.xml", " "]`,
			errContains: "registries[1] is empty",
		},
		{
			name:        "output overwrites template",
			content:     "template = \"a/b.h\"\noutput = \"a/./b.h\"\n",
			errContains: "would overwrite the template",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			require.NoError(t, afero.WriteFile(fs, FileName, []byte(tt.content), 0644))

			cfg, err := Load(fs, FileName)

			if tt.errContains != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				assert.Equal(t, errors.ExitInvalidArgs, errors.ExitCode(err))
				return
			}

			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(afero.NewMemMapFs(), "nope.toml")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidArguments))
}

func TestLoadConfigFromDir(t *testing.T) {
	// Test: Config is found in a parent directory and its directory is returned
	fs := afero.NewMemMapFs()
	root := filepath.FromSlash("/project")
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, fs.MkdirAll(nested, 0755))
	require.NoError(t, afero.WriteFile(fs, filepath.Join(root, FileName), []byte(`output = "out.h"`), 0644))

	cfg, dir, err := loadConfigFromDir(fs, nested)
	require.NoError(t, err)
	assert.Equal(t, root, dir)
	assert.Equal(t, "out.h", cfg.Output)
}

func TestLoadConfigFromDir_NotFound(t *testing.T) {
	fs := afero.NewMemMapFs()
	dir := filepath.FromSlash("/empty/dir")
	require.NoError(t, fs.MkdirAll(dir, 0755))

	_, _, err := loadConfigFromDir(fs, dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no glbind.toml found")
	assert.Contains(t, errors.FlattenHints(err), "glbind init")
}

func TestLoadConfigFromPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte("[features]\nmax_version = \"4.6\"\n"), 0644))

	cfg, err := LoadConfigFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "4.6", cfg.Features.MaxVersion)
}

func TestEncodeRoundTrip(t *testing.T) {
	// Test: A default config written by init loads back unchanged
	cfg := Default()
	cfg.Features.MaxVersion = "3.3"

	data, err := cfg.Encode()
	require.NoError(t, err)
	assert.Contains(t, string(data), `debounce = "200ms"`)

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, FileName, data, 0644))
	loaded, err := Load(fs, FileName)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestResolve(t *testing.T) {
	abs := filepath.FromSlash("/abs/gl.xml")
	assert.Equal(t, abs, Resolve("/root", abs))
	assert.Equal(t, filepath.Join("root", "gl.xml"), Resolve("root", "gl.xml"))
	assert.Equal(t, "gl.xml", Resolve("", "gl.xml"))
}
