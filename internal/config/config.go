package config

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/Masterminds/semver/v3"
	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"

	"github.com/glbind/glbind/internal/errors"
)

// FileName is the name of the configuration file searched for by LoadConfig
const FileName = "glbind.toml"

// Defaults applied to empty fields
const (
	DefaultTemplate    = "source/glbind_template.h"
	DefaultOutput      = "glbind.h"
	DefaultMaxFileSize = "64 MiB"
	DefaultDebounce    = 200 * time.Millisecond
)

// DefaultRegistries are loaded, in this order, when none are configured
var DefaultRegistries = []string{"resources/gl.xml", "resources/wgl.xml", "resources/glx.xml"}

// Config represents the glbind.toml configuration file
type Config struct {
	// Registries are the XML registry documents, merged in order
	Registries []string       `toml:"registries"`
	Template   string         `toml:"template"`
	Output     string         `toml:"output"`
	Limits     LimitsConfig   `toml:"limits"`
	Features   FeaturesConfig `toml:"features"`
	Watch      WatchConfig    `toml:"watch"`
}

// LimitsConfig bounds the size of files read into memory
type LimitsConfig struct {
	// MaxFileSize is a human readable size such as "64 MiB" or "10MB"
	MaxFileSize string `toml:"max_file_size"`
}

// FeaturesConfig selects which features are generated
type FeaturesConfig struct {
	// MaxVersion skips features numbered above it. Empty keeps all of them.
	MaxVersion string `toml:"max_version"`
}

// WatchConfig contains settings for the watch command
type WatchConfig struct {
	Debounce Duration `toml:"debounce"`
	Exclude  []string `toml:"exclude"`
}

// Duration is a time.Duration written as a string ("200ms") in TOML
type Duration struct {
	time.Duration
}

// UnmarshalText parses a Go duration string
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return errors.Wrapf(errors.ErrInvalidArguments, "invalid duration %q", text)
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration as a Go duration string
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns a configuration with every default applied
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// LoadConfig loads glbind.toml from the current directory or a parent directory.
// It returns the config and the directory it was found in.
func LoadConfig() (*Config, string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, "", errors.Wrap(err, "failed to get current directory")
	}

	return loadConfigFromDir(afero.NewOsFs(), dir)
}

// LoadConfigFromPath loads the configuration from a specific path
func LoadConfigFromPath(path string) (*Config, error) {
	return Load(afero.NewOsFs(), path)
}

// Load reads and validates the configuration at path on fs
func Load(fs afero.Fs, path string) (*Config, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "failed to read config file"), errors.ErrInvalidArguments)
	}

	var cfg Config
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "failed to parse config file %s", path), errors.ErrInvalidArguments)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, key := range undecoded {
			keys[i] = key.String()
		}
		sort.Strings(keys)
		return nil, errors.Wrapf(errors.ErrInvalidArguments, "unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid config file %s", path)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if len(c.Registries) == 0 {
		c.Registries = append([]string(nil), DefaultRegistries...)
	}
	if c.Template == "" {
		c.Template = DefaultTemplate
	}
	if c.Output == "" {
		c.Output = DefaultOutput
	}
	if c.Limits.MaxFileSize == "" {
		c.Limits.MaxFileSize = DefaultMaxFileSize
	}
	if c.Watch.Debounce.Duration == 0 {
		c.Watch.Debounce.Duration = DefaultDebounce
	}
	if len(c.Watch.Exclude) == 0 {
		c.Watch.Exclude = []string{".git/", filepath.Base(c.Output)}
	}
}

// Validate checks fields that defaults cannot fix
func (c *Config) Validate() error {
	for i, path := range c.Registries {
		if strings.TrimSpace(path) == "" {
			return errors.Wrapf(errors.ErrInvalidArguments, "registries[%d] is empty", i)
		}
	}
	if filepath.Clean(c.Output) == filepath.Clean(c.Template) {
		return errors.Wrapf(errors.ErrInvalidArguments, "output %q would overwrite the template", c.Output)
	}
	if c.Watch.Debounce.Duration < 0 {
		return errors.Wrapf(errors.ErrInvalidArguments, "watch.debounce must not be negative, got %s", c.Watch.Debounce)
	}
	if _, err := c.MaxFileSizeBytes(); err != nil {
		return err
	}
	if _, err := c.FeatureCeiling(); err != nil {
		return err
	}
	return nil
}

// MaxFileSizeBytes parses limits.max_file_size
func (c *Config) MaxFileSizeBytes() (uint64, error) {
	size, err := humanize.ParseBytes(c.Limits.MaxFileSize)
	if err != nil {
		return 0, errors.Wrapf(errors.ErrInvalidArguments, "invalid limits.max_file_size %q", c.Limits.MaxFileSize)
	}
	return size, nil
}

// FeatureCeiling parses features.max_version. It returns nil when unset.
func (c *Config) FeatureCeiling() (*semver.Version, error) {
	if c.Features.MaxVersion == "" {
		return nil, nil
	}
	v, err := semver.NewVersion(c.Features.MaxVersion)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidArguments, "invalid features.max_version %q", c.Features.MaxVersion)
	}
	return v, nil
}

// Resolve returns the path p relative to root unless it is already absolute
func Resolve(root, p string) string {
	if filepath.IsAbs(p) || root == "" {
		return p
	}
	return filepath.Join(root, p)
}

// Encode renders the configuration as TOML
func (c *Config) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return nil, errors.Wrap(err, "failed to encode config")
	}
	return buf.Bytes(), nil
}

// loadConfigFromDir searches for glbind.toml in the given directory and its parents
func loadConfigFromDir(fs afero.Fs, startDir string) (*Config, string, error) {
	dir := startDir
	for {
		configPath := filepath.Join(dir, FileName)
		if _, err := fs.Stat(configPath); err == nil {
			config, err := Load(fs, configPath)
			if err != nil {
				return nil, "", err
			}
			return config, dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root directory
			break
		}
		dir = parent
	}

	return nil, "", errors.WithHint(
		errors.Wrapf(errors.ErrInvalidArguments, "no %s found in %s or any parent directory", FileName, startDir),
		"run glbind init to create one")
}
