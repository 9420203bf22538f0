// Package config loads the cibootstrap tool configuration: an optional YAML
// file, then CIBOOTSTRAP_* environment overrides, then validation.
package config

import (
	"bytes"
	stderrors "errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/NielsdaWheelz/cibootstrap/internal/errors"
	"github.com/NielsdaWheelz/cibootstrap/internal/fs"
	"github.com/NielsdaWheelz/cibootstrap/internal/paths"
)

// FileName is the config file name inside the user config directory.
const FileName = "config.yaml"

// Config is the parsed and validated tool configuration.
type Config struct {
	// Cargo is the cargo executable used for workspace metadata.
	Cargo string `yaml:"cargo"`
	// TemplatesDir points the template store at an installed template
	// directory instead of the built-in templates. Relative paths are
	// resolved against the config file's directory.
	TemplatesDir string    `yaml:"templates_dir"`
	Log          LogConfig `yaml:"log"`

	// Derived (not from YAML):
	Source string `yaml:"-"` // config file that was read; "" if none
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// SlogLevel converts the Level string to slog.Level.
func (lc LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(lc.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Default returns the configuration used when no file and no overrides exist.
func Default() Config {
	return Config{
		Cargo: "cargo",
		Log:   LogConfig{Level: "info", Format: "text"},
	}
}

// DefaultPath returns <config dir>/config.yaml.
func DefaultPath(dirs paths.Dirs) string {
	return filepath.Join(dirs.ConfigDir, FileName)
}

// Load reads the config file at path, applies environment overrides and
// validates the result.
//
// A missing file is not an error unless required is set (an explicit
// --config). Returns E_INVALID_CONFIG for unreadable, malformed or
// invalid configuration.
func Load(filesystem fs.FS, path string, required bool, env paths.Env) (Config, error) {
	cfg := Default()

	data, present, err := fs.ReadOptional(filesystem, path)
	if err != nil {
		return Config{}, errors.WrapWithDetails(errors.EInvalidConfig, "failed to read config file", err,
			map[string]string{"path": path})
	}
	if !present && required {
		return Config{}, errors.NewWithDetails(errors.EInvalidConfig, "config file not found",
			map[string]string{"path": path})
	}
	if present {
		if err := decode(data, &cfg); err != nil {
			return Config{}, errors.WrapWithDetails(errors.EInvalidConfig, "invalid yaml", err,
				map[string]string{"path": path})
		}
		cfg.Source = path
		if cfg.TemplatesDir != "" && !filepath.IsAbs(cfg.TemplatesDir) {
			cfg.TemplatesDir = filepath.Join(filepath.Dir(path), cfg.TemplatesDir)
		}
	}

	applyEnv(&cfg, env)

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// decode rejects unknown keys. An empty document leaves cfg untouched.
func decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !stderrors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func applyEnv(cfg *Config, env paths.Env) {
	if v := env.Get("CIBOOTSTRAP_CARGO"); v != "" {
		cfg.Cargo = v
	}
	if v := env.Get("CIBOOTSTRAP_TEMPLATES_DIR"); v != "" {
		cfg.TemplatesDir = v
	}
	if v := env.Get("CIBOOTSTRAP_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := env.Get("CIBOOTSTRAP_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

// Validate checks field values. Returns E_INVALID_CONFIG naming the first
// offending field.
func Validate(cfg Config) error {
	if cfg.Cargo == "" {
		return errors.New(errors.EInvalidConfig, "cargo must be a non-empty string")
	}
	if strings.ContainsAny(cfg.Cargo, " \t\n") {
		return errors.New(errors.EInvalidConfig, "cargo must be a single executable (no args); use a wrapper script")
	}
	switch strings.ToLower(cfg.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return errors.NewWithDetails(errors.EInvalidConfig, "log.level must be one of debug, info, warn, error",
			map[string]string{"value": cfg.Log.Level})
	}
	switch strings.ToLower(cfg.Log.Format) {
	case "json", "text":
	default:
		return errors.NewWithDetails(errors.EInvalidConfig, "log.format must be one of json, text",
			map[string]string{"value": cfg.Log.Format})
	}
	return nil
}
