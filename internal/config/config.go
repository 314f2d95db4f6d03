package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
)

// DefaultTickInterval is how often the player polls the playback driver.
const DefaultTickInterval = 100 * time.Millisecond

// Config holds all configurable sourcereel settings.
type Config struct {
	DefaultFormat string   `json:"default_format"` // "markdown" | "json"
	OutputDir     string   `json:"output_dir"`
	LibraryPath   string   `json:"library_path"` // empty means the data directory
	TickInterval  Duration `json:"tick_interval"`
}

// Duration is a time.Duration that reads and writes as "100ms" in JSON.
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Defaults returns sensible default configuration values.
func Defaults() Config {
	return Config{
		DefaultFormat: "markdown",
		OutputDir:     ".",
		TickInterval:  Duration(DefaultTickInterval),
	}
}

// Tick returns the player tick interval, falling back to the default for
// non-positive values.
func (c Config) Tick() time.Duration {
	if c.TickInterval <= 0 {
		return DefaultTickInterval
	}
	return time.Duration(c.TickInterval)
}

// Dir returns ~/.config/sourcereel.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "sourcereel"), nil
}

// LoadGlobal reads ~/.config/sourcereel/config.json.
// Returns defaults if the file is absent.
func LoadGlobal() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	return loadFile(filepath.Join(dir, "config.json"), true)
}

// LoadProject reads .sourcereelconfig in the current working directory.
// Returns nil (no error) if the file is absent.
func LoadProject() (*Config, error) {
	return loadFile(".sourcereelconfig", false)
}

// loadFile reads and parses a JSON config file at path.
// If returnDefaults is true, returns defaults when the file is absent.
// If returnDefaults is false, returns nil when the file is absent.
func loadFile(path string, returnDefaults bool) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if returnDefaults {
				d := Defaults()
				return &d, nil
			}
			return nil, nil
		}
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return &cfg, nil
}

// Merge combines global and project configs, with project taking precedence.
// Missing keys fall back to global, then defaults.
func Merge(global, project *Config) Config {
	result := Defaults()
	for _, layer := range []*Config{global, project} {
		if layer == nil {
			continue
		}
		if layer.DefaultFormat != "" {
			result.DefaultFormat = layer.DefaultFormat
		}
		if layer.OutputDir != "" {
			result.OutputDir = layer.OutputDir
		}
		if layer.LibraryPath != "" {
			result.LibraryPath = layer.LibraryPath
		}
		if layer.TickInterval > 0 {
			result.TickInterval = layer.TickInterval
		}
	}
	return result
}

// envOverlay holds the environment overrides. Unset variables stay nil.
type envOverlay struct {
	OutputDir     *string        `env:"SOURCEREEL_OUTPUT_DIR"`
	DefaultFormat *string        `env:"SOURCEREEL_DEFAULT_FORMAT"`
	LibraryPath   *string        `env:"SOURCEREEL_LIBRARY_PATH"`
	TickInterval  *time.Duration `env:"SOURCEREEL_TICK_INTERVAL"`
}

// ApplyEnv overlays SOURCEREEL_* environment variables on cfg. Environment
// values win over both config files.
func ApplyEnv(cfg Config) (Config, error) {
	var overlay envOverlay
	if err := env.Parse(&overlay); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	if overlay.OutputDir != nil && *overlay.OutputDir != "" {
		cfg.OutputDir = *overlay.OutputDir
	}
	if overlay.DefaultFormat != nil && *overlay.DefaultFormat != "" {
		cfg.DefaultFormat = *overlay.DefaultFormat
	}
	if overlay.LibraryPath != nil && *overlay.LibraryPath != "" {
		cfg.LibraryPath = *overlay.LibraryPath
	}
	if overlay.TickInterval != nil && *overlay.TickInterval > 0 {
		cfg.TickInterval = Duration(*overlay.TickInterval)
	}
	return cfg, nil
}

// Load merges the global file, the project file and the environment.
// Settings the files leave at their defaults take fallback's value, so user
// profile preferences rank above the defaults and below the files. The
// environment wins over everything.
func Load(fallback Config) (Config, error) {
	global, err := LoadGlobal()
	if err != nil {
		return Config{}, fmt.Errorf("loading global config: %w", err)
	}
	project, err := LoadProject()
	if err != nil {
		return Config{}, fmt.Errorf("loading project config: %w", err)
	}

	merged := Merge(global, project)
	def := Defaults()
	if merged.DefaultFormat == def.DefaultFormat && fallback.DefaultFormat != "" {
		merged.DefaultFormat = fallback.DefaultFormat
	}
	if merged.OutputDir == def.OutputDir && fallback.OutputDir != "" {
		merged.OutputDir = fallback.OutputDir
	}
	if merged.LibraryPath == "" && fallback.LibraryPath != "" {
		merged.LibraryPath = fallback.LibraryPath
	}
	return ApplyEnv(merged)
}

// ParseError is returned when a config file exists but cannot be parsed.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return "failed to parse config file " + e.Path + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
