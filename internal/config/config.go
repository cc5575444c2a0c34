// Package config provides application configuration management for csvview.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/natefinch/atomic"
)

// EnvHome overrides the configuration directory.
const EnvHome = "CSVVIEW_HOME"

// Config holds the csvview configuration.
type Config struct {
	Theme    string        `toml:"theme"`     // "dark" or "light"
	Language string        `toml:"language"`  // BCP 47 tag; empty = detect from env
	LogLevel string        `toml:"log_level"` // debug, info, warn, error
	Engine   EngineConfig  `toml:"engine"`
	View     ViewConfig    `toml:"view"`
	Ingest   IngestConfig  `toml:"ingest"`
	Profile  ProfileConfig `toml:"profile"`
	Watch    WatchConfig   `toml:"watch"`
	Server   ServerConfig  `toml:"server"`
}

// EngineConfig controls the filter/sort worker pool.
type EngineConfig struct {
	Workers int `toml:"workers"` // 0 = runtime.NumCPU()
}

// ViewConfig controls the table renderer.
type ViewConfig struct {
	Overscan       int    `toml:"overscan"`        // Rows fetched beyond the visible window
	FrameInterval  string `toml:"frame_interval"`  // Poll interval, e.g. "50ms"
	FilterDebounce string `toml:"filter_debounce"` // Delay before a typed filter is submitted
}

// IngestConfig controls delimited-text loading.
type IngestConfig struct {
	Delimiter string `toml:"delimiter"` // Single character; empty = sniff
	MaxRows   int    `toml:"max_rows"`  // 0 = unlimited
}

// ProfileConfig controls per-column statistics.
type ProfileConfig struct {
	MaxUnique int `toml:"max_unique"` // Unique values kept per column
}

// WatchConfig controls reloading datasets when their file changes.
type WatchConfig struct {
	Enabled  bool   `toml:"enabled"`
	Debounce string `toml:"debounce"`
}

// ServerConfig holds defaults for `csvview serve`.
type ServerConfig struct {
	Host  string `toml:"host"`
	Port  int    `toml:"port"`
	Token string `toml:"token,omitempty"`
}

// Default returns a configuration with all defaults set.
func Default() Config {
	return Config{
		Theme:    "dark",
		LogLevel: "info",
		Engine:   EngineConfig{Workers: 0},
		View: ViewConfig{
			Overscan:       20,
			FrameInterval:  "50ms",
			FilterDebounce: "0s",
		},
		Ingest:  IngestConfig{},
		Profile: ProfileConfig{MaxUnique: 50},
		Watch: WatchConfig{
			Enabled:  true,
			Debounce: "500ms",
		},
		Server: ServerConfig{
			Host: "localhost",
			Port: 8790,
		},
	}
}

// WorkerCount returns the pool size (default: number of CPUs).
func (c EngineConfig) WorkerCount() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.NumCPU()
}

// FrameDuration returns the parsed frame interval (default: 50ms).
func (c ViewConfig) FrameDuration() time.Duration {
	return parseDuration(c.FrameInterval, 50*time.Millisecond)
}

// DebounceDuration returns the parsed filter debounce (default: none).
func (c ViewConfig) DebounceDuration() time.Duration {
	return parseDuration(c.FilterDebounce, 0)
}

// DebounceDuration returns the parsed watch debounce (default: 500ms).
func (c WatchConfig) DebounceDuration() time.Duration {
	return parseDuration(c.Debounce, 500*time.Millisecond)
}

// DelimiterRune returns the configured delimiter, or 0 to sniff.
func (c IngestConfig) DelimiterRune() rune {
	if c.Delimiter == "" {
		return 0
	}
	if c.Delimiter == `\t` {
		return '\t'
	}
	return []rune(c.Delimiter)[0]
}

func parseDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return def
	}
	return d
}

// Dir returns the path to the csvview configuration directory.
func Dir() (string, error) {
	if dir := os.Getenv(EnvHome); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".csvview"), nil
}

// Path returns the path to the main config file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load loads the configuration from the default path.
func Load() (Config, error) {
	path, err := Path()
	if err != nil {
		return Config{}, err
	}
	return LoadFile(path)
}

// LoadFile loads the configuration at path. A missing file yields the
// defaults, which are written back so users have a file to edit.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		cfg := Default()
		_ = SaveFile(path, cfg) // defaults are still usable if this fails
		return cfg, nil
	} else if err != nil {
		return Config{}, err
	}

	// Start from defaults so missing keys keep their default values.
	cfg := Default()
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.Theme == "" {
		cfg.Theme = "dark"
	}
	if cfg.View.Overscan < 0 {
		cfg.View.Overscan = 0
	}
	return cfg, nil
}

// Save saves the configuration to the default path.
func Save(cfg Config) error {
	path, err := Path()
	if err != nil {
		return err
	}
	return SaveFile(path, cfg)
}

// SaveFile writes cfg as TOML, replacing path atomically.
func SaveFile(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return atomic.WriteFile(path, &buf)
}
