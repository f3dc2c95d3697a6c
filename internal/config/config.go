package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Search type identifiers understood by the backend.
const (
	SearchTypeStudentName   = "student_name"
	SearchTypeViolationType = "violation_type"
)

// Duration wraps time.Duration so it can be written as "10s" in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Config represents the global ~/.vtrack/config.toml.
type Config struct {
	DefaultProfile          string   `toml:"default_profile"`
	BaseURL                 string   `toml:"base_url"`
	ListenAddr              string   `toml:"listen_addr"`
	DefaultSearchType       string   `toml:"default_search_type"`
	DebounceMS              int      `toml:"debounce_ms"`
	RequestTimeout          Duration `toml:"request_timeout"`
	DiscardStaleSuggestions bool     `toml:"discard_stale_suggestions"`
	AutostartDaemon         bool     `toml:"autostart_daemon"`
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	return &Config{
		DefaultProfile:          "main",
		BaseURL:                 "http://127.0.0.1:8080",
		ListenAddr:              "127.0.0.1:8080",
		DefaultSearchType:       SearchTypeStudentName,
		DebounceMS:              300,
		RequestTimeout:          Duration{10 * time.Second},
		DiscardStaleSuggestions: true,
		AutostartDaemon:         true,
	}
}

// Load reads config from the given path on top of Default. Returns error if file missing.
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault is Load, falling back to Default when the file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Save writes config to the given path, creating parent dirs as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(cfg)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid base_url %q", c.BaseURL)
	}
	switch c.DefaultSearchType {
	case SearchTypeStudentName, SearchTypeViolationType:
	default:
		return fmt.Errorf("invalid default_search_type %q", c.DefaultSearchType)
	}
	if c.DebounceMS <= 0 {
		return fmt.Errorf("debounce_ms must be positive, got %d", c.DebounceMS)
	}
	if c.RequestTimeout.Duration <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %s", c.RequestTimeout)
	}
	return nil
}

// Debounce returns the debounce delay as a duration.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}
