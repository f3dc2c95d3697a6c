package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.toml")

	cfg := Default()
	cfg.DefaultProfile = "night-shift"
	cfg.DefaultSearchType = SearchTypeViolationType
	cfg.RequestTimeout = Duration{3 * time.Second}
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.DefaultProfile != "night-shift" {
		t.Errorf("DefaultProfile = %q, want %q", loaded.DefaultProfile, "night-shift")
	}
	if loaded.DefaultSearchType != SearchTypeViolationType {
		t.Errorf("DefaultSearchType = %q, want %q", loaded.DefaultSearchType, SearchTypeViolationType)
	}
	if loaded.RequestTimeout.Duration != 3*time.Second {
		t.Errorf("RequestTimeout = %s, want 3s", loaded.RequestTimeout)
	}
}

func TestLoadFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`base_url = "http://10.0.0.5/backend"`+"\n"), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BaseURL != "http://10.0.0.5/backend" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.DebounceMS != 300 {
		t.Errorf("DebounceMS = %d, want 300", cfg.DebounceMS)
	}
	if cfg.Debounce() != 300*time.Millisecond {
		t.Errorf("Debounce() = %s, want 300ms", cfg.Debounce())
	}
	if !cfg.DiscardStaleSuggestions {
		t.Error("DiscardStaleSuggestions should default to true")
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load("/nonexistent/config.toml")
	if err == nil {
		t.Error("Load() expected error for missing file")
	}

	cfg, err := LoadOrDefault("/nonexistent/config.toml")
	if err != nil {
		t.Fatalf("LoadOrDefault() error = %v", err)
	}
	if cfg.DefaultProfile != "main" {
		t.Errorf("DefaultProfile = %q, want main", cfg.DefaultProfile)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"relative base url", func(c *Config) { c.BaseURL = "backend/" }, true},
		{"unknown search type", func(c *Config) { c.DefaultSearchType = "grade" }, true},
		{"zero debounce", func(c *Config) { c.DebounceMS = 0 }, true},
		{"negative timeout", func(c *Config) { c.RequestTimeout = Duration{-time.Second} }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSavePermissions(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.toml")

	if err := Save(path, Default()); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	perm := info.Mode().Perm()
	if perm != 0600 {
		t.Errorf("file permission = %o, want 0600", perm)
	}
}
