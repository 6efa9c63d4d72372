package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/numkit/timeseries"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Window != DefaultWindow {
		t.Errorf("expected window %d, got %d", DefaultWindow, cfg.Window)
	}
	if cfg.Mode != "valid" {
		t.Errorf("expected mode valid, got %s", cfg.Mode)
	}
	if cfg.Step <= 0 {
		t.Error("step should be positive")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "numkit.yaml")

	cfg := DefaultConfig()
	cfg.Window = 25
	cfg.Mode = "same"
	cfg.MaxLag = 128
	cfg.Column = "energy"

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("round trip mismatch: %+v vs %+v", loaded, cfg)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	if err := os.WriteFile(path, []byte("window: 3\n"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	// A file naming only some keys keeps defaults for the rest.
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Window != 3 {
		t.Errorf("expected window 3, got %d", loaded.Window)
	}
	if loaded.MaxIterations != DefaultMaxIterations {
		t.Errorf("expected default max iterations, got %d", loaded.MaxIterations)
	}
	if loaded.Mode != DefaultMode {
		t.Errorf("expected default mode, got %s", loaded.Mode)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		param  string
	}{
		{"zero window", func(c *Config) { c.Window = 0 }, "window"},
		{"bad mode", func(c *Config) { c.Mode = "gaussian" }, "mode"},
		{"negative max lag", func(c *Config) { c.MaxLag = -1 }, "max_lag"},
		{"nan threshold", func(c *Config) { c.Threshold = math.NaN() }, "threshold"},
		{"zero iterations", func(c *Config) { c.MaxIterations = 0 }, "max_iterations"},
		{"alpha too large", func(c *Config) { c.Alpha = 1.5 }, "alpha"},
		{"zero step", func(c *Config) { c.Step = 0 }, "step"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			var perr *timeseries.InvalidParameterError
			if !errors.As(err, &perr) {
				t.Fatalf("expected InvalidParameterError, got %T", err)
			}
			if perr.Name != tt.param {
				t.Errorf("expected parameter %s, got %s", tt.param, perr.Name)
			}
		})
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("quick")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Window != 5 {
		t.Errorf("expected window 5, got %d", cfg.Window)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("preset should validate: %v", err)
	}

	// Mutating the returned config must not poison the preset table.
	cfg.Window = 999
	if Presets["quick"].Window != 5 {
		t.Error("preset table was mutated through GetPreset result")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	names := ListPresets()
	if len(names) == 0 {
		t.Fatal("expected presets")
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Errorf("presets not sorted: %v", names)
		}
	}
}

func TestAllPresetsValidate(t *testing.T) {
	for name := range Presets {
		if err := GetPreset(name).Validate(); err != nil {
			t.Errorf("preset %s invalid: %v", name, err)
		}
	}
}
