package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"filestitch/pkg/axis"
	"filestitch/pkg/pattern"
)

// TestDefaultConfig verifies the default values
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Pattern.StartDelimiter != "<" || cfg.Pattern.EndDelimiter != ">" {
		t.Errorf("Expected < > delimiters, got %q %q", cfg.Pattern.StartDelimiter, cfg.Pattern.EndDelimiter)
	}
	if cfg.Stitcher.PoolSize != 128 {
		t.Errorf("Expected pool size 128, got %d", cfg.Stitcher.PoolSize)
	}
	if !cfg.Stitcher.OrderCertain || cfg.Stitcher.PatternIDs {
		t.Errorf("Expected orderCertain=true patternIds=false")
	}
	if cfg.Memo.Enabled || cfg.Memo.MinElapsedMs != 100 {
		t.Errorf("Expected memo disabled with 100ms threshold, got %v %d", cfg.Memo.Enabled, cfg.Memo.MinElapsedMs)
	}
	if len(cfg.Axis.ZTokens) == 0 || cfg.Axis.TTokens[0] != "t" {
		t.Errorf("Expected the built-in vocabulary, got %v %v", cfg.Axis.ZTokens, cfg.Axis.TTokens)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected default config to validate, got %v", err)
	}
}

// TestLoadMissingFile verifies that a missing file yields defaults
func TestLoadMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "none.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Stitcher.PoolSize != 128 {
		t.Errorf("Expected defaults, got pool size %d", cfg.Stitcher.PoolSize)
	}
}

// TestSaveAndLoad verifies a round trip through YAML
func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "filestitch.yaml")
	cfg := DefaultConfig()
	cfg.Pattern.StartDelimiter = "{"
	cfg.Pattern.EndDelimiter = "}"
	cfg.Stitcher.PoolSize = 4
	cfg.Axis.FillOrder = []string{"C", "Z"}
	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if loaded.Pattern.StartDelimiter != "{" || loaded.Stitcher.PoolSize != 4 {
		t.Errorf("Expected saved values, got %q %d", loaded.Pattern.StartDelimiter, loaded.Stitcher.PoolSize)
	}
	fill, err := loaded.FillOrder()
	if err != nil || len(fill) != 2 || fill[0] != axis.C || fill[1] != axis.Z {
		t.Errorf("Expected fill order [C Z], got %v (%v)", fill, err)
	}

	p := pattern.Parse("img_{1-3}.tif", loaded.PatternOptions()...)
	if len(p.Files()) != 3 {
		t.Errorf("Expected configured delimiters to parse, got %v", p.Files())
	}
	if len(loaded.StitcherOptions()) == 0 || len(loaded.MemoOptions()) != 1 {
		t.Errorf("Expected options to be derived")
	}
}

// TestPartialFile verifies that unset keys keep their defaults
func TestPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	if err := os.WriteFile(path, []byte("stitcher:\n  orderCertain: false\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Stitcher.OrderCertain || cfg.Stitcher.PoolSize != 128 {
		t.Errorf("Expected orderCertain=false with default pool, got %v %d",
			cfg.Stitcher.OrderCertain, cfg.Stitcher.PoolSize)
	}
}

// TestValidate verifies rejected values
func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"empty delimiter": func(c *Config) { c.Pattern.EndDelimiter = "" },
		"same delimiters": func(c *Config) { c.Pattern.EndDelimiter = "<" },
		"pool size":       func(c *Config) { c.Stitcher.PoolSize = 0 },
		"fill series":     func(c *Config) { c.Axis.FillOrder = []string{"S"} },
		"fill repeat":     func(c *Config) { c.Axis.FillOrder = []string{"Z", "z"} },
		"fill unknown":    func(c *Config) { c.Axis.FillOrder = []string{"Q"} },
		"format":          func(c *Config) { c.Output.Format = "xml" },
		"min elapsed":     func(c *Config) { c.Memo.MinElapsedMs = -1 },
	}
	for name, mutate := range cases {
		cfg := DefaultConfig()
		mutate(cfg)
		if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
			t.Errorf("%s: expected ErrInvalid, got %v", name, err)
		}
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("stitcher:\n  poolSize: -3\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); !errors.Is(err, ErrInvalid) {
		t.Errorf("Expected LoadConfig to validate, got %v", err)
	}
}

// TestCreateDefaultConfigFile verifies the default file is loadable
func TestCreateDefaultConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "default.yaml")
	if err := CreateDefaultConfigFile(path); err != nil {
		t.Fatalf("CreateDefaultConfigFile failed: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Output.Format != "text" {
		t.Errorf("Expected text format, got %q", cfg.Output.Format)
	}
}

// TestUpperCaseTokens verifies that tokens written in upper case still match
func TestUpperCaseTokens(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Axis.CTokens = append(cfg.Axis.CTokens, "DYE")
	fill, err := cfg.FillOrder()
	if err != nil {
		t.Fatal(err)
	}
	g, err := axis.New(pattern.Parse("dye<1-2>_z<1-3>.tif"), "XYZCT", 1, 1, 1, true,
		axis.WithTokens(cfg.Tokens()), axis.WithFillOrder(fill...))
	if err != nil {
		t.Fatalf("axis.New failed: %v", err)
	}
	types := g.AxisTypes()
	if len(types) != 2 || types[0] != axis.C || types[1] != axis.Z {
		t.Errorf("Expected [C Z], got %v", types)
	}
}
