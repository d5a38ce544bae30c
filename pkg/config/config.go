// Package config provides configuration loading and management for filestitch.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"filestitch/pkg/axis"
	"filestitch/pkg/memo"
	"filestitch/pkg/pattern"
	"filestitch/pkg/stitcher"
)

// ErrInvalid reports a configuration value that cannot be used.
var ErrInvalid = errors.New("invalid configuration")

// Config represents the application configuration loaded from YAML
type Config struct {
	// Pattern syntax
	Pattern struct {
		// StartDelimiter opens a block
		StartDelimiter string `yaml:"startDelimiter"`

		// EndDelimiter closes a block
		EndDelimiter string `yaml:"endDelimiter"`
	} `yaml:"pattern"`

	// Axis guessing parameters
	Axis struct {
		// ZTokens, TTokens, CTokens and STokens are the labels that name each axis
		ZTokens []string `yaml:"zTokens"`
		TTokens []string `yaml:"tTokens"`
		CTokens []string `yaml:"cTokens"`
		STokens []string `yaml:"sTokens"`

		// FillOrder is the priority in which unlabelled blocks claim an axis
		FillOrder []string `yaml:"fillOrder"`
	} `yaml:"axis"`

	// Stitcher parameters
	Stitcher struct {
		// PoolSize bounds the number of files held open at once
		PoolSize int `yaml:"poolSize"`

		// OrderCertain trusts the files' dimension order over block labels
		OrderCertain bool `yaml:"orderCertain"`

		// PatternIDs stops a plain file name from being widened to its pattern
		PatternIDs bool `yaml:"patternIds"`
	} `yaml:"stitcher"`

	// Memo cache parameters
	Memo struct {
		// Enabled turns on the sidecar cache
		Enabled bool `yaml:"enabled"`

		// MinElapsedMs is the shortest open, in milliseconds, worth caching
		MinElapsedMs int `yaml:"minElapsedMs"`
	} `yaml:"memo"`

	// Output parameters
	Output struct {
		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`

		// Format selects how command results are printed
		Format string `yaml:"format"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Pattern.StartDelimiter = pattern.BlockStart
	cfg.Pattern.EndDelimiter = pattern.BlockEnd

	tk := axis.DefaultTokens()
	cfg.Axis.ZTokens = tk.Z
	cfg.Axis.TTokens = tk.T
	cfg.Axis.CTokens = tk.C
	cfg.Axis.STokens = tk.S
	cfg.Axis.FillOrder = []string{"Z", "T", "C"}

	cfg.Stitcher.PoolSize = stitcher.DefaultPoolSize
	cfg.Stitcher.OrderCertain = true
	cfg.Stitcher.PatternIDs = false

	cfg.Memo.Enabled = false
	cfg.Memo.MinElapsedMs = int(memo.DefaultMinElapsed / time.Millisecond)

	cfg.Output.Verbose = false
	cfg.Output.Format = "text"

	return cfg
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}

// Validate checks values that would otherwise fail deep inside a reader.
func (c *Config) Validate() error {
	if c.Pattern.StartDelimiter == "" || c.Pattern.EndDelimiter == "" {
		return fmt.Errorf("%w: block delimiters must be non-empty", ErrInvalid)
	}
	if c.Pattern.StartDelimiter == c.Pattern.EndDelimiter {
		return fmt.Errorf("%w: block delimiters must differ", ErrInvalid)
	}
	if c.Stitcher.PoolSize < 1 {
		return fmt.Errorf("%w: poolSize must be at least 1, got %d", ErrInvalid, c.Stitcher.PoolSize)
	}
	if c.Memo.MinElapsedMs < 0 {
		return fmt.Errorf("%w: minElapsedMs must be non-negative", ErrInvalid)
	}
	if _, err := c.FillOrder(); err != nil {
		return err
	}
	switch c.Output.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: output format %q (must be text or json)", ErrInvalid, c.Output.Format)
	}
	return nil
}

// Tokens returns the configured axis vocabulary.
func (c *Config) Tokens() axis.Tokens {
	return axis.Tokens{
		Z: c.Axis.ZTokens,
		T: c.Axis.TTokens,
		C: c.Axis.CTokens,
		S: c.Axis.STokens,
	}
}

// FillOrder parses the configured fill order.
func (c *Config) FillOrder() ([]axis.Type, error) {
	out := make([]axis.Type, 0, len(c.Axis.FillOrder))
	seen := make(map[axis.Type]bool)
	for _, s := range c.Axis.FillOrder {
		a, ok := axis.ParseType(s)
		if !ok || a == axis.S || seen[a] {
			return nil, fmt.Errorf("%w: fill order entry %q", ErrInvalid, s)
		}
		seen[a] = true
		out = append(out, a)
	}
	return out, nil
}

// PatternOptions returns the parser options for the configured delimiters.
func (c *Config) PatternOptions() []pattern.Option {
	return []pattern.Option{pattern.WithDelimiters(c.Pattern.StartDelimiter, c.Pattern.EndDelimiter)}
}

// StitcherOptions translates the configuration into stitcher options. The
// configuration must have passed Validate.
func (c *Config) StitcherOptions() []stitcher.Option {
	fill, _ := c.FillOrder()
	return []stitcher.Option{
		stitcher.WithPoolSize(c.Stitcher.PoolSize),
		stitcher.WithOrderCertain(c.Stitcher.OrderCertain),
		stitcher.WithPatternIDs(c.Stitcher.PatternIDs),
		stitcher.WithPatternOptions(c.PatternOptions()...),
		stitcher.WithAxisOptions(axis.WithTokens(c.Tokens()), axis.WithFillOrder(fill...)),
	}
}

// MemoOptions translates the memo section into cache options.
func (c *Config) MemoOptions() []memo.Option {
	return []memo.Option{memo.WithMinElapsed(time.Duration(c.Memo.MinElapsedMs) * time.Millisecond)}
}
