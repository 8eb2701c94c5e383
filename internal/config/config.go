package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dirsnap/dirsnap/internal/hasher"
	"github.com/dirsnap/dirsnap/internal/walker"
)

// Config represents one dirsnap run: what to index, where the snapshot
// lives, and what (if anything) to mirror.
type Config struct {
	Root           string   `yaml:"root"`
	StateFile      string   `yaml:"state_file"`
	Target         string   `yaml:"target"`
	Excludes       []string `yaml:"excludes"`
	Algorithm      string   `yaml:"algorithm"`
	NoWrite        bool     `yaml:"no_write"`
	FollowSymlinks bool     `yaml:"follow_symlinks"`
}

// Load reads and parses a configuration file. The result is not validated
// yet: callers merge command-line overrides on top and then call Finalize.
func Load(path string) (*Config, error) {
	// Expand environment variables in path
	path = os.ExpandEnv(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.expandEnv()

	return &cfg, nil
}

// Finalize applies defaults and validates the merged configuration.
func (c *Config) Finalize() error {
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// expandEnv expands environment variables in all string fields
func (c *Config) expandEnv() {
	c.Root = os.ExpandEnv(c.Root)
	c.StateFile = os.ExpandEnv(c.StateFile)
	c.Target = os.ExpandEnv(c.Target)
	for i, pat := range c.Excludes {
		c.Excludes[i] = os.ExpandEnv(pat)
	}
}

// applyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) applyDefaults() {
	if c.Algorithm == "" {
		c.Algorithm = hasher.Blake3.String()
	}
}

// Validate checks the configuration for errors
func (c *Config) Validate() error {
	if c.Root == "" {
		return fmt.Errorf("root directory is required")
	}
	if c.StateFile == "" {
		return fmt.Errorf("state file is required")
	}

	if _, err := hasher.Parse(c.Algorithm); err != nil {
		return err
	}

	// Surface bad glob patterns before any work starts rather than from
	// the middle of a walk.
	if _, err := walker.ExpandPatterns(c.Excludes); err != nil {
		return err
	}

	return nil
}

// Algo returns the parsed hash algorithm. Only meaningful after Finalize.
func (c *Config) Algo() hasher.Algorithm {
	algo, err := hasher.Parse(c.Algorithm)
	if err != nil {
		return hasher.Blake3
	}
	return algo
}
