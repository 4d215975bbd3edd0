// Package config loads dirhop's YAML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"dirhop/internal/scanner"
)

// Config holds user-tunable settings.
type Config struct {
	// Roots are the directories dirhop is allowed to scan.
	Roots []string `yaml:"roots"`

	// MaxFolders caps a scan. Clamped to 100–50000.
	MaxFolders int `yaml:"max_folders"`

	// MaxDepth is how deep below a root the scan descends. Clamped to 1–20.
	MaxDepth int `yaml:"max_depth"`

	// IgnoredFolders are leaf names skipped by exact match.
	IgnoredFolders []string `yaml:"ignored_folders"`

	// IgnoreDotFolders skips directories whose name starts with a dot.
	IgnoreDotFolders *bool `yaml:"ignore_dot_folders"`
}

const (
	defaultMaxFolders = 10000
	defaultMaxDepth   = 5

	minMaxFolders = 100
	maxMaxFolders = 50000
	minMaxDepth   = 1
	maxMaxDepth   = 20
)

// Default returns the built-in configuration.
func Default() *Config {
	ignoreDot := true
	return &Config{
		MaxFolders:       defaultMaxFolders,
		MaxDepth:         defaultMaxDepth,
		IgnoredFolders:   append([]string(nil), scanner.DefaultIgnoredNames...),
		IgnoreDotFolders: &ignoreDot,
	}
}

// DefaultDir is where dirhop keeps its config and cache (~/.dirhop).
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".dirhop"
	}
	return filepath.Join(home, ".dirhop")
}

// Load reads the config at path. A missing file yields the defaults; a
// malformed one is an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.clamp()
	return cfg, nil
}

func (c *Config) clamp() {
	if c.MaxFolders < minMaxFolders {
		c.MaxFolders = minMaxFolders
	}
	if c.MaxFolders > maxMaxFolders {
		c.MaxFolders = maxMaxFolders
	}
	if c.MaxDepth < minMaxDepth {
		c.MaxDepth = minMaxDepth
	}
	if c.MaxDepth > maxMaxDepth {
		c.MaxDepth = maxMaxDepth
	}
	if c.IgnoredFolders == nil {
		c.IgnoredFolders = append([]string(nil), scanner.DefaultIgnoredNames...)
	}
	if c.IgnoreDotFolders == nil {
		ignoreDot := true
		c.IgnoreDotFolders = &ignoreDot
	}
}

// ScanOptions translates the config into scanner bounds.
func (c *Config) ScanOptions() scanner.Options {
	ignored := make(map[string]bool, len(c.IgnoredFolders))
	for _, name := range c.IgnoredFolders {
		ignored[name] = true
	}
	ignoreDot := true
	if c.IgnoreDotFolders != nil {
		ignoreDot = *c.IgnoreDotFolders
	}
	return scanner.Options{
		MaxFolders:       c.MaxFolders,
		MaxDepth:         c.MaxDepth,
		IgnoredNames:     ignored,
		IgnoreDotFolders: ignoreDot,
	}
}

// ResolveRoots picks the effective root set: explicit args win over the
// configured roots. Paths are made absolute; ~ is expanded. An empty
// result means no workspace is open.
func (c *Config) ResolveRoots(args []string) ([]string, error) {
	candidates := args
	if len(candidates) == 0 {
		candidates = c.Roots
	}

	var roots []string
	for _, r := range candidates {
		if r == "~" || len(r) > 1 && r[0] == '~' && (r[1] == '/' || r[1] == '\\') {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, err
			}
			r = filepath.Join(home, r[1:])
		}
		abs, err := filepath.Abs(r)
		if err != nil {
			return nil, fmt.Errorf("resolve root %s: %w", r, err)
		}
		roots = append(roots, abs)
	}
	return roots, nil
}
