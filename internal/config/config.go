// Package config provides centralized configuration for gitgraph.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kurobon/gitgraph/internal/git"
	"github.com/kurobon/gitgraph/internal/graph"
	"github.com/kurobon/gitgraph/internal/logging"
)

// Environment variables read by Load.
const (
	EnvConfig   = "GITGRAPH_CONFIG"
	EnvBackend  = "GITGRAPH_BACKEND"
	EnvLogLevel = "GITGRAPH_LOG_LEVEL"
)

var ErrInvalid = errors.New("invalid configuration")

// Config holds application-wide configuration.
type Config struct {
	// Backend is the history source, "gogit" or "exec".
	Backend          string `yaml:"backend"`
	All              bool   `yaml:"all"`
	Abbrev           int    `yaml:"abbrev"`
	MaxCommits       int    `yaml:"maxCommits"`
	IgnoreWhitespace bool   `yaml:"ignoreWhitespace"`
	RenameThreshold  int    `yaml:"renameThreshold"`

	// Palette lists the 256-color indexes cycled through for graph threads.
	Palette     []int `yaml:"palette"`
	AuthorWidth int   `yaml:"authorWidth"`

	LogLevel  string `yaml:"logLevel"`
	LogFormat string `yaml:"logFormat"`

	// Debounce is how long file changes must settle before --follow redraws.
	Debounce time.Duration `yaml:"debounce"`
	// Addr is the listen address of `gitgraph serve`.
	Addr string `yaml:"addr"`
}

// Default returns the built-in configuration.
func Default() *Config {
	opts := git.DefaultOptions()
	palette := make([]int, 0, len(graph.DefaultPalette))
	for _, c := range graph.DefaultPalette {
		palette = append(palette, int(c))
	}
	return &Config{
		Backend:         git.BackendGoGit,
		All:             opts.All,
		Abbrev:          opts.Abbrev,
		RenameThreshold: opts.RenameThreshold,
		Palette:         palette,
		AuthorWidth:     20,
		LogLevel:        "warn",
		LogFormat:       "text",
		Debounce:        200 * time.Millisecond,
		Addr:            "127.0.0.1:7420",
	}
}

// Load returns the defaults overlaid by the YAML file at path (or at
// $GITGRAPH_CONFIG when path is empty) and then by the environment. A
// missing file is only an error when a path was given explicitly.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = os.Getenv(EnvConfig)
		explicit = path != ""
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		case explicit || !errors.Is(err, os.ErrNotExist):
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if v := strings.TrimSpace(os.Getenv(EnvBackend)); v != "" {
		cfg.Backend = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.LogLevel = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first setting that can't be used.
func (c *Config) Validate() error {
	switch c.Backend {
	case git.BackendGoGit, git.BackendExec:
	default:
		return fmt.Errorf("%w: backend %q: %w", ErrInvalid, c.Backend, git.ErrUnknownBackend)
	}
	if c.Abbrev <= 0 {
		return fmt.Errorf("%w: abbrev must be positive, got %d", ErrInvalid, c.Abbrev)
	}
	if c.MaxCommits < 0 {
		return fmt.Errorf("%w: maxCommits must not be negative, got %d", ErrInvalid, c.MaxCommits)
	}
	if c.RenameThreshold < 0 || c.RenameThreshold > 100 {
		return fmt.Errorf("%w: renameThreshold must be within 0..100, got %d", ErrInvalid, c.RenameThreshold)
	}
	if len(c.Palette) == 0 {
		return fmt.Errorf("%w: palette is empty", ErrInvalid)
	}
	for _, p := range c.Palette {
		if p < 0 || p > 255 {
			return fmt.Errorf("%w: palette color %d is outside 0..255", ErrInvalid, p)
		}
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: log format %q", ErrInvalid, c.LogFormat)
	}
	return nil
}

// Options returns the history source options.
func (c *Config) Options() git.Options {
	return git.Options{
		All:              c.All,
		Abbrev:           c.Abbrev,
		MaxCommits:       c.MaxCommits,
		IgnoreWhitespace: c.IgnoreWhitespace,
		RenameThreshold:  c.RenameThreshold,
	}
}

// ColorPalette returns the palette as graph color keys.
func (c *Config) ColorPalette() []graph.ColorKey {
	out := make([]graph.ColorKey, 0, len(c.Palette))
	for _, p := range c.Palette {
		out = append(out, graph.ColorKey(p))
	}
	return out
}
