// Package config handles configuration loading and validation for folio.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"

	"github.com/foliops/folio/internal/engine"
)

// defaultHighlights is the built-in highlight palette, overridable from
// the config file.
var defaultHighlights = []HighlightColor{
	{Name: "yellow", Hex: "#ffff00"},
	{Name: "green", Hex: "#00ff00"},
	{Name: "red", Hex: "#ff0000"},
	{Name: "blue", Hex: "#0000ff"},
}

// Config holds the application configuration.
type Config struct {
	Theme      string           `yaml:"theme"`
	ZoomStep   float64          `yaml:"zoom_step"`
	Render     RenderConfig     `yaml:"render"`
	Fetch      FetchConfig      `yaml:"fetch"`
	Highlights []HighlightColor `yaml:"highlights"`
	StateDir   string           `yaml:"-"` // set by caller, not from config file
}

// RenderConfig tunes page rasterization.
type RenderConfig struct {
	// Density multiplies the pixels rendered per page unit. Raise it on
	// terminals with small cells for sharper downscaling.
	Density float64 `yaml:"density"`
}

// FetchConfig tunes remote document downloads.
type FetchConfig struct {
	MaxBytes int64 `yaml:"max_bytes"`
}

// HighlightColor is one entry of the highlight palette.
type HighlightColor struct {
	Name string `yaml:"name"`
	Hex  string `yaml:"color"`
}

// RGB parses the entry into engine color components.
func (h HighlightColor) RGB() (engine.RGB, error) {
	c, err := colorful.Hex(h.Hex)
	if err != nil {
		return engine.RGB{}, fmt.Errorf("highlight %q: %w", h.Name, err)
	}
	return engine.RGB{R: c.R, G: c.G, B: c.B}, nil
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Theme:    "tokyo-night",
		ZoomStep: 0.2,
		Render: RenderConfig{
			Density: 1.0,
		},
		Fetch: FetchConfig{
			MaxBytes: 128 << 20,
		},
		Highlights: defaultHighlights,
	}
}

// Load reads configuration from the given path and sets the state
// directory. If configPath is empty or doesn't exist, returns defaults
// with the provided stateDir.
func Load(configPath, stateDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.StateDir = stateDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set stateDir since Unmarshal may have cleared it
			cfg.StateDir = stateDir
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Theme == "" {
		c.Theme = defaults.Theme
	}
	if c.ZoomStep == 0 {
		c.ZoomStep = defaults.ZoomStep
	}
	if c.Render.Density == 0 {
		c.Render.Density = defaults.Render.Density
	}
	if c.Fetch.MaxBytes == 0 {
		c.Fetch.MaxBytes = defaults.Fetch.MaxBytes
	}
	if len(c.Highlights) == 0 {
		c.Highlights = defaults.Highlights
	}
}

// Validate checks that the configuration is structurally valid.
func (c *Config) Validate() error {
	if c.StateDir == "" {
		return fmt.Errorf("state directory cannot be empty")
	}

	if c.ZoomStep <= 0 || c.ZoomStep > 1 {
		return fmt.Errorf("zoom_step must be in (0, 1], got %g", c.ZoomStep)
	}

	if c.Render.Density <= 0 || c.Render.Density > 4 {
		return fmt.Errorf("render.density must be in (0, 4], got %g", c.Render.Density)
	}

	if c.Fetch.MaxBytes < 1 {
		return fmt.Errorf("fetch.max_bytes must be positive")
	}

	if len(c.Highlights) == 0 {
		return fmt.Errorf("highlight palette cannot be empty")
	}
	seen := make(map[string]bool, len(c.Highlights))
	for i, h := range c.Highlights {
		if h.Name == "" {
			return fmt.Errorf("highlights[%d]: name is required", i)
		}
		if seen[h.Name] {
			return fmt.Errorf("duplicate highlight name %q", h.Name)
		}
		seen[h.Name] = true
		if _, err := h.RGB(); err != nil {
			return err
		}
	}

	return nil
}

// HighlightByName looks up a palette entry.
func (c *Config) HighlightByName(name string) (HighlightColor, bool) {
	for _, h := range c.Highlights {
		if h.Name == name {
			return h, true
		}
	}
	return HighlightColor{}, false
}

// LogFile returns the path of the session log.
func (c *Config) LogFile() string {
	return filepath.Join(c.StateDir, "folio.log")
}

// CrashFile returns the path crash reports are written to.
func (c *Config) CrashFile() string {
	return filepath.Join(c.StateDir, "crash.log")
}
