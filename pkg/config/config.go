// Package config provides configuration loading and management.
package config

import (
	"fmt"
	"image/color"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/user/bag2mp4/pkg/orchestrator"
	"github.com/user/bag2mp4/pkg/ports"
)

// Config represents the full configuration for bag2mp4.
type Config struct {
	// Input/Output
	BagPath    string `yaml:"bag"`
	Topic      string `yaml:"topic"`
	OutputPath string `yaml:"output"`

	// Writer
	Backend           string `yaml:"backend"`
	FFmpegPath        string `yaml:"ffmpeg_path"`
	Quality           int    `yaml:"quality"`
	FramesPerFragment int    `yaml:"frames_per_fragment"`

	// Overlay
	Overlay      bool        `yaml:"overlay"`
	OverlayTheme ThemeConfig `yaml:"overlay_theme"`

	// Logging
	LogLevel string `yaml:"log_level"`

	// Debug
	Debug           bool   `yaml:"debug"`
	DebugDir        string `yaml:"debug_dir"`
	DebugFrameEvery int    `yaml:"debug_frame_every"`

	// Summary
	SummaryPath string `yaml:"summary"`
}

// ThemeConfig represents theming options of the timestamp overlay.
type ThemeConfig struct {
	TextColor       string `yaml:"text_color"`
	BackgroundColor string `yaml:"background_color"`
	Padding         int    `yaml:"padding"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		Backend:           "auto",
		Quality:           90,
		FramesPerFragment: 10,

		OverlayTheme: ThemeConfig{
			TextColor:       "#ffffff",
			BackgroundColor: "#000000",
			Padding:         4,
		},

		LogLevel: "info",

		DebugDir:        "./debug",
		DebugFrameEvery: 10,
	}
}

// LoadFromFile loads configuration from a YAML file on top of Defaults.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, cfg.Validate()
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.Quality < 1 || c.Quality > 100 {
		return fmt.Errorf("quality must be between 1 and 100, got %d", c.Quality)
	}
	if c.FramesPerFragment < 1 {
		return fmt.Errorf("frames_per_fragment must be positive, got %d", c.FramesPerFragment)
	}
	if c.DebugFrameEvery < 1 {
		return fmt.Errorf("debug_frame_every must be positive, got %d", c.DebugFrameEvery)
	}
	for _, s := range []string{c.OverlayTheme.TextColor, c.OverlayTheme.BackgroundColor} {
		if _, ok := parseHex(s); !ok {
			return fmt.Errorf("invalid color %q (want #rrggbb)", s)
		}
	}
	return nil
}

// ParseColor parses a hex color string to color.Color.
// Invalid strings yield black.
func ParseColor(hex string) color.Color {
	c, ok := parseHex(hex)
	if !ok {
		return color.Black
	}
	return c
}

func parseHex(hex string) (color.RGBA, bool) {
	if len(hex) > 0 && hex[0] == '#' {
		hex = hex[1:]
	}
	if len(hex) != 6 {
		return color.RGBA{}, false
	}

	var rgb [3]uint8
	for i := range rgb {
		hi, ok1 := hexValue(hex[2*i])
		lo, ok2 := hexValue(hex[2*i+1])
		if !ok1 || !ok2 {
			return color.RGBA{}, false
		}
		rgb[i] = hi<<4 | lo
	}
	return color.RGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: 255}, true
}

func hexValue(c byte) (uint8, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	default:
		return 0, false
	}
}

// LabelStyle returns the overlay style.
func (c Config) LabelStyle() ports.LabelStyle {
	return ports.LabelStyle{
		TextColor:       ParseColor(c.OverlayTheme.TextColor),
		BackgroundColor: ParseColor(c.OverlayTheme.BackgroundColor),
		Padding:         c.OverlayTheme.Padding,
	}
}

// ToOrchestratorConfig converts Config to orchestrator.Config.
// The frame rate and codec are fixed.
func (c Config) ToOrchestratorConfig() orchestrator.Config {
	oc := orchestrator.DefaultConfig()
	oc.BagPath = c.BagPath
	oc.Topic = c.Topic
	oc.OutputPath = c.OutputPath
	oc.Overlay = c.Overlay
	oc.Backend = c.Backend
	return oc
}
