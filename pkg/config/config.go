// Package config provides configuration loading and management.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/user/retime/pkg/orchestrator"
	"github.com/user/retime/pkg/ports"
)

// Config represents the full configuration for retime.
type Config struct {
	// Input/Output
	OutputPath string `yaml:"output"`
	StatsPath  string `yaml:"stats_path"`

	// Picture
	Width       int    `yaml:"width"`
	Height      int    `yaml:"height"`
	PixelFormat string `yaml:"pixel_format"`

	// Timing
	FPSNum int `yaml:"fps_num"`
	FPSDen int `yaml:"fps_den"`

	// Rate control
	Quality float64 `yaml:"quality"`
	Bitrate int     `yaml:"bitrate"`
	TwoPass bool    `yaml:"two_pass"`

	// Encoder
	Codec        string            `yaml:"codec"`
	Profile      string            `yaml:"profile"`
	Level        string            `yaml:"level"`
	Preset       string            `yaml:"preset"`
	GOPSeconds   int               `yaml:"gop_seconds"`
	ReorderDelay int               `yaml:"reorder_delay"`
	Options      map[string]string `yaml:"options"`

	// Chapters
	ChapterMarkers bool `yaml:"chapter_markers"`
	ChapterEveryN  int  `yaml:"chapter_every_n"`

	// Synthetic source
	Frames int `yaml:"frames"`

	// Logging
	LogLevel string `yaml:"log_level"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		OutputPath:  "out.mp4",
		StatsPath:   "retime-pass.log",
		Width:       640,
		Height:      480,
		PixelFormat: "yuv420p",

		FPSNum: 30000,
		FPSDen: 1001,

		Quality: 30,

		Codec:        "vp8",
		GOPSeconds:   10,
		ReorderDelay: -1,

		ChapterMarkers: true,
		ChapterEveryN:  0,

		Frames: 90,

		LogLevel: "info",
	}
}

// LoadFromFile loads configuration from a YAML file on top of the
// defaults.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Validate rejects values no backend could accept.
func (c Config) Validate() error {
	if c.OutputPath == "" {
		return fmt.Errorf("config: output path is required")
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("config: invalid resolution %dx%d", c.Width, c.Height)
	}
	if c.FPSNum <= 0 || c.FPSDen <= 0 {
		return fmt.Errorf("config: invalid frame rate %d/%d", c.FPSNum, c.FPSDen)
	}
	if c.Frames <= 0 {
		return fmt.Errorf("config: frame count must be positive")
	}
	if _, err := c.ParsePixelFormat(); err != nil {
		return err
	}
	switch c.Codec {
	case "vp8", "vp9", "null":
	default:
		return fmt.Errorf("config: unknown codec %q", c.Codec)
	}
	if c.TwoPass && c.StatsPath == "" {
		return fmt.Errorf("config: two-pass encoding requires stats_path")
	}
	return nil
}

// ParsePixelFormat translates the yaml name into a ports.PixelFormat.
func (c Config) ParsePixelFormat() (ports.PixelFormat, error) {
	switch c.PixelFormat {
	case "", "yuv420p", "i420":
		return ports.PixelFormatI420, nil
	case "nv12":
		return ports.PixelFormatNV12, nil
	default:
		return 0, fmt.Errorf("config: unknown pixel format %q", c.PixelFormat)
	}
}

// ToOrchestratorConfig converts Config to orchestrator.Config.
func (c Config) ToOrchestratorConfig() orchestrator.Config {
	pixFmt, _ := c.ParsePixelFormat()
	return orchestrator.Config{
		OutputPath: c.OutputPath,

		Width:  c.Width,
		Height: c.Height,
		PixFmt: pixFmt,

		FPSNum: c.FPSNum,
		FPSDen: c.FPSDen,

		Quality: c.Quality,
		Bitrate: c.Bitrate,

		Codec:   c.Codec,
		Profile: c.Profile,
		Level:   c.Level,
		Preset:  c.Preset,

		GOPSeconds:     c.GOPSeconds,
		ChapterMarkers: c.ChapterMarkers,

		ReorderDelayOverride: c.ReorderDelay,
		TwoPass:              c.TwoPass,
		Options:              c.Options,
	}
}
