// Package retime provides a high-level configuration API for the
// timing-preserving encode pipeline. Most callers build a Config with
// the fluent ConfigBuilder and hand the result to the orchestrator.
package retime

import (
	"fmt"

	"github.com/user/retime/pkg/orchestrator"
	"github.com/user/retime/pkg/ports"
)

// Config holds the user-facing encode settings. Zero values are not
// usable directly; use NewConfigBuilder to get sensible defaults.
type Config struct {
	// Frame geometry and rate.
	Width  int
	Height int
	FPSNum int
	FPSDen int

	// Rate control. Bitrate > 0 switches from constant quality to
	// bitrate mode.
	Quality float64
	Bitrate int

	// Codec selection and encoder tuning.
	Codec   string
	Profile string
	Preset  string

	// Keyframe cadence in seconds of presentation time.
	GOPSeconds int

	// Chapter markers carried through to the container.
	ChapterMarkers bool

	// ReorderDelay overrides the backend-reported delay when >= 0.
	ReorderDelay int

	// TwoPass enables an analysis pass before the final encode.
	TwoPass bool

	// Options are passed through to the backend verbatim.
	Options map[string]string
}

// ConfigBuilder assembles a Config step by step.
type ConfigBuilder struct {
	config Config
}

// NewConfigBuilder returns a builder preloaded with preview-friendly
// defaults: VP8, constant quality, single pass.
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{
		config: Config{
			Width:          640,
			Height:         480,
			FPSNum:         30000,
			FPSDen:         1001,
			Quality:        30,
			Codec:          "vp8",
			Preset:         "realtime",
			GOPSeconds:     10,
			ChapterMarkers: true,
			ReorderDelay:   -1,
		},
	}
}

// NewArchiveConfigBuilder returns a builder tuned for final output:
// VP9, slower preset, two passes.
func NewArchiveConfigBuilder() *ConfigBuilder {
	b := NewConfigBuilder()
	b.config.Codec = "vp9"
	b.config.Preset = "good"
	b.config.Quality = 24
	b.config.TwoPass = true
	return b
}

// WithResolution sets the frame dimensions.
func (b *ConfigBuilder) WithResolution(width, height int) *ConfigBuilder {
	b.config.Width = width
	b.config.Height = height
	return b
}

// WithFrameRate sets the frame rate as a rational.
func (b *ConfigBuilder) WithFrameRate(num, den int) *ConfigBuilder {
	b.config.FPSNum = num
	b.config.FPSDen = den
	return b
}

// WithQuality sets the constant-quality target and clears any bitrate.
func (b *ConfigBuilder) WithQuality(quality float64) *ConfigBuilder {
	b.config.Quality = quality
	b.config.Bitrate = 0
	return b
}

// WithBitrate switches rate control to the given bitrate in bits per second.
func (b *ConfigBuilder) WithBitrate(bps int) *ConfigBuilder {
	b.config.Bitrate = bps
	return b
}

// WithCodec selects the encoder backend by codec name.
func (b *ConfigBuilder) WithCodec(codec string) *ConfigBuilder {
	b.config.Codec = codec
	return b
}

// WithProfile sets the codec profile.
func (b *ConfigBuilder) WithProfile(profile string) *ConfigBuilder {
	b.config.Profile = profile
	return b
}

// WithPreset sets the encoder speed preset.
func (b *ConfigBuilder) WithPreset(preset string) *ConfigBuilder {
	b.config.Preset = preset
	return b
}

// WithGOPSeconds sets the keyframe interval in seconds.
func (b *ConfigBuilder) WithGOPSeconds(seconds int) *ConfigBuilder {
	b.config.GOPSeconds = seconds
	return b
}

// WithChapterMarkers toggles chapter marker propagation.
func (b *ConfigBuilder) WithChapterMarkers(enabled bool) *ConfigBuilder {
	b.config.ChapterMarkers = enabled
	return b
}

// WithReorderDelay overrides the backend-reported reorder delay.
func (b *ConfigBuilder) WithReorderDelay(delay int) *ConfigBuilder {
	b.config.ReorderDelay = delay
	return b
}

// WithTwoPass toggles the analysis pass.
func (b *ConfigBuilder) WithTwoPass(enabled bool) *ConfigBuilder {
	b.config.TwoPass = enabled
	return b
}

// WithOption adds a backend passthrough option.
func (b *ConfigBuilder) WithOption(key, value string) *ConfigBuilder {
	if b.config.Options == nil {
		b.config.Options = map[string]string{}
	}
	b.config.Options[key] = value
	return b
}

// Build validates the assembled settings and returns the Config.
func (b *ConfigBuilder) Build() (Config, error) {
	c := b.config
	if c.Width <= 0 || c.Height <= 0 {
		return Config{}, fmt.Errorf("resolution must be positive, got %dx%d", c.Width, c.Height)
	}
	if c.Width%2 != 0 || c.Height%2 != 0 {
		return Config{}, fmt.Errorf("resolution must have even dimensions for 4:2:0, got %dx%d", c.Width, c.Height)
	}
	if c.FPSNum <= 0 || c.FPSDen <= 0 {
		return Config{}, fmt.Errorf("frame rate must be positive, got %d/%d", c.FPSNum, c.FPSDen)
	}
	if c.Bitrate == 0 && (c.Quality < 0 || c.Quality > 63) {
		return Config{}, fmt.Errorf("quality must be between 0 and 63, got %g", c.Quality)
	}
	if c.GOPSeconds <= 0 {
		return Config{}, fmt.Errorf("gop seconds must be positive, got %d", c.GOPSeconds)
	}
	return c, nil
}

// ToOrchestratorConfig maps the facade settings onto the orchestrator
// configuration, writing the stream to outputPath.
func (c Config) ToOrchestratorConfig(outputPath string) orchestrator.Config {
	oc := orchestrator.DefaultConfig()
	oc.OutputPath = outputPath
	oc.Width = c.Width
	oc.Height = c.Height
	oc.PixFmt = ports.PixelFormatI420
	oc.FPSNum = c.FPSNum
	oc.FPSDen = c.FPSDen
	oc.Quality = c.Quality
	oc.Bitrate = c.Bitrate
	oc.Codec = c.Codec
	oc.Profile = c.Profile
	oc.Preset = c.Preset
	oc.GOPSeconds = c.GOPSeconds
	oc.ChapterMarkers = c.ChapterMarkers
	oc.ReorderDelayOverride = c.ReorderDelay
	oc.TwoPass = c.TwoPass
	oc.Options = c.Options
	return oc
}
