package session

import (
	"fmt"
	"strings"

	"github.com/user/retime/pkg/ports"
	"github.com/user/retime/pkg/timing"
)

// Empirically tuned rate-control constants, preserved as named values
// rather than derived from a formula.
const (
	// DefaultGOPSeconds sets the keyframe interval to ten seconds of
	// source video: gop size = round(fps) * DefaultGOPSeconds.
	DefaultGOPSeconds = 10

	// IntraQualityOffset and BFrameQualityOffset bias the per-frame-type
	// quantizer around the configured quality: intra frames slightly
	// better, bidirectional frames slightly worse.
	IntraQualityOffset  = -2.0
	BFrameQualityOffset = 2.0

	// MaxQuantizer clamps offset quality values.
	MaxQuantizer = 51.0
)

// DefaultTimescale is the tick rate of all timestamps, 90 kHz.
const DefaultTimescale = 90000

// Config is the session-open configuration surface.
type Config struct {
	Width  int
	Height int
	PixFmt ports.PixelFormat

	FPSNum    int
	FPSDen    int
	Timescale int

	// Bitrate in kbps selects average-bitrate mode when positive;
	// otherwise Quality selects constant-quality mode.
	Bitrate int
	Quality float64

	// QualityOffsetIntra and QualityOffsetB adjust Quality per frame type
	// before it reaches the backend.
	QualityOffsetIntra float64
	QualityOffsetB     float64

	Profile string
	Level   string
	Preset  string

	Pass ports.Pass

	// ReorderDelayOverride replaces the backend-reported reorder delay
	// when non-negative.
	ReorderDelayOverride int

	// RingCapacity is the timing ring size, a power of two at least twice
	// the reorder delay.
	RingCapacity int

	// GOPSeconds is the keyframe interval in seconds of source video.
	GOPSeconds int

	// ChapterMarkers enables chapter tracking for frames submitted with
	// ChapterStart set.
	ChapterMarkers bool

	// Options are backend-specific knobs passed through untranslated.
	Options map[string]string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		PixFmt:               ports.PixelFormatI420,
		FPSNum:               30,
		FPSDen:               1,
		Timescale:            DefaultTimescale,
		Quality:              30,
		QualityOffsetIntra:   IntraQualityOffset,
		QualityOffsetB:       BFrameQualityOffset,
		Pass:                 ports.PassNone,
		ReorderDelayOverride: -1,
		RingCapacity:         timing.DefaultCapacity,
		GOPSeconds:           DefaultGOPSeconds,
		ChapterMarkers:       true,
	}
}

// validate checks the configuration against the backend's capability
// tables and the ring capacity invariant, returning the resolved reorder
// delay.
func validate(cfg Config, caps ports.BackendCaps) (delay int, err error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return 0, fmt.Errorf("%w: resolution %dx%d", ErrConfig, cfg.Width, cfg.Height)
	}
	if cfg.FPSNum <= 0 || cfg.FPSDen <= 0 {
		return 0, fmt.Errorf("%w: frame rate %d/%d", ErrConfig, cfg.FPSNum, cfg.FPSDen)
	}
	if cfg.Timescale <= 0 {
		return 0, fmt.Errorf("%w: timescale %d", ErrConfig, cfg.Timescale)
	}
	if cfg.Bitrate < 0 {
		return 0, fmt.Errorf("%w: bitrate %d", ErrConfig, cfg.Bitrate)
	}
	if cfg.Bitrate == 0 && cfg.Quality < 0 {
		return 0, fmt.Errorf("%w: neither bitrate nor quality set", ErrConfig)
	}

	if len(caps.PixelFormats) > 0 && !supportsPixFmt(caps.PixelFormats, cfg.PixFmt) {
		return 0, fmt.Errorf("%w: pixel format %s not supported by %s", ErrConfig, cfg.PixFmt, caps.Name)
	}
	if !supportsName(caps.Profiles, cfg.Profile) {
		return 0, fmt.Errorf("%w: profile %q not in %v", ErrConfig, cfg.Profile, caps.Profiles)
	}
	if !supportsName(caps.Levels, cfg.Level) {
		return 0, fmt.Errorf("%w: level %q not in %v", ErrConfig, cfg.Level, caps.Levels)
	}
	if !supportsName(caps.Presets, cfg.Preset) {
		return 0, fmt.Errorf("%w: preset %q not in %v", ErrConfig, cfg.Preset, caps.Presets)
	}

	delay = caps.ReorderDelay
	if cfg.ReorderDelayOverride >= 0 {
		delay = cfg.ReorderDelayOverride
	}

	capacity := cfg.RingCapacity
	if capacity == 0 {
		capacity = timing.DefaultCapacity
	}
	// A timing record must survive until the packet referencing it is
	// drained, so the ring needs headroom of twice the reorder depth.
	if capacity < 2*delay {
		return 0, fmt.Errorf("%w: ring capacity %d < 2x reorder delay %d", ErrConfig, capacity, delay)
	}

	return delay, nil
}

// supportsName reports membership in a capability name table. An empty
// table means the backend accepts anything; an empty value selects the
// backend default and is always allowed.
func supportsName(table []string, name string) bool {
	if len(table) == 0 || name == "" {
		return true
	}
	for _, t := range table {
		if strings.EqualFold(t, name) {
			return true
		}
	}
	return false
}

func supportsPixFmt(table []ports.PixelFormat, f ports.PixelFormat) bool {
	for _, t := range table {
		if t == f {
			return true
		}
	}
	return false
}

// reduceRational divides out the greatest common divisor, the usual
// framerate cleanup before handing it to a backend.
func reduceRational(num, den int) (int, int) {
	a, b := num, den
	for b != 0 {
		a, b = b, a%b
	}
	if a == 0 {
		return num, den
	}
	return num / a, den / a
}

// clampQuality applies a per-frame-type offset within [0, MaxQuantizer].
func clampQuality(q, offset float64) float64 {
	q += offset
	if q < 0 {
		q = 0
	}
	if q > MaxQuantizer {
		q = MaxQuantizer
	}
	return q
}
