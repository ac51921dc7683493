package retime

import (
	"testing"
)

func TestConfigBuilder_Defaults(t *testing.T) {
	cfg, err := NewConfigBuilder().Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if cfg.Width != 640 || cfg.Height != 480 {
		t.Errorf("resolution = %dx%d, want 640x480", cfg.Width, cfg.Height)
	}
	if cfg.Codec != "vp8" {
		t.Errorf("Codec = %q, want vp8", cfg.Codec)
	}
	if cfg.TwoPass {
		t.Error("TwoPass = true, want false for preview defaults")
	}
	if cfg.ReorderDelay != -1 {
		t.Errorf("ReorderDelay = %d, want -1", cfg.ReorderDelay)
	}
}

func TestConfigBuilder_ArchiveDefaults(t *testing.T) {
	cfg, err := NewArchiveConfigBuilder().Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if cfg.Codec != "vp9" {
		t.Errorf("Codec = %q, want vp9", cfg.Codec)
	}
	if cfg.Preset != "good" {
		t.Errorf("Preset = %q, want good", cfg.Preset)
	}
	if !cfg.TwoPass {
		t.Error("TwoPass = false, want true for archive defaults")
	}
}

func TestConfigBuilder_Chaining(t *testing.T) {
	cfg, err := NewConfigBuilder().
		WithResolution(1280, 720).
		WithFrameRate(25, 1).
		WithBitrate(2_000_000).
		WithPreset("good").
		WithGOPSeconds(5).
		WithChapterMarkers(false).
		WithReorderDelay(4).
		WithOption("row-mt", "1").
		Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if cfg.Width != 1280 || cfg.Height != 720 {
		t.Errorf("resolution = %dx%d, want 1280x720", cfg.Width, cfg.Height)
	}
	if cfg.FPSNum != 25 || cfg.FPSDen != 1 {
		t.Errorf("frame rate = %d/%d, want 25/1", cfg.FPSNum, cfg.FPSDen)
	}
	if cfg.Bitrate != 2_000_000 {
		t.Errorf("Bitrate = %d, want 2000000", cfg.Bitrate)
	}
	if cfg.ChapterMarkers {
		t.Error("ChapterMarkers = true, want false")
	}
	if cfg.ReorderDelay != 4 {
		t.Errorf("ReorderDelay = %d, want 4", cfg.ReorderDelay)
	}
	if cfg.Options["row-mt"] != "1" {
		t.Errorf("Options[row-mt] = %q, want 1", cfg.Options["row-mt"])
	}
}

func TestConfigBuilder_WithQualityClearsBitrate(t *testing.T) {
	cfg, err := NewConfigBuilder().WithBitrate(500_000).WithQuality(20).Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if cfg.Bitrate != 0 {
		t.Errorf("Bitrate = %d, want 0 after WithQuality", cfg.Bitrate)
	}
	if cfg.Quality != 20 {
		t.Errorf("Quality = %g, want 20", cfg.Quality)
	}
}

func TestConfigBuilder_Validation(t *testing.T) {
	tests := []struct {
		name  string
		build func() (Config, error)
	}{
		{
			name: "odd width",
			build: func() (Config, error) {
				return NewConfigBuilder().WithResolution(641, 480).Build()
			},
		},
		{
			name: "zero height",
			build: func() (Config, error) {
				return NewConfigBuilder().WithResolution(640, 0).Build()
			},
		},
		{
			name: "negative frame rate",
			build: func() (Config, error) {
				return NewConfigBuilder().WithFrameRate(-30, 1).Build()
			},
		},
		{
			name: "quality out of range",
			build: func() (Config, error) {
				return NewConfigBuilder().WithQuality(80).Build()
			},
		},
		{
			name: "zero gop",
			build: func() (Config, error) {
				return NewConfigBuilder().WithGOPSeconds(0).Build()
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.build(); err == nil {
				t.Error("Build() error = nil, want validation error")
			}
		})
	}
}

func TestConfig_ToOrchestratorConfig(t *testing.T) {
	cfg, err := NewArchiveConfigBuilder().
		WithResolution(1920, 1080).
		WithReorderDelay(8).
		Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	oc := cfg.ToOrchestratorConfig("movie.mp4")
	if oc.OutputPath != "movie.mp4" {
		t.Errorf("OutputPath = %q, want movie.mp4", oc.OutputPath)
	}
	if oc.Width != 1920 || oc.Height != 1080 {
		t.Errorf("resolution = %dx%d, want 1920x1080", oc.Width, oc.Height)
	}
	if oc.Codec != "vp9" {
		t.Errorf("Codec = %q, want vp9", oc.Codec)
	}
	if !oc.TwoPass {
		t.Error("TwoPass = false, want true")
	}
	if oc.ReorderDelayOverride != 8 {
		t.Errorf("ReorderDelayOverride = %d, want 8", oc.ReorderDelayOverride)
	}
}
