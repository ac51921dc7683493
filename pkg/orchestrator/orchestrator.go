// Package orchestrator coordinates encode passes into a complete run.
package orchestrator

import (
	"context"
	"fmt"

	"github.com/ideamans/go-l10n"

	"github.com/user/retime/pkg/pipeline"
	"github.com/user/retime/pkg/ports"
	"github.com/user/retime/pkg/session"
)

// Config contains all configuration for the orchestrator.
type Config struct {
	// Output
	OutputPath string

	// Picture
	Width  int
	Height int
	PixFmt ports.PixelFormat

	// Timing
	FPSNum int
	FPSDen int

	// Rate control
	Quality float64
	Bitrate int

	// Encoder selection
	Codec   string
	Profile string
	Level   string
	Preset  string

	// Structure
	GOPSeconds     int
	ChapterMarkers bool

	// ReorderDelayOverride replaces the backend-reported delay when
	// non-negative.
	ReorderDelayOverride int

	// TwoPass runs an analysis pass before the encode pass.
	TwoPass bool

	// Backend-specific options passed through untranslated.
	Options map[string]string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Width:                640,
		Height:               480,
		PixFmt:               ports.PixelFormatI420,
		FPSNum:               30,
		FPSDen:               1,
		Quality:              30,
		Codec:                "null",
		GOPSeconds:           session.DefaultGOPSeconds,
		ChapterMarkers:       true,
		ReorderDelayOverride: -1,
	}
}

// Factories builds the single-use collaborators of each pass. Source,
// Backend and Sink are consumed by one pass; StatsLog is opened per pass
// and may be nil when TwoPass is off.
type Factories struct {
	Source   func() (ports.FrameSource, error)
	Backend  func() ports.EncoderBackend
	Sink     func() ports.PacketSink
	StatsLog func() (ports.StatsLog, error)
}

// Orchestrator coordinates the execution of encode passes.
type Orchestrator struct {
	encodeStage pipeline.Stage[pipeline.EncodeInput, pipeline.EncodeResult]
	factories   Factories
	fs          ports.FileSystem
	logger      ports.Logger
}

// New creates a new Orchestrator.
func New(
	encodeStage pipeline.Stage[pipeline.EncodeInput, pipeline.EncodeResult],
	factories Factories,
	fs ports.FileSystem,
	logger ports.Logger,
) *Orchestrator {
	return &Orchestrator{
		encodeStage: encodeStage,
		factories:   factories,
		fs:          fs,
		logger:      logger,
	}
}

// Run executes the configured passes and writes the output file.
func (o *Orchestrator) Run(ctx context.Context, config Config) (RunResult, error) {
	if config.TwoPass && o.factories.StatsLog == nil {
		return RunResult{}, fmt.Errorf("two-pass run without a stats log factory")
	}

	if config.TwoPass {
		o.logger.Info(l10n.T("Running analysis pass"))
		input, err := o.buildPassInput(config, ports.PassFirst)
		if err != nil {
			return RunResult{}, err
		}
		analysis, err := o.encodeStage.Execute(ctx, input)
		if err != nil {
			o.logger.Error(l10n.F("Analysis pass failed: %s", err))
			return RunResult{}, fmt.Errorf("analysis pass: %w", err)
		}
		o.logger.Info(l10n.F("Analysis pass done: %d frames", analysis.FramesIn))
	}

	finalPass := ports.PassNone
	if config.TwoPass {
		finalPass = ports.PassSecond
	}
	o.logger.Info(l10n.T("Running encode pass"))
	input, err := o.buildPassInput(config, finalPass)
	if err != nil {
		return RunResult{}, err
	}
	encoded, err := o.encodeStage.Execute(ctx, input)
	if err != nil {
		o.logger.Error(l10n.F("Encode pass failed: %s", err))
		return RunResult{}, fmt.Errorf("encode pass: %w", err)
	}
	o.logger.Info(l10n.F("Encoded %d frames into %d packets, reorder delay %d",
		encoded.FramesIn, encoded.PacketsOut, encoded.ReorderDelay))
	if encoded.FramesFailed > 0 {
		o.logger.Warn(l10n.F("Dropped %d frames rejected by the encoder", encoded.FramesFailed))
	}

	if err := o.fs.WriteFile(config.OutputPath, encoded.VideoData); err != nil {
		o.logger.Error(l10n.F("Failed to write output: %s", err))
		return RunResult{}, fmt.Errorf("write output: %w", err)
	}
	o.logger.Info(l10n.F("Output written: %s (%d bytes)", config.OutputPath, len(encoded.VideoData)))

	return RunResult{
		FramesIn:     encoded.FramesIn,
		PacketsOut:   encoded.PacketsOut,
		FramesFailed: encoded.FramesFailed,
		ReorderDelay: encoded.ReorderDelay,
		ChapterCount: encoded.ChapterCount,
		OutputPath:   config.OutputPath,
		OutputBytes:  int64(len(encoded.VideoData)),
		TwoPass:      config.TwoPass,
	}, nil
}

// buildPassInput assembles fresh collaborators for one pass. The analysis
// pass gets a discarding sink; only the final pass produces output.
func (o *Orchestrator) buildPassInput(config Config, pass ports.Pass) (pipeline.EncodeInput, error) {
	source, err := o.factories.Source()
	if err != nil {
		return pipeline.EncodeInput{}, fmt.Errorf("open source: %w", err)
	}

	var sink ports.PacketSink
	if pass == ports.PassFirst {
		sink = &discardSink{}
	} else {
		sink = o.factories.Sink()
	}

	var stats ports.StatsLog
	if pass != ports.PassNone {
		stats, err = o.factories.StatsLog()
		if err != nil {
			return pipeline.EncodeInput{}, fmt.Errorf("open stats log: %w", err)
		}
	}

	return pipeline.EncodeInput{
		Config:   o.buildSessionConfig(config, pass),
		Source:   source,
		Backend:  o.factories.Backend(),
		Sink:     sink,
		StatsLog: stats,
		Codec:    config.Codec,
	}, nil
}

func (o *Orchestrator) buildSessionConfig(config Config, pass ports.Pass) session.Config {
	cfg := session.DefaultConfig()
	cfg.Width = config.Width
	cfg.Height = config.Height
	cfg.PixFmt = config.PixFmt
	cfg.FPSNum = config.FPSNum
	cfg.FPSDen = config.FPSDen
	cfg.Quality = config.Quality
	cfg.Bitrate = config.Bitrate
	cfg.Profile = config.Profile
	cfg.Level = config.Level
	cfg.Preset = config.Preset
	cfg.GOPSeconds = config.GOPSeconds
	cfg.ChapterMarkers = config.ChapterMarkers
	cfg.ReorderDelayOverride = config.ReorderDelayOverride
	cfg.Pass = pass
	cfg.Options = config.Options
	return cfg
}

// RunResult contains the results of a run for summary generation.
type RunResult struct {
	FramesIn     int64
	PacketsOut   int64
	FramesFailed int64
	ReorderDelay int
	ChapterCount int

	OutputPath  string
	OutputBytes int64
	TwoPass     bool
}

// discardSink swallows the analysis pass output.
type discardSink struct{}

func (discardSink) WriteHeader(ports.StreamInfo) error { return nil }
func (discardSink) WritePacket(*ports.Packet) error    { return nil }
func (discardSink) Finalize() ([]byte, error)          { return nil, nil }
