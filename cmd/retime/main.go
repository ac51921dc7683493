// Package main provides the CLI entry point for retime.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/retime/pkg/adapters/ffmpegbackend"
	"github.com/user/retime/pkg/adapters/logger"
	"github.com/user/retime/pkg/adapters/mp4sink"
	"github.com/user/retime/pkg/adapters/nullbackend"
	"github.com/user/retime/pkg/adapters/osfilesystem"
	"github.com/user/retime/pkg/adapters/statsfile"
	"github.com/user/retime/pkg/adapters/testsource"
	"github.com/user/retime/pkg/config"
	"github.com/user/retime/pkg/orchestrator"
	"github.com/user/retime/pkg/ports"
	"github.com/user/retime/pkg/session"
	"github.com/user/retime/pkg/stages/encode"
	"github.com/user/retime/pkg/summarizer"
)

var version = "dev"

// defaultNullDelay is the simulated reorder depth of the null backend when
// no explicit delay is configured.
const defaultNullDelay = 2

func main() {
	app := &cli.App{
		Name:    "retime",
		Usage:   l10n.T("Encode synthetic video while preserving frame timing across encoder reordering"),
		Version: version,
		Commands: []*cli.Command{
			encodeCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func encodeCommand() *cli.Command {
	return &cli.Command{
		Name:  "encode",
		Usage: l10n.T("Encode a synthetic test stream to an MP4 file"),
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: l10n.T("YAML configuration file")},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: l10n.T("Output MP4 file path")},
			&cli.IntFlag{Name: "width", Aliases: []string{"W"}, Usage: l10n.T("Video width in pixels")},
			&cli.IntFlag{Name: "height", Aliases: []string{"H"}, Usage: l10n.T("Video height in pixels")},
			&cli.IntFlag{Name: "frames", Aliases: []string{"n"}, Usage: l10n.T("Number of frames to generate")},
			&cli.IntFlag{Name: "fps-num", Usage: l10n.T("Frame rate numerator")},
			&cli.IntFlag{Name: "fps-den", Usage: l10n.T("Frame rate denominator")},
			&cli.Float64Flag{Name: "quality", Aliases: []string{"q"}, Usage: l10n.T("Constant quality (0-63, lower is better)")},
			&cli.IntFlag{Name: "bitrate", Aliases: []string{"b"}, Usage: l10n.T("Average bitrate in bits/sec (0 = constant quality)")},
			&cli.StringFlag{Name: "codec", Usage: l10n.T("Codec (vp8, vp9, null)")},
			&cli.StringFlag{Name: "preset", Usage: l10n.T("Encoder preset")},
			&cli.StringFlag{Name: "profile", Usage: l10n.T("Encoder profile")},
			&cli.BoolFlag{Name: "two-pass", Usage: l10n.T("Run an analysis pass before encoding")},
			&cli.StringFlag{Name: "stats-path", Usage: l10n.T("Pass log file for two-pass encoding")},
			&cli.IntFlag{Name: "chapter-every", Usage: l10n.T("Insert a chapter every N frames (0 = none)")},
			&cli.IntFlag{Name: "reorder-delay", Value: -1, Usage: l10n.T("Override the encoder reorder delay (-1 = backend decides)")},
			&cli.StringFlag{Name: "ffmpeg", Usage: l10n.T("Path to ffmpeg executable")},
			&cli.StringFlag{Name: "summary", Usage: l10n.T("Output execution summary to file (Markdown format)")},
			&cli.StringFlag{Name: "log-level", Aliases: []string{"l"}, Value: "info", Usage: l10n.T("Log level (debug, info, warn, error)")},
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"Q"}, Usage: l10n.T("Suppress all log output")},
		},
		Action: runEncode,
	}
}

func runEncode(c *cli.Context) error {
	cfg, err := buildConfig(c)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	var log ports.Logger
	if c.Bool("quiet") {
		log = logger.NewNoop()
	} else {
		log = logger.NewConsole(ports.ParseLogLevel(cfg.LogLevel))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Warn(l10n.T("Interrupted, shutting down..."))
		cancel()
	}()

	if c.IsSet("ffmpeg") {
		ffmpegbackend.SetFFmpegPath(c.String("ffmpeg"))
	}

	fs := osfilesystem.New()
	factories, err := buildFactories(cfg, fs)
	if err != nil {
		return err
	}

	orch := orchestrator.New(
		encode.NewStage(log.WithComponent("session")),
		factories,
		fs,
		log,
	)

	log.Info(l10n.F("Encoding %d frames at %dx%d with %s...", cfg.Frames, cfg.Width, cfg.Height, cfg.Codec))

	result, err := orch.Run(ctx, cfg.ToOrchestratorConfig())
	if err != nil {
		return err
	}

	log.Info(l10n.F("Done: %d packets, %d chapters, %d bytes to %s",
		result.PacketsOut, result.ChapterCount, result.OutputBytes, result.OutputPath))

	if c.IsSet("summary") {
		path := c.String("summary")
		if err := writeSummary(fs, path, cfg, result); err != nil {
			log.Error(l10n.F("Failed to write summary: %s", err))
			return err
		}
		log.Info(l10n.F("Summary saved to %s", path))
	}
	return nil
}

func writeSummary(fs ports.FileSystem, path string, cfg config.Config, result orchestrator.RunResult) error {
	summary := summarizer.NewBuilder().
		WithStream(summarizer.StreamInfo{
			Width:  cfg.Width,
			Height: cfg.Height,
			FPSNum: cfg.FPSNum,
			FPSDen: cfg.FPSDen,
			Codec:  cfg.Codec,
		}).
		WithSettings(summarizer.Settings{
			Quality:    cfg.Quality,
			Bitrate:    cfg.Bitrate,
			Preset:     cfg.Preset,
			GOPSeconds: cfg.GOPSeconds,
			TwoPass:    cfg.TwoPass,
		}).
		WithReorder(summarizer.ReorderInfo{
			Delay:        result.ReorderDelay,
			FramesIn:     result.FramesIn,
			PacketsOut:   result.PacketsOut,
			FramesFailed: result.FramesFailed,
			ChapterCount: result.ChapterCount,
		}).
		WithOutput(summarizer.OutputInfo{
			Path:     result.OutputPath,
			FileSize: result.OutputBytes,
		}).
		Build()

	writer := summarizer.NewWriter(fs, summarizer.NewMarkdownFormatter())
	return writer.Write(path, summary)
}

// buildConfig loads the optional YAML file, then applies flag overrides.
func buildConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Defaults()
	if c.IsSet("config") {
		loaded, err := config.LoadFromFile(c.String("config"))
		if err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	if c.IsSet("output") {
		cfg.OutputPath = c.String("output")
	}
	if c.IsSet("width") {
		cfg.Width = c.Int("width")
	}
	if c.IsSet("height") {
		cfg.Height = c.Int("height")
	}
	if c.IsSet("frames") {
		cfg.Frames = c.Int("frames")
	}
	if c.IsSet("fps-num") {
		cfg.FPSNum = c.Int("fps-num")
	}
	if c.IsSet("fps-den") {
		cfg.FPSDen = c.Int("fps-den")
	}
	if c.IsSet("quality") {
		cfg.Quality = c.Float64("quality")
	}
	if c.IsSet("bitrate") {
		cfg.Bitrate = c.Int("bitrate")
	}
	if c.IsSet("codec") {
		cfg.Codec = c.String("codec")
	}
	if c.IsSet("preset") {
		cfg.Preset = c.String("preset")
	}
	if c.IsSet("profile") {
		cfg.Profile = c.String("profile")
	}
	if c.IsSet("two-pass") {
		cfg.TwoPass = c.Bool("two-pass")
	}
	if c.IsSet("stats-path") {
		cfg.StatsPath = c.String("stats-path")
	}
	if c.IsSet("chapter-every") {
		cfg.ChapterEveryN = c.Int("chapter-every")
	}
	if c.IsSet("reorder-delay") {
		cfg.ReorderDelay = c.Int("reorder-delay")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	return cfg, nil
}

// buildFactories wires the adapters each pass is created from.
func buildFactories(cfg config.Config, fs ports.FileSystem) (orchestrator.Factories, error) {
	pixFmt, err := cfg.ParsePixelFormat()
	if err != nil {
		return orchestrator.Factories{}, err
	}
	if pixFmt != ports.PixelFormatI420 {
		return orchestrator.Factories{}, fmt.Errorf("the synthetic source only produces yuv420p, not %s", pixFmt)
	}

	sourceOpts := testsource.Options{
		Width:         cfg.Width,
		Height:        cfg.Height,
		FrameCount:    cfg.Frames,
		FPSNum:        cfg.FPSNum,
		FPSDen:        cfg.FPSDen,
		Timescale:     session.DefaultTimescale,
		ChapterEveryN: cfg.ChapterEveryN,
	}

	factories := orchestrator.Factories{
		Source: func() (ports.FrameSource, error) {
			return testsource.New(sourceOpts)
		},
		Sink: func() ports.PacketSink {
			return mp4sink.New()
		},
		StatsLog: func() (ports.StatsLog, error) {
			return statsfile.New(fs, cfg.StatsPath), nil
		},
	}

	switch cfg.Codec {
	case "null":
		delay := cfg.ReorderDelay
		if delay < 0 {
			delay = defaultNullDelay
		}
		factories.Backend = func() ports.EncoderBackend {
			return nullbackend.New(delay)
		}
	case "vp9":
		factories.Backend = func() ports.EncoderBackend {
			return ffmpegbackend.New(ffmpegbackend.CodecVP9)
		}
	default:
		factories.Backend = func() ports.EncoderBackend {
			return ffmpegbackend.New(ffmpegbackend.CodecVP8)
		}
	}
	return factories, nil
}
