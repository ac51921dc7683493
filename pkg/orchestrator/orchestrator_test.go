package orchestrator

import (
	"context"
	"errors"
	"testing"

	"github.com/user/retime/pkg/adapters/nullbackend"
	"github.com/user/retime/pkg/mocks"
	"github.com/user/retime/pkg/pipeline"
	"github.com/user/retime/pkg/ports"
	"github.com/user/retime/pkg/stages/encode"
)

func makeFrames(count int) []ports.Frame {
	frames := make([]ports.Frame, count)
	for i := range frames {
		frames[i] = ports.Frame{
			Planes:   [3][]byte{make([]byte, 64*48), make([]byte, 32*24), make([]byte, 32*24)},
			Strides:  [3]int{64, 32, 32},
			Width:    64,
			Height:   48,
			PixFmt:   ports.PixelFormatI420,
			Start:    int64(i) * 3000,
			Duration: 3000,
		}
	}
	return frames
}

func testFactories(sink *mocks.PacketSink, delay int) Factories {
	return Factories{
		Source: func() (ports.FrameSource, error) {
			return &mocks.FrameSource{Frames: makeFrames(6)}, nil
		},
		Backend: func() ports.EncoderBackend {
			return nullbackend.New(delay)
		},
		Sink: func() ports.PacketSink {
			return sink
		},
		StatsLog: func() (ports.StatsLog, error) {
			return &mocks.StatsLog{}, nil
		},
	}
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Width = 64
	cfg.Height = 48
	cfg.OutputPath = "out.mp4"
	return cfg
}

func TestOrchestrator_SinglePass(t *testing.T) {
	sink := &mocks.PacketSink{}
	fs := mocks.NewFileSystem()
	o := New(encode.NewStage(nil), testFactories(sink, 2), fs, noopLogger{})

	result, err := o.Run(context.Background(), testConfig())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.FramesIn != 6 || result.PacketsOut != 6 {
		t.Errorf("frames/packets = %d/%d, want 6/6", result.FramesIn, result.PacketsOut)
	}
	if result.ReorderDelay != 2 {
		t.Errorf("ReorderDelay = %d, want 2", result.ReorderDelay)
	}
	if _, ok := fs.Files["out.mp4"]; !ok {
		t.Error("output file never written")
	}
	if len(sink.Packets) != 6 {
		t.Errorf("sink received %d packets, want 6", len(sink.Packets))
	}
}

func TestOrchestrator_TwoPassSharesStats(t *testing.T) {
	stats := &mocks.StatsLog{}
	sink := &mocks.PacketSink{}
	factories := testFactories(sink, 0)
	factories.StatsLog = func() (ports.StatsLog, error) {
		return stats, nil
	}

	cfg := testConfig()
	cfg.TwoPass = true
	o := New(encode.NewStage(nil), factories, mocks.NewFileSystem(), noopLogger{})

	result, err := o.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !result.TwoPass {
		t.Error("result does not record the two-pass mode")
	}
	if len(stats.Fragments) == 0 {
		t.Error("analysis pass appended no statistics")
	}
	// The analysis pass output is discarded; only the encode pass reaches
	// the real sink.
	if len(sink.Packets) != 6 {
		t.Errorf("sink received %d packets, want 6", len(sink.Packets))
	}
}

func TestOrchestrator_TwoPassRequiresStatsFactory(t *testing.T) {
	factories := testFactories(&mocks.PacketSink{}, 0)
	factories.StatsLog = nil

	cfg := testConfig()
	cfg.TwoPass = true
	o := New(encode.NewStage(nil), factories, mocks.NewFileSystem(), noopLogger{})
	if _, err := o.Run(context.Background(), cfg); err == nil {
		t.Fatal("two-pass run without stats factory accepted")
	}
}

func TestOrchestrator_WriteFailureSurfaces(t *testing.T) {
	fs := mocks.NewFileSystem()
	fs.WriteFileFunc = func(path string, data []byte) error {
		return errors.New("disk full")
	}
	o := New(encode.NewStage(nil), testFactories(&mocks.PacketSink{}, 0), fs, noopLogger{})
	if _, err := o.Run(context.Background(), testConfig()); err == nil {
		t.Fatal("write failure not surfaced")
	}
}

func TestOrchestrator_StageFailureSurfaces(t *testing.T) {
	failing := pipeline.StageFunc[pipeline.EncodeInput, pipeline.EncodeResult](
		func(ctx context.Context, input pipeline.EncodeInput) (pipeline.EncodeResult, error) {
			return pipeline.EncodeResult{}, errors.New("backend exploded")
		})
	o := New(failing, testFactories(&mocks.PacketSink{}, 0), mocks.NewFileSystem(), noopLogger{})
	if _, err := o.Run(context.Background(), testConfig()); err == nil {
		t.Fatal("stage failure not surfaced")
	}
}

type noopLogger struct{}

func (noopLogger) Debug(msg string, args ...interface{})       {}
func (noopLogger) Info(msg string, args ...interface{})        {}
func (noopLogger) Warn(msg string, args ...interface{})        {}
func (noopLogger) Error(msg string, args ...interface{})       {}
func (noopLogger) WithComponent(component string) ports.Logger { return noopLogger{} }
