package pipeline

import (
	"github.com/user/retime/pkg/ports"
	"github.com/user/retime/pkg/session"
)

// EncodeInput carries everything one encode pass needs. The backend and
// sink are single-use; a two-pass run builds a fresh input per pass.
type EncodeInput struct {
	Config  session.Config
	Source  ports.FrameSource
	Backend ports.EncoderBackend
	Sink    ports.PacketSink

	// StatsLog is required when Config.Pass is not PassNone.
	StatsLog ports.StatsLog

	// Codec names the bitstream for the container header, e.g. "vp8".
	Codec string
}

// EncodeResult summarizes one completed encode pass.
type EncodeResult struct {
	// VideoData is the finalized container output. Empty for analysis
	// passes whose sink discards packets.
	VideoData []byte

	FramesIn     int64
	PacketsOut   int64
	FramesFailed int64
	ReorderDelay int
	ChapterCount int
}
