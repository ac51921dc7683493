// Package encode implements the encode-pass stage: it pulls frames from a
// source, drives them through an encoder session and hands the retimed
// packets to a sink.
package encode

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/user/retime/pkg/pipeline"
	"github.com/user/retime/pkg/ports"
	"github.com/user/retime/pkg/session"
)

// Stage runs one complete encode pass.
type Stage struct {
	logger ports.Logger
}

// NewStage creates a new encode stage.
func NewStage(logger ports.Logger) *Stage {
	return &Stage{
		logger: logger,
	}
}

// Execute encodes every source frame and finalizes the sink. A frame the
// backend rejects is dropped and counted; the pass keeps going.
func (s *Stage) Execute(ctx context.Context, input pipeline.EncodeInput) (pipeline.EncodeResult, error) {
	result := pipeline.EncodeResult{}

	opts := []session.Option{session.WithLogger(s.logger)}
	if input.StatsLog != nil {
		opts = append(opts, session.WithStatsLog(input.StatsLog))
	}
	sess, err := session.Open(input.Config, input.Backend, opts...)
	if err != nil {
		return result, fmt.Errorf("open session: %w", err)
	}
	defer sess.Close()

	err = input.Sink.WriteHeader(ports.StreamInfo{
		Codec:     input.Codec,
		Width:     input.Config.Width,
		Height:    input.Config.Height,
		Timescale: uint32(input.Config.Timescale),
	})
	if err != nil {
		return result, fmt.Errorf("write stream header: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		frame, err := input.Source.NextFrame()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return result, fmt.Errorf("read frame: %w", err)
		}

		packets, err := sess.Submit(frame)
		if errors.Is(err, session.ErrEncode) {
			result.FramesFailed++
			continue
		}
		if err != nil {
			return result, fmt.Errorf("submit frame: %w", err)
		}
		if err := s.write(input.Sink, packets, &result); err != nil {
			return result, err
		}
	}

	packets, err := sess.Flush()
	if err != nil {
		return result, fmt.Errorf("flush session: %w", err)
	}
	if err := s.write(input.Sink, packets, &result); err != nil {
		return result, err
	}

	data, err := input.Sink.Finalize()
	if err != nil {
		return result, fmt.Errorf("finalize sink: %w", err)
	}

	result.VideoData = data
	result.FramesIn = sess.FramesSubmitted()
	result.PacketsOut = sess.PacketsEmitted()
	result.ReorderDelay = sess.ReorderDelay()

	if err := sess.Close(); err != nil {
		return result, fmt.Errorf("close session: %w", err)
	}
	return result, nil
}

func (s *Stage) write(sink ports.PacketSink, packets []*ports.Packet, result *pipeline.EncodeResult) error {
	for _, pkt := range packets {
		if pkt.Chapter >= 0 {
			result.ChapterCount++
		}
		if err := sink.WritePacket(pkt); err != nil {
			return fmt.Errorf("write packet %d: %w", pkt.Sequence, err)
		}
	}
	return nil
}

// Ensure Stage implements pipeline.Stage
var _ pipeline.Stage[pipeline.EncodeInput, pipeline.EncodeResult] = (*Stage)(nil)
