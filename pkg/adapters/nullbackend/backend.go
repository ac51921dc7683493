// Package nullbackend provides a pure-Go encoder backend that performs no
// real compression. It reproduces the externally observable behavior of a
// reordering encoder: packets lag submissions by a configurable reorder
// delay, keyframes follow the GOP cadence and forced-keyframe requests,
// and two-pass statistics fragments are emitted per frame. Used by the
// CLI demo and as a deterministic stand-in for tests.
package nullbackend

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/fnv"

	"github.com/user/retime/pkg/ports"
)

var (
	// ErrNotInitialized is returned when backend methods are called before Init.
	ErrNotInitialized = errors.New("nullbackend: backend not initialized")

	// ErrFlushed is returned when a frame is submitted after end-of-input.
	ErrFlushed = errors.New("nullbackend: end of input already signaled")

	// ErrEmptyStats is returned by Init for a second pass without pass-one data.
	ErrEmptyStats = errors.New("nullbackend: second pass requires pass-one statistics")
)

var presetNames = []string{"veryfast", "faster", "fast", "medium", "slow", "slower", "veryslow"}

type heldFrame struct {
	seq      int64
	keyframe bool
	data     []byte
}

// Backend implements ports.EncoderBackend without encoding anything.
// Payload bytes are a deterministic digest of the frame planes, so tests
// can assert exact output for identical input.
type Backend struct {
	delay int

	cfg         ports.BackendConfig
	initialized bool
	flushed     bool
	closed      bool

	submitted int64
	held      []heldFrame
	ready     []*ports.Packet
	stats     bytes.Buffer
}

// New creates a backend with the given reorder delay.
func New(delay int) *Backend {
	if delay < 0 {
		delay = 0
	}
	return &Backend{delay: delay}
}

// Capabilities reports the supported option tables.
func (b *Backend) Capabilities() ports.BackendCaps {
	return ports.BackendCaps{
		Name:         "null",
		ReorderDelay: b.delay,
		Profiles:     []string{"auto", "main", "high"},
		Levels:       nil, // any
		Presets:      presetNames,
		PixelFormats: []ports.PixelFormat{ports.PixelFormatI420, ports.PixelFormatNV12},
	}
}

// Init opens the backend.
func (b *Backend) Init(cfg ports.BackendConfig) error {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("nullbackend: invalid resolution %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.Pass == ports.PassSecond && len(cfg.StatsIn) == 0 {
		return ErrEmptyStats
	}
	b.cfg = cfg
	b.initialized = true
	b.flushed = false
	b.closed = false
	b.submitted = 0
	b.held = nil
	b.ready = nil
	b.stats.Reset()
	if cfg.Pass == ports.PassFirst {
		// Real encoders may write a stats header during open already.
		fmt.Fprintf(&b.stats, "null-stats version=1 gop=%d;\n", cfg.GOPSize)
	}
	return nil
}

// SubmitFrame accepts one frame and may make zero or more packets ready.
func (b *Backend) SubmitFrame(frame ports.Frame, sequence int64) error {
	if !b.initialized || b.closed {
		return ErrNotInitialized
	}
	if b.flushed {
		return ErrFlushed
	}

	keyframe := frame.ForceKeyframe
	if b.cfg.GOPSize > 0 && b.submitted%int64(b.cfg.GOPSize) == 0 {
		keyframe = true
	}
	b.submitted++

	b.held = append(b.held, heldFrame{
		seq:      sequence,
		keyframe: keyframe,
		data:     digest(frame, sequence, keyframe),
	})
	if len(b.held) > b.delay {
		b.emit(b.held[0])
		b.held = b.held[1:]
	}

	if b.cfg.Pass == ports.PassFirst {
		fmt.Fprintf(&b.stats, "frame=%d key=%t size=%d;\n", sequence, keyframe, len(frame.Planes[0]))
	}
	return nil
}

// ReceivePacket returns the next ready packet.
func (b *Backend) ReceivePacket() (*ports.Packet, error) {
	if !b.initialized || b.closed {
		return nil, ErrNotInitialized
	}
	if len(b.ready) > 0 {
		pkt := b.ready[0]
		b.ready = b.ready[1:]
		return pkt, nil
	}
	if b.flushed {
		return nil, ports.ErrEndOfStream
	}
	return nil, ports.ErrNoPacket
}

// SignalEndOfInput releases every held frame.
func (b *Backend) SignalEndOfInput() error {
	if !b.initialized || b.closed {
		return ErrNotInitialized
	}
	if b.flushed {
		return nil
	}
	b.flushed = true
	for _, h := range b.held {
		b.emit(h)
	}
	b.held = nil
	return nil
}

// StatsOut returns the pending statistics fragment and clears it.
func (b *Backend) StatsOut() []byte {
	if b.stats.Len() == 0 {
		return nil
	}
	out := append([]byte(nil), b.stats.Bytes()...)
	b.stats.Reset()
	return out
}

// Close releases the backend. Safe to call multiple times.
func (b *Backend) Close() error {
	b.closed = true
	b.held = nil
	b.ready = nil
	b.stats.Reset()
	return nil
}

func (b *Backend) emit(h heldFrame) {
	b.ready = append(b.ready, &ports.Packet{
		Data:     h.data,
		Sequence: h.seq,
		Keyframe: h.keyframe,
	})
}

// digest builds the deterministic stand-in payload: a small header plus a
// hash of the pixel planes.
func digest(frame ports.Frame, sequence int64, keyframe bool) []byte {
	h := fnv.New64a()
	for _, plane := range frame.Planes {
		h.Write(plane)
	}

	buf := make([]byte, 0, 24)
	buf = append(buf, 'n', 'u', 'l', 'l')
	if keyframe {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
	}
	buf = binary.BigEndian.AppendUint64(buf, uint64(sequence))
	buf = binary.BigEndian.AppendUint64(buf, h.Sum64())
	return buf
}

var _ ports.EncoderBackend = (*Backend)(nil)
