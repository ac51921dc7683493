// Package mp4sink assembles retimed packets into a fragmented MP4 stream
// using mp4ff. Decode times come from packet DTS values and composition
// offsets carry the PTS-DTS distance, so players reconstruct presentation
// order from a stream stored in decode order.
package mp4sink

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/Eyevinn/mp4ff/mp4"

	"github.com/user/retime/pkg/ports"
)

var (
	// ErrHeaderNotWritten is returned when packets arrive before WriteHeader.
	ErrHeaderNotWritten = errors.New("mp4sink: header not written")

	// ErrFinalized is returned when the sink is used after Finalize.
	ErrFinalized = errors.New("mp4sink: sink already finalized")
)

// ChapterMark records a chapter boundary observed on a keyframe packet.
type ChapterMark struct {
	Chapter int64
	PTS     int64
}

// Sink implements ports.PacketSink. Packets are accumulated and the
// container is assembled in one shot at Finalize, mirroring how the
// fragment box layout wants complete sample tables up front.
type Sink struct {
	info      ports.StreamInfo
	haveInfo  bool
	finalized bool

	packets  []*ports.Packet
	chapters []ChapterMark
}

// New creates an empty sink.
func New() *Sink {
	return &Sink{}
}

// WriteHeader records the stream parameters. Must be called once before
// any packet.
func (s *Sink) WriteHeader(info ports.StreamInfo) error {
	if s.finalized {
		return ErrFinalized
	}
	if info.Width == 0 || info.Height == 0 {
		return fmt.Errorf("mp4sink: invalid dimensions %dx%d", info.Width, info.Height)
	}
	if info.Timescale == 0 {
		return errors.New("mp4sink: timescale must be positive")
	}
	s.info = info
	s.haveInfo = true
	return nil
}

// WritePacket appends one packet in decode order.
func (s *Sink) WritePacket(pkt *ports.Packet) error {
	if s.finalized {
		return ErrFinalized
	}
	if !s.haveInfo {
		return ErrHeaderNotWritten
	}
	if pkt.DTS > pkt.PTS {
		return fmt.Errorf("mp4sink: packet %d has DTS %d after PTS %d", pkt.Sequence, pkt.DTS, pkt.PTS)
	}
	if n := len(s.packets); n > 0 && pkt.DTS < s.packets[n-1].DTS {
		return fmt.Errorf("mp4sink: packet %d breaks DTS order (%d after %d)", pkt.Sequence, pkt.DTS, s.packets[n-1].DTS)
	}
	s.packets = append(s.packets, pkt)
	if pkt.Chapter >= 0 {
		s.chapters = append(s.chapters, ChapterMark{Chapter: pkt.Chapter, PTS: pkt.PTS})
	}
	return nil
}

// Chapters returns the chapter boundaries seen so far.
func (s *Sink) Chapters() []ChapterMark {
	return s.chapters
}

// Finalize builds the init segment and fragment and returns the complete
// file bytes.
func (s *Sink) Finalize() ([]byte, error) {
	if s.finalized {
		return nil, ErrFinalized
	}
	if !s.haveInfo {
		return nil, ErrHeaderNotWritten
	}
	s.finalized = true

	timescale := s.info.Timescale
	trackID := uint32(1)

	init := mp4.CreateEmptyInit()
	init.AddEmptyTrack(timescale, "video", "en")

	trak := init.Moov.Trak
	sampleEntry := mp4.CreateVisualSampleEntryBox(
		sampleEntryName(s.info.Codec),
		uint16(s.info.Width), uint16(s.info.Height),
		codecConfigBox(s.info.Codec),
	)
	trak.Mdia.Minf.Stbl.Stsd.AddChild(sampleEntry)
	trak.Tkhd.Width = mp4.Fixed32(s.info.Width << 16)
	trak.Tkhd.Height = mp4.Fixed32(s.info.Height << 16)

	frag, err := mp4.CreateFragment(1, trackID)
	if err != nil {
		return nil, fmt.Errorf("mp4sink: create fragment: %w", err)
	}

	// DTS may start below zero when the stream carries an initial decode
	// offset. Container decode times are unsigned, so shift everything up
	// by the first DTS.
	var shift int64
	if len(s.packets) > 0 && s.packets[0].DTS < 0 {
		shift = -s.packets[0].DTS
	}

	for _, pkt := range s.packets {
		flags := mp4.NonSyncSampleFlags
		if pkt.Keyframe {
			flags = mp4.SyncSampleFlags
		}
		dur := uint32(pkt.Duration)
		if dur == 0 {
			dur = 1
		}
		frag.AddFullSample(mp4.FullSample{
			Sample: mp4.Sample{
				Flags:                 flags,
				Size:                  uint32(len(pkt.Data)),
				Dur:                   dur,
				CompositionTimeOffset: int32(pkt.PTS - pkt.DTS),
			},
			DecodeTime: uint64(pkt.DTS + shift),
			Data:       pkt.Data,
		})
	}

	var buf bytes.Buffer
	ftyp := mp4.NewFtyp("isom", 0x200, []string{"isom", "iso2", "mp41"})
	if err := ftyp.Encode(&buf); err != nil {
		return nil, fmt.Errorf("mp4sink: encode ftyp: %w", err)
	}
	if err := init.Moov.Encode(&buf); err != nil {
		return nil, fmt.Errorf("mp4sink: encode moov: %w", err)
	}
	if err := frag.Encode(&buf); err != nil {
		return nil, fmt.Errorf("mp4sink: encode fragment: %w", err)
	}
	return buf.Bytes(), nil
}

func sampleEntryName(codec string) string {
	switch codec {
	case "vp8":
		return "vp08"
	case "vp9":
		return "vp09"
	default:
		return "mp4v"
	}
}

// codecConfigBox builds the VP codec configuration for vp08/vp09 entries.
// Other codecs get a bare sample entry.
func codecConfigBox(codec string) mp4.Box {
	switch codec {
	case "vp8", "vp9":
		return &mp4.VppCBox{
			Version:                 1,
			Profile:                 0,
			Level:                   10,
			BitDepth:                8,
			ChromaSubsampling:       1,
			ColourPrimaries:         1,
			TransferCharacteristics: 1,
			MatrixCoefficients:      1,
		}
	default:
		return nil
	}
}

var _ ports.PacketSink = (*Sink)(nil)
