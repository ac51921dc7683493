package mp4sink

import (
	"bytes"
	"errors"
	"testing"

	"github.com/Eyevinn/mp4ff/mp4"

	"github.com/user/retime/pkg/ports"
)

func testInfo() ports.StreamInfo {
	return ports.StreamInfo{Codec: "vp8", Width: 64, Height: 48, Timescale: 90000}
}

func pkt(seq, pts, dts, dur int64, key bool) *ports.Packet {
	return &ports.Packet{
		Data:     []byte{byte(seq), 0xaa},
		Sequence: seq,
		Keyframe: key,
		PTS:      pts,
		DTS:      dts,
		Duration: dur,
		Chapter:  -1,
	}
}

func TestSink_RoundTrip(t *testing.T) {
	s := New()
	if err := s.WriteHeader(testInfo()); err != nil {
		t.Fatalf("WriteHeader: %v", err)
	}

	// Decode order with an initial negative DTS, as a reordering encoder
	// produces it.
	packets := []*ports.Packet{
		pkt(0, 0, -6000, 3000, true),
		pkt(1, 9000, -3000, 3000, false),
		pkt(2, 3000, 0, 3000, false),
		pkt(3, 6000, 3000, 3000, false),
	}
	for _, p := range packets {
		if err := s.WritePacket(p); err != nil {
			t.Fatalf("WritePacket %d: %v", p.Sequence, err)
		}
	}

	data, err := s.Finalize()
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if len(data) < 8 || string(data[4:8]) != "ftyp" {
		t.Fatalf("output does not start with an ftyp box")
	}

	parsed, err := mp4.DecodeFile(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("DecodeFile: %v", err)
	}
	if len(parsed.Segments) != 1 || len(parsed.Segments[0].Fragments) != 1 {
		t.Fatalf("expected 1 segment with 1 fragment")
	}
	samples, err := parsed.Segments[0].Fragments[0].GetFullSamples(nil)
	if err != nil {
		t.Fatalf("GetFullSamples: %v", err)
	}
	if len(samples) != len(packets) {
		t.Fatalf("decoded %d samples, want %d", len(samples), len(packets))
	}

	// Decode times are the input DTS shifted to start at zero, and the
	// composition offsets preserve PTS-DTS.
	for i, sample := range samples {
		wantDec := uint64(packets[i].DTS + 6000)
		if sample.DecodeTime != wantDec {
			t.Errorf("sample %d decode time = %d, want %d", i, sample.DecodeTime, wantDec)
		}
		wantOffset := int32(packets[i].PTS - packets[i].DTS)
		if sample.CompositionTimeOffset != wantOffset {
			t.Errorf("sample %d composition offset = %d, want %d", i, sample.CompositionTimeOffset, wantOffset)
		}
	}
	if samples[0].Flags != mp4.SyncSampleFlags {
		t.Error("keyframe sample not marked sync")
	}
	if samples[1].Flags != mp4.NonSyncSampleFlags {
		t.Error("non-keyframe sample marked sync")
	}
}

func TestSink_RejectsBadOrder(t *testing.T) {
	s := New()
	if err := s.WriteHeader(testInfo()); err != nil {
		t.Fatalf("WriteHeader: %v", err)
	}
	if err := s.WritePacket(pkt(0, 0, 0, 3000, true)); err != nil {
		t.Fatalf("WritePacket: %v", err)
	}
	if err := s.WritePacket(pkt(1, 3000, -3000, 3000, false)); err == nil {
		t.Error("DTS regression accepted")
	}
	if err := s.WritePacket(pkt(2, 0, 3000, 3000, false)); err == nil {
		t.Error("DTS after PTS accepted")
	}
}

func TestSink_RequiresHeader(t *testing.T) {
	s := New()
	if err := s.WritePacket(pkt(0, 0, 0, 3000, true)); !errors.Is(err, ErrHeaderNotWritten) {
		t.Errorf("WritePacket: want ErrHeaderNotWritten, got %v", err)
	}
	if _, err := s.Finalize(); !errors.Is(err, ErrHeaderNotWritten) {
		t.Errorf("Finalize: want ErrHeaderNotWritten, got %v", err)
	}
}

func TestSink_ChapterMarks(t *testing.T) {
	s := New()
	if err := s.WriteHeader(testInfo()); err != nil {
		t.Fatalf("WriteHeader: %v", err)
	}

	first := pkt(0, 0, 0, 3000, true)
	first.Chapter = 1
	second := pkt(1, 3000, 3000, 3000, false)
	third := pkt(2, 6000, 6000, 3000, true)
	third.Chapter = 2
	for _, p := range []*ports.Packet{first, second, third} {
		if err := s.WritePacket(p); err != nil {
			t.Fatalf("WritePacket %d: %v", p.Sequence, err)
		}
	}

	marks := s.Chapters()
	if len(marks) != 2 {
		t.Fatalf("recorded %d chapter marks, want 2", len(marks))
	}
	if marks[0].Chapter != 1 || marks[0].PTS != 0 {
		t.Errorf("first mark = %+v", marks[0])
	}
	if marks[1].Chapter != 2 || marks[1].PTS != 6000 {
		t.Errorf("second mark = %+v", marks[1])
	}
}

func TestSink_FinalizeTwice(t *testing.T) {
	s := New()
	if err := s.WriteHeader(testInfo()); err != nil {
		t.Fatalf("WriteHeader: %v", err)
	}
	if _, err := s.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if _, err := s.Finalize(); !errors.Is(err, ErrFinalized) {
		t.Errorf("second Finalize: want ErrFinalized, got %v", err)
	}
}
