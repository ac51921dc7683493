package reorder

import (
	"testing"

	"github.com/user/retime/pkg/ports"
	"github.com/user/retime/pkg/timing"
)

// feed submits frames with the given start times and runs every produced
// packet through the engine, with the backend emitting one packet per
// frame in the given output order of sequence numbers.
func feed(t *testing.T, delay int, starts []int64, outputOrder []int64) []*ports.Packet {
	t.Helper()

	ring, err := timing.NewRing(timing.DefaultCapacity)
	if err != nil {
		t.Fatalf("NewRing failed: %v", err)
	}
	e := NewEngine(ring, delay)

	for seq, start := range starts {
		ring.Record(int64(seq), start, 1000)
		e.TrackInput(start)
	}

	var emitted []*ports.Packet
	for _, seq := range outputOrder {
		start, dur := ring.Lookup(seq)
		pkt := &ports.Packet{Sequence: seq, PTS: start, Duration: dur}
		emitted = append(emitted, e.Process(pkt)...)
	}
	if e.BufferedCount() != 0 {
		t.Fatalf("engine still buffering %d packets", e.BufferedCount())
	}
	return emitted
}

func TestEngine_DelayTwo(t *testing.T) {
	// Reference sequence from the decode-order shift: delay 2, frames at
	// 0..4000, dtsDelay = 2000 (start of frame 2).
	starts := []int64{0, 1000, 2000, 3000, 4000}
	// Decode order as a B-frame encoder would emit: anchors before the
	// bidirectional frames they close over.
	order := []int64{0, 3, 1, 2, 4}

	emitted := feed(t, 2, starts, order)

	wantDTS := []int64{-2000, -1000, 0, 1000, 2000}
	if len(emitted) != len(wantDTS) {
		t.Fatalf("emitted %d packets, want %d", len(emitted), len(wantDTS))
	}
	for i, pkt := range emitted {
		if pkt.DTS != wantDTS[i] {
			t.Errorf("packet %d DTS = %d, want %d", i, pkt.DTS, wantDTS[i])
		}
		if pkt.DTS > pkt.PTS {
			t.Errorf("packet %d DTS %d > PTS %d", i, pkt.DTS, pkt.PTS)
		}
	}
	// Arrival order is preserved.
	for i, seq := range order {
		if emitted[i].Sequence != seq {
			t.Errorf("packet %d sequence = %d, want %d", i, emitted[i].Sequence, seq)
		}
	}
}

func TestEngine_DelayZero(t *testing.T) {
	starts := []int64{0, 1000, 2000}
	emitted := feed(t, 0, starts, []int64{0, 1, 2})

	for i, pkt := range emitted {
		if pkt.DTS != pkt.PTS {
			t.Errorf("packet %d DTS = %d, want PTS %d", i, pkt.DTS, pkt.PTS)
		}
		if pkt.DTS != starts[i] {
			t.Errorf("packet %d DTS = %d, want %d", i, pkt.DTS, starts[i])
		}
	}
}

func TestEngine_BuffersUntilCalibration(t *testing.T) {
	ring, err := timing.NewRing(timing.DefaultCapacity)
	if err != nil {
		t.Fatalf("NewRing failed: %v", err)
	}
	e := NewEngine(ring, 2)

	// First frame submitted, first packet produced: must be held.
	ring.Record(0, 0, 1000)
	e.TrackInput(0)
	if e.Calibrated() {
		t.Fatal("calibrated after one frame with delay 2")
	}
	if out := e.Process(&ports.Packet{Sequence: 0, PTS: 0}); out != nil {
		t.Fatalf("expected packet to be buffered, got %d emitted", len(out))
	}
	if e.BufferedCount() != 1 {
		t.Fatalf("buffered = %d, want 1", e.BufferedCount())
	}

	ring.Record(1, 1000, 1000)
	e.TrackInput(1000)
	ring.Record(2, 2000, 1000)
	e.TrackInput(2000)

	if !e.Calibrated() {
		t.Fatal("not calibrated after frame number delay was submitted")
	}
	if e.DTSDelay() != 2000 {
		t.Errorf("dtsDelay = %d, want 2000", e.DTSDelay())
	}

	// The next packet flushes the held one too, in arrival order.
	out := e.Process(&ports.Packet{Sequence: 1, PTS: 1000})
	if len(out) != 2 {
		t.Fatalf("emitted %d packets, want 2", len(out))
	}
	if out[0].Sequence != 0 || out[1].Sequence != 1 {
		t.Errorf("arrival order not preserved: got %d, %d", out[0].Sequence, out[1].Sequence)
	}
	if out[0].DTS != -2000 || out[1].DTS != -1000 {
		t.Errorf("DTS = %d, %d, want -2000, -1000", out[0].DTS, out[1].DTS)
	}
}

func TestEngine_DTSNeverExceedsPTS(t *testing.T) {
	// Variable frame durations and several delays.
	starts := []int64{0, 700, 1500, 3000, 3400, 5000, 6200, 7000}
	orders := map[int][]int64{
		0: {0, 1, 2, 3, 4, 5, 6, 7},
		1: {0, 2, 1, 4, 3, 6, 5, 7},
		2: {0, 3, 1, 2, 6, 4, 5, 7},
		3: {0, 4, 1, 2, 3, 7, 5, 6},
	}
	for delay, order := range orders {
		emitted := feed(t, delay, starts, order)
		if len(emitted) != len(starts) {
			t.Fatalf("delay %d: emitted %d packets, want %d", delay, len(emitted), len(starts))
		}
		prevDTS := int64(-1 << 62)
		for i, pkt := range emitted {
			if pkt.DTS > pkt.PTS {
				t.Errorf("delay %d packet %d: DTS %d > PTS %d", delay, i, pkt.DTS, pkt.PTS)
			}
			if pkt.DTS < prevDTS {
				t.Errorf("delay %d packet %d: DTS %d decreased below %d", delay, i, pkt.DTS, prevDTS)
			}
			prevDTS = pkt.DTS
		}
	}
}

func TestEngine_Deterministic(t *testing.T) {
	starts := []int64{0, 900, 1800, 2700, 3600, 4500}
	order := []int64{0, 3, 1, 2, 5, 4}

	first := feed(t, 2, starts, order)
	second := feed(t, 2, starts, order)

	for i := range first {
		if first[i].DTS != second[i].DTS || first[i].Sequence != second[i].Sequence {
			t.Fatalf("run mismatch at packet %d: (%d,%d) vs (%d,%d)",
				i, first[i].Sequence, first[i].DTS, second[i].Sequence, second[i].DTS)
		}
	}
}

func TestEngine_Stall(t *testing.T) {
	ring, err := timing.NewRing(timing.DefaultCapacity)
	if err != nil {
		t.Fatalf("NewRing failed: %v", err)
	}
	e := NewEngine(ring, 4)

	// Fewer frames than the declared delay: calibration never happens.
	ring.Record(0, 0, 1000)
	e.TrackInput(0)
	e.Process(&ports.Packet{Sequence: 0, PTS: 0})

	if !e.Stalled() {
		t.Error("expected stall with buffered packets and no calibration")
	}
	if e.Calibrated() {
		t.Error("engine must not report calibrated")
	}
}

func TestEngine_NoStallWhenEmpty(t *testing.T) {
	ring, err := timing.NewRing(timing.DefaultCapacity)
	if err != nil {
		t.Fatalf("NewRing failed: %v", err)
	}
	e := NewEngine(ring, 4)

	// No packets were ever produced; nothing is lost, not a stall.
	e.TrackInput(0)
	if e.Stalled() {
		t.Error("stall reported with empty buffer")
	}
}
