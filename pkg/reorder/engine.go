// Package reorder reconstructs decode timestamps for the output of a
// reordering encoder, and correlates chapter requests with keyframes.
//
// An encoder that uses bidirectional prediction emits packets in decode
// order, which differs from presentation order by a fixed number of
// frames (the reorder delay). Given only presentation timestamps, the
// engine derives DTS by shifting the presentation sequence left by the
// delay and anchoring the first delay entries below zero:
//
//	pts0 - dtsDelay, pts1 - dtsDelay, ..., pts(delay-1) - dtsDelay,
//	ptsDelay, pts(delay+1), ...
//
// where dtsDelay is the start time of frame number delay. This guarantees
// DTS <= PTS for every packet, the same way software encoders derive DTS
// when only presentation order is known.
package reorder

import (
	"github.com/user/retime/pkg/ports"
	"github.com/user/retime/pkg/timing"
)

// Engine rewrites the decode timestamp of every packet an encoder backend
// produces. Until the delay is calibrated (the start time of frame number
// delay is known), produced packets are buffered; the instant calibration
// completes the whole buffer drains in arrival order.
//
// Engine state is owned by a single session and is not safe for
// concurrent use.
type Engine struct {
	ring  *timing.Ring
	delay int64

	calibrated bool
	dtsDelay   int64

	inCount  int64
	outCount int64
	buffered []*ports.Packet
}

// NewEngine creates an engine for a backend with the given reorder delay.
// A delay of zero disables buffering entirely: every packet's DTS equals
// its own presentation start.
func NewEngine(ring *timing.Ring, delay int) *Engine {
	return &Engine{ring: ring, delay: int64(delay)}
}

// TrackInput records the submission of the next input frame. The moment
// frame number delay arrives its start time becomes the DTS anchor and
// the engine calibrates, exactly once per session.
func (e *Engine) TrackInput(start int64) {
	if e.delay > 0 && e.inCount == e.delay {
		e.dtsDelay = start
		e.calibrated = true
	}
	e.inCount++
}

// Process assigns a decode timestamp to one produced packet and returns
// every packet ready for emission, in original arrival order. While the
// engine is uncalibrated it returns nil and holds the packet.
func (e *Engine) Process(pkt *ports.Packet) []*ports.Packet {
	if e.delay == 0 {
		pkt.DTS = pkt.PTS
		e.outCount++
		return []*ports.Packet{pkt}
	}

	e.buffered = append(e.buffered, pkt)
	if !e.calibrated {
		return nil
	}

	ready := e.buffered
	e.buffered = nil
	for _, p := range ready {
		// The Nth output's DTS comes from the ring entry for output
		// position N, not from the packet's own sequence: output order is
		// presentation order shifted left by delay.
		if e.outCount < e.delay {
			start, _ := e.ring.Lookup(e.outCount)
			p.DTS = start - e.dtsDelay
		} else {
			start, _ := e.ring.Lookup(e.outCount - e.delay)
			p.DTS = start
		}
		e.outCount++
	}
	return ready
}

// Calibrated reports whether the DTS anchor has been captured.
func (e *Engine) Calibrated() bool {
	return e.delay == 0 || e.calibrated
}

// DTSDelay returns the captured anchor, zero while uncalibrated.
func (e *Engine) DTSDelay() int64 {
	return e.dtsDelay
}

// Delay returns the reorder delay the engine was built with.
func (e *Engine) Delay() int {
	return int(e.delay)
}

// BufferedCount returns the number of packets held back awaiting
// calibration. It must be zero after a successful flush.
func (e *Engine) BufferedCount() int {
	return len(e.buffered)
}

// Stalled reports the fatal condition where end-of-input has been reached
// with packets still buffered and no calibration: the backend produced
// fewer frames than its declared delay, so no correct timestamps can ever
// be assigned.
func (e *Engine) Stalled() bool {
	return e.delay > 0 && !e.calibrated && len(e.buffered) > 0
}
