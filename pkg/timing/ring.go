// Package timing preserves per-frame timing across an encoder's reorder
// window. Frames are uniquely identified by their sequence number, so the
// ring uses it as an index: slot sequence & (capacity-1).
package timing

import "fmt"

// DefaultCapacity is sized so two frames can never share a slot during the
// largest reorder delay common video standards allow (16 frames).
const DefaultCapacity = 32

// Record holds the original presentation timing of one submitted frame.
type Record struct {
	Start    int64
	Duration int64
}

// Ring is a fixed-capacity mapping from frame sequence number to that
// frame's original start time and duration.
//
// There is no failure mode: Record overwrites unconditionally and Lookup
// of an evicted sequence returns whatever newer record occupies the slot.
// Callers must size the ring to at least twice the encoder's reorder
// delay; the session validates that invariant at open.
type Ring struct {
	records []Record
	mask    int64
}

// NewRing creates a ring with the given capacity, which must be a power
// of two and at least 2.
func NewRing(capacity int) (*Ring, error) {
	if capacity < 2 || capacity&(capacity-1) != 0 {
		return nil, fmt.Errorf("timing: capacity %d is not a power of two >= 2", capacity)
	}
	return &Ring{
		records: make([]Record, capacity),
		mask:    int64(capacity - 1),
	}, nil
}

// Capacity returns the number of slots.
func (r *Ring) Capacity() int {
	return len(r.records)
}

// Record stores the timing of the frame with the given sequence number.
func (r *Ring) Record(sequence, start, duration int64) {
	r.records[sequence&r.mask] = Record{Start: start, Duration: duration}
}

// Lookup returns the timing last recorded for the given sequence number.
func (r *Ring) Lookup(sequence int64) (start, duration int64) {
	rec := r.records[sequence&r.mask]
	return rec.Start, rec.Duration
}
