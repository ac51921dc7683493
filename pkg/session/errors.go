package session

import "errors"

var (
	// ErrConfig is returned by Open for invalid or unsupported
	// configuration: resolution, pixel format, profile, level, preset, or
	// ring capacity.
	ErrConfig = errors.New("session: invalid configuration")

	// ErrNotOpen is returned when Submit or Flush is called on a session
	// that is closed.
	ErrNotOpen = errors.New("session: session is not open")

	// ErrFlushed is returned when Submit is called after Flush.
	ErrFlushed = errors.New("session: session already flushed")

	// ErrEncode is returned when the backend rejects a submitted frame.
	// The frame is dropped and the session remains usable.
	ErrEncode = errors.New("session: encode failed")

	// ErrStalled is returned by Flush when the reorder delay never
	// calibrated: the backend produced fewer frames than its declared
	// delay, so buffered packets can never be assigned correct timestamps.
	ErrStalled = errors.New("session: reorder delay never calibrated")
)
