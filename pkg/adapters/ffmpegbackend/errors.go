package ffmpegbackend

import "errors"

var (
	// ErrFFmpegNotFound is returned when no ffmpeg binary can be located.
	ErrFFmpegNotFound = errors.New("ffmpegbackend: ffmpeg not found")

	// ErrNotInitialized is returned when backend methods are called before Init.
	ErrNotInitialized = errors.New("ffmpegbackend: backend not initialized")

	// ErrFlushed is returned when a frame is submitted after end-of-input.
	ErrFlushed = errors.New("ffmpegbackend: end of input already signaled")

	// ErrEmptyStats is returned by Init for a second pass without pass-one data.
	ErrEmptyStats = errors.New("ffmpegbackend: second pass requires pass-one statistics")
)
