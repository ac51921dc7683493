package ports

// FrameSource supplies raw frames in presentation order.
type FrameSource interface {
	// NextFrame returns the next frame, or io.EOF when the source is
	// exhausted.
	NextFrame() (Frame, error)

	// FrameCount returns the total number of frames the source will
	// produce, or -1 when unknown in advance.
	FrameCount() int
}
