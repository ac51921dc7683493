package mocks

import (
	"io"

	"github.com/user/retime/pkg/ports"
)

// FrameSource is a mock implementation of ports.FrameSource that serves a
// fixed slice of frames.
type FrameSource struct {
	Frames []ports.Frame

	next int
}

func (m *FrameSource) NextFrame() (ports.Frame, error) {
	if m.next >= len(m.Frames) {
		return ports.Frame{}, io.EOF
	}
	f := m.Frames[m.next]
	m.next++
	return f, nil
}

func (m *FrameSource) FrameCount() int {
	return len(m.Frames)
}

var _ ports.FrameSource = (*FrameSource)(nil)
