// Package mocks provides hand-rolled mock implementations of the ports
// interfaces for testing.
package mocks

import "github.com/user/retime/pkg/ports"

// EncoderBackend is a mock implementation of ports.EncoderBackend.
type EncoderBackend struct {
	InitFunc             func(cfg ports.BackendConfig) error
	CapabilitiesFunc     func() ports.BackendCaps
	SubmitFrameFunc      func(frame ports.Frame, sequence int64) error
	ReceivePacketFunc    func() (*ports.Packet, error)
	SignalEndOfInputFunc func() error
	StatsOutFunc         func() []byte
	CloseFunc            func() error

	// Recorded calls for verification
	InitCalled       bool
	InitConfig       ports.BackendConfig
	SubmitCalls      []SubmitCall
	EndOfInputCalled bool
	CloseCalls       int
}

// SubmitCall records a call to SubmitFrame.
type SubmitCall struct {
	Sequence      int64
	Start         int64
	ChapterStart  bool
	ForceKeyframe bool
}

func (m *EncoderBackend) Init(cfg ports.BackendConfig) error {
	m.InitCalled = true
	m.InitConfig = cfg
	if m.InitFunc != nil {
		return m.InitFunc(cfg)
	}
	return nil
}

func (m *EncoderBackend) Capabilities() ports.BackendCaps {
	if m.CapabilitiesFunc != nil {
		return m.CapabilitiesFunc()
	}
	return ports.BackendCaps{Name: "mock"}
}

func (m *EncoderBackend) SubmitFrame(frame ports.Frame, sequence int64) error {
	m.SubmitCalls = append(m.SubmitCalls, SubmitCall{
		Sequence:      sequence,
		Start:         frame.Start,
		ChapterStart:  frame.ChapterStart,
		ForceKeyframe: frame.ForceKeyframe,
	})
	if m.SubmitFrameFunc != nil {
		return m.SubmitFrameFunc(frame, sequence)
	}
	return nil
}

func (m *EncoderBackend) ReceivePacket() (*ports.Packet, error) {
	if m.ReceivePacketFunc != nil {
		return m.ReceivePacketFunc()
	}
	if m.EndOfInputCalled {
		return nil, ports.ErrEndOfStream
	}
	return nil, ports.ErrNoPacket
}

func (m *EncoderBackend) SignalEndOfInput() error {
	m.EndOfInputCalled = true
	if m.SignalEndOfInputFunc != nil {
		return m.SignalEndOfInputFunc()
	}
	return nil
}

func (m *EncoderBackend) StatsOut() []byte {
	if m.StatsOutFunc != nil {
		return m.StatsOutFunc()
	}
	return nil
}

func (m *EncoderBackend) Close() error {
	m.CloseCalls++
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

var _ ports.EncoderBackend = (*EncoderBackend)(nil)
