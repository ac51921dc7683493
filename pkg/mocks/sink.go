package mocks

import "github.com/user/retime/pkg/ports"

// PacketSink is a mock implementation of ports.PacketSink.
type PacketSink struct {
	WriteHeaderFunc func(info ports.StreamInfo) error
	WritePacketFunc func(pkt *ports.Packet) error
	FinalizeFunc    func() ([]byte, error)

	// Recorded calls for verification
	HeaderInfo     ports.StreamInfo
	HeaderWritten  bool
	Packets        []*ports.Packet
	FinalizeCalled bool
}

func (m *PacketSink) WriteHeader(info ports.StreamInfo) error {
	m.HeaderWritten = true
	m.HeaderInfo = info
	if m.WriteHeaderFunc != nil {
		return m.WriteHeaderFunc(info)
	}
	return nil
}

func (m *PacketSink) WritePacket(pkt *ports.Packet) error {
	m.Packets = append(m.Packets, pkt)
	if m.WritePacketFunc != nil {
		return m.WritePacketFunc(pkt)
	}
	return nil
}

func (m *PacketSink) Finalize() ([]byte, error) {
	m.FinalizeCalled = true
	if m.FinalizeFunc != nil {
		return m.FinalizeFunc()
	}
	return []byte{}, nil
}

var _ ports.PacketSink = (*PacketSink)(nil)
