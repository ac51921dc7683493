package ports

// StreamInfo describes the encoded stream a PacketSink is about to receive.
type StreamInfo struct {
	Codec     string // "vp8", "vp9", "av1", "null"
	Width     int
	Height    int
	Timescale uint32
}

// PacketSink receives emitted packets in decode order and assembles them
// into a container or other destination.
type PacketSink interface {
	// WriteHeader is called once, before the first packet.
	WriteHeader(info StreamInfo) error

	// WritePacket appends one packet. Packets arrive with PTS, DTS and
	// Duration already assigned; DTS is non-decreasing.
	WritePacket(pkt *Packet) error

	// Finalize completes the container and returns its bytes.
	Finalize() ([]byte, error)
}
