package ffmpegbackend

import (
	"encoding/binary"
	"fmt"

	"github.com/user/retime/pkg/ports"
)

const (
	ivfFileHeaderSize  = 32
	ivfFrameHeaderSize = 12
)

// parseIVF splits an IVF byte stream into packets. Frame numbers in the
// file become packet sequences directly; with a rawvideo input at a fixed
// rate, the IVF timestamp is the submission index.
func parseIVF(data []byte, codec Codec) ([]*ports.Packet, error) {
	if len(data) < ivfFileHeaderSize {
		return nil, fmt.Errorf("ffmpegbackend: IVF data truncated (%d bytes)", len(data))
	}
	if string(data[0:4]) != "DKIF" {
		return nil, fmt.Errorf("ffmpegbackend: not an IVF stream (signature %q)", data[0:4])
	}
	headerSize := int(binary.LittleEndian.Uint16(data[6:8]))
	if headerSize < ivfFileHeaderSize || headerSize > len(data) {
		return nil, fmt.Errorf("ffmpegbackend: bad IVF header size %d", headerSize)
	}

	var packets []*ports.Packet
	offset := headerSize
	for offset+ivfFrameHeaderSize <= len(data) {
		size := int(binary.LittleEndian.Uint32(data[offset : offset+4]))
		pts := int64(binary.LittleEndian.Uint64(data[offset+4 : offset+12]))
		offset += ivfFrameHeaderSize
		if offset+size > len(data) {
			return nil, fmt.Errorf("ffmpegbackend: IVF frame at %d exceeds stream", offset)
		}
		payload := data[offset : offset+size]
		offset += size

		packets = append(packets, &ports.Packet{
			Data:     append([]byte(nil), payload...),
			Sequence: pts,
			Keyframe: isKeyframe(payload, codec),
		})
	}
	return packets, nil
}

func isKeyframe(payload []byte, codec Codec) bool {
	if len(payload) == 0 {
		return false
	}
	if codec == CodecVP9 {
		return isVP9Keyframe(payload[0])
	}
	// VP8: bit 0 of the first byte is the inverse keyframe flag.
	return payload[0]&0x01 == 0
}

// isVP9Keyframe reads the start of the VP9 uncompressed header:
// frame_marker(2), profile_low(1), profile_high(1), show_existing_frame(1),
// frame_type(1). frame_type 0 means keyframe.
func isVP9Keyframe(b byte) bool {
	if b>>6 != 0x2 {
		return false
	}
	profile := (b>>5)&0x1 | (b>>3)&0x2
	shift := 3
	if profile == 3 {
		shift = 2 // one reserved bit after the profile
	}
	showExisting := (b >> shift) & 0x1
	if showExisting == 1 {
		return false
	}
	frameType := (b >> (shift - 1)) & 0x1
	return frameType == 0
}
