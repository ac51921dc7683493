package ffmpegbackend

import (
	"encoding/binary"
	"testing"
)

func buildIVF(frames ...[]byte) []byte {
	data := make([]byte, ivfFileHeaderSize)
	copy(data[0:4], "DKIF")
	binary.LittleEndian.PutUint16(data[6:8], ivfFileHeaderSize)
	copy(data[8:12], "VP80")
	binary.LittleEndian.PutUint16(data[12:14], 64)
	binary.LittleEndian.PutUint16(data[14:16], 48)
	binary.LittleEndian.PutUint32(data[16:20], 30)
	binary.LittleEndian.PutUint32(data[20:24], 1)
	binary.LittleEndian.PutUint32(data[24:28], uint32(len(frames)))

	for i, frame := range frames {
		header := make([]byte, ivfFrameHeaderSize)
		binary.LittleEndian.PutUint32(header[0:4], uint32(len(frame)))
		binary.LittleEndian.PutUint64(header[4:12], uint64(i))
		data = append(data, header...)
		data = append(data, frame...)
	}
	return data
}

func TestParseIVF(t *testing.T) {
	// VP8 first-byte bit 0: 0 = keyframe, 1 = interframe.
	key := []byte{0x00, 0xaa, 0xbb}
	inter := []byte{0x01, 0xcc}

	packets, err := parseIVF(buildIVF(key, inter, inter), CodecVP8)
	if err != nil {
		t.Fatalf("parseIVF: %v", err)
	}
	if len(packets) != 3 {
		t.Fatalf("parsed %d packets, want 3", len(packets))
	}
	for i, pkt := range packets {
		if pkt.Sequence != int64(i) {
			t.Errorf("packet %d sequence = %d, want %d", i, pkt.Sequence, i)
		}
	}
	if !packets[0].Keyframe {
		t.Error("first packet not marked keyframe")
	}
	if packets[1].Keyframe || packets[2].Keyframe {
		t.Error("interframes marked as keyframes")
	}
	if len(packets[0].Data) != len(key) {
		t.Errorf("payload length = %d, want %d", len(packets[0].Data), len(key))
	}
}

func TestParseIVF_Malformed(t *testing.T) {
	if _, err := parseIVF([]byte("short"), CodecVP8); err == nil {
		t.Error("truncated stream accepted")
	}
	bad := buildIVF([]byte{0x00})
	copy(bad[0:4], "XXXX")
	if _, err := parseIVF(bad, CodecVP8); err == nil {
		t.Error("bad signature accepted")
	}

	truncated := buildIVF([]byte{0x00, 0x01, 0x02})
	truncated = truncated[:len(truncated)-2]
	if _, err := parseIVF(truncated, CodecVP8); err == nil {
		t.Error("truncated frame payload accepted")
	}
}

func TestIsVP9Keyframe(t *testing.T) {
	cases := []struct {
		name string
		b    byte
		want bool
	}{
		// marker=10, profile=0, show_existing=0, frame_type=0
		{"profile0 keyframe", 0x80, true},
		// marker=10, profile=0, show_existing=0, frame_type=1
		{"profile0 interframe", 0x84, false},
		// marker=10, profile=0, show_existing=1
		{"show existing", 0x88, false},
		{"bad marker", 0x00, false},
	}
	for _, tc := range cases {
		if got := isVP9Keyframe(tc.b); got != tc.want {
			t.Errorf("%s: isVP9Keyframe(%#x) = %v, want %v", tc.name, tc.b, got, tc.want)
		}
	}
}
