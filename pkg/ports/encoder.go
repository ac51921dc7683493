package ports

import "errors"

// Sentinel results for EncoderBackend.ReceivePacket. Neither is a failure:
// ErrNoPacket means the backend is still holding frames internally, and
// ErrEndOfStream means the backend has emitted everything it ever will.
var (
	ErrNoPacket    = errors.New("ports: no packet ready")
	ErrEndOfStream = errors.New("ports: end of stream")
)

// PixelFormat identifies the raw plane layout of a submitted frame.
type PixelFormat int

const (
	// PixelFormatI420 is planar YUV 4:2:0, three planes.
	PixelFormatI420 PixelFormat = iota
	// PixelFormatNV12 is semi-planar YUV 4:2:0, luma plane plus
	// interleaved chroma plane.
	PixelFormatNV12
)

// String returns the conventional name of the pixel format.
func (f PixelFormat) String() string {
	switch f {
	case PixelFormatI420:
		return "yuv420p"
	case PixelFormatNV12:
		return "nv12"
	default:
		return "unknown"
	}
}

// Pass identifies the two-pass encoding phase of a session.
type Pass int

const (
	// PassNone is a single-pass encode.
	PassNone Pass = iota
	// PassFirst gathers rate-control statistics without producing usable output.
	PassFirst
	// PassSecond consumes statistics gathered by a first pass.
	PassSecond
)

// Frame is a single raw picture in presentation order. The pixel planes are
// opaque to the reordering core; only the timing fields, ChapterStart and
// ForceKeyframe are interpreted.
type Frame struct {
	Planes  [3][]byte
	Strides [3]int
	Width   int
	Height  int
	PixFmt  PixelFormat

	// Start and Duration are in timescale ticks (see BackendConfig.Timescale).
	Start    int64
	Duration int64

	// ChapterStart requests a chapter boundary at this frame. The session
	// forces a keyframe so the chapter lands on a self-contained picture.
	ChapterStart bool

	// ForceKeyframe asks the backend to code this frame as a keyframe.
	ForceKeyframe bool
}

// Packet is one encoded access unit produced by a backend.
//
// Sequence identifies the originating Frame (the presentation index the
// session tagged the frame with at submission). PTS, DTS, Duration and
// Chapter are filled in by the session as the packet is drained; backends
// leave them zero.
type Packet struct {
	Data     []byte
	Sequence int64
	Keyframe bool

	PTS      int64
	DTS      int64
	Duration int64

	// Chapter is the sequence number of the frame that requested the
	// chapter stamped onto this keyframe, or -1 when none.
	Chapter int64
}

// BackendConfig carries the translated, validated options an encoder
// backend is opened with.
type BackendConfig struct {
	Width  int
	Height int
	PixFmt PixelFormat

	// FPSNum/FPSDen is the (reduced) source frame rate. Timescale is the
	// unit of all Start/Duration/PTS/DTS values, ticks per second.
	FPSNum    int
	FPSDen    int
	Timescale int

	// Bitrate in kbps. Zero selects constant-quality mode using Quality,
	// QualityIntra and QualityB (already offset and clamped by the session).
	Bitrate      int
	Quality      float64
	QualityIntra float64
	QualityB     float64

	Profile string
	Level   string
	Preset  string

	// GOPSize is the keyframe interval in frames.
	GOPSize int

	Pass Pass
	// StatsIn is the entire pass-one statistics blob, handed to the backend
	// before the first frame of a second pass. Opaque to the core.
	StatsIn []byte

	// Options are backend-specific knobs passed through untranslated.
	// Backends ignore entries they do not recognize.
	Options map[string]string
}

// BackendCaps describes what a concrete backend variant supports. The
// session validates configuration against these tables at open; an empty
// list means the backend accepts any value for that option.
type BackendCaps struct {
	Name string

	// ReorderDelay is the number of frames the backend may hold before its
	// first output, caused by bidirectional prediction. Zero means output
	// order always matches input order.
	ReorderDelay int

	Profiles     []string
	Levels       []string
	Presets      []string
	PixelFormats []PixelFormat
}

// EncoderBackend abstracts one concrete encoder variant for the duration
// of a session. Implementations are not safe for concurrent use; the
// owning session serializes all calls.
//
// After SignalEndOfInput, ReceivePacket returns remaining packets followed
// by ErrEndOfStream and never ErrNoPacket.
type EncoderBackend interface {
	// Init opens the backend with translated options. A backend that fails
	// Init must not hold resources afterwards.
	Init(cfg BackendConfig) error

	// Capabilities reports the backend's supported option sets and reorder
	// delay. Valid before Init.
	Capabilities() BackendCaps

	// SubmitFrame hands one raw frame to the backend, tagged with the
	// opaque sequence number to be echoed on the resulting packet.
	SubmitFrame(frame Frame, sequence int64) error

	// ReceivePacket returns the next encoded packet, ErrNoPacket if none is
	// ready yet, or ErrEndOfStream once fully drained after end-of-input.
	ReceivePacket() (*Packet, error)

	// SignalEndOfInput tells the backend no further frames will arrive.
	SignalEndOfInput() error

	// StatsOut returns the rate-control statistics fragment accumulated
	// since the previous call, or nil. Only meaningful during a first pass.
	StatsOut() []byte

	// Close releases backend resources. Safe to call multiple times and
	// after a failed Init.
	Close() error
}
