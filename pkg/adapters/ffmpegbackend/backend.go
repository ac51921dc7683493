// Package ffmpegbackend implements the encoder backend port on top of an
// external ffmpeg process. Raw frames are piped to ffmpeg stdin and the
// compressed stream is read back from an IVF temp file once input ends.
//
// The libvpx encoders used here emit frames in presentation order, so the
// reported reorder delay is zero. Forced keyframes are approximated by the
// GOP cadence; per-frame keyframe requests cannot be passed through a
// rawvideo pipe.
package ffmpegbackend

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/user/retime/pkg/ports"
)

// Codec selects the libvpx variant driven through ffmpeg.
type Codec string

const (
	CodecVP8 Codec = "vp8"
	CodecVP9 Codec = "vp9"
)

// Backend implements ports.EncoderBackend using an ffmpeg subprocess.
type Backend struct {
	codec Codec

	mu          sync.Mutex
	ffmpegPath  string
	cfg         ports.BackendConfig
	cmd         *exec.Cmd
	stdin       io.WriteCloser
	stderr      bytes.Buffer
	tempPath    string
	passLogPath string
	initialized bool
	flushed     bool

	ready        []*ports.Packet
	statsPending []byte
}

// New creates an ffmpeg-backed encoder for the given codec.
func New(codec Codec) *Backend {
	if codec != CodecVP9 {
		codec = CodecVP8
	}
	return &Backend{codec: codec}
}

// Capabilities reports the supported option tables.
func (b *Backend) Capabilities() ports.BackendCaps {
	caps := ports.BackendCaps{
		Name:         "ffmpeg-" + string(b.codec),
		ReorderDelay: 0,
		Presets:      []string{"good", "best", "realtime"},
		PixelFormats: []ports.PixelFormat{ports.PixelFormatI420, ports.PixelFormatNV12},
	}
	if b.codec == CodecVP9 {
		caps.Profiles = []string{"0", "1", "2"}
	}
	return caps
}

// Init locates ffmpeg, prepares temp files and starts the subprocess.
func (b *Backend) Init(cfg ports.BackendConfig) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	ffmpegPath, err := FindFFmpeg()
	if err != nil {
		return err
	}
	b.ffmpegPath = ffmpegPath
	b.cfg = cfg
	b.flushed = false
	b.ready = nil
	b.statsPending = nil

	tmpFile, err := os.CreateTemp("", "retime_*.ivf")
	if err != nil {
		return fmt.Errorf("ffmpegbackend: failed to create temp file: %w", err)
	}
	b.tempPath = tmpFile.Name()
	tmpFile.Close()

	if cfg.Pass != ports.PassNone {
		logFile, err := os.CreateTemp("", "retime_passlog_*")
		if err != nil {
			os.Remove(b.tempPath)
			return fmt.Errorf("ffmpegbackend: failed to create pass log: %w", err)
		}
		b.passLogPath = logFile.Name()
		logFile.Close()
		os.Remove(b.passLogPath)

		if cfg.Pass == ports.PassSecond {
			if len(cfg.StatsIn) == 0 {
				os.Remove(b.tempPath)
				return ErrEmptyStats
			}
			// ffmpeg looks for <prefix>-0.log in two-pass mode.
			if err := os.WriteFile(b.passLogPath+"-0.log", cfg.StatsIn, 0644); err != nil {
				os.Remove(b.tempPath)
				return fmt.Errorf("ffmpegbackend: failed to write pass log: %w", err)
			}
		}
	}

	args := b.buildArgs(cfg)
	b.cmd = exec.Command(b.ffmpegPath, args...)
	b.stderr.Reset()
	b.cmd.Stderr = &b.stderr

	stdin, err := b.cmd.StdinPipe()
	if err != nil {
		b.cleanupFiles()
		return fmt.Errorf("ffmpegbackend: failed to get stdin pipe: %w", err)
	}
	b.stdin = stdin

	if err := b.cmd.Start(); err != nil {
		b.cleanupFiles()
		return fmt.Errorf("ffmpegbackend: failed to start ffmpeg: %w", err)
	}

	b.initialized = true
	return nil
}

func (b *Backend) buildArgs(cfg ports.BackendConfig) []string {
	inPixFmt := "yuv420p"
	if cfg.PixFmt == ports.PixelFormatNV12 {
		inPixFmt = "nv12"
	}
	codecName := "libvpx"
	if b.codec == CodecVP9 {
		codecName = "libvpx-vp9"
	}

	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pix_fmt", inPixFmt,
		"-s", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
		"-r", fmt.Sprintf("%d/%d", cfg.FPSNum, cfg.FPSDen),
		"-i", "pipe:0",
		"-c:v", codecName,
		"-g", fmt.Sprintf("%d", cfg.GOPSize),
	}

	if cfg.Preset != "" {
		args = append(args, "-deadline", cfg.Preset)
	}
	if b.codec == CodecVP9 && cfg.Profile != "" {
		args = append(args, "-profile:v", cfg.Profile)
	}

	if cfg.Bitrate > 0 {
		args = append(args, "-b:v", fmt.Sprintf("%d", cfg.Bitrate))
	} else {
		// Constant quality. libvpx expects -b:v 0 alongside -crf.
		crf := int(cfg.Quality)
		if crf < 0 {
			crf = 0
		}
		if crf > 63 {
			crf = 63
		}
		args = append(args, "-crf", fmt.Sprintf("%d", crf), "-b:v", "0")
	}

	switch cfg.Pass {
	case ports.PassFirst:
		args = append(args, "-pass", "1", "-passlogfile", b.passLogPath)
	case ports.PassSecond:
		args = append(args, "-pass", "2", "-passlogfile", b.passLogPath)
	}

	for key, value := range cfg.Options {
		args = append(args, "-"+key, value)
	}

	return append(args, "-f", "ivf", b.tempPath)
}

// SubmitFrame pipes one raw frame to ffmpeg.
func (b *Backend) SubmitFrame(frame ports.Frame, sequence int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.initialized || b.stdin == nil {
		return ErrNotInitialized
	}
	if b.flushed {
		return ErrFlushed
	}

	if err := b.writePlanes(frame); err != nil {
		return fmt.Errorf("ffmpegbackend: failed to write frame %d: %w", sequence, err)
	}
	return nil
}

// writePlanes streams the pixel planes row by row so padded strides never
// reach the rawvideo pipe.
func (b *Backend) writePlanes(frame ports.Frame) error {
	planeCount := 3
	if frame.PixFmt == ports.PixelFormatNV12 {
		planeCount = 2
	}
	for i := 0; i < planeCount; i++ {
		width := frame.Width
		height := frame.Height
		if i > 0 && frame.PixFmt == ports.PixelFormatI420 {
			width /= 2
			height /= 2
		} else if i > 0 {
			// NV12 interleaved chroma plane: full width, half height.
			height /= 2
		}
		stride := frame.Strides[i]
		plane := frame.Planes[i]
		if stride == width {
			if _, err := b.stdin.Write(plane[:width*height]); err != nil {
				return err
			}
			continue
		}
		for row := 0; row < height; row++ {
			if _, err := b.stdin.Write(plane[row*stride : row*stride+width]); err != nil {
				return err
			}
		}
	}
	return nil
}

// ReceivePacket returns the next parsed packet. Packets only become
// available after SignalEndOfInput; ffmpeg buffers internally until then.
func (b *Backend) ReceivePacket() (*ports.Packet, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.initialized {
		return nil, ErrNotInitialized
	}
	if len(b.ready) > 0 {
		pkt := b.ready[0]
		b.ready = b.ready[1:]
		return pkt, nil
	}
	if b.flushed {
		return nil, ports.ErrEndOfStream
	}
	return nil, ports.ErrNoPacket
}

// SignalEndOfInput closes the pipe, waits for ffmpeg and parses the IVF
// output into packets.
func (b *Backend) SignalEndOfInput() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.initialized || b.stdin == nil {
		return ErrNotInitialized
	}
	if b.flushed {
		return nil
	}

	b.stdin.Close()
	b.stdin = nil
	b.flushed = true

	if err := b.cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpegbackend: ffmpeg failed: %w\nstderr: %s", err, b.stderr.String())
	}

	data, err := os.ReadFile(b.tempPath)
	if err != nil {
		return fmt.Errorf("ffmpegbackend: failed to read output: %w", err)
	}
	packets, err := parseIVF(data, b.codec)
	if err != nil {
		return err
	}
	b.ready = packets

	if b.cfg.Pass == ports.PassFirst {
		stats, err := os.ReadFile(b.passLogPath + "-0.log")
		if err != nil {
			return fmt.Errorf("ffmpegbackend: failed to read pass log: %w", err)
		}
		b.statsPending = stats
	}
	return nil
}

// StatsOut returns the pending statistics fragment and clears it. The pass
// log is only readable after the process exits, so the fragment appears at
// end of input.
func (b *Backend) StatsOut() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := b.statsPending
	b.statsPending = nil
	return out
}

// Close kills a still-running process and removes temp files.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.stdin != nil {
		b.stdin.Close()
		b.stdin = nil
	}
	if b.cmd != nil && b.cmd.Process != nil && !b.flushed {
		b.cmd.Process.Kill()
		b.cmd.Wait()
	}
	b.cleanupFiles()
	b.initialized = false
	b.ready = nil
	return nil
}

func (b *Backend) cleanupFiles() {
	if b.tempPath != "" {
		os.Remove(b.tempPath)
		b.tempPath = ""
	}
	if b.passLogPath != "" {
		os.Remove(b.passLogPath + "-0.log")
		b.passLogPath = ""
	}
}

var _ ports.EncoderBackend = (*Backend)(nil)
