// Package session owns one encoding session: it assigns frame sequence
// numbers, preserves per-frame timing across the backend's reorder window,
// rewrites decode timestamps on drained packets, correlates chapters with
// keyframes, and accumulates the two-pass statistics log.
//
// A session is single-caller: Submit and Flush must not be invoked
// concurrently. Independent sessions share no state and may run on
// separate goroutines without synchronization.
package session

import (
	"errors"
	"fmt"

	"github.com/user/retime/pkg/ports"
	"github.com/user/retime/pkg/reorder"
	"github.com/user/retime/pkg/timing"
)

type state int

const (
	stateOpen state = iota
	stateFlushed
	stateClosed
)

// Session drives one encoder backend from open to close.
type Session struct {
	cfg     Config
	backend ports.EncoderBackend
	log     ports.Logger
	stats   ports.StatsLog

	delay    int
	ring     *timing.Ring
	engine   *reorder.Engine
	chapters *reorder.ChapterQueue

	state   state
	seq     int64
	emitted int64
}

// Option configures a Session at open.
type Option func(*Session)

// WithLogger attaches a logger; the default discards everything.
func WithLogger(log ports.Logger) Option {
	return func(s *Session) { s.log = log }
}

// WithStatsLog attaches the two-pass statistics log. Required when
// Config.Pass is not PassNone.
func WithStatsLog(sl ports.StatsLog) Option {
	return func(s *Session) { s.stats = sl }
}

// Open validates the configuration against the backend's capabilities,
// reads the pass log for second passes, and initializes the backend. On
// any failure every partially acquired resource is released.
func Open(cfg Config, backend ports.EncoderBackend, opts ...Option) (*Session, error) {
	if backend == nil {
		return nil, fmt.Errorf("%w: nil backend", ErrConfig)
	}

	s := &Session{cfg: cfg, backend: backend}
	for _, o := range opts {
		o(s)
	}
	if s.log == nil {
		s.log = noopLogger{}
	}

	caps := backend.Capabilities()
	delay, err := validate(cfg, caps)
	if err != nil {
		s.closeStats()
		return nil, err
	}

	capacity := cfg.RingCapacity
	if capacity == 0 {
		capacity = timing.DefaultCapacity
	}
	ring, err := timing.NewRing(capacity)
	if err != nil {
		s.closeStats()
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}

	if cfg.Pass != ports.PassNone && s.stats == nil {
		return nil, fmt.Errorf("%w: pass %d requires a stats log", ErrConfig, cfg.Pass)
	}
	var statsIn []byte
	if cfg.Pass == ports.PassSecond {
		statsIn, err = s.stats.ReadAll()
		if err != nil {
			s.closeStats()
			return nil, fmt.Errorf("session: read pass log: %w", err)
		}
	}

	fpsNum, fpsDen := reduceRational(cfg.FPSNum, cfg.FPSDen)
	gopSeconds := cfg.GOPSeconds
	if gopSeconds == 0 {
		gopSeconds = DefaultGOPSeconds
	}
	gopSize := int(float64(fpsNum)/float64(fpsDen)*float64(gopSeconds) + 0.5)

	bc := ports.BackendConfig{
		Width:        cfg.Width,
		Height:       cfg.Height,
		PixFmt:       cfg.PixFmt,
		FPSNum:       fpsNum,
		FPSDen:       fpsDen,
		Timescale:    cfg.Timescale,
		Bitrate:      cfg.Bitrate,
		Quality:      cfg.Quality,
		QualityIntra: clampQuality(cfg.Quality, cfg.QualityOffsetIntra),
		QualityB:     clampQuality(cfg.Quality, cfg.QualityOffsetB),
		Profile:      cfg.Profile,
		Level:        cfg.Level,
		Preset:       cfg.Preset,
		GOPSize:      gopSize,
		Pass:         cfg.Pass,
		StatsIn:      statsIn,
		Options:      cfg.Options,
	}

	s.log.Info("Opening %s encoder: %dx%d at %d/%d fps", caps.Name, cfg.Width, cfg.Height, fpsNum, fpsDen)
	for k, v := range cfg.Options {
		s.log.Debug("Passing backend option %s=%s", k, v)
	}

	if err := backend.Init(bc); err != nil {
		backend.Close()
		s.closeStats()
		return nil, fmt.Errorf("session: open %s backend: %w", caps.Name, err)
	}

	s.delay = delay
	s.ring = ring
	s.engine = reorder.NewEngine(ring, delay)
	s.chapters = &reorder.ChapterQueue{}
	if delay > 0 {
		s.log.Debug("Reorder delay is %d frames, ring capacity %d", delay, capacity)
	}

	// Some backends write statistics during open already.
	s.appendStats()

	return s, nil
}

// Submit hands one frame to the backend and returns every packet that
// became emittable, zero or more. A backend rejection drops the frame and
// returns ErrEncode; the session stays usable.
func (s *Session) Submit(frame ports.Frame) ([]*ports.Packet, error) {
	switch s.state {
	case stateClosed:
		return nil, ErrNotOpen
	case stateFlushed:
		return nil, ErrFlushed
	}

	seq := s.seq
	s.seq++
	s.ring.Record(seq, frame.Start, frame.Duration)

	chapter := frame.ChapterStart && s.cfg.ChapterMarkers
	if chapter {
		// Chapters must begin on a self-contained frame.
		frame.ForceKeyframe = true
	}

	s.engine.TrackInput(frame.Start)

	if err := s.backend.SubmitFrame(frame, seq); err != nil {
		s.log.Error("Backend rejected frame %d: %s", seq, err)
		return nil, fmt.Errorf("%w: frame %d: %w", ErrEncode, seq, err)
	}

	if chapter {
		// Remember the sequence only once the frame is actually in the
		// encoder; a rejected frame never produces the keyframe its
		// chapter would bind to.
		s.chapters.Enqueue(seq)
		s.log.Debug("Chapter requested at frame %d", seq)
	}

	s.appendStats()
	return s.drain()
}

// Flush signals end-of-input and drains the backend completely. After a
// successful flush the internal buffer is empty; if the delay never
// calibrated, ErrStalled is returned instead of packets with undefined
// timestamps.
func (s *Session) Flush() ([]*ports.Packet, error) {
	switch s.state {
	case stateClosed:
		return nil, ErrNotOpen
	case stateFlushed:
		return nil, ErrFlushed
	}
	s.state = stateFlushed

	if err := s.backend.SignalEndOfInput(); err != nil {
		return nil, fmt.Errorf("session: signal end of input: %w", err)
	}

	// Some backends emit their statistics only at the final flush.
	s.appendStats()

	out, err := s.drain()
	if err != nil {
		return out, err
	}

	if s.engine.Stalled() {
		return nil, fmt.Errorf("%w: %d packets held, %d frames submitted, declared delay %d",
			ErrStalled, s.engine.BufferedCount(), s.seq, s.delay)
	}

	if n := s.chapters.Len(); n > 0 {
		s.log.Warn("Dropped %d chapter requests with no keyframe to attach to", n)
	}

	s.log.Info("Flushed: %d frames in, %d packets out", s.seq, s.emitted)
	return out, nil
}

// Close releases the backend and the pass-log file. Safe to call multiple
// times and at any point, including mid-stream.
func (s *Session) Close() error {
	if s.state == stateClosed {
		return nil
	}
	s.state = stateClosed

	var firstErr error
	if err := s.backend.Close(); err != nil {
		firstErr = fmt.Errorf("session: close backend: %w", err)
	}
	if err := s.closeStats(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("session: close pass log: %w", err)
	}
	return firstErr
}

// FramesSubmitted returns the number of frames accepted so far.
func (s *Session) FramesSubmitted() int64 {
	return s.seq
}

// PacketsEmitted returns the number of packets returned to the caller.
func (s *Session) PacketsEmitted() int64 {
	return s.emitted
}

// ReorderDelay returns the resolved reorder delay of this session.
func (s *Session) ReorderDelay() int {
	return s.delay
}

// drain pulls every currently-ready packet from the backend, stamps its
// presentation timing from the ring, resolves chapters on keyframes, and
// runs it through the delay engine. "No packet ready" is a normal,
// immediately-observable condition, not an error.
func (s *Session) drain() ([]*ports.Packet, error) {
	var out []*ports.Packet
	for {
		pkt, err := s.backend.ReceivePacket()
		if errors.Is(err, ports.ErrNoPacket) || errors.Is(err, ports.ErrEndOfStream) {
			return out, nil
		}
		if err != nil {
			// Best effort: log, drop the packet, keep draining.
			s.log.Error("Backend receive failed: %s", err)
			continue
		}

		start, dur := s.ring.Lookup(pkt.Sequence)
		pkt.PTS = start
		pkt.Duration = dur
		pkt.Chapter = -1
		if pkt.Keyframe {
			if chapterSeq, ok := s.chapters.DequeueForKeyframe(); ok {
				pkt.Chapter = chapterSeq
				s.log.Debug("Chapter from frame %d lands on keyframe packet %d", chapterSeq, pkt.Sequence)
			}
		}

		ready := s.engine.Process(pkt)
		s.emitted += int64(len(ready))
		out = append(out, ready...)
	}
}

// appendStats moves the backend's pending statistics fragment into the
// pass log during a first pass.
func (s *Session) appendStats() {
	if s.cfg.Pass != ports.PassFirst || s.stats == nil {
		return
	}
	frag := s.backend.StatsOut()
	if len(frag) == 0 {
		return
	}
	if err := s.stats.Append(frag); err != nil {
		s.log.Error("Failed to write pass log: %s", err)
	}
}

func (s *Session) closeStats() error {
	if s.stats == nil {
		return nil
	}
	return s.stats.Close()
}

// noopLogger is the default when no logger option is given.
type noopLogger struct{}

func (noopLogger) Debug(msg string, args ...interface{})       {}
func (noopLogger) Info(msg string, args ...interface{})        {}
func (noopLogger) Warn(msg string, args ...interface{})        {}
func (noopLogger) Error(msg string, args ...interface{})       {}
func (noopLogger) WithComponent(component string) ports.Logger { return noopLogger{} }
