// Package statsfile implements the two-pass statistics log as a single
// file on a ports.FileSystem. Pass one appends opaque fragments in
// submission order; pass two reads the whole file once. The contents are
// backend-produced text and are never parsed here.
package statsfile

import (
	"fmt"
	"io"

	"github.com/user/retime/pkg/ports"
)

// Log implements ports.StatsLog over one file path.
type Log struct {
	fs   ports.FileSystem
	path string

	w      io.WriteCloser
	closed bool
}

// New creates a stats log at the given path. The file is only opened
// lazily: on the first Append for a first pass, or on ReadAll for a
// second pass. The first Append truncates whatever a previous run left
// at the same path.
func New(fs ports.FileSystem, path string) *Log {
	return &Log{fs: fs, path: path}
}

// Path returns the log file location.
func (l *Log) Path() string {
	return l.path
}

// Append writes one statistics fragment during pass one.
func (l *Log) Append(fragment []byte) error {
	if l.closed {
		return fmt.Errorf("statsfile: log %s is closed", l.path)
	}
	if l.w == nil {
		// A fresh first pass starts an empty log; stats from an earlier
		// run over the same path must not leak into this one.
		if err := l.fs.WriteFile(l.path, nil); err != nil {
			return fmt.Errorf("statsfile: truncate %s: %w", l.path, err)
		}
		w, err := l.fs.AppendFile(l.path)
		if err != nil {
			return fmt.Errorf("statsfile: open %s: %w", l.path, err)
		}
		l.w = w
	}
	if _, err := l.w.Write(fragment); err != nil {
		return fmt.Errorf("statsfile: write %s: %w", l.path, err)
	}
	return nil
}

// ReadAll returns the entire accumulated blob for pass two.
func (l *Log) ReadAll() ([]byte, error) {
	data, err := l.fs.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("statsfile: read %s: %w", l.path, err)
	}
	return data, nil
}

// Close releases the underlying file. Safe to call multiple times.
func (l *Log) Close() error {
	if l.closed {
		return nil
	}
	l.closed = true
	if l.w == nil {
		return nil
	}
	w := l.w
	l.w = nil
	return w.Close()
}

var _ ports.StatsLog = (*Log)(nil)
