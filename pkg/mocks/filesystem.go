package mocks

import (
	"fmt"
	"io"

	"github.com/user/retime/pkg/ports"
)

// FileSystem is an in-memory mock implementation of ports.FileSystem.
type FileSystem struct {
	ReadFileFunc   func(path string) ([]byte, error)
	WriteFileFunc  func(path string, data []byte) error
	AppendFileFunc func(path string) (io.WriteCloser, error)

	// Files holds every written file by path.
	Files map[string][]byte
	Dirs  []string
}

func NewFileSystem() *FileSystem {
	return &FileSystem{Files: map[string][]byte{}}
}

func (m *FileSystem) ReadFile(path string) ([]byte, error) {
	if m.ReadFileFunc != nil {
		return m.ReadFileFunc(path)
	}
	data, ok := m.Files[path]
	if !ok {
		return nil, fmt.Errorf("mocks: file %s does not exist", path)
	}
	return data, nil
}

func (m *FileSystem) WriteFile(path string, data []byte) error {
	if m.WriteFileFunc != nil {
		return m.WriteFileFunc(path, data)
	}
	m.Files[path] = append([]byte(nil), data...)
	return nil
}

func (m *FileSystem) AppendFile(path string) (io.WriteCloser, error) {
	if m.AppendFileFunc != nil {
		return m.AppendFileFunc(path)
	}
	return &appendWriter{fs: m, path: path}, nil
}

func (m *FileSystem) MkdirAll(path string) error {
	m.Dirs = append(m.Dirs, path)
	return nil
}

func (m *FileSystem) Exists(path string) (bool, error) {
	_, ok := m.Files[path]
	return ok, nil
}

func (m *FileSystem) Remove(path string) error {
	if _, ok := m.Files[path]; !ok {
		return fmt.Errorf("mocks: file %s does not exist", path)
	}
	delete(m.Files, path)
	return nil
}

type appendWriter struct {
	fs   *FileSystem
	path string
}

func (w *appendWriter) Write(p []byte) (int, error) {
	w.fs.Files[w.path] = append(w.fs.Files[w.path], p...)
	return len(p), nil
}

func (w *appendWriter) Close() error { return nil }

var _ ports.FileSystem = (*FileSystem)(nil)
