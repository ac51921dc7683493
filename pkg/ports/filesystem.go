package ports

import "io"

// FileSystem abstracts file system operations so tests can run without
// touching the disk.
type FileSystem interface {
	// ReadFile reads the entire contents of a file.
	ReadFile(path string) ([]byte, error)

	// WriteFile writes data to a file, creating it if necessary.
	WriteFile(path string, data []byte) error

	// AppendFile opens a file for appending, creating it if necessary.
	// Used by the pass-log accumulator, which writes many small fragments.
	AppendFile(path string) (io.WriteCloser, error)

	// MkdirAll creates a directory and all parent directories.
	MkdirAll(path string) error

	// Exists checks if a file or directory exists.
	Exists(path string) (bool, error)

	// Remove deletes a file or empty directory.
	Remove(path string) error
}
