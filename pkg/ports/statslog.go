package ports

// StatsLog accumulates opaque, backend-produced rate-control statistics
// across the two passes of a two-pass encode. The contents are never
// parsed by the core: pass one appends fragments in submission order,
// pass two reads the whole accumulated blob once before the first frame.
type StatsLog interface {
	// Append writes one statistics fragment during pass one.
	Append(fragment []byte) error

	// ReadAll returns the entire accumulated blob for pass two.
	ReadAll() ([]byte, error)

	// Close releases the underlying file. Safe to call multiple times.
	Close() error
}
