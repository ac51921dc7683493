// Package summarizer provides summary generation for encode results.
package summarizer

import "time"

// Summary contains all data collected during an encode run.
type Summary struct {
	// Metadata
	GeneratedAt time.Time

	// Stream parameters
	Stream StreamInfo

	// Encoder settings
	Settings Settings

	// Reordering results
	Reorder ReorderInfo

	// Output file details
	Output OutputInfo
}

// StreamInfo describes the encoded picture and timing.
type StreamInfo struct {
	Width  int
	Height int
	FPSNum int
	FPSDen int
	Codec  string
}

// Settings contains the encoder configuration.
type Settings struct {
	Quality    float64
	Bitrate    int
	Preset     string
	GOPSeconds int
	TwoPass    bool
}

// ReorderInfo contains the timing-preservation counters of the run.
type ReorderInfo struct {
	Delay        int
	FramesIn     int64
	PacketsOut   int64
	FramesFailed int64
	ChapterCount int
}

// OutputInfo contains information about the output file.
type OutputInfo struct {
	Path     string
	FileSize int64
}

// NewSummary creates a new Summary with the current timestamp.
func NewSummary() *Summary {
	return &Summary{
		GeneratedAt: time.Now(),
	}
}

// Builder provides a fluent interface for building a Summary.
type Builder struct {
	summary *Summary
}

// NewBuilder creates a new Builder.
func NewBuilder() *Builder {
	return &Builder{
		summary: NewSummary(),
	}
}

// WithStream sets the stream parameters.
func (b *Builder) WithStream(stream StreamInfo) *Builder {
	b.summary.Stream = stream
	return b
}

// WithSettings sets the encoder settings.
func (b *Builder) WithSettings(settings Settings) *Builder {
	b.summary.Settings = settings
	return b
}

// WithReorder sets the reordering results.
func (b *Builder) WithReorder(reorder ReorderInfo) *Builder {
	b.summary.Reorder = reorder
	return b
}

// WithOutput sets the output file details.
func (b *Builder) WithOutput(output OutputInfo) *Builder {
	b.summary.Output = output
	return b
}

// Build returns the constructed Summary.
func (b *Builder) Build() *Summary {
	return b.summary
}
