// Package store provides durable per-video metadata records.
// It defines the Store interface (port) and implementations backed by
// SQLite and by memory for tests.
package store

import "time"

// Record is the persisted state document for one source video.
// Stage flags only ever progress forward; a later flag is never true
// while an earlier one is false.
type Record struct {
	// ID is the stable identifier assigned by the item source.
	ID string
	// Name is the display name from the source. Not guaranteed unique
	// or filesystem-safe.
	Name string
	// MimeType is the reported content type of the source file.
	MimeType string
	// ViewLink is the source's browser URL for the file.
	ViewLink string

	// Downloaded is true once the video artifact has been fetched locally.
	Downloaded bool
	// AudioExtracted is true once the audio artifact has been produced.
	AudioExtracted bool
	// Transcribed is true once TranscriptionText has been persisted.
	Transcribed bool
	// DocumentGenerated is true once the HTML document was generated
	// and rendered to PDF.
	DocumentGenerated bool

	// Summarized and Sent are carried for compatibility with older
	// records; the pipeline never sets them.
	Summarized bool
	Sent       bool

	// TranscriptionText holds the transcript, non-empty whenever
	// Transcribed is true.
	TranscriptionText string
	// AudioPath is the local path of the extracted audio artifact.
	AudioPath string
	// GeneratedHTML is the document generator's output.
	GeneratedHTML string
	// HTMLPath and PDFPath are the local document artifact paths.
	HTMLPath string
	PDFPath  string

	// CreatedAt is when the record was first created.
	CreatedAt time.Time
	// LastUpdated is set on every mutation.
	LastUpdated time.Time
}

// Clone creates a copy of the record for safe reads.
func (r *Record) Clone() *Record {
	clone := *r
	return &clone
}
