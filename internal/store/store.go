package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a record cannot be found by ID.
var ErrNotFound = errors.New("record not found")

// Store defines the interface for record persistence.
// Each Mark* method applies one stage transition as a single atomic
// write: flag, payload, and timestamp together, so a crash never leaves
// a flag set without its payload.
type Store interface {
	// Get retrieves a record by its identifier.
	// Returns ErrNotFound if the record does not exist.
	Get(ctx context.Context, id string) (*Record, error)

	// CreateIfAbsent persists a new record unless one already exists
	// for the same ID, in which case it is a no-op.
	CreateIfAbsent(ctx context.Context, rec *Record) error

	// MarkAudioExtracted records completion of the download and
	// audio-extraction stages together with the audio artifact path.
	MarkAudioExtracted(ctx context.Context, id, audioPath string) error

	// MarkTranscribed records completion of the transcription stage
	// together with the transcript text.
	MarkTranscribed(ctx context.Context, id, text string) error

	// SaveGeneratedHTML persists the generated HTML and its file path
	// without completing the stage. Used when rendering failed so a
	// later pass retries while the HTML artifact is preserved.
	SaveGeneratedHTML(ctx context.Context, id, html, htmlPath string) error

	// MarkDocumentGenerated records completion of the document stage
	// together with the HTML, HTML path, and PDF path.
	MarkDocumentGenerated(ctx context.Context, id, html, htmlPath, pdfPath string) error

	// List returns all records.
	List(ctx context.Context) ([]*Record, error)
}
