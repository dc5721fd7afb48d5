package store

import (
	"context"
	"sync"
	"time"
)

// Compile-time check that MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)

// MemoryStore is an in-memory implementation of Store.
// It uses a map with RWMutex for thread-safe access.
// Suitable for development and testing; production uses SQLiteStore.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*Record
	// now is injectable for deterministic timestamps in tests.
	now func() time.Time
}

// NewMemoryStore creates a new in-memory record store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*Record),
		now:     time.Now,
	}
}

// Get retrieves a record by ID.
// Returns a clone to prevent external mutations.
func (s *MemoryStore) Get(_ context.Context, id string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return rec.Clone(), nil
}

// CreateIfAbsent persists a new record unless one already exists.
func (s *MemoryStore) CreateIfAbsent(_ context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[rec.ID]; ok {
		return nil
	}
	clone := rec.Clone()
	now := s.now()
	if clone.CreatedAt.IsZero() {
		clone.CreatedAt = now
	}
	clone.LastUpdated = now
	s.records[rec.ID] = clone
	return nil
}

// MarkAudioExtracted records the download and extraction stages as done.
func (s *MemoryStore) MarkAudioExtracted(_ context.Context, id, audioPath string) error {
	return s.update(id, func(rec *Record) {
		rec.Downloaded = true
		rec.AudioExtracted = true
		rec.AudioPath = audioPath
	})
}

// MarkTranscribed records the transcription stage as done.
func (s *MemoryStore) MarkTranscribed(_ context.Context, id, text string) error {
	return s.update(id, func(rec *Record) {
		rec.Transcribed = true
		rec.TranscriptionText = text
	})
}

// SaveGeneratedHTML persists the HTML artifact without completing the stage.
func (s *MemoryStore) SaveGeneratedHTML(_ context.Context, id, html, htmlPath string) error {
	return s.update(id, func(rec *Record) {
		rec.GeneratedHTML = html
		rec.HTMLPath = htmlPath
	})
}

// MarkDocumentGenerated records the document stage as done.
func (s *MemoryStore) MarkDocumentGenerated(_ context.Context, id, html, htmlPath, pdfPath string) error {
	return s.update(id, func(rec *Record) {
		rec.DocumentGenerated = true
		rec.GeneratedHTML = html
		rec.HTMLPath = htmlPath
		rec.PDFPath = pdfPath
	})
}

// List returns all records as clones.
func (s *MemoryStore) List(_ context.Context) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*Record, 0, len(s.records))
	for _, rec := range s.records {
		result = append(result, rec.Clone())
	}
	return result, nil
}

func (s *MemoryStore) update(id string, apply func(*Record)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return ErrNotFound
	}
	apply(rec)
	rec.LastUpdated = s.now()
	return nil
}
