package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "videos.db"))
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStore_CreateAndGet(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	rec := &Record{
		ID:       "v1",
		Name:     "meeting.mp4",
		MimeType: "video/mp4",
		ViewLink: "https://drive.google.com/file/d/v1/view",
	}
	if err := s.CreateIfAbsent(ctx, rec); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := s.Get(ctx, "v1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "meeting.mp4" || got.MimeType != "video/mp4" || got.ViewLink != rec.ViewLink {
		t.Errorf("record fields not persisted: %+v", got)
	}
	if got.Downloaded || got.AudioExtracted || got.Transcribed || got.DocumentGenerated {
		t.Error("new record must start with all stage flags unset")
	}
	if got.CreatedAt.IsZero() || got.LastUpdated.IsZero() {
		t.Error("expected timestamps set on creation")
	}
}

func TestSQLiteStore_GetNotFound(t *testing.T) {
	s := newTestSQLiteStore(t)
	_, err := s.Get(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteStore_CreateIfAbsent_Idempotent(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	if err := s.CreateIfAbsent(ctx, &Record{ID: "v1", Name: "original.mp4"}); err != nil {
		t.Fatal(err)
	}
	if err := s.MarkAudioExtracted(ctx, "v1", "a.wav"); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateIfAbsent(ctx, &Record{ID: "v1", Name: "renamed.mp4"}); err != nil {
		t.Fatal(err)
	}

	got, _ := s.Get(ctx, "v1")
	if got.Name != "original.mp4" {
		t.Errorf("existing record was overwritten: %q", got.Name)
	}
	if !got.AudioExtracted {
		t.Error("existing record lost its stage progress")
	}
}

func TestSQLiteStore_StageTransitions(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()
	if err := s.CreateIfAbsent(ctx, &Record{ID: "v1", Name: "m.mp4"}); err != nil {
		t.Fatal(err)
	}

	if err := s.MarkAudioExtracted(ctx, "v1", "audios/m.wav"); err != nil {
		t.Fatal(err)
	}
	got, _ := s.Get(ctx, "v1")
	if !got.Downloaded || !got.AudioExtracted || got.AudioPath != "audios/m.wav" {
		t.Errorf("extraction stage not persisted atomically: %+v", got)
	}

	if err := s.MarkTranscribed(ctx, "v1", "hello world"); err != nil {
		t.Fatal(err)
	}
	got, _ = s.Get(ctx, "v1")
	if !got.Transcribed || got.TranscriptionText != "hello world" {
		t.Errorf("transcription stage not persisted atomically: %+v", got)
	}

	if err := s.MarkDocumentGenerated(ctx, "v1", "<html></html>", "m.html", "m.pdf"); err != nil {
		t.Fatal(err)
	}
	got, _ = s.Get(ctx, "v1")
	if !got.DocumentGenerated || got.GeneratedHTML != "<html></html>" || got.HTMLPath != "m.html" || got.PDFPath != "m.pdf" {
		t.Errorf("document stage not persisted atomically: %+v", got)
	}
}

func TestSQLiteStore_SaveGeneratedHTML_KeepsFlagUnset(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()
	if err := s.CreateIfAbsent(ctx, &Record{ID: "v1", Name: "m.mp4"}); err != nil {
		t.Fatal(err)
	}

	if err := s.SaveGeneratedHTML(ctx, "v1", "<p>partial</p>", "v1.html"); err != nil {
		t.Fatal(err)
	}
	got, _ := s.Get(ctx, "v1")
	if got.DocumentGenerated {
		t.Error("SaveGeneratedHTML must not set document_generated")
	}
	if got.GeneratedHTML != "<p>partial</p>" || got.HTMLPath != "v1.html" {
		t.Errorf("html payload not persisted: %+v", got)
	}
}

func TestSQLiteStore_UpdateMissingRecord(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	if err := s.MarkAudioExtracted(ctx, "missing", "a.wav"); !errors.Is(err, ErrNotFound) {
		t.Errorf("MarkAudioExtracted: expected ErrNotFound, got %v", err)
	}
	if err := s.MarkTranscribed(ctx, "missing", "t"); !errors.Is(err, ErrNotFound) {
		t.Errorf("MarkTranscribed: expected ErrNotFound, got %v", err)
	}
	if err := s.SaveGeneratedHTML(ctx, "missing", "h", "h.html"); !errors.Is(err, ErrNotFound) {
		t.Errorf("SaveGeneratedHTML: expected ErrNotFound, got %v", err)
	}
	if err := s.MarkDocumentGenerated(ctx, "missing", "h", "h.html", "p.pdf"); !errors.Is(err, ErrNotFound) {
		t.Errorf("MarkDocumentGenerated: expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteStore_List(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		if err := s.CreateIfAbsent(ctx, &Record{ID: id, Name: id + ".mp4"}); err != nil {
			t.Fatal(err)
		}
	}

	records, err := s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "videos.db")
	ctx := context.Background()

	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.CreateIfAbsent(ctx, &Record{ID: "v1", Name: "m.mp4"}); err != nil {
		t.Fatal(err)
	}
	if err := s.MarkTranscribed(ctx, "v1", "persisted"); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = reopened.Close() }()

	got, err := reopened.Get(ctx, "v1")
	if err != nil {
		t.Fatal(err)
	}
	if !got.Transcribed || got.TranscriptionText != "persisted" {
		t.Errorf("state lost across reopen: %+v", got)
	}
}
