package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Compile-time check that SQLiteStore implements Store.
var _ Store = (*SQLiteStore)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS videos (
	id                 TEXT PRIMARY KEY,
	name               TEXT NOT NULL,
	mime_type          TEXT NOT NULL DEFAULT '',
	view_link          TEXT NOT NULL DEFAULT '',
	downloaded         INTEGER NOT NULL DEFAULT 0,
	audio_extracted    INTEGER NOT NULL DEFAULT 0,
	transcribed        INTEGER NOT NULL DEFAULT 0,
	document_generated INTEGER NOT NULL DEFAULT 0,
	summarized         INTEGER NOT NULL DEFAULT 0,
	sent               INTEGER NOT NULL DEFAULT 0,
	transcription_text TEXT NOT NULL DEFAULT '',
	audio_path         TEXT NOT NULL DEFAULT '',
	generated_html     TEXT NOT NULL DEFAULT '',
	html_path          TEXT NOT NULL DEFAULT '',
	pdf_path           TEXT NOT NULL DEFAULT '',
	created_at         TIMESTAMP NOT NULL,
	last_updated       TIMESTAMP NOT NULL
);
`

// SQLiteStore is a Store backed by a SQLite database file.
// A single connection with WAL journaling keeps each stage transition
// a single atomic UPDATE statement.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at dbPath and applies
// the schema. The parent directory is created if missing.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("execute %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Get retrieves a record by ID.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, mime_type, view_link,
		       downloaded, audio_extracted, transcribed, document_generated,
		       summarized, sent,
		       transcription_text, audio_path, generated_html, html_path, pdf_path,
		       created_at, last_updated
		FROM videos WHERE id = ?`, id)

	rec := &Record{}
	err := row.Scan(
		&rec.ID, &rec.Name, &rec.MimeType, &rec.ViewLink,
		&rec.Downloaded, &rec.AudioExtracted, &rec.Transcribed, &rec.DocumentGenerated,
		&rec.Summarized, &rec.Sent,
		&rec.TranscriptionText, &rec.AudioPath, &rec.GeneratedHTML, &rec.HTMLPath, &rec.PDFPath,
		&rec.CreatedAt, &rec.LastUpdated,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query record %s: %w", id, err)
	}
	return rec, nil
}

// CreateIfAbsent inserts a new record; an existing ID is left untouched.
func (s *SQLiteStore) CreateIfAbsent(ctx context.Context, rec *Record) error {
	now := time.Now().UTC()
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO videos (id, name, mime_type, view_link, created_at, last_updated)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING`,
		rec.ID, rec.Name, rec.MimeType, rec.ViewLink, createdAt, now,
	)
	if err != nil {
		return fmt.Errorf("create record %s: %w", rec.ID, err)
	}
	return nil
}

// MarkAudioExtracted records the download and extraction stages as done.
func (s *SQLiteStore) MarkAudioExtracted(ctx context.Context, id, audioPath string) error {
	return s.update(ctx, id, `
		UPDATE videos
		SET downloaded = 1, audio_extracted = 1, audio_path = ?, last_updated = ?
		WHERE id = ?`, audioPath)
}

// MarkTranscribed records the transcription stage as done.
func (s *SQLiteStore) MarkTranscribed(ctx context.Context, id, text string) error {
	return s.update(ctx, id, `
		UPDATE videos
		SET transcribed = 1, transcription_text = ?, last_updated = ?
		WHERE id = ?`, text)
}

// SaveGeneratedHTML persists the HTML artifact without completing the stage.
func (s *SQLiteStore) SaveGeneratedHTML(ctx context.Context, id, html, htmlPath string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE videos
		SET generated_html = ?, html_path = ?, last_updated = ?
		WHERE id = ?`, html, htmlPath, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update record %s: %w", id, err)
	}
	return checkAffected(res, id)
}

// MarkDocumentGenerated records the document stage as done.
func (s *SQLiteStore) MarkDocumentGenerated(ctx context.Context, id, html, htmlPath, pdfPath string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE videos
		SET document_generated = 1, generated_html = ?, html_path = ?, pdf_path = ?, last_updated = ?
		WHERE id = ?`, html, htmlPath, pdfPath, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update record %s: %w", id, err)
	}
	return checkAffected(res, id)
}

// List returns all records ordered by creation time.
func (s *SQLiteStore) List(ctx context.Context) ([]*Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, mime_type, view_link,
		       downloaded, audio_extracted, transcribed, document_generated,
		       summarized, sent,
		       transcription_text, audio_path, generated_html, html_path, pdf_path,
		       created_at, last_updated
		FROM videos ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result []*Record
	for rows.Next() {
		rec := &Record{}
		if err := rows.Scan(
			&rec.ID, &rec.Name, &rec.MimeType, &rec.ViewLink,
			&rec.Downloaded, &rec.AudioExtracted, &rec.Transcribed, &rec.DocumentGenerated,
			&rec.Summarized, &rec.Sent,
			&rec.TranscriptionText, &rec.AudioPath, &rec.GeneratedHTML, &rec.HTMLPath, &rec.PDFPath,
			&rec.CreatedAt, &rec.LastUpdated,
		); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return result, nil
}

func (s *SQLiteStore) update(ctx context.Context, id, query, payload string) error {
	res, err := s.db.ExecContext(ctx, query, payload, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update record %s: %w", id, err)
	}
	return checkAffected(res, id)
}

func checkAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for %s: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
