package state

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/teamcutter/xtract/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS extractions (
    id                     INTEGER PRIMARY KEY AUTOINCREMENT,
    source                 TEXT NOT NULL,
    destination            TEXT NOT NULL,
    archive_type           TEXT NOT NULL DEFAULT 'unknown',
    preserve_top_directory INTEGER NOT NULL DEFAULT 0,
    succeeded              INTEGER NOT NULL DEFAULT 0,
    error                  TEXT NOT NULL DEFAULT '',
    elapsed_ms             INTEGER NOT NULL DEFAULT 0,
    extracted_at           TEXT NOT NULL
);
`

type SQLiteHistory struct {
	mu     sync.RWMutex
	db     *sql.DB
	dbPath string
}

func NewSQLite(dbPath string) (*SQLiteHistory, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// concurrent batch extractions all record through this handle
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteHistory{db: db, dbPath: dbPath}, nil
}

func (s *SQLiteHistory) Record(rec *domain.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`
		INSERT INTO extractions
		(source, destination, archive_type, preserve_top_directory, succeeded, error, elapsed_ms, extracted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Source, rec.Destination, rec.ArchiveType,
		boolToInt(rec.PreserveTopDirectory), boolToInt(rec.Succeeded),
		rec.Error, rec.Elapsed.Milliseconds(),
		rec.ExtractedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return err
	}

	rec.ID, err = res.LastInsertId()
	return err
}

// List returns the latest records first. A limit below 1 returns everything.
func (s *SQLiteHistory) List(limit int) ([]*domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit < 1 {
		limit = -1
	}

	rows, err := s.db.Query(`
		SELECT id, source, destination, archive_type, preserve_top_directory,
		       succeeded, error, elapsed_ms, extracted_at
		FROM extractions ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*domain.Record
	for rows.Next() {
		var rec domain.Record
		var preserve, succeeded int
		var elapsedMs int64
		var extractedAt string

		if err := rows.Scan(&rec.ID, &rec.Source, &rec.Destination, &rec.ArchiveType,
			&preserve, &succeeded, &rec.Error, &elapsedMs, &extractedAt); err != nil {
			return nil, err
		}

		rec.PreserveTopDirectory = preserve == 1
		rec.Succeeded = succeeded == 1
		rec.Elapsed = time.Duration(elapsedMs) * time.Millisecond
		rec.ExtractedAt, _ = time.Parse(time.RFC3339Nano, extractedAt)

		records = append(records, &rec)
	}

	return records, rows.Err()
}

func (s *SQLiteHistory) Export(w io.Writer) error {
	records, err := s.List(0)
	if err != nil {
		return err
	}
	if records == nil {
		records = []*domain.Record{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

func (s *SQLiteHistory) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec("DELETE FROM extractions")
	return err
}

func (s *SQLiteHistory) Close() error {
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
