// Package history keeps generated report documents in a local SQLite
// database so earlier runs can be listed and reprinted.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

var (
	// ErrNotFound is returned when no saved report matches an ID.
	ErrNotFound = errors.New("report not found")
	// ErrAmbiguousID is returned when an ID prefix matches several reports.
	ErrAmbiguousID = errors.New("report id prefix is ambiguous")
)

const schema = `
CREATE TABLE IF NOT EXISTS reports (
    id                    TEXT PRIMARY KEY,
    generated_at          TEXT NOT NULL,
    birth_date            TEXT NOT NULL,
    base_date             TEXT NOT NULL,
    include_index_mapping INTEGER NOT NULL DEFAULT 0,
    future_count          INTEGER NOT NULL DEFAULT 0,
    failure_count         INTEGER NOT NULL DEFAULT 0,
    document              BLOB NOT NULL,
    saved_at              TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS reports_generated_at ON reports (generated_at);
`

// Entry summarizes one saved report.
type Entry struct {
	ID                  string
	GeneratedAt         time.Time
	BirthDate           string
	BaseDate            string
	IncludeIndexMapping bool
	FutureCount         int
	FailureCount        int
	SavedAt             time.Time
}

// Record is a report to save: its summary plus the encoded document.
type Record struct {
	Entry
	Document []byte
}

// Store is a SQLite-backed report history in WAL mode.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at dbPath, creating parent
// directories, enabling WAL mode and busy timeout, and creating the schema.
func Open(ctx context.Context, dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("history: create %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("history: open database: %w", err)
	}

	// SQLite has a single writer; one pooled connection avoids SQLITE_BUSY
	// between connections that each need their own PRAGMA setup.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: enable WAL mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: set busy timeout: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Save inserts a report. Saving an existing ID replaces it.
func (s *Store) Save(ctx context.Context, r Record) error {
	if r.ID == "" {
		return fmt.Errorf("history: save: empty id")
	}
	const q = `
		INSERT INTO reports (id, generated_at, birth_date, base_date,
			include_index_mapping, future_count, failure_count, document)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			generated_at          = excluded.generated_at,
			birth_date            = excluded.birth_date,
			base_date             = excluded.base_date,
			include_index_mapping = excluded.include_index_mapping,
			future_count          = excluded.future_count,
			failure_count         = excluded.failure_count,
			document              = excluded.document,
			saved_at              = CURRENT_TIMESTAMP`
	_, err := s.db.ExecContext(ctx, q,
		r.ID, r.GeneratedAt.UTC().Format(time.RFC3339Nano), r.BirthDate, r.BaseDate,
		r.IncludeIndexMapping, r.FutureCount, r.FailureCount, r.Document)
	if err != nil {
		return fmt.Errorf("history: save %q: %w", r.ID, err)
	}
	return nil
}

const entryColumns = `id, generated_at, birth_date, base_date,
	include_index_mapping, future_count, failure_count, saved_at`

// List returns saved reports, newest first. A limit of zero or less
// returns all of them.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	q := `SELECT ` + entryColumns + ` FROM reports ORDER BY generated_at DESC, id`
	var args []any
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("history: list: %w", err)
	}
	defer rows.Close()

	var result []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: iterate reports: %w", err)
	}
	return result, nil
}

// Get returns the report whose ID equals id or, failing that, the single
// report whose ID starts with id.
func (s *Store) Get(ctx context.Context, id string) (Record, error) {
	if id == "" {
		return Record{}, fmt.Errorf("history: get: %w", ErrNotFound)
	}
	const q = `SELECT ` + entryColumns + `, document FROM reports
		WHERE id = ? OR id LIKE ? ESCAPE '\' ORDER BY (id = ?) DESC LIMIT 2`
	rows, err := s.db.QueryContext(ctx, q, id, escapeLike(id)+"%", id)
	if err != nil {
		return Record{}, fmt.Errorf("history: get %q: %w", id, err)
	}
	defer rows.Close()

	var found []Record
	for rows.Next() {
		var r Record
		var generated, saved string
		var mapping int
		if err := rows.Scan(&r.ID, &generated, &r.BirthDate, &r.BaseDate,
			&mapping, &r.FutureCount, &r.FailureCount, &saved, &r.Document); err != nil {
			return Record{}, fmt.Errorf("history: scan report: %w", err)
		}
		if err := fillTimes(&r.Entry, generated, saved); err != nil {
			return Record{}, err
		}
		r.IncludeIndexMapping = mapping != 0
		found = append(found, r)
	}
	if err := rows.Err(); err != nil {
		return Record{}, fmt.Errorf("history: iterate reports: %w", err)
	}

	switch {
	case len(found) == 0:
		return Record{}, fmt.Errorf("history: %q: %w", id, ErrNotFound)
	case found[0].ID == id || len(found) == 1:
		return found[0], nil
	default:
		return Record{}, fmt.Errorf("history: %q: %w", id, ErrAmbiguousID)
	}
}

// Delete removes a report by exact ID.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM reports WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("history: delete %q: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("history: delete rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("history: %q: %w", id, ErrNotFound)
	}
	return nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (Entry, error) {
	var e Entry
	var generated, saved string
	var mapping int
	if err := row.Scan(&e.ID, &generated, &e.BirthDate, &e.BaseDate,
		&mapping, &e.FutureCount, &e.FailureCount, &saved); err != nil {
		return Entry{}, fmt.Errorf("history: scan report: %w", err)
	}
	e.IncludeIndexMapping = mapping != 0
	if err := fillTimes(&e, generated, saved); err != nil {
		return Entry{}, err
	}
	return e, nil
}

func fillTimes(e *Entry, generated, saved string) error {
	var err error
	if e.GeneratedAt, err = parseTimestamp(generated); err != nil {
		return fmt.Errorf("history: parse generated_at: %w", err)
	}
	if e.SavedAt, err = parseTimestamp(saved); err != nil {
		return fmt.Errorf("history: parse saved_at: %w", err)
	}
	return nil
}

// timestampFormats lists the formats stored timestamps may take.
// generated_at is written as RFC 3339 with nanoseconds; CURRENT_TIMESTAMP
// comes back as RFC 3339 from modernc.org/sqlite or as the space-separated
// DateTime form from canonical SQLite.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.DateTime,
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp format: %q", s)
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
