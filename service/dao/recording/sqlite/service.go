package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/naushadh/streamly/journal"
	"github.com/naushadh/streamly/service/dao"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS recordings (
	id         TEXT PRIMARY KEY,
	created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS entries (
	recording_id TEXT    NOT NULL REFERENCES recordings(id) ON DELETE CASCADE,
	journal_idx  INTEGER NOT NULL,
	seq          INTEGER NOT NULL,
	kind         TEXT    NOT NULL,
	branch       TEXT    NOT NULL DEFAULT '',
	data         TEXT,
	PRIMARY KEY (recording_id, journal_idx, seq)
);
CREATE TABLE IF NOT EXISTS journals (
	recording_id TEXT    NOT NULL REFERENCES recordings(id) ON DELETE CASCADE,
	journal_idx  INTEGER NOT NULL,
	PRIMARY KEY (recording_id, journal_idx)
);
`

// Service implements a SQLite-backed recording storage. Entries are stored
// one row per journal decision so that a recording can be inspected with
// plain SQL; Load reassembles journals in (journal_idx, seq) order.
type Service struct {
	db *sql.DB
}

var _ dao.Service[string, journal.Recording] = (*Service)(nil)

// Open creates or opens a SQLite database at the given path and applies the
// schema. SQLite only supports one writer at a time, so the connection pool
// is limited to a single connection.
func Open(path string) (*Service, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(`PRAGMA journal_mode=WAL; PRAGMA foreign_keys=ON; PRAGMA busy_timeout=5000;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &Service{db: db}, nil
}

// Close closes the database connection.
func (s *Service) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Save persists a recording and all its journal entries in one transaction.
func (s *Service) Save(ctx context.Context, recording *journal.Recording) error {
	if recording == nil {
		return dao.ErrNilEntity
	}
	if recording.ID == "" {
		return dao.ErrInvalidID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM recordings WHERE id = ?`, recording.ID); err != nil {
		return fmt.Errorf("failed to replace recording: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO recordings (id, created_at) VALUES (?, ?)`,
		recording.ID, recording.CreatedAt.UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("failed to insert recording: %w", err)
	}
	for idx, j := range recording.Journals {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO journals (recording_id, journal_idx) VALUES (?, ?)`,
			recording.ID, idx); err != nil {
			return fmt.Errorf("failed to insert journal: %w", err)
		}
		for _, entry := range j.Entries {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO entries (recording_id, journal_idx, seq, kind, branch, data)
				 VALUES (?, ?, ?, ?, ?, ?)`,
				recording.ID, idx, entry.Seq, entry.Kind, entry.Branch, string(entry.Data)); err != nil {
				return fmt.Errorf("failed to insert entry: %w", err)
			}
		}
	}
	return tx.Commit()
}

// Load retrieves a recording by id, reassembling journals in stored order.
func (s *Service) Load(ctx context.Context, id string) (*journal.Recording, error) {
	if id == "" {
		return nil, dao.ErrInvalidID
	}

	var createdAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT created_at FROM recordings WHERE id = ?`, id).Scan(&createdAt)
	if err == sql.ErrNoRows {
		return nil, dao.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load recording: %w", err)
	}

	recording := &journal.Recording{ID: id}
	if recording.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse recording timestamp: %w", err)
	}

	journalRows, err := s.db.QueryContext(ctx,
		`SELECT journal_idx FROM journals WHERE recording_id = ? ORDER BY journal_idx`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list journals: %w", err)
	}
	defer journalRows.Close()
	var indexes []int
	for journalRows.Next() {
		var idx int
		if err := journalRows.Scan(&idx); err != nil {
			return nil, fmt.Errorf("failed to scan journal: %w", err)
		}
		indexes = append(indexes, idx)
	}
	if err := journalRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate journals: %w", err)
	}

	for _, idx := range indexes {
		j := journal.New()
		rows, err := s.db.QueryContext(ctx,
			`SELECT seq, kind, branch, data FROM entries
			 WHERE recording_id = ? AND journal_idx = ? ORDER BY seq`, id, idx)
		if err != nil {
			return nil, fmt.Errorf("failed to load entries: %w", err)
		}
		for rows.Next() {
			var entry journal.Entry
			var data string
			if err := rows.Scan(&entry.Seq, &entry.Kind, &entry.Branch, &data); err != nil {
				rows.Close()
				return nil, fmt.Errorf("failed to scan entry: %w", err)
			}
			entry.Data = json.RawMessage(data)
			j.Entries = append(j.Entries, entry)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to iterate entries: %w", err)
		}
		recording.Journals = append(recording.Journals, j)
	}
	return recording, nil
}

// Delete removes a recording and its entries.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return dao.ErrInvalidID
	}
	result, err := s.db.ExecContext(ctx, `DELETE FROM recordings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete recording: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete recording: %w", err)
	}
	if affected == 0 {
		return dao.ErrNotFound
	}
	return nil
}

// List returns all stored recordings.
func (s *Service) List(ctx context.Context) ([]*journal.Recording, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM recordings ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list recordings: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan recording: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recordings: %w", err)
	}

	var recordings []*journal.Recording
	for _, id := range ids {
		recording, err := s.Load(ctx, id)
		if err != nil {
			return nil, err
		}
		recordings = append(recordings, recording)
	}
	return recordings, nil
}
