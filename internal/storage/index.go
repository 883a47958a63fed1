package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Index is a SQLite catalogue of stored sessions, used for listing and
// filtering without reading every metadata.json.
type Index struct {
	db *sql.DB
}

// SessionSummary is one row of the index.
type SessionSummary struct {
	ID            string    `json:"id"`
	Preset        string    `json:"preset"`
	Timestamp     time.Time `json:"timestamp"`
	Seed          int64     `json:"seed"`
	Frames        int       `json:"frames"`
	LinksPerFrame float64   `json:"links_per_frame"`
}

func OpenIndex(path string) (*Index, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// one writer keeps SQLite from returning SQLITE_BUSY
	db.SetMaxOpenConns(1)
	idx := &Index{db: db}
	if err := idx.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migrate index: %w", err)
	}
	return idx, nil
}

func (i *Index) migrate() error {
	_, err := i.db.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			preset TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			seed INTEGER NOT NULL,
			frames INTEGER NOT NULL,
			links_per_frame REAL NOT NULL DEFAULT 0
		)`)
	if err != nil {
		return err
	}
	_, err = i.db.Exec(`CREATE INDEX IF NOT EXISTS sessions_preset ON sessions (preset, created_at)`)
	return err
}

func (i *Index) Close() error { return i.db.Close() }

// Add inserts or replaces a session row.
func (i *Index) Add(meta SessionMetadata) error {
	_, err := i.db.Exec(`
		INSERT OR REPLACE INTO sessions (id, preset, created_at, seed, frames, links_per_frame)
		VALUES (?, ?, ?, ?, ?, ?)`,
		meta.ID, meta.Preset, meta.Timestamp.UnixNano(), meta.Seed, meta.Frames, meta.Metrics["links_per_frame"])
	return err
}

// Sessions lists sessions newest first. An empty preset matches all; a
// non-positive limit means no limit.
func (i *Index) Sessions(preset string, limit int) ([]SessionSummary, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := i.db.Query(`
		SELECT id, preset, created_at, seed, frames, links_per_frame
		FROM sessions
		WHERE ? = '' OR preset = ?
		ORDER BY created_at DESC
		LIMIT ?`, preset, preset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]SessionSummary, 0)
	for rows.Next() {
		var s SessionSummary
		var created int64
		if err := rows.Scan(&s.ID, &s.Preset, &created, &s.Seed, &s.Frames, &s.LinksPerFrame); err != nil {
			return nil, err
		}
		s.Timestamp = time.Unix(0, created)
		out = append(out, s)
	}
	return out, rows.Err()
}

// Rebuild replaces the index contents with the sessions found in store.
func (i *Index) Rebuild(store *Store) (int, error) {
	runs, err := store.List()
	if err != nil {
		return 0, err
	}
	tx, err := i.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM sessions`); err != nil {
		return 0, err
	}
	for _, meta := range runs {
		_, err := tx.Exec(`
			INSERT INTO sessions (id, preset, created_at, seed, frames, links_per_frame)
			VALUES (?, ?, ?, ?, ?, ?)`,
			meta.ID, meta.Preset, meta.Timestamp.UnixNano(), meta.Seed, meta.Frames, meta.Metrics["links_per_frame"])
		if err != nil {
			return 0, err
		}
	}
	return len(runs), tx.Commit()
}
