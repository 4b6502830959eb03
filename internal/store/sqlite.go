// Package store persists game results.
package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/verte-zerg/shapematch/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// SQLite stores results in a local SQLite database.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens or creates the SQLite database and applies migrations.
func OpenSQLite(path string) (*SQLite, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &SQLite{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS results (
			id INTEGER PRIMARY KEY,
			clicks INTEGER NOT NULL,
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
		);`,
		`CREATE INDEX IF NOT EXISTS idx_results_created_at ON results(created_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Save appends a result. The timestamp is assigned by the database.
func (s *SQLite) Save(ctx context.Context, rec model.ResultRecord) (string, error) {
	res, err := s.db.ExecContext(ctx, `INSERT INTO results (clicks) VALUES (?)`, rec.Clicks)
	if err != nil {
		return "", err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(id, 10), nil
}

// QueryAll returns every result, oldest first.
func (s *SQLite) QueryAll(ctx context.Context) ([]model.ResultRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, clicks, created_at FROM results ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var records []model.ResultRecord
	for rows.Next() {
		var (
			id        int64
			rec       model.ResultRecord
			createdAt string
		)
		if err := rows.Scan(&id, &rec.Clicks, &createdAt); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, err
		}
		rec.ID = strconv.FormatInt(id, 10)
		rec.Timestamp = parsed
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
