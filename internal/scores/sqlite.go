package scores

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"
)

// SQLStore keeps the high-score list in a SQLite database.
type SQLStore struct {
	conn   *sql.DB
	limit  int
	closed atomic.Bool
}

// Open opens (or creates) the SQLite database at path and migrates the schema.
func Open(path string, limit int) (*SQLStore, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open scores db: %w", err)
	}
	// SQLite serializes writers anyway; one connection avoids SQLITE_BUSY
	// between concurrent sessions finishing at the same time.
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	s := &SQLStore{conn: conn, limit: limit}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate scores db: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *SQLStore) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.conn.Close()
}

// migrate creates tables if they don't exist
func (s *SQLStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS high_scores (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		score INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_high_scores_rank ON high_scores(score DESC, created_at ASC);
	`
	_, err := s.conn.Exec(schema)
	return err
}

// Record inserts the entry and trims the table to the configured limit.
func (s *SQLStore) Record(ctx context.Context, e Entry) ([]Entry, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO high_scores (name, score, created_at) VALUES (?, ?, ?)",
		CleanName(e.Name), e.Score, e.Timestamp.UnixMilli(),
	); err != nil {
		return nil, fmt.Errorf("insert score: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM high_scores WHERE id NOT IN (
			SELECT id FROM high_scores ORDER BY score DESC, created_at ASC, id ASC LIMIT ?
		)`, s.limit,
	); err != nil {
		return nil, fmt.Errorf("trim scores: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s.Top(ctx)
}

// Top returns the ranked list, best first.
func (s *SQLStore) Top(ctx context.Context) ([]Entry, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	rows, err := s.conn.QueryContext(ctx,
		"SELECT name, score, created_at FROM high_scores ORDER BY score DESC, created_at ASC, id ASC LIMIT ?",
		s.limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query scores: %w", err)
	}
	defer rows.Close()

	var result []Entry
	for rows.Next() {
		var (
			e  Entry
			ms int64
		)
		if err := rows.Scan(&e.Name, &e.Score, &ms); err != nil {
			return nil, err
		}
		e.Timestamp = time.UnixMilli(ms)
		e.Rank = len(result) + 1
		result = append(result, e)
	}
	return result, rows.Err()
}

// Clear removes every entry.
func (s *SQLStore) Clear(ctx context.Context) error {
	if s.closed.Load() {
		return ErrClosed
	}
	if _, err := s.conn.ExecContext(ctx, "DELETE FROM high_scores"); err != nil {
		return fmt.Errorf("clear scores: %w", err)
	}
	return nil
}

var _ Store = (*SQLStore)(nil)
