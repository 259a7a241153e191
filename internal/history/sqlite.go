package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned by Delete when no record has the given ID.
var ErrNotFound = errors.New("history: record not found")

// SQLiteStore implements Store using SQLite via modernc.org/sqlite (pure Go).
type SQLiteStore struct {
	db *sql.DB
}

// Compile-time check that SQLiteStore implements Store.
var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (creating if needed) the database at dbPath.
// Use ":memory:" for testing.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("history: open database: %w", err)
	}
	// Every connection to ":memory:" is a separate database.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: ping database: %w", err)
	}

	createTableSQL := `
		CREATE TABLE IF NOT EXISTS quotes (
			id          TEXT PRIMARY KEY,
			symbol      TEXT NOT NULL,
			price       REAL NOT NULL,
			endpoint    TEXT NOT NULL DEFAULT '',
			fetched_at  TEXT NOT NULL
		);
	`
	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: create table: %w", err)
	}

	createIndexSQL := `
		CREATE INDEX IF NOT EXISTS idx_quotes_symbol_fetched_at ON quotes(symbol, fetched_at);
	`
	if _, err := db.Exec(createIndexSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: create index: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// timeLayout sorts lexically in chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Save inserts or replaces rec. An empty ID is filled with a new UUID and a
// zero FetchedAt with the current time.
func (s *SQLiteStore) Save(ctx context.Context, rec *Record) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.FetchedAt.IsZero() {
		rec.FetchedAt = time.Now()
	}
	rec.FetchedAt = rec.FetchedAt.UTC()
	rec.Symbol = strings.ToUpper(rec.Symbol)

	query := `
		INSERT INTO quotes (id, symbol, price, endpoint, fetched_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			symbol     = excluded.symbol,
			price      = excluded.price,
			endpoint   = excluded.endpoint,
			fetched_at = excluded.fetched_at
	`
	_, err := s.db.ExecContext(ctx, query,
		rec.ID,
		rec.Symbol,
		rec.Price,
		rec.Endpoint,
		rec.FetchedAt.Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("history: save record: %w", err)
	}
	return nil
}

// Latest returns the most recent record for symbol.
// Returns (nil, nil) if there is none.
func (s *SQLiteStore) Latest(ctx context.Context, symbol string) (*Record, error) {
	recs, err := s.List(ctx, symbol, 1)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, nil
	}
	return recs[0], nil
}

// List returns records newest first. An empty symbol lists every symbol and
// a limit of 0 or less returns all rows.
func (s *SQLiteStore) List(ctx context.Context, symbol string, limit int) ([]*Record, error) {
	query := `SELECT id, symbol, price, endpoint, fetched_at FROM quotes`
	var args []interface{}
	if symbol != "" {
		query += ` WHERE symbol = ?`
		args = append(args, strings.ToUpper(symbol))
	}
	query += ` ORDER BY fetched_at DESC, id`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("history: list records: %w", err)
	}
	defer rows.Close()

	var recs []*Record
	for rows.Next() {
		var (
			rec       Record
			fetchedAt string
		)
		if err := rows.Scan(&rec.ID, &rec.Symbol, &rec.Price, &rec.Endpoint, &fetchedAt); err != nil {
			return nil, fmt.Errorf("history: scan row: %w", err)
		}
		t, err := time.Parse(timeLayout, fetchedAt)
		if err != nil {
			return nil, fmt.Errorf("history: parse fetched_at %q: %w", fetchedAt, err)
		}
		rec.FetchedAt = t
		recs = append(recs, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: iterate rows: %w", err)
	}

	return recs, nil
}

// Delete removes the record with the given ID.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM quotes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("history: delete record: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("history: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Prune removes records fetched more than maxAge ago and returns how many
// were deleted.
func (s *SQLiteStore) Prune(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-maxAge).Format(timeLayout)

	result, err := s.db.ExecContext(ctx, `DELETE FROM quotes WHERE fetched_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("history: prune records: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("history: rows affected: %w", err)
	}
	return deleted, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
