// Package history persists fetched quotes so they can be listed and pruned
// later.
package history

import (
	"context"
	"time"
)

// Record is one stored quote.
type Record struct {
	ID        string    `json:"id"`
	Symbol    string    `json:"symbol"`
	Price     float64   `json:"price"`
	Endpoint  string    `json:"endpoint"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Store persists and retrieves quote records.
type Store interface {
	Save(ctx context.Context, rec *Record) error
	Latest(ctx context.Context, symbol string) (*Record, error)
	List(ctx context.Context, symbol string, limit int) ([]*Record, error)
	Delete(ctx context.Context, id string) error
	Prune(ctx context.Context, maxAge time.Duration) (int64, error)
	Close() error
}
