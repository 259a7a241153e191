// Package report renders responses, quotes and history records for the
// command line.
package report

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/iexc-go/iexc/internal/history"
	"github.com/iexc-go/iexc/internal/httpclient"
	"github.com/iexc-go/iexc/internal/iex"
)

// Reporter writes output in a specific format.
type Reporter interface {
	// Format returns the format name (e.g., "text", "json").
	Format() string

	// Response writes a raw HTTP response.
	Response(ctx context.Context, resp *httpclient.Response, w io.Writer) error

	// Quotes writes the results of a quote batch.
	Quotes(ctx context.Context, results []iex.Result, w io.Writer) error

	// History writes stored quote records.
	History(ctx context.Context, recs []*history.Record, w io.Writer) error
}

// New creates a reporter by format name ("text" or "json").
// The format name is case-insensitive.
func New(format string) (Reporter, error) {
	switch strings.ToLower(format) {
	case "text":
		return &TextReporter{}, nil
	case "json":
		return &JSONReporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported report format: %q", format)
	}
}
