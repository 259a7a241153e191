package report

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/iexc-go/iexc/internal/history"
	"github.com/iexc-go/iexc/internal/httpclient"
	"github.com/iexc-go/iexc/internal/iex"
)

const (
	singleLine = "\u2500" // ─
	lineWidth  = 50
)

// TextReporter outputs plain terminal text.
type TextReporter struct {
	// BodyOnly omits the status line and headers of responses.
	BodyOnly bool
}

// Format returns "text".
func (r *TextReporter) Format() string {
	return "text"
}

// Response writes the status line, headers, a blank line and the body.
func (r *TextReporter) Response(ctx context.Context, resp *httpclient.Response, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b := &strings.Builder{}
	if !r.BodyOnly {
		fmt.Fprintf(b, "%s %d %s\n", resp.Protocol, resp.StatusCode, resp.StatusMessage)
		for _, h := range resp.Headers {
			fmt.Fprintf(b, "%s: %s\n", h.Name, h.Value)
		}
		fmt.Fprintln(b)
	}
	b.WriteString(resp.Body)
	if resp.Body != "" && !strings.HasSuffix(resp.Body, "\n") {
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// Quotes writes one line per symbol followed by a summary.
func (r *TextReporter) Quotes(ctx context.Context, results []iex.Result, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b := &strings.Builder{}
	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			fmt.Fprintf(b, "%-8s ERROR  %s\n", res.Symbol, res.Err.Error())
			continue
		}
		fmt.Fprintf(b, "%-8s %12.4f  (%s)\n", res.Quote.Symbol, res.Quote.Price, res.Quote.Endpoint)
	}
	if len(results) > 1 {
		fmt.Fprintln(b, strings.Repeat(singleLine, lineWidth))
		fmt.Fprintf(b, "Summary: %d quote(s), %d failed\n", len(results)-failed, failed)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// History writes one line per record.
func (r *TextReporter) History(ctx context.Context, recs []*history.Record, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b := &strings.Builder{}
	if len(recs) == 0 {
		fmt.Fprintln(b, "No quotes recorded.")
	}
	for _, rec := range recs {
		fmt.Fprintf(b, "%s  %-8s %12.4f  %-10s %s\n",
			rec.FetchedAt.UTC().Format(time.RFC3339), rec.Symbol, rec.Price, rec.Endpoint, rec.ID)
	}

	_, err := io.WriteString(w, b.String())
	return err
}
