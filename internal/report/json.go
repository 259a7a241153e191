package report

import (
	"context"
	"io"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/iexc-go/iexc/internal/history"
	"github.com/iexc-go/iexc/internal/httpclient"
	"github.com/iexc-go/iexc/internal/iex"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// JSONReporter outputs structured JSON.
type JSONReporter struct {
	// Compact outputs single-line JSON when true (no indentation).
	Compact bool
}

// Format returns "json".
func (r *JSONReporter) Format() string {
	return "json"
}

type jsonHeader struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type jsonResponse struct {
	Protocol      string       `json:"protocol"`
	StatusCode    uint16       `json:"status_code"`
	StatusMessage string       `json:"status_message"`
	Headers       []jsonHeader `json:"headers"`
	ContentLength int64        `json:"content_length"`
	Body          string       `json:"body"`
}

type jsonQuote struct {
	Symbol    string     `json:"symbol"`
	Price     *float64   `json:"price,omitempty"`
	Endpoint  string     `json:"endpoint,omitempty"`
	FetchedAt *time.Time `json:"fetched_at,omitempty"`
	Error     string     `json:"error,omitempty"`
}

type jsonQuotes struct {
	Quotes  []jsonQuote `json:"quotes"`
	Summary jsonSummary `json:"summary"`
}

type jsonSummary struct {
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

type jsonHistory struct {
	Records []*history.Record `json:"records"`
}

// Response writes resp as a JSON object. Headers keep their order.
func (r *JSONReporter) Response(ctx context.Context, resp *httpclient.Response, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	out := jsonResponse{
		Protocol:      resp.Protocol,
		StatusCode:    resp.StatusCode,
		StatusMessage: resp.StatusMessage,
		Headers:       make([]jsonHeader, 0, len(resp.Headers)),
		ContentLength: resp.ContentLength(),
		Body:          resp.Body,
	}
	for _, h := range resp.Headers {
		out.Headers = append(out.Headers, jsonHeader{Name: h.Name, Value: h.Value})
	}
	return r.encode(w, out)
}

// Quotes writes every result, failures included, plus a summary.
func (r *JSONReporter) Quotes(ctx context.Context, results []iex.Result, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	out := jsonQuotes{Quotes: make([]jsonQuote, 0, len(results))}
	for _, res := range results {
		if res.Err != nil {
			out.Summary.Failed++
			out.Quotes = append(out.Quotes, jsonQuote{Symbol: res.Symbol, Error: res.Err.Error()})
			continue
		}
		q := res.Quote
		price, fetchedAt := q.Price, q.FetchedAt
		out.Summary.Succeeded++
		out.Quotes = append(out.Quotes, jsonQuote{
			Symbol:    q.Symbol,
			Price:     &price,
			Endpoint:  q.Endpoint.String(),
			FetchedAt: &fetchedAt,
		})
	}
	return r.encode(w, out)
}

// History writes the records under a "records" key.
func (r *JSONReporter) History(ctx context.Context, recs []*history.Record, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if recs == nil {
		recs = []*history.Record{}
	}
	return r.encode(w, jsonHistory{Records: recs})
}

func (r *JSONReporter) encode(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	if !r.Compact {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
