package report

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestTextReporter_Response(t *testing.T) {
	r := &TextReporter{}

	var buf bytes.Buffer
	if err := r.Response(context.Background(), newTestResponse(), &buf); err != nil {
		t.Fatalf("Response() error: %v", err)
	}

	want := "HTTP/1.1 200 OK\ncontent-type: text/plain\ncontent-length: 12\n\nHello world!\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestTextReporter_ResponseBodyOnly(t *testing.T) {
	r := &TextReporter{BodyOnly: true}

	var buf bytes.Buffer
	if err := r.Response(context.Background(), newTestResponse(), &buf); err != nil {
		t.Fatalf("Response() error: %v", err)
	}
	if buf.String() != "Hello world!\n" {
		t.Errorf("output = %q", buf.String())
	}
}

func TestTextReporter_Quotes(t *testing.T) {
	r := &TextReporter{}

	var buf bytes.Buffer
	if err := r.Quotes(context.Background(), newTestResults(), &buf); err != nil {
		t.Fatalf("Quotes() error: %v", err)
	}
	out := buf.String()

	for _, want := range []string{"AAPL", "123.4500", "(sandbox)", "nope", "ERROR", "Unknown symbol", "Summary: 1 quote(s), 1 failed"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestTextReporter_QuotesSingleHasNoSummary(t *testing.T) {
	r := &TextReporter{}

	var buf bytes.Buffer
	if err := r.Quotes(context.Background(), newTestResults()[:1], &buf); err != nil {
		t.Fatalf("Quotes() error: %v", err)
	}
	if strings.Contains(buf.String(), "Summary") {
		t.Errorf("single quote output should not have a summary:\n%s", buf.String())
	}
}

func TestTextReporter_History(t *testing.T) {
	r := &TextReporter{}

	var buf bytes.Buffer
	if err := r.History(context.Background(), newTestRecords(), &buf); err != nil {
		t.Fatalf("History() error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "2024-03-01T14:30:00Z") || !strings.Contains(lines[0], "id-1") {
		t.Errorf("line 0 = %q", lines[0])
	}
}

func TestTextReporter_HistoryEmpty(t *testing.T) {
	r := &TextReporter{}

	var buf bytes.Buffer
	if err := r.History(context.Background(), nil, &buf); err != nil {
		t.Fatalf("History() error: %v", err)
	}
	if !strings.Contains(buf.String(), "No quotes recorded.") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestTextReporter_CancelledContext(t *testing.T) {
	r := &TextReporter{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	if err := r.Response(ctx, newTestResponse(), &buf); err == nil {
		t.Error("expected error for cancelled context")
	}
	if buf.Len() != 0 {
		t.Error("nothing should be written for a cancelled context")
	}
}
