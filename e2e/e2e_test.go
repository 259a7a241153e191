//go:build e2e

// Package e2e contains end-to-end tests that require the fake IEX server
// defined in testenv/docker-compose.yml.
//
// Run with:
//
//	cd testenv && docker compose up -d --wait
//	go test -v -tags e2e -count=1 -timeout 120s ./e2e/...
package e2e_test

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/iexc-go/iexc/internal/history"
	"github.com/iexc-go/iexc/internal/httpclient"
	"github.com/iexc-go/iexc/internal/iex"
)

const (
	defaultE2EAddr  = "localhost:18080"
	defaultE2EToken = "Tsk_e2e"
)

// e2eTarget returns the host and port of the test environment.
// If the server is unreachable, the test is skipped automatically.
func e2eTarget(t *testing.T) (string, int) {
	t.Helper()
	addr := os.Getenv("IEXC_E2E_ADDR")
	if addr == "" {
		addr = defaultE2EAddr
	}
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		t.Fatalf("invalid IEXC_E2E_ADDR %q: %v", addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		t.Fatalf("invalid port in IEXC_E2E_ADDR %q: %v", addr, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := newE2EClient(host, port).Get(ctx, "/health")
	if err != nil || !resp.IsSuccess() {
		t.Skipf("E2E server not available at %s (start with: docker compose up -d in testenv): %v", addr, err)
	}
	return host, port
}

func newE2EClient(host string, port int, opts ...httpclient.Option) *httpclient.Client {
	opts = append([]httpclient.Option{
		httpclient.WithPort(port),
		httpclient.WithReadTimeout(30 * time.Second),
	}, opts...)
	return httpclient.NewInsecure(host, opts...)
}

func e2eToken() string {
	if tok := os.Getenv("IEXC_E2E_TOKEN"); tok != "" {
		return tok
	}
	return defaultE2EToken
}

func newIEXClient(t *testing.T, host string, port int, token string) *iex.Client {
	t.Helper()
	client, err := iex.New(iex.Sandbox, token, iex.WithHTTPClient(newE2EClient(host, port)))
	if err != nil {
		t.Fatalf("iex.New: %v", err)
	}
	return client
}

func TestE2E_RawGet(t *testing.T) {
	host, port := e2eTarget(t)

	resp, err := newE2EClient(host, port).Get(context.Background(), "/health")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if resp.Protocol != "HTTP/1.1" || resp.StatusCode != 200 || resp.StatusMessage != "OK" {
		t.Errorf("status line = %s %d %s", resp.Protocol, resp.StatusCode, resp.StatusMessage)
	}
	if resp.Body != "OK" {
		t.Errorf("body = %q, want OK", resp.Body)
	}
	if n := resp.ContentLength(); n != 2 {
		t.Errorf("content-length = %d, want 2", n)
	}
}

func TestE2E_Price(t *testing.T) {
	host, port := e2eTarget(t)
	client := newIEXClient(t, host, port, e2eToken())

	q, err := client.Price(context.Background(), "aapl")
	if err != nil {
		t.Fatalf("Price: %v", err)
	}
	if q.Symbol != "AAPL" || q.Price <= 0 {
		t.Errorf("quote = %+v", q)
	}
}

func TestE2E_UnknownSymbol(t *testing.T) {
	host, port := e2eTarget(t)
	client := newIEXClient(t, host, port, e2eToken())

	_, err := client.Price(context.Background(), "ZZZZ")
	var apiErr *iex.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *iex.APIError", err)
	}
	if apiErr.StatusCode != 404 {
		t.Errorf("status = %d, want 404", apiErr.StatusCode)
	}
}

func TestE2E_BadToken(t *testing.T) {
	host, port := e2eTarget(t)
	client := newIEXClient(t, host, port, "wrong")

	_, err := client.Price(context.Background(), "AAPL")
	var apiErr *iex.APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != 403 {
		t.Fatalf("err = %v, want 403 APIError", err)
	}
}

func TestE2E_PricesIntoHistory(t *testing.T) {
	host, port := e2eTarget(t)
	client := newIEXClient(t, host, port, e2eToken())

	store, err := history.NewSQLiteStore(filepath.Join(t.TempDir(), "e2e.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	symbols := []string{"AAPL", "MSFT", "BRK.B", "TSLA"}
	for _, res := range client.Prices(ctx, symbols, 4) {
		if res.Err != nil {
			t.Fatalf("%s: %v", res.Symbol, res.Err)
		}
		rec := &history.Record{
			Symbol:    res.Quote.Symbol,
			Price:     res.Quote.Price,
			Endpoint:  res.Quote.Endpoint.String(),
			FetchedAt: res.Quote.FetchedAt,
		}
		if err := store.Save(ctx, rec); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	recs, err := store.List(ctx, "", 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(recs) != len(symbols) {
		t.Errorf("got %d records, want %d", len(recs), len(symbols))
	}
}

func TestE2E_ReadTimeout(t *testing.T) {
	host, port := e2eTarget(t)
	client := newE2EClient(host, port, httpclient.WithReadTimeout(500*time.Millisecond))

	start := time.Now()
	_, err := client.Get(context.Background(), "/slow?d=3s")
	if err == nil {
		t.Fatal("expected timeout error")
	}
	var netErr net.Error
	if !errors.As(err, &netErr) || !netErr.Timeout() {
		t.Errorf("err = %v, want a timeout", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Get took %v, want about 500ms", elapsed)
	}
}
