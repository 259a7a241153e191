package cli

import (
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/iexc-go/iexc/internal/testutil"
)

const testToken = "pk_cli_token"

func iexServer(t *testing.T) *testutil.RawServer {
	t.Helper()
	return newRawServer(t, testutil.IEXHandler(testToken, map[string]string{
		"AAPL": "123.45",
		"MSFT": "310.5",
	}))
}

func quoteArgs(srv *testutil.RawServer, extra ...string) []string {
	args := []string{"quote", "--insecure", "--port", strconv.Itoa(srv.Port()), "--api-domain", "127.0.0.1"}
	return append(args, extra...)
}

func TestQuoteCommand_MissingToken(t *testing.T) {
	t.Setenv(tokenEnv, "")

	_, _, err := execute(t, "quote", "AAPL")
	if err == nil {
		t.Fatal("expected error when token is not provided, got nil")
	}
	expected := "API token is required (use --token or IEXC_API_TOKEN)"
	if err.Error() != expected {
		t.Errorf("expected error %q, got %q", expected, err.Error())
	}
}

func TestQuoteCommand_RequiresSymbol(t *testing.T) {
	if _, _, err := execute(t, "quote", "--token", testToken); err == nil {
		t.Fatal("expected error when no symbol is given")
	}
}

func TestQuoteCommand(t *testing.T) {
	srv := iexServer(t)

	out, _, err := execute(t, quoteArgs(srv, "--token", testToken, "aapl", "msft")...)
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	for _, want := range []string{"AAPL", "123.4500", "MSFT", "310.5000", "(production)", "Summary: 2 quote(s), 0 failed"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if n := len(srv.Requests()); n != 2 {
		t.Errorf("server saw %d requests, want 2", n)
	}
}

func TestQuoteCommand_TokenFromEnv(t *testing.T) {
	srv := iexServer(t)
	t.Setenv(tokenEnv, testToken)

	out, stderr, err := execute(t, quoteArgs(srv, "--endpoint", "sandbox", "-v", "1", "AAPL")...)
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if !strings.Contains(out, "(sandbox)") {
		t.Errorf("output = %q, want sandbox endpoint", out)
	}
	if !strings.Contains(stderr, "[*] Endpoint: sandbox (127.0.0.1:") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestQuoteCommand_UnknownEndpoint(t *testing.T) {
	srv := iexServer(t)

	_, _, err := execute(t, quoteArgs(srv, "--token", testToken, "--endpoint", "staging", "AAPL")...)
	if err == nil {
		t.Fatal("expected error for unknown endpoint")
	}
	if !strings.Contains(err.Error(), `unknown endpoint "staging"`) {
		t.Errorf("err = %v", err)
	}
	if n := len(srv.Requests()); n != 0 {
		t.Errorf("server saw %d requests, want 0", n)
	}
}

func TestQuoteCommand_PartialFailure(t *testing.T) {
	srv := iexServer(t)

	out, _, err := execute(t, quoteArgs(srv, "--token", testToken, "AAPL", "NOPE")...)
	if err == nil {
		t.Fatal("expected error for failed symbol")
	}
	if err.Error() != "1 of 2 quote(s) failed" {
		t.Errorf("err = %q", err.Error())
	}
	if !strings.Contains(out, "AAPL") || !strings.Contains(out, "NOPE") {
		t.Errorf("report should list both symbols:\n%s", out)
	}
}

func TestQuoteCommand_RecordsHistory(t *testing.T) {
	srv := iexServer(t)
	dbPath := filepath.Join(t.TempDir(), "history.db")

	if _, _, err := execute(t, quoteArgs(srv, "--token", testToken, "--history", dbPath, "AAPL", "MSFT")...); err != nil {
		t.Fatalf("quote: %v", err)
	}

	out, _, err := execute(t, "history", "list", "--db", dbPath, "aapl")
	if err != nil {
		t.Fatalf("history list: %v", err)
	}
	if !strings.Contains(out, "AAPL") || !strings.Contains(out, "123.4500") || strings.Contains(out, "MSFT") {
		t.Errorf("history list aapl = %q", out)
	}

	out, _, err = execute(t, "history", "list", "--db", dbPath, "-f", "json")
	if err != nil {
		t.Fatalf("history list json: %v", err)
	}
	if strings.Count(out, `"symbol"`) != 2 {
		t.Errorf("json history should hold 2 records:\n%s", out)
	}
}
