package cli

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/iexc-go/iexc/internal/history"
)

func seedHistory(t *testing.T, recs ...*history.Record) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "history.db")
	store, err := history.NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	defer store.Close()
	for _, rec := range recs {
		if err := store.Save(context.Background(), rec); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}
	return dbPath
}

func TestHistoryCommand_RequiresDB(t *testing.T) {
	_, _, err := execute(t, "history", "list")
	if err == nil {
		t.Fatal("expected error without --db")
	}
	if err.Error() != "history database is required (use --db)" {
		t.Errorf("err = %q", err.Error())
	}
}

func TestHistoryCommand_ListEmpty(t *testing.T) {
	out, _, err := execute(t, "history", "list", "--db", seedHistory(t))
	if err != nil {
		t.Fatalf("history list: %v", err)
	}
	if !strings.Contains(out, "No quotes recorded.") {
		t.Errorf("output = %q", out)
	}
}

func TestHistoryCommand_ListLimit(t *testing.T) {
	now := time.Now()
	dbPath := seedHistory(t,
		&history.Record{Symbol: "AAPL", Price: 1, FetchedAt: now.Add(-2 * time.Minute)},
		&history.Record{Symbol: "AAPL", Price: 2, FetchedAt: now.Add(-time.Minute)},
		&history.Record{Symbol: "AAPL", Price: 3, FetchedAt: now},
	)

	out, _, err := execute(t, "history", "list", "--db", dbPath, "--limit", "2")
	if err != nil {
		t.Fatalf("history list: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[0], "3.0000") {
		t.Errorf("newest record should come first: %q", lines[0])
	}
}

func TestHistoryCommand_Delete(t *testing.T) {
	dbPath := seedHistory(t, &history.Record{ID: "rec-1", Symbol: "AAPL", Price: 1})

	out, _, err := execute(t, "history", "delete", "rec-1", "--db", dbPath)
	if err != nil {
		t.Fatalf("history delete: %v", err)
	}
	if out != "Deleted rec-1\n" {
		t.Errorf("output = %q", out)
	}

	if _, _, err := execute(t, "history", "delete", "rec-1", "--db", dbPath); err == nil {
		t.Error("deleting a missing record should fail")
	}
}

func TestHistoryCommand_Prune(t *testing.T) {
	dbPath := seedHistory(t,
		&history.Record{Symbol: "AAPL", Price: 1, FetchedAt: time.Now().Add(-72 * time.Hour)},
		&history.Record{Symbol: "AAPL", Price: 2},
	)

	out, _, err := execute(t, "history", "prune", "--db", dbPath, "--older-than", "24h")
	if err != nil {
		t.Fatalf("history prune: %v", err)
	}
	if out != "Pruned 1 record(s)\n" {
		t.Errorf("output = %q", out)
	}
}
