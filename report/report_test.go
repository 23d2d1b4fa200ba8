package report

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/hazyhaar/selmend/heal"
)

func TestHealingLogAppendAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "healing-log.json")

	l, err := OpenHealingLog(path)
	if err != nil {
		t.Fatalf("OpenHealingLog: %v", err)
	}
	if err := l.Append(LogRecord{
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		TestFile:    "checkout_test.go",
		OldSelector: "#submit-btn",
		NewSelector: `[data-testid="submit-btn"]`,
		Action:      heal.ActionElementFound,
	}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := l.Append(LogRecord{
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		TestFile:    "checkout_test.go",
		OldSelector: "#gone",
		Action:      heal.ActionHealingFailed,
	}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	// Reload: the wholesale rewrite must have preserved both entries.
	reloaded, err := OpenHealingLog(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	recs := reloaded.Records()
	if len(recs) != 2 {
		t.Fatalf("records = %d, want 2", len(recs))
	}
	if recs[0].NewSelector != `[data-testid="submit-btn"]` {
		t.Fatalf("first record = %+v", recs[0])
	}
	if recs[1].Action != heal.ActionHealingFailed {
		t.Fatalf("second record = %+v", recs[1])
	}

	// The file itself is a JSON array.
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var arr []LogRecord
	if err := json.Unmarshal(data, &arr); err != nil {
		t.Fatalf("log file is not a JSON array: %v", err)
	}
}

func TestHealingLogRecordEvent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.json")
	l, err := OpenHealingLog(path)
	if err != nil {
		t.Fatal(err)
	}

	ev := heal.Event{
		Timestamp:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		TestFile:    "nav_test.go",
		OldSelector: "#menu",
		NewSelector: "nav a",
		Strategy:    "structural",
		Action:      heal.ActionElementFound,
	}
	if err := l.Record(context.Background(), ev); err != nil {
		t.Fatalf("Record: %v", err)
	}

	recs := l.Records()
	if len(recs) != 1 {
		t.Fatalf("records = %d", len(recs))
	}
	if recs[0].Timestamp != "2026-03-01T12:00:00Z" {
		t.Fatalf("timestamp = %q, want ISO-8601", recs[0].Timestamp)
	}
	if recs[0].ID == "" {
		t.Fatal("record ID not assigned")
	}
}

func TestStoreInsertRecentStats(t *testing.T) {
	s, err := OpenStore(filepath.Join(t.TempDir(), "heals.db"))
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	defer s.Close()
	ctx := context.Background()

	events := []heal.Event{
		{OldSelector: "#a", NewSelector: "[id*='a']", Strategy: "attribute", Action: heal.ActionElementFound, Attempts: 1},
		{OldSelector: "#a", NewSelector: "[id*='a']", Strategy: "attribute", Action: heal.ActionLocatorUpdate, Attempts: 1},
		{OldSelector: "#b", Action: heal.ActionHealingFailed, Attempts: 3},
	}
	for i, ev := range events {
		ev.Timestamp = time.Date(2026, 3, 1, 12, i, 0, 0, time.UTC)
		if err := s.Record(ctx, ev); err != nil {
			t.Fatalf("Record %d: %v", i, err)
		}
	}

	recent, err := s.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("recent = %d rows", len(recent))
	}
	// Newest first.
	if recent[0].Action != heal.ActionHealingFailed {
		t.Fatalf("newest row = %+v", recent[0])
	}

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Total != 3 {
		t.Fatalf("total = %d", stats.Total)
	}
	if stats.ByAction[heal.ActionElementFound] != 1 || stats.ByAction[heal.ActionHealingFailed] != 1 {
		t.Fatalf("by action = %v", stats.ByAction)
	}
	if stats.ByStrategy["attribute"] != 2 {
		t.Fatalf("by strategy = %v", stats.ByStrategy)
	}
}

func TestSuggestions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "suggestions.txt")
	s := NewSuggestions(path)

	if err := s.Suggest("checkout_test.go", "#submit-btn", `[data-testid="submit-btn"]`, "attribute"); err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	if err := s.Suggest("nav_test.go", "#menu", "nav a", "structural"); err != nil {
		t.Fatalf("Suggest: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d", len(lines))
	}
	if !strings.Contains(lines[0], "#submit-btn") || !strings.Contains(lines[0], "attribute strategy") {
		t.Fatalf("first suggestion = %q", lines[0])
	}
	if !strings.Contains(lines[1], "nav a") {
		t.Fatalf("second suggestion = %q", lines[1])
	}
}

func TestWebhookRecord(t *testing.T) {
	var got envelope
	var gotData LogRecord
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var env struct {
			Type string          `json:"type"`
			Data json.RawMessage `json:"data"`
		}
		if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
			t.Errorf("decode: %v", err)
		}
		got.Type = env.Type
		if err := json.Unmarshal(env.Data, &gotData); err != nil {
			t.Errorf("decode data: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	wh := NewWebhook(srv.URL, WithWebhookRetries(0))
	err := wh.Record(context.Background(), heal.Event{
		OldSelector: "#x",
		NewSelector: "[id*='x']",
		Action:      heal.ActionElementFound,
	})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if got.Type != "healing_event" || gotData.OldSelector != "#x" {
		t.Fatalf("payload = %+v / %+v", got, gotData)
	}
}

func TestWebhookExhaustsRetries(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	wh := NewWebhook(srv.URL, WithWebhookRetries(0))
	if err := wh.Record(context.Background(), heal.Event{Action: heal.ActionElementFound}); err == nil {
		t.Fatal("expected error after exhausted retries")
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestReporterFanOut(t *testing.T) {
	dir := t.TempDir()
	log, err := OpenHealingLog(filepath.Join(dir, "log.json"))
	if err != nil {
		t.Fatal(err)
	}
	store, err := OpenStore(filepath.Join(dir, "heals.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	sugg := NewSuggestions(filepath.Join(dir, "suggestions.txt"))

	rep := &Reporter{Log: log, Store: store, Suggestions: sugg}
	ctx := context.Background()

	if err := rep.Record(ctx, heal.Event{
		TestFile:    "t.go",
		OldSelector: "#a",
		NewSelector: "[id*='a']",
		Strategy:    "attribute",
		Action:      heal.ActionElementFound,
	}); err != nil {
		t.Fatalf("Record found: %v", err)
	}
	if err := rep.Record(ctx, heal.Event{
		TestFile:    "t.go",
		OldSelector: "#a",
		NewSelector: "[id*='a']",
		Strategy:    "attribute",
		Action:      heal.ActionLocatorUpdate,
	}); err != nil {
		t.Fatalf("Record update: %v", err)
	}

	if got := len(log.Records()); got != 2 {
		t.Fatalf("log records = %d", got)
	}
	rows, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("store rows = %d", len(rows))
	}

	// Only the locator_updated event produces a suggestion line.
	data, err := os.ReadFile(filepath.Join(dir, "suggestions.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(string(data), "\n"); n != 1 {
		t.Fatalf("suggestion lines = %d, want 1", n)
	}
}
