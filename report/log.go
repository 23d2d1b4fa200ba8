// Package report persists healing events: a JSON flat-file log, an
// SQLite history store for dashboard queries, a selector-update
// suggestion file and an optional webhook notifier. Everything here is
// best-effort from the resolver's point of view; a failing reporter
// never fails a resolution.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hazyhaar/selmend/heal"
)

// LogRecord is one entry of the healing log file.
type LogRecord struct {
	ID          string `json:"id"`
	Timestamp   string `json:"timestamp"` // ISO-8601
	TestFile    string `json:"testFile"`
	OldSelector string `json:"oldSelector"`
	NewSelector string `json:"newSelector"`
	Strategy    string `json:"strategy,omitempty"`
	Action      string `json:"action"`
}

// HealingLog is an append-only JSON-array log persisted to a flat
// file. The file is rewritten wholesale on each append (read-modify-
// write). Concurrent writers from separate processes can race and lose
// entries; the intended deployment is one log file per worker, so only
// in-process access is serialised here.
type HealingLog struct {
	path    string
	mu      sync.Mutex
	records []LogRecord
}

// OpenHealingLog loads the log at path if it exists, or starts empty.
func OpenHealingLog(path string) (*HealingLog, error) {
	l := &HealingLog{path: path}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return l, nil
	}
	if err != nil {
		return nil, fmt.Errorf("report: read healing log: %w", err)
	}
	if err := json.Unmarshal(data, &l.records); err != nil {
		return nil, fmt.Errorf("report: parse healing log: %w", err)
	}
	return l, nil
}

// Append adds a record and rewrites the file.
func (l *HealingLog) Append(rec LogRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	l.records = append(l.records, rec)

	data, err := json.MarshalIndent(l.records, "", "  ")
	if err != nil {
		return fmt.Errorf("report: marshal healing log: %w", err)
	}
	if dir := filepath.Dir(l.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("report: healing log dir: %w", err)
		}
	}
	if err := os.WriteFile(l.path, data, 0o644); err != nil {
		return fmt.Errorf("report: write healing log: %w", err)
	}
	return nil
}

// Records returns a copy of the in-memory records.
func (l *HealingLog) Records() []LogRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]LogRecord(nil), l.records...)
}

// Record implements heal.Reporter directly on the flat-file log.
func (l *HealingLog) Record(ctx context.Context, ev heal.Event) error {
	return l.Append(fromEvent(ev))
}

func fromEvent(ev heal.Event) LogRecord {
	ts := ev.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	return LogRecord{
		ID:          uuid.NewString(),
		Timestamp:   ts.UTC().Format(time.RFC3339),
		TestFile:    ev.TestFile,
		OldSelector: ev.OldSelector,
		NewSelector: ev.NewSelector,
		Strategy:    ev.Strategy,
		Action:      ev.Action,
	}
}
