package report

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/hazyhaar/selmend/heal"
)

// Store is the SQLite healing-history database, queried by the
// dashboard. Opened with WAL and foreign keys per the usual pragmas.
type Store struct {
	DB *sql.DB
}

// OpenStore opens (or creates) the history database at path and
// applies the schema. Import the modernc.org/sqlite driver in the
// binary.
func OpenStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("report: store dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("report: open store: %w", err)
	}

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("report: %s: %w", p, err)
		}
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("report: apply schema: %w", err)
	}
	return &Store{DB: db}, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.DB.Close() }

// HealRow is one persisted healing event.
type HealRow struct {
	ID          string `json:"id"`
	TestFile    string `json:"testFile"`
	OldSelector string `json:"oldSelector"`
	NewSelector string `json:"newSelector"`
	Strategy    string `json:"strategy"`
	Action      string `json:"action"`
	Attempts    int    `json:"attempts"`
	CreatedAt   int64  `json:"createdAt"` // epoch milliseconds
}

// Insert records one healing event.
func (s *Store) Insert(ctx context.Context, row HealRow) error {
	if row.ID == "" {
		row.ID = uuid.NewString()
	}
	if row.CreatedAt == 0 {
		row.CreatedAt = time.Now().UnixMilli()
	}
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO heals (id, test_file, old_selector, new_selector, strategy, action, attempts, created_at)
		VALUES (?,?,?,?,?,?,?,?)`,
		row.ID, row.TestFile, row.OldSelector, row.NewSelector, row.Strategy, row.Action, row.Attempts, row.CreatedAt)
	if err != nil {
		return fmt.Errorf("report: insert heal: %w", err)
	}
	return nil
}

// Record implements heal.Reporter on the history store.
func (s *Store) Record(ctx context.Context, ev heal.Event) error {
	ts := ev.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	return s.Insert(ctx, HealRow{
		TestFile:    ev.TestFile,
		OldSelector: ev.OldSelector,
		NewSelector: ev.NewSelector,
		Strategy:    ev.Strategy,
		Action:      ev.Action,
		Attempts:    ev.Attempts,
		CreatedAt:   ts.UnixMilli(),
	})
}

// Recent returns up to limit events, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]HealRow, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, test_file, old_selector, new_selector, strategy, action, attempts, created_at
		FROM heals ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("report: recent heals: %w", err)
	}
	defer rows.Close()

	var out []HealRow
	for rows.Next() {
		var r HealRow
		if err := rows.Scan(&r.ID, &r.TestFile, &r.OldSelector, &r.NewSelector,
			&r.Strategy, &r.Action, &r.Attempts, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("report: scan heal: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Stats summarises event counts per action and per strategy.
type Stats struct {
	Total      int            `json:"total"`
	ByAction   map[string]int `json:"byAction"`
	ByStrategy map[string]int `json:"byStrategy"`
}

// Stats aggregates the full history.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	st := &Stats{ByAction: make(map[string]int), ByStrategy: make(map[string]int)}

	rows, err := s.DB.QueryContext(ctx, `SELECT action, COUNT(*) FROM heals GROUP BY action`)
	if err != nil {
		return nil, fmt.Errorf("report: stats by action: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var action string
		var n int
		if err := rows.Scan(&action, &n); err != nil {
			return nil, err
		}
		st.ByAction[action] = n
		st.Total += n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	srows, err := s.DB.QueryContext(ctx, `
		SELECT strategy, COUNT(*) FROM heals WHERE strategy != '' GROUP BY strategy`)
	if err != nil {
		return nil, fmt.Errorf("report: stats by strategy: %w", err)
	}
	defer srows.Close()
	for srows.Next() {
		var strategy string
		var n int
		if err := srows.Scan(&strategy, &n); err != nil {
			return nil, err
		}
		st.ByStrategy[strategy] = n
	}
	return st, srows.Err()
}
