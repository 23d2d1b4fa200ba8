package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Suggestions appends human-readable selector-replacement suggestions
// to a flat file. One line per suggestion, newest last. Best-effort:
// callers treat write failures as warnings.
type Suggestions struct {
	path string
	mu   sync.Mutex
}

// NewSuggestions creates a suggestion writer targeting path.
func NewSuggestions(path string) *Suggestions {
	return &Suggestions{path: path}
}

// Suggest appends one replace-this-selector line.
func (s *Suggestions) Suggest(testFile, oldSelector, newSelector, strategy string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("report: suggestions dir: %w", err)
		}
	}
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("report: open suggestions: %w", err)
	}
	defer f.Close()

	line := fmt.Sprintf("%s  %s: replace %q with %q (via %s strategy)\n",
		time.Now().UTC().Format(time.RFC3339), testFile, oldSelector, newSelector, strategy)
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("report: write suggestion: %w", err)
	}
	return nil
}
