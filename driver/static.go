package driver

import (
	"context"
	"fmt"
	"time"

	"github.com/hazyhaar/selmend/domquery"
)

// Static is a Driver over fixed HTML documents. Each Snapshot call
// consumes the next page in the sequence; the last page repeats once
// the sequence is exhausted. Sleeps are recorded but not performed,
// which keeps retry tests instant.
type Static struct {
	pages   []string
	next    int
	PNG     []byte // returned by Screenshot
	Actions []Action
	Slept   []time.Duration
	SnapErr error // forced Snapshot error, if set
	ActErr  error // forced Perform error, if set
}

// NewStatic creates a static driver over one or more HTML documents.
func NewStatic(pages ...string) *Static {
	return &Static{pages: pages}
}

func (s *Static) Snapshot(ctx context.Context) (*domquery.Snapshot, error) {
	if s.SnapErr != nil {
		return nil, s.SnapErr
	}
	if len(s.pages) == 0 {
		return domquery.Parse(nil)
	}
	i := s.next
	if i >= len(s.pages) {
		i = len(s.pages) - 1
	}
	s.next++
	return domquery.Parse([]byte(s.pages[i]))
}

func (s *Static) Perform(ctx context.Context, act Action) error {
	if s.ActErr != nil {
		return s.ActErr
	}
	if len(s.pages) == 0 {
		return fmt.Errorf("static: no pages")
	}
	// Act against the page the last Snapshot call returned.
	idx := s.next - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(s.pages) {
		idx = len(s.pages) - 1
	}
	snap, err := domquery.Parse([]byte(s.pages[idx]))
	if err != nil {
		return err
	}
	if len(snap.Query(act.Selector)) == 0 {
		return fmt.Errorf("static: no element for %q", act.Selector)
	}
	s.Actions = append(s.Actions, act)
	return nil
}

func (s *Static) Screenshot(ctx context.Context, name string) ([]byte, error) {
	if s.PNG == nil {
		return nil, fmt.Errorf("static: no screenshot configured")
	}
	return s.PNG, nil
}

func (s *Static) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.Slept = append(s.Slept, d)
	return nil
}
