// Package driver defines the boundary between the healing resolver and
// whatever supplies DOM snapshots and executes element actions. The
// resolver only ever sees this interface; production code plugs in the
// rod-backed driver, tests and offline replay use Static.
package driver

import (
	"context"
	"time"

	"github.com/hazyhaar/selmend/domquery"
)

// ActionKind is the kind of element action a driver can perform.
type ActionKind string

const (
	ActionClick ActionKind = "click"
	ActionType  ActionKind = "type"
)

// Action is one element action to perform against the live page.
type Action struct {
	Kind     ActionKind
	Selector string
	Text     string // for ActionType
}

// Driver supplies DOM snapshots and executes actions. Implementations
// must be safe for sequential use from a single test thread; no
// concurrent calls are made within one resolution.
type Driver interface {
	// Snapshot returns a fresh parsed snapshot of the current DOM.
	Snapshot(ctx context.Context) (*domquery.Snapshot, error)

	// Perform executes an element action against the live page.
	Perform(ctx context.Context, act Action) error

	// Screenshot captures the current viewport as PNG bytes.
	Screenshot(ctx context.Context, name string) ([]byte, error)

	// Sleep suspends the calling test thread. Drivers may virtualise
	// time; the resolver never calls time.Sleep directly.
	Sleep(ctx context.Context, d time.Duration) error
}
