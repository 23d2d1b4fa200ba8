// Package heal implements selector auto-healing: when an authored
// selector no longer matches, a ranked set of fallback strategies is
// generated from it and probed against the current DOM snapshot until
// one matches or the attempt budget runs out.
package heal

import (
	"context"
	"time"
)

// Sensitivity controls how aggressive the fallback strategies are
// allowed to be. Higher tiers admit lower-confidence strategies.
type Sensitivity string

const (
	SensitivityLow    Sensitivity = "low"
	SensitivityMedium Sensitivity = "medium"
	SensitivityHigh   Sensitivity = "high"
)

// MaxPriority returns the highest strategy priority permitted at this
// sensitivity. Unknown values fall back to medium.
func (s Sensitivity) MaxPriority() int {
	switch s {
	case SensitivityLow:
		return 2
	case SensitivityHigh:
		return 6
	default:
		return 4
	}
}

// ElementHint narrows strategy generation to a broad element family.
type ElementHint string

const (
	HintNone      ElementHint = ""
	HintButton    ElementHint = "button"
	HintInput     ElementHint = "input"
	HintLink      ElementHint = "link"
	HintSelect    ElementHint = "select"
	HintText      ElementHint = "text"
	HintContainer ElementHint = "container"
)

// Strategy is a named, prioritised generator output: an ordered list
// of candidate selectors. Immutable once generated for a probe.
type Strategy struct {
	Name       string
	Priority   int // 1..6, lower probes first
	Candidates []string
}

// Resolution is the outcome of a successful Resolve call.
type Resolution struct {
	Selector        string // the selector that matched
	Strategy        string // empty when the original matched on the first probe
	Healed          bool
	Attempts        int
	StrategiesTried []string
}

// Event actions recorded in the healing log.
const (
	ActionElementFound  = "element_found"
	ActionLocatorUpdate = "locator_updated"
	ActionHealingFailed = "healing_failed"
)

// Event is one healing occurrence handed to the Reporter.
type Event struct {
	Timestamp   time.Time
	TestFile    string
	OldSelector string
	NewSelector string
	Strategy    string
	Action      string
	Attempts    int
}

// Reporter receives healing events. Implementations must tolerate
// being called from a goroutine; failures are logged by the resolver
// and never affect the resolution outcome.
type Reporter interface {
	Record(ctx context.Context, ev Event) error
}
