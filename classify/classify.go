// Package classify buckets test failures into coarse signatures and
// handles test tag sets used for suite filtering.
package classify

import (
	"context"
	"errors"
	"net"
	"sort"
	"strings"

	"github.com/hazyhaar/selmend/heal"
	"github.com/hazyhaar/selmend/visual"
)

// Signature is a categorised failure type.
type Signature string

const (
	SignatureTimeout   Signature = "TIMEOUT"
	SignatureSelector  Signature = "SELECTOR"
	SignatureNetwork   Signature = "NETWORK"
	SignatureDOMDetach Signature = "DOM_DETACH"
	SignatureAssertion Signature = "ASSERTION"
	SignatureVisual    Signature = "VISUAL"
	SignatureUnknown   Signature = "UNKNOWN"
)

// Classify maps an error to its failure signature. Typed errors win;
// message heuristics are the fallback.
func Classify(err error) Signature {
	if err == nil {
		return SignatureUnknown
	}

	var notFound *heal.ElementNotFoundError
	if errors.As(err, &notFound) {
		return SignatureSelector
	}
	var dim *visual.DimensionMismatchError
	if errors.As(err, &dim) {
		return SignatureVisual
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return SignatureTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return SignatureTimeout
		}
		return SignatureNetwork
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "timed out") || strings.Contains(msg, "deadline"):
		return SignatureTimeout
	case strings.Contains(msg, "detached") || strings.Contains(msg, "stale element"):
		return SignatureDOMDetach
	case strings.Contains(msg, "no element") || strings.Contains(msg, "not found") || strings.Contains(msg, "selector"):
		return SignatureSelector
	case strings.Contains(msg, "connection") || strings.Contains(msg, "network") || strings.Contains(msg, "refused"):
		return SignatureNetwork
	case strings.Contains(msg, "expected") || strings.Contains(msg, "assert"):
		return SignatureAssertion
	}
	return SignatureUnknown
}

// Tags is a set of test classification tags (smoke, regression,
// visual, quarantine, ...).
type Tags map[string]bool

// ParseTags parses a comma-separated tag list: "smoke, visual".
func ParseTags(s string) Tags {
	tags := make(Tags)
	for _, t := range strings.Split(s, ",") {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			tags[t] = true
		}
	}
	return tags
}

// Has reports whether the tag is present.
func (t Tags) Has(tag string) bool {
	return t[strings.ToLower(strings.TrimSpace(tag))]
}

// MatchesAny reports whether any of the wanted tags is present. An
// empty filter matches everything.
func (t Tags) MatchesAny(wanted Tags) bool {
	if len(wanted) == 0 {
		return true
	}
	for tag := range wanted {
		if t[tag] {
			return true
		}
	}
	return false
}

// String renders the tags in sorted order.
func (t Tags) String() string {
	out := make([]string, 0, len(t))
	for tag := range t {
		out = append(out, tag)
	}
	sort.Strings(out)
	return strings.Join(out, ",")
}
