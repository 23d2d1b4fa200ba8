package classify

import (
	"context"
	"fmt"
	"testing"

	"github.com/hazyhaar/selmend/heal"
	"github.com/hazyhaar/selmend/visual"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Signature
	}{
		{"nil", nil, SignatureUnknown},
		{"element not found", &heal.ElementNotFoundError{Original: "#x", MaxAttempts: 3}, SignatureSelector},
		{"wrapped element not found", fmt.Errorf("step: %w", &heal.ElementNotFoundError{Original: "#x", MaxAttempts: 3}), SignatureSelector},
		{"dimension mismatch", &visual.DimensionMismatchError{Name: "page"}, SignatureVisual},
		{"deadline", context.DeadlineExceeded, SignatureTimeout},
		{"timeout message", fmt.Errorf("waiting for page timed out"), SignatureTimeout},
		{"detached", fmt.Errorf("element is detached from document"), SignatureDOMDetach},
		{"stale", fmt.Errorf("stale element reference"), SignatureDOMDetach},
		{"connection refused", fmt.Errorf("dial tcp: connection refused"), SignatureNetwork},
		{"assertion", fmt.Errorf("expected 3 items, got 2"), SignatureAssertion},
		{"mystery", fmt.Errorf("something odd happened"), SignatureUnknown},
	}
	for _, tt := range tests {
		if got := Classify(tt.err); got != tt.want {
			t.Errorf("%s: Classify = %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestParseTags(t *testing.T) {
	tags := ParseTags(" Smoke, visual ,,REGRESSION ")
	if len(tags) != 3 {
		t.Fatalf("tags = %v", tags)
	}
	for _, want := range []string{"smoke", "visual", "regression"} {
		if !tags.Has(want) {
			t.Errorf("missing tag %q", want)
		}
	}
	if tags.Has("quarantine") {
		t.Error("unexpected tag")
	}
}

func TestTagsMatchesAny(t *testing.T) {
	tags := ParseTags("smoke,visual")

	if !tags.MatchesAny(ParseTags("visual")) {
		t.Error("visual filter should match")
	}
	if tags.MatchesAny(ParseTags("quarantine")) {
		t.Error("quarantine filter should not match")
	}
	if !tags.MatchesAny(Tags{}) {
		t.Error("empty filter matches everything")
	}
}

func TestTagsString(t *testing.T) {
	if got := ParseTags("visual,smoke").String(); got != "smoke,visual" {
		t.Fatalf("String = %q", got)
	}
}
