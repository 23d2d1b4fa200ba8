package heal

import (
	"fmt"
	"strings"
)

// Attribute strategy inputs. aria-label exact matches belong to the
// text strategy, which keeps this grid at 24 candidates.
var (
	attrNames = []string{"id", "name", "data-testid", "data-cy", "data-test", "class"}
	attrOps   = []string{"=", "*=", "^=", "$="}
)

// semanticByHint maps an element hint to generic tag/role selectors.
var semanticByHint = map[ElementHint][]string{
	HintButton:    {"button", `[role="button"]`, `input[type="submit"]`, `input[type="button"]`},
	HintInput:     {"input", "textarea", `[role="textbox"]`, `[contenteditable="true"]`},
	HintLink:      {"a", `[role="link"]`},
	HintSelect:    {"select", `[role="listbox"]`, `[role="combobox"]`},
	HintText:      {"label", "legend", "span", "p"},
	HintContainer: {"div", "section", `[role="group"]`, `[role="region"]`},
}

// roleByHint maps an element hint to ARIA role selectors.
var roleByHint = map[ElementHint][]string{
	HintButton:    {`[role="button"]`},
	HintInput:     {`[role="textbox"]`},
	HintLink:      {`[role="link"]`},
	HintSelect:    {`[role="listbox"]`, `[role="combobox"]`},
	HintText:      {`[role="heading"]`},
	HintContainer: {`[role="group"]`, `[role="region"]`},
}

// landmarkRoles are appended to the role strategy regardless of hint.
var landmarkRoles = []string{"banner", "navigation", "main", "complementary", "contentinfo"}

// GenerateStrategies produces the six fallback strategies for a failed
// selector, in fixed priority order, filtered to the sensitivity
// ceiling. Pure and deterministic: identical inputs yield identical
// output, no I/O, no randomness.
func GenerateStrategies(original string, hint ElementHint, sens Sensitivity) []Strategy {
	identifier := ExtractIdentifier(original)

	all := []Strategy{
		{Name: "attribute", Priority: 1, Candidates: attributeCandidates(identifier)},
		{Name: "semantic", Priority: 2, Candidates: semanticByHint[hint]},
		{Name: "text", Priority: 3, Candidates: textCandidates(identifier)},
		{Name: "structural", Priority: 4, Candidates: structuralCandidates(original, sens)},
		{Name: "role", Priority: 5, Candidates: roleCandidates(hint)},
		{Name: "fuzzy", Priority: 6, Candidates: fuzzyCandidates(identifier)},
	}

	ceiling := sens.MaxPriority()
	out := make([]Strategy, 0, len(all))
	for _, st := range all {
		if st.Priority <= ceiling {
			out = append(out, st)
		}
	}
	return out
}

// attributeCandidates is the 6x4 grid of attribute selectors over the
// extracted identifier: 24 candidates, attribute-major so that exact
// id matches probe first. Zero candidates without an identifier.
func attributeCandidates(identifier string) []string {
	if identifier == "" {
		return nil
	}
	out := make([]string, 0, len(attrNames)*len(attrOps))
	for _, name := range attrNames {
		for _, op := range attrOps {
			out = append(out, fmt.Sprintf(`[%s%s"%s"]`, name, op, identifier))
		}
	}
	return out
}

// textCandidates derives readable text from the identifier and probes
// text content plus aria-label/title exact matches, over both the
// readable and the raw forms.
func textCandidates(identifier string) []string {
	if identifier == "" {
		return nil
	}
	forms := []string{ReadableText(identifier)}
	if identifier != forms[0] {
		forms = append(forms, identifier)
	}

	var out []string
	for _, f := range forms {
		if f == "" {
			continue
		}
		out = append(out,
			fmt.Sprintf(`:contains("%s")`, f),
			fmt.Sprintf(`button:contains("%s")`, f),
			fmt.Sprintf(`a:contains("%s")`, f),
			fmt.Sprintf(`[aria-label="%s"]`, f),
			fmt.Sprintf(`[title="%s"]`, f),
		)
	}
	return out
}

// structuralCandidates is keyword-triggered from the raw selector
// text. Position-based selectors are low-confidence and only admitted
// at high sensitivity.
func structuralCandidates(original string, sens Sensitivity) []string {
	lower := strings.ToLower(original)
	var out []string
	if strings.Contains(lower, "form") {
		out = append(out, "form input", "form button", "form select", "form textarea")
	}
	if strings.Contains(lower, "nav") || strings.Contains(lower, "menu") {
		out = append(out, "nav a", "nav button", `[role="navigation"] a`)
	}
	if strings.Contains(lower, "table") {
		out = append(out, "table td", "table th", "table tr")
	}
	// Position-based selectors refine a triggered structural context;
	// without one they would match the document root trivially.
	if sens == SensitivityHigh && len(out) > 0 {
		out = append(out, ":first", ":last", ":nth-child(1)", ":nth-child(2)")
	}
	return out
}

func roleCandidates(hint ElementHint) []string {
	out := append([]string(nil), roleByHint[hint]...)
	for _, role := range landmarkRoles {
		out = append(out, fmt.Sprintf(`[role="%s"]`, role))
	}
	return out
}

// fuzzyCandidates builds partial matches from the first half of the
// identifier, and from its alphanumeric-only form when that differs.
// Skipped entirely for identifiers too short to halve meaningfully.
func fuzzyCandidates(identifier string) []string {
	if len(identifier) <= 3 {
		return nil
	}
	forms := []string{identifier[:len(identifier)/2]}
	if cleaned := cleanIdentifier(identifier); cleaned != identifier {
		forms = append(forms, cleaned)
	}

	var out []string
	for _, f := range forms {
		out = append(out,
			fmt.Sprintf(`[id*="%s"]`, f),
			fmt.Sprintf(`[class*="%s"]`, f),
			fmt.Sprintf(`[data-testid*="%s"]`, f),
		)
	}
	return out
}
