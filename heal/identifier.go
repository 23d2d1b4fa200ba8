package heal

import (
	"strings"
	"unicode"
)

// ExtractIdentifier pulls the most specific identifier substring out
// of a selector. Precedence: #id, .class, quoted attribute value,
// :contains text; the first form present wins. Empty when the selector
// carries none of them (e.g. a bare combinator like "div > span").
func ExtractIdentifier(selector string) string {
	if idx := strings.IndexByte(selector, '#'); idx >= 0 {
		if id := identToken(selector[idx+1:]); id != "" {
			return id
		}
	}
	if idx := strings.IndexByte(selector, '.'); idx >= 0 {
		if class := identToken(selector[idx+1:]); class != "" {
			return class
		}
	}
	if v := quotedAttrValue(selector); v != "" {
		return v
	}
	if idx := strings.Index(selector, ":contains("); idx >= 0 {
		rest := selector[idx+len(":contains("):]
		if close := strings.IndexByte(rest, ')'); close >= 0 {
			return strings.Trim(rest[:close], `"' `)
		}
	}
	return ""
}

// identToken returns the leading identifier run (letters, digits,
// '-', '_').
func identToken(s string) string {
	for i, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' && r != '_' {
			return s[:i]
		}
	}
	return s
}

// quotedAttrValue returns the first quoted value inside an attribute
// selector, e.g. `submit-btn` from `[data-testid="submit-btn"]`.
func quotedAttrValue(selector string) string {
	open := strings.IndexByte(selector, '[')
	if open < 0 {
		return ""
	}
	close := strings.IndexByte(selector[open:], ']')
	if close < 0 {
		return ""
	}
	inner := selector[open+1 : open+close]
	eq := strings.IndexByte(inner, '=')
	if eq < 0 {
		return ""
	}
	return strings.Trim(inner[eq+1:], `"' `)
}

// ReadableText converts an identifier to spaced lowercase words:
// "submitBtn" and "submit-btn" both become "submit btn".
func ReadableText(identifier string) string {
	if identifier == "" {
		return ""
	}
	var words []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			words = append(words, strings.ToLower(cur.String()))
			cur.Reset()
		}
	}
	prevLower := false
	for _, r := range identifier {
		switch {
		case r == '-' || r == '_' || r == ' ':
			flush()
			prevLower = false
		case unicode.IsUpper(r):
			if prevLower {
				flush()
			}
			cur.WriteRune(r)
			prevLower = false
		default:
			cur.WriteRune(r)
			prevLower = unicode.IsLower(r) || unicode.IsDigit(r)
		}
	}
	flush()
	return strings.Join(words, " ")
}

// cleanIdentifier strips everything but letters and digits.
func cleanIdentifier(identifier string) string {
	var sb strings.Builder
	for _, r := range identifier {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
