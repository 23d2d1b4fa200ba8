package domquery

import (
	"strconv"
	"strings"
)

// attrOp is an attribute comparison operator.
type attrOp string

const (
	opPresent  attrOp = ""   // [attr]
	opEquals   attrOp = "="  // [attr=v]
	opContains attrOp = "*=" // [attr*=v]
	opPrefix   attrOp = "^=" // [attr^=v]
	opSuffix   attrOp = "$=" // [attr$=v]
)

// positional filters applied to a step's match set.
type positional int

const (
	posNone positional = iota
	posFirst
	posLast
	posNthChild
)

// attrMatch is one [key op value] condition.
type attrMatch struct {
	key string
	op  attrOp
	val string
}

// compound is one whitespace-separated step of a selector: a tag,
// id, classes, attribute conditions, a :contains() needle and an
// optional positional pseudo-class, all of which must hold together.
type compound struct {
	tag      string
	id       string
	classes  []string
	attrs    []attrMatch
	contains string // lowercased needle, empty if absent
	pos      positional
	nth      int // 1-based, for posNthChild
	invalid  bool
}

// splitTop splits s on sep at nesting depth zero, respecting
// brackets, parentheses and quotes. Used for comma groups and
// descendant steps.
func splitTop(s string, sep byte) []string {
	var parts []string
	depth := 0
	var quote byte
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '[' || c == '(':
			depth++
		case c == ']' || c == ')':
			depth--
		case c == sep && depth == 0:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	parts = append(parts, s[start:])
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseCompound parses a single selector step.
func parseCompound(s string) compound {
	var c compound
	for len(s) > 0 {
		switch s[0] {
		case '#':
			rest := s[1:]
			end := tokenEnd(rest)
			c.id = rest[:end]
			s = rest[end:]
		case '.':
			rest := s[1:]
			end := tokenEnd(rest)
			c.classes = append(c.classes, rest[:end])
			s = rest[end:]
		case '[':
			close := strings.IndexByte(s, ']')
			if close < 0 {
				c.invalid = true
				return c
			}
			c.attrs = append(c.attrs, parseAttr(s[1:close]))
			s = s[close+1:]
		case ':':
			var ok bool
			s, ok = parsePseudo(s, &c)
			if !ok {
				c.invalid = true
				return c
			}
		default:
			end := tokenEnd(s)
			if end == 0 {
				c.invalid = true
				return c
			}
			c.tag = strings.ToLower(s[:end])
			s = s[end:]
		}
	}
	return c
}

// tokenEnd returns the length of the leading identifier run.
func tokenEnd(s string) int {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '#', '.', '[', ':':
			return i
		}
	}
	return len(s)
}

// parseAttr parses the inside of an [attr...] selector.
func parseAttr(s string) attrMatch {
	for _, op := range []attrOp{opContains, opPrefix, opSuffix, opEquals} {
		if idx := strings.Index(s, string(op)); idx >= 0 {
			return attrMatch{
				key: strings.TrimSpace(s[:idx]),
				op:  op,
				val: unquote(s[idx+len(op):]),
			}
		}
	}
	return attrMatch{key: strings.TrimSpace(s), op: opPresent}
}

// parsePseudo consumes one :pseudo from the front of s.
func parsePseudo(s string, c *compound) (rest string, ok bool) {
	switch {
	case strings.HasPrefix(s, ":contains("):
		close := strings.IndexByte(s, ')')
		if close < 0 {
			return "", false
		}
		c.contains = strings.ToLower(unquote(s[len(":contains("):close]))
		return s[close+1:], true
	case strings.HasPrefix(s, ":nth-child("):
		close := strings.IndexByte(s, ')')
		if close < 0 {
			return "", false
		}
		n, err := strconv.Atoi(strings.TrimSpace(s[len(":nth-child("):close]))
		if err != nil || n < 1 {
			return "", false
		}
		c.pos, c.nth = posNthChild, n
		return s[close+1:], true
	case strings.HasPrefix(s, ":first"):
		c.pos = posFirst
		return s[len(":first"):], true
	case strings.HasPrefix(s, ":last"):
		c.pos = posLast
		return s[len(":last"):], true
	}
	return "", false
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}
