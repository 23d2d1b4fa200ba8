package domquery

import (
	"strings"

	"golang.org/x/net/html"
)

// Match returns all element nodes under root matching the selector.
// Comma-separated groups are unioned in document order of first
// appearance. Unparseable selectors match nothing; the caller treats
// that as an ordinary miss.
func Match(root *html.Node, selector string) []*html.Node {
	var out []*html.Node
	seen := make(map[*html.Node]bool)
	for _, group := range splitTop(selector, ',') {
		for _, n := range matchGroup(root, group) {
			if !seen[n] {
				seen[n] = true
				out = append(out, n)
			}
		}
	}
	return out
}

// matchGroup resolves one comma-free selector: descendant steps
// separated by whitespace.
func matchGroup(root *html.Node, group string) []*html.Node {
	steps := splitTop(group, ' ')
	if len(steps) == 0 {
		return nil
	}

	matches := matchStep([]*html.Node{root}, steps[0], true)
	for _, step := range steps[1:] {
		matches = matchStep(matches, step, false)
	}
	return matches
}

// matchStep finds nodes matching one compound step under each scope
// node. includeScope controls whether the scope itself is a candidate
// (true only for the first step, where the scope is the document root).
func matchStep(scopes []*html.Node, step string, includeScope bool) []*html.Node {
	c := parseCompound(step)
	if c.invalid {
		return nil
	}

	var results []*html.Node
	seen := make(map[*html.Node]bool)
	collect := func(n *html.Node) {
		if !seen[n] && matchesCompound(n, c) {
			seen[n] = true
			results = append(results, n)
		}
	}

	for _, scope := range scopes {
		if includeScope {
			walk(scope, collect)
		} else {
			for ch := scope.FirstChild; ch != nil; ch = ch.NextSibling {
				walk(ch, collect)
			}
		}
	}

	return applyPositional(results, c)
}

// applyPositional narrows a match set for :first / :last. :nth-child
// is structural and already checked per node in matchesCompound.
func applyPositional(nodes []*html.Node, c compound) []*html.Node {
	if len(nodes) == 0 {
		return nodes
	}
	switch c.pos {
	case posFirst:
		return nodes[:1]
	case posLast:
		return nodes[len(nodes)-1:]
	}
	return nodes
}

func walk(n *html.Node, visit func(*html.Node)) {
	visit(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, visit)
	}
}

// matchesCompound checks every condition of a compound step against
// a single node.
func matchesCompound(n *html.Node, c compound) bool {
	if n.Type != html.ElementNode {
		return false
	}
	if c.tag != "" && n.Data != c.tag {
		return false
	}
	if c.id != "" && getAttr(n, "id") != c.id {
		return false
	}
	for _, class := range c.classes {
		if !hasClass(n, class) {
			return false
		}
	}
	for _, a := range c.attrs {
		if !matchesAttr(n, a) {
			return false
		}
	}
	if c.contains != "" {
		if !strings.Contains(strings.ToLower(CollectText(n)), c.contains) {
			return false
		}
	}
	if c.pos == posNthChild && elementIndex(n) != c.nth {
		return false
	}
	return true
}

func matchesAttr(n *html.Node, a attrMatch) bool {
	val, present := lookupAttr(n, a.key)
	if !present {
		return false
	}
	switch a.op {
	case opPresent:
		return true
	case opEquals:
		return val == a.val
	case opContains:
		return strings.Contains(val, a.val)
	case opPrefix:
		return strings.HasPrefix(val, a.val)
	case opSuffix:
		return strings.HasSuffix(val, a.val)
	}
	return false
}

// elementIndex returns the 1-based position of n among its element
// siblings.
func elementIndex(n *html.Node) int {
	if n.Parent == nil {
		return 1
	}
	idx := 0
	for s := n.Parent.FirstChild; s != nil; s = s.NextSibling {
		if s.Type == html.ElementNode {
			idx++
		}
		if s == n {
			return idx
		}
	}
	return 0
}

// CollectText returns the whitespace-normalised text content of a node.
func CollectText(n *html.Node) string {
	var sb strings.Builder
	var rec func(*html.Node)
	rec = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			rec(c)
		}
	}
	rec(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}

func getAttr(n *html.Node, key string) string {
	v, _ := lookupAttr(n, key)
	return v
}

func lookupAttr(n *html.Node, key string) (string, bool) {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val, true
		}
	}
	return "", false
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(getAttr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}
