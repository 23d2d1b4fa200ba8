package domquery

import (
	"testing"

	"golang.org/x/net/html"
)

const testPage = `<!DOCTYPE html>
<html>
<body>
  <header role="banner"><h1>Shop</h1></header>
  <nav role="navigation">
    <a href="/home" class="nav-link">Home</a>
    <a href="/cart" class="nav-link active">Cart</a>
  </nav>
  <main role="main">
    <form id="checkout">
      <input type="text" name="email" data-testid="email-input">
      <select name="country"><option>FR</option></select>
      <button type="submit" data-testid="submit-btn" class="btn btn-primary">Submit Order</button>
    </form>
    <table>
      <tr><td>first cell</td><td>second cell</td></tr>
    </table>
    <div aria-label="status banner" title="Order Status">pending</div>
  </main>
  <footer role="contentinfo">fin</footer>
</body>
</html>`

func mustParse(t *testing.T) *Snapshot {
	t.Helper()
	snap, err := Parse([]byte(testPage))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return snap
}

func TestMatch(t *testing.T) {
	snap := mustParse(t)

	tests := []struct {
		selector string
		want     int
	}{
		{"#checkout", 1},
		{".nav-link", 2},
		{".nav-link.active", 1},
		{"button", 1},
		{"form input", 1},
		{"form button", 1},
		{`[data-testid="submit-btn"]`, 1},
		{`[data-testid=submit-btn]`, 1},
		{`[data-testid*="submit"]`, 1},
		{`[data-testid^="email"]`, 1},
		{`[data-testid$="btn"]`, 1},
		{`[data-testid]`, 2},
		{`[role="navigation"]`, 1},
		{`button:contains("Submit Order")`, 1},
		{`button:contains("submit order")`, 1}, // case-insensitive
		{`a:contains("Cart")`, 1},
		{`[aria-label="status banner"]`, 1},
		{`[title="Order Status"]`, 1},
		{"nav a", 2},
		{"table td", 2},
		{"td:first", 1},
		{"td:nth-child(2)", 1},
		{"button, a", 3},
		{"#missing", 0},
		{".no-such-class", 0},
		{`[data-cy="nope"]`, 0},
		{">>garbage<<", 0},
		{`div:contains(`, 0}, // unterminated, treated as a miss
	}
	for _, tt := range tests {
		got := snap.Query(tt.selector)
		if len(got) != tt.want {
			t.Errorf("Query(%q) = %d matches, want %d", tt.selector, len(got), tt.want)
		}
	}
}

func TestMatchPositional(t *testing.T) {
	snap := mustParse(t)

	first := snap.Query("td:first")
	if len(first) != 1 || CollectText(first[0]) != "first cell" {
		t.Fatalf("td:first = %v", textsOf(first))
	}
	last := snap.Query("td:last")
	if len(last) != 1 || CollectText(last[0]) != "second cell" {
		t.Fatalf("td:last = %v", textsOf(last))
	}
	nth := snap.Query("a:nth-child(2)")
	if len(nth) != 1 || CollectText(nth[0]) != "Cart" {
		t.Fatalf("a:nth-child(2) = %v", textsOf(nth))
	}
}

func TestMatchGroupOrder(t *testing.T) {
	snap := mustParse(t)

	// Groups are unioned without duplicates.
	got := snap.Query("button, [data-testid=submit-btn]")
	if len(got) != 1 {
		t.Fatalf("union with duplicate = %d matches, want 1", len(got))
	}
}

func TestCollectText(t *testing.T) {
	snap := mustParse(t)
	btn := snap.Query("button")
	if len(btn) != 1 {
		t.Fatal("no button")
	}
	if got := CollectText(btn[0]); got != "Submit Order" {
		t.Fatalf("CollectText = %q", got)
	}
}

func TestParseHash(t *testing.T) {
	a := mustParse(t)
	b := mustParse(t)
	if a.Hash == "" || a.Hash != b.Hash {
		t.Fatalf("hash mismatch: %q vs %q", a.Hash, b.Hash)
	}
}

func textsOf(nodes []*html.Node) []string {
	var out []string
	for _, n := range nodes {
		out = append(out, CollectText(n))
	}
	return out
}
