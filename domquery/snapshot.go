// Package domquery provides DOM snapshots and a selector engine used to
// probe them. The dialect is the small CSS subset the healing strategies
// emit: tag, #id, .class, attribute selectors with =, *=, ^= and $=
// operators, :contains(), positional pseudo-classes, descendant
// combinators and comma groups.
//
// domquery never talks to a browser. It operates on a single parsed HTML
// snapshot; callers re-take the snapshot when they want a fresh view.
package domquery

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"golang.org/x/net/html"
)

// Snapshot is a parsed DOM photo taken at a single point in time.
// The raw HTML is kept alongside the parsed tree so consumers can
// persist or hash it without re-serialising.
type Snapshot struct {
	Root  *html.Node
	HTML  []byte
	Hash  string // SHA-256 hex of HTML
	Taken time.Time
}

// Parse builds a Snapshot from raw HTML bytes.
func Parse(raw []byte) (*Snapshot, error) {
	root, err := html.Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("domquery: parse: %w", err)
	}
	sum := sha256.Sum256(raw)
	return &Snapshot{
		Root:  root,
		HTML:  raw,
		Hash:  hex.EncodeToString(sum[:]),
		Taken: time.Now(),
	}, nil
}

// Query returns all nodes in the snapshot matching the selector.
func (s *Snapshot) Query(selector string) []*html.Node {
	return Match(s.Root, selector)
}
