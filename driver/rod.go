package driver

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/hazyhaar/selmend/domquery"
)

// Rod is a Driver backed by a live rod page. It reads the DOM by
// serialising outerHTML and performs actions through CDP input events.
type Rod struct {
	page    *rod.Page
	navWait time.Duration
}

// RodOption configures a Rod driver.
type RodOption func(*rodConfig)

type rodConfig struct {
	stealth bool
	navWait time.Duration
}

// WithStealth creates the page through the stealth helper, hiding the
// usual headless fingerprints.
func WithStealth() RodOption { return func(c *rodConfig) { c.stealth = true } }

// WithNavTimeout bounds navigation and load waits. Default: 30s.
func WithNavTimeout(d time.Duration) RodOption { return func(c *rodConfig) { c.navWait = d } }

// OpenRod opens a new page on the browser, navigates to the URL and
// waits for load.
func OpenRod(ctx context.Context, b *rod.Browser, pageURL string, opts ...RodOption) (*Rod, error) {
	cfg := rodConfig{navWait: 30 * time.Second}
	for _, o := range opts {
		o(&cfg)
	}

	var page *rod.Page
	var err error
	if cfg.stealth {
		page, err = stealth.Page(b)
	} else {
		page, err = b.Page(proto.TargetCreateTarget{URL: ""})
	}
	if err != nil {
		return nil, fmt.Errorf("driver: create page: %w", err)
	}

	navCtx, cancel := context.WithTimeout(ctx, cfg.navWait)
	defer cancel()

	if err := page.Context(navCtx).Navigate(pageURL); err != nil {
		page.Close()
		return nil, fmt.Errorf("driver: navigate %s: %w", pageURL, err)
	}
	if err := page.Context(navCtx).WaitLoad(); err != nil {
		page.Close()
		return nil, fmt.Errorf("driver: wait load %s: %w", pageURL, err)
	}

	return &Rod{page: page, navWait: cfg.navWait}, nil
}

// NewRod wraps an already-open rod page.
func NewRod(page *rod.Page) *Rod {
	return &Rod{page: page, navWait: 30 * time.Second}
}

// Snapshot serialises the full DOM as outer HTML and parses it.
func (r *Rod) Snapshot(ctx context.Context) (*domquery.Snapshot, error) {
	res, err := r.page.Context(ctx).Eval(`() => document.documentElement.outerHTML`)
	if err != nil {
		return nil, fmt.Errorf("driver: get DOM: %w", err)
	}
	return domquery.Parse([]byte(res.Value.Str()))
}

// Perform locates the element for the action's selector and executes
// the action. Selectors in the healing dialect that the browser cannot
// evaluate natively (:contains, :first, :last) are translated here.
func (r *Rod) Perform(ctx context.Context, act Action) error {
	el, err := r.element(ctx, act.Selector)
	if err != nil {
		return fmt.Errorf("driver: locate %q: %w", act.Selector, err)
	}

	switch act.Kind {
	case ActionClick:
		if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
			return fmt.Errorf("driver: click %q: %w", act.Selector, err)
		}
	case ActionType:
		if err := el.Input(act.Text); err != nil {
			return fmt.Errorf("driver: type into %q: %w", act.Selector, err)
		}
	default:
		return fmt.Errorf("driver: unknown action %q", act.Kind)
	}
	return nil
}

// Screenshot captures the viewport as PNG.
func (r *Rod) Screenshot(ctx context.Context, name string) ([]byte, error) {
	data, err := r.page.Context(ctx).Screenshot(false, nil)
	if err != nil {
		return nil, fmt.Errorf("driver: screenshot %s: %w", name, err)
	}
	return data, nil
}

// Sleep is a real-time suspension of the test thread.
func (r *Rod) Sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close closes the underlying page.
func (r *Rod) Close() error {
	if r.page != nil {
		return r.page.Close()
	}
	return nil
}

// element resolves a healing-dialect selector to a rod element handle.
func (r *Rod) element(ctx context.Context, sel string) (*rod.Element, error) {
	page := r.page.Context(ctx)

	if base, needle, ok := splitContains(sel); ok {
		if base == "" {
			base = "*"
		}
		return page.ElementR(base, "/"+regexp.QuoteMeta(needle)+"/i")
	}

	if base, found := strings.CutSuffix(sel, ":first"); found {
		if base == "" {
			base = "*"
		}
		els, err := page.Elements(base)
		if err != nil {
			return nil, err
		}
		if len(els) == 0 {
			return nil, fmt.Errorf("no match for %q", base)
		}
		return els[0], nil
	}
	if base, found := strings.CutSuffix(sel, ":last"); found {
		if base == "" {
			base = "*"
		}
		els, err := page.Elements(base)
		if err != nil {
			return nil, err
		}
		if len(els) == 0 {
			return nil, fmt.Errorf("no match for %q", base)
		}
		return els[len(els)-1], nil
	}

	// :nth-child and everything else are valid CSS for the browser.
	return page.Element(sel)
}

// splitContains splits "tag:contains(\"x\")" into its base selector
// and needle.
func splitContains(sel string) (base, needle string, ok bool) {
	idx := strings.Index(sel, ":contains(")
	if idx < 0 {
		return "", "", false
	}
	end := strings.LastIndexByte(sel, ')')
	if end <= idx {
		return "", "", false
	}
	needle = strings.Trim(sel[idx+len(":contains("):end], `"' `)
	return sel[:idx], needle, true
}
