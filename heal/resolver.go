package heal

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/hazyhaar/selmend/driver"
)

// Options configures a Resolver. Zero values take documented defaults.
type Options struct {
	Enabled     bool // set by config; a disabled resolver never heals
	MaxAttempts int  // default 3
	Sensitivity Sensitivity
	BackoffBase time.Duration // default 1s
	BackoffCap  time.Duration // default 5s
	JitterFrac  float64       // default 0.10
	TestFile    string        // stamped on healing events
	Reporter    Reporter      // optional
	Logger      *slog.Logger
	Rand        func() float64 // jitter source, default math/rand
}

// Resolver resolves possibly-stale selectors with bounded retries and
// a deterministic fallback order. One resolver per test session; all
// calls are sequential.
type Resolver struct {
	drv    driver.Driver
	opts   Options
	logger *slog.Logger
	wg     sync.WaitGroup
}

// New creates a Resolver over a driver.
func New(drv driver.Driver, opts Options) *Resolver {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.Sensitivity == "" {
		opts.Sensitivity = SensitivityMedium
	}
	if opts.BackoffBase <= 0 {
		opts.BackoffBase = time.Second
	}
	if opts.BackoffCap <= 0 {
		opts.BackoffCap = 5 * time.Second
	}
	if opts.JitterFrac <= 0 {
		opts.JitterFrac = 0.10
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Rand == nil {
		opts.Rand = rand.Float64
	}
	return &Resolver{drv: drv, opts: opts, logger: opts.Logger}
}

// Resolve resolves a selector to one that currently matches.
//
// Fast path: if the original selector matches on the first probe, it
// is returned as-is with no healing and no log entry. Otherwise the
// permitted strategies are probed in ascending priority order,
// candidates in generation order, first match wins. A miss waits a
// backoff interval and re-queries the DOM from scratch, up to
// MaxAttempts times, then fails with ElementNotFoundError.
func (r *Resolver) Resolve(ctx context.Context, original string, hint ElementHint) (Resolution, error) {
	if original == "" {
		return Resolution{}, fmt.Errorf("heal: empty selector")
	}

	if !r.opts.Enabled {
		snap, err := r.drv.Snapshot(ctx)
		if err != nil {
			return Resolution{}, fmt.Errorf("heal: snapshot: %w", err)
		}
		if len(snap.Query(original)) > 0 {
			return Resolution{Selector: original, Attempts: 1}, nil
		}
		return Resolution{}, &ElementNotFoundError{Original: original, MaxAttempts: 1}
	}

	var lastTried []string
	for attempt := 1; attempt <= r.opts.MaxAttempts; attempt++ {
		snap, err := r.drv.Snapshot(ctx)
		if err != nil {
			r.logger.Warn("heal: snapshot failed", "attempt", attempt, "error", err)
		} else {
			if len(snap.Query(original)) > 0 {
				if attempt == 1 {
					// Common case: nothing stale, nothing to record.
					return Resolution{Selector: original, Attempts: 1}, nil
				}
				// The DOM caught up during backoff. The selector is
				// unchanged but the resolution did heal via retry.
				res := Resolution{Selector: original, Strategy: "retry", Healed: true, Attempts: attempt}
				r.reportHeal(ctx, original, res)
				return res, nil
			}

			strategies := GenerateStrategies(original, hint, r.opts.Sensitivity)
			lastTried = lastTried[:0]
			for _, st := range strategies {
				lastTried = append(lastTried, st.Name)
				for _, cand := range st.Candidates {
					if len(snap.Query(cand)) == 0 {
						continue
					}
					res := Resolution{
						Selector:        cand,
						Strategy:        st.Name,
						Healed:          true,
						Attempts:        attempt,
						StrategiesTried: append([]string(nil), lastTried...),
					}
					r.reportHeal(ctx, original, res)
					return res, nil
				}
			}
		}

		if err := r.drv.Sleep(ctx, r.backoff(attempt)); err != nil {
			return Resolution{}, fmt.Errorf("heal: backoff interrupted: %w", err)
		}
	}

	r.report(ctx, Event{
		Timestamp:   time.Now(),
		TestFile:    r.opts.TestFile,
		OldSelector: original,
		Action:      ActionHealingFailed,
		Attempts:    r.opts.MaxAttempts,
	})
	return Resolution{}, &ElementNotFoundError{Original: original, MaxAttempts: r.opts.MaxAttempts}
}

// backoff is base doubling per attempt, capped, plus up to JitterFrac
// of extra random delay.
func (r *Resolver) backoff(attempt int) time.Duration {
	d := r.opts.BackoffBase << uint(attempt-1)
	if d > r.opts.BackoffCap {
		d = r.opts.BackoffCap
	}
	return d + time.Duration(float64(d)*r.opts.JitterFrac*r.opts.Rand())
}

// reportHeal emits the element_found record and asynchronously
// suggests updating the authored selector. Both are best-effort.
func (r *Resolver) reportHeal(ctx context.Context, original string, res Resolution) {
	now := time.Now()
	r.report(ctx, Event{
		Timestamp:   now,
		TestFile:    r.opts.TestFile,
		OldSelector: original,
		NewSelector: res.Selector,
		Strategy:    res.Strategy,
		Action:      ActionElementFound,
		Attempts:    res.Attempts,
	})

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		// Deliberately detached from the resolution's context: the
		// suggestion must survive the step finishing first.
		r.report(context.Background(), Event{
			Timestamp:   now,
			TestFile:    r.opts.TestFile,
			OldSelector: original,
			NewSelector: res.Selector,
			Strategy:    res.Strategy,
			Action:      ActionLocatorUpdate,
			Attempts:    res.Attempts,
		})
	}()
}

func (r *Resolver) report(ctx context.Context, ev Event) {
	if r.opts.Reporter == nil {
		return
	}
	if err := r.opts.Reporter.Record(ctx, ev); err != nil {
		r.logger.Warn("heal: report failed", "action", ev.Action, "selector", ev.OldSelector, "error", err)
	}
}

// Flush waits for in-flight asynchronous suggestion writes. Call at
// the end of a run before reading the healing log.
func (r *Resolver) Flush() {
	r.wg.Wait()
}
