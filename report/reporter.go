package report

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hazyhaar/selmend/heal"
)

// Reporter fans healing events out to the flat-file log, the history
// store, the suggestion writer and the webhook, whichever are
// configured. Sink errors are collected but each sink still runs;
// locator_updated events are the only ones turned into suggestions.
type Reporter struct {
	Log         *HealingLog
	Store       *Store
	Suggestions *Suggestions
	Webhook     *Webhook
	Logger      *slog.Logger
}

// Record implements heal.Reporter.
func (r *Reporter) Record(ctx context.Context, ev heal.Event) error {
	var errs []error

	if r.Log != nil {
		if err := r.Log.Record(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	if r.Store != nil {
		if err := r.Store.Record(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	if r.Suggestions != nil && ev.Action == heal.ActionLocatorUpdate {
		if err := r.Suggestions.Suggest(ev.TestFile, ev.OldSelector, ev.NewSelector, ev.Strategy); err != nil {
			errs = append(errs, err)
		}
	}
	if r.Webhook != nil {
		if err := r.Webhook.Record(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 && r.Logger != nil {
		r.Logger.Warn("report: sink failures", "count", len(errs), "error", errors.Join(errs...))
	}
	return errors.Join(errs...)
}
