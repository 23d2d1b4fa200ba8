package heal

import (
	"context"

	"github.com/hazyhaar/selmend/driver"
)

// ClickWithHealing resolves the selector, healing it if necessary,
// then clicks the resolved element. Pure composition: no retry logic
// beyond what Resolve already does.
func (r *Resolver) ClickWithHealing(ctx context.Context, selector string, hint ElementHint) error {
	res, err := r.Resolve(ctx, selector, hint)
	if err != nil {
		return err
	}
	return r.drv.Perform(ctx, driver.Action{Kind: driver.ActionClick, Selector: res.Selector})
}

// TypeWithHealing resolves the selector, healing it if necessary, then
// types the text into the resolved element.
func (r *Resolver) TypeWithHealing(ctx context.Context, selector, text string, hint ElementHint) error {
	res, err := r.Resolve(ctx, selector, hint)
	if err != nil {
		return err
	}
	return r.drv.Perform(ctx, driver.Action{Kind: driver.ActionType, Selector: res.Selector, Text: text})
}
