// Package eval implements the iterative evaluator: rule
// matching, grounded-operator dispatch, control forms, error propagation
// and bounded optional parallel sub-evaluation over value.Value ASTs.
package eval

import (
	"context"

	"mettatron/value"
)

// Budget wraps the optional deadline/cancellation token the evaluator
// accepts, polled between reduction steps. A nil *Budget never trips, and
// neither does the one Background returns.
type Budget struct {
	ctx context.Context
}

// Background returns a Budget with no deadline or cancellation, matching
// eval(source) / compile(source) library entry points that don't need one.
func Background() *Budget { return &Budget{ctx: context.Background()} }

// FromContext wraps a caller-supplied context.Context (carrying a deadline
// via context.WithTimeout or a cancellation via context.WithCancel) as the
// evaluator's polled budget.
func FromContext(ctx context.Context) *Budget { return &Budget{ctx: ctx} }

// tripped reports whether the budget has expired or been cancelled, and if
// so, which Error kind to surface.
func (b *Budget) tripped() (value.Error, bool) {
	if b == nil || b.ctx == nil {
		return value.Error{}, false
	}
	select {
	case <-b.ctx.Done():
		if b.ctx.Err() == context.DeadlineExceeded {
			return value.NewError(value.ErrTimeout, "evaluation deadline exceeded", nil), true
		}
		return value.NewError(value.ErrCancelled, "evaluation cancelled", nil), true
	default:
		return value.Error{}, false
	}
}
