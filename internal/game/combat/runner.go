package combat

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ErrTurnLimit is returned by Run when the turn cap is reached first.
var ErrTurnLimit = errors.New("turn limit reached")

// Request tells a Chooser what kind of decision is wanted.
type Request struct {
	Side SideID
	// Replacement is set when the side must pick a roster slot to bring in
	// after a faint. The answer must then be a SwitchTo action.
	Replacement bool
}

// Chooser picks actions for one side.
type Chooser interface {
	Choose(b *Battle, req Request) (Action, error)
}

// ChooserFunc adapts a function to Chooser.
type ChooserFunc func(b *Battle, req Request) (Action, error)

// Choose implements Chooser.
func (f ChooserFunc) Choose(b *Battle, req Request) (Action, error) { return f(b, req) }

// Run drives b to completion, asking each side's chooser for an action
// every turn it is not locked in and for a replacement after each faint.
// maxTurns <= 0 means no cap.
//
// Postcondition: Returns the final Result. The error is ErrTurnLimit when
// the cap stopped the battle, ctx.Err() on cancellation, or the first
// chooser or resolver error.
func Run(ctx context.Context, b *Battle, choosers [2]Chooser, maxTurns int) (Result, error) {
	for !b.Over() {
		if err := ctx.Err(); err != nil {
			return b.Result(), err
		}
		for id := SideA; id <= SideB; id++ {
			if !b.Sides[id].PendingReplacement {
				continue
			}
			a, err := choosers[id].Choose(b, Request{Side: id, Replacement: true})
			if err != nil {
				return b.Result(), fmt.Errorf("side %s replacement: %w", id, err)
			}
			if _, err := b.Replace(id, a.Index); err != nil {
				return b.Result(), err
			}
		}
		if maxTurns > 0 && b.Turn >= maxTurns {
			b.logger.Info("turn limit reached", zap.String("battle_id", b.ID.String()), zap.Int("turns", b.Turn))
			return b.Result(), ErrTurnLimit
		}
		var acts [2]Action
		for id := SideA; id <= SideB; id++ {
			if !b.NeedsAction(id) {
				continue
			}
			a, err := choosers[id].Choose(b, Request{Side: id})
			if err != nil {
				return b.Result(), fmt.Errorf("side %s: %w", id, err)
			}
			acts[id] = a
		}
		if _, err := b.ResolveTurn(acts[SideA], acts[SideB]); err != nil {
			return b.Result(), err
		}
	}
	return b.Result(), nil
}
