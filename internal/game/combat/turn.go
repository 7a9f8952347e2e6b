package combat

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/battlecore/internal/game/condition"
	"github.com/cory-johannsen/battlecore/internal/game/event"
)

// TurnResult is what one call to ResolveTurn or Replace produced.
type TurnResult struct {
	Turn   int
	Events []event.Event
	Result Result
	// PendingReplacement marks sides that must call Replace before the
	// next turn.
	PendingReplacement [2]bool
}

// ResolveTurn resolves one full turn from the two sides' actions.
//
// Both actions are validated before anything changes; a side locked into a
// charge, recharge or lock-in ignores its supplied action.
//
// Precondition: the battle is not over and no replacement is pending.
// Postcondition: on a validation error nothing was mutated and no event was
// published. Otherwise returns the turn's events. An invariant violation
// aborts the battle and returns an error wrapping ErrInvariantViolation.
func (b *Battle) ResolveTurn(actA, actB Action) (*TurnResult, error) {
	if b.result.Over {
		return nil, ErrBattleOver
	}
	for _, s := range b.Sides {
		if s.PendingReplacement {
			return nil, fmt.Errorf("%w: side %s", ErrReplacementPending, s.ID)
		}
	}
	var acts [2]planned
	for i, a := range [2]Action{actA, actB} {
		id := SideID(i)
		if p, ok := b.forcedAction(id); ok {
			acts[i] = p
			continue
		}
		p, err := b.validate(id, a)
		if err != nil {
			return nil, err
		}
		acts[i] = p
	}

	startSeq := b.bus.LastSeq()
	b.Turn++
	b.acted = [2]bool{}
	for _, s := range b.Sides {
		s.ActiveCombatant().physicalTaken = 0
	}
	b.publish(nil, event.TurnStart{})
	b.order = b.decideOrder(acts)

	for _, id := range b.order {
		b.act(id, acts[id])
		b.acted[id] = true
		if err := b.checkInvariants(); err != nil {
			return b.abort(startSeq, err)
		}
		if b.decided() {
			break
		}
	}
	if !b.decided() {
		b.endOfTurn()
		if err := b.checkInvariants(); err != nil {
			return b.abort(startSeq, err)
		}
	}
	b.finishTurn()
	return b.turnResult(startSeq), nil
}

// Replace brings in roster slot idx for a side whose active fainted.
//
// Precondition: side id has PendingReplacement set.
// Postcondition: the pending flag is cleared and a forced switch event is
// published.
func (b *Battle) Replace(id SideID, idx int) (*TurnResult, error) {
	if b.result.Over {
		return nil, ErrBattleOver
	}
	side := b.Sides[id]
	if !side.PendingReplacement {
		return nil, fmt.Errorf("%w: side %s", ErrNoReplacement, id)
	}
	if !side.canSwitchTo(idx) {
		return nil, fmt.Errorf("%w: side %s: cannot bring in slot %d", ErrIllegalAction, id, idx)
	}
	startSeq := b.bus.LastSeq()
	b.switchIn(side, idx, true)
	side.PendingReplacement = false
	return b.turnResult(startSeq), nil
}

func (b *Battle) act(id SideID, p planned) {
	side := b.Sides[id]
	c := side.ActiveCombatant()
	if c.Fainted() {
		return
	}
	if p.isSwitch() {
		b.switchIn(side, p.target, false)
		return
	}
	b.useMove(c, p)
}

// useMove gates, pays for and executes a chosen or forced move.
func (b *Battle) useMove(c *Combatant, p planned) {
	if !b.canAct(c, p) {
		return
	}
	m := p.move
	ppLeft := -1
	if !p.forced {
		if clause, blocked := b.gate.IsBlocked(m); blocked {
			b.publish(c, event.MovePrevented{Move: m.ID, Reason: preventClause, Clause: string(clause)})
			return
		}
		if c.isDisabled(m) {
			b.prevent(c, m, preventDisabled)
			return
		}
		if p.slot >= 0 {
			c.Moves[p.slot].PP--
			ppLeft = c.Moves[p.slot].PP
		}
	}
	b.execute(c, m, p.forced, "", ppLeft)
}

// decided reports whether a side has no combatant left standing.
func (b *Battle) decided() bool {
	return b.Sides[SideA].Standing() == 0 || b.Sides[SideB].Standing() == 0
}

// finishTurn clears flinch, flags replacements, decides the winner and
// publishes turn_end and, once, battle_end.
func (b *Battle) finishTurn() {
	for _, id := range b.order {
		c := b.Sides[id].ActiveCombatant()
		b.removeVolatile(c, condition.VolatileFlinch, "turn_end")
	}
	standA, standB := b.Sides[SideA].Standing(), b.Sides[SideB].Standing()
	if standA == 0 || standB == 0 {
		b.result.Over = true
		switch {
		case standA == 0 && standB == 0:
			b.result.Draw = true
		case standA == 0:
			b.result.Winner = SideB
		default:
			b.result.Winner = SideA
		}
	}
	end := event.TurnEnd{}
	for _, id := range b.order {
		side := b.Sides[id]
		c := side.ActiveCombatant()
		if !b.result.Over && c.Fainted() && side.Standing() > 0 {
			side.PendingReplacement = true
		}
		end.Actives = append(end.Actives, event.Snapshot{
			Ref: c.ref, HP: c.CurrentHP, MaxHP: c.MaxHP, Status: c.Status.Label(),
		})
		end.PendingReplacement[id] = side.PendingReplacement
	}
	b.publish(nil, end)
	if b.result.Over {
		winner := int(b.result.Winner)
		if b.result.Draw {
			winner = -1
		}
		b.publish(nil, event.BattleEnd{Winner: winner, Draw: b.result.Draw, Turns: b.Turn, Reason: "side_defeated"})
		b.logger.Info("battle over",
			zap.String("battle_id", b.ID.String()),
			zap.Int("turns", b.Turn),
			zap.Int("winner", winner),
		)
	}
}

// checkInvariants verifies HP bounds and that fainted combatants hold no
// state.
func (b *Battle) checkInvariants() error {
	for _, s := range b.Sides {
		for _, c := range s.Roster {
			if c.CurrentHP < 0 || c.CurrentHP > c.MaxHP {
				return fmt.Errorf("%w: %s hp %d outside [0,%d]", ErrInvariantViolation, c.ref, c.CurrentHP, c.MaxHP)
			}
			if c.Fainted() && (!c.Status.Healthy() || c.Volatiles.Len() > 0) {
				return fmt.Errorf("%w: fainted %s still holds status or volatiles", ErrInvariantViolation, c.ref)
			}
		}
	}
	return nil
}

// abort ends the battle after an invariant violation.
func (b *Battle) abort(startSeq int, err error) (*TurnResult, error) {
	b.result.Over = true
	b.result.Aborted = true
	b.publish(nil, event.BattleEnd{Winner: -1, Turns: b.Turn, Reason: "aborted: " + err.Error()})
	b.logger.Error("battle aborted", zap.String("battle_id", b.ID.String()), zap.Error(err))
	return b.turnResult(startSeq), err
}

func (b *Battle) turnResult(startSeq int) *TurnResult {
	return &TurnResult{
		Turn:   b.Turn,
		Events: b.bus.Since(startSeq),
		Result: b.Result(),
		PendingReplacement: [2]bool{
			b.Sides[SideA].PendingReplacement,
			b.Sides[SideB].PendingReplacement,
		},
	}
}
