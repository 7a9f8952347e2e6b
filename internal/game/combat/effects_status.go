package combat

import (
	"fmt"

	"github.com/cory-johannsen/battlecore/internal/game/condition"
	"github.com/cory-johannsen/battlecore/internal/game/dex"
	"github.com/cory-johannsen/battlecore/internal/game/event"
)

func effectStatus(c *moveCtx) {
	if c.move.Ailment == nil {
		c.outcome(event.OutcomeFailed, "no ailment")
		return
	}
	if !c.hits() {
		return
	}
	c.inflict(c.move.Ailment.Ailment, true)
}

func effectConfuse(c *moveCtx) {
	if !c.hits() {
		return
	}
	switch {
	case c.target.Volatiles.Has(condition.VolatileSubstitute):
		c.outcome(event.OutcomeBlockedBySubstitute, "")
	case c.target.Volatiles.Has(condition.VolatileConfusion):
		c.outcome(event.OutcomeAlreadyActive, condition.VolatileConfusion.String())
	default:
		c.confuse(c.target, c.move.ID)
	}
}

func effectStatStage(c *moveCtx) {
	if c.move.Target == dex.TargetSelf {
		c.b.applyStages(c.user, c.user, c.move.StatChanges, c.move.ID, false)
		return
	}
	if !c.hits() {
		return
	}
	if c.target.Volatiles.Has(condition.VolatileSubstitute) {
		c.outcome(event.OutcomeBlockedBySubstitute, "")
		return
	}
	c.b.applyStages(c.user, c.target, c.move.StatChanges, c.move.ID, true)
}

// activateField starts a side condition on the user's side. An active one
// is left alone with its duration unchanged.
func (c *moveCtx) activateField(kind condition.FieldKind, durationID string) {
	side := c.b.sideOf(c.user)
	if side.Field.Active(kind) {
		c.outcome(event.OutcomeAlreadyActive, kind.String())
		return
	}
	turns := c.b.conds.RollDuration(durationID, c.b.rng)
	side.Field.Activate(kind, turns)
	c.b.publish(c.user, event.FieldChange{Side: int(side.ID), Field: kind.String(), Active: true, Turns: turns, Cause: c.move.ID})
}

func effectScreen(c *moveCtx) {
	kind := condition.FieldReflect
	if c.move.Screen == dex.ScreenLightScreen {
		kind = condition.FieldLightScreen
	}
	c.activateField(kind, condition.IDScreen)
}

func effectMist(c *moveCtx) { c.activateField(condition.FieldMist, condition.IDMist) }

func effectRecovery(c *moveCtx) {
	u := c.user
	if u.CurrentHP == u.MaxHP {
		c.outcome(event.OutcomeFailed, "hp is full")
		return
	}
	pct := c.move.HealPercent
	if pct <= 0 {
		pct = 50
	}
	c.b.changeHP(u, u, max(1, u.MaxHP*pct/100), hpCause{cause: "recovery", move: c.move})
}

// effectRest fully heals, cures any status and puts the user to sleep. The
// sleep is self-induced, so it does not count for the sleep clause.
func effectRest(c *moveCtx) {
	u, b := c.user, c.b
	if u.CurrentHP == u.MaxHP {
		c.outcome(event.OutcomeFailed, "hp is full")
		return
	}
	b.changeHP(u, u, u.MaxHP-u.CurrentHP, hpCause{cause: "rest", move: c.move})
	b.cureStatus(u, c.move.ID)
	turns := b.conds.RollDuration(condition.IDRest, b.rng)
	u.Status.Apply(dex.AilmentSleep, turns, false)
	b.publish(u, event.StatusChange{Target: u.ref, Status: u.Status.Label(), Applied: true, Cause: c.move.ID, Turns: turns})
}

func effectLeechSeed(c *moveCtx) {
	if !c.hits() {
		return
	}
	t := c.target
	switch {
	case dex.HasType(t.Types, dex.TypeGrass):
		c.outcome(event.OutcomeNoEffect, "immune")
	case t.Volatiles.Has(condition.VolatileSeeded):
		c.outcome(event.OutcomeFailed, "already seeded")
	case t.Volatiles.Has(condition.VolatileSubstitute):
		c.outcome(event.OutcomeBlockedBySubstitute, "")
	default:
		c.b.applyVolatile(t, condition.ActiveVolatile{
			Kind:   condition.VolatileSeeded,
			Turns:  -1,
			Source: c.user.ref.Key(),
		}, c.move.ID, c.user.ref.Key())
	}
}

// hazeClears lists the volatiles Haze removes.
var hazeClears = []condition.Volatile{
	condition.VolatileConfusion,
	condition.VolatileSeeded,
	condition.VolatileDisabled,
	condition.VolatileFocusEnergy,
}

// effectHaze resets every stage and removes the hazeClears volatiles on both
// active combatants, user first.
func effectHaze(c *moveCtx) {
	c.b.publish(c.user, event.EffectOutcome{Move: c.move.ID, Outcome: event.OutcomeHaze})
	for _, x := range []*Combatant{c.user, c.target} {
		if x.Fainted() {
			continue
		}
		for stat := dex.StatAttack; stat <= dex.StatEvasion; stat++ {
			cur := x.Stages[stat]
			if cur == 0 {
				continue
			}
			x.Stages[stat] = 0
			c.b.publish(c.user, event.StatStage{
				Target: x.ref, Stat: stat.String(), Requested: -cur, Applied: -cur, Cause: c.move.ID,
			})
		}
		for _, kind := range hazeClears {
			c.b.removeVolatile(x, kind, c.move.ID)
		}
	}
}

func effectFocusEnergy(c *moveCtx) {
	if !c.b.applyVolatile(c.user, condition.ActiveVolatile{Kind: condition.VolatileFocusEnergy, Turns: -1}, c.move.ID, "") {
		c.outcome(event.OutcomeAlreadyActive, condition.VolatileFocusEnergy.String())
	}
}

// effectSubstitute pays a quarter of max HP for a decoy with one more HP
// than it cost.
func effectSubstitute(c *moveCtx) {
	u, b := c.user, c.b
	if u.Volatiles.Has(condition.VolatileSubstitute) {
		c.outcome(event.OutcomeAlreadyActive, condition.VolatileSubstitute.String())
		return
	}
	cost := b.conds.Fraction(condition.IDSubstitute, u.MaxHP)
	if u.CurrentHP <= cost {
		c.outcome(event.OutcomeFailed, "too weak")
		return
	}
	b.changeHP(u, u, -cost, hpCause{cause: "substitute", move: c.move, self: true})
	b.applyVolatile(u, condition.ActiveVolatile{Kind: condition.VolatileSubstitute, Turns: -1, Value: cost + 1},
		c.move.ID, fmt.Sprintf("hp=%d", cost+1))
}

// effectDisable disables a random move of the target that still has PP.
func effectDisable(c *moveCtx) {
	if !c.hits() {
		return
	}
	t, b := c.target, c.b
	if t.Volatiles.Has(condition.VolatileDisabled) {
		c.outcome(event.OutcomeFailed, "already disabled")
		return
	}
	var candidates []int
	for i, s := range t.Moves {
		if s.PP > 0 {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		c.outcome(event.OutcomeFailed, "no move to disable")
		return
	}
	picked := t.Moves[candidates[b.rng.Intn(len(candidates))]].Move
	turns := b.conds.RollDuration(condition.IDDisable, b.rng)
	b.applyVolatile(t, condition.ActiveVolatile{Kind: condition.VolatileDisabled, Turns: turns, Move: picked.ID}, c.move.ID, picked.ID)
}
