package combat

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/battlecore/internal/game/condition"
	"github.com/cory-johannsen/battlecore/internal/game/damage"
	"github.com/cory-johannsen/battlecore/internal/game/dex"
	"github.com/cory-johannsen/battlecore/internal/game/event"
)

// hpCause describes an HP mutation for its event.
type hpCause struct {
	cause string
	move  *dex.Move
	hit   int
	bd    *damage.Breakdown
	// self marks damage the combatant dealt to itself; a resulting faint is
	// flagged SelfInflicted.
	self bool
}

// changeHP applies delta to c, clamped to [0, MaxHP], publishes hp_change
// and, when c drops to 0, publishes faint immediately after.
//
// Postcondition: returns the delta actually applied; nothing is published
// when it is 0.
func (b *Battle) changeHP(c, actor *Combatant, delta int, hc hpCause) int {
	before := c.CurrentHP
	after := min(max(before+delta, 0), c.MaxHP)
	if after == before {
		return 0
	}
	c.CurrentHP = after
	p := event.HPChange{
		Target: c.ref,
		Cause:  hc.cause,
		Delta:  after - before,
		Before: before,
		After:  after,
		Max:    c.MaxHP,
		Hit:    hc.hit,
	}
	if hc.move != nil {
		p.Move = hc.move.ID
	}
	if hc.bd != nil {
		bd := *hc.bd
		p.Breakdown = &bd
	}
	ev := b.publish(actor, p)
	if after == 0 {
		b.faint(c, ev.Seq, hc.self)
	}
	return after - before
}

// faint publishes the faint, then clears c's status, volatiles and stages
// and releases the trap c was holding on its opponent.
func (b *Battle) faint(c *Combatant, causeSeq int, self bool) {
	b.publish(nil, event.Faint{Target: c.ref, CauseSeq: causeSeq, SelfInflicted: self})
	b.logger.Debug("combatant fainted",
		zap.String("combatant", c.ref.String()),
		zap.Int("turn", b.Turn),
		zap.Bool("self_inflicted", self),
	)
	c.Status.Cure()
	c.clearBattleState()
	b.releaseFrom(c, "source_fainted")
}

// releaseFrom removes the trap c holds on the opposing active. A Leech Seed
// stays on its target and feeds whoever faces it.
func (b *Battle) releaseFrom(c *Combatant, cause string) {
	opp := b.opponentOf(c)
	if v, ok := opp.Volatiles.Get(condition.VolatileTrapped); ok && v.Source == c.ref.Key() {
		b.removeVolatile(opp, condition.VolatileTrapped, cause)
	}
}

// applyVolatile adds v to c and publishes volatile_change when it was not
// already present.
func (b *Battle) applyVolatile(c *Combatant, v condition.ActiveVolatile, cause, detail string) bool {
	if !c.Volatiles.Apply(v) {
		return false
	}
	turns := v.Turns
	if turns < 0 {
		turns = 0
	}
	b.publish(nil, event.VolatileChange{
		Target:   c.ref,
		Volatile: v.Kind.String(),
		Applied:  true,
		Cause:    cause,
		Turns:    turns,
		Detail:   detail,
	})
	return true
}

// removeVolatile drops kind from c and publishes volatile_change when it was
// present.
func (b *Battle) removeVolatile(c *Combatant, kind condition.Volatile, cause string) bool {
	if !c.Volatiles.Remove(kind) {
		return false
	}
	b.publish(nil, event.VolatileChange{Target: c.ref, Volatile: kind.String(), Cause: cause})
	return true
}

// cureStatus clears c's primary status and publishes status_change.
func (b *Battle) cureStatus(c *Combatant, cause string) {
	if c.Status.Healthy() {
		return
	}
	label := c.Status.Label()
	c.Status.Cure()
	b.publish(nil, event.StatusChange{Target: c.ref, Status: label, Cause: cause})
}

// applyStages applies stage changes to target. Drops from an opponent are
// blocked by Mist on the target's side. A change that would move a stage
// already at its bound is an at_limit no-op; one cut short by the bound is
// applied with Clamped set.
func (b *Battle) applyStages(actor, target *Combatant, changes []dex.StatChange, cause string, byOpponent bool) {
	for _, sc := range changes {
		if byOpponent && sc.Stages < 0 && b.sideOf(target).Field.Active(condition.FieldMist) {
			b.publish(actor, event.EffectOutcome{
				Move: cause, Target: refPtr(target), Outcome: event.OutcomeBlockedByMist, Detail: sc.Stat.String(),
			})
			continue
		}
		cur := target.Stages[sc.Stat]
		next := damage.ClampStage(cur + sc.Stages)
		if next == cur {
			b.publish(actor, event.EffectOutcome{
				Move: cause, Target: refPtr(target), Outcome: event.OutcomeAtLimit, Detail: sc.Stat.String(),
			})
			continue
		}
		target.Stages[sc.Stat] = next
		b.publish(actor, event.StatStage{
			Target:    target.ref,
			Stat:      sc.Stat.String(),
			Requested: sc.Stages,
			Applied:   next - cur,
			Stage:     next,
			Clamped:   next-cur != sc.Stages,
			Cause:     cause,
		})
	}
}

func refPtr(c *Combatant) *event.Ref {
	r := c.ref
	return &r
}
