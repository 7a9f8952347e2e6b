package combat

import (
	"fmt"
	"sort"

	"github.com/cory-johannsen/battlecore/internal/game/condition"
	"github.com/cory-johannsen/battlecore/internal/game/damage"
	"github.com/cory-johannsen/battlecore/internal/game/dex"
	"github.com/cory-johannsen/battlecore/internal/game/event"
)

// effectFunc resolves one move once it has passed gating and been paid for.
type effectFunc func(*moveCtx)

// newEffectRegistry returns the dispatch table keyed by effect tag.
func newEffectRegistry() map[dex.Effect]effectFunc {
	return map[dex.Effect]effectFunc{
		dex.EffectBasic:        effectBasic,
		dex.EffectTwoTurn:      effectTwoTurn,
		dex.EffectRecharge:     effectRecharge,
		dex.EffectMultiHit:     effectMultiHit,
		dex.EffectFixedDamage:  effectFixedDamage,
		dex.EffectLevelDamage:  effectLevelDamage,
		dex.EffectHalfHP:       effectHalfHP,
		dex.EffectOHKO:         effectOHKO,
		dex.EffectDrain:        effectDrain,
		dex.EffectRecovery:     effectRecovery,
		dex.EffectRest:         effectRest,
		dex.EffectScreen:       effectScreen,
		dex.EffectMist:         effectMist,
		dex.EffectTrap:         effectTrap,
		dex.EffectStatStage:    effectStatStage,
		dex.EffectStatus:       effectStatus,
		dex.EffectConfuse:      effectConfuse,
		dex.EffectSelfDestruct: effectSelfDestruct,
		dex.EffectLockIn:       effectLockIn,
		dex.EffectRage:         effectRage,
		dex.EffectTransform:    effectTransform,
		dex.EffectDisable:      effectDisable,
		dex.EffectMetronome:    effectMetronome,
		dex.EffectMirrorMove:   effectMirrorMove,
		dex.EffectCounter:      effectCounter,
		dex.EffectLeechSeed:    effectLeechSeed,
		dex.EffectHaze:         effectHaze,
		dex.EffectFocusEnergy:  effectFocusEnergy,
		dex.EffectSubstitute:   effectSubstitute,
		dex.EffectConversion:   effectConversion,
		dex.EffectCrash:        effectCrash,
		dex.EffectNoop:         effectNoop,
		dex.EffectStruggle:     effectBasic,
	}
}

// SupportedEffects lists every effect tag with a handler, in tag order.
func SupportedEffects() []dex.Effect {
	reg := newEffectRegistry()
	out := make([]dex.Effect, 0, len(reg))
	for e := range reg {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// moveCtx is the state of one move execution.
type moveCtx struct {
	b        *Battle
	user     *Combatant
	target   *Combatant
	move     *dex.Move
	category dex.Category
	// forced is set on the continuation turn of a charge or lock-in.
	forced bool
	// hitSubstitute is set when the last strike landed on a substitute.
	hitSubstitute bool
}

// execute publishes move_used and dispatches m by its effect tag. ppLeft is
// -1 when no PP was spent.
func (b *Battle) execute(user *Combatant, m *dex.Move, forced bool, via string, ppLeft int) {
	target := b.opponentOf(user)
	aim := target
	if m.Target == dex.TargetSelf {
		aim = user
	}
	b.publish(user, event.MoveUsed{Move: m.ID, Target: refPtr(aim), Forced: forced, Via: via, PPLeft: ppLeft})
	user.lastMove = m

	fn, ok := b.effects[m.Effect]
	if !ok {
		panic(fmt.Sprintf("combat: no handler for effect %s", m.Effect))
	}
	ctx := &moveCtx{b: b, user: user, target: target, move: m, category: b.policy.Category(m), forced: forced}
	if m.Target != dex.TargetSelf && target.Fainted() {
		ctx.outcome(event.OutcomeFailed, "no target")
		return
	}
	fn(ctx)
}

// invoke resolves a move called by another move. Called moves cost no PP
// but still answer to the clause gate.
func (b *Battle) invoke(user *Combatant, m *dex.Move, via string) {
	if clause, blocked := b.gate.IsBlocked(m); blocked {
		b.publish(user, event.MovePrevented{Move: m.ID, Reason: preventClause, Clause: string(clause)})
		return
	}
	b.execute(user, m, false, via, -1)
}

func (c *moveCtx) outcome(o event.Outcome, detail string) {
	t := c.target
	if c.move.Target == dex.TargetSelf {
		t = c.user
	}
	c.b.publish(c.user, event.EffectOutcome{Move: c.move.ID, Target: refPtr(t), Outcome: o, Detail: detail})
}

// hits runs the accuracy check. It always draws once for a move that can
// miss, and publishes miss on failure.
func (c *moveCtx) hits() bool {
	t := c.target
	if t.Volatiles.Has(condition.VolatileSemiInvulnerable) && !c.move.HitsInvulnerable {
		c.b.publish(c.user, event.Miss{Move: c.move.ID, Target: t.ref, Reason: "semi_invulnerable"})
		return false
	}
	if c.move.NeverMisses() {
		return true
	}
	net := damage.ClampStage(c.user.Stages[dex.StatAccuracy] - t.Stages[dex.StatEvasion])
	threshold := damage.AccuracyThreshold(c.move.Accuracy, net)
	roll := c.b.rng.Intn(256)
	if roll < threshold || (threshold >= 255 && !c.b.Mechanics.OneIn256Miss) {
		return true
	}
	c.b.publish(c.user, event.Miss{
		Move: c.move.ID, Target: t.ref, Reason: "accuracy", Threshold: threshold, Roll: roll,
	})
	return false
}

func (c *moveCtx) computeDamage(halveDefense bool) (int, damage.Breakdown) {
	field := c.b.sideOf(c.target).Field
	in := damage.Input{
		Attacker: c.user.view(),
		Defender: c.target.view(),
		Move:     c.move,
		Category: c.category,
		Field: damage.Field{
			Reflect:     field.Active(condition.FieldReflect),
			LightScreen: field.Active(condition.FieldLightScreen),
		},
		HalveDefense: halveDefense,
		Options: damage.Options{
			FocusEnergyQuirk: c.b.Mechanics.FocusEnergyQuirk,
			CritMultiplier:   c.b.Mechanics.CritMultiplier,
		},
	}
	return damage.Compute(in, c.b.rng)
}

// strike delivers dmg to the target, routing it into a substitute when one
// is up. A hit on the combatant itself records physical damage for Counter,
// thaws a frozen target on a Fire move and feeds Rage.
//
// Postcondition: returns the damage absorbed by the target or its
// substitute.
func (c *moveCtx) strike(dmg int, bd *damage.Breakdown, hit int) int {
	t := c.target
	c.hitSubstitute = false
	if sub, ok := t.Volatiles.Get(condition.VolatileSubstitute); ok {
		dealt := min(dmg, sub.Value)
		sub.Value -= dealt
		c.hitSubstitute = true
		broken := sub.Value <= 0
		c.b.publish(c.user, event.SubstituteDamage{
			Target:    t.ref,
			Move:      c.move.ID,
			Damage:    dealt,
			Remaining: max(sub.Value, 0),
			Broken:    broken,
			Hit:       hit,
			Breakdown: bd,
		})
		if broken {
			c.b.removeVolatile(t, condition.VolatileSubstitute, "broken")
		}
		return dealt
	}
	dealt := -c.b.changeHP(t, c.user, -dmg, hpCause{cause: "move", move: c.move, hit: hit, bd: bd})
	if c.category == dex.CategoryPhysical {
		t.physicalTaken += dealt
	}
	if t.Fainted() {
		return dealt
	}
	if t.Status.Is(dex.AilmentFreeze) && c.move.Type == dex.TypeFire {
		c.b.cureStatus(t, "thawed")
	}
	if dealt > 0 && t.Volatiles.Has(condition.VolatileRage) {
		c.b.applyStages(t, t, []dex.StatChange{{Stat: dex.StatAttack, Stages: 1}}, "rage", false)
	}
	return dealt
}

// hitOnce computes and delivers one hit, then its secondary effects and
// recoil. An immune target yields a no_effect outcome.
func (c *moveCtx) hitOnce(halveDefense bool, hit int) (dealt int, landed bool) {
	if c.move.Power <= 0 {
		c.outcome(event.OutcomeFailed, "no power")
		return 0, false
	}
	dmg, bd := c.computeDamage(halveDefense)
	if bd.Effectiveness == 0 {
		c.outcome(event.OutcomeNoEffect, "immune")
		return 0, false
	}
	dealt = c.strike(dmg, &bd, hit)
	c.secondaries()
	c.recoil(dealt)
	return dealt, true
}

// damagingHit is the standard path: accuracy, then one hit.
func (c *moveCtx) damagingHit() (int, bool) {
	if !c.hits() {
		return 0, false
	}
	return c.hitOnce(false, 0)
}

// secondaries rolls the move's chance effects against a target that took
// the hit directly and is still standing.
func (c *moveCtx) secondaries() {
	m, t, b := c.move, c.target, c.b
	if t.Fainted() || c.hitSubstitute {
		return
	}
	if m.Ailment != nil && m.Ailment.Chance > 0 && b.rng.Intn(100) < m.Ailment.Chance {
		c.inflict(m.Ailment.Ailment, false)
	}
	if len(m.StatChanges) > 0 && m.StatChance > 0 && b.rng.Intn(100) < m.StatChance {
		if m.Target == dex.TargetSelf {
			b.applyStages(c.user, c.user, m.StatChanges, m.ID, false)
		} else {
			b.applyStages(c.user, t, m.StatChanges, m.ID, true)
		}
	}
	if m.FlinchChance > 0 && !b.acted[t.ref.Side] && b.rng.Intn(100) < m.FlinchChance {
		b.applyVolatile(t, condition.ActiveVolatile{Kind: condition.VolatileFlinch, Turns: -1}, m.ID, "")
	}
	if m.ConfusionChance > 0 && b.rng.Intn(100) < m.ConfusionChance {
		c.confuse(t, m.ID)
	}
}

func (c *moveCtx) recoil(dealt int) {
	if c.move.RecoilDivisor <= 0 || dealt <= 0 || c.user.Fainted() {
		return
	}
	c.b.changeHP(c.user, c.user, -max(1, dealt/c.move.RecoilDivisor), hpCause{cause: "recoil", move: c.move, self: true})
}

// confuse applies confusion to t unless it is already confused.
func (c *moveCtx) confuse(t *Combatant, cause string) bool {
	if t.Fainted() || t.Volatiles.Has(condition.VolatileConfusion) {
		return false
	}
	turns := c.b.conds.RollDuration(condition.IDConfusion, c.b.rng)
	return c.b.applyVolatile(t, condition.ActiveVolatile{Kind: condition.VolatileConfusion, Turns: turns}, cause, "")
}

// inflict tries to give the target a primary status. pure marks a
// status move, whose failures are reported as outcomes; a failed secondary
// chance is silent unless a clause blocked it.
func (c *moveCtx) inflict(a dex.Ailment, pure bool) bool {
	t, b := c.target, c.b
	if t.Fainted() {
		return false
	}
	if pure && t.Volatiles.Has(condition.VolatileSubstitute) {
		c.outcome(event.OutcomeBlockedBySubstitute, a.String())
		return false
	}
	if immuneToAilment(a, t.Types) || (pure && dex.Effectiveness(c.move.Type, t.Types) == 0) {
		if pure {
			c.outcome(event.OutcomeNoEffect, a.String())
		}
		return false
	}
	if !t.Status.Healthy() {
		if pure {
			c.outcome(event.OutcomeFailed, "already "+t.Status.Label())
		}
		return false
	}
	if clause, ok := b.gate.StatusAllowed(a, b.sideOf(t).standingStatuses()); !ok {
		c.outcome(event.OutcomeBlockedByClause, string(clause))
		return false
	}
	turns := 0
	if a == dex.AilmentSleep {
		turns = b.conds.RollDuration(condition.IDSleep, b.rng)
	}
	t.Status.Apply(a, turns, true)
	b.publish(c.user, event.StatusChange{Target: t.ref, Status: t.Status.Label(), Applied: true, Cause: c.move.ID, Turns: turns})
	return true
}

// immuneToAilment applies the type immunities to primary status.
func immuneToAilment(a dex.Ailment, types []dex.Type) bool {
	switch a {
	case dex.AilmentBurn:
		return dex.HasType(types, dex.TypeFire)
	case dex.AilmentFreeze:
		return dex.HasType(types, dex.TypeIce)
	case dex.AilmentPoison, dex.AilmentToxic:
		return dex.HasType(types, dex.TypePoison)
	}
	return false
}
