package combat

import (
	"fmt"

	"github.com/cory-johannsen/battlecore/internal/game/condition"
	"github.com/cory-johannsen/battlecore/internal/game/damage"
	"github.com/cory-johannsen/battlecore/internal/game/dex"
	"github.com/cory-johannsen/battlecore/internal/game/dice"
	"github.com/cory-johannsen/battlecore/internal/game/event"
)

// multiHitDice picks the hit count of a variable multi-hit move.
var multiHitDice = dice.MustParse("1d8")

// multiHitCount maps a 1d8 roll to 2, 3, 4 or 5 hits with weights 3:3:1:1.
func multiHitCount(roll int) int {
	switch {
	case roll <= 3:
		return 2
	case roll <= 6:
		return 3
	case roll == 7:
		return 4
	default:
		return 5
	}
}

func effectBasic(c *moveCtx) { c.damagingHit() }

func effectTwoTurn(c *moveCtx) {
	u, b := c.user, c.b
	if !c.forced {
		b.applyVolatile(u, condition.ActiveVolatile{Kind: condition.VolatileCharging, Turns: -1, Move: c.move.ID}, c.move.ID, "")
		if c.move.SemiInvulnerable {
			b.applyVolatile(u, condition.ActiveVolatile{Kind: condition.VolatileSemiInvulnerable, Turns: -1}, c.move.ID, "")
		}
		if len(c.move.ChargeStatChanges) > 0 {
			b.applyStages(u, u, c.move.ChargeStatChanges, c.move.ID, false)
		}
		c.outcome(event.OutcomeCharging, "")
		return
	}
	b.removeVolatile(u, condition.VolatileCharging, "released")
	b.removeVolatile(u, condition.VolatileSemiInvulnerable, "released")
	c.damagingHit()
}

func effectRecharge(c *moveCtx) {
	if _, landed := c.damagingHit(); !landed || c.target.Fainted() || c.user.Fainted() {
		return
	}
	c.b.applyVolatile(c.user, condition.ActiveVolatile{Kind: condition.VolatileRecharging, Turns: -1}, c.move.ID, "")
}

// effectMultiHit strikes a fixed or rolled number of times, stopping early
// when the target faints or its substitute breaks.
func effectMultiHit(c *moveCtx) {
	if !c.hits() {
		return
	}
	planned := c.move.Hits
	if planned <= 0 {
		planned = multiHitCount(c.b.rng.Roll(multiHitDice).Total())
	}
	landed := 0
	for i := 1; i <= planned; i++ {
		if c.target.Fainted() {
			break
		}
		if _, ok := c.hitOnce(false, i); !ok {
			return
		}
		landed++
		if c.hitSubstitute && !c.target.Volatiles.Has(condition.VolatileSubstitute) {
			break
		}
	}
	c.outcome(event.OutcomeMultiHit, fmt.Sprintf("hits=%d planned=%d", landed, planned))
}

// fixedHit delivers a value that skips the formula and ignores type
// effectiveness, immunities included.
func (c *moveCtx) fixedHit(src damage.Source, value int) {
	if !c.hits() {
		return
	}
	bd := damage.Fixed(src, c.move, c.user.Level, value)
	c.strike(value, &bd, 0)
}

func effectFixedDamage(c *moveCtx) { c.fixedHit(damage.SourceFixed, c.move.FixedDamage) }

func effectLevelDamage(c *moveCtx) { c.fixedHit(damage.SourceLevel, c.user.Level) }

func effectHalfHP(c *moveCtx) {
	c.fixedHit(damage.SourceHalfHP, max(1, c.target.CurrentHP/2))
}

func effectCounter(c *moveCtx) {
	taken := c.user.physicalTaken
	if taken <= 0 {
		c.outcome(event.OutcomeFailed, "no physical damage to counter")
		return
	}
	c.fixedHit(damage.SourceCounter, 2*taken)
}

// effectOHKO fails against a faster target; otherwise a hit sets the
// target's HP to 0 outside the damage formula.
func effectOHKO(c *moveCtx) {
	if c.user.effectiveSpeed(c.b.Mechanics) < c.target.effectiveSpeed(c.b.Mechanics) {
		c.outcome(event.OutcomeFailed, "target is faster")
		return
	}
	if !c.hits() {
		return
	}
	if dex.Effectiveness(c.move.Type, c.target.Types) == 0 {
		c.outcome(event.OutcomeNoEffect, "immune")
		return
	}
	if sub, ok := c.target.Volatiles.Get(condition.VolatileSubstitute); ok {
		c.strike(sub.Value, nil, 0)
		return
	}
	c.b.changeHP(c.target, c.user, -c.target.CurrentHP, hpCause{cause: "ohko", move: c.move})
	c.outcome(event.OutcomeOHKO, "")
}

func effectDrain(c *moveCtx) {
	if c.move.RequiresSleep && !c.target.Status.Is(dex.AilmentSleep) {
		c.outcome(event.OutcomeFailed, "target is awake")
		return
	}
	dealt, landed := c.damagingHit()
	if !landed || dealt <= 0 || c.user.Fainted() {
		return
	}
	pct := c.move.DrainPercent
	if pct <= 0 {
		pct = 50
	}
	c.b.changeHP(c.user, c.user, max(1, dealt*pct/100), hpCause{cause: "drain", move: c.move})
}

// effectSelfDestruct attacks with the target's Defense halved, then drops
// the user to 0 HP whether or not the attack landed.
func effectSelfDestruct(c *moveCtx) {
	if c.hits() {
		c.hitOnce(true, 0)
	}
	if !c.user.Fainted() {
		c.b.changeHP(c.user, c.user, -c.user.CurrentHP, hpCause{cause: "self_destruct", move: c.move, self: true})
	}
}

// effectLockIn starts or continues a rampage. When it runs out the user
// becomes confused from fatigue.
func effectLockIn(c *moveCtx) {
	u, b := c.user, c.b
	if !c.forced {
		turns := b.conds.RollDuration(condition.IDLockIn, b.rng)
		b.applyVolatile(u, condition.ActiveVolatile{Kind: condition.VolatileLockedIn, Turns: turns, Move: c.move.ID}, c.move.ID, "")
	}
	c.damagingHit()
	lock, ok := u.Volatiles.Get(condition.VolatileLockedIn)
	if !ok {
		return
	}
	lock.Turns--
	if lock.Turns > 0 {
		return
	}
	b.removeVolatile(u, condition.VolatileLockedIn, "expired")
	c.confuse(u, "fatigue")
}

func effectRage(c *moveCtx) {
	c.b.applyVolatile(c.user, condition.ActiveVolatile{Kind: condition.VolatileRage, Turns: -1}, c.move.ID, "")
	c.damagingHit()
}

func effectTrap(c *moveCtx) {
	_, landed := c.damagingHit()
	t := c.target
	if !landed || t.Fainted() || c.hitSubstitute || t.Volatiles.Has(condition.VolatileTrapped) {
		return
	}
	turns := c.b.conds.RollDuration(condition.IDTrap, c.b.rng)
	c.b.applyVolatile(t, condition.ActiveVolatile{
		Kind:   condition.VolatileTrapped,
		Turns:  turns,
		Source: c.user.ref.Key(),
		Move:   c.move.ID,
	}, c.move.ID, c.user.ref.Key())
}

// effectCrash hurts the user when the attack misses.
func effectCrash(c *moveCtx) {
	if c.hits() {
		c.hitOnce(false, 0)
		return
	}
	dmg := c.b.conds.Fraction(condition.IDCrash, c.user.MaxHP)
	if c.move.CrashDivisor > 0 {
		dmg = max(1, c.user.MaxHP/c.move.CrashDivisor)
	}
	c.b.changeHP(c.user, c.user, -dmg, hpCause{cause: "crash", move: c.move, self: true})
}
