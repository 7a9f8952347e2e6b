package combat

import (
	"github.com/cory-johannsen/battlecore/internal/game/condition"
	"github.com/cory-johannsen/battlecore/internal/game/damage"
	"github.com/cory-johannsen/battlecore/internal/game/dex"
	"github.com/cory-johannsen/battlecore/internal/game/event"
)

// Reasons recorded on move_prevented events.
const (
	preventRecharge  = "recharge"
	preventSleep     = "sleep"
	preventFreeze    = "freeze"
	preventParalysis = "paralysis"
	preventFlinch    = "flinch"
	preventConfusion = "confusion"
	preventDisabled  = "disabled"
	preventClause    = "clause"
)

// canAct runs the pre-move gates in order: recharge, sleep, freeze,
// paralysis, flinch, confusion. Sleep and confusion count down here, on the
// combatant's own turns. A sleeper never acts on the turn it wakes. A
// confused combatant rolls for a self-hit while turns remain and snaps out
// on the next turn it reaches the gate. A blocked combatant loses any charge
// or lock-in it was continuing.
func (b *Battle) canAct(c *Combatant, p planned) bool {
	if p.recharge {
		b.removeVolatile(c, condition.VolatileRecharging, "recharged")
		b.prevent(c, nil, preventRecharge)
		return false
	}
	reason := ""
	switch {
	case c.Status.Is(dex.AilmentSleep):
		b.sleepTurn(c)
		reason = preventSleep
	case c.Status.Is(dex.AilmentFreeze):
		reason = preventFreeze
	case c.Status.Is(dex.AilmentParalysis) && b.rng.Chance(b.Mechanics.ParalysisSkipChance, 256):
		reason = preventParalysis
	case c.Volatiles.Has(condition.VolatileFlinch):
		reason = preventFlinch
	case b.confusionTurn(c) && b.rng.CoinFlip():
		dmg, bd := damage.Confusion(c.view())
		b.changeHP(c, c, -dmg, hpCause{cause: "confusion", bd: &bd, self: true})
		reason = preventConfusion
	}
	if reason == "" {
		return true
	}
	b.prevent(c, p.move, reason)
	b.interrupt(c)
	return false
}

// sleepTurn spends one of c's sleeping turns, with the optional early wake
// chance. Freeze never wears off by time.
func (b *Battle) sleepTurn(c *Combatant) {
	early := b.Mechanics.SleepWakeChance > 0 && b.rng.Chance(b.Mechanics.SleepWakeChance, 256)
	if early || c.Status.SleepTurns <= 1 {
		b.cureStatus(c, "woke")
		return
	}
	c.Status.DecrementSleep()
}

// confusionTurn reports whether c is still confused as it tries to act,
// spending one confused turn. A spent confusion is removed and c acts.
func (b *Battle) confusionTurn(c *Combatant) bool {
	v, ok := c.Volatiles.Get(condition.VolatileConfusion)
	if !ok {
		return false
	}
	if v.Turns <= 0 {
		b.removeVolatile(c, condition.VolatileConfusion, "expired")
		return false
	}
	v.Turns--
	return true
}

func (b *Battle) prevent(c *Combatant, m *dex.Move, reason string) {
	p := event.MovePrevented{Reason: reason}
	if m != nil {
		p.Move = m.ID
	}
	b.publish(c, p)
}

// interrupt ends a charge or lock-in that was cut short.
func (b *Battle) interrupt(c *Combatant) {
	if c.Fainted() {
		return
	}
	for _, kind := range []condition.Volatile{
		condition.VolatileCharging,
		condition.VolatileSemiInvulnerable,
		condition.VolatileLockedIn,
	} {
		b.removeVolatile(c, kind, "interrupted")
	}
}
