package combat

import (
	"github.com/cory-johannsen/battlecore/internal/game/condition"
	"github.com/cory-johannsen/battlecore/internal/game/dex"
	"github.com/cory-johannsen/battlecore/internal/game/event"
)

// endOfTurn runs the residual phases in order, each over both active
// combatants in action order: burn, poison, trap, Leech Seed, duration
// decrements.
func (b *Battle) endOfTurn() {
	b.forEachActive(b.burnTick)
	b.forEachActive(b.poisonTick)
	b.forEachActive(b.trapTick)
	b.forEachActive(b.seedTick)
	b.fieldTick()
	b.forEachActive(b.durationTick)
}

// forEachActive calls fn for each non-fainted active combatant in action
// order.
func (b *Battle) forEachActive(fn func(*Combatant)) {
	for _, id := range b.order {
		c := b.Sides[id].ActiveCombatant()
		if !c.Fainted() {
			fn(c)
		}
	}
}

func (b *Battle) burnTick(c *Combatant) {
	if !c.Status.Is(dex.AilmentBurn) {
		return
	}
	b.changeHP(c, nil, -b.conds.Fraction(condition.IDBurn, c.MaxHP), hpCause{cause: "burn"})
}

func (b *Battle) poisonTick(c *Combatant) {
	if c.Status.Kind != dex.AilmentPoison {
		return
	}
	cause := "poison"
	if c.Status.Toxic {
		cause = "toxic"
	}
	n := c.Status.ResidualNumerator()
	div := b.conds.MustGet(condition.IDPoison).Divisor
	if div <= 0 {
		return
	}
	b.changeHP(c, nil, -max(1, c.MaxHP*n/div), hpCause{cause: cause})
}

func (b *Battle) trapTick(c *Combatant) {
	if !c.Volatiles.Has(condition.VolatileTrapped) {
		return
	}
	b.changeHP(c, nil, -b.conds.Fraction(condition.IDTrap, c.MaxHP), hpCause{cause: "trap"})
}

// seedTick drains the seeded combatant and heals the opposing active by the
// amount actually drained.
func (b *Battle) seedTick(c *Combatant) {
	if !c.Volatiles.Has(condition.VolatileSeeded) {
		return
	}
	drained := -b.changeHP(c, nil, -b.conds.Fraction(condition.IDLeechSeed, c.MaxHP), hpCause{cause: "leech_seed"})
	opp := b.opponentOf(c)
	if drained > 0 && !opp.Fainted() {
		b.changeHP(opp, nil, drained, hpCause{cause: "leech_seed_heal"})
	}
}

// fieldTick counts down both sides' field conditions in action order.
func (b *Battle) fieldTick() {
	for _, id := range b.order {
		side := b.Sides[id]
		for _, kind := range side.Field.Tick() {
			b.publish(nil, event.FieldChange{Side: int(id), Field: kind.String(), Cause: "expired"})
		}
	}
}

func (b *Battle) durationTick(c *Combatant) {
	for _, kind := range c.Volatiles.Tick(condition.VolatileTrapped, condition.VolatileDisabled) {
		b.publish(nil, event.VolatileChange{Target: c.ref, Volatile: kind.String(), Cause: "expired"})
	}
}
