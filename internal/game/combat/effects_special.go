package combat

import (
	"strings"

	"github.com/cory-johannsen/battlecore/internal/game/condition"
	"github.com/cory-johannsen/battlecore/internal/game/dex"
	"github.com/cory-johannsen/battlecore/internal/game/event"
)

func effectTransform(c *moveCtx) {
	u, t := c.user, c.target
	if u.Transformed() {
		c.outcome(event.OutcomeFailed, "already transformed")
		return
	}
	if t.Volatiles.Has(condition.VolatileSemiInvulnerable) {
		c.outcome(event.OutcomeFailed, "target is semi-invulnerable")
		return
	}
	u.transformInto(t)
	c.b.applyVolatile(u, condition.ActiveVolatile{Kind: condition.VolatileTransformed, Turns: -1, Move: t.Species.ID}, c.move.ID, t.Species.ID)
	c.outcome(event.OutcomeTransformed, t.Species.ID)
}

func effectConversion(c *moveCtx) {
	u := c.user
	u.rememberIdentity(false)
	u.Types = append([]dex.Type(nil), c.target.Types...)
	names := make([]string, len(u.Types))
	for i, t := range u.Types {
		names[i] = t.String()
	}
	c.outcome(event.OutcomeConverted, strings.Join(names, "/"))
}

// effectMetronome calls a uniformly random move from the pool.
func effectMetronome(c *moveCtx) {
	pool := c.b.pool
	if len(pool) == 0 {
		c.outcome(event.OutcomeFailed, "empty move pool")
		return
	}
	picked := pool[c.b.rng.Intn(len(pool))]
	c.outcome(event.OutcomeCalledMove, picked.ID)
	c.b.invoke(c.user, picked, c.move.ID)
}

// effectMirrorMove repeats the last move the target executed.
func effectMirrorMove(c *moveCtx) {
	last := c.target.lastMove
	if last == nil || last.Effect == dex.EffectMirrorMove {
		c.outcome(event.OutcomeFailed, "nothing to mirror")
		return
	}
	c.outcome(event.OutcomeCalledMove, last.ID)
	c.b.invoke(c.user, last, c.move.ID)
}

func effectNoop(c *moveCtx) { c.outcome(event.OutcomeNoEffect, "") }
