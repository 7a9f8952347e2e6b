package condition

import (
	"github.com/cory-johannsen/battlecore/internal/game/dex"
	"github.com/cory-johannsen/battlecore/internal/game/ruleset"
)

// Clause names a format clause in outcomes.
type Clause string

const (
	ClauseNone    Clause = ""
	ClauseSleep   Clause = "sleep_clause"
	ClauseFreeze  Clause = "freeze_clause"
	ClauseOHKO    Clause = "ohko_clause"
	ClauseEvasion Clause = "evasion_clause"
)

// Gate enforces the active ruleset's clauses. It is the authoritative check
// consulted by the effect registry and is also safe for action policies to
// call when filtering choices.
type Gate struct {
	clauses ruleset.Clauses
}

// NewGate returns a Gate for c.
func NewGate(c ruleset.Clauses) Gate { return Gate{clauses: c} }

// Clauses returns the enforced toggles.
func (g Gate) Clauses() ruleset.Clauses { return g.clauses }

// IsBlocked reports whether m may not be used at all. The clause set applies
// to both sides alike, so the verdict depends only on the move.
func (g Gate) IsBlocked(m *dex.Move) (Clause, bool) {
	if g.clauses.OHKO && m.Effect == dex.EffectOHKO {
		return ClauseOHKO, true
	}
	if g.clauses.Evasion && m.RaisesEvasion() {
		return ClauseEvasion, true
	}
	return ClauseNone, false
}

// StatusAllowed reports whether an opponent may inflict a on the defending
// side, given the statuses of that side's non-fainted members.
//
// Sleep clause: blocked while a member sleeps from an opponent's move.
// Freeze clause: blocked while any member is frozen.
func (g Gate) StatusAllowed(a dex.Ailment, standing []Status) (Clause, bool) {
	switch a {
	case dex.AilmentSleep:
		if !g.clauses.Sleep {
			return ClauseNone, true
		}
		for _, s := range standing {
			if s.Kind == dex.AilmentSleep && s.Inflicted {
				return ClauseSleep, false
			}
		}
	case dex.AilmentFreeze:
		if !g.clauses.Freeze {
			return ClauseNone, true
		}
		for _, s := range standing {
			if s.Kind == dex.AilmentFreeze {
				return ClauseFreeze, false
			}
		}
	}
	return ClauseNone, true
}
