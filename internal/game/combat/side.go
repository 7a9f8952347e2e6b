package combat

import (
	"github.com/cory-johannsen/battlecore/internal/game/condition"
)

// SideID identifies one of the two sides.
type SideID int

const (
	SideA SideID = iota
	SideB
)

// Opponent returns the other side.
func (s SideID) Opponent() SideID { return 1 - s }

func (s SideID) String() string {
	if s == SideA {
		return "a"
	}
	return "b"
}

// Side is one team: an ordered roster, the active index, side-scoped field
// conditions and the replacement flag.
type Side struct {
	ID     SideID
	Roster []*Combatant
	Active int
	Field  condition.FieldSet
	// PendingReplacement is set when the active combatant fainted and a
	// replacement must be chosen with Battle.Replace before the next turn.
	PendingReplacement bool
}

// ActiveCombatant returns the combatant currently in battle.
func (s *Side) ActiveCombatant() *Combatant { return s.Roster[s.Active] }

// Standing returns the number of roster members with HP > 0.
func (s *Side) Standing() int {
	n := 0
	for _, c := range s.Roster {
		if !c.Fainted() {
			n++
		}
	}
	return n
}

// standingStatuses returns the statuses of non-fainted members, for clause
// checks.
func (s *Side) standingStatuses() []condition.Status {
	out := make([]condition.Status, 0, len(s.Roster))
	for _, c := range s.Roster {
		if !c.Fainted() {
			out = append(out, c.Status)
		}
	}
	return out
}

// canSwitchTo reports whether slot idx is a legal switch target.
func (s *Side) canSwitchTo(idx int) bool {
	return idx >= 0 && idx < len(s.Roster) && idx != s.Active && !s.Roster[idx].Fainted()
}
