// Package condition holds the status lifecycle: the primary status machine,
// the independent volatile conditions layered on top of it, side-scoped
// field conditions, duration definitions, and clause gating.
package condition

import "github.com/cory-johannsen/battlecore/internal/game/dex"

// Status is a combatant's primary status. Exactly one Kind is held at a time;
// AilmentNone means healthy. Badly poisoned is Kind == AilmentPoison with
// Toxic set, so Kind is never AilmentToxic.
type Status struct {
	Kind       dex.Ailment `json:"kind"`
	SleepTurns int         `json:"sleep_turns,omitempty"`
	Toxic      bool        `json:"toxic,omitempty"`
	ToxicCount int         `json:"toxic_count,omitempty"`
	// Inflicted marks a status caused by an opponent's move. Self-induced
	// sleep from Rest leaves it false, so it does not count for the sleep
	// clause.
	Inflicted bool `json:"inflicted,omitempty"`
}

// Healthy reports whether no primary status is held.
func (s Status) Healthy() bool { return s.Kind == dex.AilmentNone }

// Is reports whether the held status is a.
func (s Status) Is(a dex.Ailment) bool {
	if a == dex.AilmentToxic {
		return s.Kind == dex.AilmentPoison && s.Toxic
	}
	return s.Kind == a
}

// Apply sets a new primary status. It fails, leaving s unchanged, when a
// status is already held.
//
// Precondition: a != AilmentNone; sleepTurns > 0 when a == AilmentSleep.
// Postcondition: returns true iff s changed.
func (s *Status) Apply(a dex.Ailment, sleepTurns int, byOpponent bool) bool {
	if !s.Healthy() || a == dex.AilmentNone {
		return false
	}
	next := Status{Kind: a, Inflicted: byOpponent}
	switch a {
	case dex.AilmentSleep:
		if sleepTurns < 1 {
			panic("condition: Status.Apply precondition violated: sleep needs sleepTurns >= 1")
		}
		next.SleepTurns = sleepTurns
	case dex.AilmentToxic:
		next.Kind = dex.AilmentPoison
		next.Toxic = true
	}
	*s = next
	return true
}

// Cure clears the status and returns what was held.
func (s *Status) Cure() dex.Ailment {
	prev := s.Kind
	*s = Status{}
	return prev
}

// Label names the held status for event payloads, distinguishing toxic.
func (s Status) Label() string {
	if s.Kind == dex.AilmentPoison && s.Toxic {
		return dex.AilmentToxic.String()
	}
	return s.Kind.String()
}

// ResidualNumerator returns the numerator over 16 of this turn's burn or
// poison tick and advances the toxic counter. It returns 0 for statuses that
// deal no residual damage.
func (s *Status) ResidualNumerator() int {
	switch s.Kind {
	case dex.AilmentBurn:
		return 1
	case dex.AilmentPoison:
		if s.Toxic {
			s.ToxicCount++
			return s.ToxicCount
		}
		return 1
	}
	return 0
}

// DecrementSleep counts down one sleeping turn.
//
// Postcondition: returns true when the combatant woke, in which case s is
// healthy.
func (s *Status) DecrementSleep() bool {
	if s.Kind != dex.AilmentSleep {
		return false
	}
	s.SleepTurns--
	if s.SleepTurns <= 0 {
		s.Cure()
		return true
	}
	return false
}

// SwitchOut applies switch-out rules: badly poisoned reverts to regular
// poison when resetToxic is set.
func (s *Status) SwitchOut(resetToxic bool) {
	if s.Kind == dex.AilmentPoison && s.Toxic {
		s.ToxicCount = 0
		if resetToxic {
			s.Toxic = false
		}
	}
}
