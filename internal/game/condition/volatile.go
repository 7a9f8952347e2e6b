package condition

import (
	"fmt"
	"sort"
)

// Volatile is a kind of volatile condition. Volatiles are independent of each
// other and of the primary status, and are cleared on switch-out or faint.
type Volatile int

const (
	VolatileConfusion Volatile = iota
	VolatileFlinch
	VolatileSeeded
	VolatileTrapped
	VolatileSubstitute
	VolatileDisabled
	VolatileCharging
	VolatileRecharging
	VolatileRage
	VolatileTransformed
	VolatileLockedIn
	VolatileFocusEnergy
	VolatileSemiInvulnerable
)

var volatileNames = [...]string{
	VolatileConfusion:        "confusion",
	VolatileFlinch:           "flinch",
	VolatileSeeded:           "seeded",
	VolatileTrapped:          "trapped",
	VolatileSubstitute:       "substitute",
	VolatileDisabled:         "disabled",
	VolatileCharging:         "charging",
	VolatileRecharging:       "recharging",
	VolatileRage:             "rage",
	VolatileTransformed:      "transformed",
	VolatileLockedIn:         "locked_in",
	VolatileFocusEnergy:      "focus_energy",
	VolatileSemiInvulnerable: "semi_invulnerable",
}

func (v Volatile) String() string {
	if v < 0 || int(v) >= len(volatileNames) {
		return fmt.Sprintf("volatile(%d)", int(v))
	}
	return volatileNames[v]
}

// MarshalText encodes a volatile kind as its name.
func (v Volatile) MarshalText() ([]byte, error) { return []byte(v.String()), nil }

// ActiveVolatile is one applied volatile condition.
//
// Turns counts remaining turns where the kind is timed (-1 = indefinite).
// Value carries kind-specific data: substitute HP. Source identifies the
// combatant that caused it (trap, seed). Move names the move involved
// (disabled, charging, locked-in, transformed species).
type ActiveVolatile struct {
	Kind   Volatile
	Turns  int
	Value  int
	Source string
	Move   string
}

// VolatileSet tracks the volatile conditions on one combatant.
// It is not safe for concurrent use; the caller must serialise access.
type VolatileSet struct {
	active map[Volatile]*ActiveVolatile
}

// NewVolatileSet creates an empty VolatileSet.
func NewVolatileSet() *VolatileSet {
	return &VolatileSet{active: make(map[Volatile]*ActiveVolatile)}
}

// Apply adds v. It fails, leaving the existing entry untouched, when a
// volatile of the same kind is already active.
//
// Postcondition: Has(v.Kind) is true; returns true iff the set changed.
func (s *VolatileSet) Apply(v ActiveVolatile) bool {
	if _, ok := s.active[v.Kind]; ok {
		return false
	}
	cp := v
	s.active[v.Kind] = &cp
	return true
}

// Get returns the active entry for kind. The pointer is live; callers may
// adjust Turns or Value in place.
func (s *VolatileSet) Get(kind Volatile) (*ActiveVolatile, bool) {
	v, ok := s.active[kind]
	return v, ok
}

// Has reports whether kind is active.
func (s *VolatileSet) Has(kind Volatile) bool {
	_, ok := s.active[kind]
	return ok
}

// Remove deletes kind. It is a no-op when kind is absent.
//
// Postcondition: Has(kind) is false; returns whether anything was removed.
func (s *VolatileSet) Remove(kind Volatile) bool {
	if _, ok := s.active[kind]; !ok {
		return false
	}
	delete(s.active, kind)
	return true
}

// Tick decrements the timed entries among kinds. Entries that reach 0 are
// removed and returned in kind order, so callers emit expiry events in a
// reproducible order.
//
// Postcondition: For every kind in the result, Has(kind) is false.
func (s *VolatileSet) Tick(kinds ...Volatile) []Volatile {
	var expired []Volatile
	for _, k := range sortedKinds(kinds) {
		v, ok := s.active[k]
		if !ok || v.Turns < 0 {
			continue
		}
		v.Turns--
		if v.Turns <= 0 {
			expired = append(expired, k)
			delete(s.active, k)
		}
	}
	return expired
}

// All returns the active entries sorted by kind. The entries are copies.
func (s *VolatileSet) All() []ActiveVolatile {
	out := make([]ActiveVolatile, 0, len(s.active))
	for _, v := range s.active {
		out = append(out, *v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Kind < out[j].Kind })
	return out
}

// Len returns the number of active volatiles.
func (s *VolatileSet) Len() int { return len(s.active) }

// Clear removes everything and returns the removed kinds in kind order.
func (s *VolatileSet) Clear() []Volatile {
	out := make([]Volatile, 0, len(s.active))
	for k := range s.active {
		out = append(out, k)
	}
	s.active = make(map[Volatile]*ActiveVolatile)
	return sortedKinds(out)
}

func sortedKinds(kinds []Volatile) []Volatile {
	out := append([]Volatile(nil), kinds...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
