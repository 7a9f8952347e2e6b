package ai

import (
	"github.com/cory-johannsen/battlecore/internal/game/combat"
	"github.com/cory-johannsen/battlecore/internal/game/condition"
	"github.com/cory-johannsen/battlecore/internal/game/dex"
)

// MoveView is one move slot as a policy sees it.
type MoveView struct {
	Slot     int
	ID       string
	Type     string
	Power    int
	Accuracy int
	PP       int
	MaxPP    int
	// Effectiveness is the type multiplier against the opposing active.
	Effectiveness float64
	// Banned is set when a clause of the format forbids the move.
	Banned bool
	// Usable is set when using the slot is among the view's legal actions.
	Usable bool
}

// MemberView is a snapshot of one roster member.
type MemberView struct {
	Slot      int
	Species   string
	Level     int
	HP        int
	MaxHP     int
	Status    string
	Types     []string
	Volatiles []string
	Active    bool
	Fainted   bool
	Moves     []MoveView
}

// HPPercent returns current HP as a percentage of MaxHP; 0 if MaxHP == 0.
func (m MemberView) HPPercent() float64 {
	if m.MaxHP <= 0 {
		return 0
	}
	return float64(m.HP) / float64(m.MaxHP) * 100
}

// View is the snapshot passed to a policy for one decision.
//
// Invariant: Legal is non-empty whenever a decision is requested.
type View struct {
	Turn        int
	Side        combat.SideID
	Replacement bool
	Self        MemberView
	// Opponent omits move details.
	Opponent MemberView
	Team     []MemberView
	Legal    []combat.Action
}

// NewView builds the snapshot for req from b.
//
// Precondition: b must not be nil and req.Side must be SideA or SideB.
// Postcondition: Legal lists replacement switches when req.Replacement is
// set, and b.LegalActions minus clause-banned moves otherwise.
func NewView(b *combat.Battle, req combat.Request) View {
	side := b.Side(req.Side)
	gate := b.Gate()
	opp := b.Side(req.Side.Opponent()).ActiveCombatant()
	v := View{
		Turn:        b.Turn,
		Side:        req.Side,
		Replacement: req.Replacement,
	}
	if req.Replacement {
		for _, idx := range b.ReplacementOptions(req.Side) {
			v.Legal = append(v.Legal, combat.SwitchTo(idx))
		}
	} else {
		v.Legal = withoutBanned(gate, side.ActiveCombatant(), b.LegalActions(req.Side))
	}
	for i, c := range side.Roster {
		m := memberView(i, c, i == side.Active)
		for j, slot := range c.Moves {
			_, banned := gate.IsBlocked(slot.Move)
			m.Moves = append(m.Moves, MoveView{
				Slot:          j,
				ID:            slot.Move.ID,
				Type:          slot.Move.Type.String(),
				Power:         slot.Move.Power,
				Accuracy:      slot.Move.Accuracy,
				PP:            slot.PP,
				MaxPP:         slot.MaxPP,
				Effectiveness: dex.Effectiveness(slot.Move.Type, opp.Types),
				Banned:        banned,
				Usable:        m.Active && !req.Replacement && v.Allows(combat.UseMove(j)),
			})
		}
		v.Team = append(v.Team, m)
	}
	v.Self = v.Team[side.Active]
	v.Opponent = memberView(b.Side(req.Side.Opponent()).Active, opp, true)
	return v
}

// withoutBanned drops the moves the clause gate would stop. When nothing
// else is left the list is returned whole, and the battle reports the ban.
func withoutBanned(gate condition.Gate, c *combat.Combatant, legal []combat.Action) []combat.Action {
	out := make([]combat.Action, 0, len(legal))
	for _, a := range legal {
		if a.Kind == combat.ActionMove {
			if _, blocked := gate.IsBlocked(c.Moves[a.Index].Move); blocked {
				continue
			}
		}
		out = append(out, a)
	}
	if len(out) == 0 {
		return legal
	}
	return out
}

func memberView(slot int, c *combat.Combatant, active bool) MemberView {
	m := MemberView{
		Slot:    slot,
		Species: c.Species.ID,
		Level:   c.Level,
		HP:      c.CurrentHP,
		MaxHP:   c.MaxHP,
		Status:  c.Status.Label(),
		Active:  active,
		Fainted: c.Fainted(),
	}
	for _, t := range c.Types {
		m.Types = append(m.Types, t.String())
	}
	for _, vol := range c.Volatiles.All() {
		m.Volatiles = append(m.Volatiles, vol.Kind.String())
	}
	return m
}

// Allows reports whether a is among the legal actions.
func (v View) Allows(a combat.Action) bool {
	for _, l := range v.Legal {
		if l == a {
			return true
		}
	}
	return false
}

// StrongestMove returns the legal move with the highest power times
// effectiveness. Ties go to the lower slot.
//
// Postcondition: false if no damaging move is legal.
func (v View) StrongestMove() (combat.Action, bool) {
	best, bestScore := -1, 0.0
	for _, m := range v.Self.Moves {
		if !m.Usable || m.Power <= 0 {
			continue
		}
		score := float64(m.Power) * m.Effectiveness
		if score > bestScore {
			best, bestScore = m.Slot, score
		}
	}
	if best < 0 {
		return combat.Action{}, false
	}
	return combat.UseMove(best), true
}

// MoveByID returns the legal action using the move with id.
func (v View) MoveByID(id string) (combat.Action, bool) {
	for _, m := range v.Self.Moves {
		if m.ID == id && m.Usable {
			return combat.UseMove(m.Slot), true
		}
	}
	return combat.Action{}, false
}

// FirstOf returns the first legal action of kind.
func (v View) FirstOf(kind combat.ActionKind) (combat.Action, bool) {
	for _, a := range v.Legal {
		if a.Kind == kind {
			return a, true
		}
	}
	return combat.Action{}, false
}

// HealthiestSwitch returns the legal switch to the member with the highest
// HP percentage. Ties go to the lower slot.
//
// Postcondition: false if no switch is legal.
func (v View) HealthiestSwitch() (combat.Action, bool) {
	var best combat.Action
	bestPct := -1.0
	for _, a := range v.Legal {
		if a.Kind != combat.ActionSwitch {
			continue
		}
		if pct := v.Team[a.Index].HPPercent(); pct > bestPct {
			best, bestPct = a, pct
		}
	}
	return best, bestPct >= 0
}

// SwitchToSpecies returns the legal switch to the first member of species.
func (v View) SwitchToSpecies(species string) (combat.Action, bool) {
	for _, a := range v.Legal {
		if a.Kind == combat.ActionSwitch && v.Team[a.Index].Species == species {
			return a, true
		}
	}
	return combat.Action{}, false
}
