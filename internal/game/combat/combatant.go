package combat

import (
	"github.com/cory-johannsen/battlecore/internal/game/condition"
	"github.com/cory-johannsen/battlecore/internal/game/damage"
	"github.com/cory-johannsen/battlecore/internal/game/dex"
	"github.com/cory-johannsen/battlecore/internal/game/event"
)

// transformPP is the PP every copied move gets under Transform.
const transformPP = 5

// MoveSlot is one known move and its remaining PP.
type MoveSlot struct {
	Move  *dex.Move
	PP    int
	MaxPP int
}

// Combatant is one creature in a battle.
//
// Invariant: 0 <= CurrentHP <= MaxHP, and a combatant with CurrentHP == 0 is
// fainted and holds no status, volatiles or stages.
type Combatant struct {
	Species   *dex.Species
	Level     int
	Types     []dex.Type
	Stats     dex.BaseStats
	MaxHP     int
	CurrentHP int
	Moves     []MoveSlot
	Stages    [dex.NumStages]int
	Status    condition.Status
	Volatiles *condition.VolatileSet

	ref event.Ref
	// original holds the pre-Transform or pre-Conversion identity.
	original *identity
	// lastMove is the last move this combatant executed, for Mirror Move.
	lastMove *dex.Move
	// physicalTaken is the physical damage taken from the opponent this turn,
	// for Counter.
	physicalTaken int
}

type identity struct {
	types []dex.Type
	stats dex.BaseStats
	moves []MoveSlot
}

// NewCombatant builds a full-health combatant.
//
// Precondition: s must be non-nil; 1 <= level <= 100; moves must hold 1 to 4
// moves.
func NewCombatant(s *dex.Species, level int, moves []*dex.Move, useBaseStats bool) *Combatant {
	stats := s.Base
	if !useBaseStats {
		stats = dex.CalcStats(s.Base, level)
	}
	slots := make([]MoveSlot, len(moves))
	for i, m := range moves {
		slots[i] = MoveSlot{Move: m, PP: m.PP, MaxPP: m.PP}
	}
	types := make([]dex.Type, len(s.Types))
	copy(types, s.Types)
	return &Combatant{
		Species:   s,
		Level:     level,
		Types:     types,
		Stats:     stats,
		MaxHP:     stats.HP,
		CurrentHP: stats.HP,
		Moves:     slots,
		Volatiles: condition.NewVolatileSet(),
	}
}

// Ref returns the combatant's event reference.
func (c *Combatant) Ref() event.Ref { return c.ref }

// Fainted reports whether the combatant has 0 HP.
func (c *Combatant) Fainted() bool { return c.CurrentHP <= 0 }

// Transformed reports whether Transform is in effect.
func (c *Combatant) Transformed() bool { return c.Volatiles.Has(condition.VolatileTransformed) }

// HasUsableMove reports whether any move has PP left and is not disabled.
func (c *Combatant) HasUsableMove() bool {
	for i := range c.Moves {
		if c.moveUsable(i) {
			return true
		}
	}
	return false
}

func (c *Combatant) moveUsable(i int) bool {
	slot := c.Moves[i]
	return slot.PP > 0 && !c.isDisabled(slot.Move)
}

func (c *Combatant) isDisabled(m *dex.Move) bool {
	d, ok := c.Volatiles.Get(condition.VolatileDisabled)
	return ok && m != nil && d.Move == m.ID
}

// view is the read-only projection the damage calculator consumes.
func (c *Combatant) view() damage.Combatant {
	return damage.Combatant{
		Level:       c.Level,
		Types:       c.Types,
		Stats:       c.Stats,
		BaseSpeed:   c.Species.Base.Speed,
		Stages:      c.Stages,
		Burned:      c.Status.Is(dex.AilmentBurn),
		FocusEnergy: c.Volatiles.Has(condition.VolatileFocusEnergy),
	}
}

// effectiveSpeed applies the speed stage, then the paralysis divisor.
//
// Postcondition: result >= 1.
func (c *Combatant) effectiveSpeed(mech Mechanics) int {
	s := damage.ApplyStage(c.Stats.Speed, c.Stages[dex.StatSpeed])
	if c.Status.Is(dex.AilmentParalysis) {
		s /= mech.ParalysisSpeedDivisor
	}
	return max(1, s)
}

// rememberIdentity saves the current types and stats once, and the moves
// when withMoves is set, so Transform and Conversion revert together.
func (c *Combatant) rememberIdentity(withMoves bool) {
	if c.original == nil {
		c.original = &identity{types: append([]dex.Type(nil), c.Types...), stats: c.Stats}
	}
	if withMoves && c.original.moves == nil {
		c.original.moves = append([]MoveSlot(nil), c.Moves...)
	}
}

func (c *Combatant) restoreIdentity() {
	if c.original == nil {
		return
	}
	c.Types = c.original.types
	c.Stats.Attack = c.original.stats.Attack
	c.Stats.Defense = c.original.stats.Defense
	c.Stats.Special = c.original.stats.Special
	c.Stats.Speed = c.original.stats.Speed
	if c.original.moves != nil {
		c.Moves = c.original.moves
	}
	c.original = nil
}

// transformInto copies target's battle stats except HP, its types, stages and
// moves. Copied moves get transformPP each. PP spent on the original moves
// before the transform is kept for when it reverts.
func (c *Combatant) transformInto(target *Combatant) {
	c.rememberIdentity(true)
	c.Types = append([]dex.Type(nil), target.Types...)
	c.Stats.Attack = target.Stats.Attack
	c.Stats.Defense = target.Stats.Defense
	c.Stats.Special = target.Stats.Special
	c.Stats.Speed = target.Stats.Speed
	c.Stages = target.Stages
	moves := make([]MoveSlot, len(target.Moves))
	for i, s := range target.Moves {
		moves[i] = MoveSlot{Move: s.Move, PP: transformPP, MaxPP: transformPP}
	}
	c.Moves = moves
}

// clearBattleState drops every volatile and stage and reverts identity
// changes. Used on switch-out and faint.
func (c *Combatant) clearBattleState() {
	c.Volatiles.Clear()
	c.Stages = [dex.NumStages]int{}
	c.restoreIdentity()
	c.lastMove = nil
	c.physicalTaken = 0
}
