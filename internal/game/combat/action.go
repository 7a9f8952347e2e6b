package combat

import (
	"fmt"

	"github.com/cory-johannsen/battlecore/internal/game/condition"
	"github.com/cory-johannsen/battlecore/internal/game/dex"
)

// ActionKind identifies what a side submits for a turn.
type ActionKind int

const (
	// ActionMove uses the move in slot Index.
	ActionMove ActionKind = iota + 1
	// ActionSwitch switches to roster slot Index.
	ActionSwitch
	// ActionForcedSwitch is a replacement after a faint, submitted through
	// Battle.Replace.
	ActionForcedSwitch
	// ActionStruggle is only legal when no move is usable.
	ActionStruggle
)

// String returns a human-readable label for the action kind.
func (k ActionKind) String() string {
	switch k {
	case ActionMove:
		return "move"
	case ActionSwitch:
		return "switch"
	case ActionForcedSwitch:
		return "forced_switch"
	case ActionStruggle:
		return "struggle"
	default:
		return "unknown"
	}
}

// Action is one side's choice for a turn.
type Action struct {
	Kind  ActionKind
	Index int
}

// UseMove returns an action using move slot i.
func UseMove(i int) Action { return Action{Kind: ActionMove, Index: i} }

// SwitchTo returns an action switching to roster slot i.
func SwitchTo(i int) Action { return Action{Kind: ActionSwitch, Index: i} }

// Struggle returns the struggle action.
func Struggle() Action { return Action{Kind: ActionStruggle} }

func (a Action) String() string {
	if a.Kind == ActionStruggle {
		return a.Kind.String()
	}
	return fmt.Sprintf("%s(%d)", a.Kind, a.Index)
}

// planned is an action after validation or forcing, resolved to what will
// execute.
type planned struct {
	kind ActionKind
	// move is set for move and struggle actions.
	move *dex.Move
	// slot is the move slot spending PP, or -1.
	slot int
	// target is the switch destination.
	target int
	// forced marks a continuation the side did not choose this turn.
	forced bool
	// recharge marks a turn spent recharging.
	recharge bool
}

func (p planned) isSwitch() bool { return p.kind == ActionSwitch }

func (p planned) priority() int {
	if p.move == nil || p.recharge {
		return 0
	}
	return p.move.Priority
}

// forcedAction returns the action a side is locked into, if any.
func (b *Battle) forcedAction(id SideID) (planned, bool) {
	c := b.Sides[id].ActiveCombatant()
	v := c.Volatiles
	if v.Has(condition.VolatileRecharging) {
		return planned{kind: ActionMove, slot: -1, forced: true, recharge: true}, true
	}
	for _, kind := range []condition.Volatile{condition.VolatileCharging, condition.VolatileLockedIn} {
		if av, ok := v.Get(kind); ok {
			return planned{kind: ActionMove, move: b.lookupMove(c, av.Move), slot: -1, forced: true}, true
		}
	}
	return planned{}, false
}

// lookupMove finds a move by ID among c's moves, then the pool.
func (b *Battle) lookupMove(c *Combatant, id string) *dex.Move {
	for _, s := range c.Moves {
		if s.Move.ID == id {
			return s.Move
		}
	}
	for _, m := range b.pool {
		if m.ID == id {
			return m
		}
	}
	if id == b.struggle.ID {
		return b.struggle
	}
	panic(fmt.Sprintf("combat: unknown move %q", id))
}

// validate checks a chosen action against the current state without
// mutating anything.
func (b *Battle) validate(id SideID, a Action) (planned, error) {
	side := b.Sides[id]
	c := side.ActiveCombatant()
	switch a.Kind {
	case ActionMove:
		if a.Index < 0 || a.Index >= len(c.Moves) {
			return planned{}, fmt.Errorf("%w: side %s: move index %d out of range", ErrIllegalAction, id, a.Index)
		}
		slot := c.Moves[a.Index]
		if slot.PP <= 0 {
			return planned{}, fmt.Errorf("%w: side %s: %s has no PP", ErrIllegalAction, id, slot.Move.ID)
		}
		if c.isDisabled(slot.Move) {
			return planned{}, fmt.Errorf("%w: side %s: %s is disabled", ErrIllegalAction, id, slot.Move.ID)
		}
		return planned{kind: ActionMove, move: slot.Move, slot: a.Index}, nil
	case ActionSwitch:
		if !side.canSwitchTo(a.Index) {
			return planned{}, fmt.Errorf("%w: side %s: cannot switch to slot %d", ErrIllegalAction, id, a.Index)
		}
		if c.Volatiles.Has(condition.VolatileTrapped) {
			return planned{}, fmt.Errorf("%w: side %s: %s is trapped", ErrIllegalAction, id, c.Species.ID)
		}
		return planned{kind: ActionSwitch, slot: -1, target: a.Index}, nil
	case ActionStruggle:
		if c.HasUsableMove() {
			return planned{}, fmt.Errorf("%w: side %s: struggle while a move is usable", ErrIllegalAction, id)
		}
		return planned{kind: ActionStruggle, move: b.struggle, slot: -1}, nil
	case ActionForcedSwitch:
		return planned{}, fmt.Errorf("%w: side %s: forced switches go through Replace", ErrIllegalAction, id)
	default:
		return planned{}, fmt.Errorf("%w: side %s: unknown action kind %d", ErrIllegalAction, id, int(a.Kind))
	}
}

// NeedsAction reports whether side id must supply an action for the next
// turn. A side locked into a forced action does not.
func (b *Battle) NeedsAction(id SideID) bool {
	_, forced := b.forcedAction(id)
	return !forced
}

// LegalActions lists every action side id may submit for the next turn, in
// a stable order: moves by slot, then struggle, then switches by slot. It is
// empty when the side is locked into a forced action.
func (b *Battle) LegalActions(id SideID) []Action {
	if !b.NeedsAction(id) {
		return nil
	}
	side := b.Sides[id]
	c := side.ActiveCombatant()
	var out []Action
	for i := range c.Moves {
		if c.moveUsable(i) {
			out = append(out, UseMove(i))
		}
	}
	if len(out) == 0 {
		out = append(out, Struggle())
	}
	if !c.Volatiles.Has(condition.VolatileTrapped) {
		for i := range side.Roster {
			if side.canSwitchTo(i) {
				out = append(out, SwitchTo(i))
			}
		}
	}
	return out
}

// ReplacementOptions lists the roster slots side id may bring in with
// Replace.
func (b *Battle) ReplacementOptions(id SideID) []int {
	side := b.Sides[id]
	var out []int
	for i := range side.Roster {
		if side.canSwitchTo(i) {
			out = append(out, i)
		}
	}
	return out
}
