package combat

import "github.com/cory-johannsen/battlecore/internal/game/event"

// switchIn brings roster slot idx in for side. A non-fainted outgoing
// combatant releases its trap, loses volatiles and stages,
// reverts Transform and Conversion, and applies the toxic switch rule.
//
// Precondition: side.canSwitchTo(idx).
func (b *Battle) switchIn(side *Side, idx int, forced bool) {
	out := side.ActiveCombatant()
	var from *event.Ref
	if !out.Fainted() {
		from = refPtr(out)
		b.releaseFrom(out, "source_switched")
		out.clearBattleState()
		out.Status.SwitchOut(b.Mechanics.ToxicResetOnSwitch)
	}
	side.Active = idx
	in := side.ActiveCombatant()
	in.physicalTaken = 0
	b.publish(in, event.Switch{
		Side:   int(side.ID),
		From:   from,
		To:     in.ref,
		HP:     in.CurrentHP,
		MaxHP:  in.MaxHP,
		Status: in.Status.Label(),
		Forced: forced,
	})
}
