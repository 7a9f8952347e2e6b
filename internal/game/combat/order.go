package combat

import "github.com/cory-johannsen/battlecore/internal/game/event"

// Reasons recorded on order events.
const (
	orderSwitch   = "switch"
	orderPriority = "priority"
	orderSpeed    = "speed"
	orderTie      = "speed_tie"
)

// decideOrder ranks the two planned actions: switches first, then move
// priority, then effective Speed, then one coin flip. It publishes the order
// event and consumes exactly one draw on a tie.
func (b *Battle) decideOrder(acts [2]planned) [2]SideID {
	ca := b.Sides[SideA].ActiveCombatant()
	cb := b.Sides[SideB].ActiveCombatant()
	speeds := [2]int{ca.effectiveSpeed(b.Mechanics), cb.effectiveSpeed(b.Mechanics)}
	prios := [2]int{acts[SideA].priority(), acts[SideB].priority()}

	first, reason := SideA, ""
	switch {
	case acts[SideA].isSwitch() != acts[SideB].isSwitch():
		reason = orderSwitch
		if acts[SideB].isSwitch() {
			first = SideB
		}
	case !acts[SideA].isSwitch() && prios[SideA] != prios[SideB]:
		reason = orderPriority
		if prios[SideB] > prios[SideA] {
			first = SideB
		}
	case speeds[SideA] != speeds[SideB]:
		reason = orderSpeed
		if speeds[SideB] > speeds[SideA] {
			first = SideB
		}
	default:
		reason = orderTie
		if b.rng.CoinFlip() {
			first = SideB
		}
	}
	order := [2]SideID{first, first.Opponent()}
	b.publish(nil, event.Order{
		First:      int(order[0]),
		Second:     int(order[1]),
		Reason:     reason,
		Speeds:     speeds,
		Priorities: prios,
	})
	return order
}
