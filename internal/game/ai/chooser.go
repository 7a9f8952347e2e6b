package ai

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/battlecore/internal/game/combat"
	"github.com/cory-johannsen/battlecore/internal/game/dice"
)

var (
	// ErrIllegalChoice is returned when a policy picks an action that is not
	// in View.Legal.
	ErrIllegalChoice = errors.New("illegal choice")
	// ErrNoChoice is returned when a policy has nothing to offer.
	ErrNoChoice = errors.New("no choice")
)

// Chooser is an action policy for one side.
type Chooser interface {
	Choose(view View) (combat.Action, error)
}

// ChooserFunc adapts a function to Chooser.
type ChooserFunc func(view View) (combat.Action, error)

// Choose implements Chooser.
func (f ChooserFunc) Choose(view View) (combat.Action, error) { return f(view) }

// Adapt turns c into a combat.Chooser. Every choice is checked against the
// view's legal actions before it reaches the battle.
//
// Precondition: c must not be nil.
func Adapt(c Chooser) combat.Chooser {
	if c == nil {
		panic("ai.Adapt: chooser must not be nil")
	}
	return combat.ChooserFunc(func(b *combat.Battle, req combat.Request) (combat.Action, error) {
		view := NewView(b, req)
		a, err := c.Choose(view)
		if err != nil {
			return combat.Action{}, err
		}
		if !view.Allows(a) {
			return combat.Action{}, fmt.Errorf("%w: %s not in %v", ErrIllegalChoice, a, view.Legal)
		}
		return a, nil
	})
}

// Random picks uniformly among the legal actions.
type Random struct {
	src dice.Source
}

// NewRandom returns a Random policy drawing from src. Passing the battle's
// Roller keeps the policy's draws in the battle's reproducible sequence.
//
// Precondition: src must not be nil.
func NewRandom(src dice.Source) *Random {
	if src == nil {
		panic("ai.NewRandom: source must not be nil")
	}
	return &Random{src: src}
}

// Choose implements Chooser.
func (r *Random) Choose(view View) (combat.Action, error) {
	if len(view.Legal) == 0 {
		return combat.Action{}, ErrNoChoice
	}
	return view.Legal[r.src.Intn(len(view.Legal))], nil
}

// Greedy uses its strongest move and brings in its healthiest member.
type Greedy struct{}

// Choose implements Chooser.
func (Greedy) Choose(view View) (combat.Action, error) {
	if view.Replacement {
		if a, ok := view.HealthiestSwitch(); ok {
			return a, nil
		}
	}
	if a, ok := view.StrongestMove(); ok {
		return a, nil
	}
	if len(view.Legal) == 0 {
		return combat.Action{}, ErrNoChoice
	}
	return view.Legal[0], nil
}
