package ai_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/battlecore/internal/game/ai"
	"github.com/cory-johannsen/battlecore/internal/game/combat"
	"github.com/cory-johannsen/battlecore/internal/game/dice"
	"github.com/cory-johannsen/battlecore/internal/game/ruleset"
)

func TestAdapt_PassesLegalChoices(t *testing.T) {
	b := electricVs(t, "lapras")
	c := ai.Adapt(ai.ChooserFunc(func(v ai.View) (combat.Action, error) {
		return v.Legal[len(v.Legal)-1], nil
	}))
	a, err := c.Choose(b, combat.Request{Side: combat.SideA})
	require.NoError(t, err)
	assert.Equal(t, combat.SwitchTo(1), a)
}

func TestAdapt_RejectsIllegalChoices(t *testing.T) {
	b := electricVs(t, "lapras")
	c := ai.Adapt(ai.ChooserFunc(func(ai.View) (combat.Action, error) {
		return combat.UseMove(5), nil
	}))
	_, err := c.Choose(b, combat.Request{Side: combat.SideA})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ai.ErrIllegalChoice))
}

func TestAdapt_PropagatesPolicyErrors(t *testing.T) {
	b := electricVs(t, "lapras")
	boom := errors.New("boom")
	c := ai.Adapt(ai.ChooserFunc(func(ai.View) (combat.Action, error) {
		return combat.Action{}, boom
	}))
	_, err := c.Choose(b, combat.Request{Side: combat.SideB})
	assert.ErrorIs(t, err, boom)
}

func TestAdapt_PanicsOnNil(t *testing.T) {
	assert.Panics(t, func() { ai.Adapt(nil) })
}

func TestRandom_AlwaysLegal(t *testing.T) {
	b := electricVs(t, "lapras")
	view := ai.NewView(b, combat.Request{Side: combat.SideA})
	rapid.Check(t, func(rt *rapid.T) {
		seed := rapid.Int64Range(1, 1<<40).Draw(rt, "seed")
		r := ai.NewRandom(dice.NewSeededSource(seed))
		a, err := r.Choose(view)
		if err != nil {
			rt.Fatalf("Choose: %v", err)
		}
		if !view.Allows(a) {
			rt.Fatalf("illegal choice %s", a)
		}
	})
}

func TestRandom_NoLegalActions(t *testing.T) {
	_, err := ai.NewRandom(dice.NewSeededSource(1)).Choose(ai.View{})
	assert.ErrorIs(t, err, ai.ErrNoChoice)
}

func TestGreedy_Choices(t *testing.T) {
	v := ai.NewView(electricVs(t, "lapras"), combat.Request{Side: combat.SideA})
	a, err := ai.Greedy{}.Choose(v)
	require.NoError(t, err)
	assert.Equal(t, combat.UseMove(1), a)

	a, err = ai.Greedy{}.Choose(replacementView(0, 30, 80))
	require.NoError(t, err)
	assert.Equal(t, combat.SwitchTo(2), a)

	_, err = ai.Greedy{}.Choose(ai.View{})
	assert.ErrorIs(t, err, ai.ErrNoChoice)
}

func TestGreedy_PlaysABattleToTheEnd(t *testing.T) {
	b := newBattle(t,
		[]ruleset.Member{member("jolteon", 50, "thunderbolt"), member("snorlax", 50, "body_slam")},
		[]ruleset.Member{member("lapras", 50, "surf"), member("tauros", 50, "body_slam")})
	res, err := combat.Run(context.Background(), b,
		[2]combat.Chooser{ai.Adapt(ai.Greedy{}), ai.Adapt(ai.Greedy{})}, 500)
	require.NoError(t, err)
	assert.True(t, res.Over)
}
