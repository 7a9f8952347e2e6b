package ai_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/battlecore/internal/game/ai"
	"github.com/cory-johannsen/battlecore/internal/game/combat"
	"github.com/cory-johannsen/battlecore/internal/game/ruleset"
)

func TestNewView_Snapshot(t *testing.T) {
	b := electricVs(t, "lapras")
	v := ai.NewView(b, combat.Request{Side: combat.SideA})

	assert.Equal(t, combat.SideA, v.Side)
	assert.False(t, v.Replacement)
	assert.Equal(t, "jolteon", v.Self.Species)
	assert.True(t, v.Self.Active)
	assert.Equal(t, []string{"electric"}, v.Self.Types)
	assert.Equal(t, "lapras", v.Opponent.Species)
	assert.Empty(t, v.Opponent.Moves)
	require.Len(t, v.Team, 2)
	assert.False(t, v.Team[1].Active)
	assert.Equal(t, []combat.Action{
		combat.UseMove(0), combat.UseMove(1), combat.UseMove(2), combat.SwitchTo(1),
	}, v.Legal)

	require.Len(t, v.Self.Moves, 3)
	assert.Equal(t, 2.0, v.Self.Moves[1].Effectiveness)
	assert.True(t, v.Self.Moves[1].Usable)
	assert.False(t, v.Team[1].Moves[0].Usable)
	assert.Equal(t, 100.0, v.Self.HPPercent())
}

func TestView_StrongestMoveWeighsEffectiveness(t *testing.T) {
	v := ai.NewView(electricVs(t, "lapras"), combat.Request{Side: combat.SideA})
	a, ok := v.StrongestMove()
	require.True(t, ok)
	assert.Equal(t, combat.UseMove(1), a)

	v = ai.NewView(electricVs(t, "gengar"), combat.Request{Side: combat.SideA})
	assert.Equal(t, 0.0, v.Self.Moves[0].Effectiveness)
	a, ok = v.StrongestMove()
	require.True(t, ok)
	assert.Equal(t, combat.UseMove(2), a)
}

func TestView_Selectors(t *testing.T) {
	v := ai.NewView(electricVs(t, "lapras"), combat.Request{Side: combat.SideA})

	a, ok := v.MoveByID("earthquake")
	require.True(t, ok)
	assert.Equal(t, combat.UseMove(2), a)
	_, ok = v.MoveByID("psychic")
	assert.False(t, ok)

	a, ok = v.SwitchToSpecies("snorlax")
	require.True(t, ok)
	assert.Equal(t, combat.SwitchTo(1), a)
	_, ok = v.SwitchToSpecies("mewtwo")
	assert.False(t, ok)

	a, ok = v.FirstOf(combat.ActionSwitch)
	require.True(t, ok)
	assert.Equal(t, combat.SwitchTo(1), a)
	_, ok = v.FirstOf(combat.ActionStruggle)
	assert.False(t, ok)

	assert.True(t, v.Allows(combat.UseMove(0)))
	assert.False(t, v.Allows(combat.SwitchTo(0)))
}

func TestView_HealthiestSwitch(t *testing.T) {
	v := replacementView(0, 40, 90, 90)
	a, ok := v.HealthiestSwitch()
	require.True(t, ok)
	assert.Equal(t, combat.SwitchTo(2), a)

	_, ok = ai.View{Legal: []combat.Action{combat.UseMove(0)}}.HealthiestSwitch()
	assert.False(t, ok)
}

func TestNewView_ClauseBannedMovesLeaveTheLegalList(t *testing.T) {
	b := newBattle(t,
		[]ruleset.Member{member("diglett", 50, "fissure", "scratch")},
		[]ruleset.Member{member("snorlax", 50, "splash")})
	v := ai.NewView(b, combat.Request{Side: combat.SideA})

	assert.Equal(t, []combat.Action{combat.UseMove(1)}, v.Legal)
	require.Len(t, v.Self.Moves, 2)
	assert.True(t, v.Self.Moves[0].Banned)
	assert.False(t, v.Self.Moves[0].Usable)
	assert.False(t, v.Self.Moves[1].Banned)
	assert.True(t, v.Self.Moves[1].Usable)
	assert.Contains(t, b.LegalActions(combat.SideA), combat.UseMove(0), "the battle itself still accepts the move")

	r := ai.NewRandom(b.Roller())
	for range 20 {
		a, err := r.Choose(v)
		require.NoError(t, err)
		assert.Equal(t, combat.UseMove(1), a)
	}
}

func TestNewView_OnlyBannedMovesStayLegal(t *testing.T) {
	b := newBattle(t,
		[]ruleset.Member{member("diglett", 50, "fissure")},
		[]ruleset.Member{member("snorlax", 50, "splash")})
	v := ai.NewView(b, combat.Request{Side: combat.SideA})

	assert.Equal(t, []combat.Action{combat.UseMove(0)}, v.Legal)
	assert.True(t, v.Self.Moves[0].Banned)
	assert.True(t, v.Self.Moves[0].Usable)
}
