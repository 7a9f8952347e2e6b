package ai_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/battlecore/internal/game/ai"
	"github.com/cory-johannsen/battlecore/internal/game/combat"
	"github.com/cory-johannsen/battlecore/internal/game/dex"
	"github.com/cory-johannsen/battlecore/internal/game/ruleset"
)

var testDex = sync.OnceValue(func() *dex.Dex {
	d, err := dex.LoadDirectory("../../../content/dex")
	if err != nil {
		panic(err)
	}
	return d
})

func member(species string, level int, moves ...string) ruleset.Member {
	d := testDex()
	m := ruleset.Member{Species: d.MustSpecies(species), Level: level}
	for _, id := range moves {
		m.Moves = append(m.Moves, d.MustMove(id))
	}
	return m
}

func newBattle(t *testing.T, a, b []ruleset.Member) *combat.Battle {
	t.Helper()
	rs, ok := ruleset.NewRegistry().Get("standard")
	require.True(t, ok)
	bt, err := combat.New(combat.Config{Seed: 1, Ruleset: rs, Dex: testDex()}, a, b)
	require.NoError(t, err)
	return bt
}

// electricVs returns a battle where side A leads a jolteon carrying
// scratch, thunderbolt and earthquake with a snorlax behind it.
func electricVs(t *testing.T, opponent string) *combat.Battle {
	return newBattle(t,
		[]ruleset.Member{
			member("jolteon", 50, "scratch", "thunderbolt", "earthquake"),
			member("snorlax", 50, "body_slam"),
		},
		[]ruleset.Member{member(opponent, 50, "surf")})
}

// replacementView is a hand-built view for a forced replacement.
func replacementView(hp ...int) ai.View {
	v := ai.View{Replacement: true, Side: combat.SideA}
	for i, h := range hp {
		v.Team = append(v.Team, ai.MemberView{Slot: i, Species: "rattata", HP: h, MaxHP: 100, Fainted: h == 0})
		if h > 0 {
			v.Legal = append(v.Legal, combat.SwitchTo(i))
		}
	}
	return v
}
