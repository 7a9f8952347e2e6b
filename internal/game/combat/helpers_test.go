package combat_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/battlecore/internal/game/combat"
	"github.com/cory-johannsen/battlecore/internal/game/dex"
	"github.com/cory-johannsen/battlecore/internal/game/dice"
	"github.com/cory-johannsen/battlecore/internal/game/event"
	"github.com/cory-johannsen/battlecore/internal/game/ruleset"
)

// testDex is the bundled content plus a few never-miss moves that keep
// scenario tests free of accuracy draws.
var testDex = sync.OnceValue(func() *dex.Dex {
	d, err := dex.LoadDirectory("../../../content/dex")
	if err != nil {
		panic(err)
	}
	d.AddMove(&dex.Move{
		ID: "sure_sleep", Name: "Sure Sleep", Type: dex.TypePsychic, Category: dex.CategoryStatus,
		PP: 10, Effect: dex.EffectStatus, Ailment: &dex.AilmentEffect{Ailment: dex.AilmentSleep},
	})
	d.AddMove(&dex.Move{
		ID: "dream_punch", Name: "Dream Punch", Type: dex.TypeNormal, Power: 40, PP: 10,
		Ailment: &dex.AilmentEffect{Ailment: dex.AilmentSleep, Chance: 100},
	})
	d.AddMove(&dex.Move{
		ID: "sure_toxic", Name: "Sure Toxic", Type: dex.TypePoison, Category: dex.CategoryStatus,
		PP: 10, Effect: dex.EffectStatus, Ailment: &dex.AilmentEffect{Ailment: dex.AilmentToxic},
	})
	d.AddMove(&dex.Move{
		ID: "sure_wrap", Name: "Sure Wrap", Type: dex.TypeNormal, Power: 15, PP: 20, Effect: dex.EffectTrap,
	})
	return d
})

// queueSource returns queued values in order, clamped into [0, n), then
// n-1 forever. n-1 means: accuracy rolls only pass a 255 threshold, no
// critical hits, the top damage roll, no secondary effects, the longest
// durations and no paralysis skip.
type queueSource struct {
	queue []int
}

func (s *queueSource) Intn(n int) int {
	if len(s.queue) == 0 {
		return n - 1
	}
	v := s.queue[0]
	s.queue = s.queue[1:]
	return min(v, n-1)
}

func roller(queue ...int) *dice.Roller {
	return dice.NewLoggedRoller(&queueSource{queue: queue}, nil)
}

func rules(t *testing.T, id string) *ruleset.Ruleset {
	t.Helper()
	rs, ok := ruleset.NewRegistry().Get(id)
	require.True(t, ok, "ruleset %s", id)
	return rs
}

// noClauses is the standard format with every clause off.
func noClauses(t *testing.T) *ruleset.Ruleset {
	rs := rules(t, "standard")
	rs.Clauses = ruleset.Clauses{}
	return rs
}

func member(species string, level int, moves ...string) ruleset.Member {
	d := testDex()
	m := ruleset.Member{Species: d.MustSpecies(species), Level: level}
	for _, id := range moves {
		m.Moves = append(m.Moves, d.MustMove(id))
	}
	return m
}

func team(members ...ruleset.Member) []ruleset.Member { return members }

func newBattle(t *testing.T, rs *ruleset.Ruleset, r *dice.Roller, a, b []ruleset.Member) *combat.Battle {
	t.Helper()
	bt, err := combat.New(combat.Config{Seed: 1, Ruleset: rs, Dex: testDex(), Roller: r}, a, b)
	require.NoError(t, err)
	return bt
}

func resolve(t *testing.T, b *combat.Battle, a, o combat.Action) *combat.TurnResult {
	t.Helper()
	res, err := b.ResolveTurn(a, o)
	require.NoError(t, err)
	return res
}

// payloads returns the payloads of type T in evs, in order.
func payloads[T event.Payload](evs []event.Event) []T {
	var out []T
	for _, ev := range evs {
		if p, ok := ev.Payload.(T); ok {
			out = append(out, p)
		}
	}
	return out
}

func outcomes(evs []event.Event, o event.Outcome) []event.EffectOutcome {
	var out []event.EffectOutcome
	for _, p := range payloads[event.EffectOutcome](evs) {
		if p.Outcome == o {
			out = append(out, p)
		}
	}
	return out
}

// firstLegal always picks the first legal action or replacement.
var firstLegal = combat.ChooserFunc(func(b *combat.Battle, req combat.Request) (combat.Action, error) {
	if req.Replacement {
		return combat.SwitchTo(b.ReplacementOptions(req.Side)[0]), nil
	}
	return b.LegalActions(req.Side)[0], nil
})

// randomLegal picks uniformly among legal actions using the battle's RNG.
var randomLegal = combat.ChooserFunc(func(b *combat.Battle, req combat.Request) (combat.Action, error) {
	if req.Replacement {
		opts := b.ReplacementOptions(req.Side)
		return combat.SwitchTo(opts[b.Roller().Intn(len(opts))]), nil
	}
	legal := b.LegalActions(req.Side)
	return legal[b.Roller().Intn(len(legal))], nil
})
