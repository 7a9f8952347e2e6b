package combat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/battlecore/internal/game/combat"
	"github.com/cory-johannsen/battlecore/internal/game/condition"
	"github.com/cory-johannsen/battlecore/internal/game/dex"
	"github.com/cory-johannsen/battlecore/internal/game/event"
)

// hpBy returns the hp_change payloads with the given cause.
func hpBy(evs []event.Event, cause string) []event.HPChange {
	var out []event.HPChange
	for _, h := range payloads[event.HPChange](evs) {
		if h.Cause == cause {
			out = append(out, h)
		}
	}
	return out
}

func TestOHKO_BlockedByClauseSpendsNoPP(t *testing.T) {
	b := newBattle(t, rules(t, "standard"), roller(0),
		team(member("diglett", 50, "fissure")),
		team(member("snorlax", 50, "splash")))
	res := resolve(t, b, combat.UseMove(0), combat.UseMove(0))

	prevented := payloads[event.MovePrevented](res.Events)
	require.Len(t, prevented, 1)
	assert.Equal(t, "fissure", prevented[0].Move)
	assert.Equal(t, "clause", prevented[0].Reason)
	assert.Equal(t, string(condition.ClauseOHKO), prevented[0].Clause)
	assert.Equal(t, 5, b.Sides[combat.SideA].Roster[0].Moves[0].PP)
	assert.Empty(t, payloads[event.HPChange](res.Events))
}

func TestOHKO_KnocksOutWithoutTheFormula(t *testing.T) {
	b := newBattle(t, noClauses(t), roller(0),
		team(member("diglett", 50, "fissure")),
		team(member("snorlax", 50, "splash")))
	res := resolve(t, b, combat.UseMove(0), combat.UseMove(0))

	ko := hpBy(res.Events, "ohko")
	require.Len(t, ko, 1)
	assert.Nil(t, ko[0].Breakdown)
	assert.Equal(t, 0, ko[0].After)
	assert.Len(t, outcomes(res.Events, event.OutcomeOHKO), 1)
	assert.Equal(t, combat.SideA, res.Result.Winner)
}

func TestOHKO_FailsAgainstFasterTarget(t *testing.T) {
	b := newBattle(t, noClauses(t), roller(0),
		team(member("snorlax", 50, "fissure")),
		team(member("diglett", 50, "splash")))
	res := resolve(t, b, combat.UseMove(0), combat.UseMove(0))

	failed := outcomes(res.Events, event.OutcomeFailed)
	require.Len(t, failed, 1)
	assert.Equal(t, "target is faster", failed[0].Detail)
	assert.Empty(t, payloads[event.Miss](res.Events))
	assert.Equal(t, 4, b.Sides[combat.SideA].Roster[0].Moves[0].PP)
}

func TestOHKO_TypeImmunity(t *testing.T) {
	b := newBattle(t, noClauses(t), roller(0),
		team(member("diglett", 50, "fissure")),
		team(member("dragonite", 50, "splash")))
	res := resolve(t, b, combat.UseMove(0), combat.UseMove(0))
	require.Len(t, outcomes(res.Events, event.OutcomeNoEffect), 2, "fissure is immune and splash does nothing")
	assert.Empty(t, payloads[event.HPChange](res.Events))
}

func TestSleepClause_DamageStillLands(t *testing.T) {
	b := newBattle(t, rules(t, "standard"), roller(),
		team(member("alakazam", 50, "sure_sleep", "dream_punch")),
		team(member("snorlax", 50, "scratch"), member("tauros", 50, "scratch")))

	res := resolve(t, b, combat.UseMove(0), combat.UseMove(0))
	snorlax := b.Sides[combat.SideB].Roster[0]
	require.True(t, snorlax.Status.Is(dex.AilmentSleep))
	require.Len(t, payloads[event.StatusChange](res.Events), 1)
	prevented := payloads[event.MovePrevented](res.Events)
	require.Len(t, prevented, 1)
	assert.Equal(t, "sleep", prevented[0].Reason)

	res = resolve(t, b, combat.UseMove(1), combat.SwitchTo(1))
	hits := payloads[event.HPChange](res.Events)
	require.Len(t, hits, 1)
	assert.Equal(t, "tauros", hits[0].Target.Species)
	blocked := outcomes(res.Events, event.OutcomeBlockedByClause)
	require.Len(t, blocked, 1)
	assert.Equal(t, string(condition.ClauseSleep), blocked[0].Detail)
	assert.True(t, b.Sides[combat.SideB].Roster[1].Status.Healthy())
}

func TestMultiHit_RolledHitCount(t *testing.T) {
	// accuracy 0, then 1d8 draws 7 and rolls 8: five hits.
	b := newBattle(t, rules(t, "standard"), roller(0, 7),
		team(member("tauros", 50, "fury_attack")),
		team(member("chansey", 100, "splash")))
	res := resolve(t, b, combat.UseMove(0), combat.UseMove(0))

	hits := hpBy(res.Events, "move")
	require.Len(t, hits, 5)
	for i, h := range hits {
		assert.Equal(t, i+1, h.Hit)
	}
	multi := outcomes(res.Events, event.OutcomeMultiHit)
	require.Len(t, multi, 1)
	assert.Equal(t, "hits=5 planned=5", multi[0].Detail)
}

func TestMultiHit_FixedCountStopsWhenSubstituteBreaks(t *testing.T) {
	b := newBattle(t, rules(t, "standard"), roller(),
		team(member("snorlax", 100, "double_kick")),
		team(member("jolteon", 50, "substitute")))
	res := resolve(t, b, combat.UseMove(0), combat.UseMove(0))

	subs := payloads[event.SubstituteDamage](res.Events)
	require.Len(t, subs, 1)
	assert.True(t, subs[0].Broken)
	multi := outcomes(res.Events, event.OutcomeMultiHit)
	require.Len(t, multi, 1)
	assert.Equal(t, "hits=1 planned=2", multi[0].Detail)
}

func TestScreen_ReactivationKeepsDuration(t *testing.T) {
	b := newBattle(t, rules(t, "standard"), roller(),
		team(member("alakazam", 50, "reflect")),
		team(member("chansey", 50, "splash")))
	first := resolve(t, b, combat.UseMove(0), combat.UseMove(0))
	second := resolve(t, b, combat.UseMove(0), combat.UseMove(0))

	started := payloads[event.FieldChange](first.Events)
	require.Len(t, started, 1)
	assert.True(t, started[0].Active)
	assert.Equal(t, 5, started[0].Turns)
	assert.Empty(t, payloads[event.FieldChange](second.Events))
	again := outcomes(second.Events, event.OutcomeAlreadyActive)
	require.Len(t, again, 1)
	assert.Equal(t, "reflect", again[0].Detail)
	assert.Equal(t, 3, b.Sides[combat.SideA].Field.Remaining(condition.FieldReflect))
}

func TestSelfDestruct_FaintsUserWithHalvedDefense(t *testing.T) {
	b := newBattle(t, rules(t, "standard"), roller(),
		team(member("snorlax", 50, "self_destruct")),
		team(member("chansey", 100, "splash")))
	res := resolve(t, b, combat.UseMove(0), combat.UseMove(0))

	hits := hpBy(res.Events, "move")
	require.Len(t, hits, 1)
	require.NotNil(t, hits[0].Breakdown)
	assert.True(t, hits[0].Breakdown.DefenseHalved)
	assert.Equal(t, "chansey", hits[0].Target.Species)

	faints := payloads[event.Faint](res.Events)
	require.Len(t, faints, 1)
	assert.Equal(t, "snorlax", faints[0].Target.Species)
	assert.True(t, faints[0].SelfInflicted)
	self := hpBy(res.Events, "self_destruct")
	require.Len(t, self, 1)
	assert.Equal(t, 0, self[0].After)

	assert.True(t, res.Result.Over)
	assert.Equal(t, combat.SideB, res.Result.Winner)
}

func TestStatStages_ClampAtSix(t *testing.T) {
	b := newBattle(t, rules(t, "standard"), roller(),
		team(member("tauros", 50, "sharpen", "swords_dance")),
		team(member("chansey", 50, "splash")))
	resolve(t, b, combat.UseMove(0), combat.UseMove(0))
	resolve(t, b, combat.UseMove(1), combat.UseMove(0))
	resolve(t, b, combat.UseMove(1), combat.UseMove(0))
	res := resolve(t, b, combat.UseMove(1), combat.UseMove(0))

	stages := payloads[event.StatStage](res.Events)
	require.Len(t, stages, 1)
	assert.Equal(t, 2, stages[0].Requested)
	assert.Equal(t, 1, stages[0].Applied)
	assert.Equal(t, 6, stages[0].Stage)
	assert.True(t, stages[0].Clamped)

	res = resolve(t, b, combat.UseMove(1), combat.UseMove(0))
	assert.Empty(t, payloads[event.StatStage](res.Events))
	limit := outcomes(res.Events, event.OutcomeAtLimit)
	require.Len(t, limit, 1)
	assert.Equal(t, "attack", limit[0].Detail)
	assert.Equal(t, 6, b.Sides[combat.SideA].Roster[0].Stages[dex.StatAttack])
}

func TestTrap_BlocksSwitchingUntilSourceLeaves(t *testing.T) {
	b := newBattle(t, rules(t, "standard"), roller(),
		team(member("tauros", 50, "sure_wrap"), member("jolteon", 50, "scratch")),
		team(member("snorlax", 50, "scratch"), member("chansey", 50, "splash")))
	res := resolve(t, b, combat.UseMove(0), combat.UseMove(0))

	snorlax := b.Sides[combat.SideB].Roster[0]
	trap, ok := snorlax.Volatiles.Get(condition.VolatileTrapped)
	require.True(t, ok)
	assert.Equal(t, 4, trap.Turns, "1d4+1 rolled 5, one turn elapsed")
	tick := hpBy(res.Events, "trap")
	require.Len(t, tick, 1)
	assert.Equal(t, -snorlax.MaxHP/16, tick[0].Delta)

	_, err := b.ResolveTurn(combat.UseMove(0), combat.SwitchTo(1))
	require.ErrorIs(t, err, combat.ErrIllegalAction)
	for _, a := range b.LegalActions(combat.SideB) {
		assert.NotEqual(t, combat.ActionSwitch, a.Kind)
	}

	res = resolve(t, b, combat.SwitchTo(1), combat.UseMove(0))
	assert.False(t, snorlax.Volatiles.Has(condition.VolatileTrapped))
	released := payloads[event.VolatileChange](res.Events)
	require.NotEmpty(t, released)
	assert.Equal(t, "trapped", released[0].Volatile)
	assert.Equal(t, "source_switched", released[0].Cause)
	assert.Contains(t, b.LegalActions(combat.SideB), combat.SwitchTo(1))
}

func TestLeechSeed_DrainsAndHeals(t *testing.T) {
	b := newBattle(t, rules(t, "standard"), roller(0),
		team(member("alakazam", 50, "leech_seed")),
		team(member("snorlax", 50, "scratch")))
	res := resolve(t, b, combat.UseMove(0), combat.UseMove(0))

	snorlax := b.Sides[combat.SideB].Roster[0]
	drain := hpBy(res.Events, "leech_seed")
	require.Len(t, drain, 1)
	assert.Equal(t, -snorlax.MaxHP/16, drain[0].Delta)
	heal := hpBy(res.Events, "leech_seed_heal")
	require.Len(t, heal, 1)
	assert.Equal(t, "alakazam", heal[0].Target.Species)
	assert.Equal(t, -drain[0].Delta, heal[0].Delta)
}

func TestCounter_ReturnsDoublePhysicalDamage(t *testing.T) {
	b := newBattle(t, rules(t, "standard"), roller(),
		team(member("tauros", 50, "scratch")),
		team(member("snorlax", 50, "counter")))
	res := resolve(t, b, combat.UseMove(0), combat.UseMove(0))

	hits := hpBy(res.Events, "move")
	require.Len(t, hits, 2)
	assert.Equal(t, "snorlax", hits[0].Target.Species)
	assert.Equal(t, "counter", hits[1].Move)
	assert.Equal(t, 2*hits[0].Delta, hits[1].Delta)
}

func TestCounter_FailsWithoutPhysicalDamage(t *testing.T) {
	b := newBattle(t, rules(t, "standard"), roller(),
		team(member("tauros", 50, "splash")),
		team(member("snorlax", 50, "counter")))
	res := resolve(t, b, combat.UseMove(0), combat.UseMove(0))
	failed := outcomes(res.Events, event.OutcomeFailed)
	require.Len(t, failed, 1)
	assert.Equal(t, "counter", failed[0].Move)
}

func TestToxic_Escalates(t *testing.T) {
	b := newBattle(t, rules(t, "standard"), roller(),
		team(member("gengar", 50, "sure_toxic")),
		team(member("snorlax", 50, "splash")))
	res := resolve(t, b, combat.UseMove(0), combat.UseMove(0))
	snorlax := b.Sides[combat.SideB].Roster[0]
	first := hpBy(res.Events, "toxic")
	require.Len(t, first, 1)
	assert.Equal(t, -snorlax.MaxHP/16, first[0].Delta)

	res = resolve(t, b, combat.UseMove(0), combat.UseMove(0))
	failed := outcomes(res.Events, event.OutcomeFailed)
	require.Len(t, failed, 1)
	assert.Equal(t, "already toxic", failed[0].Detail)
	second := hpBy(res.Events, "toxic")
	require.Len(t, second, 1)
	assert.Equal(t, -snorlax.MaxHP*2/16, second[0].Delta)
}

func TestToxic_PoisonTypeIsImmune(t *testing.T) {
	b := newBattle(t, rules(t, "standard"), roller(),
		team(member("tauros", 50, "sure_toxic")),
		team(member("gengar", 50, "splash")))
	res := resolve(t, b, combat.UseMove(0), combat.UseMove(0))
	require.NotEmpty(t, outcomes(res.Events, event.OutcomeNoEffect))
	assert.True(t, b.Sides[combat.SideB].Roster[0].Status.Healthy())
}

func TestSubstitute_AbsorbsDamage(t *testing.T) {
	b := newBattle(t, rules(t, "standard"), roller(),
		team(member("tauros", 50, "scratch")),
		team(member("jolteon", 50, "substitute")))
	res := resolve(t, b, combat.UseMove(0), combat.UseMove(0))

	jolteon := b.Sides[combat.SideB].Roster[0]
	cost := jolteon.MaxHP / 4
	paid := hpBy(res.Events, "substitute")
	require.Len(t, paid, 1)
	assert.Equal(t, -cost, paid[0].Delta)
	assert.Empty(t, hpBy(res.Events, "move"))

	subs := payloads[event.SubstituteDamage](res.Events)
	require.Len(t, subs, 1)
	assert.Positive(t, subs[0].Damage)
	assert.Equal(t, cost+1-subs[0].Damage, subs[0].Remaining)
	assert.False(t, subs[0].Broken)
	sub, ok := jolteon.Volatiles.Get(condition.VolatileSubstitute)
	require.True(t, ok)
	assert.Equal(t, subs[0].Remaining, sub.Value)
}

func TestMetronome_CallsAMoveFromThePool(t *testing.T) {
	b := newBattle(t, noClauses(t), roller(),
		team(member("tauros", 50, "metronome")),
		team(member("chansey", 100, "splash")))
	res := resolve(t, b, combat.UseMove(0), combat.UseMove(0))

	called := outcomes(res.Events, event.OutcomeCalledMove)
	require.Len(t, called, 1)
	var via []event.MoveUsed
	for _, u := range payloads[event.MoveUsed](res.Events) {
		if u.Via == "metronome" {
			via = append(via, u)
		}
	}
	require.Len(t, via, 1)
	assert.Equal(t, called[0].Detail, via[0].Move)
	assert.Equal(t, -1, via[0].PPLeft)
	assert.Equal(t, 9, b.Sides[combat.SideA].Roster[0].Moves[0].PP)
}

func TestMirrorMove(t *testing.T) {
	t.Run("repeats the target's last move", func(t *testing.T) {
		b := newBattle(t, rules(t, "standard"), roller(),
			team(member("tauros", 50, "mirror_move")),
			team(member("jolteon", 50, "scratch")))
		res := resolve(t, b, combat.UseMove(0), combat.UseMove(0))
		used := payloads[event.MoveUsed](res.Events)
		require.Len(t, used, 3)
		assert.Equal(t, "scratch", used[2].Move)
		assert.Equal(t, "mirror_move", used[2].Via)
		hits := hpBy(res.Events, "move")
		require.Len(t, hits, 2)
		assert.Equal(t, "jolteon", hits[1].Target.Species)
	})
	t.Run("fails with nothing to mirror", func(t *testing.T) {
		b := newBattle(t, rules(t, "standard"), roller(),
			team(member("tauros", 50, "mirror_move")),
			team(member("snorlax", 50, "scratch")))
		res := resolve(t, b, combat.UseMove(0), combat.UseMove(0))
		failed := outcomes(res.Events, event.OutcomeFailed)
		require.Len(t, failed, 1)
		assert.Equal(t, "nothing to mirror", failed[0].Detail)
	})
}

func TestTransform_CopiesAndRevertsOnSwitch(t *testing.T) {
	b := newBattle(t, rules(t, "standard"), roller(),
		team(member("tauros", 50, "transform"), member("jolteon", 50, "scratch")),
		team(member("snorlax", 50, "splash")))
	tauros := b.Sides[combat.SideA].Roster[0]
	snorlax := b.Sides[combat.SideB].Roster[0]
	ownAttack, ownHP := tauros.Stats.Attack, tauros.MaxHP

	res := resolve(t, b, combat.UseMove(0), combat.UseMove(0))
	assert.Len(t, outcomes(res.Events, event.OutcomeTransformed), 1)
	assert.True(t, tauros.Transformed())
	assert.Equal(t, snorlax.Types, tauros.Types)
	assert.Equal(t, snorlax.Stats.Attack, tauros.Stats.Attack)
	assert.Equal(t, ownHP, tauros.MaxHP)
	require.Len(t, tauros.Moves, 1)
	assert.Equal(t, "splash", tauros.Moves[0].Move.ID)
	assert.Equal(t, 5, tauros.Moves[0].PP)

	resolve(t, b, combat.SwitchTo(1), combat.UseMove(0))
	assert.False(t, tauros.Transformed())
	assert.Equal(t, ownAttack, tauros.Stats.Attack)
	assert.Equal(t, "transform", tauros.Moves[0].Move.ID)
	assert.Equal(t, 9, tauros.Moves[0].PP)
}

func TestParalysis_HalvesSpeed(t *testing.T) {
	b := newBattle(t, rules(t, "standard"), roller(),
		team(member("tauros", 50, "thunder_wave", "splash")),
		team(member("snorlax", 50, "splash")))
	snorlax := b.Sides[combat.SideB].Roster[0]
	resolve(t, b, combat.UseMove(0), combat.UseMove(0))
	require.True(t, snorlax.Status.Is(dex.AilmentParalysis))

	res := resolve(t, b, combat.UseMove(1), combat.UseMove(0))
	o := payloads[event.Order](res.Events)[0]
	assert.Equal(t, snorlax.Stats.Speed/2, o.Speeds[1])
}

func TestHaze_ResetsBothSides(t *testing.T) {
	b := newBattle(t, rules(t, "standard"), roller(),
		team(member("tauros", 50, "swords_dance", "focus_energy")),
		team(member("lapras", 50, "haze")))
	tauros := b.Sides[combat.SideA].Roster[0]
	res := resolve(t, b, combat.UseMove(0), combat.UseMove(0))

	var reset []event.StatStage
	for _, s := range payloads[event.StatStage](res.Events) {
		if s.Cause == "haze" {
			reset = append(reset, s)
		}
	}
	require.Len(t, reset, 1)
	assert.Equal(t, -2, reset[0].Applied)
	assert.Equal(t, 0, reset[0].Stage)
	assert.Equal(t, 0, tauros.Stages[dex.StatAttack])
	assert.Len(t, outcomes(res.Events, event.OutcomeHaze), 1)

	resolve(t, b, combat.UseMove(1), combat.UseMove(0))
	assert.False(t, tauros.Volatiles.Has(condition.VolatileFocusEnergy))
}

func TestRest_SleepsTwoTurnsWithoutTheClause(t *testing.T) {
	b := newBattle(t, rules(t, "standard"), roller(),
		team(member("tauros", 50, "scratch")),
		team(member("snorlax", 50, "rest", "scratch")))
	snorlax := b.Sides[combat.SideB].Roster[0]
	resolve(t, b, combat.UseMove(0), combat.UseMove(1))
	res := resolve(t, b, combat.UseMove(0), combat.UseMove(0))

	heal := hpBy(res.Events, "rest")
	require.Len(t, heal, 1)
	assert.Equal(t, snorlax.MaxHP, heal[0].After)
	assert.True(t, snorlax.Status.Is(dex.AilmentSleep))
	assert.False(t, snorlax.Status.Inflicted)

	res = resolve(t, b, combat.UseMove(0), combat.UseMove(1))
	assert.Len(t, payloads[event.MovePrevented](res.Events), 1)
	assert.True(t, snorlax.Status.Is(dex.AilmentSleep))
	assert.Equal(t, 1, snorlax.Status.SleepTurns)

	res = resolve(t, b, combat.UseMove(0), combat.UseMove(1))
	prevented := payloads[event.MovePrevented](res.Events)
	require.Len(t, prevented, 1, "the waking turn is lost too")
	assert.Equal(t, "sleep", prevented[0].Reason)
	woke := payloads[event.StatusChange](res.Events)
	require.Len(t, woke, 1)
	assert.Equal(t, "woke", woke[0].Cause)
	assert.True(t, snorlax.Status.Healthy())
}

// actedBy returns the payloads of type T whose actor is species.
func actedBy[T event.Payload](evs []event.Event, species string) []T {
	var out []T
	for _, ev := range evs {
		if ev.Actor == nil || ev.Actor.Species != species {
			continue
		}
		if p, ok := ev.Payload.(T); ok {
			out = append(out, p)
		}
	}
	return out
}

func TestSleep_CountsDownOnTheSleepersTurns(t *testing.T) {
	// scratch hits without a crit, then sleep rolls 1 turn.
	b := newBattle(t, rules(t, "standard"), roller(0, 255, 38, 0),
		team(member("jolteon", 50, "scratch")),
		team(member("alakazam", 50, "sure_sleep")))
	jolteon := b.Sides[combat.SideA].Roster[0]
	res := resolve(t, b, combat.UseMove(0), combat.UseMove(0))
	require.Len(t, actedBy[event.MoveUsed](res.Events, "jolteon"), 1)
	require.True(t, jolteon.Status.Is(dex.AilmentSleep))
	assert.Equal(t, 1, jolteon.Status.SleepTurns, "nothing counts down at end of turn")

	res = resolve(t, b, combat.UseMove(0), combat.UseMove(0))
	prevented := actedBy[event.MovePrevented](res.Events, "jolteon")
	require.Len(t, prevented, 1)
	assert.Equal(t, "sleep", prevented[0].Reason)
	assert.Empty(t, actedBy[event.MoveUsed](res.Events, "jolteon"))
	status := payloads[event.StatusChange](res.Events)
	require.NotEmpty(t, status)
	assert.Equal(t, "jolteon", status[0].Target.Species)
	assert.Equal(t, "woke", status[0].Cause)
}

func TestLeechSeed_StaysWhenTheSeederSwitches(t *testing.T) {
	b := newBattle(t, rules(t, "standard"), roller(0),
		team(member("alakazam", 50, "leech_seed"), member("tauros", 50, "scratch")),
		team(member("snorlax", 50, "scratch")))
	snorlax := b.Sides[combat.SideB].Roster[0]
	resolve(t, b, combat.UseMove(0), combat.UseMove(0))
	require.True(t, snorlax.Volatiles.Has(condition.VolatileSeeded))

	res := resolve(t, b, combat.SwitchTo(1), combat.UseMove(0))
	assert.True(t, snorlax.Volatiles.Has(condition.VolatileSeeded))
	for _, v := range payloads[event.VolatileChange](res.Events) {
		assert.NotEqual(t, "seeded", v.Volatile)
	}
	drain := hpBy(res.Events, "leech_seed")
	require.Len(t, drain, 1)
	assert.Equal(t, "snorlax", drain[0].Target.Species)
	heal := hpBy(res.Events, "leech_seed_heal")
	require.Len(t, heal, 1)
	assert.Equal(t, "tauros", heal[0].Target.Species)
}
