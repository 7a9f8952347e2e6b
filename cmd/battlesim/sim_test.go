package main

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cory-johannsen/battlecore/internal/config"
	"github.com/cory-johannsen/battlecore/internal/content"
	"github.com/cory-johannsen/battlecore/internal/game/combat"
)

func testConfig(t *testing.T, policyA, policyB string) (config.Config, *content.Bundle) {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Content.Dir = "../../content"
	cfg.Battle.PolicyA, cfg.Battle.PolicyB = policyA, policyB
	cfg.Scripting.SideA = "../../content/scripts/aggressive.lua"
	cfg.Scripting.SideB = "../../content/scripts/aggressive.lua"
	bundle, err := content.Load(cfg.Content)
	require.NoError(t, err)
	return cfg, bundle
}

func TestSimulator_RunsEveryPolicy(t *testing.T) {
	for _, pair := range [][2]string{
		{policyGreedy, policyRandom},
		{policyScript, "aggressive"},
	} {
		t.Run(pair[0]+"_vs_"+pair[1], func(t *testing.T) {
			cfg, bundle := testConfig(t, pair[0], pair[1])
			sim, err := newSimulator(cfg, bundle, "electric", "boulder", nil, zap.NewNop())
			require.NoError(t, err)

			g, ctx := errgroup.WithContext(context.Background())
			for seed := int64(1); seed <= 4; seed++ {
				g.Go(func() error { return sim.run(ctx, seed) })
			}
			require.NoError(t, g.Wait())

			got := sim.summary()
			assert.Equal(t, 4, got.Battles)
			assert.Zero(t, got.Violations)
			assert.Zero(t, got.Aborted)
			assert.Equal(t, 4, got.Wins[0]+got.Wins[1]+got.Draws+got.TurnCapped)
			assert.Zero(t, sim.engine.Len())
		})
	}
}

func TestSimulator_SameSeedSameOutcome(t *testing.T) {
	cfg, bundle := testConfig(t, policyRandom, policyRandom)
	outcome := func() tally {
		sim, err := newSimulator(cfg, bundle, "electric", "boulder", nil, zap.NewNop())
		require.NoError(t, err)
		require.NoError(t, sim.run(context.Background(), 99))
		return sim.summary()
	}
	assert.Equal(t, outcome(), outcome())
}

func TestNewSimulator_Rejects(t *testing.T) {
	cfg, bundle := testConfig(t, policyGreedy, policyGreedy)

	_, err := newSimulator(cfg, bundle, "electric", "nobody", nil, zap.NewNop())
	assert.ErrorContains(t, err, "unknown team")

	bad := cfg
	bad.Battle.Ruleset = "nope"
	_, err = newSimulator(bad, bundle, "electric", "boulder", nil, zap.NewNop())
	assert.ErrorContains(t, err, "unknown ruleset")

	bad = cfg
	bad.Battle.PolicyB = "coward"
	_, err = newSimulator(bad, bundle, "electric", "boulder", nil, zap.NewNop())
	assert.ErrorContains(t, err, "unknown policy")

	bad = cfg
	bad.Battle.PolicyA = policyScript
	bad.Scripting.SideA = ""
	_, err = newSimulator(bad, bundle, "electric", "boulder", nil, zap.NewNop())
	assert.ErrorContains(t, err, "needs a script path")
}

func TestTally_RecordCountsEveryEnding(t *testing.T) {
	violation := fmt.Errorf("turn 3: %w: hp out of range", combat.ErrInvariantViolation)
	var got tally
	got.record(combat.Result{Over: true, Winner: combat.SideB, Turns: 7}, nil, 0)
	got.record(combat.Result{Over: true, Draw: true, Turns: 4}, nil, 0)
	got.record(combat.Result{Turns: 50}, combat.ErrTurnLimit, 0)
	got.record(combat.Result{Over: true, Aborted: true, Turns: 3}, violation, 2)

	assert.Equal(t, tally{
		Battles:    4,
		Wins:       [2]int{0, 1},
		Draws:      1,
		Aborted:    1,
		TurnCapped: 1,
		Turns:      64,
		Violations: 2,
	}, got)
}

func TestCountable(t *testing.T) {
	assert.True(t, countable(nil))
	assert.True(t, countable(combat.ErrTurnLimit))
	assert.True(t, countable(fmt.Errorf("battle: %w", combat.ErrInvariantViolation)))
	assert.False(t, countable(context.Canceled))
	assert.False(t, countable(errors.New("side a: chooser failed")))
}
