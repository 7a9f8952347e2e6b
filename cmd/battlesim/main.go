// Package main provides the battle simulator: it runs batches of seeded
// battles between two content teams and reports the outcomes.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cory-johannsen/battlecore/internal/config"
	"github.com/cory-johannsen/battlecore/internal/content"
	"github.com/cory-johannsen/battlecore/internal/game/dice"
	"github.com/cory-johannsen/battlecore/internal/observability"
	"github.com/cory-johannsen/battlecore/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "", "path to configuration file; empty = defaults and environment")
	teamA := flag.String("team-a", "electric", "team ID for side a")
	teamB := flag.String("team-b", "boulder", "team ID for side b")
	battles := flag.Int("battles", 0, "number of battles (0 = battle.battles from config)")
	seed := flag.Int64("seed", 0, "base seed; battle i uses seed+i (0 = battle.seed from config)")
	policyA := flag.String("policy-a", "", "chooser for side a: random, greedy, script or an AI domain ID")
	policyB := flag.String("policy-b", "", "chooser for side b")
	workers := flag.Int("workers", 0, "parallel battles (0 = battle.workers from config)")
	maxTurns := flag.Int("max-turns", 0, "turn cap per battle (0 = battle.max_turns from config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if *battles > 0 {
		cfg.Battle.Battles = *battles
	}
	if *seed != 0 {
		cfg.Battle.Seed = *seed
	}
	if *policyA != "" {
		cfg.Battle.PolicyA = *policyA
	}
	if *policyB != "" {
		cfg.Battle.PolicyB = *policyB
	}
	if *workers > 0 {
		cfg.Battle.Workers = *workers
	}
	if *maxTurns > 0 {
		cfg.Battle.MaxTurns = *maxTurns
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	bundle, err := content.Load(cfg.Content)
	if err != nil {
		logger.Fatal("loading content", zap.Error(err))
	}

	var repo *postgres.BattleRepository
	if cfg.Database.Enabled {
		dbStart := time.Now()
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			logger.Fatal("connecting to database", zap.Error(err))
		}
		defer pool.Close()
		if err := pool.CheckSchema(ctx, 5*time.Second); err != nil {
			logger.Fatal("checking schema; run cmd/migrate first", zap.Error(err))
		}
		logger.Info("database connected",
			zap.String("host", cfg.Database.Host),
			zap.Duration("elapsed", time.Since(dbStart)),
		)
		repo = postgres.NewBattleRepository(pool.DB())
	}

	sim, err := newSimulator(cfg, bundle, *teamA, *teamB, repo, logger)
	if err != nil {
		logger.Fatal("configuring simulator", zap.Error(err))
	}

	base := cfg.Battle.Seed
	if base == 0 {
		if base, err = dice.NewSeed(); err != nil {
			logger.Fatal("drawing seed", zap.Error(err))
		}
	}
	logger.Info("starting battles",
		zap.Int("battles", cfg.Battle.Battles),
		zap.Int("workers", cfg.Battle.Workers),
		zap.Int64("base_seed", base),
		zap.String("ruleset", cfg.Battle.Ruleset),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Battle.Workers)
	for i := range cfg.Battle.Battles {
		s := base + int64(i)
		if s == 0 {
			s = 1
		}
		g.Go(func() error { return sim.run(gctx, s) })
	}
	if err := g.Wait(); err != nil {
		logger.Fatal("battle run failed", zap.Error(err))
	}

	t := sim.summary()
	fmt.Fprintf(os.Stdout, "%d battles: a=%d b=%d draws=%d aborted=%d capped=%d avg_turns=%.1f violations=%d [%s]\n",
		t.Battles, t.Wins[0], t.Wins[1], t.Draws, t.Aborted, t.TurnCapped,
		float64(t.Turns)/float64(max(t.Battles, 1)), t.Violations, time.Since(start))
}
