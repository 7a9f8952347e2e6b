package main

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/cory-johannsen/battlecore/internal/config"
	"github.com/cory-johannsen/battlecore/internal/content"
	"github.com/cory-johannsen/battlecore/internal/game/ai"
	"github.com/cory-johannsen/battlecore/internal/game/combat"
	"github.com/cory-johannsen/battlecore/internal/game/event"
	"github.com/cory-johannsen/battlecore/internal/game/ruleset"
	"github.com/cory-johannsen/battlecore/internal/observability"
	"github.com/cory-johannsen/battlecore/internal/scripting"
	"github.com/cory-johannsen/battlecore/internal/storage/postgres"
)

// Policy names understood besides HTN domain IDs.
const (
	policyRandom = "random"
	policyGreedy = "greedy"
	policyScript = "script"
)

// simulator runs independent battles between two fixed teams.
type simulator struct {
	bundle  *content.Bundle
	rules   *ruleset.Ruleset
	mech    combat.Mechanics
	teams   [2][]ruleset.Member
	policy  [2]string
	scripts [2]string
	instLim int
	turns   int
	engine  *combat.Engine
	repo    *postgres.BattleRepository
	logger  *zap.Logger

	mu    sync.Mutex
	tally tally
}

// tally aggregates battle outcomes.
type tally struct {
	Battles    int
	Wins       [2]int
	Draws      int
	Aborted    int
	TurnCapped int
	Turns      int
	Violations int
}

func newSimulator(cfg config.Config, bundle *content.Bundle, teamA, teamB string, repo *postgres.BattleRepository, logger *zap.Logger) (*simulator, error) {
	rs, ok := bundle.Rulesets.Get(cfg.Battle.Ruleset)
	if !ok {
		return nil, fmt.Errorf("unknown ruleset %q", cfg.Battle.Ruleset)
	}
	s := &simulator{
		bundle:  bundle,
		rules:   rs,
		mech:    cfg.Mechanics.ToCombat(),
		policy:  [2]string{cfg.Battle.PolicyA, cfg.Battle.PolicyB},
		scripts: [2]string{cfg.Scripting.SideA, cfg.Scripting.SideB},
		instLim: cfg.Scripting.InstructionLimit,
		turns:   cfg.Battle.MaxTurns,
		engine:  combat.NewEngine(),
		repo:    repo,
		logger:  logger,
	}
	for i, id := range []string{teamA, teamB} {
		team, ok := bundle.Teams[id]
		if !ok {
			return nil, fmt.Errorf("unknown team %q", id)
		}
		members, err := team.Resolve(bundle.Dex, rs)
		if err != nil {
			return nil, err
		}
		s.teams[i] = members
	}
	for i, p := range s.policy {
		switch p {
		case policyRandom, policyGreedy:
		case policyScript:
			if s.scripts[i] == "" {
				return nil, fmt.Errorf("side %s: policy %q needs a script path", combat.SideID(i), p)
			}
		default:
			if _, ok := bundle.Domains[p]; !ok {
				return nil, fmt.Errorf("side %s: unknown policy %q", combat.SideID(i), p)
			}
			if s.scripts[i] == "" {
				return nil, fmt.Errorf("side %s: domain %q needs a precondition script", combat.SideID(i), p)
			}
		}
	}
	return s, nil
}

// choosers builds one chooser per side for b. Lua VMs draw from b's roller,
// so a scripted battle stays reproducible from its seed.
func (s *simulator) choosers(b *combat.Battle, logger *zap.Logger) ([2]combat.Chooser, func(), error) {
	var out [2]combat.Chooser
	mgr := scripting.NewManager(b.Roller(), logger)
	for i, p := range s.policy {
		side := combat.SideID(i)
		var c ai.Chooser
		switch p {
		case policyRandom:
			c = ai.NewRandom(b.Roller())
		case policyGreedy:
			c = ai.Greedy{}
		default:
			key := side.String()
			if err := mgr.LoadFile(key, s.scripts[i], s.instLim); err != nil {
				mgr.Close()
				return out, nil, err
			}
			if p == policyScript {
				sc, err := ai.NewScripted(mgr, key)
				if err != nil {
					mgr.Close()
					return out, nil, err
				}
				c = sc
			} else {
				c = ai.NewPlanner(s.bundle.Domains[p], mgr, key)
			}
		}
		out[i] = ai.Adapt(c)
	}
	return out, mgr.Close, nil
}

// run plays one battle from seed to completion.
//
// Postcondition: The battle is removed from the engine on return.
func (s *simulator) run(ctx context.Context, seed int64) error {
	b, err := s.engine.StartBattle(combat.Config{
		Seed:       seed,
		Ruleset:    s.rules,
		Mechanics:  s.mech,
		Dex:        s.bundle.Dex,
		Conditions: s.bundle.Conditions,
		Logger:     s.logger,
	}, s.teams[0], s.teams[1])
	if err != nil {
		return fmt.Errorf("seed %d: %w", seed, err)
	}
	defer s.engine.EndBattle(b.ID)
	logger := observability.BattleLogger(s.logger, b.ID, seed)

	auditor := event.NewAuditor()
	for _, ev := range b.Bus().History() {
		_ = auditor.Handle(ev)
	}
	b.Bus().Subscribe("auditor", auditor.Handle)

	var sink *postgres.Sink
	if s.repo != nil {
		sink = postgres.NewSink(s.repo, logger)
		sink.Attach(b.Bus())
	}

	choosers, closeVMs, err := s.choosers(b, logger)
	if err != nil {
		return fmt.Errorf("seed %d: %w", seed, err)
	}
	defer closeVMs()

	res, runErr := combat.Run(ctx, b, choosers, s.turns)
	if !countable(runErr) {
		return fmt.Errorf("battle %s: %w", b.ID, runErr)
	}
	if errors.Is(runErr, combat.ErrInvariantViolation) {
		logger.Error("battle aborted", zap.Error(runErr))
	}
	if sink != nil {
		if err := sink.Flush(ctx); err != nil {
			return fmt.Errorf("battle %s: persisting events: %w", b.ID, err)
		}
	}

	violations := auditor.Violations()
	for _, v := range violations {
		logger.Error("audit violation", zap.String("violation", v))
	}
	logger.Info("battle finished",
		zap.Int("turns", res.Turns),
		zap.Bool("draw", res.Draw),
		zap.Bool("aborted", res.Aborted),
		zap.Bool("turn_capped", errors.Is(runErr, combat.ErrTurnLimit)),
		zap.Stringer("winner", res.Winner),
	)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tally.record(res, runErr, len(violations))
	return nil
}

// countable reports whether a battle that ended with err still belongs in
// the tally. A turn cap and an aborted battle are outcomes; anything else
// fails the run.
func countable(err error) bool {
	return err == nil || errors.Is(err, combat.ErrTurnLimit) || errors.Is(err, combat.ErrInvariantViolation)
}

// record adds one finished battle.
func (t *tally) record(res combat.Result, runErr error, violations int) {
	t.Battles++
	t.Turns += res.Turns
	t.Violations += violations
	switch {
	case errors.Is(runErr, combat.ErrTurnLimit):
		t.TurnCapped++
	case res.Aborted || errors.Is(runErr, combat.ErrInvariantViolation):
		t.Aborted++
	case res.Draw:
		t.Draws++
	default:
		t.Wins[res.Winner]++
	}
}

// summary returns a copy of the tally.
func (s *simulator) summary() tally {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tally
}
