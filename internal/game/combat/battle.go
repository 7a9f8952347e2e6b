// Package combat resolves Generation 1 battles one turn at a time. A Battle
// is single-threaded: every mutation happens inside ResolveTurn or Replace,
// draws from the battle's one Roller, and is published on the battle's Bus.
package combat

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/battlecore/internal/game/condition"
	"github.com/cory-johannsen/battlecore/internal/game/dex"
	"github.com/cory-johannsen/battlecore/internal/game/dice"
	"github.com/cory-johannsen/battlecore/internal/game/event"
	"github.com/cory-johannsen/battlecore/internal/game/ruleset"
)

// ErrInvalidTeam is returned by New when a team breaks the ruleset.
var ErrInvalidTeam = errors.New("invalid team")

// battleNamespace scopes battle IDs derived from seeds.
var battleNamespace = uuid.MustParse("5b0c7d2e-8f3a-4c61-9a2e-3d9b1f6e7c40")

// Config holds everything New needs besides the teams.
type Config struct {
	// Seed feeds the battle RNG. It must be non-zero unless Roller is set.
	Seed    int64
	Ruleset *ruleset.Ruleset
	// Mechanics defaults to DefaultMechanics when left zero.
	Mechanics Mechanics
	Dex       *dex.Dex
	// Conditions defaults to condition.DefaultRegistry.
	Conditions *condition.Registry
	Logger     *zap.Logger
	// Roller replaces the seeded roller. Tests use it to script draws.
	Roller *dice.Roller
}

// Result summarises a finished battle. Winner is meaningful only when Over
// is set and neither Draw nor Aborted is.
type Result struct {
	Over    bool
	Winner  SideID
	Draw    bool
	Aborted bool
	Turns   int
}

// Battle is the complete state of one battle.
type Battle struct {
	ID        uuid.UUID
	Seed      int64
	Sides     [2]*Side
	Turn      int
	Ruleset   *ruleset.Ruleset
	Mechanics Mechanics

	result   Result
	policy   dex.Policy
	gate     condition.Gate
	conds    *condition.Registry
	pool     []*dex.Move
	struggle *dex.Move
	effects  map[dex.Effect]effectFunc
	rng      *dice.Roller
	bus      *event.Bus
	logger   *zap.Logger

	// per-turn bookkeeping
	acted [2]bool
	order [2]SideID
}

// defaultStruggle is used when the dex does not define struggle.
var defaultStruggle = &dex.Move{
	ID:            "struggle",
	Name:          "Struggle",
	Type:          dex.TypeNone,
	Power:         50,
	Accuracy:      100,
	PP:            1,
	Effect:        dex.EffectStruggle,
	RecoilDivisor: 2,
	NoMetronome:   true,
}

// New validates both teams against cfg.Ruleset, builds the battle and
// publishes battle_start. Slot 0 of each team leads.
//
// Precondition: cfg.Ruleset and cfg.Dex must be non-nil.
// Postcondition: Returns a battle at turn 0, or an error wrapping
// ErrInvalidTeam when either team breaks the ruleset.
func New(cfg Config, teamA, teamB []ruleset.Member) (*Battle, error) {
	if cfg.Ruleset == nil {
		return nil, errors.New("combat: ruleset must not be nil")
	}
	if cfg.Dex == nil {
		return nil, errors.New("combat: dex must not be nil")
	}
	if cfg.Mechanics == (Mechanics{}) {
		cfg.Mechanics = DefaultMechanics()
	}
	if err := cfg.Mechanics.Validate(); err != nil {
		return nil, err
	}
	if cfg.Roller == nil && cfg.Seed == 0 {
		return nil, errors.New("combat: seed must be non-zero")
	}
	var errs []error
	for i, team := range [2][]ruleset.Member{teamA, teamB} {
		if err := cfg.Ruleset.ValidateTeam(team); err != nil {
			errs = append(errs, fmt.Errorf("side %s: %w", SideID(i), err))
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTeam, errors.Join(errs...))
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	conds := cfg.Conditions
	if conds == nil {
		conds = condition.DefaultRegistry()
	}
	rng := cfg.Roller
	if rng == nil {
		rng = dice.NewSeededRoller(cfg.Seed, logger)
	}
	struggle, ok := cfg.Dex.Move("struggle")
	if !ok {
		struggle = defaultStruggle
	}
	var pool []*dex.Move
	for _, m := range cfg.Dex.Moves() {
		if !m.NoMetronome {
			pool = append(pool, m)
		}
	}

	b := &Battle{
		ID:        battleID(cfg.Seed, cfg.Ruleset.ID, teamA, teamB),
		Seed:      cfg.Seed,
		Ruleset:   cfg.Ruleset,
		Mechanics: cfg.Mechanics,
		policy:    dex.Gen1(),
		gate:      condition.NewGate(cfg.Ruleset.Clauses),
		conds:     conds,
		pool:      pool,
		struggle:  struggle,
		effects:   newEffectRegistry(),
		rng:       rng,
		bus:       event.NewBus(logger),
		logger:    logger,
	}
	start := event.BattleStart{
		BattleID: b.ID.String(),
		Seed:     cfg.Seed,
		Ruleset:  cfg.Ruleset.ID,
	}
	for i, team := range [2][]ruleset.Member{teamA, teamB} {
		side := &Side{ID: SideID(i)}
		for slot, m := range team {
			c := NewCombatant(m.Species, m.Level, m.Moves, cfg.Ruleset.UseBaseStats)
			c.ref = event.Ref{Side: i, Slot: slot, Species: m.Species.ID}
			side.Roster = append(side.Roster, c)
			ids := make([]string, len(m.Moves))
			for j, mv := range m.Moves {
				ids[j] = mv.ID
			}
			start.Rosters[i] = append(start.Rosters[i], event.RosterEntry{
				Species: m.Species.ID, Level: m.Level, MaxHP: c.MaxHP, Moves: ids,
			})
		}
		start.Leads[i] = side.Roster[0].ref
		b.Sides[i] = side
	}
	b.bus.Publish(0, nil, start)
	return b, nil
}

func battleID(seed int64, rulesetID string, teams ...[]ruleset.Member) uuid.UUID {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s:%d", rulesetID, seed)
	for _, team := range teams {
		sb.WriteString("|")
		for _, m := range team {
			fmt.Fprintf(&sb, "%s@%d,", m.Species.ID, m.Level)
		}
	}
	return uuid.NewSHA1(battleNamespace, []byte(sb.String()))
}

// Bus returns the battle's event bus.
func (b *Battle) Bus() *event.Bus { return b.bus }

// Roller returns the battle's RNG. Action policies that need randomness draw
// from it so a seed reproduces the whole battle.
func (b *Battle) Roller() *dice.Roller { return b.rng }

// Gate returns the clause gate of the battle's ruleset.
func (b *Battle) Gate() condition.Gate { return b.gate }

// Side returns side id.
func (b *Battle) Side(id SideID) *Side { return b.Sides[id] }

// Over reports whether the battle has ended.
func (b *Battle) Over() bool { return b.result.Over }

// Result returns the current result.
func (b *Battle) Result() Result {
	r := b.result
	r.Turns = b.Turn
	return r
}

func (b *Battle) publish(actor *Combatant, p event.Payload) event.Event {
	var ref *event.Ref
	if actor != nil {
		r := actor.ref
		ref = &r
	}
	return b.bus.Publish(b.Turn, ref, p)
}

func (b *Battle) sideOf(c *Combatant) *Side { return b.Sides[c.ref.Side] }

func (b *Battle) opponentOf(c *Combatant) *Combatant {
	return b.Sides[SideID(c.ref.Side).Opponent()].ActiveCombatant()
}
