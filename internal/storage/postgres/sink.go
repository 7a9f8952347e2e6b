package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/battlecore/internal/game/event"
)

// Sink buffers one battle's events from its bus and writes them on Flush.
// The bus is synchronous and has no context, so database writes never run
// inside a publish.
//
// It is not safe for concurrent use; like the bus it belongs to one battle.
type Sink struct {
	repo   *BattleRepository
	logger *zap.Logger

	id       uuid.UUID
	seed     int64
	ruleset  string
	started  bool
	created  bool
	pending  []event.Event
	end      *event.BattleEnd
	finished bool
}

// NewSink creates an unattached Sink.
//
// Precondition: repo must not be nil.
func NewSink(repo *BattleRepository, logger *zap.Logger) *Sink {
	if repo == nil {
		panic("postgres.NewSink: repo must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sink{repo: repo, logger: logger}
}

// Attach feeds the events already in bus's history to the sink and
// subscribes it for the rest.
//
// Postcondition: Returns the subscription id.
func (s *Sink) Attach(bus *event.Bus) int {
	for _, ev := range bus.History() {
		_ = s.Handle(ev)
	}
	return bus.Subscribe("postgres_sink", s.Handle)
}

// Handle buffers ev. It implements event.Handler.
func (s *Sink) Handle(ev event.Event) error {
	switch p := ev.Payload.(type) {
	case event.BattleStart:
		id, err := uuid.Parse(p.BattleID)
		if err != nil {
			return fmt.Errorf("postgres sink: battle id %q: %w", p.BattleID, err)
		}
		s.id, s.seed, s.ruleset, s.started = id, p.Seed, p.Ruleset, true
	case event.BattleEnd:
		end := p
		s.end = &end
	}
	s.pending = append(s.pending, ev)
	return nil
}

// Pending returns the number of buffered events.
func (s *Sink) Pending() int { return len(s.pending) }

// Flush writes the buffered events, creating the battle row on first use
// and recording the outcome once BattleEnd has been seen. Failures are
// logged and returned; the buffer is kept so a later Flush can retry.
//
// Postcondition: On nil return Pending() == 0.
func (s *Sink) Flush(ctx context.Context) error {
	if err := s.flush(ctx); err != nil {
		s.logger.Error("postgres sink: flush failed",
			zap.String("battle_id", s.id.String()),
			zap.Int("pending", len(s.pending)),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (s *Sink) flush(ctx context.Context) error {
	if !s.started {
		if len(s.pending) == 0 {
			return nil
		}
		return errors.New("postgres sink: no battle_start seen")
	}
	if !s.created {
		if err := s.repo.Create(ctx, s.id, s.seed, s.ruleset); err != nil && !errors.Is(err, ErrBattleExists) {
			return err
		}
		s.created = true
	}
	if err := s.repo.AppendEvents(ctx, s.id, s.pending); err != nil {
		return err
	}
	s.pending = s.pending[:0]
	if s.end != nil && !s.finished {
		if err := s.repo.Finish(ctx, s.id, *s.end); err != nil {
			return err
		}
		s.finished = true
	}
	return nil
}
