package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/battlecore/internal/game/event"
)

// ErrBattleNotFound is returned when a battle lookup yields no results.
var ErrBattleNotFound = errors.New("battle not found")

// ErrBattleExists is returned when a battle ID is inserted twice.
var ErrBattleExists = errors.New("battle already exists")

// BattleRecord is one row of the battles table. Winner is nil while the
// battle runs and for draws and aborted battles.
type BattleRecord struct {
	ID        uuid.UUID
	Seed      int64
	Ruleset   string
	StartedAt time.Time
	EndedAt   *time.Time
	Winner    *int
	Draw      bool
	Aborted   bool
	Turns     int
}

// StoredEvent is one persisted event. Actor and Payload hold the JSON the
// event package encodes.
type StoredEvent struct {
	Seq     int
	Turn    int
	Kind    event.Kind
	Actor   json.RawMessage
	Payload json.RawMessage
}

// BattleRepository persists battles and their event streams.
type BattleRepository struct {
	db *pgxpool.Pool
}

// NewBattleRepository creates a BattleRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewBattleRepository(db *pgxpool.Pool) *BattleRepository {
	return &BattleRepository{db: db}
}

// Create inserts a running battle.
//
// Postcondition: Returns ErrBattleExists if id is already stored.
func (r *BattleRepository) Create(ctx context.Context, id uuid.UUID, seed int64, ruleset string) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO battles (id, seed, ruleset) VALUES ($1, $2, $3)`,
		id.String(), seed, ruleset,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrBattleExists
		}
		return fmt.Errorf("inserting battle: %w", err)
	}
	return nil
}

// Finish records the outcome of battle id from its BattleEnd payload. A
// reason starting with "aborted" marks a battle stopped by an invariant
// violation.
//
// Postcondition: Returns ErrBattleNotFound if id is not stored.
func (r *BattleRepository) Finish(ctx context.Context, id uuid.UUID, end event.BattleEnd) error {
	aborted := strings.HasPrefix(end.Reason, "aborted")
	var winner *int
	if !end.Draw && !aborted && end.Winner >= 0 {
		w := end.Winner
		winner = &w
	}
	tag, err := r.db.Exec(ctx,
		`UPDATE battles
		 SET ended_at = NOW(), winner = $2, draw = $3, aborted = $4, turns = $5
		 WHERE id = $1`,
		id.String(), winner, end.Draw, aborted, end.Turns,
	)
	if err != nil {
		return fmt.Errorf("finishing battle: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrBattleNotFound
	}
	return nil
}

// Get retrieves a battle by ID.
//
// Postcondition: Returns the record or ErrBattleNotFound.
func (r *BattleRepository) Get(ctx context.Context, id uuid.UUID) (BattleRecord, error) {
	var (
		rec    BattleRecord
		rawID  string
		winner *int16
	)
	err := r.db.QueryRow(ctx,
		`SELECT id::text, seed, ruleset, started_at, ended_at, winner, draw, aborted, turns
		 FROM battles WHERE id = $1`,
		id.String(),
	).Scan(&rawID, &rec.Seed, &rec.Ruleset, &rec.StartedAt, &rec.EndedAt, &winner, &rec.Draw, &rec.Aborted, &rec.Turns)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return BattleRecord{}, ErrBattleNotFound
		}
		return BattleRecord{}, fmt.Errorf("querying battle: %w", err)
	}
	if rec.ID, err = uuid.Parse(rawID); err != nil {
		return BattleRecord{}, fmt.Errorf("parsing battle id %q: %w", rawID, err)
	}
	if winner != nil {
		w := int(*winner)
		rec.Winner = &w
	}
	return rec, nil
}

// AppendEvents stores evs for battle id in one batch.
//
// Precondition: the battle must exist; evs must not repeat stored sequence
// numbers.
// Postcondition: Either every event is stored or none is.
func (r *BattleRepository) AppendEvents(ctx context.Context, id uuid.UUID, evs []event.Event) error {
	if len(evs) == 0 {
		return nil
	}
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning event batch: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	for _, ev := range evs {
		payload, err := json.Marshal(ev.Payload)
		if err != nil {
			return fmt.Errorf("encoding event %d: %w", ev.Seq, err)
		}
		var actor []byte
		if ev.Actor != nil {
			if actor, err = json.Marshal(ev.Actor); err != nil {
				return fmt.Errorf("encoding event %d actor: %w", ev.Seq, err)
			}
		}
		batch.Queue(
			`INSERT INTO battle_events (battle_id, seq, turn, kind, actor, payload)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			id.String(), ev.Seq, ev.Turn, string(ev.Kind), actor, payload,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("inserting events: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing events: %w", err)
	}
	return nil
}

// Events returns the stored events of battle id with Seq greater than
// after, in sequence order.
//
// Postcondition: Returns a slice (may be empty) or a non-nil error.
func (r *BattleRepository) Events(ctx context.Context, id uuid.UUID, after int) ([]StoredEvent, error) {
	rows, err := r.db.Query(ctx,
		`SELECT seq, turn, kind, actor, payload
		 FROM battle_events WHERE battle_id = $1 AND seq > $2 ORDER BY seq ASC`,
		id.String(), after,
	)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	defer rows.Close()

	var out []StoredEvent
	for rows.Next() {
		var (
			se   StoredEvent
			kind string
		)
		if err := rows.Scan(&se.Seq, &se.Turn, &kind, &se.Actor, &se.Payload); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		se.Kind = event.Kind(kind)
		out = append(out, se)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating events: %w", err)
	}
	return out, nil
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	// pgx wraps PostgreSQL errors; check for SQLSTATE 23505 (unique_violation)
	var pgErr interface{ SQLState() string }
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == "23505"
	}
	return false
}
