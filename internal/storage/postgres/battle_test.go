package postgres_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/battlecore/internal/game/event"
	"github.com/cory-johannsen/battlecore/internal/storage/postgres"
	"github.com/cory-johannsen/battlecore/internal/testutil"
)

func TestBattleRepository_CreateGetFinish(t *testing.T) {
	repo := postgres.NewBattleRepository(testutil.NewPool(t))
	ctx := context.Background()
	id := uuid.New()

	require.NoError(t, repo.Create(ctx, id, 42, "standard"))
	assert.ErrorIs(t, repo.Create(ctx, id, 42, "standard"), postgres.ErrBattleExists)

	rec, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, rec.ID)
	assert.Equal(t, int64(42), rec.Seed)
	assert.Equal(t, "standard", rec.Ruleset)
	assert.Nil(t, rec.EndedAt)
	assert.Nil(t, rec.Winner)

	require.NoError(t, repo.Finish(ctx, id, event.BattleEnd{Winner: 1, Turns: 12, Reason: "side_defeated"}))
	rec, err = repo.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, rec.Winner)
	assert.Equal(t, 1, *rec.Winner)
	assert.NotNil(t, rec.EndedAt)
	assert.Equal(t, 12, rec.Turns)
	assert.False(t, rec.Aborted)
}

func TestBattleRepository_FinishAborted(t *testing.T) {
	repo := postgres.NewBattleRepository(testutil.NewPool(t))
	ctx := context.Background()
	id := uuid.New()
	require.NoError(t, repo.Create(ctx, id, 1, "standard"))

	require.NoError(t, repo.Finish(ctx, id, event.BattleEnd{Winner: -1, Turns: 3, Reason: "aborted: invariant violation"}))
	rec, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, rec.Aborted)
	assert.Nil(t, rec.Winner)
}

func TestBattleRepository_NotFound(t *testing.T) {
	repo := postgres.NewBattleRepository(testutil.NewPool(t))
	ctx := context.Background()
	_, err := repo.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, postgres.ErrBattleNotFound)
	assert.ErrorIs(t, repo.Finish(ctx, uuid.New(), event.BattleEnd{}), postgres.ErrBattleNotFound)
}

func TestBattleRepository_AppendAndListEvents(t *testing.T) {
	repo := postgres.NewBattleRepository(testutil.NewPool(t))
	ctx := context.Background()
	id := uuid.New()
	require.NoError(t, repo.Create(ctx, id, 7, "standard"))

	actor := &event.Ref{Side: 0, Slot: 0, Species: "tauros"}
	evs := []event.Event{
		{Seq: 1, Turn: 0, Kind: event.KindTurnStart, Payload: event.TurnStart{}},
		{Seq: 2, Turn: 1, Kind: event.KindFaint, Actor: actor, Payload: event.Faint{}},
	}
	require.NoError(t, repo.AppendEvents(ctx, id, evs))
	assert.Error(t, repo.AppendEvents(ctx, id, evs[:1]), "duplicate seq")

	got, err := repo.Events(ctx, id, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, event.KindFaint, got[1].Kind)
	assert.Empty(t, got[0].Actor)

	var ref event.Ref
	require.NoError(t, json.Unmarshal(got[1].Actor, &ref))
	assert.Equal(t, "tauros", ref.Species)

	after, err := repo.Events(ctx, id, 1)
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.Equal(t, 2, after[0].Seq)
}
