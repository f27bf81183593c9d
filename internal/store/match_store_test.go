package store

import (
	"context"
	"testing"

	"github.com/AdamBeresnev/op-bracket/internal/bracket"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createBracket(t *testing.T, store *TournamentStore, participantCount int) (*bracket.Tournament, []bracket.Participant, []bracket.Match) {
	t.Helper()

	tournament, participants := seedTournament(t, store, participantCount)
	matches, err := bracket.NewSingleEliminationGenerator().Generate(tournament.ID, participants)
	require.NoError(t, err)

	withTx(t, store.DB(), func(tx *sqlx.Tx) {
		require.NoError(t, store.CreateMatches(context.Background(), tx, matches))
	})

	return tournament, participants, matches
}

func TestCreateMatches(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	store := NewTournamentStore(database)
	ctx := context.Background()
	tournament, participants, matches := createBracket(t, store, 5)

	fetched, err := store.GetMatches(ctx, tournament.ID)
	require.NoError(t, err)
	require.Len(t, fetched, 7)

	// Ordered by round then match order
	for i := 1; i < len(fetched); i++ {
		prev, cur := fetched[i-1], fetched[i]
		assert.True(t, prev.Round < cur.Round || (prev.Round == cur.Round && prev.MatchOrder < cur.MatchOrder))
	}

	byID := make(map[uuid.UUID]bracket.Match)
	for _, m := range matches {
		byID[m.ID] = m
	}
	for _, m := range fetched {
		original := byID[m.ID]
		assert.Equal(t, original.Round, m.Round)
		assert.Equal(t, original.MatchOrder, m.MatchOrder)
		assert.Equal(t, original.Status, m.Status)
		assert.Equal(t, original.IsBye, m.IsBye)
		assert.Equal(t, original.NextMatchID, m.NextMatchID)
		assert.Equal(t, original.Player1ID, m.Player1ID)
		assert.Equal(t, original.Player2ID, m.Player2ID)
		assert.Equal(t, original.WinnerID, m.WinnerID)
	}

	bye := fetched[2]
	assert.Equal(t, 1, bye.Round)
	assert.Equal(t, 2, bye.MatchOrder)
	require.NotNil(t, bye.WinnerID)
	assert.Equal(t, participants[4].ID, *bye.WinnerID)
}

func TestCreateMatches_DanglingNextMatch(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	store := NewTournamentStore(database)
	ctx := context.Background()
	tournament, _ := seedTournament(t, store, 2)

	missing := uuid.New()
	tx, err := database.BeginTxx(ctx, nil)
	require.NoError(t, err)
	defer tx.Rollback()

	err = store.CreateMatches(ctx, tx, []bracket.Match{{
		ID:           uuid.New(),
		TournamentID: tournament.ID,
		Round:        1,
		MatchOrder:   0,
		Status:       bracket.MatchPending,
		NextMatchID:  &missing,
	}})
	assert.Error(t, err, "foreign key must reject a next match that does not exist")
}

func TestCompleteMatchTx(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	store := NewTournamentStore(database)
	ctx := context.Background()
	_, _, matches := createBracket(t, store, 2)

	final := matches[0]
	require.NoError(t, final.ApplyResult(3, 2, *final.Player1ID))

	withTx(t, database, func(tx *sqlx.Tx) {
		ok, err := store.CompleteMatchTx(ctx, tx, &final)
		require.NoError(t, err)
		assert.True(t, ok)

		// A second completion is refused
		ok, err = store.CompleteMatchTx(ctx, tx, &final)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	fetched, err := store.GetMatch(ctx, final.ID)
	require.NoError(t, err)
	assert.Equal(t, bracket.MatchCompleted, fetched.Status)
	assert.Equal(t, 3, fetched.Score1)
	assert.Equal(t, 2, fetched.Score2)
	assert.Equal(t, *final.Player1ID, *fetched.WinnerID)
}

func TestFillSlotTx(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	store := NewTournamentStore(database)
	ctx := context.Background()
	_, participants, matches := createBracket(t, store, 4)

	final := matches[0]
	require.Nil(t, final.NextMatchID)

	withTx(t, database, func(tx *sqlx.Tx) {
		ok, err := store.FillSlotTx(ctx, tx, final.ID, bracket.Player1Slot, participants[0].ID)
		require.NoError(t, err)
		assert.True(t, ok)

		// Same participant again is fine
		ok, err = store.FillSlotTx(ctx, tx, final.ID, bracket.Player1Slot, participants[0].ID)
		require.NoError(t, err)
		assert.True(t, ok)

		// Somebody else cannot take an occupied slot
		ok, err = store.FillSlotTx(ctx, tx, final.ID, bracket.Player1Slot, participants[1].ID)
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = store.PromoteReadyMatchTx(ctx, tx, final.ID)
		require.NoError(t, err)
		assert.False(t, ok, "one slot filled is not ready")

		ok, err = store.FillSlotTx(ctx, tx, final.ID, bracket.Player2Slot, participants[2].ID)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = store.PromoteReadyMatchTx(ctx, tx, final.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = store.FillSlotTx(ctx, tx, uuid.New(), bracket.Player2Slot, participants[2].ID)
		require.NoError(t, err)
		assert.False(t, ok, "missing match")
	})

	fetched, err := store.GetMatch(ctx, final.ID)
	require.NoError(t, err)
	assert.Equal(t, participants[0].ID, *fetched.Player1ID)
	assert.Equal(t, participants[2].ID, *fetched.Player2ID)
	assert.Equal(t, bracket.MatchInProgress, fetched.Status)
}
