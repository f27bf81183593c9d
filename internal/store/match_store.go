package store

import (
	"context"

	"github.com/AdamBeresnev/op-bracket/internal/bracket"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const (
	createMatchesQuery = `
		INSERT INTO matches (id, tournament_id, round, match_order, player1_id, player2_id, winner_id,
			score1, score2, status, next_match_id, is_bye)
		VALUES (:id, :tournament_id, :round, :match_order, :player1_id, :player2_id, :winner_id,
			:score1, :score2, :status, :next_match_id, :is_bye)
	`
	getMatchQuery   = "SELECT * FROM matches WHERE id = ?"
	getMatchesQuery = "SELECT * FROM matches WHERE tournament_id = ? ORDER BY round ASC, match_order ASC"

	// Only a match that is not yet completed can take a result
	completeMatchQuery = `
		UPDATE matches SET score1 = ?, score2 = ?, winner_id = ?, status = 'completed', updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status != 'completed'
	`

	// Slot writes touch a single column so sibling reports never clobber each other
	fillPlayer1Query = `
		UPDATE matches SET player1_id = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status != 'completed' AND (player1_id IS NULL OR player1_id = ?)
	`
	fillPlayer2Query = `
		UPDATE matches SET player2_id = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status != 'completed' AND (player2_id IS NULL OR player2_id = ?)
	`
	promoteReadyMatchQuery = `
		UPDATE matches SET status = 'in_progress', updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status = 'pending' AND player1_id IS NOT NULL AND player2_id IS NOT NULL
	`
)

// CreateMatches inserts the whole tree in the given order, batching large
// brackets. Callers must pass each match after the one its next_match_id
// references.
func (s *TournamentStore) CreateMatches(ctx context.Context, tx *sqlx.Tx, matches []bracket.Match) error {
	return namedExecBatches(ctx, tx, createMatchesQuery, matches)
}

func (s *TournamentStore) GetMatch(ctx context.Context, id uuid.UUID) (*bracket.Match, error) {
	return getMatch(ctx, s.db, id)
}

func (s *TournamentStore) GetMatchTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*bracket.Match, error) {
	return getMatch(ctx, tx, id)
}

func getMatch(ctx context.Context, q sqlx.QueryerContext, id uuid.UUID) (*bracket.Match, error) {
	var match bracket.Match
	if err := sqlx.GetContext(ctx, q, &match, getMatchQuery, id); err != nil {
		return nil, err
	}
	return &match, nil
}

func (s *TournamentStore) GetMatches(ctx context.Context, tournamentID uuid.UUID) ([]bracket.Match, error) {
	var matches []bracket.Match
	err := s.db.SelectContext(ctx, &matches, getMatchesQuery, tournamentID)
	return matches, err
}

// CompleteMatchTx stores the result of match. It reports false when the row
// was already completed, which means someone else resolved it first.
func (s *TournamentStore) CompleteMatchTx(ctx context.Context, tx *sqlx.Tx, match *bracket.Match) (bool, error) {
	return execAffected(ctx, tx, completeMatchQuery, match.Score1, match.Score2, match.WinnerID, match.ID)
}

// FillSlotTx writes participantID into one slot of matchID. It reports false
// when the match is missing, completed, or holds someone else in that slot.
func (s *TournamentStore) FillSlotTx(ctx context.Context, tx *sqlx.Tx, matchID uuid.UUID, slot bracket.Slot, participantID uuid.UUID) (bool, error) {
	query := fillPlayer1Query
	if slot == bracket.Player2Slot {
		query = fillPlayer2Query
	}
	return execAffected(ctx, tx, query, participantID, matchID, participantID)
}

// PromoteReadyMatchTx flips a pending match to in_progress once both slots
// are filled. It is a no-op otherwise.
func (s *TournamentStore) PromoteReadyMatchTx(ctx context.Context, tx *sqlx.Tx, matchID uuid.UUID) (bool, error) {
	return execAffected(ctx, tx, promoteReadyMatchQuery, matchID)
}
