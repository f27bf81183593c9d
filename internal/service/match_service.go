package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/AdamBeresnev/op-bracket/internal/apperrors"
	"github.com/AdamBeresnev/op-bracket/internal/bracket"
	"github.com/AdamBeresnev/op-bracket/internal/events"
	"github.com/AdamBeresnev/op-bracket/internal/store"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type MatchService struct {
	db    *sqlx.DB
	store *store.TournamentStore
	deps  Deps
}

func NewMatchService(db *sqlx.DB, store *store.TournamentStore, deps Deps) *MatchService {
	return &MatchService{db: db, store: store, deps: deps.withDefaults()}
}

type MatchData struct {
	Match   *bracket.Match       `json:"match"`
	Player1 *bracket.Participant `json:"player1,omitempty"`
	Player2 *bracket.Participant `json:"player2,omitempty"`
}

func (s *MatchService) GetMatch(ctx context.Context, matchID uuid.UUID) (*MatchData, error) {
	match, err := s.store.GetMatch(ctx, matchID)
	if err != nil {
		return nil, notFoundOr(err, MatchNotFoundError(), "failed to get match")
	}

	data := &MatchData{Match: match}
	if match.Player1ID != nil {
		p, err := s.store.GetParticipant(ctx, *match.Player1ID)
		if err != nil {
			return nil, apperrors.Internal(err, "failed to get player 1")
		}
		data.Player1 = p
	}
	if match.Player2ID != nil {
		p, err := s.store.GetParticipant(ctx, *match.Player2ID)
		if err != nil {
			return nil, apperrors.Internal(err, "failed to get player 2")
		}
		data.Player2 = p
	}

	return data, nil
}

type ReportInput struct {
	MatchID  uuid.UUID `json:"-"`
	Score1   int       `json:"score1"`
	Score2   int       `json:"score2"`
	WinnerID uuid.UUID `json:"winner_id"`
}

type ReportOutcome struct {
	Match               *bracket.Match `json:"match"`
	NextMatchID         *uuid.UUID     `json:"next_match_id,omitempty"`
	TournamentCompleted bool           `json:"tournament_completed"`
}

// ReportResult records the score of a match and moves the winner forward.
// The winner lands in player1 of the next match when the reported match has
// an even match order and in player2 otherwise. Reporting the final
// completes the tournament.
func (s *MatchService) ReportResult(ctx context.Context, input ReportInput) (*ReportOutcome, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, apperrors.Internal(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	match, err := s.store.GetMatchTx(ctx, tx, input.MatchID)
	if err != nil {
		return nil, notFoundOr(err, MatchNotFoundError(), "failed to get match")
	}

	tournament, err := s.store.GetTournamentTx(ctx, tx, match.TournamentID)
	if err != nil {
		return nil, notFoundOr(err, TournamentNotFoundError(), "failed to get tournament")
	}

	if err := match.ApplyResult(input.Score1, input.Score2, input.WinnerID); err != nil {
		return nil, resultError(err)
	}
	if tournament.Status != bracket.TournamentInProgress {
		return nil, TournamentNotInProgressError(tournament.Status)
	}
	if err := s.checkOpponent(ctx, tx, match); err != nil {
		return nil, err
	}

	completed, err := s.store.CompleteMatchTx(ctx, tx, match)
	if err != nil {
		return nil, apperrors.Internal(err, "failed to complete match")
	}
	if !completed {
		return nil, apperrors.Conflict("match was resolved concurrently")
	}

	outcome := &ReportOutcome{Match: match}

	if match.NextMatchID != nil {
		if err := s.advance(ctx, tx, match); err != nil {
			return nil, err
		}
		outcome.NextMatchID = match.NextMatchID
	} else {
		done, err := s.store.CompleteTournamentTx(ctx, tx, match.TournamentID, s.deps.Now())
		if err != nil {
			return nil, apperrors.Internal(err, "failed to complete tournament")
		}
		if !done {
			return nil, apperrors.Conflict("tournament was completed concurrently")
		}
		outcome.TournamentCompleted = true
	}

	if err := tx.Commit(); err != nil {
		return nil, apperrors.Internal(err, "failed to commit result")
	}

	s.afterReport(ctx, outcome)

	return outcome, nil
}

// checkOpponent refuses a match with a single player unless the empty slot
// can never be filled. Those walkovers are how a player behind a double bye
// keeps moving.
func (s *MatchService) checkOpponent(ctx context.Context, tx *sqlx.Tx, match *bracket.Match) error {
	if match.PlayerCount() == 2 {
		return nil
	}

	participants, err := s.store.GetParticipantsTx(ctx, tx, match.TournamentID)
	if err != nil {
		return apperrors.Internal(err, "failed to get participants")
	}

	empty := bracket.Player1Slot
	if match.Player1ID != nil {
		empty = bracket.Player2Slot
	}
	if !bracket.SlotUnreachable(match.Round, match.MatchOrder, empty, len(participants)) {
		return OpponentPendingError()
	}
	return nil
}

// advance writes the winner of match into its slot of the next match and
// starts the next match once both of its players are known.
func (s *MatchService) advance(ctx context.Context, tx *sqlx.Tx, match *bracket.Match) error {
	nextID := *match.NextMatchID
	slot := bracket.NextSlot(match.MatchOrder)

	filled, err := s.store.FillSlotTx(ctx, tx, nextID, slot, *match.WinnerID)
	if err != nil {
		return apperrors.Internal(err, "failed to advance winner")
	}
	if !filled {
		if _, err := s.store.GetMatchTx(ctx, tx, nextID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return NextMatchNotFoundError()
			}
			return apperrors.Internal(err, "failed to get next match")
		}
		return NextSlotTakenError()
	}

	if _, err := s.store.PromoteReadyMatchTx(ctx, tx, nextID); err != nil {
		return apperrors.Internal(err, "failed to start next match")
	}
	return nil
}

func (s *MatchService) afterReport(ctx context.Context, outcome *ReportOutcome) {
	match := outcome.Match
	s.deps.invalidate(ctx, match.TournamentID)

	now := s.deps.Now()
	matchEvent := events.MatchCompletedEvent{
		TournamentID: match.TournamentID,
		MatchID:      match.ID,
		Round:        match.Round,
		MatchOrder:   match.MatchOrder,
		WinnerID:     *match.WinnerID,
		Score1:       match.Score1,
		Score2:       match.Score2,
		NextMatchID:  match.NextMatchID,
		Timestamp:    now,
	}
	if err := s.deps.Publisher.PublishMatchCompleted(ctx, matchEvent); err != nil {
		s.deps.Log.Error("Failed to publish match completed event", "match_id", match.ID, "error", err)
	}

	s.deps.Log.Info("Match result reported",
		"tournament_id", match.TournamentID,
		"match_id", match.ID,
		"round", match.Round,
		"match_order", match.MatchOrder,
		"winner_id", *match.WinnerID,
	)

	if !outcome.TournamentCompleted {
		return
	}

	tournamentEvent := events.TournamentCompletedEvent{
		TournamentID: match.TournamentID,
		ChampionID:   *match.WinnerID,
		Timestamp:    now,
	}
	if err := s.deps.Publisher.PublishTournamentCompleted(ctx, tournamentEvent); err != nil {
		s.deps.Log.Error("Failed to publish tournament completed event", "tournament_id", match.TournamentID, "error", err)
	}

	s.deps.Log.Info("Tournament completed", "tournament_id", match.TournamentID, "champion_id", *match.WinnerID)
}
