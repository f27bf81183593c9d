package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/AdamBeresnev/op-bracket/internal/apperrors"
	"github.com/AdamBeresnev/op-bracket/internal/bracket"
	"github.com/AdamBeresnev/op-bracket/internal/events"
	"github.com/AdamBeresnev/op-bracket/internal/store"
	"github.com/AdamBeresnev/op-bracket/internal/utils"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type TournamentService struct {
	db         *sqlx.DB
	store      *store.TournamentStore
	deps       Deps
	generators map[bracket.Format]bracket.Generator
}

func NewTournamentService(db *sqlx.DB, store *store.TournamentStore, deps Deps) *TournamentService {
	return &TournamentService{
		db:    db,
		store: store,
		deps:  deps.withDefaults(),
		generators: map[bracket.Format]bracket.Generator{
			bracket.SingleElimination: bracket.NewSingleEliminationGenerator(),
		},
	}
}

// RegisterGenerator makes BuildBracket accept tournaments of format.
func (s *TournamentService) RegisterGenerator(format bracket.Format, generator bracket.Generator) {
	s.generators[format] = generator
}

type BuildResult struct {
	TournamentID uuid.UUID `json:"tournament_id"`
	Participants int       `json:"participants"`
	Rounds       int       `json:"rounds"`
	Matches      int       `json:"matches"`
	Byes         int       `json:"byes"`
	DoubleByes   int       `json:"double_byes"`
}

// BuildBracket seeds the registered participants, creates the whole match
// tree with round 1 populated and byes resolved, and starts the tournament.
// Everything happens in one transaction so a failure leaves no rows behind.
func (s *TournamentService) BuildBracket(ctx context.Context, tournamentID uuid.UUID) (*BuildResult, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, apperrors.Internal(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	tournament, err := s.store.GetTournamentTx(ctx, tx, tournamentID)
	if err != nil {
		return nil, notFoundOr(err, TournamentNotFoundError(), "failed to get tournament")
	}
	if !tournament.CanStart() {
		return nil, TournamentAlreadyStartedError()
	}

	generator, ok := s.generators[tournament.Format]
	if !ok {
		return nil, UnsupportedFormatError(tournament.Format)
	}

	participants, err := s.store.GetParticipantsTx(ctx, tx, tournamentID)
	if err != nil {
		return nil, apperrors.Internal(err, "failed to get participants")
	}
	if len(participants) < 2 {
		return nil, InsufficientParticipantsError(len(participants))
	}
	if tournament.MaxParticipants != nil && len(participants) > *tournament.MaxParticipants {
		return nil, CapacityExceededError(len(participants), *tournament.MaxParticipants)
	}

	seeds, err := s.deps.Seeder.Sequence(participants)
	if err != nil {
		return nil, InsufficientParticipantsError(len(participants))
	}

	matches, err := generator.Generate(tournamentID, seeds)
	if err != nil {
		if errors.Is(err, bracket.ErrInsufficientParticipants) {
			return nil, InsufficientParticipantsError(len(participants))
		}
		return nil, apperrors.Internal(err, "failed to generate bracket")
	}

	if err := s.store.CreateMatches(ctx, tx, matches); err != nil {
		return nil, apperrors.Internal(err, "failed to create matches")
	}

	started, err := s.store.StartTournamentTx(ctx, tx, tournamentID, s.deps.Now())
	if err != nil {
		return nil, apperrors.Internal(err, "failed to start tournament")
	}
	if !started {
		return nil, TournamentAlreadyStartedError()
	}

	if err := tx.Commit(); err != nil {
		return nil, apperrors.Internal(err, "failed to commit bracket")
	}

	byes := bracket.CountByes(matches)
	result := &BuildResult{
		TournamentID: tournamentID,
		Participants: len(participants),
		Rounds:       bracket.RoundsCount(len(participants)),
		Matches:      len(matches),
		Byes:         byes.Byes,
		DoubleByes:   byes.DoubleByes,
	}

	s.deps.invalidate(ctx, tournamentID)

	event := events.BracketBuiltEvent{
		TournamentID: tournamentID,
		Participants: result.Participants,
		Rounds:       result.Rounds,
		Matches:      result.Matches,
		Byes:         result.Byes,
		DoubleByes:   result.DoubleByes,
		Timestamp:    s.deps.Now(),
	}
	if err := s.deps.Publisher.PublishBracketBuilt(ctx, event); err != nil {
		s.deps.Log.Error("Failed to publish bracket built event", "tournament_id", tournamentID, "error", err)
	}

	s.deps.Log.Info("Bracket built",
		"tournament_id", tournamentID,
		"participants", result.Participants,
		"rounds", result.Rounds,
		"byes", result.Byes,
		"double_byes", result.DoubleByes,
	)

	return result, nil
}

type BracketView struct {
	Tournament   *bracket.Tournament   `json:"tournament"`
	Participants []bracket.Participant `json:"participants"`
	Rounds       []bracket.Round       `json:"rounds"`
	ChampionID   *uuid.UUID            `json:"champion_id,omitempty"`
}

// GetBracket returns the tournament with its matches grouped by round.
// Snapshots are cached until the next build or report for the tournament. A
// snapshot is only stored if no build or report invalidated the tournament
// while it was being read.
func (s *TournamentService) GetBracket(ctx context.Context, tournamentID uuid.UUID) (*BracketView, error) {
	if data, ok, err := s.deps.Cache.Get(ctx, tournamentID); err != nil {
		s.deps.Log.Warn("Failed to read bracket cache", "tournament_id", tournamentID, "error", err)
	} else if ok {
		var view BracketView
		if err := json.Unmarshal(data, &view); err == nil {
			return &view, nil
		}
		s.deps.Log.Warn("Discarding unreadable bracket snapshot", "tournament_id", tournamentID)
	}

	version, versionErr := s.deps.Cache.Version(ctx, tournamentID)
	if versionErr != nil {
		s.deps.Log.Warn("Failed to read bracket cache version", "tournament_id", tournamentID, "error", versionErr)
	}

	tournament, err := s.store.GetTournament(ctx, tournamentID)
	if err != nil {
		return nil, notFoundOr(err, TournamentNotFoundError(), "failed to get tournament")
	}

	participants, err := s.store.GetParticipants(ctx, tournamentID)
	if err != nil {
		return nil, apperrors.Internal(err, "failed to get participants")
	}

	matches, err := s.store.GetMatches(ctx, tournamentID)
	if err != nil {
		return nil, apperrors.Internal(err, "failed to get matches")
	}

	view := &BracketView{
		Tournament:   tournament,
		Participants: participants,
		Rounds:       bracket.GroupByRound(matches),
		ChampionID:   bracket.Champion(matches),
	}

	if versionErr == nil {
		s.storeSnapshot(ctx, tournamentID, version, view)
	}

	return view, nil
}

func (s *TournamentService) storeSnapshot(ctx context.Context, tournamentID uuid.UUID, version int64, view *BracketView) {
	data, err := json.Marshal(view)
	if err != nil {
		s.deps.Log.Warn("Failed to encode bracket snapshot", "tournament_id", tournamentID, "error", err)
		return
	}

	stored, err := s.deps.Cache.SetIfVersion(ctx, tournamentID, version, data)
	if err != nil {
		s.deps.Log.Warn("Failed to write bracket cache", "tournament_id", tournamentID, "error", err)
		return
	}
	if !stored {
		s.deps.Log.Debug("Skipped outdated bracket snapshot", "tournament_id", tournamentID, "version", version)
	}
}

// CreateTournament registers a tournament with its participants in one go.
// Participant management beyond that is handled elsewhere.
func (s *TournamentService) CreateTournament(ctx context.Context, input CreateTournamentInput) (*bracket.Tournament, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, apperrors.InvalidInput("tournament name is required")
	}
	if input.Format == "" {
		input.Format = bracket.SingleElimination
	}
	if _, ok := s.generators[input.Format]; !ok {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unsupported format %q", input.Format))
	}
	if input.MaxParticipants != nil && *input.MaxParticipants < 2 {
		return nil, apperrors.InvalidInput("max participants must be at least 2")
	}

	tournament := &bracket.Tournament{
		ID:              uuid.New(),
		Name:            input.Name,
		Status:          bracket.TournamentRegistration,
		Format:          input.Format,
		MaxParticipants: input.MaxParticipants,
	}

	seen := make(map[uuid.UUID]bool, len(input.Participants))
	participants := make([]bracket.Participant, 0, len(input.Participants))
	for _, p := range input.Participants {
		if p.UserID == uuid.Nil {
			return nil, apperrors.InvalidInput("participant user_id is required")
		}
		if seen[p.UserID] {
			return nil, apperrors.InvalidInput(fmt.Sprintf("user %s registered twice", p.UserID))
		}
		seen[p.UserID] = true

		participants = append(participants, bracket.Participant{
			ID:           uuid.New(),
			TournamentID: tournament.ID,
			UserID:       p.UserID,
			TeamName:     utils.StringOrNil(utils.OrZero(p.TeamName)),
		})
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, apperrors.Internal(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	if err := s.store.CreateTournament(ctx, tx, tournament); err != nil {
		return nil, apperrors.Internal(err, "failed to create tournament")
	}
	if err := s.store.CreateParticipants(ctx, tx, participants); err != nil {
		return nil, apperrors.Internal(err, "failed to create participants")
	}
	if err := tx.Commit(); err != nil {
		return nil, apperrors.Internal(err, "failed to commit tournament")
	}

	s.deps.Log.Info("Tournament created", "tournament_id", tournament.ID, "participants", len(participants))

	return s.store.GetTournament(ctx, tournament.ID)
}

type ParticipantInput struct {
	UserID   uuid.UUID `json:"user_id"`
	TeamName *string   `json:"team_name,omitempty"`
}

type CreateTournamentInput struct {
	Name            string             `json:"name"`
	Format          bracket.Format     `json:"format"`
	MaxParticipants *int               `json:"max_participants,omitempty"`
	Participants    []ParticipantInput `json:"participants"`
}
