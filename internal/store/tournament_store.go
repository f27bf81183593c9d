package store

import (
	"context"
	"fmt"
	"time"

	"github.com/AdamBeresnev/op-bracket/internal/bracket"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const (
	createTournamentQuery = `
		INSERT INTO tournaments (id, name, status, format, max_participants)
		VALUES (:id, :name, :status, :format, :max_participants)
	`
	createParticipantsQuery = `
		INSERT INTO participants (id, tournament_id, user_id, team_name)
		VALUES (:id, :tournament_id, :user_id, :team_name)
	`
	getTournamentQuery   = "SELECT * FROM tournaments WHERE id = ?"
	getParticipantsQuery = "SELECT * FROM participants WHERE tournament_id = ? ORDER BY created_at ASC, rowid ASC"
	startTournamentQuery = `
		UPDATE tournaments SET status = 'in_progress', start_date = ?
		WHERE id = ? AND status IN ('draft', 'registration')
	`
	completeTournamentQuery = `
		UPDATE tournaments SET status = 'completed', end_date = ?
		WHERE id = ? AND status = 'in_progress'
	`
)

type TournamentStore struct {
	db *sqlx.DB
}

func NewTournamentStore(db *sqlx.DB) *TournamentStore {
	return &TournamentStore{db: db}
}

func (s *TournamentStore) DB() *sqlx.DB {
	return s.db
}

func (s *TournamentStore) CreateTournament(ctx context.Context, tx *sqlx.Tx, tournament *bracket.Tournament) error {
	_, err := tx.NamedExecContext(ctx, createTournamentQuery, tournament)
	return err
}

func (s *TournamentStore) CreateParticipants(ctx context.Context, tx *sqlx.Tx, participants []bracket.Participant) error {
	return namedExecBatches(ctx, tx, createParticipantsQuery, participants)
}

func (s *TournamentStore) GetTournament(ctx context.Context, id uuid.UUID) (*bracket.Tournament, error) {
	return getTournament(ctx, s.db, id)
}

func (s *TournamentStore) GetTournamentTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*bracket.Tournament, error) {
	return getTournament(ctx, tx, id)
}

func getTournament(ctx context.Context, q sqlx.QueryerContext, id uuid.UUID) (*bracket.Tournament, error) {
	var tournament bracket.Tournament
	if err := sqlx.GetContext(ctx, q, &tournament, getTournamentQuery, id); err != nil {
		return nil, err
	}
	return &tournament, nil
}

// GetParticipants returns participants in registration order.
func (s *TournamentStore) GetParticipants(ctx context.Context, tournamentID uuid.UUID) ([]bracket.Participant, error) {
	return getParticipants(ctx, s.db, tournamentID)
}

func (s *TournamentStore) GetParticipantsTx(ctx context.Context, tx *sqlx.Tx, tournamentID uuid.UUID) ([]bracket.Participant, error) {
	return getParticipants(ctx, tx, tournamentID)
}

func getParticipants(ctx context.Context, q sqlx.QueryerContext, tournamentID uuid.UUID) ([]bracket.Participant, error) {
	var participants []bracket.Participant
	err := sqlx.SelectContext(ctx, q, &participants, getParticipantsQuery, tournamentID)
	return participants, err
}

// StartTournamentTx moves a draft or registration tournament to in_progress.
// It reports false when the tournament was not in a startable state.
func (s *TournamentStore) StartTournamentTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, startDate time.Time) (bool, error) {
	return execAffected(ctx, tx, startTournamentQuery, startDate, id)
}

// CompleteTournamentTx moves an in_progress tournament to completed.
func (s *TournamentStore) CompleteTournamentTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, endDate time.Time) (bool, error) {
	return execAffected(ctx, tx, completeTournamentQuery, endDate, id)
}

func execAffected(ctx context.Context, tx *sqlx.Tx, query string, args ...interface{}) (bool, error) {
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n > 0, nil
}

// SQLite caps a statement at 32766 bound variables. At 12 columns per match
// this keeps every batch well under it.
const insertBatchSize = 1000

// namedExecBatches runs a multi-row named insert over rows in order, at most
// insertBatchSize rows per statement.
func namedExecBatches[T any](ctx context.Context, tx *sqlx.Tx, query string, rows []T) error {
	for start := 0; start < len(rows); start += insertBatchSize {
		end := min(start+insertBatchSize, len(rows))
		if _, err := tx.NamedExecContext(ctx, query, rows[start:end]); err != nil {
			return fmt.Errorf("failed to insert rows %d-%d: %w", start, end-1, err)
		}
	}
	return nil
}

func (s *TournamentStore) GetParticipant(ctx context.Context, id uuid.UUID) (*bracket.Participant, error) {
	var participant bracket.Participant
	if err := s.db.GetContext(ctx, &participant, "SELECT * FROM participants WHERE id = ?", id); err != nil {
		return nil, err
	}
	return &participant, nil
}
