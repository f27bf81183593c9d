package bracket

import (
	"time"

	"github.com/google/uuid"
)

type TournamentStatus string

const (
	TournamentDraft        TournamentStatus = "draft"
	TournamentRegistration TournamentStatus = "registration"
	TournamentInProgress   TournamentStatus = "in_progress"
	TournamentCompleted    TournamentStatus = "completed"
)

type Format string

const (
	SingleElimination Format = "single"
)

type Tournament struct {
	ID              uuid.UUID        `db:"id" json:"id"`
	Name            string           `db:"name" json:"name"`
	Status          TournamentStatus `db:"status" json:"status"`
	Format          Format           `db:"format" json:"format"`
	MaxParticipants *int             `db:"max_participants" json:"max_participants,omitempty"`
	StartDate       *time.Time       `db:"start_date" json:"start_date,omitempty"`
	EndDate         *time.Time       `db:"end_date" json:"end_date,omitempty"`
	CreatedAt       time.Time        `db:"created_at" json:"created_at"`
}

// CanStart reports whether a bracket may still be built for the tournament.
func (t *Tournament) CanStart() bool {
	return t.Status == TournamentDraft || t.Status == TournamentRegistration
}
