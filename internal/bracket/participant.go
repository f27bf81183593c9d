package bracket

import (
	"time"

	"github.com/google/uuid"
)

type Participant struct {
	ID           uuid.UUID `db:"id" json:"id"`
	TournamentID uuid.UUID `db:"tournament_id" json:"tournament_id"`
	UserID       uuid.UUID `db:"user_id" json:"user_id"`
	TeamName     *string   `db:"team_name" json:"team_name,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
