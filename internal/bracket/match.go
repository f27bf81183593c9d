package bracket

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type MatchStatus string

const (
	MatchPending    MatchStatus = "pending"
	MatchInProgress MatchStatus = "in_progress"
	MatchCompleted  MatchStatus = "completed"
)

var (
	ErrMatchAlreadyCompleted = errors.New("match is already completed")
	ErrWinnerNotInMatch      = errors.New("winner is not part of this match")
	ErrNegativeScore         = errors.New("scores cannot be negative")
)

type Match struct {
	ID           uuid.UUID `db:"id" json:"id"`
	TournamentID uuid.UUID `db:"tournament_id" json:"tournament_id"`

	// Position in the bracket, round 1 is the widest
	Round      int `db:"round" json:"round"`
	MatchOrder int `db:"match_order" json:"match_order"`

	Player1ID *uuid.UUID `db:"player1_id" json:"player1_id"`
	Player2ID *uuid.UUID `db:"player2_id" json:"player2_id"`
	WinnerID  *uuid.UUID `db:"winner_id" json:"winner_id"`

	Score1 int         `db:"score1" json:"score1"`
	Score2 int         `db:"score2" json:"score2"`
	Status MatchStatus `db:"status" json:"status"`

	// Nil only for the final
	NextMatchID *uuid.UUID `db:"next_match_id" json:"next_match_id"`
	IsBye       bool       `db:"is_bye" json:"is_bye"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

func (m *Match) IsFinal() bool {
	return m.NextMatchID == nil
}

func (m *Match) IsCompleted() bool {
	return m.Status == MatchCompleted
}

func (m *Match) Player(slot Slot) *uuid.UUID {
	if slot == Player1Slot {
		return m.Player1ID
	}
	return m.Player2ID
}

func (m *Match) SetPlayer(slot Slot, id *uuid.UUID) {
	if slot == Player1Slot {
		m.Player1ID = id
	} else {
		m.Player2ID = id
	}
}

// SlotOf returns the slot the participant occupies, if any.
func (m *Match) SlotOf(id uuid.UUID) (Slot, bool) {
	if m.Player1ID != nil && *m.Player1ID == id {
		return Player1Slot, true
	}
	if m.Player2ID != nil && *m.Player2ID == id {
		return Player2Slot, true
	}
	return 0, false
}

func (m *Match) PlayerCount() int {
	count := 0
	if m.Player1ID != nil {
		count++
	}
	if m.Player2ID != nil {
		count++
	}
	return count
}

// ApplyResult validates and records a reported result on m. It does not
// touch the next match; advancement is the caller's job.
func (m *Match) ApplyResult(score1, score2 int, winnerID uuid.UUID) error {
	if m.IsCompleted() {
		return ErrMatchAlreadyCompleted
	}
	if score1 < 0 || score2 < 0 {
		return ErrNegativeScore
	}
	if _, ok := m.SlotOf(winnerID); !ok {
		return ErrWinnerNotInMatch
	}

	winner := winnerID
	m.Score1 = score1
	m.Score2 = score2
	m.WinnerID = &winner
	m.Status = MatchCompleted
	return nil
}

// ReadyToPlay reports whether both slots are filled and no result exists yet.
func (m *Match) ReadyToPlay() bool {
	return m.Status == MatchPending && m.Player1ID != nil && m.Player2ID != nil
}
