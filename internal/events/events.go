package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	// Streams
	BracketEventsStream = "BRACKET_EVENTS"

	// Events
	BracketBuilt        = "events.bracket.built"
	MatchCompleted      = "events.bracket.matchCompleted"
	TournamentCompleted = "events.bracket.tournamentCompleted"

	// Event Wildcards
	BracketEventsWildcard = "events.bracket.*"
)

type BracketBuiltEvent struct {
	TournamentID uuid.UUID `json:"tournament_id"`
	Participants int       `json:"participants"`
	Rounds       int       `json:"rounds"`
	Matches      int       `json:"matches"`
	Byes         int       `json:"byes"`
	DoubleByes   int       `json:"double_byes"`
	Timestamp    time.Time `json:"timestamp"`
}

type MatchCompletedEvent struct {
	TournamentID uuid.UUID  `json:"tournament_id"`
	MatchID      uuid.UUID  `json:"match_id"`
	Round        int        `json:"round"`
	MatchOrder   int        `json:"match_order"`
	WinnerID     uuid.UUID  `json:"winner_id"`
	Score1       int        `json:"score1"`
	Score2       int        `json:"score2"`
	NextMatchID  *uuid.UUID `json:"next_match_id,omitempty"`
	Timestamp    time.Time  `json:"timestamp"`
}

type TournamentCompletedEvent struct {
	TournamentID uuid.UUID `json:"tournament_id"`
	ChampionID   uuid.UUID `json:"champion_id"`
	Timestamp    time.Time `json:"timestamp"`
}

// Publisher announces bracket lifecycle changes after they are committed.
type Publisher interface {
	PublishBracketBuilt(ctx context.Context, event BracketBuiltEvent) error
	PublishMatchCompleted(ctx context.Context, event MatchCompletedEvent) error
	PublishTournamentCompleted(ctx context.Context, event TournamentCompletedEvent) error
}

// NopPublisher is used when no NATS server is configured.
type NopPublisher struct{}

func (NopPublisher) PublishBracketBuilt(context.Context, BracketBuiltEvent) error { return nil }

func (NopPublisher) PublishMatchCompleted(context.Context, MatchCompletedEvent) error { return nil }

func (NopPublisher) PublishTournamentCompleted(context.Context, TournamentCompletedEvent) error {
	return nil
}
