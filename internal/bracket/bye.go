package bracket

import (
	"github.com/AdamBeresnev/op-bracket/internal/utils"
	"github.com/google/uuid"
)

type ByeSummary struct {
	Byes       int
	DoubleByes int
}

// ResolveByes completes every round 1 match that is missing a player and
// moves the lone player forward. matches must hold the whole tree so next
// matches can be found by id.
func ResolveByes(matches []Match) ByeSummary {
	matchMap := make(map[uuid.UUID]*Match, len(matches))
	for i := range matches {
		matchMap[matches[i].ID] = &matches[i]
	}

	var summary ByeSummary
	for i := range matches {
		m := &matches[i]
		if m.Round != 1 || m.PlayerCount() == 2 {
			continue
		}

		var next *Match
		if m.NextMatchID != nil {
			next = matchMap[*m.NextMatchID]
		}

		if ResolveBye(m, next) {
			summary.Byes++
		} else {
			summary.DoubleByes++
		}
	}

	return summary
}

// ResolveBye completes m as a bye. With a single player present that player
// wins 1-0 and is written into next using the slot parity rule. With no
// players the match completes without a winner and nothing moves forward;
// it reports false in that case.
func ResolveBye(m *Match, next *Match) bool {
	m.Status = MatchCompleted
	m.IsBye = true

	var winner *uuid.UUID
	switch {
	case m.Player1ID != nil:
		winner = m.Player1ID
		m.Score1, m.Score2 = 1, 0
	case m.Player2ID != nil:
		winner = m.Player2ID
		m.Score1, m.Score2 = 0, 1
	default:
		return false
	}

	m.WinnerID = utils.Ptr(*winner)

	if next != nil {
		next.SetPlayer(NextSlot(m.MatchOrder), utils.Ptr(*winner))
		if next.ReadyToPlay() {
			next.Status = MatchInProgress
		}
	}

	return true
}

// CountByes tallies already resolved round 1 byes in a built bracket.
func CountByes(matches []Match) ByeSummary {
	var summary ByeSummary
	for _, m := range matches {
		if m.Round != 1 || !m.IsBye {
			continue
		}
		if m.WinnerID != nil {
			summary.Byes++
		} else {
			summary.DoubleByes++
		}
	}
	return summary
}
