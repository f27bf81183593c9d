package bracket

import (
	"github.com/AdamBeresnev/op-bracket/internal/utils"
	"github.com/google/uuid"
)

// Generator materializes the full match tree for one tournament format.
// Returned matches are in insertion order: every match appears after the
// match its NextMatchID points at.
type Generator interface {
	Generate(tournamentID uuid.UUID, seeds []Participant) ([]Match, error)
}

type SingleEliminationGenerator struct {
	newID func() uuid.UUID
}

func NewSingleEliminationGenerator() *SingleEliminationGenerator {
	return &SingleEliminationGenerator{newID: uuid.New}
}

// Generate bracket structure for single elimination
func (g *SingleEliminationGenerator) Generate(tournamentID uuid.UUID, seeds []Participant) ([]Match, error) {
	if len(seeds) < 2 {
		return nil, ErrInsufficientParticipants
	}

	totalRounds := RoundsCount(len(seeds))
	matches := make([]Match, 0, TotalMatches(len(seeds)))

	var nextRoundMatchIDs []uuid.UUID

	// Significantly easier to start from the last round and work backwards
	for r := totalRounds; r >= 1; r-- {
		matchesInCurrentRound := MatchesInRound(r, totalRounds)
		currentRoundMatchIDs := make([]uuid.UUID, matchesInCurrentRound)

		for i := 0; i < matchesInCurrentRound; i++ {
			m := Match{
				ID:           g.newID(),
				TournamentID: tournamentID,
				Round:        r,
				MatchOrder:   i,
				Status:       MatchPending,
			}

			if r < totalRounds {
				nextID := nextRoundMatchIDs[NextMatchOrder(i)]
				m.NextMatchID = &nextID
			}

			matches = append(matches, m)
			currentRoundMatchIDs[i] = m.ID
		}
		nextRoundMatchIDs = currentRoundMatchIDs
	}

	populateFirstRound(matches, seeds, totalRounds)
	ResolveByes(matches)

	return matches, nil
}

// Round 1 is created last, so it sits at the tail of matches in match order.
func populateFirstRound(matches []Match, seeds []Participant, totalRounds int) {
	round1 := matches[len(matches)-MatchesInRound(1, totalRounds):]

	for i := range round1 {
		m := &round1[i]
		p1, p2 := FeederOrders(m.MatchOrder)

		// Anything past the seed list is a bye slot
		if p1 < len(seeds) {
			m.Player1ID = utils.Ptr(seeds[p1].ID)
		}
		if p2 < len(seeds) {
			m.Player2ID = utils.Ptr(seeds[p2].ID)
		}

		if m.ReadyToPlay() {
			m.Status = MatchInProgress
		}
	}
}
