package bracket

import (
	"sort"

	"github.com/AdamBeresnev/op-bracket/internal/utils"
	"github.com/google/uuid"
)

type Round struct {
	Number  int     `json:"number"`
	Matches []Match `json:"matches"`
}

// GroupByRound buckets matches per round, rounds ascending and matches in
// match order, for rendering the tree left to right.
func GroupByRound(matches []Match) []Round {
	rounds := make(map[int][]Match)
	var roundNums []int

	for _, m := range matches {
		if _, exists := rounds[m.Round]; !exists {
			roundNums = append(roundNums, m.Round)
		}
		rounds[m.Round] = append(rounds[m.Round], m)
	}

	sort.Ints(roundNums)

	out := make([]Round, 0, len(roundNums))
	for _, r := range roundNums {
		ms := rounds[r]
		sort.Slice(ms, func(i, j int) bool {
			return ms[i].MatchOrder < ms[j].MatchOrder
		})
		out = append(out, Round{Number: r, Matches: ms})
	}

	return out
}

// Champion is the winner of the final, nil until it has been decided.
func Champion(matches []Match) *uuid.UUID {
	for _, m := range matches {
		if m.IsFinal() && m.WinnerID != nil {
			return utils.Ptr(*m.WinnerID)
		}
	}
	return nil
}
