package bracket

import "math/bits"

type Slot int

const (
	Player1Slot Slot = 1
	Player2Slot Slot = 2
)

// RoundsCount is ceil(log2(n)), so 5 participants need 3 rounds.
// Anything below 2 participants has no bracket and yields 0.
func RoundsCount(n int) int {
	if n < 2 {
		return 0
	}
	return bits.Len(uint(n - 1))
}

// Gets the nearest power of 2 while rounding up, so with input 5 it returns 8 and so on
func BracketSize(n int) int {
	if n < 2 {
		return 0
	}
	return 1 << RoundsCount(n)
}

// MatchesInRound halves every round, the final round has exactly one match.
func MatchesInRound(round, roundsCount int) int {
	if round < 1 || round > roundsCount {
		return 0
	}
	return 1 << (roundsCount - round)
}

func TotalMatches(n int) int {
	return BracketSize(n) - 1
}

// NextMatchOrder is the matchOrder in round r+1 that match m of round r feeds.
func NextMatchOrder(matchOrder int) int {
	return matchOrder / 2
}

// NextSlot is the slot parity rule: even orders land in player1, odd in player2.
// Bracket construction and result advancement must both go through here.
func NextSlot(matchOrder int) Slot {
	if matchOrder%2 == 0 {
		return Player1Slot
	}
	return Player2Slot
}

// FeederOrders returns the two round r-1 matchOrders feeding matchOrder.
func FeederOrders(matchOrder int) (int, int) {
	return 2 * matchOrder, 2*matchOrder + 1
}

// SlotUnreachable reports whether no participant can ever arrive in slot of
// the match at (round, matchOrder). Seeds fill bracket positions from 0, so
// a slot is dead when the first seed position under its feeder subtree is
// past the participant count. Such slots sit behind double byes.
func SlotUnreachable(round, matchOrder int, slot Slot, participantCount int) bool {
	feeder := 2 * matchOrder
	if slot == Player2Slot {
		feeder++
	}
	return feeder<<(round-1) >= participantCount
}
