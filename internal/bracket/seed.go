package bracket

import (
	"errors"
	"math/rand/v2"
)

var ErrInsufficientParticipants = errors.New("insufficient participants: at least 2 are required")

// SeedSequencer orders participants into bracket slots.
type SeedSequencer struct {
	rng *rand.Rand
}

// NewSeedSequencer uses src for shuffling. A nil source falls back to the
// runtime's random generator.
func NewSeedSequencer(src rand.Source) *SeedSequencer {
	if src == nil {
		return &SeedSequencer{}
	}
	return &SeedSequencer{rng: rand.New(src)}
}

// Sequence returns a uniformly random permutation of participants without
// modifying the input. Position i of the result takes bracket slot i.
func (s *SeedSequencer) Sequence(participants []Participant) ([]Participant, error) {
	if len(participants) < 2 {
		return nil, ErrInsufficientParticipants
	}

	seeds := make([]Participant, len(participants))
	copy(seeds, participants)

	// Fisher-Yates
	for i := len(seeds) - 1; i > 0; i-- {
		j := s.intN(i + 1)
		seeds[i], seeds[j] = seeds[j], seeds[i]
	}

	return seeds, nil
}

func (s *SeedSequencer) intN(n int) int {
	if s.rng == nil {
		return rand.IntN(n)
	}
	return s.rng.IntN(n)
}
