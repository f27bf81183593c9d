package bracket

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupByRound(t *testing.T) {
	matches, err := NewSingleEliminationGenerator().Generate(uuid.New(), makeParticipants(8))
	require.NoError(t, err)

	rounds := GroupByRound(matches)
	require.Len(t, rounds, 3)

	for i, r := range rounds {
		assert.Equal(t, i+1, r.Number)
		assert.Len(t, r.Matches, MatchesInRound(r.Number, 3))
		for order, m := range r.Matches {
			assert.Equal(t, order, m.MatchOrder)
		}
	}
}

func TestChampion(t *testing.T) {
	matches, err := NewSingleEliminationGenerator().Generate(uuid.New(), makeParticipants(2))
	require.NoError(t, err)
	assert.Nil(t, Champion(matches))

	final := &matches[0]
	require.NoError(t, final.ApplyResult(2, 1, *final.Player1ID))
	require.NotNil(t, Champion(matches))
	assert.Equal(t, *final.Player1ID, *Champion(matches))
}
