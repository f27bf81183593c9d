package events

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/AdamBeresnev/op-bracket/internal/config"
	"github.com/AdamBeresnev/op-bracket/internal/logger"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	ctx := context.Background()

	assert.NoError(t, p.PublishBracketBuilt(ctx, BracketBuiltEvent{}))
	assert.NoError(t, p.PublishMatchCompleted(ctx, MatchCompletedEvent{}))
	assert.NoError(t, p.PublishTournamentCompleted(ctx, TournamentCompletedEvent{}))
}

func TestMatchCompletedEvent_JSON(t *testing.T) {
	event := MatchCompletedEvent{
		TournamentID: uuid.New(),
		MatchID:      uuid.New(),
		Round:        2,
		WinnerID:     uuid.New(),
		Score1:       2,
	}

	data, err := json.Marshal(event)
	require.NoError(t, err)

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &fields))
	assert.Equal(t, event.WinnerID.String(), fields["winner_id"])
	assert.NotContains(t, fields, "next_match_id", "final match omits next match")
}

// Needs a JetStream enabled server, e.g. OPBRACKET_TEST_NATS=nats://localhost:4222
func TestJetStreamPublisher_Live(t *testing.T) {
	url := os.Getenv("OPBRACKET_TEST_NATS")
	if url == "" {
		t.Skip("OPBRACKET_TEST_NATS not set")
	}

	ctx := context.Background()
	cfg := config.NATSConfig{URL: url, Stream: "BRACKET_EVENTS_TEST", MaxReconnect: 1, ReconnectWait: time.Second, Timeout: 5 * time.Second}

	publisher, err := Connect(ctx, cfg, logger.Nop())
	require.NoError(t, err)
	defer publisher.Close()

	nc, err := nats.Connect(url)
	require.NoError(t, err)
	defer nc.Close()

	sub, err := nc.SubscribeSync(TournamentCompleted)
	require.NoError(t, err)

	event := TournamentCompletedEvent{TournamentID: uuid.New(), ChampionID: uuid.New(), Timestamp: time.Now().UTC()}
	require.NoError(t, publisher.PublishTournamentCompleted(ctx, event))

	msg, err := sub.NextMsg(5 * time.Second)
	require.NoError(t, err)

	var received TournamentCompletedEvent
	require.NoError(t, json.Unmarshal(msg.Data, &received))
	assert.Equal(t, event.ChampionID, received.ChampionID)
}
