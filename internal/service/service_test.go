package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/AdamBeresnev/op-bracket/internal/apperrors"
	"github.com/AdamBeresnev/op-bracket/internal/bracket"
	"github.com/AdamBeresnev/op-bracket/internal/db"
	"github.com/AdamBeresnev/op-bracket/internal/events"
	"github.com/AdamBeresnev/op-bracket/internal/store"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates an in-memory SQLite database and applies migrations
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	database, err := db.OpenMemory()
	require.NoError(t, err, "Failed to connect to in-memory DB")
	require.NoError(t, db.RunMigrations(database.DB), "Failed to apply migrations")

	t.Cleanup(func() { database.Close() })
	return database
}

type testEnv struct {
	store       *store.TournamentStore
	tournaments *TournamentService
	matches     *MatchService
	publisher   *recordingPublisher
	cache       *memoryCache
}

func newTestEnv(t *testing.T, database *sqlx.DB) *testEnv {
	t.Helper()

	tournamentStore := store.NewTournamentStore(database)
	env := &testEnv{
		store:     tournamentStore,
		publisher: &recordingPublisher{},
		cache:     newMemoryCache(),
	}
	deps := Deps{Cache: env.cache, Publisher: env.publisher}
	env.tournaments = NewTournamentService(database, tournamentStore, deps)
	env.matches = NewMatchService(database, tournamentStore, deps)

	return env
}

func (e *testEnv) createTournament(t *testing.T, participantCount int) *bracket.Tournament {
	t.Helper()

	input := CreateTournamentInput{Name: "Test Tournament"}
	for i := 0; i < participantCount; i++ {
		input.Participants = append(input.Participants, ParticipantInput{UserID: uuid.New()})
	}

	tournament, err := e.tournaments.CreateTournament(context.Background(), input)
	require.NoError(t, err)
	return tournament
}

func (e *testEnv) buildBracket(t *testing.T, participantCount int) (*bracket.Tournament, map[position]*bracket.Match) {
	t.Helper()

	tournament := e.createTournament(t, participantCount)
	_, err := e.tournaments.BuildBracket(context.Background(), tournament.ID)
	require.NoError(t, err)

	return tournament, e.positions(t, tournament.ID)
}

type position struct {
	round int
	order int
}

func (e *testEnv) positions(t *testing.T, tournamentID uuid.UUID) map[position]*bracket.Match {
	t.Helper()

	matches, err := e.store.GetMatches(context.Background(), tournamentID)
	require.NoError(t, err)

	out := make(map[position]*bracket.Match, len(matches))
	for i := range matches {
		out[position{matches[i].Round, matches[i].MatchOrder}] = &matches[i]
	}
	return out
}

func (e *testEnv) match(t *testing.T, id uuid.UUID) *bracket.Match {
	t.Helper()

	m, err := e.store.GetMatch(context.Background(), id)
	require.NoError(t, err)
	return m
}

// requireCode asserts err is an AppError carrying code.
func requireCode(t *testing.T, err error, code apperrors.ErrorCode) {
	t.Helper()

	require.Error(t, err)
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr), "expected an AppError, got %v", err)
	require.Equal(t, code, appErr.Code, appErr.Error())
}

type recordingPublisher struct {
	mu        sync.Mutex
	built     []events.BracketBuiltEvent
	completed []events.MatchCompletedEvent
	finished  []events.TournamentCompletedEvent
	err       error
}

func (p *recordingPublisher) PublishBracketBuilt(_ context.Context, event events.BracketBuiltEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.built = append(p.built, event)
	return p.err
}

func (p *recordingPublisher) PublishMatchCompleted(_ context.Context, event events.MatchCompletedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.completed = append(p.completed, event)
	return p.err
}

func (p *recordingPublisher) PublishTournamentCompleted(_ context.Context, event events.TournamentCompletedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.finished = append(p.finished, event)
	return p.err
}

type memoryCache struct {
	mu            sync.Mutex
	data          map[uuid.UUID][]byte
	versions      map[uuid.UUID]int64
	hits          int
	invalidations int

	// beforeSet runs at the start of SetIfVersion, outside the lock
	beforeSet func()
}

func newMemoryCache() *memoryCache {
	return &memoryCache{
		data:     make(map[uuid.UUID][]byte),
		versions: make(map[uuid.UUID]int64),
	}
}

func (c *memoryCache) Get(_ context.Context, id uuid.UUID) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.data[id]
	if ok {
		c.hits++
	}
	return data, ok, nil
}

func (c *memoryCache) Version(_ context.Context, id uuid.UUID) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.versions[id], nil
}

func (c *memoryCache) SetIfVersion(_ context.Context, id uuid.UUID, version int64, data []byte) (bool, error) {
	if hook := c.beforeSet; hook != nil {
		c.beforeSet = nil
		hook()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.versions[id] != version {
		return false, nil
	}
	c.data[id] = data
	return true, nil
}

func (c *memoryCache) Invalidate(_ context.Context, id uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, id)
	c.versions[id]++
	c.invalidations++
	return nil
}
