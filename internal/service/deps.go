package service

import (
	"context"
	"time"

	"github.com/AdamBeresnev/op-bracket/internal/bracket"
	"github.com/AdamBeresnev/op-bracket/internal/cache"
	"github.com/AdamBeresnev/op-bracket/internal/events"
	"github.com/AdamBeresnev/op-bracket/internal/logger"
	"github.com/google/uuid"
)

// Deps carries the collaborators shared by the services. Zero values are
// replaced with no-op implementations.
type Deps struct {
	Log       *logger.Logger
	Cache     cache.BracketCache
	Publisher events.Publisher
	Seeder    *bracket.SeedSequencer
	Now       func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	if d.Cache == nil {
		d.Cache = cache.NopCache{}
	}
	if d.Publisher == nil {
		d.Publisher = events.NopPublisher{}
	}
	if d.Seeder == nil {
		d.Seeder = bracket.NewSeedSequencer(nil)
	}
	if d.Now == nil {
		d.Now = func() time.Time { return time.Now().UTC() }
	}
	return d
}

// invalidate drops the cached bracket snapshot. A failure only costs a stale
// read until the TTL expires, so it is logged and swallowed.
func (d Deps) invalidate(ctx context.Context, tournamentID uuid.UUID) {
	if err := d.Cache.Invalidate(ctx, tournamentID); err != nil {
		d.Log.Warn("Failed to invalidate bracket cache", "tournament_id", tournamentID, "error", err)
	}
}
