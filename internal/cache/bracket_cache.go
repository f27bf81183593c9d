package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AdamBeresnev/op-bracket/internal/config"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// BracketCache holds serialized bracket snapshots per tournament.
//
// Every Invalidate bumps the tournament's version. A reader takes the version
// before loading from the database and stores its snapshot with SetIfVersion,
// which refuses the write once a newer invalidation has happened.
type BracketCache interface {
	Get(ctx context.Context, tournamentID uuid.UUID) ([]byte, bool, error)
	Version(ctx context.Context, tournamentID uuid.UUID) (int64, error)
	SetIfVersion(ctx context.Context, tournamentID uuid.UUID, version int64, data []byte) (bool, error)
	Invalidate(ctx context.Context, tournamentID uuid.UUID) error
}

func bracketKey(tournamentID uuid.UUID) string {
	return fmt.Sprintf("bracket:tournament:%s", tournamentID)
}

func versionKey(tournamentID uuid.UUID) string {
	return fmt.Sprintf("bracket:version:%s", tournamentID)
}

func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}

type RedisBracketCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisBracketCache(client *redis.Client, ttl time.Duration) *RedisBracketCache {
	return &RedisBracketCache{client: client, ttl: ttl}
}

func (c *RedisBracketCache) Get(ctx context.Context, tournamentID uuid.UUID) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, bracketKey(tournamentID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Version is 0 for a tournament that was never invalidated.
func (c *RedisBracketCache) Version(ctx context.Context, tournamentID uuid.UUID) (int64, error) {
	version, err := c.client.Get(ctx, versionKey(tournamentID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return version, err
}

// SetIfVersion watches the version key so an Invalidate landing between the
// check and the write aborts the transaction.
func (c *RedisBracketCache) SetIfVersion(ctx context.Context, tournamentID uuid.UUID, version int64, data []byte) (bool, error) {
	stored := false
	err := c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, versionKey(tournamentID)).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != version {
			return nil
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, bracketKey(tournamentID), data, c.ttl)
			return nil
		})
		if err == nil {
			stored = true
		}
		return err
	}, versionKey(tournamentID))

	if errors.Is(err, redis.TxFailedErr) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return stored, nil
}

func (c *RedisBracketCache) Invalidate(ctx context.Context, tournamentID uuid.UUID) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, versionKey(tournamentID))
		pipe.Del(ctx, bracketKey(tournamentID))
		return nil
	})
	return err
}

// NopCache never hits. Used when Redis is not configured.
type NopCache struct{}

func (NopCache) Get(context.Context, uuid.UUID) ([]byte, bool, error) { return nil, false, nil }

func (NopCache) Version(context.Context, uuid.UUID) (int64, error) { return 0, nil }

// SetIfVersion accepts every write and drops it.
func (NopCache) SetIfVersion(context.Context, uuid.UUID, int64, []byte) (bool, error) {
	return true, nil
}

func (NopCache) Invalidate(context.Context, uuid.UUID) error { return nil }
