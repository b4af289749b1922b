package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/nathoo/dotiam/types"
	"github.com/redis/go-redis/v9"
)

const runsIndexKey = "runs"

func runKey(id string) string  { return "run:" + id }
func metaKey(id string) string { return "run:" + id + ":meta" }

// RedisStorage keeps each run as a JSON blob, a metadata hash, and an
// entry in a sorted set scored by turn.
type RedisStorage struct {
	client *redis.Client
	logger *slog.Logger
	ttl    time.Duration
}

// Ensure RedisStorage implements Storage interface
var _ Storage = (*RedisStorage)(nil)

// NewRedisStorage creates a new Redis storage instance. A zero ttl keeps
// runs forever.
func NewRedisStorage(redisURL string, ttl time.Duration, logger *slog.Logger) (*RedisStorage, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	return &RedisStorage{
		client: redis.NewClient(opt),
		logger: logger,
		ttl:    ttl,
	}, nil
}

// Health and lifecycle methods

func (r *RedisStorage) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// WaitForConnection waits for Redis to become available (used during startup)
func (r *RedisStorage) WaitForConnection(ctx context.Context) error {
	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		if err := r.Ping(ctx); err != nil {
			r.logger.Debug("Redis not ready yet", "error", err, "attempt", i+1)

			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
			case <-time.After(retryDelay):
				continue
			}
		}

		r.logger.Info("Redis connection established")
		return nil
	}

	return fmt.Errorf("redis did not become available after %d attempts", maxRetries)
}

// Run operations

func (r *RedisStorage) CreateRun(ctx context.Context, id string, gs *types.GameState) error {
	return r.put(ctx, id, gs, true)
}

func (r *RedisStorage) LoadRun(ctx context.Context, id string) (*types.GameState, error) {
	data, err := r.client.Get(ctx, runKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrRunNotFound
		}
		r.logger.Error("Failed to load run", "run_id", id, "error", err)
		return nil, fmt.Errorf("failed to load run: %w", err)
	}
	return decodeRun(data)
}

func (r *RedisStorage) SaveRun(ctx context.Context, id string, gs *types.GameState) error {
	return r.put(ctx, id, gs, false)
}

// maxWatchRetries bounds how often put retries after another client
// touched the run key between WATCH and EXEC.
const maxWatchRetries = 10

// put writes a run under WATCH so the existence check and the write are
// one atomic step. create demands the run be absent, otherwise present.
func (r *RedisStorage) put(ctx context.Context, id string, gs *types.GameState, create bool) error {
	data, err := encodeRun(gs)
	if err != nil {
		return err
	}
	info := infoFor(id, gs, now())

	txf := func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, runKey(id)).Result()
		if err != nil {
			return err
		}
		switch {
		case create && n > 0:
			return ErrRunExists
		case !create && n == 0:
			return ErrRunNotFound
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, runKey(id), data, r.ttl)
			pipe.HSet(ctx, metaKey(id),
				"player_name", info.PlayerName,
				"turn", info.Turn,
				"updated_at", info.UpdatedAt.Format(time.RFC3339Nano),
			)
			if r.ttl > 0 {
				pipe.Expire(ctx, metaKey(id), r.ttl)
			}
			pipe.ZAdd(ctx, runsIndexKey, redis.Z{Score: float64(info.Turn), Member: id})
			return nil
		})
		return err
	}

	for i := 0; i < maxWatchRetries; i++ {
		err = r.client.Watch(ctx, txf, runKey(id))
		switch {
		case err == nil:
			return nil
		case errors.Is(err, ErrRunExists), errors.Is(err, ErrRunNotFound):
			return err
		case errors.Is(err, redis.TxFailedErr):
			r.logger.Debug("Run changed during save, retrying", "run_id", id, "attempt", i+1)
			continue
		}
		r.logger.Error("Failed to save run", "run_id", id, "error", err)
		return fmt.Errorf("failed to save run: %w", err)
	}
	return fmt.Errorf("failed to save run %s: too much contention", id)
}

func (r *RedisStorage) DeleteRun(ctx context.Context, id string) error {
	var del *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, runKey(id))
		pipe.Del(ctx, metaKey(id))
		pipe.ZRem(ctx, runsIndexKey, id)
		return nil
	})
	if err != nil {
		r.logger.Error("Failed to delete run", "run_id", id, "error", err)
		return fmt.Errorf("failed to delete run: %w", err)
	}
	if del.Val() == 0 {
		return ErrRunNotFound
	}
	return nil
}

func (r *RedisStorage) ListRuns(ctx context.Context) ([]RunInfo, error) {
	ids, err := r.client.ZRevRange(ctx, runsIndexKey, 0, -1).Result()
	if err != nil {
		r.logger.Error("Failed to list runs", "error", err)
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	runs := make([]RunInfo, 0, len(ids))
	for _, id := range ids {
		meta, err := r.client.HGetAll(ctx, metaKey(id)).Result()
		if err != nil {
			r.logger.Error("Failed to load run metadata", "run_id", id, "error", err)
			return nil, fmt.Errorf("failed to list runs: %w", err)
		}
		if len(meta) == 0 {
			// Expired run; drop the stale index entry.
			r.client.ZRem(ctx, runsIndexKey, id)
			continue
		}
		turn, _ := strconv.Atoi(meta["turn"])
		updated, _ := time.Parse(time.RFC3339Nano, meta["updated_at"])
		runs = append(runs, RunInfo{
			ID:         id,
			PlayerName: meta["player_name"],
			Turn:       turn,
			UpdatedAt:  updated,
		})
	}
	sortRuns(runs)
	return runs, nil
}
