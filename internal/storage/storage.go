// Package storage persists runs: one serialized game state per run id.
package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/nathoo/dotiam/engine/save"
	"github.com/nathoo/dotiam/internal/config"
	"github.com/nathoo/dotiam/types"
)

var (
	ErrRunNotFound = errors.New("run not found")
	ErrRunExists   = errors.New("run already exists")
)

// RunInfo is the listing entry for a stored run.
type RunInfo struct {
	ID         string    `json:"id"`
	PlayerName string    `json:"player_name"`
	Turn       int       `json:"turn"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Storage is implemented by every run store.
type Storage interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	// Run operations
	CreateRun(ctx context.Context, id string, gs *types.GameState) error
	LoadRun(ctx context.Context, id string) (*types.GameState, error)
	SaveRun(ctx context.Context, id string, gs *types.GameState) error
	DeleteRun(ctx context.Context, id string) error
	ListRuns(ctx context.Context) ([]RunInfo, error)
}

// Open creates the store selected by the configuration.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Storage, error) {
	switch cfg.Store {
	case config.StoreMemory, "":
		return NewMemoryStorage(), nil
	case config.StoreRedis:
		s, err := NewRedisStorage(cfg.RedisURL, cfg.RunTTL, logger)
		if err != nil {
			return nil, err
		}
		if err := s.WaitForConnection(ctx); err != nil {
			_ = s.Close()
			return nil, err
		}
		return s, nil
	case config.StoreSQLite:
		return NewSQLiteStorage(cfg.DBPath, logger)
	case config.StoreBolt:
		return NewBoltStorage(cfg.DBPath, logger)
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}

func encodeRun(gs *types.GameState) ([]byte, error) {
	data, err := save.Save(gs)
	if err != nil {
		return nil, fmt.Errorf("failed to encode run: %w", err)
	}
	return data, nil
}

func decodeRun(data []byte) (*types.GameState, error) {
	gs, err := save.Load(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode run: %w", err)
	}
	return gs, nil
}

func infoFor(id string, gs *types.GameState, now time.Time) RunInfo {
	return RunInfo{
		ID:         id,
		PlayerName: gs.Player.Name,
		Turn:       gs.Turn,
		UpdatedAt:  now,
	}
}

// sortRuns orders runs by turn, highest first, then by id.
func sortRuns(runs []RunInfo) {
	sort.Slice(runs, func(i, j int) bool {
		if runs[i].Turn != runs[j].Turn {
			return runs[i].Turn > runs[j].Turn
		}
		return runs[i].ID < runs[j].ID
	})
}

func now() time.Time {
	return time.Now().UTC()
}
