package storage

import (
	"context"
	"sync"

	"github.com/nathoo/dotiam/types"
)

// MemoryStorage keeps runs in process memory. States are stored
// serialized, so callers never share memory with the store.
type MemoryStorage struct {
	mu        sync.RWMutex
	blobs     map[string][]byte
	infos     map[string]RunInfo
	pingError error
}

// Ensure MemoryStorage implements Storage interface
var _ Storage = (*MemoryStorage)(nil)

// NewMemoryStorage creates an empty in-memory store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		blobs: make(map[string][]byte),
		infos: make(map[string]RunInfo),
	}
}

// SetPingError makes Ping fail with err; nil restores success.
func (m *MemoryStorage) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = err
}

func (m *MemoryStorage) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingError
}

func (m *MemoryStorage) Close() error {
	return nil
}

func (m *MemoryStorage) CreateRun(ctx context.Context, id string, gs *types.GameState) error {
	data, err := encodeRun(gs)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.blobs[id]; ok {
		return ErrRunExists
	}
	m.blobs[id] = data
	m.infos[id] = infoFor(id, gs, now())
	return nil
}

func (m *MemoryStorage) LoadRun(ctx context.Context, id string) (*types.GameState, error) {
	m.mu.RLock()
	data, ok := m.blobs[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrRunNotFound
	}
	return decodeRun(data)
}

func (m *MemoryStorage) SaveRun(ctx context.Context, id string, gs *types.GameState) error {
	data, err := encodeRun(gs)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.blobs[id]; !ok {
		return ErrRunNotFound
	}
	m.blobs[id] = data
	m.infos[id] = infoFor(id, gs, now())
	return nil
}

func (m *MemoryStorage) DeleteRun(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.blobs[id]; !ok {
		return ErrRunNotFound
	}
	delete(m.blobs, id)
	delete(m.infos, id)
	return nil
}

func (m *MemoryStorage) ListRuns(ctx context.Context) ([]RunInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	runs := make([]RunInfo, 0, len(m.infos))
	for _, info := range m.infos {
		runs = append(runs, info)
	}
	sortRuns(runs)
	return runs, nil
}
