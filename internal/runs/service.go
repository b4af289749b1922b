// Package runs drives play and authoring against stored runs. Each call
// loads a run, applies one change and saves it back; calls for the same
// run are serialized.
package runs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/nathoo/dotiam/engine"
	"github.com/nathoo/dotiam/engine/history"
	"github.com/nathoo/dotiam/engine/state"
	"github.com/nathoo/dotiam/engine/world"
	"github.com/nathoo/dotiam/internal/logger"
	"github.com/nathoo/dotiam/internal/storage"
	"github.com/nathoo/dotiam/loader"
	"github.com/nathoo/dotiam/types"
)

type Service struct {
	store  storage.Storage
	logger *slog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewService(store storage.Storage, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger,
		locks:  make(map[string]*sync.Mutex),
	}
}

// lock returns the held mutex for id; callers must Unlock it.
func (s *Service) lock(id string) *sync.Mutex {
	s.mu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	s.mu.Unlock()
	l.Lock()
	return l
}

// Create starts a new run in a copy of w.
func (s *Service) Create(ctx context.Context, playerName string, w *world.World) (string, *types.GameState, error) {
	if w == nil {
		return "", nil, fmt.Errorf("create run: no world")
	}
	id := uuid.New().String()
	gs := state.NewState(playerName, w.Clone())

	if err := s.store.CreateRun(ctx, id, gs); err != nil {
		return "", nil, fmt.Errorf("create run: %w", err)
	}
	logger.WithRunID(s.logger, id).Info("Run created", "player", playerName, "start", gs.Player.Node)
	return id, gs, nil
}

// Load returns the stored state of a run.
func (s *Service) Load(ctx context.Context, id string) (*types.GameState, error) {
	gs, err := s.store.LoadRun(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load run %s: %w", id, err)
	}
	return gs, nil
}

// Command plays one line of input against a run.
func (s *Service) Command(ctx context.Context, id, input string) (types.Result, *types.GameState, error) {
	l := s.lock(id)
	defer l.Unlock()

	gs, err := s.Load(ctx, id)
	if err != nil {
		return types.Result{}, nil, err
	}

	res := engine.New(gs).Step(input)

	if err := s.store.SaveRun(ctx, id, gs); err != nil {
		logger.WithError(logger.WithRunID(s.logger, id), err).Error("Failed to save run after command")
		return types.Result{}, nil, fmt.Errorf("save run %s: %w", id, err)
	}
	logger.WithRunID(s.logger, id).Debug("Command applied",
		"action", string(res.Action.Kind), "turn", gs.Turn, "turned", res.Turned)
	return res, gs, nil
}

// Edit applies an authoring change to a run. An error from fn aborts the
// edit and nothing is saved.
func (s *Service) Edit(ctx context.Context, id string, fn func(*types.GameState) error) (*types.GameState, error) {
	l := s.lock(id)
	defer l.Unlock()

	gs, err := s.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(gs); err != nil {
		return nil, err
	}
	if err := s.store.SaveRun(ctx, id, gs); err != nil {
		return nil, fmt.Errorf("save run %s: %w", id, err)
	}
	logger.WithRunID(s.logger, id).Info("World edited", "history", history.Depth(gs))
	return gs, nil
}

// Undo restores the most recent world snapshot. It reports false when
// there was nothing to undo.
func (s *Service) Undo(ctx context.Context, id string) (bool, error) {
	l := s.lock(id)
	defer l.Unlock()

	gs, err := s.Load(ctx, id)
	if err != nil {
		return false, err
	}
	if !history.Undo(gs) {
		return false, nil
	}
	if err := s.store.SaveRun(ctx, id, gs); err != nil {
		return false, fmt.Errorf("save run %s: %w", id, err)
	}
	logger.WithRunID(s.logger, id).Info("Edit undone", "history", history.Depth(gs))
	return true, nil
}

// Export renders the run's current world as a YAML authoring document.
func (s *Service) Export(ctx context.Context, id string) ([]byte, error) {
	gs, err := s.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	return loader.MarshalDocument(gs.World)
}

func (s *Service) List(ctx context.Context) ([]storage.RunInfo, error) {
	return s.store.ListRuns(ctx)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	l := s.lock(id)
	defer l.Unlock()

	if err := s.store.DeleteRun(ctx, id); err != nil {
		return fmt.Errorf("delete run %s: %w", id, err)
	}
	s.mu.Lock()
	delete(s.locks, id)
	s.mu.Unlock()
	logger.WithRunID(s.logger, id).Info("Run deleted")
	return nil
}
