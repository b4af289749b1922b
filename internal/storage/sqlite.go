package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/nathoo/dotiam/types"
)

// SQLiteStorage keeps runs in a single game_runs table.
type SQLiteStorage struct {
	db     *sql.DB
	logger *slog.Logger
}

// Ensure SQLiteStorage implements Storage interface
var _ Storage = (*SQLiteStorage)(nil)

// NewSQLiteStorage opens or creates the database at path.
func NewSQLiteStorage(path string, logger *slog.Logger) (*SQLiteStorage, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStorage{db: db, logger: logger}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS game_runs (
			id TEXT PRIMARY KEY,
			player_name TEXT NOT NULL,
			state_json TEXT NOT NULL,
			turn INTEGER NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS game_runs_turn ON game_runs (turn DESC, id);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStorage) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite ping failed: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func (s *SQLiteStorage) CreateRun(ctx context.Context, id string, gs *types.GameState) error {
	data, err := encodeRun(gs)
	if err != nil {
		return err
	}
	ts := now().Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO game_runs (id, player_name, state_json, turn, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?) ON CONFLICT(id) DO NOTHING`,
		id, gs.Player.Name, string(data), gs.Turn, ts, ts)
	if err != nil {
		s.logger.Error("Failed to create run", "run_id", id, "error", err)
		return fmt.Errorf("failed to create run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrRunExists
	}
	return nil
}

func (s *SQLiteStorage) LoadRun(ctx context.Context, id string) (*types.GameState, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT state_json FROM game_runs WHERE id = ?`, id).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRunNotFound
		}
		s.logger.Error("Failed to load run", "run_id", id, "error", err)
		return nil, fmt.Errorf("failed to load run: %w", err)
	}
	return decodeRun([]byte(data))
}

func (s *SQLiteStorage) SaveRun(ctx context.Context, id string, gs *types.GameState) error {
	data, err := encodeRun(gs)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE game_runs SET player_name = ?, state_json = ?, turn = ?, updated_at = ? WHERE id = ?`,
		gs.Player.Name, string(data), gs.Turn, now().Format(time.RFC3339Nano), id)
	if err != nil {
		s.logger.Error("Failed to save run", "run_id", id, "error", err)
		return fmt.Errorf("failed to save run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrRunNotFound
	}
	return nil
}

func (s *SQLiteStorage) DeleteRun(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM game_runs WHERE id = ?`, id)
	if err != nil {
		s.logger.Error("Failed to delete run", "run_id", id, "error", err)
		return fmt.Errorf("failed to delete run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrRunNotFound
	}
	return nil
}

func (s *SQLiteStorage) ListRuns(ctx context.Context) ([]RunInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, player_name, turn, updated_at FROM game_runs ORDER BY turn DESC, id ASC`)
	if err != nil {
		s.logger.Error("Failed to list runs", "error", err)
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunInfo
	for rows.Next() {
		var (
			info    RunInfo
			updated string
		)
		if err := rows.Scan(&info.ID, &info.PlayerName, &info.Turn, &updated); err != nil {
			return nil, fmt.Errorf("failed to list runs: %w", err)
		}
		info.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
		runs = append(runs, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}
