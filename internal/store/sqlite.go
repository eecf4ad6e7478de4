package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hy4ri/shopfloor/internal/model"
	"go.uber.org/zap"

	_ "modernc.org/sqlite"
)

const (
	keyProjects    = "projects"
	keyTasksPrefix = "tasks/"
	keyItemsPrefix = "items/"
)

// SQLite stores each list as a JSON value under a fixed key in a local
// key-value table.
type SQLite struct {
	db  *sql.DB
	log *zap.Logger
}

// OpenSQLite opens (and if needed creates) the database at path.
func OpenSQLite(ctx context.Context, path string, log *zap.Logger) (*SQLite, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One connection keeps ":memory:" databases shared and writes ordered.
	db.SetMaxOpenConns(1)

	stmts := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=5000;",
		`CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to prepare %s: %w", path, err)
		}
	}
	return &SQLite{db: db, log: log}, nil
}

func (s *SQLite) get(ctx context.Context, key string) ([]byte, bool, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return []byte(v), true, nil
}

func (s *SQLite) put(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv(key, value, updated_at_unixms) VALUES(?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at_unixms = excluded.updated_at_unixms`,
		key, string(value), time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// Projects implements Store.
func (s *SQLite) Projects(ctx context.Context) ([]model.Project, error) {
	raw, ok, err := s.get(ctx, keyProjects)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []model.Project{}, nil
	}
	var projects []model.Project
	if err := json.Unmarshal(raw, &projects); err != nil {
		return nil, fmt.Errorf("failed to decode projects: %w", err)
	}
	if projects == nil {
		projects = []model.Project{}
	}
	return projects, nil
}

// Project implements Store.
func (s *SQLite) Project(ctx context.Context, id string) (model.Project, error) {
	projects, err := s.Projects(ctx)
	if err != nil {
		return model.Project{}, err
	}
	p, ok := findProject(projects, id)
	if !ok {
		return model.Project{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return p, nil
}

// PutProject implements Store.
func (s *SQLite) PutProject(ctx context.Context, p model.Project) error {
	projects, err := s.Projects(ctx)
	if err != nil {
		return err
	}
	replaced := false
	for i := range projects {
		if projects[i].ID == p.ID {
			projects[i] = p
			replaced = true
		}
	}
	if !replaced {
		projects = append(projects, p)
	}
	raw, err := encodeProjects(projects)
	if err != nil {
		return err
	}
	return s.put(ctx, keyProjects, raw)
}

// Tasks implements Store.
func (s *SQLite) Tasks(ctx context.Context, projectID string) ([]model.Task, error) {
	raw, err := s.list(ctx, keyTasksPrefix, projectID)
	if err != nil {
		return nil, err
	}
	tasks, err := model.DecodeTasks(raw)
	if err != nil {
		s.log.Warn("discarding malformed task list", zap.String("project", projectID), zap.Error(err))
	}
	return tasks, nil
}

// SaveTasks implements Store.
func (s *SQLite) SaveTasks(ctx context.Context, projectID string, tasks []model.Task) error {
	if _, err := s.Project(ctx, projectID); err != nil {
		return err
	}
	raw, err := model.EncodeTasks(tasks)
	if err != nil {
		return err
	}
	return s.put(ctx, keyTasksPrefix+projectID, raw)
}

// Items implements Store.
func (s *SQLite) Items(ctx context.Context, projectID string) ([]model.LineItem, error) {
	raw, err := s.list(ctx, keyItemsPrefix, projectID)
	if err != nil {
		return nil, err
	}
	items, err := model.DecodeItems(raw)
	if err != nil {
		s.log.Warn("discarding malformed item list", zap.String("project", projectID), zap.Error(err))
	}
	return items, nil
}

// SaveItems implements Store.
func (s *SQLite) SaveItems(ctx context.Context, projectID string, items []model.LineItem) error {
	if _, err := s.Project(ctx, projectID); err != nil {
		return err
	}
	raw, err := model.EncodeItems(items)
	if err != nil {
		return err
	}
	return s.put(ctx, keyItemsPrefix+projectID, raw)
}

// Close implements Store.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) list(ctx context.Context, prefix, projectID string) ([]byte, error) {
	if _, err := s.Project(ctx, projectID); err != nil {
		return nil, err
	}
	raw, _, err := s.get(ctx, prefix+projectID)
	return raw, err
}
