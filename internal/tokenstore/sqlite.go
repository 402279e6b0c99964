package tokenstore

import (
	"context"
	"fmt"

	"github.com/jask/taskpad/internal/database"
	"github.com/jask/taskpad/internal/database/repository"
)

// SQLite keeps the token in the local kv table.
type SQLite struct {
	repo *repository.KVRepo
	key  string
}

func NewSQLite(repo *repository.KVRepo, key string) *SQLite {
	return &SQLite{repo: repo, key: key}
}

func (s *SQLite) Get(ctx context.Context) (string, bool, error) {
	e, err := s.repo.Get(ctx, s.key)
	if err != nil {
		return "", false, fmt.Errorf("sqlite get %s: %w", s.key, err)
	}
	if e == nil || e.Value == "" {
		return "", false, nil
	}
	return e.Value, true, nil
}

func (s *SQLite) Set(ctx context.Context, value string) error {
	if value == "" {
		return ErrEmptyValue
	}
	if err := s.repo.Put(ctx, s.key, value, database.Now()); err != nil {
		return fmt.Errorf("sqlite set %s: %w", s.key, err)
	}
	return nil
}

func (s *SQLite) Remove(ctx context.Context) error {
	if err := s.repo.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("sqlite remove %s: %w", s.key, err)
	}
	return nil
}
