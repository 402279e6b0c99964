package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/taskpad/internal/database"
	"github.com/jask/taskpad/internal/database/repository"
)

func TestResetWipesKV(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	db, err := database.OpenMigrated(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	kv := repository.NewKVRepo(db)
	require.NoError(t, kv.Put(ctx, "auth_token", "abc", database.Now()))
	require.NoError(t, kv.Put(ctx, "other", "x", database.Now()))

	svc := &MaintenanceService{DB: db}
	removed, err := svc.Reset(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, removed)

	n, err := kv.Count(ctx)
	require.NoError(t, err)
	require.Zero(t, n)

	// schema survives
	require.NoError(t, kv.Put(ctx, "auth_token", "def", database.Now()))
}

func TestResetWithoutDB(t *testing.T) {
	_, err := (&MaintenanceService{}).Reset(context.Background())
	require.Error(t, err)
}
