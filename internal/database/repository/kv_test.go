package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/taskpad/internal/database"
)

func TestKVRepoPutGetDelete(t *testing.T) {
	ctx := context.Background()
	db, err := database.OpenMigrated(filepath.Join(t.TempDir(), "kv.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	repo := NewKVRepo(db)

	got, err := repo.Get(ctx, "token")
	require.NoError(t, err)
	require.Nil(t, got)

	at := database.Now()
	require.NoError(t, repo.Put(ctx, "token", "first", at))
	require.NoError(t, repo.Put(ctx, "token", "second", at.Add(time.Second)))

	got, err = repo.Get(ctx, "token")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "second", got.Value)
	require.True(t, got.UpdatedAt.Equal(at.Add(time.Second)), "updated_at = %v", got.UpdatedAt)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	require.NoError(t, repo.Delete(ctx, "token"))
	require.NoError(t, repo.Delete(ctx, "token"))
	got, err = repo.Get(ctx, "token")
	require.NoError(t, err)
	require.Nil(t, got)
}
