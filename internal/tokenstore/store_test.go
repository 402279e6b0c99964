package tokenstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/jask/taskpad/internal/database"
	"github.com/jask/taskpad/internal/database/repository"
)

func newRedisStore(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})
	return NewRedis(rdb, "taskpad:", "token"), mr
}

func newSQLiteStore(t *testing.T) *SQLite {
	t.Helper()
	db, err := database.OpenMigrated(filepath.Join(t.TempDir(), "taskpad.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewSQLite(repository.NewKVRepo(db), "token")
}

func newFileStore(t *testing.T) *File {
	t.Helper()
	f, err := NewFile(filepath.Join(t.TempDir(), "taskpad"), "token")
	require.NoError(t, err)
	return f
}

func backends(t *testing.T) map[string]Store {
	redisStore, _ := newRedisStore(t)
	return map[string]Store{
		"memory": &Memory{},
		"file":   newFileStore(t),
		"sqlite": newSQLiteStore(t),
		"redis":  redisStore,
	}
}

func TestStoreContract(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, ok, err := store.Get(ctx)
			require.NoError(t, err)
			require.False(t, ok, "fresh store should be empty")

			require.NoError(t, store.Set(ctx, "abc123"))
			got, ok, err := store.Get(ctx)
			require.NoError(t, err)
			require.True(t, ok)
			require.Equal(t, "abc123", got)

			require.NoError(t, store.Set(ctx, "xyz"))
			got, _, err = store.Get(ctx)
			require.NoError(t, err)
			require.Equal(t, "xyz", got, "set must overwrite")

			require.NoError(t, store.Remove(ctx))
			_, ok, err = store.Get(ctx)
			require.NoError(t, err)
			require.False(t, ok)

			require.NoError(t, store.Remove(ctx), "removing an absent value succeeds")
			require.ErrorIs(t, store.Set(ctx, ""), ErrEmptyValue)
		})
	}
}

func TestFileSurvivesReopen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "taskpad")
	first, err := NewFile(dir, "token")
	require.NoError(t, err)
	require.NoError(t, first.Set(context.Background(), "eyJhbGciOi.payload.sig"))

	second, err := NewFile(dir, "token")
	require.NoError(t, err)
	got, ok, err := second.Get(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "eyJhbGciOi.payload.sig", got)

	info, err := os.Stat(second.Path())
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	raw, err := os.ReadFile(second.Path())
	require.NoError(t, err)
	require.Equal(t, "eyJhbGciOi.payload.sig", string(raw), "value is stored raw")
}

func TestFileRejectsPathKeys(t *testing.T) {
	for _, key := range []string{"", "../token", "a/b", ".hidden"} {
		_, err := NewFile(t.TempDir(), key)
		require.Error(t, err, "key %q", key)
	}
}

func TestFileHonoursCancelledContext(t *testing.T) {
	f := newFileStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, f.Set(ctx, "abc"), context.Canceled)
	_, _, err := f.Get(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestRedisSurfacesServerFailure(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "abc123"))
	require.Equal(t, "abc123", mustGet(t, mr, "taskpad:token"))

	mr.SetError("ERR disk full")
	_, _, err := store.Get(ctx)
	require.Error(t, err)
	require.Error(t, store.Set(ctx, "other"))
	require.Error(t, store.Remove(ctx))
}

func mustGet(t *testing.T, mr *miniredis.Miniredis, key string) string {
	t.Helper()
	v, err := mr.Get(key)
	require.NoError(t, err)
	return v
}
