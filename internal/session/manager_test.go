package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/taskpad/internal/tokenstore"
)

var errDisk = errors.New("disk unavailable")

// flakyStore wraps a Memory store and fails on demand.
type flakyStore struct {
	tokenstore.Memory
	failGet    bool
	failSet    bool
	failRemove bool
	dropWrites bool
	block      bool
	sets       int
}

func (s *flakyStore) Get(ctx context.Context) (string, bool, error) {
	if s.block {
		<-ctx.Done()
		return "", false, ctx.Err()
	}
	if s.failGet {
		return "", false, errDisk
	}
	return s.Memory.Get(ctx)
}

func (s *flakyStore) Set(ctx context.Context, v string) error {
	s.sets++
	if s.failSet {
		return errDisk
	}
	if s.dropWrites {
		return nil
	}
	return s.Memory.Set(ctx, v)
}

func (s *flakyStore) Remove(ctx context.Context) error {
	if s.failRemove {
		return errDisk
	}
	return s.Memory.Remove(ctx)
}

func seeded(t *testing.T, token string) *flakyStore {
	t.Helper()
	s := &flakyStore{}
	if token != "" {
		require.NoError(t, s.Memory.Set(context.Background(), token))
	}
	return s
}

func initialized(t *testing.T, store tokenstore.Store) *Manager {
	t.Helper()
	m := NewManager(store)
	require.NoError(t, m.Initialize(context.Background()))
	return m
}

func TestNewManagerStartsLoading(t *testing.T) {
	m := NewManager(&tokenstore.Memory{})
	snap := m.Snapshot()
	require.True(t, snap.Loading)
	require.Empty(t, snap.Token)
	require.Equal(t, Uninitialized, snap.State())
}

func TestInitializeFreshInstall(t *testing.T) {
	m := initialized(t, seeded(t, ""))
	require.Equal(t, Snapshot{Token: "", Loading: false}, m.Snapshot())
	require.Equal(t, Unauthenticated, m.Snapshot().State())
}

func TestInitializeStoredToken(t *testing.T) {
	m := initialized(t, seeded(t, "abc123"))
	require.Equal(t, Snapshot{Token: "abc123", Loading: false}, m.Snapshot())
	require.Equal(t, Authenticated, m.Snapshot().State())
}

func TestInitializeReadFailureFailsSafe(t *testing.T) {
	store := seeded(t, "abc123")
	store.failGet = true
	m := NewManager(store)

	err := m.Initialize(context.Background())
	require.ErrorIs(t, err, ErrStorageRead)
	require.ErrorIs(t, err, errDisk)
	require.Equal(t, Snapshot{}, m.Snapshot(), "read error must never fail open")
}

func TestInitializeTimesOut(t *testing.T) {
	store := &flakyStore{block: true}
	m := NewManager(store, WithStoreTimeout(20*time.Millisecond))

	err := m.Initialize(context.Background())
	require.ErrorIs(t, err, ErrStorageRead)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.False(t, m.Snapshot().Loading)
}

func TestLoadingFlipsExactlyOnce(t *testing.T) {
	m := NewManager(seeded(t, ""))
	var seen []bool
	m.Subscribe(func(c Change) { seen = append(seen, c.From.Loading, c.To.Loading) })

	ctx := context.Background()
	require.NoError(t, m.Initialize(ctx))
	require.NoError(t, m.Initialize(ctx))
	require.NoError(t, m.Login(ctx, "t1"))
	require.NoError(t, m.Logout(ctx))
	require.NoError(t, m.Login(ctx, "t2"))

	require.Equal(t, []bool{true, false, false, false, false, false, false, false}, seen)
	require.False(t, m.Snapshot().Loading)
}

func TestLoginPersistsThenTransitions(t *testing.T) {
	store := seeded(t, "")
	m := initialized(t, store)

	require.NoError(t, m.Login(context.Background(), "xyz"))
	got, ok, err := store.Get(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "xyz", got)
	require.Equal(t, Snapshot{Token: "xyz"}, m.Snapshot())
}

func TestLoginWriteFailureKeepsState(t *testing.T) {
	for _, prior := range []string{"", "old"} {
		store := seeded(t, prior)
		m := initialized(t, store)
		before := m.Snapshot()
		published := 0
		m.Subscribe(func(Change) { published++ })

		store.failSet = true
		err := m.Login(context.Background(), "xyz")
		require.ErrorIs(t, err, ErrStorageWrite)
		require.Equal(t, before, m.Snapshot())
		require.Zero(t, published)
	}
}

func TestLoginUnconfirmedWriteFails(t *testing.T) {
	store := seeded(t, "")
	m := initialized(t, store)
	store.dropWrites = true

	err := m.Login(context.Background(), "xyz")
	require.ErrorIs(t, err, ErrStorageWrite)
	require.Equal(t, Unauthenticated, m.Snapshot().State())
}

func TestLoginRejectsEmptyAndUninitialized(t *testing.T) {
	store := seeded(t, "")
	m := NewManager(store)
	require.ErrorIs(t, m.Login(context.Background(), "xyz"), ErrNotInitialized)
	require.ErrorIs(t, m.Logout(context.Background()), ErrNotInitialized)
	require.Zero(t, store.sets)

	require.NoError(t, m.Initialize(context.Background()))
	require.ErrorIs(t, m.Login(context.Background(), ""), ErrEmptyToken)
}

func TestLogoutClearsStoreAndSession(t *testing.T) {
	store := seeded(t, "abc123")
	m := initialized(t, store)

	require.NoError(t, m.Logout(context.Background()))
	_, ok, err := store.Get(context.Background())
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, Snapshot{}, m.Snapshot())
}

func TestLogoutRemovalFailureStillClears(t *testing.T) {
	store := seeded(t, "abc123")
	m := initialized(t, store)
	var last Change
	m.Subscribe(func(c Change) { last = c })

	store.failRemove = true
	err := m.Logout(context.Background())
	require.ErrorIs(t, err, ErrStorageWrite)
	require.Equal(t, Snapshot{}, m.Snapshot())
	require.Equal(t, ReasonLogout, last.Reason)
	require.Equal(t, Authenticated, last.From.State())
	require.Equal(t, Unauthenticated, last.To.State())
}

func TestSubscribersSeeEveryTransition(t *testing.T) {
	m := NewManager(seeded(t, ""))
	var reasons []Reason
	var states []State
	unsubscribe := m.Subscribe(func(c Change) {
		reasons = append(reasons, c.Reason)
		states = append(states, c.To.State())
	})

	ctx := context.Background()
	require.NoError(t, m.Initialize(ctx))
	require.NoError(t, m.Login(ctx, "xyz"))
	require.NoError(t, m.Logout(ctx))
	unsubscribe()
	require.NoError(t, m.Login(ctx, "again"))

	require.Equal(t, []Reason{ReasonBoot, ReasonLogin, ReasonLogout}, reasons)
	require.Equal(t, []State{Unauthenticated, Authenticated, Unauthenticated}, states)
}

func TestPanickingListenerDoesNotBlockOthers(t *testing.T) {
	m := NewManager(seeded(t, ""))
	m.Subscribe(func(Change) { panic("boom") })
	called := false
	m.Subscribe(func(Change) { called = true })

	require.NoError(t, m.Initialize(context.Background()))
	require.True(t, called)
}

func TestTokenSource(t *testing.T) {
	m := initialized(t, seeded(t, ""))
	_, err := m.Token()
	require.ErrorIs(t, err, ErrNotAuthenticated)

	require.NoError(t, m.Login(context.Background(), "xyz"))
	tok, err := m.Token()
	require.NoError(t, err)
	require.Equal(t, "xyz", tok.AccessToken)
	require.Equal(t, "Bearer", tok.Type())
}
