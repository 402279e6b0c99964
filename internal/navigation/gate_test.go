package navigation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jask/taskpad/internal/session"
	"github.com/jask/taskpad/internal/tokenstore"
)

func TestSelectCoversEveryState(t *testing.T) {
	cases := []struct {
		snap session.Snapshot
		want Group
	}{
		{session.Snapshot{Loading: true}, GroupNone},
		{session.Snapshot{Loading: true, Token: "abc"}, GroupNone},
		{session.Snapshot{}, GroupUnauthenticated},
		{session.Snapshot{Token: "abc"}, GroupAuthenticated},
	}
	for _, tc := range cases {
		if got := Select(tc.snap); got != tc.want {
			t.Errorf("Select(%+v) = %v, want %v", tc.snap, got, tc.want)
		}
	}
}

func TestGroupEntries(t *testing.T) {
	require.Equal(t, Screen(""), GroupNone.Entry())
	require.Equal(t, ScreenLogin, GroupUnauthenticated.Entry())
	require.Equal(t, ScreenTasks, GroupAuthenticated.Entry())

	require.True(t, GroupUnauthenticated.Allows(ScreenRegister))
	require.False(t, GroupUnauthenticated.Allows(ScreenTasks))
	require.True(t, GroupAuthenticated.Allows(ScreenTaskForm))
	require.False(t, GroupAuthenticated.Allows(ScreenLogin))
	require.False(t, GroupNone.Allows(ScreenLogin))
}

func TestGateFollowsManager(t *testing.T) {
	ctx := context.Background()
	m := session.NewManager(&tokenstore.Memory{})
	var switches []Switch
	gate := NewGate(func(s Switch) { switches = append(switches, s) })
	detach := gate.Attach(m)
	defer detach()

	require.Equal(t, GroupNone, gate.Current())

	require.NoError(t, m.Initialize(ctx))
	require.Equal(t, GroupUnauthenticated, gate.Current())

	require.NoError(t, m.Login(ctx, "xyz"))
	require.Equal(t, GroupAuthenticated, gate.Current())

	require.NoError(t, m.Logout(ctx))
	require.Equal(t, GroupUnauthenticated, gate.Current())

	require.Equal(t, []Switch{
		{From: GroupNone, To: GroupUnauthenticated, Reason: session.ReasonBoot},
		{From: GroupUnauthenticated, To: GroupAuthenticated, Reason: session.ReasonLogin},
		{From: GroupAuthenticated, To: GroupUnauthenticated, Reason: session.ReasonLogout},
	}, switches)
}

func TestGateIgnoresChangesWithinGroup(t *testing.T) {
	ctx := context.Background()
	store := &tokenstore.Memory{}
	require.NoError(t, store.Set(ctx, "abc123"))
	m := session.NewManager(store)
	calls := 0
	gate := NewGate(func(Switch) { calls++ })
	gate.Attach(m)

	require.NoError(t, m.Initialize(ctx))
	require.NoError(t, m.Login(ctx, "rotated"))
	require.Equal(t, 1, calls, "login while authenticated keeps the group")
	require.Equal(t, GroupAuthenticated, gate.Current())
}
