package registry

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/battlegrid-backend/internal/battle"
)

func TestSessionLifecycle(t *testing.T) {
	r := New()

	_, ok := r.Session("sess")
	require.False(t, ok)

	r.AddSession(battle.NewSession("sess", 2, "alice"))
	s, ok := r.Session("sess")
	require.True(t, ok)
	require.Equal(t, "alice", s.Owner)
	require.Len(t, r.Sessions(), 1)

	infos := r.SessionInfos()
	require.Len(t, infos, 1)
	require.Equal(t, "sess", infos[0].SessionName)
	require.Equal(t, 1, infos[0].PlayerCount)

	r.RemoveSession("sess")
	_, ok = r.Session("sess")
	require.False(t, ok)
	require.Empty(t, r.SessionInfos())
}

func TestConnectedUsers(t *testing.T) {
	r := New()
	require.False(t, r.Connected("alice"))
	r.Connect("alice")
	require.True(t, r.Connected("alice"))
	r.Disconnect("alice")
	require.False(t, r.Connected("alice"))
}
