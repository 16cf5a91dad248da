package ws

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/battlegrid-backend/internal/battle"
	"github.com/DoyleJ11/battlegrid-backend/internal/dispatch"
)

func TestToRequest(t *testing.T) {
	cases := []struct {
		name string
		msg  ClientMessage
		want dispatch.Request
		ok   bool
	}{
		{
			name: "connect",
			msg:  ClientMessage{Type: "connect", User: "alice"},
			want: dispatch.Connect{User: "alice"},
			ok:   true,
		},
		{
			name: "create session",
			msg:  ClientMessage{Type: "create_session", User: "alice", Session: "sess", Capacity: 3},
			want: dispatch.CreateSession{User: "alice", Session: "sess", Capacity: 3},
			ok:   true,
		},
		{
			name: "shoot",
			msg:  ClientMessage{Type: "shoot", User: "alice", Session: "sess", Target: &battle.Coord{Row: 1, Col: 2}},
			want: dispatch.Shoot{User: "alice", Session: "sess", Target: battle.Coord{Row: 1, Col: 2}},
			ok:   true,
		},
		{
			name: "shoot without target",
			msg:  ClientMessage{Type: "shoot", User: "alice", Session: "sess"},
			ok:   false,
		},
		{
			name: "unknown type",
			msg:  ClientMessage{Type: "dance"},
			ok:   false,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := toRequest(tc.msg)
			require.Equal(t, tc.ok, ok)
			if tc.ok {
				require.Equal(t, tc.want, got)
			}
		})
	}
}

func TestStatusOf(t *testing.T) {
	require.True(t, statusOf(dispatch.ShootReply{Status: dispatch.Status{Err: "not your turn"}}).Failed())
	require.False(t, statusOf(dispatch.ConnectReply{}).Failed())
	require.True(t, statusOf(dispatch.CreateSessionReply{Status: dispatch.Status{Err: "not connected", Reconnect: true}}).Reconnect)
}
