package dispatch

import "github.com/DoyleJ11/battlegrid-backend/internal/battle"

// Publisher is the outbound fan-out capability the dispatcher publishes
// through. Implementations must not block; the dispatcher calls Publish
// while holding its lock.
type Publisher interface {
	Publish(topic string, payload any)
}

// Topic keys mirror the routing scheme clients subscribe on.
func ServerTopic(server string) string { return server + ".info" }

func SessionsTopic(server string) string { return server + ".sessions.info" }

func SessionTopic(server, session string) string { return server + "." + session + ".info" }

func PlayerTopic(server, session, player string) string {
	return server + "." + session + "." + player
}

// SessionsUpdate is the lobby-list payload on SessionsTopic.
type SessionsUpdate struct {
	Sessions []battle.InfoRecord `json:"sessions"`
}

// SessionEvent is the session-wide payload on SessionTopic. Zero fields
// are omitted on the wire; each broadcast sets only what changed.
type SessionEvent struct {
	Msg      string         `json:"msg,omitempty"`
	Joined   string         `json:"joined,omitempty"`
	Left     string         `json:"left,omitempty"`
	Owner    string         `json:"owner,omitempty"`
	Ready    []string       `json:"ready,omitempty"`
	Active   bool           `json:"active,omitempty"`
	Next     string         `json:"next,omitempty"`
	Shot     *battle.Coord  `json:"shot,omitempty"`
	Sunk     []battle.Coord `json:"sunk,omitempty"`
	Gameover string         `json:"gameover,omitempty"`
}

// PlayerNotice is the unicast-via-broadcast payload on PlayerTopic: hit
// notifications, the spectator field after elimination, win notices.
type PlayerNotice struct {
	Msg   string        `json:"msg,omitempty"`
	Shot  *battle.Coord `json:"shot,omitempty"`
	Field battle.Grid   `json:"field,omitempty"`
	Win   bool          `json:"win,omitempty"`
}
