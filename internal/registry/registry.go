// Package registry tracks live sessions and connected users for one
// server process. It is plain data: the dispatcher owns all mutation and
// serializes access, so the registry itself carries no lock.
package registry

import (
	"github.com/DoyleJ11/battlegrid-backend/internal/battle"
)

// Reserved names collide with broadcast topic segments and are rejected
// at connect/create time.
const (
	ReservedSessionName = "sessions"
	ReservedUserName    = "info"
)

type Registry struct {
	sessions map[string]*battle.Session
	users    map[string]bool
}

func New() *Registry {
	return &Registry{
		sessions: make(map[string]*battle.Session),
		users:    make(map[string]bool),
	}
}

func (r *Registry) Session(name string) (*battle.Session, bool) {
	s, ok := r.sessions[name]
	return s, ok
}

func (r *Registry) AddSession(s *battle.Session) {
	r.sessions[s.Name] = s
}

func (r *Registry) RemoveSession(name string) {
	delete(r.sessions, name)
}

// Sessions returns every live session.
func (r *Registry) Sessions() []*battle.Session {
	out := make([]*battle.Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	return out
}

// SessionInfos returns the lobby-list summary of every session.
func (r *Registry) SessionInfos() []battle.InfoRecord {
	infos := make([]battle.InfoRecord, 0, len(r.sessions))
	for _, s := range r.sessions {
		infos = append(infos, s.Info())
	}
	return infos
}

func (r *Registry) Connected(user string) bool {
	return r.users[user]
}

func (r *Registry) Connect(user string) {
	r.users[user] = true
}

func (r *Registry) Disconnect(user string) {
	delete(r.users, user)
}
