package dispatch

import "github.com/DoyleJ11/battlegrid-backend/internal/battle"

// Request is the sealed set of inbound request kinds. The transport
// layer decodes wire messages into one of these; the dispatcher never
// sees raw JSON.
type Request interface{ isRequest() }

type Connect struct {
	User string
}

type Disconnect struct {
	User string
}

type CreateSession struct {
	User     string
	Session  string
	Capacity int
}

type JoinSession struct {
	User    string
	Session string
}

type LeaveSession struct {
	User    string
	Session string
}

type Ready struct {
	User    string
	Session string
}

type PlaceShips struct {
	User    string
	Session string
	Coords  []battle.Coord
}

type StartGame struct {
	User    string
	Session string
}

type Shoot struct {
	User    string
	Session string
	Target  battle.Coord
}

func (Connect) isRequest()       {}
func (Disconnect) isRequest()    {}
func (CreateSession) isRequest() {}
func (JoinSession) isRequest()   {}
func (LeaveSession) isRequest()  {}
func (Ready) isRequest()         {}
func (PlaceShips) isRequest()    {}
func (StartGame) isRequest()     {}
func (Shoot) isRequest()         {}

// Status is the common reply envelope: empty Err means success.
// Reconnect is not an error; it tells the client its connection state is
// stale and the session flow must restart from connect.
type Status struct {
	Err       string `json:"err"`
	Reconnect bool   `json:"reconnect,omitempty"`
}

func errStatus(msg string) Status { return Status{Err: msg} }

func reconnectStatus() Status { return Status{Err: "not connected", Reconnect: true} }

func (s Status) Failed() bool { return s.Err != "" }

type ConnectReply struct {
	Status
	Sessions []battle.InfoRecord `json:"sessions,omitempty"`
}

type DisconnectReply struct {
	Status
}

type CreateSessionReply struct {
	Status
	Map []int `json:"map,omitempty"`
}

// JoinSessionReply serves both lobby joins (Map/Owner/Players/Ready) and
// mid-game reconnects (Map/Battlefield/Next).
type JoinSessionReply struct {
	Status
	Map         []int       `json:"map,omitempty"`
	Owner       string      `json:"owner,omitempty"`
	Players     []string    `json:"players,omitempty"`
	Ready       []string    `json:"ready,omitempty"`
	Battlefield battle.Grid `json:"battlefield,omitempty"`
	Next        string      `json:"next,omitempty"`
}

type LeaveSessionReply struct {
	Status
}

type ReadyReply struct {
	Status
	Msg   string `json:"msg,omitempty"`
	Ready bool   `json:"ready"`
}

type PlaceShipsReply struct {
	Status
}

type StartGameReply struct {
	Status
}

type ShootReply struct {
	Status
	Result battle.ShotResult `json:"result"`
}
