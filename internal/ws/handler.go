package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/DoyleJ11/battlegrid-backend/internal/battle"
	"github.com/DoyleJ11/battlegrid-backend/internal/dispatch"
	"github.com/DoyleJ11/battlegrid-backend/internal/hub"
)

// ClientMessage is the wire form of one request; Type selects the
// request kind and the other fields are read as that kind needs them.
type ClientMessage struct {
	Type     string         `json:"type"`
	User     string         `json:"user,omitempty"`
	Session  string         `json:"session,omitempty"`
	Capacity int            `json:"capacity,omitempty"`
	Coords   []battle.Coord `json:"coords,omitempty"`
	Target   *battle.Coord  `json:"target,omitempty"`
}

type ServerMessage struct {
	Type    string `json:"type"` // "reply" | "event" | "error"
	Req     string `json:"req,omitempty"`
	Reply   any    `json:"reply,omitempty"`
	Topic   string `json:"topic,omitempty"`
	Payload any    `json:"payload,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Handler runs one connection: a writer goroutine pumping hub envelopes
// out and a reader loop turning wire messages into dispatched requests.
// Topic subscriptions follow the connection's session membership.
func Handler(d *dispatch.Dispatcher, h *hub.Hub, serverName string, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		sub := h.Register(16)
		defer h.Remove(sub)

		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for env := range sub {
				payload, err := json.Marshal(ServerMessage{Type: "event", Topic: env.Topic, Payload: env.Payload})
				if err != nil {
					logger.Error("marshal broadcast", zap.String("topic", env.Topic), zap.Error(err))
					continue
				}
				ctx, cancel := context.WithTimeout(writeCtx, 3*time.Second)
				_ = conn.Write(ctx, websocket.MessageText, payload)
				cancel()
			}
		}()

		var user, session string
		defer func() {
			// Dropped connection: the user's name frees up and in-game
			// sessions stop waiting on their turns.
			if user != "" {
				d.MarkUnreachable(user)
				d.Disconnect(dispatch.Disconnect{User: user})
			}
		}()

		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				return
			}

			var cm ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				writeMsg(r.Context(), conn, ServerMessage{Type: "error", Error: "bad json"})
				continue
			}

			req, ok := toRequest(cm)
			if !ok {
				writeMsg(r.Context(), conn, ServerMessage{Type: "error", Error: "unknown type"})
				continue
			}

			reply := d.Dispatch(req)
			writeMsg(r.Context(), conn, ServerMessage{Type: "reply", Req: cm.Type, Reply: reply})
			if statusOf(reply).Failed() {
				continue
			}

			switch rq := req.(type) {
			case dispatch.Connect:
				user = rq.User
				h.Subscribe(sub,
					dispatch.ServerTopic(serverName),
					dispatch.SessionsTopic(serverName))
			case dispatch.Disconnect:
				h.Unsubscribe(sub,
					dispatch.ServerTopic(serverName),
					dispatch.SessionsTopic(serverName))
				if session != "" {
					h.Unsubscribe(sub,
						dispatch.SessionTopic(serverName, session),
						dispatch.PlayerTopic(serverName, session, user))
				}
				user, session = "", ""
			case dispatch.CreateSession:
				session = rq.Session
				h.Subscribe(sub,
					dispatch.SessionTopic(serverName, session),
					dispatch.PlayerTopic(serverName, session, user))
			case dispatch.JoinSession:
				session = rq.Session
				h.Subscribe(sub,
					dispatch.SessionTopic(serverName, session),
					dispatch.PlayerTopic(serverName, session, user))
			case dispatch.LeaveSession:
				h.Unsubscribe(sub,
					dispatch.SessionTopic(serverName, session),
					dispatch.PlayerTopic(serverName, session, user))
				session = ""
			}
		}
	}
}

func writeMsg(ctx context.Context, conn *websocket.Conn, msg ServerMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}
	wctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_ = conn.Write(wctx, websocket.MessageText, payload)
}

func toRequest(m ClientMessage) (dispatch.Request, bool) {
	switch m.Type {
	case "connect":
		return dispatch.Connect{User: m.User}, true
	case "disconnect":
		return dispatch.Disconnect{User: m.User}, true
	case "create_session":
		return dispatch.CreateSession{User: m.User, Session: m.Session, Capacity: m.Capacity}, true
	case "join_session":
		return dispatch.JoinSession{User: m.User, Session: m.Session}, true
	case "leave_session":
		return dispatch.LeaveSession{User: m.User, Session: m.Session}, true
	case "ready":
		return dispatch.Ready{User: m.User, Session: m.Session}, true
	case "send_ship_placement":
		return dispatch.PlaceShips{User: m.User, Session: m.Session, Coords: m.Coords}, true
	case "start_game":
		return dispatch.StartGame{User: m.User, Session: m.Session}, true
	case "shoot":
		if m.Target == nil {
			return nil, false
		}
		return dispatch.Shoot{User: m.User, Session: m.Session, Target: *m.Target}, true
	default:
		return nil, false
	}
}

func statusOf(reply any) dispatch.Status {
	switch r := reply.(type) {
	case dispatch.ConnectReply:
		return r.Status
	case dispatch.DisconnectReply:
		return r.Status
	case dispatch.CreateSessionReply:
		return r.Status
	case dispatch.JoinSessionReply:
		return r.Status
	case dispatch.LeaveSessionReply:
		return r.Status
	case dispatch.ReadyReply:
		return r.Status
	case dispatch.PlaceShipsReply:
		return r.Status
	case dispatch.StartGameReply:
		return r.Status
	case dispatch.ShootReply:
		return r.Status
	case dispatch.Status:
		return r
	default:
		return dispatch.Status{}
	}
}
