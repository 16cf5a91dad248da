package dispatch

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/battlegrid-backend/internal/battle"
	"github.com/DoyleJ11/battlegrid-backend/internal/registry"
)

// Recorder persists finished games. Implementations may block; the
// dispatcher calls it off the lock.
type Recorder interface {
	RecordResult(session, winner string, players []string, started, ended time.Time) error
}

// Options configures a Dispatcher. Registry, Publisher and Logger are
// required; the rest default sensibly.
type Options struct {
	ServerName  string
	Registry    *registry.Registry
	Publisher   Publisher
	Logger      *zap.Logger
	Recorder    Recorder      // nil disables match history
	TurnTimeout time.Duration // 0 = DefaultTurnTimeout
	TimerPoll   time.Duration // 0 = 1s
	Clock       func() time.Time
}

// Dispatcher translates inbound requests into registry/session mutations
// and outbound payloads. One coarse lock covers every handler and every
// turn-timer tick: request handling and turn advancement both read and
// write NextShooter and the per-session deadline, so they exclude each
// other wholesale.
type Dispatcher struct {
	mu sync.Mutex

	server   string
	reg      *registry.Registry
	pub      Publisher
	log      *zap.Logger
	recorder Recorder

	timeout time.Duration
	poll    time.Duration
	clock   func() time.Time

	timers    map[string]*turnTimer
	deadlines map[string]time.Time
	started   map[string]time.Time
}

func New(opts Options) *Dispatcher {
	d := &Dispatcher{
		server:    opts.ServerName,
		reg:       opts.Registry,
		pub:       opts.Publisher,
		log:       opts.Logger,
		recorder:  opts.Recorder,
		timeout:   opts.TurnTimeout,
		poll:      opts.TimerPoll,
		clock:     opts.Clock,
		timers:    make(map[string]*turnTimer),
		deadlines: make(map[string]time.Time),
		started:   make(map[string]time.Time),
	}
	if d.timeout <= 0 {
		d.timeout = DefaultTurnTimeout
	}
	if d.poll <= 0 {
		d.poll = time.Second
	}
	if d.clock == nil {
		d.clock = time.Now
	}
	if d.log == nil {
		d.log = zap.NewNop()
	}
	return d
}

// Dispatch routes a request to its handler and returns the typed reply.
func (d *Dispatcher) Dispatch(req Request) any {
	switch r := req.(type) {
	case Connect:
		return d.Connect(r)
	case Disconnect:
		return d.Disconnect(r)
	case CreateSession:
		return d.CreateSession(r)
	case JoinSession:
		return d.JoinSession(r)
	case LeaveSession:
		return d.LeaveSession(r)
	case Ready:
		return d.Ready(r)
	case PlaceShips:
		return d.PlaceShips(r)
	case StartGame:
		return d.StartGame(r)
	case Shoot:
		return d.Shoot(r)
	default:
		d.log.Error("unsupported request", zap.Any("request", req))
		return Status{Err: "unsupported request"}
	}
}

// SessionList snapshots the lobby list for read-only surfaces.
func (d *Dispatcher) SessionList() []battle.InfoRecord {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.reg.SessionInfos()
}

// MarkUnreachable is the liveness hook the transport calls when a
// connection drops: the user stops being rotated to in every in-game
// session until they rejoin. They are never auto-forfeited; their ships
// stay on the board.
func (d *Dispatcher) MarkUnreachable(user string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, s := range d.reg.Sessions() {
		if s.Phase != battle.PhaseInGame || !slices.Contains(s.Active, user) {
			continue
		}
		s.Active = slices.DeleteFunc(s.Active, func(p string) bool { return p == user })
		d.log.Info("player unreachable",
			zap.String("session", s.Name), zap.String("user", user))
		if s.NextShooter == user {
			next := s.NextPlayer()
			d.deadlines[s.Name] = d.clock()
			d.publishSession(s, SessionEvent{Next: next})
		}
	}
}

// Shutdown stops every turn timer. Sessions are not persisted.
func (d *Dispatcher) Shutdown() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for name := range d.timers {
		d.stopTimerLocked(name)
	}
}

func (d *Dispatcher) Connect(req Connect) ConnectReply {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch {
	case req.User == "":
		return ConnectReply{Status: errStatus("user name must not be empty")}
	case req.User == registry.ReservedUserName:
		return ConnectReply{Status: errStatus("user name is reserved")}
	case d.reg.Connected(req.User):
		return ConnectReply{Status: errStatus("username already taken")}
	}

	d.reg.Connect(req.User)
	d.log.Info("user connected", zap.String("user", req.User))
	return ConnectReply{Sessions: d.reg.SessionInfos()}
}

func (d *Dispatcher) Disconnect(req Disconnect) DisconnectReply {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.reg.Connected(req.User) {
		return DisconnectReply{Status: errStatus("user is not connected")}
	}
	d.reg.Disconnect(req.User)
	d.log.Info("user disconnected", zap.String("user", req.User))
	return DisconnectReply{}
}

func (d *Dispatcher) CreateSession(req CreateSession) CreateSessionReply {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.reg.Connected(req.User) {
		return CreateSessionReply{Status: reconnectStatus()}
	}
	switch {
	case req.Session == "":
		return CreateSessionReply{Status: errStatus("session name must not be empty")}
	case req.Session == registry.ReservedSessionName:
		return CreateSessionReply{Status: errStatus("session name is reserved")}
	case req.Capacity < 2 || req.Capacity > 6:
		return CreateSessionReply{Status: errStatus("capacity must be between 2 and 6")}
	}
	if _, exists := d.reg.Session(req.Session); exists {
		return CreateSessionReply{Status: errStatus("session name taken")}
	}

	s := battle.NewSession(req.Session, req.Capacity, req.User)
	d.reg.AddSession(s)
	d.log.Info("session created",
		zap.String("session", req.Session),
		zap.String("owner", req.User),
		zap.Int("capacity", req.Capacity))

	d.publishSessions()
	return CreateSessionReply{Map: s.Pieces(req.User)}
}

func (d *Dispatcher) JoinSession(req JoinSession) JoinSessionReply {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.reg.Connected(req.User) {
		return JoinSessionReply{Status: reconnectStatus()}
	}
	s, ok := d.reg.Session(req.Session)
	if !ok {
		return JoinSessionReply{Status: errStatus("session not found")}
	}

	if s.Phase == battle.PhaseInGame {
		// Only a reconnect of a known player is allowed mid-game.
		if !slices.Contains(s.Roster, req.User) {
			return JoinSessionReply{Status: errStatus("game already started")}
		}
		if !slices.Contains(s.Active, req.User) {
			s.Active = append(s.Active, req.User)
		}
		d.log.Info("player reconnected",
			zap.String("session", s.Name), zap.String("user", req.User))
		d.publishSession(s, SessionEvent{Joined: req.User})
		return JoinSessionReply{
			Map:         s.Pieces(req.User),
			Battlefield: s.PlayerBattlefield(req.User),
			Next:        s.NextShooter,
		}
	}

	if slices.Contains(s.Roster, req.User) {
		return JoinSessionReply{Status: errStatus("already in session")}
	}
	if len(s.Roster) >= s.Capacity {
		return JoinSessionReply{Status: errStatus("session full")}
	}

	s.Roster = append(s.Roster, req.User)
	piece := s.AssignPieces(req.User)
	d.log.Info("player joined",
		zap.String("session", s.Name), zap.String("user", req.User))

	d.publishSessions()
	d.publishSession(s, SessionEvent{Joined: req.User})
	return JoinSessionReply{
		Map:     piece,
		Owner:   s.Owner,
		Players: slices.Clone(s.Roster),
		Ready:   s.Info().Ready,
	}
}

func (d *Dispatcher) LeaveSession(req LeaveSession) LeaveSessionReply {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.reg.Connected(req.User) {
		return LeaveSessionReply{Status: reconnectStatus()}
	}
	s, ok := d.reg.Session(req.Session)
	if !ok {
		return LeaveSessionReply{Status: errStatus("session not found")}
	}
	if !slices.Contains(s.Roster, req.User) {
		return LeaveSessionReply{Status: errStatus("user not in session")}
	}

	// Hand the turn off before the leaver disappears from the roster,
	// otherwise the rotation scan has no anchor.
	if s.Phase == battle.PhaseInGame && s.NextShooter == req.User {
		s.Active = slices.DeleteFunc(s.Active, func(p string) bool { return p == req.User })
		if next := s.NextPlayer(); next != req.User {
			d.deadlines[s.Name] = d.clock()
			d.publishSession(s, SessionEvent{Next: next})
		}
	}

	s.CleanPlayerInfo(req.User)
	d.log.Info("player left",
		zap.String("session", s.Name), zap.String("user", req.User))
	d.publishSession(s, SessionEvent{Left: req.User})

	if req.User == s.Owner && len(s.Roster) > 0 {
		s.Owner = s.Roster[0]
		d.publishSession(s, SessionEvent{Owner: s.Owner})
	}

	if s.Phase == battle.PhaseInGame && len(s.Active) <= 1 {
		d.finishGame(s)
	}
	if s.Phase == battle.PhaseLobby && len(s.Roster) == 0 {
		d.stopTimerLocked(s.Name)
		d.reg.RemoveSession(s.Name)
		d.log.Info("session deleted", zap.String("session", s.Name))
	}

	d.publishSessions()
	return LeaveSessionReply{}
}

func (d *Dispatcher) Ready(req Ready) ReadyReply {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.reg.Connected(req.User) {
		return ReadyReply{Status: reconnectStatus()}
	}
	s, ok := d.reg.Session(req.Session)
	if !ok {
		return ReadyReply{Status: errStatus("session not found")}
	}
	if !s.Placed[req.User] {
		// Informational, not an error: the client shows a dialog.
		return ReadyReply{Msg: "place your ships first"}
	}

	s.Ready[req.User] = !s.Ready[req.User]
	d.publishSession(s, SessionEvent{Ready: s.Info().Ready})
	return ReadyReply{Ready: s.Ready[req.User]}
}

func (d *Dispatcher) PlaceShips(req PlaceShips) PlaceShipsReply {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.reg.Connected(req.User) {
		return PlaceShipsReply{Status: reconnectStatus()}
	}
	s, ok := d.reg.Session(req.Session)
	if !ok {
		return PlaceShipsReply{Status: errStatus("session not found")}
	}
	if !slices.Contains(s.Roster, req.User) {
		return PlaceShipsReply{Status: errStatus("user not in session")}
	}
	if s.Phase == battle.PhaseInGame {
		return PlaceShipsReply{Status: errStatus("game already started")}
	}
	if err := s.PlaceShips(req.User, req.Coords); err != nil {
		return PlaceShipsReply{Status: errStatus(err.Error())}
	}

	d.publishSession(s, SessionEvent{Msg: fmt.Sprintf("%s placed ships", req.User)})
	return PlaceShipsReply{}
}

func (d *Dispatcher) StartGame(req StartGame) StartGameReply {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.reg.Connected(req.User) {
		return StartGameReply{Status: reconnectStatus()}
	}
	s, ok := d.reg.Session(req.Session)
	if !ok {
		return StartGameReply{Status: errStatus("session not found")}
	}
	if req.User != s.Owner {
		return StartGameReply{Status: errStatus("only the owner can start the game")}
	}
	if len(s.Roster) < 2 {
		return StartGameReply{Status: errStatus("cannot start a game alone")}
	}
	if !s.CheckReady(s.Owner) {
		return StartGameReply{Status: errStatus("not all players are ready")}
	}

	s.StartGame()
	s.NextShooter = s.Owner
	d.started[s.Name] = d.clock()
	d.startTimerLocked(s.Name)
	d.log.Info("game started", zap.String("session", s.Name))

	d.publishSessions()
	d.publishSession(s, SessionEvent{Active: true, Next: s.NextShooter})
	return StartGameReply{}
}

func (d *Dispatcher) Shoot(req Shoot) ShootReply {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.reg.Connected(req.User) {
		return ShootReply{Status: reconnectStatus()}
	}
	s, ok := d.reg.Session(req.Session)
	if !ok {
		return ShootReply{Status: errStatus("session not found")}
	}
	if s.Phase != battle.PhaseInGame {
		return ShootReply{Status: errStatus("game is not running")}
	}
	if req.User != s.NextShooter {
		return ShootReply{Status: errStatus("not your turn")}
	}

	result := s.CheckShot(req.Target)
	d.deadlines[s.Name] = d.clock()

	target := req.Target
	switch result {
	case battle.ShotHit:
		d.notifyVictim(s, target)
		d.publishSession(s, SessionEvent{Shot: &target, Msg: fmt.Sprintf("%s hit a ship", req.User)})
	case battle.ShotSunk:
		d.notifyVictim(s, target)
		d.publishSession(s, SessionEvent{Sunk: s.ShipCoordinates(target)})
		if eliminated, ok := s.CheckEndGame(); ok {
			d.publishSession(s, SessionEvent{Gameover: eliminated})
			d.pub.Publish(PlayerTopic(d.server, s.Name, eliminated), PlayerNotice{
				Msg:   "all your ships are sunk",
				Field: s.PlayerBattlefield(eliminated),
			})
			if len(s.Alive) <= 1 {
				d.finishGame(s)
				d.publishSessions()
				return ShootReply{Result: result}
			}
		}
	}

	d.publishSession(s, SessionEvent{Next: s.NextPlayer()})
	return ShootReply{Result: result}
}

// notifyVictim unicasts a hit to the player whose ship was struck. A
// cell that resolves to no owner is a bookkeeping bug; it fails only
// this notification, never the shot.
func (d *Dispatcher) notifyVictim(s *battle.Session, target battle.Coord) {
	victim, ok := s.ShipOwner(target)
	if !ok {
		d.log.Error("shot resolved to unowned region",
			zap.String("session", s.Name),
			zap.Int("row", target.Row), zap.Int("col", target.Col))
		return
	}
	d.pub.Publish(PlayerTopic(d.server, s.Name, victim), PlayerNotice{
		Msg:  "your ship was hit",
		Shot: &target,
	})
}

// finishGame declares the last reachable-and-afloat player the winner,
// records the result and resets the session to the lobby. Caller holds
// the lock.
func (d *Dispatcher) finishGame(s *battle.Session) {
	winner := ""
	for _, p := range s.Active {
		if len(s.Alive) == 0 || slices.Contains(s.Alive, p) {
			winner = p
			break
		}
	}
	if winner != "" {
		d.publishSession(s, SessionEvent{Gameover: winner, Msg: fmt.Sprintf("%s won the game", winner)})
		d.pub.Publish(PlayerTopic(d.server, s.Name, winner), PlayerNotice{Msg: "you won", Win: true})
	}
	d.log.Info("game finished",
		zap.String("session", s.Name), zap.String("winner", winner))

	if d.recorder != nil {
		name := s.Name
		players := slices.Clone(s.Roster)
		startedAt := d.started[s.Name]
		endedAt := d.clock()
		go func() {
			if err := d.recorder.RecordResult(name, winner, players, startedAt, endedAt); err != nil {
				d.log.Error("record match result", zap.String("session", name), zap.Error(err))
			}
		}()
	}
	delete(d.started, s.Name)

	d.stopTimerLocked(s.Name)
	s.Reset()
	if len(s.Roster) == 0 {
		d.reg.RemoveSession(s.Name)
		d.log.Info("session deleted", zap.String("session", s.Name))
	}
}

func (d *Dispatcher) publishSessions() {
	d.pub.Publish(SessionsTopic(d.server), SessionsUpdate{Sessions: d.reg.SessionInfos()})
}

func (d *Dispatcher) publishSession(s *battle.Session, ev SessionEvent) {
	d.pub.Publish(SessionTopic(d.server, s.Name), ev)
}
