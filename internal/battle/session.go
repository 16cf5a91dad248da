package battle

import (
	"errors"
	"slices"
)

var ErrNoPiecesAssigned = errors.New("no pieces assigned")

// Phase is where a session is in its lifecycle.
type Phase string

const (
	PhaseLobby  Phase = "lobby"
	PhaseInGame Phase = "in_game"
)

// Session owns the full state of one game: roster, map assignment, ship
// grid, turn pointer and liveness tracking. It is plain data plus
// mutations; the dispatcher serializes access (see dispatch package).
type Session struct {
	Name     string
	Capacity int
	Owner    string
	Phase    Phase

	// Roster order drives turn rotation.
	Roster []string

	// MapPieces[i] is the region set for slot i; Slots[i] is the player
	// bound to that slot ("" = unassigned).
	MapPieces [][]int
	Slots     []string

	Field Grid

	Placed map[string]bool
	Ready  map[string]bool

	NextShooter string
	Active      []string
	Alive       []string
}

// NewSession creates a lobby-phase session with the owner in slot 0.
func NewSession(name string, capacity int, owner string) *Session {
	return &Session{
		Name:        name,
		Capacity:    capacity,
		Owner:       owner,
		Phase:       PhaseLobby,
		Roster:      []string{owner},
		MapPieces:   Partition(capacity, PiecesPerPlayer),
		Slots:       append([]string{owner}, make([]string, capacity-1)...),
		Field:       NewGrid(capacity),
		Placed:      make(map[string]bool),
		Ready:       make(map[string]bool),
		NextShooter: owner,
	}
}

// InfoRecord is the lobby-list summary of a session.
type InfoRecord struct {
	SessionName string   `json:"session_name"`
	Owner       string   `json:"owner"`
	InGame      bool     `json:"in_game"`
	PlayerCount int      `json:"player_count"`
	MaxCount    int      `json:"max_count"`
	Ready       []string `json:"ready"`
	Map         [][]int  `json:"map"`
}

func (s *Session) Info() InfoRecord {
	ready := make([]string, 0, len(s.Ready))
	for _, p := range s.Roster {
		if s.Ready[p] {
			ready = append(ready, p)
		}
	}
	return InfoRecord{
		SessionName: s.Name,
		Owner:       s.Owner,
		InGame:      s.Phase == PhaseInGame,
		PlayerCount: len(s.Roster),
		MaxCount:    s.Capacity,
		Ready:       ready,
		Map:         s.MapPieces,
	}
}

func (s *Session) slotOf(user string) (int, bool) {
	for i, name := range s.Slots {
		if name != "" && name == user {
			return i, true
		}
	}
	return 0, false
}

// AssignPieces binds user to the first unassigned slot and returns that
// slot's region set, or nil if every slot is taken.
func (s *Session) AssignPieces(user string) []int {
	if i, ok := s.slotOf(user); ok {
		return s.MapPieces[i]
	}
	for i, name := range s.Slots {
		if name == "" {
			s.Slots[i] = user
			return s.MapPieces[i]
		}
	}
	return nil
}

// UnassignPieces frees the slot bound to user, if any.
func (s *Session) UnassignPieces(user string) {
	if i, ok := s.slotOf(user); ok {
		s.Slots[i] = ""
	}
}

// Pieces returns the region set assigned to user, or nil.
func (s *Session) Pieces(user string) []int {
	if i, ok := s.slotOf(user); ok {
		return s.MapPieces[i]
	}
	return nil
}

// PlaceShips wipes the user's regions and marks every coordinate in
// coords as a ship cell. Coordinates are trusted; shape and adjacency
// are validated client-side.
func (s *Session) PlaceShips(user string, coords []Coord) error {
	if err := s.RemoveShips(user); err != nil {
		return err
	}
	for _, c := range coords {
		if s.inBounds(c) {
			s.Field[c.Row][c.Col] = CellShip
		}
	}
	s.Placed[user] = true
	return nil
}

// RemoveShips resets every cell in the user's assigned regions to water,
// regardless of prior hit state.
func (s *Session) RemoveShips(user string) error {
	slot, ok := s.slotOf(user)
	if !ok {
		return ErrNoPiecesAssigned
	}
	regions := s.MapPieces[slot]
	for r := range s.Field {
		for c := range s.Field[r] {
			if slices.Contains(regions, RegionOf(Coord{Row: r, Col: c})) {
				s.Field[r][c] = CellEmpty
			}
		}
	}
	delete(s.Placed, user)
	return nil
}

// CheckReady reports whether the game can start: every roster member has
// placed ships and every non-owner member has toggled ready.
func (s *Session) CheckReady(owner string) bool {
	for _, p := range s.Roster {
		if !s.Placed[p] {
			return false
		}
		if p != owner && !s.Ready[p] {
			return false
		}
	}
	return true
}

// StartGame flips the session into play; everyone on the roster starts
// reachable and afloat.
func (s *Session) StartGame() {
	s.Phase = PhaseInGame
	s.Active = slices.Clone(s.Roster)
	s.Alive = slices.Clone(s.Roster)
}

// Reset returns the session to the lobby after a game. The roster
// collapses to the players who were still reachable; the owner keeps
// the session.
func (s *Session) Reset() {
	s.Phase = PhaseLobby
	s.Field = NewGrid(s.Capacity)
	clear(s.Ready)
	clear(s.Placed)
	s.NextShooter = s.Owner
	s.Roster = slices.Clone(s.Active)
	s.Active = nil
	s.Alive = nil
}

// CleanPlayerInfo is the composite teardown used on leave and eviction:
// ships, roster membership, piece slot and all liveness sets.
func (s *Session) CleanPlayerInfo(user string) {
	_ = s.RemoveShips(user) // unassigned users have no ships to remove
	s.Roster = removeName(s.Roster, user)
	s.UnassignPieces(user)
	delete(s.Ready, user)
	delete(s.Placed, user)
	s.Active = removeName(s.Active, user)
	s.Alive = removeName(s.Alive, user)
}

func (s *Session) inBounds(c Coord) bool {
	return c.Row >= 0 && c.Row < len(s.Field) && c.Col >= 0 && c.Col < len(s.Field[c.Row])
}

// CheckShot resolves a shot at c. Already-shot cells report a miss and
// stay untouched, so a wasted turn never double-counts.
func (s *Session) CheckShot(c Coord) ShotResult {
	if !s.inBounds(c) {
		return ShotMiss
	}
	switch s.Field[c.Row][c.Col] {
	case CellEmpty:
		s.Field[c.Row][c.Col] = CellShotEmpty
		return ShotMiss
	case CellShip:
		s.Field[c.Row][c.Col] = CellShotShip
		if s.IsSunk(c) {
			return ShotSunk
		}
		return ShotHit
	default:
		return ShotMiss
	}
}

func isShipCell(v Cell) bool { return v == CellShip || v == CellShotShip }

// ShipCoordinates reconstructs the ship segment touching c: the probe
// cell first, then contiguous ship cells walking left, right, up and
// down, stopping at the first non-ship cell or the grid edge. Ships are
// straight lines of length 1..4, so 3 steps out per direction suffice
// but we walk the reference's 4.
func (s *Session) ShipCoordinates(c Coord) []Coord {
	if !s.inBounds(c) || !isShipCell(s.Field[c.Row][c.Col]) {
		return nil
	}
	coords := []Coord{c}
	dirs := []Coord{{0, -1}, {0, 1}, {-1, 0}, {1, 0}}
	for _, d := range dirs {
		for step := 1; step <= PiecesPerPlayer; step++ {
			next := Coord{Row: c.Row + d.Row*step, Col: c.Col + d.Col*step}
			if !s.inBounds(next) || !isShipCell(s.Field[next.Row][next.Col]) {
				break
			}
			coords = append(coords, next)
		}
	}
	return coords
}

// IsSunk reports whether the ship touching c has no intact cells left.
func (s *Session) IsSunk(c Coord) bool {
	for _, sc := range s.ShipCoordinates(c) {
		if s.Field[sc.Row][sc.Col] != CellShotShip {
			return false
		}
	}
	return true
}

// ShipOwner resolves which player owns the region containing c. The
// second return is false when the region is unassigned, which would be a
// bookkeeping bug upstream; callers treat it as fatal to the operation.
func (s *Session) ShipOwner(c Coord) (string, bool) {
	region := RegionOf(c)
	for slot, regions := range s.MapPieces {
		if slices.Contains(regions, region) {
			if name := s.Slots[slot]; name != "" {
				return name, true
			}
			return "", false
		}
	}
	return "", false
}

// NextPlayer advances the turn pointer to the next roster member who is
// both reachable and afloat, wrapping past the end. With nobody eligible
// the pointer stays put.
func (s *Session) NextPlayer() string {
	start := slices.Index(s.Roster, s.NextShooter)
	if start < 0 {
		return s.NextShooter
	}
	n := len(s.Roster)
	for i := 1; i <= n; i++ {
		cand := s.Roster[(start+i)%n]
		if slices.Contains(s.Active, cand) && slices.Contains(s.Alive, cand) {
			s.NextShooter = cand
			return cand
		}
	}
	return s.NextShooter
}

// CheckEndGame scans the battlefield for surviving ships and reports the
// first still-alive player who has none left, removing them from the
// alive set. One elimination per call; ships never span owners, so one
// shot can only eliminate one player.
func (s *Session) CheckEndGame() (string, bool) {
	surviving := make(map[string]bool)
	for r := range s.Field {
		for c := range s.Field[r] {
			if s.Field[r][c] != CellShip {
				continue
			}
			if owner, ok := s.ShipOwner(Coord{Row: r, Col: c}); ok {
				surviving[owner] = true
			}
		}
	}
	for _, p := range s.Roster {
		if slices.Contains(s.Alive, p) && !surviving[p] {
			s.Alive = removeName(s.Alive, p)
			return p, true
		}
	}
	return "", false
}

// PlayerBattlefield renders the grid as user is allowed to see it: own
// regions unmodified, everything else redacted down to shot markers
// (intact ships hidden, hits downgraded to splashes).
func (s *Session) PlayerBattlefield(user string) Grid {
	own := s.Pieces(user)
	view := make(Grid, len(s.Field))
	for r := range s.Field {
		view[r] = slices.Clone(s.Field[r])
		for c := range view[r] {
			if slices.Contains(own, RegionOf(Coord{Row: r, Col: c})) {
				continue
			}
			switch view[r][c] {
			case CellShotShip:
				view[r][c] = CellShotEmpty
			case CellShip:
				view[r][c] = CellEmpty
			}
		}
	}
	return view
}

func removeName(list []string, name string) []string {
	if i := slices.Index(list, name); i >= 0 {
		return slices.Delete(list, i, i+1)
	}
	return list
}
