package battle

import "math/rand"

// Cell is the state of one battlefield square.
type Cell int

const (
	CellShotEmpty Cell = -1
	CellEmpty     Cell = 0
	CellShotShip  Cell = 1
	CellShip      Cell = 2
)

// ShotResult is the outcome of firing at a square.
type ShotResult int

const (
	ShotMiss ShotResult = 0
	ShotHit  ShotResult = 1
	ShotSunk ShotResult = 2
)

const (
	// PiecesPerPlayer is how many map regions each slot gets.
	PiecesPerPlayer = 4

	// Regions are 6x6 blocks: 5 playable cells plus a 1-cell water buffer
	// on the right/bottom edge. Four blocks per battlefield row, with the
	// trailing buffer column/row cut off at the grid edge.
	blockSize    = 6
	blocksPerRow = 4

	// GridCols is fixed: 20 playable columns plus 3 interior buffers.
	GridCols = blocksPerRow*blockSize - 1
)

// GridRows returns the battlefield height for a session capacity.
func GridRows(capacity int) int { return capacity*blockSize - 1 }

// Coord addresses one battlefield cell.
type Coord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Grid is a battlefield or a redacted view of one.
type Grid [][]Cell

// NewGrid returns an all-water battlefield sized for capacity players.
func NewGrid(capacity int) Grid {
	g := make(Grid, GridRows(capacity))
	for i := range g {
		g[i] = make([]Cell, GridCols)
	}
	return g
}

// RegionOf maps a cell to its region index.
func RegionOf(c Coord) int {
	return (c.Row/blockSize)*blocksPerRow + c.Col/blockSize
}

// IsBuffer reports whether the cell is buffer water between regions.
// Buffer cells are never assignable to a ship.
func IsBuffer(c Coord) bool {
	return c.Row%blockSize == blockSize-1 || c.Col%blockSize == blockSize-1
}

// Partition deals out capacity disjoint sets of perPlayer region indices,
// drawn uniformly without replacement from [0, capacity*perPlayer).
func Partition(capacity, perPlayer int) [][]int {
	order := rand.Perm(capacity * perPlayer)
	pieces := make([][]int, capacity)
	for i := range pieces {
		pieces[i] = append([]int(nil), order[i*perPlayer:(i+1)*perPlayer]...)
	}
	return pieces
}
