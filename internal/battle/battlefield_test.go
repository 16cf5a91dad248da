package battle

import "testing"

func TestPartitionDisjointCoverage(t *testing.T) {
	for capacity := 2; capacity <= 6; capacity++ {
		pieces := Partition(capacity, PiecesPerPlayer)
		if len(pieces) != capacity {
			t.Fatalf("capacity %d: got %d pieces", capacity, len(pieces))
		}
		seen := map[int]bool{}
		for _, piece := range pieces {
			if len(piece) != PiecesPerPlayer {
				t.Fatalf("capacity %d: piece size %d", capacity, len(piece))
			}
			for _, region := range piece {
				if region < 0 || region >= capacity*PiecesPerPlayer {
					t.Fatalf("capacity %d: region %d out of range", capacity, region)
				}
				if seen[region] {
					t.Fatalf("capacity %d: region %d dealt twice", capacity, region)
				}
				seen[region] = true
			}
		}
		if len(seen) != capacity*PiecesPerPlayer {
			t.Fatalf("capacity %d: union covers %d regions", capacity, len(seen))
		}
	}
}

func TestRegionMapping(t *testing.T) {
	cases := []struct {
		name   string
		coord  Coord
		region int
		buffer bool
	}{
		{"origin", Coord{0, 0}, 0, false},
		{"first block interior", Coord{4, 4}, 0, false},
		{"buffer column", Coord{0, 5}, 0, true},
		{"buffer row", Coord{5, 0}, 0, true},
		{"second column block", Coord{2, 7}, 1, false},
		{"second row block", Coord{6, 0}, 4, false},
		{"second row second block", Coord{8, 7}, 5, false},
		{"last column block", Coord{0, 22}, 3, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := RegionOf(tc.coord); got != tc.region {
				t.Fatalf("RegionOf(%v) = %d, want %d", tc.coord, got, tc.region)
			}
			if got := IsBuffer(tc.coord); got != tc.buffer {
				t.Fatalf("IsBuffer(%v) = %v, want %v", tc.coord, got, tc.buffer)
			}
		})
	}
}

func TestGridSizing(t *testing.T) {
	for capacity := 2; capacity <= 6; capacity++ {
		g := NewGrid(capacity)
		if len(g) != 6*capacity-1 {
			t.Fatalf("capacity %d: %d rows", capacity, len(g))
		}
		for _, row := range g {
			if len(row) != 23 {
				t.Fatalf("capacity %d: %d cols", capacity, len(row))
			}
		}
	}
}
