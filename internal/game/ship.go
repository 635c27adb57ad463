package game

import "slices"

// Ship is a set of occupied cells. Cells are removed as they are hit; a ship
// with no cells left is sunk.
type Ship struct {
	cells map[Coord]struct{}
}

func NewShip(cells ...Coord) *Ship {
	s := &Ship{cells: make(map[Coord]struct{}, len(cells))}
	for _, c := range cells {
		s.cells[c] = struct{}{}
	}
	return s
}

// ApplyHit removes c from the ship. It returns Miss without touching the ship
// when c is not one of its cells.
func (s *Ship) ApplyHit(c Coord) Outcome {
	if _, ok := s.cells[c]; !ok {
		return Miss
	}
	delete(s.cells, c)
	if len(s.cells) == 0 {
		return Sunk
	}
	return Hit
}

func (s *Ship) Has(c Coord) bool {
	_, ok := s.cells[c]
	return ok
}

// Intersects reports whether the two ships share any cell.
func (s *Ship) Intersects(other *Ship) bool {
	small, large := s, other
	if len(small.cells) > len(large.cells) {
		small, large = large, small
	}
	for c := range small.cells {
		if large.Has(c) {
			return true
		}
	}
	return false
}

// WithinBounds reports whether every cell lies on a size x size board.
func (s *Ship) WithinBounds(size int) bool {
	for c := range s.cells {
		if !c.In(size) {
			return false
		}
	}
	return true
}

// PlaceFromOrigin replaces the ship's cells with length consecutive cells
// starting at origin and extending in dir. Bounds and overlap are left to the
// caller.
func (s *Ship) PlaceFromOrigin(origin Coord, length int, dir Direction) {
	s.cells = make(map[Coord]struct{}, length)
	dr, dc := dir.step()
	for i := 0; i < length; i++ {
		s.cells[Coord{Row: origin.Row + i*dr, Col: origin.Col + i*dc}] = struct{}{}
	}
}

// Cells returns the remaining cells in row-major order.
func (s *Ship) Cells() []Coord {
	out := make([]Coord, 0, len(s.cells))
	for c := range s.cells {
		out = append(out, c)
	}
	slices.SortFunc(out, compareCoords)
	return out
}

func (s *Ship) Len() int   { return len(s.cells) }
func (s *Ship) Sunk() bool { return len(s.cells) == 0 }
