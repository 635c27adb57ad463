package game

import (
	"fmt"
	"math/rand/v2"

	"github.com/dolthub/swiss"
)

// DefaultPlacementAttempts bounds how many origins AddRandomShip tries before
// giving up with ErrPlacementExhausted.
const DefaultPlacementAttempts = 1000

// ShipID addresses a ship inside its Ocean. IDs are stable; a sunk ship's slot
// is tombstoned rather than reused.
type ShipID int

// Ocean is one side's board: its live fleet, a row -> column-set occupancy
// index for hit testing, and a cell -> ship owner index.
//
// The three structures are only ever changed together by insert and
// RecordHit.
type Ocean struct {
	size     int
	attempts int
	rng      *rand.Rand

	ships     []*Ship
	live      int
	occupancy map[int]map[int]struct{}
	owners    *swiss.Map[Coord, ShipID]
}

type OceanOption func(*Ocean)

// PlacementAttempts overrides DefaultPlacementAttempts. Values below one are ignored.
func PlacementAttempts(n int) OceanOption {
	return func(o *Ocean) {
		if n > 0 {
			o.attempts = n
		}
	}
}

func NewOcean(size int, rng *rand.Rand, opts ...OceanOption) *Ocean {
	o := &Ocean{
		size:      size,
		attempts:  DefaultPlacementAttempts,
		rng:       rng,
		occupancy: make(map[int]map[int]struct{}),
		owners:    swiss.NewMap[Coord, ShipID](uint32(size * 2)),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Ocean) Size() int { return o.size }

// AddShip adds a ship with fixed cells, e.g. a seed fleet. The ocean keeps its
// own copy of the cells.
func (o *Ocean) AddShip(s *Ship) (ShipID, error) {
	if s.Len() == 0 {
		return -1, ErrEmptyShip
	}
	if !s.WithinBounds(o.size) {
		return -1, fmt.Errorf("%w: ship %v leaves %dx%d board", ErrInvalidCoordinate, s.Cells(), o.size, o.size)
	}
	if o.overlaps(s) {
		return -1, fmt.Errorf("%w: %v", ErrOverlap, s.Cells())
	}
	return o.insert(s), nil
}

// AddRandomShip places a ship of the given length at a random origin and
// direction that keeps it on the board and clear of the fleet.
func (o *Ocean) AddRandomShip(length int) (ShipID, error) {
	if length < 1 || length > o.size {
		return -1, fmt.Errorf("%w: length %d on %dx%d board", ErrPlacementExhausted, length, o.size, o.size)
	}
	candidate := &Ship{}
	dirs := Directions
	for attempt := 0; attempt < o.attempts; attempt++ {
		origin, ok := o.PickRandomOpenOrigin()
		if !ok {
			continue
		}
		o.rng.Shuffle(len(dirs), func(i, j int) { dirs[i], dirs[j] = dirs[j], dirs[i] })
		for _, d := range dirs {
			candidate.PlaceFromOrigin(origin, length, d)
			if candidate.WithinBounds(o.size) && !o.overlaps(candidate) {
				return o.insert(candidate), nil
			}
		}
	}
	return -1, fmt.Errorf("%w: length %d after %d origins", ErrPlacementExhausted, length, o.attempts)
}

// PickRandomOpenOrigin picks a uniformly random row, then a uniformly random
// column in that row that no ship occupies. It reports false when the chosen
// row is full.
func (o *Ocean) PickRandomOpenOrigin() (Coord, bool) {
	row := o.rng.IntN(o.size)
	taken := o.occupancy[row]
	if len(taken) == 0 {
		return Coord{Row: row, Col: o.rng.IntN(o.size)}, true
	}
	free := make([]int, 0, o.size-len(taken))
	for col := 0; col < o.size; col++ {
		if _, ok := taken[col]; !ok {
			free = append(free, col)
		}
	}
	if len(free) == 0 {
		return Coord{}, false
	}
	return Coord{Row: row, Col: free[o.rng.IntN(len(free))]}, true
}

func (o *Ocean) IsOccupied(row, col int) bool {
	_, ok := o.occupancy[row][col]
	return ok
}

// RecordHit applies a hit on an occupied cell. It reports Hit, Sunk, or
// FleetEliminated when the last ship went down. Calling it on a cell that is
// not occupied is a programming error reported as ErrInconsistentOccupancy;
// nothing is mutated in that case.
func (o *Ocean) RecordHit(row, col int) (Outcome, error) {
	c := Coord{Row: row, Col: col}
	if !o.IsOccupied(row, col) {
		return Miss, fmt.Errorf("%w: no ship at %v", ErrInconsistentOccupancy, c)
	}
	id, ok := o.owners.Get(c)
	if !ok || o.ships[id] == nil {
		return Miss, fmt.Errorf("%w: cell %v has no owner", ErrInconsistentOccupancy, c)
	}
	ship := o.ships[id]
	res := ship.ApplyHit(c)
	if res == Miss {
		return Miss, fmt.Errorf("%w: ship %d does not hold %v", ErrInconsistentOccupancy, id, c)
	}

	cols := o.occupancy[row]
	delete(cols, col)
	if len(cols) == 0 {
		delete(o.occupancy, row)
	}
	o.owners.Delete(c)

	if res == Sunk {
		o.ships[id] = nil
		o.live--
		if o.live == 0 {
			return FleetEliminated, nil
		}
	}
	return res, nil
}

// Fleet returns the remaining cells of every live ship.
func (o *Ocean) Fleet() map[ShipID][]Coord {
	out := make(map[ShipID][]Coord, o.live)
	for id, s := range o.ships {
		if s != nil {
			out[ShipID(id)] = s.Cells()
		}
	}
	return out
}

func (o *Ocean) ShipCount() int     { return o.live }
func (o *Ocean) OccupiedCount() int { return o.owners.Count() }

// Layout snapshots the occupied cells.
func (o *Ocean) Layout() Layout {
	l := NewLayout(o.size)
	for row, cols := range o.occupancy {
		for col := range cols {
			l.Cells[row][col] = 1
		}
	}
	return l
}

// Validate checks that the fleet and both indexes agree: every ship is on the
// board and disjoint from every other, and every indexed cell belongs to
// exactly the ship the owner index names.
func (o *Ocean) Validate() error {
	live, cells := 0, 0
	for id, s := range o.ships {
		if s == nil {
			continue
		}
		live++
		if s.Sunk() {
			return fmt.Errorf("ship %d is sunk but still in the fleet", id)
		}
		if !s.WithinBounds(o.size) {
			return fmt.Errorf("ship %d leaves the board: %v", id, s.Cells())
		}
		for other := id + 1; other < len(o.ships); other++ {
			if o.ships[other] != nil && s.Intersects(o.ships[other]) {
				return fmt.Errorf("ships %d and %d overlap", id, other)
			}
		}
		for _, c := range s.Cells() {
			cells++
			if !o.IsOccupied(c.Row, c.Col) {
				return fmt.Errorf("%w: %v of ship %d missing from occupancy", ErrInconsistentOccupancy, c, id)
			}
			if owner, ok := o.owners.Get(c); !ok || owner != ShipID(id) {
				return fmt.Errorf("%w: %v of ship %d has owner %d", ErrInconsistentOccupancy, c, id, owner)
			}
		}
	}
	if live != o.live {
		return fmt.Errorf("live count %d, fleet holds %d", o.live, live)
	}
	indexed := 0
	for _, cols := range o.occupancy {
		if len(cols) == 0 {
			return fmt.Errorf("%w: empty occupancy row", ErrInconsistentOccupancy)
		}
		indexed += len(cols)
	}
	if indexed != cells || o.owners.Count() != cells {
		return fmt.Errorf("%w: fleet has %d cells, occupancy %d, owners %d",
			ErrInconsistentOccupancy, cells, indexed, o.owners.Count())
	}
	return nil
}

func (o *Ocean) overlaps(s *Ship) bool {
	for c := range s.cells {
		if o.owners.Has(c) {
			return true
		}
	}
	return false
}

func (o *Ocean) insert(s *Ship) ShipID {
	id := ShipID(len(o.ships))
	o.ships = append(o.ships, NewShip(s.Cells()...))
	o.live++
	for c := range s.cells {
		cols, ok := o.occupancy[c.Row]
		if !ok {
			cols = make(map[int]struct{})
			o.occupancy[c.Row] = cols
		}
		cols[c.Col] = struct{}{}
		o.owners.Put(c, id)
	}
	return id
}
