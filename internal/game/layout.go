package game

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

// Layout is a square grid snapshot of ship cells. Cell: 0=water, 1=ship.
type Layout struct {
	Cells [][]uint8 `json:"cells"`
}

func NewLayout(size int) Layout {
	cells := make([][]uint8, size)
	for r := range cells {
		cells[r] = make([]uint8, size)
	}
	return Layout{Cells: cells}
}

func (l Layout) Size() int { return len(l.Cells) }

// At returns the cell value, or 0 off the board.
func (l Layout) At(c Coord) uint8 {
	if !c.In(l.Size()) {
		return 0
	}
	return l.Cells[c.Row][c.Col]
}

// Index is the row-major position of c, matching Flatten.
func (l Layout) Index(c Coord) int { return c.Row*l.Size() + c.Col }

// Check verifies the grid is square and binary.
func (l Layout) Check() error {
	_, err := l.count()
	return err
}

// ShipCells counts the ship cells of a well-formed layout.
func (l Layout) ShipCells() (int, error) { return l.count() }

// Validate checks the grid is square, binary, and holds exactly shipCells ship cells.
func (l Layout) Validate(shipCells int) error {
	total, err := l.count()
	if err != nil {
		return err
	}
	if total != shipCells {
		return fmt.Errorf("layout must contain exactly %d ship cells, has %d", shipCells, total)
	}
	return nil
}

func (l Layout) count() (int, error) {
	n := l.Size()
	if n == 0 {
		return 0, errors.New("layout is empty")
	}
	total := 0
	for r, row := range l.Cells {
		if len(row) != n {
			return 0, fmt.Errorf("layout row %d has %d cells, want %d", r, len(row), n)
		}
		for c, v := range row {
			if v > 1 {
				return 0, fmt.Errorf("layout cell (%d, %d) is %d, want 0 or 1", r, c, v)
			}
			total += int(v)
		}
	}
	return total, nil
}

func (l Layout) Flatten() []uint8 {
	n := l.Size()
	out := make([]uint8, 0, n*n)
	for _, row := range l.Cells {
		out = append(out, row...)
	}
	return out
}

// RandomLayout places one ship per length on an empty ocean and snapshots it.
func RandomLayout(size int, lengths []int, rng *rand.Rand, opts ...OceanOption) (Layout, error) {
	o := NewOcean(size, rng, opts...)
	for _, l := range lengths {
		if _, err := o.AddRandomShip(l); err != nil {
			return Layout{}, err
		}
	}
	return o.Layout(), nil
}
