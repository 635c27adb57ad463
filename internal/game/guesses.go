package game

import (
	"fmt"
	"math/rand/v2"
)

// GuessTracker remembers which cells one guesser has already fired at and
// hands out random unguessed cells.
//
// Rows drop out of the tracker once every column in them has been guessed, so
// picking a row never lands on a dead one.
type GuessTracker struct {
	size int
	rng  *rand.Rand

	guessed map[int]map[int]struct{}
	rows    []int       // rows with at least one unguessed column
	rowPos  map[int]int // row -> index in rows
	count   int
}

func NewGuessTracker(size int, rng *rand.Rand) *GuessTracker {
	g := &GuessTracker{
		size:    size,
		rng:     rng,
		guessed: make(map[int]map[int]struct{}, size),
		rows:    make([]int, size),
		rowPos:  make(map[int]int, size),
	}
	for row := 0; row < size; row++ {
		g.guessed[row] = make(map[int]struct{})
		g.rows[row] = row
		g.rowPos[row] = row
	}
	return g
}

func (g *GuessTracker) IsUnguessed(row, col int) bool {
	set, ok := g.guessed[row]
	if !ok || col < 0 || col >= g.size {
		return false
	}
	_, seen := set[col]
	return !seen
}

// CheckGuess reports why (row, col) could not be guessed, without recording it.
func (g *GuessTracker) CheckGuess(row, col int) error {
	c := Coord{Row: row, Col: col}
	if err := checkCoord(c, g.size); err != nil {
		return err
	}
	if !g.IsUnguessed(row, col) {
		return fmt.Errorf("%w: %v", ErrAlreadyGuessed, c)
	}
	return nil
}

// RecordGuess marks (row, col) as guessed. Nothing changes when it fails.
func (g *GuessTracker) RecordGuess(row, col int) error {
	if err := g.CheckGuess(row, col); err != nil {
		return err
	}
	set := g.guessed[row]
	set[col] = struct{}{}
	g.count++
	if len(set) == g.size {
		g.dropRow(row)
	}
	return nil
}

// NextRandomGuess picks a uniformly random open row, then a uniformly random
// unguessed column in it, and records the guess.
func (g *GuessTracker) NextRandomGuess() (Coord, error) {
	if len(g.rows) == 0 {
		return Coord{}, ErrBoardExhausted
	}
	row := g.rows[g.rng.IntN(len(g.rows))]
	set := g.guessed[row]
	free := make([]int, 0, g.size-len(set))
	for col := 0; col < g.size; col++ {
		if _, ok := set[col]; !ok {
			free = append(free, col)
		}
	}
	c := Coord{Row: row, Col: free[g.rng.IntN(len(free))]}
	if err := g.RecordGuess(c.Row, c.Col); err != nil {
		return Coord{}, err
	}
	return c, nil
}

// Guessed is the number of guesses recorded so far.
func (g *GuessTracker) Guessed() int { return g.count }

// Remaining is the number of cells not yet guessed.
func (g *GuessTracker) Remaining() int { return g.size*g.size - g.count }

// Rows is the number of rows that still have an unguessed column.
func (g *GuessTracker) Rows() int { return len(g.rows) }

func (g *GuessTracker) dropRow(row int) {
	i := g.rowPos[row]
	last := len(g.rows) - 1
	g.rows[i] = g.rows[last]
	g.rowPos[g.rows[i]] = i
	g.rows = g.rows[:last]
	delete(g.rowPos, row)
	delete(g.guessed, row)
}
