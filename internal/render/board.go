package render

import (
	"fmt"
	"io"
	"strings"

	"battleship/internal/app"
	"battleship/internal/game"
)

const (
	unknown  = '-'
	shipMark = '1'
	hitMark  = 'X'
	missMark = '*'
)

// Board is a text grid of one ocean as a single shooter sees it. Rows are
// labelled A, B, C...; columns are numbered from 1.
//
// Each cell is drawn three wide. A shot only overwrites the middle character,
// so a hit on open water reads "-X-" and a hit on a shown ship " X ".
type Board struct {
	title string
	cells [][]byte // one symbol per cell
	ships [][]bool // cells drawn as ships before any shot
}

func newBoard(title string, size int) *Board {
	cells := make([][]byte, size)
	ships := make([][]bool, size)
	for r := range cells {
		cells[r] = []byte(strings.Repeat(string(unknown), size))
		ships[r] = make([]bool, size)
	}
	return &Board{title: title, cells: cells, ships: ships}
}

// NewShipBoard shows the owner's ships, to be marked with the opponent's shots.
func NewShipBoard(o *game.Ocean) *Board {
	b := newBoard("SHIP BOARD", o.Size())
	for r := range b.cells {
		for c := range b.cells[r] {
			if o.IsOccupied(r, c) {
				b.cells[r][c] = shipMark
				b.ships[r][c] = true
			}
		}
	}
	return b
}

// NewTargetBoard starts blank and only learns from the shooter's results.
func NewTargetBoard(size int) *Board { return newBoard("TARGET BOARD", size) }

func (b *Board) Size() int { return len(b.cells) }

// Mark records a shot result. Coordinates off the board are ignored.
func (b *Board) Mark(c game.Coord, outcome game.Outcome) {
	if !c.In(b.Size()) {
		return
	}
	if outcome.IsHit() {
		b.cells[c.Row][c.Col] = hitMark
	} else {
		b.cells[c.Row][c.Col] = missMark
	}
}

// Symbol returns the current symbol at c.
func (b *Board) Symbol(c game.Coord) byte {
	if !c.In(b.Size()) {
		return 0
	}
	return b.cells[c.Row][c.Col]
}

// Observer marks shooter's shots on b and ignores everyone else's.
func (b *Board) Observer(shooter app.Side) app.Observer {
	return app.ObserverFunc(func(ev app.ShotEvent) {
		if ev.Shooter == shooter {
			b.Mark(game.Coord{Row: ev.Row, Col: ev.Col}, ev.Outcome)
		}
	})
}

func (b *Board) String() string {
	var sb strings.Builder
	sb.WriteString(b.title)
	sb.WriteByte('\n')
	sb.WriteString("   ")
	for c := range b.cells {
		fmt.Fprintf(&sb, "%2d ", c+1)
	}
	sb.WriteByte('\n')
	for r, row := range b.cells {
		sb.WriteByte(byte('A' + r))
		sb.WriteString("  ")
		for c, v := range row {
			edge := byte(unknown)
			if b.ships[r][c] {
				edge = ' '
			}
			sb.Write([]byte{edge, v, edge})
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func (b *Board) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, b.String())
	return int64(n), err
}
