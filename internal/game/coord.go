package game

import "fmt"

// Coord is a (row, column) cell on a square board.
type Coord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// In reports whether c lies on a size x size board.
func (c Coord) In(size int) bool {
	return c.Row >= 0 && c.Row < size && c.Col >= 0 && c.Col < size
}

func (c Coord) String() string { return fmt.Sprintf("(%d, %d)", c.Row, c.Col) }

func compareCoords(a, b Coord) int {
	if a.Row != b.Row {
		return a.Row - b.Row
	}
	return a.Col - b.Col
}

// Direction is the axis a ship extends along from its origin.
type Direction int

const (
	North Direction = iota // decreasing row
	South                  // increasing row
	East                   // increasing column
	West                   // decreasing column
)

// Directions lists every placement direction.
var Directions = [...]Direction{North, South, East, West}

func (d Direction) String() string {
	switch d {
	case North:
		return "North"
	case South:
		return "South"
	case East:
		return "East"
	case West:
		return "West"
	default:
		return "Unknown"
	}
}

func (d Direction) step() (dr, dc int) {
	switch d {
	case North:
		return -1, 0
	case South:
		return 1, 0
	case East:
		return 0, 1
	case West:
		return 0, -1
	default:
		return 0, 0
	}
}

// Outcome is the result of a shot against a ship or a fleet.
type Outcome int

const (
	Miss Outcome = iota
	Hit
	Sunk
	FleetEliminated
)

func (o Outcome) String() string {
	switch o {
	case Miss:
		return "MISS"
	case Hit:
		return "HIT"
	case Sunk:
		return "SHIP SUNK"
	case FleetEliminated:
		return "FLEET ELIMINATED"
	default:
		return "UNKNOWN"
	}
}

// IsHit reports whether the shot struck a ship.
func (o Outcome) IsHit() bool { return o != Miss }
