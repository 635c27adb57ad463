package game

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCoordinate     = errors.New("invalid coordinate")
	ErrAlreadyGuessed        = errors.New("coordinate already guessed")
	ErrInconsistentOccupancy = errors.New("occupancy index out of sync with fleet")
	ErrPlacementExhausted    = errors.New("board too full to place ship")
	ErrBoardExhausted        = errors.New("every cell has been guessed")
	ErrOverlap               = errors.New("ship overlaps fleet")
	ErrEmptyShip             = errors.New("ship has no cells")
)

func checkCoord(c Coord, size int) error {
	if !c.In(size) {
		return fmt.Errorf("%w: %v outside %dx%d board", ErrInvalidCoordinate, c, size, size)
	}
	return nil
}
