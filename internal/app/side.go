package app

import "battleship/internal/config"

// Stage is the session lifecycle: Setup -> InProgress -> Terminated.
type Stage int

const (
	StageSetup Stage = iota
	StageInProgress
	StageTerminated
)

func (s Stage) String() string {
	switch s {
	case StageSetup:
		return "Setup"
	case StageInProgress:
		return "InProgress"
	case StageTerminated:
		return "Terminated"
	default:
		return "Unknown"
	}
}

// Side is one of the two players.
type Side int

const (
	Computer Side = iota
	Player
)

var sides = [...]Side{Computer, Player}

func (s Side) String() string {
	switch s {
	case Computer:
		return "computer"
	case Player:
		return "player"
	default:
		return "unknown"
	}
}

func (s Side) Opponent() Side {
	if s == Computer {
		return Player
	}
	return Computer
}

// ParseSide accepts the same names as config's first_turn.
func ParseSide(s string) (Side, error) {
	name, err := config.CanonicalSide(s)
	if err != nil {
		return 0, err
	}
	if name == "player" {
		return Player, nil
	}
	return Computer, nil
}

func (s Side) MarshalText() ([]byte, error) { return []byte(s.String()), nil }
