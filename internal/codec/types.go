package codec

import (
	"fmt"
	"math/big"
	"strings"

	"battleship/internal/game"
	"battleship/internal/zk"
)

// Commitment is what the computer publishes before the first shot.
type Commitment struct {
	RootHex   string `json:"root_hex"`
	BoardSize int    `json:"board_size"`
	ShipCells int    `json:"ship_cells"`
	Proofs    bool   `json:"proofs"`
}

// Reveal opens a commitment once the game is over.
type Reveal struct {
	Layout  game.Layout `json:"layout"`
	SaltHex string      `json:"salt_hex"`
}

type ShotProof struct {
	Proof  []byte    `json:"proof"`
	Public zk.Public `json:"public"` // contains root, cell index and the hit bit
}

// FormatHex renders a field element as 0x-prefixed hex.
func FormatHex(x *big.Int) string { return fmt.Sprintf("0x%x", x) }

// ParseHex parses a 0x-prefixed hex field element.
func ParseHex(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if len(s) < 3 || !strings.EqualFold(s[:2], "0x") {
		return nil, fmt.Errorf("invalid hex %q: missing 0x prefix", s)
	}
	n, ok := new(big.Int).SetString(s[2:], 16)
	if !ok {
		return nil, fmt.Errorf("invalid hex %q", s)
	}
	return n, nil
}
