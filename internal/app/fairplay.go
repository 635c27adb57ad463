package app

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"

	"battleship/internal/codec"
	"battleship/internal/game"
	"battleship/internal/merkle"
	"battleship/internal/zk"
)

var (
	ErrProofRejected = errors.New("shot proof rejected")
	ErrAuditFailed   = errors.New("fair play audit failed")
)

// Commitment binds the computer to its starting fleet layout. Only the salted
// root is public until Reveal.
type Commitment struct {
	layout    game.Layout
	shipCells int
	tree   *merkle.Tree
	salt   *big.Int
	root   *big.Int
	keys   *zk.Keys // nil when shot proofs are off
}

// NewSalt draws a random salt below the BN254 scalar field modulus.
func NewSalt() (*big.Int, error) {
	// this is to make root unique for same boards
	saltBytes := make([]byte, 32)
	if _, err := rand.Read(saltBytes); err != nil {
		return nil, err
	}
	salt := new(big.Int).SetBytes(saltBytes)
	return salt.Mod(salt, ecc.BN254.ScalarField()), nil
}

// Commit hashes the layout into a Merkle tree and salts its root. With keys
// set, every Answer carries a groth16 proof.
func Commit(layout game.Layout, salt *big.Int, keys *zk.Keys) (*Commitment, error) {
	shipCells, err := layout.ShipCells()
	if err != nil {
		return nil, err
	}
	n := layout.Size()
	if n*n > 1<<merkle.Depth {
		return nil, fmt.Errorf("a %dx%d board does not fit a depth %d commitment", n, n, merkle.Depth)
	}
	if salt == nil || salt.Sign() < 0 || salt.Cmp(ecc.BN254.ScalarField()) >= 0 {
		return nil, errors.New("salt must be a BN254 scalar")
	}
	t, err := merkle.Build(layout.Flatten(), merkle.Depth)
	if err != nil {
		return nil, err
	}
	return &Commitment{
		layout:    layout,
		shipCells: shipCells,
		tree:      t,
		salt:      new(big.Int).Set(salt),
		root:      merkle.SaltRoot(salt, t.Root()),
		keys:      keys,
	}, nil
}

func (c *Commitment) Root() *big.Int { return new(big.Int).Set(c.root) }

func (c *Commitment) RootHex() string { return codec.FormatHex(c.root) }

func (c *Commitment) Public() codec.Commitment {
	return codec.Commitment{
		RootHex:   c.RootHex(),
		BoardSize: c.layout.Size(),
		ShipCells: c.shipCells,
		Proofs:    c.keys != nil,
	}
}

// VerifyingKey is nil when shot proofs are off.
func (c *Commitment) VerifyingKey() groth16.VerifyingKey {
	if c.keys == nil {
		return nil
	}
	return c.keys.VK
}

// Answer is the committed reply to a shot.
type Answer struct {
	Hit   bool
	Proof *codec.ShotProof
}

// Answer looks up the committed cell and, if proofs are on, proves it.
func (c *Commitment) Answer(row, col int) (Answer, error) {
	cell := game.Coord{Row: row, Col: col}
	if !cell.In(c.layout.Size()) {
		return Answer{}, fmt.Errorf("%w: %v", game.ErrInvalidCoordinate, cell)
	}
	bit := c.layout.At(cell)
	ans := Answer{Hit: bit == 1}
	if c.keys == nil {
		return ans, nil
	}

	idx := c.layout.Index(cell)
	path, dir, err := c.tree.Path(idx)
	if err != nil {
		return Answer{}, err
	}
	proof, pub, err := c.keys.Prove(zk.Witness{
		Bit:   bit,
		Salt:  c.salt,
		Path:  path,
		Dir:   dir,
		Root:  c.root,
		Index: idx,
	})
	if err != nil {
		return Answer{}, fmt.Errorf("prove shot %v: %w", cell, err)
	}
	ans.Proof = &codec.ShotProof{Proof: proof, Public: pub}
	return ans, nil
}

// VerifyAnswer checks that a proved answer is about (row, col) on a board of
// the given size under root, and that its proof holds.
func VerifyAnswer(vk groth16.VerifyingKey, root *big.Int, size, row, col int, a Answer) error {
	if a.Proof == nil {
		return fmt.Errorf("%w: answer carries no proof", ErrProofRejected)
	}
	pub := a.Proof.Public
	switch {
	case pub.Root == nil || pub.Root.Cmp(root) != 0:
		return fmt.Errorf("%w: root mismatch", ErrProofRejected)
	case pub.Index != row*size+col:
		return fmt.Errorf("%w: proof is for cell %d, shot was (%d, %d)", ErrProofRejected, pub.Index, row, col)
	case (pub.Hit == 1) != a.Hit:
		return fmt.Errorf("%w: proof says hit=%d", ErrProofRejected, pub.Hit)
	}
	if err := zk.Verify(vk, a.Proof.Proof, pub); err != nil {
		return fmt.Errorf("%w: %v", ErrProofRejected, err)
	}
	return nil
}

// Reveal opens the commitment.
func (c *Commitment) Reveal() codec.Reveal {
	return codec.Reveal{Layout: c.layout, SaltHex: codec.FormatHex(c.salt)}
}

// Audit checks a revealed layout against the published commitment and
// confirms each shot's reported outcome matches the layout. The layout must
// have the published shape and ship count before its root is compared.
func Audit(pub codec.Commitment, reveal codec.Reveal, shots []ShotEvent) error {
	root, err := codec.ParseHex(pub.RootHex)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAuditFailed, err)
	}
	salt, err := codec.ParseHex(reveal.SaltHex)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAuditFailed, err)
	}
	if n := reveal.Layout.Size(); n != pub.BoardSize {
		return fmt.Errorf("%w: revealed %dx%d layout, committed board is %dx%d",
			ErrAuditFailed, n, n, pub.BoardSize, pub.BoardSize)
	}
	if err := reveal.Layout.Validate(pub.ShipCells); err != nil {
		return fmt.Errorf("%w: %v", ErrAuditFailed, err)
	}
	t, err := merkle.Build(reveal.Layout.Flatten(), merkle.Depth)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAuditFailed, err)
	}
	if merkle.SaltRoot(salt, t.Root()).Cmp(root) != 0 {
		return fmt.Errorf("%w: revealed layout does not match root %s", ErrAuditFailed, pub.RootHex)
	}
	for _, s := range shots {
		committed := reveal.Layout.At(game.Coord{Row: s.Row, Col: s.Col}) == 1
		if committed != s.Outcome.IsHit() {
			return fmt.Errorf("%w: shot %d at (%d, %d) reported %s", ErrAuditFailed, s.N, s.Row, s.Col, s.Outcome)
		}
	}
	return nil
}
