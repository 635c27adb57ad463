package merkle

import (
	"errors"
	"fmt"
	"math/big"

	bnmimc "github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"
)

// Depth is the height of a board commitment tree: 256 leaves, enough for a
// 16x16 board.
const Depth = 8

var ErrIndexOutOfRange = errors.New("leaf index out of range")

// --- encode BN254 field elements as 32-byte big-endian ---
func feBytes(x *big.Int) []byte {
	b := x.Bytes()
	if len(b) == 32 {
		return b
	}
	out := make([]byte, 32)
	copy(out[32-len(b):], b)
	return out
}

func mimcSum(xs ...*big.Int) *big.Int {
	h := bnmimc.NewMiMC()
	for _, x := range xs {
		// inputs are cell bits, hash outputs or salts reduced mod r
		_, _ = h.Write(feBytes(x))
	}
	return new(big.Int).SetBytes(h.Sum(nil))
}

// HashLeaf hashes one board cell, matching the in-circuit leaf hash.
func HashLeaf(bit uint8) *big.Int { return mimcSum(new(big.Int).SetUint64(uint64(bit))) }

func HashNode(left, right *big.Int) *big.Int { return mimcSum(left, right) }

// SaltRoot hides the tree root behind a secret salt so identical boards
// publish different roots.
func SaltRoot(salt, root *big.Int) *big.Int { return mimcSum(salt, root) }

// Tree is a fixed-size binary Merkle tree stored level by level.
type Tree struct {
	Depth  int          `json:"depth"`
	Levels [][]*big.Int `json:"levels"` // Levels[0]=leaves, Levels[Depth]=root
}

// Build hashes cells into the leaves of a tree of the given depth, padding the
// tail with empty-water leaves.
func Build(cells []uint8, depth int) (*Tree, error) {
	if depth < 1 || depth > 16 {
		return nil, fmt.Errorf("depth %d out of range", depth)
	}
	size := 1 << depth
	if len(cells) > size {
		return nil, fmt.Errorf("%d cells do not fit in %d leaves", len(cells), size)
	}

	water := HashLeaf(0)
	leaves := make([]*big.Int, size)
	for i := range leaves {
		if i < len(cells) && cells[i] != 0 {
			leaves[i] = HashLeaf(cells[i])
		} else {
			leaves[i] = new(big.Int).Set(water)
		}
	}

	levels := [][]*big.Int{leaves}
	for prev := leaves; len(prev) > 1; {
		up := make([]*big.Int, len(prev)/2)
		for i := range up {
			up[i] = HashNode(prev[2*i], prev[2*i+1])
		}
		levels = append(levels, up)
		prev = up
	}
	return &Tree{Depth: depth, Levels: levels}, nil
}

func (t *Tree) Root() *big.Int { return new(big.Int).Set(t.Levels[t.Depth][0]) }

// Path returns sibling hashes + direction bits for index idx.
// dir[i]=0 ⇒ current is left child; dir[i]=1 ⇒ current is right child.
func (t *Tree) Path(idx int) (path []*big.Int, dir []uint8, err error) {
	if idx < 0 || idx >= len(t.Levels[0]) {
		return nil, nil, fmt.Errorf("%w: %d", ErrIndexOutOfRange, idx)
	}
	path = make([]*big.Int, 0, t.Depth)
	dir = make([]uint8, 0, t.Depth)
	for level, cur := 0, idx; level < t.Depth; level, cur = level+1, cur/2 {
		bit := uint8(cur & 1)
		path = append(path, new(big.Int).Set(t.Levels[level][cur^1]))
		dir = append(dir, bit)
	}
	return path, dir, nil
}

// VerifyPath recomputes the root from a leaf bit and its authentication path.
func VerifyPath(bit uint8, idx int, path []*big.Int, dir []uint8, root *big.Int) bool {
	if len(path) != len(dir) || idx < 0 || idx>>len(path) != 0 {
		return false
	}
	cur := HashLeaf(bit)
	for i := range path {
		if int(dir[i]) != (idx>>i)&1 {
			return false
		}
		if dir[i] == 1 {
			cur = HashNode(path[i], cur)
		} else {
			cur = HashNode(cur, path[i])
		}
	}
	return cur.Cmp(root) == 0
}
