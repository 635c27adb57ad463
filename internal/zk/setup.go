package zk

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"
	"path/filepath"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/consensys/gnark/logger"
	"github.com/rs/zerolog"
)

const (
	pkFile = "shot.pk"
	vkFile = "shot.vk"
)

// Public is what a verifier learns about a shot.
type Public struct {
	Root  *big.Int `json:"root"`
	Index int      `json:"index"`
	Hit   uint8    `json:"hit"`
}

// Witness is the prover's full view of one shot.
type Witness struct {
	Bit   uint8
	Salt  *big.Int
	Path  []*big.Int
	Dir   []uint8
	Root  *big.Int // salted
	Index int
}

// Keys holds the compiled shot circuit and its groth16 key pair.
type Keys struct {
	cs constraint.ConstraintSystem
	PK groth16.ProvingKey
	VK groth16.VerifyingKey
}

// SetLogger routes gnark's compile/setup/prove logging through l.
func SetLogger(l zerolog.Logger) { logger.Set(l) }

func compile() (constraint.ConstraintSystem, error) {
	var circuit ShotCircuit
	return frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, &circuit)
}

// Setup compiles the circuit and runs a fresh in-memory groth16 setup.
func Setup() (*Keys, error) {
	cs, err := compile()
	if err != nil {
		return nil, err
	}
	pk, vk, err := groth16.Setup(cs)
	if err != nil {
		return nil, err
	}
	return &Keys{cs: cs, PK: pk, VK: vk}, nil
}

// EnsureKeys loads the key pair from dir, or generates and writes a new one
// when either file is missing or unreadable.
func EnsureKeys(dir string) (*Keys, error) {
	if k, err := LoadKeys(dir); err == nil {
		return k, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	k, err := Setup()
	if err != nil {
		return nil, err
	}
	if err := writeKey(filepath.Join(dir, vkFile), k.VK); err != nil {
		return nil, err
	}
	if err := writeKey(filepath.Join(dir, pkFile), k.PK); err != nil {
		return nil, err
	}
	return k, nil
}

func LoadKeys(dir string) (*Keys, error) {
	vk := groth16.NewVerifyingKey(ecc.BN254)
	if err := readKey(filepath.Join(dir, vkFile), vk); err != nil {
		return nil, err
	}
	pk := groth16.NewProvingKey(ecc.BN254)
	if err := readKey(filepath.Join(dir, pkFile), pk); err != nil {
		return nil, err
	}
	cs, err := compile()
	if err != nil {
		return nil, err
	}
	return &Keys{cs: cs, PK: pk, VK: vk}, nil
}

// Prove proves one shot and returns the serialized proof.
func (k *Keys) Prove(w Witness) ([]byte, Public, error) {
	if len(w.Path) != MerkleDepth || len(w.Dir) != MerkleDepth {
		return nil, Public{}, errors.New("bad path length")
	}
	if w.Bit > 1 {
		return nil, Public{}, fmt.Errorf("cell bit %d is not 0 or 1", w.Bit)
	}

	var assign ShotCircuit
	assign.Bit = w.Bit
	assign.Salt = w.Salt
	for i := 0; i < MerkleDepth; i++ {
		assign.Path[i] = w.Path[i]
		assign.Dir[i] = w.Dir[i]
	}
	assign.Root = w.Root
	assign.Index = w.Index
	assign.Hit = w.Bit

	fullWit, err := frontend.NewWitness(&assign, ecc.BN254.ScalarField())
	if err != nil {
		return nil, Public{}, err
	}
	proof, err := groth16.Prove(k.cs, k.PK, fullWit)
	if err != nil {
		return nil, Public{}, err
	}

	var buf bytes.Buffer
	if _, err := proof.WriteTo(&buf); err != nil {
		return nil, Public{}, err
	}
	return buf.Bytes(), Public{Root: new(big.Int).Set(w.Root), Index: w.Index, Hit: w.Bit}, nil
}

// Verify checks a serialized shot proof against its public inputs. A nil
// error means the proof is valid.
func Verify(vk groth16.VerifyingKey, proofBin []byte, pub Public) error {
	if pub.Root == nil {
		return errors.New("proof payload missing public root")
	}

	var pubAssign ShotCircuit
	pubAssign.Root = pub.Root
	pubAssign.Index = pub.Index
	pubAssign.Hit = pub.Hit

	pubWit, err := frontend.NewWitness(&pubAssign, ecc.BN254.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return err
	}
	pr := groth16.NewProof(ecc.BN254)
	if _, err := pr.ReadFrom(bytes.NewReader(proofBin)); err != nil {
		return err
	}
	return groth16.Verify(pr, vk, pubWit)
}

// --- key IO helpers using io.WriterTo / io.ReaderFrom ---

func writeKey(path string, k io.WriterTo) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = k.WriteTo(f)
	return err
}

func readKey(path string, k io.ReaderFrom) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = k.ReadFrom(f)
	return err
}
