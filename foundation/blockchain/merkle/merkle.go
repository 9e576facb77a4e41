// Package merkle provides a merkle tree over the transactions of a block so
// a single transaction can be proven to be part of a sealed block without
// handing out the whole block.
package merkle

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"hash"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Hashable represents the behavior concrete data must exhibit to be used in
// the merkle tree.
type Hashable interface {
	Hash() ([]byte, error)
}

// Proof order values. They tell the verifier on which side of the running
// hash the proof hash is concatenated.
const (
	ProofLeft  int64 = 0 // proof hash comes first.
	ProofRight int64 = 1 // proof hash comes second.
)

// =============================================================================

// Tree represents a merkle tree that uses data of some type T that exhibits the
// behavior defined by the Hashable constraint.
type Tree[T Hashable] struct {
	levels       [][][]byte // levels[0] are the leaf hashes, the last level is the root.
	values       []T
	hashStrategy func() hash.Hash
}

// WithHashStrategy is used to change the default hash strategy of using sha256
// when constructing a new tree.
func WithHashStrategy[T Hashable](hashStrategy func() hash.Hash) func(t *Tree[T]) {
	return func(t *Tree[T]) {
		t.hashStrategy = hashStrategy
	}
}

// NewTree constructs a new merkle tree for the values. When a level has an
// odd number of nodes the last node is paired with itself.
func NewTree[T Hashable](values []T, options ...func(t *Tree[T])) (*Tree[T], error) {
	if len(values) == 0 {
		return nil, errors.New("cannot construct tree with no content")
	}

	t := Tree[T]{
		values:       values,
		hashStrategy: sha256.New,
	}

	for _, option := range options {
		option(&t)
	}

	leafs := make([][]byte, len(values))
	for i, value := range values {
		h, err := value.Hash()
		if err != nil {
			return nil, fmt.Errorf("hashing leaf %d: %w", i, err)
		}
		leafs[i] = h
	}

	t.levels = [][][]byte{leafs}
	for level := leafs; len(level) > 1; {
		next := make([][]byte, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			right := i + 1
			if right == len(level) {
				right = i
			}
			next = append(next, t.combine(level[i], level[right]))
		}

		t.levels = append(t.levels, next)
		level = next
	}

	return &t, nil
}

// MerkleRoot returns the root hash of the tree.
func (t *Tree[T]) MerkleRoot() []byte {
	return t.levels[len(t.levels)-1][0]
}

// RootHex converts the merkle root byte hash to a hex encoded string.
func (t *Tree[T]) RootHex() string {
	return hexutil.Encode(t.MerkleRoot())
}

// Values returns the values the tree was built from.
func (t *Tree[T]) Values() []T {
	return t.values
}

// Proof returns the set of hashes and the order of concatenating those
// hashes for proving the value at the specified position is in the tree.
//
// Starting with the hash of the value, for each proof hash: if the order is
// ProofLeft hash(proof || running), otherwise hash(running || proof). The
// final running hash must equal the merkle root.
func (t *Tree[T]) Proof(position int) ([][]byte, []int64, error) {
	if position < 0 || position >= len(t.values) {
		return nil, nil, fmt.Errorf("position %d out of range", position)
	}

	var proof [][]byte
	var order []int64

	idx := position
	for _, level := range t.levels[:len(t.levels)-1] {
		sibling := idx ^ 1
		if sibling >= len(level) {
			sibling = idx
		}

		proof = append(proof, level[sibling])
		if idx%2 == 0 {
			order = append(order, ProofRight)
		} else {
			order = append(order, ProofLeft)
		}

		idx /= 2
	}

	return proof, order, nil
}

// Verify recomputes the tree from the values and checks it produces the
// same root.
func (t *Tree[T]) Verify() error {
	other, err := NewTree(t.values, WithHashStrategy[T](t.hashStrategy))
	if err != nil {
		return err
	}

	if !bytes.Equal(other.MerkleRoot(), t.MerkleRoot()) {
		return errors.New("root hash invalid")
	}

	return nil
}

// combine hashes the concatenation of the two hashes.
func (t *Tree[T]) combine(left []byte, right []byte) []byte {
	h := t.hashStrategy()
	h.Write(left)
	h.Write(right)
	return h.Sum(nil)
}

// =============================================================================

// VerifyProof checks a proof produced by Tree.Proof using sha256. All
// hashes are hex encoded with a 0x prefix.
func VerifyProof(leafHex string, proofHex []string, order []int64, rootHex string) error {
	if len(proofHex) != len(order) {
		return errors.New("proof and order lengths differ")
	}

	running, err := hexutil.Decode(leafHex)
	if err != nil {
		return fmt.Errorf("decoding leaf: %w", err)
	}

	root, err := hexutil.Decode(rootHex)
	if err != nil {
		return fmt.Errorf("decoding root: %w", err)
	}

	for i, ph := range proofHex {
		p, err := hexutil.Decode(ph)
		if err != nil {
			return fmt.Errorf("decoding proof[%d]: %w", i, err)
		}

		h := sha256.New()
		switch order[i] {
		case ProofLeft:
			h.Write(p)
			h.Write(running)
		case ProofRight:
			h.Write(running)
			h.Write(p)
		default:
			return fmt.Errorf("invalid order %d at position %d", order[i], i)
		}
		running = h.Sum(nil)
	}

	if !bytes.Equal(running, root) {
		return errors.New("merkle root is not equivalent to the merkle root calculated on the critical path")
	}

	return nil
}

// ToHex encodes the set of hashes as 0x prefixed hex strings.
func ToHex(hashes [][]byte) []string {
	out := make([]string, len(hashes))
	for i, h := range hashes {
		out[i] = hexutil.Encode(h)
	}
	return out
}
