package state

import (
	"errors"
	"fmt"

	"github.com/ardanlabs/provenance/foundation/blockchain/database"
	"github.com/ardanlabs/provenance/foundation/blockchain/merkle"
)

// ErrTransactionNotFound is returned when a proof is requested for a
// position the block doesn't have.
var ErrTransactionNotFound = errors.New("transaction not found")

// TxProof is the merkle proof that a transaction is part of a block.
type TxProof struct {
	BlockIndex  uint64               `json:"block_index"`
	Position    int                  `json:"position"`
	Transaction database.Transaction `json:"transaction"`
	LeafHash    string               `json:"leaf_hash"`
	Proof       []string             `json:"proof"`
	Order       []int64              `json:"order"`
	MerkleRoot  string               `json:"merkle_root"`
}

// =============================================================================

// QueryMempoolLength returns the current length of the mempool.
func (s *State) QueryMempoolLength() int {
	return s.mempool.Count()
}

// QueryProductHistory returns every recorded event for the product across
// all sealed blocks ordered by the event timestamp. Pending transactions are
// not included.
func (s *State) QueryProductHistory(productID string) []database.HistoryEntry {
	return s.ledger.History(productID)
}

// QueryTransactionProof builds the merkle tree for the block and returns the
// proof for the transaction at the specified position.
func (s *State) QueryTransactionProof(blockIndex uint64, position int) (TxProof, error) {
	block, err := s.ledger.Block(blockIndex)
	if err != nil {
		return TxProof{}, err
	}

	if position < 0 || position >= len(block.Transactions) {
		return TxProof{}, fmt.Errorf("%w: block[%d]: position[%d]", ErrTransactionNotFound, blockIndex, position)
	}

	tree, err := merkle.NewTree(block.Transactions)
	if err != nil {
		return TxProof{}, fmt.Errorf("building tree: %w", err)
	}

	proof, order, err := tree.Proof(position)
	if err != nil {
		return TxProof{}, err
	}

	tx := block.Transactions[position]
	leaf, err := tx.Hash()
	if err != nil {
		return TxProof{}, err
	}

	txp := TxProof{
		BlockIndex:  blockIndex,
		Position:    position,
		Transaction: tx,
		LeafHash:    merkle.ToHex([][]byte{leaf})[0],
		Proof:       merkle.ToHex(proof),
		Order:       order,
		MerkleRoot:  tree.RootHex(),
	}

	return txp, nil
}

// VerifyIntegrity walks the full chain and returns every violation found.
// An empty result means the chain is intact.
func (s *State) VerifyIntegrity() []database.Violation {
	return s.ledger.VerifyIntegrity()
}
