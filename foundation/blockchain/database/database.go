// Package database handles the in memory ledger of sealed blocks and the
// business rules that keep the chain linked and verifiable.
package database

import (
	"fmt"
	"sync"
	"time"
)

// Ledger is an append only sequence of blocks that always starts with the
// genesis block. Blocks handed out by the ledger are deep copies.
type Ledger struct {
	mu     sync.RWMutex
	blocks []Block
}

// NewLedger constructs a ledger holding only a genesis block sealed at the
// specified time.
func NewLedger(genesisTime time.Time) *Ledger {
	return &Ledger{
		blocks: []Block{Genesis(genesisTime)},
	}
}

// Length returns the number of blocks in the ledger.
func (l *Ledger) Length() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return len(l.blocks)
}

// Latest returns a copy of the last block in the ledger.
func (l *Ledger) Latest() (Block, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if len(l.blocks) == 0 {
		return Block{}, ErrEmptyLedger
	}

	return l.blocks[len(l.blocks)-1].Clone(), nil
}

// Append adds the block to the end of the ledger. The block must extend the
// latest block and carry a solved hash that matches its contents.
func (l *Ledger) Append(block Block) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.blocks) == 0 {
		return ErrEmptyLedger
	}

	if err := block.ValidateBlock(l.blocks[len(l.blocks)-1]); err != nil {
		return err
	}

	l.blocks = append(l.blocks, block.Clone())

	return nil
}

// Block returns a copy of the block at the specified index.
func (l *Ledger) Block(index uint64) (Block, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if index >= uint64(len(l.blocks)) {
		return Block{}, fmt.Errorf("%w: index[%d]", ErrBlockNotFound, index)
	}

	return l.blocks[index].Clone(), nil
}

// Blocks returns a copy of every block in ledger order.
func (l *Ledger) Blocks() []Block {
	l.mu.RLock()
	defer l.mu.RUnlock()

	blocks := make([]Block, len(l.blocks))
	for i, block := range l.blocks {
		blocks[i] = block.Clone()
	}

	return blocks
}

// History returns the chronological history of a product.
func (l *Ledger) History(productID string) []HistoryEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return History(l.blocks, productID)
}

// VerifyIntegrity walks the full chain and returns every violation found.
// An empty result means the chain is intact.
func (l *Ledger) VerifyIntegrity() []Violation {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return VerifyChain(l.blocks)
}

// Verify walks the full chain and returns an IntegrityError if any
// violation is found.
func (l *Ledger) Verify() error {
	if violations := l.VerifyIntegrity(); len(violations) > 0 {
		return &IntegrityError{Violations: violations}
	}

	return nil
}

// =============================================================================

// VerifyChain checks the set of blocks against the chain invariants. The
// genesis block must be index 0 with a previous hash of "0". Every other
// block must sit at its own index, link to the prior block's hash and solve
// the proof of work. Every block's hash must match its contents and every
// transaction must hold valid UTF-8 text.
func VerifyChain(blocks []Block) []Violation {
	var violations []Violation
	add := func(index uint64, format string, args ...any) {
		violations = append(violations, Violation{Index: index, Reason: fmt.Sprintf(format, args...)})
	}

	if len(blocks) == 0 {
		add(0, "ledger has no genesis block")
		return violations
	}

	genesis := blocks[0]
	if genesis.Index != 0 {
		add(genesis.Index, "genesis block index is %d", genesis.Index)
	}
	if genesis.PrevHash != GenesisPrevHash {
		add(genesis.Index, "genesis previous hash is %q", genesis.PrevHash)
	}

	for i, block := range blocks {
		if hash := block.CalculateHash(); hash != block.Hash {
			add(block.Index, "stored hash %s doesn't match calculated hash %s", block.Hash, hash)
		}

		for j, tx := range block.Transactions {
			if err := tx.checkText(); err != nil {
				add(block.Index, "transaction %d: %s", j, err)
			}
		}

		if i == 0 {
			continue
		}

		if block.Index != uint64(i) {
			add(block.Index, "block at position %d has index %d", i, block.Index)
		}

		if prev := blocks[i-1]; block.PrevHash != prev.Hash {
			add(block.Index, "previous hash %s doesn't match block %d hash %s", block.PrevHash, prev.Index, prev.Hash)
		}

		if !isHashSolved(block.Hash) {
			add(block.Index, "hash %s does not solve the proof of work", block.Hash)
		}
	}

	return violations
}
