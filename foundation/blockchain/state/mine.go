package state

import (
	"context"
	"errors"
	"time"

	"github.com/ardanlabs/provenance/foundation/blockchain/database"
)

// ErrNoTransactions is returned when a block is requested to be created
// and there are no pending transactions.
var ErrNoTransactions = errors.New("no pending transactions to mine")

// =============================================================================

// MineNewBlock seals every pending transaction into a new block with a
// proper hash and appends it to the ledger. Transactions submitted while the
// proof of work is running stay pending for the next block.
func (s *State) MineNewBlock(ctx context.Context) (database.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evHandler("state: MineNewBlock: MINING: check mempool count")

	// Freeze the batch that goes into this block.
	trans := s.mempool.Snapshot()
	if len(trans) == 0 {
		return database.Block{}, ErrNoTransactions
	}

	latest, err := s.ledger.Latest()
	if err != nil {
		return database.Block{}, err
	}

	s.evHandler("state: MineNewBlock: MINING: perform POW: txs[%d]", len(trans))

	// Attempt to create a new block by solving the POW puzzle. This can be cancelled.
	block, err := database.POW(ctx, database.POWArgs{
		PrevBlock:   latest,
		Trans:       trans,
		Timestamp:   time.Now().UTC(),
		MaxAttempts: s.maxAttempts,
		EvHandler:   s.evHandler,
	})
	if err != nil {
		return database.Block{}, err
	}

	// Just check one more time we were not cancelled.
	if ctx.Err() != nil {
		return database.Block{}, ctx.Err()
	}

	s.evHandler("state: MineNewBlock: MINING: update local state")

	if err := s.ledger.Append(block); err != nil {
		return database.Block{}, err
	}

	// Only the transactions sealed in this block leave the pool.
	s.mempool.Remove(len(trans))

	s.evHandler("viewer: block[%d]: hash[%s]: txs[%d]", block.Index, block.Hash, len(block.Transactions))

	return block, nil
}
