// Package mempool maintains the pool of transactions waiting to be sealed
// into the next block.
package mempool

import (
	"sync"
	"time"

	"github.com/ardanlabs/provenance/foundation/blockchain/database"
)

// Mempool represents an ordered cache of pending transactions. Transactions
// leave the pool in the order they were submitted.
type Mempool struct {
	pool []database.Transaction
	mu   sync.RWMutex
	now  func() time.Time
}

// New constructs a new, empty mempool.
func New() *Mempool {
	return &Mempool{
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Count returns the current number of transactions in the pool.
func (mp *Mempool) Count() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return len(mp.pool)
}

// Submit validates the transaction and appends a private copy of it to the
// end of the pool. It returns the number of pending transactions.
func (mp *Mempool) Submit(tx database.Transaction) (int, error) {
	accepted, err := database.NewTransaction(tx, mp.now())
	if err != nil {
		return 0, err
	}

	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = append(mp.pool, accepted)

	return len(mp.pool), nil
}

// Snapshot returns a copy of the pending transactions in submission order
// without removing them.
func (mp *Mempool) Snapshot() []database.Transaction {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return clone(mp.pool)
}

// Copy is an alias of Snapshot used by the query layer.
func (mp *Mempool) Copy() []database.Transaction {
	return mp.Snapshot()
}

// Remove drops the first n transactions from the pool. This is used once a
// snapshot of n transactions has been sealed so anything submitted during
// mining stays pending.
func (mp *Mempool) Remove(n int) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	switch {
	case n <= 0:
		return
	case n >= len(mp.pool):
		mp.pool = nil
	default:
		rest := make([]database.Transaction, len(mp.pool)-n)
		copy(rest, mp.pool[n:])
		mp.pool = rest
	}
}

// Drain removes and returns every pending transaction.
func (mp *Mempool) Drain() []database.Transaction {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	trans := mp.pool
	mp.pool = nil

	return trans
}

// Truncate clears all the transactions from the pool and returns how many
// were dropped.
func (mp *Mempool) Truncate() int {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	n := len(mp.pool)
	mp.pool = nil

	return n
}

// =============================================================================

func clone(trans []database.Transaction) []database.Transaction {
	out := make([]database.Transaction, len(trans))
	for i, tx := range trans {
		out[i] = tx.Clone()
	}

	return out
}
