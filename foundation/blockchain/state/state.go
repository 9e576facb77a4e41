// Package state is the core API for the provenance ledger and implements all
// the business rules and processing.
package state

import (
	"sync"
	"time"

	"github.com/ardanlabs/provenance/foundation/blockchain/database"
	"github.com/ardanlabs/provenance/foundation/blockchain/mempool"
)

// EventHandler defines a function that is called when events
// occur in the processing of blocks and transactions.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by any
// package providing support for background mining.
type Worker interface {
	Shutdown()
	SignalStartMining()
}

// =============================================================================

// Config represents the configuration required to start the ledger.
type Config struct {
	GenesisTime   time.Time // The current time is used when zero.
	MaxAttempts   uint64    // database.DefaultMaxAttempts is used when zero.
	AutoMineBatch int       // Pending count that signals the worker, 0 disables.
	EvHandler     EventHandler
}

// State manages the ledger and the pool of pending transactions.
type State struct {
	maxAttempts   uint64
	autoMineBatch int
	evHandler     EventHandler

	// mu serializes mining so a snapshot of the pool, the proof of work and
	// the append to the ledger happen as one step.
	mu sync.Mutex

	ledger  *database.Ledger
	mempool *mempool.Mempool

	Worker Worker
}

// New constructs a new ledger holding only the genesis block.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	genesisTime := cfg.GenesisTime
	if genesisTime.IsZero() {
		genesisTime = time.Now().UTC()
	}

	maxAttempts := cfg.MaxAttempts
	if maxAttempts == 0 {
		maxAttempts = database.DefaultMaxAttempts
	}

	state := State{
		maxAttempts:   maxAttempts,
		autoMineBatch: cfg.AutoMineBatch,
		evHandler:     ev,

		ledger:  database.NewLedger(genesisTime),
		mempool: mempool.New(),
	}

	// The Worker is not set here. The call to worker.Run will assign itself
	// and start the background mining when it's configured.

	ev("state: New: genesis: hash[%s]", state.RetrieveLatestBlock().Hash)

	return &state, nil
}

// Shutdown cleanly brings the ledger down. Background mining is stopped and
// the pending pool is cleared.
func (s *State) Shutdown() error {
	s.evHandler("state: shutdown: started")
	defer s.evHandler("state: shutdown: completed")

	// Stop all background mining activity.
	if s.Worker != nil {
		s.Worker.Shutdown()
	}

	// Pending transactions live only in memory and are not sealed.
	if n := s.mempool.Truncate(); n > 0 {
		s.evHandler("state: shutdown: discarded %d pending transactions", n)
	}

	return nil
}

// AutoMineBatch returns the pending count that triggers background mining.
func (s *State) AutoMineBatch() int {
	return s.autoMineBatch
}
