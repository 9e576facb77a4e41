package database

import (
	"context"
	"crypto/sha256"
	"strings"
	"time"

	"github.com/ardanlabs/provenance/foundation/blockchain/canonical"
)

// Difficulty is the number of leading hex zeros a block hash must have to
// solve the proof of work. It is fixed for the life of the chain.
const Difficulty = 2

// DefaultMaxAttempts is the number of hashes tried before the proof of work
// gives up. With a difficulty of 2 the expected number of attempts is 256.
const DefaultMaxAttempts = 1_000_000

// =============================================================================

// Block represents a group of transactions sealed together.
type Block struct {
	Index        uint64        `json:"index"`         // Position of the block in the ledger.
	Transactions []Transaction `json:"transactions"`  // Batch frozen at seal time, in submission order.
	Timestamp    float64       `json:"timestamp"`     // Epoch seconds the block was sealed.
	PrevHash     string        `json:"previous_hash"` // Hash of the prior block or "0" for genesis.
	Nonce        uint64        `json:"nonce"`         // Value identified to solve the hash solution.
	Hash         string        `json:"hash"`          // Digest of the other five fields.
}

// blockPreimage is the set of fields covered by the block hash. The hash
// itself is never part of its own preimage.
type blockPreimage struct {
	Index        uint64        `json:"index"`
	Transactions []Transaction `json:"transactions"`
	Timestamp    float64       `json:"timestamp"`
	PrevHash     string        `json:"previous_hash"`
	Nonce        uint64        `json:"nonce"`
}

// NewBlock seals a set of transactions into a block with a zero nonce and
// computes its initial hash. No proof of work is performed.
func NewBlock(index uint64, trans []Transaction, timestamp float64, prevHash string) Block {
	txs := make([]Transaction, len(trans))
	for i, tx := range trans {
		txs[i] = tx.Clone()
	}

	b := Block{
		Index:        index,
		Transactions: txs,
		Timestamp:    timestamp,
		PrevHash:     prevHash,
		Nonce:        0,
	}
	b.Hash = b.CalculateHash()

	return b
}

// CalculateHash returns the hash of the block's index, transactions,
// timestamp, previous hash and nonce. This is a pure function of those
// fields. A block that can't be encoded produces an empty hash, which never
// solves the proof of work or passes verification.
func (b Block) CalculateHash() string {
	pre := blockPreimage{
		Index:        b.Index,
		Transactions: b.Transactions,
		Timestamp:    b.Timestamp,
		PrevHash:     b.PrevHash,
		Nonce:        b.Nonce,
	}

	if pre.Transactions == nil {
		pre.Transactions = []Transaction{}
	}

	hash, err := canonical.Hash(pre)
	if err != nil {
		return ""
	}

	return hash
}

// Clone returns a deep copy of the block.
func (b Block) Clone() Block {
	txs := make([]Transaction, len(b.Transactions))
	for i, tx := range b.Transactions {
		txs[i] = tx.Clone()
	}
	b.Transactions = txs

	return b
}

// ValidateBlock takes a block and validates it to be the next block after
// the specified previous block.
func (b Block) ValidateBlock(previousBlock Block) error {
	nextIndex := previousBlock.Index + 1
	if b.Index != nextIndex {
		return errorf(ErrChainLinkage, "this block is not the next index, got %d, exp %d", b.Index, nextIndex)
	}

	if b.PrevHash != previousBlock.Hash {
		return errorf(ErrChainLinkage, "previous hash doesn't match the latest block, got %s, exp %s", b.PrevHash, previousBlock.Hash)
	}

	if hash := b.CalculateHash(); hash != b.Hash {
		return errorf(ErrInvalidBlockHash, "stored hash doesn't match the block, got %s, exp %s", b.Hash, hash)
	}

	if !isHashSolved(b.Hash) {
		return errorf(ErrInvalidBlockHash, "%s does not solve the proof of work", b.Hash)
	}

	return nil
}

// =============================================================================

// POWArgs represents the set of arguments required to run POW.
type POWArgs struct {
	PrevBlock   Block
	Trans       []Transaction
	Timestamp   time.Time // Seal time; the current time is used when zero.
	MaxAttempts uint64    // DefaultMaxAttempts is used when zero.
	EvHandler   func(v string, args ...any)
}

// POW constructs a new Block and performs the work to find a nonce that
// solves the proof of work puzzle.
func POW(ctx context.Context, args POWArgs) (Block, error) {
	ev := args.EvHandler
	if ev == nil {
		ev = func(v string, args ...any) {}
	}

	sealed := args.Timestamp
	if sealed.IsZero() {
		sealed = time.Now().UTC()
	}

	maxAttempts := args.MaxAttempts
	if maxAttempts == 0 {
		maxAttempts = DefaultMaxAttempts
	}

	// Construct the block to be mined.
	nb := NewBlock(args.PrevBlock.Index+1, args.Trans, ToEpoch(sealed), args.PrevBlock.Hash)

	// Perform the proof of work mining operation.
	if err := nb.performPOW(ctx, maxAttempts, ev); err != nil {
		return Block{}, err
	}

	return nb, nil
}

// performPOW does the work of mining to find a valid hash for a specified
// block. Pointer semantics are being used since a nonce is being discovered.
func (b *Block) performPOW(ctx context.Context, maxAttempts uint64, ev func(v string, args ...any)) error {
	ev("database: PerformPOW: MINING: started: blk[%d]: txs[%d]", b.Index, len(b.Transactions))
	defer ev("database: PerformPOW: MINING: completed")

	// The nonce starts at zero and is incremented by 1 until a solution is
	// found, so the sequence of candidates is deterministic for a block.
	b.Nonce = 0

	var attempts uint64
	for {
		attempts++

		// Did we run out of attempts trying to solve the problem.
		if attempts > maxAttempts {
			ev("database: PerformPOW: MINING: TIMEOUT: attempts[%d]", maxAttempts)
			return errorf(ErrMiningTimeout, "attempts[%d]", maxAttempts)
		}

		// Was the mining operation cancelled.
		if attempts%10_000 == 0 && ctx.Err() != nil {
			ev("database: PerformPOW: MINING: CANCELLED")
			return ctx.Err()
		}

		// Hash the block and check if we have solved the puzzle.
		hash := b.CalculateHash()
		if !isHashSolved(hash) {
			b.Nonce++
			continue
		}

		b.Hash = hash

		ev("database: PerformPOW: MINING: SOLVED: prevBlk[%s]: newBlk[%s]", b.PrevHash, hash)
		ev("database: PerformPOW: MINING: attempts[%d]", attempts)

		return nil
	}
}

// isHashSolved checks the hash to make sure it complies with
// the POW rules. We need to match a difficulty number of 0's.
func isHashSolved(hash string) bool {
	if len(hash) != canonical.HashLength {
		return false
	}

	return strings.HasPrefix(hash, strings.Repeat("0", Difficulty))
}

// sum returns the sha256 digest of the data.
func sum(data []byte) []byte {
	hash := sha256.Sum256(data)
	return hash[:]
}
