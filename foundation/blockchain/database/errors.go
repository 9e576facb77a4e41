package database

import (
	"errors"
	"fmt"
	"strings"
)

// Set of error variables for the ledger.
var (
	// ErrInvalidTransaction is returned when a transaction is missing a
	// required field or carries data that can't be canonically encoded.
	ErrInvalidTransaction = errors.New("invalid transaction")

	// ErrChainLinkage is returned when a block does not extend the latest
	// block of the ledger. It means the miner produced a bad block.
	ErrChainLinkage = errors.New("chain linkage violation")

	// ErrInvalidBlockHash is returned when a block's stored hash does not
	// match its contents or does not solve the proof of work.
	ErrInvalidBlockHash = errors.New("invalid block hash")

	// ErrMiningTimeout is returned when the proof of work search exceeds its
	// attempt limit. The caller may try again.
	ErrMiningTimeout = errors.New("mining exceeded the maximum number of attempts")

	// ErrIntegrity is returned when verification of the chain finds a
	// tampered or corrupted block.
	ErrIntegrity = errors.New("integrity violation")

	// ErrEmptyLedger is returned if the ledger has lost its genesis block.
	ErrEmptyLedger = errors.New("ledger has no blocks")

	// ErrBlockNotFound is returned when a block index is out of range.
	ErrBlockNotFound = errors.New("block not found")
)

// =============================================================================

// Violation describes one broken invariant found while verifying the chain.
type Violation struct {
	Index  uint64 `json:"index"`
	Reason string `json:"reason"`
}

// IntegrityError reports every violation found during a verification pass.
type IntegrityError struct {
	Violations []Violation
}

// Error implements the error interface.
func (ie *IntegrityError) Error() string {
	var sb strings.Builder
	sb.WriteString(ErrIntegrity.Error())
	for _, v := range ie.Violations {
		sb.WriteString(fmt.Sprintf(": {block: %d, reason: %s}", v.Index, v.Reason))
	}

	return sb.String()
}

// Unwrap allows errors.Is to match ErrIntegrity.
func (ie *IntegrityError) Unwrap() error {
	return ErrIntegrity
}

// errorf wraps the sentinel error with a formatted message.
func errorf(sentinel error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...))
}
