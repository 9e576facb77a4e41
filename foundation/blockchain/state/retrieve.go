package state

import "github.com/ardanlabs/provenance/foundation/blockchain/database"

// RetrieveLatestBlock returns a copy of the current latest block.
func (s *State) RetrieveLatestBlock() database.Block {
	block, _ := s.ledger.Latest()
	return block
}

// RetrieveBlock returns a copy of the block at the specified index.
func (s *State) RetrieveBlock(index uint64) (database.Block, error) {
	return s.ledger.Block(index)
}

// RetrieveChain returns a copy of every block in ledger order.
func (s *State) RetrieveChain() []database.Block {
	return s.ledger.Blocks()
}

// RetrieveMempool returns a copy of the pending transactions in
// submission order.
func (s *State) RetrieveMempool() []database.Transaction {
	return s.mempool.Copy()
}
