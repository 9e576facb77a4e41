package state

import "github.com/ardanlabs/provenance/foundation/blockchain/database"

// SubmitTransaction validates the transaction and adds it to the pool of
// pending transactions. It returns the number of pending transactions.
func (s *State) SubmitTransaction(tx database.Transaction) (int, error) {
	n, err := s.mempool.Submit(tx)
	if err != nil {
		s.evHandler("state: SubmitTransaction: REJECTED: %s", err)
		return 0, err
	}

	s.evHandler("state: SubmitTransaction: tx[%s]: pending[%d]", tx, n)

	if s.Worker != nil && s.autoMineBatch > 0 && n >= s.autoMineBatch {
		s.Worker.SignalStartMining()
	}

	return n, nil
}
