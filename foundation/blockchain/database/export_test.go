package database

// ReplaceBlockForTest overwrites a stored block without any validation so
// tests can simulate tampering with the chain.
func (l *Ledger) ReplaceBlockForTest(index int, block Block) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.blocks[index] = block
}
