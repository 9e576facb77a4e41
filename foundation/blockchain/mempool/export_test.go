package mempool

import "time"

// SetClockForTest replaces the clock used to stamp transactions.
func (mp *Mempool) SetClockForTest(now func() time.Time) {
	mp.now = now
}
