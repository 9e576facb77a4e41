package generator

import "time"

// SetClockForTest replaces the clock used to pick journey start times.
func (g *Generator) SetClockForTest(now func() time.Time) {
	g.now = now
}
