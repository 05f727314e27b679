package testutil

import "sync"

// DeterministicClock hands out check-event sequence numbers 1, 2, 3, ...
// Two runs of the same plan stamp their traces identically.
type DeterministicClock struct {
	mu  sync.Mutex
	seq int64
}

// NewDeterministicClock returns a clock whose first tick is 1.
func NewDeterministicClock() *DeterministicClock {
	return &DeterministicClock{}
}

// Next advances the clock and returns the new sequence number. Safe for
// concurrent use.
func (c *DeterministicClock) Next() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	return c.seq
}
