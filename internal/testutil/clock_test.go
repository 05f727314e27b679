package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeterministicClock_Sequence(t *testing.T) {
	clock := NewDeterministicClock()
	for want := int64(1); want <= 4; want++ {
		assert.Equal(t, want, clock.Next())
	}

	other := NewDeterministicClock()
	assert.Equal(t, int64(1), other.Next(), "clocks do not share state")
}

func TestDeterministicClock_ConcurrentNextIsUnique(t *testing.T) {
	clock := NewDeterministicClock()
	const workers, calls = 50, 200

	var wg sync.WaitGroup
	var mu sync.Mutex
	seen := make(map[int64]bool, workers*calls)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < calls; j++ {
				v := clock.Next()
				mu.Lock()
				seen[v] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, workers*calls)
	assert.Equal(t, int64(workers*calls+1), clock.Next())
}
