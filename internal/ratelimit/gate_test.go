package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForCredential(t *testing.T) {
	assert.Equal(t, KeyedInterval, ForCredential("abc123").Interval())
	assert.Equal(t, UnkeyedInterval, ForCredential("").Interval())
}

func TestGate_EnforcesSpacing(t *testing.T) {
	gate := NewGate(20 * time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, gate.Wait(ctx))
	}
	// First release is immediate; the next two must wait an interval each.
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestGate_SharedAcrossGoroutines(t *testing.T) {
	gate := NewGate(10 * time.Millisecond)
	ctx := context.Background()

	var mu sync.Mutex
	var stamps []time.Time

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			require.NoError(t, gate.Wait(ctx))
			mu.Lock()
			stamps = append(stamps, time.Now())
			mu.Unlock()
		}()
	}
	wg.Wait()

	require.Len(t, stamps, 4)
	// Releases are globally spaced regardless of which goroutine asked.
	for i := 1; i < len(stamps); i++ {
		for j := 0; j < i; j++ {
			gap := stamps[i].Sub(stamps[j])
			if gap < 0 {
				gap = -gap
			}
			assert.GreaterOrEqual(t, gap, 5*time.Millisecond)
		}
	}
}

func TestGate_WaitHonorsContext(t *testing.T) {
	gate := NewGate(time.Hour)
	ctx := context.Background()
	require.NoError(t, gate.Wait(ctx)) // burst token

	cancelled, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	assert.Error(t, gate.Wait(cancelled))
}
