// client/gate_test.go
package client

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGateEnforcesSpacing(t *testing.T) {
	const delay = 40 * time.Millisecond
	gate := NewGate(1, delay)

	var starts []time.Time
	for i := 0; i < 4; i++ {
		permit, err := gate.Acquire(context.Background())
		require.NoError(t, err)
		starts = append(starts, time.Now())
		permit.Release()
	}

	// Allow a little scheduler jitter below the configured delay.
	const tolerance = 5 * time.Millisecond
	for i := 1; i < len(starts); i++ {
		gap := starts[i].Sub(starts[i-1])
		assert.GreaterOrEqual(t, gap, delay-tolerance,
			"gap between request starts %d and %d too small", i-1, i)
	}
}

func TestGateBoundsConcurrency(t *testing.T) {
	for _, limit := range []int{1, 5, 10} {
		gate := NewGate(limit, 0)

		var inFlight, maxInFlight int64
		var wg sync.WaitGroup
		for i := 0; i < 30; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				permit, err := gate.Acquire(context.Background())
				if err != nil {
					t.Error(err)
					return
				}
				defer permit.Release()

				cur := atomic.AddInt64(&inFlight, 1)
				for {
					max := atomic.LoadInt64(&maxInFlight)
					if cur <= max || atomic.CompareAndSwapInt64(&maxInFlight, max, cur) {
						break
					}
				}
				time.Sleep(2 * time.Millisecond)
				atomic.AddInt64(&inFlight, -1)
			}()
		}
		wg.Wait()

		assert.LessOrEqual(t, atomic.LoadInt64(&maxInFlight), int64(limit),
			"concurrency ceiling %d exceeded", limit)
	}
}

func TestGateReleaseIsIdempotent(t *testing.T) {
	gate := NewGate(1, 0)

	permit, err := gate.Acquire(context.Background())
	require.NoError(t, err)
	permit.Release()
	permit.Release() // must not double-release the slot

	// A fresh acquire still works and the semaphore is not corrupted.
	permit2, err := gate.Acquire(context.Background())
	require.NoError(t, err)
	permit2.Release()
}

func TestGateHonorsCancellation(t *testing.T) {
	gate := NewGate(1, time.Hour)

	first, err := gate.Acquire(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	// Waiting on the spacing gate, not the semaphore.
	first.Release()
	_, err = gate.Acquire(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	// The canceled acquire must have returned its slot.
	require.True(t, gate.sem.TryAcquire(1), "semaphore slot leaked by canceled acquire")
	gate.sem.Release(1)
}
