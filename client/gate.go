// client/gate.go
package client

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

// Gate bounds outgoing API traffic two ways: at most maxConcurrent
// requests in flight, and at least delay between the starts of any two
// requests, in acquisition order.
type Gate struct {
	sem   *semaphore.Weighted
	delay time.Duration

	mu        sync.Mutex
	lastStart time.Time
}

// NewGate returns a gate admitting maxConcurrent concurrent requests
// with the given minimum start-to-start spacing.
func NewGate(maxConcurrent int, delay time.Duration) *Gate {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &Gate{
		sem:   semaphore.NewWeighted(int64(maxConcurrent)),
		delay: delay,
	}
}

// Permit is a held slot in the gate. Release returns the slot and is
// safe to call more than once.
type Permit struct {
	gate *Gate
	once sync.Once
}

// Release returns the permit's concurrency slot.
func (p *Permit) Release() {
	p.once.Do(func() { p.gate.sem.Release(1) })
}

// Acquire blocks until a concurrency slot is free and the spacing since
// the previous admitted request has elapsed. The spacing check, sleep,
// and timestamp update happen under one lock, so request starts are
// serialized even though the requests themselves then run concurrently.
func (g *Gate) Acquire(ctx context.Context) (*Permit, error) {
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}

	g.mu.Lock()
	if !g.lastStart.IsZero() {
		if wait := g.delay - time.Since(g.lastStart); wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				g.mu.Unlock()
				g.sem.Release(1)
				return nil, ctx.Err()
			}
		}
	}
	g.lastStart = time.Now()
	g.mu.Unlock()

	return &Permit{gate: g}, nil
}
