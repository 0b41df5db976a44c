package tasks

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Controller bounds how many batch tasks run their provider-call phase at
// the same time. Tasks acquire a [Slot] before touching the provider and
// hold it through their adaptive delay and the call itself, so the limit
// caps total throughput rather than just call initiation.
type Controller struct {
	sem *semaphore.Weighted
}

// NewController creates a Controller admitting up to maxConcurrent holders.
func NewController(maxConcurrent int) *Controller {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Controller{sem: semaphore.NewWeighted(int64(maxConcurrent))}
}

// Acquire blocks until a slot frees or ctx ends. The returned Slot must be
// released; callers defer Release immediately so the slot frees on every
// exit path.
func (c *Controller) Acquire(ctx context.Context) (*Slot, error) {
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	return &Slot{controller: c}, nil
}

// Slot is a held concurrency permit.
type Slot struct {
	controller *Controller
	once       sync.Once
}

// Release returns the slot to the pool. Safe to call more than once; only
// the first call frees the permit.
func (s *Slot) Release() {
	s.once.Do(func() {
		s.controller.sem.Release(1)
	})
}
