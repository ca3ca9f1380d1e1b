package httputil

import (
	"context"
	"sync/atomic"
)

// Semaphore bounds concurrent analyzer calls across all pipeline runs so a
// burst of events cannot fan out into an unbounded number of oracle requests.
type Semaphore struct {
	slots   chan struct{}
	dropped atomic.Int64
}

// NewSemaphore creates a semaphore. Non-positive capacity gets a default of
// 64, matching the worker pool default.
func NewSemaphore(capacity int) *Semaphore {
	if capacity <= 0 {
		capacity = 64
	}
	return &Semaphore{slots: make(chan struct{}, capacity)}
}

// Acquire blocks for a slot until ctx expires. The caller must Release after
// a nil return.
func (s *Semaphore) Acquire(ctx context.Context) error {
	select {
	case s.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryAcquire takes a slot without blocking. A false return counts as a drop;
// use it only where skipping the work is acceptable.
func (s *Semaphore) TryAcquire() bool {
	select {
	case s.slots <- struct{}{}:
		return true
	default:
		s.dropped.Add(1)
		return false
	}
}

// Release frees a slot. Releasing more than was acquired is a no-op.
func (s *Semaphore) Release() {
	select {
	case <-s.slots:
	default:
	}
}

// InUse reports the number of held slots.
func (s *Semaphore) InUse() int { return len(s.slots) }

// Available reports the number of free slots.
func (s *Semaphore) Available() int { return cap(s.slots) - len(s.slots) }

// Dropped reports how many TryAcquire calls found the pool full.
func (s *Semaphore) Dropped() int64 { return s.dropped.Load() }
