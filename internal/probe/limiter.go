package probe

import (
	"context"
	"fmt"
	"sync"
)

// Limiter bounds the number of concurrent probe connections across every
// host in a scan. One Limiter is shared by all probers of a process.
type Limiter struct {
	capacity  int
	semaphore chan struct{}

	mu     sync.Mutex
	peak   int
	closed bool
}

// NewLimiter creates a limiter with the given capacity (minimum 1).
func NewLimiter(capacity int) *Limiter {
	if capacity <= 0 {
		capacity = 1
	}
	return &Limiter{
		capacity:  capacity,
		semaphore: make(chan struct{}, capacity),
	}
}

// Acquire blocks until a slot is free or ctx is done.
func (l *Limiter) Acquire(ctx context.Context) error {
	l.mu.Lock()
	closed := l.closed
	l.mu.Unlock()
	if closed {
		return fmt.Errorf("probe limiter is closed")
	}

	select {
	case l.semaphore <- struct{}{}:
		l.mu.Lock()
		if n := len(l.semaphore); n > l.peak {
			l.peak = n
		}
		l.mu.Unlock()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release frees a slot taken by Acquire.
func (l *Limiter) Release() {
	select {
	case <-l.semaphore:
	default:
	}
}

// Active returns the number of slots in use.
func (l *Limiter) Active() int {
	return len(l.semaphore)
}

// Available returns the number of free slots.
func (l *Limiter) Available() int {
	return l.capacity - len(l.semaphore)
}

// Capacity returns the configured ceiling.
func (l *Limiter) Capacity() int {
	return l.capacity
}

// Peak returns the highest number of slots held at once.
func (l *Limiter) Peak() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.peak
}

// Close makes further Acquire calls fail. Held slots may still be released.
func (l *Limiter) Close() {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()
}
