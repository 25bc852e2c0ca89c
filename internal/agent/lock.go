package agent

import (
	"context"
	"sync"
)

// Locker provides per-ticket mutual exclusion so at most one triage execution
// per ticket runs at a time.
type Locker interface {
	// Acquire takes the lease for the ticket. It returns false when another
	// triage holds it, and a release func when acquired.
	Acquire(ctx context.Context, ticketID string) (release func(), acquired bool, err error)
}

// MemoryLocker is a process-local Locker for tests and single-instance
// deployments without Redis.
type MemoryLocker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

// NewMemoryLocker constructs the in-memory locker.
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{held: make(map[string]struct{})}
}

// Acquire implements Locker.
func (l *MemoryLocker) Acquire(_ context.Context, ticketID string) (func(), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, busy := l.held[ticketID]; busy {
		return nil, false, nil
	}
	l.held[ticketID] = struct{}{}
	release := func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, ticketID)
	}
	return release, true, nil
}
