package ledger

import (
	"context"
	"sync"
)

// Memory is an in-process Ledger. It is the fallback when no Redis server
// is reachable at startup and the substrate for tests. A single mutex
// guards the counter map; the critical section is a map read and an
// integer compare-and-increment, so contention across events is negligible
// for a single-process deployment.
type Memory struct {
	mu     sync.Mutex
	counts map[uint64]int
}

// NewMemory returns an empty in-process ledger.
func NewMemory() *Memory {
	return &Memory{counts: make(map[uint64]int)}
}

// TryReserveSlot implements Ledger.
func (l *Memory) TryReserveSlot(_ context.Context, eventID uint64, capacity int) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	count := l.counts[eventID]
	if count >= capacity {
		return count, ErrCapacityExceeded
	}
	count++
	l.counts[eventID] = count
	return count, nil
}

// ReleaseSlot implements Ledger.
func (l *Memory) ReleaseSlot(_ context.Context, eventID uint64) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	count := l.counts[eventID]
	if count > 0 {
		count--
	}
	l.counts[eventID] = count
	return count, nil
}

// CurrentCount implements Ledger.
func (l *Memory) CurrentCount(_ context.Context, eventID uint64) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.counts[eventID], nil
}

// Sync implements Ledger.
func (l *Memory) Sync(_ context.Context, eventID uint64, count int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if count < 0 {
		count = 0
	}
	l.counts[eventID] = count
	return nil
}
