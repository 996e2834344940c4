package ledger

import (
	"context"
	"sync"
)

// MemoryLedger keeps attempt counts in process memory. Counts do not survive
// a restart; use the Redis or SQLite ledger when attempt limits must hold
// across sessions.
type MemoryLedger struct {
	mu     sync.Mutex
	counts map[string]int
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{counts: make(map[string]int)}
}

func (l *MemoryLedger) Count(_ context.Context, key string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.counts[key], nil
}

func (l *MemoryLedger) Increment(_ context.Context, key string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.counts[key]++
	return l.counts[key], nil
}
