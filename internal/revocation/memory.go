package revocation

import (
	"context"
	"sync"
	"time"
)

var _ Ledger = (*MemoryLedger)(nil)

// MemoryLedger is a process-local Ledger with lazily evicted entries. It is a
// drop-in substitute for environments without a cache service; revocations do
// not survive a restart, but neither do they outlive the token expiry.
type MemoryLedger struct {
	mu      sync.RWMutex
	entries map[string]time.Time
	now     func() time.Time
}

// NewMemoryLedger creates an empty in-process ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (l *MemoryLedger) Put(_ context.Context, key string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	l.mu.Lock()
	l.entries[key] = l.now().Add(ttl)
	l.mu.Unlock()
	return nil
}

func (l *MemoryLedger) Get(_ context.Context, key string) (bool, error) {
	l.mu.RLock()
	expiresAt, ok := l.entries[key]
	l.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if !l.now().Before(expiresAt) {
		// Lazy eviction on read.
		l.mu.Lock()
		delete(l.entries, key)
		l.mu.Unlock()
		return false, nil
	}
	return true, nil
}
