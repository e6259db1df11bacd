package lock

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// LeadLocker serializes mutating financial operations per lead. Commission
// recomputation, change-order approval and payment recording for the same lead
// must never interleave; operations on different leads run freely in parallel.
type LeadLocker interface {
	// WithLock runs fn while holding the lead's financial-state lock
	WithLock(ctx context.Context, leadID uuid.UUID, fn func(ctx context.Context) error) error
}

type leadLock struct {
	mu   sync.Mutex
	refs int
}

// KeyedMutexLocker is an in-process LeadLocker backed by one mutex per lead.
// Entries are reference-counted and removed once no goroutine holds or waits
// on them, so the map does not grow with the number of leads ever seen.
type KeyedMutexLocker struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*leadLock
}

// NewKeyedMutexLocker creates a new in-process lead locker
func NewKeyedMutexLocker() *KeyedMutexLocker {
	return &KeyedMutexLocker{
		locks: make(map[uuid.UUID]*leadLock),
	}
}

// WithLock runs fn while holding the lead's lock
func (l *KeyedMutexLocker) WithLock(ctx context.Context, leadID uuid.UUID, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	entry := l.acquire(leadID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		l.release(leadID, entry)
	}()

	return fn(ctx)
}

func (l *KeyedMutexLocker) acquire(leadID uuid.UUID) *leadLock {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.locks[leadID]
	if !ok {
		entry = &leadLock{}
		l.locks[leadID] = entry
	}
	entry.refs++
	return entry
}

func (l *KeyedMutexLocker) release(leadID uuid.UUID, entry *leadLock) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry.refs--
	if entry.refs == 0 {
		delete(l.locks, leadID)
	}
}

// Ensure KeyedMutexLocker implements LeadLocker
var _ LeadLocker = (*KeyedMutexLocker)(nil)
