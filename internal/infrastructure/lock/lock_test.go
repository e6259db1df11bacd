package lock

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyedMutexLocker_SerializesSameLead(t *testing.T) {
	locker := NewKeyedMutexLocker()
	leadID := uuid.New()

	var inCritical, maxInCritical int
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := locker.WithLock(context.Background(), leadID, func(ctx context.Context) error {
				mu.Lock()
				inCritical++
				if inCritical > maxInCritical {
					maxInCritical = inCritical
				}
				mu.Unlock()

				time.Sleep(time.Millisecond)

				mu.Lock()
				inCritical--
				mu.Unlock()
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxInCritical)
}

func TestKeyedMutexLocker_DifferentLeadsRunConcurrently(t *testing.T) {
	locker := NewKeyedMutexLocker()

	first := uuid.New()
	second := uuid.New()
	release := make(chan struct{})
	firstHeld := make(chan struct{})

	go func() {
		_ = locker.WithLock(context.Background(), first, func(ctx context.Context) error {
			close(firstHeld)
			<-release
			return nil
		})
	}()

	<-firstHeld

	done := make(chan struct{})
	go func() {
		_ = locker.WithLock(context.Background(), second, func(ctx context.Context) error {
			close(done)
			return nil
		})
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on a different lead blocked")
	}
	close(release)
}

func TestKeyedMutexLocker_ReleasesEntries(t *testing.T) {
	locker := NewKeyedMutexLocker()

	for i := 0; i < 10; i++ {
		err := locker.WithLock(context.Background(), uuid.New(), func(ctx context.Context) error {
			return nil
		})
		require.NoError(t, err)
	}

	locker.mu.Lock()
	defer locker.mu.Unlock()
	assert.Empty(t, locker.locks)
}

func TestKeyedMutexLocker_CancelledContext(t *testing.T) {
	locker := NewKeyedMutexLocker()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := locker.WithLock(ctx, uuid.New(), func(ctx context.Context) error {
		called = true
		return nil
	})
	assert.Error(t, err)
	assert.False(t, called)
}
