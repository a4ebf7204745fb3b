// Package concurrency serializes work per key inside one process.
package concurrency

import (
	"context"
	"sync"
)

type keyLock struct {
	ch   chan struct{}
	refs int
}

// LockManager hands out per-key mutual exclusion. Entries are reference
// counted and removed once the last holder or waiter releases them, so the
// key space can be unbounded (one key per event and player).
type LockManager struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

// NewLockManager creates a new LockManager
func NewLockManager() *LockManager {
	return &LockManager{locks: make(map[string]*keyLock)}
}

// Lock blocks until key is held or ctx is done. The returned func releases it.
// Waiters acquire in the order the channel wakes them, which for a single
// caller goroutine per request preserves arrival order.
func (lm *LockManager) Lock(ctx context.Context, key string) (func(), error) {
	lm.mu.Lock()
	l, ok := lm.locks[key]
	if !ok {
		l = &keyLock{ch: make(chan struct{}, 1)}
		lm.locks[key] = l
	}
	l.refs++
	lm.mu.Unlock()

	select {
	case l.ch <- struct{}{}:
	case <-ctx.Done():
		lm.release(key, l, false)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() { lm.release(key, l, true) })
	}, nil
}

// WithLock runs fn while holding key
func (lm *LockManager) WithLock(ctx context.Context, key string, fn func() error) error {
	unlock, err := lm.Lock(ctx, key)
	if err != nil {
		return err
	}
	defer unlock()
	return fn()
}

// Len reports how many keys are currently held or awaited
func (lm *LockManager) Len() int {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	return len(lm.locks)
}

func (lm *LockManager) release(key string, l *keyLock, held bool) {
	if held {
		<-l.ch
	}
	lm.mu.Lock()
	defer lm.mu.Unlock()
	l.refs--
	if l.refs == 0 {
		delete(lm.locks, key)
	}
}
