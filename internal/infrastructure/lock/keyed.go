package lock

import (
	"context"
	"sync"

	appledger "github.com/exportops/backend/internal/application/ledger"
)

// KeyedLocker serializes callers per key with in-process mutexes.
// Sufficient for single-instance deployments; distributed deployments wrap
// it with a Redis lease via RedisLocker.
type KeyedLocker struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	ch   chan struct{}
	refs int
}

// NewKeyedLocker creates a new KeyedLocker.
func NewKeyedLocker() *KeyedLocker {
	return &KeyedLocker{locks: make(map[string]*keyedLock)}
}

// WithLock runs fn while holding the named lock. It blocks until the lock is
// acquired or ctx is done.
func (l *KeyedLocker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	kl := l.acquireRef(key)
	defer l.releaseRef(key, kl)

	select {
	case kl.ch <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-kl.ch }()

	return fn(ctx)
}

// acquireRef returns the lock state for the key, creating it on first use.
// The refcount keeps the map from growing with dead keys.
func (l *KeyedLocker) acquireRef(key string) *keyedLock {
	l.mu.Lock()
	defer l.mu.Unlock()

	kl, ok := l.locks[key]
	if !ok {
		kl = &keyedLock{ch: make(chan struct{}, 1)}
		l.locks[key] = kl
	}
	kl.refs++
	return kl
}

func (l *KeyedLocker) releaseRef(key string, kl *keyedLock) {
	l.mu.Lock()
	defer l.mu.Unlock()

	kl.refs--
	if kl.refs == 0 {
		delete(l.locks, key)
	}
}

// Ensure KeyedLocker implements the application Locker port
var _ appledger.Locker = (*KeyedLocker)(nil)
