package ledger

import "context"

// Locker serializes writers per ledger key. Every mutation of a
// (warehouse, product) slice of the ledger runs under the key returned by
// ProductKey.LockKey, so two dispatches against the same stock never
// interleave.
type Locker interface {
	// WithLock runs fn while holding the named lock. It blocks until the
	// lock is acquired or ctx is done.
	WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

// NoOpLocker runs the function without locking. Used in tests.
type NoOpLocker struct{}

// WithLock runs fn directly
func (NoOpLocker) WithLock(ctx context.Context, _ string, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
