package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a distributed lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker coordinates entity access across replicas. The session
// manager uses it (when configured) in addition to its in-process keyed mutex.
type DistributedLocker interface {
	// Lock acquires a distributed lock for the given key (an entity ID).
	// It blocks until the lock is acquired or the context is canceled.
	// The returned UnlockFunc MUST be called to release the lock; a crashed
	// holder is recovered via the TTL.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
