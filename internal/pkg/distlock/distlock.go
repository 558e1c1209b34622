// Package distlock provides a Redis-backed mutual exclusion lock shared by
// every worker process.
package distlock

import (
	"context"
	"errors"
)

// ErrNotOwner is returned by Extend when the lock expired or was taken over.
var ErrNotOwner = errors.New("distlock: lock not owned")

// DistLock is a single lock instance. Use one instance per goroutine.
type DistLock interface {
	// Acquire tries once and reports whether the lock is now held.
	Acquire(ctx context.Context) (bool, error)
	// Release gives the lock up if this instance still owns it.
	Release(ctx context.Context) error
}
