// Package locker provides keyed mutual exclusion across booking writers.
//
// LocalLocker serializes goroutines of one process. StoreLocker turns any
// Store with set-if-absent semantics (Redis, a Mongo collection) into a
// cross-instance lock with a bounded wait.
package locker

import (
	"context"
	"errors"
	"time"
)

const (
	BackendLocal = "local"
	BackendRedis = "redis"
	BackendMongo = "mongo"
)

var (
	// ErrLockHeld means the key stayed locked for the whole wait period.
	ErrLockHeld = errors.New("lock is held by another owner")
	ErrNoKey    = errors.New("lock key cannot be empty")
)

// Release frees a held lock. Calling it more than once is safe.
type Release func(ctx context.Context) error

type Locker interface {
	Acquire(ctx context.Context, key string) (Release, error)
}

type Options struct {
	// TTL bounds how long a crashed holder can keep a key.
	TTL time.Duration
	// Wait is how long Acquire keeps trying before ErrLockHeld.
	Wait time.Duration
	// RetryInterval is the pause between attempts for store backed locks.
	RetryInterval time.Duration
}

const (
	DefaultTTL           = 10 * time.Second
	DefaultWait          = 3 * time.Second
	DefaultRetryInterval = 50 * time.Millisecond
)

func (o Options) withDefaults() Options {
	if o.TTL <= 0 {
		o.TTL = DefaultTTL
	}
	if o.Wait < 0 {
		o.Wait = 0
	}
	if o.RetryInterval <= 0 {
		o.RetryInterval = DefaultRetryInterval
	}
	return o
}

// SpotKey is the lock key used for every write on a spot's calendar.
func SpotKey(spotID string) string {
	return "spot:" + spotID
}
