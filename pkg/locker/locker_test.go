package locker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory Store with the same semantics as the Redis and
// Mongo backends.
type memStore struct {
	mu    sync.Mutex
	keys  map[string]memEntry
	fail  error
	tries atomic.Int32
}

type memEntry struct {
	token   string
	expires time.Time
}

func newMemStore() *memStore {
	return &memStore{keys: make(map[string]memEntry)}
}

func (s *memStore) TryAcquire(_ context.Context, key, token string, ttl time.Duration) (bool, error) {
	s.tries.Add(1)
	if s.fail != nil {
		return false, s.fail
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.keys[key]; ok && time.Now().Before(e.expires) {
		return false, nil
	}
	s.keys[key] = memEntry{token: token, expires: time.Now().Add(ttl)}
	return true, nil
}

func (s *memStore) Release(_ context.Context, key, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.keys[key]; ok && e.token == token {
		delete(s.keys, key)
	}
	return nil
}

func lockers(t *testing.T, wait time.Duration) map[string]Locker {
	t.Helper()
	opts := Options{TTL: time.Minute, Wait: wait, RetryInterval: 5 * time.Millisecond}
	return map[string]Locker{
		"local": NewLocalLocker(opts),
		"store": NewStoreLocker(newMemStore(), opts),
	}
}

func TestLocker_HeldKeyTimesOut(t *testing.T) {
	for name, l := range lockers(t, 30*time.Millisecond) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			release, err := l.Acquire(ctx, SpotKey("s1"))
			require.NoError(t, err)

			start := time.Now()
			_, err = l.Acquire(ctx, SpotKey("s1"))
			assert.ErrorIs(t, err, ErrLockHeld)
			assert.GreaterOrEqual(t, time.Since(start), 25*time.Millisecond)

			other, err := l.Acquire(ctx, SpotKey("s2"))
			require.NoError(t, err, "different keys must not block each other")
			require.NoError(t, other(ctx))

			require.NoError(t, release(ctx))
			again, err := l.Acquire(ctx, SpotKey("s1"))
			require.NoError(t, err)
			require.NoError(t, again(ctx))
		})
	}
}

func TestLocker_WaiterGetsLockAfterRelease(t *testing.T) {
	for name, l := range lockers(t, time.Second) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			release, err := l.Acquire(ctx, "k")
			require.NoError(t, err)

			go func() {
				time.Sleep(20 * time.Millisecond)
				_ = release(ctx)
			}()

			second, err := l.Acquire(ctx, "k")
			require.NoError(t, err)
			require.NoError(t, second(ctx))
		})
	}
}

func TestLocker_MutualExclusion(t *testing.T) {
	for name, l := range lockers(t, 5*time.Second) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			var (
				inside  atomic.Int32
				maxSeen atomic.Int32
				wg      sync.WaitGroup
			)

			for i := 0; i < 20; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					release, err := l.Acquire(ctx, "shared")
					if !assert.NoError(t, err) {
						return
					}
					n := inside.Add(1)
					if n > maxSeen.Load() {
						maxSeen.Store(n)
					}
					time.Sleep(time.Millisecond)
					inside.Add(-1)
					assert.NoError(t, release(ctx))
				}()
			}
			wg.Wait()

			assert.Equal(t, int32(1), maxSeen.Load())
		})
	}
}

func TestLocker_ContextCancelled(t *testing.T) {
	for name, l := range lockers(t, time.Minute) {
		t.Run(name, func(t *testing.T) {
			release, err := l.Acquire(context.Background(), "k")
			require.NoError(t, err)
			defer release(context.Background())

			ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
			defer cancel()

			_, err = l.Acquire(ctx, "k")
			assert.ErrorIs(t, err, context.DeadlineExceeded)
		})
	}
}

func TestLocker_EmptyKey(t *testing.T) {
	for name, l := range lockers(t, 0) {
		t.Run(name, func(t *testing.T) {
			_, err := l.Acquire(context.Background(), "")
			assert.ErrorIs(t, err, ErrNoKey)
		})
	}
}

func TestLocalLocker_DropsIdleSlots(t *testing.T) {
	l := NewLocalLocker(Options{Wait: 10 * time.Millisecond})
	ctx := context.Background()

	release, err := l.Acquire(ctx, "a")
	require.NoError(t, err)
	_, err = l.Acquire(ctx, "a")
	require.ErrorIs(t, err, ErrLockHeld)
	assert.Equal(t, 1, l.size())

	require.NoError(t, release(ctx))
	require.NoError(t, release(ctx), "release is idempotent")
	assert.Equal(t, 0, l.size())
}

func TestStoreLocker_ForeignTokenCannotRelease(t *testing.T) {
	store := newMemStore()
	l := NewStoreLocker(store, Options{TTL: time.Minute, Wait: 0})
	ctx := context.Background()

	release, err := l.Acquire(ctx, "k")
	require.NoError(t, err)

	require.NoError(t, store.Release(ctx, "k", "someone-else"))
	_, err = l.Acquire(ctx, "k")
	assert.ErrorIs(t, err, ErrLockHeld, "foreign release must be a no-op")

	require.NoError(t, release(ctx))
	_, err = l.Acquire(ctx, "k")
	assert.NoError(t, err)
}

func TestStoreLocker_ExpiredLockIsReclaimed(t *testing.T) {
	store := newMemStore()
	l := NewStoreLocker(store, Options{TTL: 20 * time.Millisecond, Wait: time.Second, RetryInterval: 5 * time.Millisecond})
	ctx := context.Background()

	_, err := l.Acquire(ctx, "k")
	require.NoError(t, err)

	// holder never releases; TTL frees the key
	release, err := l.Acquire(ctx, "k")
	require.NoError(t, err)
	require.NoError(t, release(ctx))
}

func TestStoreLocker_StoreErrorIsReturned(t *testing.T) {
	store := newMemStore()
	store.fail = errors.New("connection refused")
	l := NewStoreLocker(store, Options{Wait: time.Second})

	_, err := l.Acquire(context.Background(), "k")
	assert.ErrorIs(t, err, store.fail)
	assert.Equal(t, int32(1), store.tries.Load(), "store errors are not retried")
}
