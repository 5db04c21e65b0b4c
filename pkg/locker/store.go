package locker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store is a set-if-absent key store with expiry. TryAcquire must not
// overwrite a live key and Release must only delete a key still owned by token.
type Store interface {
	TryAcquire(ctx context.Context, key, token string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key, token string) error
}

// StoreLocker polls a Store until the key is won or the wait runs out.
type StoreLocker struct {
	store Store
	opts  Options
}

func NewStoreLocker(store Store, opts Options) *StoreLocker {
	return &StoreLocker{store: store, opts: opts.withDefaults()}
}

func (l *StoreLocker) Acquire(ctx context.Context, key string) (Release, error) {
	if key == "" {
		return nil, ErrNoKey
	}

	token := uuid.NewString()
	deadline := time.Now().Add(l.opts.Wait)

	for {
		ok, err := l.store.TryAcquire(ctx, key, token, l.opts.TTL)
		if err != nil {
			return nil, fmt.Errorf("acquire lock %q: %w", key, err)
		}
		if ok {
			return l.release(key, token), nil
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, ErrLockHeld
		}

		pause := min(l.opts.RetryInterval, remaining)
		timer := time.NewTimer(pause)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

func (l *StoreLocker) release(key, token string) Release {
	var (
		once sync.Once
		err  error
	)
	return func(ctx context.Context) error {
		once.Do(func() {
			// release even if the request context is already done
			releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.opts.TTL)
			defer cancel()
			err = l.store.Release(releaseCtx, key, token)
		})
		return err
	}
}
