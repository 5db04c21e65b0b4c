package locker

import (
	"context"
	"sync"
	"time"
)

type localSlot struct {
	sem  chan struct{}
	refs int
}

// LocalLocker is an in-process keyed lock. Slots are created on demand and
// dropped once nobody holds or waits for them.
type LocalLocker struct {
	mu    sync.Mutex
	slots map[string]*localSlot
	wait  time.Duration
}

func NewLocalLocker(opts Options) *LocalLocker {
	opts = opts.withDefaults()
	return &LocalLocker{
		slots: make(map[string]*localSlot),
		wait:  opts.Wait,
	}
}

func (l *LocalLocker) Acquire(ctx context.Context, key string) (Release, error) {
	if key == "" {
		return nil, ErrNoKey
	}

	slot := l.ref(key)

	timer := time.NewTimer(l.wait)
	defer timer.Stop()

	select {
	case slot.sem <- struct{}{}:
	case <-ctx.Done():
		l.unref(key)
		return nil, ctx.Err()
	case <-timer.C:
		// one last non-blocking attempt covers wait == 0
		select {
		case slot.sem <- struct{}{}:
		default:
			l.unref(key)
			return nil, ErrLockHeld
		}
	}

	var once sync.Once
	return func(context.Context) error {
		once.Do(func() {
			<-slot.sem
			l.unref(key)
		})
		return nil
	}, nil
}

func (l *LocalLocker) ref(key string) *localSlot {
	l.mu.Lock()
	defer l.mu.Unlock()

	slot, ok := l.slots[key]
	if !ok {
		slot = &localSlot{sem: make(chan struct{}, 1)}
		l.slots[key] = slot
	}
	slot.refs++
	return slot
}

func (l *LocalLocker) unref(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	slot, ok := l.slots[key]
	if !ok {
		return
	}
	slot.refs--
	if slot.refs <= 0 {
		delete(l.slots, key)
	}
}

// size reports the number of live slots.
func (l *LocalLocker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.slots)
}
