package memory

import (
	"context"
	"sync"
	"time"

	"bookingcore/internal/app/locks"
)

// PropertyLocks is an in-process keyed mutex with a bounded wait.
type PropertyLocks struct {
	Wait time.Duration

	mu    sync.Mutex
	slots map[string]*lockSlot
}

type lockSlot struct {
	ch   chan struct{}
	refs int
}

func NewPropertyLocks(wait time.Duration) *PropertyLocks {
	return &PropertyLocks{Wait: wait, slots: make(map[string]*lockSlot)}
}

func (l *PropertyLocks) Acquire(ctx context.Context, key string) (func(), error) {
	slot := l.ref(key)
	var timeout <-chan time.Time
	if l.Wait > 0 {
		timer := time.NewTimer(l.Wait)
		defer timer.Stop()
		timeout = timer.C
	}
	select {
	case slot.ch <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-slot.ch
				l.unref(key)
			})
		}, nil
	case <-ctx.Done():
		l.unref(key)
		return nil, ctx.Err()
	case <-timeout:
		l.unref(key)
		return nil, locks.ErrLockTimeout
	}
}

func (l *PropertyLocks) ref(key string) *lockSlot {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.slots == nil {
		l.slots = make(map[string]*lockSlot)
	}
	slot, ok := l.slots[key]
	if !ok {
		slot = &lockSlot{ch: make(chan struct{}, 1)}
		l.slots[key] = slot
	}
	slot.refs++
	return slot
}

// unref drops idle slots so the map does not grow with every property seen.
func (l *PropertyLocks) unref(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	slot, ok := l.slots[key]
	if !ok {
		return
	}
	slot.refs--
	if slot.refs == 0 {
		delete(l.slots, key)
	}
}

var _ locks.Locker = (*PropertyLocks)(nil)
