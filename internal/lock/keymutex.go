package lock

import (
	"context"
	"sort"
	"sync"
)

type keyMutexLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewKeyMutexLocker creates an in-process locker with one mutex per key.
// It serializes resources within a single instance only, which is enough
// for tests and for deployments that run one api-server; multi-instance
// deployments need the Redis locker.
func NewKeyMutexLocker() Locker {
	return &keyMutexLocker{locks: make(map[string]*sync.Mutex)}
}

func (l *keyMutexLocker) WithLocks(ctx context.Context, keys []string, fn func(ctx context.Context) error) error {
	sorted := make([]string, len(keys))
	copy(sorted, keys)
	sort.Strings(sorted)

	var held []*sync.Mutex
	for _, key := range sorted {
		m := l.mutexFor(key)
		if !m.TryLock() {
			for i := len(held) - 1; i >= 0; i-- {
				held[i].Unlock()
			}
			return ErrNotAcquired
		}
		held = append(held, m)
	}

	defer func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}()

	return fn(ctx)
}

func (l *keyMutexLocker) mutexFor(key string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	return m
}
