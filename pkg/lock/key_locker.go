package lock

import (
	"sync"

	"github.com/apex/log"
)

// KeyLocker hands out one mutex per key. The map lock is only held while
// finding the key's mutex, never while waiting on it. A key's entry is
// dropped once nobody holds or waits on it.
type KeyLocker[K comparable] struct {
	mu    sync.Mutex
	locks map[K]*keyLock
}

type keyLock struct {
	sync.Mutex
	refs int
}

func NewKeyLocker[K comparable]() *KeyLocker[K] {
	return &KeyLocker[K]{locks: make(map[K]*keyLock)}
}

func (l *KeyLocker[K]) Lock(key K) {
	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &keyLock{}
		l.locks[key] = m
	}
	m.refs++
	l.mu.Unlock()

	m.Lock()
}

func (l *KeyLocker[K]) Unlock(key K) {
	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		l.mu.Unlock()
		log.Errorf("Unlock called on key (%v) with no mutex", key)
		return
	}

	m.refs--
	if m.refs == 0 {
		delete(l.locks, key)
	}
	l.mu.Unlock()

	m.Unlock()
}

func (l *KeyLocker[K]) WithLock(key K, f func() error) error {
	l.Lock(key)
	defer l.Unlock(key)
	return f()
}

// Len reports how many keys are currently held or waited on.
func (l *KeyLocker[K]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
