package core

import "sync"

// KeyedMutex serializes work per thread while letting different threads
// proceed in parallel. Idle keys hold no memory.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[ThreadKey]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

// NewKeyedMutex creates a KeyedMutex.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[ThreadKey]*keyLock)}
}

// Lock blocks until the lock for key is held and returns the function that
// releases it.
func (k *KeyedMutex) Lock(key ThreadKey) (unlock func()) {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &keyLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Unlock()
			k.mu.Lock()
			l.refs--
			if l.refs == 0 {
				delete(k.locks, key)
			}
			k.mu.Unlock()
		})
	}
}

// held returns the number of keys with a holder or waiter.
func (k *KeyedMutex) held() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
