package license

import "sync"

// keyMutex provides one mutex per key so device registration can
// serialize count-then-insert per license without a global lock. Entries
// are never evicted; the per-license footprint is one mutex.
type keyMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (km *keyMutex) get(key string) *sync.Mutex {
	km.mu.Lock()
	defer km.mu.Unlock()
	if km.locks == nil {
		km.locks = make(map[string]*sync.Mutex)
	}
	m, ok := km.locks[key]
	if !ok {
		m = &sync.Mutex{}
		km.locks[key] = m
	}
	return m
}

func (km *keyMutex) Lock(key string)   { km.get(key).Lock() }
func (km *keyMutex) Unlock(key string) { km.get(key).Unlock() }
