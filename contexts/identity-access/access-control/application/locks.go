package application

import "sync"

// handleLocks serializes role/ban mutations per handle. Two concurrent
// moderation calls on the same handle never interleave their
// read-modify-write; calls on different handles proceed in parallel.
type handleLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newHandleLocks() *handleLocks {
	return &handleLocks{locks: make(map[string]*sync.Mutex)}
}

func (h *handleLocks) lock(handle string) func() {
	h.mu.Lock()
	lock, ok := h.locks[handle]
	if !ok {
		lock = &sync.Mutex{}
		h.locks[handle] = lock
	}
	h.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
