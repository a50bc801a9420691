// Package services file: services/poll_locks.go
package services

import "sync"

// pollLocks hands out one mutex per poll id. Entries are reference counted
// and removed when the last holder unlocks, so idle polls cost nothing.
type pollLocks struct {
	mu    sync.Mutex
	locks map[string]*pollLock
}

type pollLock struct {
	mu   sync.Mutex
	refs int
}

func newPollLocks() *pollLocks {
	return &pollLocks{locks: make(map[string]*pollLock)}
}

// Lock blocks until the caller holds the lock for id and returns its release func.
func (p *pollLocks) Lock(id string) func() {
	p.mu.Lock()
	l, ok := p.locks[id]
	if !ok {
		l = &pollLock{}
		p.locks[id] = l
	}
	l.refs++
	p.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		p.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(p.locks, id)
		}
		p.mu.Unlock()
	}
}

// size is the number of ids currently locked or waited on.
func (p *pollLocks) size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.locks)
}
