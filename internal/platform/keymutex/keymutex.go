// Package keymutex provides per key mutual exclusion with context aware acquire
package keymutex

import (
	"context"
	"sync"
)

// KeyMutex serializes work per string key
// waiters on the same key are granted the lock roughly in arrival order
type KeyMutex struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	ch   chan struct{} // capacity 1; holding the token means holding the lock
	refs int
}

// New returns an empty KeyMutex
func New() *KeyMutex {
	return &KeyMutex{locks: make(map[string]*entry)}
}

// Lock acquires the mutex for key, blocking until it is held or ctx is done.
// On success it returns the unlock func; the caller must invoke it exactly once
func (m *KeyMutex) Lock(ctx context.Context, key string) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	e, ok := m.locks[key]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		m.locks[key] = e
	}
	e.refs++
	m.mu.Unlock()

	select {
	case e.ch <- struct{}{}:
		return func() { m.unlock(key, e) }, nil
	case <-ctx.Done():
		m.release(key, e)
		return nil, ctx.Err()
	}
}

// TryLock acquires the mutex for key only if it is immediately free
func (m *KeyMutex) TryLock(key string) (func(), bool) {
	m.mu.Lock()
	e, ok := m.locks[key]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		m.locks[key] = e
	}
	e.refs++
	m.mu.Unlock()

	select {
	case e.ch <- struct{}{}:
		return func() { m.unlock(key, e) }, true
	default:
		m.release(key, e)
		return nil, false
	}
}

func (m *KeyMutex) unlock(key string, e *entry) {
	<-e.ch
	m.release(key, e)
}

// release drops one reference and evicts the entry when nobody holds or waits
func (m *KeyMutex) release(key string, e *entry) {
	m.mu.Lock()
	e.refs--
	if e.refs == 0 {
		delete(m.locks, key)
	}
	m.mu.Unlock()
}
