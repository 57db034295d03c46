// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package spin provides a lightweight spin lock for very short critical
// sections.
//
// A spin lock trades blocking for busy-waiting: acquisition under
// contention burns cycles instead of parking the goroutine. That is a win
// only when the lock is held for a handful of loads and stores, as the
// program state guards in this module are. For anything longer, use
// sync.Mutex.
package spin

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Mutex is a test-and-set spin lock.
//
// The zero value is an unlocked Mutex. A Mutex must not be copied after
// first use.
//
// Mutex is not reentrant and not fair: a goroutine that calls Lock twice
// deadlocks, and under contention the acquisition order is unspecified.
type Mutex struct {
	locked atomic.Bool
}

var _ sync.Locker = (*Mutex)(nil)

// Lock acquires the lock, spinning until it becomes available.
//
// The lock is assumed free in the common case, so Lock attempts the
// exchange first. When that fails it waits on plain loads, which keeps
// waiters from generating write traffic on the shared cache line, and
// yields the processor between polls so the holder can make progress.
func (m *Mutex) Lock() {
	for {
		if !m.locked.Swap(true) {
			return
		}
		for m.locked.Load() {
			runtime.Gosched()
		}
	}
}

// TryLock makes a single attempt to acquire the lock and reports whether
// it succeeded. It never spins.
func (m *Mutex) TryLock() bool {
	// Check with a load first: a failed exchange would invalidate the
	// cache line for the holder.
	return !m.locked.Load() && !m.locked.Swap(true)
}

// Unlock releases the lock.
//
// Unlock does not verify ownership. Calling it on a Mutex the caller does
// not hold leaves the lock state inconsistent.
func (m *Mutex) Unlock() {
	m.locked.Store(false)
}

// Locked reports whether the lock is currently held. The answer may be
// stale by the time the caller acts on it; it is intended for assertions
// and diagnostics only.
func (m *Mutex) Locked() bool {
	return m.locked.Load()
}
