// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package glink

import (
	"encoding/binary"
	"hash"
	"hash/fnv"
	"sync"
	"sync/atomic"

	"github.com/gogpu/glink/driver"
)

// ProgramCache caches linked programs by their stage set.
//
// Linking is expensive, and pipelines built from the same stages share
// one program. The cache stores programs indexed by a hash of the stage
// references and the separable flag, so a second request for the same
// combination returns the already linked program.
//
// Thread Safety:
// ProgramCache is safe for concurrent use. It uses RWMutex with
// double-check locking for efficient reads and safe writes.
//
// Usage:
//
//	cache := glink.NewProgramCache(ctx)
//	prog, err := cache.GetOrLink(stages, false)
//	if err != nil {
//	    // handle error
//	}
//	// Use prog; the cache owns it. Release the cache when done.
//
// The cache tracks hit/miss statistics for performance monitoring.
type ProgramCache struct {
	ctx driver.Context

	// mu protects the program map.
	mu sync.RWMutex

	// programs stores linked programs indexed by stage-set hash.
	programs map[uint64]*Program

	// hits counts cache hits (atomic for lock-free reads).
	hits uint64

	// misses counts cache misses (atomic for lock-free reads).
	misses uint64
}

// NewProgramCache creates an empty program cache on ctx. Programs are
// linked on demand. A nil ctx returns ErrNilContext from every
// GetOrLink call.
func NewProgramCache(ctx driver.Context) *ProgramCache {
	return &ProgramCache{
		ctx:      ctx,
		programs: make(map[uint64]*Program),
	}
}

// GetOrLink returns the cached program for the stage combination or
// links a new one.
//
// The method implements the "get or create" pattern with double-check
// locking:
//  1. Fast path: RLock, check cache, return if found
//  2. Slow path: Lock, double-check, link if needed
//
// A newly linked program is waited to completion before it is cached;
// only successfully linked programs enter the cache. On link failure
// the program is released and a *LinkError carrying the driver's info
// log is returned — failures are never cached, so a later call retries.
//
// Cached programs are owned by the cache: callers must not Release
// them. The stage slice is hashed in order; the same stages listed in a
// different order are a different cache entry, matching their different
// attach order.
func (c *ProgramCache) GetOrLink(stages []StageRef, separable bool) (*Program, error) {
	if c.ctx == nil {
		return nil, ErrNilContext
	}
	if err := validateStages(stages); err != nil {
		return nil, err
	}

	key := hashStageSet(stages, separable)

	// Fast path: read lock
	c.mu.RLock()
	if prog, ok := c.programs[key]; ok {
		c.mu.RUnlock()
		atomic.AddUint64(&c.hits, 1)
		return prog, nil
	}
	c.mu.RUnlock()

	// Slow path: write lock with double-check
	c.mu.Lock()
	defer c.mu.Unlock()

	if prog, ok := c.programs[key]; ok {
		atomic.AddUint64(&c.hits, 1)
		return prog, nil
	}

	prog, err := NewProgram(c.ctx)
	if err != nil {
		return nil, err
	}
	if err := prog.Link(stages, separable); err != nil {
		prog.Release()
		return nil, err
	}
	if st := prog.Status(true); st != LinkStatusSucceeded {
		err := &LinkError{Log: prog.InfoLog()}
		prog.Release()
		return nil, err
	}

	c.programs[key] = prog
	atomic.AddUint64(&c.misses, 1)

	return prog, nil
}

// Stats returns cache statistics.
//
// Returns the number of cache hits and misses. The values are read
// atomically and may not be perfectly synchronized with each other.
func (c *ProgramCache) Stats() (hits, misses uint64) {
	return atomic.LoadUint64(&c.hits), atomic.LoadUint64(&c.misses)
}

// HitRate returns the cache hit rate as a fraction (0.0 to 1.0).
//
// Returns 0.0 if no requests have been made.
func (c *ProgramCache) HitRate() float64 {
	hits := atomic.LoadUint64(&c.hits)
	misses := atomic.LoadUint64(&c.misses)
	total := hits + misses
	if total == 0 {
		return 0.0
	}
	return float64(hits) / float64(total)
}

// Len returns the number of cached programs.
func (c *ProgramCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.programs)
}

// Release releases every cached program and resets the statistics. The
// cache is empty and ready for reuse afterwards.
func (c *ProgramCache) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, prog := range c.programs {
		prog.Release()
	}
	c.programs = make(map[uint64]*Program)
	atomic.StoreUint64(&c.hits, 0)
	atomic.StoreUint64(&c.misses, 0)
}

// hashStageSet computes an FNV-1a hash of the stage references in order
// plus the separable flag.
func hashStageSet(stages []StageRef, separable bool) uint64 {
	h := fnv.New64a()
	hashWriteUint32(h, uint32(len(stages)))
	for _, s := range stages {
		hashWriteUint32(h, uint32(s.Kind))
		hashWriteUint64(h, uint64(s.Shader))
	}
	hashWriteBool(h, separable)
	return h.Sum64()
}

// hashWriteUint32 writes a uint32 to the hash.
func hashWriteUint32(h hash.Hash64, v uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, _ = h.Write(buf[:])
}

// hashWriteUint64 writes a uint64 to the hash.
func hashWriteUint64(h hash.Hash64, v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	_, _ = h.Write(buf[:])
}

// hashWriteBool writes a bool to the hash.
func hashWriteBool(h hash.Hash64, v bool) {
	if v {
		_, _ = h.Write([]byte{1})
	} else {
		_, _ = h.Write([]byte{0})
	}
}
