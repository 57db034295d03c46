// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package glink

import (
	"fmt"
	"runtime"

	"github.com/gogpu/glink/driver"
	"github.com/gogpu/gputypes"
)

// ResourceQuery selects what LoadResources reflects. It is the driver
// query type; the alias lets callers build one without importing driver.
type ResourceQuery = driver.ResourceQuery

// reflCacheState tracks the program's reflection cache through its
// build.
//
// State machine:
//
//	NotBuilt --claim--> Building --driver query--> Built
//
// Built moves back to Building when a materially different query claims
// a rebuild, and to NotBuilt when the driver query fails.
type reflCacheState uint8

const (
	reflNotBuilt reflCacheState = iota
	reflBuilding
	reflBuilt
)

// reflectionCache is the program's reflection slot. The state and query
// fields are guarded by the program's spin lock; the driver query runs
// outside the lock while the state pins Building.
type reflectionCache struct {
	state reflCacheState
	query ResourceQuery
	refl  *Reflection
}

// Reflection is an immutable snapshot of a linked program's active
// resource interface.
//
// Entries keep the driver's reporting order; the snapshot never
// re-sorts them. A Reflection is safe for concurrent use without
// locking and remains valid after the owning program is released; it
// must outlive any binder still reading it.
type Reflection struct {
	query     ResourceQuery
	resources []driver.Resource
	byName    map[string]int
}

// LoadResources returns the program's resource reflection, querying the
// driver on first call and serving the cached snapshot afterwards.
//
// The cache is keyed by the query: calling again with an equal query is
// a cache hit and returns the same *Reflection with no driver work, so
// per-frame callers pay a map-free pointer fetch. A different query
// rebuilds the cache and replaces the snapshot; snapshots handed out
// earlier stay valid.
//
// Concurrent first calls are serialized: exactly one driver query runs,
// and every caller with the same query gets the same snapshot.
//
// LoadResources returns ErrNotLinked unless Status is
// LinkStatusSucceeded, and ErrReleased after Release.
func (p *Program) LoadResources(q ResourceQuery) (*Reflection, error) {
	for {
		p.mu.Lock()
		if p.handle == 0 {
			p.mu.Unlock()
			return nil, ErrReleased
		}
		if p.status != LinkStatusSucceeded {
			st := p.status
			p.mu.Unlock()
			return nil, fmt.Errorf("glink: load resources: status %s: %w", st, ErrNotLinked)
		}

		switch p.refl.state {
		case reflBuilt:
			if p.refl.query == q {
				r := p.refl.refl
				p.mu.Unlock()
				return r, nil
			}
			// Materially different query: rebuild and replace.
			p.refl.state = reflBuilding
			p.refl.query = q
		case reflNotBuilt:
			p.refl.state = reflBuilding
			p.refl.query = q
		case reflBuilding:
			// Another goroutine owns the build. Wait for it and
			// re-evaluate; if it built our query we share its snapshot.
			p.mu.Unlock()
			runtime.Gosched()
			continue
		}
		h := p.handle
		p.mu.Unlock()

		return p.buildReflection(h, q)
	}
}

// buildReflection runs the driver query for the claimed build and
// publishes the snapshot. On driver failure the cache reverts to
// NotBuilt so a later call can retry.
func (p *Program) buildReflection(h driver.ProgramID, q ResourceQuery) (*Reflection, error) {
	res, err := p.ctx.ActiveResources(h, q)
	if err != nil {
		p.mu.Lock()
		p.refl = reflectionCache{}
		p.mu.Unlock()
		return nil, fmt.Errorf("glink: query active resources: %w", err)
	}

	r := newReflection(q, res)
	p.mu.Lock()
	p.refl = reflectionCache{state: reflBuilt, query: q, refl: r}
	p.mu.Unlock()

	Logger().Debug("resources reflected", "handle", uint64(h), "count", r.Len())
	return r, nil
}

func newReflection(q ResourceQuery, res []driver.Resource) *Reflection {
	r := &Reflection{
		query:     q,
		resources: append([]driver.Resource(nil), res...),
		byName:    make(map[string]int, len(res)),
	}
	for i, e := range r.resources {
		if _, dup := r.byName[e.Name]; !dup {
			r.byName[e.Name] = i
		}
	}
	return r
}

// Len returns the number of reflected resources.
func (r *Reflection) Len() int { return len(r.resources) }

// At returns the i'th resource in driver reporting order.
func (r *Reflection) At(i int) driver.Resource { return r.resources[i] }

// Lookup returns the first resource with the given name.
func (r *Reflection) Lookup(name string) (driver.Resource, bool) {
	i, ok := r.byName[name]
	if !ok {
		return driver.Resource{}, false
	}
	return r.resources[i], true
}

// Query returns the query this snapshot was built with.
func (r *Reflection) Query() ResourceQuery { return r.query }

// Resources returns a copy of all entries in driver reporting order.
func (r *Reflection) Resources() []driver.Resource {
	return append([]driver.Resource(nil), r.resources...)
}

// BindGroupLayoutEntries converts the reflection into WebGPU bind group
// layout entries, so a WebGPU-side consumer can mirror the linked
// program's interface. Bindings carry the driver's natural slots.
//
// Storage images are skipped: a WebGPU storage-texture layout requires
// a texel format, which driver reflection does not report. Geometry and
// tessellation stages have no WebGPU visibility bit and do not
// contribute to Visibility.
func (r *Reflection) BindGroupLayoutEntries() []gputypes.BindGroupLayoutEntry {
	entries := make([]gputypes.BindGroupLayoutEntry, 0, len(r.resources))
	for _, res := range r.resources {
		e := gputypes.BindGroupLayoutEntry{
			Binding:    res.Slot,
			Visibility: stageVisibility(res.Stages),
		}
		switch res.Kind {
		case driver.ResourceUniformBuffer:
			e.Buffer = &gputypes.BufferBindingLayout{
				Type:           gputypes.BufferBindingTypeUniform,
				MinBindingSize: uint64(res.BlockSize),
			}
		case driver.ResourceStorageBuffer:
			e.Buffer = &gputypes.BufferBindingLayout{
				Type:           gputypes.BufferBindingTypeStorage,
				MinBindingSize: uint64(res.BlockSize),
			}
		case driver.ResourceTexture:
			e.Texture = &gputypes.TextureBindingLayout{
				SampleType:    gputypes.TextureSampleTypeFloat,
				ViewDimension: gputypes.TextureViewDimension2D,
			}
		case driver.ResourceSampler:
			e.Sampler = &gputypes.SamplerBindingLayout{
				Type: gputypes.SamplerBindingTypeFiltering,
			}
		default: // driver.ResourceImage
			continue
		}
		entries = append(entries, e)
	}
	return entries
}

// stageVisibility maps a driver stage mask onto the WebGPU stage set.
func stageVisibility(m driver.StageMask) gputypes.ShaderStage {
	var v gputypes.ShaderStage
	if m.Has(driver.StageVertex) {
		v |= gputypes.ShaderStageVertex
	}
	if m.Has(driver.StageFragment) {
		v |= gputypes.ShaderStageFragment
	}
	if m.Has(driver.StageCompute) {
		v |= gputypes.ShaderStageCompute
	}
	return v
}
