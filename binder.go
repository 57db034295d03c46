// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package glink

import (
	"fmt"

	"github.com/gogpu/glink/driver"
)

// ResolvedBinding is one reflected resource with its final slot
// assignment.
type ResolvedBinding struct {
	// Resource is the reflected entry as the driver reported it.
	Resource driver.Resource

	// Signature is the index, into the slice passed to ResolveBindings,
	// of the signature that claimed the resource.
	Signature int

	// Slot is the final binding slot: the claiming signature's base
	// offset for the resource's kind plus the entry's index within the
	// signature.
	Slot uint32
}

// BindingPlan is the result of resolving a reflection against a set of
// signatures.
//
// Plans are cheap, ephemeral values: build one, apply it, drop it. They
// are never cached — the reflection is the cached artifact, the plan is
// recomputed whenever the signature set changes.
type BindingPlan struct {
	// Resolved holds the entries that matched a signature, in
	// reflection order.
	Resolved []ResolvedBinding

	// Unresolved holds the reflected resources no signature claimed.
	// They are diagnostics, not failures: a program may use resources
	// its signatures do not cover, and those keep their driver-assigned
	// slots.
	Unresolved []driver.Resource
}

// FullyResolved reports whether every reflected resource was claimed by
// a signature.
func (p *BindingPlan) FullyResolved() bool { return len(p.Unresolved) == 0 }

// ResolveBindings maps every reflected resource onto a final binding
// slot using the given signatures. It is a pure function over its
// inputs: no driver calls, no retained state, safe for concurrent use.
//
// A name is claimed by the first signature in sigs that declares it; a
// later signature declaring the same name is never consulted. If the
// claiming signature's kind disagrees with the reflected kind,
// ResolveBindings returns a *MismatchError and no plan — even when a
// later signature declares the name with the matching kind.
//
// Resources no signature claims are collected in the plan's Unresolved
// list and logged at debug level.
func ResolveBindings(r *Reflection, sigs []*Signature) (*BindingPlan, error) {
	if r == nil {
		return nil, ErrNilReflection
	}

	plan := &BindingPlan{}
	for i := 0; i < r.Len(); i++ {
		res := r.At(i)
		claimed := false
		for si, sig := range sigs {
			e, ok := sig.lookup(res.Name)
			if !ok {
				continue
			}
			if e.Kind != res.Kind {
				return nil, &MismatchError{
					Name:      res.Name,
					Signature: sig.Name(),
					Reflected: res.Kind,
					Declared:  e.Kind,
				}
			}
			plan.Resolved = append(plan.Resolved, ResolvedBinding{
				Resource:  res,
				Signature: si,
				Slot:      sig.base[res.Kind] + e.localIndex,
			})
			claimed = true
			break
		}
		if !claimed {
			plan.Unresolved = append(plan.Unresolved, res)
			Logger().Debug("resource not covered by any signature",
				"name", res.Name, "kind", res.Kind.String())
		}
	}
	return plan, nil
}

// ApplyBindings resolves r against sigs and commits the plan to the
// driver, one binding call per resolved entry, dispatched by resource
// kind. It returns the committed plan so callers can inspect final
// slots and unresolved diagnostics.
//
// Commitment is atomic at the resolve boundary: a kind mismatch aborts
// before any driver call, so the program's bindings are either
// untouched or updated for every resolved entry. The driver calls
// themselves do not fail.
//
// The reflection must have been loaded from this program; a snapshot
// from another program would commit that program's natural slots here.
func (p *Program) ApplyBindings(r *Reflection, sigs []*Signature) (*BindingPlan, error) {
	p.mu.Lock()
	h, st := p.handle, p.status
	p.mu.Unlock()

	if h == 0 {
		return nil, ErrReleased
	}
	if st != LinkStatusSucceeded {
		return nil, fmt.Errorf("glink: apply bindings: status %s: %w", st, ErrNotLinked)
	}

	plan, err := ResolveBindings(r, sigs)
	if err != nil {
		return nil, err
	}

	for _, b := range plan.Resolved {
		switch b.Resource.Kind {
		case driver.ResourceUniformBuffer:
			p.ctx.BindUniformBlock(h, b.Resource.Slot, b.Slot)
		case driver.ResourceStorageBuffer:
			p.ctx.BindStorageBlock(h, b.Resource.Slot, b.Slot)
		case driver.ResourceTexture:
			p.ctx.BindTexture(h, b.Resource.Slot, b.Slot)
		case driver.ResourceImage:
			p.ctx.BindImage(h, b.Resource.Slot, b.Slot)
		case driver.ResourceSampler:
			p.ctx.BindSampler(h, b.Resource.Slot, b.Slot)
		}
	}

	Logger().Debug("bindings applied", "handle", uint64(h),
		"resolved", len(plan.Resolved), "unresolved", len(plan.Unresolved))
	return plan, nil
}
