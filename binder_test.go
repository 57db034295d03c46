// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package glink

import (
	"errors"
	"testing"

	"github.com/gogpu/glink/driver"
	"github.com/gogpu/glink/drivertest"
)

func TestResolveBindingsNilReflection(t *testing.T) {
	if _, err := ResolveBindings(nil, nil); !errors.Is(err, ErrNilReflection) {
		t.Errorf("ResolveBindings(nil) = %v, want ErrNilReflection", err)
	}
}

func TestResolveBindingsFullCoverage(t *testing.T) {
	r := newReflection(ResourceQuery{}, []driver.Resource{
		{Name: "uFrame", Kind: driver.ResourceUniformBuffer, Slot: 3},
		{Name: "uAlbedo", Kind: driver.ResourceTexture, Slot: 7},
		{Name: "bParticles", Kind: driver.ResourceStorageBuffer, Slot: 1},
	})
	sig := mustSignature(t, "all", []SignatureEntry{
		{Name: "uFrame", Kind: driver.ResourceUniformBuffer},
		{Name: "uAlbedo", Kind: driver.ResourceTexture},
		{Name: "bParticles", Kind: driver.ResourceStorageBuffer},
	})

	plan, err := ResolveBindings(r, []*Signature{sig})
	if err != nil {
		t.Fatalf("ResolveBindings: %v", err)
	}
	if !plan.FullyResolved() {
		t.Fatalf("plan not fully resolved: %d unresolved", len(plan.Unresolved))
	}
	if len(plan.Resolved) != 3 {
		t.Fatalf("len(Resolved) = %d, want 3", len(plan.Resolved))
	}

	// Resolution preserves reflection order and keeps driver slots in
	// Resource while assigning final slots per kind.
	for i, b := range plan.Resolved {
		if b.Resource != r.At(i) {
			t.Errorf("Resolved[%d].Resource = %+v, want %+v", i, b.Resource, r.At(i))
		}
		if b.Signature != 0 {
			t.Errorf("Resolved[%d].Signature = %d, want 0", i, b.Signature)
		}
	}
	// Each kind has its own zero-based slot space.
	for i, want := range []uint32{0, 0, 0} {
		if plan.Resolved[i].Slot != want {
			t.Errorf("Resolved[%d].Slot = %d, want %d", i, plan.Resolved[i].Slot, want)
		}
	}
}

func TestResolveBindingsFirstMatchWins(t *testing.T) {
	r := newReflection(ResourceQuery{}, []driver.Resource{
		{Name: "uShared", Kind: driver.ResourceTexture, Slot: 5},
	})
	first := mustSignature(t, "first", []SignatureEntry{
		{Name: "uShared", Kind: driver.ResourceTexture},
	}, WithBaseOffset(driver.ResourceTexture, 2))
	second := mustSignature(t, "second", []SignatureEntry{
		{Name: "uShared", Kind: driver.ResourceTexture},
	}, WithBaseOffset(driver.ResourceTexture, 7))

	plan, err := ResolveBindings(r, []*Signature{first, second})
	if err != nil {
		t.Fatalf("ResolveBindings: %v", err)
	}
	if len(plan.Resolved) != 1 {
		t.Fatalf("len(Resolved) = %d, want 1", len(plan.Resolved))
	}
	b := plan.Resolved[0]
	if b.Signature != 0 {
		t.Errorf("Signature = %d, want 0 (first declaring signature claims)", b.Signature)
	}
	if b.Slot != 2 {
		t.Errorf("Slot = %d, want 2 from the first signature's base", b.Slot)
	}
}

func TestResolveBindingsKindMismatch(t *testing.T) {
	r := newReflection(ResourceQuery{}, []driver.Resource{
		{Name: "uData", Kind: driver.ResourceUniformBuffer, Slot: 0},
	})
	sig := mustSignature(t, "pass", []SignatureEntry{
		{Name: "uData", Kind: driver.ResourceTexture},
	})

	plan, err := ResolveBindings(r, []*Signature{sig})
	if plan != nil {
		t.Error("plan != nil on mismatch, want nil")
	}
	var mismatch *MismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("error = %v, want *MismatchError", err)
	}
	if !errors.Is(err, ErrBindingMismatch) {
		t.Error("error does not match ErrBindingMismatch")
	}
	if mismatch.Name != "uData" || mismatch.Signature != "pass" {
		t.Errorf("MismatchError = %+v, want name uData in signature pass", mismatch)
	}
	if mismatch.Reflected != driver.ResourceUniformBuffer || mismatch.Declared != driver.ResourceTexture {
		t.Errorf("MismatchError kinds = %v/%v, want uniform buffer/texture",
			mismatch.Reflected, mismatch.Declared)
	}
}

func TestResolveBindingsMismatchBeatsLaterMatch(t *testing.T) {
	// The first signature declaring the name claims it. A matching
	// declaration in a later signature does not rescue a mismatch.
	r := newReflection(ResourceQuery{}, []driver.Resource{
		{Name: "uData", Kind: driver.ResourceStorageBuffer, Slot: 0},
	})
	wrong := mustSignature(t, "wrong", []SignatureEntry{
		{Name: "uData", Kind: driver.ResourceTexture},
	})
	right := mustSignature(t, "right", []SignatureEntry{
		{Name: "uData", Kind: driver.ResourceStorageBuffer},
	})

	if _, err := ResolveBindings(r, []*Signature{wrong, right}); !errors.Is(err, ErrBindingMismatch) {
		t.Errorf("ResolveBindings = %v, want ErrBindingMismatch", err)
	}
}

func TestResolveBindingsUnresolved(t *testing.T) {
	r := newReflection(ResourceQuery{}, []driver.Resource{
		{Name: "uKnown", Kind: driver.ResourceTexture, Slot: 0},
		{Name: "uDebugProbe", Kind: driver.ResourceTexture, Slot: 1},
	})
	sig := mustSignature(t, "partial", []SignatureEntry{
		{Name: "uKnown", Kind: driver.ResourceTexture},
	})

	plan, err := ResolveBindings(r, []*Signature{sig})
	if err != nil {
		t.Fatalf("ResolveBindings: %v", err)
	}
	if len(plan.Resolved) != 1 || plan.Resolved[0].Resource.Name != "uKnown" {
		t.Errorf("Resolved = %+v, want uKnown only", plan.Resolved)
	}
	if len(plan.Unresolved) != 1 || plan.Unresolved[0].Name != "uDebugProbe" {
		t.Errorf("Unresolved = %+v, want uDebugProbe only", plan.Unresolved)
	}
	if plan.FullyResolved() {
		t.Error("FullyResolved() = true with an unresolved resource")
	}
}

func TestResolveBindingsDisjointBaseOffsets(t *testing.T) {
	// Two signatures flatten into one slot space: signature A's three
	// textures occupy [0,3), signature B's two occupy [8,10).
	r := newReflection(ResourceQuery{}, []driver.Resource{
		{Name: "a0", Kind: driver.ResourceTexture, Slot: 11},
		{Name: "a1", Kind: driver.ResourceTexture, Slot: 12},
		{Name: "a2", Kind: driver.ResourceTexture, Slot: 13},
		{Name: "b0", Kind: driver.ResourceTexture, Slot: 14},
		{Name: "b1", Kind: driver.ResourceTexture, Slot: 15},
	})
	sigA := mustSignature(t, "a", []SignatureEntry{
		{Name: "a0", Kind: driver.ResourceTexture},
		{Name: "a1", Kind: driver.ResourceTexture},
		{Name: "a2", Kind: driver.ResourceTexture},
	})
	sigB := mustSignature(t, "b", []SignatureEntry{
		{Name: "b0", Kind: driver.ResourceTexture},
		{Name: "b1", Kind: driver.ResourceTexture},
	}, WithBaseOffset(driver.ResourceTexture, 8))

	plan, err := ResolveBindings(r, []*Signature{sigA, sigB})
	if err != nil {
		t.Fatalf("ResolveBindings: %v", err)
	}
	wantSlots := map[string]uint32{"a0": 0, "a1": 1, "a2": 2, "b0": 8, "b1": 9}
	seen := make(map[uint32]string, len(wantSlots))
	for _, b := range plan.Resolved {
		want := wantSlots[b.Resource.Name]
		if b.Slot != want {
			t.Errorf("%s: Slot = %d, want %d", b.Resource.Name, b.Slot, want)
		}
		if prev, taken := seen[b.Slot]; taken {
			t.Errorf("slot %d assigned to both %s and %s", b.Slot, prev, b.Resource.Name)
		}
		seen[b.Slot] = b.Resource.Name
	}
}

func TestResolveBindingsAgreesWithSlotOf(t *testing.T) {
	r := newReflection(ResourceQuery{}, []driver.Resource{
		{Name: "uFrame", Kind: driver.ResourceUniformBuffer, Slot: 2},
		{Name: "uAlbedo", Kind: driver.ResourceTexture, Slot: 4},
	})
	sig := mustSignature(t, "frame", []SignatureEntry{
		{Name: "uFrame", Kind: driver.ResourceUniformBuffer},
		{Name: "uAlbedo", Kind: driver.ResourceTexture},
	},
		WithBaseOffset(driver.ResourceUniformBuffer, 1),
		WithBaseOffset(driver.ResourceTexture, 6),
	)

	plan, err := ResolveBindings(r, []*Signature{sig})
	if err != nil {
		t.Fatalf("ResolveBindings: %v", err)
	}
	for _, b := range plan.Resolved {
		want, ok := sig.SlotOf(b.Resource.Name)
		if !ok {
			t.Fatalf("SlotOf(%q) = false, want true", b.Resource.Name)
		}
		if b.Slot != want {
			t.Errorf("%s: resolver slot %d, SlotOf %d — must agree", b.Resource.Name, b.Slot, want)
		}
	}
}

func TestApplyBindingsCommitsPlan(t *testing.T) {
	ctx := drivertest.New()
	ctx.ScriptResources([]driver.Resource{
		{Name: "uFrame", Kind: driver.ResourceUniformBuffer, Slot: 3},
		{Name: "bBones", Kind: driver.ResourceStorageBuffer, Slot: 1},
		{Name: "uAlbedo", Kind: driver.ResourceTexture, Slot: 9},
		{Name: "imgOut", Kind: driver.ResourceImage, Slot: 5},
	})
	p := linkedProgram(t, ctx)
	defer p.Release()

	r, err := p.LoadResources(ResourceQuery{Stages: driver.StageMaskAll})
	if err != nil {
		t.Fatalf("LoadResources: %v", err)
	}
	sig := mustSignature(t, "pass", []SignatureEntry{
		{Name: "uFrame", Kind: driver.ResourceUniformBuffer},
		{Name: "bBones", Kind: driver.ResourceStorageBuffer},
		{Name: "uAlbedo", Kind: driver.ResourceTexture},
		{Name: "imgOut", Kind: driver.ResourceImage},
	},
		WithBaseOffset(driver.ResourceTexture, 2),
		WithBaseOffset(driver.ResourceImage, 1),
	)

	plan, err := p.ApplyBindings(r, []*Signature{sig})
	if err != nil {
		t.Fatalf("ApplyBindings: %v", err)
	}
	if !plan.FullyResolved() {
		t.Fatalf("plan not fully resolved: %+v", plan.Unresolved)
	}

	want := []drivertest.BindCall{
		{Kind: driver.ResourceUniformBuffer, Program: p.Handle(), Natural: 3, Slot: 0},
		{Kind: driver.ResourceStorageBuffer, Program: p.Handle(), Natural: 1, Slot: 0},
		{Kind: driver.ResourceTexture, Program: p.Handle(), Natural: 9, Slot: 2},
		{Kind: driver.ResourceImage, Program: p.Handle(), Natural: 5, Slot: 1},
	}
	got := ctx.BindCalls()
	if len(got) != len(want) {
		t.Fatalf("len(BindCalls) = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("BindCalls[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestApplyBindingsMismatchTouchesNothing(t *testing.T) {
	ctx := drivertest.New()
	ctx.ScriptResources([]driver.Resource{
		{Name: "uFrame", Kind: driver.ResourceUniformBuffer, Slot: 0},
		{Name: "uData", Kind: driver.ResourceStorageBuffer, Slot: 1},
	})
	p := linkedProgram(t, ctx)
	defer p.Release()

	r, err := p.LoadResources(ResourceQuery{Stages: driver.StageMaskAll})
	if err != nil {
		t.Fatalf("LoadResources: %v", err)
	}
	// uFrame resolves fine; uData mismatches. Nothing may be bound.
	sig := mustSignature(t, "pass", []SignatureEntry{
		{Name: "uFrame", Kind: driver.ResourceUniformBuffer},
		{Name: "uData", Kind: driver.ResourceTexture},
	})

	plan, err := p.ApplyBindings(r, []*Signature{sig})
	if !errors.Is(err, ErrBindingMismatch) {
		t.Fatalf("ApplyBindings = %v, want ErrBindingMismatch", err)
	}
	if plan != nil {
		t.Error("plan != nil on mismatch, want nil")
	}
	if calls := ctx.BindCalls(); len(calls) != 0 {
		t.Errorf("driver saw %d binding calls after mismatch, want 0", len(calls))
	}
}

func TestApplyBindingsStateChecks(t *testing.T) {
	ctx := drivertest.New()

	p, err := NewProgram(ctx)
	if err != nil {
		t.Fatalf("NewProgram: %v", err)
	}
	r := newReflection(ResourceQuery{}, nil)

	if _, err := p.ApplyBindings(r, nil); !errors.Is(err, ErrNotLinked) {
		t.Errorf("ApplyBindings before link = %v, want ErrNotLinked", err)
	}

	p.Release()
	if _, err := p.ApplyBindings(r, nil); !errors.Is(err, ErrReleased) {
		t.Errorf("ApplyBindings after Release = %v, want ErrReleased", err)
	}
}

func TestApplyBindingsPlanRecomputed(t *testing.T) {
	ctx := drivertest.New()
	ctx.ScriptResources([]driver.Resource{
		{Name: "uAlbedo", Kind: driver.ResourceTexture, Slot: 0},
	})
	p := linkedProgram(t, ctx)
	defer p.Release()

	r, err := p.LoadResources(ResourceQuery{Stages: driver.StageMaskAll})
	if err != nil {
		t.Fatalf("LoadResources: %v", err)
	}
	sig := mustSignature(t, "pass", []SignatureEntry{
		{Name: "uAlbedo", Kind: driver.ResourceTexture},
	})

	plan1, err := p.ApplyBindings(r, []*Signature{sig})
	if err != nil {
		t.Fatalf("ApplyBindings: %v", err)
	}
	plan2, err := p.ApplyBindings(r, []*Signature{sig})
	if err != nil {
		t.Fatalf("ApplyBindings again: %v", err)
	}

	// Plans are ephemeral values, never cached or shared.
	if plan1 == plan2 {
		t.Error("ApplyBindings returned the same plan twice, want fresh plans")
	}
	if calls := ctx.BindCalls(); len(calls) != 2 {
		t.Errorf("len(BindCalls) = %d, want 2 (one per apply)", len(calls))
	}
}

func BenchmarkResolveBindings(b *testing.B) {
	r := newReflection(ResourceQuery{}, []driver.Resource{
		{Name: "uFrame", Kind: driver.ResourceUniformBuffer, Slot: 0},
		{Name: "uMaterial", Kind: driver.ResourceUniformBuffer, Slot: 1},
		{Name: "uAlbedo", Kind: driver.ResourceTexture, Slot: 2},
		{Name: "uNormalMap", Kind: driver.ResourceTexture, Slot: 3},
		{Name: "bLights", Kind: driver.ResourceStorageBuffer, Slot: 4},
	})
	sig, err := NewSignature("bench", []SignatureEntry{
		{Name: "uFrame", Kind: driver.ResourceUniformBuffer},
		{Name: "uMaterial", Kind: driver.ResourceUniformBuffer},
		{Name: "uAlbedo", Kind: driver.ResourceTexture},
		{Name: "uNormalMap", Kind: driver.ResourceTexture},
		{Name: "bLights", Kind: driver.ResourceStorageBuffer},
	})
	if err != nil {
		b.Fatal(err)
	}
	sigs := []*Signature{sig}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := ResolveBindings(r, sigs); err != nil {
			b.Fatal(err)
		}
	}
}
