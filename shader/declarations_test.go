// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package shader

import (
	"testing"

	"github.com/gogpu/glink/driver"
	"github.com/gogpu/naga/ir"
)

// classificationModule models this WGSL interface:
//
//	@group(0) @binding(0) var<uniform> camera: Camera;
//	@group(0) @binding(1) var<storage, read_write> particles: array<f32>;
//	@group(1) @binding(0) var smp: sampler;
//	@group(1) @binding(1) var tex: texture_2d<f32>;
//	@group(1) @binding(2) var shadow: texture_depth_2d;
//	@group(1) @binding(3) var output: texture_storage_2d<rgba8unorm, write>;
func classificationModule() *ir.Module {
	f32 := ir.ScalarType{Kind: ir.ScalarFloat, Width: 4}
	types := []ir.Type{
		{Inner: f32},                                              // 0
		{Name: "Camera", Inner: ir.StructType{Span: 64}},          // 1
		{Inner: ir.ArrayType{Base: 0, Size: ir.ArraySize{}}},      // 2: array<f32>
		{Inner: ir.SamplerType{}},                                 // 3
		{Inner: ir.ImageType{Dim: ir.Dim2D, Class: ir.ImageClassSampled}}, // 4
		{Inner: ir.ImageType{Dim: ir.Dim2D, Class: ir.ImageClassDepth}},   // 5
		{Inner: ir.ImageType{Dim: ir.Dim2D, Class: ir.ImageClassStorage}}, // 6
	}
	globals := []ir.GlobalVariable{
		{Name: "camera", Space: ir.SpaceUniform, Binding: &ir.ResourceBinding{Group: 0, Binding: 0}, Type: 1},
		{Name: "particles", Space: ir.SpaceStorage, Binding: &ir.ResourceBinding{Group: 0, Binding: 1}, Type: 2},
		{Name: "smp", Space: ir.SpaceHandle, Binding: &ir.ResourceBinding{Group: 1, Binding: 0}, Type: 3},
		{Name: "tex", Space: ir.SpaceHandle, Binding: &ir.ResourceBinding{Group: 1, Binding: 1}, Type: 4},
		{Name: "shadow", Space: ir.SpaceHandle, Binding: &ir.ResourceBinding{Group: 1, Binding: 2}, Type: 5},
		{Name: "output", Space: ir.SpaceHandle, Binding: &ir.ResourceBinding{Group: 1, Binding: 3}, Type: 6},
	}
	return &ir.Module{Types: types, GlobalVariables: globals}
}

func TestModuleDeclarationsClassification(t *testing.T) {
	decls := ModuleDeclarations(classificationModule())

	want := []Declaration{
		{Name: "camera", Kind: driver.ResourceUniformBuffer, Group: 0, Binding: 0, ArraySize: 1},
		{Name: "particles", Kind: driver.ResourceStorageBuffer, Group: 0, Binding: 1, ArraySize: 1},
		{Name: "smp", Kind: driver.ResourceSampler, Group: 1, Binding: 0, ArraySize: 1},
		{Name: "tex", Kind: driver.ResourceTexture, Group: 1, Binding: 1, ArraySize: 1},
		{Name: "shadow", Kind: driver.ResourceTexture, Group: 1, Binding: 2, ArraySize: 1},
		{Name: "output", Kind: driver.ResourceImage, Group: 1, Binding: 3, ArraySize: 1},
	}
	if len(decls) != len(want) {
		t.Fatalf("len(decls) = %d, want %d", len(decls), len(want))
	}
	for i := range want {
		if decls[i] != want[i] {
			t.Errorf("decls[%d] = %+v, want %+v", i, decls[i], want[i])
		}
	}
}

func TestModuleDeclarationsSkipsNonResources(t *testing.T) {
	f32 := ir.ScalarType{Kind: ir.ScalarFloat, Width: 4}
	mod := &ir.Module{
		Types: []ir.Type{{Inner: f32}},
		GlobalVariables: []ir.GlobalVariable{
			// No @group/@binding: a private global, not a resource.
			{Name: "counter", Space: ir.SpacePrivate, Type: 0},
			// Workgroup memory is not a resource either.
			{Name: "tile", Space: ir.SpaceWorkGroup, Type: 0},
		},
	}
	if decls := ModuleDeclarations(mod); len(decls) != 0 {
		t.Errorf("ModuleDeclarations = %+v, want none", decls)
	}
}

func TestModuleDeclarationsBindingArray(t *testing.T) {
	four := uint32(4)
	mod := &ir.Module{
		Types: []ir.Type{
			{Inner: ir.ImageType{Dim: ir.Dim2D, Class: ir.ImageClassSampled}}, // 0
			{Inner: ir.ArrayType{Base: 0, Size: ir.ArraySize{Constant: &four}}}, // 1
		},
		GlobalVariables: []ir.GlobalVariable{
			{Name: "textures", Space: ir.SpaceHandle, Binding: &ir.ResourceBinding{Group: 0, Binding: 0}, Type: 1},
		},
	}
	decls := ModuleDeclarations(mod)
	if len(decls) != 1 {
		t.Fatalf("len(decls) = %d, want 1", len(decls))
	}
	if decls[0].Kind != driver.ResourceTexture {
		t.Errorf("Kind = %v, want texture", decls[0].Kind)
	}
	if decls[0].ArraySize != 4 {
		t.Errorf("ArraySize = %d, want 4", decls[0].ArraySize)
	}
}

func TestModuleDeclarationsBufferDataArray(t *testing.T) {
	// A sized data array inside a storage buffer is one binding; the
	// element count is the buffer's layout, not a binding array.
	sixtyFour := uint32(64)
	mod := &ir.Module{
		Types: []ir.Type{
			{Inner: ir.ScalarType{Kind: ir.ScalarFloat, Width: 4}},                   // 0
			{Inner: ir.ArrayType{Base: 0, Size: ir.ArraySize{Constant: &sixtyFour}}}, // 1
		},
		GlobalVariables: []ir.GlobalVariable{
			{Name: "weights", Space: ir.SpaceStorage, Binding: &ir.ResourceBinding{Group: 0, Binding: 0}, Type: 1},
		},
	}
	decls := ModuleDeclarations(mod)
	if len(decls) != 1 {
		t.Fatalf("len(decls) = %d, want 1", len(decls))
	}
	if decls[0].Kind != driver.ResourceStorageBuffer || decls[0].ArraySize != 1 {
		t.Errorf("decls[0] = %+v, want storage buffer with ArraySize 1", decls[0])
	}
}

func TestSignatureEntries(t *testing.T) {
	decls := ModuleDeclarations(classificationModule())
	entries := SignatureEntries(decls)

	if len(entries) != len(decls) {
		t.Fatalf("len(entries) = %d, want %d", len(entries), len(decls))
	}
	for i, d := range decls {
		if entries[i].Name != d.Name || entries[i].Kind != d.Kind {
			t.Errorf("entries[%d] = %+v, want {%s %v}", i, entries[i], d.Name, d.Kind)
		}
	}
}
