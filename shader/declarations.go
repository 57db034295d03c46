// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package shader

import (
	"github.com/gogpu/glink"
	"github.com/gogpu/glink/driver"
	"github.com/gogpu/naga/ir"
)

// Declaration is one resource a stage declares: the WGSL-side view of
// what driver reflection will report after linking. Authoring code uses
// declarations to build glink signatures that match the shader.
type Declaration struct {
	// Name is the variable name in the WGSL source.
	Name string

	// Kind classifies the resource the way driver reflection does.
	Kind driver.ResourceKind

	// Group and Binding are the WGSL @group/@binding indices.
	Group   uint32
	Binding uint32

	// ArraySize is the number of elements for binding arrays, 1
	// otherwise.
	ArraySize uint32
}

// ModuleDeclarations walks the module's global variables and returns
// the declared resources in declaration order.
//
// Classification follows the address space: uniform-space variables are
// uniform buffers, storage-space variables storage buffers. Handle-
// space variables split by type: samplers, storage images, and sampled
// or depth textures. Variables without a resource binding (private,
// workgroup) are not resources and are skipped.
func ModuleDeclarations(mod *ir.Module) []Declaration {
	var decls []Declaration
	for _, gv := range mod.GlobalVariables {
		if gv.Binding == nil {
			continue
		}

		size := uint32(1)
		inner := mod.Types[gv.Type].Inner
		// An array in handle space is a binding array of textures or
		// samplers. An array in a buffer space is the buffer's data
		// type and stays a single binding.
		if arr, ok := inner.(ir.ArrayType); ok && gv.Space == ir.SpaceHandle {
			if arr.Size.Constant != nil {
				size = *arr.Size.Constant
			}
			inner = mod.Types[arr.Base].Inner
		}

		var kind driver.ResourceKind
		switch gv.Space {
		case ir.SpaceUniform:
			kind = driver.ResourceUniformBuffer
		case ir.SpaceStorage:
			kind = driver.ResourceStorageBuffer
		case ir.SpaceHandle:
			switch t := inner.(type) {
			case ir.SamplerType:
				kind = driver.ResourceSampler
			case ir.ImageType:
				if t.Class == ir.ImageClassStorage {
					kind = driver.ResourceImage
				} else {
					kind = driver.ResourceTexture
				}
			default:
				continue
			}
		default:
			continue
		}

		decls = append(decls, Declaration{
			Name:      gv.Name,
			Kind:      kind,
			Group:     gv.Binding.Group,
			Binding:   gv.Binding.Binding,
			ArraySize: size,
		})
	}
	return decls
}

// SignatureEntries converts declarations to entries for
// glink.NewSignature, preserving declaration order. Binding arrays
// contribute one entry; per-element slots are the driver's concern.
func SignatureEntries(decls []Declaration) []glink.SignatureEntry {
	entries := make([]glink.SignatureEntry, len(decls))
	for i, d := range decls {
		entries[i] = glink.SignatureEntry{Name: d.Name, Kind: d.Kind}
	}
	return entries
}
