// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gl

import (
	"strings"

	"github.com/go-gl/gl/v4.3-core/gl"

	"github.com/gogpu/glink/driver"
)

// referenceProps and referenceStages pair the six REFERENCED_BY_*
// resource properties with the stage each one reports.
var referenceProps = [...]uint32{
	gl.REFERENCED_BY_VERTEX_SHADER,
	gl.REFERENCED_BY_TESS_CONTROL_SHADER,
	gl.REFERENCED_BY_TESS_EVALUATION_SHADER,
	gl.REFERENCED_BY_GEOMETRY_SHADER,
	gl.REFERENCED_BY_FRAGMENT_SHADER,
	gl.REFERENCED_BY_COMPUTE_SHADER,
}

var referenceStages = [...]driver.StageKind{
	driver.StageVertex,
	driver.StageTessControl,
	driver.StageTessEval,
	driver.StageGeometry,
	driver.StageFragment,
	driver.StageCompute,
}

// ActiveResources reports the linked program's active resource
// interface: uniform blocks, then shader storage blocks, then the
// sampler and image uniforms of the default block, each in the
// driver's enumeration order.
//
// GL has no separate sampler objects at the shader interface, so
// sampler-typed uniforms are always reported as combined
// ResourceTexture entries whatever q.CombinedSamplers says. Plain data
// uniforms of the default block and atomic counters are not binding
// resources and are not reported.
func (c *Context) ActiveResources(p driver.ProgramID, q driver.ResourceQuery) ([]driver.Resource, error) {
	prog := uint32(p)
	var out []driver.Resource
	out = appendBlockResources(out, prog, gl.UNIFORM_BLOCK, driver.ResourceUniformBuffer, q)
	out = appendBlockResources(out, prog, gl.SHADER_STORAGE_BLOCK, driver.ResourceStorageBuffer, q)
	out = appendOpaqueUniforms(out, prog, q)
	return out, nil
}

// appendBlockResources enumerates one block interface. The resource
// index within the interface is the block index glUniformBlockBinding
// and glShaderStorageBlockBinding take, so it becomes Resource.Slot.
func appendBlockResources(out []driver.Resource, prog, iface uint32, kind driver.ResourceKind, q driver.ResourceQuery) []driver.Resource {
	var count int32
	gl.GetProgramInterfaceiv(prog, iface, gl.ACTIVE_RESOURCES, &count)

	props := append([]uint32{gl.NAME_LENGTH, gl.BUFFER_DATA_SIZE}, referenceProps[:]...)
	vals := make([]int32, len(props))

	for i := int32(0); i < count; i++ {
		gl.GetProgramResourceiv(prog, iface, uint32(i),
			int32(len(props)), &props[0], int32(len(vals)), nil, &vals[0])

		stages := stageMaskFromReferences(vals[2:])
		if stages&q.Stages == 0 {
			continue
		}
		res := driver.Resource{
			Name:      resourceName(prog, iface, uint32(i), vals[0]),
			Kind:      kind,
			Slot:      uint32(i),
			ArraySize: 1,
			Stages:    stages,
		}
		if q.BufferSizes {
			res.BlockSize = uint32(vals[1])
		}
		out = append(out, res)
	}
	return out
}

// appendOpaqueUniforms enumerates the default uniform block and keeps
// the opaque entries: sampler uniforms as textures, image uniforms as
// images. Resource.Slot is the uniform location, what
// glProgramUniform1i takes.
func appendOpaqueUniforms(out []driver.Resource, prog uint32, q driver.ResourceQuery) []driver.Resource {
	var count int32
	gl.GetProgramInterfaceiv(prog, gl.UNIFORM, gl.ACTIVE_RESOURCES, &count)

	props := append([]uint32{gl.NAME_LENGTH, gl.TYPE, gl.ARRAY_SIZE, gl.LOCATION, gl.BLOCK_INDEX}, referenceProps[:]...)
	vals := make([]int32, len(props))

	for i := int32(0); i < count; i++ {
		gl.GetProgramResourceiv(prog, gl.UNIFORM, uint32(i),
			int32(len(props)), &props[0], int32(len(vals)), nil, &vals[0])

		// Members of a named block are reported through the block.
		if vals[4] != -1 {
			continue
		}
		kind, ok := classifyUniformType(uint32(vals[1]))
		if !ok {
			continue
		}
		location := vals[3]
		if location < 0 {
			continue
		}
		stages := stageMaskFromReferences(vals[5:])
		if stages&q.Stages == 0 {
			continue
		}
		arraySize := vals[2]
		if arraySize < 1 {
			arraySize = 1
		}
		out = append(out, driver.Resource{
			Name:      trimArraySuffix(resourceName(prog, gl.UNIFORM, uint32(i), vals[0])),
			Kind:      kind,
			Slot:      uint32(location),
			ArraySize: uint32(arraySize),
			Stages:    stages,
		})
	}
	return out
}

func resourceName(prog, iface uint32, index uint32, nameLen int32) string {
	if nameLen <= 1 {
		return ""
	}
	buf := make([]byte, nameLen)
	var written int32
	gl.GetProgramResourceName(prog, iface, index, nameLen, &written, &buf[0])
	return string(buf[:written])
}

// trimArraySuffix drops the "[0]" GL appends to array resource names;
// the declared name is without it.
func trimArraySuffix(name string) string {
	return strings.TrimSuffix(name, "[0]")
}

func stageMaskFromReferences(vals []int32) driver.StageMask {
	var m driver.StageMask
	for i, v := range vals {
		if v != 0 {
			m |= referenceStages[i].Mask()
		}
	}
	return m
}

// classifyUniformType sorts a default-block uniform's GL type into a
// resource kind. Sampler types are combined texture+sampler bindings,
// image types are storage images. Everything else (plain data
// uniforms, atomic counters) is not a binding resource.
func classifyUniformType(t uint32) (driver.ResourceKind, bool) {
	switch t {
	case gl.SAMPLER_1D, gl.SAMPLER_2D, gl.SAMPLER_3D, gl.SAMPLER_CUBE,
		gl.SAMPLER_1D_SHADOW, gl.SAMPLER_2D_SHADOW, gl.SAMPLER_CUBE_SHADOW,
		gl.SAMPLER_1D_ARRAY, gl.SAMPLER_2D_ARRAY, gl.SAMPLER_CUBE_MAP_ARRAY,
		gl.SAMPLER_1D_ARRAY_SHADOW, gl.SAMPLER_2D_ARRAY_SHADOW,
		gl.SAMPLER_CUBE_MAP_ARRAY_SHADOW,
		gl.SAMPLER_2D_MULTISAMPLE, gl.SAMPLER_2D_MULTISAMPLE_ARRAY,
		gl.SAMPLER_BUFFER, gl.SAMPLER_2D_RECT, gl.SAMPLER_2D_RECT_SHADOW,
		gl.INT_SAMPLER_1D, gl.INT_SAMPLER_2D, gl.INT_SAMPLER_3D,
		gl.INT_SAMPLER_CUBE, gl.INT_SAMPLER_1D_ARRAY, gl.INT_SAMPLER_2D_ARRAY,
		gl.INT_SAMPLER_CUBE_MAP_ARRAY,
		gl.INT_SAMPLER_2D_MULTISAMPLE, gl.INT_SAMPLER_2D_MULTISAMPLE_ARRAY,
		gl.INT_SAMPLER_BUFFER, gl.INT_SAMPLER_2D_RECT,
		gl.UNSIGNED_INT_SAMPLER_1D, gl.UNSIGNED_INT_SAMPLER_2D,
		gl.UNSIGNED_INT_SAMPLER_3D, gl.UNSIGNED_INT_SAMPLER_CUBE,
		gl.UNSIGNED_INT_SAMPLER_1D_ARRAY, gl.UNSIGNED_INT_SAMPLER_2D_ARRAY,
		gl.UNSIGNED_INT_SAMPLER_CUBE_MAP_ARRAY,
		gl.UNSIGNED_INT_SAMPLER_2D_MULTISAMPLE,
		gl.UNSIGNED_INT_SAMPLER_2D_MULTISAMPLE_ARRAY,
		gl.UNSIGNED_INT_SAMPLER_BUFFER, gl.UNSIGNED_INT_SAMPLER_2D_RECT:
		return driver.ResourceTexture, true

	case gl.IMAGE_1D, gl.IMAGE_2D, gl.IMAGE_3D, gl.IMAGE_2D_RECT,
		gl.IMAGE_CUBE, gl.IMAGE_BUFFER, gl.IMAGE_1D_ARRAY, gl.IMAGE_2D_ARRAY,
		gl.IMAGE_CUBE_MAP_ARRAY, gl.IMAGE_2D_MULTISAMPLE,
		gl.IMAGE_2D_MULTISAMPLE_ARRAY,
		gl.INT_IMAGE_1D, gl.INT_IMAGE_2D, gl.INT_IMAGE_3D, gl.INT_IMAGE_2D_RECT,
		gl.INT_IMAGE_CUBE, gl.INT_IMAGE_BUFFER, gl.INT_IMAGE_1D_ARRAY,
		gl.INT_IMAGE_2D_ARRAY, gl.INT_IMAGE_CUBE_MAP_ARRAY,
		gl.INT_IMAGE_2D_MULTISAMPLE, gl.INT_IMAGE_2D_MULTISAMPLE_ARRAY,
		gl.UNSIGNED_INT_IMAGE_1D, gl.UNSIGNED_INT_IMAGE_2D,
		gl.UNSIGNED_INT_IMAGE_3D, gl.UNSIGNED_INT_IMAGE_2D_RECT,
		gl.UNSIGNED_INT_IMAGE_CUBE, gl.UNSIGNED_INT_IMAGE_BUFFER,
		gl.UNSIGNED_INT_IMAGE_1D_ARRAY, gl.UNSIGNED_INT_IMAGE_2D_ARRAY,
		gl.UNSIGNED_INT_IMAGE_CUBE_MAP_ARRAY,
		gl.UNSIGNED_INT_IMAGE_2D_MULTISAMPLE,
		gl.UNSIGNED_INT_IMAGE_2D_MULTISAMPLE_ARRAY:
		return driver.ResourceImage, true
	}
	return 0, false
}
