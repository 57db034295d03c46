// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package driver defines the vocabulary shared between the glink core and
// graphics driver implementations: shader stage kinds, resource kinds,
// program and shader handles, and the Context interface a driver must
// satisfy.
//
// The package carries no driver state of its own. Concrete contexts live
// elsewhere: backend/gl wraps an OpenGL 4.3 context, and drivertest
// provides a scripted in-memory driver for tests.
package driver

import "fmt"

// StageKind identifies a single programmable pipeline stage.
type StageKind uint8

const (
	StageVertex StageKind = iota
	StageFragment
	StageGeometry
	StageTessControl
	StageTessEval
	StageCompute

	numStageKinds
)

// NumStageKinds is the number of distinct stage kinds.
const NumStageKinds = int(numStageKinds)

// String returns the string representation of StageKind.
func (k StageKind) String() string {
	switch k {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	case StageGeometry:
		return "geometry"
	case StageTessControl:
		return "tess-control"
	case StageTessEval:
		return "tess-eval"
	case StageCompute:
		return "compute"
	default:
		return fmt.Sprintf("StageKind(%d)", uint8(k))
	}
}

// Mask returns the single-stage mask for k.
func (k StageKind) Mask() StageMask {
	return StageMask(1) << k
}

// StageMask is a bit set of stage kinds.
type StageMask uint8

const (
	StageMaskNone StageMask = 0
	StageMaskAll  StageMask = 1<<numStageKinds - 1
)

// Has reports whether the mask contains k.
func (m StageMask) Has(k StageKind) bool {
	return m&k.Mask() != 0
}

// String returns the contained stage names joined by "|", or "none".
func (m StageMask) String() string {
	if m == StageMaskNone {
		return "none"
	}
	var s string
	for k := StageKind(0); k < numStageKinds; k++ {
		if !m.Has(k) {
			continue
		}
		if s != "" {
			s += "|"
		}
		s += k.String()
	}
	return s
}

// ResourceKind classifies one entry of a program's resource interface.
type ResourceKind uint8

const (
	ResourceUniformBuffer ResourceKind = iota
	ResourceStorageBuffer
	ResourceTexture
	ResourceImage
	ResourceSampler

	numResourceKinds
)

// NumResourceKinds is the number of distinct resource kinds.
const NumResourceKinds = int(numResourceKinds)

// String returns the string representation of ResourceKind.
func (k ResourceKind) String() string {
	switch k {
	case ResourceUniformBuffer:
		return "uniform buffer"
	case ResourceStorageBuffer:
		return "storage buffer"
	case ResourceTexture:
		return "texture"
	case ResourceImage:
		return "image"
	case ResourceSampler:
		return "sampler"
	default:
		return fmt.Sprintf("ResourceKind(%d)", uint8(k))
	}
}

// ProgramID is a driver program handle. The zero value means no program.
type ProgramID uint64

// ShaderID is a driver handle to one compiled shader stage. The zero
// value means no shader.
type ShaderID uint64

// Resource is one entry of a linked program's active resource interface,
// exactly as the driver reported it.
type Resource struct {
	// Name is the resource's name in the shader source.
	Name string

	// Kind classifies the resource.
	Kind ResourceKind

	// Slot is the natural slot the driver assigned at link time: a block
	// index for buffer kinds, a uniform location for textures, images
	// and samplers.
	Slot uint32

	// ArraySize is the number of array elements, 1 for non-arrays.
	ArraySize uint32

	// Stages is the set of stages that reference the resource.
	Stages StageMask

	// BlockSize is the data size in bytes of a uniform or storage block.
	// Zero unless the reflection was queried with BufferSizes set.
	BlockSize uint32
}

// ResourceQuery selects what ActiveResources reports.
type ResourceQuery struct {
	// Stages restricts reporting to resources referenced by at least one
	// stage in the mask. StageMaskAll reports everything.
	Stages StageMask

	// CombinedSamplers reports sampler-typed shader uniforms as
	// ResourceTexture entries, the texture and its sampler combined
	// behind one slot. Drivers without separate sampler objects (OpenGL)
	// report combined entries regardless.
	CombinedSamplers bool

	// BufferSizes additionally queries the data size of uniform and
	// storage blocks, filling Resource.BlockSize.
	BufferSizes bool
}

// Caps describes optional driver capabilities. The value must stay
// constant for the lifetime of a context.
type Caps struct {
	// AsyncLinkStatus is set when the driver can report link completion
	// without blocking (OpenGL: KHR_parallel_shader_compile).
	AsyncLinkStatus bool

	// SeparablePrograms is set when programs may be linked for use in
	// separable pipelines.
	SeparablePrograms bool
}

// NativeAPI tags which graphics API a set of native handles belongs to.
type NativeAPI uint32

const (
	NativeAPINone NativeAPI = iota
	NativeAPIOpenGL
	NativeAPIOpenGLES
)

// String returns the string representation of NativeAPI.
func (a NativeAPI) String() string {
	switch a {
	case NativeAPINone:
		return "none"
	case NativeAPIOpenGL:
		return "OpenGL"
	case NativeAPIOpenGLES:
		return "OpenGL ES"
	default:
		return fmt.Sprintf("NativeAPI(%d)", uint32(a))
	}
}

// NativeHandles carries a context's platform handles for export to a
// host runtime. Fields that do not apply to the platform are zero.
type NativeHandles struct {
	API      NativeAPI
	Display  uintptr // EGLDisplay, X11 Display or HDC
	Drawable uintptr // EGLSurface, GLXDrawable or window handle
	Context  uintptr // EGLContext, GLXContext or HGLRC
}

// Context is the set of driver operations the core depends on.
//
// glink serializes its own per-program driver calls, with one exception:
// link-completion polling may run from several goroutines at once, so
// LinkComplete and LinkResult must tolerate concurrent callers. Drivers
// that are single-threaded by nature (OpenGL is bound to the thread that
// owns the context) must additionally be used from that one thread;
// drivertest.Context is safe from any goroutine.
type Context interface {
	// Caps reports the driver's optional capabilities.
	Caps() Caps

	// CompileShader creates a stage object from driver-consumable
	// source text.
	CompileShader(kind StageKind, source string) (ShaderID, error)

	// DeleteShader destroys a stage object. Deleting the zero ID is a
	// no-op.
	DeleteShader(s ShaderID)

	// CreateProgram allocates an empty program object.
	CreateProgram() (ProgramID, error)

	// DeleteProgram destroys a program object. Deleting the zero ID is
	// a no-op.
	DeleteProgram(p ProgramID)

	// AttachShader attaches a compiled stage to the program.
	AttachShader(p ProgramID, s ShaderID)

	// SetSeparable marks the program for separable use. Must precede
	// LinkProgram.
	SetSeparable(p ProgramID, separable bool)

	// LinkProgram starts linking. With AsyncLinkStatus the call may
	// return while the link is still running; otherwise the link is
	// finished, successfully or not, when it returns.
	LinkProgram(p ProgramID)

	// LinkComplete reports whether an in-flight link has finished. It
	// never blocks and is only meaningful with AsyncLinkStatus.
	LinkComplete(p ProgramID) bool

	// LinkResult reports the link outcome and the driver's info log,
	// blocking until the link finishes if it has not.
	LinkResult(p ProgramID) (ok bool, infoLog string)

	// ActiveResources reports the program's active resource interface
	// in the driver's natural order. Valid only after a successful
	// link.
	ActiveResources(p ProgramID, q ResourceQuery) ([]Resource, error)

	// BindUniformBlock assigns the uniform block at the given natural
	// slot to a binding slot.
	BindUniformBlock(p ProgramID, natural, slot uint32)

	// BindStorageBlock assigns the storage block at the given natural
	// slot to a binding slot.
	BindStorageBlock(p ProgramID, natural, slot uint32)

	// BindTexture points the sampler uniform at the given location at a
	// texture unit.
	BindTexture(p ProgramID, natural, slot uint32)

	// BindImage points the image uniform at the given location at an
	// image unit.
	BindImage(p ProgramID, natural, slot uint32)

	// BindSampler assigns a separate sampler to a sampler slot. Never
	// called on drivers that only report combined entries.
	BindSampler(p ProgramID, natural, slot uint32)

	// NativeHandles reports the platform handles of the underlying
	// context. Drivers without platform handles return the zero value.
	NativeHandles() NativeHandles
}
