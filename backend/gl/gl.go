// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package gl implements driver.Context on OpenGL 4.3 core.
//
// The context wraps the GL context current on the calling thread. OpenGL
// is thread-bound: New must be called with a current context, and every
// method must run on that same thread. The one concession the driver
// contract asks for, concurrent link-completion polling, is safe here
// because glGetProgramiv with COMPLETION_STATUS_KHR is the only call
// involved and the host is expected to funnel GL work to its render
// thread anyway.
//
// Link-completion polling without blocking needs
// GL_KHR_parallel_shader_compile; without it Caps reports
// AsyncLinkStatus false and glLinkProgram finishes the link before
// returning. Separable programs are core since 4.1 and always
// advertised.
//
// Importing the package registers it with the backend registry under
// backend.GL.
package gl

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.3-core/gl"

	"github.com/gogpu/glink/backend"
	"github.com/gogpu/glink/driver"
)

func init() {
	backend.Register(backend.GL, func() (driver.Context, error) {
		return New(Options{})
	})
}

// COMPLETION_STATUS_KHR from GL_KHR_parallel_shader_compile. Not part
// of the 4.3 core enum set.
const glCompletionStatusKHR = 0x91B1

// parallelCompileExtension gates Caps.AsyncLinkStatus.
const parallelCompileExtension = "GL_KHR_parallel_shader_compile"

// ErrNoContext is returned by New when GL function loading fails,
// which in practice means no GL context is current on the calling
// thread.
var ErrNoContext = errors.New("gl: no current GL context")

// Options configures a Context.
type Options struct {
	// NativeHandles are the platform handles of the GL context current
	// on the calling thread. GL cannot discover them portably, so hosts
	// that want to export the context (xr graphics bindings) pass them
	// in. Leave zero otherwise.
	NativeHandles driver.NativeHandles
}

// Context is a driver.Context over the thread's current GL context.
type Context struct {
	caps    driver.Caps
	handles driver.NativeHandles
}

var _ driver.Context = (*Context)(nil)

// New loads the GL function pointers from the current context and
// probes its capabilities. The calling thread must have a GL 4.3 core
// context current, and the returned Context must only be used from
// that thread.
func New(opts Options) (*Context, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoContext, err)
	}
	return &Context{
		caps:    detectCaps(),
		handles: opts.NativeHandles,
	}, nil
}

func detectCaps() driver.Caps {
	caps := driver.Caps{SeparablePrograms: true}
	var n int32
	gl.GetIntegerv(gl.NUM_EXTENSIONS, &n)
	for i := int32(0); i < n; i++ {
		name := gl.GoStr(gl.GetStringi(gl.EXTENSIONS, uint32(i)))
		if name == parallelCompileExtension {
			caps.AsyncLinkStatus = true
			break
		}
	}
	return caps
}

// Caps reports the probed driver capabilities.
func (c *Context) Caps() driver.Caps { return c.caps }

// CompileShader compiles GLSL source for one stage.
func (c *Context) CompileShader(kind driver.StageKind, source string) (driver.ShaderID, error) {
	target, ok := glShaderType(kind)
	if !ok {
		return 0, fmt.Errorf("gl: no shader target for stage %s", kind)
	}
	handle := gl.CreateShader(target)
	if handle == 0 {
		return 0, errors.New("gl: glCreateShader failed")
	}

	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(handle, 1, csources, nil)
	free()
	gl.CompileShader(handle)

	var status int32
	gl.GetShaderiv(handle, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		infoLog := shaderInfoLog(handle)
		gl.DeleteShader(handle)
		return 0, fmt.Errorf("gl: compile %s shader: %s", kind, strings.TrimSpace(infoLog))
	}
	return driver.ShaderID(handle), nil
}

// DeleteShader destroys a shader object.
func (c *Context) DeleteShader(s driver.ShaderID) {
	if s == 0 {
		return
	}
	gl.DeleteShader(uint32(s))
}

// CreateProgram allocates an empty program object.
func (c *Context) CreateProgram() (driver.ProgramID, error) {
	handle := gl.CreateProgram()
	if handle == 0 {
		return 0, errors.New("gl: glCreateProgram failed")
	}
	return driver.ProgramID(handle), nil
}

// DeleteProgram destroys a program object.
func (c *Context) DeleteProgram(p driver.ProgramID) {
	if p == 0 {
		return
	}
	gl.DeleteProgram(uint32(p))
}

// AttachShader attaches a compiled stage to the program.
func (c *Context) AttachShader(p driver.ProgramID, s driver.ShaderID) {
	gl.AttachShader(uint32(p), uint32(s))
}

// SetSeparable marks the program for separable pipeline use.
func (c *Context) SetSeparable(p driver.ProgramID, separable bool) {
	v := int32(gl.FALSE)
	if separable {
		v = gl.TRUE
	}
	gl.ProgramParameteri(uint32(p), gl.PROGRAM_SEPARABLE, v)
}

// LinkProgram starts linking. With GL_KHR_parallel_shader_compile the
// driver may return before the link has finished.
func (c *Context) LinkProgram(p driver.ProgramID) {
	gl.LinkProgram(uint32(p))
}

// LinkComplete reports whether an in-flight link has finished, without
// blocking. Without the parallel-compile extension links finish inside
// glLinkProgram, so it always reports true.
func (c *Context) LinkComplete(p driver.ProgramID) bool {
	if !c.caps.AsyncLinkStatus {
		return true
	}
	var done int32
	gl.GetProgramiv(uint32(p), glCompletionStatusKHR, &done)
	return done == gl.TRUE
}

// LinkResult reports the link outcome and info log. Querying
// GL_LINK_STATUS makes the driver finish the link first, so this
// blocks until the result is known.
func (c *Context) LinkResult(p driver.ProgramID) (bool, string) {
	var status int32
	gl.GetProgramiv(uint32(p), gl.LINK_STATUS, &status)
	return status == gl.TRUE, strings.TrimSpace(programInfoLog(uint32(p)))
}

// BindUniformBlock assigns the uniform block at the given block index
// to a binding point.
func (c *Context) BindUniformBlock(p driver.ProgramID, natural, slot uint32) {
	gl.UniformBlockBinding(uint32(p), natural, slot)
}

// BindStorageBlock assigns the storage block at the given block index
// to a binding point.
func (c *Context) BindStorageBlock(p driver.ProgramID, natural, slot uint32) {
	gl.ShaderStorageBlockBinding(uint32(p), natural, slot)
}

// BindTexture points the sampler uniform at the given location at a
// texture unit.
func (c *Context) BindTexture(p driver.ProgramID, natural, slot uint32) {
	gl.ProgramUniform1i(uint32(p), int32(natural), int32(slot))
}

// BindImage points the image uniform at the given location at an image
// unit.
func (c *Context) BindImage(p driver.ProgramID, natural, slot uint32) {
	gl.ProgramUniform1i(uint32(p), int32(natural), int32(slot))
}

// BindSampler is present to satisfy driver.Context. GL has no separate
// sampler uniforms; reflection only ever reports combined entries, so
// the core never calls this.
func (c *Context) BindSampler(p driver.ProgramID, natural, slot uint32) {
	gl.ProgramUniform1i(uint32(p), int32(natural), int32(slot))
}

// NativeHandles reports the platform handles passed at construction.
func (c *Context) NativeHandles() driver.NativeHandles {
	return c.handles
}

// glShaderType maps a stage kind to its GL shader target.
func glShaderType(kind driver.StageKind) (uint32, bool) {
	switch kind {
	case driver.StageVertex:
		return gl.VERTEX_SHADER, true
	case driver.StageFragment:
		return gl.FRAGMENT_SHADER, true
	case driver.StageGeometry:
		return gl.GEOMETRY_SHADER, true
	case driver.StageTessControl:
		return gl.TESS_CONTROL_SHADER, true
	case driver.StageTessEval:
		return gl.TESS_EVALUATION_SHADER, true
	case driver.StageCompute:
		return gl.COMPUTE_SHADER, true
	}
	return 0, false
}

func shaderInfoLog(shader uint32) string {
	var n int32
	gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &n)
	if n <= 1 {
		return ""
	}
	buf := make([]byte, n)
	var written int32
	gl.GetShaderInfoLog(shader, n, &written, &buf[0])
	return string(buf[:written])
}

func programInfoLog(program uint32) string {
	var n int32
	gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &n)
	if n <= 1 {
		return ""
	}
	buf := make([]byte, n)
	var written int32
	gl.GetProgramInfoLog(program, n, &written, &buf[0])
	return string(buf[:written])
}
