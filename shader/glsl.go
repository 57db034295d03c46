// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package shader

import (
	"fmt"

	"github.com/gogpu/naga/glsl"
)

// GLSLOptions configures TranslateGLSL.
type GLSLOptions struct {
	// Version is the target GLSL version. The zero value targets
	// OpenGL 4.3 core, the version backend/gl drives.
	Version glsl.Version

	// Binding-base offsets, added to the shader's binding indices per
	// resource class. They serve the same flattening role as signature
	// base offsets: several stages' resources share one program-wide
	// slot space without colliding.
	UniformBindingBase uint32
	StorageBindingBase uint32
	TextureBindingBase uint32
	SamplerBindingBase uint32
}

// Translation is the GLSL form of one stage.
type Translation struct {
	// Source is the generated GLSL text, ready for
	// driver.Context.CompileShader.
	Source string

	// EntryPoint is the GLSL name of the stage's entry point.
	EntryPoint string

	// CombinedSamplers lists the texture-sampler pairs the translation
	// fused into combined sampler uniforms, each "texture_sampler".
	// Driver reflection reports these fused names, not the separate
	// WGSL texture and sampler variables; signatures that bind
	// translated stages must declare them.
	CombinedSamplers []string

	// RequiredVersion is the minimum GLSL version the generated source
	// needs. It can exceed the requested version, for example when a
	// stage uses storage buffers.
	RequiredVersion glsl.Version

	// Extensions lists GLSL extensions the source enables.
	Extensions []string
}

// TranslateGLSL translates the stage's WGSL source to GLSL, selecting
// the entry point matching the stage's kind.
func TranslateGLSL(stage Stage, opts GLSLOptions) (*Translation, error) {
	mod, err := stage.Parse()
	if err != nil {
		return nil, err
	}
	ep, err := stage.entryPoint(mod)
	if err != nil {
		return nil, err
	}

	if opts.Version.Major == 0 {
		opts.Version = glsl.Version430
	}
	src, info, err := glsl.Compile(mod, glsl.Options{
		LangVersion:        opts.Version,
		EntryPoint:         ep.Name,
		UniformBindingBase: opts.UniformBindingBase,
		StorageBindingBase: opts.StorageBindingBase,
		TextureBindingBase: opts.TextureBindingBase,
		SamplerBindingBase: opts.SamplerBindingBase,
	})
	if err != nil {
		return nil, fmt.Errorf("shader: translate %s stage: %w", stage.Kind, err)
	}

	name := ep.Name
	if generated, ok := info.EntryPointNames[ep.Name]; ok {
		name = generated
	}
	return &Translation{
		Source:           src,
		EntryPoint:       name,
		CombinedSamplers: info.TextureSamplerPairs,
		RequiredVersion:  info.RequiredVersion,
		Extensions:       info.UsedExtensions,
	}, nil
}
