// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package shader turns WGSL stage sources into the forms the rest of
// glink consumes: resource declarations for authoring signatures,
// SPIR-V binaries for gogpu hosts, and GLSL text for the OpenGL driver.
//
// The package wraps the naga compiler. It holds no state; every
// function is a pure translation of its inputs.
package shader

import (
	"errors"
	"fmt"

	"github.com/gogpu/glink/driver"
	"github.com/gogpu/naga"
	"github.com/gogpu/naga/ir"
)

// ErrNoEntryPoint is returned when a stage's source has no entry point
// for the stage's kind, or when the kind has no WGSL representation
// (geometry and tessellation stages).
var ErrNoEntryPoint = errors.New("shader: no entry point for stage kind")

// Stage is one shader stage as WGSL source.
type Stage struct {
	Kind   driver.StageKind
	Source string
}

// Parse parses and lowers the stage's WGSL source to naga IR.
func (s Stage) Parse() (*ir.Module, error) {
	ast, err := naga.Parse(s.Source)
	if err != nil {
		return nil, fmt.Errorf("shader: parse %s stage: %w", s.Kind, err)
	}
	mod, err := naga.LowerWithSource(ast, s.Source)
	if err != nil {
		return nil, fmt.Errorf("shader: lower %s stage: %w", s.Kind, err)
	}
	return mod, nil
}

// CompileSPIRV compiles the stage's WGSL source to a SPIR-V binary.
func (s Stage) CompileSPIRV() ([]byte, error) {
	spirv, err := naga.Compile(s.Source)
	if err != nil {
		return nil, fmt.Errorf("shader: compile %s stage: %w", s.Kind, err)
	}
	return spirv, nil
}

// Declarations parses the source and returns its resource declarations.
func (s Stage) Declarations() ([]Declaration, error) {
	mod, err := s.Parse()
	if err != nil {
		return nil, err
	}
	return ModuleDeclarations(mod), nil
}

// irStage maps a stage kind onto the naga stage enum. WGSL has no
// geometry or tessellation stages.
func irStage(kind driver.StageKind) (ir.ShaderStage, bool) {
	switch kind {
	case driver.StageVertex:
		return ir.StageVertex, true
	case driver.StageFragment:
		return ir.StageFragment, true
	case driver.StageCompute:
		return ir.StageCompute, true
	default:
		return 0, false
	}
}

// entryPoint returns the module's entry point for the stage's kind.
func (s Stage) entryPoint(mod *ir.Module) (ir.EntryPoint, error) {
	want, ok := irStage(s.Kind)
	if !ok {
		return ir.EntryPoint{}, fmt.Errorf("shader: %s stage not expressible in WGSL: %w", s.Kind, ErrNoEntryPoint)
	}
	for _, ep := range mod.EntryPoints {
		if ep.Stage == want {
			return ep, nil
		}
	}
	return ir.EntryPoint{}, fmt.Errorf("shader: %s stage: %w", s.Kind, ErrNoEntryPoint)
}
