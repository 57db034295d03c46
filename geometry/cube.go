// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package geometry generates procedural meshes for pipeline bring-up
// and tests: known-good vertex and index data to drive a program whose
// bindings were just linked and resolved.
package geometry

import (
	"errors"
	"fmt"
)

// ErrInvalidOptions is returned for out-of-range mesh parameters.
var ErrInvalidOptions = errors.New("geometry: invalid options")

// VertexFlags selects which attributes the interleaved vertex data
// carries, in position, normal, texcoord order.
type VertexFlags uint8

const (
	VertexPosition VertexFlags = 1 << iota
	VertexNormal
	VertexTexCoord

	VertexAll = VertexPosition | VertexNormal | VertexTexCoord
)

// Stride returns the size in bytes of one interleaved vertex.
func (f VertexFlags) Stride() int {
	s := 0
	if f&VertexPosition != 0 {
		s += 12
	}
	if f&VertexNormal != 0 {
		s += 12
	}
	if f&VertexTexCoord != 0 {
		s += 8
	}
	return s
}

// floats returns the number of float32 components per vertex.
func (f VertexFlags) floats() int { return f.Stride() / 4 }

// CubeOptions configures CreateCube.
type CubeOptions struct {
	// Size is the cube's edge length. Must be positive.
	Size float32

	// Subdivisions is the number of quads along each face edge, in
	// [1, 2048]. A face has (Subdivisions+1)² vertices and
	// 2·Subdivisions² triangles.
	Subdivisions int

	// Flags selects the vertex attributes. With no flags the mesh has
	// index data only.
	Flags VertexFlags
}

// Mesh is an indexed triangle list with interleaved vertex data.
type Mesh struct {
	// Vertices is the interleaved attribute data, Flags.Stride() bytes
	// per vertex. Empty when no flags were set.
	Vertices []float32

	// Indices is the triangle list, three indices per triangle.
	Indices []uint32

	// Flags records the attribute layout of Vertices.
	Flags VertexFlags
}

// NumVertices returns the number of vertices.
func (m *Mesh) NumVertices() int {
	if m.Flags == 0 {
		return 0
	}
	return len(m.Vertices) / m.Flags.floats()
}

// NumTriangles returns the number of triangles.
func (m *Mesh) NumTriangles() int { return len(m.Indices) / 3 }

// maxCubeSubdivisions bounds the per-face grid; 2048 quads per edge is
// 25M triangles for the whole cube, past any reasonable test mesh.
const maxCubeSubdivisions = 2048

// CreateCube builds a subdivided axis-aligned cube centered at the
// origin.
//
// Each of the 6 faces is an independent (n+1)×(n+1) vertex grid, so
// vertices along cube edges are duplicated per face and carry that
// face's normal. Texture coordinates span [0,1]×[0,1] per face.
// Triangles wind counter-clockwise viewed from outside the cube.
func CreateCube(opts CubeOptions) (*Mesh, error) {
	if opts.Size <= 0 {
		return nil, fmt.Errorf("geometry: cube size %v must be positive: %w", opts.Size, ErrInvalidOptions)
	}
	n := opts.Subdivisions
	if n < 1 || n > maxCubeSubdivisions {
		return nil, fmt.Errorf("geometry: cube subdivisions %d outside [1, %d]: %w",
			n, maxCubeSubdivisions, ErrInvalidOptions)
	}

	faceVertices := (n + 1) * (n + 1)
	faceIndices := n * n * 6
	const numFaces = 6

	faceNormals := [numFaces][3]float32{
		{+1, 0, 0},
		{-1, 0, 0},
		{0, +1, 0},
		{0, -1, 0},
		{0, 0, +1},
		{0, 0, -1},
	}

	mesh := &Mesh{
		Indices: make([]uint32, 0, faceIndices*numFaces),
		Flags:   opts.Flags,
	}
	if opts.Flags != 0 {
		mesh.Vertices = make([]float32, 0, faceVertices*numFaces*opts.Flags.floats())
	}

	for face := 0; face < numFaces; face++ {
		if opts.Flags != 0 {
			normal := faceNormals[face]
			for y := 0; y <= n; y++ {
				for x := 0; x <= n; x++ {
					u := float32(x) / float32(n)
					v := float32(y) / float32(n)
					// Grid coordinates centered on the face.
					gx := u - 0.5
					gy := 0.5 - v

					var pos [3]float32
					switch face {
					case 0:
						pos = [3]float32{+0.5, gy, +gx}
					case 1:
						pos = [3]float32{-0.5, gy, -gx}
					case 2:
						pos = [3]float32{gx, +0.5, +gy}
					case 3:
						pos = [3]float32{gx, -0.5, -gy}
					case 4:
						pos = [3]float32{-gx, gy, +0.5}
					case 5:
						pos = [3]float32{+gx, gy, -0.5}
					}

					if opts.Flags&VertexPosition != 0 {
						mesh.Vertices = append(mesh.Vertices,
							pos[0]*opts.Size, pos[1]*opts.Size, pos[2]*opts.Size)
					}
					if opts.Flags&VertexNormal != 0 {
						mesh.Vertices = append(mesh.Vertices, normal[0], normal[1], normal[2])
					}
					if opts.Flags&VertexTexCoord != 0 {
						mesh.Vertices = append(mesh.Vertices, u, v)
					}
				}
			}
		}

		// Two triangles per grid quad:
		//
		//	01-----11
		//	 |   .'|
		//	 | .'  |
		//	00-----10
		base := uint32(face * faceVertices)
		for y := 0; y < n; y++ {
			for x := 0; x < n; x++ {
				v00 := base + uint32(y*(n+1)+x)
				v10 := v00 + 1
				v01 := v00 + uint32(n) + 1
				v11 := v01 + 1

				mesh.Indices = append(mesh.Indices,
					v00, v10, v11,
					v00, v11, v01)
			}
		}
	}

	return mesh, nil
}
