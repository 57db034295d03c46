// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package glink links compiled shader stages into GPU programs, reflects
// their active resource interfaces, and remaps driver-assigned resource
// slots onto externally supplied binding layouts.
//
// # Programs
//
// A [Program] owns one driver program object. [Program.Link] attaches a
// set of compiled stages and starts the driver link; on drivers that
// support it the link runs asynchronously and [Program.Status] observes
// its completion, polling or blocking as the caller chooses. Link status
// is monotonic: once a program has succeeded or failed it stays there,
// and a failed program is recreated rather than relinked.
//
// # Reflection
//
// [Program.LoadResources] queries the driver once for the linked
// program's active resources — uniform blocks, storage blocks, textures,
// images, samplers — and caches the snapshot. Repeated calls with an
// equal query return the same [Reflection] without touching the driver,
// which keeps per-frame lookups cheap. Entries preserve the driver's
// reporting order.
//
// # Binding
//
// A [Signature] declares named resources and a base binding offset per
// resource kind. [ResolveBindings] matches reflected resources against a
// list of signatures — first signature claiming a name wins — and
// produces a [BindingPlan] of final slots; [Program.ApplyBindings]
// commits a plan with one driver call per resolved entry. Several
// signatures with disjoint base offsets flatten into one program's slot
// space without colliding.
//
// # Drivers
//
// All driver work goes through the [driver.Context] interface. Package
// backend/gl implements it over an OpenGL 4.3 core context; package
// drivertest provides a scripted in-memory driver for tests.
//
// # Architecture
//
// The module is organized into:
//   - Root: Program, Reflection, Signature, BindingPlan, ProgramCache
//   - driver: the backend contract (Context, Resource, StageKind)
//   - backend: driver registry and the OpenGL implementation
//   - shader: WGSL parsing, reflection, and GLSL/SPIR-V translation
//   - geometry, xr: procedural test meshes and runtime interop glue
//
// glink produces no log output by default; see [SetLogger].
package glink

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)
