// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package backend is a registry of driver.Context factories.
//
// Backend packages register themselves from init, so importing a
// backend makes it discoverable by name:
//
//	import _ "github.com/gogpu/glink/backend/gl"
//
//	ctx, err := backend.Open(backend.GL)
//
// Open("") picks the best available backend. Hosts that need
// backend-specific options — the GL backend accepts native platform
// handles for later export — construct the context through the backend
// package directly instead.
package backend
