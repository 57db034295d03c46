// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package backend

import (
	"errors"

	"github.com/gogpu/glink/driver"
)

// Common backend errors.
var (
	// ErrNotRegistered is returned when a requested backend is not
	// registered.
	ErrNotRegistered = errors.New("backend: not registered")

	// ErrNoneAvailable is returned by Open("") when no backend is
	// registered or every registered backend fails to open.
	ErrNoneAvailable = errors.New("backend: none available")
)

// Well-known backend names.
const (
	// GL is the OpenGL 4.3 core backend provided by backend/gl.
	GL = "gl43"
)

// Factory opens a driver context. Opening can require platform state
// the factory cannot establish itself — the GL backend needs a current
// GL context on the calling thread — and reports an error when that
// state is missing.
type Factory func() (driver.Context, error)
