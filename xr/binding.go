// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package xr packs graphics-binding payloads for handing a live GL
// context to an OpenXR runtime.
//
// An OpenXR session is created against the graphics API the application
// renders with, and the runtime learns about that API through a graphics
// binding structure carrying the platform handles of the live context.
// This package encodes driver.NativeHandles into a versioned
// little-endian blob: a layout tag first, then the handle words, ready
// for a host runtime integration to decode on the far side of a C
// boundary.
package xr

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/gogpu/glink/driver"
	"github.com/gogpu/gpucontext"
)

var (
	// ErrNoNativeHandles is returned when a context or device cannot
	// supply the platform handles a graphics binding needs.
	ErrNoNativeHandles = errors.New("xr: no native handles")

	// ErrNilProvider is returned when a nil DeviceProvider is passed.
	ErrNilProvider = errors.New("xr: nil DeviceProvider")
)

// BlobVersion is the layout version written into every binding blob.
// Decoders must reject versions they do not know.
const BlobVersion = 1

// BlobSize is the byte length of an encoded graphics binding.
const BlobSize = 32

// Blob layout, little-endian:
//
//	[0:4]   uint32 layout version (BlobVersion)
//	[4:8]   uint32 graphics API tag (driver.NativeAPI)
//	[8:16]  uint64 display handle
//	[16:24] uint64 drawable handle
//	[24:32] uint64 context handle

// NativeHandleSource is implemented by devices that can export their
// platform handles. gpucontext device interfaces are intentionally
// minimal; handle export is an optional capability discovered at
// runtime.
type NativeHandleSource interface {
	NativeHandles() driver.NativeHandles
}

// GraphicsBinding is an encoded graphics binding for OpenXR session
// creation. The zero value is not usable; construct one with
// NewGraphicsBinding, FromContext or FromDeviceProvider.
type GraphicsBinding struct {
	api  driver.NativeAPI
	blob [BlobSize]byte
}

// NewGraphicsBinding encodes the given native handles. It fails with
// ErrNoNativeHandles when the handles carry no API tag or no context
// handle; a binding without a live context is useless to a runtime.
func NewGraphicsBinding(nh driver.NativeHandles) (*GraphicsBinding, error) {
	if nh.API == driver.NativeAPINone {
		return nil, ErrNoNativeHandles
	}
	if nh.Context == 0 {
		return nil, fmt.Errorf("%w: zero %s context handle", ErrNoNativeHandles, nh.API)
	}

	b := &GraphicsBinding{api: nh.API}
	le := binary.LittleEndian
	le.PutUint32(b.blob[0:4], BlobVersion)
	le.PutUint32(b.blob[4:8], uint32(nh.API))
	le.PutUint64(b.blob[8:16], uint64(nh.Display))
	le.PutUint64(b.blob[16:24], uint64(nh.Drawable))
	le.PutUint64(b.blob[24:32], uint64(nh.Context))
	return b, nil
}

// FromContext encodes the native handles of a driver context.
func FromContext(ctx driver.Context) (*GraphicsBinding, error) {
	if ctx == nil {
		return nil, fmt.Errorf("%w: nil context", ErrNoNativeHandles)
	}
	return NewGraphicsBinding(ctx.NativeHandles())
}

// FromDeviceProvider encodes the native handles of the provider's
// device. The device must implement NativeHandleSource; devices backed
// by APIs with no GL-style handles (or test mocks) do not, and those
// report ErrNoNativeHandles.
func FromDeviceProvider(p gpucontext.DeviceProvider) (*GraphicsBinding, error) {
	if p == nil {
		return nil, ErrNilProvider
	}
	src, ok := p.Device().(NativeHandleSource)
	if !ok {
		return nil, fmt.Errorf("%w: device does not export them", ErrNoNativeHandles)
	}
	return NewGraphicsBinding(src.NativeHandles())
}

// API reports which graphics API the binding was encoded for.
func (b *GraphicsBinding) API() driver.NativeAPI { return b.api }

// Bytes returns a copy of the encoded binding blob.
func (b *GraphicsBinding) Bytes() []byte {
	out := make([]byte, BlobSize)
	copy(out, b.blob[:])
	return out
}

// String implements fmt.Stringer for log output. Handle values are
// deliberately omitted; they are addresses.
func (b *GraphicsBinding) String() string {
	return fmt.Sprintf("xr.GraphicsBinding{api: %s, %d bytes}", b.api, BlobSize)
}
