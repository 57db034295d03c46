// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package shader

import (
	"fmt"

	"github.com/gogpu/wgpu/hal"
)

// SPIRVWords converts a SPIR-V binary to its word form. SPIR-V is a
// stream of little-endian 32-bit words.
func SPIRVWords(spirv []byte) ([]uint32, error) {
	if len(spirv)%4 != 0 {
		return nil, fmt.Errorf("shader: SPIR-V binary length %d is not a multiple of 4", len(spirv))
	}
	words := make([]uint32, len(spirv)/4)
	for i := range words {
		words[i] = uint32(spirv[i*4]) |
			uint32(spirv[i*4+1])<<8 |
			uint32(spirv[i*4+2])<<16 |
			uint32(spirv[i*4+3])<<24
	}
	return words, nil
}

// NewHALModule compiles the stage and creates a shader module on a
// gogpu HAL device. The caller owns the module and destroys it with
// device.DestroyShaderModule.
func NewHALModule(device hal.Device, label string, stage Stage) (hal.ShaderModule, error) {
	spirv, err := stage.CompileSPIRV()
	if err != nil {
		return nil, err
	}
	words, err := SPIRVWords(spirv)
	if err != nil {
		return nil, err
	}
	return device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label: label,
		Source: hal.ShaderSource{
			SPIRV: words,
		},
	})
}
