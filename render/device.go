// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// DeviceHandle provides GPU device access from the host application.
//
// The host application implements DeviceHandle (or reuses an existing
// gpucontext.DeviceProvider) and hands it to the renderer. The renderer
// RECEIVES the device, it never creates one, so GPU resources are shared
// with whatever framework owns the window.
type DeviceHandle = gpucontext.DeviceProvider

// TextureDescriptor describes parameters for creating a texture, after
// the WebGPU GPUTextureDescriptor.
type TextureDescriptor struct {
	// Label is an optional debug label.
	Label string

	// Width and Height are the texture dimensions in pixels.
	Width, Height uint32

	// MipLevelCount is the number of mipmap levels. Use 1 for none.
	MipLevelCount uint32

	// SampleCount is the number of multisampling samples. Use 1 for none.
	SampleCount uint32

	// Format is the texture pixel format.
	Format gputypes.TextureFormat

	// Usage specifies how the texture will be used.
	Usage TextureUsage
}

// TextureUsage specifies how a texture can be used. Flags combine with
// bitwise OR.
type TextureUsage uint32

const (
	// TextureUsageCopySrc allows use as a copy source.
	TextureUsageCopySrc TextureUsage = 1 << iota

	// TextureUsageCopyDst allows use as a copy destination.
	TextureUsageCopyDst

	// TextureUsageTextureBinding allows sampling from shaders. Backdrop
	// textures for shader passes with read access need this.
	TextureUsageTextureBinding

	// TextureUsageRenderAttachment allows use as a render attachment.
	TextureUsageRenderAttachment
)

// Texture is a GPU texture resource. The glyph atlas and shader backdrop
// copies live in these.
type Texture interface {
	// Width returns the texture width in pixels.
	Width() uint32

	// Height returns the texture height in pixels.
	Height() uint32

	// Format returns the texture pixel format.
	Format() gputypes.TextureFormat

	// CreateView creates a view for binding this texture.
	CreateView() TextureView

	// Destroy releases the GPU resources.
	Destroy()
}

// TextureView is a bindable view into a texture.
type TextureView interface {
	// Destroy releases resources associated with this view.
	Destroy()
}

// DefaultTextureDescriptor returns a descriptor with the defaults a
// sampled render-to texture wants; only dimensions and format vary.
func DefaultTextureDescriptor(width, height uint32, format gputypes.TextureFormat) TextureDescriptor {
	return TextureDescriptor{
		Width:         width,
		Height:        height,
		MipLevelCount: 1,
		SampleCount:   1,
		Format:        format,
		Usage:         TextureUsageTextureBinding | TextureUsageRenderAttachment,
	}
}

// NullDeviceHandle is a DeviceHandle with no GPU behind it, for software
// rendering and tests.
type NullDeviceHandle struct{}

// Device returns nil for the null device.
func (NullDeviceHandle) Device() gpucontext.Device { return nil }

// Queue returns nil for the null device.
func (NullDeviceHandle) Queue() gpucontext.Queue { return nil }

// Adapter returns nil for the null device.
func (NullDeviceHandle) Adapter() gpucontext.Adapter { return nil }

// AdapterInfo reports a software adapter for the null device.
func (NullDeviceHandle) AdapterInfo() gpucontext.AdapterInfo {
	return gpucontext.AdapterInfo{Type: gpucontext.AdapterTypeSoftware}
}

// SurfaceFormat returns undefined format for the null device.
func (NullDeviceHandle) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatUndefined
}

var _ DeviceHandle = NullDeviceHandle{}
