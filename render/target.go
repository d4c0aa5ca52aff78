// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"image"
	"image/color"

	"github.com/gogpu/gputypes"
)

// RenderTarget is where a flushed frame's output goes: a CPU pixmap, a
// GPU texture, or a window surface. Targets may support CPU access
// (Pixels), GPU access (TextureView), or both; the frame flush picks
// whichever the target offers.
type RenderTarget interface {
	// Width returns the target width in pixels.
	Width() int

	// Height returns the target height in pixels.
	Height() int

	// Format returns the pixel format of the target.
	Format() gputypes.TextureFormat

	// TextureView returns the GPU texture view, or nil for CPU-only
	// targets.
	TextureView() TextureView

	// Pixels returns direct pixel access, or nil for GPU-only targets.
	// For RGBA8 each pixel is 4 bytes: R, G, B, A.
	Pixels() []byte

	// Stride returns the number of bytes per row.
	Stride() int
}

// PixmapTarget is a CPU-backed render target over an *image.RGBA. It is
// the target software rendering and tests draw into.
type PixmapTarget struct {
	img *image.RGBA
}

// NewPixmapTarget creates a CPU-backed target of the given size.
func NewPixmapTarget(width, height int) *PixmapTarget {
	return &PixmapTarget{
		img: image.NewRGBA(image.Rect(0, 0, width, height)),
	}
}

// NewPixmapTargetFromImage wraps an existing *image.RGBA without
// copying.
func NewPixmapTargetFromImage(img *image.RGBA) *PixmapTarget {
	return &PixmapTarget{img: img}
}

// Width returns the target width in pixels.
func (t *PixmapTarget) Width() int { return t.img.Bounds().Dx() }

// Height returns the target height in pixels.
func (t *PixmapTarget) Height() int { return t.img.Bounds().Dy() }

// Format returns the pixel format (RGBA8).
func (t *PixmapTarget) Format() gputypes.TextureFormat {
	return gputypes.TextureFormatRGBA8Unorm
}

// TextureView returns nil: this is a CPU-only target.
func (t *PixmapTarget) TextureView() TextureView { return nil }

// Pixels returns direct access to the pixel data.
func (t *PixmapTarget) Pixels() []byte { return t.img.Pix }

// Stride returns the number of bytes per row.
func (t *PixmapTarget) Stride() int { return t.img.Stride }

// Image returns the underlying *image.RGBA, sharing its memory.
func (t *PixmapTarget) Image() *image.RGBA { return t.img }

// Clear fills the target with a color.
func (t *PixmapTarget) Clear(c color.Color) {
	r, g, b, a := c.RGBA()
	rgba := color.RGBA{
		R: uint8(r >> 8),
		G: uint8(g >> 8),
		B: uint8(b >> 8),
		A: uint8(a >> 8),
	}
	for y := t.img.Bounds().Min.Y; y < t.img.Bounds().Max.Y; y++ {
		for x := t.img.Bounds().Min.X; x < t.img.Bounds().Max.X; x++ {
			t.img.SetRGBA(x, y, rgba)
		}
	}
}

var _ RenderTarget = (*PixmapTarget)(nil)
