// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"image"
	"testing"

	"github.com/gogpu/gui"
	"github.com/gogpu/gui/shader"
	"github.com/gogpu/gui/text"
)

func stubRegistry() *shader.Registry {
	return shader.NewRegistry(shader.WithCompileFunc(func(string) ([]uint32, error) {
		return []uint32{0x07230203}, nil
	}))
}

func newTestFrame(scale float64) *Frame {
	return NewFrame(gui.Rect(0, 0, 100, 100), scale, stubRegistry(), nil)
}

func TestFrameRecordsOpsInOrder(t *testing.T) {
	f := newTestFrame(1)

	f.PaintQuad(gui.Rect(0, 0, 10, 10), gui.RGB(1, 0, 0))
	id, cerr := f.RegisterShader(shader.PassSpec{Body: "return vec4<f32>(1.0);"})
	if cerr != nil {
		t.Fatalf("RegisterShader: %v", cerr)
	}
	f.PaintShader(id, gui.Rect(0, 0, 10, 10), gui.Bounds{}, nil)
	f.PaintQuad(gui.Rect(5, 5, 10, 10), gui.RGB(0, 1, 0))

	ops := f.Ops()
	want := []OpKind{OpQuad, OpShader, OpQuad}
	if len(ops) != len(want) {
		t.Fatalf("recorded %d ops, want %d", len(ops), len(want))
	}
	for i, k := range want {
		if ops[i].Kind != k {
			t.Errorf("op %d kind = %v, want %v", i, ops[i].Kind, k)
		}
	}
	if ops[1].Shader != id {
		t.Errorf("shader op id = %v, want %v", ops[1].Shader, id)
	}
}

func TestPaintGlyphSubpixelQuantization(t *testing.T) {
	tests := []struct {
		name  string
		scale float64
		x     float64
		want  uint8
	}{
		{"whole pixel", 1, 10, 0},
		{"quarter", 1, 10.25, 1},
		{"half", 1, 10.5, 2},
		{"three quarters", 1, 10.75, 3},
		{"rounds to next pixel", 1, 10.9, 0},
		{"scale doubles the phase", 2, 10.25, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTestFrame(tt.scale)
			f.PaintGlyph(gui.Pt(tt.x, 0), text.FontID{Handle: 1}, 7, 14, gui.RGB(0, 0, 0), false)
			op := f.Ops()[0]
			if op.Params.Subpixel.X != tt.want {
				t.Errorf("subpixel x = %d, want %d", op.Params.Subpixel.X, tt.want)
			}
			if op.Params.ScaleFactor != tt.scale {
				t.Errorf("scale factor = %v", op.Params.ScaleFactor)
			}
		})
	}
}

func TestPaintLayerIntersectsNestedClips(t *testing.T) {
	f := newTestFrame(1)

	f.PaintLayer(gui.Rect(0, 0, 50, 50), func() {
		f.PaintLayer(gui.Rect(25, 25, 50, 50), func() {})
	})

	ops := f.Ops()
	if len(ops) != 4 {
		t.Fatalf("recorded %d ops, want 4", len(ops))
	}
	if got := ops[1].Bounds; got != gui.Rect(25, 25, 25, 25) {
		t.Errorf("nested layer clip = %v, want intersection", got)
	}
}

func pixel(target *PixmapTarget, x, y int) [4]byte {
	off := y*target.Stride() + x*4
	pix := target.Pixels()
	return [4]byte{pix[off], pix[off+1], pix[off+2], pix[off+3]}
}

func TestFlushFillsQuads(t *testing.T) {
	f := newTestFrame(1)
	target := NewPixmapTarget(10, 10)

	f.PaintQuad(gui.Rect(2, 2, 4, 4), gui.RGB(1, 0, 0))
	if err := f.Flush(target); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	if got := pixel(target, 3, 3); got != [4]byte{255, 0, 0, 255} {
		t.Errorf("inside pixel = %v", got)
	}
	if got := pixel(target, 0, 0); got != [4]byte{} {
		t.Errorf("outside pixel = %v, want untouched", got)
	}
	if got := pixel(target, 6, 3); got != [4]byte{} {
		t.Errorf("right of quad = %v, want untouched", got)
	}
}

func TestFlushAppliesScaleFactor(t *testing.T) {
	f := newTestFrame(2)
	target := NewPixmapTarget(10, 10)

	f.PaintQuad(gui.Rect(1, 1, 2, 2), gui.RGB(0, 1, 0))
	if err := f.Flush(target); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	// Logical (1,1,2,2) is device (2,2)-(6,6).
	if got := pixel(target, 2, 2); got != [4]byte{0, 255, 0, 255} {
		t.Errorf("device (2,2) = %v", got)
	}
	if got := pixel(target, 5, 5); got != [4]byte{0, 255, 0, 255} {
		t.Errorf("device (5,5) = %v", got)
	}
	if got := pixel(target, 6, 6); got != [4]byte{} {
		t.Errorf("device (6,6) = %v, want untouched", got)
	}
}

func TestFlushRespectsLayerClip(t *testing.T) {
	f := newTestFrame(1)
	target := NewPixmapTarget(10, 10)

	f.PaintLayer(gui.Rect(0, 0, 3, 3), func() {
		f.PaintQuad(gui.Rect(0, 0, 10, 10), gui.RGB(1, 1, 1))
	})
	f.Flush(target)

	if got := pixel(target, 1, 1); got != [4]byte{255, 255, 255, 255} {
		t.Errorf("inside clip = %v", got)
	}
	if got := pixel(target, 5, 5); got != [4]byte{} {
		t.Errorf("outside clip = %v, want untouched", got)
	}
}

func TestFlushBlendsAlpha(t *testing.T) {
	f := newTestFrame(1)
	target := NewPixmapTarget(4, 4)

	f.PaintQuad(gui.Rect(0, 0, 4, 4), gui.RGB(1, 0, 0))
	f.PaintQuad(gui.Rect(0, 0, 4, 4), gui.RGB(0, 0, 1).WithAlpha(0.5))
	f.Flush(target)

	got := pixel(target, 1, 1)
	if got[0] < 120 || got[0] > 135 || got[2] < 120 || got[2] > 135 {
		t.Errorf("blended pixel = %v, want ~half red half blue", got)
	}
}

func TestFlushSkipsShaderOpsOnCPU(t *testing.T) {
	f := newTestFrame(1)
	target := NewPixmapTarget(4, 4)

	id, _ := f.RegisterShader(shader.PassSpec{Body: "return vec4<f32>(1.0);"})
	f.PaintShader(id, gui.Rect(0, 0, 4, 4), gui.Bounds{}, nil)
	if err := f.Flush(target); err != nil {
		t.Fatalf("Flush with shader op: %v", err)
	}
	if got := pixel(target, 1, 1); got != [4]byte{} {
		t.Errorf("shader op drew on CPU target: %v", got)
	}
}

func TestFrameReset(t *testing.T) {
	f := newTestFrame(1)
	f.PaintQuad(gui.Rect(0, 0, 1, 1), gui.RGB(1, 1, 1))
	f.Reset()
	if len(f.Ops()) != 0 {
		t.Error("Reset left ops behind")
	}
}

// brokenGlyphPlatform is a text.Platform whose raster queries always
// fail.
type brokenGlyphPlatform struct{}

func (brokenGlyphPlatform) AddFont(data []byte) error { return nil }
func (brokenGlyphPlatform) FontID(font text.Font) (text.FontID, error) {
	return text.FontID{Handle: 1}, nil
}
func (brokenGlyphPlatform) FontMetrics(id text.FontID) text.FontMetrics {
	return text.FontMetrics{UnitsPerEm: 1000, Ascent: 800, Descent: 200}
}
func (brokenGlyphPlatform) GlyphForChar(id text.FontID, r rune) (text.GlyphID, bool) {
	return text.GlyphID(r), true
}
func (brokenGlyphPlatform) TypographicBounds(id text.FontID, g text.GlyphID) (gui.Bounds, error) {
	return gui.Bounds{}, nil
}
func (brokenGlyphPlatform) Advance(id text.FontID, g text.GlyphID) (float64, error) {
	return 600, nil
}
func (brokenGlyphPlatform) GlyphRasterBounds(params text.RenderGlyphParams) (image.Rectangle, error) {
	return image.Rectangle{}, errors.New("no outline")
}
func (brokenGlyphPlatform) RasterizeGlyph(params text.RenderGlyphParams, bounds image.Rectangle) (image.Point, []byte, error) {
	return image.Point{}, nil, errors.New("no outline")
}
func (brokenGlyphPlatform) AllFontNames() []string { return nil }

func TestFlushSkipsFailedGlyphs(t *testing.T) {
	sys := text.NewTextSystem(brokenGlyphPlatform{})
	f := NewFrame(gui.Rect(0, 0, 10, 10), 1, stubRegistry(), sys)
	target := NewPixmapTarget(10, 10)

	f.PaintGlyph(gui.Pt(1, 1), text.FontID{Handle: 1}, 7, 14, gui.RGB(0, 0, 1), false)
	f.PaintQuad(gui.Rect(2, 2, 4, 4), gui.RGB(1, 0, 0))

	// The failing glyph must not abort the flush or the quad after it.
	if err := f.Flush(target); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if got := pixel(target, 3, 3); got != [4]byte{255, 0, 0, 255} {
		t.Errorf("quad pixel = %v, want filled", got)
	}
}
