// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"
	"image"
	"math"

	"github.com/gogpu/gui"
	"github.com/gogpu/gui/shader"
	"github.com/gogpu/gui/text"
)

// OpKind discriminates recorded draw operations.
type OpKind uint8

const (
	// OpQuad fills a rectangle.
	OpQuad OpKind = iota
	// OpGlyph draws one rasterized glyph.
	OpGlyph
	// OpLine draws an underline or strikethrough bar.
	OpLine
	// OpShader runs a compiled shader pass over a region.
	OpShader
	// OpLayerPush begins a clip layer.
	OpLayerPush
	// OpLayerPop ends the innermost clip layer.
	OpLayerPop
)

// Op is one recorded draw operation. Fields beyond Kind and Bounds are
// populated per kind.
type Op struct {
	Kind   OpKind
	Bounds gui.Bounds
	Color  gui.RGBA

	// OpGlyph
	Origin gui.Point
	Params text.RenderGlyphParams

	// OpLine
	Width     float64
	Thickness float64
	Wavy      bool

	// OpShader
	Shader     shader.ShaderID
	ReadBounds gui.Bounds
	Data       []byte
}

// Frame records one frame's draw operations and flushes them to a
// RenderTarget. It implements both text.Painter and shader.Painter, so
// shaped text and shader elements paint into the same ordered list.
//
// Coordinates on the recording side are logical pixels; the scale factor
// is applied at flush. Frame is not safe for concurrent use: one
// goroutine paints a frame.
type Frame struct {
	windowBounds gui.Bounds
	scale        float64
	registry     *shader.Registry
	textSys      *text.TextSystem

	ops    []Op
	layers []gui.Bounds
}

// NewFrame creates a Frame for a window of the given logical bounds and
// device scale factor. The registry handles shader pass registration;
// the text system rasterizes glyphs at flush (it may be nil when the
// frame never paints glyphs).
func NewFrame(windowBounds gui.Bounds, scaleFactor float64, registry *shader.Registry, sys *text.TextSystem) *Frame {
	if scaleFactor <= 0 {
		scaleFactor = 1
	}
	return &Frame{
		windowBounds: windowBounds,
		scale:        scaleFactor,
		registry:     registry,
		textSys:      sys,
	}
}

// Ops returns the recorded operations in paint order.
func (f *Frame) Ops() []Op { return f.ops }

// Reset clears the recorded operations for reuse on the next frame.
func (f *Frame) Reset() {
	f.ops = f.ops[:0]
	f.layers = f.layers[:0]
}

// ScaleFactor returns the device pixel scale.
func (f *Frame) ScaleFactor() float64 { return f.scale }

// WindowBounds implements shader.Painter.
func (f *Frame) WindowBounds() gui.Bounds { return f.windowBounds }

// RegisterShader implements shader.Painter.
func (f *Frame) RegisterShader(spec shader.PassSpec) (shader.ShaderID, *shader.CompileError) {
	return f.registry.Register(spec)
}

// PaintShader implements shader.Painter.
func (f *Frame) PaintShader(id shader.ShaderID, bounds, readBounds gui.Bounds, data []byte) {
	f.ops = append(f.ops, Op{
		Kind:       OpShader,
		Bounds:     bounds,
		Shader:     id,
		ReadBounds: readBounds,
		Data:       data,
	})
}

// PaintQuad implements both painter interfaces.
func (f *Frame) PaintQuad(bounds gui.Bounds, color gui.RGBA) {
	f.ops = append(f.ops, Op{Kind: OpQuad, Bounds: bounds, Color: color})
}

// PaintGlyph implements text.Painter. The glyph's device position is
// split into an integer pixel and a quantized sub-pixel phase; the phase
// selects the raster variant so adjacent glyphs keep their fractional
// spacing without per-position rasterization.
func (f *Frame) PaintGlyph(origin gui.Point, font text.FontID, glyph text.GlyphID, fontSize float64, color gui.RGBA, isEmoji bool) {
	dx := origin.X * f.scale
	dy := origin.Y * f.scale
	sx := uint8(math.Round((dx-math.Floor(dx))*subpixelVariantsX)) % uint8(text.SubpixelVariantsX)
	sy := uint8(math.Round((dy-math.Floor(dy))*float64(text.SubpixelVariantsY))) % text.SubpixelVariantsY
	f.ops = append(f.ops, Op{
		Kind:   OpGlyph,
		Origin: origin,
		Color:  color,
		Params: text.RenderGlyphParams{
			Font:        font,
			Glyph:       glyph,
			FontSize:    fontSize,
			Subpixel:    text.SubpixelVariant{X: sx, Y: sy},
			ScaleFactor: f.scale,
			IsEmoji:     isEmoji,
		},
	})
}

const subpixelVariantsX = float64(text.SubpixelVariantsX)

// PaintUnderline implements text.Painter.
func (f *Frame) PaintUnderline(origin gui.Point, width float64, style text.UnderlineStyle) {
	color := gui.RGBA{A: 1}
	if style.Color != nil {
		color = *style.Color
	}
	f.ops = append(f.ops, Op{
		Kind:      OpLine,
		Bounds:    gui.Bounds{Origin: origin, Size: gui.Size{Width: width, Height: style.Thickness}},
		Color:     color,
		Width:     width,
		Thickness: style.Thickness,
		Wavy:      style.Wavy,
	})
}

// PaintStrikethrough implements text.Painter.
func (f *Frame) PaintStrikethrough(origin gui.Point, width float64, style text.StrikethroughStyle) {
	color := gui.RGBA{A: 1}
	if style.Color != nil {
		color = *style.Color
	}
	f.ops = append(f.ops, Op{
		Kind:      OpLine,
		Bounds:    gui.Bounds{Origin: origin, Size: gui.Size{Width: width, Height: style.Thickness}},
		Color:     color,
		Width:     width,
		Thickness: style.Thickness,
	})
}

// PaintLayer implements text.Painter. Draws recorded inside f are
// clipped to bounds (intersected with any enclosing layer).
func (f *Frame) PaintLayer(bounds gui.Bounds, fn func()) {
	clip := bounds
	if len(f.layers) > 0 {
		clip = clip.Intersect(f.layers[len(f.layers)-1])
	}
	f.layers = append(f.layers, clip)
	f.ops = append(f.ops, Op{Kind: OpLayerPush, Bounds: clip})
	fn()
	f.layers = f.layers[:len(f.layers)-1]
	f.ops = append(f.ops, Op{Kind: OpLayerPop})
}

// Flush software-composites the recorded operations into a CPU target.
// Shader ops need a GPU pipeline and are skipped here with a debug log;
// everything else (quads, glyph masks, decoration bars) renders with
// source-over blending. A glyph that fails to rasterize is skipped with
// a warning so one bad glyph cannot abort the rest of the frame.
func (f *Frame) Flush(target RenderTarget) error {
	pix := target.Pixels()
	if pix == nil {
		return fmt.Errorf("render: target has no CPU pixel access")
	}
	c := &compositor{
		pix:    pix,
		stride: target.Stride(),
		width:  target.Width(),
		height: target.Height(),
		scale:  f.scale,
	}
	c.clips = append(c.clips, image.Rect(0, 0, c.width, c.height))

	for i := range f.ops {
		op := &f.ops[i]
		switch op.Kind {
		case OpLayerPush:
			c.clips = append(c.clips, c.clip().Intersect(c.deviceRect(op.Bounds)))
		case OpLayerPop:
			if len(c.clips) > 1 {
				c.clips = c.clips[:len(c.clips)-1]
			}
		case OpQuad, OpLine:
			c.fillRect(c.deviceRect(op.Bounds), op.Color)
		case OpGlyph:
			if err := f.flushGlyph(c, op); err != nil {
				gui.Logger().Warn("skipping glyph", "glyph", op.Params.Glyph, "err", err)
			}
		case OpShader:
			gui.Logger().Debug("skipping shader pass on CPU target", "shader", op.Shader)
		}
	}
	return nil
}

func (f *Frame) flushGlyph(c *compositor, op *Op) error {
	if f.textSys == nil {
		return fmt.Errorf("render: frame has no text system for glyph rasterization")
	}
	bounds, err := f.textSys.GlyphRasterBounds(op.Params)
	if err != nil {
		return err
	}
	if bounds.Empty() {
		return nil
	}
	size, mask, err := f.textSys.RasterizeGlyph(op.Params, bounds)
	if err != nil {
		return err
	}
	ox := int(math.Floor(op.Origin.X * f.scale))
	oy := int(math.Floor(op.Origin.Y * f.scale))
	c.blendMask(ox+bounds.Min.X, oy+bounds.Min.Y, size, mask, op.Color)
	return nil
}

// compositor is the CPU blending state for one flush.
type compositor struct {
	pix    []byte
	stride int
	width  int
	height int
	scale  float64
	clips  []image.Rectangle
}

func (c *compositor) clip() image.Rectangle { return c.clips[len(c.clips)-1] }

func (c *compositor) deviceRect(b gui.Bounds) image.Rectangle {
	return image.Rect(
		int(math.Floor(b.Origin.X*c.scale)),
		int(math.Floor(b.Origin.Y*c.scale)),
		int(math.Ceil((b.Origin.X+b.Size.Width)*c.scale)),
		int(math.Ceil((b.Origin.Y+b.Size.Height)*c.scale)),
	)
}

func (c *compositor) fillRect(r image.Rectangle, color gui.RGBA) {
	r = r.Intersect(c.clip())
	if r.Empty() {
		return
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := y * c.stride
		for x := r.Min.X; x < r.Max.X; x++ {
			c.blendPixel(row+x*4, color, 1)
		}
	}
}

func (c *compositor) blendMask(ox, oy int, size image.Point, mask []byte, color gui.RGBA) {
	clip := c.clip()
	for y := 0; y < size.Y; y++ {
		ty := oy + y
		if ty < clip.Min.Y || ty >= clip.Max.Y {
			continue
		}
		row := ty * c.stride
		for x := 0; x < size.X; x++ {
			tx := ox + x
			if tx < clip.Min.X || tx >= clip.Max.X {
				continue
			}
			a := float64(mask[y*size.X+x]) / 255
			if a == 0 {
				continue
			}
			c.blendPixel(row+tx*4, color, a)
		}
	}
}

// blendPixel source-over blends color (scaled by coverage) onto one
// RGBA8 pixel.
func (c *compositor) blendPixel(off int, color gui.RGBA, coverage float64) {
	if off < 0 || off+3 >= len(c.pix) {
		return
	}
	sa := color.A * coverage
	if sa <= 0 {
		return
	}
	inv := 1 - sa
	c.pix[off+0] = blend8(color.R*sa, c.pix[off+0], inv)
	c.pix[off+1] = blend8(color.G*sa, c.pix[off+1], inv)
	c.pix[off+2] = blend8(color.B*sa, c.pix[off+2], inv)
	c.pix[off+3] = blend8(sa, c.pix[off+3], inv)
}

func blend8(src float64, dst byte, inv float64) byte {
	v := src*255 + float64(dst)*inv
	if v > 255 {
		v = 255
	}
	return byte(v + 0.5)
}

var (
	_ text.Painter   = (*Frame)(nil)
	_ shader.Painter = (*Frame)(nil)
)
