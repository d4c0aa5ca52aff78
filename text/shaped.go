package text

import (
	"github.com/gogpu/gui"
)

// Painter receives the primitive draw calls emitted by ShapedText.Paint.
// It is implemented by the render package's Frame; tests substitute
// recording fakes.
type Painter interface {
	// PaintQuad fills a rectangle.
	PaintQuad(bounds gui.Bounds, color gui.RGBA)

	// PaintGlyph draws one glyph with its origin on the baseline.
	PaintGlyph(origin gui.Point, font FontID, glyph GlyphID, fontSize float64, color gui.RGBA, isEmoji bool)

	// PaintUnderline draws an underline starting at origin.
	PaintUnderline(origin gui.Point, width float64, style UnderlineStyle)

	// PaintStrikethrough draws a strikethrough starting at origin.
	PaintStrikethrough(origin gui.Point, width float64, style StrikethroughStyle)

	// PaintLayer scopes the draws issued by f to the given bounds.
	PaintLayer(bounds gui.Bounds, f func())
}

// ShapedText is a laid-out, styled text block ready for hit testing and
// painting. The underlying Layout is shared through the cache and never
// mutated; per-instance state (decorations, alignment) lives here.
type ShapedText struct {
	sys         *TextSystem
	layout      *Layout
	text        string
	lineHeight  float64
	decorations []DecorationRun

	// alignOffsets holds one x offset per line when alignment is applied.
	alignOffsets []float64
}

// Text returns the source text.
func (t *ShapedText) Text() string { return t.text }

// Layout returns the shared underlying layout.
func (t *ShapedText) Layout() *Layout { return t.layout }

// LineCount returns the number of laid-out lines.
func (t *ShapedText) LineCount() int { return len(t.layout.Lines) }

// Size returns the block's dimensions: the widest line by the summed
// line heights.
func (t *ShapedText) Size() gui.Size {
	return gui.Size{
		Width:  t.layout.Width,
		Height: float64(len(t.layout.Lines)) * t.lineHeight,
	}
}

// Align positions each line within containerWidth according to align.
// It only adjusts this instance's per-line offsets; the shared layout is
// untouched, so other holders of the same cached layout are unaffected.
func (t *ShapedText) Align(align TextAlign, containerWidth float64) {
	if align == AlignLeft {
		t.alignOffsets = nil
		return
	}
	offsets := make([]float64, len(t.layout.Lines))
	for i, line := range t.layout.Lines {
		slack := containerWidth - line.Width
		if slack < 0 {
			slack = 0
		}
		switch align {
		case AlignCenter:
			offsets[i] = slack / 2
		case AlignRight:
			offsets[i] = slack
		}
	}
	t.alignOffsets = offsets
}

func (t *ShapedText) lineOffset(i int) float64 {
	if i < len(t.alignOffsets) {
		return t.alignOffsets[i]
	}
	return 0
}

// IndexForPosition returns the byte index of the character whose glyph
// box contains the local point, or false when the point is outside the
// text: above the first line, below the last, or past a line's trailing
// edge.
func (t *ShapedText) IndexForPosition(p gui.Point) (int, bool) {
	if p.Y < 0 || len(t.layout.Lines) == 0 {
		return 0, false
	}
	if p.Y >= float64(len(t.layout.Lines))*t.lineHeight {
		return 0, false
	}
	lineIx := int(p.Y / t.lineHeight)
	if lineIx >= len(t.layout.Lines) {
		lineIx = len(t.layout.Lines) - 1
	}
	line := &t.layout.Lines[lineIx]
	x := p.X - t.lineOffset(lineIx)
	if x < 0 {
		return 0, false
	}
	for ri := range line.Runs {
		run := &line.Runs[ri]
		cx := run.Offset
		for _, cl := range run.Clusters {
			if x < cx+cl.Advance {
				return cl.Start, true
			}
			cx += cl.Advance
		}
	}
	return 0, false
}

// ClosestIndexForPosition returns the byte index of the character
// boundary nearest to the local point. Unlike IndexForPosition it always
// answers: points above the text map to 0, points below to the text
// length, and within a line each cluster's midpoint decides between its
// leading and trailing boundaries, with a point exactly at the midpoint
// snapping to the trailing boundary.
func (t *ShapedText) ClosestIndexForPosition(p gui.Point) int {
	if p.Y < 0 || len(t.layout.Lines) == 0 {
		return 0
	}
	if p.Y >= float64(len(t.layout.Lines))*t.lineHeight {
		return t.layout.Len
	}
	lineIx := int(p.Y / t.lineHeight)
	if lineIx >= len(t.layout.Lines) {
		lineIx = len(t.layout.Lines) - 1
	}
	line := &t.layout.Lines[lineIx]
	x := p.X - t.lineOffset(lineIx)

	closest := line.End()
	for ri := range line.Runs {
		run := &line.Runs[ri]
		cx := run.Offset
		for _, cl := range run.Clusters {
			if x < cx+cl.Advance/2 {
				return cl.Start
			}
			closest = cl.End
			cx += cl.Advance
		}
	}
	return closest
}

// PositionForIndex returns the local position of the character boundary
// at the given byte index: the top-left of its line at the boundary's x.
// An index equal to the text length maps to the sentinel position past
// all clusters: the last line's trailing x at the block's full height.
// Indices outside [0, len] return false.
func (t *ShapedText) PositionForIndex(index int) (gui.Point, bool) {
	if index < 0 || index > t.layout.Len || len(t.layout.Lines) == 0 {
		return gui.Point{}, false
	}
	for li := range t.layout.Lines {
		line := &t.layout.Lines[li]
		if index > line.End() && li < len(t.layout.Lines)-1 {
			continue
		}
		top := float64(li) * t.lineHeight
		x := t.lineOffset(li)
		for ri := range line.Runs {
			run := &line.Runs[ri]
			cx := x + run.Offset
			for _, cl := range run.Clusters {
				if index < cl.End {
					return gui.Point{X: cx, Y: top}, true
				}
				cx += cl.Advance
			}
		}
		if index >= t.layout.Len {
			return gui.Point{X: x + line.Width, Y: float64(len(t.layout.Lines)) * t.lineHeight}, true
		}
		return gui.Point{X: x + line.Width, Y: top}, true
	}
	return gui.Point{}, false
}

// Paint draws the block at origin: per-run backgrounds first, then
// glyphs on the baseline, then underlines and strikethroughs. Decoration
// colors default to the owning run's foreground color. All drawing is
// scoped to the block's bounds through one PaintLayer.
func (t *ShapedText) Paint(painter Painter, origin gui.Point) {
	size := t.Size()
	bounds := gui.Bounds{Origin: origin, Size: size}
	painter.PaintLayer(bounds, func() {
		for li := range t.layout.Lines {
			t.paintLine(painter, li, origin)
		}
	})
}

func (t *ShapedText) paintLine(painter Painter, li int, origin gui.Point) {
	line := &t.layout.Lines[li]
	top := origin.Y + float64(li)*t.lineHeight
	baseline := top + line.Ascent + (t.lineHeight-line.Ascent-line.Descent)/2
	left := origin.X + t.lineOffset(li)

	for ri := range line.Runs {
		run := &line.Runs[ri]
		deco := t.decoration(run.Run)
		runX := left + run.Offset

		if deco.Background != nil {
			painter.PaintQuad(gui.Bounds{
				Origin: gui.Point{X: runX, Y: top},
				Size:   gui.Size{Width: run.Advance, Height: t.lineHeight},
			}, *deco.Background)
		}

		for _, g := range run.Glyphs {
			painter.PaintGlyph(
				gui.Point{X: runX + g.X, Y: baseline + g.Y},
				run.Font, g.ID, t.layout.FontSize, deco.Color, g.IsEmoji,
			)
		}

		if deco.Underline != nil {
			style := *deco.Underline
			if style.Color == nil {
				c := deco.Color
				style.Color = &c
			}
			pos, thickness := t.sys.UnderlineMetrics(run.Font, t.layout.FontSize)
			if style.Thickness == 0 {
				style.Thickness = thickness
			}
			y := baseline - pos
			painter.PaintUnderline(gui.Point{X: runX, Y: y}, run.Advance, style)
		}

		if deco.Strikethrough != nil {
			style := *deco.Strikethrough
			if style.Color == nil {
				c := deco.Color
				style.Color = &c
			}
			pos, thickness := t.sys.StrikethroughMetrics(run.Font, t.layout.FontSize)
			if style.Thickness == 0 {
				style.Thickness = thickness
			}
			y := baseline - pos
			painter.PaintStrikethrough(gui.Point{X: runX, Y: y}, run.Advance, style)
		}
	}
}

func (t *ShapedText) decoration(run int) DecorationRun {
	if run >= 0 && run < len(t.decorations) {
		return t.decorations[run]
	}
	return DecorationRun{Color: gui.RGBA{A: 1}}
}
