package text

import (
	"fmt"
	"image"
	"math"

	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
)

// rasterPPEM is the pixel size a glyph renders at: the font size scaled
// to device pixels.
func rasterPPEM(params RenderGlyphParams) fixed.Int26_6 {
	return toFixed(params.FontSize * params.ScaleFactor)
}

// subpixelShift converts the quantized variant back to the fractional
// pixel offset applied when rasterizing.
func subpixelShift(params RenderGlyphParams) (dx, dy float64) {
	dx = float64(params.Subpixel.X) / float64(SubpixelVariantsX)
	dy = float64(params.Subpixel.Y) / float64(SubpixelVariantsY)
	return dx, dy
}

// GlyphRasterBounds implements Platform. The rectangle is in device
// pixels relative to the glyph origin on the baseline, with y growing
// downward, and accounts for the sub-pixel shift the variant applies.
func (ts *TypesettingSystem) GlyphRasterBounds(params RenderGlyphParams) (image.Rectangle, error) {
	lf, ok := ts.lookup(params.Font)
	if !ok {
		return image.Rectangle{}, fmt.Errorf("%w: handle %d", ErrFontNotFound, params.Font.Handle)
	}
	ppem := rasterPPEM(params)
	lf.otMu.Lock()
	b, _, err := lf.ot.GlyphBounds(&lf.otBuf, sfnt.GlyphIndex(params.Glyph), ppem, xfont.HintingNone)
	lf.otMu.Unlock()
	if err != nil {
		return image.Rectangle{}, fmt.Errorf("%w: glyph %d: %v", ErrGlyphNotFound, params.Glyph, err)
	}
	dx, dy := subpixelShift(params)
	return image.Rect(
		int(math.Floor(fromFixed(b.Min.X)+dx)),
		int(math.Floor(fromFixed(b.Min.Y)+dy)),
		int(math.Ceil(fromFixed(b.Max.X)+dx)),
		int(math.Ceil(fromFixed(b.Max.Y)+dy)),
	), nil
}

// RasterizeGlyph implements Platform: load the glyph outline and scan
// convert it into an 8-bit alpha mask covering bounds. Color (emoji)
// faces are rendered through the same outline path; fonts whose emoji
// exist only as embedded bitmaps produce their fallback outlines.
func (ts *TypesettingSystem) RasterizeGlyph(params RenderGlyphParams, bounds image.Rectangle) (image.Point, []byte, error) {
	lf, ok := ts.lookup(params.Font)
	if !ok {
		return image.Point{}, nil, fmt.Errorf("%w: handle %d", ErrFontNotFound, params.Font.Handle)
	}
	size := bounds.Size()
	if size.X <= 0 || size.Y <= 0 {
		return image.Point{}, nil, nil
	}

	ppem := rasterPPEM(params)
	lf.otMu.Lock()
	segments, err := lf.ot.LoadGlyph(&lf.otBuf, sfnt.GlyphIndex(params.Glyph), ppem, nil)
	lf.otMu.Unlock()
	if err != nil {
		return image.Point{}, nil, fmt.Errorf("%w: glyph %d: %v", ErrGlyphNotFound, params.Glyph, err)
	}

	// Translate the outline so bounds.Min lands at the bitmap origin,
	// then apply the sub-pixel shift.
	dx, dy := subpixelShift(params)
	tx := float32(dx - float64(bounds.Min.X))
	ty := float32(dy - float64(bounds.Min.Y))

	r := vector.NewRasterizer(size.X, size.Y)
	for _, seg := range segments {
		p := seg.Args
		switch seg.Op {
		case sfnt.SegmentOpMoveTo:
			r.MoveTo(fixed32(p[0].X)+tx, fixed32(p[0].Y)+ty)
		case sfnt.SegmentOpLineTo:
			r.LineTo(fixed32(p[0].X)+tx, fixed32(p[0].Y)+ty)
		case sfnt.SegmentOpQuadTo:
			r.QuadTo(
				fixed32(p[0].X)+tx, fixed32(p[0].Y)+ty,
				fixed32(p[1].X)+tx, fixed32(p[1].Y)+ty,
			)
		case sfnt.SegmentOpCubeTo:
			r.CubeTo(
				fixed32(p[0].X)+tx, fixed32(p[0].Y)+ty,
				fixed32(p[1].X)+tx, fixed32(p[1].Y)+ty,
				fixed32(p[2].X)+tx, fixed32(p[2].Y)+ty,
			)
		}
	}

	dst := image.NewAlpha(image.Rect(0, 0, size.X, size.Y))
	r.Draw(dst, dst.Bounds(), image.Opaque, image.Point{})
	return size, dst.Pix, nil
}

func fixed32(v fixed.Int26_6) float32 {
	return float32(v) / 64
}
