package text

import (
	"image"
	"sync/atomic"

	"github.com/gogpu/gui"
)

// countingEngine is a LayoutEngine that fabricates single-line layouts
// with one glyph cluster per byte and counts how often it is invoked.
type countingEngine struct {
	calls   atomic.Int64
	advance float64
}

func newCountingEngine() *countingEngine {
	return &countingEngine{advance: 10}
}

func (e *countingEngine) Layout(text string, fontSize, lineHeight float64, runs []FontRun, wrapWidth, forceSpacing float64) *Layout {
	e.calls.Add(1)

	advance := e.advance
	if forceSpacing > 0 {
		advance = forceSpacing
	}
	line := ShapedLine{Len: len(text), Ascent: fontSize * 0.8, Descent: fontSize * 0.2}
	run := ShapedRun{}
	if len(runs) > 0 {
		run.Font = runs[0].Font
	}
	for i := 0; i < len(text); i++ {
		run.Glyphs = append(run.Glyphs, ShapedGlyph{
			ID:      GlyphID(text[i]),
			X:       float64(i) * advance,
			Advance: advance,
			Index:   i,
		})
		run.Clusters = append(run.Clusters, Cluster{Start: i, End: i + 1, Advance: advance})
		run.Advance += advance
	}
	line.Width = run.Advance
	line.Runs = []ShapedRun{run}
	return &Layout{
		FontSize:   fontSize,
		LineHeight: lineHeight,
		Width:      line.Width,
		Len:        len(text),
		Lines:      []ShapedLine{line},
	}
}

// fakePlatform is a Platform with a fixed set of families and synthetic
// metrics: upem 1000, ascent 800, descent 200.
type fakePlatform struct {
	families    []string
	fontIDCalls atomic.Int64
	boundsCalls atomic.Int64
}

func newFakePlatform(families ...string) *fakePlatform {
	if len(families) == 0 {
		families = []string{"Test Sans"}
	}
	return &fakePlatform{families: families}
}

func (p *fakePlatform) AddFont(data []byte) error {
	if len(data) == 0 {
		return ErrEmptyFontData
	}
	return nil
}

func (p *fakePlatform) FontID(font Font) (FontID, error) {
	p.fontIDCalls.Add(1)
	for i, fam := range p.families {
		if fam == font.Family {
			return FontID{Handle: uint64(i + 1)}, nil
		}
	}
	return FontID{}, ErrFontNotFound
}

func (p *fakePlatform) FontMetrics(id FontID) FontMetrics {
	return FontMetrics{
		UnitsPerEm:             1000,
		Ascent:                 800,
		Descent:                200,
		LineGap:                90,
		UnderlinePosition:      -100,
		UnderlineThickness:     50,
		StrikethroughPosition:  250,
		StrikethroughThickness: 50,
		CapHeight:              700,
		XHeight:                500,
	}
}

func (p *fakePlatform) GlyphForChar(id FontID, r rune) (GlyphID, bool) {
	if r == 0 {
		return 0, false
	}
	return GlyphID(r), true
}

func (p *fakePlatform) TypographicBounds(id FontID, glyph GlyphID) (gui.Bounds, error) {
	return gui.Rect(0, -800, 600, 1000), nil
}

func (p *fakePlatform) Advance(id FontID, glyph GlyphID) (float64, error) {
	return 600, nil
}

func (p *fakePlatform) GlyphRasterBounds(params RenderGlyphParams) (image.Rectangle, error) {
	p.boundsCalls.Add(1)
	w := int(params.FontSize * params.ScaleFactor * 0.6)
	h := int(params.FontSize * params.ScaleFactor)
	return image.Rect(0, -h, w, 0), nil
}

func (p *fakePlatform) RasterizeGlyph(params RenderGlyphParams, bounds image.Rectangle) (image.Point, []byte, error) {
	size := bounds.Size()
	mask := make([]byte, size.X*size.Y)
	for i := range mask {
		mask[i] = 0xff
	}
	return size, mask, nil
}

func (p *fakePlatform) AllFontNames() []string {
	return append([]string(nil), p.families...)
}
