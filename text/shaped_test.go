package text

import (
	"math"
	"testing"

	"github.com/gogpu/gui"
)

// twoLineText builds a synthetic two-line ShapedText: "hello\nworld",
// every cluster 10 wide, line height 20, font size 14.
func twoLineText(decorations ...DecorationRun) *ShapedText {
	mkLine := func(start int) ShapedLine {
		run := ShapedRun{Font: FontID{Handle: 1}}
		for i := 0; i < 5; i++ {
			run.Glyphs = append(run.Glyphs, ShapedGlyph{
				ID: GlyphID('a' + i), X: float64(i) * 10, Advance: 10, Index: start + i,
			})
			run.Clusters = append(run.Clusters, Cluster{
				Start: start + i, End: start + i + 1, Advance: 10,
			})
			run.Advance += 10
		}
		return ShapedLine{
			Start: start, Len: 5, Width: 50,
			Ascent: 11.2, Descent: 2.8,
			Runs: []ShapedRun{run},
		}
	}
	if len(decorations) == 0 {
		decorations = []DecorationRun{{Len: 11, Color: gui.RGBA{A: 1}}}
	}
	return &ShapedText{
		sys: NewTextSystem(newFakePlatform()),
		layout: &Layout{
			FontSize:   14,
			LineHeight: 20,
			Width:      50,
			Len:        11,
			Lines:      []ShapedLine{mkLine(0), mkLine(6)},
		},
		text:        "hello\nworld",
		lineHeight:  20,
		decorations: decorations,
	}
}

func TestShapedTextSize(t *testing.T) {
	st := twoLineText()
	got := st.Size()
	if got.Width != 50 || got.Height != 40 {
		t.Errorf("Size() = %v, want {50 40}", got)
	}
}

func TestIndexForPosition(t *testing.T) {
	st := twoLineText()
	tests := []struct {
		name  string
		p     gui.Point
		index int
		ok    bool
	}{
		{"first line middle", gui.Pt(25, 10), 2, true},
		{"first cluster", gui.Pt(0, 0), 0, true},
		{"second line", gui.Pt(5, 30), 6, true},
		{"left of text", gui.Pt(-5, 10), 0, false},
		{"past trailing edge", gui.Pt(60, 10), 0, false},
		{"above text", gui.Pt(10, -1), 0, false},
		{"below text", gui.Pt(10, 45), 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			index, ok := st.IndexForPosition(tt.p)
			if ok != tt.ok || (ok && index != tt.index) {
				t.Errorf("IndexForPosition(%v) = %d, %v; want %d, %v",
					tt.p, index, ok, tt.index, tt.ok)
			}
		})
	}
}

func TestClosestIndexForPosition(t *testing.T) {
	st := twoLineText()
	tests := []struct {
		name  string
		p     gui.Point
		index int
	}{
		{"before cluster midpoint", gui.Pt(24, 10), 2},
		{"after cluster midpoint", gui.Pt(26, 10), 3},
		{"exact midpoint goes to trailing boundary", gui.Pt(25, 10), 3},
		{"past line end", gui.Pt(100, 10), 5},
		{"left of line", gui.Pt(-10, 10), 0},
		{"above text", gui.Pt(10, -5), 0},
		{"below text", gui.Pt(10, 100), 11},
		{"second line", gui.Pt(2, 30), 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := st.ClosestIndexForPosition(tt.p); got != tt.index {
				t.Errorf("ClosestIndexForPosition(%v) = %d, want %d", tt.p, got, tt.index)
			}
		})
	}
}

func TestPositionForIndex(t *testing.T) {
	st := twoLineText()
	tests := []struct {
		name  string
		index int
		pos   gui.Point
		ok    bool
	}{
		{"start", 0, gui.Pt(0, 0), true},
		{"mid first line", 2, gui.Pt(20, 0), true},
		{"first line trailing edge", 5, gui.Pt(50, 0), true},
		{"second line start", 6, gui.Pt(0, 20), true},
		{"text end is trailing x at full height", 11, gui.Pt(50, 40), true},
		{"past end", 12, gui.Point{}, false},
		{"negative", -1, gui.Point{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos, ok := st.PositionForIndex(tt.index)
			if ok != tt.ok || (ok && pos != tt.pos) {
				t.Errorf("PositionForIndex(%d) = %v, %v; want %v, %v",
					tt.index, pos, ok, tt.pos, tt.ok)
			}
		})
	}
}

func TestAlignShiftsHitTesting(t *testing.T) {
	st := twoLineText()
	st.Align(AlignCenter, 100)

	// Lines are 50 wide, so centered lines start at x=25.
	if index, ok := st.IndexForPosition(gui.Pt(10, 10)); ok {
		t.Errorf("point left of centered line hit index %d", index)
	}
	index, ok := st.IndexForPosition(gui.Pt(25, 10))
	if !ok || index != 0 {
		t.Errorf("centered line start = %d, %v; want 0, true", index, ok)
	}

	pos, ok := st.PositionForIndex(0)
	if !ok || pos.X != 25 {
		t.Errorf("PositionForIndex(0) after centering = %v, %v", pos, ok)
	}

	// Right alignment puts the line flush with the container edge.
	st.Align(AlignRight, 100)
	pos, _ = st.PositionForIndex(5)
	if pos.X != 100 {
		t.Errorf("trailing edge after right align = %v, want x=100", pos.X)
	}
}

// recordingPainter captures paint calls in order.
type recordingPainter struct {
	calls []paintCall
}

type paintCall struct {
	kind   string
	bounds gui.Bounds
	origin gui.Point
	color  gui.RGBA
	width  float64
	uline  UnderlineStyle
	sline  StrikethroughStyle
}

func (p *recordingPainter) PaintQuad(bounds gui.Bounds, color gui.RGBA) {
	p.calls = append(p.calls, paintCall{kind: "quad", bounds: bounds, color: color})
}

func (p *recordingPainter) PaintGlyph(origin gui.Point, font FontID, glyph GlyphID, fontSize float64, color gui.RGBA, isEmoji bool) {
	p.calls = append(p.calls, paintCall{kind: "glyph", origin: origin, color: color})
}

func (p *recordingPainter) PaintUnderline(origin gui.Point, width float64, style UnderlineStyle) {
	p.calls = append(p.calls, paintCall{kind: "underline", origin: origin, width: width, uline: style})
}

func (p *recordingPainter) PaintStrikethrough(origin gui.Point, width float64, style StrikethroughStyle) {
	p.calls = append(p.calls, paintCall{kind: "strikethrough", origin: origin, width: width, sline: style})
}

func (p *recordingPainter) PaintLayer(bounds gui.Bounds, f func()) {
	p.calls = append(p.calls, paintCall{kind: "layer", bounds: bounds})
	f()
}

func (p *recordingPainter) kinds() []string {
	out := make([]string, len(p.calls))
	for i, c := range p.calls {
		out[i] = c.kind
	}
	return out
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestPaintOrderAndDecorations(t *testing.T) {
	red := gui.RGB(1, 0, 0)
	bg := gui.RGB(0, 0, 1)
	st := twoLineText(DecorationRun{
		Len:           11,
		Color:         red,
		Background:    &bg,
		Underline:     &UnderlineStyle{},
		Strikethrough: &StrikethroughStyle{},
	})

	var p recordingPainter
	st.Paint(&p, gui.Pt(100, 200))

	kinds := p.kinds()
	want := []string{
		"layer",
		"quad", "glyph", "glyph", "glyph", "glyph", "glyph", "underline", "strikethrough",
		"quad", "glyph", "glyph", "glyph", "glyph", "glyph", "underline", "strikethrough",
	}
	if len(kinds) != len(want) {
		t.Fatalf("got %d calls %v, want %d", len(kinds), kinds, len(want))
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("call %d = %q, want %q (all: %v)", i, kinds[i], want[i], kinds)
		}
	}

	// The layer covers the whole block at the paint origin.
	if got := p.calls[0].bounds; got != gui.Rect(100, 200, 50, 40) {
		t.Errorf("layer bounds = %v", got)
	}

	// Background fills the run advance at full line height.
	if got := p.calls[1].bounds; got != gui.Rect(100, 200, 50, 20) {
		t.Errorf("background bounds = %v", got)
	}
	if p.calls[1].color != bg {
		t.Errorf("background color = %v", p.calls[1].color)
	}

	// Glyphs sit on the baseline: ascent + half leading below line top.
	baseline := 200 + 11.2 + (20-11.2-2.8)/2
	if got := p.calls[2].origin; !approx(got.Y, baseline) || !approx(got.X, 100) {
		t.Errorf("first glyph origin = %v, want {100 %.2f}", got, baseline)
	}
	if p.calls[2].color != red {
		t.Errorf("glyph color = %v, want run color", p.calls[2].color)
	}

	// Decorations inherit the run color and the font's suggested
	// thickness. fakePlatform: underline at -100/1000 em, thickness
	// 50/1000 em, at font size 14.
	ul := p.calls[7]
	if ul.uline.Color == nil || *ul.uline.Color != red {
		t.Errorf("underline color = %v, want inherited run color", ul.uline.Color)
	}
	if !approx(ul.uline.Thickness, 0.7) {
		t.Errorf("underline thickness = %v, want 0.7", ul.uline.Thickness)
	}
	if !approx(ul.origin.Y, baseline+1.4) {
		t.Errorf("underline y = %v, want %v", ul.origin.Y, baseline+1.4)
	}
	if ul.width != 50 {
		t.Errorf("underline width = %v, want 50", ul.width)
	}

	sl := p.calls[8]
	if !approx(sl.origin.Y, baseline-3.5) {
		t.Errorf("strikethrough y = %v, want %v", sl.origin.Y, baseline-3.5)
	}
}

func TestPaintExplicitDecorationColor(t *testing.T) {
	red := gui.RGB(1, 0, 0)
	green := gui.RGB(0, 1, 0)
	st := twoLineText(DecorationRun{
		Len:       11,
		Color:     red,
		Underline: &UnderlineStyle{Color: &green, Thickness: 2},
	})

	var p recordingPainter
	st.Paint(&p, gui.Point{})

	for _, c := range p.calls {
		if c.kind != "underline" {
			continue
		}
		if c.uline.Color == nil || *c.uline.Color != green {
			t.Errorf("underline color = %v, want explicit green", c.uline.Color)
		}
		if c.uline.Thickness != 2 {
			t.Errorf("underline thickness = %v, want explicit 2", c.uline.Thickness)
		}
	}
}

func TestPositionIndexRoundTrip(t *testing.T) {
	st := twoLineText()
	for i := 0; i <= len(st.text); i++ {
		pos, ok := st.PositionForIndex(i)
		if !ok {
			t.Fatalf("PositionForIndex(%d) not ok", i)
		}
		if got := st.ClosestIndexForPosition(pos); got != i {
			t.Errorf("round trip %d -> %v -> %d", i, pos, got)
		}
	}
}
