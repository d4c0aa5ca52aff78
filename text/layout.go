package text

import "math"

// FontRun is a contiguous span of text shaped with a single resolved
// font. It is the shaping-relevant projection of a TextRun: decorations
// are deliberately absent so that color changes never invalidate the
// layout cache. The weight is carried as the bit pattern of its float so
// the run hashes with exact equality.
type FontRun struct {
	// Len is the span length in utf-8 bytes.
	Len int

	// Font is the resolved face.
	Font FontID

	// WeightBits is the IEEE 754 bit pattern of the font weight.
	WeightBits uint64

	// Style is the font style of the span.
	Style FontStyle
}

// NewFontRun builds a FontRun from a resolved font and weight.
func NewFontRun(length int, font FontID, weight FontWeight, style FontStyle) FontRun {
	return FontRun{
		Len:        length,
		Font:       font,
		WeightBits: math.Float64bits(float64(weight)),
		Style:      style,
	}
}

// Weight returns the run's font weight.
func (r FontRun) Weight() FontWeight {
	return FontWeight(math.Float64frombits(r.WeightBits))
}

// Layout is the result of shaping a run-annotated string: lines of runs
// of glyph clusters. Layouts are produced by a LayoutEngine, shared
// through the LayoutCache, and must be treated as immutable.
type Layout struct {
	// FontSize the layout was shaped at, in pixels.
	FontSize float64

	// LineHeight is the vertical distance between line tops, in pixels.
	LineHeight float64

	// Width is the widest line's width.
	Width float64

	// Len is the length of the laid-out text in utf-8 bytes.
	Len int

	// Lines holds the laid-out lines, top to bottom.
	Lines []ShapedLine
}

// Height returns the total height: line count times line height.
func (l *Layout) Height() float64 {
	return float64(len(l.Lines)) * l.LineHeight
}

// ShapedLine is a single visual line: a slice of the source text and the
// shaped runs covering it, left to right.
type ShapedLine struct {
	// Start is the byte offset of the line within the source text.
	Start int

	// Len is the line's byte length, excluding any trailing newline.
	Len int

	// Width is the sum of the line's run advances.
	Width float64

	// Ascent and Descent are the maxima over the fonts used on the line,
	// in pixels.
	Ascent, Descent float64

	// Runs are the shaped runs on this line, in visual order.
	Runs []ShapedRun
}

// End returns the byte offset one past the line's content.
func (l *ShapedLine) End() int { return l.Start + l.Len }

// ShapedRun is a maximal piece of one source run laid out on one line.
type ShapedRun struct {
	// Font is the resolved face the run was shaped with.
	Font FontID

	// Run is the index of the source FontRun (and of the matching
	// DecorationRun on the ShapedText).
	Run int

	// Offset is the x position of the run's start within its line.
	Offset float64

	// Advance is the total advance width of the run.
	Advance float64

	// Glyphs are the run's positioned glyphs. Positions are relative to
	// the run origin on the baseline.
	Glyphs []ShapedGlyph

	// Clusters are the run's glyph clusters in text order, each with its
	// source byte range and combined advance.
	Clusters []Cluster
}

// Cluster is one or more characters rendered as a single visual unit
// with one combined advance width.
type Cluster struct {
	// Start and End delimit the cluster's byte range in the source text.
	Start, End int

	// Advance is the cluster's combined advance width.
	Advance float64
}

// ShapedGlyph is a single positioned glyph, ready to paint.
type ShapedGlyph struct {
	// ID is the glyph within the run's font.
	ID GlyphID

	// X, Y position the glyph relative to the run origin on the
	// baseline.
	X, Y float64

	// Advance is the glyph's advance width.
	Advance float64

	// Index is the byte offset of the glyph's cluster in the source
	// text.
	Index int

	// IsEmoji marks glyphs that rasterize as color bitmaps.
	IsEmoji bool
}
