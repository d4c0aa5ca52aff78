package text

import "github.com/gogpu/gui"

// TextRun styles a contiguous span of text for shaping. An ordered
// sequence of TextRuns passed to ShapeText should exactly cover the
// text's byte length; a shortfall is tolerated (the remainder is shaped
// with a default run) but logged as a warning.
type TextRun struct {
	// Len is the length of the run in utf-8 bytes.
	Len int

	// Font is the font descriptor for this run, resolved at shape time.
	Font Font

	// Color is the foreground color.
	Color gui.RGBA

	// Background, if non-nil, fills the run's advance at line height.
	Background *gui.RGBA

	// Underline, if non-nil, underlines the run. A nil style color
	// inherits Color.
	Underline *UnderlineStyle

	// Strikethrough, if non-nil, strikes the run through. A nil style
	// color inherits Color.
	Strikethrough *StrikethroughStyle
}

// UnderlineStyle describes an underline decoration.
type UnderlineStyle struct {
	// Thickness of the line in pixels. Zero uses the font's suggested
	// underline thickness.
	Thickness float64

	// Color of the line. Nil inherits the run's foreground color.
	Color *gui.RGBA

	// Wavy draws a squiggly underline instead of a straight line.
	Wavy bool
}

// StrikethroughStyle describes a strikethrough decoration.
type StrikethroughStyle struct {
	// Thickness of the line in pixels. Zero uses the font's suggested
	// strikethrough thickness.
	Thickness float64

	// Color of the line. Nil inherits the run's foreground color.
	Color *gui.RGBA
}

// DecorationRun carries the paint-only styling of a source run. It is
// kept outside the layout cache key: changing colors or decorations does
// not require re-shaping.
type DecorationRun struct {
	Len           int
	Color         gui.RGBA
	Background    *gui.RGBA
	Underline     *UnderlineStyle
	Strikethrough *StrikethroughStyle
}

// TextAlign controls how shaped lines are positioned within a container.
type TextAlign uint8

const (
	// AlignLeft aligns lines to the left edge.
	AlignLeft TextAlign = iota
	// AlignCenter centers lines within the container width.
	AlignCenter
	// AlignRight aligns lines to the right edge.
	AlignRight
)

func (a TextAlign) String() string {
	switch a {
	case AlignLeft:
		return "Left"
	case AlignCenter:
		return "Center"
	case AlignRight:
		return "Right"
	default:
		return "Unknown"
	}
}
