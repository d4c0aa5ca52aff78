package text

import (
	"errors"
	"image"
	"runtime"

	"github.com/gogpu/gui"
)

// Sentinel errors reported by Platform implementations.
var (
	// ErrFontNotFound is returned when no loaded face matches a Font
	// descriptor.
	ErrFontNotFound = errors.New("text: font not found")

	// ErrGlyphNotFound is returned when a font has no glyph for a
	// character. This is a recoverable, per-call failure.
	ErrGlyphNotFound = errors.New("text: glyph not found")

	// ErrEmptyFontData is returned when font data is empty.
	ErrEmptyFontData = errors.New("text: empty font data")
)

// Platform is the text backend consumed by TextSystem. It owns font
// parsing, face matching, metric extraction, and glyph rasterization.
//
// Implementations must be safe for concurrent use.
type Platform interface {
	// AddFont registers font data (TTF or OTF) with the backend.
	// Registering the same data twice is tolerated and must not
	// duplicate backend state.
	AddFont(data []byte) error

	// FontID resolves a font descriptor to a face identifier.
	// Returns ErrFontNotFound (possibly wrapped) when no face matches.
	FontID(font Font) (FontID, error)

	// FontMetrics returns the design-unit metrics for a resolved face.
	FontMetrics(id FontID) FontMetrics

	// GlyphForChar returns the glyph for a character, or false when the
	// face has no mapping for it.
	GlyphForChar(id FontID, r rune) (GlyphID, bool)

	// TypographicBounds returns a glyph's bounding box in font units.
	TypographicBounds(id FontID, glyph GlyphID) (gui.Bounds, error)

	// Advance returns a glyph's advance width in font units.
	Advance(id FontID, glyph GlyphID) (float64, error)

	// GlyphRasterBounds returns the device-pixel rectangle the rendered
	// glyph bitmap occupies, relative to the glyph origin.
	GlyphRasterBounds(params RenderGlyphParams) (image.Rectangle, error)

	// RasterizeGlyph renders the glyph into an 8-bit alpha bitmap of the
	// given bounds. It returns the bitmap size and its bytes in row-major
	// order.
	RasterizeGlyph(params RenderGlyphParams, bounds image.Rectangle) (image.Point, []byte, error)

	// AllFontNames returns the family names of every loaded face.
	AllFontNames() []string
}

// LayoutEngine shapes styled text into a Layout. It is the collaborator
// invoked by the LayoutCache on a cache miss.
//
// Shaping a valid string with resolved fonts does not fail; a broken
// engine is a fatal initialization error, not a per-call one.
type LayoutEngine interface {
	// Layout shapes text at fontSize, breaking lines at '\n' and, when
	// wrapWidth > 0, wrapping to that width at cluster boundaries.
	// A forceSpacing > 0 forces every cluster to that fixed advance.
	Layout(text string, fontSize, lineHeight float64, runs []FontRun, wrapWidth, forceSpacing float64) *Layout
}

// SubpixelVariantsX is the number of sub-pixel phase buckets on the x
// axis used when rasterizing glyphs.
const SubpixelVariantsX = 4

// SubpixelVariantsY is the number of sub-pixel phase buckets on the y
// axis. Windows and Linux rasterize on whole-pixel baselines, so vertical
// variants are disabled there.
var SubpixelVariantsY = func() uint8 {
	if runtime.GOOS == "windows" || runtime.GOOS == "linux" {
		return 1
	}
	return SubpixelVariantsX
}()

// SubpixelVariant is a quantized sub-pixel phase, bucketing the
// fractional part of a glyph's device position.
type SubpixelVariant struct {
	X, Y uint8
}

// RenderGlyphParams keys the raster-bounds cache. It is a comparable
// value; the float fields participate in equality with exact (bit-level)
// semantics, matching the map's comparison of non-NaN floats.
type RenderGlyphParams struct {
	Font        FontID
	Glyph       GlyphID
	FontSize    float64
	Subpixel    SubpixelVariant
	ScaleFactor float64
	IsEmoji     bool
}
