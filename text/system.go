package text

import (
	"fmt"
	"image"
	"slices"
	"sync"

	"github.com/gogpu/gui"
)

// SystemUIFont is the family name resolving to the platform UI font.
const SystemUIFont = ".SystemUIFont"

// TextSystem is the application-wide facade over a Platform backend. It
// resolves font descriptors to faces, answers metric queries in pixels,
// and caches glyph raster bounds. One TextSystem is shared by all
// windows; per-window shaping state lives in WindowTextSystem.
//
// All methods are safe for concurrent use.
type TextSystem struct {
	platform  Platform
	fallbacks []Font

	fontMu  sync.RWMutex
	fontIDs map[Font]fontIDEntry

	metricsMu sync.RWMutex
	metrics   map[FontID]FontMetrics

	boundsMu     sync.RWMutex
	rasterBounds map[RenderGlyphParams]image.Rectangle
}

type fontIDEntry struct {
	id  FontID
	err error
}

// defaultFallbacks are tried, in order, when a font descriptor and its
// own fallbacks all fail to resolve.
var defaultFallbacks = []Font{
	FontDef("Helvetica"),
	FontDef("Segoe UI"),
	FontDef("Ubuntu"),
	FontDef("Noto Sans"),
	FontDef("DejaVu Sans"),
	FontDef("Arial"),
}

// Option configures a TextSystem.
type Option func(*TextSystem)

// WithFallbackFonts replaces the built-in global fallback font stack.
func WithFallbackFonts(fonts ...Font) Option {
	return func(s *TextSystem) {
		s.fallbacks = slices.Clone(fonts)
	}
}

// NewTextSystem creates a TextSystem over the given Platform backend.
func NewTextSystem(platform Platform, opts ...Option) *TextSystem {
	s := &TextSystem{
		platform:     platform,
		fallbacks:    defaultFallbacks,
		fontIDs:      make(map[Font]fontIDEntry),
		metrics:      make(map[FontID]FontMetrics),
		rasterBounds: make(map[RenderGlyphParams]image.Rectangle),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Platform returns the backend this system wraps.
func (s *TextSystem) Platform() Platform { return s.platform }

// AddFont registers font data with the backend.
func (s *TextSystem) AddFont(data []byte) error {
	return s.platform.AddFont(data)
}

// FontID resolves a font descriptor to a face, trying the descriptor's
// own fallbacks and then the global fallback stack. The result, success
// or failure, is memoized per descriptor.
func (s *TextSystem) FontID(font Font) (FontID, error) {
	s.fontMu.RLock()
	entry, ok := s.fontIDs[font]
	s.fontMu.RUnlock()
	if ok {
		return entry.id, entry.err
	}

	id, err := s.resolveUncached(font)

	s.fontMu.Lock()
	if prior, dup := s.fontIDs[font]; dup {
		id, err = prior.id, prior.err
	} else {
		s.fontIDs[font] = fontIDEntry{id: id, err: err}
	}
	s.fontMu.Unlock()
	return id, err
}

func (s *TextSystem) resolveUncached(font Font) (FontID, error) {
	id, err := s.platform.FontID(font)
	if err == nil {
		return id, nil
	}
	candidates := make([]Font, 0, 8)
	for _, family := range font.Fallbacks.List() {
		fb := font
		fb.Family = family
		fb.Fallbacks = FontFallbacks{}
		candidates = append(candidates, fb)
	}
	for _, fb := range s.fallbacks {
		fb.Weight = font.Weight
		fb.Style = font.Style
		candidates = append(candidates, fb)
	}
	for _, fb := range candidates {
		if id, ferr := s.platform.FontID(fb); ferr == nil {
			return id, nil
		}
	}
	return FontID{}, fmt.Errorf("resolving %q: %w", font.Family, err)
}

// ResolveFont resolves a font descriptor, panicking if neither it nor
// any fallback can be resolved. A text system with no usable font at all
// cannot render anything, so this is treated as a fatal setup error.
func (s *TextSystem) ResolveFont(font Font) FontID {
	id, err := s.FontID(font)
	if err != nil {
		panic(fmt.Sprintf("text: no usable font for %v: %v", font, err))
	}
	return id
}

func (s *TextSystem) fontMetrics(id FontID) FontMetrics {
	s.metricsMu.RLock()
	m, ok := s.metrics[id]
	s.metricsMu.RUnlock()
	if ok {
		return m
	}
	m = s.platform.FontMetrics(id)
	s.metricsMu.Lock()
	if prior, dup := s.metrics[id]; dup {
		m = prior
	} else {
		s.metrics[id] = m
	}
	s.metricsMu.Unlock()
	return m
}

// Ascent returns the face's ascent in pixels at the given font size.
func (s *TextSystem) Ascent(id FontID, fontSize float64) float64 {
	m := s.fontMetrics(id)
	return m.ToPixels(m.Ascent, fontSize)
}

// Descent returns the face's descent in pixels at the given font size,
// as a positive distance below the baseline.
func (s *TextSystem) Descent(id FontID, fontSize float64) float64 {
	m := s.fontMetrics(id)
	return m.ToPixels(m.Descent, fontSize)
}

// CapHeight returns the face's cap height in pixels at the font size.
func (s *TextSystem) CapHeight(id FontID, fontSize float64) float64 {
	m := s.fontMetrics(id)
	return m.ToPixels(m.CapHeight, fontSize)
}

// XHeight returns the face's x-height in pixels at the font size.
func (s *TextSystem) XHeight(id FontID, fontSize float64) float64 {
	m := s.fontMetrics(id)
	return m.ToPixels(m.XHeight, fontSize)
}

// BoundingBox returns the face's maximal glyph bounding box in pixels at
// the font size.
func (s *TextSystem) BoundingBox(id FontID, fontSize float64) gui.Bounds {
	m := s.fontMetrics(id)
	bb := m.BoundingBox
	return gui.Bounds{
		Origin: gui.Point{
			X: m.ToPixels(bb.Origin.X, fontSize),
			Y: m.ToPixels(bb.Origin.Y, fontSize),
		},
		Size: gui.Size{
			Width:  m.ToPixels(bb.Size.Width, fontSize),
			Height: m.ToPixels(bb.Size.Height, fontSize),
		},
	}
}

// UnderlineMetrics returns the suggested underline position (relative to
// the baseline, negative below) and thickness in pixels.
func (s *TextSystem) UnderlineMetrics(id FontID, fontSize float64) (position, thickness float64) {
	m := s.fontMetrics(id)
	return m.ToPixels(m.UnderlinePosition, fontSize), m.ToPixels(m.UnderlineThickness, fontSize)
}

// StrikethroughMetrics returns the suggested strikethrough position
// (above the baseline, positive) and thickness in pixels.
func (s *TextSystem) StrikethroughMetrics(id FontID, fontSize float64) (position, thickness float64) {
	m := s.fontMetrics(id)
	return m.ToPixels(m.StrikethroughPosition, fontSize), m.ToPixels(m.StrikethroughThickness, fontSize)
}

// BaselineOffset returns the y distance from a line's top to its
// baseline when the font is centered vertically within lineHeight:
// the ascent plus half the leading.
func (s *TextSystem) BaselineOffset(id FontID, fontSize, lineHeight float64) float64 {
	m := s.fontMetrics(id)
	ascent := m.ToPixels(m.Ascent, fontSize)
	descent := m.ToPixels(m.Descent, fontSize)
	return ascent + (lineHeight-ascent-descent)/2
}

// UnitsPerEm returns the face's design units per em square.
func (s *TextSystem) UnitsPerEm(id FontID) uint32 {
	return s.fontMetrics(id).UnitsPerEm
}

// EmWidth returns the advance of 'm' in pixels at the font size, the
// conventional em measure for sizing text boxes.
func (s *TextSystem) EmWidth(id FontID, fontSize float64) float64 {
	return s.charAdvance(id, 'm', fontSize)
}

// ChWidth returns the advance of '0' in pixels at the font size, the CSS
// "ch" measure used for column widths.
func (s *TextSystem) ChWidth(id FontID, fontSize float64) float64 {
	return s.charAdvance(id, '0', fontSize)
}

func (s *TextSystem) charAdvance(id FontID, r rune, fontSize float64) float64 {
	glyph, ok := s.platform.GlyphForChar(id, r)
	if !ok {
		return 0
	}
	adv, err := s.Advance(id, glyph, fontSize)
	if err != nil {
		return 0
	}
	return adv
}

// TypographicBounds returns a glyph's bounding box in pixels at the font
// size.
func (s *TextSystem) TypographicBounds(id FontID, glyph GlyphID, fontSize float64) (gui.Bounds, error) {
	b, err := s.platform.TypographicBounds(id, glyph)
	if err != nil {
		return gui.Bounds{}, err
	}
	m := s.fontMetrics(id)
	return gui.Bounds{
		Origin: gui.Point{
			X: m.ToPixels(b.Origin.X, fontSize),
			Y: m.ToPixels(b.Origin.Y, fontSize),
		},
		Size: gui.Size{
			Width:  m.ToPixels(b.Size.Width, fontSize),
			Height: m.ToPixels(b.Size.Height, fontSize),
		},
	}, nil
}

// Advance returns a glyph's advance width in pixels at the font size.
func (s *TextSystem) Advance(id FontID, glyph GlyphID, fontSize float64) (float64, error) {
	adv, err := s.platform.Advance(id, glyph)
	if err != nil {
		return 0, err
	}
	m := s.fontMetrics(id)
	return m.ToPixels(adv, fontSize), nil
}

// GlyphForChar returns the glyph mapped to a character, or false.
func (s *TextSystem) GlyphForChar(id FontID, r rune) (GlyphID, bool) {
	return s.platform.GlyphForChar(id, r)
}

// GlyphRasterBounds returns the device-pixel rectangle a rendered glyph
// occupies. Results are cached per RenderGlyphParams; the key's float
// fields compare bit-exactly, so e.g. a scale factor of 2.0 and one of
// 2.0000001 cache separately.
func (s *TextSystem) GlyphRasterBounds(params RenderGlyphParams) (image.Rectangle, error) {
	s.boundsMu.RLock()
	b, ok := s.rasterBounds[params]
	s.boundsMu.RUnlock()
	if ok {
		return b, nil
	}
	b, err := s.platform.GlyphRasterBounds(params)
	if err != nil {
		return image.Rectangle{}, err
	}
	s.boundsMu.Lock()
	s.rasterBounds[params] = b
	s.boundsMu.Unlock()
	return b, nil
}

// RasterizeGlyph renders a glyph to an alpha bitmap covering the given
// bounds.
func (s *TextSystem) RasterizeGlyph(params RenderGlyphParams, bounds image.Rectangle) (image.Point, []byte, error) {
	return s.platform.RasterizeGlyph(params, bounds)
}

// AllFontNames returns the sorted, deduplicated union of the loaded
// family names, the global fallback families, and the system UI font
// alias.
func (s *TextSystem) AllFontNames() []string {
	names := s.platform.AllFontNames()
	for _, f := range s.fallbacks {
		names = append(names, f.Family)
	}
	names = append(names, SystemUIFont)
	slices.Sort(names)
	return slices.Compact(names)
}
