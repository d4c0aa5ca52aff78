package text

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gogpu/gui"
)

// FontID is an opaque identifier for a resolved font face within the
// active Platform backend. The Handle identifies the loaded font data and
// Index the face within it (for collections). FontID is a value type:
// equality compares both fields.
type FontID struct {
	Handle uint64
	Index  uint32
}

// GlyphID is a unique identifier for a glyph within a font.
type GlyphID uint32

// Font describes a font to look up: family, features, fallbacks, weight,
// and style. It is a structural lookup key, not an identity — resolve it
// to a FontID through TextSystem.ResolveFont.
type Font struct {
	// Family is the font family name. The special name ".SystemUIFont"
	// identifies the platform UI font.
	Family string

	// Features holds the OpenType feature settings for this font.
	Features FontFeatures

	// Fallbacks lists family names tried, in order, when Family cannot
	// be resolved.
	Fallbacks FontFallbacks

	// Weight is the font weight, 100 to 900.
	Weight FontWeight

	// Style selects the normal, italic, or oblique face.
	Style FontStyle
}

// FontDef returns a Font for the given family with default weight,
// style, and features.
func FontDef(family string) Font {
	return Font{Family: family, Weight: FontWeightNormal}
}

// Bold returns the font with its weight set to bold.
func (f Font) Bold() Font {
	f.Weight = FontWeightBold
	return f
}

// Italic returns the font with its style set to italic.
func (f Font) Italic() Font {
	f.Style = FontStyleItalic
	return f
}

func (f Font) String() string {
	return fmt.Sprintf("%s %v %v", f.Family, f.Weight, f.Style)
}

// FontWeight is the degree of blackness or stroke thickness of a font.
// Values range from 100 (thin) to 900 (black), with 400 as normal.
// Arithmetic on the underlying float is well defined; Bits exposes the
// IEEE 754 pattern so weights can be hashed with exact equality.
type FontWeight float64

const (
	// FontWeightThin is the thinnest value (100).
	FontWeightThin FontWeight = 100
	// FontWeightExtraLight is extra light (200).
	FontWeightExtraLight FontWeight = 200
	// FontWeightLight is light (300).
	FontWeightLight FontWeight = 300
	// FontWeightNormal is the regular weight (400).
	FontWeightNormal FontWeight = 400
	// FontWeightMedium is medium (500).
	FontWeightMedium FontWeight = 500
	// FontWeightSemibold is semibold (600).
	FontWeightSemibold FontWeight = 600
	// FontWeightBold is bold (700).
	FontWeightBold FontWeight = 700
	// FontWeightExtraBold is extra bold (800).
	FontWeightExtraBold FontWeight = 800
	// FontWeightBlack is the thickest value (900).
	FontWeightBlack FontWeight = 900
)

// AllFontWeights lists the standard weights in ascending order.
var AllFontWeights = [9]FontWeight{
	FontWeightThin,
	FontWeightExtraLight,
	FontWeightLight,
	FontWeightNormal,
	FontWeightMedium,
	FontWeightSemibold,
	FontWeightBold,
	FontWeightExtraBold,
	FontWeightBlack,
}

func (w FontWeight) String() string {
	return fmt.Sprintf("%g", float64(w))
}

// FontStyle selects between upright, italic, and oblique faces.
type FontStyle uint8

const (
	// FontStyleNormal is a face that is neither italic nor obliqued.
	FontStyleNormal FontStyle = iota
	// FontStyleItalic is a form that is generally cursive in nature.
	FontStyleItalic
	// FontStyleOblique is a typically-sloped version of the regular face.
	FontStyleOblique
)

func (s FontStyle) String() string {
	switch s {
	case FontStyleNormal:
		return "Normal"
	case FontStyleItalic:
		return "Italic"
	case FontStyleOblique:
		return "Oblique"
	default:
		return "Unknown"
	}
}

// FontFeature is a single OpenType feature setting, e.g. {"liga", 1}.
type FontFeature struct {
	Tag   string
	Value uint32
}

// FontFeatures is a canonicalized set of OpenType feature settings.
// It is a comparable value so that Font can be used as a map key: the
// settings are stored sorted by tag in a single string.
type FontFeatures struct {
	canon string
}

// Features builds a FontFeatures set. Settings are sorted by tag; a
// repeated tag keeps the last value.
func Features(settings ...FontFeature) FontFeatures {
	if len(settings) == 0 {
		return FontFeatures{}
	}
	byTag := make(map[string]uint32, len(settings))
	tags := make([]string, 0, len(settings))
	for _, s := range settings {
		if _, seen := byTag[s.Tag]; !seen {
			tags = append(tags, s.Tag)
		}
		byTag[s.Tag] = s.Value
	}
	slices.Sort(tags)
	var b strings.Builder
	for i, tag := range tags {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%s=%d", tag, byTag[tag])
	}
	return FontFeatures{canon: b.String()}
}

// IsEmpty reports whether no feature settings are present.
func (f FontFeatures) IsEmpty() bool { return f.canon == "" }

func (f FontFeatures) String() string { return f.canon }

// List returns the feature settings in canonical (tag-sorted) order.
func (f FontFeatures) List() []FontFeature {
	if f.canon == "" {
		return nil
	}
	parts := strings.Split(f.canon, " ")
	out := make([]FontFeature, 0, len(parts))
	for _, p := range parts {
		tag, val, ok := strings.Cut(p, "=")
		if !ok {
			continue
		}
		var v uint32
		fmt.Sscanf(val, "%d", &v)
		out = append(out, FontFeature{Tag: tag, Value: v})
	}
	return out
}

// FontFallbacks is an ordered list of fallback family names, stored as a
// comparable value so that Font stays usable as a map key.
type FontFallbacks struct {
	canon string
}

// Fallbacks builds a FontFallbacks list from family names in priority
// order.
func Fallbacks(families ...string) FontFallbacks {
	return FontFallbacks{canon: strings.Join(families, "\x1f")}
}

// IsEmpty reports whether the fallback list is empty.
func (f FontFallbacks) IsEmpty() bool { return f.canon == "" }

// List returns the fallback family names in priority order.
func (f FontFallbacks) List() []string {
	if f.canon == "" {
		return nil
	}
	return strings.Split(f.canon, "\x1f")
}

// FontMetrics holds the measurements of a typeface in font-design units.
// Use ToPixels (or the TextSystem query methods) to convert a value to
// device-independent pixels at a font size.
type FontMetrics struct {
	// UnitsPerEm is the number of font units per em square.
	UnitsPerEm uint32

	// Ascent is the distance from the baseline to the top of the tallest
	// glyph (positive, above the baseline).
	Ascent float64

	// Descent is the distance from the baseline to the bottom of the
	// deepest glyph (positive, below the baseline).
	Descent float64

	// LineGap is the recommended additional space between lines.
	LineGap float64

	// UnderlinePosition is the suggested position of the underline
	// relative to the baseline (negative values are below it).
	UnderlinePosition float64

	// UnderlineThickness is the suggested underline thickness.
	UnderlineThickness float64

	// StrikethroughPosition is the suggested position of the
	// strikethrough relative to the baseline (positive, above it).
	StrikethroughPosition float64

	// StrikethroughThickness is the suggested strikethrough thickness.
	StrikethroughThickness float64

	// CapHeight is the height of a capital letter above the baseline.
	CapHeight float64

	// XHeight is the height of a lowercase x.
	XHeight float64

	// BoundingBox is the union of all glyph bounding boxes, from the
	// font's head table.
	BoundingBox gui.Bounds
}

// ToPixels converts a value in font-design units to pixels at the given
// font size.
func (m FontMetrics) ToPixels(value, fontSize float64) float64 {
	if m.UnitsPerEm == 0 {
		return 0
	}
	return value / float64(m.UnitsPerEm) * fontSize
}
