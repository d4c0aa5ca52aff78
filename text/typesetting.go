package text

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/go-text/typesetting/di"
	gtfont "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/unicode/bidi"

	"github.com/gogpu/gui"

	xfont "golang.org/x/image/font"
)

// TypesettingSystem is the pure-Go text backend: HarfBuzz-level shaping
// through go-text/typesetting, metrics and outlines through x/image
// sfnt. It implements both Platform and LayoutEngine.
//
// TypesettingSystem is safe for concurrent use. The parsed go-text
// *font.Font is read-only and shared; a lightweight font.Face is created
// per shaping call, and HarfbuzzShaper instances (which carry mutable
// buffers) are pooled.
type TypesettingSystem struct {
	mu     sync.RWMutex
	fonts  []*loadedFont
	byHash map[uint64]uint64

	shapers sync.Pool
}

type loadedFont struct {
	data      []byte
	shapeFont *gtfont.Font
	ot        *sfnt.Font
	family    string
	subfamily string
	weight    FontWeight
	style     FontStyle
	upem      uint32
	metrics   FontMetrics

	// sfnt.Buffer is not safe for concurrent use.
	otMu  sync.Mutex
	otBuf sfnt.Buffer
}

// NewTypesettingSystem creates an empty backend. Register fonts with
// AddFont before resolving or shaping.
func NewTypesettingSystem() *TypesettingSystem {
	return &TypesettingSystem{
		byHash: make(map[uint64]uint64),
		shapers: sync.Pool{
			New: func() any { return &shaping.HarfbuzzShaper{} },
		},
	}
}

// AddFont implements Platform. Registering byte-identical data again is
// a no-op.
func (ts *TypesettingSystem) AddFont(data []byte) error {
	if len(data) == 0 {
		return ErrEmptyFontData
	}
	hash := fnvBytes(data)

	ts.mu.RLock()
	_, dup := ts.byHash[hash]
	ts.mu.RUnlock()
	if dup {
		gui.Logger().Debug("font data already registered", "hash", hash)
		return nil
	}

	ot, err := sfnt.Parse(data)
	if err != nil {
		return fmt.Errorf("text: parsing font: %w", err)
	}
	gtFace, err := gtfont.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("text: parsing font for shaping: %w", err)
	}

	lf := &loadedFont{
		data:      data,
		shapeFont: gtFace.Font,
		ot:        ot,
		upem:      uint32(ot.UnitsPerEm()),
	}
	var buf sfnt.Buffer
	if name, err := ot.Name(&buf, sfnt.NameIDFamily); err == nil {
		lf.family = name
	}
	if name, err := ot.Name(&buf, sfnt.NameIDSubfamily); err == nil {
		lf.subfamily = name
	}
	lf.weight, lf.style = classifySubfamily(lf.subfamily)
	lf.metrics = extractMetrics(ot, &buf, lf.upem)

	ts.mu.Lock()
	defer ts.mu.Unlock()
	if _, dup := ts.byHash[hash]; dup {
		return nil
	}
	ts.fonts = append(ts.fonts, lf)
	ts.byHash[hash] = uint64(len(ts.fonts))
	gui.Logger().Debug("registered font",
		"family", lf.family, "subfamily", lf.subfamily, "upem", lf.upem)
	return nil
}

// extractMetrics reads design metrics at ppem equal to the em size, so
// the fixed-point results are font units. sfnt does not expose the post
// and OS/2 underline tables, so decoration metrics use the conventional
// em fractions.
func extractMetrics(ot *sfnt.Font, buf *sfnt.Buffer, upem uint32) FontMetrics {
	ppem := fixed.Int26_6(int32(upem) << 6)
	m := FontMetrics{UnitsPerEm: upem}

	if fm, err := ot.Metrics(buf, ppem, xfont.HintingNone); err == nil {
		m.Ascent = fromFixed(fm.Ascent)
		m.Descent = fromFixed(fm.Descent)
		m.LineGap = fromFixed(fm.Height - fm.Ascent - fm.Descent)
		m.CapHeight = fromFixed(fm.CapHeight)
		m.XHeight = fromFixed(fm.XHeight)
	}
	if b, err := ot.Bounds(buf, ppem, xfont.HintingNone); err == nil {
		m.BoundingBox = gui.Bounds{
			Origin: gui.Point{X: fromFixed(b.Min.X), Y: fromFixed(b.Min.Y)},
			Size: gui.Size{
				Width:  fromFixed(b.Max.X - b.Min.X),
				Height: fromFixed(b.Max.Y - b.Min.Y),
			},
		}
	}
	em := float64(upem)
	m.UnderlinePosition = -0.1 * em
	m.UnderlineThickness = 0.05 * em
	if m.XHeight > 0 {
		m.StrikethroughPosition = m.XHeight / 2
	} else {
		m.StrikethroughPosition = 0.25 * em
	}
	m.StrikethroughThickness = 0.05 * em
	return m
}

func classifySubfamily(sub string) (FontWeight, FontStyle) {
	s := strings.ToLower(sub)
	weight := FontWeightNormal
	switch {
	case strings.Contains(s, "thin"):
		weight = FontWeightThin
	case strings.Contains(s, "extralight"), strings.Contains(s, "extra light"),
		strings.Contains(s, "ultralight"):
		weight = FontWeightExtraLight
	case strings.Contains(s, "semibold"), strings.Contains(s, "demibold"),
		strings.Contains(s, "demi bold"):
		weight = FontWeightSemibold
	case strings.Contains(s, "extrabold"), strings.Contains(s, "extra bold"),
		strings.Contains(s, "ultrabold"):
		weight = FontWeightExtraBold
	case strings.Contains(s, "light"):
		weight = FontWeightLight
	case strings.Contains(s, "medium"):
		weight = FontWeightMedium
	case strings.Contains(s, "black"), strings.Contains(s, "heavy"):
		weight = FontWeightBlack
	case strings.Contains(s, "bold"):
		weight = FontWeightBold
	}
	style := FontStyleNormal
	switch {
	case strings.Contains(s, "italic"):
		style = FontStyleItalic
	case strings.Contains(s, "oblique"):
		style = FontStyleOblique
	}
	return weight, style
}

// FontID implements Platform: match by family name (case-insensitive),
// then pick the face with the closest weight and matching style. The
// system UI alias resolves to the first registered font.
func (ts *TypesettingSystem) FontID(font Font) (FontID, error) {
	ts.mu.RLock()
	defer ts.mu.RUnlock()

	if len(ts.fonts) == 0 {
		return FontID{}, fmt.Errorf("%w: no fonts registered", ErrFontNotFound)
	}
	if font.Family == SystemUIFont {
		return FontID{Handle: 1}, nil
	}

	best := -1
	bestScore := -1 << 30
	for i, lf := range ts.fonts {
		if !strings.EqualFold(lf.family, font.Family) {
			continue
		}
		score := 0
		if lf.style == font.Style {
			score += 10000
		}
		dw := float64(lf.weight) - float64(font.Weight)
		if dw < 0 {
			dw = -dw
		}
		score -= int(dw)
		if score > bestScore {
			bestScore = score
			best = i
		}
	}
	if best < 0 {
		return FontID{}, fmt.Errorf("%w: %q", ErrFontNotFound, font.Family)
	}
	return FontID{Handle: uint64(best + 1)}, nil
}

func (ts *TypesettingSystem) lookup(id FontID) (*loadedFont, bool) {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	ix := int(id.Handle) - 1
	if ix < 0 || ix >= len(ts.fonts) {
		return nil, false
	}
	return ts.fonts[ix], true
}

// FontMetrics implements Platform.
func (ts *TypesettingSystem) FontMetrics(id FontID) FontMetrics {
	lf, ok := ts.lookup(id)
	if !ok {
		return FontMetrics{}
	}
	return lf.metrics
}

// GlyphForChar implements Platform.
func (ts *TypesettingSystem) GlyphForChar(id FontID, r rune) (GlyphID, bool) {
	lf, ok := ts.lookup(id)
	if !ok {
		return 0, false
	}
	lf.otMu.Lock()
	gid, err := lf.ot.GlyphIndex(&lf.otBuf, r)
	lf.otMu.Unlock()
	if err != nil || gid == 0 {
		return 0, false
	}
	return GlyphID(gid), true
}

// TypographicBounds implements Platform. The bounds are in font units
// with y growing downward, so the top of a glyph above the baseline has
// a negative origin y.
func (ts *TypesettingSystem) TypographicBounds(id FontID, glyph GlyphID) (gui.Bounds, error) {
	lf, ok := ts.lookup(id)
	if !ok {
		return gui.Bounds{}, fmt.Errorf("%w: handle %d", ErrFontNotFound, id.Handle)
	}
	ppem := fixed.Int26_6(int32(lf.upem) << 6)
	lf.otMu.Lock()
	b, _, err := lf.ot.GlyphBounds(&lf.otBuf, sfnt.GlyphIndex(glyph), ppem, xfont.HintingNone)
	lf.otMu.Unlock()
	if err != nil {
		return gui.Bounds{}, fmt.Errorf("%w: glyph %d: %v", ErrGlyphNotFound, glyph, err)
	}
	return gui.Bounds{
		Origin: gui.Point{X: fromFixed(b.Min.X), Y: fromFixed(b.Min.Y)},
		Size: gui.Size{
			Width:  fromFixed(b.Max.X - b.Min.X),
			Height: fromFixed(b.Max.Y - b.Min.Y),
		},
	}, nil
}

// Advance implements Platform, returning the advance in font units.
func (ts *TypesettingSystem) Advance(id FontID, glyph GlyphID) (float64, error) {
	lf, ok := ts.lookup(id)
	if !ok {
		return 0, fmt.Errorf("%w: handle %d", ErrFontNotFound, id.Handle)
	}
	ppem := fixed.Int26_6(int32(lf.upem) << 6)
	lf.otMu.Lock()
	adv, err := lf.ot.GlyphAdvance(&lf.otBuf, sfnt.GlyphIndex(glyph), ppem, xfont.HintingNone)
	lf.otMu.Unlock()
	if err != nil {
		return 0, fmt.Errorf("%w: glyph %d: %v", ErrGlyphNotFound, glyph, err)
	}
	return fromFixed(adv), nil
}

// AllFontNames implements Platform.
func (ts *TypesettingSystem) AllFontNames() []string {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	names := make([]string, 0, len(ts.fonts))
	for _, lf := range ts.fonts {
		names = append(names, lf.family)
	}
	return names
}

// shapedCluster is the wrapping currency: one indivisible visual unit
// with its source byte range, combined advance, and glyphs positioned
// relative to the cluster origin.
type shapedCluster struct {
	start, end int
	advance    float64
	font       FontID
	run        int
	glyphs     []ShapedGlyph
	breakAfter bool
	isEmoji    bool
}

// Layout implements LayoutEngine. Text is split into paragraphs at
// newlines, each paragraph is cut at font-run and bidi boundaries,
// segments are shaped through HarfBuzz, and the resulting clusters are
// greedily wrapped at breakable boundaries when wrapWidth > 0.
func (ts *TypesettingSystem) Layout(text string, fontSize, lineHeight float64, runs []FontRun, wrapWidth, forceSpacing float64) *Layout {
	layout := &Layout{
		FontSize:   fontSize,
		LineHeight: lineHeight,
		Len:        len(text),
	}

	// Paragraph boundaries at '\n'. The trailing newline byte belongs to
	// no line.
	pStart := 0
	for pStart <= len(text) {
		pEnd := strings.IndexByte(text[pStart:], '\n')
		last := pEnd < 0
		if last {
			pEnd = len(text)
		} else {
			pEnd += pStart
		}

		clusters := ts.shapeParagraph(text, pStart, pEnd, fontSize, runs)
		if forceSpacing > 0 {
			for i := range clusters {
				clusters[i].advance = forceSpacing
			}
		}
		ts.wrapParagraph(layout, text, pStart, pEnd, clusters, fontSize, wrapWidth, runs)

		if last {
			break
		}
		pStart = pEnd + 1
	}

	for _, line := range layout.Lines {
		if line.Width > layout.Width {
			layout.Width = line.Width
		}
	}
	return layout
}

// shapeParagraph cuts [pStart, pEnd) at font-run boundaries and, within
// each run span, at bidi direction boundaries, and shapes each piece.
func (ts *TypesettingSystem) shapeParagraph(text string, pStart, pEnd int, fontSize float64, runs []FontRun) []shapedCluster {
	if pStart >= pEnd {
		return nil
	}
	var clusters []shapedCluster

	runStart := 0
	for ri, run := range runs {
		runEnd := runStart + run.Len
		segStart := max(runStart, pStart)
		segEnd := min(runEnd, pEnd)
		if segStart < segEnd {
			clusters = append(clusters,
				ts.shapeRunSpan(text, segStart, segEnd, fontSize, run.Font, ri)...)
		}
		runStart = runEnd
		if runStart >= pEnd {
			break
		}
	}
	return clusters
}

// bidiSegment is one run of uniform direction within a span, as byte
// offsets into the span.
type bidiSegment struct {
	start, end int
	dir        di.Direction
}

// bidiSegments splits a span into direction-uniform segments, sorted
// into text order. Undecidable input degrades to one LTR segment.
func bidiSegments(span string) []bidiSegment {
	whole := []bidiSegment{{start: 0, end: len(span), dir: di.DirectionLTR}}

	var p bidi.Paragraph
	if _, err := p.SetString(span); err != nil {
		return whole
	}
	ordering, err := p.Order()
	if err != nil || ordering.NumRuns() == 0 {
		return whole
	}

	// Run.Pos returns inclusive rune indices into the span.
	byteAt := runeByteOffsets(span)
	segs := make([]bidiSegment, 0, ordering.NumRuns())
	for i := 0; i < ordering.NumRuns(); i++ {
		r := ordering.Run(i)
		sr, er := r.Pos()
		dir := di.DirectionLTR
		if r.Direction() == bidi.RightToLeft {
			dir = di.DirectionRTL
		}
		segs = append(segs, bidiSegment{start: byteAt[sr], end: byteAt[er+1], dir: dir})
	}
	sort.Slice(segs, func(a, b int) bool { return segs[a].start < segs[b].start })
	return segs
}

// shapeRunSpan shapes [start, end) with one font, splitting at bidi
// direction changes first.
func (ts *TypesettingSystem) shapeRunSpan(text string, start, end int, fontSize float64, font FontID, runIx int) []shapedCluster {
	var clusters []shapedCluster
	for _, seg := range bidiSegments(text[start:end]) {
		clusters = append(clusters,
			ts.shapeSegment(text, start+seg.start, start+seg.end, fontSize, font, runIx, seg.dir)...)
	}
	sort.SliceStable(clusters, func(a, b int) bool {
		return clusters[a].start < clusters[b].start
	})
	return clusters
}

func runeByteOffsets(s string) []int {
	offsets := make([]int, 0, len(s)+1)
	for i := range s {
		offsets = append(offsets, i)
	}
	offsets = append(offsets, len(s))
	return offsets
}

// shapeSegment shapes one uniform segment through a pooled HarfBuzz
// shaper and groups the output glyphs into clusters in text order.
func (ts *TypesettingSystem) shapeSegment(text string, start, end int, fontSize float64, font FontID, runIx int, dir di.Direction) []shapedCluster {
	lf, ok := ts.lookup(font)
	if !ok {
		return nil
	}
	seg := text[start:end]
	runes := []rune(seg)
	if len(runes) == 0 {
		return nil
	}
	byteAt := runeByteOffsets(seg)

	input := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: dir,
		Face:      gtfont.NewFace(lf.shapeFont),
		Size:      toFixed(fontSize),
		Script:    segmentScript(runes),
		Language:  language.NewLanguage("en"),
	}
	shaper := ts.shapers.Get().(*shaping.HarfbuzzShaper)
	output := shaper.Shape(input)
	ts.shapers.Put(shaper)

	// Group glyphs by source cluster. Output order is visual, so RTL
	// segments arrive with descending text indices; clusters are sorted
	// back to text order afterwards.
	byStart := make(map[int]*shapedCluster)
	order := make([]int, 0, len(output.Glyphs))
	for _, g := range output.Glyphs {
		runeIx := g.TextIndex()
		if runeIx < 0 || runeIx >= len(runes) {
			continue
		}
		clStart := start + byteAt[runeIx]
		cl, seen := byStart[clStart]
		if !seen {
			cl = &shapedCluster{start: clStart, font: font, run: runIx}
			byStart[clStart] = cl
			order = append(order, clStart)
		}
		cl.glyphs = append(cl.glyphs, ShapedGlyph{
			ID:      GlyphID(g.GlyphID),
			X:       cl.advance + fromFixed(g.XOffset),
			Y:       fromFixed(g.YOffset),
			Advance: fromFixed(g.Advance),
			Index:   clStart,
		})
		cl.advance += fromFixed(g.Advance)
	}

	sort.Ints(order)
	clusters := make([]shapedCluster, 0, len(order))
	for i, clStart := range order {
		cl := byStart[clStart]
		if i+1 < len(order) {
			cl.end = order[i+1]
		} else {
			cl.end = end
		}
		clRunes := []rune(text[cl.start:cl.end])
		cl.isEmoji = clusterIsEmoji(clRunes)
		if cl.isEmoji {
			for gi := range cl.glyphs {
				cl.glyphs[gi].IsEmoji = true
			}
		}
		if n := len(clRunes); n > 0 {
			cl.breakAfter = breakableAfter(clRunes[n-1])
		}
		clusters = append(clusters, *cl)
	}
	return clusters
}

func segmentScript(runes []rune) language.Script {
	for _, r := range runes {
		if r == ' ' || r == '\t' {
			continue
		}
		return language.LookupScript(r)
	}
	return language.Latin
}

// breakableAfter reports whether a line may break after a cluster ending
// in r: after whitespace, hyphens, and CJK characters (which break
// anywhere).
func breakableAfter(r rune) bool {
	if r == ' ' || r == '\t' || r == '-' {
		return true
	}
	return unicode.Is(unicode.Han, r) ||
		unicode.Is(unicode.Hiragana, r) ||
		unicode.Is(unicode.Katakana, r) ||
		unicode.Is(unicode.Hangul, r)
}

// wrapParagraph greedily packs clusters into lines. A line breaks at the
// last breakable boundary before overflow; a single unbreakable word
// wider than the wrap width falls back to a character break, and a line
// never breaks before its first cluster.
func (ts *TypesettingSystem) wrapParagraph(layout *Layout, text string, pStart, pEnd int, clusters []shapedCluster, fontSize, wrapWidth float64, runs []FontRun) {
	if len(clusters) == 0 {
		line := ShapedLine{Start: pStart, Len: pEnd - pStart}
		line.Ascent, line.Descent = ts.lineFontExtent(fontForOffset(runs, pStart), fontSize)
		layout.Lines = append(layout.Lines, line)
		return
	}

	lineStart := 0
	width := 0.0
	lastBreak := -1
	for i := 0; i < len(clusters); i++ {
		cl := &clusters[i]
		if wrapWidth > 0 && i > lineStart && width+cl.advance > wrapWidth {
			breakAt := i
			if lastBreak >= lineStart {
				breakAt = lastBreak + 1
			}
			if breakAt > lineStart {
				layout.Lines = append(layout.Lines,
					ts.buildLine(clusters[lineStart:breakAt], fontSize))
				lineStart = breakAt
				width = 0
				lastBreak = -1
				for j := lineStart; j <= i; j++ {
					width += clusters[j].advance
					if clusters[j].breakAfter {
						lastBreak = j
					}
				}
				continue
			}
		}
		width += cl.advance
		if cl.breakAfter {
			lastBreak = i
		}
	}
	layout.Lines = append(layout.Lines, ts.buildLine(clusters[lineStart:], fontSize))
}

// buildLine groups consecutive same-run clusters into ShapedRuns and
// recomputes offsets from the line origin.
func (ts *TypesettingSystem) buildLine(clusters []shapedCluster, fontSize float64) ShapedLine {
	line := ShapedLine{
		Start: clusters[0].start,
		Len:   clusters[len(clusters)-1].end - clusters[0].start,
	}

	x := 0.0
	var cur *ShapedRun
	for i := range clusters {
		cl := &clusters[i]
		if cur == nil || cur.Font != cl.font || cur.Run != cl.run {
			line.Runs = append(line.Runs, ShapedRun{
				Font:   cl.font,
				Run:    cl.run,
				Offset: x,
			})
			cur = &line.Runs[len(line.Runs)-1]
		}
		runX := x - cur.Offset
		for _, g := range cl.glyphs {
			g.X += runX
			cur.Glyphs = append(cur.Glyphs, g)
		}
		cur.Clusters = append(cur.Clusters, Cluster{
			Start:   cl.start,
			End:     cl.end,
			Advance: cl.advance,
		})
		cur.Advance += cl.advance
		x += cl.advance

		ascent, descent := ts.lineFontExtent(cl.font, fontSize)
		if ascent > line.Ascent {
			line.Ascent = ascent
		}
		if descent > line.Descent {
			line.Descent = descent
		}
	}
	line.Width = x
	return line
}

func (ts *TypesettingSystem) lineFontExtent(id FontID, fontSize float64) (ascent, descent float64) {
	lf, ok := ts.lookup(id)
	if !ok {
		return 0, 0
	}
	m := lf.metrics
	return m.ToPixels(m.Ascent, fontSize), m.ToPixels(m.Descent, fontSize)
}

// fontForOffset returns the font of the run covering a byte offset, or
// the first run's font.
func fontForOffset(runs []FontRun, offset int) FontID {
	pos := 0
	for _, r := range runs {
		if offset < pos+r.Len {
			return r.Font
		}
		pos += r.Len
	}
	if len(runs) > 0 {
		return runs[len(runs)-1].Font
	}
	return FontID{}
}

func toFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(v * 64)
}

func fromFixed(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

func fnvBytes(data []byte) uint64 {
	h := uint64(fnvOffset64)
	for _, b := range data {
		h ^= uint64(b)
		h *= fnvPrime64
	}
	return h
}
