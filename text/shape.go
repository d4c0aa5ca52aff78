package text

import (
	"github.com/gogpu/gui"
)

// WindowTextSystem couples the shared TextSystem with one window's
// per-frame shaping state: the double-buffered LayoutCache. It embeds
// TextSystem, so all facade queries are available on it directly.
type WindowTextSystem struct {
	*TextSystem
	cache *LayoutCache
}

// NewWindowTextSystem creates a per-window text system shaping through
// the given engine.
func NewWindowTextSystem(sys *TextSystem, engine LayoutEngine) *WindowTextSystem {
	return &WindowTextSystem{
		TextSystem: sys,
		cache:      NewLayoutCache(engine),
	}
}

// Cache exposes the window's layout cache for frame bookkeeping
// (LayoutIndex, ReuseLayouts, TruncateLayouts).
func (w *WindowTextSystem) Cache() *LayoutCache { return w.cache }

// FinishFrame rotates the layout cache at the end of a render frame.
func (w *WindowTextSystem) FinishFrame() {
	w.cache.FinishFrame()
}

// LayoutIndex checkpoints the current frame's layout sequence. See
// LayoutCache.LayoutIndex.
func (w *WindowTextSystem) LayoutIndex() LayoutIndex {
	return w.cache.LayoutIndex()
}

// ReuseLayouts replays a window of last frame's layouts. See
// LayoutCache.ReuseLayouts.
func (w *WindowTextSystem) ReuseLayouts(from, to LayoutIndex) {
	w.cache.ReuseLayouts(from, to)
}

// TruncateLayouts rewinds this frame's layout sequence. See
// LayoutCache.TruncateLayouts.
func (w *WindowTextSystem) TruncateLayouts(index LayoutIndex) {
	w.cache.TruncateLayouts(index)
}

// ShapeText lays out styled text and returns a queryable ShapedText.
// The runs must cover the text's byte length exactly; a shortfall is
// padded with a default run using the first run's font (or the fallback
// stack when runs is empty) and logged, and an overage is clamped and
// logged.
//
// Only the shaping-relevant projection of each run participates in the
// layout cache key. Colors and decorations are attached afterwards, so
// restyling cached text costs nothing.
func (w *WindowTextSystem) ShapeText(text string, fontSize float64, runs []TextRun, lineHeight, wrapWidth, forceSpacing float64) *ShapedText {
	fontRuns := make([]FontRun, 0, len(runs)+1)
	decorations := make([]DecorationRun, 0, len(runs)+1)

	covered := 0
	for _, run := range runs {
		length := run.Len
		if covered+length > len(text) {
			length = len(text) - covered
			gui.Logger().Warn("text runs exceed text length, clamping",
				"textLen", len(text), "runLen", run.Len)
		}
		if length <= 0 {
			continue
		}
		id := w.ResolveFont(run.Font)
		fontRuns = append(fontRuns, NewFontRun(length, id, run.Font.Weight, run.Font.Style))
		decorations = append(decorations, DecorationRun{
			Len:           length,
			Color:         run.Color,
			Background:    run.Background,
			Underline:     run.Underline,
			Strikethrough: run.Strikethrough,
		})
		covered += length
	}
	if covered < len(text) {
		gui.Logger().Warn("text runs fall short of text length, padding with default run",
			"textLen", len(text), "covered", covered)
		font := FontDef(SystemUIFont)
		if len(runs) > 0 {
			font = runs[0].Font
		}
		id := w.ResolveFont(font)
		rest := len(text) - covered
		fontRuns = append(fontRuns, NewFontRun(rest, id, font.Weight, font.Style))
		decorations = append(decorations, DecorationRun{Len: rest, Color: gui.RGBA{A: 1}})
	}

	layout := w.cache.LayoutText(text, fontSize, lineHeight, fontRuns, wrapWidth, forceSpacing)

	return &ShapedText{
		sys:         w.TextSystem,
		layout:      layout,
		text:        text,
		lineHeight:  lineHeight,
		decorations: decorations,
	}
}
