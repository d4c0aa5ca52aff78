// Package text provides font resolution, text shaping, and the per-frame
// layout cache for the gui toolkit.
//
// The package is split into three layers:
//
//   - TextSystem is the thread-safe facade over a Platform backend. It
//     resolves Font descriptors to FontIDs (with fallbacks), answers
//     metric queries in device-independent pixels, and caches glyph
//     raster bounds.
//   - WindowTextSystem adds shaping on top: ShapeText turns a string with
//     styled TextRuns into a ShapedText, memoized by the double-buffered
//     LayoutCache so that text shaped on consecutive frames is laid out
//     only once.
//   - ShapedText answers hit-testing and caret-position queries against
//     the shaped result and paints it through a Painter.
//
// Glyph rasterization and font parsing are delegated to a Platform
// implementation. TypesettingSystem is the production implementation,
// built on go-text/typesetting for shaping and golang.org/x/image for
// glyph outlines and rasterization.
package text
