package text

import (
	"math"
	"sync"
)

// LayoutCache memoizes shaped layouts across frames. It keeps two frame
// buffers: the current frame's key→layout map plus the ordered list of
// keys used this frame, and the previous frame's. A lookup first checks
// the current frame, then promotes a previous-frame entry, and only
// shapes through the LayoutEngine on a genuine miss. FinishFrame swaps
// the buffers in O(1), so a layout requested every frame is shaped once,
// a layout that skips one frame gets a one-frame grace period, and
// memory is bounded by the layouts touched in the last two frames.
//
// LayoutCache is safe for concurrent use. Shaping on a miss happens
// outside the cache locks; two goroutines racing on the same missing key
// may both shape it, which is benign since layouts are pure functions of
// the key.
type LayoutCache struct {
	engine LayoutEngine

	prevMu sync.Mutex
	prev   *frameCache

	currMu sync.RWMutex
	curr   *frameCache
}

type frameCache struct {
	layouts map[CacheKey]*Layout
	used    []CacheKey
}

func newFrameCache() *frameCache {
	return &frameCache{layouts: make(map[CacheKey]*Layout)}
}

// LayoutIndex is a checkpoint into the current frame's used-key list.
// Indices from the same frame compare as integers.
type LayoutIndex int

// NewLayoutCache creates a LayoutCache shaping through the given engine.
func NewLayoutCache(engine LayoutEngine) *LayoutCache {
	return &LayoutCache{
		engine: engine,
		prev:   newFrameCache(),
		curr:   newFrameCache(),
	}
}

// CacheKey is the structural identity of a shape request: text content,
// font size, line height, the ordered resolved font runs, and the
// optional wrap width and forced spacing. The key is a fixed-size digest
// value, so building one from borrowed fields allocates nothing, and two
// keys built from equal field values are equal (and hash equally as map
// keys) regardless of whether the fields were owned or transient.
type CacheKey struct {
	textHash       uint64
	textLen        int
	fontSizeBits   uint64
	lineHeightBits uint64
	runsHash       uint64
	wrapWidthBits  uint64
	spacingBits    uint64
}

// MakeCacheKey builds the cache key for a shape request. A wrapWidth or
// forceSpacing of zero means "none" and keys distinctly from any positive
// value.
func MakeCacheKey(text string, fontSize, lineHeight float64, runs []FontRun, wrapWidth, forceSpacing float64) CacheKey {
	return CacheKey{
		textHash:       fnvString(text),
		textLen:        len(text),
		fontSizeBits:   math.Float64bits(fontSize),
		lineHeightBits: math.Float64bits(lineHeight),
		runsHash:       fnvRuns(runs),
		wrapWidthBits:  math.Float64bits(wrapWidth),
		spacingBits:    math.Float64bits(forceSpacing),
	}
}

// LayoutText returns the shaped layout for the request, shaping through
// the engine only when neither the current nor the previous frame holds
// it. The returned Layout is shared; callers must not mutate it.
func (c *LayoutCache) LayoutText(text string, fontSize, lineHeight float64, runs []FontRun, wrapWidth, forceSpacing float64) *Layout {
	key := MakeCacheKey(text, fontSize, lineHeight, runs, wrapWidth, forceSpacing)

	c.currMu.RLock()
	layout, ok := c.curr.layouts[key]
	c.currMu.RUnlock()
	if ok {
		return layout
	}

	c.prevMu.Lock()
	layout, ok = c.prev.layouts[key]
	if ok {
		delete(c.prev.layouts, key)
	}
	c.prevMu.Unlock()

	if !ok {
		layout = c.engine.Layout(text, fontSize, lineHeight, runs, wrapWidth, forceSpacing)
	}

	c.currMu.Lock()
	if existing, dup := c.curr.layouts[key]; dup {
		// Lost a race with a concurrent shaper for the same key; keep
		// the entry that is already recorded in the used list.
		layout = existing
	} else {
		c.curr.layouts[key] = layout
		c.curr.used = append(c.curr.used, key)
	}
	c.currMu.Unlock()

	return layout
}

// LayoutIndex returns a checkpoint at the current end of this frame's
// used-key list.
func (c *LayoutCache) LayoutIndex() LayoutIndex {
	c.currMu.RLock()
	defer c.currMu.RUnlock()
	return LayoutIndex(len(c.curr.used))
}

// ReuseLayouts force-promotes the layouts recorded in the previous
// frame's used list within [from, to) into the current frame. It is used
// for deferred content whose paint order is non-linear relative to its
// layout order: the caller brackets the deferred subtree with
// LayoutIndex checkpoints taken last frame and replays them here.
func (c *LayoutCache) ReuseLayouts(from, to LayoutIndex) {
	c.prevMu.Lock()
	defer c.prevMu.Unlock()
	c.currMu.Lock()
	defer c.currMu.Unlock()

	if from < 0 {
		from = 0
	}
	if int(to) > len(c.prev.used) {
		to = LayoutIndex(len(c.prev.used))
	}
	for _, key := range c.prev.used[from:to] {
		if layout, ok := c.prev.layouts[key]; ok {
			delete(c.prev.layouts, key)
			c.curr.layouts[key] = layout
		}
		c.curr.used = append(c.curr.used, key)
	}
}

// TruncateLayouts drops the tail of the current frame's used list back
// to index. Map entries already promoted stay; only the reuse-window
// bookkeeping is rewound. Used when a tentatively laid out deferred
// subtree is abandoned.
func (c *LayoutCache) TruncateLayouts(index LayoutIndex) {
	c.currMu.Lock()
	defer c.currMu.Unlock()
	if index < 0 {
		index = 0
	}
	if int(index) < len(c.curr.used) {
		c.curr.used = c.curr.used[:index]
	}
}

// FinishFrame swaps the frame buffers and clears the new current frame.
// Call exactly once per render frame: skipping it leaks history into the
// "previous" frame indefinitely, and calling it twice evicts the frame's
// own work prematurely.
func (c *LayoutCache) FinishFrame() {
	c.prevMu.Lock()
	defer c.prevMu.Unlock()
	c.currMu.Lock()
	defer c.currMu.Unlock()

	c.prev, c.curr = c.curr, c.prev
	clear(c.curr.layouts)
	c.curr.used = c.curr.used[:0]
}

// FNV-1a over a string, without converting to []byte.
const (
	fnvOffset64 = 14695981039346656037
	fnvPrime64  = 1099511628211
)

func fnvString(s string) uint64 {
	h := uint64(fnvOffset64)
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= fnvPrime64
	}
	return h
}

func fnvRuns(runs []FontRun) uint64 {
	h := uint64(fnvOffset64)
	mix := func(v uint64) {
		for i := 0; i < 8; i++ {
			h ^= v & 0xff
			h *= fnvPrime64
			v >>= 8
		}
	}
	for _, r := range runs {
		mix(uint64(r.Len))
		mix(r.Font.Handle)
		mix(uint64(r.Font.Index))
		mix(r.WeightBits)
		mix(uint64(r.Style))
	}
	return h
}
