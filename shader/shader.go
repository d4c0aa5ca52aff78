package shader

import (
	"github.com/gogpu/gui"
)

// ShaderID identifies a registered, successfully compiled shader pass.
// Zero is never a valid ID.
type ShaderID uint64

// CompileError is a failed shader compilation. The same pass fails the
// same way every frame, so the registry memoizes the error and reports
// the compiler diagnostic only once.
type CompileError struct {
	Message string
}

func (e *CompileError) Error() string { return e.Message }

// PassSpec is the registration key for one shader pass: everything that
// determines the generated WGSL module.
type PassSpec struct {
	// Body is the WGSL body of the user fragment function. It receives
	// `position: vec4<f32>` and must return a vec4<f32> color.
	Body string

	// Items is extra module-level WGSL (helper functions, constants),
	// included in order.
	Items string

	// ReadAccess declares that the pass samples the pixels beneath the
	// element; it adds the backdrop texture and sampler bindings.
	ReadAccess bool

	// DataName and DataDefinition declare the pass's uniform data type.
	// Both empty for a pass without data.
	DataName       string
	DataDefinition string
}

// Painter is the surface Element paints through. The render package's
// Frame implements it.
type Painter interface {
	// WindowBounds returns the full window rectangle in logical pixels.
	WindowBounds() gui.Bounds

	// RegisterShader compiles (or finds) the pass and returns its ID, or
	// the memoized compile error.
	RegisterShader(spec PassSpec) (ShaderID, *CompileError)

	// PaintShader draws one compiled pass over bounds, with readBounds
	// naming the backdrop region the pass may sample (zero when the pass
	// declared no read access).
	PaintShader(id ShaderID, bounds, readBounds gui.Bounds, data []byte)

	// PaintQuad fills a rectangle. Used for the compile-failure pattern.
	PaintQuad(bounds gui.Bounds, color gui.RGBA)
}

// FragmentShader describes one custom fragment pass: the WGSL body,
// optional helper items, and the backdrop read mode. It is an immutable
// value; the With and Read methods return modified copies, so shaders
// can be shared and specialized freely.
//
// By default a shader reads nothing beneath it. ReadUnder, ReadMargin,
// and ReadFull widen the readable region to the element bounds, the
// bounds expanded by a margin, or the whole window.
type FragmentShader struct {
	body  string
	items []string

	readAccess bool
	// readMargin expands the element bounds for backdrop reads. Nil with
	// readAccess set means the whole window.
	readMargin *gui.Edges
}

// New creates a FragmentShader from a WGSL fragment body. The body sees
// `position: vec4<f32>` (the framebuffer position), the `globals` and
// `bounds` uniforms, the pass's `data` uniform when one is attached, and
// the `backdrop` texture when read access is enabled. It must return a
// vec4<f32> color.
func New(body string) FragmentShader {
	return FragmentShader{body: body}
}

// WithItem returns a copy with an extra module-level WGSL item (a helper
// function or constant) appended.
func (s FragmentShader) WithItem(item string) FragmentShader {
	items := make([]string, 0, len(s.items)+1)
	items = append(items, s.items...)
	items = append(items, item)
	s.items = items
	return s
}

// ReadUnder returns a copy that may sample the pixels directly beneath
// the element's bounds.
func (s FragmentShader) ReadUnder() FragmentShader {
	s.readAccess = true
	s.readMargin = &gui.Edges{}
	return s
}

// ReadMargin returns a copy that may sample the pixels beneath the
// element's bounds expanded by margin.
func (s FragmentShader) ReadMargin(margin gui.Edges) FragmentShader {
	s.readAccess = true
	m := margin
	s.readMargin = &m
	return s
}

// ReadFull returns a copy that may sample the whole window.
func (s FragmentShader) ReadFull() FragmentShader {
	s.readAccess = true
	s.readMargin = nil
	return s
}

// ReadsBackdrop reports whether the shader samples pixels beneath it.
func (s FragmentShader) ReadsBackdrop() bool { return s.readAccess }

// readBounds computes the backdrop region for a paint at bounds. The
// window rectangle is queried fresh on every paint, so a full-window
// reader follows window resizes with no stale state.
func (s FragmentShader) readBounds(p Painter, bounds gui.Bounds) gui.Bounds {
	if !s.readAccess {
		return gui.Bounds{}
	}
	if s.readMargin != nil {
		return bounds.Expand(*s.readMargin)
	}
	return p.WindowBounds()
}

func (s FragmentShader) spec(data Uniform) PassSpec {
	items := ""
	for i, it := range s.items {
		if i > 0 {
			items += "\n"
		}
		items += it
	}
	spec := PassSpec{
		Body:       s.body,
		Items:      items,
		ReadAccess: s.readAccess,
	}
	if data != nil {
		spec.DataName = data.UniformName()
		spec.DataDefinition = data.UniformDefinition()
	}
	return spec
}

// pass is one element of a shader chain.
type pass struct {
	shader FragmentShader
	data   Uniform
}

// Element is a paintable chain of fragment-shader passes. Passes paint
// in the order they were added, so a later pass with read access sees
// the output of earlier ones.
type Element struct {
	passes []pass
}

// NewElement creates a single-pass element with no uniform data.
func NewElement(s FragmentShader) *Element {
	return NewElementWithData(s, NoData{})
}

// NewElementWithData creates a single-pass element with uniform data.
func NewElementWithData(s FragmentShader, data Uniform) *Element {
	return &Element{passes: []pass{{shader: s, data: data}}}
}

// Chain appends a pass with no uniform data.
func (e *Element) Chain(s FragmentShader) *Element {
	return e.ChainWithData(s, NoData{})
}

// ChainWithData appends a pass with uniform data.
func (e *Element) ChainWithData(s FragmentShader, data Uniform) *Element {
	e.passes = append(e.passes, pass{shader: s, data: data})
	return e
}

// PassCount returns the number of chained passes.
func (e *Element) PassCount() int { return len(e.passes) }

// Paint draws every pass over bounds, oldest first. A pass that fails to
// compile paints the error pattern in its place; the chain continues, so
// one broken pass does not blank the others.
func (e *Element) Paint(p Painter, bounds gui.Bounds) {
	for _, pa := range e.passes {
		id, cerr := p.RegisterShader(pa.shader.spec(pa.data))
		if cerr != nil {
			paintErrorPattern(p, bounds)
			continue
		}
		var data []byte
		if pa.data != nil {
			data = pa.data.AppendUniform(nil)
		}
		p.PaintShader(id, bounds, pa.shader.readBounds(p, bounds), data)
	}
}

// errorPatternCells is the checkerboard grid painted for a pass that
// failed to compile.
const errorPatternCells = 5

var (
	errorMagenta = gui.Hex(0xff00ff)
	errorBlack   = gui.Hex(0x000000)
)

// paintErrorPattern fills bounds with a 5x5 magenta and black
// checkerboard, the visual marker of a shader compile failure.
func paintErrorPattern(p Painter, bounds gui.Bounds) {
	cw := bounds.Size.Width / errorPatternCells
	ch := bounds.Size.Height / errorPatternCells
	for row := 0; row < errorPatternCells; row++ {
		for col := 0; col < errorPatternCells; col++ {
			color := errorMagenta
			if (row+col)&1 == 1 {
				color = errorBlack
			}
			p.PaintQuad(gui.Bounds{
				Origin: gui.Point{
					X: bounds.Origin.X + float64(col)*cw,
					Y: bounds.Origin.Y + float64(row)*ch,
				},
				Size: gui.Size{Width: cw, Height: ch},
			}, color)
		}
	}
}
