package gui

import "math"

// Point represents a 2D point or vector in logical pixels.
type Point struct {
	X, Y float64
}

// Pt is a convenience function to create a Point.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns the sum of two points (vector addition).
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns the difference of two points (vector subtraction).
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Mul returns the point scaled by a scalar.
func (p Point) Mul(s float64) Point {
	return Point{X: p.X * s, Y: p.Y * s}
}

// Length returns the length of the vector.
func (p Point) Length() float64 {
	return math.Sqrt(p.X*p.X + p.Y*p.Y)
}

// Size represents the dimensions of a rectangular region.
type Size struct {
	Width, Height float64
}

// Sz is a convenience function to create a Size.
func Sz(width, height float64) Size {
	return Size{Width: width, Height: height}
}

// IsEmpty reports whether either dimension is zero or negative.
func (s Size) IsEmpty() bool {
	return s.Width <= 0 || s.Height <= 0
}

// Mul returns the size scaled by a scalar.
func (s Size) Mul(f float64) Size {
	return Size{Width: s.Width * f, Height: s.Height * f}
}

// Bounds is an axis-aligned rectangle described by its top-left origin
// and its size, in logical pixels.
type Bounds struct {
	Origin Point
	Size   Size
}

// Rect creates Bounds from an origin and dimensions.
func Rect(x, y, width, height float64) Bounds {
	return Bounds{Origin: Point{X: x, Y: y}, Size: Size{Width: width, Height: height}}
}

// Right returns the x coordinate of the right edge.
func (b Bounds) Right() float64 {
	return b.Origin.X + b.Size.Width
}

// Bottom returns the y coordinate of the bottom edge.
func (b Bounds) Bottom() float64 {
	return b.Origin.Y + b.Size.Height
}

// Contains reports whether the point lies within the bounds.
// Points on the right or bottom edge are outside.
func (b Bounds) Contains(p Point) bool {
	return p.X >= b.Origin.X && p.X < b.Right() &&
		p.Y >= b.Origin.Y && p.Y < b.Bottom()
}

// Union returns the smallest bounds containing both rectangles.
func (b Bounds) Union(o Bounds) Bounds {
	x0 := math.Min(b.Origin.X, o.Origin.X)
	y0 := math.Min(b.Origin.Y, o.Origin.Y)
	x1 := math.Max(b.Right(), o.Right())
	y1 := math.Max(b.Bottom(), o.Bottom())
	return Rect(x0, y0, x1-x0, y1-y0)
}

// Intersect returns the overlapping region of two bounds.
// The result has an empty size if the bounds do not overlap.
func (b Bounds) Intersect(o Bounds) Bounds {
	x0 := math.Max(b.Origin.X, o.Origin.X)
	y0 := math.Max(b.Origin.Y, o.Origin.Y)
	x1 := math.Min(b.Right(), o.Right())
	y1 := math.Min(b.Bottom(), o.Bottom())
	if x1 < x0 {
		x1 = x0
	}
	if y1 < y0 {
		y1 = y0
	}
	return Rect(x0, y0, x1-x0, y1-y0)
}

// Expand returns the bounds grown outward by the given edges.
func (b Bounds) Expand(e Edges) Bounds {
	return Rect(
		b.Origin.X-e.Left,
		b.Origin.Y-e.Top,
		b.Size.Width+e.Left+e.Right,
		b.Size.Height+e.Top+e.Bottom,
	)
}

// Edges holds a value for each edge of a rectangle.
// Used for margins around shader read regions.
type Edges struct {
	Top, Right, Bottom, Left float64
}

// EdgesAll returns Edges with every edge set to v.
func EdgesAll(v float64) Edges {
	return Edges{Top: v, Right: v, Bottom: v, Left: v}
}
