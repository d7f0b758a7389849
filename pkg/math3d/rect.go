package math3d

import "math"

// Rect is an axis-aligned 2D rectangle given by its min and max corners.
type Rect struct {
	Min, Max Vec2
}

// RectMinMax creates a Rect from corner coordinates.
func RectMinMax(minX, minY, maxX, maxY float64) Rect {
	return Rect{Min: Vec2{minX, minY}, Max: Vec2{maxX, maxY}}
}

// Width returns the horizontal extent, never negative.
func (r Rect) Width() float64 {
	return math.Max(0, r.Max.X-r.Min.X)
}

// Height returns the vertical extent, never negative.
func (r Rect) Height() float64 {
	return math.Max(0, r.Max.Y-r.Min.Y)
}

// Area returns Width * Height.
func (r Rect) Area() float64 {
	return r.Width() * r.Height()
}

// Center returns the midpoint of the rectangle.
func (r Rect) Center() Vec2 {
	return r.Min.Add(r.Max).Scale(0.5)
}

// Empty reports whether the rectangle has zero area.
func (r Rect) Empty() bool {
	return r.Area() == 0
}

// Intersect returns the overlapping part of r and s. Disjoint rectangles
// produce a zero-area Rect.
func (r Rect) Intersect(s Rect) Rect {
	out := Rect{Min: r.Min.Max(s.Min), Max: r.Max.Min(s.Max)}
	if out.Max.X < out.Min.X {
		out.Max.X = out.Min.X
	}
	if out.Max.Y < out.Min.Y {
		out.Max.Y = out.Min.Y
	}
	return out
}

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Vec2) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}
