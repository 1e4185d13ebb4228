// Package geom holds the small rectangle/point types shared by the view
// registry, tiling engine, and cursor-context resolver. Layout coordinates
// are integer logical pixels throughout, matching the teacher's Vec2 usage
// for niri's own layout coordinates.
package geom

import "fmt"

// Rect is an axis-aligned rectangle in layout coordinates.
type Rect struct {
	X, Y, W, H int
}

// Point is a single coordinate in layout space.
type Point struct {
	X, Y int
}

func (r Rect) String() string {
	return fmt.Sprintf("(%d, %d, %d, %d)", r.X, r.Y, r.W, r.H)
}

// Right is the x coordinate just past the rectangle's right edge.
func (r Rect) Right() int { return r.X + r.W }

// Bottom is the y coordinate just past the rectangle's bottom edge.
func (r Rect) Bottom() int { return r.Y + r.H }

// Empty reports whether the rectangle has a non-positive dimension.
func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

// Contains reports whether p lies within r (half-open on right/bottom).
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.Right() && p.Y >= r.Y && p.Y < r.Bottom()
}

// Center returns the rectangle's midpoint, floor-rounded.
func (r Rect) Center() Point {
	return Point{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

// Intersects reports whether r and other share any area.
func (r Rect) Intersects(other Rect) bool {
	return r.X < other.Right() && other.X < r.Right() &&
		r.Y < other.Bottom() && other.Y < r.Bottom()
}

// Overlaps1D reports whether the two half-open intervals [aStart,aEnd) and
// [bStart,bEnd) share any length, used for the tiling engine's "overlap on
// one axis" adjacency rule.
func Overlaps1D(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && bStart < aEnd
}

// Inset shrinks the rectangle by the given margins on each side, as used
// when converting an internal box to committed client geometry that
// excludes SSD thickness.
func (r Rect) Inset(left, top, right, bottom int) Rect {
	return Rect{
		X: r.X + left,
		Y: r.Y + top,
		W: r.W - left - right,
		H: r.H - top - bottom,
	}
}

// Clamp returns r adjusted to fit entirely within bounds, shrinking it if
// it is larger than bounds on any axis.
func (r Rect) Clamp(bounds Rect) Rect {
	out := r
	if out.W > bounds.W {
		out.W = bounds.W
	}
	if out.H > bounds.H {
		out.H = bounds.H
	}
	if out.X < bounds.X {
		out.X = bounds.X
	}
	if out.Y < bounds.Y {
		out.Y = bounds.Y
	}
	if out.Right() > bounds.Right() {
		out.X = bounds.Right() - out.W
	}
	if out.Bottom() > bounds.Bottom() {
		out.Y = bounds.Bottom() - out.H
	}
	return out
}
