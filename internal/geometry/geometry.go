package geometry

import (
	"errors"
	"math"
)

// ErrInvalidGeometry indicates a degenerate or malformed geometric input,
// such as a polygon with fewer than two points or an empty box list.
var ErrInvalidGeometry = errors.New("invalid geometry")

// Point represents a 2D coordinate in float space.
type Point struct {
	X float64
	Y float64
}

// Box represents an axis-aligned bounding box in float coordinates.
type Box struct {
	MinX float64
	MinY float64
	MaxX float64
	MaxY float64
}

// NewBox constructs a Box from min/max coordinates ensuring ordering.
func NewBox(x1, y1, x2, y2 float64) Box {
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	if y1 > y2 {
		y1, y2 = y2, y1
	}
	return Box{MinX: x1, MinY: y1, MaxX: x2, MaxY: y2}
}

// Width returns the box width.
func (b Box) Width() float64 { return b.MaxX - b.MinX }

// Height returns the box height.
func (b Box) Height() float64 { return b.MaxY - b.MinY }

// Area returns the box area.
func (b Box) Area() float64 { return b.Width() * b.Height() }

// Valid reports whether the box has finite coordinates and positive area.
func (b Box) Valid() bool {
	for _, v := range [4]float64{b.MinX, b.MinY, b.MaxX, b.MaxY} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return b.MaxX > b.MinX && b.MaxY > b.MinY
}

// BoxFromPolygon returns the axis-aligned bounding box of an arbitrary
// point list. At least two points are required.
func BoxFromPolygon(pts []Point) (Box, error) {
	if len(pts) < 2 {
		return Box{}, ErrInvalidGeometry
	}
	minX, minY := pts[0].X, pts[0].Y
	maxX, maxY := pts[0].X, pts[0].Y
	for _, p := range pts[1:] {
		if p.X < minX {
			minX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	return Box{MinX: minX, MinY: minY, MaxX: maxX, MaxY: maxY}, nil
}

// Union returns the smallest box covering all given boxes.
func Union(boxes []Box) (Box, error) {
	if len(boxes) == 0 {
		return Box{}, ErrInvalidGeometry
	}
	out := boxes[0]
	for _, b := range boxes[1:] {
		out.MinX = math.Min(out.MinX, b.MinX)
		out.MinY = math.Min(out.MinY, b.MinY)
		out.MaxX = math.Max(out.MaxX, b.MaxX)
		out.MaxY = math.Max(out.MaxY, b.MaxY)
	}
	return out, nil
}

// IoU computes the Intersection-over-Union ratio of two boxes.
// Non-overlapping boxes yield 0.
func IoU(a, b Box) float64 {
	intersectionLeft := math.Max(a.MinX, b.MinX)
	intersectionTop := math.Max(a.MinY, b.MinY)
	intersectionRight := math.Min(a.MaxX, b.MaxX)
	intersectionBottom := math.Min(a.MaxY, b.MaxY)

	if intersectionLeft >= intersectionRight || intersectionTop >= intersectionBottom {
		return 0.0
	}

	intersectionArea := (intersectionRight - intersectionLeft) * (intersectionBottom - intersectionTop)
	unionArea := a.Area() + b.Area() - intersectionArea

	if unionArea <= 0 {
		return 0.0
	}

	return intersectionArea / unionArea
}
