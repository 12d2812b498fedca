package detection

import (
	"github.com/MeKo-Tech/ocrqa/internal/geometry"
)

// Detection is a single recognized text token with absolute-pixel geometry
// and a confidence in [0,1]. Values are canonical: the box has positive
// area and the text is trimmed and non-empty.
type Detection struct {
	Text       string
	Box        geometry.Box
	Confidence float64
}

// RawGeometry is the shape reported by an OCR engine for one detection.
// Engines disagree on representation, so the variants are modeled as a
// closed set consumed exhaustively by the Normalizer.
type RawGeometry interface {
	isRawGeometry()
}

// RawBox is an explicit 4-number box [x0,y0,x1,y1].
type RawBox struct {
	X0, Y0, X1, Y1 float64
}

// RawCorners is a box given via named corner fields (left/top/right/bottom).
type RawCorners struct {
	Left, Top, Right, Bottom float64
}

// RawPolygon is an ordered point list enclosing the detection.
type RawPolygon struct {
	Points []geometry.Point
}

func (RawBox) isRawGeometry()     {}
func (RawCorners) isRawGeometry() {}
func (RawPolygon) isRawGeometry() {}

// RawDetection is one engine-specific record before normalization.
// Confidence is nil when the engine does not report one.
type RawDetection struct {
	Geometry   RawGeometry
	Text       string
	Confidence *float64
}
