package detection

import (
	"math"
	"strings"

	"github.com/MeKo-Tech/ocrqa/internal/geometry"
)

// DefaultConfidence is assumed when an engine reports no confidence.
// Model-based detectors rarely emit candidates they are unsure about,
// so the baseline is high.
const DefaultConfidence = 0.9

// Normalizer maps engine-specific raw records into canonical Detections
// scaled and clamped to a source image of the given dimensions.
type Normalizer struct {
	Width  float64
	Height float64
}

// NewNormalizer creates a Normalizer for an image of width x height pixels.
func NewNormalizer(width, height float64) *Normalizer {
	return &Normalizer{Width: width, Height: height}
}

// Normalize converts one raw detection into a canonical Detection.
// The second return value is false when the record is dropped (empty text
// or unusable geometry); dropped records never reach the grouping stage.
func (n *Normalizer) Normalize(raw RawDetection) (Detection, bool) {
	text := strings.TrimSpace(raw.Text)
	if text == "" {
		return Detection{}, false
	}

	box, ok := n.normalizeGeometry(raw.Geometry)
	if !ok {
		return Detection{}, false
	}

	return Detection{
		Text:       text,
		Box:        box,
		Confidence: NormalizeConfidence(raw.Confidence),
	}, true
}

// NormalizeAll runs Normalize over a batch, keeping only surviving records.
func (n *Normalizer) NormalizeAll(raws []RawDetection) []Detection {
	out := make([]Detection, 0, len(raws))
	for _, raw := range raws {
		if det, ok := n.Normalize(raw); ok {
			out = append(out, det)
		}
	}
	return out
}

func (n *Normalizer) normalizeGeometry(g RawGeometry) (geometry.Box, bool) {
	var box geometry.Box
	switch v := g.(type) {
	case RawBox:
		box = geometry.NewBox(v.X0, v.Y0, v.X1, v.Y1)
	case RawCorners:
		box = geometry.NewBox(v.Left, v.Top, v.Right, v.Bottom)
	case RawPolygon:
		b, err := geometry.BoxFromPolygon(v.Points)
		if err != nil {
			return geometry.Box{}, false
		}
		box = b
	default:
		return geometry.Box{}, false
	}

	for _, c := range [4]float64{box.MinX, box.MinY, box.MaxX, box.MaxY} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return geometry.Box{}, false
		}
	}

	// Coordinates expressed as fractions of the image size are scaled up.
	if box.MinX <= 1.0 && box.MinY <= 1.0 && box.MaxX <= 1.0 && box.MaxY <= 1.0 {
		box.MinX *= n.Width
		box.MaxX *= n.Width
		box.MinY *= n.Height
		box.MaxY *= n.Height
	}

	box.MinX = clamp(box.MinX, 0, n.Width)
	box.MaxX = clamp(box.MaxX, 0, n.Width)
	box.MinY = clamp(box.MinY, 0, n.Height)
	box.MaxY = clamp(box.MaxY, 0, n.Height)

	// A box that collapsed during clamping still carries text; fall back
	// to full-image coverage rather than losing the record.
	if box.Width() <= 0 || box.Height() <= 0 {
		box = geometry.Box{MinX: 0, MinY: 0, MaxX: n.Width, MaxY: n.Height}
	}

	return box, true
}

// NormalizeConfidence maps a raw confidence value onto [0,1].
// Values above 1.0 are interpreted as percentages; nil means the engine
// reported nothing and yields DefaultConfidence.
func NormalizeConfidence(raw *float64) float64 {
	if raw == nil {
		return DefaultConfidence
	}
	c := *raw
	if math.IsNaN(c) {
		return DefaultConfidence
	}
	if c > 1.0 {
		c /= 100.0
	}
	return clamp(c, 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
