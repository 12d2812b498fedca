package layout

import (
	"log/slog"
	"sort"

	"github.com/MeKo-Tech/ocrqa/internal/detection"
)

// DefaultLineTolerance is the vertical distance in pixels within which two
// detections are considered part of the same line. It reflects expected
// line height at the working resolution; it is a tuning knob, not derived.
const DefaultLineTolerance = 10.0

// LineGrouper clusters per-token detections into line-level blocks.
type LineGrouper struct {
	// Tolerance is the maximum |top-y| distance from the line anchor.
	Tolerance float64
}

// NewLineGrouper returns a grouper with the given vertical tolerance.
// Non-positive values fall back to DefaultLineTolerance.
func NewLineGrouper(tolerance float64) *LineGrouper {
	if tolerance <= 0 {
		tolerance = DefaultLineTolerance
	}
	return &LineGrouper{Tolerance: tolerance}
}

// Group clusters an unordered detection list for one page into blocks in
// reading order. Detections with non-finite or inverted geometry are
// discarded up front; they never contribute to a block.
func (g *LineGrouper) Group(dets []detection.Detection) []Block {
	valid := make([]detection.Detection, 0, len(dets))
	for _, d := range dets {
		if !d.Box.Valid() {
			slog.Debug("discarding detection with degenerate box",
				"text", d.Text,
				"box", d.Box)
			continue
		}
		valid = append(valid, d)
	}
	if len(valid) == 0 {
		return nil
	}

	// Top-to-bottom; the x tie-break makes same-row order deterministic.
	sort.SliceStable(valid, func(i, j int) bool {
		if valid[i].Box.MinY != valid[j].Box.MinY {
			return valid[i].Box.MinY < valid[j].Box.MinY
		}
		return valid[i].Box.MinX < valid[j].Box.MinX
	})

	blocks := make([]Block, 0, len(valid))
	var line []detection.Detection
	var anchorY float64

	for _, d := range valid {
		if len(line) > 0 && abs(d.Box.MinY-anchorY) <= g.Tolerance {
			line = append(line, d)
			continue
		}
		if len(line) > 0 {
			blocks = append(blocks, flushLine(line))
		}
		line = []detection.Detection{d}
		// The anchor stays fixed at the first member of the band:
		// a running average would drift downward on skewed input and
		// merge unrelated lines.
		anchorY = d.Box.MinY
	}
	if len(line) > 0 {
		blocks = append(blocks, flushLine(line))
	}

	return SortReadingOrder(blocks)
}

// flushLine turns a line buffer into a Block, ordering members
// left-to-right.
func flushLine(line []detection.Detection) Block {
	sort.SliceStable(line, func(i, j int) bool {
		return line[i].Box.MinX < line[j].Box.MinX
	})
	return newBlock(line)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
