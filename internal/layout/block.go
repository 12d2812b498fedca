package layout

import (
	"strings"

	"github.com/MeKo-Tech/ocrqa/internal/detection"
	"github.com/MeKo-Tech/ocrqa/internal/geometry"
)

// Block is a line-level aggregation of detections sharing a vertical band.
// Text is the space-joined member texts in left-to-right order, Box the
// union of member boxes, Confidence the arithmetic mean. Blocks are value
// objects; once built they are never mutated.
type Block struct {
	Text       string
	Box        geometry.Box
	Confidence float64
}

// newBlock builds a Block from members already sorted left-to-right.
// The caller guarantees a non-empty member list with valid boxes.
func newBlock(members []detection.Detection) Block {
	texts := make([]string, len(members))
	boxes := make([]geometry.Box, len(members))
	confSum := 0.0
	for i, m := range members {
		texts[i] = m.Text
		boxes[i] = m.Box
		confSum += m.Confidence
	}
	box, _ := geometry.Union(boxes)
	return Block{
		Text:       strings.Join(texts, " "),
		Box:        box,
		Confidence: confSum / float64(len(members)),
	}
}
