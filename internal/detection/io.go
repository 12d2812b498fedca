package detection

import (
	"encoding/json"
	"fmt"
)

// RecordJSON is the canonical on-disk schema for one detection record:
// trimmed text, an absolute [x0,y0,x1,y1] box, and an optional confidence
// in either the 0-1 or 0-100 convention.
type RecordJSON struct {
	Text       string     `json:"text"`
	BBox       [4]float64 `json:"bbox"`
	Confidence *float64   `json:"confidence,omitempty"`
}

// RawFromJSON parses a canonical detection file into raw detections
// suitable for normalization.
func RawFromJSON(data []byte) ([]RawDetection, error) {
	var records []RecordJSON
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing detection records: %w", err)
	}
	out := make([]RawDetection, 0, len(records))
	for _, r := range records {
		out = append(out, RawDetection{
			Geometry:   RawBox{X0: r.BBox[0], Y0: r.BBox[1], X1: r.BBox[2], Y1: r.BBox[3]},
			Text:       r.Text,
			Confidence: r.Confidence,
		})
	}
	return out, nil
}
