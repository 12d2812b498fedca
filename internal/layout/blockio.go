package layout

import (
	"encoding/json"
	"fmt"

	"github.com/MeKo-Tech/ocrqa/internal/geometry"
)

// BlockJSON is the canonical on-disk representation of one block. It is
// the same record schema the detection stage consumes, so block files
// round-trip through every pipeline stage.
type BlockJSON struct {
	Text       string     `json:"text"`
	BBox       [4]float64 `json:"bbox"`
	Confidence float64    `json:"confidence"`
}

// BlocksToJSON serializes blocks to the canonical schema.
func BlocksToJSON(blocks []Block) ([]byte, error) {
	records := make([]BlockJSON, len(blocks))
	for i, b := range blocks {
		records[i] = BlockJSON{
			Text:       b.Text,
			BBox:       [4]float64{b.Box.MinX, b.Box.MinY, b.Box.MaxX, b.Box.MaxY},
			Confidence: b.Confidence,
		}
	}
	return json.MarshalIndent(records, "", "  ")
}

// BlocksFromJSON parses a canonical block file. Confidence values given
// in the 0-100 convention are brought back to [0,1].
func BlocksFromJSON(data []byte) ([]Block, error) {
	var records []BlockJSON
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing block records: %w", err)
	}
	blocks := make([]Block, 0, len(records))
	for _, r := range records {
		conf := r.Confidence
		if conf > 1.0 {
			conf /= 100.0
		}
		blocks = append(blocks, Block{
			Text:       r.Text,
			Box:        geometry.NewBox(r.BBox[0], r.BBox[1], r.BBox[2], r.BBox[3]),
			Confidence: conf,
		})
	}
	return blocks, nil
}
