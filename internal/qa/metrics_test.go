package qa

import (
	"testing"

	"github.com/MeKo-Tech/ocrqa/internal/geometry"
	"github.com/MeKo-Tech/ocrqa/internal/layout"
	"github.com/stretchr/testify/assert"
)

func block(text string, x0, y0, x1, y1, conf float64) layout.Block {
	return layout.Block{
		Text:       text,
		Box:        geometry.NewBox(x0, y0, x1, y1),
		Confidence: conf,
	}
}

func TestAnalyzeBlocks(t *testing.T) {
	blocks := []layout.Block{
		block("Aspirin 500 mg", 0, 0, 100, 20, 0.9),
		block("take daily", 0, 30, 80, 50, 0.6),
		block("   ", 0, 60, 10, 70, 0.5),
	}

	m := AnalyzeBlocks(blocks, 0.7, 10)

	assert.Equal(t, 3, m.TotalBlocks)
	assert.Equal(t, 1, m.EmptyBlocks)
	assert.Equal(t, 5, m.TotalWords)
	assert.Equal(t, 5, m.UniqueWords)
	// "Aspirin 500 mg take daily" is 25 runes.
	assert.Equal(t, 25, m.TotalChars)
	assert.InDelta(t, (0.9+0.6+0.5)/3, m.MeanConfidence, 1e-9)
	assert.Equal(t, 2, m.LowConfidenceBlocks)
	assert.InDelta(t, 100*20+80*20+10*10, m.TotalBBoxArea, 1e-9)
	assert.InDelta(t, 1.0, m.ReadingOrderScore, 1e-9)
}

func TestAnalyzeBlocks_Empty(t *testing.T) {
	m := AnalyzeBlocks(nil, 0.7, 10)
	assert.Equal(t, 0, m.TotalBlocks)
	assert.Equal(t, 0, m.TotalChars)
	assert.InDelta(t, 0.0, m.MeanConfidence, 1e-9)
}

func TestAnalyzeBlocks_OrderTolerance(t *testing.T) {
	// Vertically inverted pair, 100 px apart.
	blocks := []layout.Block{
		block("second", 0, 100, 50, 120, 0.9),
		block("first", 0, 0, 50, 20, 0.9),
	}

	assert.InDelta(t, 0.5, AnalyzeBlocks(blocks, 0, 10).ReadingOrderScore, 1e-9)
	// A tolerance wider than the offset absorbs the inversion.
	assert.InDelta(t, 1.0, AnalyzeBlocks(blocks, 0, 1000).ReadingOrderScore, 1e-9)
	// Non-positive tolerance falls back to the default.
	assert.InDelta(t, 0.5, AnalyzeBlocks(blocks, 0, 0).ReadingOrderScore, 1e-9)
}

func TestReadingOrderScore(t *testing.T) {
	tests := []struct {
		name  string
		boxes []geometry.Box
		want  float64
	}{
		{
			name: "correct order",
			boxes: []geometry.Box{
				geometry.NewBox(0, 0, 50, 20),
				geometry.NewBox(0, 30, 50, 50),
				geometry.NewBox(0, 60, 50, 80),
			},
			want: 1.0,
		},
		{
			name: "vertical regression",
			boxes: []geometry.Box{
				geometry.NewBox(0, 60, 50, 80),
				geometry.NewBox(0, 0, 50, 20),
				geometry.NewBox(0, 30, 50, 50),
			},
			want: 1.0 - 1.0/3.0,
		},
		{
			name: "same row inverted",
			boxes: []geometry.Box{
				geometry.NewBox(100, 0, 150, 20),
				geometry.NewBox(0, 2, 50, 22),
			},
			want: 0.5,
		},
		{
			name:  "single box",
			boxes: []geometry.Box{geometry.NewBox(0, 0, 10, 10)},
			want:  1.0,
		},
		{
			name:  "empty",
			boxes: nil,
			want:  1.0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ReadingOrderScore(tt.boxes, 10), 1e-9)
		})
	}
}

func TestSetDeltas(t *testing.T) {
	prev := &StageMetrics{TotalChars: 100, TotalWords: 20, TotalBlocks: 5}
	cur := &StageMetrics{TotalChars: 70, TotalWords: 25, TotalBlocks: 5}

	cur.SetDeltas(prev)

	assert.Equal(t, 0, cur.CharsAdded)
	assert.Equal(t, 30, cur.CharsRemoved)
	assert.Equal(t, 5, cur.WordsAdded)
	assert.Equal(t, 0, cur.WordsRemoved)
	assert.Equal(t, 0, cur.BlocksAdded)
	assert.Equal(t, 0, cur.BlocksRemoved)
}

func TestSetDeltas_NoPrior(t *testing.T) {
	cur := &StageMetrics{TotalChars: 70}
	cur.SetDeltas(nil)
	assert.Equal(t, 0, cur.CharsAdded)
	assert.Equal(t, 0, cur.CharsRemoved)
}
