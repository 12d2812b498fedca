package qa

import (
	"strings"

	"github.com/MeKo-Tech/ocrqa/internal/geometry"
	"github.com/MeKo-Tech/ocrqa/internal/layout"
	"golang.org/x/text/unicode/norm"
)

// StageMetrics holds the per-(page, stage) measurements. Delta fields are
// relative to the preceding stage and stay zero for the first stage.
type StageMetrics struct {
	Stage     string `json:"stage"`
	StageName string `json:"stage_name"`

	TotalChars  int `json:"total_chars"`
	TotalWords  int `json:"total_words"`
	TotalBlocks int `json:"total_blocks"`
	UniqueWords int `json:"unique_words"`
	EmptyBlocks int `json:"empty_blocks"`

	TotalBBoxArea     float64 `json:"total_bbox_area"`
	ReadingOrderScore float64 `json:"reading_order_score"`

	MeanConfidence      float64 `json:"mean_confidence"`
	LowConfidenceBlocks int     `json:"low_confidence_blocks"`

	TermCount        int     `json:"term_count"`
	TermPreservation float64 `json:"term_preservation"`

	CharsAdded    int `json:"chars_added"`
	CharsRemoved  int `json:"chars_removed"`
	WordsAdded    int `json:"words_added"`
	WordsRemoved  int `json:"words_removed"`
	BlocksAdded   int `json:"blocks_added"`
	BlocksRemoved int `json:"blocks_removed"`
}

// AnalyzeBlocks computes content, confidence, and layout statistics for
// one stage's block list. orderTolerance is the vertical slack in pixels
// for reading-order scoring; values <= 0 fall back to the default line
// tolerance. An empty list yields zeroed metrics, not an error.
func AnalyzeBlocks(blocks []layout.Block, confidenceThreshold, orderTolerance float64) StageMetrics {
	if orderTolerance <= 0 {
		orderTolerance = layout.DefaultLineTolerance
	}
	var m StageMetrics
	m.TotalBlocks = len(blocks)
	if len(blocks) == 0 {
		return m
	}

	texts := make([]string, 0, len(blocks))
	boxes := make([]geometry.Box, 0, len(blocks))
	confSum := 0.0
	for _, b := range blocks {
		text := strings.TrimSpace(b.Text)
		if text == "" {
			m.EmptyBlocks++
		} else {
			texts = append(texts, text)
		}
		confSum += b.Confidence
		if b.Confidence < confidenceThreshold {
			m.LowConfidenceBlocks++
		}
		m.TotalBBoxArea += max(0, b.Box.Area())
		boxes = append(boxes, b.Box)
	}

	combined := norm.NFC.String(strings.Join(texts, " "))
	words := strings.Fields(combined)
	unique := make(map[string]struct{}, len(words))
	for _, w := range words {
		unique[strings.ToLower(w)] = struct{}{}
	}

	m.TotalChars = len([]rune(combined))
	m.TotalWords = len(words)
	m.UniqueWords = len(unique)
	m.MeanConfidence = confSum / float64(len(blocks))
	m.ReadingOrderScore = ReadingOrderScore(boxes, orderTolerance)
	return m
}

// ReadingOrderScore measures how well boxes, in the order given, follow
// the top-to-bottom then left-to-right reading convention. A pair violates
// the order when the current box sits more than tol below the next one,
// or when two same-row boxes are horizontally inverted. The score is
// 1 minus the violation ratio, floored at 0.
func ReadingOrderScore(boxes []geometry.Box, tol float64) float64 {
	if len(boxes) < 2 {
		return 1.0
	}
	violations := 0
	for i := 0; i < len(boxes)-1; i++ {
		cur, next := boxes[i], boxes[i+1]
		switch {
		case cur.MinY > next.MinY+tol:
			violations++
		case abs(cur.MinY-next.MinY) < tol && cur.MinX > next.MinX:
			violations++
		}
	}
	score := 1.0 - float64(violations)/float64(len(boxes))
	return max(0, score)
}

// SetDeltas fills the added/removed fields of m from the preceding stage's
// metrics.
func (m *StageMetrics) SetDeltas(prev *StageMetrics) {
	if prev == nil {
		return
	}
	m.CharsAdded = max(0, m.TotalChars-prev.TotalChars)
	m.CharsRemoved = max(0, prev.TotalChars-m.TotalChars)
	m.WordsAdded = max(0, m.TotalWords-prev.TotalWords)
	m.WordsRemoved = max(0, prev.TotalWords-m.TotalWords)
	m.BlocksAdded = max(0, m.TotalBlocks-prev.TotalBlocks)
	m.BlocksRemoved = max(0, prev.TotalBlocks-m.TotalBlocks)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
