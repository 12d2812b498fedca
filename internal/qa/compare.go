package qa

import (
	"github.com/MeKo-Tech/ocrqa/internal/geometry"
	"github.com/MeKo-Tech/ocrqa/internal/layout"
)

// Comparator measures content drift and spatial fidelity between the
// "before" and "after" block sets of the same page.
type Comparator struct {
	// IoUThreshold is the minimum best-IoU for a before-block to count
	// as matched. Policy constant, not a derived value.
	IoUThreshold float64
	// OrderTolerancePx is the same-row tolerance for order checks.
	OrderTolerancePx float64
}

// NewComparator returns a comparator with the given thresholds.
func NewComparator(iouThreshold, orderTolerance float64) *Comparator {
	return &Comparator{IoUThreshold: iouThreshold, OrderTolerancePx: orderTolerance}
}

// StageComparison is the drift record for one before/after stage pair.
type StageComparison struct {
	CharsDelta  int `json:"chars_delta"`
	WordsDelta  int `json:"words_delta"`
	BlocksDelta int `json:"blocks_delta"`

	// after/before ratios with the denominator floored at 1.
	ContentRetention float64 `json:"content_retention"`
	BlockRetention   float64 `json:"block_retention"`

	LayoutPreservation   float64 `json:"layout_preservation"`
	MatchedBlocks        int     `json:"matched_blocks"`
	ReadingOrderFidelity float64 `json:"reading_order_fidelity"`
}

// Compare evaluates the drift from before to after. Deterministic for
// identical inputs; O(N*M) in the block counts.
func (c *Comparator) Compare(before, after []layout.Block) StageComparison {
	beforeStats := AnalyzeBlocks(before, 0, c.OrderTolerancePx)
	afterStats := AnalyzeBlocks(after, 0, c.OrderTolerancePx)

	cmp := StageComparison{
		CharsDelta:       afterStats.TotalChars - beforeStats.TotalChars,
		WordsDelta:       afterStats.TotalWords - beforeStats.TotalWords,
		BlocksDelta:      afterStats.TotalBlocks - beforeStats.TotalBlocks,
		ContentRetention: float64(afterStats.TotalChars) / float64(max(beforeStats.TotalChars, 1)),
		BlockRetention:   float64(afterStats.TotalBlocks) / float64(max(beforeStats.TotalBlocks, 1)),
	}

	cmp.LayoutPreservation, cmp.MatchedBlocks = c.layoutPreservation(before, after)

	afterBoxes := make([]geometry.Box, len(after))
	for i, b := range after {
		afterBoxes[i] = b.Box
	}
	cmp.ReadingOrderFidelity = ReadingOrderScore(afterBoxes, c.OrderTolerancePx)

	return cmp
}

// layoutPreservation scores how much of the before layout survives: each
// before-block contributes its best IoU against the after set when that
// best exceeds the match threshold, 0 otherwise, averaged over all
// before-blocks.
func (c *Comparator) layoutPreservation(before, after []layout.Block) (float64, int) {
	if len(before) == 0 || len(after) == 0 {
		return 0, 0
	}
	totalIoU := 0.0
	matched := 0
	for _, b := range before {
		best := 0.0
		for _, a := range after {
			if iou := geometry.IoU(b.Box, a.Box); iou > best {
				best = iou
			}
		}
		if best > c.IoUThreshold {
			totalIoU += best
			matched++
		}
	}
	return totalIoU / float64(len(before)), matched
}
