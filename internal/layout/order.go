package layout

import "sort"

// SortReadingOrder returns blocks sorted ascending by box top-y. The sort
// is stable, so co-linear blocks (multi-column layouts) keep their prior
// relative order; this model is not column-aware.
func SortReadingOrder(blocks []Block) []Block {
	out := make([]Block, len(blocks))
	copy(out, blocks)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Box.MinY < out[j].Box.MinY
	})
	return out
}
