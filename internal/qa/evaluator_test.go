package qa

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/MeKo-Tech/ocrqa/internal/layout"
	"github.com/MeKo-Tech/ocrqa/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRunStage(t *testing.T, runDir, stage string, pages map[int][]layout.Block) {
	t.Helper()
	dir := filepath.Join(runDir, stage)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for page, blocks := range pages {
		data, err := layout.BlocksToJSON(blocks)
		require.NoError(t, err)
		name := fmt.Sprintf("page_%03d.json", page)
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
	}
}

func TestEvaluatePage_OrderToleranceApplied(t *testing.T) {
	dir := t.TempDir()
	// Two blocks listed bottom-first, 100 px apart vertically.
	writeRunStage(t, dir, "01_blocks", map[int][]layout.Block{
		1: {
			block("second line", 0, 100, 120, 120, 0.9),
			block("first line", 0, 0, 110, 20, 0.9),
		},
	})

	run, err := store.OpenRun(dir)
	require.NoError(t, err)

	e := NewEvaluator()
	page := e.EvaluatePage(run, 1)
	assert.InDelta(t, 0.5, page.Stages["01_blocks"].ReadingOrderScore, 1e-9)

	e.OrderTolerancePx = 1000
	page = e.EvaluatePage(run, 1)
	assert.InDelta(t, 1.0, page.Stages["01_blocks"].ReadingOrderScore, 1e-9)
}

func TestEvaluatePage_StagesAndDeltas(t *testing.T) {
	dir := t.TempDir()
	writeRunStage(t, dir, "01_blocks", map[int][]layout.Block{
		1: {block("patient takes medication daily", 0, 0, 200, 20, 0.9)},
	})
	writeRunStage(t, dir, "02_cleaned", map[int][]layout.Block{
		1: {block("patient takes daily", 0, 0, 200, 20, 0.95)},
	})

	run, err := store.OpenRun(dir)
	require.NoError(t, err)

	e := NewEvaluator()
	page := e.EvaluatePage(run, 1)

	require.Len(t, page.Stages, 2)
	first := page.Stages["01_blocks"]
	second := page.Stages["02_cleaned"]

	assert.Equal(t, "Block Extraction", first.StageName)
	assert.Equal(t, 2, first.TermCount)
	assert.InDelta(t, 1.0, first.TermPreservation, 1e-9)

	assert.Positive(t, second.CharsRemoved)
	assert.Equal(t, 0, second.CharsAdded)
	// "medication" dropped, "patient" survived.
	assert.InDelta(t, 0.5, second.TermPreservation, 1e-9)

	// No ground truth configured.
	assert.Nil(t, page.GroundTruth)
	assert.True(t, math.IsNaN(page.CharacterErrorRate()))
	assert.True(t, math.IsNaN(page.WordErrorRate()))
}

func TestEvaluatePage_GroundTruth(t *testing.T) {
	dir := t.TempDir()
	writeRunStage(t, dir, "01_blocks", map[int][]layout.Block{
		1: {block("hello world", 0, 0, 100, 20, 0.9)},
	})
	gtDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(gtDir, "page_001.txt"), []byte("hello world"), 0o644))

	run, err := store.OpenRun(dir)
	require.NoError(t, err)

	e := NewEvaluator()
	e.GroundTruthDir = gtDir
	page := e.EvaluatePage(run, 1)

	require.NotNil(t, page.GroundTruth)
	assert.InDelta(t, 0.0, page.CharacterErrorRate(), 1e-9)
	assert.InDelta(t, 0.0, page.WordErrorRate(), 1e-9)
}

func TestEvaluateRun_ContentDropFlagsPage(t *testing.T) {
	dir := t.TempDir()
	// Page 1: 100 chars -> 70 chars, a 30% drop over the 15% threshold.
	writeRunStage(t, dir, "01_blocks", map[int][]layout.Block{
		1: {block(strings.Repeat("a", 100), 0, 0, 500, 20, 0.9)},
		2: {block(strings.Repeat("b", 50), 0, 0, 300, 20, 0.9)},
	})
	writeRunStage(t, dir, "02_cleaned", map[int][]layout.Block{
		1: {block(strings.Repeat("a", 70), 0, 0, 400, 20, 0.9)},
		2: {block(strings.Repeat("b", 50), 0, 0, 300, 20, 0.9)},
	})

	run, err := store.OpenRun(dir)
	require.NoError(t, err)

	e := NewEvaluator()
	eval, err := e.EvaluateRun(context.Background(), run)
	require.NoError(t, err)

	assert.Equal(t, []int{1}, eval.ProblematicPages)
	// 150 chars in, 120 out.
	assert.InDelta(t, 1.0-120.0/150.0, eval.TotalContentDrop, 1e-9)
	assert.NotEmpty(t, eval.Recommendations)
	assert.Contains(t, eval.Recommendations[0], "HIGH")
}

func TestEvaluateRun_QualityTrend(t *testing.T) {
	dir := t.TempDir()
	writeRunStage(t, dir, "01_blocks", map[int][]layout.Block{
		1: {block("stable content here", 0, 0, 150, 20, 0.8)},
	})
	writeRunStage(t, dir, "03_llmcleaned", map[int][]layout.Block{
		1: {block("stable content here", 0, 0, 150, 20, 0.9)},
	})

	run, err := store.OpenRun(dir)
	require.NoError(t, err)

	e := NewEvaluator()
	eval, err := e.EvaluateRun(context.Background(), run)
	require.NoError(t, err)

	require.Len(t, eval.QualityTrend, 2)
	assert.Equal(t, "01_blocks", eval.QualityTrend[0].Stage)
	// score = 0.4*confidence + 0.3*reading_order + 0.3*term_preservation
	assert.InDelta(t, 0.4*0.8+0.3+0.3, eval.QualityTrend[0].Score, 1e-9)
	assert.InDelta(t, 0.4*0.9+0.3+0.3, eval.QualityTrend[1].Score, 1e-9)
	assert.InDelta(t, (eval.QualityTrend[0].Score+eval.QualityTrend[1].Score)/2, eval.QualityScore, 1e-9)
	assert.Empty(t, eval.ProblematicPages)
}

func TestEvaluateRun_MissingStagePageDegrades(t *testing.T) {
	dir := t.TempDir()
	writeRunStage(t, dir, "01_blocks", map[int][]layout.Block{
		1: {block("full page", 0, 0, 100, 20, 0.9)},
		2: {block("also here", 0, 0, 100, 20, 0.9)},
	})
	// 02_cleaned only has page 1.
	writeRunStage(t, dir, "02_cleaned", map[int][]layout.Block{
		1: {block("full page", 0, 0, 100, 20, 0.9)},
	})

	run, err := store.OpenRun(dir)
	require.NoError(t, err)

	e := NewEvaluator()
	eval, err := e.EvaluateRun(context.Background(), run)
	require.NoError(t, err)

	require.Len(t, eval.Pages, 2)
	assert.Len(t, eval.Pages[1].Stages, 2)
	assert.Len(t, eval.Pages[2].Stages, 1)
}

func TestEvaluateRun_Cancellation(t *testing.T) {
	dir := t.TempDir()
	writeRunStage(t, dir, "01_blocks", map[int][]layout.Block{
		1: {block("x", 0, 0, 10, 10, 0.9)},
	})
	run, err := store.OpenRun(dir)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := NewEvaluator()
	_, err = e.EvaluateRun(ctx, run)
	require.ErrorIs(t, err, context.Canceled)
}

func TestEvaluateRun_NoStages(t *testing.T) {
	e := NewEvaluator()
	_, err := e.EvaluateRun(context.Background(), &store.Run{})
	require.Error(t, err)
}
