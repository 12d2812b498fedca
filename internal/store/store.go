// Package store reads pipeline run directories: one directory per stage,
// one canonical block file per page (page_NNN.json). Loading is tolerant;
// a broken stage or page file degrades that stage's contribution without
// failing the run.
package store

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"sync"

	"github.com/MeKo-Tech/ocrqa/internal/layout"
	"golang.org/x/sync/errgroup"
)

// ErrMissingReference indicates an absent comparison input, such as a
// ground-truth file that was never provided. Metrics depending on it are
// reported as NaN rather than failing the evaluation.
var ErrMissingReference = errors.New("missing reference")

// stageOrder lists the canonical pipeline stages in processing order.
var stageOrder = []string{
	"01_blocks",
	"01a_normalized",
	"02_cleaned",
	"02a_segmented",
	"03_llmcleaned",
	"04_jsonextracted",
	"05_merged_validated",
}

// stageNames maps stage keys to display names.
var stageNames = map[string]string{
	"01_blocks":           "Block Extraction",
	"01a_normalized":      "Layout Normalization",
	"02_cleaned":          "Domain Cleanup",
	"02a_segmented":       "Segmentation",
	"03_llmcleaned":       "LLM Cleanup",
	"04_jsonextracted":    "JSON Extraction",
	"05_merged_validated": "Final Merge & Validation",
}

var pagePattern = regexp.MustCompile(`page_(\d+)`)

// StageName returns the display name for a stage key. Unknown keys are
// returned as-is.
func StageName(key string) string {
	if name, ok := stageNames[key]; ok {
		return name
	}
	return key
}

// Run is an opened pipeline run directory.
type Run struct {
	Dir    string
	ID     string
	Stages []string
	Pages  []int
}

// OpenRun scans a run directory for stage subdirectories and page files.
// Stages appear in canonical pipeline order; unrecognized stage directories
// follow in lexical order. The page set is taken from the first stage.
func OpenRun(dir string) (*Run, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading run directory %s: %w", dir, err)
	}

	present := make(map[string]bool)
	var extra []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, known := stageNames[e.Name()]; known {
			present[e.Name()] = true
		} else {
			extra = append(extra, e.Name())
		}
	}

	var stages []string
	for _, key := range stageOrder {
		if present[key] {
			stages = append(stages, key)
		}
	}
	sort.Strings(extra)
	stages = append(stages, extra...)

	if len(stages) == 0 {
		return nil, fmt.Errorf("no stage directories found in %s", dir)
	}

	run := &Run{
		Dir:    dir,
		ID:     filepath.Base(dir),
		Stages: stages,
	}
	run.Pages = discoverPages(filepath.Join(dir, stages[0]))
	return run, nil
}

// discoverPages extracts the sorted page-number set from a stage directory.
func discoverPages(stageDir string) []int {
	matches, err := filepath.Glob(filepath.Join(stageDir, "page_*.json"))
	if err != nil {
		return nil
	}
	seen := make(map[int]bool)
	for _, m := range matches {
		if n, ok := pageNumber(filepath.Base(m)); ok {
			seen[n] = true
		}
	}
	pages := make([]int, 0, len(seen))
	for n := range seen {
		pages = append(pages, n)
	}
	sort.Ints(pages)
	return pages
}

func pageNumber(name string) (int, bool) {
	m := pagePattern.FindStringSubmatch(name)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// PageBlocks loads the block file for one (stage, page) pair.
func (r *Run) PageBlocks(stage string, page int) ([]layout.Block, error) {
	pattern := filepath.Join(r.Dir, stage, fmt.Sprintf("page_%03d*.json", page))
	matches, err := filepath.Glob(pattern)
	if err != nil || len(matches) == 0 {
		return nil, fmt.Errorf("stage %s page %d: %w", stage, page, ErrMissingReference)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", matches[0], err)
	}
	blocks, err := layout.BlocksFromJSON(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", matches[0], err)
	}
	return blocks, nil
}

// StageBlocks loads every page of one stage concurrently. Pages that fail
// to load are logged and skipped; the stage contributes what it can.
func (r *Run) StageBlocks(stage string) map[int][]layout.Block {
	var mu sync.Mutex
	out := make(map[int][]layout.Block, len(r.Pages))

	var g errgroup.Group
	g.SetLimit(8)
	for _, page := range r.Pages {
		page := page
		g.Go(func() error {
			blocks, err := r.PageBlocks(stage, page)
			if err != nil {
				slog.Warn("skipping unreadable page file",
					"stage", stage, "page", page, "error", err)
				return nil
			}
			mu.Lock()
			out[page] = blocks
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// GroundTruthText loads the plain-text ground truth for a page from dir.
func GroundTruthText(dir string, page int) (string, error) {
	if dir == "" {
		return "", ErrMissingReference
	}
	path := filepath.Join(dir, fmt.Sprintf("page_%03d.txt", page))
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrMissingReference
		}
		return "", fmt.Errorf("reading ground truth %s: %w", path, err)
	}
	return string(data), nil
}
