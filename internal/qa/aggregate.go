package qa

import (
	"fmt"
	"sort"
	"strings"
)

// Aggregate rolls page evaluations up into run-level metrics and
// recommendations. All aggregations are sums and means over pages, so the
// result does not depend on page evaluation order.
func (e *Evaluator) Aggregate(eval *PipelineEvaluation) {
	if len(eval.Pages) == 0 {
		return
	}

	e.aggregateContentDrop(eval)
	e.aggregateQualityTrend(eval)
	e.flagProblematicPages(eval)
	eval.Recommendations = e.recommend(eval)
}

func (e *Evaluator) aggregateContentDrop(eval *PipelineEvaluation) {
	firstChars := 0
	lastChars := 0
	for _, page := range eval.Pages {
		first, last := page.firstLastStage(eval.StageOrder)
		if first == nil {
			continue
		}
		firstChars += first.TotalChars
		lastChars += last.TotalChars
	}
	eval.TotalContentDrop = 1.0 - float64(lastChars)/float64(max(firstChars, 1))
}

func (e *Evaluator) aggregateQualityTrend(eval *PipelineEvaluation) {
	eval.QualityTrend = eval.QualityTrend[:0]
	trendSum := 0.0
	for _, stage := range eval.StageOrder {
		sum := 0.0
		n := 0
		for _, page := range eval.Pages {
			if m, ok := page.Stages[stage]; ok {
				sum += e.compositeScore(m)
				n++
			}
		}
		if n == 0 {
			continue
		}
		score := sum / float64(n)
		eval.QualityTrend = append(eval.QualityTrend, StageScore{Stage: stage, Score: score})
		trendSum += score
	}
	if len(eval.QualityTrend) > 0 {
		eval.QualityScore = trendSum / float64(len(eval.QualityTrend))
	}
}

func (e *Evaluator) flagProblematicPages(eval *PipelineEvaluation) {
	eval.ProblematicPages = eval.ProblematicPages[:0]
	for num, page := range eval.Pages {
		first, last := page.firstLastStage(eval.StageOrder)
		if first == nil || first == last {
			continue
		}
		drop := 1.0 - float64(last.TotalChars)/float64(max(first.TotalChars, 1))
		if drop > e.MaxContentDrop {
			eval.ProblematicPages = append(eval.ProblematicPages, num)
		}
	}
	sort.Ints(eval.ProblematicPages)
}

// recommend derives actions from fixed threshold rules over the
// aggregates. No learned model; identical inputs give identical output.
func (e *Evaluator) recommend(eval *PipelineEvaluation) []string {
	var recs []string

	if eval.TotalContentDrop > e.MaxContentDrop {
		recs = append(recs, fmt.Sprintf(
			"HIGH: significant content loss detected (%.1f%%); review preprocessing parameters and OCR engine settings",
			eval.TotalContentDrop*100))
	}

	if len(eval.ProblematicPages) > 0 {
		recs = append(recs, fmt.Sprintf(
			"MEDIUM: pages %s show quality issues; consider manual review or ground truth annotation",
			joinInts(eval.ProblematicPages)))
	}

	if len(eval.QualityTrend) >= 2 {
		first := eval.QualityTrend[0].Score
		last := eval.QualityTrend[len(eval.QualityTrend)-1].Score
		slope := (last - first) / float64(len(eval.QualityTrend))
		if slope < -0.1 {
			recs = append(recs,
				"MEDIUM: quality decreases through pipeline stages; review stage-specific processing logic")
		}
	}

	lowConf := 0
	for _, page := range eval.Pages {
		for _, m := range page.Stages {
			lowConf += m.LowConfidenceBlocks
		}
	}
	if lowConf > 0 {
		recs = append(recs, fmt.Sprintf(
			"LOW: %d low-confidence blocks detected; consider OCR parameter tuning or manual review",
			lowConf))
	}

	return recs
}

// firstLastStage returns the metrics of the first and last stage present
// on the page, following the run's stage order.
func (p *PageEvaluation) firstLastStage(order []string) (first, last *StageMetrics) {
	for _, stage := range order {
		m, ok := p.Stages[stage]
		if !ok {
			continue
		}
		if first == nil {
			first = m
		}
		last = m
	}
	return first, last
}

func joinInts(nums []int) string {
	parts := make([]string, len(nums))
	for i, n := range nums {
		parts[i] = fmt.Sprintf("%d", n)
	}
	return strings.Join(parts, ", ")
}
