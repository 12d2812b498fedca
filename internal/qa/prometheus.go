package qa

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pagesEvaluated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ocrqa_pages_evaluated_total",
			Help: "Total number of pages evaluated",
		},
	)

	problematicPages = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ocrqa_problematic_pages_total",
			Help: "Total number of pages flagged for excessive content drop",
		},
	)

	contentDrop = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ocrqa_run_content_drop",
			Help:    "Run-level content drop ratio",
			Buckets: []float64{0, 0.01, 0.05, 0.1, 0.15, 0.25, 0.5, 0.75, 1},
		},
	)

	qualityScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ocrqa_run_quality_score",
			Help:    "Run-level composite quality score",
			Buckets: []float64{0, 0.2, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1},
		},
	)
)

// observeRun records run-level aggregates. The surrounding orchestration
// layer decides whether and where to expose the registry.
func observeRun(eval *PipelineEvaluation) {
	pagesEvaluated.Add(float64(len(eval.Pages)))
	problematicPages.Add(float64(len(eval.ProblematicPages)))
	contentDrop.Observe(eval.TotalContentDrop)
	qualityScore.Observe(eval.QualityScore)
}
