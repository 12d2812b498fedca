package qa

import (
	"log/slog"
	"math"
	"strings"

	"github.com/MeKo-Tech/ocrqa/internal/layout"
	"github.com/MeKo-Tech/ocrqa/internal/store"
)

// PageEvaluation is the complete evaluation of one page across all stages.
type PageEvaluation struct {
	Page   int                      `json:"page"`
	Stages map[string]*StageMetrics `json:"stages"`

	// GroundTruth is nil when no reference text exists for the page.
	GroundTruth *GroundTruthMetrics `json:"ground_truth,omitempty"`
}

// CharacterErrorRate returns the final-stage CER, or NaN without ground truth.
func (p *PageEvaluation) CharacterErrorRate() float64 {
	if p.GroundTruth == nil {
		return math.NaN()
	}
	return p.GroundTruth.CharacterErrorRate
}

// WordErrorRate returns the final-stage WER, or NaN without ground truth.
func (p *PageEvaluation) WordErrorRate() float64 {
	if p.GroundTruth == nil {
		return math.NaN()
	}
	return p.GroundTruth.WordErrorRate
}

// StageScore is one point of the per-stage quality trend.
type StageScore struct {
	Stage string  `json:"stage"`
	Score float64 `json:"score"`
}

// PipelineEvaluation is the evaluation of a complete pipeline run. It is
// built bottom-up from page evaluations and read-only once the run
// finishes.
type PipelineEvaluation struct {
	RunID      string                  `json:"run_id"`
	StageOrder []string                `json:"stage_order"`
	Pages      map[int]*PageEvaluation `json:"pages"`

	TotalContentDrop float64      `json:"total_content_drop"`
	QualityTrend     []StageScore `json:"quality_trend"`
	QualityScore     float64      `json:"quality_score"`
	ProblematicPages []int        `json:"problematic_pages"`
	Recommendations  []string     `json:"recommendations"`
}

// Evaluator computes page and run evaluations. The zero value is not
// usable; construct with NewEvaluator and override fields as needed.
type Evaluator struct {
	ConfidenceThreshold float64
	MaxContentDrop      float64

	ConfidenceWeight   float64
	ReadingOrderWeight float64
	TermWeight         float64

	OrderTolerancePx float64

	// Workers bounds page-evaluation concurrency (0 = NumCPU).
	Workers int

	// GroundTruthDir holds per-page reference text, if any.
	GroundTruthDir string

	Lexicon *TermLexicon
}

// NewEvaluator returns an evaluator with the standard thresholds and the
// built-in term lexicon.
func NewEvaluator() *Evaluator {
	return &Evaluator{
		ConfidenceThreshold: 0.7,
		MaxContentDrop:      0.15,
		ConfidenceWeight:    0.4,
		ReadingOrderWeight:  0.3,
		TermWeight:          0.3,
		OrderTolerancePx:    10,
		Lexicon:             NewTermLexicon(),
	}
}

// EvaluatePage evaluates one page across every stage of the run. Stages
// whose page file is missing or unreadable are skipped; the page degrades
// to the stages that loaded.
func (e *Evaluator) EvaluatePage(run *store.Run, page int) *PageEvaluation {
	eval := &PageEvaluation{
		Page:   page,
		Stages: make(map[string]*StageMetrics, len(run.Stages)),
	}

	var prev *StageMetrics
	var prevText string
	var lastText string
	haveStage := false

	for _, stage := range run.Stages {
		blocks, err := run.PageBlocks(stage, page)
		if err != nil {
			slog.Warn("stage unavailable for page",
				"stage", stage, "page", page, "error", err)
			continue
		}

		m := AnalyzeBlocks(blocks, e.ConfidenceThreshold, e.OrderTolerancePx)
		m.Stage = stage
		m.StageName = store.StageName(stage)

		text := combinedText(blocks)
		m.TermCount = e.Lexicon.Count(text)
		if prev != nil {
			m.SetDeltas(prev)
			m.TermPreservation = e.Lexicon.Preservation(prevText, text)
		} else {
			m.TermPreservation = 1.0
		}

		eval.Stages[stage] = &m
		prev = &m
		prevText = text
		lastText = text
		haveStage = true
	}

	if haveStage {
		if gt, err := store.GroundTruthText(e.GroundTruthDir, page); err == nil {
			metrics := CompareGroundTruth(gt, lastText)
			eval.GroundTruth = &metrics
		}
	}

	return eval
}

// compositeScore is the fixed-weight stage quality score.
func (e *Evaluator) compositeScore(m *StageMetrics) float64 {
	return e.ConfidenceWeight*m.MeanConfidence +
		e.ReadingOrderWeight*m.ReadingOrderScore +
		e.TermWeight*m.TermPreservation
}

func combinedText(blocks []layout.Block) string {
	texts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		if t := strings.TrimSpace(b.Text); t != "" {
			texts = append(texts, t)
		}
	}
	return strings.Join(texts, " ")
}
