// Package report flattens pipeline evaluations into row-oriented records
// and renders them as JSON, CSV, or plain text.
package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/MeKo-Tech/ocrqa/internal/qa"
)

// Row is one flat per-(page, stage) metric record.
type Row struct {
	Page                int     `json:"page"`
	Stage               string  `json:"stage"`
	StageName           string  `json:"stage_name"`
	TotalChars          int     `json:"total_chars"`
	TotalWords          int     `json:"total_words"`
	TotalBlocks         int     `json:"total_blocks"`
	UniqueWords         int     `json:"unique_words"`
	EmptyBlocks         int     `json:"empty_blocks"`
	MeanConfidence      float64 `json:"mean_confidence"`
	LowConfidenceBlocks int     `json:"low_confidence_blocks"`
	ReadingOrderScore   float64 `json:"reading_order_score"`
	TermCount           int     `json:"term_count"`
	TermPreservation    float64 `json:"term_preservation"`
	CharsAdded          int     `json:"chars_added"`
	CharsRemoved        int     `json:"chars_removed"`
	WordsAdded          int     `json:"words_added"`
	WordsRemoved        int     `json:"words_removed"`
	BlocksAdded         int     `json:"blocks_added"`
	BlocksRemoved       int     `json:"blocks_removed"`

	// Error rates are nil when no ground truth exists for the page.
	CharacterErrorRate *float64 `json:"character_error_rate,omitempty"`
	WordErrorRate      *float64 `json:"word_error_rate,omitempty"`
}

// Flatten converts an evaluation into rows ordered by page, then stage.
func Flatten(eval *qa.PipelineEvaluation) []Row {
	pages := make([]int, 0, len(eval.Pages))
	for p := range eval.Pages {
		pages = append(pages, p)
	}
	sort.Ints(pages)

	var rows []Row
	for _, pageNum := range pages {
		page := eval.Pages[pageNum]
		for _, stage := range eval.StageOrder {
			m, ok := page.Stages[stage]
			if !ok {
				continue
			}
			row := Row{
				Page:                pageNum,
				Stage:               m.Stage,
				StageName:           m.StageName,
				TotalChars:          m.TotalChars,
				TotalWords:          m.TotalWords,
				TotalBlocks:         m.TotalBlocks,
				UniqueWords:         m.UniqueWords,
				EmptyBlocks:         m.EmptyBlocks,
				MeanConfidence:      m.MeanConfidence,
				LowConfidenceBlocks: m.LowConfidenceBlocks,
				ReadingOrderScore:   m.ReadingOrderScore,
				TermCount:           m.TermCount,
				TermPreservation:    m.TermPreservation,
				CharsAdded:          m.CharsAdded,
				CharsRemoved:        m.CharsRemoved,
				WordsAdded:          m.WordsAdded,
				WordsRemoved:        m.WordsRemoved,
				BlocksAdded:         m.BlocksAdded,
				BlocksRemoved:       m.BlocksRemoved,
			}
			if cer := page.CharacterErrorRate(); !math.IsNaN(cer) {
				row.CharacterErrorRate = &cer
			}
			if wer := page.WordErrorRate(); !math.IsNaN(wer) {
				row.WordErrorRate = &wer
			}
			rows = append(rows, row)
		}
	}
	return rows
}

// Result bundles the run summary with the flat metric rows, the shape
// serialized by document-oriented consumers.
type Result struct {
	RunID            string          `json:"run_id"`
	QualityScore     float64         `json:"quality_score"`
	TotalContentDrop float64         `json:"total_content_drop"`
	QualityTrend     []qa.StageScore `json:"quality_trend"`
	ProblematicPages []int           `json:"problematic_pages"`
	Recommendations  []string        `json:"recommendations"`
	Rows             []Row           `json:"rows"`
}

// ToJSON renders the evaluation as pretty JSON.
func ToJSON(eval *qa.PipelineEvaluation) (string, error) {
	res := Result{
		RunID:            eval.RunID,
		QualityScore:     eval.QualityScore,
		TotalContentDrop: eval.TotalContentDrop,
		QualityTrend:     eval.QualityTrend,
		ProblematicPages: eval.ProblematicPages,
		Recommendations:  eval.Recommendations,
		Rows:             Flatten(eval),
	}
	b, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ToCSV renders the flat metric rows as CSV with a header.
func ToCSV(eval *qa.PipelineEvaluation) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{
		"page", "stage", "stage_name", "total_chars", "total_words",
		"total_blocks", "unique_words", "empty_blocks", "mean_confidence",
		"low_confidence_blocks", "reading_order_score", "term_count",
		"term_preservation", "chars_added", "chars_removed", "words_added",
		"words_removed", "blocks_added", "blocks_removed",
		"character_error_rate", "word_error_rate",
	}
	if err := w.Write(header); err != nil {
		return "", err
	}

	for _, r := range Flatten(eval) {
		record := []string{
			strconv.Itoa(r.Page),
			r.Stage,
			r.StageName,
			strconv.Itoa(r.TotalChars),
			strconv.Itoa(r.TotalWords),
			strconv.Itoa(r.TotalBlocks),
			strconv.Itoa(r.UniqueWords),
			strconv.Itoa(r.EmptyBlocks),
			fmt.Sprintf("%.3f", r.MeanConfidence),
			strconv.Itoa(r.LowConfidenceBlocks),
			fmt.Sprintf("%.3f", r.ReadingOrderScore),
			strconv.Itoa(r.TermCount),
			fmt.Sprintf("%.3f", r.TermPreservation),
			strconv.Itoa(r.CharsAdded),
			strconv.Itoa(r.CharsRemoved),
			strconv.Itoa(r.WordsAdded),
			strconv.Itoa(r.WordsRemoved),
			strconv.Itoa(r.BlocksAdded),
			strconv.Itoa(r.BlocksRemoved),
			formatOptional(r.CharacterErrorRate),
			formatOptional(r.WordErrorRate),
		}
		if err := w.Write(record); err != nil {
			return "", err
		}
	}
	w.Flush()
	return buf.String(), w.Error()
}

// ToText renders a human-readable run summary.
func ToText(eval *qa.PipelineEvaluation) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Run: %s\n", eval.RunID)
	fmt.Fprintf(&sb, "Pages evaluated: %d\n", len(eval.Pages))
	fmt.Fprintf(&sb, "Quality score: %.3f\n", eval.QualityScore)
	fmt.Fprintf(&sb, "Total content drop: %.1f%%\n", eval.TotalContentDrop*100)

	if len(eval.QualityTrend) > 0 {
		sb.WriteString("Quality trend:\n")
		for _, s := range eval.QualityTrend {
			fmt.Fprintf(&sb, "  %-22s %.3f\n", s.Stage, s.Score)
		}
	}
	if len(eval.ProblematicPages) > 0 {
		fmt.Fprintf(&sb, "Problematic pages: %v\n", eval.ProblematicPages)
	}
	for _, rec := range eval.Recommendations {
		fmt.Fprintf(&sb, "  - %s\n", rec)
	}
	return sb.String()
}

// Format renders the evaluation in the requested format.
func Format(eval *qa.PipelineEvaluation, format string) (string, error) {
	switch format {
	case "json":
		return ToJSON(eval)
	case "csv":
		return ToCSV(eval)
	case "text":
		return ToText(eval), nil
	default:
		return "", fmt.Errorf("unsupported output format %q", format)
	}
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.3f", *v)
}
