package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/ocrqa/internal/config"
	"github.com/MeKo-Tech/ocrqa/internal/qa"
	"github.com/MeKo-Tech/ocrqa/internal/report"
	"github.com/MeKo-Tech/ocrqa/internal/store"
)

// evaluateCmd represents the evaluate command for full-run quality analysis.
var evaluateCmd = &cobra.Command{
	Use:   "evaluate [run-dir]",
	Short: "Evaluate a complete pipeline run across all stages",
	Long: `Evaluate every page of a pipeline run directory across all stage
subdirectories, producing per-stage metrics, cross-stage deltas, composite
quality scores, and recommendations.

The run directory is expected to contain one subdirectory per pipeline
stage (01_blocks through 05_merged_validated), each holding page_NNN.json
files with extracted text blocks.

Examples:
  ocrqa evaluate runs/run_001
  ocrqa evaluate runs/run_001 --format csv --output report.csv
  ocrqa evaluate runs/run_001 --ground-truth gt/ --workers 4`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE:         runEvaluateCommand,
}

// configToEvaluator maps centralized configuration to a qa.Evaluator.
// CLI flags override config file values through Viper's precedence system.
func configToEvaluator(cfg *config.Config, cmd *cobra.Command) (*qa.Evaluator, error) {
	ev := qa.NewEvaluator()
	ev.ConfidenceThreshold = cfg.Quality.ConfidenceThreshold
	ev.MaxContentDrop = cfg.Quality.MaxContentDrop
	ev.ConfidenceWeight = cfg.Quality.ConfidenceWeight
	ev.ReadingOrderWeight = cfg.Quality.ReadingOrderWeight
	ev.TermWeight = cfg.Quality.TermWeight
	ev.OrderTolerancePx = cfg.Compare.OrderTolerancePx
	ev.Workers = cfg.Evaluate.Workers
	ev.GroundTruthDir = cfg.Evaluate.GroundTruthDir

	if cmd.Flags().Changed("workers") {
		ev.Workers, _ = cmd.Flags().GetInt("workers")
	}
	if cmd.Flags().Changed("ground-truth") {
		ev.GroundTruthDir, _ = cmd.Flags().GetString("ground-truth")
	}
	if cmd.Flags().Changed("max-content-drop") {
		ev.MaxContentDrop, _ = cmd.Flags().GetFloat64("max-content-drop")
	}
	if cmd.Flags().Changed("confidence-threshold") {
		ev.ConfidenceThreshold, _ = cmd.Flags().GetFloat64("confidence-threshold")
	}

	termsFile := cfg.Quality.TermsFile
	if cmd.Flags().Changed("terms") {
		termsFile, _ = cmd.Flags().GetString("terms")
	}
	if termsFile != "" {
		lex, err := qa.LoadTermLexicon(termsFile)
		if err != nil {
			return nil, fmt.Errorf("loading term lexicon: %w", err)
		}
		ev.Lexicon = lex
	}

	return ev, nil
}

func runEvaluateCommand(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	run, err := store.OpenRun(args[0])
	if err != nil {
		return fmt.Errorf("opening run: %w", err)
	}
	slog.Info("evaluating run", "run", run.ID, "stages", len(run.Stages), "pages", len(run.Pages))

	evaluator, err := configToEvaluator(cfg, cmd)
	if err != nil {
		return err
	}

	eval, err := evaluator.EvaluateRun(cmd.Context(), run)
	if err != nil {
		return fmt.Errorf("evaluating run: %w", err)
	}

	format := cfg.Output.Format
	if cmd.Flags().Changed("format") {
		format, _ = cmd.Flags().GetString("format")
	}
	out, err := report.Format(eval, format)
	if err != nil {
		return err
	}

	outputFile := cfg.Output.File
	if cmd.Flags().Changed("output") {
		outputFile, _ = cmd.Flags().GetString("output")
	}
	return writeOutput(cmd, outputFile, out)
}

// writeOutput writes to the named file, or stdout when the name is empty.
func writeOutput(cmd *cobra.Command, path, content string) error {
	if path == "" {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), content)
		return err
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return fmt.Errorf("writing output file: %w", err)
	}
	slog.Info("wrote report", "file", path)
	return nil
}

func init() {
	rootCmd.AddCommand(evaluateCmd)

	evaluateCmd.Flags().StringP("format", "f", "json", "output format (json, csv, text)")
	evaluateCmd.Flags().StringP("output", "o", "", "output file (default stdout)")
	evaluateCmd.Flags().IntP("workers", "w", 0, "parallel page workers (0 = number of CPUs)")
	evaluateCmd.Flags().String("ground-truth", "", "directory with page_NNN.txt reference text")
	evaluateCmd.Flags().String("terms", "", "YAML file with domain terms to track")
	evaluateCmd.Flags().Float64("max-content-drop", 0.15, "content drop ratio above which a page is flagged")
	evaluateCmd.Flags().Float64("confidence-threshold", 0.7, "confidence below which a block counts as low-confidence")
}
