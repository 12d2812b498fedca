package cmd

import (
	"encoding/json"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/ocrqa/internal/qa"
	"github.com/MeKo-Tech/ocrqa/internal/store"
)

// checkCmd represents the check command for a quick two-stage comparison.
var checkCmd = &cobra.Command{
	Use:   "check [run-dir]",
	Short: "Quick content-drop check between two pipeline stages",
	Long: `Compare two stages of a pipeline run page by page and report content
retention, block retention, and layout preservation. Defaults to comparing
the first stage against the last.

This is a fast sanity check; use "evaluate" for the full quality analysis.

Examples:
  ocrqa check runs/run_001
  ocrqa check runs/run_001 --from 01_blocks --to 03_reading_order
  ocrqa check runs/run_001 --format json`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE:         runCheckCommand,
}

type pageCheck struct {
	Page int `json:"page"`
	qa.StageComparison
}

type checkResult struct {
	RunID     string      `json:"run_id"`
	FromStage string      `json:"from_stage"`
	ToStage   string      `json:"to_stage"`
	Pages     []pageCheck `json:"pages"`

	MeanContentRetention float64 `json:"mean_content_retention"`
	DroppedPages         []int   `json:"dropped_pages"`
}

func runCheckCommand(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	run, err := store.OpenRun(args[0])
	if err != nil {
		return fmt.Errorf("opening run: %w", err)
	}
	if len(run.Stages) < 2 {
		return fmt.Errorf("run %s has %d stage(s); need at least two to compare", run.ID, len(run.Stages))
	}

	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")
	if from == "" {
		from = run.Stages[0]
	}
	if to == "" {
		to = run.Stages[len(run.Stages)-1]
	}
	for _, stage := range []string{from, to} {
		if !slices.Contains(run.Stages, stage) {
			return fmt.Errorf("stage %q not found in run (have %s)", stage, strings.Join(run.Stages, ", "))
		}
	}

	maxDrop := cfg.Quality.MaxContentDrop
	if cmd.Flags().Changed("max-content-drop") {
		maxDrop, _ = cmd.Flags().GetFloat64("max-content-drop")
	}
	comparator := qa.NewComparator(cfg.Compare.IoUThreshold, cfg.Compare.OrderTolerancePx)

	result := checkResult{RunID: run.ID, FromStage: from, ToStage: to}
	beforePages := run.StageBlocks(from)
	afterPages := run.StageBlocks(to)

	var retentionSum float64
	for _, page := range run.Pages {
		cmp := comparator.Compare(beforePages[page], afterPages[page])
		result.Pages = append(result.Pages, pageCheck{Page: page, StageComparison: cmp})
		retentionSum += cmp.ContentRetention
		if cmp.ContentRetention < 1-maxDrop {
			result.DroppedPages = append(result.DroppedPages, page)
		}
	}
	if len(result.Pages) > 0 {
		result.MeanContentRetention = retentionSum / float64(len(result.Pages))
	}
	sort.Ints(result.DroppedPages)

	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "json":
		b, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(b))
		return err
	case "text":
		return printCheckText(cmd, &result)
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

func printCheckText(cmd *cobra.Command, res *checkResult) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run: %s (%s -> %s)\n", res.RunID, res.FromStage, res.ToStage)
	fmt.Fprintf(out, "Mean content retention: %.1f%%\n", res.MeanContentRetention*100)
	for _, p := range res.Pages {
		fmt.Fprintf(out, "  page %3d: retention %.2f blocks %+d layout %.2f\n",
			p.Page, p.ContentRetention, p.BlocksDelta, p.LayoutPreservation)
	}
	if len(res.DroppedPages) > 0 {
		fmt.Fprintf(out, "Pages with significant content loss: %v\n", res.DroppedPages)
	} else {
		fmt.Fprintln(out, "No significant content loss detected")
	}
	return nil
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().String("from", "", "stage to compare from (default first stage)")
	checkCmd.Flags().String("to", "", "stage to compare to (default last stage)")
	checkCmd.Flags().StringP("format", "f", "text", "output format (json, text)")
	checkCmd.Flags().Float64("max-content-drop", 0.15, "retention below 1-drop flags the page")
}
