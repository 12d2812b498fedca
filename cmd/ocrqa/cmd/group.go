package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/ocrqa/internal/detection"
	"github.com/MeKo-Tech/ocrqa/internal/layout"
)

// groupCmd represents the group command for normalizing raw detections
// into reading-order text blocks.
var groupCmd = &cobra.Command{
	Use:   "group [detections.json]",
	Short: "Normalize raw detections and group them into text lines",
	Long: `Read raw OCR detections from a JSON file, normalize their geometry
and confidence against the page dimensions, group them into horizontal
lines, and emit the resulting blocks in reading order.

Detections may use absolute pixel coordinates or fractional coordinates;
fractional input is scaled to the page size given by --width and --height.

Examples:
  ocrqa group detections.json --width 2480 --height 3508
  ocrqa group detections.json --width 2480 --height 3508 --tolerance 14 -o blocks.json`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE:         runGroupCommand,
}

func runGroupCommand(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	width, _ := cmd.Flags().GetFloat64("width")
	height, _ := cmd.Flags().GetFloat64("height")
	if width <= 0 || height <= 0 {
		return fmt.Errorf("page dimensions must be positive, got %.0fx%.0f", width, height)
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading detections: %w", err)
	}
	raws, err := detection.RawFromJSON(data)
	if err != nil {
		return fmt.Errorf("parsing detections: %w", err)
	}

	dets := detection.NewNormalizer(width, height).NormalizeAll(raws)
	if dropped := len(raws) - len(dets); dropped > 0 {
		slog.Warn("dropped invalid detections", "count", dropped)
	}

	tolerance := cfg.Grouping.TolerancePx
	if cmd.Flags().Changed("tolerance") {
		tolerance, _ = cmd.Flags().GetFloat64("tolerance")
	}
	blocks := layout.NewLineGrouper(tolerance).Group(dets)
	slog.Info("grouped detections", "detections", len(dets), "blocks", len(blocks))

	out, err := layout.BlocksToJSON(blocks)
	if err != nil {
		return fmt.Errorf("encoding blocks: %w", err)
	}

	outputFile, _ := cmd.Flags().GetString("output")
	return writeOutput(cmd, outputFile, string(out))
}

func init() {
	rootCmd.AddCommand(groupCmd)

	groupCmd.Flags().Float64("width", 0, "page width in pixels (required)")
	groupCmd.Flags().Float64("height", 0, "page height in pixels (required)")
	groupCmd.Flags().Float64("tolerance", 10, "vertical tolerance in pixels for same-line grouping")
	groupCmd.Flags().StringP("output", "o", "", "output file (default stdout)")
	_ = groupCmd.MarkFlagRequired("width")
	_ = groupCmd.MarkFlagRequired("height")
}
