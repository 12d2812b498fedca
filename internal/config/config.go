//nolint:lll
package config

import (
	"fmt"
	"runtime"
)

// Config represents the complete configuration for the ocrqa tool.
// It covers detection normalization, line grouping, cross-stage comparison,
// and quality aggregation, and supports loading from configuration files,
// environment variables, and command-line flags.
type Config struct {
	// Global settings
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	// Line grouping settings
	Grouping GroupingConfig `mapstructure:"grouping" yaml:"grouping" json:"grouping"`

	// Cross-stage comparison settings
	Compare CompareConfig `mapstructure:"compare" yaml:"compare" json:"compare"`

	// Quality aggregation settings
	Quality QualityConfig `mapstructure:"quality" yaml:"quality" json:"quality"`

	// Evaluation run settings
	Evaluate EvaluateConfig `mapstructure:"evaluate" yaml:"evaluate" json:"evaluate"`

	// Output configuration
	Output OutputConfig `mapstructure:"output" yaml:"output" json:"output"`
}

// GroupingConfig contains line-grouping settings.
type GroupingConfig struct {
	// TolerancePx is the vertical band tolerance in pixels. The constant
	// is tied to the working resolution; whether it should scale with
	// source DPI is an open tuning question.
	TolerancePx float64 `mapstructure:"tolerance_px" yaml:"tolerance_px" json:"tolerance_px"`
}

// CompareConfig contains cross-stage comparison settings.
type CompareConfig struct {
	// IoUThreshold is the minimum best-IoU for a before-block to count as
	// matched in the layout preservation score.
	IoUThreshold float64 `mapstructure:"iou_threshold" yaml:"iou_threshold" json:"iou_threshold"`
	// OrderTolerancePx is the vertical slack when checking reading-order
	// regressions between adjacent blocks.
	OrderTolerancePx float64 `mapstructure:"order_tolerance_px" yaml:"order_tolerance_px" json:"order_tolerance_px"`
}

// QualityConfig contains scoring and recommendation thresholds.
type QualityConfig struct {
	ConfidenceThreshold float64 `mapstructure:"confidence_threshold" yaml:"confidence_threshold" json:"confidence_threshold"`
	MaxContentDrop      float64 `mapstructure:"max_content_drop" yaml:"max_content_drop" json:"max_content_drop"`

	// Composite score weights. They must sum to 1.
	ConfidenceWeight   float64 `mapstructure:"confidence_weight" yaml:"confidence_weight" json:"confidence_weight"`
	ReadingOrderWeight float64 `mapstructure:"reading_order_weight" yaml:"reading_order_weight" json:"reading_order_weight"`
	TermWeight         float64 `mapstructure:"term_weight" yaml:"term_weight" json:"term_weight"`

	// TermsFile points at a YAML lexicon of domain terms; empty uses the
	// built-in fallback set.
	TermsFile string `mapstructure:"terms_file" yaml:"terms_file" json:"terms_file"`
}

// EvaluateConfig contains evaluation run settings.
type EvaluateConfig struct {
	// Workers is the page-evaluation concurrency (0 = NumCPU).
	Workers int `mapstructure:"workers" yaml:"workers" json:"workers"`
	// GroundTruthDir holds per-page plain-text ground truth, if any.
	GroundTruthDir string `mapstructure:"ground_truth_dir" yaml:"ground_truth_dir" json:"ground_truth_dir"`
}

// OutputConfig contains output formatting settings.
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format" json:"format"`
	File   string `mapstructure:"file" yaml:"file" json:"file"`
}

// DefaultConfig returns the configuration defaults.
func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Grouping: GroupingConfig{
			TolerancePx: 10,
		},
		Compare: CompareConfig{
			IoUThreshold:     0.3,
			OrderTolerancePx: 10,
		},
		Quality: QualityConfig{
			ConfidenceThreshold: 0.7,
			MaxContentDrop:      0.15,
			ConfidenceWeight:    0.4,
			ReadingOrderWeight:  0.3,
			TermWeight:          0.3,
		},
		Evaluate: EvaluateConfig{
			Workers: runtime.NumCPU(),
		},
		Output: OutputConfig{
			Format: "json",
		},
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.Grouping.TolerancePx <= 0 {
		return fmt.Errorf("grouping tolerance must be positive, got %v", c.Grouping.TolerancePx)
	}
	if c.Compare.IoUThreshold < 0 || c.Compare.IoUThreshold > 1 {
		return fmt.Errorf("iou threshold must be in [0,1], got %v", c.Compare.IoUThreshold)
	}
	if c.Quality.MaxContentDrop < 0 || c.Quality.MaxContentDrop > 1 {
		return fmt.Errorf("max content drop must be in [0,1], got %v", c.Quality.MaxContentDrop)
	}
	if c.Quality.ConfidenceThreshold < 0 || c.Quality.ConfidenceThreshold > 1 {
		return fmt.Errorf("confidence threshold must be in [0,1], got %v", c.Quality.ConfidenceThreshold)
	}
	weightSum := c.Quality.ConfidenceWeight + c.Quality.ReadingOrderWeight + c.Quality.TermWeight
	if weightSum < 0.999 || weightSum > 1.001 {
		return fmt.Errorf("quality weights must sum to 1, got %v", weightSum)
	}
	if c.Evaluate.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", c.Evaluate.Workers)
	}
	switch c.Output.Format {
	case "json", "csv", "text":
	default:
		return fmt.Errorf("unsupported output format %q", c.Output.Format)
	}
	return nil
}
