package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the base name for configuration files (without extension).
	ConfigFileName = "ocrqa"

	// EnvPrefix is the prefix for environment variables.
	EnvPrefix = "OCRQA"
)

// Loader handles loading configuration from various sources.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	// Use the global viper instance to ensure flag bindings work
	return &Loader{v: viper.GetViper()}
}

// Load loads configuration from files, environment variables, and sets defaults.
// It returns the loaded configuration and any error encountered.
func (l *Loader) Load() (*Config, error) {
	l.v.SetConfigName(ConfigFileName)
	l.v.SetConfigType("yaml")

	l.addConfigPaths()
	l.v.SetEnvPrefix(EnvPrefix)
	l.v.AutomaticEnv()
	l.setDefaults()

	if err := l.v.ReadInConfig(); err != nil {
		// A missing config file is fine; defaults and env vars apply.
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := l.v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

// LoadWithFile loads configuration from an explicit file path instead of
// the default search locations.
func (l *Loader) LoadWithFile(path string) (*Config, error) {
	l.v.SetConfigFile(path)
	l.v.SetEnvPrefix(EnvPrefix)
	l.v.AutomaticEnv()
	l.setDefaults()

	if err := l.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	var config Config
	if err := l.v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

// SetConfigFile points the loader at an explicit configuration file.
func (l *Loader) SetConfigFile(path string) {
	l.v.SetConfigFile(path)
}

// GetViper exposes the underlying viper instance for flag binding.
func (l *Loader) GetViper() *viper.Viper {
	return l.v
}

func (l *Loader) addConfigPaths() {
	l.v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		l.v.AddConfigPath(filepath.Join(home, ".config", "ocrqa"))
	}
	l.v.AddConfigPath("/etc/ocrqa")
}

func (l *Loader) setDefaults() {
	def := DefaultConfig()

	l.v.SetDefault("log_level", def.LogLevel)
	l.v.SetDefault("verbose", def.Verbose)
	l.v.SetDefault("grouping.tolerance_px", def.Grouping.TolerancePx)
	l.v.SetDefault("compare.iou_threshold", def.Compare.IoUThreshold)
	l.v.SetDefault("compare.order_tolerance_px", def.Compare.OrderTolerancePx)
	l.v.SetDefault("quality.confidence_threshold", def.Quality.ConfidenceThreshold)
	l.v.SetDefault("quality.max_content_drop", def.Quality.MaxContentDrop)
	l.v.SetDefault("quality.confidence_weight", def.Quality.ConfidenceWeight)
	l.v.SetDefault("quality.reading_order_weight", def.Quality.ReadingOrderWeight)
	l.v.SetDefault("quality.term_weight", def.Quality.TermWeight)
	l.v.SetDefault("quality.terms_file", def.Quality.TermsFile)
	l.v.SetDefault("evaluate.workers", def.Evaluate.Workers)
	l.v.SetDefault("evaluate.ground_truth_dir", def.Evaluate.GroundTruthDir)
	l.v.SetDefault("output.format", def.Output.Format)
	l.v.SetDefault("output.file", def.Output.File)
}
