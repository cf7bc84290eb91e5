package config

import (
	"fmt"

	"github.com/timmy/retweets/internal/domain"
)

// PipelineConfig drives the ETL commands.
type PipelineConfig struct {
	Sources SourcesConfig `mapstructure:"sources"`
	Combine CombineConfig `mapstructure:"combine"`
	Clean   CleanConfig   `mapstructure:"clean"`
	Split   SplitConfig   `mapstructure:"split"`
	Output  OutputConfig  `mapstructure:"output"`
}

type SourcesConfig struct {
	First  SourceConfig `mapstructure:"first"`
	Second SourceConfig `mapstructure:"second"`
}

// SourceConfig is one raw CSV and the columns to take from it, in the
// order they map onto CombineConfig.Columns.
type SourceConfig struct {
	Path    string   `mapstructure:"path"`
	Columns []string `mapstructure:"columns"`
}

type CombineConfig struct {
	Columns    []string `mapstructure:"columns"`
	DateColumn string   `mapstructure:"date_column"`
	Start      string   `mapstructure:"start"`
	End        string   `mapstructure:"end"`
}

type CleanConfig struct {
	ContentColumn string  `mapstructure:"content_column"`
	LabelColumn   string  `mapstructure:"label_column"`
	OutlierCutoff float64 `mapstructure:"outlier_cutoff"`
	LeftTail      bool    `mapstructure:"left_tail"`
}

type SplitConfig struct {
	TestSize float64 `mapstructure:"test_size"`
	Seed     uint64  `mapstructure:"seed"`
}

type OutputConfig struct {
	Combined       string `mapstructure:"combined"`
	Cleaned        string `mapstructure:"cleaned"`
	Processed      string `mapstructure:"processed"`
	Train          string `mapstructure:"train"`
	Test           string `mapstructure:"test"`
	TrainSequences string `mapstructure:"train_sequences"`
}

// Validate checks column mapping and split settings.
func (c PipelineConfig) Validate() error {
	n := len(c.Combine.Columns)
	if n == 0 {
		return fmt.Errorf("pipeline.combine.columns is empty: %w", domain.ErrInvalidInput)
	}
	for name, src := range map[string]SourceConfig{"first": c.Sources.First, "second": c.Sources.Second} {
		if len(src.Columns) != n {
			return fmt.Errorf("pipeline.sources.%s.columns has %d columns, want %d: %w",
				name, len(src.Columns), n, domain.ErrInvalidInput)
		}
	}
	if c.Split.TestSize <= 0 || c.Split.TestSize >= 1 {
		return fmt.Errorf("pipeline.split.test_size %v outside (0, 1): %w", c.Split.TestSize, domain.ErrInvalidInput)
	}
	return nil
}
