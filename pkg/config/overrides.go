// pkg/config/overrides.go
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// fileOverrides mirrors the subset of Config that may be set from a
// rowmend.yaml file. Zero values leave the existing setting untouched, so
// the file only needs the keys it wants to change.
type fileOverrides struct {
	AI struct {
		Model               string `yaml:"model"`
		SampleRows          int    `yaml:"sample_rows"`
		TokenBudget         int    `yaml:"token_budget"`
		RetryAttempts       *int   `yaml:"retry_attempts"`
		RetryBackoffSeconds int    `yaml:"retry_backoff_seconds"`
		ColumnDelaySeconds  *int   `yaml:"column_delay_seconds"`
	} `yaml:"ai"`
	Dedupe struct {
		SimilarityThreshold *float64 `yaml:"similarity_threshold"`
	} `yaml:"dedupe"`
	Paths struct {
		WorkDir string `yaml:"work_dir"`
	} `yaml:"paths"`
}

// ApplyFile merges overrides from a YAML file into the config. A missing
// file is not an error; a malformed one is.
func (c *Config) ApplyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var o fileOverrides
	if err := yaml.Unmarshal(data, &o); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if o.AI.Model != "" {
		c.AI.Model = o.AI.Model
	}
	if o.AI.SampleRows > 0 {
		c.AI.SampleRows = o.AI.SampleRows
	}
	if o.AI.TokenBudget > 0 {
		c.AI.TokenBudget = o.AI.TokenBudget
	}
	if o.AI.RetryAttempts != nil {
		c.AI.RetryAttempts = *o.AI.RetryAttempts
	}
	if o.AI.RetryBackoffSeconds > 0 {
		c.AI.RetryBackoff = time.Duration(o.AI.RetryBackoffSeconds) * time.Second
	}
	if o.AI.ColumnDelaySeconds != nil {
		c.AI.ColumnDelay = time.Duration(*o.AI.ColumnDelaySeconds) * time.Second
	}
	if o.Dedupe.SimilarityThreshold != nil {
		c.Dedupe.SimilarityThreshold = *o.Dedupe.SimilarityThreshold
	}
	if o.Paths.WorkDir != "" {
		c.Paths.WorkDir = o.Paths.WorkDir
	}

	return c.Validate()
}
