// cmd/rowmend/root.go
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rowmend/rowmend/pkg/config"
)

var (
	flagWorkDir    string
	flagConfigFile string
	flagVerbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "rowmend",
	Short: "AI-assisted CSV repair and patch reconciliation",
	Long: `rowmend sends samples of a raw CSV to an AI service for schema inference
and value correction, then reconciles the partial, out-of-order corrections
back into one consistent dataset with a full provenance ledger.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagWorkDir, "workdir", "", "work directory for AI responses and the column mapping")
	rootCmd.PersistentFlags().StringVar(&flagConfigFile, "config", "rowmend.yaml", "optional YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(dedupeCmd)
}

// setup loads configuration and builds the logger shared by all commands.
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := cfg.ApplyFile(flagConfigFile); err != nil {
		return nil, nil, err
	}
	if flagWorkDir != "" {
		cfg.Paths.WorkDir = flagWorkDir
	}

	if err := os.MkdirAll(cfg.Paths.WorkDir, 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create work directory %s: %w", cfg.Paths.WorkDir, err)
	}

	logger, err := newLogger(flagVerbose)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return cfg, logger, nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
