// cmd/rowmend/clean.go
package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rowmend/rowmend/pkg/aiclient"
	"github.com/rowmend/rowmend/pkg/dataset"
	"github.com/rowmend/rowmend/pkg/mapping"
)

var cleanCmd = &cobra.Command{
	Use:   "clean <input.csv>",
	Short: "Request per-column corrections from the AI",
	Long: `Sends each contracted column's values to the AI for cleaning, one column
at a time, and stores the responses in the work directory for apply.`,
	Args: cobra.ExactArgs(1),
	RunE: runClean,
}

func runClean(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	table, err := dataset.LoadCSV(args[0])
	if err != nil {
		return err
	}

	colMapping, err := mapping.Load(filepath.Join(cfg.Paths.WorkDir, cfg.Paths.MappingFile))
	if err != nil {
		return err
	}

	client, err := aiclient.NewClient(cmd.Context(), cfg.AI, logger)
	if err != nil {
		return err
	}

	return client.RunCleaner(cmd.Context(), table, colMapping, cfg.Paths.WorkDir, cfg.Paths.CleanFilePrefix)
}
