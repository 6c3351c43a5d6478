// cmd/rowmend/schema.go
package main

import (
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rowmend/rowmend/pkg/aiclient"
	"github.com/rowmend/rowmend/pkg/dataset"
	"github.com/rowmend/rowmend/pkg/mapping"
)

var schemaCmd = &cobra.Command{
	Use:   "schema <input.csv>",
	Short: "Ask the AI to design a schema and build the column mapping",
	Args:  cobra.ExactArgs(1),
	RunE:  runSchema,
}

func runSchema(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	table, err := dataset.LoadCSV(args[0])
	if err != nil {
		return err
	}

	client, err := aiclient.NewClient(cmd.Context(), cfg.AI, logger)
	if err != nil {
		return err
	}

	response, err := client.RunArchitect(cmd.Context(), table, cfg.Paths.WorkDir, cfg.Paths.ArchitectFile)
	if err != nil {
		return err
	}

	resolver, err := mapping.NewResolver(logger)
	if err != nil {
		return err
	}

	colMapping, err := resolver.BuildFromResponse(response)
	if err != nil {
		return err
	}

	mappingPath := filepath.Join(cfg.Paths.WorkDir, cfg.Paths.MappingFile)
	if err := mapping.Save(colMapping, mappingPath); err != nil {
		return err
	}

	logger.Info("Column mapping persisted",
		zap.String("path", mappingPath),
		zap.Int("columns", len(colMapping)))
	return nil
}
