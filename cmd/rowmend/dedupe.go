// cmd/rowmend/dedupe.go
package main

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rowmend/rowmend/pkg/dataset"
	"github.com/rowmend/rowmend/pkg/dedupe"
	"github.com/rowmend/rowmend/pkg/mapping"
)

var dedupeCmd = &cobra.Command{
	Use:   "dedupe <input.csv>",
	Short: "Group near-duplicate rows by unique-flagged columns and drop them",
	Args:  cobra.ExactArgs(1),
	RunE:  runDedupe,
}

func runDedupe(cmd *cobra.Command, args []string) error {
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

	grouper, err := dedupe.NewGrouper(cfg.Dedupe.SimilarityThreshold, logger)
	if err != nil {
		return err
	}

	groups := grouper.FindGroups(table, colMapping)

	groupsPath := filepath.Join(cfg.Paths.WorkDir, "duplicate_groups.json")
	data, err := json.MarshalIndent(groups, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(groupsPath, data, 0644); err != nil {
		return err
	}

	deduped := dedupe.RemoveRows(table, groups)
	dedupedPath := filepath.Join(cfg.Paths.WorkDir, "deduped.csv")
	if err := dataset.SaveCSV(deduped, dedupedPath); err != nil {
		return err
	}

	logger.Info("Duplicate grouping written",
		zap.String("groups", groupsPath),
		zap.String("deduped", dedupedPath),
		zap.Int("groupCount", len(groups)),
		zap.Int("rowsKept", len(deduped.Rows)))
	return nil
}
