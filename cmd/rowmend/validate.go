// cmd/rowmend/validate.go
package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rowmend/rowmend/pkg/dataset"
	"github.com/rowmend/rowmend/pkg/mapping"
	"github.com/rowmend/rowmend/pkg/validate"
)

var validateCmd = &cobra.Command{
	Use:   "validate <input.csv>",
	Short: "Report regex contract validity per column without modifying anything",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
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

	validator, err := validate.NewContractValidator(logger)
	if err != nil {
		return err
	}

	for _, entry := range colMapping.Ordered() {
		if entry.IsExcluded || !entry.HasContract() {
			continue
		}
		pos := entry.Index - 1
		if pos >= len(table.Headers) {
			continue
		}

		result := validator.ValidateColumn(entry.SemanticName, entry.Regex, table.Column(pos))
		fmt.Printf("%-30s valid=%d invalid=%d empty=%d (%.1f%%)\n",
			entry.SemanticName,
			result.ValidCount,
			result.InvalidCount,
			result.EmptyCount,
			result.ValidPercentage())
	}

	return nil
}
