// cmd/rowmend/apply.go
package main

import (
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rowmend/rowmend/pkg/dataset"
	"github.com/rowmend/rowmend/pkg/ledger"
	"github.com/rowmend/rowmend/pkg/reconcile"
)

var applyCmd = &cobra.Command{
	Use:   "apply <input.csv>",
	Short: "Reconcile all AI corrections into the final dataset",
	Long: `Merges the base dataset, the persisted column mapping, and every AI
correction found in the work directory into one reconciled CSV, writing the
change ledger and pre/post validation statistics alongside it.`,
	Args: cobra.ExactArgs(1),
	RunE: runApply,
}

func runApply(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	result, err := reconcile.Run(cfg, args[0], logger)
	if err != nil {
		return err
	}

	outPath := filepath.Join(cfg.Paths.WorkDir, cfg.Paths.ReconciledFile)
	if err := dataset.SaveCSV(result.OutputTable(), outPath); err != nil {
		return err
	}

	if err := result.SaveLedger(filepath.Join(cfg.Paths.WorkDir, cfg.Paths.LedgerFile)); err != nil {
		return err
	}
	if err := result.SaveStats(filepath.Join(cfg.Paths.WorkDir, cfg.Paths.StatsFile)); err != nil {
		return err
	}

	// Audit sink is best-effort: a ledger that only made it to JSON is
	// still a complete ledger.
	if cfg.Postgres != nil {
		sink, err := ledger.NewPostgresSink(cfg.Postgres, logger)
		if err != nil {
			logger.Warn("Skipping Postgres ledger sink", zap.Error(err))
		} else {
			defer sink.Close()
			if err := sink.RecordChanges(uuid.New().String(), result.Ledger); err != nil {
				logger.Warn("Failed to record ledger to Postgres", zap.Error(err))
			}
		}
	}

	logger.Info("Reconciled dataset written",
		zap.String("path", outPath),
		zap.Int("rowsUpdated", result.RowsUpdated),
		zap.Int("flagged", result.FlaggedCount()))
	return nil
}
