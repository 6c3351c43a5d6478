// pkg/ledger/postgres.go
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/rowmend/rowmend/pkg/config"
	"github.com/rowmend/rowmend/pkg/model"
)

// PostgresSink records change ledger entries to a tracking table for audit.
// It is optional: runs without Postgres configuration write the ledger to
// JSON only.
type PostgresSink struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewPostgresSink connects to PostgreSQL and ensures the tracking table
// exists.
func NewPostgresSink(cfg *config.PostgresConfig, logger *zap.Logger) (*PostgresSink, error) {
	if cfg == nil {
		return nil, errors.New("postgres configuration cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	db, err := sqlx.Connect("postgres", cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	sink := &PostgresSink{db: db, logger: logger}
	if err := sink.setupTrackingTable(); err != nil {
		return nil, fmt.Errorf("failed to setup tracking table: %w", err)
	}

	return sink, nil
}

// setupTrackingTable ensures the cell_corrections tracking table exists.
func (s *PostgresSink) setupTrackingTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	createTableSQL := `
		CREATE TABLE IF NOT EXISTS public.cell_corrections (
			id SERIAL PRIMARY KEY,
			run_id TEXT NOT NULL,
			row_id INTEGER NOT NULL,
			column_name TEXT NOT NULL,
			current_value TEXT,
			corrected_value TEXT,
			needs_change BOOLEAN NOT NULL,
			is_flagged BOOLEAN NOT NULL,
			flag_reason TEXT,
			unable_to_fix BOOLEAN NOT NULL,
			recorded_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
		)
	`
	_, err := s.db.ExecContext(ctx, createTableSQL)
	if err != nil {
		return fmt.Errorf("failed to create tracking table: %w", err)
	}

	s.logger.Info("Ensured cell_corrections table exists")
	return nil
}

// RecordChanges batch inserts ledger entries for one run inside a single
// transaction.
func (s *PostgresSink) RecordChanges(runID string, records []*model.ChangeRecord) error {
	if len(records) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.logger.Error("Failed to rollback transaction",
					zap.Error(rbErr),
					zap.Error(err))
			}
		}
	}()

	stmt, err := tx.PreparexContext(ctx, `
		INSERT INTO public.cell_corrections
		(run_id, row_id, column_name, current_value, corrected_value,
		 needs_change, is_flagged, flag_reason, unable_to_fix)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, record := range records {
		_, err = stmt.ExecContext(ctx,
			runID,
			record.RowID,
			record.ColumnName,
			record.CurrentValue,
			record.CorrectedValue,
			record.NeedsChange,
			record.IsFlagged,
			record.FlagReason,
			record.UnableToFix,
		)
		if err != nil {
			return fmt.Errorf("failed to insert ledger entry: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info("Recorded change ledger", zap.Int("count", len(records)))
	return nil
}

// Close releases the database connection.
func (s *PostgresSink) Close() error {
	return s.db.Close()
}
