// pkg/aiclient/cleaner.go
package aiclient

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/rowmend/rowmend/pkg/dataset"
	"github.com/rowmend/rowmend/pkg/model"
)

// RunCleaner requests per-column corrections for every column that carries
// a real contract, writing each response into the work directory where the
// reconciliation stage discovers it by filename.
//
// Columns are processed one at a time in mapping-index order with a fixed
// delay in between; the delay is purely a rate-limit courtesy to the
// upstream service, not an engine concern.
func (c *Client) RunCleaner(ctx context.Context, table *dataset.Table, colMapping model.ColumnMapping, workDir, filePrefix string) error {
	cleaned := 0
	for _, entry := range colMapping.Ordered() {
		if entry.IsExcluded || !entry.HasContract() {
			c.logger.Debug("Skipping column without cleaning contract",
				zap.String("column", entry.SemanticName))
			continue
		}

		pos := entry.Index - 1
		if pos >= len(table.Headers) {
			continue
		}

		if cleaned > 0 && c.cfg.ColumnDelay > 0 {
			select {
			case <-time.After(c.cfg.ColumnDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if err := c.cleanColumn(ctx, entry, table.Column(pos), workDir, filePrefix); err != nil {
			return fmt.Errorf("cleaning column %s: %w", entry.SemanticName, err)
		}
		cleaned++
	}

	c.logger.Info("Cleaner pass complete", zap.Int("columnsCleaned", cleaned))
	return nil
}

// cleanColumn sends one column's values, split into token-budget batches,
// and persists one response file per batch. Single-batch columns get the
// plain filename; multi-batch columns get a _partN suffix.
func (c *Client) cleanColumn(ctx context.Context, entry *model.MappingEntry, values []string, workDir, filePrefix string) error {
	lines := make([]idValueLine, len(values))
	for i, value := range values {
		lines[i] = idValueLine{rowID: i + 1, value: value}
	}

	batches := splitByBudget(lines, c.cfg.TokenBudget)
	c.logger.Info("Requesting column corrections",
		zap.String("column", entry.SemanticName),
		zap.Int("values", len(values)),
		zap.Int("batches", len(batches)))

	for i, batch := range batches {
		prompt := cleanerPrompt(
			entry.SemanticName,
			entry.DataType,
			entry.Description,
			entry.Example,
			entry.Regex,
			renderBatch(batch),
		)

		response, err := c.generate(ctx, prompt)
		if err != nil {
			return err
		}

		name := fmt.Sprintf("%s%s.txt", filePrefix, entry.SemanticName)
		if len(batches) > 1 {
			name = fmt.Sprintf("%s%s_part%d.txt", filePrefix, entry.SemanticName, i+1)
		}

		path := filepath.Join(workDir, name)
		if err := os.WriteFile(path, []byte(response), 0644); err != nil {
			return fmt.Errorf("failed to persist cleaner response %s: %w", path, err)
		}
	}

	return nil
}
