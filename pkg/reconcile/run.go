// pkg/reconcile/run.go
package reconcile

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/google/uuid"

	"github.com/rowmend/rowmend/pkg/config"
	"github.com/rowmend/rowmend/pkg/dataset"
	"github.com/rowmend/rowmend/pkg/mapping"
	"github.com/rowmend/rowmend/pkg/model"
	"github.com/rowmend/rowmend/pkg/semdiff"
)

// batchSuffixPattern strips the optional batch suffix from a cleaner
// response filename, e.g. clean_phone_part2.txt targets column "phone".
var batchSuffixPattern = regexp.MustCompile(`_part\d+$`)

// Run executes the full reconciliation stage against a work directory laid
// out by the schema and clean stages. The mapping and the base dataset are
// required; per-column correction files are whatever the cleaner managed to
// produce.
func Run(cfg *config.Config, basePath string, logger *zap.Logger) (*Result, error) {
	runID := uuid.New().String()
	log := logger.With(zap.String("runId", runID))

	mappingPath := filepath.Join(cfg.Paths.WorkDir, cfg.Paths.MappingFile)
	colMapping, err := mapping.Load(mappingPath)
	if err != nil {
		return nil, fmt.Errorf("%w: required mapping file: %v", ErrContract, err)
	}

	base, err := dataset.LoadCSV(basePath)
	if err != nil {
		return nil, fmt.Errorf("%w: required base dataset: %v", ErrContract, err)
	}

	parser, err := semdiff.NewParser(log)
	if err != nil {
		return nil, err
	}

	// Architect row corrections are optional: a run may consist purely of
	// per-column cleaning.
	rowCorrections, err := loadRowCorrections(cfg, parser, log)
	if err != nil {
		return nil, err
	}

	batches, err := LoadCellBatches(cfg.Paths.WorkDir, cfg.Paths.CleanFilePrefix, parser, log)
	if err != nil {
		return nil, err
	}

	applier, err := NewApplier(log)
	if err != nil {
		return nil, err
	}

	return applier.Apply(base, colMapping, rowCorrections, batches)
}

// loadRowCorrections parses the architect response's semantic diff in
// full-row mode, if the response file exists.
func loadRowCorrections(cfg *config.Config, parser *semdiff.Parser, logger *zap.Logger) ([]model.Correction, error) {
	path := filepath.Join(cfg.Paths.WorkDir, cfg.Paths.ArchitectFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Info("No architect response present, skipping row corrections",
				zap.String("path", path))
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read architect response %s: %w", path, err)
	}

	corrections, err := parser.ParseResponse(string(data))
	if err != nil {
		// The response exists but has no diff block: nothing to apply.
		logger.Warn("Architect response carries no semantic diff block",
			zap.String("path", path),
			zap.Error(err))
		return nil, nil
	}
	return corrections, nil
}

// LoadCellBatches discovers per-column cleaner responses in the work
// directory and parses each in scoped mode. Files are processed in
// filename-sorted order; the filename is the sole source of the target
// column name. A missing or empty source for a column is not fatal — that
// column simply proceeds to flag-only validation.
func LoadCellBatches(workDir, prefix string, parser *semdiff.Parser, logger *zap.Logger) ([]CellBatch, error) {
	entries, err := os.ReadDir(workDir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan work directory %s: %w", workDir, err)
	}

	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ".txt") {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	var batches []CellBatch
	for _, name := range names {
		column := columnFromFilename(name, prefix)
		if column == "" {
			logger.Warn("Skipping cleaner response with no column in filename",
				zap.String("file", name))
			continue
		}

		path := filepath.Join(workDir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("Skipping unreadable cleaner response",
				zap.String("file", name),
				zap.Error(err))
			continue
		}

		corrections, err := parser.ParseScopedResponse(string(data), column)
		if err != nil {
			logger.Warn("Cleaner response carries no semantic diff block",
				zap.String("file", name),
				zap.Error(err))
			continue
		}

		batches = append(batches, CellBatch{
			Source:      name,
			ColumnName:  column,
			Corrections: corrections,
		})
	}

	return batches, nil
}

// columnFromFilename recovers the semantic column name a cleaner response
// targets: prefix and extension stripped, optional batch suffix removed.
func columnFromFilename(name, prefix string) string {
	column := strings.TrimSuffix(strings.TrimPrefix(name, prefix), ".txt")
	return batchSuffixPattern.ReplaceAllString(column, "")
}
