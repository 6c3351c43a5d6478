// pkg/reconcile/applier.go
package reconcile

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/rowmend/rowmend/pkg/dataset"
	"github.com/rowmend/rowmend/pkg/model"
	"github.com/rowmend/rowmend/pkg/parse"
	"github.com/rowmend/rowmend/pkg/validate"
)

// Applier merges the base dataset, the column mapping, and all available
// corrections into one reconciled table plus a change ledger. It is the sole
// mutator of the dataset for the duration of a run.
type Applier struct {
	logger    *zap.Logger
	validator *validate.ContractValidator
}

// NewApplier creates an applier.
func NewApplier(logger *zap.Logger) (*Applier, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	validator, err := validate.NewContractValidator(logger)
	if err != nil {
		return nil, err
	}
	return &Applier{logger: logger, validator: validator}, nil
}

// CellBatch is one per-column corrections source. Batches are applied in
// filename-sorted order of Source; the column they target is encoded in the
// source filename, not in the diff itself.
type CellBatch struct {
	Source      string
	ColumnName  string
	Corrections []model.Correction
}

// cellKey identifies one cell of the dataset for ledger dedup.
type cellKey struct {
	rowID  int
	column string
}

// Apply runs the deterministic reconciliation sequence: rename headers,
// apply row corrections, snapshot pre-correction validity, apply cell
// corrections batch by batch, re-validate, then flag what is still invalid.
//
// The base table is mutated in place; callers that need the original must
// clone it first.
func (a *Applier) Apply(
	base *dataset.Table,
	mapping model.ColumnMapping,
	rowCorrections []model.Correction,
	batches []CellBatch,
) (*Result, error) {
	if base == nil {
		return nil, fmt.Errorf("%w: base dataset is nil", ErrContract)
	}
	if err := mapping.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrContract, err)
	}

	result := &Result{
		Reconciled:     base,
		Mapping:        mapping,
		PreValidation:  make(map[string]*model.ValidationResult),
		PostValidation: make(map[string]*model.ValidationResult),
		Tally:          NewErrorTally(a.logger),
	}
	ledger := make(map[cellKey]*model.ChangeRecord)

	// Step 1: header rename, position-authoritative.
	a.renameHeaders(base, mapping)

	// Step 2: architect row corrections.
	result.RowsUpdated = a.applyRowCorrections(base, rowCorrections, result.Tally)

	// Step 4a: pre-correction validation snapshot.
	a.validateColumns(base, mapping, result.PreValidation)

	// Step 3: per-column cell corrections, one batch at a time.
	for _, batch := range batches {
		a.applyCellBatch(base, mapping, batch, ledger, result)
	}

	// Step 4b: post-correction validation.
	a.validateColumns(base, mapping, result.PostValidation)

	// Step 5: flag everything still invalid.
	a.flagInvalid(result, ledger)

	result.Ledger = orderedLedger(ledger)

	a.logger.Info("Reconciliation complete",
		zap.Int("rowsUpdated", result.RowsUpdated),
		zap.Int("cellBatches", len(batches)),
		zap.Int("ledgerEntries", len(result.Ledger)),
		zap.Int("flagged", result.FlaggedCount()))

	return result, nil
}

// renameHeaders renames every column, excluded ones included, at its mapping
// index. Position is authoritative; a name mismatch is schema drift and only
// warrants a warning.
func (a *Applier) renameHeaders(base *dataset.Table, mapping model.ColumnMapping) {
	for _, entry := range mapping.Ordered() {
		pos := entry.Index - 1
		if pos >= len(base.Headers) {
			// Synthetic MISSING_ORIGINAL entries point past the live table.
			continue
		}
		if base.Headers[pos] != entry.OriginalKey {
			a.logger.Warn("Header at mapped position does not match original key, renaming by position",
				zap.Int("index", entry.Index),
				zap.String("header", base.Headers[pos]),
				zap.String("originalKey", entry.OriginalKey))
		}
		base.Headers[pos] = entry.SemanticName
	}
}

// applyRowCorrections overwrites whole rows from the architect sample
// rewrite. Shorter value lists patch a row prefix; longer ones are truncated
// to the header count. Returns the number of rows updated.
func (a *Applier) applyRowCorrections(base *dataset.Table, corrections []model.Correction, tally *ErrorTally) int {
	updated := 0
	for _, c := range corrections {
		idx := c.RowID - 1
		if idx < 0 || idx >= len(base.Rows) {
			tally.Record(ErrorCategoryOutOfRange, "Dropping row correction outside dataset range",
				zap.Int("rowId", c.RowID),
				zap.Int("rows", len(base.Rows)))
			continue
		}

		values := c.Values
		if len(values) > len(base.Headers) {
			values = values[:len(base.Headers)]
		}
		copy(base.Rows[idx], values)
		updated++
	}
	return updated
}

// applyCellBatch applies one per-column corrections source. The target
// column is located through the mapping by semantic name, never by raw
// header text. A ChangeRecord is written for every correction seen, changed
// or not, so the ledger is a complete audit of what the AI proposed.
func (a *Applier) applyCellBatch(
	base *dataset.Table,
	mapping model.ColumnMapping,
	batch CellBatch,
	ledger map[cellKey]*model.ChangeRecord,
	result *Result,
) {
	entry := mapping.BySemanticName(batch.ColumnName)
	if entry == nil {
		result.Tally.Record(ErrorCategoryUnknownColumn, "Dropping cell batch for column absent from mapping",
			zap.String("column", batch.ColumnName),
			zap.String("source", batch.Source))
		return
	}

	pos := entry.Index - 1
	if pos >= len(base.Headers) {
		result.Tally.Record(ErrorCategoryOutOfRange, "Dropping cell batch for column position outside dataset",
			zap.String("column", batch.ColumnName),
			zap.Int("index", entry.Index))
		return
	}

	for _, c := range batch.Corrections {
		idx := c.RowID - 1
		if idx < 0 || idx >= len(base.Rows) {
			result.Tally.Record(ErrorCategoryOutOfRange, "Dropping cell correction outside dataset range",
				zap.Int("rowId", c.RowID),
				zap.String("column", batch.ColumnName))
			continue
		}

		key := cellKey{rowID: c.RowID, column: entry.SemanticName}
		current := base.Rows[idx][pos]
		corrected := parse.StripQuotes(c.Value)
		needsChange := parse.StripQuotes(current) != corrected

		if needsChange {
			base.Rows[idx][pos] = corrected
		}

		// A repeated correction for the same cell keeps the first record:
		// needsChange stays computed from the original value, not from an
		// already-patched intermediate.
		if _, seen := ledger[key]; seen {
			continue
		}
		ledger[key] = &model.ChangeRecord{
			RowID:          c.RowID,
			ColumnName:     entry.SemanticName,
			CurrentValue:   current,
			CorrectedValue: corrected,
			NeedsChange:    needsChange,
		}
	}

	a.logger.Info("Applied cell corrections",
		zap.String("column", batch.ColumnName),
		zap.String("source", batch.Source),
		zap.Int("corrections", len(batch.Corrections)))
}

// validateColumns runs the contract validator over every non-excluded column
// that carries a real contract. Keys in the output map are semantic names.
func (a *Applier) validateColumns(base *dataset.Table, mapping model.ColumnMapping, out map[string]*model.ValidationResult) {
	for _, entry := range mapping.Ordered() {
		if entry.IsExcluded || !entry.HasContract() {
			continue
		}
		pos := entry.Index - 1
		if pos >= len(base.Headers) {
			continue
		}
		out[entry.SemanticName] = a.validator.ValidateColumn(entry.SemanticName, entry.Regex, base.Column(pos))
	}
}

// flagInvalid marks every post-correction invalid cell. Cells the AI touched
// get their existing record flagged; cells it never touched get a
// synthesized record so reporting sees them too.
func (a *Applier) flagInvalid(result *Result, ledger map[cellKey]*model.ChangeRecord) {
	for column, vr := range result.PostValidation {
		for _, invalid := range vr.InvalidRows {
			reason := fmt.Sprintf("value '%s' does not match regex: %s", invalid.Value, vr.Regex)
			key := cellKey{rowID: invalid.RowID, column: column}

			if record, ok := ledger[key]; ok {
				record.IsFlagged = true
				record.UnableToFix = true
				record.FlagReason = reason
				continue
			}

			ledger[key] = &model.ChangeRecord{
				RowID:          invalid.RowID,
				ColumnName:     column,
				CurrentValue:   invalid.Value,
				CorrectedValue: invalid.Value,
				NeedsChange:    false,
				IsFlagged:      true,
				UnableToFix:    true,
				FlagReason:     reason,
			}
		}
	}
}
