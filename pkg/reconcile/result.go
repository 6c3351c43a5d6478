// pkg/reconcile/result.go
package reconcile

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/rowmend/rowmend/pkg/dataset"
	"github.com/rowmend/rowmend/pkg/model"
)

// Result holds everything one reconciliation run produced: the patched
// table, the provenance ledger, and validity statistics from before and
// after cell corrections.
type Result struct {
	Reconciled     *dataset.Table
	Mapping        model.ColumnMapping
	Ledger         []*model.ChangeRecord
	PreValidation  map[string]*model.ValidationResult
	PostValidation map[string]*model.ValidationResult
	RowsUpdated    int
	Tally          *ErrorTally
}

// FlaggedCount returns the number of ledger entries flagged for review.
func (r *Result) FlaggedCount() int {
	n := 0
	for _, record := range r.Ledger {
		if record.IsFlagged {
			n++
		}
	}
	return n
}

// ImprovementPercent returns the validity delta for one column, in
// percentage points, between the pre- and post-correction snapshots.
func (r *Result) ImprovementPercent(column string) float64 {
	pre, okPre := r.PreValidation[column]
	post, okPost := r.PostValidation[column]
	if !okPre || !okPost {
		return 0
	}
	return post.ValidPercentage() - pre.ValidPercentage()
}

// OutputTable returns the reconciled table with excluded columns dropped.
// Exclusion only affects output; positions inside the run are never shifted.
func (r *Result) OutputTable() *dataset.Table {
	out := r.Reconciled.Clone()

	// Collect excluded positions, then drop from the right so earlier
	// positions stay valid.
	var positions []int
	for _, entry := range r.Mapping.Ordered() {
		if entry.IsExcluded && entry.Index-1 < len(out.Headers) {
			positions = append(positions, entry.Index-1)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(positions)))
	for _, pos := range positions {
		out = out.WithoutColumn(pos)
	}
	return out
}

// statsSnapshot is the serialized form of the pre/post validation maps.
type statsSnapshot struct {
	Pre         map[string]*model.ValidationResult `json:"pre"`
	Post        map[string]*model.ValidationResult `json:"post"`
	RowsUpdated int                                `json:"rowsUpdated"`
	Flagged     int                                `json:"flagged"`
}

// SaveLedger writes the change ledger as JSON for the report generator.
func (r *Result) SaveLedger(path string) error {
	data, err := json.MarshalIndent(r.Ledger, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal change ledger: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write change ledger %s: %w", path, err)
	}
	return nil
}

// SaveStats writes the pre/post validation statistics as JSON.
func (r *Result) SaveStats(path string) error {
	snapshot := statsSnapshot{
		Pre:         r.PreValidation,
		Post:        r.PostValidation,
		RowsUpdated: r.RowsUpdated,
		Flagged:     r.FlaggedCount(),
	}
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal validation statistics: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write validation statistics %s: %w", path, err)
	}
	return nil
}

// orderedLedger flattens the ledger map into a deterministic slice, sorted
// by row id then column name.
func orderedLedger(ledger map[cellKey]*model.ChangeRecord) []*model.ChangeRecord {
	out := make([]*model.ChangeRecord, 0, len(ledger))
	for _, record := range ledger {
		out = append(out, record)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RowID != out[j].RowID {
			return out[i].RowID < out[j].RowID
		}
		return out[i].ColumnName < out[j].ColumnName
	})
	return out
}
