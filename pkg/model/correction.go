// pkg/model/correction.go
package model

// Correction is one AI-proposed fix parsed out of a semantic diff block.
// It comes in two shapes: a full-row rewrite (Values populated, ColumnName
// empty) from the architect pass, or a single-cell fix (ColumnName and Value
// populated) from a per-column cleaner pass.
type Correction struct {
	RowID      int      // 1-based row id as emitted by the AI
	ColumnName string   // semantic column name, cell corrections only
	Value      string   // corrected cell value, cell corrections only
	Values     []string // full corrected row in column order, row corrections only
}

// IsRowCorrection reports whether this correction rewrites an entire row.
func (c *Correction) IsRowCorrection() bool {
	return c.ColumnName == ""
}

// ChangeRecord is one provenance ledger entry describing the before/after
// state of a single cell. One record is written per cell the AI touched,
// plus synthesized records for cells that remain invalid untouched.
type ChangeRecord struct {
	RowID          int    `json:"rowId"`
	ColumnName     string `json:"columnName"`
	CurrentValue   string `json:"currentValue"`
	CorrectedValue string `json:"correctedValue"`
	NeedsChange    bool   `json:"needsChange"`
	IsFlagged      bool   `json:"isFlagged"`
	FlagReason     string `json:"flagReason,omitempty"`
	UnableToFix    bool   `json:"unableToFix"`
}
