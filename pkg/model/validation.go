// pkg/model/validation.go
package model

// InvalidCell identifies one cell that failed its column's regex contract.
type InvalidCell struct {
	RowID int    `json:"rowId"`
	Value string `json:"value"`
}

// ValidationResult holds the contract statistics for one column. Empty
// values always count as valid and are additionally tallied in EmptyCount.
type ValidationResult struct {
	ColumnName   string        `json:"columnName"`
	Regex        string        `json:"regex"`
	ValidCount   int           `json:"validCount"`
	InvalidCount int           `json:"invalidCount"`
	EmptyCount   int           `json:"emptyCount"`
	InvalidRows  []InvalidCell `json:"invalidRows"`
}

// Total returns the number of values examined.
func (r *ValidationResult) Total() int {
	return r.ValidCount + r.InvalidCount
}

// ValidPercentage returns ValidCount as a percentage of all examined values.
// An empty column counts as fully valid.
func (r *ValidationResult) ValidPercentage() float64 {
	total := r.Total()
	if total == 0 {
		return 100.0
	}
	return float64(r.ValidCount) / float64(total) * 100.0
}
