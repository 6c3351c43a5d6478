// pkg/reconcile/errors.go
package reconcile

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// ErrContract marks structural failures: a missing or unparseable mapping,
// base dataset, or schema block. These always propagate and abort the stage;
// producing a silently incomplete dataset is never acceptable.
var ErrContract = errors.New("reconciliation contract error")

// ErrorCategory classifies recovered errors during reconciliation.
type ErrorCategory int

const (
	// ErrorCategoryNone means no error.
	ErrorCategoryNone ErrorCategory = iota
	// ErrorCategoryCorrectionParse is one unparsable diff line; the line is
	// skipped and processing continues.
	ErrorCategoryCorrectionParse
	// ErrorCategoryOutOfRange is a correction whose row id or column falls
	// outside the dataset; the correction is dropped.
	ErrorCategoryOutOfRange
	// ErrorCategoryUnknownColumn is a cell correction naming a semantic
	// column absent from the mapping; the correction is dropped.
	ErrorCategoryUnknownColumn
	// ErrorCategoryValidationDegradation is a malformed regex contract; the
	// column is validated fail-open.
	ErrorCategoryValidationDegradation
)

// String returns a string representation of the error category
func (ec ErrorCategory) String() string {
	switch ec {
	case ErrorCategoryNone:
		return "None"
	case ErrorCategoryCorrectionParse:
		return "CorrectionParse"
	case ErrorCategoryOutOfRange:
		return "OutOfRange"
	case ErrorCategoryUnknownColumn:
		return "UnknownColumn"
	case ErrorCategoryValidationDegradation:
		return "ValidationDegradation"
	default:
		return fmt.Sprintf("Unknown(%d)", ec)
	}
}

// ErrorTally counts recovered errors per category during one run. Every
// recovered error is logged with enough context to audit after the fact;
// the tally is what surfaces in the run summary.
type ErrorTally struct {
	logger *zap.Logger
	mu     sync.Mutex
	counts map[ErrorCategory]int
}

// NewErrorTally creates a tally.
func NewErrorTally(logger *zap.Logger) *ErrorTally {
	return &ErrorTally{
		logger: logger,
		counts: make(map[ErrorCategory]int),
	}
}

// Record counts one recovered error and logs it with its context fields.
func (t *ErrorTally) Record(category ErrorCategory, msg string, fields ...zap.Field) {
	t.mu.Lock()
	t.counts[category]++
	t.mu.Unlock()

	if t.logger != nil {
		fields = append(fields, zap.String("category", category.String()))
		t.logger.Warn(msg, fields...)
	}
}

// Count returns the number of recovered errors in one category.
func (t *ErrorTally) Count(category ErrorCategory) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.counts[category]
}

// Summary returns a copy of all per-category counts.
func (t *ErrorTally) Summary() map[ErrorCategory]int {
	t.mu.Lock()
	defer t.mu.Unlock()

	summary := make(map[ErrorCategory]int, len(t.counts))
	for category, count := range t.counts {
		summary[category] = count
	}
	return summary
}
