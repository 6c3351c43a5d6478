// pkg/aiclient/batch.go
package aiclient

import (
	"fmt"
	"strings"
)

// charsPerToken is the rough serialization ratio used for budget estimates.
// Exact tokenization is model-specific; staying under budget only needs an
// approximation with margin.
const charsPerToken = 4

// idValueLine is one row of a column payload.
type idValueLine struct {
	rowID int
	value string
}

// render serializes the line the way the cleaner prompt expects it. Values
// containing commas or quotes are quoted so the scoped parser can tokenize
// the echo back.
func (l idValueLine) render() string {
	value := l.value
	if strings.ContainsAny(value, ",\"\n") {
		value = `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
	}
	return fmt.Sprintf("%d,%s", l.rowID, value)
}

// splitByBudget splits a column's id/value payload into batches whose
// serialized size stays under the token budget. Each batch becomes its own
// AI request and its own partial response file, so one oversized column
// yields several partial diffs that the applier merges later.
func splitByBudget(lines []idValueLine, tokenBudget int) [][]idValueLine {
	if tokenBudget <= 0 {
		return [][]idValueLine{lines}
	}

	charBudget := tokenBudget * charsPerToken
	var batches [][]idValueLine
	var current []idValueLine
	size := 0

	for _, line := range lines {
		lineSize := len(line.render()) + 1
		if size+lineSize > charBudget && len(current) > 0 {
			batches = append(batches, current)
			current = nil
			size = 0
		}
		current = append(current, line)
		size += lineSize
	}
	if len(current) > 0 {
		batches = append(batches, current)
	}

	return batches
}

// renderBatch joins a batch into the prompt payload.
func renderBatch(batch []idValueLine) string {
	rendered := make([]string, len(batch))
	for i, line := range batch {
		rendered[i] = line.render()
	}
	return strings.Join(rendered, "\n")
}
