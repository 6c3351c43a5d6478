// pkg/dedupe/grouper.go
package dedupe

import (
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/rowmend/rowmend/pkg/dataset"
	"github.com/rowmend/rowmend/pkg/model"
)

// Group is one cluster of near-duplicate rows. Row ids are 1-based. The
// first id is the row kept; the rest are removal decisions consumed before
// reconciliation.
type Group struct {
	Keep    int   `json:"keep"`
	Remove  []int `json:"remove"`
	RowIDs  []int `json:"rowIds"`
}

// Grouper finds near-duplicate rows by comparing the columns flagged unique
// in the column mapping.
type Grouper struct {
	logger    *zap.Logger
	threshold float64
}

// NewGrouper creates a grouper. threshold is the combined similarity above
// which two rows count as duplicates.
func NewGrouper(threshold float64, logger *zap.Logger) (*Grouper, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if threshold < 0 || threshold > 1 {
		return nil, errors.New("similarity threshold must be in [0,1]")
	}
	return &Grouper{logger: logger, threshold: threshold}, nil
}

// FindGroups clusters rows whose unique-column identity strings exceed the
// similarity threshold. Rows with no unique columns configured never group.
func (g *Grouper) FindGroups(table *dataset.Table, colMapping model.ColumnMapping) []Group {
	positions := uniquePositions(table, colMapping)
	if len(positions) == 0 {
		g.logger.Info("No unique columns in mapping, skipping duplicate grouping")
		return nil
	}

	identities := make([]string, len(table.Rows))
	for i, row := range table.Rows {
		parts := make([]string, len(positions))
		for j, pos := range positions {
			parts[j] = row[pos]
		}
		identities[i] = strings.Join(parts, " | ")
	}

	assigned := make([]bool, len(table.Rows))
	var groups []Group

	for i := range table.Rows {
		if assigned[i] {
			continue
		}

		group := Group{Keep: i + 1, RowIDs: []int{i + 1}}
		for j := i + 1; j < len(table.Rows); j++ {
			if assigned[j] {
				continue
			}
			if combinedSimilarity(identities[i], identities[j]) >= g.threshold {
				assigned[j] = true
				group.Remove = append(group.Remove, j+1)
				group.RowIDs = append(group.RowIDs, j+1)
			}
		}

		if len(group.Remove) > 0 {
			assigned[i] = true
			groups = append(groups, group)
		}
	}

	g.logger.Info("Duplicate grouping complete",
		zap.Int("groups", len(groups)),
		zap.Int("uniqueColumns", len(positions)))

	return groups
}

// RemoveRows returns a copy of the table with every removal decision
// applied, keeping the first row of each group.
func RemoveRows(table *dataset.Table, groups []Group) *dataset.Table {
	remove := make(map[int]struct{})
	for _, group := range groups {
		for _, rowID := range group.Remove {
			remove[rowID] = struct{}{}
		}
	}
	if len(remove) == 0 {
		return table
	}

	out := &dataset.Table{Headers: append([]string(nil), table.Headers...)}
	for i, row := range table.Rows {
		if _, drop := remove[i+1]; drop {
			continue
		}
		out.Rows = append(out.Rows, append([]string(nil), row...))
	}
	return out
}

// uniquePositions resolves the 0-based column positions that participate in
// duplicate identity.
func uniquePositions(table *dataset.Table, colMapping model.ColumnMapping) []int {
	var positions []int
	for _, entry := range colMapping.Ordered() {
		if entry.Unique && entry.Index-1 < len(table.Headers) {
			positions = append(positions, entry.Index-1)
		}
	}
	return positions
}
