// pkg/model/mapping.go
package model

import (
	"fmt"
	"sort"
	"strings"
)

// CatchAllRegex is the sentinel contract meaning "no contract, skip cleaning
// and skip validation" for a column.
const CatchAllRegex = "^.*$"

// Synthetic name prefixes used when the AI schema and the original sample
// disagree on column count.
const (
	UnmappedPrefix        = "UNMAPPED_"
	MissingOriginalPrefix = "MISSING_ORIGINAL_"
)

// IDColumn is the synthetic row-identifier column prepended to samples sent
// to the AI. It is never round-tripped into output.
const IDColumn = "ID"

// MappingEntry describes the correspondence between one original column and
// its AI-assigned semantic definition. Index is 1-based and authoritative;
// the names are advisory.
type MappingEntry struct {
	OriginalKey  string `json:"-"` // map key in the persisted file
	SemanticName string `json:"name"`
	IsExcluded   bool   `json:"isExcluded"`
	Unique       bool   `json:"unique"`
	Index        int    `json:"index"`
	DataType     string `json:"dataType"`
	Description  string `json:"description"`
	Example      string `json:"example"`
	Regex        string `json:"regex"`
}

// HasContract reports whether the entry carries a real regex contract.
// The catch-all sentinel and the empty string both mean "no contract".
func (e *MappingEntry) HasContract() bool {
	return e.Regex != "" && e.Regex != CatchAllRegex
}

// IsSynthetic reports whether this entry was fabricated to pad a column-count
// mismatch between the original sample and the AI schema.
func (e *MappingEntry) IsSynthetic() bool {
	return strings.HasPrefix(e.SemanticName, UnmappedPrefix) ||
		strings.HasPrefix(e.OriginalKey, MissingOriginalPrefix)
}

// ColumnMapping is the persisted original<->semantic column correspondence
// for one pipeline run. Keyed by original header; Index values form the
// contiguous range 1..N. Built once, read-only afterwards.
type ColumnMapping map[string]*MappingEntry

// Ordered returns the entries sorted by Index.
func (m ColumnMapping) Ordered() []*MappingEntry {
	entries := make([]*MappingEntry, 0, len(m))
	for key, e := range m {
		e.OriginalKey = key
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Index < entries[j].Index
	})
	return entries
}

// ByIndex returns the entry at the given 1-based index, or nil.
func (m ColumnMapping) ByIndex(index int) *MappingEntry {
	for key, e := range m {
		if e.Index == index {
			e.OriginalKey = key
			return e
		}
	}
	return nil
}

// BySemanticName returns the entry whose AI-assigned name matches, or nil.
func (m ColumnMapping) BySemanticName(name string) *MappingEntry {
	for key, e := range m {
		if e.SemanticName == name {
			e.OriginalKey = key
			return e
		}
	}
	return nil
}

// Validate checks the positional invariant: one entry per column position,
// indices exactly 1..N with no gaps or duplicates.
func (m ColumnMapping) Validate() error {
	if len(m) == 0 {
		return fmt.Errorf("column mapping is empty")
	}

	seen := make(map[int]string, len(m))
	for key, e := range m {
		if e.Index < 1 || e.Index > len(m) {
			return fmt.Errorf("column %q has index %d outside range 1..%d", key, e.Index, len(m))
		}
		if prev, ok := seen[e.Index]; ok {
			return fmt.Errorf("columns %q and %q share index %d", prev, key, e.Index)
		}
		seen[e.Index] = key
	}
	return nil
}
