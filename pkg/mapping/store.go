// pkg/mapping/store.go
package mapping

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rowmend/rowmend/pkg/model"
)

// Save persists the mapping as a JSON object keyed by original column name.
// The file is the pipeline's shared schema contract; every downstream stage
// reads it and none may mutate it.
func Save(m model.ColumnMapping, path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal column mapping: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write column mapping %s: %w", path, err)
	}
	return nil
}

// Load reads a persisted column mapping and checks its position invariant.
func Load(path string) (model.ColumnMapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read column mapping %s: %w", path, err)
	}

	var m model.ColumnMapping
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse column mapping %s: %w", path, err)
	}
	for key, entry := range m {
		entry.OriginalKey = key
	}

	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("column mapping %s is inconsistent: %w", path, err)
	}
	return m, nil
}
