// pkg/dataset/csv.go
package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

// LoadCSV reads an RFC4180 CSV file into a Table. The first record is the
// header row. Rows with a deviating field count are padded/truncated to the
// header width rather than rejected; upstream exports are rarely tidy.
func LoadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // tolerate ragged rows, normalized below

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse dataset %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("dataset %s is empty", path)
	}

	return NewTable(records[0], records[1:]), nil
}

// SaveCSV writes the table to path as RFC4180 CSV, header row first.
func SaveCSV(t *Table, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %s: %w", path, err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if err := writer.Write(t.Headers); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}
	for i, row := range t.Rows {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// MarshalCSV renders the table as a CSV string, used when embedding samples
// into AI prompts.
func MarshalCSV(t *Table) (string, error) {
	var sb strings.Builder
	writer := csv.NewWriter(&sb)
	if err := writer.Write(t.Headers); err != nil {
		return "", err
	}
	if err := writer.WriteAll(t.Rows); err != nil {
		return "", err
	}
	writer.Flush()
	return sb.String(), writer.Error()
}
