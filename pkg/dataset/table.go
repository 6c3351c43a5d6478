// pkg/dataset/table.go
package dataset

import (
	"fmt"
	"strconv"

	"github.com/rowmend/rowmend/pkg/model"
)

// Table is the in-memory dataset: one header row plus data rows, all values
// kept as strings. During a pipeline run the reconciliation applier is the
// table's sole mutator.
type Table struct {
	Headers []string
	Rows    [][]string
}

// NewTable builds a table, padding or truncating rows to the header width so
// that every row has the same number of cells.
func NewTable(headers []string, rows [][]string) *Table {
	t := &Table{Headers: headers, Rows: make([][]string, 0, len(rows))}
	for _, row := range rows {
		t.Rows = append(t.Rows, t.normalizeRow(row))
	}
	return t
}

func (t *Table) normalizeRow(row []string) []string {
	if len(row) == len(t.Headers) {
		return row
	}
	normalized := make([]string, len(t.Headers))
	copy(normalized, row)
	return normalized
}

// ColumnIndex returns the 0-based position of a header, or -1.
func (t *Table) ColumnIndex(header string) int {
	for i, h := range t.Headers {
		if h == header {
			return i
		}
	}
	return -1
}

// Column returns all values of the column at the given 0-based position.
func (t *Table) Column(index int) []string {
	values := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		values[i] = row[index]
	}
	return values
}

// ColumnByName returns all values of the named column.
func (t *Table) ColumnByName(header string) ([]string, error) {
	idx := t.ColumnIndex(header)
	if idx < 0 {
		return nil, fmt.Errorf("column %q not found in dataset", header)
	}
	return t.Column(idx), nil
}

// WithSyntheticID returns a copy of the table with a 1-based ID column
// prepended. Samples sent to the AI carry this column so corrections can be
// keyed by row id; it is never written back to output.
func (t *Table) WithSyntheticID() *Table {
	headers := append([]string{model.IDColumn}, t.Headers...)
	rows := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		rows[i] = append([]string{strconv.Itoa(i + 1)}, row...)
	}
	return &Table{Headers: headers, Rows: rows}
}

// WithoutColumn returns a copy of the table with the column at the given
// 0-based position removed.
func (t *Table) WithoutColumn(index int) *Table {
	if index < 0 || index >= len(t.Headers) {
		return t
	}
	headers := make([]string, 0, len(t.Headers)-1)
	headers = append(headers, t.Headers[:index]...)
	headers = append(headers, t.Headers[index+1:]...)

	rows := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		out := make([]string, 0, len(row)-1)
		out = append(out, row[:index]...)
		out = append(out, row[index+1:]...)
		rows[i] = out
	}
	return &Table{Headers: headers, Rows: rows}
}

// Sample returns up to n leading rows as a new table sharing no storage with
// the original.
func (t *Table) Sample(n int) *Table {
	if n > len(t.Rows) {
		n = len(t.Rows)
	}
	rows := make([][]string, n)
	for i := 0; i < n; i++ {
		rows[i] = append([]string(nil), t.Rows[i]...)
	}
	return &Table{Headers: append([]string(nil), t.Headers...), Rows: rows}
}

// Clone deep-copies the table.
func (t *Table) Clone() *Table {
	rows := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		rows[i] = append([]string(nil), row...)
	}
	return &Table{Headers: append([]string(nil), t.Headers...), Rows: rows}
}
