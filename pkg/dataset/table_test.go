// pkg/dataset/table_test.go
package dataset

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTableNormalizesRaggedRows(t *testing.T) {
	table := NewTable(
		[]string{"a", "b", "c"},
		[][]string{
			{"1", "2", "3"},
			{"1", "2"},
			{"1", "2", "3", "4"},
		},
	)

	assert.Equal(t, []string{"1", "2", "3"}, table.Rows[0])
	assert.Equal(t, []string{"1", "2", ""}, table.Rows[1], "short rows are padded")
	assert.Equal(t, []string{"1", "2", "3"}, table.Rows[2], "long rows are truncated")
}

func TestColumnAccess(t *testing.T) {
	table := NewTable(
		[]string{"name", "phone"},
		[][]string{{"Jane", "555"}, {"John", "556"}},
	)

	assert.Equal(t, 1, table.ColumnIndex("phone"))
	assert.Equal(t, -1, table.ColumnIndex("missing"))
	assert.Equal(t, []string{"555", "556"}, table.Column(1))

	values, err := table.ColumnByName("name")
	require.NoError(t, err)
	assert.Equal(t, []string{"Jane", "John"}, values)

	_, err = table.ColumnByName("missing")
	assert.Error(t, err)
}

func TestWithSyntheticID(t *testing.T) {
	table := NewTable([]string{"name"}, [][]string{{"Jane"}, {"John"}})
	withID := table.WithSyntheticID()

	assert.Equal(t, []string{"ID", "name"}, withID.Headers)
	assert.Equal(t, []string{"1", "Jane"}, withID.Rows[0])
	assert.Equal(t, []string{"2", "John"}, withID.Rows[1])

	// Original is untouched.
	assert.Equal(t, []string{"name"}, table.Headers)
}

func TestWithoutColumn(t *testing.T) {
	table := NewTable(
		[]string{"a", "b", "c"},
		[][]string{{"1", "2", "3"}},
	)

	out := table.WithoutColumn(1)
	assert.Equal(t, []string{"a", "c"}, out.Headers)
	assert.Equal(t, []string{"1", "3"}, out.Rows[0])

	// Out-of-range index is a no-op.
	assert.Same(t, table, table.WithoutColumn(7))
}

func TestSampleAndClone(t *testing.T) {
	table := NewTable(
		[]string{"a"},
		[][]string{{"1"}, {"2"}, {"3"}},
	)

	sample := table.Sample(2)
	require.Len(t, sample.Rows, 2)
	sample.Rows[0][0] = "mutated"
	assert.Equal(t, "1", table.Rows[0][0], "sample shares no storage")

	oversized := table.Sample(10)
	assert.Len(t, oversized.Rows, 3)

	clone := table.Clone()
	clone.Rows[2][0] = "mutated"
	assert.Equal(t, "3", table.Rows[2][0])
}

func TestCSVRoundTrip(t *testing.T) {
	table := NewTable(
		[]string{"name", "notes"},
		[][]string{
			{"Jane", "said \"hi\""},
			{"Smith, John", "plain"},
		},
	)

	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, SaveCSV(table, path))

	loaded, err := LoadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, table.Headers, loaded.Headers)
	assert.Equal(t, table.Rows, loaded.Rows)
}

func TestLoadCSVMissingFile(t *testing.T) {
	_, err := LoadCSV(filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}
