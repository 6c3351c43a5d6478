// pkg/reconcile/applier_test.go
package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rowmend/rowmend/pkg/dataset"
	"github.com/rowmend/rowmend/pkg/model"
)

func newApplier(t *testing.T) *Applier {
	t.Helper()
	a, err := NewApplier(zap.NewNop())
	require.NoError(t, err)
	return a
}

// phoneMapping maps ["Name","Phone"] to name (no contract) and phone
// (+1 US number contract).
func phoneMapping() model.ColumnMapping {
	return model.ColumnMapping{
		"Name": {
			SemanticName: "name",
			Index:        1,
			DataType:     "string",
			Regex:        model.CatchAllRegex,
		},
		"Phone": {
			SemanticName: "phone",
			Index:        2,
			DataType:     "string",
			Regex:        `^\+1\d{10}$`,
		},
	}
}

func phoneTable() *dataset.Table {
	return dataset.NewTable(
		[]string{"Name", "Phone"},
		[][]string{
			{"Jane Doe", "555-1234"},
			{"John Smith", "+15559876543"},
		},
	)
}

func TestApplyHeaderRename(t *testing.T) {
	a := newApplier(t)

	base := phoneTable()
	result, err := a.Apply(base, phoneMapping(), nil, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "phone"}, result.Reconciled.Headers)
}

func TestApplyHeaderRenamePositionWinsOverName(t *testing.T) {
	a := newApplier(t)

	// Headers drifted from what the mapping recorded; position is
	// authoritative and the rename happens anyway.
	base := dataset.NewTable(
		[]string{"FullName", "PhoneNumber"},
		[][]string{{"Jane", "+15551234567"}},
	)
	result, err := a.Apply(base, phoneMapping(), nil, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "phone"}, result.Reconciled.Headers)
}

func TestApplyCellCorrectionFixesInvalidValue(t *testing.T) {
	a := newApplier(t)

	base := phoneTable()
	batches := []CellBatch{{
		Source:     "clean_phone.txt",
		ColumnName: "phone",
		Corrections: []model.Correction{
			{RowID: 1, ColumnName: "phone", Value: "+15551234567"},
		},
	}}

	result, err := a.Apply(base, phoneMapping(), nil, batches)
	require.NoError(t, err)

	// Pre-validation saw the raw value as invalid.
	pre := result.PreValidation["phone"]
	require.NotNil(t, pre)
	assert.Equal(t, 1, pre.InvalidCount)

	// Post-validation is clean and the cell was patched.
	post := result.PostValidation["phone"]
	require.NotNil(t, post)
	assert.Equal(t, 0, post.InvalidCount)
	assert.Equal(t, "+15551234567", result.Reconciled.Rows[0][1])

	require.Len(t, result.Ledger, 1)
	record := result.Ledger[0]
	assert.Equal(t, 1, record.RowID)
	assert.Equal(t, "phone", record.ColumnName)
	assert.Equal(t, "555-1234", record.CurrentValue)
	assert.Equal(t, "+15551234567", record.CorrectedValue)
	assert.True(t, record.NeedsChange)
	assert.False(t, record.IsFlagged)
	assert.False(t, record.UnableToFix)

	assert.InDelta(t, 50.0, result.ImprovementPercent("phone"), 0.001)
}

func TestApplyCellCorrectionStillInvalidIsFlagged(t *testing.T) {
	a := newApplier(t)

	base := phoneTable()
	batches := []CellBatch{{
		Source:     "clean_phone.txt",
		ColumnName: "phone",
		Corrections: []model.Correction{
			{RowID: 1, ColumnName: "phone", Value: "555"},
		},
	}}

	result, err := a.Apply(base, phoneMapping(), nil, batches)
	require.NoError(t, err)

	require.Len(t, result.Ledger, 1)
	record := result.Ledger[0]
	assert.True(t, record.NeedsChange)
	assert.True(t, record.IsFlagged)
	assert.True(t, record.UnableToFix)
	assert.Contains(t, record.FlagReason, "'555' does not match regex")
}

func TestApplyUntouchedInvalidCellGetsSynthesizedRecord(t *testing.T) {
	a := newApplier(t)

	// No corrections at all: the invalid phone still surfaces in the
	// ledger as a flag-only record.
	result, err := a.Apply(phoneTable(), phoneMapping(), nil, nil)
	require.NoError(t, err)

	require.Len(t, result.Ledger, 1)
	record := result.Ledger[0]
	assert.Equal(t, 1, record.RowID)
	assert.Equal(t, "phone", record.ColumnName)
	assert.False(t, record.NeedsChange)
	assert.True(t, record.IsFlagged)
	assert.True(t, record.UnableToFix)
}

func TestApplyIdempotentCellCorrection(t *testing.T) {
	a := newApplier(t)

	// The same correction arrives twice (repeated batch). One record,
	// with needsChange computed from the original value.
	correction := model.Correction{RowID: 1, ColumnName: "phone", Value: "+15551234567"}
	batches := []CellBatch{
		{Source: "clean_phone_part1.txt", ColumnName: "phone", Corrections: []model.Correction{correction}},
		{Source: "clean_phone_part2.txt", ColumnName: "phone", Corrections: []model.Correction{correction}},
	}

	result, err := a.Apply(phoneTable(), phoneMapping(), nil, batches)
	require.NoError(t, err)

	require.Len(t, result.Ledger, 1)
	assert.True(t, result.Ledger[0].NeedsChange)
	assert.Equal(t, "555-1234", result.Ledger[0].CurrentValue)
}

func TestApplyRowCorrectionFull(t *testing.T) {
	a := newApplier(t)

	rows := []model.Correction{
		{RowID: 2, Values: []string{"Johnny Smith", "+15550001111"}},
	}
	result, err := a.Apply(phoneTable(), phoneMapping(), rows, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, result.RowsUpdated)
	assert.Equal(t, []string{"Johnny Smith", "+15550001111"}, result.Reconciled.Rows[1])
}

func TestApplyRowCorrectionPartial(t *testing.T) {
	a := newApplier(t)

	// Fewer values than columns: only the leading cells change.
	rows := []model.Correction{
		{RowID: 1, Values: []string{"Jane D."}},
	}
	result, err := a.Apply(phoneTable(), phoneMapping(), rows, nil)
	require.NoError(t, err)

	assert.Equal(t, "Jane D.", result.Reconciled.Rows[0][0])
	assert.Equal(t, "555-1234", result.Reconciled.Rows[0][1], "untouched cell keeps its value")
}

func TestApplyRowCorrectionTruncatesExtras(t *testing.T) {
	a := newApplier(t)

	rows := []model.Correction{
		{RowID: 1, Values: []string{"Jane", "+15551234567", "overflow", "more"}},
	}
	result, err := a.Apply(phoneTable(), phoneMapping(), rows, nil)
	require.NoError(t, err)

	require.Len(t, result.Reconciled.Rows[0], 2)
	assert.Equal(t, []string{"Jane", "+15551234567"}, result.Reconciled.Rows[0])
}

func TestApplyRowCorrectionOutOfRangeDropped(t *testing.T) {
	a := newApplier(t)

	rows := []model.Correction{
		{RowID: 99, Values: []string{"ghost", "row"}},
		{RowID: 0, Values: []string{"also", "ghost"}},
	}
	result, err := a.Apply(phoneTable(), phoneMapping(), rows, nil)
	require.NoError(t, err)

	assert.Equal(t, 0, result.RowsUpdated)
	assert.Equal(t, 2, result.Tally.Count(ErrorCategoryOutOfRange))
}

func TestApplyCellCorrectionOutOfRangeDropped(t *testing.T) {
	a := newApplier(t)

	batches := []CellBatch{{
		Source:     "clean_phone.txt",
		ColumnName: "phone",
		Corrections: []model.Correction{
			{RowID: 99, ColumnName: "phone", Value: "+15551234567"},
		},
	}}
	result, err := a.Apply(phoneTable(), phoneMapping(), nil, batches)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Tally.Count(ErrorCategoryOutOfRange))
}

func TestApplyUnknownColumnBatchDropped(t *testing.T) {
	a := newApplier(t)

	batches := []CellBatch{{
		Source:     "clean_mystery.txt",
		ColumnName: "mystery",
		Corrections: []model.Correction{
			{RowID: 1, ColumnName: "mystery", Value: "x"},
		},
	}}
	result, err := a.Apply(phoneTable(), phoneMapping(), nil, batches)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Tally.Count(ErrorCategoryUnknownColumn))
}

func TestApplyExcludedColumnRenamedButFiltered(t *testing.T) {
	a := newApplier(t)

	m := phoneMapping()
	m["Name"].IsExcluded = true

	result, err := a.Apply(phoneTable(), m, nil, nil)
	require.NoError(t, err)

	// Excluded columns are still renamed in place; position tracking
	// never shifts during the run.
	assert.Equal(t, []string{"name", "phone"}, result.Reconciled.Headers)

	out := result.OutputTable()
	assert.Equal(t, []string{"phone"}, out.Headers)
	require.Len(t, out.Rows, 2)
	assert.Equal(t, []string{"555-1234"}, out.Rows[0])
}

func TestApplyNilBaseIsContractError(t *testing.T) {
	a := newApplier(t)

	_, err := a.Apply(nil, phoneMapping(), nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrContract)
}

func TestApplyInvalidMappingIsContractError(t *testing.T) {
	a := newApplier(t)

	broken := model.ColumnMapping{
		"A": {SemanticName: "a", Index: 1},
		"B": {SemanticName: "b", Index: 1},
	}
	_, err := a.Apply(phoneTable(), broken, nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrContract)
}

func TestApplyCatchAllColumnSkipsValidation(t *testing.T) {
	a := newApplier(t)

	result, err := a.Apply(phoneTable(), phoneMapping(), nil, nil)
	require.NoError(t, err)

	_, hasName := result.PostValidation["name"]
	assert.False(t, hasName, "catch-all contract columns are never validated")
	_, hasPhone := result.PostValidation["phone"]
	assert.True(t, hasPhone)
}
