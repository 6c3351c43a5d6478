// pkg/dedupe/dedupe_test.go
package dedupe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rowmend/rowmend/pkg/dataset"
	"github.com/rowmend/rowmend/pkg/model"
)

func TestLevenshteinSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, levenshteinSimilarity("jane", "jane"))
	assert.Equal(t, 1.0, levenshteinSimilarity("", ""))
	assert.InDelta(t, 0.8, levenshteinSimilarity("jane", "janet"), 0.001)
	assert.Less(t, levenshteinSimilarity("jane", "xxxx"), 0.1)
}

func TestJaccardSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, jaccardSimilarity("food bank seattle", "seattle food bank"))
	assert.Equal(t, 0.0, jaccardSimilarity("alpha beta", "gamma delta"))
	assert.InDelta(t, 1.0/3.0, jaccardSimilarity("food bank", "food pantry"), 0.001)
	assert.Equal(t, 1.0, jaccardSimilarity("", ""))
}

func TestCombinedSimilarityNormalizesCaseAndSpace(t *testing.T) {
	assert.Equal(t, 1.0, combinedSimilarity("  Jane Doe ", "jane doe"))
}

func testMapping(unique ...string) model.ColumnMapping {
	m := model.ColumnMapping{
		"Name":  {SemanticName: "name", Index: 1},
		"Email": {SemanticName: "email", Index: 2},
	}
	for _, key := range unique {
		m[key].Unique = true
	}
	return m
}

func TestFindGroupsNoUniqueColumns(t *testing.T) {
	g, err := NewGrouper(0.85, zap.NewNop())
	require.NoError(t, err)

	table := dataset.NewTable(
		[]string{"name", "email"},
		[][]string{{"Jane", "j@x.com"}, {"Jane", "j@x.com"}},
	)
	assert.Nil(t, g.FindGroups(table, testMapping()))
}

func TestFindGroupsClustersNearDuplicates(t *testing.T) {
	g, err := NewGrouper(0.85, zap.NewNop())
	require.NoError(t, err)

	table := dataset.NewTable(
		[]string{"name", "email"},
		[][]string{
			{"Seattle Food Bank", "info@sfb.org"},
			{"Seattle Food Bank ", "info@sfb.org"},
			{"Tacoma Shelter", "help@ts.org"},
			{"seattle food bank", "INFO@SFB.ORG"},
		},
	)

	groups := g.FindGroups(table, testMapping("Name", "Email"))
	require.Len(t, groups, 1)
	assert.Equal(t, 1, groups[0].Keep)
	assert.Equal(t, []int{2, 4}, groups[0].Remove)
	assert.Equal(t, []int{1, 2, 4}, groups[0].RowIDs)
}

func TestFindGroupsBelowThreshold(t *testing.T) {
	g, err := NewGrouper(0.99, zap.NewNop())
	require.NoError(t, err)

	table := dataset.NewTable(
		[]string{"name", "email"},
		[][]string{
			{"Seattle Food Bank", "a@x.org"},
			{"Tacoma Food Bank", "b@y.org"},
		},
	)
	assert.Empty(t, g.FindGroups(table, testMapping("Name")))
}

func TestNewGrouperRejectsBadThreshold(t *testing.T) {
	_, err := NewGrouper(1.5, zap.NewNop())
	assert.Error(t, err)
	_, err = NewGrouper(0.5, nil)
	assert.Error(t, err)
}

func TestRemoveRows(t *testing.T) {
	table := dataset.NewTable(
		[]string{"name"},
		[][]string{{"a"}, {"b"}, {"c"}, {"d"}},
	)

	groups := []Group{
		{Keep: 1, Remove: []int{2}, RowIDs: []int{1, 2}},
		{Keep: 3, Remove: []int{4}, RowIDs: []int{3, 4}},
	}
	out := RemoveRows(table, groups)
	require.Len(t, out.Rows, 2)
	assert.Equal(t, "a", out.Rows[0][0])
	assert.Equal(t, "c", out.Rows[1][0])

	// No removals means the same table comes back.
	assert.Same(t, table, RemoveRows(table, nil))
}
