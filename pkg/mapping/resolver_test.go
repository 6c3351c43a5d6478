// pkg/mapping/resolver_test.go
package mapping

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rowmend/rowmend/pkg/model"
)

func newResolver(t *testing.T) *Resolver {
	t.Helper()
	r, err := NewResolver(zap.NewNop())
	require.NoError(t, err)
	return r
}

const twoColumnSchema = `data_title,data_type,data_description,data_example,data_regex
name,string,Person full name,Jane Doe,^.*$
phone,string,US phone number,+15551234567,^\+1\d{10}$`

func TestBuildPairsByPosition(t *testing.T) {
	r := newResolver(t)

	m, err := r.Build([]string{"Name", "Phone"}, twoColumnSchema)
	require.NoError(t, err)
	require.Len(t, m, 2)

	// Names drift; position wins.
	name := m["Name"]
	require.NotNil(t, name)
	assert.Equal(t, "name", name.SemanticName)
	assert.Equal(t, 1, name.Index)
	assert.Equal(t, model.CatchAllRegex, name.Regex)
	assert.False(t, name.HasContract())

	phone := m["Phone"]
	require.NotNil(t, phone)
	assert.Equal(t, "phone", phone.SemanticName)
	assert.Equal(t, 2, phone.Index)
	assert.Equal(t, `^\+1\d{10}$`, phone.Regex)
	assert.True(t, phone.HasContract())
}

func TestBuildIndexInvariant(t *testing.T) {
	r := newResolver(t)

	// For N originals and M schema lines the mapping has exactly max(N,M)
	// entries with indices 1..max and no gaps or duplicates.
	headers := []string{"A", "B", "C", "D", "E"}
	m, err := r.Build(headers, twoColumnSchema)
	require.NoError(t, err)
	require.Len(t, m, 5)
	require.NoError(t, m.Validate())

	for i := 1; i <= 5; i++ {
		require.NotNil(t, m.ByIndex(i), "index %d must exist", i)
	}
}

func TestBuildMoreOriginalsThanSchema(t *testing.T) {
	r := newResolver(t)

	m, err := r.Build([]string{"Name", "Phone", "Extra"}, twoColumnSchema)
	require.NoError(t, err)
	require.Len(t, m, 3)

	extra := m["Extra"]
	require.NotNil(t, extra)
	assert.Equal(t, "UNMAPPED_2", extra.SemanticName)
	assert.Equal(t, 3, extra.Index)
	assert.False(t, extra.IsExcluded)
	assert.Empty(t, extra.Regex)
}

func TestBuildMoreSchemaThanOriginals(t *testing.T) {
	r := newResolver(t)

	schema := twoColumnSchema + "\n" + `email,string,Email address,jane@example.com,^[^@]+@[^@]+$`
	m, err := r.Build([]string{"Name", "Phone"}, schema)
	require.NoError(t, err)
	require.Len(t, m, 3)

	missing := m["MISSING_ORIGINAL_2"]
	require.NotNil(t, missing)
	assert.Equal(t, "email", missing.SemanticName)
	assert.Equal(t, 3, missing.Index)
	assert.Equal(t, `^[^@]+@[^@]+$`, missing.Regex, "AI-proposed contract carries over")
}

func TestBuildMarkerTokens(t *testing.T) {
	r := newResolver(t)

	schema := `data_title,data_type,data_description,data_example,data_regex
EXCLUDE internal_id,string,Internal row id,42,^.*$
UNIQUE email,string,Email address,jane@example.com,^[^@]+@[^@]+$`

	m, err := r.Build([]string{"RowNum", "Email"}, schema)
	require.NoError(t, err)

	assert.True(t, m["RowNum"].IsExcluded)
	assert.False(t, m["RowNum"].Unique)
	assert.True(t, m["Email"].Unique)
	assert.False(t, m["Email"].IsExcluded)
}

func TestBuildRegexContainingCommas(t *testing.T) {
	r := newResolver(t)

	schema := `data_title,data_type,data_description,data_example,data_regex
zip,string,ZIP or postal code,98101,^\d{5}(,\d{4})?$`

	m, err := r.Build([]string{"Zip"}, schema)
	require.NoError(t, err)
	assert.Equal(t, `^\d{5}(,\d{4})?$`, m["Zip"].Regex)
}

func TestBuildSkipsUnparsableLines(t *testing.T) {
	r := newResolver(t)

	schema := `data_title,data_type,data_description,data_example,data_regex
name,string,Full name,Jane,^.*$
this line has no regex field at all
phone,string,Phone,+15551234567,^\+1\d{10}$`

	m, err := r.Build([]string{"Name", "Phone"}, schema)
	require.NoError(t, err)
	require.Len(t, m, 2)
	assert.Equal(t, "phone", m["Phone"].SemanticName)
}

func TestBuildEmptySchemaFails(t *testing.T) {
	r := newResolver(t)

	_, err := r.Build([]string{"Name"}, "data_title,data_type,data_description,data_example,data_regex\n")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSchemaExtraction)
}

func TestBuildFromResponse(t *testing.T) {
	r := newResolver(t)

	response := `Here is my design.
<schema_design>
` + twoColumnSchema + `
</schema_design>
<user_data>
ID,Name,Phone
1,Jane Doe,555-1234
</user_data>`

	m, err := r.BuildFromResponse(response)
	require.NoError(t, err)
	require.Len(t, m, 2, "synthetic ID column is stripped from the header sample")
	assert.NotNil(t, m["Name"])
	assert.NotNil(t, m["Phone"])
}

func TestBuildFromResponseMissingTags(t *testing.T) {
	r := newResolver(t)

	_, err := r.BuildFromResponse("no blocks here")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSchemaExtraction)

	_, err = r.BuildFromResponse("<schema_design>\n" + twoColumnSchema + "\n</schema_design>")
	require.Error(t, err, "header sample is required too")
	assert.ErrorIs(t, err, ErrSchemaExtraction)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	r := newResolver(t)

	m, err := r.Build([]string{"Name", "Phone"}, twoColumnSchema)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "column_mapping.json")
	require.NoError(t, Save(m, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, m["Phone"].Regex, loaded["Phone"].Regex)
	assert.Equal(t, m["Phone"].Index, loaded["Phone"].Index)
	assert.Equal(t, "Phone", loaded["Phone"].OriginalKey)
}

func TestLoadRejectsBrokenInvariant(t *testing.T) {
	path := filepath.Join(t.TempDir(), "column_mapping.json")
	// Two entries sharing index 1.
	broken := `{
		"A": {"name": "a", "index": 1},
		"B": {"name": "b", "index": 1}
	}`
	require.NoError(t, os.WriteFile(path, []byte(broken), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}
