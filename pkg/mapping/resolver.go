// pkg/mapping/resolver.go
package mapping

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/rowmend/rowmend/pkg/model"
	"github.com/rowmend/rowmend/pkg/parse"
)

// ErrSchemaExtraction is returned when the schema block or the header sample
// cannot be located in the AI response. This is structural: no partial
// mapping is ever produced from a response missing its delimiter tags.
var ErrSchemaExtraction = errors.New("schema extraction failed")

// schemaHeaderLine is the fixed header of a schema design block.
const schemaHeaderLine = "data_title,data_type,data_description,data_example,data_regex"

// Marker tokens that may wrap a schema definition line.
const (
	markerExclude = "EXCLUDE"
	markerUnique  = "UNIQUE"
)

// schemaEntry is one parsed definition line from the schema block.
type schemaEntry struct {
	name        string
	dataType    string
	description string
	example     string
	regex       string
	isExcluded  bool
	unique      bool
}

// Resolver builds the original<->semantic column correspondence from an AI
// schema response.
type Resolver struct {
	logger *zap.Logger
}

// NewResolver creates a mapping resolver.
func NewResolver(logger *zap.Logger) (*Resolver, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	return &Resolver{logger: logger}, nil
}

// BuildFromResponse extracts the schema block and the original header sample
// from a full architect response and builds the column mapping. The sample
// inside <user_data> carries the synthetic ID column, which is stripped
// before pairing.
func (r *Resolver) BuildFromResponse(response string) (model.ColumnMapping, error) {
	schemaBlock, err := parse.ExtractBlock(response, parse.TagSchemaDesign)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaExtraction, err)
	}

	userData, err := parse.ExtractBlock(response, parse.TagUserData)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaExtraction, err)
	}

	headers, err := headerSample(userData)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaExtraction, err)
	}

	return r.Build(headers, schemaBlock)
}

// headerSample returns the original column headers from the first line of a
// user data sample, with the synthetic ID column stripped if present.
func headerSample(userData string) ([]string, error) {
	lines := strings.SplitN(userData, "\n", 2)
	if len(lines) == 0 || strings.TrimSpace(lines[0]) == "" {
		return nil, errors.New("user data sample has no header line")
	}

	headers := parse.TokenizeLine(strings.TrimRight(lines[0], "\r"))
	if len(headers) > 0 && headers[0] == model.IDColumn {
		headers = headers[1:]
	}
	if len(headers) == 0 {
		return nil, errors.New("user data sample has no columns beyond the synthetic ID")
	}
	return headers, nil
}

// Build zips the original headers and the parsed schema entries by position
// and assigns 1-based indices. Pairing is positional on purpose: the AI is
// not guaranteed to echo exact names, so index is authoritative and the name
// is advisory.
//
// Count mismatches are padded with synthetic entries so every position in
// 1..max(N,M) has exactly one mapping entry.
func (r *Resolver) Build(originalHeaders []string, schemaBlock string) (model.ColumnMapping, error) {
	entries := r.parseSchemaBlock(schemaBlock)
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: schema block contains no parsable definition lines", ErrSchemaExtraction)
	}

	if len(originalHeaders) != len(entries) {
		r.logger.Warn("Column count mismatch between sample and AI schema",
			zap.Int("originalColumns", len(originalHeaders)),
			zap.Int("schemaColumns", len(entries)))
	}

	total := len(originalHeaders)
	if len(entries) > total {
		total = len(entries)
	}

	mapping := make(model.ColumnMapping, total)
	for pos := 0; pos < total; pos++ {
		var key string
		var entry *model.MappingEntry

		switch {
		case pos < len(originalHeaders) && pos < len(entries):
			key = originalHeaders[pos]
			entry = &model.MappingEntry{
				SemanticName: entries[pos].name,
				IsExcluded:   entries[pos].isExcluded,
				Unique:       entries[pos].unique,
				Index:        pos + 1,
				DataType:     entries[pos].dataType,
				Description:  entries[pos].description,
				Example:      entries[pos].example,
				Regex:        entries[pos].regex,
			}

		case pos < len(originalHeaders):
			// AI proposed fewer columns than exist; trailing originals get
			// placeholder semantic names and no contract.
			key = originalHeaders[pos]
			entry = &model.MappingEntry{
				SemanticName: fmt.Sprintf("%s%d", model.UnmappedPrefix, pos),
				Index:        pos + 1,
			}

		default:
			// AI proposed more columns than exist; carry its flags and
			// contract under a synthetic original key.
			key = fmt.Sprintf("%s%d", model.MissingOriginalPrefix, pos)
			entry = &model.MappingEntry{
				SemanticName: entries[pos].name,
				IsExcluded:   entries[pos].isExcluded,
				Unique:       entries[pos].unique,
				Index:        pos + 1,
				DataType:     entries[pos].dataType,
				Description:  entries[pos].description,
				Example:      entries[pos].example,
				Regex:        entries[pos].regex,
			}
		}

		entry.OriginalKey = key
		mapping[key] = entry
	}

	if err := mapping.Validate(); err != nil {
		return nil, fmt.Errorf("built mapping violates position invariant: %w", err)
	}

	r.logger.Info("Built column mapping",
		zap.Int("columns", len(mapping)),
		zap.Int("originalColumns", len(originalHeaders)),
		zap.Int("schemaColumns", len(entries)))

	return mapping, nil
}

// parseSchemaBlock parses every definition line of a schema block. A line
// that fails to parse is logged and skipped; one bad line never aborts the
// whole build.
func (r *Resolver) parseSchemaBlock(block string) []schemaEntry {
	var entries []schemaEntry

	for _, raw := range strings.Split(block, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || line == schemaHeaderLine {
			continue
		}

		entry, err := parseDefinitionLine(line)
		if err != nil {
			r.logger.Warn("Skipping unparsable schema definition line",
				zap.String("line", excerpt(line)),
				zap.Error(err))
			continue
		}
		entries = append(entries, entry)
	}

	return entries
}

// parseDefinitionLine parses one schema definition line in two phases: the
// trailing regex is isolated first (it may contain commas), then the prefix
// is tokenized as an ordinary quote-aware record.
func parseDefinitionLine(line string) (schemaEntry, error) {
	var entry schemaEntry

	// Consume leading marker tokens before anything else.
	for stripped := true; stripped; {
		stripped = false
		if strings.HasPrefix(line, markerExclude) {
			entry.isExcluded = true
			line = strings.TrimLeft(strings.TrimPrefix(line, markerExclude), " ,\t")
			stripped = true
		}
		if strings.HasPrefix(line, markerUnique) {
			entry.unique = true
			line = strings.TrimLeft(strings.TrimPrefix(line, markerUnique), " ,\t")
			stripped = true
		}
	}

	prefix, regex, ok := parse.SplitTrailingRegex(line)
	if !ok {
		return entry, fmt.Errorf("definition line has no trailing regex field")
	}
	entry.regex = regex

	fields := parse.TokenizeLine(prefix)
	if len(fields) == 0 || strings.TrimSpace(fields[0]) == "" {
		return entry, fmt.Errorf("definition line has no column name")
	}

	entry.name = strings.TrimSpace(fields[0])
	if len(fields) > 1 {
		entry.dataType = strings.TrimSpace(fields[1])
	}
	if len(fields) > 2 {
		entry.description = fields[2]
	}
	if len(fields) > 3 {
		entry.example = fields[3]
	}

	return entry, nil
}

// excerpt truncates a line for log output.
func excerpt(line string) string {
	const max = 120
	if len(line) <= max {
		return line
	}
	return line[:max] + "..."
}
