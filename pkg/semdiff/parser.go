// pkg/semdiff/parser.go
package semdiff

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/rowmend/rowmend/pkg/model"
	"github.com/rowmend/rowmend/pkg/parse"
)

// ErrDiffExtraction is returned when a response carries no semantic diff
// block at all. Individual bad lines inside a block are never fatal.
var ErrDiffExtraction = errors.New("semantic diff extraction failed")

// Sentinel lines the AI emits to mark untouched row ranges. Both the ASCII
// and the typographic ellipsis variants occur in practice.
var existingDataMarkers = []string{
	"... Existing Data ...",
	"… Existing Data …",
}

// flaggedMarker prefixes diff lines the AI wants a human to look at. The
// marker and its free-text metadata are stripped; the remainder is parsed as
// a normal correction line.
const flaggedMarker = "FLAGGED"

// rowLinePattern finds the start of the actual correction record on a line:
// one or more digits followed by a comma.
var rowLinePattern = regexp.MustCompile(`\d+,`)

// Parser turns semantic diff text into structured corrections.
type Parser struct {
	logger *zap.Logger
}

// NewParser creates a semantic diff parser.
func NewParser(logger *zap.Logger) (*Parser, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	return &Parser{logger: logger}, nil
}

// ParseResponse extracts the semantic diff block from a full AI response and
// parses it in full-row mode.
func (p *Parser) ParseResponse(response string) ([]model.Correction, error) {
	block, err := parse.ExtractBlock(response, parse.TagSemanticDiff)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDiffExtraction, err)
	}
	return p.ParseBlock(block), nil
}

// ParseScopedResponse extracts the semantic diff block and parses it in
// scoped mode for one column.
func (p *Parser) ParseScopedResponse(response, columnName string) ([]model.Correction, error) {
	block, err := parse.ExtractBlock(response, parse.TagSemanticDiff)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDiffExtraction, err)
	}
	return p.ParseScopedBlock(block, columnName), nil
}

// ParseBlock parses a diff block in full-row mode: the first field of each
// record is the 1-based row id, the remaining fields are the full corrected
// row in column order.
func (p *Parser) ParseBlock(block string) []model.Correction {
	corrections := make(map[int]model.Correction)

	for _, raw := range strings.Split(block, "\n") {
		rowID, fields, ok := p.classifyLine(raw)
		if !ok {
			continue
		}
		// Later lines override earlier ones for the same row id; AI
		// responses repeat rows often enough that this matters.
		corrections[rowID] = model.Correction{RowID: rowID, Values: fields}
	}

	return ordered(corrections)
}

// ParseScopedBlock parses a diff block requested for exactly one column: the
// second field of each record is the corrected value for that column. One
// layer of surrounding quotes on the value is stripped.
func (p *Parser) ParseScopedBlock(block, columnName string) []model.Correction {
	corrections := make(map[int]model.Correction)

	for _, raw := range strings.Split(block, "\n") {
		rowID, fields, ok := p.classifyLine(raw)
		if !ok {
			continue
		}
		if len(fields) == 0 {
			p.logger.Warn("Skipping scoped diff line without a value field",
				zap.Int("rowId", rowID),
				zap.String("column", columnName))
			continue
		}
		corrections[rowID] = model.Correction{
			RowID:      rowID,
			ColumnName: columnName,
			Value:      parse.StripQuotes(fields[0]),
		}
	}

	return ordered(corrections)
}

// classifyLine applies the diff line grammar. It returns the parsed row id
// and the fields after it, or ok=false for lines that carry no correction
// (blank lines, sentinels, and unparsable garbage, the latter logged).
func (p *Parser) classifyLine(raw string) (int, []string, bool) {
	line := strings.TrimSpace(raw)
	if line == "" {
		return 0, nil, false
	}

	for _, marker := range existingDataMarkers {
		if line == marker {
			return 0, nil, false
		}
	}

	if strings.HasPrefix(line, flaggedMarker) {
		rest := strings.TrimPrefix(line, flaggedMarker)
		loc := rowLinePattern.FindStringIndex(rest)
		if loc == nil {
			p.logger.Warn("Skipping flagged diff line without a row record",
				zap.String("line", excerpt(line)))
			return 0, nil, false
		}
		line = rest[loc[0]:]
	}

	fields := parse.TokenizeLine(line)
	rowID, err := strconv.Atoi(fields[0])
	if err != nil || rowID < 1 {
		p.logger.Warn("Skipping unparsable diff line",
			zap.String("line", excerpt(line)))
		return 0, nil, false
	}
	if len(fields) < 2 {
		p.logger.Warn("Skipping diff line with no fields after row id",
			zap.Int("rowId", rowID))
		return 0, nil, false
	}

	return rowID, fields[1:], true
}

// ordered flattens the dedupe map into a slice sorted by row id.
func ordered(m map[int]model.Correction) []model.Correction {
	out := make([]model.Correction, 0, len(m))
	for _, c := range m {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RowID < out[j].RowID })
	return out
}

func excerpt(line string) string {
	const max = 120
	if len(line) <= max {
		return line
	}
	return line[:max] + "..."
}
