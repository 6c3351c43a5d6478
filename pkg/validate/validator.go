// pkg/validate/validator.go
package validate

import (
	"errors"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/rowmend/rowmend/pkg/model"
)

// emptySentinels are literal tokens treated as missing data. The set is
// case-sensitive: "NULL" is a value, "null" is not.
var emptySentinels = map[string]struct{}{
	"":          {},
	"null":      {},
	"NaN":       {},
	"nan":       {},
	"undefined": {},
}

// ContractValidator checks column values against their regex contracts and
// produces per-column validity statistics.
type ContractValidator struct {
	logger *zap.Logger
}

// NewContractValidator creates a validator.
func NewContractValidator(logger *zap.Logger) (*ContractValidator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	return &ContractValidator{logger: logger}, nil
}

// IsEmpty reports whether a value counts as missing data: the enumerated
// sentinel tokens or all-whitespace content. Empty values are always valid
// regardless of contract; they are normalized to null downstream.
func IsEmpty(value string) bool {
	if _, ok := emptySentinels[value]; ok {
		return true
	}
	return strings.TrimSpace(value) == ""
}

// Matches reports whether a single value satisfies a compiled contract.
// Empty values are always valid. A nil pattern means the contract failed to
// compile, which also validates everything (fail-open).
func Matches(value string, pattern *regexp.Regexp) bool {
	if IsEmpty(value) {
		return true
	}
	if pattern == nil {
		return true
	}
	return pattern.MatchString(value)
}

// MatchesContract compiles the contract and checks one value against it.
// Convenience for callers that only test a handful of values.
func (v *ContractValidator) MatchesContract(value, contract string) bool {
	pattern, err := regexp.Compile(contract)
	if err != nil {
		v.logger.Warn("Contract regex failed to compile, treating value as valid",
			zap.String("regex", contract),
			zap.Error(err))
		return true
	}
	return Matches(value, pattern)
}

// ValidateColumn checks every value of one column against its regex contract
// and returns the tallied result. Row ids in the result are 1-based, matching
// the position of the value in the input slice.
//
// A contract that fails to compile never blocks the pipeline: the column is
// reported fully valid and a warning is logged.
func (v *ContractValidator) ValidateColumn(columnName, contract string, values []string) *model.ValidationResult {
	result := &model.ValidationResult{
		ColumnName: columnName,
		Regex:      contract,
	}

	pattern, err := regexp.Compile(contract)
	if err != nil {
		v.logger.Warn("Contract regex failed to compile, column treated as valid",
			zap.String("column", columnName),
			zap.String("regex", contract),
			zap.Error(err))
		pattern = nil
	}

	for i, value := range values {
		if IsEmpty(value) {
			result.EmptyCount++
			result.ValidCount++
			continue
		}

		if Matches(value, pattern) {
			result.ValidCount++
		} else {
			result.InvalidCount++
			result.InvalidRows = append(result.InvalidRows, model.InvalidCell{
				RowID: i + 1,
				Value: value,
			})
		}
	}

	return result
}
