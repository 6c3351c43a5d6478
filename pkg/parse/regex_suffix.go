// pkg/parse/regex_suffix.go
package parse

import "strings"

// regexMarker anchors the trailing regex field of a schema definition line.
// Contracts always begin with a caret, so the regex starts at the last
// occurrence of ",^" — the regex text itself may legally contain commas,
// which is why the line cannot be tokenized in a single pass.
const regexMarker = ",^"

// SplitTrailingRegex separates a schema definition line into its
// comma-separated prefix and the trailing regex contract. The second return
// is false when the line carries no regex field.
func SplitTrailingRegex(line string) (prefix, regex string, ok bool) {
	idx := strings.LastIndex(line, regexMarker)
	if idx < 0 {
		return line, "", false
	}
	return line[:idx], line[idx+1:], true
}
