// pkg/parse/line.go
package parse

import "strings"

// TokenizeLine splits a single CSV record line into fields using RFC4180
// quoting rules: commas inside double quotes are not separators, and a
// doubled quote inside a quoted field is a literal quote. The line must not
// contain an unescaped newline; callers feed it one line at a time.
func TokenizeLine(line string) []string {
	var fields []string
	var current strings.Builder
	inQuotes := false

	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		switch {
		case ch == '"':
			if inQuotes && i+1 < len(runes) && runes[i+1] == '"' {
				// Escaped quote inside a quoted field
				current.WriteRune('"')
				i++
			} else {
				inQuotes = !inQuotes
			}
		case ch == ',' && !inQuotes:
			fields = append(fields, current.String())
			current.Reset()
		default:
			current.WriteRune(ch)
		}
	}
	fields = append(fields, current.String())

	return fields
}

// StripQuotes removes exactly one layer of surrounding double quotes, if
// present. Inner content is returned as-is.
func StripQuotes(s string) string {
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		return s[1 : len(s)-1]
	}
	return s
}
