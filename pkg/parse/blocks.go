// pkg/parse/blocks.go
package parse

import (
	"fmt"
	"strings"
)

// Delimiter tags used by the AI response format.
const (
	TagSchemaDesign = "schema_design"
	TagSemanticDiff = "semantic_diff"
	TagUserData     = "user_data"
)

// ExtractBlock returns the text between <tag>...</tag> in an AI response,
// trimmed of surrounding whitespace. Returns an error when either delimiter
// is missing; callers treat that as a structural failure of the response.
func ExtractBlock(text, tag string) (string, error) {
	open := "<" + tag + ">"
	close := "</" + tag + ">"

	start := strings.Index(text, open)
	if start < 0 {
		return "", fmt.Errorf("opening tag %s not found in response", open)
	}
	start += len(open)

	end := strings.Index(text[start:], close)
	if end < 0 {
		return "", fmt.Errorf("closing tag %s not found in response", close)
	}

	return strings.TrimSpace(text[start : start+end]), nil
}

// HasBlock reports whether the response contains a complete <tag>...</tag>
// section.
func HasBlock(text, tag string) bool {
	_, err := ExtractBlock(text, tag)
	return err == nil
}
