// pkg/aiclient/prompts.go
package aiclient

import (
	"fmt"
	"strings"
)

// architectPrompt asks the AI to design a schema for the sampled dataset and
// rewrite the sample rows. The response must echo the sample inside
// <user_data> and emit <schema_design> and <semantic_diff> blocks; those
// delimiters are the contract the mapping resolver and diff parser depend on.
func architectPrompt(sampleCSV string) string {
	var sb strings.Builder
	sb.WriteString("You are a data architect. Below is a sample of a raw CSV dataset, ")
	sb.WriteString("with a synthetic ID column prepended for row identification.\n\n")
	sb.WriteString("<user_data>\n")
	sb.WriteString(sampleCSV)
	sb.WriteString("\n</user_data>\n\n")
	sb.WriteString("First, propose a schema. Emit a <schema_design> block containing a header line\n")
	sb.WriteString("`data_title,data_type,data_description,data_example,data_regex` followed by one\n")
	sb.WriteString("definition line per column (excluding ID), in the same order as the sample columns.\n")
	sb.WriteString("The regex field must start with ^ and end with $. Use ^.*$ for columns that need\n")
	sb.WriteString("no cleaning. Prefix a definition line with EXCLUDE to drop the column from output,\n")
	sb.WriteString("or UNIQUE to mark it as part of the duplicate identity.\n\n")
	sb.WriteString("Then rewrite the sample rows to conform to your schema. Emit a <semantic_diff>\n")
	sb.WriteString("block with one CSV line per corrected row: the row ID first, then every column\n")
	sb.WriteString("value. Write `... Existing Data ...` for ranges of rows you left unchanged.\n")
	sb.WriteString("Prefix a line with FLAGGED and a short reason if a human should review that row.\n")
	sb.WriteString("Echo the original sample unchanged inside the <user_data> block of your response.\n")
	return sb.String()
}

// cleanerPrompt asks the AI to correct a single column against its contract.
// The response's <semantic_diff> block is parsed in scoped mode: row id,
// then the corrected value.
func cleanerPrompt(columnName, dataType, description, example, regex string, idValuePairs string) string {
	var sb strings.Builder
	sb.WriteString("You are a data cleaner working on one column of a dataset.\n\n")
	fmt.Fprintf(&sb, "Column: %s\nType: %s\nDescription: %s\nExample: %s\n", columnName, dataType, description, example)
	fmt.Fprintf(&sb, "Every non-empty value must match this regex: %s\n\n", regex)
	sb.WriteString("Here are the current values, one `id,value` pair per line:\n\n")
	sb.WriteString(idValuePairs)
	sb.WriteString("\n\nEmit a <semantic_diff> block containing one `id,corrected_value` line for every\n")
	sb.WriteString("value you corrected. Skip values that already conform. Write `... Existing Data ...`\n")
	sb.WriteString("for ranges you left unchanged. Prefix a line with FLAGGED and a short reason if you\n")
	sb.WriteString("cannot repair the value.\n")
	return sb.String()
}
