// Package textutil provides common text utility functions.
package textutil

import "strings"

// TrimWhitespace removes leading and trailing whitespace.
func TrimWhitespace(str string) string {
	return strings.TrimSpace(str)
}

// NormalizeWhitespace replaces runs of whitespace with a single space.
func NormalizeWhitespace(str string) string {
	return strings.Join(strings.Fields(str), " ")
}

// MergeFields joins non-empty fields with a single space.
// Used to merge a title and an abstract into one document text.
func MergeFields(fields ...string) string {
	var parts []string

	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f != "" {
			parts = append(parts, f)
		}
	}

	return strings.Join(parts, " ")
}

// JoinTokens joins tokens with single spaces, the corpus line format.
func JoinTokens(tokens []string) string {
	return strings.Join(tokens, " ")
}

// TruncateString truncates a string to max length, appending an ellipsis.
func TruncateString(str string, maxLength int) string {
	if len(str) <= maxLength {
		return str
	}

	return str[:maxLength] + "..."
}
