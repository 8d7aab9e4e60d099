// Package tokenizer splits document and query text into words and checks
// that a word is printable. Only the ASCII space separates words, so tabs and
// newlines stay inside a word and are rejected by IsValidWord.
package tokenizer

import (
	"strings"
)

// SplitIntoWords returns the space-separated words of text, skipping runs of
// spaces.
func SplitIntoWords(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return r == ' '
	})
}

// IsValidWord reports whether word is free of ASCII control characters
// (code points 0 through 31).
func IsValidWord(word string) bool {
	for i := 0; i < len(word); i++ {
		if word[i] < ' ' {
			return false
		}
	}
	return true
}
