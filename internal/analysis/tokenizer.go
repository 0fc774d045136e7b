package analysis

import (
	"strings"
	"unicode"
)

// WordTokenizer splits on runs of word characters (letters, digits,
// underscore). Everything else is a delimiter and produces no tokens.
type WordTokenizer struct{}

// Tokenize splits text into word-character runs.
func (WordTokenizer) Tokenize(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
}
