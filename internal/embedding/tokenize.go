package embedding

import (
	"regexp"
	"strings"
)

// nonWord matches runs of non-word characters ([^0-9A-Za-z_]).
var nonWord = regexp.MustCompile(`\W+`)

// Tokenize lowercases text, splits on non-word-character runs, and discards
// tokens of length <= 2. The same tokenization is used by the fallback
// generator and by the hybrid ranker's keyword scoring, so the two stay in
// agreement about what counts as a query term.
func Tokenize(text string) []string {
	parts := nonWord.Split(strings.ToLower(text), -1)
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		if len(p) > 2 {
			tokens = append(tokens, p)
		}
	}
	return tokens
}
