package processing

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// English contractions split off as their own token, matching the Treebank
// convention ("don't" -> "do" "n't").
var clitics = []string{
	"n't", "n’t",
	"'s", "’s", "'re", "’re", "'ve", "’ve",
	"'ll", "’ll", "'d", "’d", "'m", "’m",
}

// Tokenize splits text into word units. Whitespace separates chunks; within
// a chunk, leading and trailing punctuation becomes separate one-rune tokens
// and a trailing contraction is split off. Punctuation inside a word
// ("U.S.", "well-known") stays part of the token.
func Tokenize(text string) []string {
	var tokens []string
	for _, chunk := range strings.Fields(text) {
		tokens = appendChunk(tokens, chunk)
	}
	return tokens
}

func appendChunk(tokens []string, chunk string) []string {
	runes := []rune(chunk)
	start, end := 0, len(runes)

	for start < end && isPunct(runes[start]) {
		tokens = append(tokens, string(runes[start]))
		start++
	}

	tail := end
	for end > start && isPunct(runes[end-1]) {
		end--
	}

	if start < end {
		tokens = append(tokens, splitClitic(string(runes[start:end]))...)
	}
	for i := end; i < tail; i++ {
		tokens = append(tokens, string(runes[i]))
	}
	return tokens
}

func splitClitic(word string) []string {
	for _, c := range clitics {
		cut := len(word) - len(c)
		if cut <= 0 || !utf8.RuneStart(word[cut]) {
			continue
		}
		if strings.EqualFold(word[cut:], c) {
			return []string{word[:cut], word[cut:]}
		}
	}
	return []string{word}
}

func isPunct(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.IsMark(r)
}
