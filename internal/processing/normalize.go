package processing

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

var (
	linkPattern    = regexp.MustCompile(`http\S+|www\S+|https\S+`)
	mentionPattern = regexp.MustCompile(`@[\p{L}\p{N}\p{M}_]+|#`)
)

// Normalize reduces raw article text to a canonical token stream: links,
// @mentions and '#' markers are removed, whitespace is collapsed, the text is
// tokenized and only purely alphabetic tokens survive, lower-cased and joined
// by single spaces. An empty result means nothing survived.
//
// The steps run until the output stops changing, so already-normalized text
// is a fixed point.
func Normalize(text string) string {
	out := normalizeOnce(text)
	for {
		next := normalizeOnce(out)
		if next == out {
			return out
		}
		out = next
	}
}

// NormalizeAll normalizes every document, keeping positions.
func NormalizeAll(docs []string) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = Normalize(d)
	}
	return out
}

func normalizeOnce(text string) string {
	if text == "" {
		return ""
	}
	text = norm.NFC.String(text)
	text = linkPattern.ReplaceAllString(text, "")
	text = mentionPattern.ReplaceAllString(text, "")
	text = strings.Join(strings.Fields(text), " ")

	// Casers carry state; one per call keeps Normalize safe for concurrent use.
	lower := cases.Lower(language.Und)
	tokens := Tokenize(text)
	kept := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if isAlpha(tok) {
			kept = append(kept, lower.String(tok))
		}
	}
	return strings.Join(kept, " ")
}

func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
