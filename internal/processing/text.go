package processing

import (
	"crypto/sha1"
	"encoding/hex"
	"html"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode/utf8"
)

var urlRegex = regexp.MustCompile(`https?://[^\s]+`)

var (
	whitespace  = regexp.MustCompile(`\s+`)
	punctuation = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)
	// NewsAPI cuts content and appends "… [+1234 chars]".
	truncatedMarker = regexp.MustCompile(`\s*(?:…|\.\.\.)?\s*\[\+\d+ chars\]\s*$`)
)

var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "that": {}, "with": {}, "this": {},
	"from": {}, "have": {}, "has": {}, "was": {}, "were": {}, "are": {},
	"will": {}, "would": {}, "said": {}, "says": {}, "their": {}, "they": {},
	"been": {}, "about": {}, "after": {}, "over": {}, "into": {}, "more": {},
	"than": {}, "also": {}, "which": {}, "while": {}, "what": {}, "when": {},
	"there": {}, "could": {}, "other": {}, "its": {}, "his": {}, "her": {},
}

// ExtractURLs extracts all HTTP(S) URLs from the input text.
func ExtractURLs(input string) []string {
	if input == "" {
		return nil
	}
	matches := urlRegex.FindAllString(input, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(matches))
	var urls []string
	for _, url := range matches {
		if _, ok := seen[url]; !ok {
			seen[url] = struct{}{}
			urls = append(urls, url)
		}
	}
	return urls
}

// RemoveURLs removes all URLs from the input text.
func RemoveURLs(input string) string {
	return urlRegex.ReplaceAllString(input, " ")
}

// CleanText strips HTML entities, punctuation, squeezes whitespace, and removes URLs.
// Unlike Normalize it keeps case and digits; it feeds document IDs and display text.
func CleanText(input string) string {
	if input == "" {
		return ""
	}
	decoded := html.UnescapeString(input)
	decoded = RemoveURLs(decoded)
	decoded = punctuation.ReplaceAllString(decoded, " ")
	decoded = whitespace.ReplaceAllString(decoded, " ")
	return strings.TrimSpace(decoded)
}

// IsTruncated reports whether the article body carries the source's
// truncation marker or is shorter than minChars runes.
func IsTruncated(body string, minChars int) bool {
	if truncatedMarker.MatchString(body) {
		return true
	}
	return utf8.RuneCountInString(strings.TrimSpace(body)) < minChars
}

// StripTruncationMarker drops a trailing "[+N chars]" marker.
func StripTruncationMarker(body string) string {
	return truncatedMarker.ReplaceAllString(body, "")
}

// ExtractKeywords returns the most frequent normalized words that are not
// stop-words, ties broken alphabetically.
func ExtractKeywords(text string, limit, minLen int) []string {
	clean := Normalize(html.UnescapeString(text))
	if clean == "" {
		return nil
	}

	freq := make(map[string]int)
	for _, token := range strings.Fields(clean) {
		if utf8.RuneCountInString(token) < minLen {
			continue
		}
		if _, skip := stopwords[token]; skip {
			continue
		}
		freq[token]++
	}

	if len(freq) == 0 {
		return nil
	}

	type kv struct {
		word  string
		count int
	}

	pairs := make([]kv, 0, len(freq))
	for word, count := range freq {
		pairs = append(pairs, kv{word: word, count: count})
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].count == pairs[j].count {
			return pairs[i].word < pairs[j].word
		}
		return pairs[i].count > pairs[j].count
	})

	max := limit
	if max <= 0 || max > len(pairs) {
		max = len(pairs)
	}

	keywords := make([]string, 0, max)
	for i := 0; i < max; i++ {
		keywords = append(keywords, pairs[i].word)
	}

	return keywords
}

// BuildDocumentID hashes the most stable fields to form deterministic IDs.
func BuildDocumentID(title, url string, ts time.Time) string {
	s := sha1.Sum([]byte(title + "|" + url + "|" + ts.UTC().Format(time.RFC3339)))
	return hex.EncodeToString(s[:])
}

// GenerateTitleFromText creates a title from the first sentence or first N words of text.
// Returns empty string if text is empty.
func GenerateTitleFromText(text string, maxWords int) string {
	if text == "" {
		return ""
	}

	textWithoutURLs := RemoveURLs(text)

	var firstSentence string
	if end := strings.IndexAny(textWithoutURLs, ".!?"); end > 0 {
		firstSentence = strings.TrimSpace(textWithoutURLs[:end])
	} else {
		firstSentence = textWithoutURLs
	}

	words := strings.Fields(firstSentence)
	if len(words) == 0 {
		return ""
	}

	if maxWords > 0 && len(words) > maxWords {
		return strings.Join(words[:maxWords], " ") + "..."
	}

	return strings.Join(words, " ")
}
