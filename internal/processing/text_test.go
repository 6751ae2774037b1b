package processing_test

import (
	"testing"
	"time"

	"github.com/DeafMist/news-research-radar/internal/processing"
	"github.com/stretchr/testify/require"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: ""},
		{name: "punctuation", input: "Hello!!!   world", want: "Hello world"},
		{name: "collapse whitespace", input: "foo\n\nbar\t baz", want: "foo bar baz"},
		{name: "remove urls", input: "Check https://example.com for info", want: "Check for info"},
		{name: "entities", input: "Tom &amp; Jerry", want: "Tom Jerry"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := processing.CleanText(tt.input); got != tt.want {
				t.Fatalf("CleanText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestExtractKeywords(t *testing.T) {
	text := "Market market stocks Stocks stocks oil and and growth"
	got := processing.ExtractKeywords(text, 3, 3)
	require.Equal(t, []string{"stocks", "market", "growth"}, got)

	require.Nil(t, processing.ExtractKeywords("", 5, 3))
	require.Nil(t, processing.ExtractKeywords("the and with", 5, 3))
}

func TestExtractKeywordsIgnoresURLWords(t *testing.T) {
	text := "Stocks rally rally https://example.com/market-deals oil"
	got := processing.ExtractKeywords(text, 3, 3)
	require.ElementsMatch(t, []string{"rally", "stocks", "oil"}, got)
}

func TestBuildDocumentID(t *testing.T) {
	ts := time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)
	id1 := processing.BuildDocumentID("title", "https://example.com/a", ts)
	id2 := processing.BuildDocumentID("title", "https://example.com/a", ts)
	require.NotEmpty(t, id1)
	require.Equal(t, id1, id2)

	id3 := processing.BuildDocumentID("title", "https://example.com/b", ts)
	require.NotEqual(t, id1, id3)
}

func TestExtractURLs(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "empty", input: "", want: nil},
		{name: "no urls", input: "Hello world", want: nil},
		{name: "single url", input: "Check https://example.com for more", want: []string{"https://example.com"}},
		{name: "multiple urls", input: "Go to https://example.com or http://test.org now", want: []string{"https://example.com", "http://test.org"}},
		{name: "duplicate urls", input: "https://example.com and https://example.com again", want: []string{"https://example.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, processing.ExtractURLs(tt.input))
		})
	}
}

func TestRemoveURLs(t *testing.T) {
	require.Equal(t, "Check   for more", processing.RemoveURLs("Check https://example.com for more"))
	require.Equal(t, "Hello world", processing.RemoveURLs("Hello world"))
}

func TestTruncation(t *testing.T) {
	body := "Markets opened higher on Monday as investors… [+2381 chars]"
	require.True(t, processing.IsTruncated(body, 10))
	require.Equal(t, "Markets opened higher on Monday as investors", processing.StripTruncationMarker(body))

	require.True(t, processing.IsTruncated("short", 10))
	require.False(t, processing.IsTruncated("a body long enough to keep", 10))
}

func TestGenerateTitleFromText(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		maxWords int
		want     string
	}{
		{name: "empty", text: "", maxWords: 10, want: ""},
		{name: "single sentence", text: "Oil prices rose sharply.", maxWords: 10, want: "Oil prices rose sharply"},
		{name: "multiple sentences", text: "Stocks rallied today! Tech led gains. Bonds fell.", maxWords: 10, want: "Stocks rallied today"},
		{name: "long text truncated", text: "Central banks signal a slower pace of rate cuts this year", maxWords: 5, want: "Central banks signal a slower..."},
		{name: "question mark", text: "Will rates fall? Analysts disagree.", maxWords: 10, want: "Will rates fall"},
		{name: "unlimited words", text: "Earnings beat expectations", maxWords: 0, want: "Earnings beat expectations"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, processing.GenerateTitleFromText(tt.text, tt.maxWords))
		})
	}
}
