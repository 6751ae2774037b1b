package processing_test

import (
	"strings"
	"testing"

	"github.com/DeafMist/news-research-radar/internal/processing"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: ""},
		{name: "punctuation only", input: "!!! ... ???", want: ""},
		{name: "lowercase", input: "Stocks RALLIED Today", want: "stocks rallied today"},
		{name: "links", input: "read www.example.com and https://x.io/a?b=c now", want: "read and now"},
		{name: "mention and hashtag", input: "@reuters says #Markets are up", want: "says markets are up"},
		{name: "digits dropped", input: "Q3 earnings rose 12 percent", want: "earnings rose percent"},
		{name: "contraction", input: "Investors don't panic", want: "investors do panic"},
		{name: "trailing punctuation", input: "Oil, gas; and coal.", want: "oil gas and coal"},
		{name: "non latin", input: "Рынки выросли", want: "рынки выросли"},
		{name: "whitespace", input: "  a \n\t b  ", want: "a b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, processing.Normalize(tt.input))
		})
	}
}

func TestNormalizeStripsLinksAndMentions(t *testing.T) {
	got := processing.Normalize("Check http://x.com #tag @bob")
	require.NotContains(t, got, "http")
	require.NotContains(t, got, "@bob")
	require.NotContains(t, got, "#")
	require.Equal(t, "check tag", got)
}

func TestNormalizeComposesAccents(t *testing.T) {
	decomposed := "Cafe\u0301 prices"
	require.Equal(t, "caf\u00e9 prices", processing.Normalize(decomposed))
}

func TestNormalizeIsIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"Check http://x.com #tag @bob",
		"Stocks rallied on strong earnings reports today",
		"He said: \"it's done\" (finally) -- www.site.org/x",
		"İstanbul ŞEHİR haberleri",
		"naïve façade résumé",
		"@@@ ### ---",
		"U.S. markets well-known",
	}

	for _, in := range inputs {
		once := processing.Normalize(in)
		require.Equal(t, once, processing.Normalize(once), "input %q", in)
		require.Equal(t, strings.TrimSpace(once), once)
		require.NotContains(t, once, "  ")
	}
}

func TestNormalizeAllKeepsPositions(t *testing.T) {
	got := processing.NormalizeAll([]string{"Hello World", "", "!!!"})
	require.Equal(t, []string{"hello world", "", ""}, got)
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "empty", input: "", want: nil},
		{name: "words", input: "oil prices", want: []string{"oil", "prices"}},
		{name: "edges", input: "(hello), world!", want: []string{"(", "hello", ")", ",", "world", "!"}},
		{name: "clitics", input: "can't we're it's", want: []string{"ca", "n't", "we", "'re", "it", "'s"}},
		{name: "inner punctuation", input: "U.S. well-known", want: []string{"U.S", ".", "well-known"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, processing.Tokenize(tt.input))
		})
	}
}
