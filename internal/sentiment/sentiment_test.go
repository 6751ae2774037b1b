package sentiment_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/DeafMist/news-research-radar/internal/sentiment"
)

func TestLexiconScore(t *testing.T) {
	scorer := sentiment.NewLexicon(nil)

	tests := []struct {
		name string
		text string
		want sentiment.Label
	}{
		{name: "positive", text: "Tech stocks soared after strong earnings", want: sentiment.Positive},
		{name: "negative", text: "Shares plunged amid fraud fears", want: sentiment.Negative},
		{name: "neutral no words", text: "The meeting is on Tuesday", want: sentiment.Neutral},
		{name: "empty", text: "", want: sentiment.Neutral},
		{name: "negated positive", text: "The results were not good", want: sentiment.Negative},
		{name: "contraction negation", text: "Shares didn't fall", want: sentiment.Positive},
		{name: "negation reset by punctuation", text: "No change. Growth continued", want: sentiment.Positive},
		{name: "balanced", text: "good bad", want: sentiment.Neutral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, scorer.Score(tt.text))
		})
	}
}

func TestPolarityBounds(t *testing.T) {
	scorer := sentiment.NewLexicon(nil)
	p, ok := scorer.Polarity("extremely very excellent")
	require.True(t, ok)
	require.LessOrEqual(t, p, 1.0)

	_, ok = scorer.Polarity("nothing scored here")
	require.False(t, ok)
}

func TestLabelValid(t *testing.T) {
	for _, l := range []sentiment.Label{sentiment.Positive, sentiment.Negative, sentiment.Neutral, sentiment.Unknown} {
		require.True(t, l.Valid())
	}
	require.False(t, sentiment.Label("mixed").Valid())
}
