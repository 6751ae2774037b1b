// Package sentiment scores the polarity of article text with a word lexicon.
package sentiment

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/DeafMist/news-research-radar/internal/logger"
	"github.com/DeafMist/news-research-radar/internal/processing"
)

// Label is the polarity class of a text.
type Label string

const (
	Positive Label = "positive"
	Negative Label = "negative"
	Neutral  Label = "neutral"
	Unknown  Label = "unknown"
)

// Valid reports whether l is one of the four known labels.
func (l Label) Valid() bool {
	switch l {
	case Positive, Negative, Neutral, Unknown:
		return true
	}
	return false
}

// Scorer classifies text. Implementations never fail: internal errors map to Unknown.
type Scorer interface {
	Score(text string) Label
}

// Lexicon averages word polarities in [-1, 1]. A negator flips the next
// scored word and an intensifier scales it.
type Lexicon struct {
	words        map[string]float64
	negators     map[string]struct{}
	intensifiers map[string]float64
	log          *slog.Logger
}

// NewLexicon returns a scorer over the built-in English news lexicon.
func NewLexicon(log *slog.Logger) *Lexicon {
	return &Lexicon{
		words:        defaultWords,
		negators:     defaultNegators,
		intensifiers: defaultIntensifiers,
		log:          logger.OrDiscard(log),
	}
}

// Score returns Positive for mean polarity above zero, Negative below zero
// and Neutral otherwise, including text with no scored words.
func (l *Lexicon) Score(text string) (label Label) {
	defer func() {
		if r := recover(); r != nil {
			l.log.Warn("sentiment scoring failed", slog.Any("err", fmt.Errorf("%v", r)))
			label = Unknown
		}
	}()

	p, ok := l.Polarity(text)
	switch {
	case !ok:
		return Neutral
	case p > 0:
		return Positive
	case p < 0:
		return Negative
	default:
		return Neutral
	}
}

// Polarity returns the mean polarity of scored words and whether any word was scored.
func (l *Lexicon) Polarity(text string) (float64, bool) {
	var (
		sum    float64
		n      int
		negate bool
		boost  = 1.0
	)
	for _, tok := range processing.Tokenize(text) {
		w := strings.ToLower(tok)
		if _, ok := l.negators[w]; ok {
			negate = true
			continue
		}
		if f, ok := l.intensifiers[w]; ok {
			boost *= f
			continue
		}
		v, ok := l.words[w]
		if !ok {
			// Punctuation ends the reach of a pending negator.
			if r, size := utf8.DecodeRuneInString(w); size == len(w) && unicode.IsPunct(r) {
				negate, boost = false, 1.0
			}
			continue
		}
		v *= boost
		if negate {
			v *= -0.5
		}
		sum += clamp(v)
		n++
		negate, boost = false, 1.0
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

func clamp(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
