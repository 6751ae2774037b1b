package topics

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// DefaultMinTokenLength drops single-character tokens.
const DefaultMinTokenLength = 2

// DocumentTermMatrix holds TF-IDF weights: one row per document, one column
// per vocabulary term. Vocabulary is sorted lexicographically and indexes the
// columns.
type DocumentTermMatrix struct {
	Matrix     *mat.Dense
	Vocabulary []string
}

// Vectorize builds the TF-IDF document-term matrix for already-normalized
// documents. Terms are whitespace-separated tokens of at least minTokenLen
// runes (DefaultMinTokenLength when minTokenLen <= 0). Each weight is
// tf * (ln((1+n)/(1+df)) + 1) and every row is scaled to unit L2 norm.
func Vectorize(docs []string, minTokenLen int) (*DocumentTermMatrix, error) {
	if len(docs) == 0 {
		return nil, ErrEmptyCorpus
	}
	if minTokenLen <= 0 {
		minTokenLen = DefaultMinTokenLength
	}

	counts := make([]map[string]int, len(docs))
	df := make(map[string]int)
	for i, doc := range docs {
		tf := make(map[string]int)
		for _, tok := range strings.Fields(doc) {
			if utf8.RuneCountInString(tok) < minTokenLen {
				continue
			}
			tf[tok]++
		}
		for term := range tf {
			df[term]++
		}
		counts[i] = tf
	}

	if len(df) == 0 {
		return nil, ErrEmptyVocabulary
	}

	vocab := make([]string, 0, len(df))
	for term := range df {
		vocab = append(vocab, term)
	}
	sort.Strings(vocab)

	n := float64(len(docs))
	idf := make([]float64, len(vocab))
	for j, term := range vocab {
		idf[j] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}

	m := mat.NewDense(len(docs), len(vocab), nil)
	for i, tf := range counts {
		row := m.RawRowView(i)
		for j, term := range vocab {
			if c := tf[term]; c > 0 {
				row[j] = float64(c) * idf[j]
			}
		}
		if norm := floats.Norm(row, 2); norm > 0 {
			floats.Scale(1/norm, row)
		}
	}

	return &DocumentTermMatrix{Matrix: m, Vocabulary: vocab}, nil
}
