// Package topics clusters a set of documents into latent topics: documents
// are normalized, filtered, weighted with TF-IDF, fitted with LDA and each
// topic is labeled with its most representative terms.
//
// Every call owns its matrix, model and random source; nothing is cached
// between calls, so concurrent calls are independent.
package topics

import (
	"fmt"

	"github.com/DeafMist/news-research-radar/internal/processing"
)

const (
	// DefaultNumTopics is used by callers that do not choose a topic count.
	DefaultNumTopics = 5
	// DefaultIterations bounds the LDA fitting passes.
	DefaultIterations = 200
)

// Options tunes a clustering run. Zero fields fall back to the defaults.
type Options struct {
	TopK           int
	Seed           int64
	Iterations     int
	MinTokenLength int
}

// DefaultOptions returns the options used by Cluster.
func DefaultOptions() Options {
	return Options{
		TopK:           DefaultTopK,
		Seed:           0,
		Iterations:     DefaultIterations,
		MinTokenLength: DefaultMinTokenLength,
	}
}

func (o Options) withDefaults() Options {
	if o.TopK <= 0 {
		o.TopK = DefaultTopK
	}
	if o.Iterations <= 0 {
		o.Iterations = DefaultIterations
	}
	if o.MinTokenLength <= 0 {
		o.MinTokenLength = DefaultMinTokenLength
	}
	return o
}

// Cluster groups documents into numTopics topics with the default options.
func Cluster(documents []string, numTopics int) ([]Topic, error) {
	return ClusterWithOptions(documents, numTopics, DefaultOptions())
}

// ClusterWithOptions runs the full pipeline. It returns ErrInvalidParameter
// for numTopics < 1, ErrEmptyCorpus when no document survives normalization
// and ErrEmptyVocabulary when vectorization keeps no terms.
func ClusterWithOptions(documents []string, numTopics int, opts Options) ([]Topic, error) {
	if numTopics < 1 {
		return nil, fmt.Errorf("%w: num_topics must be at least 1, got %d", ErrInvalidParameter, numTopics)
	}
	opts = opts.withDefaults()

	docs, err := FilterNonEmpty(processing.NormalizeAll(documents))
	if err != nil {
		return nil, err
	}

	dtm, err := Vectorize(docs, opts.MinTokenLength)
	if err != nil {
		return nil, err
	}

	weights, err := FitTopics(dtm, numTopics, opts)
	if err != nil {
		return nil, err
	}

	return LabelTopics(weights, dtm.Vocabulary, opts.TopK)
}
