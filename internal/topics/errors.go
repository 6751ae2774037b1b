package topics

import "errors"

var (
	// ErrEmptyCorpus is returned when no document has content after normalization.
	ErrEmptyCorpus = errors.New("topics: corpus has no non-empty documents")
	// ErrEmptyVocabulary is returned when vectorization keeps no terms.
	ErrEmptyVocabulary = errors.New("topics: vocabulary is empty")
	// ErrInvalidParameter is returned for out-of-range arguments such as num_topics < 1.
	ErrInvalidParameter = errors.New("topics: invalid parameter")
	// ErrShapeMismatch signals a topic-weight matrix that does not match the vocabulary.
	ErrShapeMismatch = errors.New("topics: shape mismatch")
)
