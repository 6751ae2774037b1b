package topics

import (
	"fmt"

	"github.com/e-gun/nlp"
	"github.com/e-gun/sparse"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

// FitTopics fits an LDA model with numTopics components over the matrix and
// returns the numTopics x |vocabulary| topic-term weights. The random source
// is seeded from opts.Seed and the model runs on a single worker, so equal
// inputs give equal outputs.
func FitTopics(dtm *DocumentTermMatrix, numTopics int, opts Options) (weights *mat.Dense, err error) {
	if numTopics < 1 {
		return nil, fmt.Errorf("%w: num_topics must be at least 1, got %d", ErrInvalidParameter, numTopics)
	}
	if dtm == nil || dtm.Matrix == nil {
		return nil, ErrEmptyCorpus
	}
	rows, cols := dtm.Matrix.Dims()
	if rows == 0 {
		return nil, ErrEmptyCorpus
	}
	if cols == 0 || len(dtm.Vocabulary) == 0 {
		return nil, ErrEmptyVocabulary
	}
	if cols != len(dtm.Vocabulary) {
		return nil, fmt.Errorf("%w: matrix has %d columns, vocabulary has %d terms", ErrShapeMismatch, cols, len(dtm.Vocabulary))
	}
	opts = opts.withDefaults()

	// nlp expects terms as rows and documents as columns. Each column must
	// list its terms in ascending order or the LDA sums vary between fits.
	coo := sparse.NewCOO(cols, rows, nil, nil, nil)
	for i := 0; i < rows; i++ {
		for j, v := range dtm.Matrix.RawRowView(i) {
			if v != 0 {
				coo.Set(j, i, v)
			}
		}
	}

	lda := nlp.NewLatentDirichletAllocation(numTopics)
	lda.Iterations = opts.Iterations
	lda.TransformationPasses = opts.Iterations / 2
	lda.Processes = 1
	lda.Rnd = rand.New(rand.NewSource(uint64(opts.Seed)))
	lda.Alpha = 1 / float64(numTopics)
	lda.Eta = 1 / float64(numTopics)

	defer func() {
		if r := recover(); r != nil {
			weights, err = nil, fmt.Errorf("fit lda: %v", r)
		}
	}()

	if _, err := lda.FitTransform(coo.ToCSC()); err != nil {
		return nil, fmt.Errorf("fit lda: %w", err)
	}

	return mat.DenseCopyOf(lda.Components()), nil
}
