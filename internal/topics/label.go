package topics

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// DefaultTopK is the number of representative terms kept per topic.
const DefaultTopK = 10

// Topic is one fitted topic with its representative terms.
type Topic struct {
	ID      int       `json:"id"`
	Label   string    `json:"label"`
	Terms   []string  `json:"terms"`
	Weights []float64 `json:"weights"`
}

// MostSignificantFirst returns a copy of t with terms ordered by descending weight.
func (t Topic) MostSignificantFirst() Topic {
	out := Topic{
		ID:      t.ID,
		Label:   t.Label,
		Terms:   make([]string, len(t.Terms)),
		Weights: make([]float64, len(t.Weights)),
	}
	for i := range t.Terms {
		out.Terms[len(t.Terms)-1-i] = t.Terms[i]
	}
	for i := range t.Weights {
		out.Weights[len(t.Weights)-1-i] = t.Weights[i]
	}
	return out
}

// LabelTopics turns each row of weights into a Topic holding the topK
// highest-weighted vocabulary terms. Terms are the last topK entries of a
// stable ascending sort, so they are listed from lowest to highest weight.
func LabelTopics(weights mat.Matrix, vocabulary []string, topK int) ([]Topic, error) {
	if weights == nil {
		return nil, fmt.Errorf("%w: nil weights", ErrShapeMismatch)
	}
	rows, cols := weights.Dims()
	if cols != len(vocabulary) {
		return nil, fmt.Errorf("%w: %d weights per topic, %d vocabulary terms", ErrShapeMismatch, cols, len(vocabulary))
	}
	if topK <= 0 {
		topK = DefaultTopK
	}
	if topK > cols {
		topK = cols
	}

	out := make([]Topic, rows)
	order := make([]int, cols)
	for t := 0; t < rows; t++ {
		for j := range order {
			order[j] = j
		}
		sort.SliceStable(order, func(a, b int) bool {
			return weights.At(t, order[a]) < weights.At(t, order[b])
		})

		top := order[cols-topK:]
		topic := Topic{
			ID:      t,
			Label:   fmt.Sprintf("Topic %d", t),
			Terms:   make([]string, len(top)),
			Weights: make([]float64, len(top)),
		}
		for i, j := range top {
			topic.Terms[i] = vocabulary[j]
			topic.Weights[i] = weights.At(t, j)
		}
		out[t] = topic
	}
	return out, nil
}
