package research

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/DeafMist/news-research-radar/internal/models"
)

// LoadSamples reads a JSON array of articles, as shipped in
// config/sample_articles.json.
func LoadSamples(path string) ([]models.Article, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read samples: %w", err)
	}
	var articles []models.Article
	if err := json.Unmarshal(data, &articles); err != nil {
		return nil, fmt.Errorf("parse samples %s: %w", path, err)
	}
	return articles, nil
}

// SampleSource serves a fixed article set, for offline use.
type SampleSource struct {
	articles []models.Article
}

// NewSampleSource wraps articles.
func NewSampleSource(articles []models.Article) *SampleSource {
	return &SampleSource{articles: articles}
}

// All returns every sample.
func (s *SampleSource) All() []models.Article {
	return append([]models.Article(nil), s.articles...)
}

// Search returns the samples mentioning any query term. Language is ignored.
func (s *SampleSource) Search(_ context.Context, query, _ string, pageSize int) ([]models.Article, error) {
	terms := strings.Fields(strings.ToLower(query))
	var out []models.Article
	for _, a := range s.articles {
		hay := strings.ToLower(a.Title + " " + a.Description + " " + a.Content)
		for _, t := range terms {
			if strings.Contains(hay, t) {
				out = append(out, a)
				break
			}
		}
		if pageSize > 0 && len(out) == pageSize {
			break
		}
	}
	return out, nil
}
