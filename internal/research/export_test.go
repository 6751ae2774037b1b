package research

import "github.com/DeafMist/news-research-radar/internal/topics"

// SetCluster swaps the clustering function behind Topics.
func SetCluster(s *Service, fn func([]string, int, topics.Options) ([]topics.Topic, error)) {
	s.cluster = fn
}
