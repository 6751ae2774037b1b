package models

import (
	"errors"
	"time"
)

// ErrSourceUnavailable marks a transient article-source failure. Callers
// treat it as "no results" rather than a hard error.
var ErrSourceUnavailable = errors.New("article source unavailable")

// Article is a raw item returned by an article source.
type Article struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Content     string    `json:"content"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
}

// Body returns the richest text available for the article.
func (a Article) Body() string {
	if a.Content != "" {
		return a.Content
	}
	return a.Description
}

// NewsDocument represents the enriched article stored in Elasticsearch.
type NewsDocument struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Text        string    `json:"text"`
	URL         string    `json:"url,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	Keywords    []string  `json:"keywords"`
	Source      string    `json:"source"`
	URLs        []string  `json:"urls"`
	Summary     string    `json:"summary"`
	Sentiment   string    `json:"sentiment"`
	Query       string    `json:"query,omitempty"`
}
