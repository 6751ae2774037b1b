// Package feeds is an article source over a fixed list of RSS/Atom feeds.
package feeds

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"gopkg.in/yaml.v3"

	"github.com/DeafMist/news-research-radar/internal/logger"
	"github.com/DeafMist/news-research-radar/internal/models"
)

// Config is the YAML layout of the feeds file:
//
//	feeds:
//	  - https://...
type Config struct {
	Feeds []string `yaml:"feeds"`
}

// LoadFeeds reads the feed URLs from path.
func LoadFeeds(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open feeds file: %w", err)
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode feeds file: %w", err)
	}
	urls := make([]string, 0, len(cfg.Feeds))
	for _, u := range cfg.Feeds {
		if u = strings.TrimSpace(u); u != "" {
			urls = append(urls, u)
		}
	}
	return urls, nil
}

// Source searches the items of its feeds.
type Source struct {
	urls   []string
	parser *gofeed.Parser
	log    *slog.Logger
}

// NewSource builds a source over urls.
func NewSource(urls []string, timeout time.Duration, log *slog.Logger) *Source {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: timeout}
	return &Source{urls: urls, parser: parser, log: logger.OrDiscard(log)}
}

// Search fetches every feed and returns the newest pageSize items whose
// text contains every query word. Feeds that fail are skipped; when all of
// them fail the error wraps models.ErrSourceUnavailable.
func (s *Source) Search(ctx context.Context, query, language string, pageSize int) ([]models.Article, error) {
	terms := strings.Fields(strings.ToLower(query))

	var (
		out []models.Article
		ok  int
	)
	for _, url := range s.urls {
		feed, err := s.parser.ParseURLWithContext(url, ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			s.log.Warn("parse feed", slog.String("url", url), slog.Any("err", err))
			continue
		}
		ok++
		if !languageMatches(feed.Language, language) {
			continue
		}
		for _, item := range feed.Items {
			a := toArticle(feed, item)
			if matches(a, terms) {
				out = append(out, a)
			}
		}
	}
	if ok == 0 && len(s.urls) > 0 {
		return nil, fmt.Errorf("%w: no feed could be read", models.ErrSourceUnavailable)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PublishedAt.After(out[j].PublishedAt)
	})
	if pageSize > 0 && len(out) > pageSize {
		out = out[:pageSize]
	}
	return out, nil
}

func toArticle(feed *gofeed.Feed, item *gofeed.Item) models.Article {
	a := models.Article{
		Title:       strings.TrimSpace(item.Title),
		Description: strings.TrimSpace(item.Description),
		Content:     strings.TrimSpace(item.Content),
		URL:         item.Link,
		Source:      feed.Title,
	}
	switch {
	case item.PublishedParsed != nil:
		a.PublishedAt = item.PublishedParsed.UTC()
	case item.UpdatedParsed != nil:
		a.PublishedAt = item.UpdatedParsed.UTC()
	}
	return a
}

func matches(a models.Article, terms []string) bool {
	if len(terms) == 0 {
		return true
	}
	text := strings.ToLower(a.Title + " " + a.Description + " " + a.Content)
	for _, t := range terms {
		if !strings.Contains(text, t) {
			return false
		}
	}
	return true
}

// languageMatches compares primary language subtags; unknown feed languages pass.
func languageMatches(feedLang, want string) bool {
	if feedLang == "" || want == "" {
		return true
	}
	primary := func(s string) string {
		s = strings.ToLower(strings.TrimSpace(s))
		if i := strings.IndexAny(s, "-_"); i >= 0 {
			s = s[:i]
		}
		return s
	}
	return primary(feedLang) == primary(want)
}
