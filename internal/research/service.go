// Package research ties article sources, enrichment and topic clustering
// together for the API and the console.
package research

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/DeafMist/news-research-radar/internal/logger"
	"github.com/DeafMist/news-research-radar/internal/models"
	"github.com/DeafMist/news-research-radar/internal/processing"
	"github.com/DeafMist/news-research-radar/internal/sentiment"
	"github.com/DeafMist/news-research-radar/internal/summarizer"
	"github.com/DeafMist/news-research-radar/internal/topics"
)

// Source returns articles matching a query.
type Source interface {
	Search(ctx context.Context, query, language string, pageSize int) ([]models.Article, error)
}

// Fetcher downloads the full text behind an article URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Deps are the collaborators of a Service. Any of them may be nil.
type Deps struct {
	Sources    []Source
	Fetcher    Fetcher
	Summarizer summarizer.Summarizer
	Scorer     sentiment.Scorer
}

// Settings tune enrichment.
type Settings struct {
	Language         string
	PageSize         int
	ScrapeMinChars   int
	KeywordLimit     int
	KeywordMinLength int
	// TopicsInFlight caps clustering runs, including ones whose caller has
	// already given up.
	TopicsInFlight   int
}

func (s Settings) withDefaults() Settings {
	if s.Language == "" {
		s.Language = "en"
	}
	if s.PageSize <= 0 {
		s.PageSize = 20
	}
	if s.ScrapeMinChars <= 0 {
		s.ScrapeMinChars = 400
	}
	if s.KeywordLimit <= 0 {
		s.KeywordLimit = 10
	}
	if s.KeywordMinLength <= 0 {
		s.KeywordMinLength = 4
	}
	if s.TopicsInFlight <= 0 {
		s.TopicsInFlight = 2
	}
	return s
}

// Service runs searches, enrichment and clustering.
type Service struct {
	deps     Deps
	settings Settings
	log      *slog.Logger
	now      func() time.Time
	slots    *semaphore.Weighted
	cluster  func(docs []string, numTopics int, opts topics.Options) ([]topics.Topic, error)
}

// New builds a Service.
func New(deps Deps, settings Settings, log *slog.Logger) *Service {
	settings = settings.withDefaults()
	return &Service{
		deps:     deps,
		settings: settings,
		log:      logger.OrDiscard(log),
		now:      time.Now,
		slots:    semaphore.NewWeighted(int64(settings.TopicsInFlight)),
		cluster:  topics.ClusterWithOptions,
	}
}

// Search is SearchIn with the configured language.
func (s *Service) Search(ctx context.Context, query string, pageSize int) ([]models.Article, error) {
	return s.SearchIn(ctx, query, "", pageSize)
}

// SearchIn queries every source and merges the results, dropping duplicate
// URLs. Unavailable sources count as returning nothing. An empty language
// means the configured one.
func (s *Service) SearchIn(ctx context.Context, query, language string, pageSize int) ([]models.Article, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("search: empty query")
	}
	if pageSize <= 0 {
		pageSize = s.settings.PageSize
	}
	if language == "" {
		language = s.settings.Language
	}

	var (
		out  []models.Article
		seen = make(map[string]struct{})
	)
	for _, src := range s.deps.Sources {
		articles, err := src.Search(ctx, query, language, pageSize)
		if err != nil {
			if errors.Is(err, models.ErrSourceUnavailable) {
				s.log.Warn("article source unavailable",
					slog.String("query", query),
					slog.String("source", fmt.Sprintf("%T", src)),
					slog.Any("err", err),
				)
				continue
			}
			return nil, fmt.Errorf("search %q: %w", query, err)
		}
		for _, a := range articles {
			if a.URL != "" {
				if _, dup := seen[a.URL]; dup {
					continue
				}
				seen[a.URL] = struct{}{}
			}
			out = append(out, a)
			if len(out) == pageSize {
				return out, nil
			}
		}
	}
	return out, nil
}

// Enrich turns an article into a NewsDocument: full text when the body is
// truncated, a summary, a sentiment label and keywords. It never fails; each
// collaborator degrades on its own.
func (s *Service) Enrich(ctx context.Context, query string, a models.Article) models.NewsDocument {
	text := s.fullText(ctx, a)

	ts := a.PublishedAt
	if ts.IsZero() {
		ts = s.now()
	}

	title := strings.TrimSpace(a.Title)
	if title == "" {
		title = processing.GenerateTitleFromText(text, 12)
	}

	scored := strings.TrimSpace(a.Description)
	if scored == "" {
		scored = text
	}

	label := sentiment.Unknown
	if s.deps.Scorer != nil {
		label = s.deps.Scorer.Score(scored)
	}

	return models.NewsDocument{
		ID:          processing.BuildDocumentID(title, a.URL, ts),
		Title:       title,
		Description: a.Description,
		Text:        text,
		URL:         a.URL,
		Timestamp:   ts.UTC(),
		Keywords:    processing.ExtractKeywords(title+" "+text, s.settings.KeywordLimit, s.settings.KeywordMinLength),
		Source:      a.Source,
		URLs:        processing.ExtractURLs(text),
		Summary:     summarizer.SummarizeOrPlaceholder(ctx, s.deps.Summarizer, text, s.log),
		Sentiment:   string(label),
		Query:       query,
	}
}

// EnrichAll enriches articles in order.
func (s *Service) EnrichAll(ctx context.Context, query string, articles []models.Article) []models.NewsDocument {
	docs := make([]models.NewsDocument, 0, len(articles))
	for _, a := range articles {
		if ctx.Err() != nil {
			break
		}
		docs = append(docs, s.Enrich(ctx, query, a))
	}
	return docs
}

func (s *Service) fullText(ctx context.Context, a models.Article) string {
	body := a.Body()
	if s.deps.Fetcher == nil || a.URL == "" || !processing.IsTruncated(body, s.settings.ScrapeMinChars) {
		return processing.StripTruncationMarker(body)
	}

	full, err := s.deps.Fetcher.Fetch(ctx, a.URL)
	if err != nil {
		s.log.Debug("full text unavailable", slog.String("url", a.URL), slog.Any("err", err))
		return processing.StripTruncationMarker(body)
	}
	return full
}

// Topics clusters docs, giving up with ctx.Err() once ctx is done. Core
// errors are returned unchanged so callers can match them with errors.Is.
// A run keeps its slot until it finishes, even after the caller gives up, so
// at most Settings.TopicsInFlight fits run at once.
func (s *Service) Topics(ctx context.Context, docs []string, numTopics, topK int) ([]topics.Topic, error) {
	opts := topics.DefaultOptions()
	if topK > 0 {
		opts.TopK = topK
	}

	type result struct {
		topics []topics.Topic
		err    error
	}
	if err := s.slots.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	done := make(chan result, 1)
	go func() {
		defer s.slots.Release(1)
		ts, err := s.cluster(docs, numTopics, opts)
		done <- result{topics: ts, err: err}
	}()

	select {
	case r := <-done:
		return r.topics, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// DocumentTexts returns the text of each document that clustering should see.
func DocumentTexts(docs []models.NewsDocument) []string {
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, strings.Join(nonEmpty(d.Title, d.Description, d.Text), " "))
	}
	return out
}

// ArticleTexts is DocumentTexts for raw articles.
func ArticleTexts(articles []models.Article) []string {
	out := make([]string, 0, len(articles))
	for _, a := range articles {
		out = append(out, strings.Join(nonEmpty(a.Title, a.Description, a.Content), " "))
	}
	return out
}

func nonEmpty(parts ...string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
