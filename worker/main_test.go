package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"

	"github.com/DeafMist/news-research-radar/internal/models"
	"github.com/DeafMist/news-research-radar/internal/queue"
	"github.com/DeafMist/news-research-radar/internal/research"
	"github.com/DeafMist/news-research-radar/internal/sentiment"
	"github.com/DeafMist/news-research-radar/internal/summarizer"
	"github.com/DeafMist/news-research-radar/internal/ttlcache"
)

type stubIndexer struct {
	docs []models.NewsDocument
	err  error
}

func (s *stubIndexer) IndexArticle(_ context.Context, doc models.NewsDocument) error {
	if s.err != nil {
		return s.err
	}
	s.docs = append(s.docs, doc)
	return nil
}

type countingSummarizer struct{ calls int }

func (c *countingSummarizer) Summarize(context.Context, string) (string, error) {
	c.calls++
	return "A short summary.", nil
}

func newService(sum summarizer.Summarizer) *research.Service {
	return research.New(research.Deps{
		Summarizer: sum,
		Scorer:     sentiment.NewLexicon(nil),
	}, research.Settings{KeywordLimit: 5, KeywordMinLength: 3}, nil)
}

func message(t *testing.T, m queue.ArticleMessage) kafka.Message {
	t.Helper()
	data, err := json.Marshal(m)
	require.NoError(t, err)
	return kafka.Message{Value: data}
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestProcessMessageIndexesDocument(t *testing.T) {
	idx := &stubIndexer{}
	sum := &countingSummarizer{}
	seen := ttlcache.NewSet(100, time.Hour)

	msg := message(t, queue.ArticleMessage{
		Query:       "earnings",
		Title:       "Tech giants report record earnings",
		Description: "Strong growth lifts profits",
		Content:     "Quarterly earnings beat expectations across the sector.",
		URL:         "https://example.com/earnings",
		Source:      "Wire",
		PublishedAt: "2024-01-02T15:04:05Z",
	})

	require.NoError(t, processMessage(context.Background(), discard(), idx, newService(sum), seen, msg))
	require.Len(t, idx.docs, 1)

	doc := idx.docs[0]
	require.Equal(t, "Tech giants report record earnings", doc.Title)
	require.Equal(t, "Wire", doc.Source)
	require.Equal(t, "earnings", doc.Query)
	require.Equal(t, "A short summary.", doc.Summary)
	require.Equal(t, string(sentiment.Positive), doc.Sentiment)
	require.Equal(t, time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC), doc.Timestamp)
	require.Contains(t, doc.Keywords, "earnings")

	// The same URL again is skipped before summarization.
	require.NoError(t, processMessage(context.Background(), discard(), idx, newService(sum), seen, msg))
	require.Len(t, idx.docs, 1)
	require.Equal(t, 1, sum.calls)
}

func TestProcessMessageGeneratesTitleWhenMissing(t *testing.T) {
	idx := &stubIndexer{}
	msg := message(t, queue.ArticleMessage{
		Content: "Oil prices jumped after the supply cut. Analysts expect more volatility.",
	})

	require.NoError(t, processMessage(context.Background(), discard(), idx, newService(nil), ttlcache.NewSet(10, time.Hour), msg))
	require.Len(t, idx.docs, 1)

	doc := idx.docs[0]
	require.Equal(t, "Oil prices jumped after the supply cut", doc.Title)
	require.Equal(t, "unknown", doc.Source)
	require.Equal(t, summarizer.Placeholder, doc.Summary)
	require.False(t, doc.Timestamp.IsZero())
}

func TestProcessMessageRejectsBadPayloads(t *testing.T) {
	seen := ttlcache.NewSet(10, time.Hour)
	idx := &stubIndexer{}

	err := processMessage(context.Background(), discard(), idx, newService(nil), seen, kafka.Message{Value: []byte("{")})
	require.Error(t, err)

	err = processMessage(context.Background(), discard(), idx, newService(nil), seen, message(t, queue.ArticleMessage{URL: "https://x"}))
	require.EqualError(t, err, "empty payload")
	require.Empty(t, idx.docs)
}

func TestProcessMessageIndexFailureIsRetryable(t *testing.T) {
	seen := ttlcache.NewSet(10, time.Hour)
	idx := &stubIndexer{err: errors.New("es down")}
	msg := message(t, queue.ArticleMessage{Title: "Markets", URL: "https://example.com/m"})

	require.Error(t, processMessage(context.Background(), discard(), idx, newService(nil), seen, msg))
	require.False(t, seen.Contains("url:https://example.com/m"))

	idx.err = nil
	require.NoError(t, processMessage(context.Background(), discard(), idx, newService(nil), seen, msg))
	require.Len(t, idx.docs, 1)
}

func TestParseTimestamp(t *testing.T) {
	ts := parseTimestamp("2024-02-03T04:05:06Z")
	require.Equal(t, time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC), ts)

	legacy := parseTimestamp("2024-02-03 04:05:06")
	require.Equal(t, time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC), legacy)

	rss := parseTimestamp("Sat, 03 Feb 2024 04:05:06 +0000")
	require.True(t, rss.Equal(legacy))

	require.True(t, parseTimestamp("invalid").IsZero())
	require.True(t, parseTimestamp("  ").IsZero())
}
