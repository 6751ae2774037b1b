package queue_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"

	"github.com/DeafMist/news-research-radar/internal/models"
	"github.com/DeafMist/news-research-radar/internal/queue"
)

type fakeWriter struct {
	msgs    []kafka.Message
	failFor int
	calls   int
	closed  bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	f.calls++
	if f.calls <= f.failFor {
		return errors.New("broker down")
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestPublishArticles(t *testing.T) {
	w := &fakeWriter{}
	pub := queue.NewPublisher(w, nil)

	published := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	n, err := pub.PublishArticles(context.Background(), "oil", []models.Article{
		{Title: "Oil rises", Content: "Crude climbed", URL: "https://example.com/a", Source: "Wire", PublishedAt: published},
		{},
		{Description: "No title but a body", URL: "https://example.com/b"},
	})
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Len(t, w.msgs, 2)
	require.Equal(t, "https://example.com/a", string(w.msgs[0].Key))

	msg, err := queue.Decode(w.msgs[0].Value)
	require.NoError(t, err)
	require.Equal(t, "oil", msg.Query)
	require.Equal(t, "Oil rises", msg.Title)
	require.Equal(t, "2024-05-01T10:00:00Z", msg.PublishedAt)
	require.NotEmpty(t, msg.FetchedAt)

	n, err = pub.PublishArticles(context.Background(), "oil", nil)
	require.NoError(t, err)
	require.Zero(t, n)

	require.NoError(t, pub.Close())
	require.True(t, w.closed)
}

func TestPublishArticlesWriterError(t *testing.T) {
	pub := queue.NewPublisher(&fakeWriter{failFor: 1}, nil)
	_, err := pub.PublishArticles(context.Background(), "oil", []models.Article{{Title: "x"}})
	require.Error(t, err)
}

func TestDeadLetterRetries(t *testing.T) {
	w := &fakeWriter{failFor: 2}
	dlq := queue.NewDeadLetter(w, 3, time.Millisecond, nil)

	msg := kafka.Message{Value: []byte(`{}`), Partition: 2, Offset: 41}
	require.NoError(t, dlq.Send(context.Background(), msg, errors.New("bad payload")))
	require.Equal(t, 3, w.calls)
	require.Len(t, w.msgs, 1)

	headers := map[string]string{}
	for _, h := range w.msgs[0].Headers {
		headers[h.Key] = string(h.Value)
	}
	require.Equal(t, "2", headers["original_partition"])
	require.Equal(t, "41", headers["original_offset"])
	require.Equal(t, "bad payload", headers["error"])
}

func TestDeadLetterExhausted(t *testing.T) {
	w := &fakeWriter{failFor: 10}
	dlq := queue.NewDeadLetter(w, 2, time.Millisecond, nil)
	err := dlq.Send(context.Background(), kafka.Message{}, errors.New("x"))
	require.Error(t, err)
	require.Equal(t, 2, w.calls)
}

func TestDLQTopic(t *testing.T) {
	require.Equal(t, "articles_raw_dlq", queue.DLQTopic("articles_raw"))
}
