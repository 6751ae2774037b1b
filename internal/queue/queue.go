// Package queue moves fetched articles from the API to the enrichment worker
// over Kafka and parks messages the worker cannot process.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/DeafMist/news-research-radar/internal/logger"
	"github.com/DeafMist/news-research-radar/internal/models"
)

// ArticleMessage is the JSON payload published for every fetched article.
type ArticleMessage struct {
	Query       string `json:"query"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	URL         string `json:"url"`
	Source      string `json:"source"`
	PublishedAt string `json:"published_at"`
	FetchedAt   string `json:"fetched_at"`
}

// NewArticleMessage converts an article fetched for query.
func NewArticleMessage(query string, a models.Article, fetchedAt time.Time) ArticleMessage {
	m := ArticleMessage{
		Query:       query,
		Title:       a.Title,
		Description: a.Description,
		Content:     a.Content,
		URL:         a.URL,
		Source:      a.Source,
		FetchedAt:   fetchedAt.UTC().Format(time.RFC3339),
	}
	if !a.PublishedAt.IsZero() {
		m.PublishedAt = a.PublishedAt.UTC().Format(time.RFC3339)
	}
	return m
}

// Decode parses a message value.
func Decode(value []byte) (ArticleMessage, error) {
	var m ArticleMessage
	if err := json.Unmarshal(value, &m); err != nil {
		return ArticleMessage{}, fmt.Errorf("decode article message: %w", err)
	}
	return m, nil
}

// MessageWriter is the part of *kafka.Writer the package needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// NewWriter builds a Kafka writer for topic.
func NewWriter(brokers []string, topic string) *kafka.Writer {
	return kafka.NewWriter(kafka.WriterConfig{
		Brokers:     brokers,
		Topic:       topic,
		Balancer:    &kafka.Hash{},
		MaxAttempts: 3,
	})
}

// Publisher writes article messages.
type Publisher struct {
	w   MessageWriter
	log *slog.Logger
	now func() time.Time
}

// NewPublisher wraps a writer.
func NewPublisher(w MessageWriter, log *slog.Logger) *Publisher {
	return &Publisher{w: w, log: logger.OrDiscard(log), now: time.Now}
}

// PublishArticles sends one message per article, keyed by URL so that
// re-fetches of the same article land on the same partition. It returns
// the number of messages written.
func (p *Publisher) PublishArticles(ctx context.Context, query string, articles []models.Article) (int, error) {
	if len(articles) == 0 {
		return 0, nil
	}
	now := p.now()
	msgs := make([]kafka.Message, 0, len(articles))
	for _, a := range articles {
		if strings.TrimSpace(a.Title) == "" && strings.TrimSpace(a.Body()) == "" {
			continue
		}
		value, err := json.Marshal(NewArticleMessage(query, a, now))
		if err != nil {
			return 0, fmt.Errorf("marshal article message: %w", err)
		}
		msgs = append(msgs, kafka.Message{Key: []byte(a.URL), Value: value})
	}
	if len(msgs) == 0 {
		return 0, nil
	}
	if err := p.w.WriteMessages(ctx, msgs...); err != nil {
		return 0, fmt.Errorf("publish articles: %w", err)
	}
	p.log.Info("articles queued", slog.String("query", query), slog.Int("count", len(msgs)))
	return len(msgs), nil
}

// Close closes the underlying writer.
func (p *Publisher) Close() error {
	return p.w.Close()
}

// DLQTopic names the dead-letter topic of topic.
func DLQTopic(topic string) string {
	return topic + "_dlq"
}

// DeadLetter forwards failed messages to the dead-letter topic.
type DeadLetter struct {
	w         MessageWriter
	attempts  int
	baseDelay time.Duration
	log       *slog.Logger
}

// NewDeadLetter retries each write up to attempts times with exponential backoff.
func NewDeadLetter(w MessageWriter, attempts int, baseDelay time.Duration, log *slog.Logger) *DeadLetter {
	if attempts <= 0 {
		attempts = 5
	}
	if baseDelay <= 0 {
		baseDelay = time.Second
	}
	return &DeadLetter{w: w, attempts: attempts, baseDelay: baseDelay, log: logger.OrDiscard(log)}
}

// Send copies msg to the dead-letter topic with the failure recorded in headers.
func (d *DeadLetter) Send(ctx context.Context, msg kafka.Message, cause error) error {
	headers := make([]kafka.Header, 0, len(msg.Headers)+4)
	headers = append(headers, msg.Headers...)
	headers = append(headers,
		kafka.Header{Key: "original_partition", Value: []byte(fmt.Sprintf("%d", msg.Partition))},
		kafka.Header{Key: "original_offset", Value: []byte(fmt.Sprintf("%d", msg.Offset))},
		kafka.Header{Key: "error", Value: []byte(errString(cause))},
		kafka.Header{Key: "timestamp", Value: []byte(time.Now().UTC().Format(time.RFC3339))},
	)
	dlqMsg := kafka.Message{Key: msg.Key, Value: msg.Value, Headers: headers}

	var lastErr error
	for attempt := 0; attempt < d.attempts; attempt++ {
		lastErr = d.w.WriteMessages(ctx, dlqMsg)
		if lastErr == nil {
			d.log.Info("message sent to DLQ",
				slog.Int("partition", msg.Partition),
				slog.Int64("offset", msg.Offset),
				slog.Int("attempt", attempt+1),
			)
			return nil
		}
		if attempt == d.attempts-1 {
			break
		}
		backoff := d.baseDelay << uint(attempt)
		d.log.Warn("DLQ write failed, retrying",
			slog.Any("err", lastErr),
			slog.Int("attempt", attempt+1),
			slog.Duration("backoff", backoff),
		)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fmt.Errorf("dlq write exhausted %d attempts: %w", d.attempts, lastErr)
}

func errString(err error) string {
	if err == nil {
		return "unknown"
	}
	return err.Error()
}
