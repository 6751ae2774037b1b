package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/segmentio/kafka-go"

	"github.com/DeafMist/news-research-radar/internal/config"
	"github.com/DeafMist/news-research-radar/internal/elasticsearch"
	"github.com/DeafMist/news-research-radar/internal/logger"
	"github.com/DeafMist/news-research-radar/internal/models"
	"github.com/DeafMist/news-research-radar/internal/queue"
	"github.com/DeafMist/news-research-radar/internal/research"
	"github.com/DeafMist/news-research-radar/internal/scraper"
	"github.com/DeafMist/news-research-radar/internal/sentiment"
	"github.com/DeafMist/news-research-radar/internal/summarizer"
	"github.com/DeafMist/news-research-radar/internal/ttlcache"
)

type articleIndexer interface {
	IndexArticle(ctx context.Context, doc models.NewsDocument) error
}

type enricher interface {
	Enrich(ctx context.Context, query string, a models.Article) models.NewsDocument
}

func main() {
	_ = godotenv.Load()

	log := logger.New("worker")
	cfg, err := config.LoadWorker()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	esClient, err := elasticsearch.New(cfg.ElasticsearchAddr, cfg.ElasticsearchIndex, nil, log)
	if err != nil {
		log.Error("init elasticsearch", slog.Any("err", err))
		os.Exit(1)
	}
	if err := esClient.EnsureIndex(ctx); err != nil {
		log.Warn("ensure index", slog.Any("err", err))
	}

	gemini, err := summarizer.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.SummaryMaxTokens)
	if err != nil {
		log.Error("init gemini", slog.Any("err", err))
		os.Exit(1)
	}
	defer gemini.Close()

	svc := research.New(research.Deps{
		Fetcher:    scraper.NewFetcher(cfg.ScrapeTimeout),
		Summarizer: summarizer.NewBudget(summarizer.New(gemini, log), cfg.SummaryMaxRequests),
		Scorer:     sentiment.NewLexicon(log),
	}, research.Settings{
		ScrapeMinChars:   cfg.ScrapeMinChars,
		KeywordLimit:     cfg.KeywordLimit,
		KeywordMinLength: cfg.KeywordMinLength,
	}, log)

	seen := ttlcache.NewSet(cfg.DedupeCapacity, cfg.DedupeTTL)

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.KafkaBrokers,
		Topic:          cfg.KafkaTopic,
		GroupID:        cfg.KafkaConsumer,
		QueueCapacity:  cfg.BatchSize,
		MinBytes:       1e3,
		MaxBytes:       10e6,
		CommitInterval: cfg.CommitInterval,
	})
	defer reader.Close()

	dlqTopic := queue.DLQTopic(cfg.KafkaTopic)
	dlqWriter := queue.NewWriter(cfg.KafkaBrokers, dlqTopic)
	defer dlqWriter.Close()
	dlq := queue.NewDeadLetter(dlqWriter, 5, time.Second, log)

	log.Info("worker started",
		slog.String("topic", cfg.KafkaTopic),
		slog.String("group", cfg.KafkaConsumer),
		slog.String("dlq_topic", dlqTopic),
	)

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				log.Info("context canceled, stopping")
				return
			}
			log.Error("fetch message", slog.Any("err", err))
			continue
		}

		if err := processMessage(ctx, log, esClient, svc, seen, msg); err != nil {
			log.Warn("process message failed, sending to DLQ",
				slog.Any("err", err),
				slog.Int("partition", msg.Partition),
				slog.Int64("offset", msg.Offset),
			)
			if dlqErr := dlq.Send(ctx, msg, err); dlqErr != nil {
				if ctx.Err() != nil {
					log.Info("context canceled during DLQ retry")
					return
				}
				// Leave the offset uncommitted so the message is redelivered on restart.
				log.Error("DLQ write failed, message not committed",
					slog.Any("err", dlqErr),
					slog.Int("partition", msg.Partition),
					slog.Int64("offset", msg.Offset),
				)
				continue
			}
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit message", slog.Any("err", err))
		}
	}
}

func processMessage(ctx context.Context, log *slog.Logger, idx articleIndexer, svc enricher, seen *ttlcache.Cache[struct{}], msg kafka.Message) error {
	payload, err := queue.Decode(msg.Value)
	if err != nil {
		return err
	}

	article := models.Article{
		Title:       strings.TrimSpace(payload.Title),
		Description: strings.TrimSpace(payload.Description),
		Content:     strings.TrimSpace(payload.Content),
		URL:         strings.TrimSpace(payload.URL),
		Source:      strings.TrimSpace(payload.Source),
		PublishedAt: parseTimestamp(payload.PublishedAt),
	}
	if article.Title == "" && article.Body() == "" {
		return errors.New("empty payload")
	}
	if article.Source == "" {
		article.Source = "unknown"
	}

	key := dedupeKey(article)
	if seen.Contains(key) {
		log.Debug("duplicate article", slog.String("key", key))
		return nil
	}

	doc := svc.Enrich(ctx, payload.Query, article)
	if err := idx.IndexArticle(ctx, doc); err != nil {
		return err
	}

	seen.Add(key)
	log.Info("indexed article",
		slog.String("id", doc.ID),
		slog.String("title", doc.Title),
		slog.String("sentiment", doc.Sentiment),
	)
	return nil
}

// dedupeKey identifies an article before enrichment.
func dedupeKey(a models.Article) string {
	if a.URL != "" {
		return "url:" + a.URL
	}
	return "title:" + strings.ToLower(a.Title) + "|" + a.PublishedAt.UTC().Format(time.RFC3339)
}

func parseTimestamp(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}

	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05",
		time.RFC1123Z,
	}
	for _, f := range formats {
		if ts, err := time.Parse(f, raw); err == nil {
			return ts
		}
	}
	return time.Time{}
}
