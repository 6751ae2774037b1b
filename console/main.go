package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/DeafMist/news-research-radar/internal/auth"
	"github.com/DeafMist/news-research-radar/internal/config"
	tui "github.com/DeafMist/news-research-radar/internal/console"
	"github.com/DeafMist/news-research-radar/internal/feedback"
	"github.com/DeafMist/news-research-radar/internal/feeds"
	"github.com/DeafMist/news-research-radar/internal/logger"
	"github.com/DeafMist/news-research-radar/internal/models"
	"github.com/DeafMist/news-research-radar/internal/newsapi"
	"github.com/DeafMist/news-research-radar/internal/research"
	"github.com/DeafMist/news-research-radar/internal/scraper"
	"github.com/DeafMist/news-research-radar/internal/sentiment"
	"github.com/DeafMist/news-research-radar/internal/summarizer"
)

func main() {
	_ = godotenv.Load()

	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "console:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConsole()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()
	log := logger.NewWithWriter("console", logFile)

	users, err := auth.LoadStore(cfg.UsersFile)
	if err != nil {
		return err
	}

	ctx := context.Background()
	sources, samples, err := buildSources(cfg, log)
	if err != nil {
		return err
	}

	var sum summarizer.Summarizer
	if cfg.GeminiAPIKey != "" {
		gemini, err := summarizer.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.SummaryMaxTokens)
		if err != nil {
			return err
		}
		defer gemini.Close()
		sum = summarizer.NewBudget(summarizer.New(gemini, log), cfg.SummaryMaxRequests)
	} else {
		log.Warn("GEMINI_API_KEY not set, summaries disabled")
	}

	svc := research.New(research.Deps{
		Sources:    sources,
		Fetcher:    scraper.NewFetcher(cfg.ScrapeTimeout),
		Summarizer: sum,
		Scorer:     sentiment.NewLexicon(log),
	}, research.Settings{
		Language:       cfg.NewsLanguage,
		PageSize:       cfg.NewsPageSize,
		ScrapeMinChars: cfg.ScrapeMinChars,
	}, log)

	model := tui.New(users, svc, feedback.NewLog(cfg.FeedbackLog), tui.Settings{
		PageSize:      cfg.NewsPageSize,
		NumTopics:     cfg.NumTopics,
		TopK:          cfg.TopK,
		TopicsTimeout: cfg.TopicsTimeout,
		ExportDir:     cfg.ExportDir,
		Samples:       samples,
	})

	log.Info("console starting", slog.Int("sources", len(sources)), slog.Int("samples", len(samples)))
	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}

func buildSources(cfg *config.Console, log *slog.Logger) ([]research.Source, []models.Article, error) {
	var (
		sources []research.Source
		samples []models.Article
	)
	if cfg.NewsAPIKey != "" {
		client, err := newsapi.NewClient(newsapi.Config{
			BaseURL:    cfg.NewsAPIBaseURL,
			APIKey:     cfg.NewsAPIKey,
			MaxRetries: 2,
		}, log)
		if err != nil {
			return nil, nil, err
		}
		sources = append(sources, client)
	}
	if cfg.FeedsFile != "" {
		urls, err := feeds.LoadFeeds(cfg.FeedsFile)
		if err != nil {
			return nil, nil, err
		}
		sources = append(sources, feeds.NewSource(urls, cfg.ScrapeTimeout, log))
	}
	if cfg.SamplesFile != "" {
		loaded, err := research.LoadSamples(cfg.SamplesFile)
		if err != nil {
			// Samples are optional; a broken file should not block the UI.
			log.Warn("load sample articles", slog.Any("err", err))
		} else {
			samples = loaded
			sources = append(sources, research.NewSampleSource(loaded))
		}
	}
	return sources, samples, nil
}
