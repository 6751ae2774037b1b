// Package newsapi is an article source over the NewsAPI /v2/everything endpoint.
package newsapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/DeafMist/news-research-radar/internal/logger"
	"github.com/DeafMist/news-research-radar/internal/models"
)

const maxPageSize = 100

// Config configures the client.
type Config struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	MaxRetries int
}

// Client queries NewsAPI.
type Client struct {
	baseURL    string
	apiKey     string
	http       *http.Client
	maxRetries int
	log        *slog.Logger
}

// NewClient creates a client; the API key is mandatory.
func NewClient(cfg Config, log *slog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("newsapi: missing API key")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://newsapi.org"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		http:       &http.Client{Timeout: cfg.Timeout},
		maxRetries: cfg.MaxRetries,
		log:        logger.OrDiscard(log),
	}, nil
}

type apiArticle struct {
	Source struct {
		Name string `json:"name"`
	} `json:"source"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
}

type apiResponse struct {
	Status   string       `json:"status"`
	Code     string       `json:"code"`
	Message  string       `json:"message"`
	Articles []apiArticle `json:"articles"`
}

// Search returns up to pageSize articles matching query. Network failures,
// rate limiting and server errors wrap models.ErrSourceUnavailable.
func (c *Client) Search(ctx context.Context, query, language string, pageSize int) ([]models.Article, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("newsapi: empty query")
	}
	if pageSize <= 0 || pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("pageSize", strconv.Itoa(pageSize))
	if language != "" {
		params.Set("language", language)
	}
	endpoint := c.baseURL + "/v2/everything?" + params.Encode()

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(retryDelay(attempt - 1)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		articles, retry, err := c.do(ctx, endpoint)
		if err == nil {
			return articles, nil
		}
		lastErr = err
		if !retry {
			break
		}
		c.log.Warn("newsapi request failed", slog.Any("err", err), slog.Int("attempt", attempt+1))
	}
	return nil, lastErr
}

func (c *Client) do(ctx context.Context, endpoint string) ([]models.Article, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, false, fmt.Errorf("newsapi: build request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}
		return nil, true, fmt.Errorf("%w: %v", models.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, true, fmt.Errorf("%w: read body: %v", models.ErrSourceUnavailable, err)
	}

	var parsed apiResponse
	decodeErr := json.Unmarshal(body, &parsed)

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, false, fmt.Errorf("%w: rate limited: %s", models.ErrSourceUnavailable, parsed.Message)
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, true, fmt.Errorf("%w: %s", models.ErrSourceUnavailable, resp.Status)
	case resp.StatusCode >= http.StatusBadRequest:
		return nil, false, fmt.Errorf("newsapi: %s: %s", resp.Status, strings.TrimSpace(parsed.Code+" "+parsed.Message))
	}
	if decodeErr != nil {
		return nil, false, fmt.Errorf("newsapi: decode response: %w", decodeErr)
	}
	if parsed.Status != "" && parsed.Status != "ok" {
		return nil, false, fmt.Errorf("newsapi: %s: %s", parsed.Code, parsed.Message)
	}

	out := make([]models.Article, 0, len(parsed.Articles))
	for _, a := range parsed.Articles {
		// NewsAPI marks articles taken down by the publisher this way.
		if a.Title == "[Removed]" {
			continue
		}
		ts, _ := time.Parse(time.RFC3339, a.PublishedAt)
		out = append(out, models.Article{
			Title:       strings.TrimSpace(a.Title),
			Description: strings.TrimSpace(a.Description),
			Content:     strings.TrimSpace(a.Content),
			URL:         a.URL,
			Source:      a.Source.Name,
			PublishedAt: ts.UTC(),
		})
	}
	return out, false, nil
}

func retryDelay(attempt int) time.Duration {
	d := 200 * time.Millisecond << attempt
	if d > 5*time.Second {
		d = 5 * time.Second
	}
	return d
}
