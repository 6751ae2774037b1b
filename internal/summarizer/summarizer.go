// Package summarizer produces short article summaries through a language
// model. Callers are expected to degrade to a placeholder on failure.
package summarizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"unicode/utf8"

	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/DeafMist/news-research-radar/internal/logger"
)

const (
	// Placeholder replaces a summary that could not be generated.
	Placeholder = "Summary could not be generated."
	// QuotaPlaceholder replaces a summary refused for quota reasons.
	QuotaPlaceholder = "Summary could not be generated. API quota exceeded."

	maxInputRunes = 6000
)

var (
	// ErrQuotaExceeded is returned when the model provider or the local
	// budget refuses further requests.
	ErrQuotaExceeded = errors.New("summarizer: quota exceeded")
	// ErrEmptyInput is returned for blank text.
	ErrEmptyInput = errors.New("summarizer: empty input")
	// ErrEmptyResponse is returned when the model answers with no text.
	ErrEmptyResponse = errors.New("summarizer: empty response")
)

// Summarizer turns article text into a summary.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// Generator sends a prompt to a language model and returns its text answer.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Client builds the summarization prompt and maps provider errors.
type Client struct {
	gen Generator
	log *slog.Logger
}

// New wraps a generator.
func New(gen Generator, log *slog.Logger) *Client {
	return &Client{gen: gen, log: logger.OrDiscard(log)}
}

// Summarize asks the model for a summary of text.
func (c *Client) Summarize(ctx context.Context, text string) (string, error) {
	text = prepareInput(text)
	if text == "" {
		return "", ErrEmptyInput
	}

	out, err := c.gen.Generate(ctx, "Summarize the following news article:\n\n"+text)
	if err != nil {
		if isQuota(err) {
			return "", fmt.Errorf("%w: %v", ErrQuotaExceeded, err)
		}
		return "", fmt.Errorf("generate summary: %w", err)
	}

	out = strings.TrimSpace(out)
	if out == "" {
		return "", ErrEmptyResponse
	}
	return out, nil
}

// prepareInput collapses whitespace and caps the prompt size, preferring to
// cut at a sentence end.
func prepareInput(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(text) <= maxInputRunes {
		return text
	}
	trimmed := string([]rune(text)[:maxInputRunes])
	if idx := strings.LastIndex(trimmed, ". "); idx > maxInputRunes/5 {
		trimmed = trimmed[:idx+1]
	}
	return trimmed
}

func isQuota(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == http.StatusTooManyRequests {
		return true
	}
	if s, ok := status.FromError(err); ok && s.Code() == codes.ResourceExhausted {
		return true
	}
	return errors.Is(err, ErrQuotaExceeded)
}

// Budget caps the number of requests forwarded during one process run.
// A non-positive limit means unlimited.
type Budget struct {
	next Summarizer

	mu        sync.Mutex
	limit     int
	remaining int
}

// NewBudget forwards at most limit requests to next.
func NewBudget(next Summarizer, limit int) *Budget {
	return &Budget{next: next, limit: limit, remaining: limit}
}

// Summarize forwards to the wrapped summarizer while budget remains.
func (b *Budget) Summarize(ctx context.Context, text string) (string, error) {
	if b.limit > 0 {
		b.mu.Lock()
		if b.remaining <= 0 {
			b.mu.Unlock()
			return "", fmt.Errorf("%w: request budget of %d spent", ErrQuotaExceeded, b.limit)
		}
		b.remaining--
		b.mu.Unlock()
	}
	return b.next.Summarize(ctx, text)
}

// Remaining returns the requests left, or -1 when unlimited.
func (b *Budget) Remaining() int {
	if b.limit <= 0 {
		return -1
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.remaining
}

// SummarizeOrPlaceholder returns the summary, or a placeholder when s is nil
// or fails. Failures are logged, never returned.
func SummarizeOrPlaceholder(ctx context.Context, s Summarizer, text string, log *slog.Logger) string {
	if s == nil {
		return Placeholder
	}
	summary, err := s.Summarize(ctx, text)
	if err == nil {
		return summary
	}
	log = logger.OrDiscard(log)
	if errors.Is(err, ErrQuotaExceeded) {
		log.Warn("summary quota exceeded", slog.Any("err", err))
		return QuotaPlaceholder
	}
	if !errors.Is(err, ErrEmptyInput) {
		log.Warn("summary failed", slog.Any("err", err))
	}
	return Placeholder
}
