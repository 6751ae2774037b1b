// Package scraper downloads an article page and extracts its body text.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// ErrNoContent is returned when no article paragraphs were found.
var ErrNoContent = errors.New("scraper: no article content")

// Selectors tried in order; the first one yielding enough paragraphs wins.
var bodySelectors = []string{
	"article p",
	"[itemprop=articleBody] p",
	".article-body p",
	".article-content p",
	".post-content p",
	".entry-content p",
	"main p",
	"#content p",
	"p",
}

// Junk phrases dropped from paragraphs (cookie banners, share prompts).
var junkIndicators = []string{
	"cookie", "subscribe", "sign up for", "newsletter", "all rights reserved",
	"share this article", "advertisement", "read more:",
}

// Fetcher extracts article text over HTTP.
type Fetcher struct {
	client        *http.Client
	minParagraph  int
	minParagraphs int
	userAgent     string
}

// NewFetcher returns a fetcher with the given request timeout.
func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Fetcher{
		client:        &http.Client{Timeout: timeout},
		minParagraph:  25,
		minParagraphs: 3,
		userAgent:     "news-research-radar/1.0",
	}
}

// Fetch downloads url and returns its paragraphs joined by blank lines.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("load page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("load page: HTTP %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	content := f.extract(doc)
	if content == "" {
		return "", ErrNoContent
	}
	return content, nil
}

func (f *Fetcher) extract(doc *goquery.Document) string {
	doc.Find("script, style, nav, footer, aside, form").Remove()

	var best []string
	for _, selector := range bodySelectors {
		var paragraphs []string
		seen := make(map[string]struct{})
		doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
			text := strings.Join(strings.Fields(s.Text()), " ")
			if utf8.RuneCountInString(text) < f.minParagraph || isJunk(text) {
				return
			}
			if _, dup := seen[text]; dup {
				return
			}
			seen[text] = struct{}{}
			paragraphs = append(paragraphs, text)
		})
		if len(paragraphs) > len(best) {
			best = paragraphs
		}
		if len(best) >= f.minParagraphs {
			break
		}
	}
	return strings.Join(best, "\n\n")
}

func isJunk(text string) bool {
	lower := strings.ToLower(text)
	for _, j := range junkIndicators {
		if strings.Contains(lower, j) {
			return true
		}
	}
	return false
}
