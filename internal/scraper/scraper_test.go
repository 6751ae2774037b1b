package scraper_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/DeafMist/news-research-radar/internal/scraper"
)

const page = `<html><head><title>Oil</title><script>var x = "article p";</script></head>
<body>
<nav><p>Home | Markets | Energy and everything else here</p></nav>
<article>
  <p>Oil prices rose sharply on Tuesday amid supply concerns in the Gulf.</p>
  <p>Analysts said inventories fell for the third consecutive week.</p>
  <p>Subscribe to our newsletter for the latest energy coverage.</p>
  <p>Short.</p>
  <p>Brent crude settled at its highest level since early autumn.</p>
</article>
<footer><p>All rights reserved by the publisher of this page.</p></footer>
</body></html>`

func TestFetchExtractsArticleParagraphs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	got, err := scraper.NewFetcher(time.Second).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)

	paragraphs := strings.Split(got, "\n\n")
	require.Equal(t, []string{
		"Oil prices rose sharply on Tuesday amid supply concerns in the Gulf.",
		"Analysts said inventories fell for the third consecutive week.",
		"Brent crude settled at its highest level since early autumn.",
	}, paragraphs)
}

func TestFetchErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("<html><body><p>tiny</p></body></html>"))
	}))
	defer srv.Close()

	f := scraper.NewFetcher(time.Second)
	_, err := f.Fetch(context.Background(), srv.URL+"/missing")
	require.Error(t, err)

	_, err = f.Fetch(context.Background(), srv.URL+"/empty")
	require.ErrorIs(t, err, scraper.ErrNoContent)
}
