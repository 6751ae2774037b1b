package main

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/DeafMist/news-research-radar/internal/config"
)

func TestBuildSources(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	dir := t.TempDir()

	feedsPath := filepath.Join(dir, "feeds.yaml")
	require.NoError(t, os.WriteFile(feedsPath, []byte("feeds:\n  - https://example.com/rss\n"), 0o600))
	samplesPath := filepath.Join(dir, "samples.json")
	require.NoError(t, os.WriteFile(samplesPath, []byte(`[{"title":"Sample","description":"d","content":"c"}]`), 0o600))

	sources, samples, err := buildSources(&config.Console{
		NewsAPIKey:  "key",
		FeedsFile:   feedsPath,
		SamplesFile: samplesPath,
	}, log)
	require.NoError(t, err)
	require.Len(t, sources, 3)
	require.Len(t, samples, 1)

	sources, samples, err = buildSources(&config.Console{SamplesFile: filepath.Join(dir, "missing.json")}, log)
	require.NoError(t, err)
	require.Empty(t, sources)
	require.Empty(t, samples)

	_, _, err = buildSources(&config.Console{FeedsFile: filepath.Join(dir, "missing.yaml")}, log)
	require.Error(t, err)
}
