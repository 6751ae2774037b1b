package research

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/DeafMist/news-research-radar/internal/models"
	"github.com/DeafMist/news-research-radar/internal/topics"
)

// Report is the exported state of a research session.
type Report struct {
	Query       string                `json:"query"`
	GeneratedAt time.Time             `json:"generated_at"`
	Articles    []models.NewsDocument `json:"articles"`
	Topics      []topics.Topic        `json:"topics,omitempty"`
}

// Export writes r as indented JSON.
func Export(w io.Writer, r Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

var unsafeName = regexp.MustCompile(`[^a-z0-9]+`)

// ExportFile writes r into dir under a name derived from the query and the
// generation time, returning the file path.
func ExportFile(dir string, r Report) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}

	slug := strings.Trim(unsafeName.ReplaceAllString(strings.ToLower(r.Query), "-"), "-")
	if slug == "" {
		slug = "research"
	}
	name := fmt.Sprintf("%s-%s.json", slug, r.GeneratedAt.UTC().Format("20060102T150405Z"))
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create export file: %w", err)
	}
	if err := Export(f, r); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close export file: %w", err)
	}
	return path, nil
}
