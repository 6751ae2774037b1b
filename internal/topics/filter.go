package topics

import "strings"

// FilterNonEmpty keeps the documents whose trimmed content is non-empty,
// preserving order. It fails with ErrEmptyCorpus when nothing is left.
func FilterNonEmpty(docs []string) ([]string, error) {
	kept := make([]string, 0, len(docs))
	for _, d := range docs {
		if strings.TrimSpace(d) != "" {
			kept = append(kept, d)
		}
	}
	if len(kept) == 0 {
		return nil, ErrEmptyCorpus
	}
	return kept, nil
}
