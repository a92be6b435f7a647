package collector

import (
	"context"
	"fmt"
	"time"

	"GeoSentinel/internal/model"
)

const (
	quoteLimit    = 240
	defaultSource = "websearch"
)

// ToEvidence converts a search hit into an evidence record. An empty quote
// falls back to the snippet cut to 240 runes; an empty quality to M.
func ToEvidence(r Result, quality, quote string) model.Evidence {
	if quality == "" {
		quality = model.QualityMedium
	}
	if quote == "" {
		quote = truncate(r.Snippet, quoteLimit)
	}
	source := r.Source
	if source == "" {
		source = defaultSource
	}
	return model.NewEvidence(r.Title, source, quote, r.URL, quality, r.Published, time.Now())
}

// SearchAsEvidence runs query and converts every hit that carries a URL.
func SearchAsEvidence(ctx context.Context, s Searcher, query, quality string) ([]model.Evidence, error) {
	results, err := s.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search %q via %s: %w", query, s.Name(), err)
	}
	var out []model.Evidence
	for _, r := range results {
		if r.URL == "" {
			continue
		}
		if r.Title == "" {
			r.Title = query
		}
		out = append(out, ToEvidence(r, quality, ""))
	}
	return out, nil
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
