// Package collector turns web search hits into evidence records.
package collector

import (
	"context"
	"time"
)

// Result is one web search hit.
type Result struct {
	Title     string
	URL       string
	Snippet   string
	Published *time.Time
	Source    string
}

// Searcher defines the interface for querying a web search backend.
type Searcher interface {
	Search(ctx context.Context, query string) ([]Result, error)
	Name() string
}
