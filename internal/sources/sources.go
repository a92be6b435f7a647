// Package sources manages the whitelist of authoritative URLs collection is
// allowed to draw from.
package sources

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"GeoSentinel/internal/prompts"
)

// Source is one whitelisted page.
type Source struct {
	Name     string   `json:"name"`
	URL      string   `json:"url"`
	Category string   `json:"category"`
	Notes    string   `json:"notes"`
	Tags     []string `json:"tags,omitempty"`
}

// Load reads the whitelist. A missing file is an error: collection must not
// silently run without one.
func Load(path string) ([]Source, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("source whitelist not found at %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var list []Source
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return list, nil
}

// KnownURLs returns the set of whitelisted URLs.
func KnownURLs(list []Source) map[string]struct{} {
	set := make(map[string]struct{}, len(list))
	for _, s := range list {
		set[s.URL] = struct{}{}
	}
	return set
}

// MissingPromptSources returns prompt default URLs absent from the whitelist, sorted.
func MissingPromptSources(list []Source, templates []prompts.Template) []string {
	known := KnownURLs(list)
	missing := map[string]struct{}{}
	for _, t := range templates {
		for _, u := range t.DefaultSources {
			if _, ok := known[u]; !ok {
				missing[u] = struct{}{}
			}
		}
	}
	out := make([]string, 0, len(missing))
	for u := range missing {
		out = append(out, u)
	}
	sort.Strings(out)
	return out
}
