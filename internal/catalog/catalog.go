// Package catalog holds the static indicator templates, entrapment signal
// definitions and ACH hypotheses the trackers are built from.
package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"GeoSentinel/internal/model"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Catalog is the fixed configuration of every tracker.
type Catalog struct {
	ACH struct {
		Question   string   `yaml:"question"`
		Hypotheses []string `yaml:"hypotheses"`
	} `yaml:"ach"`
	Indicators []model.IndicatorTemplate `yaml:"indicators"`
	Signals    []model.SignalDefinition  `yaml:"signals"`
}

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Load reads a catalog from path, or returns the embedded one when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML catalog.
func Parse(data []byte) (*Catalog, error) {
	c := &Catalog{}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks key uniqueness and that every section is populated.
func (c *Catalog) Validate() error {
	if c.ACH.Question == "" {
		return fmt.Errorf("catalog: ach.question is required")
	}
	if len(c.ACH.Hypotheses) == 0 {
		return fmt.Errorf("catalog: ach.hypotheses must not be empty")
	}
	seen := map[string]bool{}
	for _, h := range c.ACH.Hypotheses {
		if seen[h] {
			return fmt.Errorf("catalog: duplicate hypothesis %q", h)
		}
		seen[h] = true
	}

	seen = map[string]bool{}
	for _, t := range c.Indicators {
		if t.Key == "" {
			return fmt.Errorf("catalog: indicator with empty key")
		}
		if seen[t.Key] {
			return fmt.Errorf("catalog: duplicate indicator key %q", t.Key)
		}
		if !t.Dimension.Valid() {
			return fmt.Errorf("catalog: indicator %q has unknown dimension %q", t.Key, t.Dimension)
		}
		if t.DefaultWeight < 0 {
			return fmt.Errorf("catalog: indicator %q has negative weight", t.Key)
		}
		seen[t.Key] = true
	}

	if len(c.Signals) == 0 {
		return fmt.Errorf("catalog: signals must not be empty")
	}
	seen = map[string]bool{}
	for _, s := range c.Signals {
		if s.Key == "" {
			return fmt.Errorf("catalog: signal with empty key")
		}
		if seen[s.Key] {
			return fmt.Errorf("catalog: duplicate signal key %q", s.Key)
		}
		seen[s.Key] = true
	}
	return nil
}

// Indicator returns the template for key.
func (c *Catalog) Indicator(key string) (model.IndicatorTemplate, bool) {
	for _, t := range c.Indicators {
		if t.Key == key {
			return t, true
		}
	}
	return model.IndicatorTemplate{}, false
}

// PrimarySources returns every URL referenced by indicators and signals, first occurrence first.
func (c *Catalog) PrimarySources() []string {
	seen := map[string]bool{}
	var urls []string
	add := func(list []string) {
		for _, u := range list {
			if !seen[u] {
				seen[u] = true
				urls = append(urls, u)
			}
		}
	}
	for _, t := range c.Indicators {
		add(t.PrimarySources)
	}
	for _, s := range c.Signals {
		add(s.PrimarySources)
	}
	return urls
}
