// Package prompts serves the collection prompt templates handed to an
// external language model. Prompts are rendered here, never executed.
package prompts

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"GeoSentinel/internal/model"
)

const sourcePlaceholder = "{{SOURCE_URLS}}"

//go:embed templates.yaml
var embedded []byte

// Template is one collection task.
type Template struct {
	Key            string   `yaml:"key" json:"key"`
	Title          string   `yaml:"title" json:"title"`
	Description    string   `yaml:"description" json:"description"`
	UserTemplate   string   `yaml:"user_template" json:"user_template"`
	OutputSchema   string   `yaml:"output_schema" json:"output_schema"`
	DefaultSources []string `yaml:"default_sources" json:"default_sources"`
}

// Render substitutes the URL list into the user template as a JSON array.
// An empty list falls back to DefaultSources.
func (t Template) Render(urls []string) string {
	if len(urls) == 0 {
		urls = t.DefaultSources
	}
	if urls == nil {
		urls = []string{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// Encoding a []string cannot fail.
	_ = enc.Encode(urls)
	return strings.ReplaceAll(t.UserTemplate, sourcePlaceholder, strings.TrimSpace(buf.String()))
}

// Catalog is the parsed prompt set.
type Catalog struct {
	System    string     `yaml:"system"`
	Templates []Template `yaml:"templates"`
	index     map[string]int
}

// Messages is a rendered prompt ready for a chat-style model call.
type Messages struct {
	Key            string   `json:"key"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	System         string   `json:"system"`
	User           string   `json:"user"`
	OutputSchema   string   `json:"output_schema"`
	DefaultSources []string `json:"default_sources"`
}

// Default returns the embedded prompt catalog.
func Default() (*Catalog, error) {
	return Parse(embedded)
}

// Parse decodes a YAML prompt catalog and indexes it by key.
func Parse(data []byte) (*Catalog, error) {
	c := &Catalog{}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parse prompts: %w", err)
	}
	c.index = make(map[string]int, len(c.Templates))
	for i, t := range c.Templates {
		if t.Key == "" {
			return nil, fmt.Errorf("prompts: template %d has empty key: %w", i, model.ErrInvalid)
		}
		if _, dup := c.index[t.Key]; dup {
			return nil, fmt.Errorf("prompts: duplicate key %q: %w", t.Key, model.ErrInvalid)
		}
		c.index[t.Key] = i
	}
	return c, nil
}

// List returns the templates in catalog order.
func (c *Catalog) List() []Template {
	return append([]Template(nil), c.Templates...)
}

// Get returns the template for key.
func (c *Catalog) Get(key string) (Template, error) {
	i, ok := c.index[key]
	if !ok {
		return Template{}, fmt.Errorf("unknown prompt key %q: %w", key, model.ErrNotFound)
	}
	return c.Templates[i], nil
}

// Messages renders the system and user prompts for key.
func (c *Catalog) Messages(key string, urls []string) (Messages, error) {
	t, err := c.Get(key)
	if err != nil {
		return Messages{}, err
	}
	return Messages{
		Key:            t.Key,
		Title:          t.Title,
		Description:    t.Description,
		System:         c.System,
		User:           t.Render(urls),
		OutputSchema:   t.OutputSchema,
		DefaultSources: t.DefaultSources,
	}, nil
}

// DefaultSources returns every default URL across templates, deduplicated.
func (c *Catalog) DefaultSources() []string {
	seen := map[string]bool{}
	var urls []string
	for _, t := range c.Templates {
		for _, u := range t.DefaultSources {
			if !seen[u] {
				seen[u] = true
				urls = append(urls, u)
			}
		}
	}
	return urls
}
