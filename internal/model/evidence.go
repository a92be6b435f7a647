package model

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Quality tiers for evidence, highest first.
const (
	QualityHigh   = "H"
	QualityMedium = "M"
	QualityLow    = "L"
)

// Evidence is a citation backing an indicator value, ACH entry or alert signal.
// Treat it as immutable once created; it is copied by value into aggregates.
type Evidence struct {
	Title     string     `json:"title"`
	Date      *time.Time `json:"date"`
	Source    string     `json:"source"`
	Quote     string     `json:"quote"`
	URL       string     `json:"url"`
	Quality   string     `json:"quality"`
	CreatedAt time.Time  `json:"created_at"`
	Hash      string     `json:"hash"`
}

// NewEvidence builds an Evidence stamped with createdAt and its content fingerprint.
// An empty quality defaults to QualityLow.
func NewEvidence(title, source, quote, url, quality string, published *time.Time, createdAt time.Time) Evidence {
	if quality == "" {
		quality = QualityLow
	}
	return Evidence{
		Title:     title,
		Date:      published,
		Source:    source,
		Quote:     quote,
		URL:       url,
		Quality:   quality,
		CreatedAt: createdAt.UTC(),
		Hash:      Fingerprint(title, source, quote, url),
	}
}

// Fingerprint is the hex sha256 of title|source|quote|url.
func Fingerprint(title, source, quote, url string) string {
	sum := sha256.Sum256([]byte(strings.Join([]string{title, source, quote, url}, "|")))
	return hex.EncodeToString(sum[:])
}

// Key returns the stored fingerprint, computing it when the record was built without one.
func (e Evidence) Key() string {
	if e.Hash != "" {
		return e.Hash
	}
	return Fingerprint(e.Title, e.Source, e.Quote, e.URL)
}

// ContainsEvidence reports whether list already holds evidence with the same fingerprint.
func ContainsEvidence(list []Evidence, ev Evidence) bool {
	key := ev.Key()
	for _, e := range list {
		if e.Key() == key {
			return true
		}
	}
	return false
}
