package model

import (
	"fmt"
	"math"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a calendar day serialized as YYYY-MM-DD.
type Date struct {
	time.Time
}

// NewDate truncates t to its calendar day in t's location and re-anchors it at UTC midnight.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses YYYY-MM-DD.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{t}, nil
}

func (d Date) String() string { return d.Format(dateLayout) }

// Before reports whether d is an earlier calendar day than other.
func (d Date) Before(other Date) bool { return d.Time.Before(other.Time) }

// Equal reports whether d and other are the same calendar day.
func (d Date) Equal(other Date) bool { return d.Time.Equal(other.Time) }

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("date must be a JSON string, got %s", s)
	}
	parsed, err := ParseDate(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ForecastEvent is a dated probability estimate, scored once its outcome is known.
type ForecastEvent struct {
	Event          string   `json:"event"`
	DueDate        Date     `json:"due_date"`
	Probability    float64  `json:"probability"`
	Outcome        *int     `json:"outcome"`
	Brier          *float64 `json:"brier"`
	Rationale      string   `json:"rationale,omitempty"`
	PostmortemLink string   `json:"postmortem_link,omitempty"`
}

// Validate checks probability and outcome ranges.
func (f ForecastEvent) Validate() error {
	if f.Event == "" {
		return fmt.Errorf("forecast event name is empty: %w", ErrInvalid)
	}
	if math.IsNaN(f.Probability) || f.Probability < 0 || f.Probability > 1 {
		return fmt.Errorf("forecast %q probability %v outside [0,1]: %w", f.Event, f.Probability, ErrInvalid)
	}
	if f.Outcome != nil && *f.Outcome != 0 && *f.Outcome != 1 {
		return fmt.Errorf("forecast %q outcome %d not in {0,1}: %w", f.Event, *f.Outcome, ErrInvalid)
	}
	return nil
}

// Finalized reports whether the outcome has been recorded.
func (f ForecastEvent) Finalized() bool { return f.Outcome != nil }
