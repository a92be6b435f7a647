package model

import (
	"fmt"
	"strings"
	"time"
)

// Dimension groups indicators on the panel.
type Dimension string

const (
	DimensionInstitution       Dimension = "institution"
	DimensionCapability        Dimension = "capability"
	DimensionAlliance          Dimension = "alliance"
	DimensionCapitalGovernance Dimension = "capital_governance"
	DimensionFunds             Dimension = "funds"
)

// Dimensions lists every dimension in board order.
var Dimensions = []Dimension{
	DimensionInstitution,
	DimensionCapability,
	DimensionAlliance,
	DimensionCapitalGovernance,
	DimensionFunds,
}

// Valid reports whether d is one of Dimensions.
func (d Dimension) Valid() bool {
	for _, known := range Dimensions {
		if d == known {
			return true
		}
	}
	return false
}

// Status is the traffic-light color of an indicator.
type Status string

const (
	StatusGreen  Status = "green"
	StatusYellow Status = "yellow"
	StatusRed    Status = "red"
)

// ParseStatus accepts green/yellow/red in any case.
func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusGreen:
		return StatusGreen, nil
	case StatusYellow:
		return StatusYellow, nil
	case StatusRed:
		return StatusRed, nil
	}
	return "", fmt.Errorf("status %q: %w", s, ErrInvalid)
}

// IndicatorRecord is the current reading of one tracked indicator.
type IndicatorRecord struct {
	TemplateKey string     `json:"template_key"`
	Dimension   Dimension  `json:"dimension"`
	Indicator   string     `json:"indicator"`
	LatestValue string     `json:"latest_value,omitempty"`
	Direction   string     `json:"direction,omitempty"`
	Date        *time.Time `json:"date"`
	SourceURL   string     `json:"source_url,omitempty"`
	Confidence  string     `json:"confidence"`
	Weight      int        `json:"weight"`
	Color       Status     `json:"color"`
	AnalystNote string     `json:"analyst_note,omitempty"`
}

// IndicatorUpdate carries the mutable fields of an IndicatorRecord.
type IndicatorUpdate struct {
	LatestValue string
	Direction   string
	SourceURL   string
	Color       Status
	Confidence  string
	AnalystNote string
	Evidence    *Evidence
}
