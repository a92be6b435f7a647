package format

import (
	"time"

	"GeoSentinel/internal/model"
)

// Truncate shortens s to maxLen runes, appending "..." if truncated.
func Truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

// BoolMark returns "✓" for true and "✗" for false.
func BoolMark(v bool) string {
	if v {
		return "✓"
	}
	return "✗"
}

// ColorMark renders an indicator color as a traffic-light glyph plus name.
func ColorMark(s model.Status) string {
	switch s {
	case model.StatusGreen:
		return "● green"
	case model.StatusRed:
		return "● RED"
	default:
		return "● yellow"
	}
}

// Day formats an optional timestamp as YYYY-MM-DD, or "-".
func Day(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("2006-01-02")
}
