// Package dates provides centralized timestamp and date parsing utilities.
package dates

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// excelEpoch is day zero of the Excel 1900 date system (1899-12-30).
var excelEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// layouts tried in order for string timestamps. All naive layouts are
// interpreted as UTC.
var layouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"1/2/2006",
	"1/2/06",
}

// ParseTimestamp parses common timestamp formats into a UTC time.
//
// Supported:
//   - ISO8601: "2026-01-17T12:00:00+00:00" or "2026-01-17T12:00:00Z"
//   - Date only: "2026-01-17" (midnight UTC)
//   - "2026-01-17 12:00:00"
//   - US date formats: "01/17/2026", "1/17/26"
//   - Excel serial dates: values > 20000 are treated as days since
//     1899-12-30 (Excel 1900 date system), truncated to midnight
//
// Returns an error for empty input or an unrecognized format.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("timestamp is empty")
	}

	// Excel serial date (common in .xlsx XML)
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		if f > 20000 {
			t := excelEpoch.Add(time.Duration(f * float64(24*time.Hour)))
			return t.Truncate(24 * time.Hour), nil
		}
		// Small numerics are ambiguous; fall through to format matching
	}

	// Normalize Z suffix so the offset layouts match
	norm := s
	if strings.HasSuffix(norm, "Z") {
		norm = strings.TrimSuffix(norm, "Z") + "+00:00"
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, norm); err == nil {
			return t.UTC(), nil
		}
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}

	return time.Time{}, fmt.Errorf("unsupported timestamp format: %q", s)
}

// UTCNowISO returns the current UTC timestamp as an ISO8601 string.
func UTCNowISO() string {
	return time.Now().UTC().Format(time.RFC3339)
}
