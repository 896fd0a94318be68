package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Time
	}{
		{
			name:     "ISO8601 with offset",
			input:    "2026-01-17T12:00:00+00:00",
			expected: time.Date(2026, 1, 17, 12, 0, 0, 0, time.UTC),
		},
		{
			name:     "ISO8601 with Z",
			input:    "2026-01-17T12:00:00Z",
			expected: time.Date(2026, 1, 17, 12, 0, 0, 0, time.UTC),
		},
		{
			name:     "ISO8601 naive",
			input:    "2026-01-17T12:00:00",
			expected: time.Date(2026, 1, 17, 12, 0, 0, 0, time.UTC),
		},
		{
			name:     "date only",
			input:    "2026-01-17",
			expected: time.Date(2026, 1, 17, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "space separated",
			input:    "2026-01-17 12:00:00",
			expected: time.Date(2026, 1, 17, 12, 0, 0, 0, time.UTC),
		},
		{
			name:     "US date",
			input:    "01/17/2026",
			expected: time.Date(2026, 1, 17, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "US date short year",
			input:    "1/17/26",
			expected: time.Date(2026, 1, 17, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "offset normalized to UTC",
			input:    "2026-01-17T14:00:00+02:00",
			expected: time.Date(2026, 1, 17, 12, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimestamp(tt.input)
			require.NoError(t, err)
			assert.True(t, tt.expected.Equal(got), "expected %s, got %s", tt.expected, got)
		})
	}
}

func TestParseTimestamp_ExcelSerial(t *testing.T) {
	// Day 46031 in the Excel 1900 system (base 1899-12-30) is 2026-01-09
	got, err := ParseTimestamp("46031")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 9, 0, 0, 0, 0, time.UTC), got)
}

func TestParseTimestamp_Errors(t *testing.T) {
	for _, input := range []string{"", "  ", "not-a-date", "13/45/2020"} {
		_, err := ParseTimestamp(input)
		assert.Error(t, err, "input %q", input)
	}
}
