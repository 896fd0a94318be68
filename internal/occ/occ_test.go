package occ

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/optionpilot/internal/domain"
)

func TestParseOptionSymbol(t *testing.T) {
	expiry, optType, strike, err := ParseOptionSymbol("GOOG251219C00355000", "GOOG")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 12, 19, 0, 0, 0, 0, time.UTC), expiry)
	assert.Equal(t, domain.OptionTypeCall, optType)
	assert.Equal(t, 355.0, strike)
}

func TestParseOptionSymbol_Put(t *testing.T) {
	expiry, optType, strike, err := ParseOptionSymbol("IEF260227P00095500", "IEF")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 2, 27, 0, 0, 0, 0, time.UTC), expiry)
	assert.Equal(t, domain.OptionTypePut, optType)
	assert.Equal(t, 95.5, strike)
}

func TestParseOptionSymbol_Errors(t *testing.T) {
	tests := []struct {
		name       string
		symbol     string
		underlying string
	}{
		{"wrong underlying", "GOOG251219C00355000", "AAPL"},
		{"too short", "GOOG251219C", "GOOG"},
		{"bad call/put code", "GOOG251219X00355000", "GOOG"},
		{"non-numeric strike", "GOOG251219C0035500X", "GOOG"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, _, err := ParseOptionSymbol(tt.symbol, tt.underlying)
			assert.Error(t, err)
		})
	}
}

func TestExtractUnderlying(t *testing.T) {
	tests := []struct {
		symbol   string
		expected string
	}{
		{"VIXY260220C00028000", "VIXY"},
		{"IEF260227P00095500", "IEF"},
		{"AAPL", "AAPL"},
		{"spy", "SPY"},
		{" QQQ ", "QQQ"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, ExtractUnderlying(tt.symbol), "symbol %q", tt.symbol)
	}
}

func TestExtractUnderlying_AlphabeticPassthrough(t *testing.T) {
	// Purely alphabetic symbols always map to themselves
	for _, s := range []string{"A", "SPY", "QQQM", "GLDM", "BRKB"} {
		assert.Equal(t, s, ExtractUnderlying(s))
	}
}

func TestIsOptionSymbol(t *testing.T) {
	assert.False(t, IsOptionSymbol("AAPL"))
	assert.True(t, IsOptionSymbol("VIXY260220C00028000"))
	assert.False(t, IsOptionSymbol(""))
	assert.False(t, IsOptionSymbol("SPY"))
	assert.True(t, IsOptionSymbol("SPY250321P00400000"))
}
