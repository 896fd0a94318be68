package positions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/optionpilot/internal/domain"
)

func fptr(f float64) *float64 { return &f }

func TestStopCandidates(t *testing.T) {
	positions := []domain.Position{
		{Symbol: "AAPL", UnrealizedPLPct: fptr(-0.30)}, // boundary, flagged
		{Symbol: "MSFT", UnrealizedPLPct: fptr(-0.29)}, // just inside, kept
		{Symbol: "SPY", UnrealizedPLPct: fptr(0.15)},
		{Symbol: "QQQ", UnrealizedPLPct: fptr(-0.55)},
		{Symbol: "IWM"}, // no P&L data, never flagged
	}

	flagged := StopCandidates(positions, 0.30)
	require.Len(t, flagged, 2)
	assert.Equal(t, "AAPL", flagged[0].Symbol)
	assert.Equal(t, "QQQ", flagged[1].Symbol)
}

func TestStopCandidates_NegativeThresholdEquivalent(t *testing.T) {
	positions := []domain.Position{
		{Symbol: "TLT", UnrealizedPLPct: fptr(-0.40)},
	}
	assert.Len(t, StopCandidates(positions, 0.30), 1)
	assert.Len(t, StopCandidates(positions, -0.30), 1)
}

func TestHeldUnderlyings(t *testing.T) {
	positions := []domain.Position{
		{Symbol: "AAPL"},
		{Symbol: "VIXY260220C00028000"},
		{Symbol: ""},
	}

	held := HeldUnderlyings(positions)
	assert.True(t, held["AAPL"])
	assert.True(t, held["VIXY260220C00028000"])
	assert.True(t, held["VIXY"])
	assert.False(t, held["SPY"])
	assert.False(t, held[""])
}

func TestOptionUnderlyings(t *testing.T) {
	positions := []domain.Position{
		{Symbol: "AAPL"},
		{Symbol: "VIXY260220C00028000"},
		{Symbol: "IEF260227P00095500"},
		{Symbol: "IEF260327P00094000"}, // same underlying, deduplicated
	}

	assert.Equal(t, []string{"IEF", "VIXY"}, OptionUnderlyings(positions))
}
