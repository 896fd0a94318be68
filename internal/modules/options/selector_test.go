package options

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/optionpilot/internal/domain"
)

func affordable(symbol string, delta float64, spread float64, dte int, oi, vol *float64) domain.AffordableOption {
	return domain.AffordableOption{
		OptionCandidate: domain.OptionCandidate{
			Symbol:       symbol,
			OptType:      domain.OptionTypePut,
			Delta:        &delta,
			OpenInterest: oi,
			Volume:       vol,
		},
		SpreadPct: spread,
		DTEDays:   dte,
	}
}

func TestPickBestAffordable_Empty(t *testing.T) {
	assert.Nil(t, PickBestAffordable(nil, 0.30))
	assert.Nil(t, PickBestAffordable([]domain.AffordableOption{}, 0.30))
}

func TestPickBestAffordable_ClosestDelta(t *testing.T) {
	set := []domain.AffordableOption{
		affordable("FAR", -0.55, 0.10, 45, nil, nil),
		affordable("BEST", -0.31, 0.10, 45, nil, nil),
		affordable("NEAR", -0.25, 0.10, 45, nil, nil),
	}

	got := PickBestAffordable(set, 0.30)
	require.NotNil(t, got)
	assert.Equal(t, "BEST", got.Symbol)
}

func TestPickBestAffordable_SpreadTieBreak(t *testing.T) {
	// 0.28 and 0.32 are equidistant from the 0.30 target
	set := []domain.AffordableOption{
		affordable("WIDE", -0.32, 0.20, 45, nil, nil),
		affordable("TIGHT", -0.28, 0.05, 45, nil, nil),
	}

	got := PickBestAffordable(set, 0.30)
	require.NotNil(t, got)
	assert.Equal(t, "TIGHT", got.Symbol)
}

func TestPickBestAffordable_LiquidityTieBreak(t *testing.T) {
	set := []domain.AffordableOption{
		affordable("THIN", -0.30, 0.10, 45, fptr(100), fptr(5)),
		affordable("DEEP", -0.30, 0.10, 45, fptr(5000), fptr(5)),
	}

	got := PickBestAffordable(set, 0.30)
	require.NotNil(t, got)
	assert.Equal(t, "DEEP", got.Symbol)

	// Open interest equal, volume decides
	set = []domain.AffordableOption{
		affordable("QUIET", -0.30, 0.10, 45, fptr(100), fptr(5)),
		affordable("ACTIVE", -0.30, 0.10, 45, fptr(100), fptr(900)),
	}
	got = PickBestAffordable(set, 0.30)
	require.NotNil(t, got)
	assert.Equal(t, "ACTIVE", got.Symbol)
}

func TestPickBestAffordable_MedianDTETieBreak(t *testing.T) {
	// Median DTE of {30, 55, 90} is 55; the 90-day contract loses
	set := []domain.AffordableOption{
		affordable("A30", -0.30, 0.10, 30, nil, nil),
		affordable("A55", -0.30, 0.10, 55, nil, nil),
		affordable("A90", -0.30, 0.10, 90, nil, nil),
	}

	got := PickBestAffordable(set, 0.30)
	require.NotNil(t, got)
	assert.Equal(t, "A55", got.Symbol)
}

func TestPickBestAffordable_MissingDeltaRanksLast(t *testing.T) {
	noDelta := affordable("NODELTA", 0, 0.01, 45, nil, nil)
	noDelta.Delta = nil
	set := []domain.AffordableOption{
		noDelta,
		affordable("HASDELTA", -0.50, 0.25, 45, nil, nil),
	}

	got := PickBestAffordable(set, 0.30)
	require.NotNil(t, got)
	assert.Equal(t, "HASDELTA", got.Symbol)
}

func TestPickBestAffordable_DeterministicOnFullTie(t *testing.T) {
	set := []domain.AffordableOption{
		affordable("ZZZ", -0.30, 0.10, 45, nil, nil),
		affordable("AAA", -0.30, 0.10, 45, nil, nil),
	}

	got := PickBestAffordable(set, 0.30)
	require.NotNil(t, got)
	assert.Equal(t, "AAA", got.Symbol)
}
