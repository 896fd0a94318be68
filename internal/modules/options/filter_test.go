package options

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/optionpilot/internal/domain"
)

var asOf = time.Date(2026, 1, 2, 15, 0, 0, 0, time.UTC)

func fptr(f float64) *float64 { return &f }

func candidate(symbol string, optType domain.OptionType, dte int, bid, ask float64, delta *float64) domain.OptionCandidate {
	return domain.OptionCandidate{
		Symbol:     symbol,
		Underlying: "SPY",
		OptType:    optType,
		Expiry:     asOf.AddDate(0, 0, dte),
		Bid:        bid,
		Ask:        ask,
		Delta:      delta,
	}
}

func baseConfig() FilterConfig {
	return FilterConfig{
		Want:          domain.OptionTypePut,
		MinDTEDays:    14,
		MaxDTEDays:    90,
		MinPrice:      0.05,
		MaxSpreadPct:  0.30,
		PriceBasis:    "ask",
		RequireDelta:  true,
		MaxPremiumUSD: 200,
	}
}

func TestAffordableOptions(t *testing.T) {
	candidates := []domain.OptionCandidate{
		candidate("OK", domain.OptionTypePut, 45, 1.00, 1.20, fptr(-0.30)),
		candidate("CALL", domain.OptionTypeCall, 45, 1.00, 1.20, fptr(0.30)),
		candidate("SHORT_DTE", domain.OptionTypePut, 13, 1.00, 1.20, fptr(-0.30)),
		candidate("LONG_DTE", domain.OptionTypePut, 91, 1.00, 1.20, fptr(-0.30)),
		candidate("CHEAP", domain.OptionTypePut, 45, 0.01, 0.04, fptr(-0.30)),
		candidate("WIDE", domain.OptionTypePut, 45, 0.50, 1.00, fptr(-0.30)),
		candidate("NO_DELTA", domain.OptionTypePut, 45, 1.00, 1.20, nil),
		candidate("PRICEY", domain.OptionTypePut, 45, 2.90, 3.00, fptr(-0.30)),
	}

	affordable, err := AffordableOptions(candidates, baseConfig(), asOf)
	require.NoError(t, err)
	require.Len(t, affordable, 1)

	got := affordable[0]
	assert.Equal(t, "OK", got.Symbol)
	assert.Equal(t, 1.20, got.Price)
	assert.Equal(t, "ask", got.PriceBasis)
	assert.Equal(t, 120.0, got.PremiumUSD)
	assert.Equal(t, 45, got.DTEDays)
	assert.InDelta(t, 0.1818, got.SpreadPct, 0.001)
}

func TestAffordableOptions_DTEBoundsInclusive(t *testing.T) {
	candidates := []domain.OptionCandidate{
		candidate("MIN", domain.OptionTypePut, 14, 1.00, 1.20, fptr(-0.30)),
		candidate("MAX", domain.OptionTypePut, 90, 1.00, 1.20, fptr(-0.30)),
	}

	affordable, err := AffordableOptions(candidates, baseConfig(), asOf)
	require.NoError(t, err)
	assert.Len(t, affordable, 2)
}

func TestAffordableOptions_PremiumCapDisabled(t *testing.T) {
	cfg := baseConfig()
	cfg.MaxPremiumUSD = 0

	candidates := []domain.OptionCandidate{
		candidate("PRICEY", domain.OptionTypePut, 45, 2.90, 3.00, fptr(-0.30)),
	}

	affordable, err := AffordableOptions(candidates, cfg, asOf)
	require.NoError(t, err)
	assert.Len(t, affordable, 1)
}

func TestDiagnose(t *testing.T) {
	candidates := []domain.OptionCandidate{
		candidate("OK", domain.OptionTypePut, 45, 1.00, 1.20, fptr(-0.30)),
		candidate("CALL", domain.OptionTypeCall, 45, 1.00, 1.20, fptr(0.30)),
		candidate("SHORT_DTE", domain.OptionTypePut, 5, 1.00, 1.20, fptr(-0.30)),
		candidate("WIDE", domain.OptionTypePut, 45, 0.50, 1.00, fptr(-0.30)),
		candidate("NO_DELTA", domain.OptionTypePut, 45, 1.00, 1.20, nil),
		candidate("PRICEY", domain.OptionTypePut, 45, 2.90, 3.00, fptr(-0.30)),
	}

	diag, err := Diagnose(candidates, baseConfig(), asOf)
	require.NoError(t, err)

	assert.Equal(t, 6, diag.Total)
	assert.Equal(t, 1, diag.Accepted)
	assert.Equal(t, 1, diag.Reasons[ReasonWrongType])
	assert.Equal(t, 1, diag.Reasons[ReasonDTEOutOfRange])
	assert.Equal(t, 1, diag.Reasons[ReasonSpreadTooWide])
	assert.Equal(t, 1, diag.Reasons[ReasonMissingDelta])
	assert.Equal(t, 1, diag.Reasons[ReasonPremiumOverCap])
}

func TestFilterConfig_Validate(t *testing.T) {
	cfg := FilterConfig{Want: domain.OptionTypeCall, MaxDTEDays: 60}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 0.05, cfg.MinPrice)
	assert.Equal(t, 0.30, cfg.MaxSpreadPct)
	assert.Equal(t, "ask", cfg.PriceBasis)

	bad := FilterConfig{Want: "straddle"}
	assert.Error(t, bad.Validate())

	inverted := FilterConfig{Want: domain.OptionTypeCall, MinDTEDays: 30, MaxDTEDays: 10}
	assert.Error(t, inverted.Validate())
}

func TestSpreadPct_EdgeQuotes(t *testing.T) {
	// No bid: the mid is still positive and normalizes the spread
	c := candidate("NOBID", domain.OptionTypePut, 45, 0, 1.00, fptr(-0.30))
	assert.InDelta(t, 2.0, spreadPct(c), 1e-9)

	// No quote at all: zero spread (the price floor rejects these rows)
	c.Ask = 0
	assert.Equal(t, 0.0, spreadPct(c))
}
