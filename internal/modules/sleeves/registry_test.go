package sleeves

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_DefaultsToMacro(t *testing.T) {
	reg := NewRegistry()

	for _, names := range [][]string{nil, {}} {
		got, err := reg.Resolve(names)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "macro", got[0].Name)
	}
}

func TestResolve_Aliases(t *testing.T) {
	reg := NewRegistry()

	got, err := reg.Resolve([]string{"core"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "macro", got[0].Name)

	got, err = reg.Resolve([]string{"MBS"})
	require.NoError(t, err)
	assert.Equal(t, "housing", got[0].Name)

	got, err = reg.Resolve([]string{"tech_duration"})
	require.NoError(t, err)
	assert.Equal(t, "ai-bubble", got[0].Name)
}

func TestResolve_DedupeByCanonicalName(t *testing.T) {
	reg := NewRegistry()

	// "vol" and its alias collapse; first-seen order is preserved
	got, err := reg.Resolve([]string{"vol", "volatility", "macro", "core"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "vol", got[0].Name)
	assert.Equal(t, "macro", got[1].Name)
}

func TestResolve_SkipsBlanks(t *testing.T) {
	reg := NewRegistry()

	got, err := reg.Resolve([]string{"", "  ", "housing"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "housing", got[0].Name)
}

func TestResolve_UnknownSleeve(t *testing.T) {
	reg := NewRegistry()

	_, err := reg.Resolve([]string{"bogus"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bogus")
	assert.Contains(t, err.Error(), "macro")
	assert.Contains(t, err.Error(), "housing")
}

func TestRegistry_RiskBudgets(t *testing.T) {
	reg := NewRegistry()

	assert.Equal(t, 0.60, reg["macro"].RiskBudgetPct)
	assert.Equal(t, 0.25, reg["vol"].RiskBudgetPct)
	assert.Equal(t, 0.15, reg["ai-bubble"].RiskBudgetPct)
	assert.Equal(t, 0.20, reg["housing"].RiskBudgetPct)
}

func TestSleeveUniverses(t *testing.T) {
	reg := NewRegistry()

	vol := reg["vol"].Universe("ignored")
	assert.Contains(t, vol, "VIXY")
	assert.Contains(t, vol, "PSQ")

	ai := reg["ai-bubble"].Universe("ignored")
	assert.Contains(t, ai, "NVDA")
	assert.Contains(t, ai, "SMH")

	housing := reg["housing"].Universe("extended")
	assert.Contains(t, housing, "MBB")
	assert.NotContains(t, housing, "NVDA")

	// Macro honors the basket name
	macro := reg["macro"].Universe("extended")
	assert.Contains(t, macro, "SPXU")
	starter := reg["macro"].Universe("starter")
	assert.NotContains(t, starter, "SPXU")
}

func TestApplyFeatureWeights(t *testing.T) {
	features := map[string]float64{
		"vol_pressure_score": 1.0,
		"vol_term_slope":     1.0,
		"rates_real_10y":     2.0,
		"unrelated":          5.0,
	}

	got := ApplyFeatureWeights(features, NewRegistry()["vol"].FeatureWeights)

	// Exact key beats the broader vol_ family
	assert.Equal(t, 3.0, got["vol_pressure_score"])
	assert.Equal(t, 2.0, got["vol_term_slope"])
	assert.Equal(t, 2.5, got["rates_real_10y"])
	assert.Equal(t, 5.0, got["unrelated"])
}

func TestApplyFeatureWeights_NilWeights(t *testing.T) {
	features := map[string]float64{"vol_x": 1.0}
	got := ApplyFeatureWeights(features, nil)
	assert.Equal(t, features, got)
}

func TestGetUniverse(t *testing.T) {
	assert.Contains(t, GetUniverse("extended").BasketEquity, "SQQQ")
	assert.Contains(t, GetUniverse("e").BasketEquity, "SQQQ")
	assert.Contains(t, GetUniverse("housing").BasketEquity, "MBB")
	assert.Contains(t, GetUniverse("default").BasketEquity, "XLF")
	assert.Contains(t, GetUniverse("").BasketEquity, "QQQM")
	assert.Contains(t, GetUniverse("starter").BasketEquity, "QQQM")
}
