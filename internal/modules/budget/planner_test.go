package budget

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPlans_Flex(t *testing.T) {
	plans := BuildPlans(1000, "flex", "auto", 2)
	require.Len(t, plans, 1)

	p := plans[0]
	assert.Equal(t, "flex", p.Name)
	assert.Equal(t, 1000.0, p.BudgetEquity)
	assert.Equal(t, 1000.0, p.BudgetOptions)
	assert.Equal(t, "Budget mode: FLEX (allocate across >= 2 trade(s))", p.Note)
}

func TestBuildPlans_StrictKinds(t *testing.T) {
	tests := []struct {
		allocation string
		equity     float64
		options    float64
	}{
		{"equity100", 1000, 0},
		{"50_50", 500, 500},
		{"70_30", 700, 300},
	}

	for _, tt := range tests {
		t.Run(tt.allocation, func(t *testing.T) {
			plans := BuildPlans(1000, "strict", tt.allocation, 2)
			require.Len(t, plans, 1)
			assert.Equal(t, tt.allocation, plans[0].Name)
			assert.InDelta(t, tt.equity, plans[0].BudgetEquity, 1e-9)
			assert.InDelta(t, tt.options, plans[0].BudgetOptions, 1e-9)
			assert.InDelta(t, 1000.0, plans[0].Total(), 1e-9)
		})
	}
}

func TestBuildPlans_Auto(t *testing.T) {
	// Enough cash: 70/30 split
	plans := BuildPlans(800, "strict", "auto", 2)
	require.Len(t, plans, 1)
	assert.InDelta(t, 560.0, plans[0].BudgetEquity, 1e-9)
	assert.InDelta(t, 240.0, plans[0].BudgetOptions, 1e-9)

	// Threshold is inclusive
	plans = BuildPlans(500, "strict", "auto", 2)
	assert.InDelta(t, 150.0, plans[0].BudgetOptions, 1e-9)

	// Below threshold: all equities
	plans = BuildPlans(499, "strict", "auto", 2)
	assert.Equal(t, 499.0, plans[0].BudgetEquity)
	assert.Equal(t, 0.0, plans[0].BudgetOptions)
}

func TestBuildPlans_Both(t *testing.T) {
	plans := BuildPlans(1000, "strict", "both", 2)
	require.Len(t, plans, 3)
	assert.Equal(t, "equity100", plans[0].Name)
	assert.Equal(t, "50_50", plans[1].Name)
	assert.Equal(t, "70_30", plans[2].Name)
}

func TestBuildPlans_NegativeCash(t *testing.T) {
	plans := BuildPlans(-50, "strict", "auto", 2)
	require.Len(t, plans, 1)
	assert.Equal(t, 0.0, plans[0].Total())
}

func TestFormatStatus(t *testing.T) {
	plans := BuildPlans(1234.5, "strict", "50_50", 2)
	got := FormatStatus(plans, "strict", 1234.5, 2, 3)

	assert.Equal(t,
		"Trade budget (cash): $1,234.50\n"+
			"Allocation: 50% equities / 50% options (shares≈$617.25 options≈$617.25)\n"+
			"Target new trades: 2..3",
		got)
}

func TestFormatStatus_MultiplePlans(t *testing.T) {
	plans := BuildPlans(1000, "strict", "both", 2)
	got := FormatStatus(plans, "strict", 1000, 2, 3)

	assert.Contains(t, got, "- equity100: Allocation: 100% equities (shares≈$1,000.00 options≈$0.00)")
	assert.Contains(t, got, "- 50_50:")
	assert.Contains(t, got, "- 70_30:")
}

func TestFormatUSD(t *testing.T) {
	assert.Equal(t, "0.00", formatUSD(0))
	assert.Equal(t, "999.99", formatUSD(999.99))
	assert.Equal(t, "1,000.00", formatUSD(1000))
	assert.Equal(t, "1,234,567.89", formatUSD(1234567.89))
	assert.Equal(t, "-1,234.50", formatUSD(-1234.5))
}
