package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aristath/optionpilot/internal/config"
)

func fptr(f float64) *float64 { return &f }

func TestSizeByBudget(t *testing.T) {
	cfg := config.RiskConfig{MaxContracts: 20}

	got := SizeByBudget(250, 1000, cfg)
	assert.Equal(t, 4, got.MaxContracts)
	assert.Equal(t, 250.0, got.PerContractCost)
	assert.Equal(t, 1000.0, got.BudgetUSD)

	// Partial contract never rounds up
	assert.Equal(t, 3, SizeByBudget(300, 1000, cfg).MaxContracts)
}

func TestSizeByBudget_ZeroAndNegativeCost(t *testing.T) {
	cfg := config.RiskConfig{MaxContracts: 20}

	assert.Equal(t, 0, SizeByBudget(0, 1000, cfg).MaxContracts)
	assert.Equal(t, 0, SizeByBudget(-50, 1000, cfg).MaxContracts)
	assert.Equal(t, 0, SizeByBudget(250, 0, cfg).MaxContracts)
}

func TestSizeByBudget_MaxContractsClamp(t *testing.T) {
	cfg := config.RiskConfig{MaxContracts: 5}
	assert.Equal(t, 5, SizeByBudget(10, 1000, cfg).MaxContracts)
}

func TestSizeByBudget_PerContractCeiling(t *testing.T) {
	// Ceiling of 1.00 per share means $100 per contract; a $150
	// contract sizes to zero even with budget available
	cfg := config.RiskConfig{MaxContracts: 20, MaxPremiumPerContract: fptr(1.00)}
	assert.Equal(t, 0, SizeByBudget(150, 1000, cfg).MaxContracts)

	// At or under the ceiling sizes normally
	assert.Equal(t, 10, SizeByBudget(100, 1000, cfg).MaxContracts)
}
