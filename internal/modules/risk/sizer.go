// Package risk sizes option positions against a budget and the
// portfolio-wide risk limits.
package risk

import (
	"math"

	"github.com/aristath/optionpilot/internal/config"
	"github.com/aristath/optionpilot/internal/domain"
)

// SizeByBudget returns how many contracts a budget affords at the given
// per-contract cost, clamped to the configured maximum. A non-positive
// cost sizes to zero, as does a cost above the per-contract premium
// ceiling when one is configured.
func SizeByBudget(perContractCost, budgetUSD float64, cfg config.RiskConfig) domain.SizeResult {
	result := domain.SizeResult{
		PerContractCost: perContractCost,
		BudgetUSD:       budgetUSD,
	}

	if perContractCost <= 0 || budgetUSD <= 0 {
		return result
	}

	if cfg.MaxPremiumPerContract != nil && perContractCost > *cfg.MaxPremiumPerContract*100.0 {
		return result
	}

	contracts := int(math.Floor(budgetUSD / perContractCost))
	if contracts < 0 {
		contracts = 0
	}
	if cfg.MaxContracts > 0 && contracts > cfg.MaxContracts {
		contracts = cfg.MaxContracts
	}

	result.MaxContracts = contracts
	return result
}
