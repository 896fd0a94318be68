// Package budget builds cash allocation plans for one proposal pass.
//
// Strict mode splits the cash into independent equity and options
// budgets. Flex mode pools everything: the plan carries the full amount
// on both sides and the proposal builder draws from the shared pool.
package budget

import (
	"fmt"
	"math"
	"strings"

	"github.com/aristath/optionpilot/internal/domain"
)

// autoSplitThreshold is the cash level above which the auto allocation
// risks an options sleeve at all.
const autoSplitThreshold = 500.0

// BuildPlans builds the budget plan(s) for the given cash and settings.
// Negative cash is treated as zero. The "both" allocation expands to
// the three fixed strict splits for side-by-side comparison.
func BuildPlans(cash float64, mode, allocation string, minNewTrades int) []domain.BudgetPlan {
	total := math.Max(0, cash)

	if mode == "flex" {
		return []domain.BudgetPlan{{
			Name:          "flex",
			BudgetEquity:  total,
			BudgetOptions: total,
			Note:          fmt.Sprintf("Budget mode: FLEX (allocate across >= %d trade(s))", minNewTrades),
		}}
	}

	if allocation == "both" {
		return []domain.BudgetPlan{
			strictPlan("equity100", total),
			strictPlan("50_50", total),
			strictPlan("70_30", total),
		}
	}
	return []domain.BudgetPlan{strictPlan(allocation, total)}
}

func strictPlan(kind string, total float64) domain.BudgetPlan {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "equity100":
		return domain.BudgetPlan{
			Name:          "equity100",
			BudgetEquity:  total,
			BudgetOptions: 0,
			Note:          "Allocation: 100% equities",
		}
	case "50_50":
		return domain.BudgetPlan{
			Name:          "50_50",
			BudgetEquity:  0.50 * total,
			BudgetOptions: 0.50 * total,
			Note:          "Allocation: 50% equities / 50% options",
		}
	case "70_30":
		return domain.BudgetPlan{
			Name:          "70_30",
			BudgetEquity:  0.70 * total,
			BudgetOptions: 0.30 * total,
			Note:          "Allocation: 70% equities / 30% options",
		}
	}

	// Auto: only risk an options sleeve once there is enough cash for
	// the split to be meaningful
	if total >= autoSplitThreshold {
		return domain.BudgetPlan{
			Name:          "auto",
			BudgetEquity:  0.70 * total,
			BudgetOptions: 0.30 * total,
			Note:          "Allocation: 70/30 (auto, cash >= $500)",
		}
	}
	return domain.BudgetPlan{
		Name:          "auto",
		BudgetEquity:  total,
		BudgetOptions: 0,
		Note:          "Allocation: 100% equities (auto, cash < $500)",
	}
}

// FormatStatus renders a multi-line budget summary for logs and the
// API response.
func FormatStatus(plans []domain.BudgetPlan, mode string, cash float64, minTrades, maxTrades int) string {
	lines := []string{fmt.Sprintf("Trade budget (cash): $%s", formatUSD(cash))}

	switch {
	case mode == "flex" && len(plans) > 0:
		lines = append(lines, plans[0].Note)
	case len(plans) == 1:
		p := plans[0]
		lines = append(lines, fmt.Sprintf("%s (shares≈$%s options≈$%s)",
			p.Note, formatUSD(p.BudgetEquity), formatUSD(p.BudgetOptions)))
	default:
		for _, p := range plans {
			lines = append(lines, fmt.Sprintf("- %s: %s (shares≈$%s options≈$%s)",
				p.Name, p.Note, formatUSD(p.BudgetEquity), formatUSD(p.BudgetOptions)))
		}
	}

	lines = append(lines, fmt.Sprintf("Target new trades: %d..%d", minTrades, maxTrades))
	return strings.Join(lines, "\n")
}

// formatUSD renders an amount with two decimals and thousands
// separators, e.g. 1234.5 -> "1,234.50".
func formatUSD(amount float64) string {
	s := fmt.Sprintf("%.2f", amount)

	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, fracPart, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(digit)
	}

	out := b.String() + "." + fracPart
	if neg {
		out = "-" + out
	}
	return out
}
