package options

import (
	"fmt"
	"math"

	"github.com/aristath/optionpilot/internal/domain"
)

// deltaEpsilon guards the division in the move approximation; deltas
// this close to zero make the estimate meaningless.
const deltaEpsilon = 1e-9

// RequiredUnderlyingMove approximates the underlying price move needed
// for the option to gain profitPct of its entry price, using delta as
// a first-order sensitivity. Returns nil when the inputs cannot support
// the estimate (non-positive price or target, missing or ~zero delta).
// Puts need the underlying to move down, calls up.
func RequiredUnderlyingMove(entryPrice, profitPct float64, delta *float64, optType domain.OptionType, underlyingPrice *float64) *domain.RequiredMove {
	if entryPrice <= 0 || profitPct <= 0 {
		return nil
	}
	if delta == nil || math.Abs(*delta) <= deltaEpsilon {
		return nil
	}

	// Per share: profit target in dollars divided by delta dollars per
	// point of underlying move.
	moveUSD := (profitPct * entryPrice) / math.Abs(*delta)

	direction := "up"
	if optType == domain.OptionTypePut {
		direction = "down"
	}

	move := &domain.RequiredMove{
		Direction: direction,
		MoveUSD:   moveUSD,
	}
	if underlyingPrice != nil && *underlyingPrice > 0 {
		pct := moveUSD / *underlyingPrice
		move.MovePct = &pct
	}
	return move
}

// FormatRequiredMove renders a move estimate for notes and logs, e.g.
// "needs ~$2.50 down (1.2%)". Returns "" for a nil estimate.
func FormatRequiredMove(move *domain.RequiredMove) string {
	if move == nil {
		return ""
	}
	if move.MovePct != nil {
		return fmt.Sprintf("needs ~$%.2f %s (%.1f%%)", move.MoveUSD, move.Direction, *move.MovePct*100)
	}
	return fmt.Sprintf("needs ~$%.2f %s", move.MoveUSD, move.Direction)
}
