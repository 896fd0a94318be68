// Package options filters option chains down to affordable, liquid
// contracts and picks the best one for a target delta.
package options

import (
	"fmt"
	"time"

	"github.com/aristath/optionpilot/internal/domain"
)

// Rejection reasons reported by Diagnose. The evaluation short-circuits
// on the first failing check, so each contract contributes exactly one
// reason.
const (
	ReasonWrongType      = "wrong_type"
	ReasonDTEOutOfRange  = "dte_out_of_range"
	ReasonBelowMinPrice  = "below_min_price"
	ReasonSpreadTooWide  = "spread_too_wide"
	ReasonMissingDelta   = "missing_delta"
	ReasonPremiumOverCap = "premium_above_cap"
)

// FilterConfig holds the hard constraints applied to every chain row.
type FilterConfig struct {
	Want          domain.OptionType // call or put
	MinDTEDays    int               // inclusive
	MaxDTEDays    int               // inclusive
	MinPrice      float64           // price floor at the basis
	MaxSpreadPct  float64           // (ask-bid)/mid cap
	PriceBasis    string            // "ask" | "mid" | "bid"
	RequireDelta  bool
	MaxPremiumUSD float64 // per-contract premium cap; <= 0 disables
}

// Validate fills zero-valued fields with conservative defaults.
func (c *FilterConfig) Validate() error {
	if c.Want != domain.OptionTypeCall && c.Want != domain.OptionTypePut {
		return fmt.Errorf("filter requires a contract type, got %q", c.Want)
	}
	if c.MinDTEDays < 0 || c.MaxDTEDays < 0 {
		return fmt.Errorf("DTE bounds must be non-negative")
	}
	if c.MinDTEDays > c.MaxDTEDays {
		return fmt.Errorf("min DTE %d exceeds max DTE %d", c.MinDTEDays, c.MaxDTEDays)
	}
	if c.MinPrice <= 0 {
		c.MinPrice = 0.05
	}
	if c.MaxSpreadPct <= 0 {
		c.MaxSpreadPct = 0.30
	}
	if c.PriceBasis == "" {
		c.PriceBasis = "ask"
	}
	switch c.PriceBasis {
	case "ask", "bid", "mid":
	default:
		return fmt.Errorf("unknown price basis %q", c.PriceBasis)
	}
	return nil
}

// AffordableOptions applies the hard filters to a chain, returning the
// surviving contracts annotated with price, premium, DTE and spread.
// Input order is preserved.
func AffordableOptions(candidates []domain.OptionCandidate, cfg FilterConfig, asOf time.Time) ([]domain.AffordableOption, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var out []domain.AffordableOption
	for _, c := range candidates {
		aff, reason := evaluate(c, cfg, asOf)
		if reason == "" {
			out = append(out, *aff)
		}
	}
	return out, nil
}

// Diagnostics summarizes why a chain produced the affordable set it did.
type Diagnostics struct {
	Total    int            `json:"total"`
	Accepted int            `json:"accepted"`
	Reasons  map[string]int `json:"reasons"`
}

// Diagnose runs the same per-contract evaluation as AffordableOptions
// and tallies rejection reasons instead of collecting survivors.
func Diagnose(candidates []domain.OptionCandidate, cfg FilterConfig, asOf time.Time) (Diagnostics, error) {
	if err := cfg.Validate(); err != nil {
		return Diagnostics{}, err
	}

	diag := Diagnostics{Total: len(candidates), Reasons: make(map[string]int)}
	for _, c := range candidates {
		if _, reason := evaluate(c, cfg, asOf); reason == "" {
			diag.Accepted++
		} else {
			diag.Reasons[reason]++
		}
	}
	return diag, nil
}

// evaluate applies the filter chain to one contract. It returns the
// annotated contract and "" on acceptance, or nil and the first failing
// reason. Both the filter and the diagnostics go through here so the
// two can never disagree.
func evaluate(c domain.OptionCandidate, cfg FilterConfig, asOf time.Time) (*domain.AffordableOption, string) {
	if c.OptType != cfg.Want {
		return nil, ReasonWrongType
	}

	dte := dteDays(c.Expiry, asOf)
	if dte < cfg.MinDTEDays || dte > cfg.MaxDTEDays {
		return nil, ReasonDTEOutOfRange
	}

	price := basisPrice(c, cfg.PriceBasis)
	if price < cfg.MinPrice {
		return nil, ReasonBelowMinPrice
	}

	spread := spreadPct(c)
	if spread > cfg.MaxSpreadPct {
		return nil, ReasonSpreadTooWide
	}

	if cfg.RequireDelta && c.Delta == nil {
		return nil, ReasonMissingDelta
	}

	premium := price * 100.0
	if cfg.MaxPremiumUSD > 0 && premium > cfg.MaxPremiumUSD {
		return nil, ReasonPremiumOverCap
	}

	return &domain.AffordableOption{
		OptionCandidate: c,
		Price:           price,
		PriceBasis:      cfg.PriceBasis,
		PremiumUSD:      premium,
		DTEDays:         dte,
		SpreadPct:       spread,
	}, ""
}

// dteDays counts whole calendar days from asOf to expiry, both taken
// as UTC dates. Expiry today is 0 DTE.
func dteDays(expiry, asOf time.Time) int {
	e := expiry.UTC()
	a := asOf.UTC()
	eDay := time.Date(e.Year(), e.Month(), e.Day(), 0, 0, 0, 0, time.UTC)
	aDay := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	return int(eDay.Sub(aDay).Hours() / 24)
}

// basisPrice returns the contract price at the configured basis. The
// mid basis falls back to the ask when either side of the quote is
// missing.
func basisPrice(c domain.OptionCandidate, basis string) float64 {
	switch basis {
	case "bid":
		return c.Bid
	case "mid":
		if c.Bid > 0 && c.Ask > 0 {
			return (c.Bid + c.Ask) / 2.0
		}
		return c.Ask
	default:
		return c.Ask
	}
}

// spreadPct returns the bid/ask spread normalized by the mid price, or
// by the ask when the mid is not positive.
func spreadPct(c domain.OptionCandidate) float64 {
	spread := c.Ask - c.Bid
	mid := (c.Bid + c.Ask) / 2.0
	switch {
	case mid > 0:
		return spread / mid
	case c.Ask > 0:
		return spread / c.Ask
	default:
		return 0
	}
}
