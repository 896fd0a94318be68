package sleeves

import (
	"math"
	"sort"
	"strings"
)

// leveredInverseEquity lists leveraged inverse equity ETFs; at most one
// may appear in a selection because their decay profiles stack badly.
var leveredInverseEquity = map[string]bool{
	"SPXU": true, "SQQQ": true, "TZA": true, "SDOW": true, "SOXS": true,
	"SRTY": true, "LABD": true, "TWM": true, "SDS": true, "QID": true,
}

// Drop reasons recorded by the aggregator.
const (
	DropLeveredInverseCap = "levered_inverse_equity_cap"
	DropPSQSQQQExclusive  = "psq_sqqq_exclusive"
	DropDuplicateRiskSig  = "duplicate_risk_signature"
	DropFactorCap         = "factor_cap"
	DropTotalBudget       = "total_budget"
	DropSleeveBudget      = "sleeve_budget"
)

// CandidateTrade is a sleeve's proposed trade entering aggregation.
type CandidateTrade struct {
	Sleeve         string   `json:"sleeve"`
	Ticker         string   `json:"ticker"`
	Action         string   `json:"action"`          // OPEN_OPTION | OPEN_SHARES | CLOSE
	InstrumentType string   `json:"instrument_type"` // equity | option
	Direction      string   `json:"direction"`       // bullish | bearish
	Score          float64  `json:"score"`
	Rationale      string   `json:"rationale,omitempty"`
	Expr           string   `json:"expr,omitempty"` // option symbol or "qty=.."
	EstCostUSD     float64  `json:"est_cost_usd"`
	RiskFactors    []string `json:"risk_factors,omitempty"`
	Probe          bool     `json:"probe"` // probes bypass de-dupe and factor caps
}

// DroppedTrade pairs a rejected candidate with the constraint that
// rejected it.
type DroppedTrade struct {
	Trade  CandidateTrade `json:"trade"`
	Reason string         `json:"reason"`
}

// AggregationResult is the outcome of one aggregation pass.
type AggregationResult struct {
	Selected []CandidateTrade `json:"selected"`
	Dropped  []DroppedTrade   `json:"dropped"`
}

// PortfolioAggregator merges candidate trades across sleeves:
// de-duplicates redundant exposures via risk factor signatures and
// factor caps, blocks mutually exclusive tickers, and enforces sleeve
// plus total budgets with best-effort cost accounting.
type PortfolioAggregator struct {
	FactorCap int // max selections sharing one risk factor (probes exempt)
}

// NewPortfolioAggregator creates an aggregator with the default cap of
// one trade per risk factor.
func NewPortfolioAggregator() *PortfolioAggregator {
	return &PortfolioAggregator{FactorCap: 1}
}

// Aggregate greedily selects candidates by descending score. Sleeve
// budgets default to equal weights across the sleeves present when no
// percentages are given.
func (a *PortfolioAggregator) Aggregate(candidates []CandidateTrade, totalBudgetUSD float64, sleeveBudgetsPct map[string]float64) AggregationResult {
	sleeves := sleevesPresent(candidates)
	if len(sleeveBudgetsPct) == 0 && len(sleeves) > 0 {
		sleeveBudgetsPct = make(map[string]float64, len(sleeves))
		for _, s := range sleeves {
			sleeveBudgetsPct[s] = 1.0 / float64(len(sleeves))
		}
	}

	// Sleeves without an explicit share are bounded by the total budget
	// only; an absent entry must not read as a zero budget
	totalRem := math.Max(0, totalBudgetUSD)
	sleeveRem := make(map[string]float64, len(sleeves))
	for _, s := range sleeves {
		if pct, ok := sleeveBudgetsPct[s]; ok {
			sleeveRem[s] = math.Max(0, pct*totalBudgetUSD)
		}
	}

	ranked := make([]CandidateTrade, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	var result AggregationResult
	usedLeveredInverse := false
	usedPSQ := false
	usedSQQQ := false
	usedFactorCounts := make(map[string]int)
	usedSignatures := make(map[string]bool)

	drop := func(c CandidateTrade, reason string) {
		result.Dropped = append(result.Dropped, DroppedTrade{Trade: c, Reason: reason})
	}

	for _, c := range ranked {
		ticker := strings.ToUpper(strings.TrimSpace(c.Ticker))

		// Mutually exclusive inverse-leverage rules
		if leveredInverseEquity[ticker] {
			if usedLeveredInverse {
				drop(c, DropLeveredInverseCap)
				continue
			}
			usedLeveredInverse = true
		}
		if ticker == "PSQ" {
			if usedSQQQ {
				drop(c, DropPSQSQQQExclusive)
				continue
			}
			usedPSQ = true
		}
		if ticker == "SQQQ" {
			if usedPSQ {
				drop(c, DropPSQSQQQExclusive)
				continue
			}
			usedSQQQ = true
		}

		// Signature de-dupe: identical risk factor sets keep the best
		// scorer only (probes exempt)
		sig := signature(c.RiskFactors)
		if sig != "" && !c.Probe && usedSignatures[sig] {
			drop(c, DropDuplicateRiskSig)
			continue
		}

		// Factor caps (probes exempt)
		if len(c.RiskFactors) > 0 && !c.Probe {
			violated := false
			for _, f := range c.RiskFactors {
				if usedFactorCounts[f] >= a.FactorCap {
					violated = true
					break
				}
			}
			if violated {
				drop(c, DropFactorCap)
				continue
			}
		}

		// Budgets (zero-cost candidates always fit)
		cost := math.Max(0, c.EstCostUSD)
		if cost > 0 {
			if cost > totalRem {
				drop(c, DropTotalBudget)
				continue
			}
			if rem, tracked := sleeveRem[c.Sleeve]; tracked && cost > rem {
				drop(c, DropSleeveBudget)
				continue
			}
		}

		result.Selected = append(result.Selected, c)
		if sig != "" && !c.Probe {
			usedSignatures[sig] = true
		}
		if len(c.RiskFactors) > 0 && !c.Probe {
			for _, f := range c.RiskFactors {
				usedFactorCounts[f]++
			}
		}
		if cost > 0 {
			totalRem = math.Max(0, totalRem-cost)
			if rem, tracked := sleeveRem[c.Sleeve]; tracked {
				sleeveRem[c.Sleeve] = math.Max(0, rem-cost)
			}
		}
	}

	return result
}

// InferRiskFactors assigns heuristic exposure buckets to a trade so the
// aggregator can de-duplicate equivalent expressions.
func InferRiskFactors(sleeve, ticker, direction string) []string {
	t := strings.ToUpper(strings.TrimSpace(ticker))
	s := strings.ToLower(strings.TrimSpace(sleeve))
	d := strings.ToLower(strings.TrimSpace(direction))
	bullish := strings.HasPrefix(d, "bull")

	factors := make(map[string]bool)

	// Vol sleeve trades are mostly "vol up" expressions
	if s == "vol" || s == "volatility" {
		factors["vol_up"] = true
	}

	// Equity beta bucket
	switch t {
	case "SPY", "QQQ", "QQQM", "IWM", "DIA":
		if bullish {
			factors["equity_beta_up"] = true
		} else {
			factors["equity_beta_down"] = true
		}
	}

	// Inverse equity ETFs
	switch t {
	case "SH", "PSQ", "RWM", "DOG", "SDS", "QID", "TWM", "SPXU", "SQQQ", "TZA", "SDOW", "SOXS", "SRTY":
		factors["inverse_equity"] = true
		factors["equity_beta_down"] = true
	}

	// Inverse real estate / REIT beta
	if t == "REK" || t == "SRS" {
		factors["reit_beta_down"] = true
		factors["inverse_real_estate"] = true
	}

	// Rates bucket: long duration held bullish is a bet on rates
	// falling, everything else in the bucket expresses rates rising
	switch t {
	case "TLT", "IEF", "TIP", "TBT", "TBF":
		if (t == "TLT" || t == "IEF") && bullish {
			factors["rates_down"] = true
		} else {
			factors["rates_up"] = true
		}
	}

	// Credit bucket
	switch t {
	case "HYG", "LQD", "JNK", "SHY":
		factors["credit"] = true
		if !bullish {
			factors["credit_stress"] = true
		}
	}

	// AI bubble sleeve (tech duration / semis)
	if s == "ai-bubble" || s == "ai_bubble" || s == "tech_duration" {
		factors["tech_duration"] = true
		if !bullish {
			factors["equity_beta_down"] = true
		}
	}

	out := make([]string, 0, len(factors))
	for f := range factors {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

func signature(riskFactors []string) string {
	if len(riskFactors) == 0 {
		return ""
	}
	return strings.Join(riskFactors, "|")
}

func sleevesPresent(candidates []CandidateTrade) []string {
	seen := make(map[string]bool)
	for _, c := range candidates {
		if c.Sleeve != "" {
			seen[c.Sleeve] = true
		}
	}
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
