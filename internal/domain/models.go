// Package domain contains the core value records shared across modules.
// All of these are produced fresh per analysis pass and are not mutated
// after construction.
package domain

import "time"

// OptionType identifies a contract as a call or a put.
type OptionType string

const (
	OptionTypeCall OptionType = "call"
	OptionTypePut  OptionType = "put"
)

// Trade directions for candidate ideas.
const (
	DirectionBullish = "bullish"
	DirectionBearish = "bearish"
)

// Proposal kinds.
const (
	ProposalOpenOption = "OPEN_OPTION"
	ProposalOpenShares = "OPEN_SHARES"
)

// Position is a normalized broker position snapshot. Numeric fields are
// pointers because provider records may carry missing or malformed
// values; those degrade to nil rather than failing the whole fetch.
type Position struct {
	Symbol          string   `json:"symbol"`
	Qty             *float64 `json:"qty"`
	AvgEntryPrice   *float64 `json:"avg_entry_price"`
	CurrentPrice    *float64 `json:"current_price"`
	UnrealizedPL    *float64 `json:"unrealized_pl"`
	UnrealizedPLPct *float64 `json:"unrealized_plpc"`
}

// OptionCandidate is a raw option chain row for one underlying.
type OptionCandidate struct {
	Symbol       string     `json:"symbol"`
	Underlying   string     `json:"underlying"`
	OptType      OptionType `json:"opt_type"`
	Expiry       time.Time  `json:"expiry"`
	Strike       float64    `json:"strike"`
	Bid          float64    `json:"bid"`
	Ask          float64    `json:"ask"`
	Delta        *float64   `json:"delta"`
	OpenInterest *float64   `json:"open_interest"`
	Volume       *float64   `json:"volume"`
}

// AffordableOption is an OptionCandidate that passed every hard filter,
// annotated with the derived fields the selector ranks on.
type AffordableOption struct {
	OptionCandidate

	Price      float64 `json:"price"`       // price at the configured basis
	PriceBasis string  `json:"price_basis"` // e.g. "ask"
	PremiumUSD float64 `json:"premium_usd"` // price x 100
	DTEDays    int     `json:"dte_days"`
	SpreadPct  float64 `json:"spread_pct"`
}

// OptionLeg is the selected contract attached to a trade candidate.
type OptionLeg struct {
	Symbol     string     `json:"symbol"`
	Type       OptionType `json:"type"`
	Price      float64    `json:"price"`
	PremiumUSD float64    `json:"premium_usd"`
	Delta      *float64   `json:"delta"`
}

// CandidateIdea is a ranked directional trade idea produced by an
// upstream scoring stage.
type CandidateIdea struct {
	Ticker    string  `json:"ticker"`
	Direction string  `json:"direction"` // bullish | bearish
	Sleeve    string  `json:"sleeve"`
	Score     float64 `json:"score"`
	Rationale string  `json:"rationale,omitempty"`
}

// TradeProposal is a concrete, budget-respecting proposed trade.
// Leg is nil for share proposals; a candidate for which no contract
// satisfied the constraints simply produces no proposal.
type TradeProposal struct {
	Kind       string        `json:"kind"` // OPEN_OPTION | OPEN_SHARES
	Ticker     string        `json:"ticker"`
	Idea       CandidateIdea `json:"idea"`
	EstCostUSD float64       `json:"est_cost_usd"`
	Exposure   string        `json:"exposure"` // bullish | bearish
	Leg        *OptionLeg    `json:"leg,omitempty"`
	Contracts  int           `json:"contracts,omitempty"`
	Qty        int           `json:"qty,omitempty"`
	Limit      *float64      `json:"limit,omitempty"`
	Notes      string        `json:"notes,omitempty"`
}

// AllocationResult is the finalized outcome of one allocation pass.
// Read-only once returned.
type AllocationResult struct {
	Proposals        []TradeProposal `json:"proposals"`
	RemainingEquity  float64         `json:"remaining_equity"`
	RemainingOptions float64         `json:"remaining_options"`
	RemainingTotal   float64         `json:"remaining_total"`
	NBullish         int             `json:"n_bullish"`
	NBearish         int             `json:"n_bearish"`
}

// BudgetPlan is a cash allocation plan for one pass. In strict mode the
// equity and options caps are independent; in flex mode both carry the
// full pooled budget and the proposal builder draws from the pool.
type BudgetPlan struct {
	Name          string  `json:"name"`
	BudgetEquity  float64 `json:"budget_equity"`
	BudgetOptions float64 `json:"budget_options"`
	Note          string  `json:"note"`
}

// Total returns the combined equity + options cap.
func (p BudgetPlan) Total() float64 {
	return p.BudgetEquity + p.BudgetOptions
}

// SizeResult is the outcome of risk-bounded contract sizing.
// MaxContracts is always >= 0 and MaxContracts*PerContractCost never
// exceeds BudgetUSD.
type SizeResult struct {
	MaxContracts    int     `json:"max_contracts"`
	PerContractCost float64 `json:"per_contract_cost"`
	BudgetUSD       float64 `json:"budget_usd"`
}

// RequiredMove is a delta-based approximation of the underlying move
// required to reach a target option P&L. First-order only: ignores
// gamma/theta/vega, IV changes, spread and time.
type RequiredMove struct {
	Direction string   `json:"direction"` // "up" for calls, "down" for puts
	MoveUSD   float64  `json:"move_usd"`
	MovePct   *float64 `json:"move_pct,omitempty"`
}
