package proposals

import (
	"fmt"
	"math"
	"strings"

	"github.com/aristath/optionpilot/internal/config"
	"github.com/aristath/optionpilot/internal/domain"
	"github.com/aristath/optionpilot/internal/modules/risk"
)

// epsilon absorbs float drift in budget comparisons so a cost equal to
// the remaining budget still fits.
const epsilon = 1e-9

// BuildConfig controls one allocation pass.
type BuildConfig struct {
	BudgetMode      string // "strict" | "flex"
	FlexPrefer      string // "options" | "shares"
	WithOptions     bool
	MaxPremiumUSD   float64 // per-contract cap (strict mode)
	SharesBudgetUSD float64 // per-position share budget (strict mode)
	MaxNewTrades    int
	MinNewTrades    int
	Risk            config.RiskConfig
}

// BuildProposals walks the ranked candidates and allocates the plan's
// budget into option and share proposals.
//
// Held underlyings are skipped entirely. Hedge instruments are opened
// as bullish shares counting as bearish exposure, with at most one
// leveraged inverse position per pass. Bearish ideas without a usable
// put fall back to an inverse ETF proxy when options are disabled. A
// final top-up pass tries to ensure the result carries both bullish
// and bearish exposure.
func BuildProposals(candidates []domain.CandidateIdea, legs map[string]domain.OptionLeg, lastPrices map[string]float64, plan domain.BudgetPlan, held map[string]bool, cfg BuildConfig) domain.AllocationResult {
	b := &builder{
		cfg:        cfg,
		legs:       legs,
		lastPrices: lastPrices,
		held:       held,
		opened:     make(map[string]bool),

		remainingTotal: math.Max(0, plan.Total()),
	}
	if cfg.BudgetMode == "strict" {
		b.remainingEquity = math.Max(0, plan.BudgetEquity)
		b.remainingOptions = math.Max(0, plan.BudgetOptions)
	}

	b.allocate(candidates)
	b.topUpExposure(candidates)

	return domain.AllocationResult{
		Proposals:        b.proposals,
		RemainingEquity:  b.remainingEquity,
		RemainingOptions: b.remainingOptions,
		RemainingTotal:   b.remainingTotal,
		NBullish:         b.nBullish,
		NBearish:         b.nBearish,
	}
}

type builder struct {
	cfg        BuildConfig
	legs       map[string]domain.OptionLeg
	lastPrices map[string]float64
	held       map[string]bool

	proposals []domain.TradeProposal
	opened    map[string]bool // tickers already opened as shares
	nBullish  int
	nBearish  int

	remainingTotal   float64
	remainingEquity  float64
	remainingOptions float64
}

func (b *builder) allocate(candidates []domain.CandidateIdea) {
	for _, idea := range candidates {
		if len(b.proposals) >= b.cfg.MaxNewTrades {
			break
		}

		ticker := strings.ToUpper(strings.TrimSpace(idea.Ticker))
		if ticker == "" || b.held[ticker] {
			continue
		}

		// Hedge instruments open as bullish shares but count bearish
		if HedgeTickers[ticker] {
			if b.hasBearishExposure() {
				continue
			}
			if LeveredInverseEquity[ticker] && b.hasLeveredInverse() {
				continue
			}
			hedge := idea
			hedge.Direction = domain.DirectionBullish
			if b.addShares(ticker, hedge, domain.DirectionBearish, "") {
				continue
			}
		}

		if b.cfg.BudgetMode == "flex" && b.cfg.FlexPrefer == "shares" {
			if idea.Direction == domain.DirectionBullish && b.addShares(ticker, idea, "", "") {
				continue
			}
		}

		// Options first when enabled and the leg matches the view
		if b.cfg.WithOptions {
			if leg, ok := b.legs[ticker]; ok {
				match := (idea.Direction == domain.DirectionBullish && leg.Type == domain.OptionTypeCall) ||
					(idea.Direction == domain.DirectionBearish && leg.Type == domain.OptionTypePut)
				if match && b.addOption(ticker, idea) {
					continue
				}
			}
		}

		// Bullish fallback to shares
		if idea.Direction == domain.DirectionBullish {
			if b.addShares(ticker, idea, "", "") {
				continue
			}
		}

		// Bearish without options: express via an inverse ETF proxy
		if !b.cfg.WithOptions && idea.Direction == domain.DirectionBearish {
			if proxy, ok := InverseProxy[ticker]; ok && !b.held[proxy] {
				proxyIdea := idea
				proxyIdea.Ticker = proxy
				proxyIdea.Direction = domain.DirectionBullish
				b.addShares(proxy, proxyIdea, domain.DirectionBearish, fmt.Sprintf("inverse_proxy_for=%s", ticker))
			}
		}
	}
}

// topUpExposure tries to add one trade on the missing side when the
// pass came out one-sided.
func (b *builder) topUpExposure(candidates []domain.CandidateIdea) {
	if b.nBullish > 0 && b.nBearish > 0 {
		return
	}
	if len(b.proposals) >= b.cfg.MaxNewTrades {
		return
	}

	need := domain.DirectionBullish
	if b.nBearish == 0 {
		need = domain.DirectionBearish
	}

	for _, idea := range candidates {
		if len(b.proposals) >= b.cfg.MaxNewTrades {
			break
		}
		ticker := strings.ToUpper(strings.TrimSpace(idea.Ticker))
		if ticker == "" || b.held[ticker] || idea.Direction != need {
			continue
		}

		if need == domain.DirectionBearish {
			if b.cfg.WithOptions {
				if leg, ok := b.legs[ticker]; ok && leg.Type == domain.OptionTypePut {
					if b.addOption(ticker, idea) {
						return
					}
				}
			}
			if proxy, ok := InverseProxy[ticker]; ok && !b.held[proxy] {
				proxyIdea := idea
				proxyIdea.Ticker = proxy
				proxyIdea.Direction = domain.DirectionBullish
				if b.addShares(proxy, proxyIdea, domain.DirectionBearish, "") {
					return
				}
			}
		} else {
			if b.cfg.WithOptions {
				if leg, ok := b.legs[ticker]; ok && leg.Type == domain.OptionTypeCall {
					if b.addOption(ticker, idea) {
						return
					}
				}
			}
			if b.addShares(ticker, idea, "", "") {
				return
			}
		}
	}
}

func (b *builder) hasBearishExposure() bool {
	for _, p := range b.proposals {
		if p.Exposure == domain.DirectionBearish {
			return true
		}
	}
	return false
}

func (b *builder) hasLeveredInverse() bool {
	for _, p := range b.proposals {
		if p.Kind == domain.ProposalOpenShares && LeveredInverseEquity[p.Ticker] {
			return true
		}
	}
	return false
}

// addOption proposes buying contracts of the attached leg, sized by the
// risk limits against the applicable budget.
func (b *builder) addOption(ticker string, idea domain.CandidateIdea) bool {
	leg, ok := b.legs[ticker]
	if !ok {
		return false
	}

	premium := leg.PremiumUSD
	if premium <= 0 || len(b.proposals) >= b.cfg.MaxNewTrades {
		return false
	}

	var sizingBudget float64
	if b.cfg.BudgetMode == "flex" {
		if premium > b.remainingTotal+epsilon {
			return false
		}
		// Before the minimum trade count is reached, each trade is
		// capped to its share of what remains so later candidates are
		// not starved
		sizingBudget = b.remainingTotal
		if len(b.proposals) < b.cfg.MinNewTrades {
			remainingNeeded := b.cfg.MinNewTrades - len(b.proposals)
			if remainingNeeded < 1 {
				remainingNeeded = 1
			}
			perTradeCap := b.remainingTotal / float64(remainingNeeded)
			if premium > perTradeCap+epsilon {
				return false
			}
			sizingBudget = perTradeCap
		}
	} else {
		if premium > b.cfg.MaxPremiumUSD || premium > b.remainingOptions {
			return false
		}
		sizingBudget = math.Min(b.cfg.MaxPremiumUSD, b.remainingOptions)
	}

	size := risk.SizeByBudget(premium, sizingBudget, b.cfg.Risk)
	if size.MaxContracts <= 0 {
		return false
	}
	cost := premium * float64(size.MaxContracts)

	b.proposals = append(b.proposals, domain.TradeProposal{
		Kind:       domain.ProposalOpenOption,
		Ticker:     ticker,
		Idea:       idea,
		EstCostUSD: cost,
		Exposure:   idea.Direction,
		Leg:        &leg,
		Contracts:  size.MaxContracts,
	})

	if b.cfg.BudgetMode == "flex" {
		b.remainingTotal -= cost
	} else {
		b.remainingOptions -= cost
	}

	if idea.Direction == domain.DirectionBearish {
		b.nBearish++
	} else {
		b.nBullish++
	}
	return true
}

// addShares proposes a whole-share position at the last price. The
// exposure argument overrides the idea's direction for counting (used
// by hedges and inverse proxies); empty means the idea's direction.
func (b *builder) addShares(ticker string, idea domain.CandidateIdea, exposure, notes string) bool {
	lastPx, ok := b.lastPrices[ticker]
	if !ok || lastPx <= 0 {
		return false
	}
	if len(b.proposals) >= b.cfg.MaxNewTrades || b.opened[ticker] {
		return false
	}

	var qty int
	var budget float64
	if b.cfg.BudgetMode == "flex" {
		if b.remainingTotal <= 0 {
			return false
		}
		remainingNeeded := b.cfg.MinNewTrades - len(b.proposals)
		if remainingNeeded < 1 {
			remainingNeeded = 1
		}
		budget = b.remainingTotal / float64(remainingNeeded)
	} else {
		if b.remainingEquity <= 0 {
			return false
		}
		budget = math.Min(b.cfg.SharesBudgetUSD, b.remainingEquity)
	}

	qty = int(budget / lastPx)
	if qty <= 0 {
		return false
	}
	cost := float64(qty) * lastPx

	if b.cfg.BudgetMode == "flex" {
		if cost > b.remainingTotal+epsilon {
			return false
		}
	} else {
		if cost > b.remainingEquity+epsilon {
			return false
		}
	}

	if exposure == "" {
		exposure = idea.Direction
	}

	b.proposals = append(b.proposals, domain.TradeProposal{
		Kind:       domain.ProposalOpenShares,
		Ticker:     ticker,
		Idea:       idea,
		EstCostUSD: cost,
		Exposure:   exposure,
		Qty:        qty,
		Limit:      &lastPx,
		Notes:      notes,
	})
	b.opened[ticker] = true

	if b.cfg.BudgetMode == "flex" {
		b.remainingTotal -= cost
	} else {
		b.remainingEquity -= cost
	}

	if exposure == domain.DirectionBearish {
		b.nBearish++
	} else {
		b.nBullish++
	}
	return true
}
