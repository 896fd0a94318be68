package proposals

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/optionpilot/internal/config"
	"github.com/aristath/optionpilot/internal/domain"
	"github.com/aristath/optionpilot/internal/modules/budget"
	"github.com/aristath/optionpilot/internal/modules/positions"
	"github.com/aristath/optionpilot/internal/modules/sleeves"
)

// Service orchestrates one full allocation pass: cash and position
// snapshot, budget planning, cross-sleeve de-duplication, option leg
// attachment and proposal building, with the result persisted.
type Service struct {
	account   domain.AccountSource
	chains    domain.ChainSource
	positions *positions.Service
	repo      *Repository
	registry  sleeves.Registry
	cfg       *config.Config
	log       zerolog.Logger
}

// NewService creates the proposals service.
func NewService(account domain.AccountSource, chains domain.ChainSource, pos *positions.Service, repo *Repository, registry sleeves.Registry, cfg *config.Config, log zerolog.Logger) *Service {
	return &Service{
		account:   account,
		chains:    chains,
		positions: pos,
		repo:      repo,
		registry:  registry,
		cfg:       cfg,
		log:       log.With().Str("module", "proposals").Logger(),
	}
}

// RunRequest carries the inputs of one allocation pass. Mode and
// Allocation override the configured defaults when set.
type RunRequest struct {
	Ideas      []domain.CandidateIdea `json:"ideas"`
	LastPrices map[string]float64     `json:"last_prices"`
	Mode       string                 `json:"mode,omitempty"`
	Allocation string                 `json:"allocation,omitempty"`
}

// RunResult is the outcome of one allocation pass.
type RunResult struct {
	RunID        string                             `json:"run_id"`
	CashUSD      float64                            `json:"cash_usd"`
	Plans        []domain.BudgetPlan                `json:"plans"`
	BudgetStatus string                             `json:"budget_status"`
	Allocations  map[string]domain.AllocationResult `json:"allocations"`
	Dropped      []sleeves.DroppedTrade             `json:"dropped,omitempty"`
}

// Run executes one allocation pass.
func (s *Service) Run(ctx context.Context, req RunRequest) (*RunResult, error) {
	mode := req.Mode
	if mode == "" {
		mode = s.cfg.Budget.Mode
	}
	allocation := req.Allocation
	if allocation == "" {
		allocation = s.cfg.Budget.Allocation
	}

	cash, err := s.account.GetCash(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch cash: %w", err)
	}

	snapshot, err := s.positions.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	held := positions.HeldUnderlyings(snapshot)

	plans := budget.BuildPlans(cash, mode, allocation, s.cfg.Budget.MinNewTrades)
	status := budget.FormatStatus(plans, mode, cash, s.cfg.Budget.MinNewTrades, s.cfg.Budget.MaxNewTrades)

	// Deployable cash, not the plan total: the flex plan carries the
	// pool on both sides, so its total would double the real budget
	deployable := math.Max(0, cash)

	ideas, dropped := s.dedupeIdeas(req.Ideas, deployable)

	legs := AttachOptionLegs(ctx, s.chains, ideas, LegsConfig{
		MaxPremiumUSD:    s.cfg.Budget.MaxPremiumUSD,
		MinDTEDays:       s.cfg.Strategy.MinDTEDays,
		MaxDTEDays:       s.cfg.Strategy.MaxDTEDays,
		TargetAbsDelta:   s.cfg.Strategy.TargetAbsDelta,
		MaxSpreadPct:     s.cfg.Strategy.MaxSpreadPct,
		MinPrice:         s.cfg.Strategy.MinPrice,
		PriceBasis:       s.cfg.Strategy.PriceBasis,
		RequireDelta:     s.cfg.Strategy.RequireDelta,
		BudgetMode:       mode,
		BudgetTotal:      deployable,
		MaxCandidates:    s.cfg.Budget.MaxCandidates,
		Concurrency:      4,
		PerTickerTimeout: 15 * time.Second,
	}, time.Now().UTC(), s.log)

	buildCfg := BuildConfig{
		BudgetMode:      mode,
		FlexPrefer:      "options",
		WithOptions:     true,
		MaxPremiumUSD:   s.cfg.Budget.MaxPremiumUSD,
		SharesBudgetUSD: s.cfg.Budget.SharesBudgetUSD,
		MaxNewTrades:    s.cfg.Budget.MaxNewTrades,
		MinNewTrades:    s.cfg.Budget.MinNewTrades,
		Risk:            s.cfg.Risk,
	}

	allocations := make(map[string]domain.AllocationResult, len(plans))
	for _, plan := range plans {
		allocations[plan.Name] = BuildProposals(ideas, legs, req.LastPrices, plan, held, buildCfg)
	}

	// The first plan is the primary one; runs with comparison plans
	// persist the primary allocation only
	primary := plans[0]
	runID, err := s.repo.SaveRun(ctx, mode, allocation, cash, primary, allocations[primary.Name])
	if err != nil {
		return nil, fmt.Errorf("failed to persist run: %w", err)
	}

	s.log.Info().
		Str("run_id", runID).
		Str("mode", mode).
		Float64("cash", cash).
		Int("proposals", len(allocations[primary.Name].Proposals)).
		Msg("allocation pass complete")

	return &RunResult{
		RunID:        runID,
		CashUSD:      cash,
		Plans:        plans,
		BudgetStatus: status,
		Allocations:  allocations,
		Dropped:      dropped,
	}, nil
}

// dedupeIdeas routes the ranked ideas through the cross-sleeve
// aggregator so redundant exposures are dropped before any chain is
// fetched. Exact costs are only known after leg attachment, so each
// idea enters with the per-position share budget as its planning cost;
// that lets the sleeve risk-budget shares and the total budget bind in
// addition to the exclusivity and factor rules.
func (s *Service) dedupeIdeas(ideas []domain.CandidateIdea, totalBudget float64) ([]domain.CandidateIdea, []sleeves.DroppedTrade) {
	trades := make([]sleeves.CandidateTrade, 0, len(ideas))
	for _, idea := range ideas {
		trades = append(trades, sleeves.CandidateTrade{
			Sleeve:      idea.Sleeve,
			Ticker:      idea.Ticker,
			Direction:   idea.Direction,
			Score:       idea.Score,
			Rationale:   idea.Rationale,
			EstCostUSD:  s.cfg.Budget.SharesBudgetUSD,
			RiskFactors: sleeves.InferRiskFactors(idea.Sleeve, idea.Ticker, idea.Direction),
		})
	}

	agg := sleeves.NewPortfolioAggregator()
	result := agg.Aggregate(trades, totalBudget, s.sleeveBudgets(ideas))

	kept := make([]domain.CandidateIdea, 0, len(result.Selected))
	for _, c := range result.Selected {
		kept = append(kept, domain.CandidateIdea{
			Ticker:    c.Ticker,
			Direction: c.Direction,
			Sleeve:    c.Sleeve,
			Score:     c.Score,
			Rationale: c.Rationale,
		})
	}
	return kept, result.Dropped
}

// sleeveBudgets maps each sleeve label appearing in the ideas to its
// registry risk-budget share. Labels the registry does not know stay
// absent and are constrained by the total budget only.
func (s *Service) sleeveBudgets(ideas []domain.CandidateIdea) map[string]float64 {
	out := make(map[string]float64)
	for _, idea := range ideas {
		if idea.Sleeve == "" {
			continue
		}
		if _, done := out[idea.Sleeve]; done {
			continue
		}
		if cfg, ok := s.registry[strings.ToLower(strings.TrimSpace(idea.Sleeve))]; ok {
			out[idea.Sleeve] = cfg.RiskBudgetPct
		}
	}
	return out
}
