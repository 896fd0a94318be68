package proposals

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/optionpilot/internal/config"
	"github.com/aristath/optionpilot/internal/domain"
	"github.com/aristath/optionpilot/internal/modules/positions"
	"github.com/aristath/optionpilot/internal/modules/sleeves"
)

type stubAccountSource struct {
	cash float64
}

func (s *stubAccountSource) GetCash(context.Context) (float64, error) {
	return s.cash, nil
}

type stubPositionSource struct {
	positions []domain.Position
}

func (s *stubPositionSource) GetPositions(context.Context) ([]domain.Position, error) {
	return s.positions, nil
}

func serviceConfig() *config.Config {
	return &config.Config{
		Strategy: config.StrategyConfig{
			MinDTEDays:     14,
			MaxDTEDays:     90,
			TargetAbsDelta: 0.30,
			MaxSpreadPct:   0.30,
			MinPrice:       0.05,
			PriceBasis:     "ask",
			RequireDelta:   true,
		},
		Risk: config.RiskConfig{MaxContracts: 1},
		Budget: config.BudgetConfig{
			Mode:            "flex",
			Allocation:      "auto",
			MaxPremiumUSD:   100,
			SharesBudgetUSD: 50,
			MinNewTrades:    1,
			MaxNewTrades:    3,
			MaxCandidates:   10,
		},
	}
}

func newTestService(t *testing.T, chains domain.ChainSource, cash float64, cfg *config.Config) *Service {
	t.Helper()
	posSvc := positions.NewService(&stubPositionSource{}, zerolog.Nop())
	return NewService(&stubAccountSource{cash: cash}, chains, posSvc, newRepo(t), sleeves.NewRegistry(), cfg, zerolog.Nop())
}

func serviceChainRow(optType domain.OptionType, bid, ask, delta float64) domain.OptionCandidate {
	return domain.OptionCandidate{
		Symbol:     "SPY260320P00100000",
		Underlying: "SPY",
		OptType:    optType,
		Expiry:     time.Now().UTC().AddDate(0, 0, 45),
		Strike:     100,
		Bid:        bid,
		Ask:        ask,
		Delta:      &delta,
	}
}

// In flex mode the premium pre-filter must be capped by deployable
// cash. The exact-delta contract here costs more than cash and would
// win selection under a looser cap, leaving the pass empty; with the
// cash cap the cheaper contract is picked and the proposal stays
// affordable.
func TestServiceRun_FlexPremiumCappedByCash(t *testing.T) {
	source := &fakeChainSource{
		chains: map[string][]domain.OptionCandidate{
			"SPY": {
				serviceChainRow(domain.OptionTypePut, 1.40, 1.50, -0.30),
				serviceChainRow(domain.OptionTypePut, 0.36, 0.40, -0.45),
			},
		},
	}
	svc := newTestService(t, source, 100, serviceConfig())

	result, err := svc.Run(context.Background(), RunRequest{
		Ideas: []domain.CandidateIdea{idea("SPY", domain.DirectionBearish, 0.9)},
		Mode:  "flex",
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.RunID)

	alloc := result.Allocations["flex"]
	require.Len(t, alloc.Proposals, 1)
	p := alloc.Proposals[0]
	assert.Equal(t, domain.ProposalOpenOption, p.Kind)
	require.NotNil(t, p.Leg)
	assert.InDelta(t, 40.0, p.Leg.PremiumUSD, 1e-9)
	assert.LessOrEqual(t, p.EstCostUSD, result.CashUSD)
}

func TestService_DedupeIdeasAppliesSleeveRiskBudgets(t *testing.T) {
	cfg := serviceConfig()
	cfg.Budget.SharesBudgetUSD = 100
	svc := &Service{registry: sleeves.NewRegistry(), cfg: cfg, log: zerolog.Nop()}

	ideas := []domain.CandidateIdea{
		{Ticker: "GLDM", Direction: domain.DirectionBullish, Sleeve: "macro", Score: 0.9},
	}

	// The macro sleeve's 60% share of $150 is $90, below the $100
	// planning cost per idea
	kept, dropped := svc.dedupeIdeas(ideas, 150)
	assert.Empty(t, kept)
	require.Len(t, dropped, 1)
	assert.Equal(t, sleeves.DropSleeveBudget, dropped[0].Reason)

	// At $200 the share is $120 and the idea fits
	kept, dropped = svc.dedupeIdeas(ideas, 200)
	require.Len(t, kept, 1)
	assert.Empty(t, dropped)
}

func TestService_DedupeIdeasUnknownSleeveFacesTotalOnly(t *testing.T) {
	cfg := serviceConfig()
	cfg.Budget.SharesBudgetUSD = 100
	svc := &Service{registry: sleeves.NewRegistry(), cfg: cfg, log: zerolog.Nop()}

	ideas := []domain.CandidateIdea{
		{Ticker: "GLDM", Direction: domain.DirectionBullish, Sleeve: "experimental", Score: 0.9},
	}

	kept, dropped := svc.dedupeIdeas(ideas, 150)
	require.Len(t, kept, 1)
	assert.Empty(t, dropped)

	kept, dropped = svc.dedupeIdeas(ideas, 50)
	assert.Empty(t, kept)
	require.Len(t, dropped, 1)
	assert.Equal(t, sleeves.DropTotalBudget, dropped[0].Reason)
}
