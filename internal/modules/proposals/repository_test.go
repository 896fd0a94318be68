package proposals

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/optionpilot/internal/database"
	"github.com/aristath/optionpilot/internal/domain"
)

func newRepo(t *testing.T) *Repository {
	t.Helper()
	db, err := database.New(database.Config{
		Path: t.TempDir() + "/proposals.db",
		Name: "proposals",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewRepository(db)
}

func TestRepository_SaveAndLoadRun(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	limit := 45.0
	result := domain.AllocationResult{
		Proposals: []domain.TradeProposal{
			{
				Kind:       domain.ProposalOpenOption,
				Ticker:     "SPY",
				Idea:       idea("SPY", domain.DirectionBearish, 0.9),
				EstCostUSD: 80,
				Exposure:   domain.DirectionBearish,
				Leg: &domain.OptionLeg{
					Symbol:     "SPY250321P00400000",
					Type:       domain.OptionTypePut,
					Price:      0.80,
					PremiumUSD: 80,
					Delta:      fptr(-0.31),
				},
				Contracts: 1,
			},
			{
				Kind:       domain.ProposalOpenShares,
				Ticker:     "IWM",
				Idea:       idea("IWM", domain.DirectionBullish, 0.8),
				EstCostUSD: 90,
				Exposure:   domain.DirectionBullish,
				Qty:        2,
				Limit:      &limit,
			},
		},
		NBullish: 1,
		NBearish: 1,
	}

	plan := domain.BudgetPlan{Name: "auto", BudgetEquity: 700, BudgetOptions: 300, Note: "Allocation: 70/30 (auto, cash >= $500)"}
	runID, err := repo.SaveRun(ctx, "strict", "auto", 1000, plan, result)
	require.NoError(t, err)
	require.NotEmpty(t, runID)

	run, err := repo.GetRun(ctx, runID)
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, "strict", run.Mode)
	assert.Equal(t, 1000.0, run.CashUSD)
	assert.Equal(t, 700.0, run.BudgetEquity)
	assert.Equal(t, 1, run.NBullish)
	assert.Equal(t, 1, run.NBearish)

	stored, err := repo.GetProposals(ctx, runID)
	require.NoError(t, err)
	require.Len(t, stored, 2)

	assert.Equal(t, domain.ProposalOpenOption, stored[0].Kind)
	assert.Equal(t, "SPY", stored[0].Ticker)
	require.NotNil(t, stored[0].OptionSymbol)
	assert.Equal(t, "SPY250321P00400000", *stored[0].OptionSymbol)
	require.NotNil(t, stored[0].OptionDelta)
	assert.InDelta(t, -0.31, *stored[0].OptionDelta, 1e-9)

	assert.Equal(t, domain.ProposalOpenShares, stored[1].Kind)
	assert.Equal(t, 2, stored[1].Qty)
	require.NotNil(t, stored[1].LimitPrice)
	assert.Equal(t, 45.0, *stored[1].LimitPrice)
	assert.Nil(t, stored[1].OptionSymbol)
}

func TestRepository_GetRunMissing(t *testing.T) {
	repo := newRepo(t)

	run, err := repo.GetRun(context.Background(), "no-such-run")
	require.NoError(t, err)
	assert.Nil(t, run)
}

func TestRepository_ListRuns(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	plan := domain.BudgetPlan{Name: "flex", BudgetEquity: 500, BudgetOptions: 500}
	for i := 0; i < 3; i++ {
		_, err := repo.SaveRun(ctx, "flex", "auto", 1000, plan, domain.AllocationResult{})
		require.NoError(t, err)
	}

	runs, err := repo.ListRuns(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)

	all, err := repo.ListRuns(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
