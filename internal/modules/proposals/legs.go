// Package proposals turns ranked candidate ideas into concrete,
// budget-respecting trade proposals: option legs where a suitable
// contract exists, shares otherwise, inverse ETF proxies for bearish
// views that cannot be expressed with puts.
package proposals

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/aristath/optionpilot/internal/domain"
	"github.com/aristath/optionpilot/internal/modules/options"
)

// minCandidateScan is the floor on how many candidates get a chain
// lookup regardless of the configured limit.
const minCandidateScan = 10

// LegsConfig controls option leg attachment.
type LegsConfig struct {
	MaxPremiumUSD  float64 // per-contract cap (strict mode)
	MinDTEDays     int
	MaxDTEDays     int
	TargetAbsDelta float64
	MaxSpreadPct   float64
	MinPrice       float64 // price floor at the basis; <= 0 means 0.05
	PriceBasis     string  // "ask" | "mid" | "bid"; empty means "ask"
	RequireDelta   bool
	BudgetMode     string  // "strict" | "flex"
	BudgetTotal    float64 // deployable cash; caps premium in flex mode
	MaxCandidates  int

	Concurrency      int           // parallel chain fetches; <= 0 means 4
	PerTickerTimeout time.Duration // per-underlying fetch deadline; <= 0 disables
}

// AttachOptionLegs finds the best affordable contract for each of the
// leading candidates and returns them keyed by ticker. Chains are
// fetched with bounded concurrency; a failure for one underlying only
// loses that leg. The result is identical to a sequential scan in
// candidate order.
func AttachOptionLegs(ctx context.Context, chains domain.ChainSource, candidates []domain.CandidateIdea, cfg LegsConfig, asOf time.Time, log zerolog.Logger) map[string]domain.OptionLeg {
	scan := max(minCandidateScan, cfg.MaxCandidates)
	if scan > len(candidates) {
		scan = len(candidates)
	}

	// In flex mode any contract the pooled budget affords is in play;
	// strict mode caps each contract's premium up front
	premiumCap := cfg.MaxPremiumUSD
	if cfg.BudgetMode == "flex" {
		premiumCap = cfg.BudgetTotal
	}

	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}

	results := make([]*domain.OptionLeg, scan)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i := 0; i < scan; i++ {
		i := i
		idea := candidates[i]
		g.Go(func() error {
			if idea.Ticker == "" {
				return nil
			}
			leg := fetchBestLeg(gctx, chains, idea, cfg, premiumCap, asOf, log)
			results[i] = leg
			return nil
		})
	}
	_ = g.Wait() // workers never return errors; failures degrade to missing legs

	legs := make(map[string]domain.OptionLeg)
	for i, leg := range results {
		if leg != nil {
			legs[candidates[i].Ticker] = *leg
		}
	}
	return legs
}

func fetchBestLeg(ctx context.Context, chains domain.ChainSource, idea domain.CandidateIdea, cfg LegsConfig, premiumCap float64, asOf time.Time, log zerolog.Logger) *domain.OptionLeg {
	if cfg.PerTickerTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.PerTickerTimeout)
		defer cancel()
	}

	want := domain.OptionTypePut
	if idea.Direction == domain.DirectionBullish {
		want = domain.OptionTypeCall
	}

	chain, err := chains.GetOptionChain(ctx, idea.Ticker)
	if err != nil {
		log.Debug().Err(err).Str("ticker", idea.Ticker).Msg("chain fetch failed, skipping leg")
		return nil
	}

	affordable, err := options.AffordableOptions(chain, options.FilterConfig{
		Want:          want,
		MinDTEDays:    cfg.MinDTEDays,
		MaxDTEDays:    cfg.MaxDTEDays,
		MinPrice:      cfg.MinPrice,
		MaxSpreadPct:  cfg.MaxSpreadPct,
		PriceBasis:    cfg.PriceBasis,
		RequireDelta:  cfg.RequireDelta,
		MaxPremiumUSD: premiumCap,
	}, asOf)
	if err != nil {
		log.Debug().Err(err).Str("ticker", idea.Ticker).Msg("chain filter failed, skipping leg")
		return nil
	}

	best := options.PickBestAffordable(affordable, cfg.TargetAbsDelta)
	if best == nil {
		return nil
	}

	return &domain.OptionLeg{
		Symbol:     best.Symbol,
		Type:       best.OptType,
		Price:      best.Price,
		PremiumUSD: best.PremiumUSD,
		Delta:      best.Delta,
	}
}
