package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/optionpilot/internal/modules/marketdata"
	"github.com/aristath/optionpilot/internal/modules/positions"
)

const jobTimeout = 2 * time.Minute

// StopScanJob fetches the position snapshot and logs any position that
// has breached the stop-loss threshold. It observes and reports; order
// placement stays with the operator.
type StopScanJob struct {
	service     *positions.Service
	stopLossPct float64
	log         zerolog.Logger
}

// NewStopScanJob creates the stop-loss scan job
func NewStopScanJob(service *positions.Service, stopLossPct float64, log zerolog.Logger) *StopScanJob {
	return &StopScanJob{
		service:     service,
		stopLossPct: stopLossPct,
		log:         log.With().Str("job", "stop_scan").Logger(),
	}
}

// Name returns the job name
func (j *StopScanJob) Name() string {
	return "stop_scan"
}

// Run executes one stop-loss scan
func (j *StopScanJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	snapshot, err := j.service.Fetch(ctx)
	if err != nil {
		return err
	}

	flagged := positions.StopCandidates(snapshot, j.stopLossPct)
	if len(flagged) == 0 {
		j.log.Debug().Int("positions", len(snapshot)).Msg("no stop-loss breaches")
		return nil
	}

	for _, p := range flagged {
		ev := j.log.Warn().Str("symbol", p.Symbol)
		if p.UnrealizedPLPct != nil {
			ev = ev.Float64("unrealized_pl_pct", *p.UnrealizedPLPct)
		}
		if p.UnrealizedPL != nil {
			ev = ev.Float64("unrealized_pl", *p.UnrealizedPL)
		}
		ev.Msg("stop-loss breach")
	}

	j.log.Info().
		Int("flagged", len(flagged)).
		Int("positions", len(snapshot)).
		Float64("stop_loss_pct", j.stopLossPct).
		Msg("stop-loss scan complete")

	return nil
}

// CachePruneJob deletes expired chain snapshots from the cache database
type CachePruneJob struct {
	cache *marketdata.CachingChainSource
	log   zerolog.Logger
}

// NewCachePruneJob creates the cache pruning job
func NewCachePruneJob(cache *marketdata.CachingChainSource, log zerolog.Logger) *CachePruneJob {
	return &CachePruneJob{
		cache: cache,
		log:   log.With().Str("job", "cache_prune").Logger(),
	}
}

// Name returns the job name
func (j *CachePruneJob) Name() string {
	return "cache_prune"
}

// Run prunes expired snapshots
func (j *CachePruneJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	pruned, err := j.cache.Prune(ctx)
	if err != nil {
		return err
	}
	if pruned > 0 {
		j.log.Info().Int64("pruned", pruned).Msg("pruned expired chain snapshots")
	}
	return nil
}
