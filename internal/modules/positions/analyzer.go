// Package positions analyzes the current broker position snapshot:
// stop-loss breaches and the set of underlyings already held, which
// the proposal builder uses to avoid doubling up.
package positions

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/rs/zerolog"

	"github.com/aristath/optionpilot/internal/domain"
	"github.com/aristath/optionpilot/internal/occ"
)

// Service provides position analysis on top of a position source
type Service struct {
	source domain.PositionSource
	log    zerolog.Logger
}

// NewService creates a new positions service
func NewService(source domain.PositionSource, log zerolog.Logger) *Service {
	return &Service{
		source: source,
		log:    log.With().Str("module", "positions").Logger(),
	}
}

// Fetch returns the current position snapshot. A source failure is
// terminal for the whole pass; per-record field problems have already
// degraded to nil fields inside the source.
func (s *Service) Fetch(ctx context.Context) ([]domain.Position, error) {
	positions, err := s.source.GetPositions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch positions: %w", err)
	}
	s.log.Debug().Int("count", len(positions)).Msg("fetched positions")
	return positions, nil
}

// StopCandidates returns positions whose unrealized P&L percentage has
// breached the stop-loss threshold. The threshold is interpreted as a
// loss magnitude, so 0.30 and -0.30 both mean "down 30% or worse", and
// the boundary itself counts as a breach. Positions without a P&L
// percentage are never flagged.
func StopCandidates(positions []domain.Position, stopLossPct float64) []domain.Position {
	threshold := -math.Abs(stopLossPct)

	var flagged []domain.Position
	for _, p := range positions {
		if p.UnrealizedPLPct == nil {
			continue
		}
		if *p.UnrealizedPLPct <= threshold {
			flagged = append(flagged, p)
		}
	}
	return flagged
}

// HeldUnderlyings returns the set of symbols considered "held": every
// raw position symbol plus the underlying extracted from each symbol.
// Option positions therefore block both the contract symbol and its
// underlying ticker.
func HeldUnderlyings(positions []domain.Position) map[string]bool {
	held := make(map[string]bool, len(positions)*2)
	for _, p := range positions {
		if p.Symbol == "" {
			continue
		}
		held[p.Symbol] = true
		if und := occ.ExtractUnderlying(p.Symbol); und != "" {
			held[und] = true
		}
	}
	return held
}

// OptionUnderlyings returns the sorted, deduplicated underlyings of the
// option positions in the snapshot. Share positions are ignored.
func OptionUnderlyings(positions []domain.Position) []string {
	seen := make(map[string]bool)
	for _, p := range positions {
		if !occ.IsOptionSymbol(p.Symbol) {
			continue
		}
		if und := occ.ExtractUnderlying(p.Symbol); und != "" {
			seen[und] = true
		}
	}

	out := make([]string, 0, len(seen))
	for und := range seen {
		out = append(out, und)
	}
	sort.Strings(out)
	return out
}
