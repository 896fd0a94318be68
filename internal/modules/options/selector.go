package options

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/aristath/optionpilot/internal/domain"
)

// PickBestAffordable returns the contract whose |delta| is closest to
// the target. Ties break on narrower spread, then higher open interest,
// then higher volume, then the DTE nearest the affordable set's median,
// and finally symbol order so the result is deterministic. Returns nil
// for an empty set.
func PickBestAffordable(affordable []domain.AffordableOption, targetAbsDelta float64) *domain.AffordableOption {
	if len(affordable) == 0 {
		return nil
	}

	medianDTE := medianDTEDays(affordable)

	best := affordable[0]
	for _, cand := range affordable[1:] {
		if lessAffordable(cand, best, targetAbsDelta, medianDTE) {
			best = cand
		}
	}
	return &best
}

// lessAffordable reports whether a ranks strictly ahead of b.
func lessAffordable(a, b domain.AffordableOption, target, medianDTE float64) bool {
	da, db := deltaDistance(a, target), deltaDistance(b, target)
	if da != db {
		return da < db
	}
	if a.SpreadPct != b.SpreadPct {
		return a.SpreadPct < b.SpreadPct
	}
	oa, ob := floatOrZero(a.OpenInterest), floatOrZero(b.OpenInterest)
	if oa != ob {
		return oa > ob
	}
	va, vb := floatOrZero(a.Volume), floatOrZero(b.Volume)
	if va != vb {
		return va > vb
	}
	ma, mb := math.Abs(float64(a.DTEDays)-medianDTE), math.Abs(float64(b.DTEDays)-medianDTE)
	if ma != mb {
		return ma < mb
	}
	return a.Symbol < b.Symbol
}

// deltaDistance measures how far a contract's |delta| sits from the
// target. Contracts without a delta rank behind everything else.
func deltaDistance(a domain.AffordableOption, target float64) float64 {
	if a.Delta == nil {
		return math.Inf(1)
	}
	return math.Abs(math.Abs(*a.Delta) - target)
}

// medianDTEDays computes the median DTE across the affordable set.
func medianDTEDays(affordable []domain.AffordableOption) float64 {
	dtes := make([]float64, len(affordable))
	for i, a := range affordable {
		dtes[i] = float64(a.DTEDays)
	}
	sort.Float64s(dtes)
	return stat.Quantile(0.5, stat.Empirical, dtes, nil)
}

func floatOrZero(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
