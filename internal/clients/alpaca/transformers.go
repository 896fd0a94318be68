package alpaca

import (
	"encoding/json"
	"sort"
	"strconv"

	"github.com/aristath/optionpilot/internal/domain"
	"github.com/aristath/optionpilot/internal/occ"
)

// transformPositions converts raw position records to domain positions.
// Field-level problems degrade to nil values; a record is only dropped
// when it has no symbol at all.
func transformPositions(raw []map[string]interface{}) []domain.Position {
	positions := make([]domain.Position, 0, len(raw))
	for _, rec := range raw {
		symbol := getString(rec, "symbol")
		if symbol == "" {
			continue
		}

		positions = append(positions, domain.Position{
			Symbol:          symbol,
			Qty:             toFloat(rec["qty"]),
			AvgEntryPrice:   toFloat(rec["avg_entry_price"]),
			CurrentPrice:    toFloat(rec["current_price"]),
			UnrealizedPL:    toFloat(rec["unrealized_pl"]),
			UnrealizedPLPct: toFloat(rec["unrealized_plpc"]),
		})
	}
	return positions
}

// optionSnapshot is the subset of an Alpaca option snapshot we consume
type optionSnapshot struct {
	LatestQuote *struct {
		BidPrice float64 `json:"bp"`
		AskPrice float64 `json:"ap"`
	} `json:"latestQuote"`
	Greeks *struct {
		Delta *float64 `json:"delta"`
	} `json:"greeks"`
	OpenInterest *float64 `json:"open_interest"`
	DailyBar     *struct {
		Volume *float64 `json:"v"`
	} `json:"dailyBar"`
}

// transformChainSnapshots converts the snapshot map for one underlying
// into chain rows. Returns the rows and the count of skipped entries
// (symbols that do not parse as OCC-style, or rows without a quote).
func transformChainSnapshots(underlying string, snapshots map[string]json.RawMessage) ([]domain.OptionCandidate, int) {
	candidates := make([]domain.OptionCandidate, 0, len(snapshots))
	skipped := 0

	for symbol, rawSnap := range snapshots {
		expiry, optType, strike, err := occ.ParseOptionSymbol(symbol, underlying)
		if err != nil {
			skipped++
			continue
		}

		var snap optionSnapshot
		if err := json.Unmarshal(rawSnap, &snap); err != nil || snap.LatestQuote == nil {
			skipped++
			continue
		}

		candidate := domain.OptionCandidate{
			Symbol:       symbol,
			Underlying:   underlying,
			OptType:      optType,
			Expiry:       expiry,
			Strike:       strike,
			Bid:          snap.LatestQuote.BidPrice,
			Ask:          snap.LatestQuote.AskPrice,
			OpenInterest: snap.OpenInterest,
		}
		if snap.Greeks != nil {
			candidate.Delta = snap.Greeks.Delta
		}
		if snap.DailyBar != nil {
			candidate.Volume = snap.DailyBar.Volume
		}

		candidates = append(candidates, candidate)
	}

	return candidates, skipped
}

// sortCandidates orders a chain by symbol so callers see a stable
// ordering regardless of API pagination and map iteration.
func sortCandidates(candidates []domain.OptionCandidate) {
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Symbol < candidates[j].Symbol
	})
}

// getString extracts a string field, returning "" when missing or of
// another type.
func getString(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

// toFloat converts a JSON value to a float pointer. Alpaca encodes most
// monetary fields as strings; numbers and numeric strings both parse,
// anything else yields nil.
func toFloat(v interface{}) *float64 {
	switch val := v.(type) {
	case float64:
		return &val
	case string:
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return &f
		}
	case json.Number:
		if f, err := val.Float64(); err == nil {
			return &f
		}
	}
	return nil
}
