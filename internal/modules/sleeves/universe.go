// Package sleeves defines the strategy sleeve registry, the named
// ticker universes each sleeve draws from, and the portfolio-level
// aggregation of candidate trades across sleeves.
package sleeves

import "strings"

// Universe is a named basket of tickers: the equity basket a sleeve
// scores over, and the tradable superset used for data pulls.
type Universe struct {
	BasketEquity []string
	Tradable     []string
}

// DefaultUniverse is the original macro pod: core beta proxies plus
// rates, credit, USD, gold and sector slices.
var DefaultUniverse = Universe{
	BasketEquity: []string{"SPY", "QQQ", "IWM", "XLF", "XLK", "XLE"},
	Tradable: []string{
		"SPY", "QQQ", "IWM", "TLT", "HYG", "LQD", "UUP", "GLD", "XLF", "XLK", "XLE",
	},
}

// StarterUniverse targets small accounts: lower-dollar, liquid,
// optionable, diversified across the key macro exposures.
var StarterUniverse = Universe{
	BasketEquity: []string{
		// Equity beta proxies (lower-priced share classes where possible)
		"SPY", "QQQM", "IWM",
		// Key macro hedges / diversifiers
		"UUP", "GLDM", "SLV", "DBC", "IBIT", "VIXY",
		// Rates / defensives
		"SHY", "IEF", "TLT", "TIP",
		// Credit
		"HYG", "LQD",
		// Simple hedges / distinct equity sleeves
		"SH", "TBT", "SMH", "KRE",
	},
	Tradable: []string{
		"SPY", "QQQM", "IWM", "UUP", "GLDM", "SLV", "DBC", "IBIT", "VIXY",
		"SHY", "IEF", "TLT", "TIP", "HYG", "LQD", "SH", "TBT", "SMH", "KRE",
		// Optional sector tilts
		"XLF", "XLE",
	},
}

// ExtendedUniverse broadens the cross-section: sectors, thematic
// slices, real assets, inverse and leveraged-inverse hedges, and a few
// mega-caps with deep options markets.
var ExtendedUniverse = Universe{
	BasketEquity: dedupe(append(append([]string{}, StarterUniverse.BasketEquity...),
		// Broad styles / equity slices
		"DIA", "IWN", "IWO",
		// Sectors
		"XLV", "XLI", "XLP", "XLY", "XLU", "XLB",
		// Thematic risk-on / risk-off
		"SMH", "ARKK", "KRE", "XBI",
		// Real assets / commodity adjacencies
		"CPER", "USO", "GDX",
		// Rates / convexity / inverse-style hedges
		"TBT", "SH", "PSQ",
		// Leveraged inverse ETFs (higher decay / path-dependence)
		"SDS", "SPXU", "QID", "SQQQ", "RWM", "TWM", "TZA", "DOG", "DXD",
		"TBF", "TMV", "SJB", "SVXY",
		// Inflation-protected / international
		"TIP", "EEM", "EFA",
		// Mega-cap stocks with very liquid options
		"AAPL", "MSFT", "NVDA", "JPM", "XOM",
	)),
	Tradable: dedupe(append(append([]string{}, StarterUniverse.Tradable...),
		"DIA", "IWN", "IWO", "XLV", "XLI", "XLP", "XLY", "XLU", "XLB",
		"SMH", "ARKK", "KRE", "XBI", "CPER", "USO", "GDX", "TBT", "SH", "PSQ",
		"SDS", "SPXU", "QID", "SQQQ", "RWM", "TWM", "TZA", "DOG", "DXD",
		"TBF", "TMV", "SJB", "SVXY", "TIP", "EEM", "EFA",
		"AAPL", "MSFT", "NVDA", "JPM", "XOM",
	)),
}

// HousingUniverse is the housing cycle / mortgage rates / MBS sleeve
// basket.
var HousingUniverse = Universe{
	BasketEquity: []string{
		// Agency MBS proxy ETFs
		"MBB", "VMBS",
		// Housing / builders
		"ITB", "XHB",
		// REITs / real estate beta
		"VNQ", "IYR",
		// Inverse real estate
		"REK", "SRS",
		// Rate anchors / hedges
		"IEF", "TLT", "SHY",
		// Equity beta baseline
		"SPY",
	},
	Tradable: []string{
		"MBB", "VMBS", "ITB", "XHB", "VNQ", "IYR", "REK", "SRS",
		"IEF", "TLT", "SHY", "SPY",
	},
}

// GetUniverse resolves a named universe by prefix: e -> extended,
// h -> housing, d -> default, anything else -> starter.
func GetUniverse(name string) Universe {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		n = "starter"
	}
	switch {
	case strings.HasPrefix(n, "e"):
		return ExtendedUniverse
	case strings.HasPrefix(n, "h"):
		return HousingUniverse
	case strings.HasPrefix(n, "d"):
		return DefaultUniverse
	default:
		return StarterUniverse
	}
}

func dedupe(tickers []string) []string {
	seen := make(map[string]bool, len(tickers))
	out := make([]string, 0, len(tickers))
	for _, t := range tickers {
		if seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
