package sleeves

import (
	"fmt"
	"sort"
	"strings"
)

// Config describes one strategy sleeve. Sleeves are config-only; the
// scoring pipeline is shared and lives elsewhere.
type Config struct {
	Name          string
	Aliases       []string
	RiskBudgetPct float64
	// Universe builds the sleeve's ticker list for a basket name.
	Universe func(basket string) []string
	// FeatureWeights multiplies scoring features by key prefix,
	// letting a sleeve emphasize feature families on the shared
	// matrix. Nil means unweighted.
	FeatureWeights map[string]float64
}

// AllNames returns the canonical name plus aliases, lowercased.
func (c Config) AllNames() []string {
	out := []string{strings.ToLower(c.Name)}
	for _, a := range c.Aliases {
		a = strings.ToLower(strings.TrimSpace(a))
		if a != "" {
			out = append(out, a)
		}
	}
	return out
}

func macroUniverse(basket string) []string {
	return cleanTickers(GetUniverse(basket).BasketEquity)
}

func volUniverse(string) []string {
	// Liquid vol proxies plus a couple of simple hedges used for
	// de-risking
	return []string{"VIXY", "UVXY", "SVXY", "VXX", "VXZ", "SPY", "QQQ", "SH", "PSQ"}
}

func aiBubbleUniverse(string) []string {
	// QQQ/SMH plus a small whitelist of mega-cap/semis, all highly
	// optionable
	return []string{"QQQ", "SMH", "NVDA", "AMD", "MSFT", "GOOGL", "AMZN", "META", "TSLA", "PLTR", "AVGO"}
}

func housingUniverse(string) []string {
	// Sleeve-specific basket; the caller's basket choice is ignored
	return cleanTickers(HousingUniverse.BasketEquity)
}

// Registry maps every sleeve name and alias to its config.
type Registry map[string]Config

// NewRegistry returns the canonical sleeve definitions.
func NewRegistry() Registry {
	sleeves := []Config{
		{
			Name:          "macro",
			Aliases:       []string{"core"},
			RiskBudgetPct: 0.60,
			Universe:      macroUniverse,
			// Macro uses the shared matrix as-is
		},
		{
			Name:          "vol",
			Aliases:       []string{"volatility"},
			RiskBudgetPct: 0.25,
			Universe:      volUniverse,
			FeatureWeights: map[string]float64{
				"vol_":               2.0,
				"vol_pressure_score": 3.0,
				"rates_":             1.25,
				"usd_":               0.75,
				"funding_":           1.0,
			},
		},
		{
			Name:          "ai-bubble",
			Aliases:       []string{"ai_bubble", "tech_duration"},
			RiskBudgetPct: 0.15,
			Universe:      aiBubbleUniverse,
			FeatureWeights: map[string]float64{
				"rates_":                 2.0,
				"macro_disconnect_score": 1.5,
				"usd_":                   0.8,
				"vol_":                   1.0,
			},
		},
		{
			Name:          "housing",
			Aliases:       []string{"mbs", "mortgage"},
			RiskBudgetPct: 0.20,
			Universe:      housingUniverse,
			FeatureWeights: map[string]float64{
				"housing_": 3.0,
				"rates_":   1.5,
				"funding_": 1.0,
				"usd_":     0.5,
			},
		},
	}

	reg := make(Registry)
	for _, s := range sleeves {
		for _, name := range s.AllNames() {
			reg[name] = s
		}
	}
	return reg
}

// Resolve maps sleeve names (or aliases, case-insensitive) to configs.
// Blank entries are skipped, duplicates collapse to the first mention,
// and an empty list defaults to the macro sleeve. An unknown name is an
// error listing the known keys.
func (r Registry) Resolve(names []string) ([]Config, error) {
	if len(names) == 0 {
		return []Config{r["macro"]}, nil
	}

	var out []Config
	seen := make(map[string]bool)
	for _, n := range names {
		key := strings.ToLower(strings.TrimSpace(n))
		if key == "" {
			continue
		}
		cfg, ok := r[key]
		if !ok {
			return nil, fmt.Errorf("unknown sleeve %q (known: %s)", n, strings.Join(r.knownNames(), ", "))
		}
		if seen[cfg.Name] {
			continue
		}
		seen[cfg.Name] = true
		out = append(out, cfg)
	}
	return out, nil
}

func (r Registry) knownNames() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ApplyFeatureWeights multiplies feature values by the sleeve's prefix
// weights, returning a new map. The longest matching prefix wins, so an
// exact key like "vol_pressure_score" beats the broader "vol_" family.
// Nil or empty weights return the input unchanged.
func ApplyFeatureWeights(features map[string]float64, weights map[string]float64) map[string]float64 {
	if len(features) == 0 || len(weights) == 0 {
		return features
	}

	out := make(map[string]float64, len(features))
	for key, val := range features {
		mul := 1.0
		bestLen := -1
		for prefix, w := range weights {
			if (strings.HasPrefix(key, prefix) || key == prefix) && len(prefix) > bestLen {
				mul = w
				bestLen = len(prefix)
			}
		}
		out[key] = val * mul
	}
	return out
}

func cleanTickers(tickers []string) []string {
	out := make([]string, 0, len(tickers))
	for _, t := range tickers {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
