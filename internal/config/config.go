// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir  string // Base directory for all databases (always absolute)
	Port     int
	LogLevel string
	DevMode  bool

	AlpacaAPIKey      string
	AlpacaAPISecret   string
	AlpacaDataKey     string // Falls back to the trading key pair when empty
	AlpacaDataSecret  string
	AlpacaPaper       bool
	AlpacaOptionsFeed string // e.g. "indicative" or "opra"

	Strategy  StrategyConfig
	Risk      RiskConfig
	Budget    BudgetConfig
	Scheduler SchedulerConfig
}

// StrategyConfig holds the option selection constraints. Validated once
// at load; the filter/selector consume it as-is.
type StrategyConfig struct {
	MinDTEDays     int     // Minimum days to expiry (inclusive)
	MaxDTEDays     int     // Maximum days to expiry (inclusive)
	TargetAbsDelta float64 // Selector targets |delta| closest to this
	MaxSpreadPct   float64 // Bid/ask spread cap, normalized by mid (or ask)
	MinPrice       float64 // Price floor at the configured basis
	PriceBasis     string  // "ask" | "mid" | "bid"
	RequireDelta   bool    // Exclude chain rows without a delta
}

// RiskConfig holds portfolio-wide sizing limits.
type RiskConfig struct {
	MaxContracts          int      // Hard cap on contracts per trade
	MaxPremiumPerContract *float64 // Per-share price ceiling; e.g. 5.00 means $500/contract. Nil disables.
}

// BudgetConfig holds budget planning and proposal limits.
type BudgetConfig struct {
	Mode            string  // "strict" | "flex"
	Allocation      string  // "auto" | "equity100" | "50_50" | "70_30" | "both"
	MaxPremiumUSD   float64 // Per-contract premium cap (strict mode)
	SharesBudgetUSD float64 // Per-position share budget (strict mode)
	MinNewTrades    int
	MaxNewTrades    int
	MaxCandidates   int     // Chain scan limit (a floor of 10 is always scanned)
	StopLossPct     float64 // e.g. 0.30 flags positions at -30% or worse
}

// SchedulerConfig holds background job settings.
type SchedulerConfig struct {
	StopScanSpec     string // cron spec for the stop-loss scan
	CachePruneSpec   string // cron spec for chain cache pruning
	ChainCacheTTLMin int    // chain snapshot freshness window, minutes
}

// Load reads configuration from environment variables. A .env file in
// the working directory is honored when present.
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("OPTIONPILOT_DATA_DIR", "")
	if dataDir == "" {
		dataDir = "./data"
	}
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:  absDataDir,
		Port:     getEnvAsInt("PORT", 8011),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		DevMode:  getEnvAsBool("DEV_MODE", false),

		AlpacaAPIKey:      getEnv("ALPACA_API_KEY", ""),
		AlpacaAPISecret:   getEnv("ALPACA_API_SECRET", ""),
		AlpacaDataKey:     getEnv("ALPACA_DATA_KEY", ""),
		AlpacaDataSecret:  getEnv("ALPACA_DATA_SECRET", ""),
		AlpacaPaper:       getEnvAsBool("ALPACA_PAPER", true),
		AlpacaOptionsFeed: getEnv("ALPACA_OPTIONS_FEED", "indicative"),

		Strategy: StrategyConfig{
			MinDTEDays:     getEnvAsInt("STRATEGY_MIN_DTE_DAYS", 30),
			MaxDTEDays:     getEnvAsInt("STRATEGY_MAX_DTE_DAYS", 90),
			TargetAbsDelta: getEnvAsFloat("STRATEGY_TARGET_ABS_DELTA", 0.30),
			MaxSpreadPct:   getEnvAsFloat("STRATEGY_MAX_SPREAD_PCT", 0.30),
			MinPrice:       getEnvAsFloat("STRATEGY_MIN_PRICE", 0.05),
			PriceBasis:     getEnv("STRATEGY_PRICE_BASIS", "ask"),
			RequireDelta:   getEnvAsBool("STRATEGY_REQUIRE_DELTA", true),
		},
		Risk: RiskConfig{
			MaxContracts:          getEnvAsInt("RISK_MAX_CONTRACTS", 20),
			MaxPremiumPerContract: getEnvAsOptionalFloat("RISK_MAX_PREMIUM_PER_CONTRACT"),
		},
		Budget: BudgetConfig{
			Mode:            getEnv("BUDGET_MODE", "strict"),
			Allocation:      getEnv("BUDGET_ALLOCATION", "auto"),
			MaxPremiumUSD:   getEnvAsFloat("BUDGET_MAX_PREMIUM_USD", 100.0),
			SharesBudgetUSD: getEnvAsFloat("BUDGET_SHARES_BUDGET_USD", 100.0),
			MinNewTrades:    getEnvAsInt("BUDGET_MIN_NEW_TRADES", 2),
			MaxNewTrades:    getEnvAsInt("BUDGET_MAX_NEW_TRADES", 3),
			MaxCandidates:   getEnvAsInt("BUDGET_MAX_CANDIDATES", 30),
			StopLossPct:     getEnvAsFloat("STOP_LOSS_PCT", 0.30),
		},
		Scheduler: SchedulerConfig{
			StopScanSpec:     getEnv("SCHED_STOP_SCAN_SPEC", "*/15 14-21 * * 1-5"),
			CachePruneSpec:   getEnv("SCHED_CACHE_PRUNE_SPEC", "0 * * * *"),
			ChainCacheTTLMin: getEnvAsInt("CHAIN_CACHE_TTL_MIN", 10),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Budget.Mode != "strict" && c.Budget.Mode != "flex" {
		return fmt.Errorf("invalid BUDGET_MODE %q (must be strict or flex)", c.Budget.Mode)
	}
	if c.Strategy.MinDTEDays > c.Strategy.MaxDTEDays {
		return fmt.Errorf("STRATEGY_MIN_DTE_DAYS (%d) exceeds STRATEGY_MAX_DTE_DAYS (%d)",
			c.Strategy.MinDTEDays, c.Strategy.MaxDTEDays)
	}
	if c.Strategy.TargetAbsDelta <= 0 || c.Strategy.TargetAbsDelta >= 1 {
		return fmt.Errorf("STRATEGY_TARGET_ABS_DELTA must be in (0, 1), got %v", c.Strategy.TargetAbsDelta)
	}
	switch c.Strategy.PriceBasis {
	case "ask", "bid", "mid":
	default:
		return fmt.Errorf("invalid STRATEGY_PRICE_BASIS %q (must be ask, bid or mid)", c.Strategy.PriceBasis)
	}
	if c.Risk.MaxContracts < 0 {
		return fmt.Errorf("RISK_MAX_CONTRACTS must be >= 0, got %d", c.Risk.MaxContracts)
	}
	if c.Budget.MinNewTrades > c.Budget.MaxNewTrades {
		return fmt.Errorf("BUDGET_MIN_NEW_TRADES (%d) exceeds BUDGET_MAX_NEW_TRADES (%d)",
			c.Budget.MinNewTrades, c.Budget.MaxNewTrades)
	}
	return nil
}

// getEnv retrieves an environment variable, returning fallback when it
// is unset or empty.
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvAsOptionalFloat(key string) *float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return &f
		}
	}
	return nil
}

func getEnvAsBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}
