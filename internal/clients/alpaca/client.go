// Package alpaca provides client functionality for the Alpaca trading
// and market data APIs. The client implements the domain source
// interfaces consumed by the analysis and proposal modules.
package alpaca

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/optionpilot/internal/domain"
)

const (
	liveTradingURL  = "https://api.alpaca.markets"
	paperTradingURL = "https://paper-api.alpaca.markets"
	dataURL         = "https://data.alpaca.markets"

	// Alpaca caps options snapshot pages at 1000 contracts
	snapshotPageLimit = 1000
)

// Config holds the credentials and endpoints for one client
type Config struct {
	APIKey      string
	APISecret   string
	DataKey     string // falls back to APIKey when empty
	DataSecret  string
	Paper       bool
	OptionsFeed string // "indicative" or "opra"

	// Overrides for tests; empty means the public endpoints
	TradingBaseURL string
	DataBaseURL    string
}

// Client for the Alpaca REST APIs
type Client struct {
	httpClient *http.Client
	log        zerolog.Logger
	cfg        Config

	tradingBase string
	dataBase    string
}

// NewClient creates a new Alpaca client. Credentials are not validated
// here; a bad key pair surfaces as a 401 on the first call.
func NewClient(cfg Config, log zerolog.Logger) *Client {
	tradingBase := cfg.TradingBaseURL
	if tradingBase == "" {
		if cfg.Paper {
			tradingBase = paperTradingURL
		} else {
			tradingBase = liveTradingURL
		}
	}
	dataBase := cfg.DataBaseURL
	if dataBase == "" {
		dataBase = dataURL
	}
	if cfg.DataKey == "" {
		cfg.DataKey = cfg.APIKey
		cfg.DataSecret = cfg.APISecret
	}

	return &Client{
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		log:         log.With().Str("client", "alpaca").Logger(),
		cfg:         cfg,
		tradingBase: tradingBase,
		dataBase:    dataBase,
	}
}

// GetPositions fetches all open positions from the trading API
func (c *Client) GetPositions(ctx context.Context) ([]domain.Position, error) {
	body, err := c.get(ctx, c.tradingBase+"/v2/positions", c.cfg.APIKey, c.cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch positions: %w", err)
	}

	var raw []map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode positions response: %w", err)
	}

	positions := transformPositions(raw)
	c.log.Debug().Int("count", len(positions)).Msg("GetPositions: fetched")
	return positions, nil
}

// GetCash fetches the deployable cash balance from the account endpoint
func (c *Client) GetCash(ctx context.Context) (float64, error) {
	body, err := c.get(ctx, c.tradingBase+"/v2/account", c.cfg.APIKey, c.cfg.APISecret)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch account: %w", err)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return 0, fmt.Errorf("failed to decode account response: %w", err)
	}

	cash := toFloat(raw["cash"])
	if cash == nil {
		return 0, fmt.Errorf("account response missing cash balance")
	}
	return *cash, nil
}

// GetOptionChain fetches option snapshots for one underlying from the
// market data API, following pagination until the chain is complete.
// Rows whose symbols do not parse as OCC-style are skipped.
func (c *Client) GetOptionChain(ctx context.Context, underlying string) ([]domain.OptionCandidate, error) {
	var candidates []domain.OptionCandidate
	pageToken := ""

	for {
		u, err := url.Parse(c.dataBase + "/v1beta1/options/snapshots/" + url.PathEscape(underlying))
		if err != nil {
			return nil, fmt.Errorf("failed to build snapshot URL: %w", err)
		}
		q := u.Query()
		q.Set("feed", c.cfg.OptionsFeed)
		q.Set("limit", fmt.Sprintf("%d", snapshotPageLimit))
		if pageToken != "" {
			q.Set("page_token", pageToken)
		}
		u.RawQuery = q.Encode()

		body, err := c.get(ctx, u.String(), c.cfg.DataKey, c.cfg.DataSecret)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch option chain for %s: %w", underlying, err)
		}

		var resp struct {
			Snapshots     map[string]json.RawMessage `json:"snapshots"`
			NextPageToken *string                    `json:"next_page_token"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("failed to decode chain response for %s: %w", underlying, err)
		}

		page, skipped := transformChainSnapshots(underlying, resp.Snapshots)
		if skipped > 0 {
			c.log.Debug().Str("underlying", underlying).Int("skipped", skipped).Msg("GetOptionChain: unparsable rows skipped")
		}
		candidates = append(candidates, page...)

		if resp.NextPageToken == nil || *resp.NextPageToken == "" {
			break
		}
		pageToken = *resp.NextPageToken
	}

	sortCandidates(candidates)
	return candidates, nil
}

// get performs an authenticated GET, returning the body on 2xx
func (c *Client) get(ctx context.Context, rawURL, key, secret string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("APCA-API-KEY-ID", key)
	req.Header.Set("APCA-API-SECRET-KEY", secret)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}
	return body, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
