// Package di wires the engine's services together. Construction order
// is databases, broker client, cache layer, then the domain services
// that consume them.
package di

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/optionpilot/internal/clients/alpaca"
	"github.com/aristath/optionpilot/internal/config"
	"github.com/aristath/optionpilot/internal/modules/marketdata"
	"github.com/aristath/optionpilot/internal/modules/positions"
	"github.com/aristath/optionpilot/internal/modules/proposals"
	"github.com/aristath/optionpilot/internal/modules/sleeves"
)

// Container holds all constructed services
type Container struct {
	Databases *Databases

	AlpacaClient *alpaca.Client
	ChainCache   *marketdata.CachingChainSource

	SleeveRegistry   sleeves.Registry
	PositionsService *positions.Service
	ProposalsRepo    *proposals.Repository
	ProposalsService *proposals.Service
}

// NewContainer builds the full service graph
func NewContainer(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	dbs, err := OpenDatabases(cfg.DataDir)
	if err != nil {
		return nil, err
	}

	client := alpaca.NewClient(alpaca.Config{
		APIKey:      cfg.AlpacaAPIKey,
		APISecret:   cfg.AlpacaAPISecret,
		DataKey:     cfg.AlpacaDataKey,
		DataSecret:  cfg.AlpacaDataSecret,
		Paper:       cfg.AlpacaPaper,
		OptionsFeed: cfg.AlpacaOptionsFeed,
	}, log)

	chainCache := marketdata.NewCachingChainSource(
		client,
		dbs.CacheDB,
		time.Duration(cfg.Scheduler.ChainCacheTTLMin)*time.Minute,
		log,
	)

	registry := sleeves.NewRegistry()
	positionsService := positions.NewService(client, log)
	proposalsRepo := proposals.NewRepository(dbs.ProposalsDB)
	proposalsService := proposals.NewService(client, chainCache, positionsService, proposalsRepo, registry, cfg, log)

	return &Container{
		Databases:        dbs,
		AlpacaClient:     client,
		ChainCache:       chainCache,
		SleeveRegistry:   registry,
		PositionsService: positionsService,
		ProposalsRepo:    proposalsRepo,
		ProposalsService: proposalsService,
	}, nil
}

// Close releases container resources
func (c *Container) Close() error {
	return c.Databases.Close()
}
