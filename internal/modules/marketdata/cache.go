// Package marketdata provides a snapshot cache in front of the chain
// source so repeated passes within the freshness window do not refetch
// whole option chains.
package marketdata

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/aristath/optionpilot/internal/database"
	"github.com/aristath/optionpilot/internal/domain"
)

// CachingChainSource wraps a chain source with a TTL cache persisted
// in the cache database. Snapshots are stored as msgpack blobs keyed
// by underlying. Cache failures degrade to a live fetch; they never
// fail the request.
type CachingChainSource struct {
	inner domain.ChainSource
	db    *database.DB
	ttl   time.Duration
	log   zerolog.Logger

	now func() time.Time // injectable for tests
}

// NewCachingChainSource creates the cache layer.
func NewCachingChainSource(inner domain.ChainSource, db *database.DB, ttl time.Duration, log zerolog.Logger) *CachingChainSource {
	return &CachingChainSource{
		inner: inner,
		db:    db,
		ttl:   ttl,
		log:   log.With().Str("module", "marketdata").Logger(),
		now:   time.Now,
	}
}

// GetOptionChain returns the cached snapshot when fresh, otherwise
// fetches from the inner source and stores the result.
func (c *CachingChainSource) GetOptionChain(ctx context.Context, underlying string) ([]domain.OptionCandidate, error) {
	if cached, ok := c.lookup(ctx, underlying); ok {
		return cached, nil
	}

	chain, err := c.inner.GetOptionChain(ctx, underlying)
	if err != nil {
		return nil, err
	}

	c.store(ctx, underlying, chain)
	return chain, nil
}

func (c *CachingChainSource) lookup(ctx context.Context, underlying string) ([]domain.OptionCandidate, bool) {
	var fetchedAt string
	var payload []byte
	err := c.db.QueryRowContext(ctx,
		`SELECT fetched_at, payload FROM chain_snapshots WHERE underlying = ?`,
		underlying).Scan(&fetchedAt, &payload)
	if err != nil {
		return nil, false
	}

	ts, err := time.Parse(time.RFC3339, fetchedAt)
	if err != nil || c.now().UTC().Sub(ts) > c.ttl {
		return nil, false
	}

	var chain []domain.OptionCandidate
	if err := msgpack.Unmarshal(payload, &chain); err != nil {
		c.log.Warn().Err(err).Str("underlying", underlying).Msg("corrupt chain snapshot, refetching")
		return nil, false
	}
	return chain, true
}

func (c *CachingChainSource) store(ctx context.Context, underlying string, chain []domain.OptionCandidate) {
	payload, err := msgpack.Marshal(chain)
	if err != nil {
		c.log.Warn().Err(err).Str("underlying", underlying).Msg("failed to encode chain snapshot")
		return
	}

	_, err = c.db.ExecContext(ctx, `
		INSERT INTO chain_snapshots (underlying, fetched_at, payload)
		VALUES (?, ?, ?)
		ON CONFLICT(underlying) DO UPDATE SET
			fetched_at = excluded.fetched_at,
			payload = excluded.payload`,
		underlying, c.now().UTC().Format(time.RFC3339), payload)
	if err != nil {
		c.log.Warn().Err(err).Str("underlying", underlying).Msg("failed to store chain snapshot")
	}
}

// Prune deletes snapshots older than the TTL. Run periodically by the
// scheduler.
func (c *CachingChainSource) Prune(ctx context.Context) (int64, error) {
	cutoff := c.now().UTC().Add(-c.ttl).Format(time.RFC3339)
	res, err := c.db.ExecContext(ctx,
		`DELETE FROM chain_snapshots WHERE fetched_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune chain snapshots: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
