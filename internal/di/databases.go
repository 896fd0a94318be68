package di

import (
	"fmt"
	"path/filepath"

	"github.com/aristath/optionpilot/internal/database"
)

// Databases holds the engine's two SQLite stores
type Databases struct {
	ProposalsDB *database.DB
	CacheDB     *database.DB
}

// OpenDatabases opens both stores under the data directory and applies
// their schemas.
func OpenDatabases(dataDir string) (*Databases, error) {
	proposalsDB, err := database.New(database.Config{
		Path:    filepath.Join(dataDir, "proposals.db"),
		Profile: database.ProfileStandard,
		Name:    "proposals",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open proposals database: %w", err)
	}

	cacheDB, err := database.New(database.Config{
		Path:    filepath.Join(dataDir, "chaincache.db"),
		Profile: database.ProfileCache,
		Name:    "chaincache",
	})
	if err != nil {
		_ = proposalsDB.Close()
		return nil, fmt.Errorf("failed to open chain cache database: %w", err)
	}

	return &Databases{
		ProposalsDB: proposalsDB,
		CacheDB:     cacheDB,
	}, nil
}

// Close closes both stores, returning the first error encountered
func (d *Databases) Close() error {
	var firstErr error
	if err := d.ProposalsDB.Close(); err != nil {
		firstErr = err
	}
	if err := d.CacheDB.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
