package interfaces

import (
	"time"

	"stock-dashboard/src/models"
)

// -----------------------------------------------------------------------------
// IBarCache stores recently fetched series. It is an optimisation only; the
// contents never outlive the process in the default configuration.
// -----------------------------------------------------------------------------

type IBarCache interface {

	// Initialize sets up the cache schema and tables.
	Initialize() error

	// -----------------------------------------------------------------------------

	// Get returns the cached series if it was stored within maxAge.
	// The bool is false on a miss.
	Get(symbol string, tf models.Timeframe, maxAge time.Duration) (models.MSeries, bool, error)

	// -----------------------------------------------------------------------------

	// Put replaces the cached series for (symbol, timeframe).
	Put(series models.MSeries) error

	// -----------------------------------------------------------------------------

	// Purge removes entries older than the given age.
	Purge(olderThan time.Duration) error

	// -----------------------------------------------------------------------------

	// Type names the backend for status reporting.
	Type() string

	// -----------------------------------------------------------------------------

	// Close the database connection
	Close() error
}
