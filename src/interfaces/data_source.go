package interfaces

import (
	"context"
	"time"

	"stock-dashboard/src/models"
)

// -----------------------------------------------------------------------------
// IMarketDataProvider is the external market-data boundary. Empty results map
// to NoData, transport failures to ProviderError, bad symbols to InvalidInput.
// -----------------------------------------------------------------------------

type IMarketDataProvider interface {

	// Name returns the unique identifier of the provider
	Name() string

	// -----------------------------------------------------------------------------

	// FetchSeries retrieves OHLCV bars for the timeframe. The fundamentals are
	// whatever the chart metadata carries and may be sparse.
	FetchSeries(ctx context.Context, ticker string, tf models.Timeframe) (models.MSeries, models.MFundamentals, error)

	// -----------------------------------------------------------------------------

	// FetchFundamentals retrieves market cap, P/E and naming fields.
	FetchFundamentals(ctx context.Context, ticker string) (models.MFundamentals, error)

	// -----------------------------------------------------------------------------

	// Search runs a free-text company search.
	Search(ctx context.Context, query string, maxResults int) ([]models.MSearchResult, []models.MNewsItem, error)
}

// -----------------------------------------------------------------------------
// IQuoteService is what the web layer consumes: a provider behind a cache.
// -----------------------------------------------------------------------------

type IQuoteService interface {
	Quote(ctx context.Context, ticker string, tf models.Timeframe) (models.MQuote, error)
	Search(ctx context.Context, query string) ([]models.MSearchResult, []models.MNewsItem, error)
	PurgeCache(olderThan time.Duration) error
	CacheType() string
}
