package datasource

import (
	"context"
	"fmt"
	"sync"
	"time"

	"stock-dashboard/src/data_source/yahoo"
	"stock-dashboard/src/helpers"
	"stock-dashboard/src/interfaces"
	"stock-dashboard/src/logger"
	"stock-dashboard/src/models"

	"golang.org/x/sync/singleflight"
)

// FundamentalsTTL bounds how long quote-endpoint fields are reused.
const FundamentalsTTL = time.Hour

// DefaultFetchTimeout bounds a shared provider fetch. It runs detached from
// any single caller, so it needs its own deadline.
const DefaultFetchTimeout = 30 * time.Second

type cachedFundamentals struct {
	value     models.MFundamentals
	fetchedAt time.Time
}

// MarketDataService puts the bar cache in front of a provider. Concurrent
// requests for the same (symbol, timeframe) share one provider call.
type MarketDataService struct {
	Provider      interfaces.IMarketDataProvider
	Cache         interfaces.IBarCache
	Logger        *logger.Logger
	SearchResults int
	FetchTimeout  time.Duration

	group        singleflight.Group
	fundamentals map[string]cachedFundamentals
	mu           sync.RWMutex
	now          func() time.Time
}

// -----------------------------------------------------------------------------

func NewMarketDataService(provider interfaces.IMarketDataProvider, cache interfaces.IBarCache, searchResults int, log *logger.Logger) *MarketDataService {
	if log == nil {
		log = logger.Discard()
	}
	return &MarketDataService{
		Provider:      provider,
		Cache:         cache,
		Logger:        log,
		SearchResults: searchResults,
		FetchTimeout:  DefaultFetchTimeout,
		fundamentals:  make(map[string]cachedFundamentals),
		now:           time.Now,
	}
}

// -----------------------------------------------------------------------------

// Quote returns the series and fundamentals for a ticker. Cache failures are
// logged and fall through to the provider.
func (m *MarketDataService) Quote(ctx context.Context, ticker string, tf models.Timeframe) (models.MQuote, error) {
	symbol, err := yahoo.NormalizeTicker(ticker)
	if err != nil {
		return models.MQuote{}, err
	}

	if cached, ok := m.fromCache(symbol, tf); ok {
		fund := m.fundamentalsFor(ctx, symbol, models.MFundamentals{})
		return models.MQuote{Series: cached, Fundamentals: fund, FromCache: true}, nil
	}

	type fetched struct {
		series models.MSeries
		meta   models.MFundamentals
	}
	key := fmt.Sprintf("%s|%s", symbol, tf)
	ch := m.group.DoChan(key, func() (interface{}, error) {
		// Callers share this fetch, so one of them going away must not
		// cancel it for the others.
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.FetchTimeout)
		defer cancel()

		series, meta, err := m.Provider.FetchSeries(fetchCtx, symbol, tf)
		if err != nil {
			return nil, err
		}
		if m.Cache != nil {
			if cerr := m.Cache.Put(series); cerr != nil {
				m.Logger.Warning("Cache write failed for %s %s: %v", symbol, tf, cerr)
			}
		}
		return fetched{series: series, meta: meta}, nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return models.MQuote{}, helpers.ProviderError("quote", symbol, ctx.Err())
	}
	if res.Err != nil {
		m.Logger.Info("Quote %s %s failed (%s): %v", symbol, tf, helpers.KindOf(res.Err), res.Err)
		return models.MQuote{}, res.Err
	}
	if res.Shared {
		m.Logger.Debug("Quote %s %s shared an in-flight fetch", symbol, tf)
	}

	f := res.Val.(fetched)
	fund := m.fundamentalsFor(ctx, symbol, f.meta)
	return models.MQuote{Series: f.series, Fundamentals: fund}, nil
}

// -----------------------------------------------------------------------------

func (m *MarketDataService) fromCache(symbol string, tf models.Timeframe) (models.MSeries, bool) {
	if m.Cache == nil {
		return models.MSeries{}, false
	}
	series, ok, err := m.Cache.Get(symbol, tf, tf.CacheTTL())
	if err != nil {
		m.Logger.Warning("Cache read failed for %s %s: %v", symbol, tf, err)
		return models.MSeries{}, false
	}
	if !ok || series.IsEmpty() {
		return models.MSeries{}, false
	}
	return series, true
}

// -----------------------------------------------------------------------------

// fundamentalsFor prefers the quote endpoint and fills gaps from the chart
// metadata. A quote-endpoint failure never fails the view.
func (m *MarketDataService) fundamentalsFor(ctx context.Context, symbol string, meta models.MFundamentals) models.MFundamentals {
	m.mu.RLock()
	c, ok := m.fundamentals[symbol]
	m.mu.RUnlock()
	if ok && m.now().Sub(c.fetchedAt) < FundamentalsTTL {
		return c.value.Merge(meta)
	}

	fund, err := m.Provider.FetchFundamentals(ctx, symbol)
	if err != nil {
		m.Logger.Debug("Fundamentals for %s unavailable, using chart metadata: %v", symbol, err)
		if ok {
			return c.value.Merge(meta)
		}
		return meta
	}

	merged := fund.Merge(meta)
	m.mu.Lock()
	m.fundamentals[symbol] = cachedFundamentals{value: merged, fetchedAt: m.now()}
	m.mu.Unlock()
	return merged
}

// -----------------------------------------------------------------------------

func (m *MarketDataService) Search(ctx context.Context, query string) ([]models.MSearchResult, []models.MNewsItem, error) {
	return m.Provider.Search(ctx, query, m.SearchResults)
}

// -----------------------------------------------------------------------------

// PurgeCache drops cached series and memoised fundamentals older than the age.
func (m *MarketDataService) PurgeCache(olderThan time.Duration) error {
	cutoff := m.now().Add(-olderThan)
	m.mu.Lock()
	for sym, c := range m.fundamentals {
		if c.fetchedAt.Before(cutoff) {
			delete(m.fundamentals, sym)
		}
	}
	m.mu.Unlock()

	if m.Cache == nil {
		return nil
	}
	return m.Cache.Purge(olderThan)
}

// -----------------------------------------------------------------------------

func (m *MarketDataService) CacheType() string {
	if m.Cache == nil {
		return "none"
	}
	return m.Cache.Type()
}
