package datasource

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"stock-dashboard/src/helpers"
	"stock-dashboard/src/logger"
	"stock-dashboard/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	seriesCalls int32
	fundCalls   int32
	seriesErr   error
	fundErr     error
	delay       time.Duration
	release     chan struct{}
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) FetchSeries(ctx context.Context, ticker string, tf models.Timeframe) (models.MSeries, models.MFundamentals, error) {
	atomic.AddInt32(&p.seriesCalls, 1)
	if p.delay > 0 {
		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
			return models.MSeries{}, models.MFundamentals{}, helpers.ProviderError("fetch chart", ticker, ctx.Err())
		}
	}
	if p.release != nil {
		select {
		case <-p.release:
		case <-ctx.Done():
			return models.MSeries{}, models.MFundamentals{}, helpers.ProviderError("fetch chart", ticker, ctx.Err())
		}
	}
	if p.seriesErr != nil {
		return models.MSeries{}, models.MFundamentals{}, p.seriesErr
	}
	return models.MSeries{
			Symbol:    ticker,
			Timeframe: tf,
			Bars:      []models.MBar{{Timestamp: 1, Close: 10}, {Timestamp: 2, Close: 11}},
			FetchedAt: time.Now(),
		}, models.MFundamentals{
			LongName: models.Some("Chart Name"),
			Currency: models.Some("INR"),
		}, nil
}

func (p *stubProvider) FetchFundamentals(ctx context.Context, ticker string) (models.MFundamentals, error) {
	atomic.AddInt32(&p.fundCalls, 1)
	if p.fundErr != nil {
		return models.MFundamentals{}, p.fundErr
	}
	return models.MFundamentals{LongName: models.Some("Quote Name"), MarketCap: models.Some(1e9)}, nil
}

func (p *stubProvider) Search(ctx context.Context, query string, maxResults int) ([]models.MSearchResult, []models.MNewsItem, error) {
	return []models.MSearchResult{{Symbol: "AAPL"}}[:min(1, maxResults)], nil, nil
}

type mapCache struct {
	mu      sync.Mutex
	entries map[string]models.MSeries
	getErr  error
	purged  time.Duration
}

func newMapCache() *mapCache { return &mapCache{entries: map[string]models.MSeries{}} }

func (c *mapCache) Initialize() error { return nil }
func (c *mapCache) Type() string      { return "map" }
func (c *mapCache) Close() error      { return nil }

func (c *mapCache) Get(symbol string, tf models.Timeframe, maxAge time.Duration) (models.MSeries, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return models.MSeries{}, false, c.getErr
	}
	s, ok := c.entries[symbol+string(tf)]
	if !ok || time.Since(s.FetchedAt) > maxAge {
		return models.MSeries{}, false, nil
	}
	return s, true, nil
}

func (c *mapCache) Put(series models.MSeries) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[series.Symbol+string(series.Timeframe)] = series
	return nil
}

func (c *mapCache) Purge(olderThan time.Duration) error {
	c.purged = olderThan
	return nil
}

// -----------------------------------------------------------------------------

func TestQuote_CacheHitAvoidsProviderCall(t *testing.T) {
	p := &stubProvider{}
	svc := NewMarketDataService(p, newMapCache(), 8, logger.Discard())

	q1, err := svc.Quote(context.Background(), "reliance.ns", models.Timeframe1Y)
	require.NoError(t, err)
	assert.False(t, q1.FromCache)
	assert.Equal(t, "RELIANCE.NS", q1.Series.Symbol)

	q2, err := svc.Quote(context.Background(), "RELIANCE.NS", models.Timeframe1Y)
	require.NoError(t, err)
	assert.True(t, q2.FromCache)
	assert.Equal(t, int32(1), atomic.LoadInt32(&p.seriesCalls))
	assert.Equal(t, int32(1), atomic.LoadInt32(&p.fundCalls))

	_, err = svc.Quote(context.Background(), "RELIANCE.NS", models.Timeframe1D)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&p.seriesCalls))
}

func TestQuote_MergesFundamentals(t *testing.T) {
	svc := NewMarketDataService(&stubProvider{}, newMapCache(), 8, nil)

	q, err := svc.Quote(context.Background(), "TCS.NS", models.Timeframe1M)
	require.NoError(t, err)
	assert.Equal(t, "Quote Name", q.Fundamentals.Name("TCS.NS"))
	assert.Equal(t, "INR", q.Fundamentals.CurrencyCode())
	assert.Equal(t, 1e9, q.Fundamentals.MarketCap.Or(0))
}

func TestQuote_FundamentalsFailureDegradesToChartMeta(t *testing.T) {
	p := &stubProvider{fundErr: helpers.ProviderError("fetch quote", "AAPL", errors.New("401"))}
	svc := NewMarketDataService(p, newMapCache(), 8, nil)

	q, err := svc.Quote(context.Background(), "AAPL", models.Timeframe1Y)
	require.NoError(t, err)
	assert.Equal(t, "Chart Name", q.Fundamentals.Name("AAPL"))
	assert.False(t, q.Fundamentals.MarketCap.Valid())
}

func TestQuote_PropagatesNoData(t *testing.T) {
	p := &stubProvider{seriesErr: helpers.NoData("fetch chart", "ZZZZINVALID", errors.New("Not Found"))}
	svc := NewMarketDataService(p, newMapCache(), 8, nil)

	_, err := svc.Quote(context.Background(), "ZZZZINVALID", models.Timeframe1Y)
	require.Error(t, err)
	assert.ErrorIs(t, err, helpers.ErrNoData)
}

func TestQuote_InvalidTicker(t *testing.T) {
	p := &stubProvider{}
	svc := NewMarketDataService(p, newMapCache(), 8, nil)

	_, err := svc.Quote(context.Background(), "bad ticker!", models.Timeframe1Y)
	assert.Equal(t, helpers.KindInvalidInput, helpers.KindOf(err))
	assert.Equal(t, int32(0), atomic.LoadInt32(&p.seriesCalls))
}

func TestQuote_CacheFailureFallsThrough(t *testing.T) {
	c := newMapCache()
	c.getErr = errors.New("database is locked")
	p := &stubProvider{}
	svc := NewMarketDataService(p, c, 8, nil)

	q, err := svc.Quote(context.Background(), "NVDA", models.Timeframe1Y)
	require.NoError(t, err)
	assert.False(t, q.FromCache)
	assert.Equal(t, int32(1), atomic.LoadInt32(&p.seriesCalls))
}

func TestQuote_NilCache(t *testing.T) {
	svc := NewMarketDataService(&stubProvider{}, nil, 8, nil)
	_, err := svc.Quote(context.Background(), "TSLA", models.Timeframe1Y)
	require.NoError(t, err)
	assert.Equal(t, "none", svc.CacheType())
	assert.NoError(t, svc.PurgeCache(time.Hour))
}

func TestQuote_ConcurrentRequestsShareFetch(t *testing.T) {
	p := &stubProvider{delay: 50 * time.Millisecond}
	svc := NewMarketDataService(p, nil, 8, nil)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Quote(context.Background(), "AAPL", models.Timeframe1D)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Less(t, atomic.LoadInt32(&p.seriesCalls), int32(5))
}

func TestQuote_CancelledCallerDoesNotFailSharedFetch(t *testing.T) {
	p := &stubProvider{release: make(chan struct{})}
	svc := NewMarketDataService(p, nil, 8, nil)

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := svc.Quote(ctxA, "AAPL", models.Timeframe1D)
		errA <- err
	}()
	require.Eventually(t, func() bool { return atomic.LoadInt32(&p.seriesCalls) == 1 }, time.Second, 5*time.Millisecond)

	type result struct {
		q   models.MQuote
		err error
	}
	resB := make(chan result, 1)
	go func() {
		q, err := svc.Quote(context.Background(), "AAPL", models.Timeframe1D)
		resB <- result{q, err}
	}()

	cancelA()
	err := <-errA
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	close(p.release)
	b := <-resB
	require.NoError(t, b.err)
	assert.Equal(t, "AAPL", b.q.Series.Symbol)
	assert.Equal(t, int32(1), atomic.LoadInt32(&p.seriesCalls))
}

func TestQuote_SharedFetchHasOwnDeadline(t *testing.T) {
	p := &stubProvider{release: make(chan struct{})}
	svc := NewMarketDataService(p, nil, 8, nil)
	svc.FetchTimeout = 20 * time.Millisecond

	_, err := svc.Quote(context.Background(), "AAPL", models.Timeframe1D)
	require.Error(t, err)
	assert.Equal(t, helpers.KindProviderError, helpers.KindOf(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPurgeCache(t *testing.T) {
	c := newMapCache()
	svc := NewMarketDataService(&stubProvider{}, c, 8, nil)
	require.NoError(t, svc.PurgeCache(6*time.Hour))
	assert.Equal(t, 6*time.Hour, c.purged)
	assert.Equal(t, "map", svc.CacheType())
}

func TestSearch_UsesConfiguredLimit(t *testing.T) {
	svc := NewMarketDataService(&stubProvider{}, nil, 8, nil)
	results, _, err := svc.Search(context.Background(), "apple")
	require.NoError(t, err)
	assert.Len(t, results, 1)
}
