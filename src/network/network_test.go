package network

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"stock-dashboard/src/helpers"
	"stock-dashboard/src/logger"
	"stock-dashboard/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(retries int) *Fetcher {
	cfg := &models.MConfig{Network: models.MNetworkConfig{RequestTimeout: 5, MaxRetries: retries}}
	nm := NewFetcher(cfg, logger.Discard())
	nm.Backoff = func(int) time.Duration { return time.Millisecond }
	return nm
}

func TestGet_PassesParamsAndReturnsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1y", r.URL.Query().Get("range"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	body, err := newTestManager(0).Get(context.Background(), srv.URL+"/v8/finance/chart/AAPL", map[string]string{"range": "1y"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(body))
}

func TestGet_RetriesServerErrorsThenSucceeds(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte("done"))
	}))
	defer srv.Close()

	body, err := newTestManager(3).Get(context.Background(), srv.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, "done", string(body))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestGet_BoundedRetries(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newTestManager(2).Get(context.Background(), srv.URL, nil)
	require.Error(t, err)
	assert.Equal(t, helpers.KindProviderError, helpers.KindOf(err))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestGet_NotFoundIsNoDataWithoutRetry(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`))
	}))
	defer srv.Close()

	body, err := newTestManager(3).Get(context.Background(), srv.URL, nil)
	require.Error(t, err)
	assert.Equal(t, helpers.KindNoData, helpers.KindOf(err))
	assert.Contains(t, string(body), "Not Found")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGet_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	nm := newTestManager(5)
	nm.Backoff = func(int) time.Duration { return time.Hour }

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := nm.Get(ctx, srv.URL, nil)
	require.Error(t, err)
	assert.Equal(t, helpers.KindProviderError, helpers.KindOf(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestGet_BlockedRequestMovesToNextProxy(t *testing.T) {
	var blocked, served int32
	proxyA := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&blocked, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer proxyA.Close()
	proxyB := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&served, 1)
		assert.Equal(t, "market.test", r.URL.Host)
		w.Write([]byte("via-b"))
	}))
	defer proxyB.Close()

	cfg := &models.MConfig{Network: models.MNetworkConfig{
		Enabled:        true,
		Proxies:        []string{proxyA.URL, proxyB.URL},
		RequestTimeout: 5,
		MaxRetries:     2,
	}}
	f := NewFetcher(cfg, logger.Discard())
	f.Backoff = func(int) time.Duration { return time.Millisecond }

	body, err := f.Get(context.Background(), "http://market.test/v8/finance/chart/AAPL", nil)
	require.NoError(t, err)
	assert.Equal(t, "via-b", string(body))
	assert.Equal(t, int32(1), atomic.LoadInt32(&blocked))
	assert.Equal(t, int32(1), atomic.LoadInt32(&served))
}

func TestQuadraticBackoff(t *testing.T) {
	b := QuadraticBackoff(100 * time.Millisecond)
	assert.Equal(t, 100*time.Millisecond, b(1))
	assert.Equal(t, 400*time.Millisecond, b(2))
	assert.Equal(t, 900*time.Millisecond, b(3))
}
