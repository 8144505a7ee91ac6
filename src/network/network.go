package network

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"time"

	"stock-dashboard/src/helpers"
	"stock-dashboard/src/interfaces"
	"stock-dashboard/src/logger"
	"stock-dashboard/src/models"
)

// maxBodyBytes caps provider responses; a 5Y weekly chart is well under this.
const maxBodyBytes = 8 << 20

// Fetcher is the outbound HTTP layer for market-data providers: one shared
// client, a per-request timeout and a bounded retry loop.
type Fetcher struct {
	Config  *models.MConfig
	Proxies interfaces.IProxyRotator
	Logger  *logger.Logger

	// Backoff returns the pause before retry attempt n (n >= 1).
	Backoff func(attempt int) time.Duration

	client *http.Client
}

// -----------------------------------------------------------------------------

func NewFetcher(cfg *models.MConfig, log *logger.Logger) *Fetcher {
	var proxies []string
	if cfg.Network.Enabled {
		proxies = cfg.Network.Proxies
	}
	rotator := helpers.NewProxyRotator(
		proxies, cfg.Network.UserAgent, log.Named("Proxies"),
		rand.New(rand.NewSource(time.Now().UnixNano())),
	)

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if rotator.HasProxies() {
		transport.Proxy = rotator.Proxy
	}

	return &Fetcher{
		Config:  cfg,
		Proxies: rotator,
		Logger:  log,
		Backoff: QuadraticBackoff(500 * time.Millisecond),
		client: &http.Client{
			Transport: transport,
			Timeout:   time.Duration(cfg.Network.RequestTimeout) * time.Second,
		},
	}
}

// QuadraticBackoff waits base, 4*base, 9*base, ...
func QuadraticBackoff(base time.Duration) func(int) time.Duration {
	return func(attempt int) time.Duration {
		return time.Duration(attempt*attempt) * base
	}
}

// -----------------------------------------------------------------------------

// Get performs a GET request with bounded retries. 429 and 403 responses
// switch to the next proxy before retrying. A 404 is returned immediately as
// a no-data error; other failures surface as provider errors once retries
// are exhausted.
func (f *Fetcher) Get(ctx context.Context, rawURL string, params map[string]string) ([]byte, error) {
	target, err := withParams(rawURL, params)
	if err != nil {
		return nil, helpers.InvalidInput("parse url", "", err)
	}

	attempts := f.Config.Network.MaxRetries + 1
	var lastErr error

	for i := 0; i < attempts; i++ {
		if i > 0 {
			select {
			case <-time.After(f.Backoff(i)):
			case <-ctx.Done():
				return nil, helpers.ProviderError("GET", target.Path, ctx.Err())
			}
		}

		body, status, err := f.do(ctx, target.String())
		if err != nil {
			if ctx.Err() != nil {
				return nil, helpers.ProviderError("GET", target.Path, ctx.Err())
			}
			lastErr = err
			f.Logger.Info("GET %s failed (attempt %d/%d): %v", target.Path, i+1, attempts, err)
			continue
		}

		switch {
		case status == http.StatusOK:
			return body, nil
		case status == http.StatusNotFound:
			return body, helpers.NoData("GET", target.Path, fmt.Errorf("status %d", status))
		case status == http.StatusTooManyRequests || status == http.StatusForbidden:
			lastErr = fmt.Errorf("blocked (status %d)", status)
			if f.Proxies.Rotate() {
				f.Logger.Info("GET %s blocked with %d, retrying through next proxy", target.Path, status)
			}
		case status >= 400 && status < 500:
			return nil, helpers.ProviderError("GET", target.Path, fmt.Errorf("bad status: %d", status))
		default:
			lastErr = fmt.Errorf("bad status: %d", status)
			f.Logger.Info("GET %s returned %d", target.Path, status)
		}
	}

	return nil, helpers.ProviderError("GET", target.Path, fmt.Errorf("max retries exceeded: %w", lastErr))
}

// -----------------------------------------------------------------------------

func withParams(rawURL string, params map[string]string) (*url.URL, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u, nil
}

func (f *Fetcher) do(ctx context.Context, target string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("User-Agent", f.Proxies.UserAgent())
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}
