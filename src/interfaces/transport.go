package interfaces

import (
	"context"
	"net/http"
	"net/url"
)

// -----------------------------------------------------------------------------
// INetworkManager fetches provider URLs with timeout and bounded retries.
// -----------------------------------------------------------------------------

type INetworkManager interface {
	// Get returns the body of a 200 response. A 404 maps to NoData, anything
	// else that survives the retries maps to ProviderError.
	Get(ctx context.Context, url string, params map[string]string) ([]byte, error)
}

// -----------------------------------------------------------------------------
// IProxyRotator picks the outbound proxy and User-Agent for provider calls.
// -----------------------------------------------------------------------------

type IProxyRotator interface {
	HasProxies() bool

	// Current is nil when no proxy is configured.
	Current() *url.URL

	// Rotate moves to the next proxy and reports whether it changed.
	Rotate() bool

	// Proxy has the shape of http.Transport.Proxy and always answers with
	// the current proxy, so a rotation applies to the next request.
	Proxy(req *http.Request) (*url.URL, error)

	UserAgent() string
}
