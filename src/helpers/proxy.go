package helpers

import (
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"stock-dashboard/src/logger"
)

var defaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:125.0) Gecko/20100101 Firefox/125.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
}

// -----------------------------------------------------------------------------
// ProxyRotator
// -----------------------------------------------------------------------------

// ProxyRotator cycles through the configured outbound proxies and hands out
// User-Agent headers. Safe for concurrent use.
type ProxyRotator struct {
	mu         sync.Mutex
	proxies    []*url.URL
	index      int
	userAgents []string
	rnd        *rand.Rand
	logger     *logger.Logger
}

// NewProxyRotator parses proxies up front and skips the malformed ones. A
// non-empty userAgent pins the header instead of rotating.
func NewProxyRotator(proxies []string, userAgent string, log *logger.Logger, rnd *rand.Rand) *ProxyRotator {
	pr := &ProxyRotator{
		userAgents: defaultUserAgents,
		rnd:        rnd,
		logger:     log,
	}
	if userAgent != "" {
		pr.userAgents = []string{userAgent}
	}
	for _, raw := range proxies {
		u, ok := ParseProxy(raw)
		if !ok {
			log.Warning("Ignoring malformed proxy %q", raw)
			continue
		}
		pr.proxies = append(pr.proxies, u)
	}
	return pr
}

func (pr *ProxyRotator) HasProxies() bool {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	return len(pr.proxies) > 0
}

func (pr *ProxyRotator) Current() *url.URL {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	if len(pr.proxies) == 0 {
		return nil
	}
	return pr.proxies[pr.index]
}

func (pr *ProxyRotator) Rotate() bool {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	if len(pr.proxies) < 2 {
		return false
	}
	pr.index = (pr.index + 1) % len(pr.proxies)
	pr.logger.Info("Switched outbound proxy to %s", pr.proxies[pr.index].Host)
	return true
}

func (pr *ProxyRotator) Proxy(*http.Request) (*url.URL, error) {
	return pr.Current(), nil
}

func (pr *ProxyRotator) UserAgent() string {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	if len(pr.userAgents) == 1 {
		return pr.userAgents[0]
	}
	return pr.userAgents[pr.rnd.Intn(len(pr.userAgents))]
}

// -----------------------------------------------------------------------------

// ParseProxy accepts host:port or a full http, https or socks5 URL.
func ParseProxy(raw string) (*url.URL, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, false
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return nil, false
	}
	switch u.Scheme {
	case "http", "https", "socks5":
		return u, true
	}
	return nil, false
}
