package helpers

import (
	"math/rand"
	"testing"

	"stock-dashboard/src/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProxyRotator_CyclesValidProxies(t *testing.T) {
	pr := NewProxyRotator(
		[]string{"10.0.0.1:8080", "ftp://bad", "", "https://10.0.0.2:3128"},
		"", logger.Discard(), rand.New(rand.NewSource(1)),
	)
	require.True(t, pr.HasProxies())
	assert.Equal(t, "http://10.0.0.1:8080", pr.Current().String())

	assert.True(t, pr.Rotate())
	got, err := pr.Proxy(nil)
	require.NoError(t, err)
	assert.Equal(t, "https://10.0.0.2:3128", got.String())

	assert.True(t, pr.Rotate())
	assert.Equal(t, "http://10.0.0.1:8080", pr.Current().String())
}

func TestProxyRotator_NoProxies(t *testing.T) {
	pr := NewProxyRotator(nil, "", logger.Discard(), rand.New(rand.NewSource(1)))
	assert.False(t, pr.HasProxies())
	assert.Nil(t, pr.Current())
	assert.False(t, pr.Rotate())

	got, err := pr.Proxy(nil)
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestProxyRotator_SingleProxyNeverRotates(t *testing.T) {
	pr := NewProxyRotator([]string{"socks5://1.2.3.4:1080"}, "", logger.Discard(), rand.New(rand.NewSource(1)))
	assert.False(t, pr.Rotate())
	assert.Equal(t, "1.2.3.4:1080", pr.Current().Host)
}

func TestProxyRotator_UserAgent(t *testing.T) {
	pinned := NewProxyRotator(nil, "dashboard-test/1.0", logger.Discard(), rand.New(rand.NewSource(1)))
	for i := 0; i < 5; i++ {
		assert.Equal(t, "dashboard-test/1.0", pinned.UserAgent())
	}

	rotating := NewProxyRotator(nil, "", logger.Discard(), rand.New(rand.NewSource(1)))
	assert.Contains(t, defaultUserAgents, rotating.UserAgent())
}

func TestParseProxy(t *testing.T) {
	tests := []struct {
		raw  string
		want string
		ok   bool
	}{
		{"1.2.3.4:80", "http://1.2.3.4:80", true},
		{"  socks5://1.2.3.4:1080 ", "socks5://1.2.3.4:1080", true},
		{"ftp://1.2.3.4:21", "", false},
		{"http://", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		u, ok := ParseProxy(tt.raw)
		assert.Equal(t, tt.ok, ok, tt.raw)
		if tt.ok {
			assert.Equal(t, tt.want, u.String())
		}
	}
}
