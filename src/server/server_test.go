package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"stock-dashboard/src/config"
	"stock-dashboard/src/helpers"
	"stock-dashboard/src/models"
	"stock-dashboard/src/session"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPassword = "letmein"

// stubQuotes serves canned series per symbol. Symbols in errs fail with the
// given error.
type stubQuotes struct {
	mu    sync.Mutex
	errs  map[string]error
	calls int
}

func (q *stubQuotes) Quote(ctx context.Context, ticker string, tf models.Timeframe) (models.MQuote, error) {
	q.mu.Lock()
	q.calls++
	err := q.errs[ticker]
	q.mu.Unlock()
	if err != nil {
		return models.MQuote{}, err
	}
	bars := make([]models.MBar, 60)
	for i := range bars {
		c := 2400 + float64(i)
		bars[i] = models.MBar{Timestamp: int64(1700000000 + i*86400), Open: c, High: c + 1, Low: c - 1, Close: c, Volume: 1000}
	}
	return models.MQuote{
		Series: models.MSeries{
			Symbol:        ticker,
			Timeframe:     tf,
			Bars:          bars,
			PreviousClose: models.Some(2400.0),
			FetchedAt:     time.Now(),
		},
		Fundamentals: models.MFundamentals{
			LongName:  models.Some("Reliance Industries Limited"),
			Currency:  models.Some("INR"),
			MarketCap: models.Some(1.95e13),
		},
	}, nil
}

func (q *stubQuotes) Search(ctx context.Context, query string) ([]models.MSearchResult, []models.MNewsItem, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil, helpers.InvalidInput("search", query, nil)
	}
	return []models.MSearchResult{{Symbol: "RELIANCE.NS", Display: "RELIANCE.NS - Reliance Industries", Exchange: "NSI"}},
		[]models.MNewsItem{{Title: "Reliance results", Publisher: "Wire", Link: "https://example.com/r"}}, nil
}

func (q *stubQuotes) PurgeCache(time.Duration) error { return nil }
func (q *stubQuotes) CacheType() string              { return "stub" }

// -----------------------------------------------------------------------------

func newTestServer(t *testing.T) (*DashboardServer, *stubQuotes) {
	t.Helper()
	cfg := config.Default()
	cfg.Auth.Password = testPassword
	cfg.LogLevel = "ERROR"

	quotes := &stubQuotes{errs: map[string]error{
		"ZZZZINVALID": helpers.NoData("chart", "ZZZZINVALID", nil),
		"DOWN.NS":     helpers.ProviderError("chart", "DOWN.NS", errors.New("HTTP 500")),
	}}
	defaults := session.NewState(cfg.Dashboard.DefaultTicker, models.DefaultTimeframe, cfg.Watchlist())
	srv, err := NewDashboardServer(cfg, Deps{
		Market:   quotes,
		Sessions: session.NewStore(time.Hour, defaults, nil),
	}, nil)
	require.NoError(t, err)
	return srv, quotes
}

// login posts the password and returns the authenticated session cookie.
func login(t *testing.T, srv *DashboardServer, password string) (*httptest.ResponseRecorder, *http.Cookie) {
	t.Helper()
	form := url.Values{"password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == srv.Config.Auth.CookieName {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	return rec, cookie
}

func get(srv *DashboardServer, path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func postForm(srv *DashboardServer, path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

// -----------------------------------------------------------------------------

func TestAuth_UnauthenticatedRedirectsOrRejects(t *testing.T) {
	srv, quotes := newTestServer(t)

	rec := get(srv, "/stock", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	rec = get(srv, "/api/quote/AAPL", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = get(srv, "/api/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = get(srv, "/login", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="password"`)

	assert.Zero(t, quotes.calls)
}

func TestAuth_WrongPasswordIsDenied(t *testing.T) {
	srv, quotes := newTestServer(t)

	rec := postForm(srv, "/login", url.Values{"password": {"guess"}}, nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login?error=denied", rec.Header().Get("Location"))
	assert.Empty(t, rec.Result().Cookies())
	assert.Zero(t, srv.Sessions.Count())

	page := get(srv, "/login?error=denied", nil)
	assert.Contains(t, page.Body.String(), "Access denied")

	rec = get(srv, "/stock", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
	assert.Zero(t, quotes.calls)
}

func TestSessions_AnonymousTrafficStoresNothing(t *testing.T) {
	srv, _ := newTestServer(t)

	for i := 0; i < 200; i++ {
		rec := get(srv, "/api/health", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Result().Cookies())
	}
	get(srv, "/login", nil)
	get(srv, "/stock", nil)
	get(srv, "/api/quote/AAPL", nil)
	get(srv, "/logout", nil)
	assert.Zero(t, srv.Sessions.Count())

	_, cookie := login(t, srv, testPassword)
	assert.Equal(t, 1, srv.Sessions.Count())

	// a stale cookie is treated as anonymous too
	get(srv, "/api/health", &http.Cookie{Name: cookie.Name, Value: "expired"})
	assert.Equal(t, 1, srv.Sessions.Count())
}

func TestAuth_LoginReplacesExistingSession(t *testing.T) {
	srv, _ := newTestServer(t)
	_, first := login(t, srv, testPassword)

	rec := postForm(srv, "/login", url.Values{"password": {testPassword}}, first)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, 1, srv.Sessions.Count())
	_, ok := srv.Sessions.Get(first.Value)
	assert.False(t, ok, "old session id must not survive login")
}

func TestAuth_LoginThenLogout(t *testing.T) {
	srv, _ := newTestServer(t)

	rec, cookie := login(t, srv, testPassword)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/stock", rec.Header().Get("Location"))

	assert.Equal(t, http.StatusOK, get(srv, "/stock", cookie).Code)

	rec = get(srv, "/logout", cookie)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, http.StatusSeeOther, get(srv, "/stock", cookie).Code)
}

// -----------------------------------------------------------------------------

func TestStockPage_RendersQuote(t *testing.T) {
	srv, _ := newTestServer(t)
	_, cookie := login(t, srv, testPassword)

	rec := get(srv, "/stock?ticker=reliance.ns&tf=1y", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Reliance Industries Limited")
	assert.Contains(t, body, "RELIANCE.NS")
	assert.Contains(t, body, "<svg")
	assert.Contains(t, body, "2,459.00")
	assert.Contains(t, body, "19,500.00B")
	assert.Contains(t, body, "#16a34a")

	st, ok := srv.Sessions.Get(cookie.Value)
	require.True(t, ok)
	assert.Equal(t, "RELIANCE.NS", st.Ticker)
	assert.Equal(t, models.Timeframe1Y, st.Timeframe)
	assert.Equal(t, session.ScreenStock, st.Screen)
}

func TestStockPage_NoDataShowsWarning(t *testing.T) {
	srv, _ := newTestServer(t)
	_, cookie := login(t, srv, testPassword)

	rec := get(srv, "/stock?ticker=ZZZZINVALID", cookie)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Unable to load data for ZZZZINVALID")
	assert.NotContains(t, rec.Body.String(), "<svg")
}

func TestStockPage_RejectedTickerIsNotRemembered(t *testing.T) {
	srv, quotes := newTestServer(t)
	_, cookie := login(t, srv, testPassword)

	rec := get(srv, "/stock?ticker=%25%25%25", cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, quotes.calls)

	rec = get(srv, "/stock", cookie)
	assert.Equal(t, http.StatusOK, rec.Code)
	st, _ := srv.Sessions.Get(cookie.Value)
	assert.Equal(t, srv.Config.Dashboard.DefaultTicker, st.Ticker)
}

func TestStockPage_NoDataTickerIsNotRemembered(t *testing.T) {
	srv, _ := newTestServer(t)
	_, cookie := login(t, srv, testPassword)

	require.Equal(t, http.StatusOK, get(srv, "/stock?ticker=AAPL", cookie).Code)
	get(srv, "/stock?ticker=ZZZZINVALID", cookie)

	st, _ := srv.Sessions.Get(cookie.Value)
	assert.Equal(t, "AAPL", st.Ticker)
}

func TestStockPage_ProviderFailureHidesDetail(t *testing.T) {
	srv, _ := newTestServer(t)
	_, cookie := login(t, srv, testPassword)

	rec := get(srv, "/stock?ticker=DOWN.NS", cookie)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "currently unavailable")
	assert.NotContains(t, rec.Body.String(), "HTTP 500")
}

func TestStockPage_BadTimeframe(t *testing.T) {
	srv, _ := newTestServer(t)
	_, cookie := login(t, srv, testPassword)

	rec := get(srv, "/stock?ticker=AAPL&tf=7Q", cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// -----------------------------------------------------------------------------

func TestAPIQuote_StatusMapping(t *testing.T) {
	srv, _ := newTestServer(t)
	_, cookie := login(t, srv, testPassword)

	rec := get(srv, "/api/quote/RELIANCE.NS?tf=1M", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Indicators models.MIndicatorSet `json:"indicators"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 60, body.Indicators.DataPoints)
	assert.Equal(t, models.Timeframe1M, body.Indicators.Timeframe)

	assert.Equal(t, http.StatusNotFound, get(srv, "/api/quote/ZZZZINVALID", cookie).Code)
	assert.Equal(t, http.StatusServiceUnavailable, get(srv, "/api/quote/DOWN.NS", cookie).Code)
	assert.Equal(t, http.StatusBadRequest, get(srv, "/api/quote/AAPL?tf=2W", cookie).Code)
}

func TestAPISearch(t *testing.T) {
	srv, _ := newTestServer(t)
	_, cookie := login(t, srv, testPassword)

	rec := get(srv, "/api/search?q=reliance", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "RELIANCE.NS - Reliance Industries")

	assert.Equal(t, http.StatusBadRequest, get(srv, "/api/search?q=", cookie).Code)
}

func TestAPISIP(t *testing.T) {
	srv, _ := newTestServer(t)
	_, cookie := login(t, srv, testPassword)

	rec := get(srv, "/api/sip?monthly=1000&rate=12&years=1", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	var proj models.MSIPProjection
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &proj))
	assert.InDelta(t, 12809.33, proj.FutureValue, 0.001)

	assert.Equal(t, http.StatusBadRequest, get(srv, "/api/sip?monthly=1000&years=0", cookie).Code)
	assert.Equal(t, http.StatusBadRequest, get(srv, "/api/sip?monthly=abc", cookie).Code)
}

func TestAPITicks(t *testing.T) {
	srv, _ := newTestServer(t)
	_, cookie := login(t, srv, testPassword)

	assert.Equal(t, http.StatusNotFound, get(srv, "/api/ticks/AAPL", cookie).Code)

	srv.Ticks.AddTick(models.MTick{Symbol: "AAPL", Price: 190, Timestamp: 1})
	srv.Ticks.AddTick(models.MTick{Symbol: "AAPL", Price: 191, Timestamp: 2})
	rec := get(srv, "/api/ticks/aapl", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Ticks []models.MTick `json:"ticks"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Ticks, 2)
	assert.Equal(t, 191.0, body.Ticks[1].Price)

	rec = get(srv, "/api/ticks/AAPL?limit=1", cookie)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Ticks, 1)
	assert.Equal(t, 191.0, body.Ticks[0].Price)

	assert.Equal(t, http.StatusBadRequest, get(srv, "/api/ticks/AAPL?limit=-1", cookie).Code)
}

func TestAPIConfig(t *testing.T) {
	srv, _ := newTestServer(t)
	_, cookie := login(t, srv, testPassword)

	rec := get(srv, "/api/config", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"watchlist":["RELIANCE.NS","AAPL","TSLA","TCS.NS","NVDA","ZOMATO.NS"]`)
	assert.Contains(t, rec.Body.String(), `"5Y"`)
}

// -----------------------------------------------------------------------------

func TestWatchlist_AddRemove(t *testing.T) {
	srv, _ := newTestServer(t)
	_, cookie := login(t, srv, testPassword)

	rec := postForm(srv, "/watchlist/add", url.Values{"ticker": {"infy.ns"}, "next": {"https://evil.example/"}}, cookie)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/watchlist", rec.Header().Get("Location"))
	st, _ := srv.Sessions.Get(cookie.Value)
	assert.True(t, st.InWatchlist("INFY.NS"))

	page := get(srv, "/watchlist", cookie)
	require.Equal(t, http.StatusOK, page.Code)
	assert.Contains(t, page.Body.String(), `data-symbol="INFY.NS"`)

	rec = postForm(srv, "/watchlist/remove", url.Values{"ticker": {"INFY.NS"}, "next": {"/stock?ticker=AAPL"}}, cookie)
	assert.Equal(t, "/stock?ticker=AAPL", rec.Header().Get("Location"))
	st, _ = srv.Sessions.Get(cookie.Value)
	assert.False(t, st.InWatchlist("INFY.NS"))
}

func TestWatchlist_RejectsMalformedSymbol(t *testing.T) {
	srv, _ := newTestServer(t)
	_, cookie := login(t, srv, testPassword)
	before, _ := srv.Sessions.Get(cookie.Value)

	for _, bad := range []string{"%%%", "bad ticker!", "<script>", ""} {
		rec := postForm(srv, "/watchlist/add", url.Values{"ticker": {bad}}, cookie)
		assert.Equal(t, http.StatusSeeOther, rec.Code, bad)
		assert.Equal(t, "/watchlist?error=symbol", rec.Header().Get("Location"), bad)
	}
	after, _ := srv.Sessions.Get(cookie.Value)
	assert.Equal(t, before.Watchlist, after.Watchlist)

	page := get(srv, "/watchlist?error=symbol", cookie)
	assert.Contains(t, page.Body.String(), "That symbol is not valid")
}

func TestWatchlist_UnavailableSymbolDoesNotFailPage(t *testing.T) {
	srv, _ := newTestServer(t)
	_, cookie := login(t, srv, testPassword)
	postForm(srv, "/watchlist/add", url.Values{"ticker": {"ZZZZINVALID"}}, cookie)

	rec := get(srv, "/watchlist", cookie)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "unavailable")
}

func TestSIPPage(t *testing.T) {
	srv, _ := newTestServer(t)
	_, cookie := login(t, srv, testPassword)

	rec := get(srv, "/sip?monthly=1000&rate=12&years=1", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "12,809.33")

	assert.Equal(t, http.StatusBadRequest, get(srv, "/sip?monthly=-5", cookie).Code)
}

func TestSearchPage(t *testing.T) {
	srv, _ := newTestServer(t)
	_, cookie := login(t, srv, testPassword)

	rec := get(srv, "/search?q=reliance", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Reliance results")
	assert.Contains(t, rec.Body.String(), "/stock?ticker=RELIANCE.NS")
}

// -----------------------------------------------------------------------------

func TestFormatSpan(t *testing.T) {
	assert.Empty(t, formatSpan(nil, models.Timeframe1Y))

	day := int64(1700000000)
	bars := []models.MBar{{Timestamp: day}, {Timestamp: day + 5*86400}}
	daily := formatSpan(bars, models.Timeframe1Y)
	assert.Contains(t, daily, " to ")
	assert.NotContains(t, daily, ":")

	intraday := formatSpan(bars[:1], models.Timeframe1D)
	assert.Contains(t, intraday, ":")
	assert.NotContains(t, intraday, " to ")
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "1,234.56", formatPrice(1234.56))
	assert.Equal(t, "+12.30", formatSigned(12.3))
	assert.Equal(t, "-1.50%", formatPercent(-1.5))
	assert.Equal(t, "N/A", formatOptional(models.None[float64]()))
	assert.Equal(t, "2.50B", formatMarketCap(models.Some(2.5e9)))
	assert.Equal(t, "down", trendClass(models.Some(-0.1)))
	assert.Equal(t, "up", trendClass(models.None[float64]()))
}

func TestRenderChart_ColourFollowsDirection(t *testing.T) {
	bars := []models.MBar{{Timestamp: 1, Close: 10}, {Timestamp: 2, Close: 9}}
	down := string(renderChart(chartInput{Bars: bars, Up: false}))
	assert.Contains(t, down, colorDown)
	assert.NotContains(t, down, colorUp)

	sma := []models.MIndicatorPoint{{Valid: false}, {Value: 9.5, Valid: true}}
	withOverlay := string(renderChart(chartInput{Bars: bars, SMAShort: sma, Up: true}))
	assert.NotContains(t, withOverlay, colorSMAShort, "a single valid point draws no overlay")

	assert.Empty(t, renderChart(chartInput{}))
}

// -----------------------------------------------------------------------------

func TestWebSocket_InitialAndBroadcast(t *testing.T) {
	srv, _ := newTestServer(t)
	go srv.handleWebsockets()
	defer srv.Stop(context.Background())

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{Jar: jar}
	resp, err := client.PostForm(ts.URL+"/login", url.Values{"password": {testPassword}})
	require.NoError(t, err)
	resp.Body.Close()

	u, _ := url.Parse(ts.URL)
	header := http.Header{}
	for _, c := range jar.Cookies(u) {
		header.Add("Cookie", c.String())
	}
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, header)
	require.NoError(t, err)
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var initial models.MLiveSnapshot
	require.NoError(t, conn.ReadJSON(&initial))
	assert.Equal(t, "INITIAL", initial.Type)

	srv.Broadcast(&models.MLiveSnapshot{
		Ticks:     map[string]models.MTick{"AAPL": {Symbol: "AAPL", Price: 190.5, Timestamp: 10}},
		Timestamp: 10,
	})
	var update models.MLiveSnapshot
	require.NoError(t, conn.ReadJSON(&update))
	assert.Equal(t, "UPDATE", update.Type)
	assert.Equal(t, 190.5, update.Ticks["AAPL"].Price)

	require.NoError(t, conn.WriteJSON(models.MSubscribeCommand{Command: "subscribe", Symbols: []string{"tsla"}}))
	var filtered models.MLiveSnapshot
	require.NoError(t, conn.ReadJSON(&filtered))
	assert.Equal(t, "INITIAL", filtered.Type)
	assert.Empty(t, filtered.Ticks)

	srv.Broadcast(&models.MLiveSnapshot{
		Ticks: map[string]models.MTick{
			"AAPL": {Symbol: "AAPL", Price: 191, Timestamp: 20},
			"TSLA": {Symbol: "TSLA", Price: 250, Timestamp: 20},
		},
		Unavailable: []string{"AAPL"},
		Timestamp:   20,
	})
	var subscribed models.MLiveSnapshot
	require.NoError(t, conn.ReadJSON(&subscribed))
	assert.Equal(t, "UPDATE", subscribed.Type)
	require.Len(t, subscribed.Ticks, 1)
	assert.Equal(t, 250.0, subscribed.Ticks["TSLA"].Price)
	assert.Empty(t, subscribed.Unavailable)
	assert.Equal(t, int64(20), srv.LatestState().Timestamp)
	assert.Len(t, srv.LatestState().Ticks, 2)

	assert.Eventually(t, func() bool { return srv.ClientCount() == 1 }, time.Second, 10*time.Millisecond)
}

func TestFilterSnapshot(t *testing.T) {
	src := &models.MLiveSnapshot{
		Ticks: map[string]models.MTick{
			"AAPL":   {Symbol: "AAPL", Price: 1},
			"TCS.NS": {Symbol: "TCS.NS", Price: 2},
		},
		Unavailable: []string{"INFY.NS"},
		MarketsOpen: true,
	}

	all := filterSnapshot(src, nil, "UPDATE")
	assert.Len(t, all.Ticks, 2)
	assert.Equal(t, []string{"INFY.NS"}, all.Unavailable)
	assert.True(t, all.MarketsOpen)

	one := filterSnapshot(src, map[string]struct{}{"TCS.NS": {}}, "INITIAL")
	assert.Equal(t, "INITIAL", one.Type)
	assert.Len(t, one.Ticks, 1)
	assert.Empty(t, one.Unavailable)

	one.Ticks["X"] = models.MTick{}
	assert.Len(t, src.Ticks, 2, "copy must not alias the source map")
}

func TestWebSocket_RequiresLogin(t *testing.T) {
	srv, _ := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
