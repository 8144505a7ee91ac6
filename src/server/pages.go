package server

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"stock-dashboard/src/analysis"
	"stock-dashboard/src/data_source/yahoo"
	"stock-dashboard/src/helpers"
	"stock-dashboard/src/models"
	"stock-dashboard/src/session"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

// watchlistFetchLimit bounds concurrent provider calls for the watchlist page.
const watchlistFetchLimit = 4

// -----------------------------------------------------------------------------
// Stock Screen
// -----------------------------------------------------------------------------

func (s *DashboardServer) getStock(c *gin.Context) {
	st := currentState(c)

	ticker := st.Ticker
	if ticker == "" {
		ticker = s.Config.Dashboard.DefaultTicker
	}
	if raw := c.Query("ticker"); strings.TrimSpace(raw) != "" {
		sym, err := yahoo.NormalizeTicker(raw)
		if err != nil {
			s.renderStockError(c, normalizeSymbol(raw), st.Timeframe, err)
			return
		}
		ticker = sym
	}

	tf := st.Timeframe
	if raw := c.Query("tf"); raw != "" {
		parsed, err := models.ParseTimeframe(raw)
		if err != nil {
			s.renderStockError(c, ticker, tf, err)
			return
		}
		tf = parsed
	}

	next := st.SelectTicker(ticker).SetTimeframe(tf).Navigate(session.ScreenStock)

	quote, err := s.Market.Quote(c.Request.Context(), ticker, tf)
	if err != nil {
		// an outage should not lose the selection, a symbol without data should
		if helpers.KindOf(err) == helpers.KindProviderError {
			s.saveState(c, next)
		}
		s.renderStockError(c, ticker, tf, err)
		return
	}
	ind, err := s.Analyzer.Analyze(quote.Series)
	if err != nil {
		s.renderStockError(c, ticker, tf, err)
		return
	}
	st = next
	s.saveState(c, st)

	view := s.buildStockView(quote, ind)
	view.InWatchlist = st.InWatchlist(view.Symbol)

	s.render(c, http.StatusOK, "stock.html", pageData{
		Title:     view.Symbol,
		Screen:    string(session.ScreenStock),
		Ticker:    view.Symbol,
		Timeframe: tf,
		Stock:     view,
	})
}

// renderStockError keeps the page chrome and replaces the data section with
// the uniform message for the error kind.
func (s *DashboardServer) renderStockError(c *gin.Context, ticker string, tf models.Timeframe, err error) {
	kind := helpers.KindOf(err)
	if kind == helpers.KindUnknown {
		kind = helpers.KindProviderError
	}
	s.Logger.Warning("Stock page for %s (%s): %v", ticker, tf, err)
	s.render(c, htmlStatus(kind), "stock.html", pageData{
		Title:     ticker,
		Screen:    string(session.ScreenStock),
		Ticker:    ticker,
		Timeframe: tf,
		Warning:   helpers.UserMessage(kind, ticker),
	})
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) buildStockView(quote models.MQuote, ind models.MIndicatorSet) *stockView {
	series := quote.Series
	f := quote.Fundamentals

	bars, idx := s.resampler.Downsample(series.Bars, s.Config.Dashboard.ChartMaxPoints)
	up := true
	if v, ok := ind.Change.Get(); ok && v < 0 {
		up = false
	}

	return &stockView{
		Symbol:        series.Symbol,
		Name:          f.Name(series.Symbol),
		Exchange:      f.ExchangeName(),
		Currency:      f.CurrencyCode(),
		Price:         ind.LastPrice,
		Change:        ind.Change,
		PercentChange: ind.PercentChange,
		Trend:         trendClass(ind.Change),
		High:          ind.High,
		Low:           ind.Low,
		Volatility:    ind.Volatility,
		SMAShort:      ind.SMAShortLast,
		SMALong:       ind.SMALongLast,
		SMAShortLabel: smaLabel(s.Analyzer.Config.SMAShort),
		SMALongLabel:  smaLabel(s.Analyzer.Config.SMALong),
		RSI:           ind.RSI,
		Signal:        ind.Signal,
		MarketCap:     f.MarketCap,
		TrailingPE:    f.TrailingPE,
		Market:        s.Scheduler.MarketStatus(series.Symbol),
		FromCache:     quote.FromCache,
		DataPoints:    ind.DataPoints,
		Span:          formatSpan(series.Bars, series.Timeframe),
		UpdatedAt:     formatTime(series.FetchedAt),
		Chart: renderChart(chartInput{
			Bars:     bars,
			SMAShort: analysis.PickPoints(ind.SMAShort, idx),
			SMALong:  analysis.PickPoints(ind.SMALong, idx),
			Up:       up,
		}),
	}
}

func smaLabel(window int) string {
	return "SMA " + strconv.Itoa(window)
}

// -----------------------------------------------------------------------------
// Search Screen
// -----------------------------------------------------------------------------

func (s *DashboardServer) getSearch(c *gin.Context) {
	st := currentState(c).Navigate(session.ScreenSearch)
	s.saveState(c, st)

	query := c.Query("q")
	data := pageData{Title: "Search", Screen: string(session.ScreenSearch), Search: &searchView{Query: query}}
	if query == "" {
		s.render(c, http.StatusOK, "search.html", data)
		return
	}

	results, news, err := s.Market.Search(c.Request.Context(), query)
	if err != nil {
		kind := helpers.KindOf(err)
		if kind == helpers.KindUnknown {
			kind = helpers.KindProviderError
		}
		s.Logger.Warning("Search %q: %v", query, err)
		data.Warning = helpers.UserMessage(kind, query)
		s.render(c, htmlStatus(kind), "search.html", data)
		return
	}
	if len(results) == 0 {
		data.Warning = "No matches for " + strconv.Quote(query) + "."
	}
	data.Search.Results = results
	data.Search.News = newsRows(news)
	s.render(c, http.StatusOK, "search.html", data)
}

// -----------------------------------------------------------------------------
// Watchlist Screen
// -----------------------------------------------------------------------------

func (s *DashboardServer) getWatchlist(c *gin.Context) {
	st := currentState(c).Navigate(session.ScreenWatchlist)
	s.saveState(c, st)

	rows := s.watchRows(c.Request.Context(), st.Watchlist)
	s.render(c, http.StatusOK, "watchlist.html", pageData{
		Title:     "Watchlist",
		Screen:    string(session.ScreenWatchlist),
		WatchRows: rows,
		Error:     watchlistError(c.Query("error")),
	})
}

func watchlistError(code string) string {
	if code == "symbol" {
		return "That symbol is not valid. Use the exchange suffix, e.g. RELIANCE.NS."
	}
	return ""
}

// watchRows loads the intraday quote of every symbol. A failing symbol is
// shown as unavailable and does not fail the page.
func (s *DashboardServer) watchRows(ctx context.Context, symbols []string) []watchRow {
	rows := make([]watchRow, len(symbols))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(watchlistFetchLimit)

	for i, sym := range symbols {
		rows[i] = watchRow{Symbol: sym, Trend: "up"}
		g.Go(func() error {
			quote, err := s.Market.Quote(gctx, sym, models.Timeframe1D)
			if err != nil {
				s.Logger.Debug("Watchlist %s unavailable: %v", sym, err)
				return nil
			}
			ind, err := s.Analyzer.Analyze(quote.Series)
			if err != nil {
				return nil
			}
			rows[i] = watchRow{
				Symbol:        sym,
				Price:         ind.LastPrice,
				PercentChange: ind.PercentChange,
				Trend:         trendClass(ind.PercentChange),
				Available:     true,
			}
			return nil
		})
	}
	_ = g.Wait()
	return rows
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) postWatchlistAdd(c *gin.Context) {
	ticker, err := yahoo.NormalizeTicker(c.PostForm("ticker"))
	if err != nil {
		s.Logger.Info("Rejected watchlist symbol %q", c.PostForm("ticker"))
		c.Redirect(http.StatusSeeOther, withQuery(returnTo(c.PostForm("next")), "error", "symbol"))
		return
	}
	s.saveState(c, currentState(c).AddToWatchlist(ticker))
	c.Redirect(http.StatusSeeOther, returnTo(c.PostForm("next")))
}

func (s *DashboardServer) postWatchlistRemove(c *gin.Context) {
	ticker := normalizeSymbol(c.PostForm("ticker"))
	if ticker != "" {
		s.saveState(c, currentState(c).RemoveFromWatchlist(ticker))
	}
	c.Redirect(http.StatusSeeOther, returnTo(c.PostForm("next")))
}

// returnTo only follows local paths.
func returnTo(next string) string {
	u, err := url.Parse(next)
	if err != nil || next == "" || u.IsAbs() || u.Host != "" || len(u.Path) == 0 || u.Path[0] != '/' {
		return "/watchlist"
	}
	return u.RequestURI()
}

func withQuery(path, key, value string) string {
	u, err := url.Parse(path)
	if err != nil {
		return path
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String()
}

// -----------------------------------------------------------------------------
// SIP Screen
// -----------------------------------------------------------------------------

const (
	defaultSIPMonthly = 5000.0
	defaultSIPRate    = 12.0
	defaultSIPYears   = 10
)

func (s *DashboardServer) getSIP(c *gin.Context) {
	st := currentState(c).Navigate(session.ScreenSIP)
	s.saveState(c, st)

	view, err := s.sipFromQuery(c)
	data := pageData{Title: "SIP Calculator", Screen: string(session.ScreenSIP), SIP: view}
	if err != nil {
		data.Warning = "Enter a positive monthly amount, a rate between 0 and 100 and 1 to 60 years."
		s.render(c, http.StatusBadRequest, "sip.html", data)
		return
	}
	s.render(c, http.StatusOK, "sip.html", data)
}

// sipFromQuery parses the form and projects the plan. Without a monthly
// parameter only the defaults are shown.
func (s *DashboardServer) sipFromQuery(c *gin.Context) (*sipView, error) {
	monthly, ok1 := queryFloat(c, "monthly", defaultSIPMonthly)
	rate, ok2 := queryFloat(c, "rate", defaultSIPRate)
	years, ok3 := queryInt(c, "years", defaultSIPYears)
	view := &sipView{Monthly: monthly, RatePct: rate, Years: years}
	if !ok1 || !ok2 || !ok3 {
		return view, helpers.InvalidInput("sip", "", nil)
	}
	if c.Query("monthly") == "" {
		return view, nil
	}

	proj, err := analysis.ProjectSIP(monthly, rate, years)
	if err != nil {
		return view, err
	}
	view.Projection = &proj
	return view, nil
}
