package server

import (
	"net/http"

	"stock-dashboard/src/analysis"
	"stock-dashboard/src/helpers"
	"stock-dashboard/src/models"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// JSON API
// -----------------------------------------------------------------------------

func (s *DashboardServer) apiQuote(c *gin.Context) {
	ticker := normalizeSymbol(c.Param("ticker"))
	tf, err := models.ParseTimeframe(c.Query("tf"))
	if err != nil {
		s.abortJSON(c, err, c.Query("tf"))
		return
	}

	quote, err := s.Market.Quote(c.Request.Context(), ticker, tf)
	if err != nil {
		s.abortJSON(c, err, ticker)
		return
	}
	ind, err := s.Analyzer.Analyze(quote.Series)
	if err != nil {
		s.abortJSON(c, err, ticker)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"quote":      quote,
		"indicators": ind,
		"market":     s.Scheduler.MarketStatus(quote.Series.Symbol),
	})
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) apiSearch(c *gin.Context) {
	query := c.Query("q")
	results, news, err := s.Market.Search(c.Request.Context(), query)
	if err != nil {
		s.abortJSON(c, err, query)
		return
	}
	if results == nil {
		results = []models.MSearchResult{}
	}
	if news == nil {
		news = []models.MNewsItem{}
	}
	c.JSON(http.StatusOK, gin.H{"results": results, "news": news})
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) apiSIP(c *gin.Context) {
	monthly, ok1 := queryFloat(c, "monthly", defaultSIPMonthly)
	rate, ok2 := queryFloat(c, "rate", defaultSIPRate)
	years, ok3 := queryInt(c, "years", defaultSIPYears)
	if !ok1 || !ok2 || !ok3 {
		s.abortJSON(c, helpers.InvalidInput("sip", "", nil), "SIP parameters")
		return
	}

	proj, err := analysis.ProjectSIP(monthly, rate, years)
	if err != nil {
		s.abortJSON(c, err, "SIP parameters")
		return
	}
	c.JSON(http.StatusOK, proj)
}

// -----------------------------------------------------------------------------

// apiTicks returns the refresher's tick history for one symbol, oldest first.
// ?limit=n keeps only the newest n.
func (s *DashboardServer) apiTicks(c *gin.Context) {
	symbol := normalizeSymbol(c.Param("ticker"))
	limit, ok := queryInt(c, "limit", 0)
	if !ok || limit < 0 {
		s.abortJSON(c, helpers.InvalidInput("ticks", symbol, nil), "limit")
		return
	}
	ticks := s.Ticks.History(symbol, limit)
	if len(ticks) == 0 {
		s.abortJSON(c, helpers.NoData("ticks", symbol, nil), symbol)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"symbol": symbol,
		"ticks":  ticks,
		"market": s.Scheduler.MarketStatus(symbol),
	})
}
