package server

import (
	"embed"
	"fmt"
	"html/template"
	"math"
	"time"

	"stock-dashboard/src/models"
	"stock-dashboard/src/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed templates/*.html
var templateFS embed.FS

const notAvailable = "N/A"

var templateFuncs = template.FuncMap{
	"price":   formatPrice,
	"signed":  formatSigned,
	"percent": formatPercent,
	"opt":     formatOptional,
	"optpct":  formatOptionalPercent,
	"cap":     formatMarketCap,
	"trend":   trendClass,
}

func loadTemplates() (*template.Template, error) {
	tmpl, err := template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return tmpl, nil
}

// -----------------------------------------------------------------------------
// View Models
// -----------------------------------------------------------------------------

type pageData struct {
	Title      string
	Screen     string
	Error      string
	Warning    string
	Ticker     string
	Timeframe  models.Timeframe
	Timeframes []timeframeLink
	Watchlist  []string

	Stock     *stockView
	Search    *searchView
	WatchRows []watchRow
	SIP       *sipView
}

type timeframeLink struct {
	Name   models.Timeframe
	Label  string
	Active bool
}

type stockView struct {
	Symbol        string
	Name          string
	Exchange      string
	Currency      string
	Price         float64
	Change        models.Optional[float64]
	PercentChange models.Optional[float64]
	Trend         string
	High          float64
	Low           float64
	Volatility    models.Optional[float64]
	SMAShort      models.Optional[float64]
	SMALong       models.Optional[float64]
	SMAShortLabel string
	SMALongLabel  string
	RSI           models.Optional[float64]
	Signal        models.Signal
	MarketCap     models.Optional[float64]
	TrailingPE    models.Optional[float64]
	Market        utils.MarketStatus
	InWatchlist   bool
	FromCache     bool
	DataPoints    int
	Span          string
	UpdatedAt     string
	Chart         template.HTML
}

type searchView struct {
	Query   string
	Results []models.MSearchResult
	News    []newsRow
}

type newsRow struct {
	Title     string
	Publisher string
	Link      string
	When      string
}

type watchRow struct {
	Symbol        string
	Price         float64
	PercentChange models.Optional[float64]
	Trend         string
	Available     bool
}

type sipView struct {
	Monthly    float64
	RatePct    float64
	Years      int
	Projection *models.MSIPProjection
}

// -----------------------------------------------------------------------------

func timeframeLinks(active models.Timeframe) []timeframeLink {
	out := make([]timeframeLink, 0, 4)
	for _, tf := range models.AllTimeframes() {
		out = append(out, timeframeLink{Name: tf, Label: tf.Label(), Active: tf == active})
	}
	return out
}

func newsRows(items []models.MNewsItem) []newsRow {
	out := make([]newsRow, 0, len(items))
	for _, n := range items {
		when := ""
		if !n.PublishedAt.IsZero() {
			when = n.PublishedAt.Local().Format("02 Jan 2006 15:04")
		}
		out = append(out, newsRow{Title: n.Title, Publisher: n.Publisher, Link: n.Link, When: when})
	}
	return out
}

// render fills the shared layout fields and executes the named template.
func (s *DashboardServer) render(c *gin.Context, status int, name string, data pageData) {
	st := currentState(c)
	if data.Ticker == "" {
		data.Ticker = st.Ticker
	}
	if data.Timeframe == "" {
		data.Timeframe = st.Timeframe
	}
	if data.Timeframes == nil {
		data.Timeframes = timeframeLinks(data.Timeframe)
	}
	if data.Watchlist == nil {
		data.Watchlist = st.Watchlist
	}
	c.HTML(status, name, data)
}

// -----------------------------------------------------------------------------
// Number Formatting
// -----------------------------------------------------------------------------

func printer() *message.Printer {
	return message.NewPrinter(language.English)
}

// formatPrice renders 1234.5 as "1,234.50".
func formatPrice(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return notAvailable
	}
	return printer().Sprintf("%.2f", v)
}

func formatSigned(v float64) string {
	if v >= 0 {
		return "+" + formatPrice(v)
	}
	return formatPrice(v)
}

func formatPercent(v float64) string {
	return formatSigned(v) + "%"
}

func formatOptional(o models.Optional[float64]) string {
	if v, ok := o.Get(); ok {
		return formatPrice(v)
	}
	return notAvailable
}

func formatOptionalPercent(o models.Optional[float64]) string {
	if v, ok := o.Get(); ok {
		return formatPercent(v)
	}
	return notAvailable
}

// formatMarketCap shows the cap in billions.
func formatMarketCap(o models.Optional[float64]) string {
	v, ok := o.Get()
	if !ok {
		return notAvailable
	}
	return printer().Sprintf("%.2fB", v/1e9)
}

// trendClass picks the CSS class for a change; absent counts as up.
func trendClass(o models.Optional[float64]) string {
	if v, ok := o.Get(); ok && v < 0 {
		return "down"
	}
	return "up"
}

// formatSpan describes the first and last bar, with clock times for
// intraday series and dates otherwise.
func formatSpan(bars []models.MBar, tf models.Timeframe) string {
	if len(bars) == 0 {
		return ""
	}
	layout := "02 Jan 2006"
	if tf.Intraday() {
		layout = "15:04"
	}
	first := bars[0].Time().Local().Format(layout)
	last := bars[len(bars)-1].Time().Local().Format(layout)
	if first == last {
		return first
	}
	return first + " to " + last
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("02 Jan 2006 15:04:05")
}
