package yahoo

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"stock-dashboard/src/helpers"
	"stock-dashboard/src/interfaces"
	"stock-dashboard/src/logger"
	"stock-dashboard/src/models"
)

const (
	DefaultChartBaseURL  = "https://query1.finance.yahoo.com/v8/finance/chart/"
	DefaultQuoteBaseURL  = "https://query1.finance.yahoo.com/v7/finance/quote"
	DefaultSearchBaseURL = "https://query1.finance.yahoo.com/v1/finance/search"

	DefaultSearchResults = 8
	DefaultNewsResults   = 5
)

var (
	tickerPattern = regexp.MustCompile(`^[A-Z0-9^][A-Z0-9.\-=^]{0,19}$`)

	// ErrInvalidTicker is returned for symbols that cannot be a Yahoo ticker.
	ErrInvalidTicker = errors.New("invalid ticker symbol")
)

type YahooFinanceSource struct {
	SourceConfig models.MDataSourceConfig
	Network      interfaces.INetworkManager
	Logger       *logger.Logger
}

// -----------------------------------------------------------------------------

func (s *YahooFinanceSource) Name() string {
	return s.SourceConfig.Name
}

// -----------------------------------------------------------------------------

func NewYahooFinanceSource(sourceCfg models.MDataSourceConfig, netMgr interfaces.INetworkManager, log *logger.Logger) *YahooFinanceSource {
	if sourceCfg.Name == "" {
		sourceCfg.Name = "yahoo"
	}
	if sourceCfg.ChartBaseURL == "" {
		sourceCfg.ChartBaseURL = DefaultChartBaseURL
	}
	if !strings.HasSuffix(sourceCfg.ChartBaseURL, "/") {
		sourceCfg.ChartBaseURL += "/"
	}
	if sourceCfg.QuoteBaseURL == "" {
		sourceCfg.QuoteBaseURL = DefaultQuoteBaseURL
	}
	if sourceCfg.SearchBaseURL == "" {
		sourceCfg.SearchBaseURL = DefaultSearchBaseURL
	}
	if sourceCfg.SearchResults <= 0 {
		sourceCfg.SearchResults = DefaultSearchResults
	}
	if sourceCfg.NewsResults < 0 {
		sourceCfg.NewsResults = 0
	}
	if log == nil {
		log = logger.Discard()
	}
	return &YahooFinanceSource{
		SourceConfig: sourceCfg,
		Network:      netMgr,
		Logger:       log,
	}
}

// -----------------------------------------------------------------------------

// NormalizeTicker trims and upper-cases a user-entered symbol and rejects
// anything that is not shaped like a Yahoo ticker (e.g. RELIANCE.NS, ^NSEI,
// EURUSD=X, BRK-B).
func NormalizeTicker(raw string) (string, error) {
	t := strings.ToUpper(strings.TrimSpace(raw))
	if !tickerPattern.MatchString(t) {
		return "", helpers.InvalidInput("normalize ticker", raw, ErrInvalidTicker)
	}
	return t, nil
}

// -----------------------------------------------------------------------------

// FetchSeries retrieves the chart for the timeframe's range and interval.
func (s *YahooFinanceSource) FetchSeries(ctx context.Context, ticker string, tf models.Timeframe) (models.MSeries, models.MFundamentals, error) {
	symbol, err := NormalizeTicker(ticker)
	if err != nil {
		return models.MSeries{}, models.MFundamentals{}, err
	}

	params := map[string]string{
		"range":          tf.Range(),
		"interval":       tf.Interval(),
		"includePrePost": "false",
		"events":         "div,splits",
	}
	chartURL := s.SourceConfig.ChartBaseURL + url.PathEscape(symbol)

	body, err := s.Network.Get(ctx, chartURL, params)
	if err != nil {
		if helpers.KindOf(err) == helpers.KindNoData {
			return models.MSeries{}, models.MFundamentals{}, helpers.NoData("fetch chart", symbol, err)
		}
		return models.MSeries{}, models.MFundamentals{}, fmt.Errorf("fetch chart %s: %w", symbol, err)
	}

	series, fundamentals, perr := s.parseChartResponse(symbol, tf, body)
	if perr != nil {
		return models.MSeries{}, models.MFundamentals{}, perr
	}
	s.Logger.Debug("Fetched %s %s: %d bars", symbol, tf, len(series.Bars))
	return series, fundamentals, nil
}
