package yahoo

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"stock-dashboard/src/helpers"
	"stock-dashboard/src/models"
)

type YahooChartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency           *string  `json:"currency"`
				Symbol             string   `json:"symbol"`
				ExchangeName       *string  `json:"exchangeName"`
				FullExchangeName   *string  `json:"fullExchangeName"`
				LongName           *string  `json:"longName"`
				ShortName          *string  `json:"shortName"`
				InstrumentType     string   `json:"instrumentType"`
				RegularMarketTime  int64    `json:"regularMarketTime"`
				RegularMarketPrice *float64 `json:"regularMarketPrice"`
				ChartPreviousClose *float64 `json:"chartPreviousClose"`
				DataGranularity    string   `json:"dataGranularity"`
				Range              string   `json:"range"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					High   []*float64 `json:"high"`   // Use pointers to handle null
					Low    []*float64 `json:"low"`    // Use pointers to handle null
					Open   []*float64 `json:"open"`   // Use pointers to handle null
					Close  []*float64 `json:"close"`  // Use pointers to handle null
					Volume []*float64 `json:"volume"` // Use pointers to handle null
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// -----------------------------------------------------------------------------

func (s *YahooFinanceSource) parseChartResponse(symbol string, tf models.Timeframe, data []byte) (models.MSeries, models.MFundamentals, error) {
	var resp YahooChartResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return models.MSeries{}, models.MFundamentals{}, helpers.ProviderError("parse chart", symbol, err)
	}

	if e := resp.Chart.Error; e != nil {
		cause := fmt.Errorf("yahoo api error: %s - %s", e.Code, e.Description)
		if strings.EqualFold(e.Code, "Not Found") || strings.Contains(e.Description, "No data found") {
			return models.MSeries{}, models.MFundamentals{}, helpers.NoData("fetch chart", symbol, cause)
		}
		return models.MSeries{}, models.MFundamentals{}, helpers.ProviderError("fetch chart", symbol, cause)
	}

	if len(resp.Chart.Result) == 0 {
		return models.MSeries{}, models.MFundamentals{}, helpers.NoData("fetch chart", symbol, errors.New("no result in response"))
	}

	result := resp.Chart.Result[0]
	meta := result.Meta
	fundamentals := models.MFundamentals{
		LongName: firstString(meta.LongName, meta.ShortName),
		Exchange: firstString(meta.FullExchangeName, meta.ExchangeName),
		Currency: firstString(meta.Currency),
	}

	series := models.MSeries{
		Symbol:    symbol,
		Timeframe: tf,
		FetchedAt: time.Now().UTC(),
	}
	if meta.ChartPreviousClose != nil && *meta.ChartPreviousClose > 0 {
		series.PreviousClose = models.Some(*meta.ChartPreviousClose)
	}

	if len(result.Timestamp) == 0 || len(result.Indicators.Quote) == 0 {
		return models.MSeries{}, fundamentals, helpers.NoData("fetch chart", symbol, errors.New("no timestamps in response"))
	}
	quote := result.Indicators.Quote[0]

	n := len(result.Timestamp)
	if len(quote.Close) != n || len(quote.Open) != n || len(quote.High) != n ||
		len(quote.Low) != n || len(quote.Volume) != n {
		s.Logger.Warning("Data alignment error for %s: mismatched array lengths", symbol)
		return models.MSeries{}, fundamentals, helpers.ProviderError("parse chart", symbol, errors.New("data alignment error"))
	}

	bars := make([]models.MBar, 0, n)
	for i, ts := range result.Timestamp {
		// Without a close the bar is a gap (halt, holiday row); drop it.
		if quote.Close[i] == nil || *quote.Close[i] <= 0 {
			continue
		}
		c := *quote.Close[i]
		bars = append(bars, models.MBar{
			Timestamp: ts,
			Open:      valueOr(quote.Open[i], c),
			High:      valueOr(quote.High[i], c),
			Low:       valueOr(quote.Low[i], c),
			Close:     c,
			Volume:    valueOr(quote.Volume[i], 0),
		})
	}

	if len(bars) == 0 {
		return models.MSeries{}, fundamentals, helpers.NoData("fetch chart", symbol, errors.New("no valid data points"))
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Timestamp < bars[j].Timestamp })
	series.Bars = bars
	return series, fundamentals, nil
}

// -----------------------------------------------------------------------------

func valueOr(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

func firstString(candidates ...*string) models.Optional[string] {
	for _, c := range candidates {
		if c != nil && strings.TrimSpace(*c) != "" {
			return models.Some(strings.TrimSpace(*c))
		}
	}
	return models.None[string]()
}

func firstFloat(candidates ...*float64) models.Optional[float64] {
	for _, c := range candidates {
		if c != nil {
			return models.Some(*c)
		}
	}
	return models.None[float64]()
}
