package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"stock-dashboard/src/helpers"
	"stock-dashboard/src/models"
)

type YahooQuoteResponse struct {
	QuoteResponse struct {
		Result []struct {
			Symbol           string   `json:"symbol"`
			LongName         *string  `json:"longName"`
			ShortName        *string  `json:"shortName"`
			Currency         *string  `json:"currency"`
			FullExchangeName *string  `json:"fullExchangeName"`
			Exchange         *string  `json:"exchange"`
			MarketCap        *float64 `json:"marketCap"`
			TrailingPE       *float64 `json:"trailingPE"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteResponse"`
}

// -----------------------------------------------------------------------------

// FetchFundamentals queries the quote endpoint for market cap, P/E and naming.
func (s *YahooFinanceSource) FetchFundamentals(ctx context.Context, ticker string) (models.MFundamentals, error) {
	symbol, err := NormalizeTicker(ticker)
	if err != nil {
		return models.MFundamentals{}, err
	}

	body, err := s.Network.Get(ctx, s.SourceConfig.QuoteBaseURL, map[string]string{"symbols": symbol})
	if err != nil {
		return models.MFundamentals{}, fmt.Errorf("fetch quote %s: %w", symbol, err)
	}

	var resp YahooQuoteResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return models.MFundamentals{}, helpers.ProviderError("parse quote", symbol, err)
	}
	if e := resp.QuoteResponse.Error; e != nil {
		return models.MFundamentals{}, helpers.ProviderError("fetch quote", symbol, fmt.Errorf("%s - %s", e.Code, e.Description))
	}

	for _, r := range resp.QuoteResponse.Result {
		if !strings.EqualFold(r.Symbol, symbol) {
			continue
		}
		return models.MFundamentals{
			LongName:   firstString(r.LongName, r.ShortName),
			Exchange:   firstString(r.FullExchangeName, r.Exchange),
			Currency:   firstString(r.Currency),
			MarketCap:  firstFloat(r.MarketCap),
			TrailingPE: firstFloat(r.TrailingPE),
		}, nil
	}
	return models.MFundamentals{}, helpers.NoData("fetch quote", symbol, errors.New("symbol not in quote response"))
}
