package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"stock-dashboard/src/helpers"
	"stock-dashboard/src/models"
)

type YahooSearchResponse struct {
	Quotes []struct {
		Symbol    string  `json:"symbol"`
		ShortName *string `json:"shortname"`
		LongName  *string `json:"longname"`
		Exchange  string  `json:"exchange"`
		ExchDisp  string  `json:"exchDisp"`
		QuoteType string  `json:"quoteType"`
	} `json:"quotes"`
	News []struct {
		Title               string `json:"title"`
		Publisher           string `json:"publisher"`
		Link                string `json:"link"`
		ProviderPublishTime int64  `json:"providerPublishTime"`
	} `json:"news"`
}

// -----------------------------------------------------------------------------

// Search looks up companies by free text. maxResults <= 0 uses the configured
// default. Results keep the provider's ranking.
func (s *YahooFinanceSource) Search(ctx context.Context, query string, maxResults int) ([]models.MSearchResult, []models.MNewsItem, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil, helpers.InvalidInput("search", "", errors.New("empty query"))
	}
	if maxResults <= 0 {
		maxResults = s.SourceConfig.SearchResults
	}

	params := map[string]string{
		"q":           query,
		"quotesCount": strconv.Itoa(maxResults),
		"newsCount":   strconv.Itoa(s.SourceConfig.NewsResults),
	}
	body, err := s.Network.Get(ctx, s.SourceConfig.SearchBaseURL, params)
	if err != nil {
		return nil, nil, fmt.Errorf("search %q: %w", query, err)
	}

	var resp YahooSearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, nil, helpers.ProviderError("parse search", "", err)
	}

	results := make([]models.MSearchResult, 0, len(resp.Quotes))
	for _, q := range resp.Quotes {
		if q.Symbol == "" {
			continue
		}
		name := firstString(q.ShortName, q.LongName).Or(models.UnknownName)
		exchange := q.ExchDisp
		if exchange == "" {
			exchange = q.Exchange
		}
		results = append(results, models.MSearchResult{
			Symbol:   q.Symbol,
			Name:     name,
			Display:  fmt.Sprintf("%s - %s", q.Symbol, firstString(q.ShortName).Or(models.UnknownName)),
			Exchange: exchange,
			Type:     q.QuoteType,
		})
		if len(results) == maxResults {
			break
		}
	}

	news := make([]models.MNewsItem, 0, len(resp.News))
	for _, n := range resp.News {
		if n.Title == "" {
			continue
		}
		news = append(news, models.MNewsItem{
			Title:       n.Title,
			Publisher:   n.Publisher,
			Link:        n.Link,
			PublishedAt: time.Unix(n.ProviderPublishTime, 0).UTC(),
		})
	}

	s.Logger.Debug("Search %q: %d results, %d news", query, len(results), len(news))
	return results, news, nil
}
