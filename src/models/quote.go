package models

import "time"

// Named defaults applied when the provider omits a fundamental field.
const (
	DefaultExchange = "Market"
	DefaultCurrency = "₹"
	UnknownName     = "Unknown"
)

// MFundamentals carries the optional descriptive fields for a ticker.
type MFundamentals struct {
	LongName   Optional[string]  `json:"long_name"`
	Exchange   Optional[string]  `json:"exchange"`
	Currency   Optional[string]  `json:"currency"`
	MarketCap  Optional[float64] `json:"market_cap"`
	TrailingPE Optional[float64] `json:"trailing_pe"`
}

// Name returns the company name, falling back to the ticker itself.
func (f MFundamentals) Name(ticker string) string {
	return f.LongName.Or(ticker)
}

// ExchangeName returns the exchange, falling back to DefaultExchange.
func (f MFundamentals) ExchangeName() string {
	return f.Exchange.Or(DefaultExchange)
}

// CurrencyCode returns the currency, falling back to DefaultCurrency.
func (f MFundamentals) CurrencyCode() string {
	return f.Currency.Or(DefaultCurrency)
}

// Merge fills absent fields of f from other.
func (f MFundamentals) Merge(other MFundamentals) MFundamentals {
	if !f.LongName.Valid() {
		f.LongName = other.LongName
	}
	if !f.Exchange.Valid() {
		f.Exchange = other.Exchange
	}
	if !f.Currency.Valid() {
		f.Currency = other.Currency
	}
	if !f.MarketCap.Valid() {
		f.MarketCap = other.MarketCap
	}
	if !f.TrailingPE.Valid() {
		f.TrailingPE = other.TrailingPE
	}
	return f
}

// MQuote is everything the stock screen needs from the provider.
type MQuote struct {
	Series       MSeries       `json:"series"`
	Fundamentals MFundamentals `json:"fundamentals"`
	FromCache    bool          `json:"from_cache"`
}

// MSearchResult is one company-name search hit.
type MSearchResult struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Display  string `json:"display"`
	Exchange string `json:"exchange"`
	Type     string `json:"type"`
}

// MNewsItem is a headline returned alongside search results.
type MNewsItem struct {
	Title       string    `json:"title"`
	Publisher   string    `json:"publisher"`
	Link        string    `json:"link"`
	PublishedAt time.Time `json:"published_at"`
}
