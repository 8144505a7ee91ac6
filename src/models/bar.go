package models

import "time"

// MBar is a single OHLCV bar as returned by the market-data provider.
type MBar struct {
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

// Time returns the bar timestamp as UTC time.
func (b MBar) Time() time.Time {
	return time.Unix(b.Timestamp, 0).UTC()
}

// MSeries is an ordered (oldest first) run of bars for one ticker and timeframe.
type MSeries struct {
	Symbol        string            `json:"symbol"`
	Timeframe     Timeframe         `json:"timeframe"`
	Bars          []MBar            `json:"bars"`
	PreviousClose Optional[float64] `json:"previous_close"`
	FetchedAt     time.Time         `json:"fetched_at"`
}

// Closes extracts closing prices in bar order.
func (s MSeries) Closes() []float64 {
	closes := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		closes[i] = b.Close
	}
	return closes
}

// Last returns the most recent bar.
func (s MSeries) Last() (MBar, bool) {
	if len(s.Bars) == 0 {
		return MBar{}, false
	}
	return s.Bars[len(s.Bars)-1], true
}

// IsEmpty reports whether the provider returned no usable bars.
func (s MSeries) IsEmpty() bool {
	return len(s.Bars) == 0
}
