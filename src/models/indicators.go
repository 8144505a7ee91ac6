package models

// MIndicatorPoint is a rolling indicator value aligned to a bar. Valid is
// false while the window has not yet filled.
type MIndicatorPoint struct {
	Timestamp int64   `json:"timestamp"`
	Value     float64 `json:"value"`
	Valid     bool    `json:"valid"`
}

// Signal is the buy/sell heuristic outcome.
type Signal string

const (
	SignalBuy              Signal = "BUY"
	SignalSell             Signal = "SELL"
	SignalHold             Signal = "HOLD"
	SignalInsufficientData Signal = "INSUFFICIENT_DATA"
)

// MIndicatorSet is the derived view of one fetched series. Nothing here is
// stored; it is recomputed on every request.
type MIndicatorSet struct {
	Symbol        string            `json:"symbol"`
	Timeframe     Timeframe         `json:"timeframe"`
	LastPrice     float64           `json:"last_price"`
	Change        Optional[float64] `json:"change"`
	PercentChange Optional[float64] `json:"percent_change"`
	High          float64           `json:"high"`
	Low           float64           `json:"low"`
	Volatility    Optional[float64] `json:"volatility"`
	SMAShort      []MIndicatorPoint `json:"sma_short"`
	SMALong       []MIndicatorPoint `json:"sma_long"`
	SMAShortLast  Optional[float64] `json:"sma_short_last"`
	SMALongLast   Optional[float64] `json:"sma_long_last"`
	RSI           Optional[float64] `json:"rsi"`
	Signal        Signal            `json:"signal"`
	DataPoints    int               `json:"data_points"`
}

// MSIPYear is one row of the SIP projection schedule.
type MSIPYear struct {
	Year     int     `json:"year"`
	Invested float64 `json:"invested"`
	Value    float64 `json:"value"`
	Gains    float64 `json:"gains"`
}

// MSIPProjection is the compound-interest projection for a monthly plan.
type MSIPProjection struct {
	MonthlyContribution float64    `json:"monthly_contribution"`
	AnnualRatePct       float64    `json:"annual_rate_pct"`
	Years               int        `json:"years"`
	FutureValue         float64    `json:"future_value"`
	Invested            float64    `json:"invested"`
	Gains               float64    `json:"gains"`
	Schedule            []MSIPYear `json:"schedule"`
}
