package analysis

import (
	"stock-dashboard/src/analysis/core"
	"stock-dashboard/src/helpers"
	"stock-dashboard/src/logger"
	"stock-dashboard/src/models"
)

// Analyzer turns a fetched series into the indicator set shown on the stock
// page. It holds no state besides its configuration.
type Analyzer struct {
	Config models.MIndicatorConfig
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewAnalyzer(cfg models.MIndicatorConfig, log *logger.Logger) *Analyzer {
	if cfg.SMAShort <= 0 {
		cfg.SMAShort = 20
	}
	if cfg.SMALong <= 0 {
		cfg.SMALong = 50
	}
	if cfg.RSIPeriod <= 0 {
		cfg.RSIPeriod = 14
	}
	if cfg.Oversold <= 0 {
		cfg.Oversold = 30
	}
	if cfg.Overbought <= 0 {
		cfg.Overbought = 70
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Analyzer{Config: cfg, Logger: log}
}

// -----------------------------------------------------------------------------

// Analyze computes every indicator for the series. Windows that have not
// filled are reported as absent, never as an error. Only an empty series
// fails, with a NoData error.
func (a *Analyzer) Analyze(series models.MSeries) (models.MIndicatorSet, error) {
	last, ok := series.Last()
	if !ok {
		return models.MIndicatorSet{}, helpers.NoData("analyze", series.Symbol, core.ErrInsufficientData)
	}

	set := models.MIndicatorSet{
		Symbol:     series.Symbol,
		Timeframe:  series.Timeframe,
		LastPrice:  last.Close,
		DataPoints: len(series.Bars),
	}

	if prev, ok := series.PreviousClose.Get(); ok {
		if pct, err := core.PercentChange(last.Close, prev); err == nil {
			set.Change = models.Some(last.Close - prev)
			set.PercentChange = models.Some(pct)
		} else {
			a.Logger.Debug("%s: no usable previous close: %v", series.Symbol, err)
		}
	}

	high, low, err := core.HighLow(series.Bars)
	if err != nil {
		return models.MIndicatorSet{}, err
	}
	set.High, set.Low = high, low

	closes := series.Closes()
	if vol, err := core.ReturnsVolatility(closes); err == nil {
		set.Volatility = models.Some(vol)
	}

	set.SMAShort = core.SMASeries(series.Bars, a.Config.SMAShort)
	set.SMALong = core.SMASeries(series.Bars, a.Config.SMALong)
	if v, err := core.SMA(closes, a.Config.SMAShort); err == nil {
		set.SMAShortLast = models.Some(v)
	}
	if v, err := core.SMA(closes, a.Config.SMALong); err == nil {
		set.SMALongLast = models.Some(v)
	}
	if v, err := core.RSI(closes, a.Config.RSIPeriod); err == nil {
		set.RSI = models.Some(v)
	}

	set.Signal = a.Signal(last.Close, set.RSI, set.SMALongLast)
	return set, nil
}

// -----------------------------------------------------------------------------

// Signal is the RSI/SMA heuristic: oversold while above the long average is
// a BUY, overbought while below it is a SELL.
func (a *Analyzer) Signal(price float64, rsi, smaLong models.Optional[float64]) models.Signal {
	r, okR := rsi.Get()
	s, okS := smaLong.Get()
	if !okR || !okS {
		return models.SignalInsufficientData
	}
	switch {
	case r < a.Config.Oversold && price > s:
		return models.SignalBuy
	case r > a.Config.Overbought && price < s:
		return models.SignalSell
	default:
		return models.SignalHold
	}
}
