package utils

import (
	"sync"
	"time"

	"stock-dashboard/src/logger"
)

// MarketStatus is what the stock page shows next to the price.
type MarketStatus struct {
	MIC  string `json:"mic"`
	Open bool   `json:"open"`
}

type MarketScheduler struct {
	Calendars map[string]*TradingCalendar
	Logger    *logger.Logger
	mu        sync.RWMutex
	now       func() time.Time
}

// -----------------------------------------------------------------------------

func NewMarketScheduler(symbols []string, l *logger.Logger) *MarketScheduler {
	if l == nil {
		l = logger.Discard()
	}
	ms := &MarketScheduler{
		Calendars: make(map[string]*TradingCalendar),
		Logger:    l,
		now:       time.Now,
	}
	ms.MapSymbolsToCalendars(symbols)
	return ms
}

// -----------------------------------------------------------------------------

// MapSymbolsToCalendars replaces the tracked symbol set. Symbols on the same
// exchange share one calendar.
func (ms *MarketScheduler) MapSymbolsToCalendars(symbols []string) {
	byMIC := make(map[string]*TradingCalendar)
	cals := make(map[string]*TradingCalendar, len(symbols))
	for _, symbol := range symbols {
		mic := MICForSymbol(symbol)
		cal, ok := byMIC[mic]
		if !ok {
			cal = GetCalendar(symbol)
			byMIC[mic] = cal
		}
		cals[symbol] = cal
	}

	ms.mu.Lock()
	ms.Calendars = cals
	ms.mu.Unlock()

	ms.Logger.Info("MarketScheduler: Mapped %d symbols to %d unique calendars.", len(symbols), len(byMIC))
}

// UpdateSymbols updates the scheduler with a new list of symbols
func (ms *MarketScheduler) UpdateSymbols(symbols []string) {
	ms.MapSymbolsToCalendars(symbols)
}

// -----------------------------------------------------------------------------

// AnyMarketOpen checks if ANY tracked markets are currently open
func (ms *MarketScheduler) AnyMarketOpen() bool {
	now := ms.now().UTC()

	ms.mu.RLock()
	defer ms.mu.RUnlock()

	seen := make(map[*TradingCalendar]bool)
	for _, cal := range ms.Calendars {
		if seen[cal] {
			continue
		}
		seen[cal] = true
		if cal.IsOpenOnMinute(now) {
			return true
		}
	}
	return false
}

// -----------------------------------------------------------------------------

// MarketStatus reports the exchange and open state for any symbol, tracked
// or not.
func (ms *MarketScheduler) MarketStatus(symbol string) MarketStatus {
	ms.mu.RLock()
	cal, ok := ms.Calendars[symbol]
	ms.mu.RUnlock()
	if !ok {
		cal = GetCalendar(symbol)
	}
	return MarketStatus{MIC: cal.MIC, Open: cal.IsOpenOnMinute(ms.now().UTC())}
}
