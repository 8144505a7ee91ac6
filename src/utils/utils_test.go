package utils

import (
	"testing"
	"time"

	"stock-dashboard/src/logger"
	"stock-dashboard/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tick(sym string, ts int64, price float64) models.MTick {
	return models.MTick{Symbol: sym, Timestamp: ts, Price: price}
}

// -----------------------------------------------------------------------------

func TestRingBuffer_WrapsAndKeepsOrder(t *testing.T) {
	rb := NewRingBuffer[models.MTick](3)
	assert.Empty(t, rb.All())
	_, ok := rb.Last()
	assert.False(t, ok)

	for i := int64(1); i <= 5; i++ {
		rb.Push(tick("AAPL", i, float64(i)))
	}

	assert.True(t, rb.Full())
	assert.Equal(t, 3, rb.Len())
	all := rb.All()
	require.Len(t, all, 3)
	assert.Equal(t, []int64{3, 4, 5}, []int64{all[0].Timestamp, all[1].Timestamp, all[2].Timestamp})

	latest := rb.Latest(2)
	assert.Equal(t, int64(4), latest[0].Timestamp)
	assert.Equal(t, int64(5), latest[1].Timestamp)
	assert.Len(t, rb.Latest(10), 3)

	last, ok := rb.Last()
	require.True(t, ok)
	assert.Equal(t, 5.0, last.Price)

	rb.Reset()
	assert.Equal(t, 0, rb.Len())
	assert.Equal(t, 3, rb.Cap())
}

func TestRingBuffer_DefaultCapacity(t *testing.T) {
	assert.Equal(t, DefaultTickCapacity, NewRingBuffer[int](0).Cap())
}

// -----------------------------------------------------------------------------

func TestTickStore(t *testing.T) {
	ts := NewTickStore(2)

	assert.True(t, ts.AddTick(tick("AAPL", 10, 100)))
	assert.False(t, ts.AddTick(tick("AAPL", 10, 101)), "same timestamp is a duplicate")
	assert.True(t, ts.AddTick(tick("AAPL", 20, 102)))
	assert.True(t, ts.AddTick(tick("AAPL", 30, 103)))
	assert.True(t, ts.AddTick(tick("TCS.NS", 5, 3500)))

	hist := ts.History("AAPL", 0)
	require.Len(t, hist, 2)
	assert.Equal(t, 102.0, hist[0].Price)

	latest := ts.Latest()
	assert.Equal(t, 103.0, latest["AAPL"].Price)
	assert.Equal(t, []string{"AAPL", "TCS.NS"}, ts.Symbols())
	assert.Empty(t, ts.History("NVDA", 0))

	ts.Retain([]string{"TCS.NS"})
	assert.Equal(t, 1, ts.SymbolCount())
}

// -----------------------------------------------------------------------------

func TestMICForSymbol(t *testing.T) {
	cases := map[string]string{
		"RELIANCE.NS": "xnse",
		"TCS.NS":      "xnse",
		"RELIANCE.BO": "xbom",
		"AAPL":        "xnys",
		"BRK-B":       "xnys",
		"VOD.L":       "xlon",
		"7203.T":      "xtks",
		"^NSEI":       "xnse",
		"^GSPC":       "xnys",
	}
	for sym, mic := range cases {
		assert.Equal(t, mic, MICForSymbol(sym), sym)
	}
}

func TestTradingCalendar_WeekendIsClosed(t *testing.T) {
	// Saturday 2024-06-15 noon in every zone we care about.
	sat := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	for _, sym := range []string{"AAPL", "RELIANCE.NS", "RELIANCE.BO", "VOD.L"} {
		cal := GetCalendar(sym)
		require.NotNil(t, cal)
		assert.False(t, cal.IsOpenOnMinute(sat), sym)
		assert.False(t, cal.IsTradingDay(sat), sym)
	}
}

func TestTradingCalendar_FallbackSession(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)
	cal := &TradingCalendar{MIC: "xnse", Fallback: true, Timezone: loc, session: fallbackSessions["xnse"]}

	wed := func(h, m int) time.Time { return time.Date(2024, 6, 12, h, m, 0, 0, loc) }
	assert.False(t, cal.IsOpenOnMinute(wed(9, 14)))
	assert.True(t, cal.IsOpenOnMinute(wed(9, 15)))
	assert.True(t, cal.IsOpenOnMinute(wed(15, 29)))
	assert.False(t, cal.IsOpenOnMinute(wed(15, 30)))
}

func TestMarketScheduler(t *testing.T) {
	ms := NewMarketScheduler([]string{"RELIANCE.NS", "TCS.NS", "AAPL"}, logger.Discard())
	assert.Same(t, ms.Calendars["RELIANCE.NS"], ms.Calendars["TCS.NS"])

	ms.now = func() time.Time { return time.Date(2024, 6, 16, 12, 0, 0, 0, time.UTC) } // Sunday
	assert.False(t, ms.AnyMarketOpen())

	st := ms.MarketStatus("ZOMATO.NS")
	assert.Equal(t, "xnse", st.MIC)
	assert.False(t, st.Open)

	ms.UpdateSymbols(nil)
	assert.False(t, ms.AnyMarketOpen())
}
