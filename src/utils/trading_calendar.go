package utils

import (
	"strings"
	"time"

	"github.com/scmhub/calendar"
)

// DefaultMIC is used for symbols without a recognised exchange suffix.
const DefaultMIC = "xnys"

// suffixMICs maps Yahoo symbol suffixes to ISO 10383 MIC codes.
var suffixMICs = map[string]string{
	".NS": "xnse",
	".BO": "xbom",
	".L":  "xlon",
	".PA": "xpar",
	".DE": "xfra",
	".AS": "xams",
	".BR": "xbru",
	".MI": "xmil",
	".MC": "xmad",
	".ST": "xsto",
	".CO": "xcse",
	".HE": "xhel",
	".VI": "xwbo",
	".SW": "xswx",
	".TO": "xtse",
	".V":  "xtsx",
	".T":  "xtks",
	".HK": "xhkg",
	".AX": "xasx",
	".KS": "xkrx",
	".TW": "xtai",
	".SS": "xshg",
	".SZ": "xshe",
}

// fallbackSession is used when scmhub/calendar has no calendar for a MIC:
// weekdays only, regular session in local time.
type fallbackSession struct {
	zone        string
	open, close int // minutes after midnight
}

var fallbackSessions = map[string]fallbackSession{
	"xnys": {"America/New_York", 9*60 + 30, 16 * 60},
	"xnse": {"Asia/Kolkata", 9*60 + 15, 15*60 + 30},
	"xbom": {"Asia/Kolkata", 9*60 + 15, 15*60 + 30},
	"xlon": {"Europe/London", 8 * 60, 16*60 + 30},
	"xtks": {"Asia/Tokyo", 9 * 60, 15 * 60},
	"xhkg": {"Asia/Hong_Kong", 9*60 + 30, 16 * 60},
}

// TradingCalendar calculates trading days using scmhub/calendar.
type TradingCalendar struct {
	MIC      string
	Calendar *calendar.Calendar
	Fallback bool
	Timezone *time.Location
	session  fallbackSession
}

// -----------------------------------------------------------------------------

// MICForSymbol resolves the exchange of a Yahoo symbol from its suffix.
// Index symbols (^NSEI, ^BSESN) are mapped to their home exchange.
func MICForSymbol(symbol string) string {
	symbol = strings.ToUpper(symbol)
	switch symbol {
	case "^NSEI", "^NSEBANK":
		return "xnse"
	case "^BSESN":
		return "xbom"
	}
	if i := strings.LastIndex(symbol, "."); i > 0 {
		if mic, ok := suffixMICs[symbol[i:]]; ok {
			return mic
		}
	}
	return DefaultMIC
}

// -----------------------------------------------------------------------------

func GetCalendar(symbol string) *TradingCalendar {
	mic := MICForSymbol(symbol)

	// scmhub/calendar.GetCalendar returns a calendar by MIC
	if cal := calendar.GetCalendar(mic); cal != nil {
		return &TradingCalendar{MIC: mic, Calendar: cal, Timezone: cal.Loc}
	}

	sess, ok := fallbackSessions[mic]
	if !ok {
		sess = fallbackSessions[DefaultMIC]
	}
	loc, err := time.LoadLocation(sess.zone)
	if err != nil {
		loc = time.UTC
	}
	return &TradingCalendar{MIC: mic, Fallback: true, Timezone: loc, session: sess}
}

// -----------------------------------------------------------------------------

func (tc *TradingCalendar) IsTradingDay(date time.Time) bool {
	// Normalize to timezone if available
	if tc.Timezone != nil {
		date = date.In(tc.Timezone)
	}

	if tc.Fallback {
		// Simple fallback: Mon-Fri
		weekday := date.Weekday()
		return weekday != time.Saturday && weekday != time.Sunday
	}
	// Library handles IsHoliday / IsBusinessDay
	return tc.Calendar.IsBusinessDay(date)
}

// -----------------------------------------------------------------------------

// IsOpenOnMinute checks if the market is open at a specific minute.
func (tc *TradingCalendar) IsOpenOnMinute(t time.Time) bool {
	// Normalize to timezone if available
	if tc.Timezone != nil {
		t = t.In(tc.Timezone)
	}

	if tc.Fallback {
		if !tc.IsTradingDay(t) {
			return false
		}
		minute := t.Hour()*60 + t.Minute()
		return minute >= tc.session.open && minute < tc.session.close
	}

	return tc.Calendar.IsOpen(t)
}
