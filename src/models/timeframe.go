package models

import (
	"fmt"
	"strings"
	"time"

	"stock-dashboard/src/helpers"
)

// Timeframe is one of the fixed chart buckets offered in the UI.
type Timeframe string

const (
	Timeframe1D Timeframe = "1D"
	Timeframe1M Timeframe = "1M"
	Timeframe1Y Timeframe = "1Y"
	Timeframe5Y Timeframe = "5Y"

	DefaultTimeframe = Timeframe1Y
)

// timeframeSpec maps a bucket to the provider's range/interval pair.
type timeframeSpec struct {
	Range    string
	Interval string
	CacheTTL time.Duration
	Label    string
}

var timeframeSpecs = map[Timeframe]timeframeSpec{
	Timeframe1D: {Range: "1d", Interval: "2m", CacheTTL: time.Minute, Label: "1 Day"},
	Timeframe1M: {Range: "1mo", Interval: "1d", CacheTTL: 15 * time.Minute, Label: "1 Month"},
	Timeframe1Y: {Range: "1y", Interval: "1d", CacheTTL: time.Hour, Label: "1 Year"},
	Timeframe5Y: {Range: "5y", Interval: "1wk", CacheTTL: 6 * time.Hour, Label: "5 Years"},
}

// AllTimeframes returns the buckets in display order.
func AllTimeframes() []Timeframe {
	return []Timeframe{Timeframe1D, Timeframe1M, Timeframe1Y, Timeframe5Y}
}

// ParseTimeframe accepts the bucket name case-insensitively. An empty string
// yields DefaultTimeframe; anything else unknown is an InvalidInput error.
func ParseTimeframe(s string) (Timeframe, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return DefaultTimeframe, nil
	}
	tf := Timeframe(s)
	if _, ok := timeframeSpecs[tf]; !ok {
		return "", helpers.InvalidInput("parse timeframe", "", fmt.Errorf("unknown timeframe %q", s))
	}
	return tf, nil
}

func (t Timeframe) Range() string           { return timeframeSpecs[t].Range }
func (t Timeframe) Interval() string        { return timeframeSpecs[t].Interval }
func (t Timeframe) CacheTTL() time.Duration { return timeframeSpecs[t].CacheTTL }
func (t Timeframe) Label() string           { return timeframeSpecs[t].Label }

// Intraday reports whether bars are sub-daily.
func (t Timeframe) Intraday() bool {
	return t == Timeframe1D
}
