package core

import (
	"errors"
	"math"

	"stock-dashboard/src/helpers"
	"stock-dashboard/src/models"
)

var (
	// ErrZeroReference is returned when a percent change has no usable base.
	ErrZeroReference = errors.New("reference price is zero or not finite")
	// ErrInsufficientData is returned when a window has not filled yet.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrInvalidWindow is returned for non-positive window lengths.
	ErrInvalidWindow = errors.New("window must be positive")
)

// -----------------------------------------------------------------------------

// PercentChange returns (current - reference) / reference * 100.
func PercentChange(current, reference float64) (float64, error) {
	if reference == 0 || math.IsNaN(reference) || math.IsInf(reference, 0) {
		return 0, helpers.InvalidInput("percent change", "", ErrZeroReference)
	}
	if math.IsNaN(current) || math.IsInf(current, 0) {
		return 0, helpers.InvalidInput("percent change", "", errors.New("current price is not finite"))
	}
	return (current - reference) / reference * 100, nil
}

// -----------------------------------------------------------------------------

// HighLow scans bars for the highest high and lowest low.
func HighLow(bars []models.MBar) (high, low float64, err error) {
	if len(bars) == 0 {
		return 0, 0, helpers.NoData("high/low", "", ErrInsufficientData)
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for _, b := range bars {
		if b.High > high {
			high = b.High
		}
		if b.Low < low {
			low = b.Low
		}
	}
	return high, low, nil
}
