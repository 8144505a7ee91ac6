package core

import (
	"stock-dashboard/src/helpers"
	"stock-dashboard/src/models"
)

// -----------------------------------------------------------------------------

// SMA is the arithmetic mean of the last w closes.
func SMA(closes []float64, w int) (float64, error) {
	if w <= 0 {
		return 0, helpers.InvalidInput("sma", "", ErrInvalidWindow)
	}
	if len(closes) < w {
		return 0, helpers.NoData("sma", "", ErrInsufficientData)
	}
	sum := 0.0
	for _, c := range closes[len(closes)-w:] {
		sum += c
	}
	return sum / float64(w), nil
}

// SMASeries aligns a rolling mean to every bar. Points before bar w-1 are
// marked invalid.
func SMASeries(bars []models.MBar, w int) []models.MIndicatorPoint {
	out := make([]models.MIndicatorPoint, len(bars))
	sum := 0.0
	for i, b := range bars {
		out[i].Timestamp = b.Timestamp
		if w <= 0 {
			continue
		}
		sum += b.Close
		if i >= w {
			sum -= bars[i-w].Close
		}
		if i >= w-1 {
			out[i].Value = sum / float64(w)
			out[i].Valid = true
		}
	}
	return out
}

// -----------------------------------------------------------------------------

// RSI uses the simple average of gains and losses over the last w deltas.
// It needs w+1 closes.
//
// An average loss of zero yields 100, except for a flat window (no gains
// either), which yields the neutral 50.
func RSI(closes []float64, w int) (float64, error) {
	if w <= 0 {
		return 0, helpers.InvalidInput("rsi", "", ErrInvalidWindow)
	}
	if len(closes) < w+1 {
		return 0, helpers.NoData("rsi", "", ErrInsufficientData)
	}
	return rsiWindow(closes[len(closes)-w-1:], w), nil
}

// RSISeries computes RSI for every bar whose window is complete.
func RSISeries(bars []models.MBar, w int) []models.MIndicatorPoint {
	out := make([]models.MIndicatorPoint, len(bars))
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
		out[i].Timestamp = b.Timestamp
	}
	if w <= 0 {
		return out
	}
	for i := w; i < len(bars); i++ {
		out[i].Value = rsiWindow(closes[i-w:i+1], w)
		out[i].Valid = true
	}
	return out
}

func rsiWindow(closes []float64, w int) float64 {
	var gain, loss float64
	for i := 1; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			gain += d
		} else {
			loss -= d
		}
	}
	avgGain := gain / float64(w)
	avgLoss := loss / float64(w)

	if avgLoss == 0 {
		if avgGain == 0 {
			return 50
		}
		return 100
	}
	return 100 - 100/(1+avgGain/avgLoss)
}
