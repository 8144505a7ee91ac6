package core

import "math"

// MeanStd returns the mean and population standard deviation of the finite
// values in data, in one pass (Welford). NaN and Inf entries are ignored.
func MeanStd(data []float64) (mean, std float64) {
	var n int
	var m2 float64
	for _, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		n++
		delta := v - mean
		mean += delta / float64(n)
		m2 += delta * (v - mean)
	}
	if n < 2 {
		return mean, 0
	}
	return mean, math.Sqrt(m2 / float64(n))
}

// SimpleReturns gives (c[i]-c[i-1])/c[i-1] for each pair, skipping pairs whose
// earlier close is not positive.
func SimpleReturns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	out := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] <= 0 {
			continue
		}
		out = append(out, (closes[i]-closes[i-1])/closes[i-1])
	}
	return out
}

// ReturnsVolatility is the standard deviation of bar-to-bar simple returns,
// in percent.
func ReturnsVolatility(closes []float64) (float64, error) {
	if len(closes) < 3 {
		return 0, ErrInsufficientData
	}
	returns := SimpleReturns(closes)
	if len(returns) < 2 {
		return 0, ErrInsufficientData
	}
	_, std := MeanStd(returns)
	return std * 100, nil
}
