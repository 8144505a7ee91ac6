package analysis

import (
	"sort"

	"stock-dashboard/src/models"
)

// TimeSeriesResampler groups bars into fixed time windows so long series can
// be drawn with a bounded number of chart points.
type TimeSeriesResampler struct{}

// Window is one group of bar indices in [StartTime, EndTime).
type Window struct {
	Indices   []int
	StartTime int64
	EndTime   int64
}

// -----------------------------------------------------------------------------

// ResampleIndices returns the non-empty windows for sorted timestamps.
func (r *TimeSeriesResampler) ResampleIndices(timestamps []int64, windowSeconds int64) []Window {
	if len(timestamps) == 0 || windowSeconds <= 0 {
		return nil
	}

	minTs := timestamps[0]
	maxTs := timestamps[len(timestamps)-1]

	var results []Window
	for start := minTs; start <= maxTs; start += windowSeconds {
		end := start + windowSeconds
		startIdx := SearchSorted(timestamps, start, "left")
		endIdx := SearchSorted(timestamps, end, "left")
		if startIdx >= endIdx {
			continue
		}
		indices := make([]int, endIdx-startIdx)
		for i := range indices {
			indices[i] = startIdx + i
		}
		results = append(results, Window{Indices: indices, StartTime: start, EndTime: end})
	}
	return results
}

// -----------------------------------------------------------------------------

// Downsample merges bars into at most maxPoints OHLCV candles. The returned
// index slice holds, per candle, the index of the last source bar so aligned
// indicator points can be picked for the same positions.
func (r *TimeSeriesResampler) Downsample(bars []models.MBar, maxPoints int) ([]models.MBar, []int) {
	if maxPoints <= 0 || len(bars) <= maxPoints {
		idx := make([]int, len(bars))
		for i := range idx {
			idx[i] = i
		}
		return bars, idx
	}

	sorted := sort.SliceIsSorted(bars, func(i, j int) bool { return bars[i].Timestamp < bars[j].Timestamp })
	if !sorted {
		bars = append([]models.MBar(nil), bars...)
		sort.Slice(bars, func(i, j int) bool { return bars[i].Timestamp < bars[j].Timestamp })
	}

	timestamps := make([]int64, len(bars))
	for i, b := range bars {
		timestamps[i] = b.Timestamp
	}
	span := timestamps[len(timestamps)-1] - timestamps[0]
	windowSeconds := span/int64(maxPoints) + 1

	windows := r.ResampleIndices(timestamps, windowSeconds)
	out := make([]models.MBar, 0, len(windows))
	last := make([]int, 0, len(windows))
	for _, w := range windows {
		out = append(out, mergeBars(bars, w.Indices))
		last = append(last, w.Indices[len(w.Indices)-1])
	}
	return out, last
}

func mergeBars(bars []models.MBar, indices []int) models.MBar {
	first := bars[indices[0]]
	merged := models.MBar{
		Timestamp: bars[indices[len(indices)-1]].Timestamp,
		Open:      first.Open,
		High:      first.High,
		Low:       first.Low,
	}
	for _, i := range indices {
		b := bars[i]
		if b.High > merged.High {
			merged.High = b.High
		}
		if b.Low < merged.Low {
			merged.Low = b.Low
		}
		merged.Volume += b.Volume
		merged.Close = b.Close
	}
	return merged
}

// -----------------------------------------------------------------------------

// PickPoints selects indicator points at the given source indices.
func PickPoints(points []models.MIndicatorPoint, indices []int) []models.MIndicatorPoint {
	out := make([]models.MIndicatorPoint, 0, len(indices))
	for _, i := range indices {
		if i >= 0 && i < len(points) {
			out = append(out, points[i])
		}
	}
	return out
}

// -----------------------------------------------------------------------------

// SearchSorted mirrors numpy's searchsorted for ascending int64 slices.
func SearchSorted(arr []int64, value int64, side string) int {
	if side == "left" {
		return sort.Search(len(arr), func(i int) bool {
			return arr[i] >= value
		})
	}
	return sort.Search(len(arr), func(i int) bool {
		return arr[i] > value
	})
}
