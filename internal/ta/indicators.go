// Package ta provides the rolling and statistical primitives the feature
// engine is built from. Series functions return a slice of the same length
// as their input, NaN-padded until a full window exists; a NaN anywhere in
// a window propagates to that window's output.
package ta

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

func hasNaN(window []float64) bool {
	for _, v := range window {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}

// SMASeries is the rolling mean over the given period.
func SMASeries(values []float64, period int) []float64 {
	out := nanSlice(len(values))
	if period <= 0 {
		return out
	}
	for i := period - 1; i < len(values); i++ {
		w := values[i-period+1 : i+1]
		if hasNaN(w) {
			continue
		}
		out[i] = stat.Mean(w, nil)
	}
	return out
}

// RollingStd is the rolling sample standard deviation (ddof=1).
func RollingStd(values []float64, window int) []float64 {
	out := nanSlice(len(values))
	if window <= 1 {
		return out
	}
	for i := window - 1; i < len(values); i++ {
		w := values[i-window+1 : i+1]
		if hasNaN(w) {
			continue
		}
		out[i] = stat.StdDev(w, nil)
	}
	return out
}

// RollingSum is the rolling sum over the given window.
func RollingSum(values []float64, window int) []float64 {
	out := nanSlice(len(values))
	if window <= 0 {
		return out
	}
	for i := window - 1; i < len(values); i++ {
		w := values[i-window+1 : i+1]
		if hasNaN(w) {
			continue
		}
		sum := 0.0
		for _, v := range w {
			sum += v
		}
		out[i] = sum
	}
	return out
}

// RollingMin is the rolling minimum over the given window.
func RollingMin(values []float64, window int) []float64 {
	return rollingExtreme(values, window, math.Min)
}

// RollingMax is the rolling maximum over the given window.
func RollingMax(values []float64, window int) []float64 {
	return rollingExtreme(values, window, math.Max)
}

func rollingExtreme(values []float64, window int, pick func(a, b float64) float64) []float64 {
	out := nanSlice(len(values))
	if window <= 0 {
		return out
	}
	for i := window - 1; i < len(values); i++ {
		w := values[i-window+1 : i+1]
		if hasNaN(w) {
			continue
		}
		ext := w[0]
		for _, v := range w[1:] {
			ext = pick(ext, v)
		}
		out[i] = ext
	}
	return out
}

// RollingCorr is the rolling Pearson correlation between a and b.
func RollingCorr(a, b []float64, window int) []float64 {
	out := nanSlice(len(a))
	if window <= 1 || len(a) != len(b) {
		return out
	}
	for i := window - 1; i < len(a); i++ {
		wa := a[i-window+1 : i+1]
		wb := b[i-window+1 : i+1]
		if hasNaN(wa) || hasNaN(wb) {
			continue
		}
		out[i] = stat.Correlation(wa, wb, nil)
	}
	return out
}

// EMASeries is the exponential moving average with alpha = 2/(span+1),
// seeded from the first value.
func EMASeries(values []float64, span int) []float64 {
	if len(values) == 0 {
		return nil
	}
	out := make([]float64, len(values))
	if span <= 1 {
		copy(out, values)
		return out
	}
	alpha := 2.0 / float64(span+1)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}

// RSISeries is the relative strength index with rolling-mean smoothing of
// gains and losses over the period. Flat windows (no gains, no losses)
// yield NaN; windows with gains only yield 100.
func RSISeries(closes []float64, period int) []float64 {
	out := nanSlice(len(closes))
	if period <= 0 || len(closes) <= period {
		return out
	}
	gains := make([]float64, len(closes))
	losses := make([]float64, len(closes))
	gains[0], losses[0] = math.NaN(), math.NaN()
	for i := 1; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		gains[i] = math.Max(delta, 0)
		losses[i] = math.Max(-delta, 0)
	}
	avgGain := SMASeries(gains, period)
	avgLoss := SMASeries(losses, period)
	for i := period; i < len(closes); i++ {
		g, l := avgGain[i], avgLoss[i]
		if math.IsNaN(g) || math.IsNaN(l) {
			continue
		}
		if l == 0 {
			if g == 0 {
				continue // flat window, undefined
			}
			out[i] = 100
			continue
		}
		out[i] = 100 - 100/(1+g/l)
	}
	return out
}

// PctChange is the fractional change over the given lag: v[i]/v[i-lag] - 1.
// A zero base yields NaN rather than an infinity.
func PctChange(values []float64, lag int) []float64 {
	out := nanSlice(len(values))
	if lag <= 0 {
		return out
	}
	for i := lag; i < len(values); i++ {
		base := values[i-lag]
		if base == 0 || math.IsNaN(base) || math.IsNaN(values[i]) {
			continue
		}
		out[i] = values[i]/base - 1
	}
	return out
}

// Diff is the difference over the given lag: v[i] - v[i-lag].
func Diff(values []float64, lag int) []float64 {
	out := nanSlice(len(values))
	if lag <= 0 {
		return out
	}
	for i := lag; i < len(values); i++ {
		out[i] = values[i] - values[i-lag]
	}
	return out
}

// LogSeries applies the natural logarithm element-wise; non-positive
// values become NaN.
func LogSeries(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		if v <= 0 || math.IsNaN(v) {
			out[i] = math.NaN()
			continue
		}
		out[i] = math.Log(v)
	}
	return out
}

// TrueRange is max(high-low, |high-prevClose|, |low-prevClose|). The first
// bar has no previous close and uses the high-low range alone.
func TrueRange(high, low, closes []float64) []float64 {
	out := make([]float64, len(high))
	for i := range high {
		tr := high[i] - low[i]
		if i > 0 {
			tr = math.Max(tr, math.Abs(high[i]-closes[i-1]))
			tr = math.Max(tr, math.Abs(low[i]-closes[i-1]))
		}
		out[i] = tr
	}
	return out
}

// OBVSeries is the on-balance volume line: a cumulative sum of volume
// signed by the close-to-close move, starting at zero.
func OBVSeries(closes, volume []float64) []float64 {
	out := make([]float64, len(closes))
	cum := 0.0
	for i := range closes {
		if i > 0 {
			switch {
			case closes[i] > closes[i-1]:
				cum += volume[i]
			case closes[i] < closes[i-1]:
				cum -= volume[i]
			}
		}
		out[i] = cum
	}
	return out
}

// RollingSlope fits a least-squares line against the bar index over each
// window and returns its slope.
func RollingSlope(values []float64, window int) []float64 {
	out := nanSlice(len(values))
	if window <= 1 {
		return out
	}
	xs := windowIndex(window)
	for i := window - 1; i < len(values); i++ {
		w := values[i-window+1 : i+1]
		if hasNaN(w) {
			continue
		}
		_, slope := stat.LinearRegression(xs, w, nil, false)
		out[i] = slope
	}
	return out
}

// RollingSlopeConfidence returns slope * R-squared of the least-squares
// fit over each window, a slope estimate damped when the fit is poor.
func RollingSlopeConfidence(values []float64, window int) []float64 {
	out := nanSlice(len(values))
	if window <= 1 {
		return out
	}
	xs := windowIndex(window)
	for i := window - 1; i < len(values); i++ {
		w := values[i-window+1 : i+1]
		if hasNaN(w) {
			continue
		}
		alpha, slope := stat.LinearRegression(xs, w, nil, false)
		r2 := stat.RSquared(xs, w, nil, alpha, slope)
		if math.IsNaN(r2) || math.IsInf(r2, 0) {
			r2 = 0
		}
		out[i] = slope * r2
	}
	return out
}

func windowIndex(window int) []float64 {
	xs := make([]float64, window)
	for i := range xs {
		xs[i] = float64(i)
	}
	return xs
}

// PercentileRank ranks each value against the whole series in (0, 1],
// averaging ties. NaN values are excluded from the ranking and stay NaN.
func PercentileRank(values []float64) []float64 {
	out := nanSlice(len(values))
	count := 0
	for _, v := range values {
		if !math.IsNaN(v) {
			count++
		}
	}
	if count == 0 {
		return out
	}
	for i, v := range values {
		if math.IsNaN(v) {
			continue
		}
		below, ties := 0, 0
		for _, u := range values {
			switch {
			case math.IsNaN(u):
			case u < v:
				below++
			case u == v:
				ties++
			}
		}
		avgRank := float64(below) + (float64(ties)+1)/2
		out[i] = avgRank / float64(count)
	}
	return out
}
