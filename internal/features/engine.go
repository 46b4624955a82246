// Package features turns cleaned daily bars into the model input table.
// Every feature value published for date d is computed from bars at dates
// strictly before d: the whole table is shifted one bar before rows are
// emitted, and rows with any missing value are dropped.
package features

import (
	"math"

	"ptre-signal-engine/internal/domain"
	"ptre-signal-engine/internal/ta"
)

const epsilon = 1e-6

// BuildRows computes the full feature table for one series. The result
// contains only fully populated rows, ordered by date. Short series simply
// yield fewer (possibly zero) rows.
func BuildRows(series domain.PriceSeries) []domain.FeatureRow {
	n := series.Len()
	if n < 2 {
		return nil
	}

	open := make([]float64, n)
	high := make([]float64, n)
	low := make([]float64, n)
	closes := make([]float64, n)
	adj := make([]float64, n)
	volume := make([]float64, n)
	for i, b := range series.Bars {
		open[i] = b.Open
		high[i] = b.High
		low[i] = b.Low
		closes[i] = b.Close
		adj[i] = b.AdjClose
		volume[i] = b.Volume
	}

	cols := make(map[string][]float64, len(Names))

	// Returns.
	ret1 := ta.PctChange(adj, 1)
	cols["ret_1d"] = ret1
	cols["ret_3d"] = ta.PctChange(adj, 3)
	cols["ret_5d"] = ta.PctChange(adj, 5)
	cols["ret_10d"] = ta.PctChange(adj, 10)

	logAdj := ta.LogSeries(adj)
	cols["log_ret_1d"] = ta.Diff(logAdj, 1)
	cols["log_ret_5d"] = ta.Diff(logAdj, 5)

	growth := apply1(ret1, func(r float64) float64 { return 1 + r })
	cols["cum_ret_5d"] = apply1(rollingProd(growth, 5), func(p float64) float64 { return p - 1 })
	cols["cum_ret_10d"] = apply1(rollingProd(growth, 10), func(p float64) float64 { return p - 1 })

	// Volatility.
	vol5 := ta.RollingStd(ret1, 5)
	vol10 := ta.RollingStd(ret1, 10)
	vol20 := ta.RollingStd(ret1, 20)
	cols["vol_5d"] = vol5
	cols["vol_10d"] = vol10
	cols["vol_20d"] = vol20
	cols["vol_ratio_5_20"] = apply2(vol5, vol20, func(a, b float64) float64 { return a / (b + epsilon) })
	cols["vol_ratio_10_20"] = apply2(vol10, vol20, func(a, b float64) float64 { return a / (b + epsilon) })

	hlRange := make([]float64, n)
	for i := range hlRange {
		hlRange[i] = (high[i] - low[i]) / adj[i]
	}
	cols["hl_vol_5d"] = ta.SMASeries(hlRange, 5)
	cols["hl_vol_10d"] = ta.SMASeries(hlRange, 10)

	// Momentum.
	rsi := ta.RSISeries(adj, 14)
	cols["rsi_14"] = rsi
	cols["rsi_divergence"] = rsiDivergence(adj, rsi)
	cols["dmi_spread"] = dmiSpread(high, low, closes)
	cols["roc_5d"] = ta.PctChange(adj, 5)
	cols["roc_10d"] = ta.PctChange(adj, 10)
	cols["mom_slope_5d"] = ta.SMASeries(ret1, 5)
	cols["mom_slope_10d"] = ta.SMASeries(ret1, 10)

	// Trend context.
	sma5 := ta.SMASeries(adj, 5)
	sma10 := ta.SMASeries(adj, 10)
	sma20 := ta.SMASeries(adj, 20)
	sma50 := ta.SMASeries(adj, 50)
	cols["dist_sma_20"] = apply2(adj, sma20, relDistance)
	cols["dist_sma_50"] = apply2(adj, sma50, relDistance)

	alignment := make([]float64, n)
	for i := 0; i < n; i++ {
		// NaN comparisons are false, so warmup bars count as zero votes.
		score := 0
		if sma5[i] > sma10[i] {
			score++
		}
		if sma10[i] > sma20[i] {
			score++
		}
		if sma20[i] > sma50[i] {
			score++
		}
		if adj[i] > sma50[i] {
			score++
		}
		alignment[i] = (float64(score) - 2) / 2
	}
	cols["trend_alignment"] = alignment

	ema20 := ta.EMASeries(adj, 20)
	ema50 := ta.EMASeries(adj, 50)
	cols["dist_ema_20"] = apply2(adj, ema20, relDistance)
	cols["dist_ema_50"] = apply2(adj, ema50, relDistance)

	low20 := ta.RollingMin(adj, 20)
	high20 := ta.RollingMax(adj, 20)
	rangePos := make([]float64, n)
	for i := range rangePos {
		rangePos[i] = (adj[i] - low20[i]) / (high20[i] - low20[i])
	}
	cols["price_range_pos_20"] = rangePos

	// Volume.
	volMean20 := ta.SMASeries(volume, 20)
	volStd20 := ta.RollingStd(volume, 20)
	zscore := make([]float64, n)
	for i := range zscore {
		zscore[i] = (volume[i] - volMean20[i]) / volStd20[i]
	}
	cols["volume_zscore"] = zscore
	cols["volume_change_1d"] = ta.PctChange(volume, 1)
	cols["volume_change_5d"] = ta.PctChange(volume, 5)
	cols["volume_price_corr_10d"] = ta.RollingCorr(volume, adj, 10)

	// Engineered.
	retVol := apply2(ret1, volume, func(r, v float64) float64 { return r * v })
	cols["vol_weighted_momentum"] = apply2(
		ta.RollingSum(retVol, 20), ta.RollingSum(volume, 20),
		func(a, b float64) float64 { return a / b })

	adLine := make([]float64, n)
	cum := 0.0
	for i := 0; i < n; i++ {
		mult := 0.0
		if hl := high[i] - low[i]; hl != 0 {
			mult = ((closes[i] - low[i]) - (high[i] - closes[i])) / hl
		}
		cum += mult * volume[i]
		adLine[i] = cum
	}
	cols["ad_momentum_14d"] = ta.PctChange(adLine, 14)

	cols["volume_surprise"] = apply2(volume, ta.EMASeries(volume, 20),
		func(v, e float64) float64 { return v / e })

	parkinson := make([]float64, n)
	gk := make([]float64, n)
	for i := 0; i < n; i++ {
		lhl := math.Log(high[i] / low[i])
		lco := math.Log(closes[i] / open[i])
		parkinson[i] = math.Sqrt(lhl * lhl / (4 * math.Ln2))
		gk[i] = 0.5*lhl*lhl - (2*math.Ln2-1)*lco*lco
	}
	cols["parkinson_vol"] = parkinson
	cols["garman_klass_vol"] = gk

	tr := ta.TrueRange(high, low, closes)
	cols["atr_percentile"] = ta.PercentileRank(ta.SMASeries(tr, 20))

	cols["lr_slope_conf_20"] = ta.RollingSlopeConfidence(logAdj, 20)

	obv := ta.OBVSeries(closes, volume)
	cols["obv_divergence"] = apply2(
		ta.RollingSlope(obv, 10), ta.RollingSlope(adj, 10),
		func(o, p float64) float64 { return o - p })

	// Shift one bar and keep only complete rows.
	rows := make([]domain.FeatureRow, 0, n-1)
	for i := 1; i < n; i++ {
		values := make(map[string]float64, len(Names))
		complete := true
		for _, name := range Names {
			v := cols[name][i-1]
			if math.IsInf(v, 0) {
				v = math.NaN()
			}
			if math.IsNaN(v) {
				complete = false
				break
			}
			values[name] = v
		}
		if !complete {
			continue
		}
		rows = append(rows, domain.FeatureRow{
			Ticker: series.Ticker,
			Date:   series.Bars[i].Date,
			Values: values,
		})
	}
	return rows
}

func relDistance(price, ref float64) float64 { return (price - ref) / ref }

func apply1(a []float64, f func(float64) float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = f(a[i])
	}
	return out
}

func apply2(a, b []float64, f func(x, y float64) float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = f(a[i], b[i])
	}
	return out
}

func rollingProd(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	for i := range out {
		out[i] = math.NaN()
	}
	for i := window - 1; i < len(values); i++ {
		prod := 1.0
		for _, v := range values[i-window+1 : i+1] {
			prod *= v
		}
		out[i] = prod // NaN inputs propagate through the product
	}
	return out
}

// rsiDivergence compares the z-scored 14-bar price move against the
// z-scored 14-bar RSI move, both normalized over a 50-bar window.
func rsiDivergence(adj, rsi []float64) []float64 {
	priceRet14 := ta.PctChange(adj, 14)
	rsiChange14 := ta.Diff(rsi, 14)

	priceZ := zScore50(priceRet14)
	rsiZ := zScore50(rsiChange14)
	return apply2(priceZ, rsiZ, func(a, b float64) float64 { return a - b })
}

func zScore50(values []float64) []float64 {
	mean := ta.SMASeries(values, 50)
	std := ta.RollingStd(values, 50)
	out := make([]float64, len(values))
	for i := range values {
		out[i] = (values[i] - mean[i]) / (std[i] + epsilon)
	}
	return out
}

// dmiSpread is the normalized spread between the positive and negative
// directional indicators over a 14-bar window.
func dmiSpread(high, low, closes []float64) []float64 {
	n := len(high)
	plusDM := make([]float64, n)
	minusDM := make([]float64, n)
	for i := 1; i < n; i++ {
		up := high[i] - high[i-1]
		down := low[i-1] - low[i]
		if up > down && up > 0 {
			plusDM[i] = up
		}
		if down > up && down > 0 {
			minusDM[i] = down
		}
	}

	atr14 := ta.SMASeries(ta.TrueRange(high, low, closes), 14)
	plusDI := apply2(ta.SMASeries(plusDM, 14), atr14, func(dm, atr float64) float64 { return 100 * dm / atr })
	minusDI := apply2(ta.SMASeries(minusDM, 14), atr14, func(dm, atr float64) float64 { return 100 * dm / atr })

	return apply2(plusDI, minusDI, func(p, m float64) float64 {
		return (p - m) / (p + m + epsilon)
	})
}
