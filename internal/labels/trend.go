// Package labels builds the forward-looking training targets. Labels at
// date d depend only on bars at d and later, which is what keeps them on
// the opposite side of the leakage boundary from the features.
package labels

import (
	"math"
	"time"

	"ptre-signal-engine/internal/domain"
)

const volEpsilon = 1e-6

// TrendConfig controls the 3-class trend target.
type TrendConfig struct {
	// Horizon is the forward return window in bars.
	Horizon int
	// Threshold is the symmetric cut on the risk-adjusted return.
	Threshold float64
}

func DefaultTrendConfig() TrendConfig {
	return TrendConfig{Horizon: 10, Threshold: 0.75}
}

// BuildTrend labels each feature-table date by its risk-adjusted forward
// return: the horizon return divided by that date's vol_10d feature. Dates
// whose forward window runs past the end of the series are dropped, as are
// feature dates with no matching bar.
func BuildTrend(series domain.PriceSeries, featureRows []domain.FeatureRow, cfg TrendConfig) []domain.TrendLabelRow {
	if cfg.Horizon <= 0 || series.Len() == 0 {
		return nil
	}
	index := barIndex(series)
	adj := series.AdjCloses()

	out := make([]domain.TrendLabelRow, 0, len(featureRows))
	for _, row := range featureRows {
		i, ok := index[dateKey(row.Date)]
		if !ok || i+cfg.Horizon >= len(adj) {
			continue
		}
		vol10, ok := row.Values["vol_10d"]
		if !ok || math.IsNaN(vol10) {
			continue
		}
		futureRet := adj[i+cfg.Horizon]/adj[i] - 1
		riskAdj := futureRet / (vol10 + volEpsilon)
		if math.IsNaN(riskAdj) || math.IsInf(riskAdj, 0) {
			continue
		}

		label := 0
		switch {
		case riskAdj >= cfg.Threshold:
			label = 1
		case riskAdj <= -cfg.Threshold:
			label = -1
		}
		out = append(out, domain.TrendLabelRow{
			Ticker:        series.Ticker,
			Date:          row.Date,
			RiskAdjReturn: riskAdj,
			Label:         label,
		})
	}
	return out
}

func barIndex(series domain.PriceSeries) map[string]int {
	index := make(map[string]int, series.Len())
	for i, b := range series.Bars {
		index[dateKey(b.Date)] = i
	}
	return index
}

func dateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
