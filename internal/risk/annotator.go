// Package risk derives the volatility annotation attached to every
// signal. It is purely descriptive: nothing here feeds back into the
// models or the fused confidence.
package risk

import (
	"math"

	"ptre-signal-engine/internal/domain"
)

// minObservations is the floor below which annualized volatility is not
// reported at all.
const minObservations = 20

const tradingDaysPerYear = 252

// Annotation is the risk block of a signal report. Volatility is nil when
// the series was too short to estimate it.
type Annotation struct {
	Bucket     string   `json:"volatility"`
	Volatility *float64 `json:"volatility_value"`
}

// Annotate computes annualized log-return volatility over the given closes
// and buckets it. Fewer than 20 closes yields the Unknown bucket.
func Annotate(closes []float64) Annotation {
	if len(closes) < minObservations {
		return Annotation{Bucket: domain.RiskBucketUnknown}
	}

	logReturns := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i] <= 0 || closes[i-1] <= 0 {
			continue
		}
		logReturns = append(logReturns, math.Log(closes[i])-math.Log(closes[i-1]))
	}
	if len(logReturns) == 0 {
		return Annotation{Bucket: domain.RiskBucketUnknown}
	}

	mean := 0.0
	for _, r := range logReturns {
		mean += r
	}
	mean /= float64(len(logReturns))
	variance := 0.0
	for _, r := range logReturns {
		d := r - mean
		variance += d * d
	}
	variance /= float64(len(logReturns))

	vol := math.Sqrt(variance) * math.Sqrt(tradingDaysPerYear)
	vol = math.Round(vol*10000) / 10000

	return Annotation{Bucket: bucket(vol), Volatility: &vol}
}

func bucket(vol float64) string {
	switch {
	case vol < 0.20:
		return domain.RiskBucketLow
	case vol < 0.35:
		return domain.RiskBucketModerate
	default:
		return domain.RiskBucketHigh
	}
}
