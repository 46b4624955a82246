package domain

import "time"

// Bar is a single cleaned daily OHLCV observation. All price fields are
// finite and positive after cleaning; volume may be zero.
type Bar struct {
	Date     time.Time `json:"date"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	AdjClose float64   `json:"adj_close"`
	Volume   float64   `json:"volume"`
}

// PriceSeries is an immutable, date-ascending sequence of cleaned bars for
// one ticker. Dates are unique. A series is only ever re-derived from raw
// input, never mutated in place.
type PriceSeries struct {
	Ticker string
	Bars   []Bar
}

func (s PriceSeries) Len() int { return len(s.Bars) }

// AdjCloses returns the adjusted-close column in date order.
func (s PriceSeries) AdjCloses() []float64 {
	out := make([]float64, len(s.Bars))
	for i := range s.Bars {
		out[i] = s.Bars[i].AdjClose
	}
	return out
}

// FeatureRow holds the engineered features for one ticker at one date.
// Values at date d are computed from bars at dates <= d-1 (one-bar shift).
// Only fully populated rows are persisted; in-memory missing values are NaN
// and such rows are dropped before the row ever leaves the feature engine.
type FeatureRow struct {
	Ticker       string
	Date         time.Time
	Values       map[string]float64
	AnomalyScore *float64
}

// TrendLabelRow is the 3-class forward-looking trend label for one date.
// The label depends only on bars at that date and later.
type TrendLabelRow struct {
	Ticker        string
	Date          time.Time
	RiskAdjReturn float64
	Label         int // -1 bearish, 0 neutral, +1 bullish
}

// MomentumLabelRow is the 2-class forward-looking momentum label.
type MomentumLabelRow struct {
	Ticker string
	Date   time.Time
	Label  int // -1 or +1, zero-return rows are dropped
}

const (
	DirectionBullish = "Bullish"
	DirectionBearish = "Bearish"
	DirectionNeutral = "Neutral"
)

// DirectionLabel maps a class value to its headline label.
func DirectionLabel(class int) string {
	switch {
	case class > 0:
		return DirectionBullish
	case class < 0:
		return DirectionBearish
	default:
		return DirectionNeutral
	}
}

// SignalComponent is one model's contribution to a fused signal.
type SignalComponent struct {
	Direction  int     `json:"direction"`
	Confidence float64 `json:"confidence"`
}

// FusedSignal is the combined output of the trend and momentum classifiers
// for one ticker. Confidence is already penalty-adjusted and clamped.
// Recomputed fresh on every inference call, never persisted.
type FusedSignal struct {
	Ticker     string          `json:"ticker"`
	Direction  string          `json:"direction"`
	Confidence float64         `json:"confidence"`
	Trend      SignalComponent `json:"trend"`
	Momentum   SignalComponent `json:"momentum"`
	Agreement  bool            `json:"agreement"`
}

const (
	RiskBucketLow      = "Low"
	RiskBucketModerate = "Moderate"
	RiskBucketHigh     = "High"
	RiskBucketUnknown  = "Unknown"
)

// ModelKind distinguishes the two trained classifiers per ticker.
const (
	ModelKindTrend    = "trend"
	ModelKindMomentum = "momentum"
)

// ModelVersion is one trained, calibrated classifier artifact in the
// registry, bound to a single ticker and label kind via its ModelKey.
type ModelVersion struct {
	ID                 int64
	ModelKey           string
	Version            int
	FeatureSpecVersion string
	TrainedFrom        time.Time
	TrainedTo          time.Time
	TrainedAt          time.Time
	HyperparamsJSON    string
	MetricsJSON        string
	ArtifactFormat     string
	ArtifactBlob       []byte
	IsActive           bool
	ActivatedAt        *time.Time
	CreatedAt          time.Time
}

// PricePoint is a single point of the charting payload.
type PricePoint struct {
	Date  string  `json:"date"`
	Close float64 `json:"close"`
}
