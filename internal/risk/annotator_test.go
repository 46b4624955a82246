package risk

import (
	"math"
	"testing"

	"ptre-signal-engine/internal/domain"
)

// alternating closes with a known daily log-return magnitude
func alternatingCloses(n int, dailyLogRet float64) []float64 {
	out := make([]float64, n)
	out[0] = 100
	up := true
	for i := 1; i < n; i++ {
		if up {
			out[i] = out[i-1] * math.Exp(dailyLogRet)
		} else {
			out[i] = out[i-1] * math.Exp(-dailyLogRet)
		}
		up = !up
	}
	return out
}

func TestAnnotateShortSeriesUnknown(t *testing.T) {
	got := Annotate(alternatingCloses(19, 0.01))
	if got.Bucket != domain.RiskBucketUnknown {
		t.Fatalf("expected Unknown, got %s", got.Bucket)
	}
	if got.Volatility != nil {
		t.Fatal("expected nil volatility for a short series")
	}
}

func TestAnnotateLow(t *testing.T) {
	// |log return| = 0.005 every day, annualized ~ 0.0794
	got := Annotate(alternatingCloses(100, 0.005))
	if got.Bucket != domain.RiskBucketLow {
		t.Fatalf("expected Low, got %s", got.Bucket)
	}
	if got.Volatility == nil {
		t.Fatal("expected a volatility value")
	}
	if *got.Volatility > 0.20 {
		t.Fatalf("expected annualized vol below 0.20, got %f", *got.Volatility)
	}
}

func TestAnnotateModerate(t *testing.T) {
	// |log return| = 0.016, annualized ~ 0.254
	got := Annotate(alternatingCloses(100, 0.016))
	if got.Bucket != domain.RiskBucketModerate {
		t.Fatalf("expected Moderate, got %s (vol %v)", got.Bucket, got.Volatility)
	}
}

func TestAnnotateHigh(t *testing.T) {
	// |log return| = 0.03, annualized ~ 0.476
	got := Annotate(alternatingCloses(100, 0.03))
	if got.Bucket != domain.RiskBucketHigh {
		t.Fatalf("expected High, got %s (vol %v)", got.Bucket, got.Volatility)
	}
}

func TestAnnotateFlatSeriesIsLow(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 50
	}
	got := Annotate(closes)
	if got.Bucket != domain.RiskBucketLow {
		t.Fatalf("expected Low for zero volatility, got %s", got.Bucket)
	}
	if got.Volatility == nil || *got.Volatility != 0 {
		t.Fatalf("expected zero volatility, got %v", got.Volatility)
	}
}

func TestAnnotateRoundsToFourDecimals(t *testing.T) {
	got := Annotate(alternatingCloses(100, 0.005))
	v := *got.Volatility
	if v != math.Round(v*10000)/10000 {
		t.Fatalf("expected 4-decimal rounding, got %v", v)
	}
}

func TestAnnotateSkipsNonPositiveCloses(t *testing.T) {
	closes := alternatingCloses(40, 0.005)
	closes[5] = 0
	got := Annotate(closes)
	if got.Bucket == domain.RiskBucketUnknown {
		t.Fatal("non-positive closes should be skipped, not fail the estimate")
	}
}
