package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"ptre-signal-engine/internal/domain"
	"ptre-signal-engine/internal/features"
	"ptre-signal-engine/internal/ml/calibration"
	"ptre-signal-engine/internal/ml/fusion"
	"ptre-signal-engine/internal/ml/registry"
	"ptre-signal-engine/internal/risk"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
)

// chartBars is roughly one trading year of daily bars.
const chartBars = 252

type BarStore interface {
	GetRecentBars(ctx context.Context, ticker string, limit int) ([]domain.Bar, error)
}

type FeatureStore interface {
	GetLatestRow(ctx context.Context, ticker string) (domain.FeatureRow, error)
}

type ModelRegistry interface {
	GetActiveModel(ctx context.Context, modelKey string) (*domain.ModelVersion, error)
}

type RedisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

// SignalService runs the inference path: latest features in, fused signal
// with risk annotation out. Signals are recomputed on demand and cached,
// never persisted.
type SignalService struct {
	tracer          trace.Tracer
	universe        []string
	bars            BarStore
	features        FeatureStore
	registry        ModelRegistry
	fuser           *fusion.Engine
	redis           RedisClient
	cacheTTL        time.Duration
	momentumHorizon int
}

func NewSignalService(
	tracer trace.Tracer,
	universe []string,
	bars BarStore,
	featureStore FeatureStore,
	reg ModelRegistry,
	fuser *fusion.Engine,
	redisClient RedisClient,
	cacheTTL time.Duration,
	momentumHorizon int,
) *SignalService {
	if cacheTTL <= 0 {
		cacheTTL = 15 * time.Minute
	}
	if momentumHorizon <= 0 {
		momentumHorizon = 7
	}
	return &SignalService{
		tracer:          tracer,
		universe:        universe,
		bars:            bars,
		features:        featureStore,
		registry:        reg,
		fuser:           fuser,
		redis:           redisClient,
		cacheTTL:        cacheTTL,
		momentumHorizon: momentumHorizon,
	}
}

// ComponentReport is one classifier's slice of the API payload.
type ComponentReport struct {
	Direction   string  `json:"direction"`
	Confidence  float64 `json:"confidence"`
	HorizonDays int     `json:"horizon_days,omitempty"`
}

type RiskReport struct {
	Volatility      string   `json:"volatility"`
	VolatilityValue *float64 `json:"volatility_value"`
	RiskScore       int      `json:"risk_score"`
	AnomalyScore    *float64 `json:"anomaly_score,omitempty"`
}

type PriceChart struct {
	Period string              `json:"period"`
	Prices []domain.PricePoint `json:"prices"`
}

// SignalReport is the full response for one ticker. FinalConfidence is on
// the 0-100 scale; component confidences stay on 0-1.
type SignalReport struct {
	Ticker          string          `json:"ticker"`
	Timestamp       string          `json:"timestamp"`
	FinalSignal     string          `json:"final_signal"`
	FinalConfidence float64         `json:"final_confidence"`
	Agreement       bool            `json:"agreement"`
	Trend           ComponentReport `json:"trend"`
	Momentum        ComponentReport `json:"momentum"`
	Risk            RiskReport      `json:"risk"`
	PriceChart      PriceChart      `json:"price_chart"`
}

// GetSignal builds the signal report for one ticker.
func (s *SignalService) GetSignal(ctx context.Context, ticker string) (*SignalReport, error) {
	ctx, span := s.tracer.Start(ctx, "signal-service.get-signal")
	defer span.End()

	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if !domain.InUniverse(s.universe, ticker) {
		return nil, fmt.Errorf("signal for %s: %w", ticker, domain.ErrTickerNotSupported)
	}

	if s.redis != nil {
		if cached, err := s.getSignalCache(ctx, ticker); err != nil {
			log.Printf("redis cache read error: %v", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	row, err := s.features.GetLatestRow(ctx, ticker)
	if err != nil {
		return nil, err
	}
	sample, err := features.Vector(row)
	if err != nil {
		return nil, err
	}

	trendModel, err := s.loadModel(ctx, ticker, domain.ModelKindTrend)
	if err != nil {
		return nil, err
	}
	momentumModel, err := s.loadModel(ctx, ticker, domain.ModelKindMomentum)
	if err != nil {
		return nil, err
	}

	fused, err := s.fuser.Fuse(ticker, sample, trendModel, momentumModel)
	if err != nil {
		return nil, err
	}

	bars, err := s.bars.GetRecentBars(ctx, ticker, chartBars)
	if err != nil {
		return nil, err
	}
	closes := make([]float64, len(bars))
	points := make([]domain.PricePoint, len(bars))
	for i, b := range bars {
		closes[i] = round2(b.Close)
		points[i] = domain.PricePoint{Date: b.Date.Format("2006-01-02"), Close: round2(b.Close)}
	}
	annotation := risk.Annotate(closes)

	finalConfidence := round2(fused.Confidence * 100)
	report := &SignalReport{
		Ticker:          ticker,
		Timestamp:       time.Now().UTC().Format(time.RFC3339),
		FinalSignal:     fused.Direction,
		FinalConfidence: finalConfidence,
		Agreement:       fused.Agreement,
		Trend: ComponentReport{
			Direction:  domain.DirectionLabel(fused.Trend.Direction),
			Confidence: round3(fused.Trend.Confidence),
		},
		Momentum: ComponentReport{
			Direction:   domain.DirectionLabel(fused.Momentum.Direction),
			Confidence:  round3(fused.Momentum.Confidence),
			HorizonDays: s.momentumHorizon,
		},
		Risk: RiskReport{
			Volatility:      annotation.Bucket,
			VolatilityValue: annotation.Volatility,
			RiskScore:       int(finalConfidence),
			AnomalyScore:    row.AnomalyScore,
		},
		PriceChart: PriceChart{Period: "1Y", Prices: points},
	}

	if s.redis != nil {
		if err := s.setSignalCache(ctx, report); err != nil {
			log.Printf("redis cache write error for %s: %v", ticker, err)
		}
	}
	return report, nil
}

// Tickers returns the configured universe.
func (s *SignalService) Tickers() []string {
	out := make([]string, len(s.universe))
	copy(out, s.universe)
	return out
}

func (s *SignalService) loadModel(ctx context.Context, ticker, kind string) (*calibration.Model, error) {
	version, err := s.registry.GetActiveModel(ctx, registry.ModelKey(ticker, kind))
	if err != nil {
		return nil, err
	}
	if version == nil {
		return nil, fmt.Errorf("no active %s model for %s: %w", kind, ticker, domain.ErrMissingArtifact)
	}
	if version.FeatureSpecVersion != features.SpecVersion {
		return nil, fmt.Errorf("%s model for %s trained on spec %s, want %s: %w",
			kind, ticker, version.FeatureSpecVersion, features.SpecVersion, domain.ErrMissingArtifact)
	}
	model, err := calibration.UnmarshalBinary(version.ArtifactBlob)
	if err != nil {
		return nil, fmt.Errorf("load %s model for %s: %w", kind, ticker, err)
	}
	return model, nil
}

func (s *SignalService) setSignalCache(ctx context.Context, report *SignalReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, "signal:"+report.Ticker, data, s.cacheTTL).Err()
}

func (s *SignalService) getSignalCache(ctx context.Context, ticker string) (*SignalReport, error) {
	data, err := s.redis.Get(ctx, "signal:"+ticker).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var report SignalReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
