package service

import (
	"context"
	"log"
	"time"

	"ptre-signal-engine/internal/domain"
	"ptre-signal-engine/internal/features"
	"ptre-signal-engine/internal/ingest"
	"ptre-signal-engine/internal/labels"
	"ptre-signal-engine/internal/ml/training"

	"go.opentelemetry.io/otel/trace"
)

type DataProvider interface {
	FetchDailyBars(ctx context.Context, ticker string) ([]ingest.RawBar, error)
}

type BarWriter interface {
	UpsertBars(ctx context.Context, ticker string, bars []domain.Bar) error
}

type FeatureWriter interface {
	UpsertRows(ctx context.Context, rows []domain.FeatureRow) error
}

type LabelWriter interface {
	UpsertTrendLabels(ctx context.Context, rows []domain.TrendLabelRow) error
	UpsertMomentumLabels(ctx context.Context, rows []domain.MomentumLabelRow) error
}

type Trainer interface {
	TrainTicker(ctx context.Context, ticker string) ([]training.TrainResult, error)
}

// PipelineService runs the batch path end to end for every ticker:
// fetch, clean, features, labels, train. One ticker failing never stops
// the rest.
type PipelineService struct {
	tracer      trace.Tracer
	universe    []string
	provider    DataProvider
	bars        BarWriter
	features    FeatureWriter
	labels      LabelWriter
	trainer     Trainer
	trendCfg    labels.TrendConfig
	momentumCfg labels.MomentumConfig
}

func NewPipelineService(
	tracer trace.Tracer,
	universe []string,
	provider DataProvider,
	bars BarWriter,
	featureWriter FeatureWriter,
	labelWriter LabelWriter,
	trainer Trainer,
	trendCfg labels.TrendConfig,
	momentumCfg labels.MomentumConfig,
) *PipelineService {
	if trendCfg.Horizon <= 0 {
		trendCfg = labels.DefaultTrendConfig()
	}
	if momentumCfg.Horizon <= 0 {
		momentumCfg = labels.DefaultMomentumConfig()
	}
	return &PipelineService{
		tracer:      tracer,
		universe:    universe,
		provider:    provider,
		bars:        bars,
		features:    featureWriter,
		labels:      labelWriter,
		trainer:     trainer,
		trendCfg:    trendCfg,
		momentumCfg: momentumCfg,
	}
}

// PipelineResult summarizes one full run.
type PipelineResult struct {
	Started   time.Time
	Succeeded []string
	Failed    map[string]error
}

// RunAll processes the whole universe, logging and skipping tickers that
// fail at any stage.
func (s *PipelineService) RunAll(ctx context.Context) PipelineResult {
	ctx, span := s.tracer.Start(ctx, "pipeline.run-all")
	defer span.End()

	result := PipelineResult{
		Started: time.Now().UTC(),
		Failed:  make(map[string]error),
	}
	for _, ticker := range s.universe {
		if err := s.RunTicker(ctx, ticker); err != nil {
			log.Printf("pipeline: %s failed: %v", ticker, err)
			result.Failed[ticker] = err
			continue
		}
		result.Succeeded = append(result.Succeeded, ticker)
	}
	log.Printf("pipeline: %d succeeded, %d failed", len(result.Succeeded), len(result.Failed))
	return result
}

// RunTicker processes one ticker through every batch stage.
func (s *PipelineService) RunTicker(ctx context.Context, ticker string) error {
	ctx, span := s.tracer.Start(ctx, "pipeline.run-ticker")
	defer span.End()

	raw, err := s.provider.FetchDailyBars(ctx, ticker)
	if err != nil {
		return err
	}
	series, err := ingest.Clean(ticker, raw)
	if err != nil {
		return err
	}
	if err := s.bars.UpsertBars(ctx, series.Ticker, series.Bars); err != nil {
		return err
	}

	rows := features.BuildRows(series)
	if err := features.ScoreAnomalies(rows); err != nil {
		return err
	}
	if err := s.features.UpsertRows(ctx, rows); err != nil {
		return err
	}

	trendRows := labels.BuildTrend(series, rows, s.trendCfg)
	if err := s.labels.UpsertTrendLabels(ctx, trendRows); err != nil {
		return err
	}
	momentumRows := labels.BuildMomentum(series, s.momentumCfg)
	if err := s.labels.UpsertMomentumLabels(ctx, momentumRows); err != nil {
		return err
	}

	results, err := s.trainer.TrainTicker(ctx, ticker)
	if err != nil {
		return err
	}
	for _, r := range results {
		log.Printf("pipeline: trained %s v%d (n=%d accuracy=%.3f ece=%.3f)",
			r.ModelKey, r.Version, r.SampleCount, r.Accuracy, r.ECE)
	}
	return nil
}
