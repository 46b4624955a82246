// Package training fits and calibrates the per-ticker classifiers. Splits
// are strictly chronological: the oldest 70% trains the boosted model, the
// next 15% fits the calibrator, and the newest 15% is held out for
// metrics. Shuffling would leak future bars into the past.
package training

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ptre-signal-engine/internal/domain"
	"ptre-signal-engine/internal/features"
	"ptre-signal-engine/internal/ml/calibration"
	"ptre-signal-engine/internal/ml/models/gbdt"
	"ptre-signal-engine/internal/ml/registry"

	"go.opentelemetry.io/otel/trace"
)

type FeatureStore interface {
	ListRows(ctx context.Context, ticker string) ([]domain.FeatureRow, error)
}

type LabelStore interface {
	ListTrendLabels(ctx context.Context, ticker string) ([]domain.TrendLabelRow, error)
	ListMomentumLabels(ctx context.Context, ticker string) ([]domain.MomentumLabelRow, error)
}

type ModelRegistry interface {
	NextVersion(ctx context.Context, modelKey string) (int, error)
	InsertModelVersion(ctx context.Context, model domain.ModelVersion) (*domain.ModelVersion, error)
	ActivateModel(ctx context.Context, modelKey string, version int) error
}

type Config struct {
	MinTrainRows int
}

type Service struct {
	tracer     trace.Tracer
	features   FeatureStore
	labelStore LabelStore
	registry   ModelRegistry
	cfg        Config
}

type TrainResult struct {
	ModelKey    string
	Version     int
	SampleCount int
	TestCount   int
	Accuracy    float64
	ECE         float64
	Activated   bool
}

func NewService(tracer trace.Tracer, featureStore FeatureStore, labelStore LabelStore, reg ModelRegistry, cfg Config) *Service {
	if cfg.MinTrainRows <= 0 {
		cfg.MinTrainRows = 300
	}
	return &Service{tracer: tracer, features: featureStore, labelStore: labelStore, registry: reg, cfg: cfg}
}

// TrainTicker fits, calibrates, and activates both classifiers for one
// ticker. Returns domain.ErrInsufficientHistory when either aligned
// dataset is below the viability floor.
func (s *Service) TrainTicker(ctx context.Context, ticker string) ([]TrainResult, error) {
	ctx, span := s.tracer.Start(ctx, "ml-training.train-ticker")
	defer span.End()

	featureRows, err := s.features.ListRows(ctx, ticker)
	if err != nil {
		return nil, err
	}
	if len(featureRows) == 0 {
		return nil, fmt.Errorf("train %s: no feature rows: %w", ticker, domain.ErrMissingArtifact)
	}

	trendLabels, err := s.labelStore.ListTrendLabels(ctx, ticker)
	if err != nil {
		return nil, err
	}
	momentumLabels, err := s.labelStore.ListMomentumLabels(ctx, ticker)
	if err != nil {
		return nil, err
	}

	trendByDate := make(map[string]int, len(trendLabels))
	for _, l := range trendLabels {
		trendByDate[dateKey(l.Date)] = l.Label
	}
	momentumByDate := make(map[string]int, len(momentumLabels))
	for _, l := range momentumLabels {
		momentumByDate[dateKey(l.Date)] = l.Label
	}

	results := make([]TrainResult, 0, 2)
	for _, kind := range []string{domain.ModelKindTrend, domain.ModelKindMomentum} {
		byDate := trendByDate
		if kind == domain.ModelKindMomentum {
			byDate = momentumByDate
		}
		samples, classes, dates := alignDataset(featureRows, byDate)

		result, err := s.trainKind(ctx, ticker, kind, samples, classes, dates)
		if err != nil {
			return nil, fmt.Errorf("train %s/%s: %w", ticker, kind, err)
		}
		results = append(results, result)
	}
	return results, nil
}

func (s *Service) trainKind(ctx context.Context, ticker, kind string, samples [][]float64, classes []int, dates []time.Time) (TrainResult, error) {
	n := len(samples)
	if n < s.cfg.MinTrainRows {
		return TrainResult{}, fmt.Errorf("%d aligned rows, need >= %d: %w", n, s.cfg.MinTrainRows, domain.ErrInsufficientHistory)
	}

	trainEnd := int(float64(n) * 0.70)
	calibEnd := int(float64(n) * 0.85)

	opts := gbdt.DefaultTrainOptions()
	base, err := gbdt.Train(samples[:trainEnd], classes[:trainEnd], features.Names, opts)
	if err != nil {
		return TrainResult{}, err
	}

	calibProbs := base.PredictBatch(samples[trainEnd:calibEnd])
	cal, err := calibration.Fit(calibProbs, classes[trainEnd:calibEnd], base.Classes(), calibration.DefaultFitOptions())
	if err != nil {
		return TrainResult{}, err
	}
	model := &calibration.Model{Base: base, Cal: cal}

	testX, testY := samples[calibEnd:], classes[calibEnd:]
	testProbs := make([][]float64, len(testX))
	for i := range testX {
		testProbs[i] = model.PredictProba(testX[i])
	}
	accuracy := computeAccuracy(testProbs, testY, model.Classes())
	ece := calibration.ECE(testProbs, testY, model.Classes(), 10)

	blob, err := model.MarshalBinary()
	if err != nil {
		return TrainResult{}, err
	}

	modelKey := registry.ModelKey(ticker, kind)
	version, err := s.registry.NextVersion(ctx, modelKey)
	if err != nil {
		return TrainResult{}, err
	}

	hyperJSON, _ := json.Marshal(map[string]any{
		"rounds":        opts.Rounds,
		"learning_rate": opts.LearningRate,
		"max_depth":     opts.MaxDepth,
	})
	metricJSON, _ := json.Marshal(map[string]float64{
		"accuracy": accuracy,
		"ece":      ece,
		"n_train":  float64(trainEnd),
		"n_calib":  float64(calibEnd - trainEnd),
		"n_test":   float64(n - calibEnd),
	})

	inserted, err := s.registry.InsertModelVersion(ctx, domain.ModelVersion{
		ModelKey:           modelKey,
		Version:            version,
		FeatureSpecVersion: features.SpecVersion,
		TrainedFrom:        dates[0],
		TrainedTo:          dates[n-1],
		HyperparamsJSON:    string(hyperJSON),
		MetricsJSON:        string(metricJSON),
		ArtifactFormat:     calibration.ArtifactFormat,
		ArtifactBlob:       blob,
	})
	if err != nil {
		return TrainResult{}, err
	}

	result := TrainResult{
		ModelKey:    modelKey,
		Version:     inserted.Version,
		SampleCount: n,
		TestCount:   n - calibEnd,
		Accuracy:    accuracy,
		ECE:         ece,
	}
	if err := s.registry.ActivateModel(ctx, modelKey, inserted.Version); err != nil {
		return TrainResult{}, err
	}
	result.Activated = true
	return result, nil
}

// alignDataset intersects the feature table with a date-keyed label set,
// preserving date order.
func alignDataset(rows []domain.FeatureRow, labelByDate map[string]int) (samples [][]float64, classes []int, dates []time.Time) {
	for _, row := range rows {
		class, ok := labelByDate[dateKey(row.Date)]
		if !ok {
			continue
		}
		vec, err := features.Vector(row)
		if err != nil {
			continue
		}
		samples = append(samples, vec)
		classes = append(classes, class)
		dates = append(dates, row.Date)
	}
	return samples, classes, dates
}

func computeAccuracy(probs [][]float64, truth []int, classes []int) float64 {
	if len(probs) == 0 || len(probs) != len(truth) {
		return 0
	}
	hits := 0
	for i, p := range probs {
		best, bestProb := -1, -1.0
		for k := range p {
			if p[k] > bestProb {
				best, bestProb = k, p[k]
			}
		}
		if best >= 0 && best < len(classes) && classes[best] == truth[i] {
			hits++
		}
	}
	return float64(hits) / float64(len(probs))
}

func dateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
