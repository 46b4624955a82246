package training

import (
	"context"
	"errors"
	"testing"
	"time"

	"ptre-signal-engine/internal/domain"
	"ptre-signal-engine/internal/features"
	"ptre-signal-engine/internal/ml/calibration"

	"go.opentelemetry.io/otel/trace"
)

var testTracer = trace.NewNoopTracerProvider().Tracer("test")

func trainingRows(n int) ([]domain.FeatureRow, []domain.TrendLabelRow, []domain.MomentumLabelRow) {
	rows := make([]domain.FeatureRow, n)
	trend := make([]domain.TrendLabelRow, n)
	momentum := make([]domain.MomentumLabelRow, n)
	for i := 0; i < n; i++ {
		label := 1
		if i%2 == 0 {
			label = -1
		}
		values := make(map[string]float64, len(features.Names))
		for j, name := range features.Names {
			values[name] = 0.01 * float64(j)
		}
		// one perfectly informative feature so the model has signal
		values["ret_1d"] = float64(label)
		date := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i)
		rows[i] = domain.FeatureRow{Ticker: "TEST", Date: date, Values: values}
		trend[i] = domain.TrendLabelRow{Ticker: "TEST", Date: date, Label: label}
		momentum[i] = domain.MomentumLabelRow{Ticker: "TEST", Date: date, Label: label}
	}
	return rows, trend, momentum
}

type fakeFeatureStore struct {
	rows []domain.FeatureRow
	err  error
}

func (f *fakeFeatureStore) ListRows(ctx context.Context, ticker string) ([]domain.FeatureRow, error) {
	return f.rows, f.err
}

type fakeLabelStore struct {
	trend    []domain.TrendLabelRow
	momentum []domain.MomentumLabelRow
}

func (f *fakeLabelStore) ListTrendLabels(ctx context.Context, ticker string) ([]domain.TrendLabelRow, error) {
	return f.trend, nil
}

func (f *fakeLabelStore) ListMomentumLabels(ctx context.Context, ticker string) ([]domain.MomentumLabelRow, error) {
	return f.momentum, nil
}

type fakeRegistry struct {
	nextVersion int
	inserted    []domain.ModelVersion
	activated   []string
}

func (f *fakeRegistry) NextVersion(ctx context.Context, modelKey string) (int, error) {
	return f.nextVersion, nil
}

func (f *fakeRegistry) InsertModelVersion(ctx context.Context, model domain.ModelVersion) (*domain.ModelVersion, error) {
	model.ID = int64(len(f.inserted) + 1)
	f.inserted = append(f.inserted, model)
	return &model, nil
}

func (f *fakeRegistry) ActivateModel(ctx context.Context, modelKey string, version int) error {
	f.activated = append(f.activated, modelKey)
	return nil
}

func TestTrainTicker(t *testing.T) {
	rows, trend, momentum := trainingRows(60)
	reg := &fakeRegistry{nextVersion: 3}
	svc := NewService(testTracer, &fakeFeatureStore{rows: rows}, &fakeLabelStore{trend: trend, momentum: momentum}, reg, Config{MinTrainRows: 40})

	results, err := svc.TrainTicker(context.Background(), "test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	if results[0].ModelKey != "TEST:trend" || results[1].ModelKey != "TEST:momentum" {
		t.Fatalf("unexpected model keys: %s, %s", results[0].ModelKey, results[1].ModelKey)
	}
	for _, r := range results {
		if r.Version != 3 {
			t.Fatalf("expected registry version 3, got %d", r.Version)
		}
		if r.SampleCount != 60 {
			t.Fatalf("expected 60 aligned samples, got %d", r.SampleCount)
		}
		// chronological split: 70% train, 15% calibrate, 15% test
		if r.TestCount != 9 {
			t.Fatalf("expected 9 test samples, got %d", r.TestCount)
		}
		if !r.Activated {
			t.Fatal("expected new version to be activated")
		}
		if r.Accuracy < 0.5 {
			t.Fatalf("expected better-than-chance accuracy on a separable dataset, got %f", r.Accuracy)
		}
	}

	if len(reg.inserted) != 2 {
		t.Fatalf("expected 2 inserted versions, got %d", len(reg.inserted))
	}
	for _, m := range reg.inserted {
		if m.FeatureSpecVersion != features.SpecVersion {
			t.Fatalf("expected feature spec %s, got %s", features.SpecVersion, m.FeatureSpecVersion)
		}
		if m.ArtifactFormat != calibration.ArtifactFormat {
			t.Fatalf("unexpected artifact format %s", m.ArtifactFormat)
		}
		if len(m.ArtifactBlob) == 0 {
			t.Fatal("expected a serialized artifact")
		}
		if !m.TrainedFrom.Equal(rows[0].Date) || !m.TrainedTo.Equal(rows[len(rows)-1].Date) {
			t.Fatalf("unexpected training window: %s .. %s", m.TrainedFrom, m.TrainedTo)
		}
		restored, err := calibration.UnmarshalBinary(m.ArtifactBlob)
		if err != nil {
			t.Fatalf("artifact does not load: %v", err)
		}
		if restored.Cal == nil {
			t.Fatal("expected a calibrated artifact")
		}
	}
	if len(reg.activated) != 2 {
		t.Fatalf("expected 2 activations, got %d", len(reg.activated))
	}
}

func TestTrainTickerInsufficientHistory(t *testing.T) {
	rows, trend, momentum := trainingRows(30)
	svc := NewService(testTracer, &fakeFeatureStore{rows: rows}, &fakeLabelStore{trend: trend, momentum: momentum}, &fakeRegistry{nextVersion: 1}, Config{MinTrainRows: 40})

	if _, err := svc.TrainTicker(context.Background(), "TEST"); !errors.Is(err, domain.ErrInsufficientHistory) {
		t.Fatalf("expected ErrInsufficientHistory, got %v", err)
	}
}

func TestTrainTickerNoFeatures(t *testing.T) {
	svc := NewService(testTracer, &fakeFeatureStore{}, &fakeLabelStore{}, &fakeRegistry{nextVersion: 1}, Config{MinTrainRows: 40})
	if _, err := svc.TrainTicker(context.Background(), "TEST"); !errors.Is(err, domain.ErrMissingArtifact) {
		t.Fatalf("expected ErrMissingArtifact, got %v", err)
	}
}

func TestAlignDatasetSkipsUnlabeledDates(t *testing.T) {
	rows, trend, _ := trainingRows(10)
	byDate := make(map[string]int)
	for _, l := range trend[:5] {
		byDate[l.Date.Format("2006-01-02")] = l.Label
	}
	samples, classes, dates := alignDataset(rows, byDate)
	if len(samples) != 5 || len(classes) != 5 || len(dates) != 5 {
		t.Fatalf("expected 5 aligned rows, got %d", len(samples))
	}
	for i := 1; i < len(dates); i++ {
		if !dates[i].After(dates[i-1]) {
			t.Fatal("aligned rows must preserve date order")
		}
	}
}
