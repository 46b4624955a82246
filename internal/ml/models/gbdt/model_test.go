package gbdt

import (
	"math"
	"reflect"
	"testing"
)

// three linearly separated clusters labeled with the domain classes
func dataset() ([][]float64, []int) {
	samples := make([][]float64, 0, 180)
	labels := make([]int, 0, 180)
	for i := 0; i < 60; i++ {
		jitter := float64(i%10) / 50.0
		samples = append(samples, []float64{-2 + jitter, -1.5 + jitter})
		labels = append(labels, -1)
		samples = append(samples, []float64{0 + jitter, 0.1 + jitter})
		labels = append(labels, 0)
		samples = append(samples, []float64{2 + jitter, 1.8 + jitter})
		labels = append(labels, 1)
	}
	return samples, labels
}

func argmax(probs []float64) int {
	best := 0
	for i := range probs {
		if probs[i] > probs[best] {
			best = i
		}
	}
	return best
}

func TestTrainPredictProba(t *testing.T) {
	samples, labels := dataset()
	model, err := Train(samples, labels, []string{"x1", "x2"}, DefaultTrainOptions())
	if err != nil {
		t.Fatalf("train failed: %v", err)
	}

	classes := model.Classes()
	if !reflect.DeepEqual(classes, []int{-1, 0, 1}) {
		t.Fatalf("expected ascending domain classes, got %v", classes)
	}

	probs := model.PredictProba([]float64{-2, -1.5})
	if len(probs) != 3 {
		t.Fatalf("expected 3 probabilities, got %d", len(probs))
	}
	total := 0.0
	for _, p := range probs {
		if p < 0 || p > 1 {
			t.Fatalf("probability out of range: %v", probs)
		}
		total += p
	}
	if math.Abs(total-1) > 1e-9 {
		t.Fatalf("probabilities should sum to one, got %f", total)
	}
	if classes[argmax(probs)] != -1 {
		t.Fatalf("expected bearish cluster to predict class -1, got %v", probs)
	}

	probs = model.PredictProba([]float64{2, 1.8})
	if classes[argmax(probs)] != 1 {
		t.Fatalf("expected bullish cluster to predict class +1, got %v", probs)
	}
}

func TestTrainRejectsDegenerateInput(t *testing.T) {
	if _, err := Train(nil, nil, nil, DefaultTrainOptions()); err == nil {
		t.Fatal("expected error for empty dataset")
	}
	samples := [][]float64{{1}, {2}}
	if _, err := Train(samples, []int{1, 1}, []string{"x"}, DefaultTrainOptions()); err == nil {
		t.Fatal("expected error for a single class")
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	samples, labels := dataset()
	model, err := Train(samples, labels, []string{"x1", "x2"}, DefaultTrainOptions())
	if err != nil {
		t.Fatalf("train failed: %v", err)
	}

	blob, err := model.MarshalBinary()
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	restored, err := UnmarshalBinary(blob)
	if err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if !reflect.DeepEqual(restored.Classes(), model.Classes()) {
		t.Fatalf("classes changed on roundtrip: %v vs %v", restored.Classes(), model.Classes())
	}

	orig := model.PredictProba([]float64{2, 1.8})
	back := restored.PredictProba([]float64{2, 1.8})
	if argmax(orig) != argmax(back) {
		t.Fatalf("roundtrip changed the predicted class: %v vs %v", orig, back)
	}
}

func TestUnmarshalBinaryRejectsJunk(t *testing.T) {
	if _, err := UnmarshalBinary(nil); err == nil {
		t.Fatal("expected error for empty blob")
	}
	if _, err := UnmarshalBinary([]byte(`{"classes":[1]}`)); err == nil {
		t.Fatal("expected error for missing classes")
	}
}
