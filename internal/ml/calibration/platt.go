// Package calibration maps a classifier's raw probabilities onto
// calibrated ones. One sigmoid is fitted per class against the held-out
// calibration split (one-vs-rest), and the rescaled probabilities are
// renormalized to sum to one.
package calibration

import (
	"errors"
	"math"
)

type FitOptions struct {
	LearningRate float64
	Epochs       int
}

func DefaultFitOptions() FitOptions {
	return FitOptions{
		LearningRate: 0.05,
		Epochs:       600,
	}
}

// Calibrator holds per-class sigmoid parameters. Class i of an input
// probability vector is rescaled as sigmoid(Slopes[i]*p + Biases[i]).
type Calibrator struct {
	Classes []int     `json:"classes"`
	Slopes  []float64 `json:"slopes"`
	Biases  []float64 `json:"biases"`
}

// Fit learns the per-class sigmoids from raw probability vectors and true
// labels. probs[i] must be aligned with classes; labels hold domain class
// values.
func Fit(probs [][]float64, labels []int, classes []int, opts FitOptions) (*Calibrator, error) {
	if len(probs) == 0 || len(probs) != len(labels) {
		return nil, errors.New("invalid calibration dataset")
	}
	if len(classes) < 2 {
		return nil, errors.New("calibration needs at least two classes")
	}
	if opts.LearningRate <= 0 {
		opts.LearningRate = DefaultFitOptions().LearningRate
	}
	if opts.Epochs <= 0 {
		opts.Epochs = DefaultFitOptions().Epochs
	}

	cal := &Calibrator{
		Classes: append([]int(nil), classes...),
		Slopes:  make([]float64, len(classes)),
		Biases:  make([]float64, len(classes)),
	}
	for k, class := range classes {
		xs := make([]float64, len(probs))
		ys := make([]float64, len(probs))
		for i := range probs {
			if k >= len(probs[i]) {
				return nil, errors.New("probability vector shorter than class set")
			}
			xs[i] = probs[i][k]
			if labels[i] == class {
				ys[i] = 1
			}
		}
		cal.Slopes[k], cal.Biases[k] = fitSigmoid(xs, ys, opts)
	}
	return cal, nil
}

// fitSigmoid runs gradient descent on the logistic loss for a single
// scalar input. Weights start at identity-ish values so an already
// calibrated input stays near itself.
func fitSigmoid(xs, ys []float64, opts FitOptions) (slope, bias float64) {
	slope, bias = 1, 0
	n := float64(len(xs))
	for epoch := 0; epoch < opts.Epochs; epoch++ {
		gradSlope, gradBias := 0.0, 0.0
		for i := range xs {
			p := sigmoid(slope*xs[i] + bias)
			diff := p - ys[i]
			gradSlope += diff * xs[i]
			gradBias += diff
		}
		slope -= opts.LearningRate * gradSlope / n
		bias -= opts.LearningRate * gradBias / n
	}
	return slope, bias
}

// Apply rescales a raw probability vector. The result is aligned with the
// calibrator's classes and sums to one.
func (c *Calibrator) Apply(probs []float64) []float64 {
	out := make([]float64, len(c.Classes))
	total := 0.0
	for i := range c.Classes {
		p := 0.0
		if i < len(probs) {
			p = probs[i]
		}
		out[i] = sigmoid(c.Slopes[i]*p + c.Biases[i])
		total += out[i]
	}
	if total <= 0 {
		uniform := 1 / float64(len(out))
		for i := range out {
			out[i] = uniform
		}
		return out
	}
	for i := range out {
		out[i] /= total
	}
	return out
}

func sigmoid(x float64) float64 {
	if x > 35 {
		return 1
	}
	if x < -35 {
		return 0
	}
	return 1 / (1 + math.Exp(-x))
}
