// Package fusion combines the trend and momentum classifiers into one
// signal. The trend model owns the headline direction; momentum only
// modulates confidence through the weighted blend and the disagreement
// penalty.
package fusion

import (
	"errors"

	"ptre-signal-engine/internal/domain"
)

// Classifier is the calibrated per-ticker model the engine consumes.
type Classifier interface {
	Classes() []int
	PredictProba(sample []float64) []float64
}

// Config holds the soft-gating policy constants.
type Config struct {
	TrendWeight     float64
	MomentumWeight  float64
	DisagreePenalty float64
	MinConfidence   float64
	MaxConfidence   float64
}

func DefaultConfig() Config {
	return Config{
		TrendWeight:     0.7,
		MomentumWeight:  0.3,
		DisagreePenalty: 0.15,
		MinConfidence:   0.35,
		MaxConfidence:   0.85,
	}
}

type Engine struct {
	cfg Config
}

func NewEngine(cfg Config) *Engine {
	def := DefaultConfig()
	if cfg.TrendWeight <= 0 {
		cfg.TrendWeight = def.TrendWeight
	}
	if cfg.MomentumWeight <= 0 {
		cfg.MomentumWeight = def.MomentumWeight
	}
	if cfg.DisagreePenalty < 0 {
		cfg.DisagreePenalty = def.DisagreePenalty
	}
	if cfg.MinConfidence <= 0 {
		cfg.MinConfidence = def.MinConfidence
	}
	if cfg.MaxConfidence <= cfg.MinConfidence {
		cfg.MaxConfidence = def.MaxConfidence
	}
	return &Engine{cfg: cfg}
}

// Fuse runs both classifiers on one feature vector and blends them.
// Disagreement means the trend model picked a directional class and the
// momentum model picked the opposite side; a neutral trend never counts
// as disagreement.
func (e *Engine) Fuse(ticker string, sample []float64, trend, momentum Classifier) (domain.FusedSignal, error) {
	trendDir, trendConf, err := argmax(trend, sample)
	if err != nil {
		return domain.FusedSignal{}, err
	}
	momDir, momConf, err := argmax(momentum, sample)
	if err != nil {
		return domain.FusedSignal{}, err
	}

	confidence := e.cfg.TrendWeight*trendConf + e.cfg.MomentumWeight*momConf
	agreement := true
	if trendDir != 0 && momDir != trendDir {
		confidence -= e.cfg.DisagreePenalty
		agreement = false
	}
	confidence = clamp(confidence, e.cfg.MinConfidence, e.cfg.MaxConfidence)

	return domain.FusedSignal{
		Ticker:     ticker,
		Direction:  domain.DirectionLabel(trendDir),
		Confidence: confidence,
		Trend:      domain.SignalComponent{Direction: trendDir, Confidence: trendConf},
		Momentum:   domain.SignalComponent{Direction: momDir, Confidence: momConf},
		Agreement:  agreement,
	}, nil
}

func argmax(model Classifier, sample []float64) (class int, confidence float64, err error) {
	probs := model.PredictProba(sample)
	classes := model.Classes()
	if len(probs) == 0 || len(probs) != len(classes) {
		return 0, 0, errors.New("classifier returned misaligned probabilities")
	}
	best := 0
	for i := range probs {
		if probs[i] > probs[best] {
			best = i
		}
	}
	return classes[best], probs[best], nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
