package calibration

import (
	"encoding/json"
	"errors"

	"ptre-signal-engine/internal/ml/models/gbdt"
)

// ArtifactFormat names the serialized layout of a calibrated model blob.
const ArtifactFormat = "gbdt+platt.v1"

// Model is a boosted classifier with its probability calibrator. This is
// the unit the registry stores and the signal service loads.
type Model struct {
	Base *gbdt.Model
	Cal  *Calibrator
}

type modelArtifact struct {
	Base json.RawMessage `json:"base"`
	Cal  *Calibrator     `json:"calibrator"`
}

func (m *Model) Classes() []int {
	if m == nil || m.Base == nil {
		return nil
	}
	return m.Base.Classes()
}

// PredictProba returns calibrated probabilities aligned with Classes().
func (m *Model) PredictProba(sample []float64) []float64 {
	raw := m.Base.PredictProba(sample)
	if m.Cal == nil {
		return raw
	}
	return m.Cal.Apply(raw)
}

func (m *Model) MarshalBinary() ([]byte, error) {
	if m == nil || m.Base == nil {
		return nil, errors.New("nil model")
	}
	base, err := m.Base.MarshalBinary()
	if err != nil {
		return nil, err
	}
	return json.Marshal(modelArtifact{Base: base, Cal: m.Cal})
}

func UnmarshalBinary(blob []byte) (*Model, error) {
	if len(blob) == 0 {
		return nil, errors.New("empty artifact")
	}
	var a modelArtifact
	if err := json.Unmarshal(blob, &a); err != nil {
		return nil, err
	}
	base, err := gbdt.UnmarshalBinary(a.Base)
	if err != nil {
		return nil, err
	}
	return &Model{Base: base, Cal: a.Cal}, nil
}
