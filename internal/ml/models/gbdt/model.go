// Package gbdt wraps a gradient-boosted multiclass classifier. Domain
// class values (such as -1/0/+1) are mapped onto contiguous internal
// labels before training and mapped back on prediction, so probability
// vectors always line up with Classes().
package gbdt

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"sort"

	"github.com/rmera/boo"
	"github.com/rmera/boo/utils"
)

type TrainOptions struct {
	Rounds       int
	LearningRate float64
	MaxDepth     int
}

type artifact struct {
	FeatureNames []string `json:"feature_names"`
	Classes      []int    `json:"classes"`
	ModelText    string   `json:"model_text"`
}

type Model struct {
	featureNames []string
	classes      []int // ascending domain class values; internal label i <-> classes[i]
	boost        *boo.MultiClass
}

func DefaultTrainOptions() TrainOptions {
	return TrainOptions{
		Rounds:       40,
		LearningRate: 0.08,
		MaxDepth:     4,
	}
}

func Train(samples [][]float64, labels []int, featureNames []string, opts TrainOptions) (*Model, error) {
	if len(samples) == 0 || len(samples) != len(labels) {
		return nil, errors.New("invalid training dataset")
	}
	if len(samples[0]) == 0 {
		return nil, errors.New("empty feature vectors")
	}

	classes := distinctSorted(labels)
	if len(classes) < 2 {
		return nil, errors.New("training set needs at least two classes")
	}
	encoding := make(map[int]int, len(classes))
	for i, c := range classes {
		encoding[c] = i
	}
	encoded := make([]int, len(labels))
	for i, c := range labels {
		encoded[i] = encoding[c]
	}

	if opts.Rounds <= 0 {
		opts.Rounds = DefaultTrainOptions().Rounds
	}
	if opts.LearningRate <= 0 {
		opts.LearningRate = DefaultTrainOptions().LearningRate
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultTrainOptions().MaxDepth
	}
	if len(featureNames) != len(samples[0]) {
		featureNames = make([]string, len(samples[0]))
		for i := range featureNames {
			featureNames[i] = "f"
		}
	}

	o := boo.DefaultXOptions()
	o.Rounds = opts.Rounds
	o.LearningRate = opts.LearningRate
	o.MaxDepth = opts.MaxDepth
	o.Verbose = false
	o.EarlyStop = 0

	data := &utils.DataBunch{
		Data:   samples,
		Labels: encoded,
		Keys:   featureNames,
	}
	model := boo.NewMultiClass(data, o)
	if model == nil {
		return nil, errors.New("failed to train boosted model")
	}
	return &Model{
		featureNames: append([]string(nil), featureNames...),
		classes:      classes,
		boost:        model,
	}, nil
}

// Classes returns the domain class values in the order PredictProba
// reports probabilities.
func (m *Model) Classes() []int {
	if m == nil {
		return nil
	}
	out := make([]int, len(m.classes))
	copy(out, m.classes)
	return out
}

// PredictProba returns one probability per class, aligned with Classes()
// and normalized to sum to one.
func (m *Model) PredictProba(sample []float64) []float64 {
	if m == nil || m.boost == nil {
		return nil
	}
	raw := m.boost.PredictSingle(sample)
	internal := m.boost.ClassLabels()

	out := make([]float64, len(m.classes))
	for i := range internal {
		if internal[i] >= 0 && internal[i] < len(out) && i < len(raw) {
			out[internal[i]] = clamp01(raw[i])
		}
	}
	total := 0.0
	for _, p := range out {
		total += p
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

func (m *Model) PredictBatch(samples [][]float64) [][]float64 {
	out := make([][]float64, len(samples))
	for i := range samples {
		out[i] = m.PredictProba(samples[i])
	}
	return out
}

func (m *Model) FeatureNames() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.featureNames))
	copy(out, m.featureNames)
	return out
}

func (m *Model) MarshalBinary() ([]byte, error) {
	if m == nil || m.boost == nil {
		return nil, errors.New("nil model")
	}
	var buf bytes.Buffer
	if err := boo.JSONMultiClass(m.boost, "softmax", &buf); err != nil {
		return nil, err
	}
	return json.Marshal(artifact{
		FeatureNames: m.featureNames,
		Classes:      m.classes,
		ModelText:    buf.String(),
	})
}

func UnmarshalBinary(blob []byte) (*Model, error) {
	if len(blob) == 0 {
		return nil, errors.New("empty artifact")
	}
	var a artifact
	if err := json.Unmarshal(blob, &a); err != nil {
		return nil, err
	}
	if len(a.Classes) < 2 {
		return nil, errors.New("invalid artifact: missing classes")
	}
	reader := bufio.NewReader(bytes.NewReader([]byte(a.ModelText)))
	model, err := boo.UnJSONMultiClass(reader)
	if err != nil {
		return nil, err
	}
	return &Model{
		featureNames: append([]string(nil), a.FeatureNames...),
		classes:      append([]int(nil), a.Classes...),
		boost:        model,
	}, nil
}

func distinctSorted(labels []int) []int {
	set := make(map[int]struct{})
	for _, c := range labels {
		set[c] = struct{}{}
	}
	out := make([]int, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Ints(out)
	return out
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
