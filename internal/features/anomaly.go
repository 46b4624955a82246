package features

import (
	"github.com/narumiruna/go-iforest/pkg/iforest"

	"ptre-signal-engine/internal/domain"
)

// minAnomalyRows is the smallest table an isolation forest is fitted on.
// Below it, scores are too noisy to be useful and rows are left unscored.
const minAnomalyRows = 64

// ScoreAnomalies fits an isolation forest over the whole feature table and
// attaches a regime-anomaly score in [0, 1] to every row. The score is a
// diagnostic for the risk report and never enters the model input vector.
func ScoreAnomalies(rows []domain.FeatureRow) error {
	if len(rows) < minAnomalyRows {
		return nil
	}
	samples := make([][]float64, len(rows))
	for i, row := range rows {
		vec, err := Vector(row)
		if err != nil {
			return err
		}
		samples[i] = vec
	}

	forest := iforest.New()
	forest.Fit(samples)
	scores := forest.Score(samples)
	for i := range rows {
		s := scores[i]
		rows[i].AnomalyScore = &s
	}
	return nil
}
