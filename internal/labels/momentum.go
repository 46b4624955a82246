package labels

import "ptre-signal-engine/internal/domain"

// MomentumConfig controls the 2-class momentum target.
type MomentumConfig struct {
	// Horizon is the forward return window in bars.
	Horizon int
}

func DefaultMomentumConfig() MomentumConfig {
	return MomentumConfig{Horizon: 7}
}

// BuildMomentum labels each bar by the sign of its horizon return. Bars
// with an exactly zero forward return are dropped rather than forced into
// either class, as are bars whose forward window runs past the series end.
func BuildMomentum(series domain.PriceSeries, cfg MomentumConfig) []domain.MomentumLabelRow {
	if cfg.Horizon <= 0 {
		return nil
	}
	adj := series.AdjCloses()

	out := make([]domain.MomentumLabelRow, 0, series.Len())
	for i := 0; i+cfg.Horizon < len(adj); i++ {
		futureRet := adj[i+cfg.Horizon]/adj[i] - 1
		label := 0
		switch {
		case futureRet > 0:
			label = 1
		case futureRet < 0:
			label = -1
		default:
			continue
		}
		out = append(out, domain.MomentumLabelRow{
			Ticker: series.Ticker,
			Date:   series.Bars[i].Date,
			Label:  label,
		})
	}
	return out
}
