package features

import (
	"fmt"

	"ptre-signal-engine/internal/domain"
)

// SpecVersion identifies the feature set below. Trained models record the
// version they were fitted against; inference refuses a vector from a
// different version.
const SpecVersion = "v1"

// Names is the canonical feature ordering. Model inputs are always
// assembled in this order.
var Names = []string{
	"ret_1d",
	"ret_3d",
	"ret_5d",
	"ret_10d",
	"log_ret_1d",
	"log_ret_5d",
	"cum_ret_5d",
	"cum_ret_10d",
	"vol_5d",
	"vol_10d",
	"vol_20d",
	"vol_ratio_5_20",
	"vol_ratio_10_20",
	"hl_vol_5d",
	"hl_vol_10d",
	"rsi_14",
	"rsi_divergence",
	"dmi_spread",
	"roc_5d",
	"roc_10d",
	"mom_slope_5d",
	"mom_slope_10d",
	"dist_sma_20",
	"dist_sma_50",
	"trend_alignment",
	"dist_ema_20",
	"dist_ema_50",
	"price_range_pos_20",
	"volume_zscore",
	"volume_change_1d",
	"volume_change_5d",
	"volume_price_corr_10d",
	"vol_weighted_momentum",
	"ad_momentum_14d",
	"volume_surprise",
	"parkinson_vol",
	"garman_klass_vol",
	"atr_percentile",
	"lr_slope_conf_20",
	"obv_divergence",
}

// Vector assembles a row's values in canonical order. Every name must be
// present; persisted rows always are.
func Vector(row domain.FeatureRow) ([]float64, error) {
	out := make([]float64, len(Names))
	for i, name := range Names {
		v, ok := row.Values[name]
		if !ok {
			return nil, fmt.Errorf("feature row %s@%s: missing %s", row.Ticker, row.Date.Format("2006-01-02"), name)
		}
		out[i] = v
	}
	return out, nil
}
