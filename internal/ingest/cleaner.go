package ingest

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"ptre-signal-engine/internal/domain"
)

// RawBar is one uncleaned daily record as delivered by the market-data
// source. Cells are kept as strings so that non-numeric values can be
// coerced to missing rather than failing the whole series.
type RawBar struct {
	Date     time.Time
	Open     string
	High     string
	Low      string
	Close    string
	AdjClose string
	Volume   string
}

// Clean normalizes a raw series into the canonical six-field schema:
// sorted ascending by date, duplicate dates dropped (last wins), cells
// coerced to numeric, missing prices forward-filled, missing volume set to
// zero, and any row still missing a value dropped.
//
// Cleaning an already-clean series returns it unchanged. Returns
// domain.ErrDataUnavailable when the input is empty or nothing survives.
func Clean(ticker string, raw []RawBar) (domain.PriceSeries, error) {
	if len(raw) == 0 {
		return domain.PriceSeries{}, fmt.Errorf("clean %s: %w", ticker, domain.ErrDataUnavailable)
	}

	sorted := make([]RawBar, len(raw))
	copy(sorted, raw)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	// Deduplicate on date, keeping the last occurrence.
	deduped := sorted[:0]
	for i := range sorted {
		if len(deduped) > 0 && deduped[len(deduped)-1].Date.Equal(sorted[i].Date) {
			deduped[len(deduped)-1] = sorted[i]
			continue
		}
		deduped = append(deduped, sorted[i])
	}

	prev := [5]float64{math.NaN(), math.NaN(), math.NaN(), math.NaN(), math.NaN()}
	bars := make([]domain.Bar, 0, len(deduped))
	for _, r := range deduped {
		prices := [5]float64{
			coerce(r.Open),
			coerce(r.High),
			coerce(r.Low),
			coerce(r.Close),
			coerce(r.AdjClose),
		}
		for i := range prices {
			if math.IsNaN(prices[i]) {
				prices[i] = prev[i] // forward fill
			}
		}
		volume := coerce(r.Volume)
		if math.IsNaN(volume) {
			volume = 0
		}

		complete := true
		for i := range prices {
			if math.IsNaN(prices[i]) {
				complete = false
				break
			}
		}
		if complete {
			prev = prices
			bars = append(bars, domain.Bar{
				Date:     r.Date.UTC(),
				Open:     prices[0],
				High:     prices[1],
				Low:      prices[2],
				Close:    prices[3],
				AdjClose: prices[4],
				Volume:   volume,
			})
		}
	}

	if len(bars) == 0 {
		return domain.PriceSeries{}, fmt.Errorf("clean %s: no parsable rows: %w", ticker, domain.ErrDataUnavailable)
	}
	return domain.PriceSeries{Ticker: strings.ToUpper(ticker), Bars: bars}, nil
}

func coerce(cell string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil || math.IsInf(v, 0) {
		return math.NaN()
	}
	return v
}
