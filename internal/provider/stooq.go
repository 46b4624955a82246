package provider

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ptre-signal-engine/internal/domain"
	"ptre-signal-engine/internal/ingest"

	"go.opentelemetry.io/otel/trace"
)

const stooqBaseURL = "https://stooq.com/q/d/l/"

// StooqProvider fetches daily OHLCV history from the Stooq free CSV
// endpoint. Stooq serves split- and dividend-adjusted closes, so the
// adjusted close mirrors the close column.
type StooqProvider struct {
	client  *http.Client
	baseURL string
	tracer   trace.Tracer
	throttle *Throttle
}

// NewStooqProvider creates a provider with built-in request pacing, one
// download every 2 seconds.
func NewStooqProvider(tracer trace.Tracer) *StooqProvider {
	return &StooqProvider{
		client:   &http.Client{Timeout: 30 * time.Second},
		baseURL:  stooqBaseURL,
		tracer:   tracer,
		throttle: NewThrottle(2 * time.Second),
	}
}

// FetchDailyBars downloads the full daily history for a US-listed ticker.
// Cells are passed through as strings; the cleaner owns all coercion.
func (p *StooqProvider) FetchDailyBars(ctx context.Context, ticker string) ([]ingest.RawBar, error) {
	_, span := p.tracer.Start(ctx, "stooq.fetch-daily-bars")
	defer span.End()

	if err := p.throttle.Wait(ctx); err != nil {
		return nil, fmt.Errorf("throttle wait: %w", err)
	}

	url := fmt.Sprintf("%s?s=%s.us&i=d", p.baseURL, strings.ToLower(strings.TrimSpace(ticker)))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/csv")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch daily bars for %s: %w", ticker, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("stooq API error %d: %s", resp.StatusCode, string(body))
	}

	raw, err := parseDailyCSV(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse daily bars for %s: %w", ticker, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("fetch daily bars for %s: %w", ticker, domain.ErrDataUnavailable)
	}
	return raw, nil
}

// parseDailyCSV reads the Date,Open,High,Low,Close,Volume layout. Rows
// with an unparsable date are skipped; everything else is deferred to the
// cleaner.
func parseDailyCSV(r io.Reader) ([]ingest.RawBar, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var out []ingest.RawBar
	first := true
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if first {
			first = false
			if len(record) > 0 && strings.EqualFold(strings.TrimSpace(record[0]), "date") {
				continue
			}
		}
		if len(record) < 6 {
			continue
		}
		date, err := time.Parse("2006-01-02", strings.TrimSpace(record[0]))
		if err != nil {
			continue
		}
		out = append(out, ingest.RawBar{
			Date:     date.UTC(),
			Open:     record[1],
			High:     record[2],
			Low:      record[3],
			Close:    record[4],
			AdjClose: record[4],
			Volume:   record[5],
		})
	}
	return out, nil
}
