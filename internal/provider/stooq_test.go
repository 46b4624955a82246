package provider

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"ptre-signal-engine/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

func TestParseDailyCSV(t *testing.T) {
	csvBody := strings.Join([]string{
		"Date,Open,High,Low,Close,Volume",
		"2025-01-02,100.5,101.2,99.8,100.9,1200000",
		"2025-01-03,100.9,102.0,100.1,101.7,900000",
		"not-a-date,1,2,3,4,5",
		"2025-01-06,101.7,103.0,101.0,102.5,1100000",
	}, "\n")

	raw, err := parseDailyCSV(strings.NewReader(csvBody))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(raw) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(raw))
	}
	first := raw[0]
	if !first.Date.Equal(time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected date: %v", first.Date)
	}
	if first.Open != "100.5" || first.Close != "100.9" || first.Volume != "1200000" {
		t.Fatalf("unexpected cells: %+v", first)
	}
	if first.AdjClose != first.Close {
		t.Fatal("adjusted close should mirror close")
	}
}

func TestParseDailyCSVShortRows(t *testing.T) {
	raw, err := parseDailyCSV(strings.NewReader("Date,Open\n2025-01-02,100.5\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(raw) != 0 {
		t.Fatalf("expected short rows to be skipped, got %d", len(raw))
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func stooqWithResponse(status int, body string) *StooqProvider {
	p := NewStooqProvider(trace.NewNoopTracerProvider().Tracer("test"))
	p.baseURL = "http://example"
	p.client = &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: status,
				Body:       io.NopCloser(bytes.NewBufferString(body)),
				Header:     make(http.Header),
			}, nil
		}),
	}
	return p
}

func TestStooqFetchDailyBars(t *testing.T) {
	t.Parallel()

	body := "Date,Open,High,Low,Close,Volume\n2025-01-02,100,101,99,100.5,1000\n"
	p := stooqWithResponse(http.StatusOK, body)

	raw, err := p.FetchDailyBars(context.Background(), " aapl ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(raw) != 1 {
		t.Fatalf("expected 1 row, got %d", len(raw))
	}
}

func TestStooqFetchDailyBarsRequestShape(t *testing.T) {
	t.Parallel()

	var captured *http.Request
	p := NewStooqProvider(trace.NewNoopTracerProvider().Tracer("test"))
	p.baseURL = "http://example"
	p.client = &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			captured = req
			body := "Date,Open,High,Low,Close,Volume\n2025-01-02,1,1,1,1,1\n"
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(bytes.NewBufferString(body)),
				Header:     make(http.Header),
			}, nil
		}),
	}

	if _, err := p.FetchDailyBars(context.Background(), "AAPL"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if captured == nil {
		t.Fatal("no request issued")
	}
	if got := captured.URL.Query().Get("s"); got != "aapl.us" {
		t.Fatalf("expected lowercased .us symbol, got %q", got)
	}
	if got := captured.URL.Query().Get("i"); got != "d" {
		t.Fatalf("expected daily interval, got %q", got)
	}
}

func TestStooqFetchDailyBarsHTTPError(t *testing.T) {
	t.Parallel()

	p := stooqWithResponse(http.StatusServiceUnavailable, "maintenance")
	if _, err := p.FetchDailyBars(context.Background(), "AAPL"); err == nil {
		t.Fatal("expected error for non-200 response")
	}
}

func TestStooqFetchDailyBarsEmptyBody(t *testing.T) {
	t.Parallel()

	p := stooqWithResponse(http.StatusOK, "Date,Open,High,Low,Close,Volume\n")
	_, err := p.FetchDailyBars(context.Background(), "AAPL")
	if !errors.Is(err, domain.ErrDataUnavailable) {
		t.Fatalf("expected ErrDataUnavailable, got %v", err)
	}
}
