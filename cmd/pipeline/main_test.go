package main

import (
	"reflect"
	"testing"

	"ptre-signal-engine/internal/domain"
)

func TestResolveUniverse(t *testing.T) {
	got := resolveUniverse([]string{"AAPL"}, []string{" msft ", "", "nvda"})
	if !reflect.DeepEqual(got, []string{"MSFT", "NVDA"}) {
		t.Fatalf("expected args to win, got %v", got)
	}

	got = resolveUniverse([]string{"AAPL", "MSFT"}, nil)
	if !reflect.DeepEqual(got, []string{"AAPL", "MSFT"}) {
		t.Fatalf("expected configured tickers, got %v", got)
	}

	got = resolveUniverse(nil, nil)
	if !reflect.DeepEqual(got, domain.Universe) {
		t.Fatalf("expected built-in universe, got %v", got)
	}
}
