package registry

import (
	"testing"
	"time"
)

func TestModelKey(t *testing.T) {
	if got := ModelKey("aapl", "trend"); got != "AAPL:trend" {
		t.Fatalf("expected AAPL:trend, got %s", got)
	}
	if got := ModelKey("MSFT", "momentum"); got != "MSFT:momentum" {
		t.Fatalf("expected MSFT:momentum, got %s", got)
	}
}

func TestFallbackJSON(t *testing.T) {
	if fallbackJSON("") != "{}" {
		t.Fatal("empty json should default to {}")
	}
	if fallbackJSON(`{"a":1}`) != `{"a":1}` {
		t.Fatal("valid json should stay unchanged")
	}
}

func TestNullIfZeroTime(t *testing.T) {
	if nullIfZeroTime(time.Time{}) != nil {
		t.Fatal("zero time should map to nil")
	}
	now := time.Now()
	if nullIfZeroTime(now) == nil {
		t.Fatal("non-zero time should pass through")
	}
}

func TestNullTime(t *testing.T) {
	if nullTime(nil) != nil {
		t.Fatal("nil should stay nil")
	}
	zero := time.Time{}
	if nullTime(&zero) != nil {
		t.Fatal("zero time should map to nil")
	}
	now := time.Now()
	if nullTime(&now) == nil {
		t.Fatal("non-zero time should pass through")
	}
}
