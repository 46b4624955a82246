package config

import (
	"reflect"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("TICKERS", "")
	t.Setenv("PORT", "")
	t.Setenv("TREND_HORIZON_DAYS", "")
	t.Setenv("MIN_TRAIN_ROWS", "")

	cfg := Load()
	if cfg.RedisURL != "localhost:6379" {
		t.Fatalf("expected default redis url, got %s", cfg.RedisURL)
	}
	if cfg.Port != "8080" {
		t.Fatalf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.Tickers != nil {
		t.Fatalf("expected no configured tickers, got %v", cfg.Tickers)
	}
	if cfg.TrendHorizonDays != 10 || cfg.MomentumHorizonDays != 7 {
		t.Fatalf("unexpected default horizons: %d/%d", cfg.TrendHorizonDays, cfg.MomentumHorizonDays)
	}
	if cfg.TrendThreshold != 0.75 {
		t.Fatalf("expected default threshold 0.75, got %f", cfg.TrendThreshold)
	}
	if cfg.TrendWeight != 0.7 || cfg.MomentumWeight != 0.3 || cfg.DisagreePenalty != 0.15 {
		t.Fatalf("unexpected fusion defaults: %+v", cfg)
	}
	if cfg.MinConfidence != 0.35 || cfg.MaxConfidence != 0.85 {
		t.Fatalf("unexpected confidence bounds: %f/%f", cfg.MinConfidence, cfg.MaxConfidence)
	}
	if cfg.MinTrainRows != 300 || cfg.PipelineHourUTC != 1 {
		t.Fatalf("unexpected pipeline defaults: %d/%d", cfg.MinTrainRows, cfg.PipelineHourUTC)
	}
	if cfg.SignalCacheTTLMs != 15*60*1000 {
		t.Fatalf("unexpected cache ttl: %d", cfg.SignalCacheTTLMs)
	}
}

func TestLoadWithEnv(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("REDIS_URL", "redis:6379")
	t.Setenv("TICKERS", " aapl, msft ,,nvda ")
	t.Setenv("TREND_HORIZON_DAYS", "20")
	t.Setenv("MIN_TRAIN_ROWS", "500")

	cfg := Load()
	if cfg.TelegramBotToken != "token" || cfg.DatabaseURL != "postgres://example" || cfg.RedisURL != "redis:6379" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if !reflect.DeepEqual(cfg.Tickers, []string{"AAPL", "MSFT", "NVDA"}) {
		t.Fatalf("unexpected tickers: %v", cfg.Tickers)
	}
	if cfg.TrendHorizonDays != 20 || cfg.MinTrainRows != 500 {
		t.Fatalf("env overrides not applied: %d/%d", cfg.TrendHorizonDays, cfg.MinTrainRows)
	}

	t.Setenv("TREND_HORIZON_DAYS", "bad")
	t.Setenv("MIN_TRAIN_ROWS", "-5")
	cfg = Load()
	if cfg.TrendHorizonDays != 10 || cfg.MinTrainRows != 300 {
		t.Fatalf("invalid values should fall back to defaults, got %d/%d", cfg.TrendHorizonDays, cfg.MinTrainRows)
	}
}
