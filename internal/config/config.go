package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	TelegramBotToken string
	DatabaseURL      string
	RedisURL         string
	AdminAPIKey      string
	Port             string

	Tickers []string

	TrendHorizonDays    int
	TrendThreshold      float64
	MomentumHorizonDays int

	TrendWeight     float64
	MomentumWeight  float64
	DisagreePenalty float64
	MinConfidence   float64
	MaxConfidence   float64

	MinTrainRows     int
	PipelineHourUTC  int
	SignalCacheTTLMs int
}

func Load() *Config {
	cfg := &Config{
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RedisURL:         os.Getenv("REDIS_URL"),
		AdminAPIKey:      os.Getenv("ADMIN_API_KEY"),
	}

	if cfg.TelegramBotToken == "" {
		log.Println("Warning: TELEGRAM_BOT_TOKEN not set, bot disabled")
	}
	if cfg.DatabaseURL == "" {
		log.Println("Warning: DATABASE_URL not set")
	}
	if cfg.RedisURL == "" {
		log.Println("Warning: REDIS_URL not set, defaulting to localhost:6379")
		cfg.RedisURL = "localhost:6379"
	}
	if cfg.AdminAPIKey == "" {
		log.Println("Warning: ADMIN_API_KEY not set, admin endpoints are unauthenticated")
	}

	cfg.Port = "8080"
	if v := strings.TrimSpace(os.Getenv("PORT")); v != "" {
		cfg.Port = v
	}

	if v := strings.TrimSpace(os.Getenv("TICKERS")); v != "" {
		for _, t := range strings.Split(v, ",") {
			t = strings.ToUpper(strings.TrimSpace(t))
			if t != "" {
				cfg.Tickers = append(cfg.Tickers, t)
			}
		}
	}

	cfg.TrendHorizonDays = 10
	if v := strings.TrimSpace(os.Getenv("TREND_HORIZON_DAYS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TrendHorizonDays = n
		}
	}

	cfg.TrendThreshold = 0.75
	if v := strings.TrimSpace(os.Getenv("TREND_THRESHOLD")); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil && n > 0 {
			cfg.TrendThreshold = n
		}
	}

	cfg.MomentumHorizonDays = 7
	if v := strings.TrimSpace(os.Getenv("MOMENTUM_HORIZON_DAYS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MomentumHorizonDays = n
		}
	}

	cfg.TrendWeight = 0.7
	if v := strings.TrimSpace(os.Getenv("TREND_WEIGHT")); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil && n > 0 && n <= 1 {
			cfg.TrendWeight = n
		}
	}

	cfg.MomentumWeight = 0.3
	if v := strings.TrimSpace(os.Getenv("MOMENTUM_WEIGHT")); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil && n > 0 && n <= 1 {
			cfg.MomentumWeight = n
		}
	}

	cfg.DisagreePenalty = 0.15
	if v := strings.TrimSpace(os.Getenv("DISAGREE_PENALTY")); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil && n >= 0 && n < 1 {
			cfg.DisagreePenalty = n
		}
	}

	cfg.MinConfidence = 0.35
	if v := strings.TrimSpace(os.Getenv("MIN_CONFIDENCE")); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil && n > 0 && n < 1 {
			cfg.MinConfidence = n
		}
	}

	cfg.MaxConfidence = 0.85
	if v := strings.TrimSpace(os.Getenv("MAX_CONFIDENCE")); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil && n > 0 && n <= 1 {
			cfg.MaxConfidence = n
		}
	}

	cfg.MinTrainRows = 300
	if v := strings.TrimSpace(os.Getenv("MIN_TRAIN_ROWS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MinTrainRows = n
		}
	}

	cfg.PipelineHourUTC = 1
	if v := strings.TrimSpace(os.Getenv("PIPELINE_HOUR_UTC")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 && n <= 23 {
			cfg.PipelineHourUTC = n
		}
	}

	cfg.SignalCacheTTLMs = 15 * 60 * 1000
	if v := strings.TrimSpace(os.Getenv("SIGNAL_CACHE_TTL_MS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.SignalCacheTTLMs = n
		}
	}

	return cfg
}
