package main

import (
	"context"
	"log"
	"os"
	"strings"

	"ptre-signal-engine/internal/config"
	"ptre-signal-engine/internal/db"
	"ptre-signal-engine/internal/domain"
	"ptre-signal-engine/internal/features"
	"ptre-signal-engine/internal/labels"
	"ptre-signal-engine/internal/ml/registry"
	"ptre-signal-engine/internal/ml/training"
	"ptre-signal-engine/internal/provider"
	"ptre-signal-engine/internal/repository"
	"ptre-signal-engine/internal/service"
	"ptre-signal-engine/pkg/tracing"

	"github.com/joho/godotenv"
)

var (
	loadEnvFunc      = godotenv.Load
	loadConfigFunc   = config.Load
	initPostgresFunc = db.InitPostgres
	initTracerFunc   = tracing.InitTracer
	exitFunc         = os.Exit
)

// Runs the batch pipeline once and exits: fetch bars, rebuild features and
// labels, retrain models. Pass tickers as args to restrict the run.
func main() {
	loadEnvFunc()

	cfg := loadConfigFunc()

	ctx := context.Background()

	os.Setenv("DATABASE_URL", cfg.DatabaseURL)
	initPostgresFunc(ctx)
	defer func() {
		if db.Pool != nil {
			db.Pool.Close()
		}
	}()

	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	universe := resolveUniverse(cfg.Tickers, os.Args[1:])

	barRepo := repository.NewBarRepository(db.Pool, tracer)
	featureRepo := features.NewRepository(db.Pool, tracer)
	labelRepo := labels.NewRepository(db.Pool, tracer)
	modelRegistry := registry.NewRepository(db.Pool, tracer)
	if err := barRepo.RunMigrations(ctx); err != nil {
		log.Fatalf("failed to run daily bar migrations: %v", err)
	}
	if err := featureRepo.RunMigrations(ctx); err != nil {
		log.Fatalf("failed to run feature migrations: %v", err)
	}
	if err := labelRepo.RunMigrations(ctx); err != nil {
		log.Fatalf("failed to run label migrations: %v", err)
	}
	if err := modelRegistry.RunMigrations(ctx); err != nil {
		log.Fatalf("failed to run model registry migrations: %v", err)
	}

	trainer := training.NewService(tracer, featureRepo, labelRepo, modelRegistry, training.Config{
		MinTrainRows: cfg.MinTrainRows,
	})
	pipeline := service.NewPipelineService(tracer, universe, provider.NewStooqProvider(tracer),
		barRepo, featureRepo, labelRepo, trainer,
		labels.TrendConfig{Horizon: cfg.TrendHorizonDays, Threshold: cfg.TrendThreshold},
		labels.MomentumConfig{Horizon: cfg.MomentumHorizonDays},
	)

	result := pipeline.RunAll(ctx)
	if len(result.Failed) > 0 {
		exitFunc(1)
	}
}

// resolveUniverse prefers explicit CLI args, then configured tickers, then
// the built-in universe.
func resolveUniverse(configured, args []string) []string {
	var fromArgs []string
	for _, arg := range args {
		t := strings.ToUpper(strings.TrimSpace(arg))
		if t != "" {
			fromArgs = append(fromArgs, t)
		}
	}
	if len(fromArgs) > 0 {
		return fromArgs
	}
	if len(configured) > 0 {
		return configured
	}
	return domain.Universe
}
