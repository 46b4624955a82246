package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ptre-signal-engine/internal/bot"
	"ptre-signal-engine/internal/cache"
	"ptre-signal-engine/internal/config"
	"ptre-signal-engine/internal/db"
	"ptre-signal-engine/internal/domain"
	"ptre-signal-engine/internal/features"
	"ptre-signal-engine/internal/handler"
	"ptre-signal-engine/internal/job"
	"ptre-signal-engine/internal/labels"
	"ptre-signal-engine/internal/ml/fusion"
	"ptre-signal-engine/internal/ml/registry"
	"ptre-signal-engine/internal/ml/training"
	"ptre-signal-engine/internal/provider"
	"ptre-signal-engine/internal/repository"
	"ptre-signal-engine/internal/service"
	"ptre-signal-engine/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"

	_ "ptre-signal-engine/docs"
)

var (
	loadEnvFunc          = godotenv.Load
	loadConfigFunc       = config.Load
	initPostgresFunc     = db.InitPostgres
	initRedisFunc        = cache.InitRedis
	initTracerFunc       = tracing.InitTracer
	newBarRepoFunc       = repository.NewBarRepository
	newStooqProviderFunc = func(tracer trace.Tracer) service.DataProvider {
		return provider.NewStooqProvider(tracer)
	}
	newSignalServiceFunc   = service.NewSignalService
	newPipelineServiceFunc = service.NewPipelineService
	newPipelineJobFunc     = job.NewPipelineJob
	startPipelineJobFunc   = func(j *job.PipelineJob, ctx context.Context) { go j.Start(ctx) }
	startTelegramBotFunc   = bot.StartTelegramBot
	newHandlerFunc         = handler.New
	newRouterFunc          = gin.Default
	setupSignalNotify      = signal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// @title           PTRE Signal Engine API
// @version         1.0
// @description     Daily equity trading signals from calibrated trend and momentum classifiers.

// @host      localhost:8080
// @BasePath  /
func main() {
	loadEnvFunc()

	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	os.Setenv("DATABASE_URL", cfg.DatabaseURL)
	os.Setenv("REDIS_URL", cfg.RedisURL)
	initPostgresFunc(ctx)
	initRedisFunc(ctx)

	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	universe := cfg.Tickers
	if len(universe) == 0 {
		universe = domain.Universe
	}

	barRepo := newBarRepoFunc(db.Pool, tracer)
	featureRepo := features.NewRepository(db.Pool, tracer)
	labelRepo := labels.NewRepository(db.Pool, tracer)
	modelRegistry := registry.NewRepository(db.Pool, tracer)
	if db.Pool != nil {
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
	}

	trainer := training.NewService(tracer, featureRepo, labelRepo, modelRegistry, training.Config{
		MinTrainRows: cfg.MinTrainRows,
	})

	stooq := newStooqProviderFunc(tracer)
	pipelineService := newPipelineServiceFunc(tracer, universe, stooq, barRepo, featureRepo, labelRepo, trainer,
		labels.TrendConfig{Horizon: cfg.TrendHorizonDays, Threshold: cfg.TrendThreshold},
		labels.MomentumConfig{Horizon: cfg.MomentumHorizonDays},
	)

	fuser := fusion.NewEngine(fusion.Config{
		TrendWeight:     cfg.TrendWeight,
		MomentumWeight:  cfg.MomentumWeight,
		DisagreePenalty: cfg.DisagreePenalty,
		MinConfidence:   cfg.MinConfidence,
		MaxConfidence:   cfg.MaxConfidence,
	})
	var redisClient service.RedisClient
	if cache.Client != nil {
		redisClient = cache.Client
	}
	signalService := newSignalServiceFunc(tracer, universe, barRepo, featureRepo, modelRegistry, fuser,
		redisClient, time.Duration(cfg.SignalCacheTTLMs)*time.Millisecond, cfg.MomentumHorizonDays)

	pipelineJob := newPipelineJobFunc(tracer, pipelineService, cfg.PipelineHourUTC)
	startPipelineJobFunc(pipelineJob, ctx)

	os.Setenv("TELEGRAM_BOT_TOKEN", cfg.TelegramBotToken)
	startTelegramBotFunc(signalService)

	h := newHandlerFunc(tracer, signalService, pipelineService, cfg.AdminAPIKey)

	r := newRouterFunc()
	r.Use(otelgin.Middleware("ptre-signal-engine"))

	h.RegisterRoutes(r)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
