package handler

import (
	"ptre-signal-engine/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

type Handler struct {
	tracer        trace.Tracer
	signalService *service.SignalService
	pipeline      *service.PipelineService
	adminAPIKey   string
}

func New(tracer trace.Tracer, signalService *service.SignalService, pipeline *service.PipelineService, adminAPIKey string) *Handler {
	return &Handler{
		tracer:        tracer,
		signalService: signalService,
		pipeline:      pipeline,
		adminAPIKey:   adminAPIKey,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)
	r.GET("/api/signal/:ticker", h.GetSignal)
	r.GET("/api/tickers", h.GetTickers)

	admin := r.Group("/api/admin", APIKeyAuth(h.adminAPIKey))
	admin.POST("/pipeline/run", h.RunPipeline)
}
