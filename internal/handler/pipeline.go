package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RunPipeline godoc
// @Summary      Run the daily data pipeline manually
// @Description  Fetches, cleans, rebuilds features and labels, and retrains models for the whole universe
// @Tags         admin
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]string
// @Security     ApiKeyAuth
// @Router       /api/admin/pipeline/run [post]
func (h *Handler) RunPipeline(c *gin.Context) {
	if h.pipeline == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "pipeline service unavailable"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.run-pipeline")
	defer span.End()

	result := h.pipeline.RunAll(ctx)

	failed := make(map[string]string, len(result.Failed))
	for ticker, err := range result.Failed {
		failed[ticker] = err.Error()
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"started":   result.Started,
		"succeeded": result.Succeeded,
		"failed":    failed,
	})
}
