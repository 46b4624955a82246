package handler

import (
	"errors"
	"net/http"
	"strings"

	"ptre-signal-engine/internal/domain"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// GetSignal godoc
// @Summary      Get the fused trading signal for a ticker
// @Description  Returns the blended trend/momentum signal with calibrated confidence, risk annotation, and a 1Y price chart
// @Tags         signals
// @Produce      json
// @Param        ticker  path  string  true  "Equity ticker (e.g., AAPL, MSFT)"
// @Success      200  {object}  service.SignalReport
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/signal/{ticker} [get]
func (h *Handler) GetSignal(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-signal")
	defer span.End()

	ticker := strings.ToUpper(c.Param("ticker"))
	span.SetAttributes(attribute.String("ticker", ticker))

	report, err := h.signalService.GetSignal(ctx, ticker)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTickerNotSupported):
			c.JSON(http.StatusNotFound, gin.H{
				"error":             "ticker not supported: " + ticker,
				"supported_tickers": h.signalService.Tickers(),
			})
		case errors.Is(err, domain.ErrMissingArtifact), errors.Is(err, domain.ErrDataUnavailable):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, report)
}

// GetTickers godoc
// @Summary      List supported tickers
// @Description  Returns the configured equity universe
// @Tags         signals
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/tickers [get]
func (h *Handler) GetTickers(c *gin.Context) {
	_, span := h.tracer.Start(c.Request.Context(), "handler.get-tickers")
	defer span.End()

	c.JSON(http.StatusOK, gin.H{"tickers": h.signalService.Tickers()})
}
