package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/line-monitor/internal/service"
)

// InsightsHandler serves the read-only statistics and chart endpoints.
type InsightsHandler struct {
	Stats  *service.StatisticsService
	Charts *service.ChartService
	Log    *zap.Logger
}

func NewInsightsHandler(stats *service.StatisticsService, charts *service.ChartService, log *zap.Logger) *InsightsHandler {
	return &InsightsHandler{Stats: stats, Charts: charts, Log: log}
}

// MainMetrics handles GET /statistics/main-metrics.
func (h *InsightsHandler) MainMetrics(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()
	m, err := h.Stats.MainMetrics(ctx)
	if err != nil {
		return internalError(c, h.Log, "compute metrics failed", err)
	}
	return c.JSON(http.StatusOK, m)
}

// LineComparison handles GET /charts/line-comparison.
func (h *InsightsHandler) LineComparison(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()
	chart, err := h.Charts.LineComparison(ctx)
	if err != nil {
		return internalError(c, h.Log, "build chart failed", err)
	}
	return c.JSON(http.StatusOK, chart)
}
