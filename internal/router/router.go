package router

import (
	"database/sql"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/line-monitor/internal/handler"
	"github.com/iliyamo/line-monitor/internal/middleware"
)

// APIPrefix is the mount point of every versioned endpoint.
const APIPrefix = "/api/v1"

// Handlers groups everything the route table dispatches to.
type Handlers struct {
	Auth     *handler.AuthHandler
	Samples  *handler.SampleHandler
	Reports  *handler.ReportHandler
	Insights *handler.InsightsHandler
}

// RegisterRoutes registers the probes and the metrics endpoint, none of
// which require authentication.
func RegisterRoutes(e *echo.Echo, db *sql.DB, metrics *middleware.Metrics) {
	e.GET("/healthz", handler.Health)
	e.GET("/readyz", handler.Ready(db))
	if metrics != nil {
		e.GET("/metrics", metrics.Handler())
	}
}

// RegisterAuth registers register/login behind the rate limiter and the
// token-protected /auth/me.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	g := e.Group(APIPrefix + "/auth")
	g.POST("/register", a.Register, limiter)
	g.POST("/login", a.Login, limiter)
	g.GET("/me", a.Me, middleware.JWTAuth(jwtSecret))
}

// RegisterAPI registers the sample, report, statistics and chart routes.
// Reads are public; every write needs a bearer token.
func RegisterAPI(e *echo.Echo, h Handlers, jwtSecret string) {
	api := e.Group(APIPrefix)
	auth := middleware.JWTAuth(jwtSecret)

	api.GET("/samples", h.Samples.List)
	api.POST("/samples", h.Samples.Create, auth)
	api.DELETE("/samples", h.Samples.BatchDelete, auth)

	api.GET("/wastewater-reports", h.Reports.List)
	api.POST("/wastewater-reports", h.Reports.Create, auth)
	api.GET("/wastewater-reports/:id", h.Reports.Get)
	api.PUT("/wastewater-reports/:id", h.Reports.Update, auth)
	api.DELETE("/wastewater-reports/:id", h.Reports.Delete, auth)

	api.GET("/statistics/main-metrics", h.Insights.MainMetrics)
	api.GET("/charts/line-comparison", h.Insights.LineComparison)
}
