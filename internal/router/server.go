package router

import (
	"database/sql"
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/line-monitor/internal/config"
	"github.com/iliyamo/line-monitor/internal/handler"
	"github.com/iliyamo/line-monitor/internal/middleware"
	"github.com/iliyamo/line-monitor/internal/repository"
	"github.com/iliyamo/line-monitor/internal/service"
)

// Deps are the process-wide resources the server is built from.  Redis may
// be nil, which disables rate limiting.
type Deps struct {
	Cfg       config.Config
	RateLimit config.RateLimitConfig
	DB        *sql.DB
	Redis     *redis.Client
	Events    service.EventPublisher
	Log       *zap.Logger
	Metrics   *middleware.Metrics
}

// NewServer wires repositories, services and handlers into a ready echo
// instance with the ambient middleware chain installed.
func NewServer(d Deps) *echo.Echo {
	if d.Events == nil {
		d.Events = service.NopPublisher{}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLogger(d.Log))
	if d.Metrics != nil {
		e.Use(d.Metrics.Middleware())
	}
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: d.Cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(echomw.BodyLimit("1M"))

	samples := repository.NewSampleRepo(d.DB)
	reports := repository.NewReportRepo(d.DB)
	users := repository.NewUserRepo(d.DB)

	h := Handlers{
		Auth:    handler.NewAuthHandler(d.Cfg, users, d.Log),
		Samples: handler.NewSampleHandler(samples, d.Log),
		Reports: handler.NewReportHandler(reports, d.Events, d.Log),
		Insights: handler.NewInsightsHandler(
			service.NewStatisticsService(samples),
			service.NewChartService(samples),
			d.Log,
		),
	}

	RegisterRoutes(e, d.DB, d.Metrics)
	RegisterAuth(e, h.Auth, d.Cfg.JWTSecret, middleware.TokenBucket(d.RateLimit, d.Redis, d.Log))
	RegisterAPI(e, h, d.Cfg.JWTSecret)
	return e
}
