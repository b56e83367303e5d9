// Package web serves the dashboard's view payloads, chart documents and
// operational endpoints over HTTP.
package web

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/tejusbharadwaj/turbinewatch/internal/orchestrator"
	"github.com/tejusbharadwaj/turbinewatch/internal/render"
	middleware "github.com/tejusbharadwaj/turbinewatch/internal/web/middlewares"
)

// Options configures the HTTP surface.
type Options struct {
	RateLimit      float64
	RateLimitBurst int
}

func (o Options) limiter() *rate.Limiter {
	return rate.NewLimiter(rate.Limit(o.RateLimit), o.RateLimitBurst)
}

type Handler struct {
	orch      *orchestrator.Orchestrator
	charts    *render.Renderer
	validator *RequestValidator
	logger    logrus.FieldLogger
}

func NewHandler(orch *orchestrator.Orchestrator, charts *render.Renderer, logger logrus.FieldLogger) *Handler {
	return &Handler{
		orch:      orch,
		charts:    charts,
		validator: NewRequestValidator(),
		logger:    logger,
	}
}

// NewServer wires the middleware chain and routes.
func NewServer(h *Handler, opts Options, logger logrus.FieldLogger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.Metrics(middleware.Requests, middleware.Latency))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{echo.GET, echo.POST, echo.PUT, echo.DELETE, echo.OPTIONS},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderXRequestID},
	}))

	e.GET("/health", h.GetHealth)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// one bucket per group so chart requests do not starve view actions
	api := e.Group("/api", middleware.RateLimit(opts.limiter()))
	api.GET("/summary", h.GetSummary)

	views := api.Group("/views")
	views.GET("/:view", h.GetView)
	views.POST("/:view/navigate", h.Navigate)
	views.POST("/refresh", h.Refresh)
	views.PUT("/:view/filters", h.SetFilters)
	views.PUT("/:view/page/:page", h.GoToPage)
	views.PUT("/:view/size/:size", h.SetPageSize)

	api.GET("/turbines/:id", h.SelectTurbine)
	api.DELETE("/selection", h.ClearSelection)
	api.POST("/alerts/:id/resolve", h.ResolveAlert)

	charts := e.Group("/charts", middleware.RateLimit(opts.limiter()))
	charts.GET("/:name", h.GetChart)

	return e
}
